package feed

import (
	"testing"
	"time"
)

func TestIsFresh_WithinWindow(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	lastRead := now.Add(-59 * time.Minute)

	if !IsFresh(&lastRead, now) {
		t.Errorf("Expected feed read 59 minutes ago to be fresh")
	}
}

func TestIsFresh_JustRead(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	lastRead := now

	if !IsFresh(&lastRead, now) {
		t.Errorf("Expected feed read just now to be fresh")
	}
}

func TestIsFresh_ExactlyAtWindow(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	lastRead := now.Add(-FreshnessWindow)

	if IsFresh(&lastRead, now) {
		t.Errorf("Expected feed read exactly %v ago to be stale", FreshnessWindow)
	}
}

func TestIsFresh_OutsideWindow(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	lastRead := now.Add(-61 * time.Minute)

	if IsFresh(&lastRead, now) {
		t.Errorf("Expected feed read 61 minutes ago to be stale")
	}
}

func TestIsFresh_NeverRead(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	if IsFresh(nil, now) {
		t.Errorf("Expected feed that was never read to be stale")
	}
}
