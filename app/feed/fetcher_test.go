package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const testRSS = `<?xml version="1.0"?><rss version="2.0"><channel><title>Test</title></channel></rss>`

func TestFetcher_Run_Success(t *testing.T) {
	var gotUserAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		w.Header().Set("Last-Modified", "Wed, 01 May 2024 10:00:00 GMT")
		w.Header().Set("ETag", `"abc123"`)
		w.Write([]byte(testRSS))
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), "Feedcast/test")
	result, err := fetcher.Run(context.Background(), server.URL, nil)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if result.NotModified {
		t.Errorf("Expected a modified response")
	}
	if string(result.Body) != testRSS {
		t.Errorf("Expected feed body to round-trip, got %q", result.Body)
	}
	if result.LastModified != "Wed, 01 May 2024 10:00:00 GMT" {
		t.Errorf("Expected Last-Modified to be captured, got %q", result.LastModified)
	}
	if result.ETag != `"abc123"` {
		t.Errorf("Expected ETag to be captured, got %q", result.ETag)
	}
	if gotUserAgent != "Feedcast/test" {
		t.Errorf("Expected custom user agent, got %q", gotUserAgent)
	}
}

func TestFetcher_Run_ConditionalHeaders(t *testing.T) {
	var gotIfModifiedSince, gotIfNoneMatch string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotIfModifiedSince = r.Header.Get("If-Modified-Since")
		gotIfNoneMatch = r.Header.Get("If-None-Match")
		w.WriteHeader(http.StatusNotModified)
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), "Feedcast/test")
	cond := &Conditional{
		LastModified: "Wed, 01 May 2024 10:00:00 GMT",
		ETag:         `"abc123"`,
	}

	result, err := fetcher.Run(context.Background(), server.URL, cond)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if !result.NotModified {
		t.Errorf("Expected a not-modified result for a 304 response")
	}
	if gotIfModifiedSince != cond.LastModified {
		t.Errorf("Expected If-Modified-Since %q, got %q", cond.LastModified, gotIfModifiedSince)
	}
	if gotIfNoneMatch != cond.ETag {
		t.Errorf("Expected If-None-Match %q, got %q", cond.ETag, gotIfNoneMatch)
	}
}

func TestFetcher_Run_NoConditionalHeadersWhenStale(t *testing.T) {
	var gotIfModifiedSince string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotIfModifiedSince = r.Header.Get("If-Modified-Since")
		w.Write([]byte(testRSS))
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), "Feedcast/test")
	if _, err := fetcher.Run(context.Background(), server.URL, nil); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if gotIfModifiedSince != "" {
		t.Errorf("Expected no If-Modified-Since without validators, got %q", gotIfModifiedSince)
	}
}

func TestFetcher_Run_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), "Feedcast/test")
	if _, err := fetcher.Run(context.Background(), server.URL, nil); err == nil {
		t.Errorf("Expected an error for a 500 response")
	}
}

func TestFetcher_Run_EmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), "Feedcast/test")
	if _, err := fetcher.Run(context.Background(), server.URL, nil); err == nil {
		t.Errorf("Expected an error for an empty body")
	}
}

func TestFetcher_Run_Unreachable(t *testing.T) {
	fetcher := NewFetcher(&http.Client{}, "Feedcast/test")
	if _, err := fetcher.Run(context.Background(), "http://127.0.0.1:1/feed", nil); err == nil {
		t.Errorf("Expected an error for an unreachable host")
	}
}
