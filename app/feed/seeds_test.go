package feed

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSeedFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write seed file: %v", err)
	}
}

func TestSeedRegistry_LoadAll(t *testing.T) {
	dir := t.TempDir()
	writeSeedFile(t, dir, "tech.yml", `
category:
  title: Technology
  image: https://example.com/tech.png
feed:
  url: https://example.com/feed.xml
  name: Example Feed
settings:
  extract_content: true
`)

	registry := NewSeedRegistry(dir)
	seeds, err := registry.LoadAll()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(seeds) != 1 {
		t.Fatalf("Expected 1 seed, got %d", len(seeds))
	}

	seed := seeds[0]
	if seed.Category.Title != "Technology" {
		t.Errorf("Expected category 'Technology', got %q", seed.Category.Title)
	}
	if seed.Feed.URL != "https://example.com/feed.xml" {
		t.Errorf("Expected feed URL 'https://example.com/feed.xml', got %q", seed.Feed.URL)
	}
	if seed.Feed.Name != "Example Feed" {
		t.Errorf("Expected feed name 'Example Feed', got %q", seed.Feed.Name)
	}
	if !seed.Settings.ExtractContent {
		t.Errorf("Expected extract_content to be enabled")
	}
}

func TestSeedRegistry_LoadAll_MissingDirectory(t *testing.T) {
	registry := NewSeedRegistry("/nonexistent/seeds")

	seeds, err := registry.LoadAll()
	if err != nil {
		t.Fatalf("Expected no error for a missing directory, got: %v", err)
	}
	if len(seeds) != 0 {
		t.Errorf("Expected no seeds, got %d", len(seeds))
	}
}

func TestSeedRegistry_LoadAll_InvalidSeed(t *testing.T) {
	dir := t.TempDir()
	writeSeedFile(t, dir, "broken.yml", `
category:
  title: Technology
feed:
  name: Missing URL
`)

	registry := NewSeedRegistry(dir)
	if _, err := registry.LoadAll(); err == nil {
		t.Errorf("Expected an error for a seed without a feed URL")
	}
}

func TestSeedRegistry_LoadAll_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	writeSeedFile(t, dir, "garbage.yml", "category: [unclosed")

	registry := NewSeedRegistry(dir)
	if _, err := registry.LoadAll(); err == nil {
		t.Errorf("Expected an error for malformed YAML")
	}
}
