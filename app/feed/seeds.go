package feed

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SeedRegistry loads feed seed files from a directory. Each *.yml file
// declares one feed and its category; main upserts them into the database
// at startup.
type SeedRegistry struct {
	seedsDir string
}

func NewSeedRegistry(seedsDir string) *SeedRegistry {
	return &SeedRegistry{seedsDir: seedsDir}
}

func (r *SeedRegistry) LoadAll() ([]Seed, error) {
	if _, err := os.Stat(r.seedsDir); os.IsNotExist(err) {
		return nil, nil
	}

	files, err := filepath.Glob(filepath.Join(r.seedsDir, "*.yml"))
	if err != nil {
		return nil, fmt.Errorf("failed to find seed files: %w", err)
	}

	seeds := make([]Seed, 0, len(files))
	for _, file := range files {
		seed, err := r.parseSeed(file)
		if err != nil {
			return nil, fmt.Errorf("error loading %s: %w", file, err)
		}
		seeds = append(seeds, *seed)
	}

	return seeds, nil
}

func (r *SeedRegistry) parseSeed(file string) (*Seed, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateSeed(&seed); err != nil {
		return nil, fmt.Errorf("invalid seed: %w", err)
	}

	return &seed, nil
}

func validateSeed(seed *Seed) error {
	requiredFields := map[string]string{
		"category title": seed.Category.Title,
		"feed URL":       seed.Feed.URL,
		"feed name":      seed.Feed.Name,
	}

	for fieldName, fieldValue := range requiredFields {
		if fieldValue == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
	}

	return nil
}
