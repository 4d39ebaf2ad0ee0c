// internal/config/seed.go
package config

import (
	"fmt"
	"os"
	"strings"

	"finance-predictor/internal/models"

	"gopkg.in/yaml.v3"
)

// Seed lists categories and their keyword rules to create in an empty store.
type Seed struct {
	Categories []SeedCategory `yaml:"categories"`
}

type SeedCategory struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Rules       []SeedRule `yaml:"rules"`
}

type SeedRule struct {
	Keyword string `yaml:"keyword"`
	Field   string `yaml:"field"`
}

// FieldType resolves Field, defaulting to Title.
func (r SeedRule) FieldType() (models.FieldType, error) {
	var f models.FieldType
	if err := f.UnmarshalText([]byte(r.Field)); err != nil {
		return 0, err
	}
	return f, nil
}

func LoadSeedFromPath(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return ParseSeed(data)
}

func ParseSeed(data []byte) (*Seed, error) {
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	for i, c := range seed.Categories {
		if strings.TrimSpace(c.Name) == "" {
			return nil, fmt.Errorf("seed category %d: name is required", i)
		}
		for j, r := range c.Rules {
			if strings.TrimSpace(r.Keyword) == "" {
				return nil, fmt.Errorf("seed category %q rule %d: keyword is required", c.Name, j)
			}
			if _, err := r.FieldType(); err != nil {
				return nil, fmt.Errorf("seed category %q rule %d: %w", c.Name, j, err)
			}
		}
	}
	return &seed, nil
}
