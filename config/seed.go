package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Seed is the optional TOML file listing the categories of a tournament and,
// optionally, pre-registered competitors.
//
//	[[category]]
//	name = "Minimes"
//	include_in_stats = true
//
//	[[category.competitor]]
//	first_name = "Léo"
//	last_name = "Petit"
//	sex = "M"
//	birth_year = 2012
//	club = "Judo Club Montlebon"
//	weight = 38.5
type Seed struct {
	Categories []SeedCategory `toml:"category"`
}

type SeedCategory struct {
	Name           string           `toml:"name"`
	IncludeInStats *bool            `toml:"include_in_stats"`
	BirthYearMin   *int             `toml:"birth_year_min"`
	BirthYearMax   *int             `toml:"birth_year_max"`
	Competitors    []SeedCompetitor `toml:"competitor"`
}

// InStats defaults to true when the flag is omitted.
func (c SeedCategory) InStats() bool {
	return c.IncludeInStats == nil || *c.IncludeInStats
}

type SeedCompetitor struct {
	FirstName string  `toml:"first_name"`
	LastName  string  `toml:"last_name"`
	Sex       string  `toml:"sex"`
	BirthYear int     `toml:"birth_year"`
	Club      string  `toml:"club"`
	Weight    float64 `toml:"weight"`
}

// LoadSeed reads and validates a seed file.
func LoadSeed(path string) (*Seed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return ParseSeed(raw)
}

func ParseSeed(raw []byte) (*Seed, error) {
	var seed Seed
	if err := toml.Unmarshal(raw, &seed); err != nil {
		return nil, fmt.Errorf("unmarshal seed: %w", err)
	}
	if err := seed.validate(); err != nil {
		return nil, err
	}
	return &seed, nil
}

func (s *Seed) validate() error {
	names := make(map[string]bool, len(s.Categories))
	for i, c := range s.Categories {
		if c.Name == "" {
			return fmt.Errorf("seed category %d: name is required", i+1)
		}
		if names[c.Name] {
			return fmt.Errorf("seed category %q listed twice", c.Name)
		}
		names[c.Name] = true
		for j, comp := range c.Competitors {
			if comp.FirstName == "" || comp.LastName == "" {
				return fmt.Errorf("seed category %q competitor %d: name is required", c.Name, j+1)
			}
			if comp.Sex != "M" && comp.Sex != "F" {
				return fmt.Errorf("seed category %q competitor %d: sex must be M or F", c.Name, j+1)
			}
			if comp.Weight <= 0 {
				return fmt.Errorf("seed category %q competitor %d: weight must be positive", c.Name, j+1)
			}
		}
	}
	return nil
}
