package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"spendwise/internal/core"
)

// Seed is the startup data: the category list offered to users and the
// budgets to install before the first expense.
type Seed struct {
	Categories []string          `yaml:"categories"`
	Budgets    map[string]string `yaml:"budgets,omitempty"`
}

// SeedBudget is a parsed budget entry.
type SeedBudget struct {
	Category string
	Limit    core.Money
}

// LoadSeed reads the YAML seed file at path. A missing file yields the
// default categories and no budgets.
func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Seed{Categories: append([]string(nil), core.DefaultCategories...)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed decodes and validates seed YAML.
func ParseSeed(data []byte) (*Seed, error) {
	var s Seed
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing seed file: %w", err)
	}
	s.Categories = dedupe(s.Categories)
	if len(s.Categories) == 0 {
		s.Categories = append([]string(nil), core.DefaultCategories...)
	}
	if _, err := s.ParsedBudgets(); err != nil {
		return nil, err
	}
	return &s, nil
}

// ParsedBudgets returns the budgets in category-list order. Budgets for
// categories missing from the list are rejected.
func (s *Seed) ParsedBudgets() ([]SeedBudget, error) {
	var out []SeedBudget
	known := make(map[string]bool, len(s.Categories))
	for _, c := range s.Categories {
		known[c] = true
	}
	for cat := range s.Budgets {
		if !known[cat] {
			return nil, fmt.Errorf("seed budget for %q: %w", cat, core.ErrUnknownCategory)
		}
	}
	for _, cat := range s.Categories {
		raw, ok := s.Budgets[cat]
		if !ok {
			continue
		}
		limit, err := core.ParseMoney(raw)
		if err != nil {
			return nil, fmt.Errorf("seed budget for %q (%q): %w", cat, raw, err)
		}
		out = append(out, SeedBudget{Category: cat, Limit: limit})
	}
	return out, nil
}

func dedupe(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
