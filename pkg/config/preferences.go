package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/soren-n/dusk/pkg/query"
)

// Preferences holds the small set of CLI defaults a user can persist
// between runs: the last root scanned and a default size filter. The size
// filter is stored as a typed operator/byte pair, not a free-form
// expression string, so loading it never requires parsing a query grammar.
type Preferences struct {
	DefaultRoot         string `yaml:"default_root,omitempty"`
	DefaultSizeOperator string `yaml:"default_size_operator,omitempty"`
	DefaultSizeBytes    uint64 `yaml:"default_size_bytes,omitempty"`
}

// SizeFilter builds a query.SizeFilter from the stored operator/bytes pair,
// returning ok=false if no default size filter is set.
func (p Preferences) SizeFilter() (filter query.SizeFilter, ok bool) {
	switch p.DefaultSizeOperator {
	case "gt":
		filter.Operator = query.GreaterThan
	case "gte":
		filter.Operator = query.GreaterThanOrEqual
	case "lt":
		filter.Operator = query.LessThan
	case "lte":
		filter.Operator = query.LessThanOrEqual
	default:
		return query.SizeFilter{}, false
	}
	filter.Bytes = p.DefaultSizeBytes
	return filter, true
}

// LoadPreferences reads the YAML preferences file, returning a zero-value
// Preferences if it does not yet exist.
func LoadPreferences() (Preferences, error) {
	_, file, err := CliPath()
	if err != nil {
		return Preferences{}, err
	}
	data, err := os.ReadFile(file)
	if os.IsNotExist(err) {
		return Preferences{}, nil
	}
	if err != nil {
		return Preferences{}, err
	}
	var prefs Preferences
	if err := yaml.Unmarshal(data, &prefs); err != nil {
		return Preferences{}, err
	}
	return prefs, nil
}

// SavePreferences writes prefs to the YAML preferences file, creating its
// directory if needed.
func SavePreferences(prefs Preferences) error {
	dir, file, err := CliPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(prefs)
	if err != nil {
		return err
	}
	return os.WriteFile(file, data, 0o644)
}
