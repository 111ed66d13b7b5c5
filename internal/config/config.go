// Package config loads the optional run configuration file. Flags
// override anything set here; a missing file simply applies defaults.
package config

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
)

// Matching policies accepted by the policy field.
const (
	PolicyStrict   = "strict"
	PolicyFuzzyEnd = "fuzzy-end"
)

// Config is the .deideval.yml schema. Zero values mean "not set".
type Config struct {
	// Policy selects the comparison strategy: strict or fuzzy-end.
	Policy string `yaml:"policy"`
	// Tolerance is the permitted end-offset discrepancy under the
	// fuzzy-end policy.
	Tolerance int `yaml:"tolerance"`

	// Pattern matches annotation files under a corpus directory.
	Pattern string `yaml:"pattern"`
	// Ignore drops matching files while scanning.
	Ignore []string `yaml:"ignore"`

	// Filter holds default filter values for the spans track.
	Filter      []string `yaml:"filter"`
	Conjunctive bool     `yaml:"conjunctive"`
	Invert      bool     `yaml:"invert"`

	// Format selects the spans report format: text or json.
	Format string `yaml:"format"`
}

// Validate checks the fields a file may set. It is called after
// loading, before any flag overrides apply.
func (c *Config) Validate() error {
	switch c.Policy {
	case "", PolicyStrict, PolicyFuzzyEnd:
	default:
		return fmt.Errorf("policy must be %q or %q, got %q",
			PolicyStrict, PolicyFuzzyEnd, c.Policy)
	}
	if c.Tolerance < 0 {
		return fmt.Errorf("tolerance must not be negative, got %d", c.Tolerance)
	}
	if c.Pattern != "" && !doublestar.ValidatePattern(c.Pattern) {
		return fmt.Errorf("invalid corpus pattern %q", c.Pattern)
	}
	switch c.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("format must be text or json, got %q", c.Format)
	}
	return nil
}
