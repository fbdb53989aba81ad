package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/folio/internal/compiler"
)

// Scenario defines a conformance test scenario: one outline, the book it
// belongs to, and what the compiled graph must look like.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// RootTitle titles the Manifestation and its root Work.
	// Defaults to the scenario name.
	RootTitle string `yaml:"root_title,omitempty"`

	// Contributors are the book's fallback creators.
	Contributors []string `yaml:"contributors,omitempty"`

	// Outline is the outline text to compile.
	Outline string `yaml:"outline"`

	// JumpPolicy is "orphan" (default) or "reject".
	JumpPolicy string `yaml:"jump_policy,omitempty"`

	// ExpectError is the compile error code the scenario must fail with.
	// When set, only assertions that hold for an empty store make sense.
	ExpectError string `yaml:"expect_error,omitempty"`

	// Assertions validate the compiled graph.
	Assertions []Assertion `yaml:"assertions"`
}

// Assertion validates one property of the compiled graph.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// From and To are heading titles (used by aggregation, sequence,
	// no_sequence). An empty From in an aggregation names the root.
	From string `yaml:"from,omitempty"`
	To   string `yaml:"to,omitempty"`

	// Title selects a heading (used by creators, realizers).
	Title string `yaml:"title,omitempty"`

	// Names are expected display names in credit order (used by creators,
	// realizers).
	Names []string `yaml:"names,omitempty"`

	// Titles is the expected heading order (used by positions).
	Titles []string `yaml:"titles,omitempty"`

	// Count is the expected number (used by work_count, orphan_count).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertWorkCount   = "work_count"
	AssertOrphanCount = "orphan_count"
	AssertAggregation = "aggregation"
	AssertSequence    = "sequence"
	AssertNoSequence  = "no_sequence"
	AssertCreators    = "creators"
	AssertRealizers   = "realizers"
	AssertPositions   = "positions"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	if scenario.RootTitle == "" {
		scenario.RootTitle = scenario.Name
	}
	return &scenario, nil
}

// LoadScenarios loads every *.yaml file in dir, sorted by file name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}
	sort.Strings(matches)

	scenarios := make([]*Scenario, 0, len(matches))
	names := make(map[string]string, len(matches))
	for _, path := range matches {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		if prev, dup := names[s.Name]; dup {
			return nil, fmt.Errorf("%s: scenario name %q already used by %s", filepath.Base(path), s.Name, prev)
		}
		names[s.Name] = filepath.Base(path)
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks required fields and assertion structure.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if strings.TrimSpace(s.Outline) == "" && s.ExpectError == "" && len(s.Assertions) == 0 {
		return fmt.Errorf("outline or assertions are required")
	}
	if _, err := compiler.ParseJumpPolicy(s.JumpPolicy); err != nil {
		return fmt.Errorf("jump_policy: %w", err)
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(a); err != nil {
			return fmt.Errorf("assertion %d: %w", i, err)
		}
	}
	return nil
}

func validateAssertion(a Assertion) error {
	switch a.Type {
	case AssertWorkCount, AssertOrphanCount:
		if a.Count < 0 {
			return fmt.Errorf("%s: count must be non-negative", a.Type)
		}
	case AssertAggregation:
		if a.To == "" {
			return fmt.Errorf("aggregation: to is required")
		}
	case AssertSequence, AssertNoSequence:
		if a.From == "" || a.To == "" {
			return fmt.Errorf("%s: from and to are required", a.Type)
		}
	case AssertCreators, AssertRealizers:
		if a.Title == "" {
			return fmt.Errorf("%s: title is required", a.Type)
		}
	case AssertPositions:
		if len(a.Titles) == 0 {
			return fmt.Errorf("positions: titles are required")
		}
	case "":
		return fmt.Errorf("type is required")
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}
