package report

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fairyhunter13/ai-interview-reporter/internal/scoring"
)

// Thresholds maps role/exam text to the minimum number of real
// questions a complete interview must contain. An explicit question
// count configured on the session always wins over the table.
type Thresholds struct {
	rules       []thresholdRule
	hrMinimum   int
	defaultMin  int
}

type thresholdRule struct {
	keyword string
	minimum int
}

// DefaultThresholds returns the built-in lookup table.
func DefaultThresholds() *Thresholds {
	return &Thresholds{
		rules: []thresholdRule{
			{"neet", 8},
			{"jee", 9},
			{"cat", 7},
			{"mba", 7},
		},
		hrMinimum:  10,
		defaultMin: 8,
	}
}

// thresholdsFile is the YAML override shape:
//
//	hr: 10
//	default: 8
//	roles:
//	  - keyword: neet
//	    minimum: 8
type thresholdsFile struct {
	HR      int `yaml:"hr"`
	Default int `yaml:"default"`
	Roles   []struct {
		Keyword string `yaml:"keyword"`
		Minimum int    `yaml:"minimum"`
	} `yaml:"roles"`
}

// LoadThresholds reads a YAML override file on top of the defaults.
// Zero or missing values keep their defaults.
func LoadThresholds(path string) (*Thresholds, error) {
	t := DefaultThresholds()
	if path == "" {
		return t, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("op=thresholds.load: %w", err)
	}
	var f thresholdsFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("op=thresholds.parse: %w", err)
	}
	if f.HR > 0 {
		t.hrMinimum = f.HR
	}
	if f.Default > 0 {
		t.defaultMin = f.Default
	}
	if len(f.Roles) > 0 {
		rules := make([]thresholdRule, 0, len(f.Roles))
		for _, r := range f.Roles {
			if r.Keyword != "" && r.Minimum > 0 {
				rules = append(rules, thresholdRule{keyword: strings.ToLower(r.Keyword), minimum: r.Minimum})
			}
		}
		t.rules = rules
	}
	return t, nil
}

// For resolves the minimum question count for a session. explicit is
// the configured per-session question count (0 when unset).
func (t *Thresholds) For(role string, hint scoring.ExamHint, explicit int) int {
	if explicit > 0 {
		return explicit
	}
	if hint.IsHR() {
		return t.hrMinimum
	}
	text := strings.ToLower(role + " " + hint.ExamName)
	for _, r := range t.rules {
		if strings.Contains(text, r.keyword) {
			return r.minimum
		}
	}
	return t.defaultMin
}
