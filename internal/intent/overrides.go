package intent

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// matcherOverride is one entry in an overrides file. A label matching a
// built-in matcher replaces it; a new label is appended.
type matcherOverride struct {
	Label       string   `yaml:"label"`
	Pattern     string   `yaml:"pattern"`
	Description string   `yaml:"description"`
	Needs       []string `yaml:"needs"`
	Priority    int      `yaml:"priority"`
	List        bool     `yaml:"list"`
}

type overridesFile struct {
	Matchers []matcherOverride `yaml:"matchers"`
}

// LoadOverrides reads a YAML overrides file and applies it to the built-in
// matcher set. Path "" yields the defaults unchanged.
func LoadOverrides(path string) ([]Matcher, error) {
	matchers := DefaultMatchers()
	if path == "" {
		return matchers, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read intent overrides: %w", err)
	}
	var f overridesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse intent overrides: %w", err)
	}

	for _, o := range f.Matchers {
		if o.Label == "" || o.Pattern == "" {
			return nil, fmt.Errorf("intent override missing label or pattern")
		}
		re, err := regexp.Compile(o.Pattern)
		if err != nil {
			return nil, fmt.Errorf("intent override %s: %w", o.Label, err)
		}
		m := Matcher{
			Label:       o.Label,
			Pattern:     re,
			Description: o.Description,
			Needs:       o.Needs,
			Priority:    o.Priority,
			List:        o.List,
		}
		replaced := false
		for i := range matchers {
			if matchers[i].Label == o.Label {
				matchers[i] = m
				replaced = true
				break
			}
		}
		if !replaced {
			matchers = append(matchers, m)
		}
	}
	return matchers, nil
}
