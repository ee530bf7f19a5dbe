package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/chipmap/pkg/chipmap/classify"
	"github.com/cognicore/chipmap/pkg/chipmap/internalerr"
)

// RuleSet represents the classification rule table configuration
type RuleSet struct {
	Brand string      `yaml:"brand"`
	Rules []RuleEntry `yaml:"rules"`
}

// RuleEntry is one entry of the rule table. Pattern must have two capture
// groups: series, then level.
type RuleEntry struct {
	Name    string `yaml:"name"`
	Pattern string `yaml:"pattern"`
	Epoch   int    `yaml:"epoch"`
}

// LoadRules loads a rule table from a YAML file
//
// Format:
//
//	brand: GeForce
//	rules:
//	  - name: tier-thousands
//	    pattern: 'GeForce [A-Z]+ (\d)0(\d0)'
//	    epoch: 3
func LoadRules(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	rs, err := ParseRules(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rs, nil
}

// ParseRules decodes a YAML rule table
func ParseRules(data []byte) (*RuleSet, error) {
	var rs RuleSet
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("parse rules: %v: %w", err, internalerr.ErrInvalidConfig)
	}
	return &rs, nil
}

// DefaultRuleSet mirrors classify.DefaultRules
func DefaultRuleSet() *RuleSet {
	defaults := classify.DefaultRules()
	rs := &RuleSet{Rules: make([]RuleEntry, len(defaults))}
	for i, r := range defaults {
		rs.Rules[i] = RuleEntry{Name: r.Name, Pattern: r.Pattern.String(), Epoch: r.Epoch}
	}
	return rs
}

// Compile turns the table into classifier rules, preserving order
func (rs *RuleSet) Compile() ([]classify.Rule, error) {
	if len(rs.Rules) == 0 {
		return nil, fmt.Errorf("rule table is empty: %w", internalerr.ErrInvalidConfig)
	}

	rules := make([]classify.Rule, 0, len(rs.Rules))
	for i, entry := range rs.Rules {
		name := entry.Name
		if name == "" {
			name = fmt.Sprintf("rule-%d", i+1)
		}
		re, err := regexp.Compile(entry.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %v: %w", name, err, internalerr.ErrInvalidConfig)
		}
		r := classify.Rule{Name: name, Epoch: entry.Epoch, Pattern: re}
		if err := classify.ValidateRule(r); err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, nil
}
