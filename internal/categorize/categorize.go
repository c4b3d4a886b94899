// Package categorize assigns a category to each transaction from an ordered,
// data-driven rule list.
package categorize

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/spendlens/spendlens/internal/model"
)

//go:embed rules.yaml
var defaultRulesYAML []byte

// Rule maps description keywords or a regular expression to a category.
type Rule struct {
	Category string   `yaml:"category"`
	Keywords []string `yaml:"keywords,omitempty"`
	Regex    string   `yaml:"regex,omitempty"`
}

// RuleSet is the on-disk rules document.
type RuleSet struct {
	Rules []Rule `yaml:"rules"`
}

type compiledRule struct {
	category string
	keywords []string
	re       *regexp.Regexp
}

// Categorizer applies rules in order; the first match wins.
type Categorizer struct {
	rules []compiledRule
}

// New compiles a rule set. Rules without a category, or with neither
// keywords nor a regex, are rejected.
func New(rs RuleSet) (*Categorizer, error) {
	c := &Categorizer{rules: make([]compiledRule, 0, len(rs.Rules))}
	for i, r := range rs.Rules {
		category := strings.ToLower(strings.TrimSpace(r.Category))
		if category == "" {
			return nil, fmt.Errorf("rule %d: missing category", i+1)
		}

		cr := compiledRule{category: category}
		for _, kw := range r.Keywords {
			if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
				cr.keywords = append(cr.keywords, kw)
			}
		}
		if r.Regex != "" {
			re, err := regexp.Compile("(?i)" + r.Regex)
			if err != nil {
				return nil, fmt.Errorf("rule %d (%s): %w", i+1, category, err)
			}
			cr.re = re
		}
		if len(cr.keywords) == 0 && cr.re == nil {
			return nil, fmt.Errorf("rule %d (%s): needs keywords or regex", i+1, category)
		}
		c.rules = append(c.rules, cr)
	}
	return c, nil
}

// Default returns a Categorizer for the built-in rules.
func Default() *Categorizer {
	rs, err := ParseRules(defaultRulesYAML)
	if err != nil {
		panic("built-in rules: " + err.Error())
	}
	c, err := New(rs)
	if err != nil {
		panic("built-in rules: " + err.Error())
	}
	return c
}

// Categorize returns a new table where every row has a category. Rows that
// already carry one are left as they are.
func (c *Categorizer) Categorize(t model.Table) model.Table {
	return t.Map(func(txn model.Transaction) model.Transaction {
		if txn.Category == "" {
			txn.Category = c.Match(txn.Description)
		}
		return txn
	})
}

// Match returns the category for a description, or model.CategoryOther.
func (c *Categorizer) Match(description string) string {
	desc := strings.ToLower(description)
	for _, r := range c.rules {
		for _, kw := range r.keywords {
			if strings.Contains(desc, kw) {
				return r.category
			}
		}
		if r.re != nil && r.re.MatchString(desc) {
			return r.category
		}
	}
	return model.CategoryOther
}

// CustomCategories lists, in rule order, the categories the rules assign that
// are not part of model.Taxonomy.
func (c *Categorizer) CustomCategories() []string {
	known := make(map[string]bool)
	for _, cat := range model.Taxonomy() {
		known[cat] = true
	}
	var custom []string
	for _, r := range c.rules {
		if !known[r.category] {
			known[r.category] = true
			custom = append(custom, r.category)
		}
	}
	return custom
}

// ParseRules decodes a rules document.
func ParseRules(data []byte) (RuleSet, error) {
	var rs RuleSet
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return RuleSet{}, fmt.Errorf("parsing rules: %w", err)
	}
	return rs, nil
}

// LoadRules reads a rules file from disk.
func LoadRules(path string) (RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RuleSet{}, fmt.Errorf("reading rules: %w", err)
	}
	return ParseRules(data)
}

// Load returns a Categorizer for the rules file at path, or the built-in
// rules when path is empty.
func Load(path string) (*Categorizer, error) {
	if path == "" {
		return Default(), nil
	}
	rs, err := LoadRules(path)
	if err != nil {
		return nil, err
	}
	return New(rs)
}

// WriteDefaultRules writes the built-in rules file, comments included, so
// users can edit it.
func WriteDefaultRules(path string) error {
	if err := os.WriteFile(path, defaultRulesYAML, 0o644); err != nil {
		return fmt.Errorf("writing rules: %w", err)
	}
	return nil
}
