package schedule

import (
	"errors"
	"fmt"
	"strings"
)

// Rule maps a summary keyword to a category
type Rule struct {
	Keyword  string
	Category Category
}

// DefaultRules is the German keyword list. Order is priority: a summary
// matching several keywords gets the category of the first rule.
var DefaultRules = []Rule{
	{Keyword: "bio", Category: Organic},
	{Keyword: "wertstoff", Category: Recycling},
	{Keyword: "papier", Category: Paper},
	{Keyword: "rest", Category: Residual},
}

// Classifier assigns categories to event summaries by ordered keyword match
type Classifier struct {
	rules []Rule
}

// NewClassifier validates rules and returns a classifier using them in order
func NewClassifier(rules []Rule) (*Classifier, error) {
	if len(rules) == 0 {
		return nil, errors.New("no classification rules")
	}
	normalized := make([]Rule, 0, len(rules))
	for i, r := range rules {
		keyword := strings.ToLower(strings.TrimSpace(r.Keyword))
		if keyword == "" {
			return nil, fmt.Errorf("rule %d: empty keyword", i)
		}
		if !r.Category.Valid() {
			return nil, fmt.Errorf("rule %d (%s): unknown category %q", i, r.Keyword, r.Category)
		}
		normalized = append(normalized, Rule{Keyword: keyword, Category: r.Category})
	}
	return &Classifier{rules: normalized}, nil
}

// Classify returns the category of the first rule whose keyword occurs in
// summary, ignoring case. ok is false when nothing matches.
func (c *Classifier) Classify(summary string) (category Category, ok bool) {
	lower := strings.ToLower(summary)
	for _, r := range c.rules {
		if strings.Contains(lower, r.Keyword) {
			return r.Category, true
		}
	}
	return "", false
}

// Rules returns a copy of the normalized rule list
func (c *Classifier) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}
