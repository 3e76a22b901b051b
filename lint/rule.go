package lint

import (
	"sort"
	"sync"

	"github.com/lex00/wetwire-mixin-go/declare"
	"github.com/lex00/wetwire-mixin-go/typeinfo"
)

// Input is what a rule inspects: a parsed, possibly invalid document and the
// types it refers to.
type Input struct {
	Document *declare.Document
	Types    typeinfo.Provider
}

// Rule checks one property of a declaration document.
type Rule interface {
	// ID returns the unique identifier for this rule (e.g., "MIX001").
	ID() string
	// Description returns a brief description of what the rule checks.
	Description() string
	// Check returns the issues found in the input.
	Check(in *Input) []Issue
}

// FixableRule is a Rule that can repair the issues it finds.
type FixableRule interface {
	Rule
	// Fix repairs issue in doc in place.
	Fix(doc *declare.Document, issue Issue) error
}

// RuleRegistry maintains a collection of rules.
type RuleRegistry struct {
	mu    sync.RWMutex
	rules map[string]Rule
}

// NewRuleRegistry creates a new empty rule registry.
func NewRuleRegistry() *RuleRegistry {
	return &RuleRegistry{
		rules: make(map[string]Rule),
	}
}

// DefaultRegistry returns a registry holding every built-in rule.
func DefaultRegistry() *RuleRegistry {
	r := NewRuleRegistry()
	for _, rule := range BuiltinRules() {
		r.Register(rule)
	}
	return r
}

// Register adds a rule to the registry.
// If a rule with the same ID already exists, it will be replaced.
func (r *RuleRegistry) Register(rule Rule) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules[rule.ID()] = rule
}

// Get returns the rule with the given ID, or nil if not found.
func (r *RuleRegistry) Get(id string) Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rules[id]
}

// All returns all registered rules ordered by ID.
func (r *RuleRegistry) All() []Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rules := make([]Rule, 0, len(r.rules))
	for _, rule := range r.rules {
		rules = append(rules, rule)
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].ID() < rules[j].ID() })
	return rules
}

// IDs returns all registered rule IDs in sorted order.
func (r *RuleRegistry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.rules))
	for id := range r.rules {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
