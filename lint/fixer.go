package lint

import (
	"github.com/lex00/wetwire-mixin-go/declare"
	"github.com/lex00/wetwire-mixin-go/typeinfo"
)

// FixResult represents the result of attempting to fix an issue.
type FixResult struct {
	// Issue is the original lint issue.
	Issue Issue
	// Fixed indicates whether the issue was successfully fixed.
	Fixed bool
	// Error contains any error that occurred during fixing.
	Error error
}

// Fix repairs the fixable issues in in.Document in place and reports every
// issue it saw. Rules run one after another, each seeing the fixes of the
// ones before.
func Fix(in *Input, rules []Rule, cfg *Config) []FixResult {
	var results []FixResult
	for _, rule := range rules {
		issues := LintDocument(in, []Rule{rule}, cfg)
		fixable, canFix := rule.(FixableRule)

		// issues come in document order; fixing from the back keeps earlier paths valid
		ruleResults := make([]FixResult, len(issues))
		for i := len(issues) - 1; i >= 0; i-- {
			result := FixResult{Issue: issues[i]}
			if canFix && issues[i].Fixable {
				if err := fixable.Fix(in.Document, issues[i]); err != nil {
					result.Error = err
				} else {
					result.Fixed = true
				}
			}
			ruleResults[i] = result
		}
		results = append(results, ruleResults...)
	}
	return results
}

// FixFile fixes the declaration document at path and writes it back when
// anything changed.
func FixFile(path string, extra typeinfo.Provider, rules []Rule, cfg *Config) ([]FixResult, error) {
	doc, err := declare.Read(path)
	if err != nil {
		return nil, err
	}
	in, err := NewInput(doc, extra)
	if err != nil {
		return nil, err
	}

	results := Fix(in, rules, cfg)
	for _, result := range results {
		if result.Fixed {
			if err := doc.Save(path); err != nil {
				return nil, err
			}
			break
		}
	}
	return results, nil
}

// FixDir fixes every declaration document in a directory (non-recursively).
func FixDir(dir string, extra typeinfo.Provider, rules []Rule, cfg *Config) ([]FixResult, error) {
	paths, err := documents(dir)
	if err != nil {
		return nil, err
	}

	var results []FixResult
	for _, path := range paths {
		fileResults, err := FixFile(path, extra, rules, cfg)
		if err != nil {
			return nil, err
		}
		results = append(results, fileResults...)
	}
	return results, nil
}
