package lint

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lex00/wetwire-mixin-go/declare"
	"github.com/lex00/wetwire-mixin-go/typeinfo"
)

// NewInput prepares doc for linting. Types declared in the document take
// precedence over extra.
func NewInput(doc *declare.Document, extra typeinfo.Provider) (*Input, error) {
	static, err := typeinfo.FromSpecs(doc.Types)
	if err != nil {
		return nil, err
	}
	return &Input{Document: doc, Types: typeinfo.Chain(static, extra)}, nil
}

// LintDocument runs rules on the input and returns the issues that pass the
// config filters.
func LintDocument(in *Input, rules []Rule, cfg *Config) []Issue {
	var issues []Issue

	for _, rule := range rules {
		if cfg != nil && cfg.IsRuleDisabled(rule.ID()) {
			continue
		}
		for _, issue := range rule.Check(in) {
			if issue.File == "" {
				issue.File = in.Document.Path
			}
			if cfg != nil && !cfg.ShouldReport(issue) {
				continue
			}
			issues = append(issues, issue)
		}
	}

	return issues
}

// LintFile lints the declaration document at path. The document is parsed but
// not validated, so invalid declarations are reported as issues.
func LintFile(path string, extra typeinfo.Provider, rules []Rule, cfg *Config) ([]Issue, error) {
	doc, err := declare.Read(path)
	if err != nil {
		return nil, err
	}
	in, err := NewInput(doc, extra)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return LintDocument(in, rules, cfg), nil
}

// LintDir lints every declaration document in a directory (non-recursively).
// Files with other extensions are skipped.
func LintDir(dir string, extra typeinfo.Provider, rules []Rule, cfg *Config) ([]Issue, error) {
	paths, err := documents(dir)
	if err != nil {
		return nil, err
	}

	var issues []Issue
	for _, path := range paths {
		fileIssues, err := LintFile(path, extra, rules, cfg)
		if err != nil {
			return nil, err
		}
		issues = append(issues, fileIssues...)
	}
	return issues, nil
}

// documents lists the declaration documents in dir.
func documents(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if _, err := declare.FormatFromPath(path); err != nil {
			continue
		}
		paths = append(paths, path)
	}
	return paths, nil
}
