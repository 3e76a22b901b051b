package composer

import (
	"fmt"
	"os"

	"github.com/lex00/wetwire-mixin-go/domain"
	"github.com/lex00/wetwire-mixin-go/lint"
	"github.com/lex00/wetwire-mixin-go/typeinfo"
)

type linter struct {
	c *Composer
}

// Lint checks the document at path, or every document in a directory.
// Rules disabled in wetwire.yaml are skipped along with opts.Disable.
// The result fails when an error-severity issue remains.
func (l *linter) Lint(ctx *domain.Context, path string, opts domain.LintOpts) (*domain.Result, error) {
	cfg := &lint.Config{
		DisabledRules: append(append([]string(nil), opts.Disable...), ctx.Config.DisabledRules()...),
		MinSeverity:   lint.SeverityInfo,
	}
	src, err := extraTypes(ctx)
	if err != nil {
		return nil, err
	}
	var extra typeinfo.Provider
	if src != nil {
		extra = src
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("lint %s: %w", path, err)
	}
	rules := lint.DefaultRegistry().All()

	if opts.Fix {
		var results []lint.FixResult
		if info.IsDir() {
			results, err = lint.FixDir(path, extra, rules, cfg)
		} else {
			results, err = lint.FixFile(path, extra, rules, cfg)
		}
		if err != nil {
			return nil, err
		}
		return fixResult(results), nil
	}

	var issues []lint.Issue
	if info.IsDir() {
		issues, err = lint.LintDir(path, extra, rules, cfg)
	} else {
		issues, err = lint.LintFile(path, extra, rules, cfg)
	}
	if err != nil {
		return nil, err
	}
	return issueResult(issues, fmt.Sprintf("%d issue(s) found", len(issues))), nil
}

// issueError converts a lint issue to a domain error.
func issueError(issue lint.Issue) domain.Error {
	msg := issue.Message
	if issue.Path != "" {
		msg = issue.Path + ": " + msg
	}
	if issue.Suggestion != "" {
		msg += " (" + issue.Suggestion + ")"
	}
	return domain.Error{
		Path:     issue.File,
		Severity: issue.Severity.String(),
		Message:  msg,
		Code:     issue.Rule,
	}
}

func issueResult(issues []lint.Issue, msg string) *domain.Result {
	if len(issues) == 0 {
		return domain.NewResult("No issues found")
	}
	errs := make([]domain.Error, len(issues))
	failed := false
	for i, issue := range issues {
		errs[i] = issueError(issue)
		if issue.Severity == lint.SeverityError {
			failed = true
		}
	}
	return &domain.Result{Success: !failed, Message: msg, Errors: errs}
}

func fixResult(results []lint.FixResult) *domain.Result {
	fixed := 0
	var remaining []lint.Issue
	for _, r := range results {
		if r.Fixed {
			fixed++
			continue
		}
		remaining = append(remaining, r.Issue)
	}
	result := issueResult(remaining, fmt.Sprintf("Fixed %d issue(s), %d remaining", fixed, len(remaining)))
	if len(remaining) == 0 {
		result.Message = fmt.Sprintf("Fixed %d issue(s)", fixed)
	}
	return result
}
