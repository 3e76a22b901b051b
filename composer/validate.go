package composer

import (
	"fmt"

	"github.com/lex00/wetwire-mixin-go/domain"
	"github.com/lex00/wetwire-mixin-go/lint"
)

type validator struct {
	c *Composer
}

// ValidationSummary is the data of a successful validation.
type ValidationSummary struct {
	Target    string `json:"target" yaml:"target"`
	Mixins    int    `json:"mixins" yaml:"mixins"`
	Pipelines int    `json:"pipelines" yaml:"pipelines"`
	Bindings  int    `json:"bindings" yaml:"bindings"`
}

// Validate checks that a plan can be built for the document at path. In
// strict mode lint warnings fail the validation as well.
func (v *validator) Validate(ctx *domain.Context, path string, opts domain.ValidateOpts) (*domain.Result, error) {
	p, pl, failed, err := v.c.resolve(ctx, path, "")
	if err != nil || failed != nil {
		return failed, err
	}

	if opts.Strict {
		in, err := lint.NewInput(p.doc, p.types)
		if err != nil {
			return nil, err
		}
		cfg := &lint.Config{
			DisabledRules: ctx.Config.DisabledRules(),
			MinSeverity:   lint.SeverityWarning,
		}
		if issues := lint.LintDocument(in, lint.DefaultRegistry().All(), cfg); len(issues) > 0 {
			result := issueResult(issues, fmt.Sprintf("%d lint issue(s) in strict mode", len(issues)))
			result.Success = false
			return result, nil
		}
	}

	summary := ValidationSummary{
		Target:    string(pl.Target()),
		Mixins:    len(pl.Order()),
		Pipelines: len(pl.Pipelines()),
		Bindings:  len(pl.Bindings()),
	}
	return domain.NewResultWithData(fmt.Sprintf("%s is valid", summary.Target), summary), nil
}
