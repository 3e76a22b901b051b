package composer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lex00/wetwire-mixin-go/domain"
	"github.com/lex00/wetwire-mixin-go/plan"
)

type builder struct {
	c *Composer
}

// Build plans the declaration at path and returns the plan document as the
// result data. With an output path, from opts or the build section of
// wetwire.yaml, the document is also written there, as YAML for .yaml/.yml
// files and JSON otherwise.
func (b *builder) Build(ctx *domain.Context, path string, opts domain.BuildOpts) (*domain.Result, error) {
	result, _, err := b.c.build(ctx, path, opts)
	return result, err
}

// build is Build that also hands back the loaded project, if any.
func (c *Composer) build(ctx *domain.Context, path string, opts domain.BuildOpts) (*domain.Result, *project, error) {
	p, pl, failed, err := c.resolve(ctx, path, opts.TieBreak)
	if err != nil || failed != nil {
		return failed, p, err
	}

	if opts.Output == "" {
		opts.Output = ctx.Config.BuildOutput()
	}

	doc := pl.Document()
	msg := fmt.Sprintf("Planned %s with %d mixin(s)", doc.Target, len(doc.Order))
	if opts.Output != "" {
		data, err := encodePlan(doc, opts.Output)
		if err != nil {
			return nil, p, err
		}
		if opts.DryRun {
			msg = fmt.Sprintf("%s (dry run, %s not written)", msg, opts.Output)
		} else {
			if err := os.MkdirAll(filepath.Dir(opts.Output), 0755); err != nil {
				return nil, p, fmt.Errorf("failed to create output directory: %w", err)
			}
			if err := os.WriteFile(opts.Output, data, 0644); err != nil {
				return nil, p, fmt.Errorf("failed to write plan: %w", err)
			}
			msg = fmt.Sprintf("%s, wrote %s", msg, opts.Output)
		}
	}
	return domain.NewResultWithData(msg, doc), p, nil
}

func encodePlan(doc plan.Document, output string) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(output)) {
	case ".yaml", ".yml":
		return yaml.Marshal(doc)
	default:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	}
}
