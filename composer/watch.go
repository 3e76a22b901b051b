package composer

import (
	"context"
	"errors"
	"fmt"

	"github.com/lex00/wetwire-mixin-go/declare"
	"github.com/lex00/wetwire-mixin-go/domain"
	"github.com/lex00/wetwire-mixin-go/watch"
)

type watcher struct {
	c *Composer
}

// Watch builds the document at path, then rebuilds it whenever the document
// or the Go sources its types come from change, until ctx is done. Each
// build result is passed to opts.OnResult. Cached plans of the previously
// built target are invalidated before every rebuild.
func (w *watcher) Watch(ctx *domain.Context, path string, opts domain.WatchOpts) (*domain.Result, error) {
	docPath, err := resolveDocument(path)
	if err != nil {
		return failure("cannot watch declaration", path, CodeInvalidDeclaration, err), nil
	}
	logger := w.c.logger(ctx)

	var fw *watch.Watcher
	var target declare.TypeID
	rebuild := func() {
		if target != "" {
			n := w.c.cache.InvalidateTarget(target)
			logger.Debug().Str("target", string(target)).Int("plans", n).Msg("invalidated cached plans")
		}
		result, p, err := w.c.build(ctx, docPath, opts.Build)
		if err != nil {
			result = domain.NewErrorResult("build failed", domain.Error{Path: docPath, Severity: "error", Message: err.Error()})
		}
		if p != nil {
			target = p.doc.Target
			for _, src := range p.sources {
				if err := fw.Add(src); err != nil {
					logger.Warn().Err(err).Str("path", src).Msg("cannot watch type source")
				}
			}
		}
		if opts.OnResult != nil {
			opts.OnResult(result)
		}
	}

	fw, err = watch.New(func(string) { rebuild() }, watch.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	defer fw.Close()
	if err := fw.Add(docPath); err != nil {
		return nil, err
	}

	rebuild()

	base := ctx.Context
	if base == nil {
		base = context.Background()
	}
	if err := fw.Run(base); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return nil, err
	}
	return domain.NewResult("Stopped watching " + docPath), nil
}
