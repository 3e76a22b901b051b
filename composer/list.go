package composer

import (
	"fmt"

	"github.com/lex00/wetwire-mixin-go/domain"
)

type lister struct {
	c *Composer
}

// List resolves the document at path and lists one part of its plan:
// "order" (the default) lists the mixin slots in application order,
// "bindings" the capability bindings and "pipelines" the member pipelines.
func (l *lister) List(ctx *domain.Context, path string, opts domain.ListOpts) (*domain.Result, error) {
	_, pl, failed, err := l.c.resolve(ctx, path, "")
	if err != nil || failed != nil {
		return failed, err
	}

	switch opts.Type {
	case "", "order", "mixins":
		slots := pl.Slots()
		return domain.NewResultWithData(fmt.Sprintf("%d mixin(s) in application order", len(slots)), slots), nil
	case "bindings":
		bindings := pl.Bindings()
		return domain.NewResultWithData(fmt.Sprintf("%d binding(s)", len(bindings)), bindings), nil
	case "pipelines":
		pipelines := pl.Pipelines()
		return domain.NewResultWithData(fmt.Sprintf("%d pipeline(s)", len(pipelines)), pipelines), nil
	default:
		return nil, fmt.Errorf("unknown list type %q (expected order, bindings or pipelines)", opts.Type)
	}
}
