package composer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/lex00/wetwire-mixin-go/cache"
	"github.com/lex00/wetwire-mixin-go/declare"
	"github.com/lex00/wetwire-mixin-go/domain"
	"github.com/lex00/wetwire-mixin-go/logging"
	"github.com/lex00/wetwire-mixin-go/order"
	"github.com/lex00/wetwire-mixin-go/plan"
	"github.com/lex00/wetwire-mixin-go/typeinfo"
)

// DocumentNames are the file names looked up when a command is given a
// directory instead of a declaration document.
var DocumentNames = []string{"mixin.yaml", "mixin.yml", "mixin.toml", "mixin.json"}

// project is a loaded declaration with the type information and planner
// settings that apply to it.
type project struct {
	doc      *declare.Document
	types    typeinfo.Provider
	sources  []string
	digest   string
	tieBreak string
	logger   zerolog.Logger
}

// resolveDocument maps a command path to a declaration document.
func resolveDocument(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return path, nil
	}
	for _, name := range DocumentNames {
		candidate := filepath.Join(path, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no declaration document (%s) in %s", DocumentNames[0], path)
}

// logger builds the logger for one operation from the configured level.
func (c *Composer) logger(ctx *domain.Context) zerolog.Logger {
	level := logging.Verbose(ctx.MixinConfig().LogLevel, ctx.Verbose)
	logger, err := logging.New(c.logOut, level)
	if err != nil {
		fallback, _ := logging.New(c.logOut, "")
		fallback.Warn().Err(err).Msg("ignoring configured log level")
		return fallback
	}
	return logger
}

// extraTypes parses the Go source directories named in the configuration.
func extraTypes(ctx *domain.Context) (*typeinfo.GoSource, error) {
	dirs := ctx.MixinConfig().Types
	if len(dirs) == 0 {
		return nil, nil
	}
	src, err := typeinfo.ParseDirs(dirs, typeinfo.SourceOptions{Recursive: true})
	if err != nil {
		return nil, fmt.Errorf("reading types: %w", err)
	}
	return src, nil
}

// load reads and validates the document at path. A failure the user can fix
// is returned as a failed result; the error is reserved for everything else.
func (c *Composer) load(ctx *domain.Context, path, tieBreak string) (*project, *domain.Result, error) {
	docPath, err := resolveDocument(path)
	if err != nil {
		return nil, failure("cannot load declaration", path, "INVALID_DECLARATION", err), nil
	}
	doc, err := declare.Load(docPath)
	if err != nil {
		return nil, failure("cannot load declaration", docPath, "INVALID_DECLARATION", err), nil
	}

	static, err := typeinfo.FromSpecs(doc.Types)
	if err != nil {
		return nil, failure("invalid type section", docPath, "INVALID_TYPES", err), nil
	}
	src, err := extraTypes(ctx)
	if err != nil {
		return nil, failure("invalid Go types", path, "INVALID_TYPES", err), nil
	}

	p := &project{
		doc:      doc,
		tieBreak: tieBreak,
		logger:   c.logger(ctx).With().Str("document", docPath).Logger(),
	}
	if p.tieBreak == "" {
		p.tieBreak = ctx.MixinConfig().TieBreak
	}
	if _, err := order.Named[declare.TypeID](p.tieBreak); err != nil {
		return nil, failure("invalid configuration", docPath, "INVALID_TIE_BREAK", err), nil
	}
	p.types, p.digest = static, static.Digest()
	if src != nil {
		p.types = typeinfo.Chain(static, src)
		p.sources = src.Files
		p.digest += "+" + src.Digest()
	}
	return p, nil, nil
}

// key is the cache key of the project's plan. Plans built with different tie
// breakers or different type information are cached apart.
func (p *project) key() cache.Key {
	return cache.KeyOf(&p.doc.Declaration, p.tieBreak, p.digest)
}

// plan returns the plan of the project, building it through the cache.
func (c *Composer) plan(ctx *domain.Context, p *project) (*plan.Plan, error) {
	tieBreak, err := order.Named[declare.TypeID](p.tieBreak)
	if err != nil {
		return nil, err
	}
	planner := plan.NewPlanner(p.types,
		plan.WithTieBreaker(tieBreak),
		plan.WithLogger(p.logger),
	)

	base := ctx.Context
	if base == nil {
		base = context.Background()
	}
	return c.cache.Get(base, p.key(), func() (*plan.Plan, error) {
		return planner.Plan(&p.doc.Declaration)
	})
}

// resolve loads and plans the document at path. Planning failures come back
// as a failed result; cancellation of ctx as an error.
func (c *Composer) resolve(ctx *domain.Context, path, tieBreak string) (*project, *plan.Plan, *domain.Result, error) {
	p, failed, err := c.load(ctx, path, tieBreak)
	if err != nil || failed != nil {
		return nil, nil, failed, err
	}
	pl, err := c.plan(ctx, p)
	if err != nil {
		if ctx.Context != nil && ctx.Err() != nil {
			return p, nil, nil, err
		}
		return p, nil, planFailure(p.doc.Path, err), nil
	}
	return p, pl, nil, nil
}
