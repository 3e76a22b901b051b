package composer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/lex00/wetwire-mixin-go/declare"
	"github.com/lex00/wetwire-mixin-go/domain"
)

type initializer struct{}

// Init writes a wetwire.yaml and an example declaration document. Existing
// files are left alone.
func (i *initializer) Init(ctx *domain.Context, path string, opts domain.InitOpts) (*domain.Result, error) {
	dir := opts.Path
	if dir == "" {
		dir = path
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	name := opts.Name
	if name == "" {
		name = filepath.Base(abs)
	}
	target := declare.TypeID(typeName(name))

	configPath := filepath.Join(abs, domain.ConfigFilename)
	docPath := filepath.Join(abs, DocumentNames[0])
	for _, p := range []string{configPath, docPath} {
		if _, err := os.Stat(p); err == nil {
			return domain.NewErrorResult("project already initialized", domain.Error{
				Path:     p,
				Severity: "error",
				Message:  "file already exists",
				Code:     "ALREADY_EXISTS",
			}), nil
		}
	}

	config := &domain.Config{
		Domain:  "mixin",
		Version: "1",
		Lint:    &domain.LintConfig{Rules: map[string]bool{}},
		Mixin:   &domain.MixinConfig{TieBreak: "declaration"},
	}
	if err := domain.SaveConfigTo(config, configPath); err != nil {
		return nil, err
	}
	if err := sampleDocument(target).Save(docPath); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", docPath, err)
	}

	return domain.NewResultWithData(fmt.Sprintf("Initialized %s", name), map[string]any{
		"config":   configPath,
		"document": docPath,
		"target":   string(target),
	}), nil
}

// typeName turns a project name such as "order-service" into "OrderService".
func typeName(name string) string {
	var sb strings.Builder
	upper := true
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		sb.WriteRune(r)
	}
	if sb.Len() == 0 {
		return "Target"
	}
	return sb.String()
}

// sampleDocument is a small composition that plans: an auditing mixin that
// overrides Save and needs a clock, and a clock mixin that provides one.
func sampleDocument(target declare.TypeID) *declare.Document {
	save := declare.MethodSpec{Name: "Save", Signature: "func() error"}
	now := declare.MethodSpec{Name: "Now", Signature: "func() time.Time"}
	return &declare.Document{
		APIVersion: declare.DefaultAPIVersion,
		Declaration: declare.Declaration{
			Target: target,
			Mixins: []declare.MixinSlot{
				{Mixin: "Audited", Kind: declare.KindExtending, Requires: []declare.TypeID{"Clock"}},
				{Mixin: "SystemClock", Kind: declare.KindUsed},
			},
		},
		Types: []declare.TypeSpec{
			{ID: "Clock", Kind: "interface", Methods: []declare.MethodSpec{now}},
			{ID: target, Kind: "struct", Methods: []declare.MethodSpec{save}},
			{ID: "Audited", Kind: "struct", Methods: []declare.MethodSpec{save}},
			{ID: "SystemClock", Kind: "struct", Methods: []declare.MethodSpec{now}},
		},
	}
}
