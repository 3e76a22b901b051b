package composer

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/lex00/wetwire-mixin-go/cache"
	"github.com/lex00/wetwire-mixin-go/declare"
	"github.com/lex00/wetwire-mixin-go/domain"
	"github.com/lex00/wetwire-mixin-go/plan"
)

func newComposer(t *testing.T) *Composer {
	t.Helper()
	c, err := cache.New()
	require.NoError(t, err)
	cp, err := New(WithCache(c), WithLogOutput(io.Discard))
	require.NoError(t, err)
	return cp
}

func newContext(dir string) *domain.Context {
	return domain.NewContext(context.Background(), dir).WithConfig(&domain.Config{})
}

func writeDocument(t *testing.T, dir string, doc *declare.Document) string {
	t.Helper()
	path := filepath.Join(dir, DocumentNames[0])
	require.NoError(t, doc.Save(path))
	return path
}

func methods(names ...string) []declare.MethodSpec {
	out := make([]declare.MethodSpec, len(names))
	for i, n := range names {
		out[i] = declare.MethodSpec{Name: n, Signature: "func()"}
	}
	return out
}

// circularDocument declares A -> B -> C -> A through capabilities RB, RC, RA.
func circularDocument() *declare.Document {
	return &declare.Document{
		APIVersion: declare.DefaultAPIVersion,
		Declaration: declare.Declaration{
			Target: "T",
			Mixins: []declare.MixinSlot{
				{Mixin: "A", Requires: []declare.TypeID{"RB"}},
				{Mixin: "B", Requires: []declare.TypeID{"RC"}},
				{Mixin: "C", Requires: []declare.TypeID{"RA"}},
			},
		},
		Types: []declare.TypeSpec{
			{ID: "T", Kind: "struct"},
			{ID: "RA", Kind: "interface", Methods: methods("DoA")},
			{ID: "RB", Kind: "interface", Methods: methods("DoB")},
			{ID: "RC", Kind: "interface", Methods: methods("DoC")},
			{ID: "A", Kind: "struct", Methods: methods("DoA")},
			{ID: "B", Kind: "struct", Methods: methods("DoB")},
			{ID: "C", Kind: "struct", Methods: methods("DoC")},
		},
	}
}

func codes(errs []domain.Error) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Code
	}
	return out
}

func TestDomainIdentity(t *testing.T) {
	c := newComposer(t)
	assert.Equal(t, "mixin", c.Name())
	assert.NotEmpty(t, c.Version())

	root := domain.Run(c)
	assert.Equal(t, "wetwire-mixin", root.Use)
	assert.Len(t, root.Commands(), 8)
}

func TestBuildPlansDocument(t *testing.T) {
	dir := t.TempDir()
	writeDocument(t, dir, sampleDocument("Order"))
	c := newComposer(t)

	result, err := c.Builder().Build(newContext(dir), dir, domain.BuildOpts{})
	require.NoError(t, err)
	require.True(t, result.Success, "%+v", result.Errors)

	doc, ok := result.Data.(plan.Document)
	require.True(t, ok)
	assert.Equal(t, declare.TypeID("Order"), doc.Target)
	assert.Equal(t, []declare.TypeID{"SystemClock", "Audited"}, doc.Order)

	require.Len(t, doc.Bindings, 1)
	assert.Equal(t, declare.TypeID("Clock"), doc.Bindings[0].Capability)
	assert.Equal(t, declare.TypeID("SystemClock"), doc.Bindings[0].Provider)
	assert.Equal(t, plan.ProviderMixin, doc.Bindings[0].Kind)

	require.Len(t, doc.Pipelines, 1)
	assert.Equal(t, "Save", doc.Pipelines[0].Key.Name)
	require.Len(t, doc.Pipelines[0].Links, 2)
	assert.Equal(t, declare.TypeID("Order"), doc.Pipelines[0].Links[0].Owner)
	assert.Equal(t, declare.TypeID("Audited"), doc.Pipelines[0].Links[1].Owner)
}

func TestBuildUsesCache(t *testing.T) {
	dir := t.TempDir()
	writeDocument(t, dir, sampleDocument("Order"))
	c := newComposer(t)
	ctx := newContext(dir)

	for i := 0; i < 2; i++ {
		result, err := c.Builder().Build(ctx, dir, domain.BuildOpts{})
		require.NoError(t, err)
		require.True(t, result.Success)
	}
	assert.Equal(t, 1, c.Cache().Len())

	result, err := c.Builder().Build(ctx, dir, domain.BuildOpts{TieBreak: "lexical"})
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, 2, c.Cache().Len(), "tie breakers are cached apart")

	assert.Equal(t, 2, c.Cache().InvalidateTarget("Order"))
}

func TestBuildWritesOutput(t *testing.T) {
	dir := t.TempDir()
	writeDocument(t, dir, sampleDocument("Order"))
	c := newComposer(t)
	ctx := newContext(dir)

	jsonOut := filepath.Join(dir, "out", "plan.json")
	result, err := c.Builder().Build(ctx, dir, domain.BuildOpts{Output: jsonOut})
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Contains(t, result.Message, "wrote")

	data, err := os.ReadFile(jsonOut)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "Order", decoded["target"])
	assert.Equal(t, []any{"SystemClock", "Audited"}, decoded["order"])

	yamlOut := filepath.Join(dir, "plan.yaml")
	_, err = c.Builder().Build(ctx, dir, domain.BuildOpts{Output: yamlOut})
	require.NoError(t, err)
	data, err = os.ReadFile(yamlOut)
	require.NoError(t, err)
	decoded = nil
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, "Order", decoded["target"])

	dryOut := filepath.Join(dir, "dry.json")
	result, err = c.Builder().Build(ctx, dir, domain.BuildOpts{Output: dryOut, DryRun: true})
	require.NoError(t, err)
	assert.Contains(t, result.Message, "dry run")
	assert.NoFileExists(t, dryOut)
}

func TestBuildOutputFromConfig(t *testing.T) {
	dir := t.TempDir()
	writeDocument(t, dir, sampleDocument("Order"))
	c := newComposer(t)

	out := filepath.Join(dir, "plans", "order.yaml")
	ctx := domain.NewContext(context.Background(), dir).WithConfig(&domain.Config{
		Build: &domain.BuildConfig{Output: out},
	})
	result, err := c.Builder().Build(ctx, dir, domain.BuildOpts{})
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Contains(t, result.Message, "wrote "+out)
	assert.FileExists(t, out)

	flagOut := filepath.Join(dir, "flag.json")
	_, err = c.Builder().Build(ctx, dir, domain.BuildOpts{Output: flagOut})
	require.NoError(t, err)
	assert.FileExists(t, flagOut)
}

func TestBuildFailures(t *testing.T) {
	unresolved := &declare.Document{
		Declaration: declare.Declaration{
			Target: "T",
			Mixins: []declare.MixinSlot{{Mixin: "M", Requires: []declare.TypeID{"R1", "R2"}}},
		},
		Types: []declare.TypeSpec{
			{ID: "T", Kind: "struct"},
			{ID: "M", Kind: "struct"},
			{ID: "R1", Kind: "interface", Methods: methods("X")},
			{ID: "R2", Kind: "interface", Methods: methods("Y")},
		},
	}
	self := &declare.Document{
		Declaration: declare.Declaration{
			Target: "T",
			Mixins: []declare.MixinSlot{{Mixin: "M", Requires: []declare.TypeID{"M"}}},
		},
	}

	tests := []struct {
		name    string
		doc     *declare.Document
		message string
		codes   []string
	}{
		{"circular", circularDocument(), "planning failed before mixins ordered", []string{CodeCircularDependency}},
		{"unresolved", unresolved, "planning failed before plan built", []string{CodeUnresolvedRequirement, CodeUnresolvedRequirement}},
		{"self dependency", self, "planning failed before graph built", []string{CodeSelfDependency}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := writeDocument(t, dir, tt.doc)
			c := newComposer(t)

			result, err := c.Builder().Build(newContext(dir), path, domain.BuildOpts{})
			require.NoError(t, err)
			assert.False(t, result.Success)
			assert.Equal(t, tt.message, result.Message)
			assert.Equal(t, tt.codes, codes(result.Errors))
			for _, e := range result.Errors {
				assert.Equal(t, path, e.Path)
			}
			assert.Zero(t, c.Cache().Len(), "failed plans are not published")
		})
	}
}

func TestBuildRejectsInvalidInput(t *testing.T) {
	dir := t.TempDir()
	c := newComposer(t)
	ctx := newContext(dir)

	result, err := c.Builder().Build(ctx, dir, domain.BuildOpts{})
	require.NoError(t, err)
	assert.Equal(t, []string{CodeInvalidDeclaration}, codes(result.Errors), "no document in directory")

	path := filepath.Join(dir, DocumentNames[0])
	require.NoError(t, os.WriteFile(path, []byte("mixins:\n  - mixin: M\n"), 0644))
	result, err = c.Builder().Build(ctx, path, domain.BuildOpts{})
	require.NoError(t, err)
	assert.Equal(t, []string{CodeInvalidDeclaration}, codes(result.Errors), "missing target")

	writeDocument(t, dir, sampleDocument("Order"))
	result, err = c.Builder().Build(ctx, path, domain.BuildOpts{TieBreak: "random"})
	require.NoError(t, err)
	assert.Equal(t, []string{"INVALID_TIE_BREAK"}, codes(result.Errors))
}

func TestBuildTieBreakFromConfig(t *testing.T) {
	dir := t.TempDir()
	doc := &declare.Document{
		Declaration: declare.Declaration{
			Target: "T",
			Mixins: []declare.MixinSlot{{Mixin: "Zeta"}, {Mixin: "Alpha"}},
		},
	}
	writeDocument(t, dir, doc)
	c := newComposer(t)

	result, err := c.Builder().Build(newContext(dir), dir, domain.BuildOpts{})
	require.NoError(t, err)
	assert.Equal(t, []declare.TypeID{"Zeta", "Alpha"}, result.Data.(plan.Document).Order)

	ctx := domain.NewContext(context.Background(), dir).WithConfig(&domain.Config{
		Mixin: &domain.MixinConfig{TieBreak: "lexical"},
	})
	result, err = c.Builder().Build(ctx, dir, domain.BuildOpts{})
	require.NoError(t, err)
	assert.Equal(t, []declare.TypeID{"Alpha", "Zeta"}, result.Data.(plan.Document).Order)
}

func TestBuildReadsGoTypes(t *testing.T) {
	dir := t.TempDir()
	typesDir := filepath.Join(dir, "types")
	require.NoError(t, os.MkdirAll(typesDir, 0755))
	src := `package shop

type Clock interface {
	Now() int64
}

type Order struct{}

type SystemClock struct{}

func (SystemClock) Now() int64 { return 0 }

type Stamped struct{}
`
	require.NoError(t, os.WriteFile(filepath.Join(typesDir, "shop.go"), []byte(src), 0644))

	doc := &declare.Document{
		Declaration: declare.Declaration{
			Target: "Order",
			Mixins: []declare.MixinSlot{
				{Mixin: "Stamped", Requires: []declare.TypeID{"Clock"}},
				{Mixin: "SystemClock"},
			},
		},
	}
	writeDocument(t, dir, doc)
	c := newComposer(t)

	ctx := domain.NewContext(context.Background(), dir).WithConfig(&domain.Config{
		Mixin: &domain.MixinConfig{Types: []string{typesDir}},
	})
	result, err := c.Builder().Build(ctx, dir, domain.BuildOpts{})
	require.NoError(t, err)
	require.True(t, result.Success, "%+v", result.Errors)
	assert.Equal(t, []declare.TypeID{"SystemClock", "Stamped"}, result.Data.(plan.Document).Order)

	result, err = c.Builder().Build(newContext(dir), dir, domain.BuildOpts{TieBreak: "declaration"})
	require.NoError(t, err)
	assert.False(t, result.Success, "Clock is unknown without the Go sources")
}

// sharedDeclaration declares M1 requiring R, with M2 implementing R only when
// implemented is set.
func sharedDeclaration(implemented bool) *declare.Document {
	m2 := declare.TypeSpec{ID: "M2", Kind: "struct"}
	if implemented {
		m2.Methods = methods("Get")
	}
	return &declare.Document{
		Declaration: declare.Declaration{
			Target: "T",
			Mixins: []declare.MixinSlot{
				{Mixin: "M1", Requires: []declare.TypeID{"R"}},
				{Mixin: "M2"},
			},
		},
		Types: []declare.TypeSpec{
			{ID: "T", Kind: "struct"},
			{ID: "R", Kind: "interface", Methods: methods("Get")},
			{ID: "M1", Kind: "struct"},
			m2,
		},
	}
}

func TestBuildCacheTracksTypeSection(t *testing.T) {
	implemented, missing := t.TempDir(), t.TempDir()
	writeDocument(t, implemented, sharedDeclaration(true))
	writeDocument(t, missing, sharedDeclaration(false))
	c := newComposer(t)

	result, err := c.Builder().Build(newContext(implemented), implemented, domain.BuildOpts{})
	require.NoError(t, err)
	require.True(t, result.Success, "%+v", result.Errors)

	result, err = c.Builder().Build(newContext(missing), missing, domain.BuildOpts{})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, []string{"UNRESOLVED_REQUIREMENT"}, codes(result.Errors))
	assert.Equal(t, 1, c.Cache().Len())
}

func TestBuildCacheTracksGoTypes(t *testing.T) {
	dir := t.TempDir()
	typesDir := filepath.Join(dir, "types")
	require.NoError(t, os.MkdirAll(typesDir, 0755))
	writeSource := func(body string) {
		src := "package shop\n\ntype R interface {\n\tGet()\n}\n\ntype T struct{}\n\ntype M1 struct{}\n\ntype M2 struct{}\n" + body
		require.NoError(t, os.WriteFile(filepath.Join(typesDir, "shop.go"), []byte(src), 0644))
	}
	doc := sharedDeclaration(true)
	doc.Types = nil
	writeDocument(t, dir, doc)
	c := newComposer(t)
	ctx := domain.NewContext(context.Background(), dir).WithConfig(&domain.Config{
		Mixin: &domain.MixinConfig{Types: []string{typesDir}},
	})

	writeSource("\nfunc (M2) Get() {}\n")
	result, err := c.Builder().Build(ctx, dir, domain.BuildOpts{})
	require.NoError(t, err)
	require.True(t, result.Success, "%+v", result.Errors)

	writeSource("")
	result, err = c.Builder().Build(ctx, dir, domain.BuildOpts{})
	require.NoError(t, err)
	assert.False(t, result.Success, "a changed Go type is not served from the cache")
	assert.Equal(t, []string{"UNRESOLVED_REQUIREMENT"}, codes(result.Errors))

	require.NoError(t, os.WriteFile(filepath.Join(typesDir, "more.go"), []byte("package shop\n\ntype M2 interface{}\n"), 0644))
	result, err = c.Builder().Build(ctx, dir, domain.BuildOpts{})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, []string{"INVALID_TYPES"}, codes(result.Errors))
	assert.Contains(t, result.Errors[0].Message, "type M2 declared twice")
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	writeDocument(t, dir, sampleDocument("Order"))
	c := newComposer(t)

	result, err := c.Validator().Validate(newContext(dir), dir, domain.ValidateOpts{})
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, ValidationSummary{Target: "Order", Mixins: 2, Pipelines: 1, Bindings: 1}, result.Data)

	bad := t.TempDir()
	writeDocument(t, bad, circularDocument())
	result, err = c.Validator().Validate(newContext(bad), bad, domain.ValidateOpts{})
	require.NoError(t, err)
	assert.False(t, result.Success)
}

func TestValidateStrict(t *testing.T) {
	dir := t.TempDir()
	doc := sampleDocument("Order")
	// Ghost is undescribed and only satisfied nominally by the Ghost mixin.
	doc.Mixins[0].Requires = append(doc.Mixins[0].Requires, "Ghost")
	doc.Mixins = append(doc.Mixins, declare.MixinSlot{Mixin: "Ghost"})
	writeDocument(t, dir, doc)
	c := newComposer(t)

	result, err := c.Validator().Validate(newContext(dir), dir, domain.ValidateOpts{})
	require.NoError(t, err)
	assert.True(t, result.Success)

	result, err = c.Validator().Validate(newContext(dir), dir, domain.ValidateOpts{Strict: true})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, []string{"MIX004"}, codes(result.Errors))

	ctx := domain.NewContext(context.Background(), dir).WithConfig(&domain.Config{
		Lint: &domain.LintConfig{Rules: map[string]bool{"MIX004": false}},
	})
	result, err = c.Validator().Validate(ctx, dir, domain.ValidateOpts{Strict: true})
	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	writeDocument(t, dir, sampleDocument("Order"))
	c := newComposer(t)
	ctx := newContext(dir)

	result, err := c.Lister().List(ctx, dir, domain.ListOpts{})
	require.NoError(t, err)
	slots, ok := result.Data.([]declare.MixinSlot)
	require.True(t, ok)
	require.Len(t, slots, 2)
	assert.Equal(t, declare.TypeID("SystemClock"), slots[0].Mixin)
	assert.Equal(t, declare.KindUsed, slots[0].Kind)

	result, err = c.Lister().List(ctx, dir, domain.ListOpts{Type: "bindings"})
	require.NoError(t, err)
	assert.Len(t, result.Data, 1)

	result, err = c.Lister().List(ctx, dir, domain.ListOpts{Type: "pipelines"})
	require.NoError(t, err)
	assert.Len(t, result.Data, 1)

	_, err = c.Lister().List(ctx, dir, domain.ListOpts{Type: "capabilities"})
	assert.Error(t, err)
}

func TestLint(t *testing.T) {
	dir := t.TempDir()
	doc := sampleDocument("Order")
	doc.Mixins[0].Requires = append(doc.Mixins[0].Requires, "Clock")
	path := writeDocument(t, dir, doc)
	c := newComposer(t)
	ctx := newContext(dir)

	result, err := c.Linter().Lint(ctx, path, domain.LintOpts{})
	require.NoError(t, err)
	assert.True(t, result.Success, "info issues do not fail linting")
	require.Equal(t, []string{"MIX007"}, codes(result.Errors))
	assert.Equal(t, "info", result.Errors[0].Severity)
	assert.Equal(t, path, result.Errors[0].Path)
	assert.Contains(t, result.Errors[0].Message, "mixins[0].requires[1]")

	result, err = c.Linter().Lint(ctx, dir, domain.LintOpts{Disable: []string{"MIX007"}})
	require.NoError(t, err)
	assert.Empty(t, result.Errors)

	result, err = c.Linter().Lint(ctx, path, domain.LintOpts{Fix: true})
	require.NoError(t, err)
	assert.Equal(t, "Fixed 1 issue(s)", result.Message)

	fixed, err := declare.Load(path)
	require.NoError(t, err)
	assert.Equal(t, []declare.TypeID{"Clock"}, fixed.Mixins[0].Requires)
}

func TestLintReportsErrors(t *testing.T) {
	dir := t.TempDir()
	doc := sampleDocument("Order")
	doc.Mixins[0].Requires = append(doc.Mixins[0].Requires, "Audited")
	writeDocument(t, dir, doc)
	c := newComposer(t)

	result, err := c.Linter().Lint(newContext(dir), dir, domain.LintOpts{})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, codes(result.Errors), "MIX003")
}

func TestInit(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "order-service")
	c := newComposer(t)

	result, err := c.Initializer().Init(newContext("."), ".", domain.InitOpts{Path: dir})
	require.NoError(t, err)
	require.True(t, result.Success)

	config, err := domain.LoadConfigFile(filepath.Join(dir, domain.ConfigFilename))
	require.NoError(t, err)
	assert.Equal(t, "mixin", config.Domain)
	require.NotNil(t, config.Mixin)
	assert.Equal(t, "declaration", config.Mixin.TieBreak)

	built, err := c.Builder().Build(newContext(dir), dir, domain.BuildOpts{})
	require.NoError(t, err)
	require.True(t, built.Success, "%+v", built.Errors)
	assert.Equal(t, declare.TypeID("OrderService"), built.Data.(plan.Document).Target)

	again, err := c.Initializer().Init(newContext("."), ".", domain.InitOpts{Path: dir})
	require.NoError(t, err)
	assert.False(t, again.Success)
}

func TestTypeName(t *testing.T) {
	assert.Equal(t, "OrderService", typeName("order-service"))
	assert.Equal(t, "Shop2Api", typeName("shop2 api"))
	assert.Equal(t, "Target", typeName("--"))
}

func TestImport(t *testing.T) {
	dir := t.TempDir()
	src := `package shop

type Clock interface {
	Now() int64
}

type Order struct{}

//mixin:sealed
func (o *Order) ID() string { return "" }
`
	srcPath := filepath.Join(dir, "shop.go")
	require.NoError(t, os.WriteFile(srcPath, []byte(src), 0644))
	target := writeDocument(t, dir, &declare.Document{
		Declaration: declare.Declaration{Target: "Order"},
		Types:       []declare.TypeSpec{{ID: "Order", Kind: "struct"}, {ID: "Extra", Kind: "struct"}},
	})
	c := newComposer(t)

	result, err := c.Importer().Import(newContext(dir), srcPath, domain.ImportOpts{Target: target})
	require.NoError(t, err)
	require.True(t, result.Success, "%+v", result.Errors)

	doc, err := declare.Load(target)
	require.NoError(t, err)
	require.Len(t, doc.Types, 3)
	assert.Equal(t, declare.TypeID("Order"), doc.Types[0].ID)
	require.Len(t, doc.Types[0].Methods, 1)
	assert.True(t, doc.Types[0].Methods[0].Sealed)
	assert.Equal(t, declare.TypeID("Extra"), doc.Types[1].ID)
	assert.Equal(t, declare.TypeID("Clock"), doc.Types[2].ID)
	assert.Equal(t, "interface", doc.Types[2].Kind)
}

func TestImportCreatesTarget(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.go"), []byte("package a\n\ntype A struct{}\n"), 0644))
	target := filepath.Join(dir, "types.toml")
	c := newComposer(t)

	result, err := c.Importer().Import(newContext(dir), dir, domain.ImportOpts{Target: target})
	require.NoError(t, err)
	require.True(t, result.Success)

	doc, err := declare.Read(target)
	require.NoError(t, err)
	require.Len(t, doc.Types, 1)
	assert.Equal(t, declare.TypeID("A"), doc.Types[0].ID)
}
