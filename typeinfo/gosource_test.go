package typeinfo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lex00/wetwire-mixin-go/declare"
)

const shopSource = `package shop

import "time"

type Clock interface {
	Now() time.Time
}

type Store interface {
	Load(id string) ([]byte, error)
	Save(id string, data []byte) error
}

// ClockStore is an aggregator.
type ClockStore interface {
	Clock
	Store
}

type Entity struct{}

func (Entity) Save() error { return nil }

type Order struct {
	Entity
	id string
}

// Save persists the order.
func (o *Order) Save() error { return nil }

//mixin:sealed
func (o *Order) ID() string { return o.id }

func (o *Order) validate(strict bool, fields ...string) (bool, error) { return true, nil }

type AuditMixin struct{}

//mixin:shadow
func (a *AuditMixin) Save() error { return nil }

type Celsius float64

func (c Celsius) String() string { return "" }
`

func TestParseSource(t *testing.T) {
	p, err := ParseSource("shop.go", []byte(shopSource))
	require.NoError(t, err)

	t.Run("interfaces", func(t *testing.T) {
		store, ok := p.Describe("Store")
		require.True(t, ok)
		assert.Equal(t, KindInterface, store.Kind)
		require.Len(t, store.Methods, 2)
		assert.Equal(t, "func(string) ([]byte, error)", store.Methods[0].Signature)
		assert.Equal(t, "func(string, []byte) error", store.Methods[1].Signature)
		assert.True(t, store.Methods[0].Overridable)
	})

	t.Run("aggregator", func(t *testing.T) {
		assert.True(t, IsAggregator(p, "ClockStore"))
		assert.Equal(t, []declare.TypeID{"Clock", "Store"}, Constituents(p, "ClockStore"))
	})

	t.Run("struct methods and embeds", func(t *testing.T) {
		order, ok := p.Describe("Order")
		require.True(t, ok)
		assert.Equal(t, KindStruct, order.Kind)
		assert.Equal(t, []declare.TypeID{"Entity"}, order.Embeds)
		require.Len(t, order.Methods, 3)

		assert.Equal(t, Method{Name: "Save", Signature: "func() error", Overridable: true}, order.Methods[0])
		assert.Equal(t, Method{Name: "ID", Signature: "func() string", Overridable: false}, order.Methods[1])
		assert.Equal(t, "func(bool, ...string) (bool, error)", order.Methods[2].Signature)
		assert.False(t, order.Methods[2].Overridable, "unexported methods are sealed")

		assert.Equal(t, []declare.TypeID{"Entity", "Order"}, Lineage(p, "Order"))
	})

	t.Run("shadow directive", func(t *testing.T) {
		audit, ok := p.Describe("AuditMixin")
		require.True(t, ok)
		require.Len(t, audit.Methods, 1)
		assert.True(t, audit.Methods[0].Shadows)
	})

	t.Run("named non-struct types", func(t *testing.T) {
		c, ok := p.Describe("Celsius")
		require.True(t, ok)
		assert.Len(t, c.Methods, 1)
	})
}

func TestParseDirs(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "sub")
	require.NoError(t, os.MkdirAll(sub, 0755))

	files := map[string]string{
		filepath.Join(root, "a.go"):      "package x\n\ntype A interface{ Do() }\n",
		filepath.Join(root, "a_test.go"): "package x\n\ntype ATest struct{}\n",
		filepath.Join(sub, "b.go"):       "package sub\n\ntype B struct{}\n",
	}
	for path, content := range files {
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}

	t.Run("non-recursive skips subdirectories and tests", func(t *testing.T) {
		p, err := ParseDirs([]string{root}, SourceOptions{})
		require.NoError(t, err)
		assert.Equal(t, []declare.TypeID{"A"}, p.IDs())
	})

	t.Run("recursive with tests", func(t *testing.T) {
		p, err := ParseDirs([]string{root}, SourceOptions{Recursive: true, IncludeTests: true})
		require.NoError(t, err)
		assert.Equal(t, []declare.TypeID{"A", "ATest", "B"}, p.IDs())
	})

	t.Run("excluded directory", func(t *testing.T) {
		p, err := ParseDirs([]string{root}, SourceOptions{Recursive: true, ExcludeDirs: []string{"sub"}})
		require.NoError(t, err)
		assert.Equal(t, []declare.TypeID{"A"}, p.IDs())
	})

	t.Run("parse error", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.go")
		require.NoError(t, os.WriteFile(bad, []byte("package"), 0644))
		_, err := ParseFiles(bad)
		assert.Error(t, err)
	})

	t.Run("same name in two packages", func(t *testing.T) {
		a := filepath.Join(t.TempDir(), "a")
		b := filepath.Join(t.TempDir(), "b")
		require.NoError(t, os.MkdirAll(a, 0755))
		require.NoError(t, os.MkdirAll(b, 0755))
		aFile := filepath.Join(a, "service.go")
		bFile := filepath.Join(b, "service.go")
		require.NoError(t, os.WriteFile(aFile,
			[]byte("package a\n\ntype Service struct{}\n\nfunc (Service) Start() error { return nil }\n"), 0644))
		require.NoError(t, os.WriteFile(bFile,
			[]byte("package b\n\ntype Service interface{ Stop() }\n"), 0644))

		_, err := ParseDirs([]string{a, b}, SourceOptions{})
		require.Error(t, err)

		var dup *DuplicateSourceTypeError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, declare.TypeID("Service"), dup.ID)
		assert.Equal(t, []string{aFile, bFile}, dup.Files)
		assert.Contains(t, err.Error(), "type Service declared twice")
	})

	t.Run("missing directory", func(t *testing.T) {
		_, err := ParseDirs([]string{filepath.Join(root, "missing")}, SourceOptions{})
		assert.Error(t, err)
	})
}
