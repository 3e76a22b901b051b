package typeinfo

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"os"
	"path/filepath"
	"strings"

	"github.com/lex00/wetwire-mixin-go/declare"
)

// Method doc-comment directives understood by the Go source provider.
const (
	DirectiveSealed = "//mixin:sealed"
	DirectiveShadow = "//mixin:shadow"
)

// DuplicateSourceTypeError reports a type name declared in more than one
// scanned file.
type DuplicateSourceTypeError struct {
	ID    declare.TypeID
	Files []string
}

func (e *DuplicateSourceTypeError) Error() string {
	return fmt.Sprintf("type %s declared twice (%s)", e.ID, strings.Join(e.Files, ", "))
}

// SourceOptions configures Go source scanning.
type SourceOptions struct {
	// Recursive descends into subdirectories.
	Recursive bool
	// IncludeTests also reads *_test.go files.
	IncludeTests bool
	// ExcludeDirs lists directory names to skip when recursing.
	ExcludeDirs []string
}

// GoSource describes the interface and struct types declared in Go files.
// Types are keyed by their bare name, which must be unique across the
// scanned files; qualified embeds (pkg.Type) keep the qualifier. Methods whose receiver type is not declared in the scanned
// files are ignored.
type GoSource struct {
	*Static
	// Files lists the parsed files in scan order.
	Files []string
}

// ParseDirs scans the Go files of each directory.
func ParseDirs(dirs []string, opts SourceOptions) (*GoSource, error) {
	var files []string
	for _, dir := range dirs {
		found, err := goFiles(dir, opts)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	return ParseFiles(files...)
}

// ParseFiles scans the given Go files.
func ParseFiles(paths ...string) (*GoSource, error) {
	fset := token.NewFileSet()
	b := newSourceBuilder()
	for _, path := range paths {
		file, err := parser.ParseFile(fset, path, nil, parser.ParseComments)
		if err != nil {
			return nil, err
		}
		b.addFile(path, file)
	}
	static, err := b.build()
	if err != nil {
		return nil, err
	}
	return &GoSource{Static: static, Files: paths}, nil
}

// ParseSource scans a single in-memory Go file. The filename is only used
// for error messages.
func ParseSource(filename string, src []byte) (*GoSource, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filename, src, parser.ParseComments)
	if err != nil {
		return nil, err
	}
	b := newSourceBuilder()
	b.addFile(filename, file)
	static, err := b.build()
	if err != nil {
		return nil, err
	}
	return &GoSource{Static: static, Files: []string{filename}}, nil
}

func goFiles(root string, opts SourceOptions) ([]string, error) {
	var files []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if path == root {
				return nil
			}
			name := info.Name()
			if !opts.Recursive || strings.HasPrefix(name, ".") || name == "vendor" || name == "testdata" {
				return filepath.SkipDir
			}
			for _, excluded := range opts.ExcludeDirs {
				if name == excluded {
					return filepath.SkipDir
				}
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") {
			return nil
		}
		if !opts.IncludeTests && strings.HasSuffix(path, "_test.go") {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

type sourceBuilder struct {
	order   []declare.TypeID
	types   map[declare.TypeID]*Descriptor
	files   map[declare.TypeID]string
	methods map[declare.TypeID][]Method
	errs    []error
	file    string
}

func newSourceBuilder() *sourceBuilder {
	return &sourceBuilder{
		types:   make(map[declare.TypeID]*Descriptor),
		files:   make(map[declare.TypeID]string),
		methods: make(map[declare.TypeID][]Method),
	}
}

func (b *sourceBuilder) addFile(path string, file *ast.File) {
	b.file = path
	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.GenDecl:
			if d.Tok != token.TYPE {
				continue
			}
			for _, spec := range d.Specs {
				if ts, ok := spec.(*ast.TypeSpec); ok {
					b.addType(ts)
				}
			}
		case *ast.FuncDecl:
			if d.Recv == nil || len(d.Recv.List) == 0 {
				continue
			}
			recv := receiverName(d.Recv.List[0].Type)
			if recv == "" {
				continue
			}
			m := Method{
				Name:        d.Name.Name,
				Signature:   renderSignature(d.Type),
				Overridable: d.Name.IsExported(),
			}
			applyDirectives(&m, d.Doc)
			b.methods[recv] = append(b.methods[recv], m)
		}
	}
}

func (b *sourceBuilder) addType(ts *ast.TypeSpec) {
	id := declare.TypeID(ts.Name.Name)
	switch t := ts.Type.(type) {
	case *ast.InterfaceType:
		d := &Descriptor{ID: id, Kind: KindInterface}
		for _, field := range t.Methods.List {
			if len(field.Names) == 0 {
				if name := typeName(field.Type); name != "" {
					d.Embeds = append(d.Embeds, declare.TypeID(name))
				}
				continue
			}
			ft, ok := field.Type.(*ast.FuncType)
			if !ok {
				continue
			}
			for _, n := range field.Names {
				m := Method{Name: n.Name, Signature: renderSignature(ft), Overridable: true}
				applyDirectives(&m, field.Doc)
				d.Methods = append(d.Methods, m)
			}
		}
		b.put(d)
	case *ast.StructType:
		d := &Descriptor{ID: id, Kind: KindStruct}
		for _, field := range t.Fields.List {
			if len(field.Names) != 0 {
				continue
			}
			if name := typeName(field.Type); name != "" {
				d.Embeds = append(d.Embeds, declare.TypeID(name))
			}
		}
		b.put(d)
	default:
		// named non-struct types can still carry methods
		b.put(&Descriptor{ID: id, Kind: KindStruct})
	}
}

// put records a type. Types are keyed by bare name, so the same name in two
// scanned packages is an error rather than a merge.
func (b *sourceBuilder) put(d *Descriptor) {
	if prev, exists := b.files[d.ID]; exists {
		b.errs = append(b.errs, &DuplicateSourceTypeError{ID: d.ID, Files: []string{prev, b.file}})
		return
	}
	b.order = append(b.order, d.ID)
	b.types[d.ID] = d
	b.files[d.ID] = b.file
}

func (b *sourceBuilder) build() (*Static, error) {
	if len(b.errs) > 0 {
		return nil, fmt.Errorf("scan types: %w", errors.Join(b.errs...))
	}
	s := &Static{types: make(map[declare.TypeID]Descriptor, len(b.types))}
	for _, id := range b.order {
		d := b.types[id]
		d.Methods = append(d.Methods, b.methods[id]...)
		if err := s.Add(*d); err != nil {
			return nil, fmt.Errorf("scan types: %w", err)
		}
	}
	return s, nil
}

// receiverName returns the base type name of a method receiver.
func receiverName(expr ast.Expr) declare.TypeID {
	switch t := expr.(type) {
	case *ast.StarExpr:
		return receiverName(t.X)
	case *ast.IndexExpr:
		return receiverName(t.X)
	case *ast.IndexListExpr:
		return receiverName(t.X)
	case *ast.Ident:
		return declare.TypeID(t.Name)
	}
	return ""
}

// typeName renders an embedded field or interface element as a type id.
func typeName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.SelectorExpr:
		if x, ok := t.X.(*ast.Ident); ok {
			return x.Name + "." + t.Sel.Name
		}
	case *ast.StarExpr:
		return typeName(t.X)
	case *ast.IndexExpr:
		return typeName(t.X)
	case *ast.IndexListExpr:
		return typeName(t.X)
	}
	return ""
}

// renderSignature prints a func type without parameter names, so methods
// compare by shape only: func(int, ...string) (bool, error).
func renderSignature(ft *ast.FuncType) string {
	var sb strings.Builder
	sb.WriteString("func(")
	sb.WriteString(strings.Join(fieldTypes(ft.Params), ", "))
	sb.WriteString(")")

	results := fieldTypes(ft.Results)
	switch len(results) {
	case 0:
	case 1:
		sb.WriteString(" ")
		sb.WriteString(results[0])
	default:
		sb.WriteString(" (")
		sb.WriteString(strings.Join(results, ", "))
		sb.WriteString(")")
	}
	return sb.String()
}

func fieldTypes(fields *ast.FieldList) []string {
	if fields == nil {
		return nil
	}
	var out []string
	for _, f := range fields.List {
		rendered := types.ExprString(f.Type)
		n := len(f.Names)
		if n == 0 {
			n = 1
		}
		for i := 0; i < n; i++ {
			out = append(out, rendered)
		}
	}
	return out
}

func applyDirectives(m *Method, doc *ast.CommentGroup) {
	if doc == nil {
		return
	}
	for _, c := range doc.List {
		switch strings.TrimSpace(c.Text) {
		case DirectiveSealed:
			m.Overridable = false
		case DirectiveShadow:
			m.Shadows = true
		}
	}
}
