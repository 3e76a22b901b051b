package composer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/lex00/wetwire-mixin-go/declare"
	"github.com/lex00/wetwire-mixin-go/domain"
	"github.com/lex00/wetwire-mixin-go/typeinfo"
)

type importer struct{}

// Import scans the Go source at source (a file or directory) and writes the
// types it declares into the type section of the target document. Types
// already listed in the document are replaced.
func (i *importer) Import(ctx *domain.Context, source string, opts domain.ImportOpts) (*domain.Result, error) {
	info, err := os.Stat(source)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", source, err)
	}
	var src *typeinfo.GoSource
	if info.IsDir() {
		src, err = typeinfo.ParseDirs([]string{source}, typeinfo.SourceOptions{Recursive: opts.Recursive})
	} else {
		src, err = typeinfo.ParseFiles(source)
	}
	if err != nil {
		return domain.NewErrorResult("cannot read Go source", domain.Error{
			Path:     source,
			Severity: "error",
			Message:  err.Error(),
			Code:     "INVALID_SOURCE",
		}), nil
	}

	target := opts.Target
	if target == "" {
		target = DocumentNames[0]
	}
	doc, err := declare.Read(target)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		doc = &declare.Document{APIVersion: declare.DefaultAPIVersion}
	case err != nil:
		return failure("cannot read target document", target, CodeInvalidDeclaration, err), nil
	}

	imported := src.Specs()
	doc.Types = mergeTypes(doc.Types, imported)
	if err := doc.Save(target); err != nil {
		return nil, err
	}

	ids := make([]string, len(imported))
	for i, spec := range imported {
		ids[i] = string(spec.ID)
	}
	return domain.NewResultWithData(
		fmt.Sprintf("Imported %d type(s) into %s", len(imported), target),
		map[string]any{"target": target, "types": ids},
	), nil
}

// mergeTypes replaces specs of existing with same-id specs from imported and
// appends the rest.
func mergeTypes(existing, imported []declare.TypeSpec) []declare.TypeSpec {
	index := make(map[declare.TypeID]int, len(existing))
	out := append([]declare.TypeSpec(nil), existing...)
	for i, spec := range out {
		index[spec.ID] = i
	}
	for _, spec := range imported {
		if i, ok := index[spec.ID]; ok {
			out[i] = spec
			continue
		}
		index[spec.ID] = len(out)
		out = append(out, spec)
	}
	return out
}
