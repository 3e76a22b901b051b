package declare

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
)

// SupportedAPIVersions is the constraint a document's apiVersion must satisfy.
const SupportedAPIVersions = ">=1.0.0, <2.0.0"

// DefaultAPIVersion is assumed when a document omits apiVersion.
const DefaultAPIVersion = "1.0.0"

// Format is a declaration document encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// FormatFromPath picks the document format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%s: %w", path, ErrUnknownFormat)
	}
}

// MethodSpec describes a method in a document's type section.
type MethodSpec struct {
	Name      string `json:"name" yaml:"name" toml:"name"`
	Signature string `json:"signature,omitempty" yaml:"signature,omitempty" toml:"signature,omitempty"`
	// Sealed methods cannot be overridden.
	Sealed bool `json:"sealed,omitempty" yaml:"sealed,omitempty" toml:"sealed,omitempty"`
	// Shadows marks a redeclaration that hides rather than overrides.
	Shadows bool `json:"shadows,omitempty" yaml:"shadows,omitempty" toml:"shadows,omitempty"`
}

// TypeSpec describes a type in a document's type section.
type TypeSpec struct {
	ID      TypeID       `json:"id" yaml:"id" toml:"id"`
	Kind    string       `json:"kind" yaml:"kind" toml:"kind"`
	Methods []MethodSpec `json:"methods,omitempty" yaml:"methods,omitempty" toml:"methods,omitempty"`
	Embeds  []TypeID     `json:"embeds,omitempty" yaml:"embeds,omitempty" toml:"embeds,omitempty"`
}

// Document is the on-disk form of a declaration, optionally carrying the
// type information needed to plan it.
type Document struct {
	APIVersion string `json:"apiVersion,omitempty" yaml:"apiVersion,omitempty" toml:"apiVersion,omitempty"`

	Declaration `yaml:",inline"`

	Types []TypeSpec `json:"types,omitempty" yaml:"types,omitempty" toml:"types,omitempty"`

	// Path is the file the document was loaded from, if any.
	Path string `json:"-" yaml:"-" toml:"-"`
}

// Load reads and validates a declaration document from path.
func Load(path string) (*Document, error) {
	doc, err := Read(path)
	if err != nil {
		return nil, err
	}
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Read parses the declaration document at path without validating it.
func Read(path string) (*Document, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read declaration: %w", err)
	}
	doc, err := Parse(bytes.NewReader(data), format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	doc.Path = path
	return doc, nil
}

// Decode reads a declaration document in the given format and validates it.
func Decode(r io.Reader, format Format) (*Document, error) {
	doc, err := Parse(r, format)
	if err != nil {
		return nil, err
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

// Parse reads a declaration document in the given format. Unknown keys are
// rejected; the content is not validated.
func Parse(r io.Reader, format Format) (*Document, error) {
	var doc Document
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil && err != io.EOF {
			return nil, fmt.Errorf("failed to parse declaration YAML: %w", err)
		}
	case FormatTOML:
		meta, err := toml.NewDecoder(r).Decode(&doc)
		if err != nil {
			return nil, fmt.Errorf("failed to parse declaration TOML: %w", err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("unknown declaration key %q", undecoded[0].String())
		}
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to parse declaration JSON: %w", err)
		}
	default:
		return nil, fmt.Errorf("%q: %w", format, ErrUnknownFormat)
	}
	return &doc, nil
}

// Validate checks the apiVersion and the embedded declaration.
func (d *Document) Validate() error {
	if err := CheckAPIVersion(d.APIVersion); err != nil {
		return err
	}
	return d.Declaration.Validate()
}

// CheckAPIVersion verifies raw against SupportedAPIVersions. An empty
// version is treated as DefaultAPIVersion.
func CheckAPIVersion(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = DefaultAPIVersion
	}
	v, err := semver.NewVersion(raw)
	if err != nil {
		return &UnsupportedAPIVersionError{Version: raw, Supported: SupportedAPIVersions}
	}
	c, err := semver.NewConstraint(SupportedAPIVersions)
	if err != nil {
		return fmt.Errorf("semver: parse constraint %q: %w", SupportedAPIVersions, err)
	}
	if !c.Check(v) {
		return &UnsupportedAPIVersionError{Version: raw, Supported: SupportedAPIVersions}
	}
	return nil
}

// Encode writes the document in the given format.
func (d *Document) Encode(w io.Writer, format Format) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(d); err != nil {
			return fmt.Errorf("failed to marshal declaration YAML: %w", err)
		}
		return enc.Close()
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(d); err != nil {
			return fmt.Errorf("failed to marshal declaration TOML: %w", err)
		}
		return nil
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(d); err != nil {
			return fmt.Errorf("failed to marshal declaration JSON: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("%q: %w", format, ErrUnknownFormat)
	}
}

// Save writes the document to path, choosing the format from its extension.
func (d *Document) Save(path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := d.Encode(&buf, format); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write declaration: %w", err)
	}
	return nil
}
