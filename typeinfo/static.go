package typeinfo

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/lex00/wetwire-mixin-go/declare"
)

// Static is an in-memory provider. It is safe for concurrent use.
type Static struct {
	mu    sync.RWMutex
	types map[declare.TypeID]Descriptor
}

// NewStatic creates a provider holding the given descriptors.
func NewStatic(descriptors ...Descriptor) (*Static, error) {
	s := &Static{types: make(map[declare.TypeID]Descriptor)}
	for _, d := range descriptors {
		if err := s.Add(d); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Add registers a descriptor. Registering the same id twice is an error.
func (s *Static) Add(d Descriptor) error {
	if declare.IsUniversal(d.ID) {
		return fmt.Errorf("cannot describe the universal base type %q", d.ID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.types[d.ID]; exists {
		return fmt.Errorf("type %s described twice", d.ID)
	}
	s.types[d.ID] = d
	return nil
}

// Describe implements Provider.
func (s *Static) Describe(id declare.TypeID) (Descriptor, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.types[id]
	return d, ok
}

// IDs returns the described type ids in sorted order.
func (s *Static) IDs() []declare.TypeID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]declare.TypeID, 0, len(s.types))
	for id := range s.types {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// FromSpecs builds a Static provider from a document's type section.
func FromSpecs(specs []declare.TypeSpec) (*Static, error) {
	s := &Static{types: make(map[declare.TypeID]Descriptor, len(specs))}
	for _, spec := range specs {
		d, err := descriptorFromSpec(spec)
		if err != nil {
			return nil, err
		}
		if err := s.Add(d); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func descriptorFromSpec(spec declare.TypeSpec) (Descriptor, error) {
	d := Descriptor{ID: spec.ID, Embeds: append([]declare.TypeID(nil), spec.Embeds...)}
	switch strings.ToLower(strings.TrimSpace(spec.Kind)) {
	case "interface", "capability":
		d.Kind = KindInterface
	case "struct", "", "type":
		d.Kind = KindStruct
	default:
		return Descriptor{}, fmt.Errorf("type %s: unknown kind %q", spec.ID, spec.Kind)
	}
	for _, m := range spec.Methods {
		if strings.TrimSpace(m.Name) == "" {
			return Descriptor{}, fmt.Errorf("type %s: method without a name", spec.ID)
		}
		d.Methods = append(d.Methods, Method{
			Name:        m.Name,
			Signature:   normalizeSignature(m.Signature),
			Overridable: !m.Sealed,
			Shadows:     m.Shadows,
		})
	}
	return d, nil
}

// normalizeSignature collapses whitespace so hand-written signatures compare
// equal to rendered ones.
func normalizeSignature(sig string) string {
	sig = strings.Join(strings.Fields(sig), " ")
	if sig == "" {
		return "func()"
	}
	return sig
}

// ToSpec renders a descriptor as a document type entry. It is the inverse of
// the conversion FromSpecs performs.
func ToSpec(d Descriptor) declare.TypeSpec {
	spec := declare.TypeSpec{
		ID:     d.ID,
		Kind:   d.Kind.String(),
		Embeds: append([]declare.TypeID(nil), d.Embeds...),
	}
	for _, m := range d.Methods {
		spec.Methods = append(spec.Methods, declare.MethodSpec{
			Name:      m.Name,
			Signature: m.Signature,
			Sealed:    !m.Overridable,
			Shadows:   m.Shadows,
		})
	}
	return spec
}

// Specs renders every type of the provider, sorted by id.
func (s *Static) Specs() []declare.TypeSpec {
	ids := s.IDs()
	specs := make([]declare.TypeSpec, 0, len(ids))
	for _, id := range ids {
		d, _ := s.Describe(id)
		specs = append(specs, ToSpec(d))
	}
	return specs
}

// Digest returns a stable digest of every type the provider describes.
// Providers describing the same types have the same digest.
func (s *Static) Digest() string {
	data, err := json.Marshal(s.Specs())
	if err != nil {
		data = []byte(fmt.Sprintf("%#v", s.Specs()))
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
