package lint

import (
	"fmt"

	"github.com/lex00/wetwire-mixin-go/declare"
	"github.com/lex00/wetwire-mixin-go/typeinfo"
)

// BuiltinRules returns the built-in declaration rules.
func BuiltinRules() []Rule {
	return []Rule{
		DuplicateMixin{},
		UniversalRequirement{},
		SelfRequirement{},
		UnknownCapability{},
		SealedOverride{},
		UnusedComplete{},
		RepeatedRequirement{},
	}
}

func slotPath(i int) string {
	return fmt.Sprintf("mixins[%d]", i)
}

func requirePath(i, k int) string {
	return fmt.Sprintf("mixins[%d].requires[%d]", i, k)
}

func completePath(k int) string {
	return fmt.Sprintf("complete[%d]", k)
}

func parseRequirePath(path string) (int, int, error) {
	var i, k int
	if _, err := fmt.Sscanf(path, "mixins[%d].requires[%d]", &i, &k); err != nil {
		return 0, 0, fmt.Errorf("invalid requirement path %q: %w", path, err)
	}
	return i, k, nil
}

func removeRequirement(doc *declare.Document, path string) error {
	i, k, err := parseRequirePath(path)
	if err != nil {
		return err
	}
	if i >= len(doc.Mixins) || k >= len(doc.Mixins[i].Requires) {
		return fmt.Errorf("requirement %s no longer exists", path)
	}
	reqs := doc.Mixins[i].Requires
	doc.Mixins[i].Requires = append(reqs[:k:k], reqs[k+1:]...)
	return nil
}

// DuplicateMixin (MIX001) reports a mixin declared more than once. The fix
// folds the later slot's requirements into the first.
type DuplicateMixin struct{}

func (DuplicateMixin) ID() string          { return "MIX001" }
func (DuplicateMixin) Description() string { return "Mixin declared more than once" }

func (r DuplicateMixin) Check(in *Input) []Issue {
	var issues []Issue
	first := make(map[declare.TypeID]int)
	for i, slot := range in.Document.Mixins {
		if j, ok := first[slot.Mixin]; ok {
			issues = append(issues, Issue{
				Rule:       r.ID(),
				Message:    fmt.Sprintf("mixin %s is already declared at %s", slot.Mixin, slotPath(j)),
				Path:       slotPath(i),
				Severity:   SeverityError,
				Suggestion: "merge the requirements into the first declaration",
				Fixable:    true,
			})
			continue
		}
		first[slot.Mixin] = i
	}
	return issues
}

func (DuplicateMixin) Fix(doc *declare.Document, issue Issue) error {
	var i int
	if _, err := fmt.Sscanf(issue.Path, "mixins[%d]", &i); err != nil {
		return fmt.Errorf("invalid mixin path %q: %w", issue.Path, err)
	}
	if i >= len(doc.Mixins) {
		return fmt.Errorf("mixin %s no longer exists", issue.Path)
	}
	dup := doc.Mixins[i]
	for j := 0; j < i; j++ {
		if doc.Mixins[j].Mixin != dup.Mixin {
			continue
		}
		for _, req := range dup.Requires {
			if !containsID(doc.Mixins[j].Requires, req) {
				doc.Mixins[j].Requires = append(doc.Mixins[j].Requires, req)
			}
		}
		doc.Mixins = append(doc.Mixins[:i:i], doc.Mixins[i+1:]...)
		return nil
	}
	return fmt.Errorf("mixin %s at %s is not a duplicate", dup.Mixin, issue.Path)
}

// UniversalRequirement (MIX002) reports requirements on the universal base
// type, which are always satisfied.
type UniversalRequirement struct{}

func (UniversalRequirement) ID() string { return "MIX002" }
func (UniversalRequirement) Description() string {
	return "Requirement on the universal base type has no effect"
}

func (r UniversalRequirement) Check(in *Input) []Issue {
	var issues []Issue
	for i, slot := range in.Document.Mixins {
		for k, req := range slot.Requires {
			if !declare.IsUniversal(req) {
				continue
			}
			issues = append(issues, Issue{
				Rule:       r.ID(),
				Message:    fmt.Sprintf("mixin %s requires %q, which every type satisfies", slot.Mixin, req),
				Path:       requirePath(i, k),
				Severity:   SeverityInfo,
				Suggestion: "remove the requirement",
				Fixable:    true,
			})
		}
	}
	return issues
}

func (UniversalRequirement) Fix(doc *declare.Document, issue Issue) error {
	return removeRequirement(doc, issue.Path)
}

// SelfRequirement (MIX003) reports a mixin requiring its own type.
type SelfRequirement struct{}

func (SelfRequirement) ID() string          { return "MIX003" }
func (SelfRequirement) Description() string { return "Mixin requires itself" }

func (r SelfRequirement) Check(in *Input) []Issue {
	var issues []Issue
	for i, slot := range in.Document.Mixins {
		for k, req := range slot.Requires {
			if req == slot.Mixin && req != "" {
				issues = append(issues, Issue{
					Rule:     r.ID(),
					Message:  fmt.Sprintf("mixin %s depends on itself", slot.Mixin),
					Path:     requirePath(i, k),
					Severity: SeverityError,
				})
			}
		}
	}
	return issues
}

// UnknownCapability (MIX004) reports requirements on types the type
// information does not describe. Such capabilities can only be satisfied
// nominally.
type UnknownCapability struct{}

func (UnknownCapability) ID() string          { return "MIX004" }
func (UnknownCapability) Description() string { return "Required capability is not described" }

func (r UnknownCapability) Check(in *Input) []Issue {
	if in.Types == nil {
		return nil
	}
	var issues []Issue
	for i, slot := range in.Document.Mixins {
		for k, req := range slot.Requires {
			if declare.IsUniversal(req) || req == slot.Mixin {
				continue
			}
			if _, ok := in.Types.Describe(req); ok {
				continue
			}
			issues = append(issues, Issue{
				Rule:       r.ID(),
				Message:    fmt.Sprintf("capability %s required by %s is not described", req, slot.Mixin),
				Path:       requirePath(i, k),
				Severity:   SeverityWarning,
				Suggestion: "add the capability to types or to the scanned Go sources",
			})
		}
	}
	return issues
}

// SealedOverride (MIX005) reports mixin members that would override a target
// member which is not overridable.
type SealedOverride struct{}

func (SealedOverride) ID() string          { return "MIX005" }
func (SealedOverride) Description() string { return "Mixin overrides a sealed target member" }

func (r SealedOverride) Check(in *Input) []Issue {
	if in.Types == nil || in.Document.Target == "" {
		return nil
	}
	sealed := make(map[typeinfo.MethodKey]declare.TypeID)
	for _, m := range typeinfo.MethodSet(in.Types, in.Document.Target) {
		if !m.Overridable {
			sealed[m.Key()] = m.DeclaringType
		}
	}
	if len(sealed) == 0 {
		return nil
	}

	var issues []Issue
	for i, slot := range in.Document.Mixins {
		for _, m := range typeinfo.LineageMethods(in.Types, slot.Mixin) {
			owner, ok := sealed[m.Key()]
			if !ok {
				continue
			}
			issues = append(issues, Issue{
				Rule:     r.ID(),
				Message:  fmt.Sprintf("%s.%s overrides %s.%s, which is sealed", m.DeclaringType, m.Name, owner, m.Name),
				Path:     slotPath(i),
				Severity: SeverityError,
			})
		}
	}
	return issues
}

// UnusedComplete (MIX006) reports complete entries no mixin requires.
type UnusedComplete struct{}

func (UnusedComplete) ID() string { return "MIX006" }
func (UnusedComplete) Description() string {
	return "Complete capability is not required by any mixin"
}

func (r UnusedComplete) Check(in *Input) []Issue {
	required := make(map[declare.TypeID]bool)
	for _, slot := range in.Document.Mixins {
		for _, req := range slot.Requires {
			required[req] = true
			if in.Types == nil {
				continue
			}
			for _, c := range typeinfo.Constituents(in.Types, req) {
				required[c] = true
			}
		}
	}

	var issues []Issue
	for k, c := range in.Document.Complete {
		if required[c] {
			continue
		}
		issues = append(issues, Issue{
			Rule:       r.ID(),
			Message:    fmt.Sprintf("complete capability %s is not required by any mixin", c),
			Path:       completePath(k),
			Severity:   SeverityInfo,
			Suggestion: "remove the entry",
			Fixable:    true,
		})
	}
	return issues
}

func (UnusedComplete) Fix(doc *declare.Document, issue Issue) error {
	var k int
	if _, err := fmt.Sscanf(issue.Path, "complete[%d]", &k); err != nil {
		return fmt.Errorf("invalid complete path %q: %w", issue.Path, err)
	}
	if k >= len(doc.Complete) {
		return fmt.Errorf("complete entry %s no longer exists", issue.Path)
	}
	doc.Complete = append(doc.Complete[:k:k], doc.Complete[k+1:]...)
	return nil
}

// RepeatedRequirement (MIX007) reports a capability listed twice by one mixin.
type RepeatedRequirement struct{}

func (RepeatedRequirement) ID() string          { return "MIX007" }
func (RepeatedRequirement) Description() string { return "Requirement listed more than once" }

func (r RepeatedRequirement) Check(in *Input) []Issue {
	var issues []Issue
	for i, slot := range in.Document.Mixins {
		seen := make(map[declare.TypeID]bool)
		for k, req := range slot.Requires {
			if !seen[req] {
				seen[req] = true
				continue
			}
			issues = append(issues, Issue{
				Rule:       r.ID(),
				Message:    fmt.Sprintf("mixin %s requires %s more than once", slot.Mixin, req),
				Path:       requirePath(i, k),
				Severity:   SeverityInfo,
				Suggestion: "remove the repeated requirement",
				Fixable:    true,
			})
		}
	}
	return issues
}

func (RepeatedRequirement) Fix(doc *declare.Document, issue Issue) error {
	return removeRequirement(doc, issue.Path)
}

func containsID(ids []declare.TypeID, id declare.TypeID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
