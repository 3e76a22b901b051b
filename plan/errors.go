package plan

import (
	"fmt"
	"strings"

	"github.com/lex00/wetwire-mixin-go/declare"
	"github.com/lex00/wetwire-mixin-go/override"
)

// UnresolvedRequirementError reports a capability that neither a mixin other
// than its sole requirer nor the target satisfies.
type UnresolvedRequirementError struct {
	Capability declare.TypeID
	Target     declare.TypeID
	RequiredBy []declare.TypeID
}

func (e *UnresolvedRequirementError) Error() string {
	return fmt.Sprintf("capability %s required by %s is not provided by another mixin or by target %s",
		e.Capability, joinIDs(e.RequiredBy), e.Target)
}

// SealedMemberError reports a mixin member that overrides a target member
// which is not overridable.
type SealedMemberError struct {
	Member override.Member
}

func (e *SealedMemberError) Error() string {
	return fmt.Sprintf("mixin %s overrides %s, which is not overridable on the target",
		e.Member.Owner, e.Member.Key())
}

// StageError wraps the failure of one planner stage.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func joinIDs(ids []declare.TypeID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, ", ")
}
