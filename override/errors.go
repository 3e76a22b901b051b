package override

import (
	"fmt"
)

// MemberNotInChainError reports an override query for a member the chain
// does not contain.
type MemberNotInChainError struct {
	Member Member
}

func (e *MemberNotInChainError) Error() string {
	return fmt.Sprintf("member %s is not part of the override chain", e.Member)
}

// SignatureMismatchError reports a member added to a chain of another signature.
type SignatureMismatchError struct {
	Want Key
	Got  Member
}

func (e *SignatureMismatchError) Error() string {
	return fmt.Sprintf("member %s has signature %q, chain is for %q", e.Got, e.Got.Key(), e.Want)
}

// DuplicateMemberError reports a declaring type contributing a signature twice.
type DuplicateMemberError struct {
	Member Member
}

func (e *DuplicateMemberError) Error() string {
	return fmt.Sprintf("member %s is already part of the override chain", e.Member)
}
