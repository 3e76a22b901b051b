package override

import (
	"github.com/lex00/wetwire-mixin-go/declare"
)

// Chain is the ordered list of declarations of one signature, most basic
// first. Assignability of declaring types never decreases along the chain.
type Chain struct {
	key     Key
	members []Member
}

// Build inserts members into a new chain in the order given. Each member is
// placed before the first entry whose declaring type is not a supertype of
// the member's declaring type, or appended when there is none.
func Build(h Hierarchy, members ...Member) (*Chain, error) {
	c := &Chain{}
	for i, m := range members {
		if i == 0 {
			c.key = m.Key()
		} else if m.Key() != c.key {
			return nil, &SignatureMismatchError{Want: c.key, Got: m}
		}
		if err := c.insert(h, m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Chain) insert(h Hierarchy, m Member) error {
	pos := len(c.members)
	for i, existing := range c.members {
		if existing.DeclaringType == m.DeclaringType {
			return &DuplicateMemberError{Member: m}
		}
		if pos == len(c.members) && !h.IsSupertype(existing.DeclaringType, m.DeclaringType) {
			pos = i
		}
	}
	c.members = append(c.members, Member{})
	copy(c.members[pos+1:], c.members[pos:])
	c.members[pos] = m
	return nil
}

// Key returns the chain's signature. It is zero for an empty chain.
func (c *Chain) Key() Key {
	return c.key
}

// Len returns the number of members.
func (c *Chain) Len() int {
	return len(c.members)
}

// Members returns the chain in order.
func (c *Chain) Members() []Member {
	return append([]Member(nil), c.members...)
}

// IsOverridden reports whether m is followed by a true override: a more
// derived member that is overridable and does not shadow.
func (c *Chain) IsOverridden(m Member) (bool, error) {
	i := c.indexOf(m)
	if i < 0 {
		return false, &MemberNotInChainError{Member: m}
	}
	return c.overriddenAt(i), nil
}

func (c *Chain) overriddenAt(i int) bool {
	if i == len(c.members)-1 {
		return false
	}
	next := c.members[i+1]
	return next.Overridable && !next.Shadows
}

// NonOverridden returns, in chain order, the members that are not overridden.
func (c *Chain) NonOverridden() []Member {
	var out []Member
	for i, m := range c.members {
		if !c.overriddenAt(i) {
			out = append(out, m)
		}
	}
	return out
}

// Entry is a chain member with its override status.
type Entry struct {
	Member     `yaml:",inline"`
	Overridden bool `json:"overridden" yaml:"overridden"`
}

// Entries returns every member with its override status.
func (c *Chain) Entries() []Entry {
	out := make([]Entry, len(c.members))
	for i, m := range c.members {
		out[i] = Entry{Member: m, Overridden: c.overriddenAt(i)}
	}
	return out
}

// Restrict returns the sub-chain of members contributed by owner, in chain
// order.
func (c *Chain) Restrict(owner declare.TypeID) *Chain {
	sub := &Chain{key: c.key}
	for _, m := range c.members {
		if m.Owner == owner {
			sub.members = append(sub.members, m)
		}
	}
	return sub
}

func (c *Chain) indexOf(m Member) int {
	for i, existing := range c.members {
		if existing.DeclaringType == m.DeclaringType && existing.Key() == m.Key() {
			return i
		}
	}
	return -1
}
