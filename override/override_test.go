package override

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lex00/wetwire-mixin-go/declare"
)

func method(owner, declaring declare.TypeID) Member {
	return Member{
		Owner:         owner,
		DeclaringType: declaring,
		Name:          "Method",
		Signature:     "func() error",
		Overridable:   true,
	}
}

func TestLayers(t *testing.T) {
	l := NewLayers("Base", "T", "M1", "T", "M2")

	assert.Equal(t, []declare.TypeID{"Base", "T", "M1", "M2"}, l.Types())
	assert.True(t, l.IsSupertype("T", "T"))
	assert.True(t, l.IsSupertype("Base", "M2"))
	assert.False(t, l.IsSupertype("M2", "M1"))
	assert.False(t, l.IsSupertype("Base", "Unknown"))
	assert.True(t, l.IsSupertype("Unknown", "Unknown"))
}

func TestChainScenario(t *testing.T) {
	h := NewLayers("T", "M1", "M2")
	tm, m1, m2 := method("T", "T"), method("M1", "M1"), method("M2", "M2")

	c, err := Build(h, tm, m1, m2)
	require.NoError(t, err)

	assert.Equal(t, []Member{tm, m1, m2}, c.Members())
	assert.Equal(t, Key{Name: "Method", Signature: "func() error"}, c.Key())

	for _, tc := range []struct {
		member Member
		want   bool
	}{
		{tm, true},
		{m1, true},
		{m2, false},
	} {
		got, err := c.IsOverridden(tc.member)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, tc.member.String())
	}

	assert.Equal(t, []Member{m2}, c.NonOverridden())
}

func TestChainInsertionOrderIndependent(t *testing.T) {
	h := NewLayers("Base", "T", "M1", "M2")
	members := []Member{method("T", "Base"), method("T", "T"), method("M1", "M1"), method("M2", "M2")}
	want := append([]Member(nil), members...)

	permutations := [][]int{
		{0, 1, 2, 3},
		{3, 2, 1, 0},
		{2, 0, 3, 1},
		{1, 3, 0, 2},
	}
	for _, perm := range permutations {
		in := make([]Member, len(perm))
		for i, p := range perm {
			in[i] = members[p]
		}
		c, err := Build(h, in...)
		require.NoError(t, err)
		assert.Equal(t, want, c.Members(), "permutation %v", perm)
	}
}

func TestChainShadowing(t *testing.T) {
	h := NewLayers("T", "M1", "M2")
	tm := method("T", "T")
	m1 := method("M1", "M1")
	m1.Shadows = true
	m2 := method("M2", "M2")
	m2.Overridable = false

	c, err := Build(h, m2, m1, tm)
	require.NoError(t, err)

	overridden, err := c.IsOverridden(tm)
	require.NoError(t, err)
	assert.False(t, overridden, "a shadowing member hides instead of overriding")

	overridden, err = c.IsOverridden(m1)
	require.NoError(t, err)
	assert.False(t, overridden, "a non-overridable successor does not override")

	assert.Equal(t, []Member{tm, m1, m2}, c.NonOverridden())

	entries := c.Entries()
	require.Len(t, entries, 3)
	for _, e := range entries {
		assert.False(t, e.Overridden)
	}
}

func TestChainErrors(t *testing.T) {
	h := NewLayers("T", "M1")

	t.Run("member not in chain", func(t *testing.T) {
		c, err := Build(h, method("T", "T"))
		require.NoError(t, err)

		_, err = c.IsOverridden(method("M1", "M1"))
		var notInChain *MemberNotInChainError
		require.True(t, errors.As(err, &notInChain))
		assert.Equal(t, declare.TypeID("M1"), notInChain.Member.DeclaringType)
		assert.Contains(t, err.Error(), "M1.Method")
	})

	t.Run("signature mismatch", func(t *testing.T) {
		other := method("M1", "M1")
		other.Signature = "func(int) error"

		_, err := Build(h, method("T", "T"), other)
		var mismatch *SignatureMismatchError
		require.True(t, errors.As(err, &mismatch))
		assert.Equal(t, "Method", mismatch.Want.Name)
	})

	t.Run("duplicate declaring type", func(t *testing.T) {
		_, err := Build(h, method("T", "T"), method("M1", "T"))
		var dup *DuplicateMemberError
		assert.True(t, errors.As(err, &dup))
	})
}

func TestChainRestrict(t *testing.T) {
	h := NewLayers("Base", "T", "MixinBase", "M1")
	c, err := Build(h,
		method("M1", "M1"),
		method("T", "T"),
		method("M1", "MixinBase"),
		method("T", "Base"),
	)
	require.NoError(t, err)

	target := c.Restrict("T")
	assert.Equal(t, 2, target.Len())
	assert.Equal(t, []Member{method("T", "T")}, target.NonOverridden())

	mixin := c.Restrict("M1")
	assert.Equal(t, []Member{method("M1", "M1")}, mixin.NonOverridden())

	assert.Equal(t, 0, c.Restrict("M2").Len())
}
