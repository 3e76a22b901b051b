package declare

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsUniversal(t *testing.T) {
	for _, id := range []TypeID{"", "any", "interface{}", " any "} {
		assert.True(t, IsUniversal(id), "IsUniversal(%q)", id)
	}
	assert.False(t, IsUniversal("Clock"))
}

func TestKindText(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{in: "", want: KindExtending},
		{in: "extends", want: KindExtending},
		{in: "Uses", want: KindUsed},
		{in: "used", want: KindUsed},
		{in: "inherits", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var k Kind
			err := k.UnmarshalText([]byte(tt.in))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, k)
		})
	}

	_, err := Kind(7).MarshalText()
	assert.Error(t, err)
}

func TestVisibilityText(t *testing.T) {
	var v Visibility
	require.NoError(t, v.UnmarshalText([]byte("PUBLIC")))
	assert.Equal(t, VisibilityPublic, v)

	text, err := v.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "public", string(text))

	assert.Error(t, v.UnmarshalText([]byte("protected")))
}

func TestDeclarationValidate(t *testing.T) {
	t.Run("valid declaration", func(t *testing.T) {
		d := Declaration{
			Target: "Order",
			Mixins: []MixinSlot{{Mixin: "Audit"}, {Mixin: "Cache", Kind: KindUsed}},
		}
		assert.NoError(t, d.Validate())
	})

	t.Run("missing target", func(t *testing.T) {
		d := Declaration{Mixins: []MixinSlot{{Mixin: "Audit"}}}
		assert.ErrorIs(t, d.Validate(), ErrMissingTarget)
	})

	t.Run("empty mixin id", func(t *testing.T) {
		d := Declaration{Target: "Order", Mixins: []MixinSlot{{Mixin: " "}}}
		assert.ErrorIs(t, d.Validate(), ErrMissingMixin)
	})

	t.Run("mixin is target", func(t *testing.T) {
		d := Declaration{Target: "Order", Mixins: []MixinSlot{{Mixin: "Order"}}}
		assert.ErrorIs(t, d.Validate(), ErrMixinIsTarget)
	})

	t.Run("duplicate mixin", func(t *testing.T) {
		d := Declaration{
			Target: "Order",
			Mixins: []MixinSlot{{Mixin: "Audit"}, {Mixin: "Cache"}, {Mixin: "Audit"}},
		}
		err := d.Validate()

		var dup *DuplicateMixinError
		require.True(t, errors.As(err, &dup))
		assert.Equal(t, TypeID("Audit"), dup.Mixin)
		assert.Equal(t, 0, dup.First)
		assert.Equal(t, 2, dup.Second)
	})
}

func TestDeclarationHelpers(t *testing.T) {
	d := Declaration{
		Target:   "Order",
		Mixins:   []MixinSlot{{Mixin: "Audit", Requires: []TypeID{"Clock"}}, {Mixin: "Cache"}},
		Complete: []TypeID{"OrderFacade"},
	}

	assert.Equal(t, []TypeID{"Audit", "Cache"}, d.MixinIDs())

	slot, ok := d.Slot("Audit")
	require.True(t, ok)
	assert.Equal(t, []TypeID{"Clock"}, slot.Requires)

	_, ok = d.Slot("Missing")
	assert.False(t, ok)

	assert.True(t, d.IsComplete("OrderFacade"))
	assert.False(t, d.IsComplete("Clock"))
}

func TestDeclarationIdentity(t *testing.T) {
	a := Declaration{Target: "Order", Mixins: []MixinSlot{{Mixin: "Audit"}, {Mixin: "Cache"}}}
	b := Declaration{Target: "Order", Mixins: []MixinSlot{{Mixin: "Audit"}, {Mixin: "Cache"}}}
	c := Declaration{Target: "Order", Mixins: []MixinSlot{{Mixin: "Cache"}, {Mixin: "Audit"}}}

	assert.Equal(t, a.Identity(), b.Identity())
	assert.NotEqual(t, a.Identity(), c.Identity(), "mixin order is part of the identity")
	assert.Len(t, a.Identity(), 64)
}
