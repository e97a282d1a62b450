package lineage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePolicy(t *testing.T) {
	cases := []struct {
		raw     string
		want    Policy
		wantErr bool
	}{
		{"", PolicyLastWrite, false},
		{"last-write", PolicyLastWrite, false},
		{" Scoped ", PolicyScoped, false},
		{"nearest", "", true},
	}
	for _, tc := range cases {
		got, err := ParsePolicy(tc.raw)
		if tc.wantErr {
			assert.Error(t, err, tc.raw)
			continue
		}
		require.NoError(t, err, tc.raw)
		assert.Equal(t, tc.want, got)
	}
}

func TestRegistry_LastWriteWins(t *testing.T) {
	r := NewRegistry(PolicyLastWrite)

	assert.False(t, r.Declare("x", Location{Line: 1, Column: 5, Length: 1}, "a"))
	require.True(t, r.Reference("x", Location{Line: 2, Column: 1, Length: 1}, "a"))
	assert.True(t, r.Declare("x", Location{Line: 9, Column: 5, Length: 1}, "b"))

	decls := r.Named("x")
	require.Len(t, decls, 1)
	assert.Equal(t, "b", decls[0].Scope)
	assert.Empty(t, decls[0].References)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_ReferenceRequiresDeclaration(t *testing.T) {
	r := NewRegistry(PolicyLastWrite)
	assert.False(t, r.Known("ghost"))
	assert.False(t, r.Reference("ghost", Location{Line: 1, Column: 1}, GlobalScope))
	assert.Nil(t, r.Named("ghost"))
}

func TestRegistry_ScopedKeysByNameAndScope(t *testing.T) {
	r := NewRegistry(PolicyScoped)
	r.Declare("x", Location{Line: 1, Column: 1}, GlobalScope)
	r.Declare("x", Location{Line: 3, Column: 1}, "outer::inner")

	require.True(t, r.Reference("x", Location{Line: 4, Column: 1}, "outer::inner::deep"))
	require.True(t, r.Reference("x", Location{Line: 5, Column: 1}, "outer"))

	decls := r.Named("x")
	require.Len(t, decls, 2)
	assert.Equal(t, GlobalScope, decls[0].Scope)
	assert.Equal(t, "outer", decls[0].References[0].Context)
	assert.Equal(t, "outer::inner", decls[1].Scope)
	assert.Equal(t, "outer::inner::deep", decls[1].References[0].Context)

	// Redeclaring in the same scope still replaces.
	assert.True(t, r.Declare("x", Location{Line: 8, Column: 1}, GlobalScope))
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_AllIsSortedAndDetached(t *testing.T) {
	r := NewRegistry(PolicyScoped)
	r.Declare("zeta", Location{Line: 1, Column: 1}, GlobalScope)
	r.Declare("alpha", Location{Line: 7, Column: 1}, "f")
	r.Declare("alpha", Location{Line: 2, Column: 1}, GlobalScope)
	r.Reference("alpha", Location{Line: 8, Column: 1}, "f")

	all := r.All()
	require.Len(t, all, 3)
	assert.Equal(t, "alpha", all[0].Name)
	assert.Equal(t, uint(2), all[0].Location.Line)
	assert.Equal(t, "alpha", all[1].Name)
	assert.Equal(t, uint(7), all[1].Location.Line)
	assert.Equal(t, "zeta", all[2].Name)

	all[1].References[0].Context = "mutated"
	assert.Equal(t, "f", r.Named("alpha")[0].References[0].Context)
}
