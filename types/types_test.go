package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAllowedInReflexive(t *testing.T) {
	for _, ty := range []Type{Null(), Text(), Bool(), Num(), Int()} {
		require.True(t, ty.IsAllowedIn(ty), "%s should allow itself", ty)
	}
}

func TestArrayGenericConcession(t *testing.T) {
	for _, elem := range []Type{Text(), Bool(), Num(), Int()} {
		arr := Array(elem)
		generic := Array(Generic())
		require.True(t, arr.IsAllowedIn(generic))
		require.True(t, generic.IsAllowedIn(arr))
	}
}

func TestArraySubsetFollowsElem(t *testing.T) {
	require.True(t, Array(Int()).IsSubsetOf(Array(Num())))
	require.False(t, Array(Num()).IsSubsetOf(Array(Int())))
	require.True(t, Array(Int()).IsSubsetOf(Array(Generic())))
}

func TestExclude(t *testing.T) {
	u := Union(Text(), Int())
	rest, ok := u.Exclude(Text())
	require.True(t, ok)
	require.True(t, rest.Equal(Int()))

	_, ok = Text().Exclude(Text())
	require.False(t, ok)
}

func TestCanIntersectSymmetric(t *testing.T) {
	pairs := [][2]Type{
		{Int(), Num()},
		{Text(), Bool()},
		{Union(Text(), Int()), Union(Int(), Bool())},
		{Generic(), Text()},
	}
	for _, p := range pairs {
		require.Equal(t, p[0].CanIntersect(p[1]), p[1].CanIntersect(p[0]))
	}
}

func TestUnionFlattensAndDedupes(t *testing.T) {
	u := Union(Union(Text(), Int()), Int(), Bool())
	require.Equal(t, "Text | Int | Bool", u.String())
}

func TestParseTypeGrammar(t *testing.T) {
	ty, err := Parse([]string{"[", "Int", "]"})
	require.NoError(t, err)
	require.True(t, ty.Equal(Array(Int())))

	ty, err = Parse([]string{"Text", "|", "Int"})
	require.NoError(t, err)
	require.True(t, ty.Equal(Union(Text(), Int())))

	_, err = Parse([]string{"[", "[", "Int", "]", "]"})
	require.Error(t, err)

	_, err = Parse([]string{"String"})
	require.ErrorContains(t, err, "Text")
}
