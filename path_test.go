package externals_test

import (
	"testing"

	"github.com/brettbedarf/externals"
	"github.com/brettbedarf/externals/filesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitSegments(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{}},
		{"/", []string{}},
		{"a", []string{"a"}},
		{"/a/b/", []string{"a", "b"}},
		{"a//b", []string{"a", "b"}},
		{"///a", []string{"a"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, externals.SplitSegments(tt.in))
		})
	}
}

func TestAppendSegments(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		base []string
		in   string
		want []string
	}{
		{"Plain", []string{"a"}, "b/c", []string{"a", "b", "c"}},
		{"Dot", []string{"a"}, "./b/.", []string{"a", "b"}},
		{"DotDot", []string{"a", "b"}, "..", []string{"a"}},
		{"DotDotInside", []string{"a"}, "b/../c", []string{"a", "c"}},
		{"ClampedAtRoot", []string{"a"}, "../../../x", []string{"x"}},
		{"RootStaysRoot", nil, "..", nil},
		{"Empty", []string{"a"}, "", []string{"a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := externals.AppendSegments(tt.base, tt.in)
			assert.Equal(t, externals.JoinSegments(tt.want), externals.JoinSegments(got))
			assert.Len(t, got, len(tt.want))
		})
	}
}

func TestAppendSegments_DoesNotModifyBase(t *testing.T) {
	t.Parallel()

	base := make([]string, 2, 8)
	base[0], base[1] = "a", "b"
	first := externals.AppendSegments(base, "../x")
	second := externals.AppendSegments(base, "y")

	assert.Equal(t, []string{"a", "b"}, base)
	assert.Equal(t, []string{"a", "x"}, first)
	assert.Equal(t, []string{"a", "b", "y"}, second)
}

func TestIsValidName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want bool
	}{
		{"a", true},
		{"/a/b/", true},
		{".git", true},
		{"..hidden", true},
		{"", false},
		{"/", false},
		{".", false},
		{"..", false},
		{"../../escaped", false},
		{"a/../b", false},
		{"a/./b", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, externals.IsValidName(tt.name))
		})
	}
}

func TestJoinSegments(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/", externals.JoinSegments(nil))
	assert.Equal(t, "/a", externals.JoinSegments([]string{"a"}))
	assert.Equal(t, "/a/b", externals.JoinSegments(externals.SplitSegments("a//b/")))
}

func TestEqual(t *testing.T) {
	t.Parallel()

	fs := filesystem.New()
	assert.True(t, externals.Equal(fs.Path("/a/b"), fs.Root().Child("a").Child("b")))
	assert.False(t, externals.Equal(fs.Path("/a"), fs.Path("/b")))
	assert.False(t, externals.Equal(fs.Root(), nil))
	assert.True(t, externals.Equal(nil, nil))
}

func TestNamesAndCollect(t *testing.T) {
	t.Parallel()

	fs := filesystem.New()
	for _, p := range []string{"/c", "/a/x", "/b"} {
		require.NoError(t, fs.Path(p).SetContent([]byte(p)))
	}

	assert.Equal(t, []string{"a", "b", "c"}, externals.Names(fs.Root()))
	assert.Len(t, externals.Collect(fs.Root()), 3)
	assert.Empty(t, externals.Collect(fs.Path("/c")))
}
