package vfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePath(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "plain", raw: "a/b", want: "a/b"},
		{name: "leading_separator", raw: "/a/b", want: "a/b"},
		{name: "scheme", raw: "os://a/b", want: "a/b"},
		{name: "scheme_and_separator", raw: "os:///a/b", want: "a/b"},
		{name: "repeated_separators", raw: "a//b///c", want: "a/b/c"},
		{name: "trailing_separator", raw: "a/b/", want: "a/b"},
		{name: "empty", raw: "", wantErr: true},
		{name: "scheme_only", raw: "os://", wantErr: true},
		{name: "separator_only", raw: "/", wantErr: true},
		{name: "nul_byte", raw: "a/b\x00c", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePath(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, CodeBadRequest, CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// Two paths differing only by a leading separator (or the scheme) must be
// equivalent after normalization.
func TestParsePath_Equivalence(t *testing.T) {
	forms := []string{"a/b", "/a/b", "os://a/b", "os:///a/b"}
	first, err := ParsePath(forms[0])
	require.NoError(t, err)
	for _, f := range forms[1:] {
		got, err := ParsePath(f)
		require.NoError(t, err)
		assert.Equal(t, first, got, "form %q", f)
	}
}

func TestParsePrefix(t *testing.T) {
	// Empty prefix is legal for listings, in both raw forms.
	got, err := ParsePrefix("")
	require.NoError(t, err)
	assert.Equal(t, "", got)

	got, err = ParsePrefix("os://")
	require.NoError(t, err)
	assert.Equal(t, "", got)

	// Trailing separator survives: it is significant for prefix matching.
	got, err = ParsePrefix("sys/agents/")
	require.NoError(t, err)
	assert.Equal(t, "sys/agents/", got)

	_, err = ParsePrefix("a\x00b")
	require.Error(t, err)
}

func TestFirstSegment(t *testing.T) {
	seg, rest := FirstSegment("vault/token")
	assert.Equal(t, "vault", seg)
	assert.Equal(t, "token", rest)

	seg, rest = FirstSegment("token")
	assert.Equal(t, "token", seg)
	assert.Equal(t, "", rest)
}
