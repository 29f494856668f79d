package code

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMountTable_Validation(t *testing.T) {
	tests := []struct {
		name    string
		root    string
		mounts  map[string]string
		wantErr bool
	}{
		{name: "https_root", root: "https://host/base/"},
		{name: "file_root", root: "file:///srv/code"},
		{name: "http_root_rejected", root: "http://host/base/", wantErr: true},
		{name: "s3_mount_rejected", root: "https://host/", mounts: map[string]string{"/x/": "s3://bucket/"}, wantErr: true},
		{
			name:    "slash_entry_duplicating_root_rejected",
			root:    "https://host/base/",
			mounts:  map[string]string{"/": "https://host/base/"},
			wantErr: true,
		},
		{
			name:   "slash_entry_with_other_base_allowed",
			root:   "https://host/base/",
			mounts: map[string]string{"/": "https://mirror/base/"},
		},
		{
			name:   "normal_mounts",
			root:   "https://host/base/",
			mounts: map[string]string{"/extra/": "https://other/", "lib/": "file:///srv/lib"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMountTable(tt.root, tt.mounts)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

// Mounted prefixes resolve against their base, everything else against the
// root, with exactly one separator at the joint.
func TestResolve_MountAndRoot(t *testing.T) {
	table, err := NewMountTable("https://host/base/", map[string]string{
		"/extra/": "https://other/",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://other/file.md", table.Resolve("extra/file.md"))
	assert.Equal(t, "https://host/base/agents/shell.md", table.Resolve("agents/shell.md"))

	// Leading separators on the incoming path are immaterial.
	assert.Equal(t, "https://other/file.md", table.Resolve("/extra/file.md"))
}

func TestResolve_LongestPrefixWins(t *testing.T) {
	table, err := NewMountTable("https://root/", map[string]string{
		"/a/":   "https://broad/",
		"/a/b/": "https://narrow/",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://narrow/c", table.Resolve("a/b/c"))
	assert.Equal(t, "https://broad/x", table.Resolve("a/x"))
	assert.Equal(t, "https://root/z", table.Resolve("z"))
}

func TestRender(t *testing.T) {
	table, err := NewMountTable("https://host/base/", map[string]string{
		"/extra/": "https://other/",
	})
	require.NoError(t, err)

	out := table.Render()
	assert.Contains(t, out, "extra/ https://other\n")
	assert.Contains(t, out, "/ https://host/base\n")
}
