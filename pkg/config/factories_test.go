package config

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShipFail/promptware-sub001/pkg/vfs"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newRuntime builds a full runtime over a memory store and a file:// root
// pointing at a temp directory seeded with a couple of code units.
func newRuntime(t *testing.T, mutate func(cfg *Config)) *Runtime {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "boot"), 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "boot", "kernel.md"), []byte("# kernel\n"), 0o644))
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "readme.md"), []byte("hello"), 0o644))

	cfg := &Config{
		Origin: "shell-agent",
		Code:   CodeConfig{RootLocation: "file://" + dir},
	}
	ApplyDefaults(cfg)
	if mutate != nil {
		mutate(cfg)
	}
	require.NoError(t, Validate(cfg))

	rt, err := Build(cfg, testLogger(), "1.2.3-test")
	require.NoError(t, err)
	t.Cleanup(func() { rt.Close() })
	return rt
}

func TestBuild_SysRoundTrip(t *testing.T) {
	rt := newRuntime(t, nil)
	ctx := context.Background()

	require.NoError(t, rt.VFS.Write(ctx, "sys/agents/shell/status", "active"))

	got, err := rt.VFS.Read(ctx, "sys/agents/shell/status")
	require.NoError(t, err)
	assert.Equal(t, "active", got)

	// The same entry is reachable through the general-purpose namespace.
	got, err = rt.VFS.Read(ctx, "memory/sys/agents/shell/status")
	require.NoError(t, err)
	assert.Equal(t, "active", got)

	require.NoError(t, rt.VFS.Delete(ctx, "sys/agents/shell/status"))
	_, err = rt.VFS.Read(ctx, "sys/agents/shell/status")
	assert.True(t, errors.Is(err, vfs.ErrNotFound))
}

func TestBuild_SysRejectsMultiline(t *testing.T) {
	rt := newRuntime(t, nil)

	err := rt.VFS.Write(context.Background(), "sys/agents/shell/status", "a\nb")
	assert.True(t, errors.Is(err, vfs.ErrUnprocessable))
}

func TestBuild_VaultMarkerEnforced(t *testing.T) {
	rt := newRuntime(t, nil)
	ctx := context.Background()

	err := rt.VFS.Write(ctx, "vault/token", "plaintext-secret")
	assert.True(t, errors.Is(err, vfs.ErrUnprocessable))

	require.NoError(t, rt.VFS.Write(ctx, "vault/token", "pwenc:v1:AAAA"))

	got, err := rt.VFS.Read(ctx, "vault/token")
	require.NoError(t, err)
	assert.Equal(t, "pwenc:v1:AAAA", got)

	// Same entry through the aliased addressing form.
	got, err = rt.VFS.Read(ctx, "memory/vault/token")
	require.NoError(t, err)
	assert.Equal(t, "pwenc:v1:AAAA", got)
}

func TestBuild_ProcGenerators(t *testing.T) {
	rt := newRuntime(t, nil)
	ctx := context.Background()

	origin, err := rt.VFS.Read(ctx, "proc/origin")
	require.NoError(t, err)
	assert.Equal(t, "https://shell-agent.local", origin)
	assert.Equal(t, vfs.Origin(origin), rt.Origin)

	version, err := rt.VFS.Read(ctx, "proc/version")
	require.NoError(t, err)
	assert.Equal(t, "1.2.3-test", version)

	bootID, err := rt.VFS.Read(ctx, "proc/boot_id")
	require.NoError(t, err)
	assert.NotEmpty(t, bootID)

	again, err := rt.VFS.Read(ctx, "proc/boot_id")
	require.NoError(t, err)
	assert.Equal(t, bootID, again, "boot id should be stable for the process lifetime")

	status, err := rt.VFS.Read(ctx, "proc/status")
	require.NoError(t, err)
	assert.Contains(t, status, "1.2.3-test")
	assert.Contains(t, status, "https://shell-agent.local")

	mounts, err := rt.VFS.Read(ctx, "proc/mounts")
	require.NoError(t, err)
	assert.Contains(t, mounts, "file://")
}

func TestBuild_ProcIsReadOnly(t *testing.T) {
	rt := newRuntime(t, nil)
	ctx := context.Background()

	err := rt.VFS.Write(ctx, "proc/cmdline", "tampered")
	assert.True(t, errors.Is(err, vfs.ErrForbidden))

	err = rt.VFS.Delete(ctx, "proc/boot_id")
	assert.True(t, errors.Is(err, vfs.ErrForbidden))
}

func TestBuild_CodeReadAndIngest(t *testing.T) {
	rt := newRuntime(t, nil)
	ctx := context.Background()

	got, err := rt.VFS.Read(ctx, "readme.md")
	require.NoError(t, err)
	assert.Equal(t, "hello", got)

	require.NoError(t, rt.VFS.Ingest(ctx, "boot/kernel.md"))

	units := rt.Loader.Units()
	require.Len(t, units, 1)
	assert.Equal(t, "boot/kernel.md", units[0].Path)

	ingests, err := rt.VFS.Read(ctx, "proc/ingests")
	require.NoError(t, err)
	assert.Contains(t, ingests, "boot/kernel.md")
}

func TestBuild_CodeIsNotWritable(t *testing.T) {
	rt := newRuntime(t, nil)

	err := rt.VFS.Write(context.Background(), "readme.md", "overwrite")
	assert.True(t, errors.Is(err, vfs.ErrForbidden))
}

func TestBuild_MissingCodeUnit(t *testing.T) {
	rt := newRuntime(t, nil)

	_, err := rt.VFS.Read(context.Background(), "no/such/unit.md")
	assert.True(t, errors.Is(err, vfs.ErrNotFound))
}

func TestBuild_SchemePrefixAccepted(t *testing.T) {
	rt := newRuntime(t, nil)
	ctx := context.Background()

	require.NoError(t, rt.VFS.Write(ctx, "os://sys/flag", "on"))

	got, err := rt.VFS.Read(ctx, "sys/flag")
	require.NoError(t, err)
	assert.Equal(t, "on", got)
}

func TestRunBootIngest(t *testing.T) {
	rt := newRuntime(t, func(cfg *Config) {
		cfg.Boot.Ingest = []string{"boot/kernel.md", "readme.md"}
	})
	ctx := context.Background()

	require.NoError(t, rt.RunBootIngest(ctx))

	units := rt.Loader.Units()
	require.Len(t, units, 2)
	assert.Equal(t, "boot/kernel.md", units[0].Path)
	assert.Equal(t, "readme.md", units[1].Path)
}

func TestRunBootIngest_FailureAborts(t *testing.T) {
	rt := newRuntime(t, func(cfg *Config) {
		cfg.Boot.Ingest = []string{"missing.md", "readme.md"}
	})

	err := rt.RunBootIngest(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, vfs.ErrNotFound))
	assert.Empty(t, rt.Loader.Units(), "nothing should load after the first failure")
}

func TestBuild_ListSysSubtree(t *testing.T) {
	rt := newRuntime(t, nil)
	ctx := context.Background()

	require.NoError(t, rt.VFS.Write(ctx, "sys/agents/a", "1"))
	require.NoError(t, rt.VFS.Write(ctx, "sys/agents/b", "2"))
	require.NoError(t, rt.VFS.Write(ctx, "sys/other", "3"))

	keys, err := rt.VFS.List(ctx, "sys/agents/")
	require.NoError(t, err)
	assert.Equal(t, []string{"sys/agents/a", "sys/agents/b"}, keys)
}

func TestCreateStore_UnknownType(t *testing.T) {
	_, err := CreateStore(&StorageConfig{Type: "etcd"}, testLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown storage type")
}
