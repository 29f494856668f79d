package sys

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	memstore "github.com/ShipFail/promptware-sub001/pkg/store/memory"
	"github.com/ShipFail/promptware-sub001/pkg/vfs"
)

const testOrigin = vfs.Origin("https://tenant.local")

func newDriver(t *testing.T) *Driver {
	t.Helper()
	d, err := New(memstore.NewMemoryStore(), testOrigin, nil)
	require.NoError(t, err)
	return d
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil, testOrigin, nil)
	require.Error(t, err)

	_, err = New(memstore.NewMemoryStore(), "", nil)
	require.Error(t, err)
}

func TestCapabilities(t *testing.T) {
	caps := newDriver(t).Capabilities()
	assert.True(t, caps.Readable)
	assert.True(t, caps.Writable)
	assert.False(t, caps.Executable)
}

func TestWriteReadRoundTrip(t *testing.T) {
	d := newDriver(t)
	ctx := context.Background()

	require.NoError(t, d.Write(ctx, "agents/shell/status", "active"))

	value, err := d.Read(ctx, "agents/shell/status")
	require.NoError(t, err)
	assert.Equal(t, "active", value)
}

func TestValidate_SingleLineRule(t *testing.T) {
	d := newDriver(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		value    string
		wantCode vfs.ErrorCode
		wantOK   bool
	}{
		{name: "single_line", value: "active", wantOK: true},
		{name: "spaces_fine", value: "active since friday", wantOK: true},
		{name: "newline_rejected", value: "active\nstarted", wantCode: vfs.CodeUnprocessable},
		{name: "carriage_return_rejected", value: "active\rstarted", wantCode: vfs.CodeUnprocessable},
		{name: "empty_rejected", value: "", wantCode: vfs.CodeBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := d.Validate(ctx, vfs.OpWrite, "agents/shell/status", tt.value)
			if tt.wantOK {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, vfs.CodeOf(err))
		})
	}
}

func TestWrite_AtomicOverwrite(t *testing.T) {
	d := newDriver(t)
	ctx := context.Background()

	require.NoError(t, d.Write(ctx, "mode", "bootstrap"))
	require.NoError(t, d.Write(ctx, "mode", "steady"))

	value, err := d.Read(ctx, "mode")
	require.NoError(t, err)
	assert.Equal(t, "steady", value)
}

func TestReadMissing(t *testing.T) {
	d := newDriver(t)
	_, err := d.Read(context.Background(), "nope")
	assert.Equal(t, vfs.CodeNotFound, vfs.CodeOf(err))
}

func TestDelete(t *testing.T) {
	d := newDriver(t)
	ctx := context.Background()

	require.NoError(t, d.Write(ctx, "k", "v"))
	require.NoError(t, d.Delete(ctx, "k"))

	err := d.Delete(ctx, "k")
	assert.Equal(t, vfs.CodeNotFound, vfs.CodeOf(err))
}

func TestList(t *testing.T) {
	d := newDriver(t)
	ctx := context.Background()

	require.NoError(t, d.Write(ctx, "agents/shell/status", "active"))
	require.NoError(t, d.Write(ctx, "agents/search/status", "idle"))
	require.NoError(t, d.Write(ctx, "mode", "steady"))

	keys, err := d.List(ctx, "agents/")
	require.NoError(t, err)
	assert.Equal(t, []string{"agents/search/status", "agents/shell/status"}, keys)
}

func TestIngest_NotSupported(t *testing.T) {
	err := newDriver(t).Ingest(context.Background(), "k")
	assert.Equal(t, vfs.CodeForbidden, vfs.CodeOf(err))
}
