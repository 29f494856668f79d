// Package sys implements the control-attribute driver of the VFS.
//
// Every attribute is exactly one semantic value: non-empty, single-line.
// Writes are atomic per attribute — an individual write fully succeeds or is
// fully rejected, and callers wanting multi-attribute transactions compose
// them at a higher layer.
//
// Attributes live in the "sys" namespace of the shared origin-scoped store,
// so "sys/x" and "memory/sys/x" address the same entry.
package sys

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ShipFail/promptware-sub001/pkg/store"
	"github.com/ShipFail/promptware-sub001/pkg/vfs"
)

// namespace is the storage namespace shared with the memory driver.
const namespace = "sys/"

// Driver implements vfs.Driver for single-value control attributes.
type Driver struct {
	store  store.Store
	origin vfs.Origin
	logger *slog.Logger
}

var _ vfs.Driver = (*Driver)(nil)

// New creates a sys driver over the given origin-scoped store.
func New(s store.Store, origin vfs.Origin, logger *slog.Logger) (*Driver, error) {
	if s == nil {
		return nil, fmt.Errorf("sys driver: store is required")
	}
	if origin == "" {
		return nil, fmt.Errorf("sys driver: origin is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{store: s, origin: origin, logger: logger.With("driver", "sys")}, nil
}

// Name identifies the driver in logs and errors.
func (d *Driver) Name() string { return "sys" }

// Capabilities returns the static descriptor: readable and writable, never
// executable.
func (d *Driver) Capabilities() vfs.Capabilities {
	return vfs.Capabilities{Readable: true, Writable: true}
}

// Validate enforces the driver's single normative rule: every attribute is
// exactly one non-empty line.
func (d *Driver) Validate(ctx context.Context, op vfs.Operation, path, value string) error {
	if op != vfs.OpWrite {
		return nil
	}
	if value == "" {
		return vfs.BadRequestf(path, "sys write requires a value")
	}
	if strings.ContainsAny(value, "\n\r") {
		return vfs.Unprocessablef(path, "sys values must be a single line")
	}
	return nil
}

// Read returns the exact stored attribute value.
func (d *Driver) Read(ctx context.Context, path string) (string, error) {
	value, err := d.store.Get(ctx, d.origin, namespace+path)
	if errors.Is(err, store.ErrKeyNotFound) {
		return "", vfs.NotFound(path)
	}
	return value, err
}

// Write atomically overwrites the attribute.
func (d *Driver) Write(ctx context.Context, path, value string) error {
	return d.store.Put(ctx, d.origin, namespace+path, value)
}

// Delete removes the attribute.
func (d *Driver) Delete(ctx context.Context, path string) error {
	err := d.store.Delete(ctx, d.origin, namespace+path)
	if errors.Is(err, store.ErrKeyNotFound) {
		return vfs.NotFound(path)
	}
	return err
}

// List returns stored attribute keys under prefix.
func (d *Driver) List(ctx context.Context, prefix string) ([]string, error) {
	keys, err := d.store.Scan(ctx, d.origin, namespace+prefix)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, strings.TrimPrefix(k, namespace))
	}
	return out, nil
}

// Ingest is not part of this driver's surface.
func (d *Driver) Ingest(ctx context.Context, path string) error {
	return vfs.Forbiddenf(path, "sys driver does not support ingest")
}
