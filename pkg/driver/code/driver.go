// Package code implements the mount-table-driven code fetcher of the VFS.
//
// Logical paths resolve through the mount table to https or file locations.
// Read fetches and returns the content; Ingest fetches identically and then
// hands the content to the loader collaborator, so "inspect this code" and
// "load this code" can never disagree about what a path addresses. Code is
// immutable: Write and Delete are always rejected.
package code

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/ShipFail/promptware-sub001/pkg/vfs"
)

// Driver implements vfs.Driver for the code namespace. It is conventionally
// mounted as the catch-all: every path not claimed by a reserved prefix is
// a code path.
type Driver struct {
	table   *MountTable
	fetcher *Fetcher
	loader  Loader
	logger  *slog.Logger
}

var _ vfs.Driver = (*Driver)(nil)

// New creates a code driver.
func New(table *MountTable, fetcher *Fetcher, loader Loader, logger *slog.Logger) (*Driver, error) {
	if table == nil {
		return nil, fmt.Errorf("code driver: mount table is required")
	}
	if fetcher == nil {
		return nil, fmt.Errorf("code driver: fetcher is required")
	}
	if loader == nil {
		return nil, fmt.Errorf("code driver: loader is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{table: table, fetcher: fetcher, loader: loader, logger: logger.With("driver", "code")}, nil
}

// Name identifies the driver in logs and errors.
func (d *Driver) Name() string { return "code" }

// Capabilities returns the static descriptor: readable and executable,
// never writable.
func (d *Driver) Capabilities() vfs.Capabilities {
	return vfs.Capabilities{Readable: true, Executable: true}
}

// Validate rejects mutation outright. Redundant with the capability
// descriptor, and deliberately so.
func (d *Driver) Validate(ctx context.Context, op vfs.Operation, path, value string) error {
	if op == vfs.OpWrite || op == vfs.OpDelete {
		return vfs.Forbiddenf(path, "code is immutable")
	}
	return nil
}

// fetch resolves and retrieves path. Shared by Read and Ingest so their
// addressing semantics are identical by construction.
func (d *Driver) fetch(ctx context.Context, path string) (location, content string, err error) {
	location = d.table.Resolve(path)
	content, err = d.fetcher.Fetch(ctx, path, location)
	return location, content, err
}

// Read fetches the content at path's resolved location.
func (d *Driver) Read(ctx context.Context, path string) (string, error) {
	_, content, err := d.fetch(ctx, path)
	return content, err
}

// Ingest fetches the content at path and hands it to the loader.
func (d *Driver) Ingest(ctx context.Context, path string) error {
	location, content, err := d.fetch(ctx, path)
	if err != nil {
		return err
	}

	unit := LoadedUnit{
		Path:     path,
		Location: location,
		Checksum: checksum(content),
		LoadedAt: time.Now(),
	}
	if err := d.loader.Load(ctx, unit, content); err != nil {
		return vfs.Normalize(path, err)
	}
	return nil
}

// Write is never permitted: code is immutable.
func (d *Driver) Write(ctx context.Context, path, value string) error {
	return vfs.Forbiddenf(path, "code is immutable")
}

// Delete is never permitted: code is immutable.
func (d *Driver) Delete(ctx context.Context, path string) error {
	return vfs.Forbiddenf(path, "code is immutable")
}

// List enumerates paths under prefix on a best-effort basis. Local file
// bases support real enumeration; remote fetch endpoints are opaque, so a
// prefix resolving to an https base yields an empty listing. This is a
// documented limitation of the namespace, not a failure.
func (d *Driver) List(ctx context.Context, prefix string) ([]string, error) {
	location := d.table.Resolve(prefix)
	u, err := url.Parse(location)
	if err != nil || u.Scheme != "file" {
		return []string{}, nil
	}

	dirEntries, err := os.ReadDir(u.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, vfs.Internal(prefix, err)
	}

	out := make([]string, 0, len(dirEntries))
	for _, e := range dirEntries {
		name := e.Name()
		if e.IsDir() {
			name += "/"
		}
		if prefix != "" {
			name = strings.TrimSuffix(prefix, "/") + "/" + name
		}
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}
