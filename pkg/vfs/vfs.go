package vfs

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// Entry binds a routing prefix to a driver. Prefixes are literal path
// prefixes of the canonical (scheme-stripped) form, conventionally ending in
// a separator: "sys/", "proc/", "memory/". Exactly one entry carries the
// empty prefix and acts as the catch-all for paths no other prefix claims.
type Entry struct {
	Prefix string
	Driver Driver
}

// VFS routes operations across namespace-specific drivers under one logical
// address space.
//
// Every operation follows the same dispatch pipeline:
//
//  1. Parse and normalize the path; malformed input fails with
//     CodeBadRequest before any driver is consulted.
//  2. Select the driver whose registered prefix is the longest literal
//     prefix of the canonical path, falling back to the catch-all.
//  3. Strip the matched prefix; drivers never see the routing prefix.
//  4. Check the driver's capability descriptor for the operation kind; a
//     missing capability fails with CodeForbidden before the driver's own
//     Validate hook runs.
//  5. Invoke the driver's Validate hook.
//  6. Invoke the operation; the result or its typed error propagates
//     unchanged, with non-taxonomy errors normalized to CodeInternal.
//
// Failure at any step leaves system state untouched: each call is atomic
// with respect to the pipeline.
//
// The routing table is sealed at construction. VFS is safe for concurrent
// use as long as the registered drivers are.
type VFS struct {
	entries []Entry // sorted longest-prefix-first
	logger  *slog.Logger
}

// New builds a router over the given entries.
//
// Requirements:
//   - at least one entry must carry the empty prefix (the catch-all)
//   - prefixes must be unique
//   - drivers must be non-nil
//
// Entries may share a driver instance: the same backend mounted under two
// prefixes is legal and is how the vault namespace is exposed both at
// "vault/" and inside "memory/".
func New(logger *slog.Logger, entries []Entry) (*VFS, error) {
	if logger == nil {
		logger = slog.Default()
	}

	seen := make(map[string]bool, len(entries))
	catchAll := false
	sorted := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Driver == nil {
			return nil, fmt.Errorf("vfs: nil driver for prefix %q", e.Prefix)
		}
		if seen[e.Prefix] {
			return nil, fmt.Errorf("vfs: duplicate prefix %q", e.Prefix)
		}
		seen[e.Prefix] = true
		if e.Prefix == "" {
			catchAll = true
		}
		sorted = append(sorted, e)
	}
	if !catchAll {
		return nil, fmt.Errorf("vfs: no catch-all (empty prefix) driver registered")
	}

	// Longest prefix first; the empty catch-all naturally sorts last.
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].Prefix) > len(sorted[j].Prefix)
	})

	return &VFS{entries: sorted, logger: logger.With("component", "vfs")}, nil
}

// route selects the driver for a canonical path and strips its prefix.
func (v *VFS) route(path string) (Driver, string, string) {
	for _, e := range v.entries {
		if strings.HasPrefix(path, e.Prefix) {
			return e.Driver, e.Prefix, strings.TrimPrefix(path, e.Prefix)
		}
	}
	// Unreachable: the catch-all's empty prefix matches everything.
	panic("vfs: routing table has no catch-all")
}

// dispatch runs the shared pipeline steps 2-5 and returns the selected
// driver plus the driver-relative path.
func (v *VFS) dispatch(ctx context.Context, op Operation, path, value string) (Driver, string, error) {
	drv, prefix, rel := v.route(path)

	if !drv.Capabilities().Allows(op) {
		return nil, "", Forbiddenf(path, "driver %s does not permit %s", drv.Name(), op)
	}

	if err := drv.Validate(ctx, op, rel, value); err != nil {
		return nil, "", Normalize(path, err)
	}

	v.logger.Debug("dispatch",
		"op", op.String(),
		"driver", drv.Name(),
		"prefix", prefix,
		"path", rel,
	)
	return drv, rel, nil
}

// Read returns the value at path.
func (v *VFS) Read(ctx context.Context, path string) (string, error) {
	p, err := ParsePath(path)
	if err != nil {
		return "", err
	}
	drv, rel, err := v.dispatch(ctx, OpRead, p, "")
	if err != nil {
		return "", err
	}
	out, err := drv.Read(ctx, rel)
	if err != nil {
		return "", Normalize(p, err)
	}
	return out, nil
}

// Write stores value at path.
func (v *VFS) Write(ctx context.Context, path, value string) error {
	p, err := ParsePath(path)
	if err != nil {
		return err
	}
	drv, rel, err := v.dispatch(ctx, OpWrite, p, value)
	if err != nil {
		return err
	}
	return Normalize(p, drv.Write(ctx, rel, value))
}

// List enumerates the paths under prefix. Returned paths are full logical
// paths (routing prefix re-attached), so each result is directly readable.
func (v *VFS) List(ctx context.Context, prefix string) ([]string, error) {
	p, err := ParsePrefix(prefix)
	if err != nil {
		return nil, err
	}
	drv, rel, err := v.dispatch(ctx, OpList, p, "")
	if err != nil {
		return nil, err
	}
	keys, err := drv.List(ctx, rel)
	if err != nil {
		return nil, Normalize(p, err)
	}
	mount := strings.TrimSuffix(p, rel)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, mount+k)
	}
	return out, nil
}

// Delete removes the entry at path.
func (v *VFS) Delete(ctx context.Context, path string) error {
	p, err := ParsePath(path)
	if err != nil {
		return err
	}
	drv, rel, err := v.dispatch(ctx, OpDelete, p, "")
	if err != nil {
		return err
	}
	return Normalize(p, drv.Delete(ctx, rel))
}

// Ingest fetches the content at path and loads it into the execution
// context. Only drivers with the Executable capability accept it.
func (v *VFS) Ingest(ctx context.Context, path string) error {
	p, err := ParsePath(path)
	if err != nil {
		return err
	}
	drv, rel, err := v.dispatch(ctx, OpIngest, p, "")
	if err != nil {
		return err
	}
	return Normalize(p, drv.Ingest(ctx, rel))
}
