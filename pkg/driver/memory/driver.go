// Package memory implements the mutable key/value driver of the VFS,
// including the ciphertext-only vault sub-namespace.
//
// The driver derives a namespace from the first path segment and applies
// that namespace's write rules:
//
//	vault/*  values must carry the ciphertext marker prefix
//	sys/*    values must be non-empty and single-line
//	proc/*   never writable, no exceptions
//	user/*   unconstrained (as is any unrecognized namespace)
//
// A driver instance can instead be pinned to a single namespace with
// Options.Namespace. A pinned instance treats every path as a key inside
// that namespace; mounting a vault-pinned instance at "vault/" makes
// "vault/token" and "memory/vault/token" address the same stored entry.
package memory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/ShipFail/promptware-sub001/pkg/store"
	"github.com/ShipFail/promptware-sub001/pkg/vfs"
)

// Namespace names recognized by the driver. Derived from the first path
// segment; anything else behaves like NamespaceUser.
const (
	NamespaceVault = "vault"
	NamespaceSys   = "sys"
	NamespaceProc  = "proc"
	NamespaceUser  = "user"
)

// DefaultMarker is the ciphertext marker prefix accepted in the vault
// namespace when none is configured.
const DefaultMarker = "pwenc:"

// GeneratorSource serves dynamically generated values for proc keys. The
// proc driver's generator registry satisfies it; sharing one registry
// between the two drivers is what makes "memory/proc/x" and "proc/x" agree.
type GeneratorSource interface {
	// Generate returns the generated value for path and whether a generator
	// is registered there.
	Generate(ctx context.Context, path string) (string, bool, error)

	// Paths returns the registered generator paths, sorted.
	Paths() []string
}

// Options configures a Driver.
type Options struct {
	// Store is the origin-scoped backing store. Required.
	Store store.Store

	// Origin scopes every operation. Required.
	Origin vfs.Origin

	// Marker is the ciphertext marker prefix for vault writes. Defaults to
	// DefaultMarker.
	Marker string

	// Namespace pins the instance to a single namespace. Empty means the
	// namespace is derived per-path from the first segment.
	Namespace string

	// Generators optionally serves proc reads. Unset means proc keys fall
	// back to the backing store only.
	Generators GeneratorSource

	// Logger is optional.
	Logger *slog.Logger
}

// Driver implements vfs.Driver over an origin-scoped Store.
type Driver struct {
	store      store.Store
	origin     vfs.Origin
	marker     string
	namespace  string
	generators GeneratorSource
	logger     *slog.Logger
}

var _ vfs.Driver = (*Driver)(nil)

// New creates a memory driver.
func New(opts Options) (*Driver, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("memory driver: store is required")
	}
	if opts.Origin == "" {
		return nil, fmt.Errorf("memory driver: origin is required")
	}
	if opts.Marker == "" {
		opts.Marker = DefaultMarker
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Driver{
		store:      opts.Store,
		origin:     opts.Origin,
		marker:     opts.Marker,
		namespace:  opts.Namespace,
		generators: opts.Generators,
		logger:     opts.Logger.With("driver", "memory"),
	}, nil
}

// Name identifies the driver in logs and errors.
func (d *Driver) Name() string {
	if d.namespace != "" {
		return d.namespace
	}
	return "memory"
}

// Capabilities returns the static descriptor: readable and writable, never
// executable.
func (d *Driver) Capabilities() vfs.Capabilities {
	return vfs.Capabilities{Readable: true, Writable: true}
}

// namespaceOf resolves the namespace governing a driver-relative path.
func (d *Driver) namespaceOf(path string) string {
	if d.namespace != "" {
		return d.namespace
	}
	ns, _ := vfs.FirstSegment(path)
	return ns
}

// storageKey maps a driver-relative path to its backing-store key. Pinned
// instances prepend their namespace so that both addressing forms land on
// the same entry.
func (d *Driver) storageKey(path string) string {
	if d.namespace != "" {
		return d.namespace + "/" + path
	}
	return path
}

// relativeKey is the inverse of storageKey, used when listing.
func (d *Driver) relativeKey(key string) string {
	if d.namespace != "" {
		return strings.TrimPrefix(key, d.namespace+"/")
	}
	return key
}

// Validate enforces the per-namespace write rules before any I/O.
func (d *Driver) Validate(ctx context.Context, op vfs.Operation, path, value string) error {
	if op != vfs.OpWrite && op != vfs.OpDelete {
		return nil
	}

	ns := d.namespaceOf(path)

	// Deletions carry no value; only the proc prohibition applies to them.
	if ns == NamespaceProc {
		return vfs.Forbiddenf(path, "proc namespace is never writable")
	}
	if op == vfs.OpDelete {
		return nil
	}

	switch ns {
	case NamespaceVault:
		if value == "" {
			return vfs.BadRequestf(path, "vault write requires a value")
		}
		if !strings.HasPrefix(value, d.marker) {
			// The payload itself must never appear here.
			return vfs.Unprocessablef(path, "vault values must carry the %s ciphertext marker", d.marker)
		}
	case NamespaceSys:
		if value == "" {
			return vfs.BadRequestf(path, "sys write requires a value")
		}
		if strings.ContainsAny(value, "\n\r") {
			return vfs.Unprocessablef(path, "sys values must be a single line")
		}
	}
	return nil
}

// Read returns the stored value, or the generated one for proc keys with a
// registered generator.
func (d *Driver) Read(ctx context.Context, path string) (string, error) {
	if d.generators != nil && d.namespaceOf(path) == NamespaceProc {
		rel := path
		if d.namespace == "" {
			_, rel = vfs.FirstSegment(path)
		}
		if value, ok, err := d.generators.Generate(ctx, rel); ok || err != nil {
			return value, err
		}
	}

	value, err := d.store.Get(ctx, d.origin, d.storageKey(path))
	if errors.Is(err, store.ErrKeyNotFound) {
		return "", vfs.NotFound(path)
	}
	return value, err
}

// Write stores value at path. Namespace rules have already been enforced by
// Validate; the driver never transforms the payload.
func (d *Driver) Write(ctx context.Context, path, value string) error {
	return d.store.Put(ctx, d.origin, d.storageKey(path), value)
}

// Delete removes the entry at path.
func (d *Driver) Delete(ctx context.Context, path string) error {
	err := d.store.Delete(ctx, d.origin, d.storageKey(path))
	if errors.Is(err, store.ErrKeyNotFound) {
		return vfs.NotFound(path)
	}
	return err
}

// List returns stored keys under prefix, merged with generator paths when
// the prefix reaches into the proc namespace.
func (d *Driver) List(ctx context.Context, prefix string) ([]string, error) {
	keys, err := d.store.Scan(ctx, d.origin, d.storageKey(prefix))
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, d.relativeKey(k))
	}

	if d.generators != nil && d.namespace == "" {
		for _, p := range d.generators.Paths() {
			full := NamespaceProc + "/" + p
			if strings.HasPrefix(full, prefix) {
				out = append(out, full)
			}
		}
		out = dedupSorted(out)
	}
	return out, nil
}

// Ingest is not part of this driver's surface.
func (d *Driver) Ingest(ctx context.Context, path string) error {
	return vfs.Forbiddenf(path, "memory driver does not support ingest")
}

func dedupSorted(keys []string) []string {
	sort.Strings(keys)
	out := keys[:0]
	var prev string
	for i, k := range keys {
		if i > 0 && k == prev {
			continue
		}
		out = append(out, k)
		prev = k
	}
	return out
}
