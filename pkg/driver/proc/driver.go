// Package proc implements the read-only introspection driver of the VFS.
//
// Reads are served by registered generator functions when one exists at the
// requested path, falling back to the backing store otherwise. Generated
// values may be multi-line and may differ between successive reads; the
// driver never caches them. Writes are never permitted, with no exceptions.
package proc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/ShipFail/promptware-sub001/pkg/store"
	"github.com/ShipFail/promptware-sub001/pkg/vfs"
)

// namespace is the storage namespace shared with the memory driver.
const namespace = "proc/"

// Generator produces a read result on demand. Generators must be
// side-effect-free and should be fast. They may aggregate other reads,
// including reads back through the VFS, but must not form a cycle — a
// generator that transitively reads its own path is a caller bug.
type Generator func(ctx context.Context) (string, error)

// Registry holds the generators registered at boot. It satisfies the memory
// driver's GeneratorSource, so one registry can back both drivers and keep
// "proc/x" and "memory/proc/x" in agreement.
type Registry struct {
	mu   sync.RWMutex
	gens map[string]Generator
}

// NewRegistry creates an empty generator registry.
func NewRegistry() *Registry {
	return &Registry{gens: make(map[string]Generator)}
}

// Register binds a generator to a driver-relative path. Registering twice
// under the same path is a wiring bug and fails.
func (r *Registry) Register(path string, g Generator) error {
	if path == "" {
		return fmt.Errorf("proc registry: empty generator path")
	}
	if g == nil {
		return fmt.Errorf("proc registry: nil generator for %q", path)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.gens[path]; exists {
		return fmt.Errorf("proc registry: generator already registered at %q", path)
	}
	r.gens[path] = g
	return nil
}

// Generate invokes the generator at path, reporting whether one exists.
func (r *Registry) Generate(ctx context.Context, path string) (string, bool, error) {
	r.mu.RLock()
	g, ok := r.gens[path]
	r.mu.RUnlock()
	if !ok {
		return "", false, nil
	}
	value, err := g(ctx)
	return value, true, err
}

// Paths returns the registered generator paths, sorted.
func (r *Registry) Paths() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	paths := make([]string, 0, len(r.gens))
	for p := range r.gens {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Driver implements vfs.Driver for introspection attributes.
type Driver struct {
	store    store.Store
	origin   vfs.Origin
	registry *Registry
	logger   *slog.Logger
}

var _ vfs.Driver = (*Driver)(nil)

// New creates a proc driver. The store may be nil for purely generated
// instances; the registry is required.
func New(s store.Store, origin vfs.Origin, registry *Registry, logger *slog.Logger) (*Driver, error) {
	if registry == nil {
		return nil, fmt.Errorf("proc driver: registry is required")
	}
	if s != nil && origin == "" {
		return nil, fmt.Errorf("proc driver: origin is required with a store")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{store: s, origin: origin, registry: registry, logger: logger.With("driver", "proc")}, nil
}

// Name identifies the driver in logs and errors.
func (d *Driver) Name() string { return "proc" }

// Capabilities returns the static descriptor: readable only.
func (d *Driver) Capabilities() vfs.Capabilities {
	return vfs.Capabilities{Readable: true}
}

// Validate unconditionally rejects mutation. The capability descriptor
// already denies these operations at the router, but the hook must hold the
// line on its own in case capability enforcement is ever bypassed.
func (d *Driver) Validate(ctx context.Context, op vfs.Operation, path, value string) error {
	if op == vfs.OpWrite || op == vfs.OpDelete {
		return vfs.Forbiddenf(path, "proc attributes are read-only")
	}
	return nil
}

// Read returns the generated value when a generator is registered at path,
// falling back to the backing store.
func (d *Driver) Read(ctx context.Context, path string) (string, error) {
	if value, ok, err := d.registry.Generate(ctx, path); ok || err != nil {
		return value, err
	}

	if d.store == nil {
		return "", vfs.NotFound(path)
	}
	value, err := d.store.Get(ctx, d.origin, namespace+path)
	if errors.Is(err, store.ErrKeyNotFound) {
		return "", vfs.NotFound(path)
	}
	return value, err
}

// Write is never permitted.
func (d *Driver) Write(ctx context.Context, path, value string) error {
	return vfs.Forbiddenf(path, "proc attributes are read-only")
}

// Delete is never permitted.
func (d *Driver) Delete(ctx context.Context, path string) error {
	return vfs.Forbiddenf(path, "proc attributes are read-only")
}

// List returns the union of registered generator paths and backing-store
// keys under prefix, sorted and deduplicated.
func (d *Driver) List(ctx context.Context, prefix string) ([]string, error) {
	out := make([]string, 0)
	for _, p := range d.registry.Paths() {
		if strings.HasPrefix(p, prefix) {
			out = append(out, p)
		}
	}

	if d.store != nil {
		keys, err := d.store.Scan(ctx, d.origin, namespace+prefix)
		if err != nil {
			return nil, err
		}
		for _, k := range keys {
			out = append(out, strings.TrimPrefix(k, namespace))
		}
	}

	sort.Strings(out)
	dedup := out[:0]
	var prev string
	for i, k := range out {
		if i > 0 && k == prev {
			continue
		}
		dedup = append(dedup, k)
		prev = k
	}
	return dedup, nil
}

// Ingest is not part of this driver's surface.
func (d *Driver) Ingest(ctx context.Context, path string) error {
	return vfs.Forbiddenf(path, "proc driver does not support ingest")
}
