package code

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

// LoadedUnit describes one piece of code handed to the execution context.
type LoadedUnit struct {
	// Path is the logical path the unit was ingested under.
	Path string

	// Location is the resolved location the content came from.
	Location string

	// Checksum is the xxhash64 of the content, hex-encoded. The content
	// itself is not retained after loading.
	Checksum string

	// LoadedAt is when the unit was handed to the execution context.
	LoadedAt time.Time
}

// Loader receives fetched code and loads it into an execution context. The
// execution context itself is an external collaborator; the driver only
// guarantees that what the loader receives is byte-identical to what a Read
// of the same path would have returned.
type Loader interface {
	Load(ctx context.Context, unit LoadedUnit, content string) error
}

// ContextLoader is the shipped Loader: it records every loaded unit so the
// introspection namespace can report them (see proc/ingests). Records are
// kept in ingest order.
type ContextLoader struct {
	mu     sync.Mutex
	units  []LoadedUnit
	logger *slog.Logger
}

var _ Loader = (*ContextLoader)(nil)

// NewContextLoader creates an empty loader.
func NewContextLoader(logger *slog.Logger) *ContextLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContextLoader{logger: logger.With("component", "loader")}
}

// Load records the unit. The content is hashed and dropped; only metadata
// is retained.
func (l *ContextLoader) Load(ctx context.Context, unit LoadedUnit, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	l.units = append(l.units, unit)
	l.mu.Unlock()

	l.logger.Info("loaded unit",
		"path", unit.Path,
		"location", unit.Location,
		"checksum", unit.Checksum,
	)
	return nil
}

// Units returns a copy of the loaded-unit records in ingest order.
func (l *ContextLoader) Units() []LoadedUnit {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]LoadedUnit, len(l.units))
	copy(out, l.units)
	return out
}

// Report renders the multi-line view served at proc/ingests: one
// "path location checksum" line per loaded unit.
func (l *ContextLoader) Report() string {
	var b strings.Builder
	for _, u := range l.Units() {
		fmt.Fprintf(&b, "%s %s %s\n", u.Path, u.Location, u.Checksum)
	}
	return b.String()
}

// checksum hashes content for LoadedUnit records.
func checksum(content string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(content))
}
