package vfs

import (
	"context"
)

// Operation identifies the kind of VFS call being dispatched. Drivers receive
// it in their Validate hook so a single hook can gate every operation.
type Operation int

const (
	OpRead Operation = iota
	OpWrite
	OpList
	OpDelete
	OpIngest
)

// String returns the lower-case operation name used in logs and errors.
func (op Operation) String() string {
	switch op {
	case OpRead:
		return "read"
	case OpWrite:
		return "write"
	case OpList:
		return "list"
	case OpDelete:
		return "delete"
	case OpIngest:
		return "ingest"
	default:
		return "unknown"
	}
}

// Capabilities is the static descriptor gating which operations a driver may
// ever perform. It is fixed at driver construction and consulted by the
// router before the driver's own Validate hook runs, so a driver cannot
// silently allow an operation its descriptor denies.
type Capabilities struct {
	// Readable gates Read and List.
	Readable bool

	// Writable gates Write and Delete.
	Writable bool

	// Executable gates Ingest.
	Executable bool
}

// Allows reports whether the descriptor permits the given operation kind.
func (c Capabilities) Allows(op Operation) bool {
	switch op {
	case OpRead, OpList:
		return c.Readable
	case OpWrite, OpDelete:
		return c.Writable
	case OpIngest:
		return c.Executable
	default:
		return false
	}
}

// Driver is a pluggable backend mounted under a routing prefix.
//
// Drivers are stateless at the interface level: every call carries the full
// operand. Paths arrive with the routing prefix already stripped — a driver
// mounted at "sys/" sees "agents/shell/status" for the logical path
// "sys/agents/shell/status" and never learns where it is mounted.
//
// Drivers that do not support an operation return a CodeForbidden error
// from it. The router's capability check normally prevents such calls from
// ever arriving, but the methods must still reject when invoked directly.
//
// Thread safety: implementations must be safe for concurrent use by
// multiple goroutines.
type Driver interface {
	// Name identifies the driver in logs and error context.
	Name() string

	// Capabilities returns the driver's static capability descriptor. The
	// returned value must be identical across calls.
	Capabilities() Capabilities

	// Validate may reject an operation before any I/O happens. value is
	// only meaningful for OpWrite; it is empty for every other kind. A nil
	// return means the operation may proceed.
	Validate(ctx context.Context, op Operation, path, value string) error

	// Read returns the value stored (or generated) at path.
	Read(ctx context.Context, path string) (string, error)

	// Write stores value at path, overwriting any previous value.
	Write(ctx context.Context, path, value string) error

	// List returns the paths under prefix, relative to the driver's mount.
	List(ctx context.Context, prefix string) ([]string, error)

	// Delete removes the entry at path.
	Delete(ctx context.Context, path string) error

	// Ingest fetches the content at path and loads it into the execution
	// context. Only the code driver implements this.
	Ingest(ctx context.Context, path string) error
}
