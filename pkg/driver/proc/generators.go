package proc

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Standard generators wired at boot. Each is a closure over whatever it
// needs — generators never reach into ambient global state.

// Static returns a generator producing a fixed string.
func Static(value string) Generator {
	return func(ctx context.Context) (string, error) {
		return value, nil
	}
}

// Report adapts any string-producing function into a generator, for
// composite multi-line views (mount tables, ingest reports).
func Report(fn func() string) Generator {
	return func(ctx context.Context) (string, error) {
		return fn(), nil
	}
}

// Cmdline produces the process command line, arguments joined by spaces.
func Cmdline() Generator {
	return Static(strings.Join(os.Args, " "))
}

// Uptime produces whole seconds elapsed since start. Successive reads of
// the same path legitimately differ; the driver never caches the result.
func Uptime(start time.Time) Generator {
	return func(ctx context.Context) (string, error) {
		return fmt.Sprintf("%d", int64(time.Since(start).Seconds())), nil
	}
}

// BootID produces a random identifier fixed for the process lifetime. The
// UUID is drawn once, at registration.
func BootID() Generator {
	return Static(uuid.NewString())
}

// ReadFunc is a read-capable handle a composite generator aggregates over.
// It matches the VFS Read signature so the router itself (or a single
// driver) can be injected directly.
type ReadFunc func(ctx context.Context, path string) (string, error)

// Summary produces a multi-line "path: value" view over the given logical
// paths. Paths that fail to read are reported with the failure's text
// instead of a value, so one broken attribute cannot hide the rest.
func Summary(paths []string, read ReadFunc) Generator {
	return func(ctx context.Context) (string, error) {
		var b strings.Builder
		for _, p := range paths {
			value, err := read(ctx, p)
			if err != nil {
				fmt.Fprintf(&b, "%s: <%v>\n", p, err)
				continue
			}
			fmt.Fprintf(&b, "%s: %s\n", p, value)
		}
		return b.String(), nil
	}
}
