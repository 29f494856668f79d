package code

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// MountEntry maps a logical path prefix to a base location.
type MountEntry struct {
	// Prefix is the logical prefix, stored in canonical form (no leading
	// separator, trailing separator preserved as given).
	Prefix string

	// Base is the location the prefix maps to: an https or file URL.
	Base string
}

// MountTable resolves logical paths to fetchable locations: an ordered set
// of prefix→base entries plus a root/default base used when no prefix
// matches. Entries are matched longest-prefix-first, so a more specific
// mount always wins over a broader one.
//
// The table is immutable after construction.
type MountTable struct {
	root    string
	entries []MountEntry // sorted longest-prefix-first
}

// NewMountTable validates and builds a table.
//
// Rules enforced here (configuration errors, not per-call conditions):
//   - root and every base must be an https or file URL
//   - a "/" (or empty) prefix entry must not duplicate the root: the root
//     already is the catch-all mapping
//   - prefixes must be unique after normalization
func NewMountTable(root string, mounts map[string]string) (*MountTable, error) {
	if err := checkLocation(root); err != nil {
		return nil, fmt.Errorf("mount table: root: %w", err)
	}
	root = strings.TrimSuffix(root, "/")

	entries := make([]MountEntry, 0, len(mounts))
	seen := make(map[string]bool, len(mounts))
	for prefix, base := range mounts {
		if err := checkLocation(base); err != nil {
			return nil, fmt.Errorf("mount table: %q: %w", prefix, err)
		}
		norm := strings.TrimPrefix(prefix, "/")
		if norm == "" && strings.TrimSuffix(base, "/") == root {
			return nil, fmt.Errorf("mount table: %q duplicates the root location", prefix)
		}
		if seen[norm] {
			return nil, fmt.Errorf("mount table: duplicate prefix %q", prefix)
		}
		seen[norm] = true
		entries = append(entries, MountEntry{Prefix: norm, Base: strings.TrimSuffix(base, "/")})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return len(entries[i].Prefix) > len(entries[j].Prefix)
	})

	return &MountTable{root: root, entries: entries}, nil
}

// checkLocation verifies a base location uses one of the two permitted
// schemes.
func checkLocation(location string) error {
	u, err := url.Parse(location)
	if err != nil {
		return fmt.Errorf("invalid URL %q: %w", location, err)
	}
	switch u.Scheme {
	case "https", "file":
		return nil
	default:
		return fmt.Errorf("unsupported scheme %q in %q (https and file only)", u.Scheme, location)
	}
}

// Root returns the default base location.
func (t *MountTable) Root() string {
	return t.root
}

// Resolve maps a driver-relative logical path to a fetchable location.
// The longest matching prefix wins; with no match the root is the base.
// Exactly one separator joins base and remainder.
func (t *MountTable) Resolve(path string) string {
	path = strings.TrimPrefix(path, "/")
	for _, e := range t.entries {
		if strings.HasPrefix(path, e.Prefix) {
			return join(e.Base, strings.TrimPrefix(path, e.Prefix))
		}
	}
	return join(t.root, path)
}

// Render produces the multi-line view served at proc/mounts: one
// "prefix base" line per entry, most specific first, root last.
func (t *MountTable) Render() string {
	var b strings.Builder
	for _, e := range t.entries {
		fmt.Fprintf(&b, "%s %s\n", e.Prefix, e.Base)
	}
	fmt.Fprintf(&b, "/ %s\n", t.root)
	return b.String()
}

func join(base, rest string) string {
	rest = strings.TrimPrefix(rest, "/")
	if rest == "" {
		return base
	}
	return base + "/" + rest
}
