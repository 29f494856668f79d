package vfs

import (
	"strings"
)

// Scheme is the single root scheme of the logical address space. Callers may
// address entries with or without it: "os://sys/status" and "sys/status" are
// the same path.
const Scheme = "os://"

// ParsePath normalizes a raw logical path into its canonical routing form.
//
// Normalization:
//   - the optional Scheme prefix is stripped
//   - a leading separator is collapsed ("/a/b" ≡ "a/b")
//   - repeated separators are collapsed ("a//b" ≡ "a/b")
//   - empty paths and paths containing NUL bytes are rejected
//
// The canonical form never starts with a separator. Paths are opaque beyond
// this: no dot-segment resolution, no escaping, no case folding.
func ParsePath(raw string) (string, error) {
	p, err := parse(raw)
	if err != nil {
		return "", err
	}
	p = strings.TrimSuffix(p, "/")
	if p == "" {
		return "", BadRequestf(raw, "empty path")
	}
	return p, nil
}

// ParsePrefix normalizes a raw listing prefix. Identical to ParsePath except
// that the empty prefix is legal (listing "" or "os://" enumerates a whole
// driver) and a trailing separator is preserved, since it is significant for
// prefix matching: "a/" matches only children of a, "a" also matches "ab".
func ParsePrefix(raw string) (string, error) {
	if raw == "" {
		return "", nil
	}
	return parse(raw)
}

func parse(raw string) (string, error) {
	if raw == "" {
		return "", BadRequestf(raw, "empty path")
	}
	if strings.IndexByte(raw, 0) >= 0 {
		return "", BadRequestf("", "path contains NUL byte")
	}

	p := strings.TrimPrefix(raw, Scheme)

	// Collapse runs of separators; this also takes care of the leading one.
	var b strings.Builder
	b.Grow(len(p))
	prevSep := true
	for i := 0; i < len(p); i++ {
		if p[i] == '/' {
			if prevSep {
				continue
			}
			prevSep = true
		} else {
			prevSep = false
		}
		b.WriteByte(p[i])
	}
	return b.String(), nil
}

// FirstSegment splits a canonical path into its first segment and the rest.
// For "vault/token" it returns ("vault", "token"); for "token" it returns
// ("token", "").
func FirstSegment(path string) (segment, rest string) {
	if i := strings.IndexByte(path, '/'); i >= 0 {
		return path[:i], path[i+1:]
	}
	return path, ""
}
