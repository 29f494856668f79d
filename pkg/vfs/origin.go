package vfs

import (
	"fmt"
	"net/url"
	"strings"
)

// Origin is a canonical security principal. Every storage operation is
// implicitly scoped by one Origin; two distinct canonical Origins resolve to
// disjoint storage namespaces with no cross-visibility.
//
// An Origin is fixed at boot from trusted configuration and is immutable for
// the process lifetime. Nothing inside the address space it isolates can
// change it.
type Origin string

// NormalizeOrigin canonicalizes a raw tenant identifier.
//
// Rules:
//   - empty input falls back to fallback (conventionally the root code
//     location), itself normalized by the same rules
//   - a well-formed absolute URL passes through unchanged
//   - anything else is lower-cased, stripped of characters other than
//     alphanumerics and hyphens, and wrapped into the canonical local-domain
//     form "https://<cleaned>.local"
//
// Two raw inputs that normalize to the same canonical value share a storage
// namespace; the canonical value is the namespace key and nothing else is.
func NormalizeOrigin(raw, fallback string) (Origin, error) {
	if raw == "" {
		if fallback == "" {
			return "", fmt.Errorf("origin: empty origin and no fallback")
		}
		return NormalizeOrigin(fallback, "")
	}

	if u, err := url.Parse(raw); err == nil && u.Scheme != "" && (u.Host != "" || u.Path != "") {
		return Origin(raw), nil
	}

	var b strings.Builder
	for _, r := range strings.ToLower(raw) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return "", fmt.Errorf("origin: %q has no usable characters", raw)
	}
	return Origin("https://" + cleaned + ".local"), nil
}
