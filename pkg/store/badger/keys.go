package badger

import (
	"fmt"
	"strings"

	"github.com/ShipFail/promptware-sub001/pkg/vfs"
)

// Database Key Namespace Design
// ==============================
//
// BadgerDB is a flat key-value store, so origin isolation is encoded
// directly in the key layout. Every entry belongs to exactly one origin and
// its database key embeds that origin as a prefix:
//
// Data Type     Prefix  Key Format                    Value
// ===========================================================================
// VFS entries   "o:"    o:<len>:<origin>:k:<key>      raw string bytes
//
// Key Design Rationale:
//
// 1. Length-prefixed origin (o:<len>:<origin>:)
//    - The canonical origin is a URL and may itself contain ':' characters,
//      including the ":k:" byte sequence. A delimiter alone cannot mark the
//      origin/key boundary, so the origin's byte length is written first and
//      pins the boundary positionally. Two distinct origins can never share
//      a key prefix: equal lengths force a byte difference inside the
//      fixed-length origin window, and unequal lengths diverge at the
//      length segment.
//    - Isolation falls out of the layout: a prefix scan under one origin can
//      never surface another origin's entries.
//
// 2. Entry marker (k:)
//    - Separates entry keys from any future per-origin record types without
//      a schema migration.
//
// 3. Prefix scans
//    - Listing keys under a logical prefix is a single Badger iteration over
//      o:<len>:<origin>:k:<prefix>, with values not prefetched (keys only).
//    - Badger iterates in lexicographic key order, which gives the sorted
//      listing the Store contract requires for free.

const (
	// prefixOrigin is the leading marker of every per-origin key.
	prefixOrigin = "o:"

	// markerEntry separates the origin from the logical key.
	markerEntry = ":k:"
)

// originPrefix builds the per-origin key prefix, length-prefixing the origin
// so its boundary is unambiguous whatever bytes it contains.
func originPrefix(origin vfs.Origin) string {
	return fmt.Sprintf("%s%d:%s%s", prefixOrigin, len(origin), origin, markerEntry)
}

// entryKey builds the database key for a logical key under an origin.
func entryKey(origin vfs.Origin, key string) []byte {
	return []byte(originPrefix(origin) + key)
}

// scanPrefix builds the database key prefix covering every logical key with
// the given prefix under an origin.
func scanPrefix(origin vfs.Origin, prefix string) []byte {
	return entryKey(origin, prefix)
}

// logicalKey recovers the logical key from a database key produced by
// entryKey for the given origin.
func logicalKey(origin vfs.Origin, dbKey []byte) string {
	return strings.TrimPrefix(string(dbKey), originPrefix(origin))
}
