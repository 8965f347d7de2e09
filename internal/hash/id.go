package hash

import "github.com/cespare/xxhash/v2"

// ID computes the xxHash64 of the given string.
func ID(data string) uint64 {
	return xxhash.Sum64String(data)
}

// Bytes computes the xxHash64 of an arbitrary byte slice, used by
// internal/dedup to key interned values that aren't naturally strings
// (serialised AttributeSet/Metrics/Transform content).
func Bytes(data []byte) uint64 {
	return xxhash.Sum64(data)
}
