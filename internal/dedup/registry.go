// Package dedup interns byte-keyed values encountered while building a
// Drawing for re-encoding, returning a stable arena index for identical
// content instead of appending a duplicate (SPEC_FULL.md §A.3).
//
// It generalises internal/collision's metric-name interning (mebo tracked
// which metric name a hash belonged to during blob encoding) to arbitrary
// byte keys: here the keys are serialised AttributeSet/Metrics/Transform
// values rather than metric names, and a hash collision between genuinely
// different values is recorded rather than silently merged.
package dedup

import (
	"bytes"

	"github.com/inkstream/isf/internal/hash"
)

// Registry maps content hashes to arena indices.
type Registry struct {
	byHash       map[uint64]int
	values       [][]byte
	hasCollision bool
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byHash: make(map[uint64]int)}
}

// Intern returns the index key was first seen at, appending it as a new
// entry if this exact content hasn't been interned before. Two distinct
// keys that hash to the same bucket are both kept as separate entries;
// HasCollision reports that this happened.
func (r *Registry) Intern(key []byte) int {
	h := hash.Bytes(key)
	if idx, ok := r.byHash[h]; ok {
		if bytes.Equal(r.values[idx], key) {
			return idx
		}
		r.hasCollision = true
	}

	idx := len(r.values)
	r.values = append(r.values, append([]byte(nil), key...))
	r.byHash[h] = idx

	return idx
}

// HasCollision reports whether two distinct keys have hashed to the same
// bucket during this registry's lifetime.
func (r *Registry) HasCollision() bool { return r.hasCollision }

// Count returns the number of distinct entries interned so far.
func (r *Registry) Count() int { return len(r.values) }

// Reset clears all interned entries, preserving allocated capacity.
func (r *Registry) Reset() {
	for k := range r.byHash {
		delete(r.byHash, k)
	}
	r.values = r.values[:0]
	r.hasCollision = false
}
