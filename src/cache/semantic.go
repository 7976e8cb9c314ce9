// SPDX-License-Identifier: MIT

package cache

import (
	"bytes"
	"encoding/gob"
)

// SemanticCache is a disabled scaffold for a query-vector lookup never
// wired to the live search path. It stores a hashed bag-of-words vector per
// query under the "qvec:" prefix so a future cosine-similarity lookup has
// somewhere to read from; Lookup always reports a miss until that
// comparison is implemented.
type SemanticCache struct {
	store *Store
}

// NewSemanticCache wraps an existing Store; it does not open its own file.
func NewSemanticCache(store *Store) *SemanticCache {
	return &SemanticCache{store: store}
}

// QueryVector is a hashed bag-of-words representation of a query.
type QueryVector struct {
	QueryHash string
	Terms     map[uint32]float64 // token hash -> weight
}

// StoreVector persists a query's vector under "qvec:"+query_hash. Present so
// a future implementation has a write path to build on; nothing currently
// calls it from the orchestrator.
func (c *SemanticCache) StoreVector(queryHash string, vec QueryVector) error {
	encoded, err := encodeVector(vec)
	if err != nil {
		return err
	}
	return c.store.Set(PrefixQueryVec+queryHash, encoded, nil)
}

// Lookup is the incomplete half of the scaffold: there is no candidate set
// to run cosine similarity against yet, so it always reports a miss rather
// than pretending to implement a comparison that doesn't exist. Tests must
// not depend on this returning a hit.
func (c *SemanticCache) Lookup(queryHash string, minSimilarity float64) (engine string, ok bool) {
	return "", false
}

func encodeVector(vec QueryVector) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&vec); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
