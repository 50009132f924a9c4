package models

import "time"

// AccessToken is a viewer credential. The token string itself is the
// primary key and must come from a cryptographically secure source.
//
// SeqCursor is the raw ever-increasing sequential counter; it is reduced
// modulo the live collection size at read time, never at write time, so a
// growing collection keeps advancing the traversal instead of pinning it
// to a stale modulus.
//
// ShuffleOrder is a cached permutation of picture ids and ShuffleCursor the
// next position in it. The order may reference pictures that no longer
// exist; deletions are only purged at the next regeneration.
type AccessToken struct {
	Token         string
	SeqCursor     int64
	ShuffleOrder  []int64
	ShuffleCursor int
	CreatedAt     time.Time
}
