// Package store manages the session-scoped lifecycle of uploaded and
// generated artifacts: creation, token-based addressing, replacement,
// and deletion. One interface, two backends (in-memory, durable
// directory), selected at composition time.
package store

import "github.com/xiaot623/fmuweb/domain"

// ArtifactStore holds the single active session's artifacts: at most one
// primary (the model package), at most one auxiliary (a bulk input file),
// and any number of results. All artifacts are addressed by opaque tokens
// that are generated fresh on every write and never reused.
//
// Implementations must apply every mutating operation atomically with
// respect to each other; artifacts are immutable once written.
type ArtifactStore interface {
	// PutPrimary replaces the session wholesale: the previous primary,
	// auxiliary, and all results are invalidated before the new primary
	// is stored.
	PutPrimary(name string, data []byte) (string, error)

	// PutAuxiliary stores or replaces the auxiliary artifact. Primary and
	// results are unaffected.
	PutAuxiliary(name string, data []byte) (string, error)

	// PutResult appends a result artifact; prior results are never
	// overwritten or removed.
	PutResult(name string, data []byte) (string, error)

	// Get resolves a token. Unknown tokens and tokens invalidated by a
	// later PutPrimary yield a not_found error; path-shaped tokens that
	// escape a durable backend's root yield invalid_input.
	Get(token string) (*domain.Artifact, error)

	// Primary returns the current primary artifact, or not_found.
	Primary() (*domain.Artifact, error)

	// Auxiliary returns the current auxiliary artifact, or not_found.
	Auxiliary() (*domain.Artifact, error)

	// Clear removes every artifact and resets to an empty session.
	// Individual deletion failures are reported per item and never abort
	// the remaining deletions.
	Clear() domain.ClearReport
}
