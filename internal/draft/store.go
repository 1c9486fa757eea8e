// Package draft owns the locally-persisted workout draft: one serialized
// blob per user, written through on every edit, reconciled against history
// on load, and cleared exactly once a finalize commit succeeds.
package draft

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Store.Get when the user has no stored draft.
var ErrNotFound = errors.New("no draft stored")

// Store persists one opaque draft blob per user. No concurrency control and
// no versioning beyond whole-value replace: the editing client instance is
// the single writer.
type Store interface {
	Get(ctx context.Context, userID int) ([]byte, error)
	Put(ctx context.Context, userID int, blob []byte) error
	Delete(ctx context.Context, userID int) error
	Close() error
}
