// Package cursor persists the Dropbox list_folder checkpoint.
package cursor

import (
	"context"
	"errors"
)

// Key is the single entry the sync pipeline reads and writes.
const Key = "cursor"

// ErrNotFound is returned by Get when no cursor has been stored under the key.
var ErrNotFound = errors.New("cursor not found")

// Store is a minimal key-value contract. Implementations serialize individual
// calls but offer no cross-call locking.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key, value string) error
}
