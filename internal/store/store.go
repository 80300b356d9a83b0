// Package store persists guest credentials in a local key/value slot store.
package store

import (
	"errors"

	"github.com/AlexZinkM/guest-wallet/internal/model"
)

// ErrNotFound is returned by Get when nothing is stored under the key.
var ErrNotFound = errors.New("credential not found")

// Store is a synchronous key/value store for credentials. Implementations
// store and return copies, never the caller's pointer.
type Store interface {
	Get(key string) (*model.Credential, error)
	Set(key string, cred *model.Credential) error
	Delete(key string) error
}
