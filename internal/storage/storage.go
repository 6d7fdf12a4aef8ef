// Package storage provides the key-value capability that backs every
// per-profile blob (order history, auth tokens). Values are opaque bytes;
// callers own the encoding.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrUnknownDriver is returned by Open for an unsupported driver name.
var ErrUnknownDriver = errors.New("unknown storage driver")

// Storage reads and writes whole blobs by key.
// Get reports ok=false when the key has never been written or was deleted.
type Storage interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Key namespaces a blob under a browser profile.
func Key(profileID uuid.UUID, name string) string {
	return fmt.Sprintf("profile:%s:%s", profileID, name)
}

// validKey rejects keys that could escape a file-backed namespace.
func validKey(key string) error {
	if key == "" {
		return fmt.Errorf("storage: empty key")
	}
	if strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return fmt.Errorf("storage: invalid key %q", key)
	}
	return nil
}
