package storage

import (
	"context"
	"io"
)

// FileUploader keeps publicly readable objects, currently tournament logos,
// under caller-chosen keys. Keys are stored in the database; URLs are derived
// from them on every read so the public base can change.
type FileUploader interface {
	// Upload writes reader under key, replacing any existing object.
	Upload(ctx context.Context, key, contentType string, reader io.Reader) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// GetPublicURL returns "" when no public base is configured.
	GetPublicURL(key string) string
}
