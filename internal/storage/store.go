// Package storage talks to the external object storage service. Objects
// are addressed by path; the service owns the bytes, the core only
// guarantees it never records a path that was not successfully written.
package storage

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors - use with errors.Is()
var (
	// ErrObjectExists is reported when an upload without overwrite hits
	// an object already stored at the target path.
	ErrObjectExists = errors.New("object already exists")

	// ErrObjectNotFound is reported when no object is stored at the
	// requested path.
	ErrObjectNotFound = errors.New("object not found")
)

// UploadOptions controls a single upload call.
type UploadOptions struct {
	// AllowOverwrite permits replacing an existing object. The upload
	// pipeline always uploads with this unset so an occupied path
	// surfaces as ErrObjectExists instead of clobbering a referenced
	// version.
	AllowOverwrite bool

	// ContentType is the MIME type recorded with the object.
	ContentType string
}

// ObjectStore is the storage service surface the core depends on.
type ObjectStore interface {
	Upload(ctx context.Context, path string, data []byte, opts UploadOptions) error
	Download(ctx context.Context, path string) ([]byte, error)
	Remove(ctx context.Context, path string) error
	SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error)
}
