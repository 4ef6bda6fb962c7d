// Package storage wraps the external blob store used for menu, location
// and event images. The platform only needs two operations from it:
// put an object and derive its public URL.
package storage

import "context"

// Uploader stores an image and returns its publicly reachable URL.
type Uploader interface {
	Upload(ctx context.Context, filename, contentType string, data []byte) (string, error)
}
