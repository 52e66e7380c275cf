package storage

import (
	"context"
	"io"
)

// Uploader writes one object and returns where it was stored.
type Uploader interface {
	Upload(ctx context.Context, objectName string, contentType string, r io.Reader) (storedPath string, err error)
}
