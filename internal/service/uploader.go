package service

import (
	"context"
	"io"
)

// FileUploader abstracts uploading binary data and returning a durable URL.
type FileUploader interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}
