// Package storage defines the image store contract: binary in, stable
// reference out. The S3 implementation lives in the s3 subpackage.
package storage

import (
	"context"
	"io"
)

// ImageStore stores uploaded binaries and deletes them by reference.
//
// Store returns a stable reference (an object key like "images/abc.png")
// that is persisted on the post and later passed back to Delete. Delete
// errors are reported to the caller, but callers in the post lifecycle
// treat them as best-effort: logged, never failing the parent operation.
type ImageStore interface {
	Store(ctx context.Context, filename string, body io.Reader) (string, error)
	Delete(ctx context.Context, ref string) error
}
