package port

import "context"

// FileStorage archives uploaded receipts. Paths are relative to the store
// root and may not escape it.
type FileStorage interface {
	Save(ctx context.Context, relPath string, data []byte) error
	Read(ctx context.Context, relPath string) ([]byte, error)
	Exists(ctx context.Context, relPath string) bool
}
