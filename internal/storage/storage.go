// Package storage provides backends for exported analysis reports.
package storage

import "context"

// Storage abstracts where exported reports are written.
type Storage interface {
	// Put writes an object under the given key.
	Put(ctx context.Context, key string, data []byte, contentType string) error

	// Delete removes an object.
	Delete(ctx context.Context, key string) error
}
