// Package metadata is a small key/value table in the local database. It
// holds process-wide scalars such as the sync cursor.
package metadata

import (
	"context"
	"time"
)

type Repository interface {
	// Get returns (nil, nil) when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// GetTime decodes a timestamp value; ok is false when the key is absent.
	GetTime(ctx context.Context, key string) (t time.Time, ok bool, err error)
	SetTime(ctx context.Context, key string, t time.Time) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
