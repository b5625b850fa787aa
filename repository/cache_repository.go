package repository

import "context"

// CacheRepository stores generated letter text keyed by report and branding.
type CacheRepository interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key string, value string) error
}
