package cache

import (
	"context"
	"time"
)

// KV is a small read-through cache for hot registry records. A miss is not
// an error; Get reports whether the key was present.
type KV interface {
	// Get decodes the cached value for k into v and reports whether k was present.
	Get(ctx context.Context, k string, v any) (bool, error)
	// Set stores v under k for ttl.
	Set(ctx context.Context, k string, v any, ttl time.Duration) error
	// Del removes k.
	Del(ctx context.Context, k string) error
}

func DocumentKey(id string) string {
	return "document:" + id
}

func AgentKey(id string) string {
	return "agent:" + id
}

func LocationKey(id string) string {
	return "location:" + id
}
