package cache

import "context"

// Cache is a content-addressed store for language model outputs. Keys are
// built by CreateKey; values are whatever the delegate produced, stored
// alongside optional debug data describing the request that produced them.
//
// Implementations must be safe for concurrent use. Eviction and TTL policy,
// if any, belong to the backend.
type Cache interface {
	// Has reports whether key is present.
	Has(ctx context.Context, key string) (bool, error)

	// Get returns the stored value. The second return is false when the
	// key is absent.
	Get(ctx context.Context, key string) (any, bool, error)

	// Set stores value under key. debug carries request context (input,
	// parameters, history) for troubleshooting; backends may discard it.
	Set(ctx context.Context, key string, value any, debug map[string]any) error
}

// Entry is the envelope backends persist for each key.
type Entry struct {
	Result any            `json:"result"`
	Debug  map[string]any `json:"debug,omitempty"`
}
