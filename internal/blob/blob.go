package blob

import "context"

// Store is a key → JSON document store with whole-document semantics only:
// no partial updates, no locking, no transactions across keys. A Set either
// lands completely or not at all.
type Store interface {
	// Get returns the stored document, or (nil, nil) when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores the document under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes the document. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
