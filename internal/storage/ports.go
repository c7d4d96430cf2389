package storage

import "context"

// DefaultKey is where the transaction collection lives unless configured
// otherwise.
const DefaultKey = "finance-transactions"

// KeyValueStore is the durable local namespace the collection is written to.
type KeyValueStore interface {
	// Get returns the value stored under key and whether it exists.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	// Set overwrites the value stored under key.
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}
