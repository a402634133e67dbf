package pkgports

import "context"

// Receiver port describes a message queue consumer that yields decoded values
// together with the raw message they came from
//
// values are read with Consume and must be committed with either OnSuccess or OnFail
type Receiver[Value any, MessageType any] interface {
	Consume(ctx context.Context) (Value, MessageType, error)
	OnSuccess(ctx context.Context, msg MessageType) error
	OnFail(ctx context.Context, retryable bool, msg MessageType) error
}

// Cache describes a cache that might be implemented with different storages
// (e.g. in-memory, redis)
type Cache[Key comparable, Value any] interface {
	Get(ctx context.Context, key Key) (Value, bool, error)
	Set(ctx context.Context, key Key, value Value) error
}
