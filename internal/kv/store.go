// Package kv provides the durable string key-value capability the session
// store is built on. Every backend reports a missing key as
// sentinel.ErrNotFound and applies a Batch as one grouped write.
package kv

import "context"

// Store is the persistent key-value contract.
type Store interface {
	// Get returns the value for key or sentinel.ErrNotFound.
	Get(ctx context.Context, key string) (string, error)
	// MultiGet returns the values present for keys; absent keys are omitted.
	MultiGet(ctx context.Context, keys []string) (map[string]string, error)
	Set(ctx context.Context, key, value string) error
	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
	// MultiRemove deletes keys as one grouped removal.
	MultiRemove(ctx context.Context, keys []string) error
	// Apply performs every operation in b or none of them.
	Apply(ctx context.Context, b *Batch) error
}

// OpKind distinguishes batch operations.
type OpKind int

const (
	OpSet OpKind = iota
	OpRemove
)

// Op is a single batch operation.
type Op struct {
	Kind  OpKind
	Key   string
	Value string
}

// Batch groups writes and removals so a backend can apply them atomically.
// Operations are applied in insertion order.
type Batch struct {
	ops []Op
}

// NewBatch returns an empty batch.
func NewBatch() *Batch {
	return &Batch{}
}

// Set queues a write.
func (b *Batch) Set(key, value string) *Batch {
	b.ops = append(b.ops, Op{Kind: OpSet, Key: key, Value: value})
	return b
}

// Remove queues removals.
func (b *Batch) Remove(keys ...string) *Batch {
	for _, k := range keys {
		b.ops = append(b.ops, Op{Kind: OpRemove, Key: k})
	}
	return b
}

// Ops returns a copy of the queued operations.
func (b *Batch) Ops() []Op {
	if b == nil {
		return nil
	}
	return append([]Op(nil), b.ops...)
}

// Len reports how many operations are queued.
func (b *Batch) Len() int {
	if b == nil {
		return 0
	}
	return len(b.ops)
}

// applyTo replays the batch onto a plain map.
func (b *Batch) applyTo(m map[string]string) {
	if b == nil {
		return
	}
	for _, op := range b.ops {
		switch op.Kind {
		case OpSet:
			m[op.Key] = op.Value
		case OpRemove:
			delete(m, op.Key)
		}
	}
}
