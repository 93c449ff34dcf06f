// Package store defines the container-oriented document store consumed by the
// rest of the system: ordered/filtered queries, one-shot mutations with
// merge-upsert and atomic set semantics, and a change feed per container.
package store

import (
	"context"
	"time"
)

// Fields is the native document shape. Documents returned by queries always
// carry their persistent identifier merged under "id".
type Fields = map[string]any

// serverTimestamp is a write-time sentinel replaced by the store with the
// current server clock.
type serverTimestamp struct{}

// ServerTimestamp marks a field to be assigned by the store at write time.
var ServerTimestamp = serverTimestamp{}

// Filter ops. Anything else is rejected by the store.
const (
	OpEqual        = "=="
	OpNotEqual     = "!="
	OpGreater      = ">"
	OpGreaterEqual = ">="
	OpLess         = "<"
	OpLessEqual    = "<="
)

type Filter struct {
	Field string
	Op    string
	Value any
}

type Order struct {
	Field string
	Desc  bool
}

// Query describes one result set. Limit keeps the first Limit documents in
// query order; Reverse flips the delivered order afterwards, so a descending
// query with Reverse yields "the newest N, oldest first".
type Query struct {
	Filters []Filter
	Sort    []Order
	Limit   int64
	Reverse bool
}

// Where appends an equality-style filter.
func (q Query) Where(field, op string, value any) Query {
	q.Filters = append(q.Filters, Filter{Field: field, Op: op, Value: value})
	return q
}

// OrderBy appends a sort key.
func (q Query) OrderBy(field string, desc bool) Query {
	q.Sort = append(q.Sort, Order{Field: field, Desc: desc})
	return q
}

// Store is the document store contract. All writes are last-writer-wins per
// document except the atomic set operations, which are idempotent set
// union/difference on an array-valued field path.
type Store interface {
	Insert(ctx context.Context, container string, fields Fields) (string, error)
	UpsertMerge(ctx context.Context, container, id string, fields Fields) error
	AtomicSetAdd(ctx context.Context, container, id, fieldPath string, value any) error
	AtomicSetRemove(ctx context.Context, container, id, fieldPath string, value any) error
	GetOnce(ctx context.Context, container, id string) (Fields, error)
	Query(ctx context.Context, container string, q Query) ([]Fields, error)

	// Changes exposes the container change feed fed by this store's writes.
	Changes() *Hub
}

// ResolveTimestamps replaces ServerTimestamp sentinels with now. Both store
// implementations call it on the write path.
func ResolveTimestamps(fields Fields, now time.Time) Fields {
	out := make(Fields, len(fields))
	for k, v := range fields {
		if _, ok := v.(serverTimestamp); ok {
			out[k] = now
			continue
		}
		out[k] = v
	}
	return out
}
