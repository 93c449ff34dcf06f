// Package memory is the in-process store implementation. It backs tests and
// the local dev driver with the same semantics as the MongoDB store:
// last-writer-wins documents, shallow merge-upserts, and idempotent atomic
// set operations on array-valued field paths.
package memory

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/slacklinehq/slackline/internal/models"
	"github.com/slacklinehq/slackline/internal/store"
)

type Store struct {
	mu    sync.RWMutex
	colls map[string]*collection
	hub   *store.Hub
	now   func() time.Time
}

type collection struct {
	docs  map[string]store.Fields
	order []string // insertion order, the tie-breaker for equal sort keys
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		colls: make(map[string]*collection),
		hub:   store.NewHub(),
		now:   time.Now,
	}
}

// SetClock overrides the server clock, for tests that need a deterministic
// timestamp sequence.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

func (s *Store) Changes() *store.Hub {
	return s.hub
}

func (s *Store) coll(container string) *collection {
	c, ok := s.colls[container]
	if !ok {
		c = &collection{docs: make(map[string]store.Fields)}
		s.colls[container] = c
	}
	return c
}

func (s *Store) Insert(ctx context.Context, container string, fields store.Fields) (string, error) {
	s.mu.Lock()
	id := uuid.NewString()
	c := s.coll(container)
	c.docs[id] = cloneFields(store.ResolveTimestamps(fields, s.now()))
	c.order = append(c.order, id)
	s.mu.Unlock()

	s.hub.Notify(container)
	return id, nil
}

func (s *Store) UpsertMerge(ctx context.Context, container, id string, fields store.Fields) error {
	s.mu.Lock()
	c := s.coll(container)
	doc, ok := c.docs[id]
	if !ok {
		doc = store.Fields{}
		c.docs[id] = doc
		c.order = append(c.order, id)
	}
	for k, v := range store.ResolveTimestamps(fields, s.now()) {
		doc[k] = cloneValue(v)
	}
	s.mu.Unlock()

	s.hub.Notify(container)
	return nil
}

func (s *Store) AtomicSetAdd(ctx context.Context, container, id, fieldPath string, value any) error {
	return s.mutateSet(container, id, fieldPath, value, true)
}

func (s *Store) AtomicSetRemove(ctx context.Context, container, id, fieldPath string, value any) error {
	return s.mutateSet(container, id, fieldPath, value, false)
}

func (s *Store) mutateSet(container, id, fieldPath string, value any, add bool) error {
	s.mu.Lock()
	c := s.coll(container)
	doc, ok := c.docs[id]
	if !ok {
		s.mu.Unlock()
		return models.ErrNotFound
	}

	parent := doc
	parts := strings.Split(fieldPath, ".")
	for _, part := range parts[:len(parts)-1] {
		next, ok := parent[part].(store.Fields)
		if !ok {
			next = store.Fields{}
			parent[part] = next
		}
		parent = next
	}

	leaf := parts[len(parts)-1]
	set, _ := parent[leaf].([]any)
	if add {
		if !setContains(set, value) {
			set = append(set, cloneValue(value))
		}
	} else {
		kept := set[:0]
		for _, v := range set {
			if !reflect.DeepEqual(v, value) {
				kept = append(kept, v)
			}
		}
		set = kept
	}
	parent[leaf] = set
	s.mu.Unlock()

	s.hub.Notify(container)
	return nil
}

func (s *Store) GetOnce(ctx context.Context, container, id string) (store.Fields, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.colls[container]
	if !ok {
		return nil, models.ErrNotFound
	}
	doc, ok := c.docs[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	out := cloneFields(doc)
	out["id"] = id
	return out, nil
}

func (s *Store) Query(ctx context.Context, container string, q store.Query) ([]store.Fields, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []store.Fields
	if c, ok := s.colls[container]; ok {
		for _, id := range c.order {
			doc := c.docs[id]
			keep := true
			for _, f := range q.Filters {
				ok, err := matches(docValue(doc, id, f.Field), f)
				if err != nil {
					return nil, err
				}
				if !ok {
					keep = false
					break
				}
			}
			if keep {
				out := cloneFields(doc)
				out["id"] = id
				matched = append(matched, out)
			}
		}
	}

	if len(q.Sort) > 0 {
		sort.SliceStable(matched, func(i, j int) bool {
			for _, o := range q.Sort {
				c := compare(matched[i][o.Field], matched[j][o.Field])
				if c == 0 {
					continue
				}
				if o.Desc {
					return c > 0
				}
				return c < 0
			}
			return false
		})
	}
	if q.Limit > 0 && int64(len(matched)) > q.Limit {
		matched = matched[:q.Limit]
	}
	if q.Reverse {
		for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
			matched[i], matched[j] = matched[j], matched[i]
		}
	}
	return matched, nil
}

// docValue resolves a filter field, treating "id" and the raw document key as
// the same thing.
func docValue(doc store.Fields, id, field string) any {
	if field == "id" || field == "_id" {
		return id
	}
	return doc[field]
}

func matches(v any, f store.Filter) (bool, error) {
	c := compare(v, f.Value)
	switch f.Op {
	case store.OpEqual:
		return c == 0, nil
	case store.OpNotEqual:
		return c != 0, nil
	case store.OpGreater:
		return c > 0, nil
	case store.OpGreaterEqual:
		return c >= 0, nil
	case store.OpLess:
		return c < 0, nil
	case store.OpLessEqual:
		return c <= 0, nil
	}
	return false, fmt.Errorf("unsupported filter op %q", f.Op)
}

// compare orders two field values. Mixed or unordered types compare by their
// formatted form, which is stable enough for equality filters.
func compare(a, b any) int {
	switch av := a.(type) {
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Compare(bv)
		}
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(av, bv)
		}
	case bool:
		if bv, ok := b.(bool); ok {
			switch {
			case av == bv:
				return 0
			case av:
				return 1
			}
			return -1
		}
	default:
		af, aok := toFloat(a)
		bf, bok := toFloat(b)
		if aok && bok {
			switch {
			case af == bf:
				return 0
			case af > bf:
				return 1
			}
			return -1
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// setContains uses deep equality so set members are not limited to
// comparable types.
func setContains(set []any, value any) bool {
	for _, v := range set {
		if reflect.DeepEqual(v, value) {
			return true
		}
	}
	return false
}

func cloneFields(f store.Fields) store.Fields {
	out := make(store.Fields, len(f))
	for k, v := range f {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch vv := v.(type) {
	case store.Fields:
		return cloneFields(vv)
	case []any:
		out := make([]any, len(vv))
		for i, e := range vv {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		out := make([]any, len(vv))
		for i, e := range vv {
			out[i] = e
		}
		return out
	}
	return v
}
