// Package mongodb implements the document store on MongoDB collections.
// A container path maps to one collection; merge-upserts are $set with
// upsert, and the atomic set operations are $addToSet / $pull so concurrent
// reaction toggles converge without a transaction.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/slacklinehq/slackline/internal/models"
	"github.com/slacklinehq/slackline/internal/store"
)

type Store struct {
	db  *DB
	hub *store.Hub
}

var _ store.Store = (*Store)(nil)

func NewStore(db *DB) *Store {
	return &Store{
		db:  db,
		hub: store.NewHub(),
	}
}

func (s *Store) Changes() *store.Hub {
	return s.hub
}

// collection maps a container path to a collection name. Path separators
// become dots, which MongoDB accepts in collection names.
func (s *Store) collection(container string) *mongo.Collection {
	return s.db.Database.Collection(strings.ReplaceAll(container, "/", "."))
}

func (s *Store) Insert(ctx context.Context, container string, fields store.Fields) (string, error) {
	doc := toBSON(store.ResolveTimestamps(fields, time.Now()))
	result, err := s.collection(container).InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("insert one: %w", err)
	}
	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("invalid inserted id: %T %+v", result.InsertedID, result.InsertedID)
	}

	s.hub.Notify(container)
	return oid.Hex(), nil
}

func (s *Store) UpsertMerge(ctx context.Context, container, id string, fields store.Fields) error {
	update := bson.M{"$set": toBSON(store.ResolveTimestamps(fields, time.Now()))}
	opts := options.Update().SetUpsert(true)
	if _, err := s.collection(container).UpdateOne(ctx, idFilter(id), update, opts); err != nil {
		return fmt.Errorf("upsert merge: %w", err)
	}

	s.hub.Notify(container)
	return nil
}

func (s *Store) AtomicSetAdd(ctx context.Context, container, id, fieldPath string, value any) error {
	return s.updateSet(ctx, container, id, bson.M{"$addToSet": bson.M{fieldPath: value}})
}

func (s *Store) AtomicSetRemove(ctx context.Context, container, id, fieldPath string, value any) error {
	return s.updateSet(ctx, container, id, bson.M{"$pull": bson.M{fieldPath: value}})
}

func (s *Store) updateSet(ctx context.Context, container, id string, update bson.M) error {
	result, err := s.collection(container).UpdateOne(ctx, idFilter(id), update)
	if err != nil {
		return fmt.Errorf("update set: %w", err)
	}
	if result.MatchedCount == 0 {
		return models.ErrNotFound
	}

	s.hub.Notify(container)
	return nil
}

func (s *Store) GetOnce(ctx context.Context, container, id string) (store.Fields, error) {
	var doc bson.M
	err := s.collection(container).FindOne(ctx, idFilter(id)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find one: %w", err)
	}
	return fromBSON(doc), nil
}

func (s *Store) Query(ctx context.Context, container string, q store.Query) ([]store.Fields, error) {
	filter, err := buildFilter(q.Filters)
	if err != nil {
		return nil, err
	}

	opts := options.Find()
	if len(q.Sort) > 0 {
		sort := bson.D{}
		for _, o := range q.Sort {
			dir := 1
			if o.Desc {
				dir = -1
			}
			sort = append(sort, bson.E{Key: fieldKey(o.Field), Value: dir})
		}
		opts.SetSort(sort)
	}
	if q.Limit > 0 {
		opts.SetLimit(q.Limit)
	}

	cursor, err := s.collection(container).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}
	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("cursor all: %w", err)
	}

	out := make([]store.Fields, len(docs))
	for i, doc := range docs {
		j := i
		if q.Reverse {
			j = len(docs) - 1 - i
		}
		out[j] = fromBSON(doc)
	}
	return out, nil
}

var filterOps = map[string]string{
	store.OpNotEqual:     "$ne",
	store.OpGreater:      "$gt",
	store.OpGreaterEqual: "$gte",
	store.OpLess:         "$lt",
	store.OpLessEqual:    "$lte",
}

func buildFilter(filters []store.Filter) (bson.M, error) {
	filter := bson.M{}
	for _, f := range filters {
		key := fieldKey(f.Field)
		if f.Op == store.OpEqual {
			filter[key] = f.Value
			continue
		}
		op, ok := filterOps[f.Op]
		if !ok {
			return nil, fmt.Errorf("unsupported filter op %q", f.Op)
		}
		filter[key] = bson.M{op: f.Value}
	}
	return filter, nil
}

func fieldKey(field string) string {
	if field == "id" {
		return "_id"
	}
	return field
}

// idFilter matches both id shapes in use: ObjectIDs minted by Insert and
// caller-chosen string keys (uids) written by UpsertMerge.
func idFilter(id string) bson.M {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.M{"_id": oid}
	}
	return bson.M{"_id": id}
}

func toBSON(fields store.Fields) bson.M {
	doc := bson.M{}
	for k, v := range fields {
		doc[k] = v
	}
	return doc
}

// fromBSON normalizes a decoded document back to the native field shape:
// _id becomes "id", BSON dates become time.Time, arrays become []any.
func fromBSON(doc bson.M) store.Fields {
	out := make(store.Fields, len(doc))
	for k, v := range doc {
		if k == "_id" {
			out["id"] = idString(v)
			continue
		}
		out[k] = normalize(v)
	}
	return out
}

func idString(v any) string {
	switch id := v.(type) {
	case primitive.ObjectID:
		return id.Hex()
	case string:
		return id
	}
	return fmt.Sprint(v)
}

func normalize(v any) any {
	switch vv := v.(type) {
	case primitive.DateTime:
		return vv.Time()
	case primitive.ObjectID:
		return vv.Hex()
	case bson.M:
		out := make(store.Fields, len(vv))
		for k, e := range vv {
			out[k] = normalize(e)
		}
		return out
	case bson.D:
		out := make(store.Fields, len(vv))
		for _, e := range vv {
			out[e.Key] = normalize(e.Value)
		}
		return out
	case primitive.A:
		out := make([]any, len(vv))
		for i, e := range vv {
			out[i] = normalize(e)
		}
		return out
	}
	return v
}
