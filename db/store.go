package db

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrInvalidID = errors.New("invalid document id")
)

// Store persists single documents. Writes are atomic per document only.
type Store[T any] interface {
	Insert(ctx context.Context, doc *T) error
	Find(ctx context.Context, q Query) ([]T, error)
	Get(ctx context.Context, id primitive.ObjectID) (*T, error)
	Replace(ctx context.Context, id primitive.ObjectID, doc *T) error
	Delete(ctx context.Context, id primitive.ObjectID) (*T, error)
}

type SortKey struct {
	Field string
	Desc  bool
}

// NewestFirst breaks createdAt ties by _id, which grows with insertion time.
var NewestFirst = []SortKey{{Field: "createdAt", Desc: true}, {Field: "_id", Desc: true}}

// Query narrows a listing by exact field values and a case-insensitive
// substring search OR'd across SearchFields.
type Query struct {
	Equals       map[string]any
	Search       string
	SearchFields []string
	Sort         []SortKey
}

func (q Query) Filter() bson.M {
	filter := bson.M{}
	for field, value := range q.Equals {
		filter[field] = value
	}
	if q.Search != "" && len(q.SearchFields) > 0 {
		pattern := regexp.QuoteMeta(q.Search)
		or := make(bson.A, 0, len(q.SearchFields))
		for _, field := range q.SearchFields {
			or = append(or, bson.M{field: primitive.Regex{Pattern: pattern, Options: "i"}})
		}
		filter["$or"] = or
	}
	return filter
}

func (q Query) SortDoc() bson.D {
	sort := bson.D{}
	for _, k := range q.Sort {
		dir := 1
		if k.Desc {
			dir = -1
		}
		sort = append(sort, bson.E{Key: k.Field, Value: dir})
	}
	return sort
}

func ParseID(hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, hex)
	}
	return id, nil
}

// Backend hands out stores for named collections, backed by MongoDB when a
// client is present and by process memory otherwise.
type Backend struct {
	client   *mongo.Client
	database string

	mu     sync.Mutex
	memory map[string]any
}

func NewMongoBackend(client *mongo.Client, database string) *Backend {
	if database == "" {
		database = Database
	}
	return &Backend{client: client, database: database}
}

func NewMemoryBackend() *Backend {
	return &Backend{memory: map[string]any{}}
}

func (b *Backend) IsMemory() bool { return b.client == nil }

// Collection returns the store for name. With the memory backend the same
// name always yields the same store.
func Collection[T any](b *Backend, name string) Store[T] {
	if !b.IsMemory() {
		return NewMongoStore[T](b.client.Database(b.database).Collection(name))
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if s, ok := b.memory[name].(*MemoryStore[T]); ok {
		return s
	}
	s := NewMemoryStore[T]()
	b.memory[name] = s
	return s
}
