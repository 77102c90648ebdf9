package db

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoStore[T any] struct {
	coll *mongo.Collection
}

func NewMongoStore[T any](coll *mongo.Collection) *MongoStore[T] {
	return &MongoStore[T]{coll: coll}
}

func (s *MongoStore[T]) Insert(ctx context.Context, doc *T) error {
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert into %s: %w", s.coll.Name(), err)
	}
	return nil
}

func (s *MongoStore[T]) Find(ctx context.Context, q Query) ([]T, error) {
	opts := options.Find()
	if len(q.Sort) > 0 {
		opts.SetSort(q.SortDoc())
	}
	cursor, err := s.coll.Find(ctx, q.Filter(), opts)
	if err != nil {
		return nil, fmt.Errorf("find in %s: %w", s.coll.Name(), err)
	}
	docs := []T{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.coll.Name(), err)
	}
	return docs, nil
}

func (s *MongoStore[T]) Get(ctx context.Context, id primitive.ObjectID) (*T, error) {
	var doc T
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find %s in %s: %w", id.Hex(), s.coll.Name(), err)
	}
	return &doc, nil
}

func (s *MongoStore[T]) Replace(ctx context.Context, id primitive.ObjectID, doc *T) error {
	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return fmt.Errorf("replace %s in %s: %w", id.Hex(), s.coll.Name(), err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore[T]) Delete(ctx context.Context, id primitive.ObjectID) (*T, error) {
	var doc T
	err := s.coll.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("delete %s from %s: %w", id.Hex(), s.coll.Name(), err)
	}
	return &doc, nil
}

// EnsureIndex creates an ascending index over fields. It is a no-op for the
// memory backend.
func (b *Backend) EnsureIndex(ctx context.Context, collection string, fields ...string) error {
	if b.IsMemory() || len(fields) == 0 {
		return nil
	}
	keys := bson.D{}
	for _, f := range fields {
		keys = append(keys, bson.E{Key: f, Value: 1})
	}
	_, err := b.client.Database(b.database).Collection(collection).Indexes().CreateOne(ctx, mongo.IndexModel{Keys: keys})
	if err != nil {
		return fmt.Errorf("create index on %s%v: %w", collection, fields, err)
	}
	return nil
}
