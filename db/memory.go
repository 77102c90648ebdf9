package db

import (
	"bytes"
	"context"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore keeps documents as BSON in process memory. Filtering and
// sorting follow the MongoDB semantics used by MongoStore closely enough for
// local development and tests.
type MemoryStore[T any] struct {
	mu    sync.RWMutex
	docs  map[primitive.ObjectID]bson.Raw
	order []primitive.ObjectID
}

func NewMemoryStore[T any]() *MemoryStore[T] {
	return &MemoryStore[T]{docs: map[primitive.ObjectID]bson.Raw{}}
}

func (s *MemoryStore[T]) Insert(_ context.Context, doc *T) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	id, ok := bson.Raw(raw).Lookup("_id").ObjectIDOK()
	if !ok {
		return fmt.Errorf("document has no _id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.docs[id]; exists {
		return fmt.Errorf("duplicate key _id %s", id.Hex())
	}
	s.docs[id] = raw
	s.order = append(s.order, id)
	return nil
}

func (s *MemoryStore[T]) Find(_ context.Context, q Query) ([]T, error) {
	var search *regexp.Regexp
	if q.Search != "" && len(q.SearchFields) > 0 {
		search = regexp.MustCompile("(?i)" + regexp.QuoteMeta(q.Search))
	}

	type entry struct {
		fields bson.M
		raw    bson.Raw
	}
	var matched []entry

	s.mu.RLock()
	for _, id := range s.order {
		raw := s.docs[id]
		var fields bson.M
		if err := bson.Unmarshal(raw, &fields); err != nil {
			s.mu.RUnlock()
			return nil, fmt.Errorf("decode document %s: %w", id.Hex(), err)
		}
		if matches(fields, q, search) {
			matched = append(matched, entry{fields: fields, raw: raw})
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		for _, k := range q.Sort {
			c := compareValues(matched[i].fields[k.Field], matched[j].fields[k.Field])
			if c == 0 {
				continue
			}
			if k.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})

	docs := make([]T, 0, len(matched))
	for _, e := range matched {
		var doc T
		if err := bson.Unmarshal(e.raw, &doc); err != nil {
			return nil, fmt.Errorf("decode document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (s *MemoryStore[T]) Get(_ context.Context, id primitive.ObjectID) (*T, error) {
	s.mu.RLock()
	raw, ok := s.docs[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	var doc T
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode document %s: %w", id.Hex(), err)
	}
	return &doc, nil
}

func (s *MemoryStore[T]) Replace(_ context.Context, id primitive.ObjectID, doc *T) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return ErrNotFound
	}
	s.docs[id] = raw
	return nil
}

func (s *MemoryStore[T]) Delete(_ context.Context, id primitive.ObjectID) (*T, error) {
	s.mu.Lock()
	raw, ok := s.docs[id]
	if ok {
		delete(s.docs, id)
		for i, v := range s.order {
			if v == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
	s.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}

	var doc T
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode document %s: %w", id.Hex(), err)
	}
	return &doc, nil
}

func matches(fields bson.M, q Query, search *regexp.Regexp) bool {
	for field, want := range q.Equals {
		if !reflect.DeepEqual(fields[field], want) {
			return false
		}
	}
	if search == nil {
		return true
	}
	for _, field := range q.SearchFields {
		if v, ok := fields[field].(string); ok && search.MatchString(v) {
			return true
		}
	}
	return false
}

// compareValues orders missing values first, then numbers, strings, ids and
// dates by their natural order.
func compareValues(a, b any) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			}
			return 0
		}
	}
	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(av, bv)
		}
	case primitive.ObjectID:
		if bv, ok := b.(primitive.ObjectID); ok {
			return bytes.Compare(av[:], bv[:])
		}
	case primitive.DateTime:
		if bv, ok := b.(primitive.DateTime); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			}
			return 0
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
