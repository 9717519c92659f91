package store

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Memory is a Collection held in process memory. Records are kept
// bson-encoded so reads never alias stored state and filters, sorts and
// projections see the same field names MongoDB would.
type Memory[T any, PT Document[T]] struct {
	mu     sync.RWMutex
	name   string
	docs   map[primitive.ObjectID]bson.Raw
	order  []primitive.ObjectID
	unique []string
	now    func() time.Time
}

// NewMemory creates an empty collection. Writes that would give two records
// the same value for any of the unique fields fail with ErrDuplicate.
func NewMemory[T any, PT Document[T]](name string, unique ...string) *Memory[T, PT] {
	return &Memory[T, PT]{
		name:   name,
		docs:   make(map[primitive.ObjectID]bson.Raw),
		unique: unique,
		now:    time.Now,
	}
}

type entry struct {
	raw bson.Raw
	doc bson.M
}

func (m *Memory[T, PT]) Find(_ context.Context, filter Filter, opts ...FindOption) ([]T, error) {
	o := buildFindOptions(opts)

	m.mu.RLock()
	matched, err := m.match(filter)
	m.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	if len(o.Sort) > 0 {
		slices.SortStableFunc(matched, func(a, b entry) int {
			for _, s := range o.Sort {
				c := compareValues(a.doc[s.Field], b.doc[s.Field])
				if s.Desc {
					c = -c
				}
				if c != 0 {
					return c
				}
			}
			return 0
		})
	}

	results := make([]T, 0, len(matched))
	for _, e := range matched {
		raw := e.raw
		if len(o.Fields) > 0 {
			projected := bson.M{"_id": e.doc["_id"]}
			for _, f := range o.Fields {
				if v, ok := e.doc[f]; ok {
					projected[f] = v
				}
			}
			if raw, err = bson.Marshal(projected); err != nil {
				return nil, fmt.Errorf("project %s: %w", m.name, err)
			}
		}

		var rec T
		if err := bson.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("decode %s: %w", m.name, err)
		}
		results = append(results, rec)
	}
	return results, nil
}

func (m *Memory[T, PT]) FindByID(_ context.Context, id primitive.ObjectID) (T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var rec T
	raw, ok := m.docs[id]
	if !ok {
		return rec, fmt.Errorf("%s %s: %w", m.name, id.Hex(), ErrNotFound)
	}
	if err := bson.Unmarshal(raw, &rec); err != nil {
		return rec, fmt.Errorf("decode %s: %w", m.name, err)
	}
	return rec, nil
}

func (m *Memory[T, PT]) FindByIDs(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	found := make(map[primitive.ObjectID]T, len(ids))
	for _, id := range lo.Uniq(ids) {
		raw, ok := m.docs[id]
		if !ok {
			continue
		}
		var rec T
		if err := bson.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("decode %s: %w", m.name, err)
		}
		found[id] = rec
	}
	return found, nil
}

func (m *Memory[T, PT]) Count(_ context.Context, filter Filter) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matched, err := m.match(filter)
	if err != nil {
		return 0, err
	}
	return int64(len(matched)), nil
}

func (m *Memory[T, PT]) Insert(_ context.Context, rec T) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now().UTC().Truncate(time.Millisecond)
	meta := PT(&rec).Meta()
	meta.ID = primitive.NewObjectID()
	meta.CreatedAt = now
	meta.UpdatedAt = now

	raw, doc, err := encode(rec)
	if err != nil {
		return rec, fmt.Errorf("insert %s: %w", m.name, err)
	}
	if field, dup := m.conflicts(doc, meta.ID); dup {
		return rec, fmt.Errorf("insert %s: %s: %w", m.name, field, ErrDuplicate)
	}

	m.docs[meta.ID] = raw
	m.order = append(m.order, meta.ID)
	return rec, nil
}

func (m *Memory[T, PT]) UpdateByID(_ context.Context, id primitive.ObjectID, rec T) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.docs[id]
	if !ok {
		return rec, fmt.Errorf("%s %s: %w", m.name, id.Hex(), ErrNotFound)
	}
	var current T
	if err := bson.Unmarshal(existing, &current); err != nil {
		return rec, fmt.Errorf("decode %s: %w", m.name, err)
	}

	meta := PT(&rec).Meta()
	meta.ID = id
	meta.CreatedAt = PT(&current).Meta().CreatedAt
	meta.UpdatedAt = m.now().UTC().Truncate(time.Millisecond)

	raw, doc, err := encode(rec)
	if err != nil {
		return rec, fmt.Errorf("update %s: %w", m.name, err)
	}
	if field, dup := m.conflicts(doc, id); dup {
		return rec, fmt.Errorf("update %s: %s: %w", m.name, field, ErrDuplicate)
	}

	m.docs[id] = raw
	return rec, nil
}

func (m *Memory[T, PT]) DeleteByID(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.docs[id]; !ok {
		return fmt.Errorf("%s %s: %w", m.name, id.Hex(), ErrNotFound)
	}
	delete(m.docs, id)
	m.order = lo.Without(m.order, id)
	return nil
}

// match returns the stored records satisfying filter in insertion order.
// Callers hold the read lock.
func (m *Memory[T, PT]) match(filter Filter) ([]entry, error) {
	want := make(map[string]any, len(filter))
	for k, v := range filter {
		n, err := normalize(v)
		if err != nil {
			return nil, fmt.Errorf("filter %s.%s: %w", m.name, k, err)
		}
		want[k] = n
	}

	var matched []entry
	for _, id := range m.order {
		raw := m.docs[id]
		var doc bson.M
		if err := bson.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("decode %s: %w", m.name, err)
		}
		if matches(doc, want) {
			matched = append(matched, entry{raw: raw, doc: doc})
		}
	}
	return matched, nil
}

func (m *Memory[T, PT]) conflicts(doc bson.M, self primitive.ObjectID) (string, bool) {
	for _, field := range m.unique {
		v, ok := doc[field]
		if !ok {
			continue
		}
		for id, raw := range m.docs {
			if id == self {
				continue
			}
			var other bson.M
			if err := bson.Unmarshal(raw, &other); err != nil {
				continue
			}
			if reflect.DeepEqual(other[field], v) {
				return field, true
			}
		}
	}
	return "", false
}

func encode(rec any) (bson.Raw, bson.M, error) {
	raw, err := bson.Marshal(rec)
	if err != nil {
		return nil, nil, err
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, nil, err
	}
	return raw, doc, nil
}

// normalize converts a Go filter value into the form bson decoding yields,
// so an int matches a stored int32 and a time.Time a stored DateTime.
func normalize(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	raw, err := bson.Marshal(bson.M{"v": v})
	if err != nil {
		return nil, err
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc["v"], nil
}

func matches(doc bson.M, want map[string]any) bool {
	for field, w := range want {
		got, ok := doc[field]
		if !ok || got == nil {
			if w == nil {
				continue
			}
			return false
		}
		if arr, isArr := got.(primitive.A); isArr {
			if _, wantArr := w.(primitive.A); !wantArr {
				if !lo.ContainsBy(arr, func(el any) bool { return reflect.DeepEqual(el, w) }) {
					return false
				}
				continue
			}
		}
		if !reflect.DeepEqual(got, w) {
			return false
		}
	}
	return true
}

// compareValues orders bson values of the same kind; a missing value sorts first.
func compareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	switch x := a.(type) {
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y)
		}
	case primitive.DateTime:
		if y, ok := b.(primitive.DateTime); ok {
			return cmp.Compare(x, y)
		}
	case primitive.ObjectID:
		if y, ok := b.(primitive.ObjectID); ok {
			return bytes.Compare(x[:], y[:])
		}
	case int32:
		if y, ok := b.(int32); ok {
			return cmp.Compare(x, y)
		}
	case int64:
		if y, ok := b.(int64); ok {
			return cmp.Compare(x, y)
		}
	case float64:
		if y, ok := b.(float64); ok {
			return cmp.Compare(x, y)
		}
	case bool:
		if y, ok := b.(bool); ok && x != y {
			if x {
				return 1
			}
			return -1
		}
	}
	return 0
}
