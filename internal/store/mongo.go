package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo is a Collection backed by a MongoDB collection.
type Mongo[T any, PT Document[T]] struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewMongo[T any, PT Document[T]](coll *mongo.Collection) *Mongo[T, PT] {
	return &Mongo[T, PT]{coll: coll, now: time.Now}
}

func toBSON(filter Filter) bson.M {
	if filter == nil {
		return bson.M{}
	}
	return bson.M(filter)
}

func (m *Mongo[T, PT]) Find(ctx context.Context, filter Filter, opts ...FindOption) ([]T, error) {
	o := buildFindOptions(opts)

	findOpts := options.Find()
	if len(o.Sort) > 0 {
		sort := bson.D{}
		for _, s := range o.Sort {
			dir := 1
			if s.Desc {
				dir = -1
			}
			sort = append(sort, bson.E{Key: s.Field, Value: dir})
		}
		findOpts.SetSort(sort)
	}
	if len(o.Fields) > 0 {
		projection := bson.D{}
		for _, f := range o.Fields {
			projection = append(projection, bson.E{Key: f, Value: 1})
		}
		findOpts.SetProjection(projection)
	}

	cursor, err := m.coll.Find(ctx, toBSON(filter), findOpts)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", m.coll.Name(), err)
	}
	defer cursor.Close(ctx)

	results := []T{}
	if err = cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("decode %s: %w", m.coll.Name(), err)
	}
	return results, nil
}

func (m *Mongo[T, PT]) FindByID(ctx context.Context, id primitive.ObjectID) (T, error) {
	var rec T
	err := m.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return rec, fmt.Errorf("%s %s: %w", m.coll.Name(), id.Hex(), ErrNotFound)
	}
	if err != nil {
		return rec, fmt.Errorf("find %s %s: %w", m.coll.Name(), id.Hex(), err)
	}
	return rec, nil
}

func (m *Mongo[T, PT]) FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]T, error) {
	found := make(map[primitive.ObjectID]T, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	cursor, err := m.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("find %s by ids: %w", m.coll.Name(), err)
	}
	defer cursor.Close(ctx)

	var recs []T
	if err = cursor.All(ctx, &recs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", m.coll.Name(), err)
	}
	for i := range recs {
		found[PT(&recs[i]).Meta().ID] = recs[i]
	}
	return found, nil
}

func (m *Mongo[T, PT]) Count(ctx context.Context, filter Filter) (int64, error) {
	n, err := m.coll.CountDocuments(ctx, toBSON(filter))
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", m.coll.Name(), err)
	}
	return n, nil
}

func (m *Mongo[T, PT]) Insert(ctx context.Context, rec T) (T, error) {
	now := m.now().UTC().Truncate(time.Millisecond)
	meta := PT(&rec).Meta()
	meta.ID = primitive.NewObjectID()
	meta.CreatedAt = now
	meta.UpdatedAt = now

	if _, err := m.coll.InsertOne(ctx, rec); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return rec, fmt.Errorf("insert %s: %w", m.coll.Name(), ErrDuplicate)
		}
		return rec, fmt.Errorf("insert %s: %w", m.coll.Name(), err)
	}
	return rec, nil
}

// UpdateByID replaces the stored record, keeping its id and creation time.
func (m *Mongo[T, PT]) UpdateByID(ctx context.Context, id primitive.ObjectID, rec T) (T, error) {
	current, err := m.FindByID(ctx, id)
	if err != nil {
		return rec, err
	}

	meta := PT(&rec).Meta()
	meta.ID = id
	meta.CreatedAt = PT(&current).Meta().CreatedAt
	meta.UpdatedAt = m.now().UTC().Truncate(time.Millisecond)

	result, err := m.coll.ReplaceOne(ctx, bson.M{"_id": id}, rec)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return rec, fmt.Errorf("update %s: %w", m.coll.Name(), ErrDuplicate)
		}
		return rec, fmt.Errorf("update %s %s: %w", m.coll.Name(), id.Hex(), err)
	}
	if result.MatchedCount == 0 {
		return rec, fmt.Errorf("%s %s: %w", m.coll.Name(), id.Hex(), ErrNotFound)
	}
	return rec, nil
}

func (m *Mongo[T, PT]) DeleteByID(ctx context.Context, id primitive.ObjectID) error {
	result, err := m.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", m.coll.Name(), id.Hex(), err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%s %s: %w", m.coll.Name(), id.Hex(), ErrNotFound)
	}
	return nil
}
