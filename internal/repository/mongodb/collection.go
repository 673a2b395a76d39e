package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/fleetstock/internal/domain/models"
	"github.com/mamadbah2/fleetstock/internal/repository"
)

// collection is the generic CRUD implementation shared by every document type.
type collection[T any, P models.Document[T]] struct {
	coll *mongo.Collection
	now  func() time.Time
}

func newCollection[T any, P models.Document[T]](coll *mongo.Collection, now func() time.Time) *collection[T, P] {
	return &collection[T, P]{coll: coll, now: now}
}

var newestFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}

func (c *collection[T, P]) Create(ctx context.Context, doc *T) error {
	P(doc).Meta().Stamp(c.now())
	if _, err := c.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", c.coll.Name(), mapError(err))
	}
	return nil
}

func (c *collection[T, P]) Get(ctx context.Context, id primitive.ObjectID) (*T, error) {
	var out T
	if err := c.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&out); err != nil {
		return nil, mapError(err)
	}
	return &out, nil
}

func (c *collection[T, P]) List(ctx context.Context) ([]T, error) {
	return c.find(ctx, bson.M{}, options.Find().SetSort(newestFirst))
}

func (c *collection[T, P]) find(ctx context.Context, filter any, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := c.coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", c.coll.Name(), err)
	}
	out := make([]T, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", c.coll.Name(), err)
	}
	return out, nil
}

func (c *collection[T, P]) Update(ctx context.Context, doc *T) error {
	meta := P(doc).Meta()
	meta.UpdatedAt = c.now()
	res, err := c.coll.ReplaceOne(ctx, bson.M{"_id": meta.ID}, doc)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", c.coll.Name(), mapError(err))
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (c *collection[T, P]) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := c.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", c.coll.Name(), err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// dateRange builds a {$gte, $lte} clause, or nil when both bounds are open.
func dateRange(from, to *time.Time) bson.M {
	if from == nil && to == nil {
		return nil
	}
	clause := bson.M{}
	if from != nil {
		clause["$gte"] = *from
	}
	if to != nil {
		clause["$lte"] = *to
	}
	return clause
}
