package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/fleetstock/internal/domain/models"
	"github.com/mamadbah2/fleetstock/internal/repository"
)

type locationRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func (r *locationRepository) ListForItem(ctx context.Context, itemID primitive.ObjectID) ([]models.StockLocation, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"item": itemID}, options.Find().SetSort(bson.D{{Key: "location", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query stock locations: %w", err)
	}
	out := make([]models.StockLocation, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode stock locations: %w", err)
	}
	return out, nil
}

func (r *locationRepository) Adjust(ctx context.Context, itemID primitive.ObjectID, location models.Location, delta int) (*models.StockLocation, error) {
	now := r.now()
	filter := bson.M{"item": itemID, "location": location}
	update := bson.M{
		"$inc": bson.M{"quantity": delta},
		"$set": bson.M{"updatedAt": now},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if delta < 0 {
		filter["quantity"] = bson.M{"$gte": -delta}
	} else {
		update["$setOnInsert"] = bson.M{"createdAt": now}
		opts.SetUpsert(true)
	}

	var out models.StockLocation
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrInsufficientQuantity
	}
	if err != nil {
		return nil, fmt.Errorf("failed to adjust stock location: %w", mapError(err))
	}
	return &out, nil
}

func (r *locationRepository) Set(ctx context.Context, itemID primitive.ObjectID, location models.Location, quantity int) (*models.StockLocation, error) {
	now := r.now()
	update := bson.M{
		"$set":         bson.M{"quantity": quantity, "updatedAt": now},
		"$setOnInsert": bson.M{"createdAt": now},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After).SetUpsert(true)

	var out models.StockLocation
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"item": itemID, "location": location}, update, opts).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to set stock location: %w", mapError(err))
	}
	return &out, nil
}

func (r *locationRepository) DeleteForItem(ctx context.Context, itemID primitive.ObjectID) error {
	if _, err := r.coll.DeleteMany(ctx, bson.M{"item": itemID}); err != nil {
		return fmt.Errorf("failed to delete stock locations: %w", err)
	}
	return nil
}

type transactionRepository struct {
	*collection[models.StockTransaction, *models.StockTransaction]
}

func (r *transactionRepository) List(ctx context.Context, filter repository.TransactionFilter) ([]models.StockTransaction, error) {
	query := bson.M{}
	if filter.Item != nil {
		query["item"] = *filter.Item
	}
	if filter.Type != "" {
		query["transactionType"] = filter.Type
	}
	if filter.Location != "" {
		query["location"] = filter.Location
	}
	if clause := dateRange(filter.From, filter.To); clause != nil {
		query["transactionDate"] = clause
	}
	sort := bson.D{{Key: "transactionDate", Value: -1}, {Key: "createdAt", Value: -1}}
	return r.find(ctx, query, options.Find().SetSort(sort))
}

func (r *transactionRepository) DeleteForItem(ctx context.Context, itemID primitive.ObjectID) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"item": itemID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete stock transactions: %w", err)
	}
	return res.DeletedCount, nil
}
