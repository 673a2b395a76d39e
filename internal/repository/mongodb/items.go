package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/fleetstock/internal/domain/models"
	"github.com/mamadbah2/fleetstock/internal/repository"
)

type itemRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func (r *itemRepository) Create(ctx context.Context, item *models.InventoryItem) error {
	item.Stamp(r.now())
	if _, err := r.coll.InsertOne(ctx, item); err != nil {
		return fmt.Errorf("failed to insert inventory item: %w", mapError(err))
	}
	return nil
}

func (r *itemRepository) Get(ctx context.Context, id primitive.ObjectID) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&item); err != nil {
		return nil, mapError(err)
	}
	return &item, nil
}

func (r *itemRepository) List(ctx context.Context, filter repository.ItemFilter) ([]models.InventoryItem, error) {
	query := bson.M{}
	if filter.Category != nil {
		query["category"] = *filter.Category
	}
	if filter.Supplier != nil {
		query["supplier"] = *filter.Supplier
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"itemCode": pattern},
			bson.M{"description": pattern},
		}
	}
	if filter.LowStockOnly {
		query["$expr"] = bson.M{"$lte": bson.A{"$quantityInStock", "$reorderLevel"}}
	}

	cursor, err := r.coll.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "itemCode", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query inventory items: %w", err)
	}
	items := make([]models.InventoryItem, 0)
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode inventory items: %w", err)
	}
	return items, nil
}

func (r *itemRepository) UpdateDetails(ctx context.Context, item *models.InventoryItem) error {
	item.UpdatedAt = r.now()
	set := bson.M{
		"itemCode":       item.ItemCode,
		"description":    item.Description,
		"type":           item.Type,
		"unitOfMeasure":  item.UnitOfMeasure,
		"category":       item.Category,
		"unitCost":       item.UnitCost,
		"sellingPrice":   item.SellingPrice,
		"wholesalePrice": item.WholesalePrice,
		"reorderLevel":   item.ReorderLevel,
		"isSerialized":   item.IsSerialized,
		"status":         item.Status,
		"updatedAt":      item.UpdatedAt,
	}
	update := bson.M{"$set": set}
	if item.Supplier != nil {
		set["supplier"] = *item.Supplier
	} else {
		update["$unset"] = bson.M{"supplier": ""}
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": item.ID}, update)
	if err != nil {
		return fmt.Errorf("failed to update inventory item: %w", mapError(err))
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *itemRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete inventory item: %w", err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// AdjustStock is a conditional $inc: a decrement only matches when enough stock remains.
func (r *itemRepository) AdjustStock(ctx context.Context, id primitive.ObjectID, delta int) (*models.InventoryItem, error) {
	filter := bson.M{"_id": id}
	if delta < 0 {
		filter["quantityInStock"] = bson.M{"$gte": -delta}
	}
	update := bson.M{
		"$inc": bson.M{"quantityInStock": delta},
		"$set": bson.M{"updatedAt": r.now()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var item models.InventoryItem
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		count, countErr := r.coll.CountDocuments(ctx, bson.M{"_id": id})
		if countErr != nil {
			return nil, fmt.Errorf("failed to check inventory item: %w", countErr)
		}
		if count == 0 {
			return nil, repository.ErrNotFound
		}
		return nil, repository.ErrInsufficientQuantity
	}
	if err != nil {
		return nil, fmt.Errorf("failed to adjust stock: %w", err)
	}
	return &item, nil
}

func (r *itemRepository) CountByCategory(ctx context.Context) (map[primitive.ObjectID]int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$category"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to count items by category: %w", err)
	}

	var rows []struct {
		Category primitive.ObjectID `bson:"_id"`
		Count    int                `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode category counts: %w", err)
	}

	counts := make(map[primitive.ObjectID]int, len(rows))
	for _, row := range rows {
		counts[row.Category] = row.Count
	}
	return counts, nil
}

func (r *itemRepository) DetachSupplier(ctx context.Context, supplierID primitive.ObjectID) (int64, error) {
	res, err := r.coll.UpdateMany(ctx,
		bson.M{"supplier": supplierID},
		bson.M{"$unset": bson.M{"supplier": ""}, "$set": bson.M{"updatedAt": r.now()}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to detach supplier: %w", err)
	}
	return res.ModifiedCount, nil
}
