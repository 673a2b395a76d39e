package mongodb

import (
	"context"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/fleetstock/internal/domain/models"
	"github.com/mamadbah2/fleetstock/internal/repository"
)

type orderRepository struct {
	*collection[models.SalesOrder, *models.SalesOrder]
}

func (r *orderRepository) List(ctx context.Context, filter repository.OrderFilter) ([]models.SalesOrder, error) {
	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.PaymentStatus != "" {
		query["paymentStatus"] = filter.PaymentStatus
	}
	if filter.CustomerEmail != "" {
		query["customer.email"] = filter.CustomerEmail
	}
	if filter.CustomerName != "" {
		query["customer.name"] = primitive.Regex{Pattern: "^" + regexp.QuoteMeta(filter.CustomerName) + "$", Options: "i"}
	}
	if clause := dateRange(filter.From, filter.To); clause != nil {
		query["createdAt"] = clause
	}
	return r.find(ctx, query, options.Find().SetSort(newestFirst))
}

// LatestOrderNumber ranks numbers by length before value so SO261010000 sorts
// above SO26109999 once a month's sequence outgrows its padding.
func (r *orderRepository) LatestOrderNumber(ctx context.Context, prefix string) (string, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"orderNumber": primitive.Regex{Pattern: "^" + regexp.QuoteMeta(prefix)}}}},
		{{Key: "$project", Value: bson.M{"orderNumber": 1, "numberLength": bson.M{"$strLenCP": "$orderNumber"}}}},
		{{Key: "$sort", Value: bson.D{{Key: "numberLength", Value: -1}, {Key: "orderNumber", Value: -1}}}},
		{{Key: "$limit", Value: 1}},
	}
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return "", fmt.Errorf("failed to find latest order number: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []struct {
		OrderNumber string `bson:"orderNumber"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return "", fmt.Errorf("failed to decode latest order number: %w", err)
	}
	if len(docs) == 0 {
		return "", nil
	}
	return docs[0].OrderNumber, nil
}

func (r *orderRepository) ReferencesItem(ctx context.Context, itemID primitive.ObjectID) (bool, error) {
	count, err := r.coll.CountDocuments(ctx, bson.M{"items.item": itemID}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check order references: %w", err)
	}
	return count > 0, nil
}

type categoryRepository struct {
	*collection[models.InventoryCategory, *models.InventoryCategory]
}

func (r *categoryRepository) List(ctx context.Context) ([]models.InventoryCategory, error) {
	return r.find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
}

func (r *categoryRepository) CountChildren(ctx context.Context, id primitive.ObjectID) (int64, error) {
	count, err := r.coll.CountDocuments(ctx, bson.M{"parent": id})
	if err != nil {
		return 0, fmt.Errorf("failed to count child categories: %w", err)
	}
	return count, nil
}
