package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/mamadbah2/fleetstock/internal/domain/models"
	"github.com/mamadbah2/fleetstock/internal/repository"
)

const (
	collItems        = "inventoryitems"
	collLocations    = "stocklocations"
	collTransactions = "stocktransactions"
	collOrders       = "salesorders"
	collCategories   = "inventorycategories"
	collSuppliers    = "suppliers"
	collTaxRates     = "taxrates"
	collVehicles     = "vehicles"
	collInsurance    = "insurances"
	collRoadWorth    = "roadworths"
	collDriverLogs   = "vehicledriverlogs"
	collEmployees    = "employees"
)

// Store implements repository.Store on top of a MongoDB replica set.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	logger *zap.Logger
	now    func() time.Time

	items        *itemRepository
	locations    *locationRepository
	transactions *transactionRepository
	orders       *orderRepository
	categories   *categoryRepository
	suppliers    *collection[models.Supplier, *models.Supplier]
	taxRates     *collection[models.TaxRate, *models.TaxRate]
	vehicles     *collection[models.Vehicle, *models.Vehicle]
	insurance    *collection[models.Insurance, *models.Insurance]
	roadWorth    *collection[models.RoadWorth, *models.RoadWorth]
	driverLogs   *collection[models.VehicleDriverLog, *models.VehicleDriverLog]
	employees    *collection[models.Employee, *models.Employee]
}

var _ repository.Store = (*Store)(nil)

// Connect dials MongoDB, verifies the connection and returns a ready Store.
func Connect(ctx context.Context, uri, dbName string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	logger.Info("connected to mongodb", zap.String("database", dbName))
	return newStore(client, dbName, logger), nil
}

func newStore(client *mongo.Client, dbName string, logger *zap.Logger) *Store {
	db := client.Database(dbName)
	now := func() time.Time { return time.Now().UTC() }

	s := &Store{client: client, db: db, logger: logger, now: now}
	s.items = &itemRepository{coll: db.Collection(collItems), now: now}
	s.locations = &locationRepository{coll: db.Collection(collLocations), now: now}
	s.transactions = &transactionRepository{newCollection[models.StockTransaction](db.Collection(collTransactions), now)}
	s.orders = &orderRepository{newCollection[models.SalesOrder](db.Collection(collOrders), now)}
	s.categories = &categoryRepository{newCollection[models.InventoryCategory](db.Collection(collCategories), now)}
	s.suppliers = newCollection[models.Supplier](db.Collection(collSuppliers), now)
	s.taxRates = newCollection[models.TaxRate](db.Collection(collTaxRates), now)
	s.vehicles = newCollection[models.Vehicle](db.Collection(collVehicles), now)
	s.insurance = newCollection[models.Insurance](db.Collection(collInsurance), now)
	s.roadWorth = newCollection[models.RoadWorth](db.Collection(collRoadWorth), now)
	s.driverLogs = newCollection[models.VehicleDriverLog](db.Collection(collDriverLogs), now)
	s.employees = newCollection[models.Employee](db.Collection(collEmployees), now)
	return s
}

func (s *Store) Items() repository.ItemRepository               { return s.items }
func (s *Store) Locations() repository.LocationRepository       { return s.locations }
func (s *Store) Transactions() repository.TransactionRepository { return s.transactions }
func (s *Store) Orders() repository.OrderRepository             { return s.orders }
func (s *Store) Categories() repository.CategoryRepository      { return s.categories }

func (s *Store) Suppliers() repository.Collection[models.Supplier] { return s.suppliers }
func (s *Store) TaxRates() repository.Collection[models.TaxRate]   { return s.taxRates }
func (s *Store) Vehicles() repository.Collection[models.Vehicle]   { return s.vehicles }
func (s *Store) Insurance() repository.Collection[models.Insurance] {
	return s.insurance
}
func (s *Store) RoadWorth() repository.Collection[models.RoadWorth] {
	return s.roadWorth
}
func (s *Store) DriverLogs() repository.Collection[models.VehicleDriverLog] {
	return s.driverLogs
}
func (s *Store) Employees() repository.Collection[models.Employee] { return s.employees }

// WithTransaction runs fn inside a session transaction. The driver retries fn on
// transient transaction errors, so fn must be safe to re-run.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start mongodb session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

// EnsureIndexes creates the unique indexes the services rely on for conflict detection.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	unique := func(keys bson.D) mongo.IndexModel {
		return mongo.IndexModel{Keys: keys, Options: options.Index().SetUnique(true)}
	}

	indexes := map[string][]mongo.IndexModel{
		collItems: {
			unique(bson.D{{Key: "itemCode", Value: 1}}),
			{Keys: bson.D{{Key: "category", Value: 1}}},
		},
		collLocations: {
			unique(bson.D{{Key: "item", Value: 1}, {Key: "location", Value: 1}}),
		},
		collTransactions: {
			{Keys: bson.D{{Key: "item", Value: 1}, {Key: "transactionDate", Value: -1}}},
			{Keys: bson.D{{Key: "reference", Value: 1}}},
		},
		collOrders: {
			unique(bson.D{{Key: "orderNumber", Value: 1}}),
			{Keys: bson.D{{Key: "customer.email", Value: 1}}},
			{Keys: bson.D{{Key: "items.item", Value: 1}}},
		},
		collCategories: {
			unique(bson.D{{Key: "name", Value: 1}}),
			{Keys: bson.D{{Key: "parent", Value: 1}}},
		},
		collVehicles: {
			unique(bson.D{{Key: "registrationNumber", Value: 1}}),
		},
		collEmployees: {
			unique(bson.D{{Key: "employeeNumber", Value: 1}}),
			unique(bson.D{{Key: "email", Value: 1}}),
		},
	}

	for name, specs := range indexes {
		if _, err := s.db.Collection(name).Indexes().CreateMany(ctx, specs); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", name, err)
		}
	}
	return nil
}

// Ping verifies the server is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close closes the MongoDB connection.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return repository.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", repository.ErrDuplicate, err)
	}
	return err
}
