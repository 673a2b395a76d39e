package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mamadbah2/fleetstock/internal/domain/models"
)

var (
	// ErrNotFound indicates the requested document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicate indicates a unique index violation.
	ErrDuplicate = errors.New("duplicate key")
	// ErrInsufficientQuantity indicates a conditional decrement found too little stock.
	ErrInsufficientQuantity = errors.New("insufficient quantity")
)

// Collection is the CRUD surface shared by master-data collections.
type Collection[T any] interface {
	Create(ctx context.Context, doc *T) error
	Get(ctx context.Context, id primitive.ObjectID) (*T, error)
	List(ctx context.Context) ([]T, error)
	Update(ctx context.Context, doc *T) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ItemFilter narrows inventory item listings.
type ItemFilter struct {
	Category     *primitive.ObjectID
	Supplier     *primitive.ObjectID
	Status       models.ItemStatus
	Search       string
	LowStockOnly bool
}

// ItemRepository stores inventory items.
type ItemRepository interface {
	Create(ctx context.Context, item *models.InventoryItem) error
	Get(ctx context.Context, id primitive.ObjectID) (*models.InventoryItem, error)
	List(ctx context.Context, filter ItemFilter) ([]models.InventoryItem, error)
	// UpdateDetails persists every field except quantityInStock and createdAt.
	UpdateDetails(ctx context.Context, item *models.InventoryItem) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// AdjustStock applies delta to quantityInStock unless the result would be negative.
	AdjustStock(ctx context.Context, id primitive.ObjectID, delta int) (*models.InventoryItem, error)
	CountByCategory(ctx context.Context) (map[primitive.ObjectID]int, error)
	DetachSupplier(ctx context.Context, supplierID primitive.ObjectID) (int64, error)
}

// LocationRepository stores per-location quantities.
type LocationRepository interface {
	ListForItem(ctx context.Context, itemID primitive.ObjectID) ([]models.StockLocation, error)
	// Adjust applies delta at (item, location), creating the record for positive deltas
	// and failing with ErrInsufficientQuantity when the result would be negative.
	Adjust(ctx context.Context, itemID primitive.ObjectID, location models.Location, delta int) (*models.StockLocation, error)
	Set(ctx context.Context, itemID primitive.ObjectID, location models.Location, quantity int) (*models.StockLocation, error)
	DeleteForItem(ctx context.Context, itemID primitive.ObjectID) error
}

// TransactionFilter narrows stock transaction listings.
type TransactionFilter struct {
	Item     *primitive.ObjectID
	Type     models.TransactionType
	Location models.Location
	From     *time.Time
	To       *time.Time
}

// TransactionRepository stores stock movements.
type TransactionRepository interface {
	Create(ctx context.Context, tx *models.StockTransaction) error
	Get(ctx context.Context, id primitive.ObjectID) (*models.StockTransaction, error)
	List(ctx context.Context, filter TransactionFilter) ([]models.StockTransaction, error)
	Update(ctx context.Context, tx *models.StockTransaction) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteForItem(ctx context.Context, itemID primitive.ObjectID) (int64, error)
}

// OrderFilter narrows sales order listings.
type OrderFilter struct {
	Status        models.OrderStatus
	PaymentStatus models.PaymentStatus
	CustomerEmail string
	CustomerName  string
	From          *time.Time
	To            *time.Time
}

// OrderRepository stores sales orders.
type OrderRepository interface {
	Create(ctx context.Context, order *models.SalesOrder) error
	Get(ctx context.Context, id primitive.ObjectID) (*models.SalesOrder, error)
	List(ctx context.Context, filter OrderFilter) ([]models.SalesOrder, error)
	Update(ctx context.Context, order *models.SalesOrder) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// LatestOrderNumber returns the highest order number with the prefix, or "" when none.
	LatestOrderNumber(ctx context.Context, prefix string) (string, error)
	ReferencesItem(ctx context.Context, itemID primitive.ObjectID) (bool, error)
}

// CategoryRepository stores the category tree.
type CategoryRepository interface {
	Collection[models.InventoryCategory]
	CountChildren(ctx context.Context, id primitive.ObjectID) (int64, error)
}

// Store groups every repository behind one transactional boundary.
type Store interface {
	Items() ItemRepository
	Locations() LocationRepository
	Transactions() TransactionRepository
	Orders() OrderRepository
	Categories() CategoryRepository
	Suppliers() Collection[models.Supplier]
	TaxRates() Collection[models.TaxRate]
	Vehicles() Collection[models.Vehicle]
	Insurance() Collection[models.Insurance]
	RoadWorth() Collection[models.RoadWorth]
	DriverLogs() Collection[models.VehicleDriverLog]
	Employees() Collection[models.Employee]

	// WithTransaction runs fn atomically. Repository calls made with the ctx passed to
	// fn take part in the transaction; fn may be retried on transient errors.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
