package mongodb

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mamadbah2/fleetstock/internal/domain/models"
	"github.com/mamadbah2/fleetstock/internal/repository"
)

// openTestStore connects to MONGO_TEST_URI, e.g. mongodb://localhost:27017, and
// works in a throwaway database dropped when the test ends.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := Connect(ctx, uri, "fleetstock_test_"+primitive.NewObjectID().Hex(), nil)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = store.db.Drop(ctx)
		_ = store.Close(ctx)
	})
	return store
}

func TestAdjustStockConditionalDecrement(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	item := &models.InventoryItem{ItemCode: "OIL-5L", Description: "oil", Type: models.ItemPhysical, Category: primitive.NewObjectID(), QuantityInStock: 3, Status: models.ItemActive}
	if err := store.Items().Create(ctx, item); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := store.Items().AdjustStock(ctx, item.ID, -4); !errors.Is(err, repository.ErrInsufficientQuantity) {
		t.Fatalf("expected ErrInsufficientQuantity, got %v", err)
	}
	updated, err := store.Items().AdjustStock(ctx, item.ID, -3)
	if err != nil || updated.QuantityInStock != 0 {
		t.Fatalf("expected 0 in stock, got %+v (%v)", updated, err)
	}
	if _, err := store.Items().AdjustStock(ctx, primitive.NewObjectID(), 1); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLocationAdjustGuardAndUpsert(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	itemID := primitive.NewObjectID()

	if _, err := store.Locations().Adjust(ctx, itemID, models.LocationRetail, -1); !errors.Is(err, repository.ErrInsufficientQuantity) {
		t.Fatalf("debit of a missing row: expected ErrInsufficientQuantity, got %v", err)
	}
	row, err := store.Locations().Adjust(ctx, itemID, models.LocationRetail, 4)
	if err != nil || row.Quantity != 4 || row.CreatedAt.IsZero() {
		t.Fatalf("expected upserted row with 4, got %+v (%v)", row, err)
	}
	if _, err := store.Locations().Adjust(ctx, itemID, models.LocationRetail, -5); !errors.Is(err, repository.ErrInsufficientQuantity) {
		t.Fatalf("overdraw: expected ErrInsufficientQuantity, got %v", err)
	}
	row, err = store.Locations().Adjust(ctx, itemID, models.LocationRetail, -4)
	if err != nil || row.Quantity != 0 {
		t.Fatalf("expected 0 left, got %+v (%v)", row, err)
	}
	rows, _ := store.Locations().ListForItem(ctx, itemID)
	if len(rows) != 1 {
		t.Fatalf("expected a single retail row, got %d", len(rows))
	}
}

func TestLatestOrderNumberByLength(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	for _, number := range []string{"SO26109999", "SO261010000", "SO26090042", "XSO26109999"} {
		if err := store.Orders().Create(ctx, &models.SalesOrder{OrderNumber: number, Status: models.OrderPending}); err != nil {
			t.Fatalf("create %s: %v", number, err)
		}
	}

	latest, err := store.Orders().LatestOrderNumber(ctx, "SO2610")
	if err != nil || latest != "SO261010000" {
		t.Fatalf("expected SO261010000, got %q (%v)", latest, err)
	}
	latest, err = store.Orders().LatestOrderNumber(ctx, "SO2611")
	if err != nil || latest != "" {
		t.Fatalf("expected no number, got %q (%v)", latest, err)
	}
}

func TestDeleteTransactionsForItem(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	itemID, otherID := primitive.NewObjectID(), primitive.NewObjectID()
	for _, id := range []primitive.ObjectID{itemID, itemID, otherID} {
		tx := &models.StockTransaction{Item: id, TransactionType: models.TransactionStockIn, Quantity: 1, Location: models.LocationWarehouse, TransactionDate: time.Now().UTC()}
		if err := store.Transactions().Create(ctx, tx); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	n, err := store.Transactions().DeleteForItem(ctx, itemID)
	if err != nil || n != 2 {
		t.Fatalf("expected 2 removed, got %d (%v)", n, err)
	}
	left, _ := store.Transactions().List(ctx, repository.TransactionFilter{})
	if len(left) != 1 || left[0].Item != otherID {
		t.Fatalf("unexpected remaining transactions %+v", left)
	}
}
