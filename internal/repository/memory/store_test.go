package memory

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mamadbah2/fleetstock/internal/domain/models"
	"github.com/mamadbah2/fleetstock/internal/repository"
)

func newItem(code string, qty int) *models.InventoryItem {
	return &models.InventoryItem{
		ItemCode:        code,
		Description:     "item " + code,
		Type:            models.ItemPhysical,
		Category:        primitive.NewObjectID(),
		QuantityInStock: qty,
		Status:          models.ItemActive,
	}
}

func TestDuplicateItemCode(t *testing.T) {
	ctx := context.Background()
	store := New()

	if err := store.Items().Create(ctx, newItem("TYRE-01", 1)); err != nil {
		t.Fatalf("create: %v", err)
	}
	err := store.Items().Create(ctx, newItem("TYRE-01", 2))
	if !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestAdjustStockGuardsNegativeBalance(t *testing.T) {
	ctx := context.Background()
	store := New()
	item := newItem("OIL-5L", 3)
	if err := store.Items().Create(ctx, item); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := store.Items().AdjustStock(ctx, item.ID, -4); !errors.Is(err, repository.ErrInsufficientQuantity) {
		t.Fatalf("expected ErrInsufficientQuantity, got %v", err)
	}
	updated, err := store.Items().AdjustStock(ctx, item.ID, -3)
	if err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if updated.QuantityInStock != 0 {
		t.Fatalf("expected 0 in stock, got %d", updated.QuantityInStock)
	}
	if _, err := store.Items().AdjustStock(ctx, primitive.NewObjectID(), 1); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateDetailsKeepsQuantity(t *testing.T) {
	ctx := context.Background()
	store := New()
	item := newItem("BELT", 7)
	if err := store.Items().Create(ctx, item); err != nil {
		t.Fatalf("create: %v", err)
	}

	item.QuantityInStock = 999
	item.Description = "fan belt"
	if err := store.Items().UpdateDetails(ctx, item); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := store.Items().Get(ctx, item.ID)
	if got.QuantityInStock != 7 || got.Description != "fan belt" {
		t.Fatalf("unexpected item %+v", got)
	}
}

func TestTransactionRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := New()
	item := newItem("FILTER", 5)
	if err := store.Items().Create(ctx, item); err != nil {
		t.Fatalf("create: %v", err)
	}

	boom := errors.New("boom")
	err := store.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := store.Items().AdjustStock(ctx, item.ID, -2); err != nil {
			return err
		}
		if err := store.Transactions().Create(ctx, &models.StockTransaction{Item: item.ID, TransactionType: models.TransactionStockOut, Quantity: 2}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	got, _ := store.Items().Get(ctx, item.ID)
	if got.QuantityInStock != 5 {
		t.Fatalf("expected rollback to 5, got %d", got.QuantityInStock)
	}
	txs, _ := store.Transactions().List(ctx, repository.TransactionFilter{})
	if len(txs) != 0 {
		t.Fatalf("expected no transactions after rollback, got %d", len(txs))
	}
}

func TestLocationAdjust(t *testing.T) {
	ctx := context.Background()
	store := New()
	itemID := primitive.NewObjectID()

	if _, err := store.Locations().Adjust(ctx, itemID, models.LocationRetail, -1); !errors.Is(err, repository.ErrInsufficientQuantity) {
		t.Fatalf("expected insufficient on missing record, got %v", err)
	}
	if _, err := store.Locations().Adjust(ctx, itemID, models.LocationRetail, 4); err != nil {
		t.Fatalf("adjust up: %v", err)
	}
	row, err := store.Locations().Adjust(ctx, itemID, models.LocationRetail, -3)
	if err != nil {
		t.Fatalf("adjust down: %v", err)
	}
	if row.Quantity != 1 {
		t.Fatalf("expected 1, got %d", row.Quantity)
	}
	rows, _ := store.Locations().ListForItem(ctx, itemID)
	if len(rows) != 1 {
		t.Fatalf("expected one location record, got %d", len(rows))
	}
}

func TestLatestOrderNumber(t *testing.T) {
	ctx := context.Background()
	store := New()
	for _, number := range []string{"SO26100001", "SO26100003", "SO26090009"} {
		if err := store.Orders().Create(ctx, &models.SalesOrder{OrderNumber: number}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	latest, err := store.Orders().LatestOrderNumber(ctx, "SO2610")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest != "SO26100003" {
		t.Fatalf("expected SO26100003, got %s", latest)
	}
	none, _ := store.Orders().LatestOrderNumber(ctx, "SO2611")
	if none != "" {
		t.Fatalf("expected empty, got %s", none)
	}
}

func TestLatestOrderNumberRanksByLength(t *testing.T) {
	ctx := context.Background()
	store := New()
	for _, number := range []string{"SO26109998", "SO261010000", "SO26109999", "SO26090042"} {
		if err := store.Orders().Create(ctx, &models.SalesOrder{OrderNumber: number}); err != nil {
			t.Fatalf("create %s: %v", number, err)
		}
	}

	latest, err := store.Orders().LatestOrderNumber(ctx, "SO2610")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest != "SO261010000" {
		t.Fatalf("expected SO261010000, got %s", latest)
	}
	if latest, _ := store.Orders().LatestOrderNumber(ctx, "SO2611"); latest != "" {
		t.Fatalf("expected no number for an empty month, got %s", latest)
	}
}
