package inventory

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mamadbah2/fleetstock/internal/apperrors"
	"github.com/mamadbah2/fleetstock/internal/domain/models"
	"github.com/mamadbah2/fleetstock/internal/repository"
	"github.com/mamadbah2/fleetstock/internal/repository/memory"
)

func setup(t *testing.T) (*Service, *memory.Store, primitive.ObjectID) {
	t.Helper()
	store := memory.New()
	category := &models.InventoryCategory{Name: "Spare parts", Status: models.StatusActive}
	if err := store.Categories().Create(context.Background(), category); err != nil {
		t.Fatalf("seed category: %v", err)
	}
	return NewService(store, nil, nil), store, category.ID
}

func createItem(t *testing.T, svc *Service, category primitive.ObjectID, code string, qty int) *models.InventoryItem {
	t.Helper()
	item, err := svc.CreateItem(context.Background(), models.CreateItemRequest{
		ItemCode:        code,
		Description:     "test item",
		Category:        category,
		SellingPrice:    10,
		InitialQuantity: qty,
		ReorderLevel:    2,
	})
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	return item
}

func TestCreateItemRecordsOpeningStock(t *testing.T) {
	ctx := context.Background()
	svc, store, category := setup(t)

	item := createItem(t, svc, category, " brk-pad ", 10)
	if item.ItemCode != "BRK-PAD" {
		t.Fatalf("expected normalized code, got %q", item.ItemCode)
	}
	if item.QuantityInStock != 10 {
		t.Fatalf("expected 10 in stock, got %d", item.QuantityInStock)
	}

	txs, _ := store.Transactions().List(ctx, repository.TransactionFilter{Item: &item.ID})
	if len(txs) != 1 || txs[0].TransactionType != models.TransactionStockIn || txs[0].Reference != InitialStockReference {
		t.Fatalf("unexpected opening transactions %+v", txs)
	}
	view, err := svc.Locations(ctx, item.ID)
	if err != nil {
		t.Fatalf("locations: %v", err)
	}
	if view.LocatedQuantity != 10 || len(view.Locations) != 1 || view.Locations[0].Location != models.LocationWarehouse {
		t.Fatalf("unexpected location view %+v", view)
	}
}

func TestCreateItemRequiresExistingCategory(t *testing.T) {
	svc, _, _ := setup(t)
	_, err := svc.CreateItem(context.Background(), models.CreateItemRequest{
		ItemCode:    "X1",
		Description: "orphan",
		Category:    primitive.NewObjectID(),
	})
	if apperrors.KindOf(err) != apperrors.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestStockOutBeyondBalanceIsRejected(t *testing.T) {
	ctx := context.Background()
	svc, store, category := setup(t)
	item := createItem(t, svc, category, "BULB", 3)

	_, err := svc.CreateTransaction(ctx, models.StockTransactionRequest{
		Item:            item.ID,
		TransactionType: models.TransactionStockOut,
		Quantity:        4,
	})
	if !errors.Is(err, apperrors.ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
	if apperrors.MessageOf(err) != "Insufficient stock available" {
		t.Fatalf("unexpected message %q", apperrors.MessageOf(err))
	}

	got, _ := store.Items().Get(ctx, item.ID)
	if got.QuantityInStock != 3 {
		t.Fatalf("stock changed to %d", got.QuantityInStock)
	}
	txs, _ := store.Transactions().List(ctx, repository.TransactionFilter{Item: &item.ID})
	if len(txs) != 1 {
		t.Fatalf("expected only the opening transaction, got %d", len(txs))
	}
}

func TestTransactionTypesMoveBalance(t *testing.T) {
	ctx := context.Background()
	svc, store, category := setup(t)
	item := createItem(t, svc, category, "WIPER", 5)

	steps := []struct {
		txType models.TransactionType
		qty    int
		want   int
	}{
		{models.TransactionStockIn, 5, 10},
		{models.TransactionStockOut, 3, 7},
		{models.TransactionReturn, 1, 8},
		{models.TransactionAdjustment, -2, 6},
		{models.TransactionAdjustment, 4, 10},
	}
	for _, step := range steps {
		if _, err := svc.CreateTransaction(ctx, models.StockTransactionRequest{Item: item.ID, TransactionType: step.txType, Quantity: step.qty}); err != nil {
			t.Fatalf("%s %d: %v", step.txType, step.qty, err)
		}
		got, _ := store.Items().Get(ctx, item.ID)
		if got.QuantityInStock != step.want {
			t.Fatalf("after %s %d expected %d, got %d", step.txType, step.qty, step.want, got.QuantityInStock)
		}
	}

	_, err := svc.CreateTransaction(ctx, models.StockTransactionRequest{Item: item.ID, TransactionType: models.TransactionAdjustment, Quantity: -11})
	if !errors.Is(err, apperrors.ErrNegativeStock) {
		t.Fatalf("expected negative stock guard, got %v", err)
	}
	_, err = svc.CreateTransaction(ctx, models.StockTransactionRequest{Item: item.ID, TransactionType: models.TransactionAdjustment})
	if apperrors.KindOf(err) != apperrors.KindValidation {
		t.Fatalf("expected zero adjustment to be rejected, got %v", err)
	}
}

func TestUpdateTransactionMovesBetweenItems(t *testing.T) {
	ctx := context.Background()
	svc, store, category := setup(t)
	a := createItem(t, svc, category, "A", 10)
	b := createItem(t, svc, category, "B", 0)

	tx, err := svc.CreateTransaction(ctx, models.StockTransactionRequest{Item: a.ID, TransactionType: models.TransactionStockIn, Quantity: 5})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	qty := 7
	if _, err := svc.UpdateTransaction(ctx, tx.ID, models.UpdateStockTransactionRequest{Item: &b.ID, Quantity: &qty}); err != nil {
		t.Fatalf("update: %v", err)
	}

	gotA, _ := store.Items().Get(ctx, a.ID)
	gotB, _ := store.Items().Get(ctx, b.ID)
	if gotA.QuantityInStock != 10 || gotB.QuantityInStock != 7 {
		t.Fatalf("expected A=10 B=7, got A=%d B=%d", gotA.QuantityInStock, gotB.QuantityInStock)
	}
}

func TestDeleteTransactionGuardsNegativeStock(t *testing.T) {
	ctx := context.Background()
	svc, store, category := setup(t)
	item := createItem(t, svc, category, "HOSE", 0)

	in, err := svc.CreateTransaction(ctx, models.StockTransactionRequest{Item: item.ID, TransactionType: models.TransactionStockIn, Quantity: 5})
	if err != nil {
		t.Fatalf("stockin: %v", err)
	}
	if _, err := svc.CreateTransaction(ctx, models.StockTransactionRequest{Item: item.ID, TransactionType: models.TransactionStockOut, Quantity: 4}); err != nil {
		t.Fatalf("stockout: %v", err)
	}

	if err := svc.DeleteTransaction(ctx, in.ID); !errors.Is(err, apperrors.ErrNegativeStock) {
		t.Fatalf("expected negative stock guard, got %v", err)
	}
	if _, err := store.Transactions().Get(ctx, in.ID); err != nil {
		t.Fatalf("transaction should survive a rejected delete: %v", err)
	}
}

func TestTransferValidation(t *testing.T) {
	ctx := context.Background()
	svc, _, category := setup(t)
	item := createItem(t, svc, category, "JACK", 4)

	_, err := svc.Transfer(ctx, item.ID, models.TransferRequest{FromLocation: models.LocationWarehouse, ToLocation: models.LocationWarehouse, Quantity: 1})
	if !errors.Is(err, apperrors.ErrSameLocation) {
		t.Fatalf("expected same location error, got %v", err)
	}
	_, err = svc.Transfer(ctx, item.ID, models.TransferRequest{FromLocation: models.LocationWarehouse, ToLocation: models.LocationRetail, Quantity: 5})
	if apperrors.KindOf(err) != apperrors.KindValidation {
		t.Fatalf("expected insufficient source quantity, got %v", err)
	}
	_, err = svc.Transfer(ctx, item.ID, models.TransferRequest{FromLocation: "garage", ToLocation: models.LocationRetail, Quantity: 1})
	if apperrors.KindOf(err) != apperrors.KindValidation {
		t.Fatalf("expected invalid location, got %v", err)
	}
}

func TestTransferWritesPairedLegs(t *testing.T) {
	ctx := context.Background()
	svc, store, category := setup(t)
	item := createItem(t, svc, category, "JACK", 4)

	summary, err := svc.Transfer(ctx, item.ID, models.TransferRequest{FromLocation: models.LocationWarehouse, ToLocation: models.LocationRetail, Quantity: 3, Reason: "restock shop"})
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if summary.FromBalance != 1 || summary.ToBalance != 3 {
		t.Fatalf("unexpected balances %+v", summary)
	}
	if !strings.HasPrefix(summary.Reference, "TRF-") {
		t.Fatalf("unexpected reference %q", summary.Reference)
	}

	txs, _ := store.Transactions().List(ctx, repository.TransactionFilter{Item: &item.ID})
	var legs int
	for _, tx := range txs {
		if tx.Reference == summary.Reference {
			legs++
		}
	}
	if legs != 2 {
		t.Fatalf("expected 2 transfer legs, got %d", legs)
	}
	got, _ := store.Items().Get(ctx, item.ID)
	if got.QuantityInStock != 4 {
		t.Fatalf("transfer must not change total stock, got %d", got.QuantityInStock)
	}
}

func TestUpdateItemNeverTouchesStock(t *testing.T) {
	ctx := context.Background()
	svc, _, category := setup(t)
	item := createItem(t, svc, category, "MIRROR", 6)

	desc := "side mirror"
	updated, err := svc.UpdateItem(ctx, item.ID, models.UpdateItemRequest{Description: &desc})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Description != "side mirror" || updated.QuantityInStock != 6 {
		t.Fatalf("unexpected item %+v", updated)
	}
}

func TestDeleteItemBlockedByOrders(t *testing.T) {
	ctx := context.Background()
	svc, store, category := setup(t)
	item := createItem(t, svc, category, "SEAT", 2)

	order := &models.SalesOrder{OrderNumber: "SO26100001", Items: []models.OrderLine{{Item: item.ID, Quantity: 1}}}
	if err := store.Orders().Create(ctx, order); err != nil {
		t.Fatalf("seed order: %v", err)
	}
	if err := svc.DeleteItem(ctx, item.ID); apperrors.KindOf(err) != apperrors.KindValidation {
		t.Fatalf("expected delete to be blocked, got %v", err)
	}
}

func TestLowStock(t *testing.T) {
	ctx := context.Background()
	svc, _, category := setup(t)
	createItem(t, svc, category, "LOW", 1)
	createItem(t, svc, category, "OK", 20)

	items, err := svc.LowStock(ctx)
	if err != nil {
		t.Fatalf("low stock: %v", err)
	}
	if len(items) != 1 || items[0].ItemCode != "LOW" {
		t.Fatalf("unexpected low stock items %+v", items)
	}
}

func assertLocated(t *testing.T, svc *Service, itemID primitive.ObjectID, want int) *models.ItemStockView {
	t.Helper()
	view, err := svc.Locations(context.Background(), itemID)
	if err != nil {
		t.Fatalf("locations: %v", err)
	}
	if view.QuantityInStock != want || view.LocatedQuantity != want {
		t.Fatalf("expected %d in stock and located, got %d in stock, %d located", want, view.QuantityInStock, view.LocatedQuantity)
	}
	return view
}

func TestPostingsKeepLocationsInBalance(t *testing.T) {
	ctx := context.Background()
	svc, _, category := setup(t)
	item := createItem(t, svc, category, "PAD", 10)

	sale, err := svc.CreateTransaction(ctx, models.StockTransactionRequest{Item: item.ID, TransactionType: models.TransactionStockOut, Quantity: 4, Location: models.LocationRetail})
	if err != nil {
		t.Fatalf("stockout: %v", err)
	}
	view := assertLocated(t, svc, item.ID, 6)
	if len(view.Locations) != 1 || view.Locations[0].Location != models.LocationWarehouse {
		t.Fatalf("sale should draw down the warehouse, got %+v", view.Locations)
	}

	_, err = svc.Transfer(ctx, item.ID, models.TransferRequest{FromLocation: models.LocationWarehouse, ToLocation: models.LocationRetail, Quantity: 10})
	if apperrors.KindOf(err) != apperrors.KindValidation {
		t.Fatalf("transfer of sold stock should fail, got %v", err)
	}

	if _, err := svc.CreateTransaction(ctx, models.StockTransactionRequest{Item: item.ID, TransactionType: models.TransactionReturn, Quantity: 4, Location: models.LocationRetail}); err != nil {
		t.Fatalf("return: %v", err)
	}
	assertLocated(t, svc, item.ID, 10)

	if _, err := svc.Transfer(ctx, item.ID, models.TransferRequest{FromLocation: models.LocationWarehouse, ToLocation: models.LocationRetail, Quantity: 6}); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	assertLocated(t, svc, item.ID, 10)

	if err := svc.DeleteTransaction(ctx, sale.ID); err != nil {
		t.Fatalf("delete sale: %v", err)
	}
	assertLocated(t, svc, item.ID, 14)
}

func TestSetLocationPostsAdjustment(t *testing.T) {
	ctx := context.Background()
	svc, store, category := setup(t)
	item := createItem(t, svc, category, "BELT", 5)

	if _, err := svc.SetLocationQuantity(ctx, item.ID, models.SetLocationRequest{Location: "Retail", Quantity: 3}); err != nil {
		t.Fatalf("set retail: %v", err)
	}
	assertLocated(t, svc, item.ID, 8)

	row, err := svc.SetLocationQuantity(ctx, item.ID, models.SetLocationRequest{Location: models.LocationWarehouse, Quantity: 1})
	if err != nil {
		t.Fatalf("set warehouse: %v", err)
	}
	if row.Quantity != 1 {
		t.Fatalf("expected warehouse 1, got %d", row.Quantity)
	}
	assertLocated(t, svc, item.ID, 4)

	txs, _ := store.Transactions().List(ctx, repository.TransactionFilter{Item: &item.ID, Type: models.TransactionAdjustment})
	if len(txs) != 2 {
		t.Fatalf("expected two count adjustments, got %d", len(txs))
	}
	for _, tx := range txs {
		if tx.Reference != LocationCountReference {
			t.Fatalf("unexpected reference %q", tx.Reference)
		}
	}
}

func TestDeleteItemRemovesLedger(t *testing.T) {
	ctx := context.Background()
	svc, store, category := setup(t)
	item := createItem(t, svc, category, "CLAMP", 5)
	other := createItem(t, svc, category, "SPRING", 2)
	if _, err := svc.CreateTransaction(ctx, models.StockTransactionRequest{Item: item.ID, TransactionType: models.TransactionStockOut, Quantity: 1}); err != nil {
		t.Fatalf("stockout: %v", err)
	}

	if err := svc.DeleteItem(ctx, item.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	txs, _ := store.Transactions().List(ctx, repository.TransactionFilter{Item: &item.ID})
	if len(txs) != 0 {
		t.Fatalf("expected ledger entries to go with the item, got %d", len(txs))
	}
	rows, _ := store.Locations().ListForItem(ctx, item.ID)
	if len(rows) != 0 {
		t.Fatalf("expected locations to go with the item, got %d", len(rows))
	}
	if kept, _ := store.Transactions().List(ctx, repository.TransactionFilter{Item: &other.ID}); len(kept) != 1 {
		t.Fatalf("other item's ledger touched: %d entries", len(kept))
	}
}
