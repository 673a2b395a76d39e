package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/mamadbah2/fleetstock/internal/apperrors"
	"github.com/mamadbah2/fleetstock/internal/domain/models"
	"github.com/mamadbah2/fleetstock/internal/repository"
)

// Post applies tx to its item's balance and location records and appends it to
// the log. It must run inside a store transaction so every write commits together.
func Post(ctx context.Context, store repository.Store, tx *models.StockTransaction) (*models.InventoryItem, error) {
	shortage := apperrors.ErrNegativeStock
	if tx.TransactionType == models.TransactionStockOut {
		shortage = apperrors.ErrInsufficientStock
	}
	item, err := adjust(ctx, store, tx.Item, tx.Location, tx.Delta(), shortage)
	if err != nil {
		return nil, err
	}
	if err := store.Transactions().Create(ctx, tx); err != nil {
		return nil, fmt.Errorf("record stock transaction: %w", err)
	}
	return item, nil
}

// adjust moves quantityInStock by delta and keeps the location records summing to it.
func adjust(ctx context.Context, store repository.Store, itemID primitive.ObjectID, location models.Location, delta int, shortage error) (*models.InventoryItem, error) {
	item, err := store.Items().AdjustStock(ctx, itemID, delta)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, apperrors.NotFound("inventory item not found")
	case errors.Is(err, repository.ErrInsufficientQuantity):
		return nil, shortage
	case err != nil:
		return nil, fmt.Errorf("adjust stock: %w", err)
	}
	if err := place(ctx, store, itemID, location, delta); err != nil {
		return nil, err
	}
	return item, nil
}

// place credits location, or debits it first and draws any remainder from the
// item's other locations in name order. Stock recorded before locations were
// tracked has no row, so a remainder left after every row is drained is dropped.
func place(ctx context.Context, store repository.Store, itemID primitive.ObjectID, location models.Location, delta int) error {
	if delta == 0 {
		return nil
	}
	if delta > 0 {
		if _, err := store.Locations().Adjust(ctx, itemID, location, delta); err != nil {
			return fmt.Errorf("credit %s location: %w", location, err)
		}
		return nil
	}

	rows, err := store.Locations().ListForItem(ctx, itemID)
	if err != nil {
		return fmt.Errorf("list stock locations: %w", err)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Location == location && rows[j].Location != location
	})
	remaining := -delta
	for _, row := range rows {
		if remaining == 0 {
			break
		}
		take := min(row.Quantity, remaining)
		if take <= 0 {
			continue
		}
		if _, err := store.Locations().Adjust(ctx, itemID, row.Location, -take); err != nil {
			return fmt.Errorf("debit %s location: %w", row.Location, err)
		}
		remaining -= take
	}
	return nil
}

func (s *Service) CreateTransaction(ctx context.Context, req models.StockTransactionRequest) (*models.StockTransaction, error) {
	tx := models.StockTransaction{
		Item:            req.Item,
		TransactionType: req.TransactionType,
		Quantity:        req.Quantity,
		Location:        req.Location,
		Reference:       req.Reference,
		Notes:           req.Notes,
	}
	if req.TransactionDate != nil {
		tx.TransactionDate = req.TransactionDate.UTC()
	}
	if err := s.prepare(&tx); err != nil {
		return nil, err
	}

	err := s.store.WithTransaction(ctx, func(ctx context.Context) error {
		_, err := Post(ctx, s.store, &tx)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.StockMovement(string(tx.TransactionType))
	s.logger.Info("stock transaction recorded",
		zap.String("item", tx.Item.Hex()),
		zap.String("type", string(tx.TransactionType)),
		zap.Int("quantity", tx.Quantity),
	)
	return &tx, nil
}

func (s *Service) GetTransaction(ctx context.Context, id primitive.ObjectID) (*models.StockTransaction, error) {
	return loadTransaction(ctx, s.store, id)
}

func (s *Service) ListTransactions(ctx context.Context, filter repository.TransactionFilter) ([]models.StockTransaction, error) {
	txs, err := s.store.Transactions().List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list stock transactions: %w", err)
	}
	return txs, nil
}

// UpdateTransaction reverses the recorded effect and applies the new one. The
// item may change, in which case the old item is credited back first.
func (s *Service) UpdateTransaction(ctx context.Context, id primitive.ObjectID, req models.UpdateStockTransactionRequest) (*models.StockTransaction, error) {
	var updated models.StockTransaction
	err := s.store.WithTransaction(ctx, func(ctx context.Context) error {
		current, err := loadTransaction(ctx, s.store, id)
		if err != nil {
			return err
		}

		next := *current
		if req.Item != nil {
			next.Item = *req.Item
		}
		if req.TransactionType != nil {
			next.TransactionType = *req.TransactionType
		}
		if req.Quantity != nil {
			next.Quantity = *req.Quantity
		}
		if req.Location != nil {
			next.Location = *req.Location
		}
		if req.Reference != nil {
			next.Reference = *req.Reference
		}
		if req.Notes != nil {
			next.Notes = *req.Notes
		}
		if req.TransactionDate != nil {
			next.TransactionDate = req.TransactionDate.UTC()
		}
		if err := s.prepare(&next); err != nil {
			return err
		}

		if _, err := adjust(ctx, s.store, current.Item, current.Location, -current.Delta(), apperrors.ErrNegativeStock); err != nil {
			return err
		}
		shortage := apperrors.ErrNegativeStock
		if next.TransactionType == models.TransactionStockOut {
			shortage = apperrors.ErrInsufficientStock
		}
		if _, err := adjust(ctx, s.store, next.Item, next.Location, next.Delta(), shortage); err != nil {
			return err
		}
		if err := s.store.Transactions().Update(ctx, &next); err != nil {
			return fmt.Errorf("update stock transaction: %w", err)
		}
		updated = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteTransaction reverses the movement and removes the record.
func (s *Service) DeleteTransaction(ctx context.Context, id primitive.ObjectID) error {
	return s.store.WithTransaction(ctx, func(ctx context.Context) error {
		current, err := loadTransaction(ctx, s.store, id)
		if err != nil {
			return err
		}
		if _, err := adjust(ctx, s.store, current.Item, current.Location, -current.Delta(), apperrors.ErrNegativeStock); err != nil {
			return err
		}
		if err := s.store.Transactions().Delete(ctx, id); err != nil {
			return fmt.Errorf("delete stock transaction: %w", err)
		}
		return nil
	})
}

// prepare fills defaults and enforces the per-type quantity rules.
func (s *Service) prepare(tx *models.StockTransaction) error {
	tx.TransactionType = models.TransactionType(strings.ToLower(strings.TrimSpace(string(tx.TransactionType))))
	tx.Location = models.Location(strings.ToLower(strings.TrimSpace(string(tx.Location))))
	tx.Reference = strings.TrimSpace(tx.Reference)
	if tx.Location == "" {
		tx.Location = models.LocationWarehouse
	}
	if tx.TransactionDate.IsZero() {
		tx.TransactionDate = s.now()
	}

	switch {
	case tx.Item.IsZero():
		return apperrors.Validation("item is required")
	case !tx.TransactionType.Valid():
		return apperrors.Validation("invalid transaction type %q", tx.TransactionType)
	case !tx.Location.Valid():
		return apperrors.Validation("invalid location %q", tx.Location)
	case tx.TransactionType == models.TransactionAdjustment && tx.Quantity == 0:
		return apperrors.Validation("adjustment quantity must be non-zero")
	case tx.TransactionType != models.TransactionAdjustment && tx.Quantity <= 0:
		return apperrors.Validation("quantity must be greater than zero")
	}
	return nil
}

func loadTransaction(ctx context.Context, store repository.Store, id primitive.ObjectID) (*models.StockTransaction, error) {
	tx, err := store.Transactions().Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("stock transaction not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load stock transaction: %w", err)
	}
	return tx, nil
}
