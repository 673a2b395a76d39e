package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/mamadbah2/fleetstock/internal/apperrors"
	"github.com/mamadbah2/fleetstock/internal/domain/models"
	"github.com/mamadbah2/fleetstock/internal/domain/normalize"
	"github.com/mamadbah2/fleetstock/internal/metrics"
	"github.com/mamadbah2/fleetstock/internal/repository"
)

// InitialStockReference tags the stockin written for an item's opening balance.
const InitialStockReference = "INITIAL-STOCK"

// Service owns inventory items, their locations and the stock ledger.
type Service struct {
	store   repository.Store
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewService wires a new inventory service instance.
func NewService(store repository.Store, m *metrics.Metrics, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:   store,
		metrics: m,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) CreateItem(ctx context.Context, req models.CreateItemRequest) (*models.InventoryItem, error) {
	item := normalize.Item(models.InventoryItem{
		ItemCode:       req.ItemCode,
		Description:    req.Description,
		Type:           req.Type,
		UnitOfMeasure:  req.UnitOfMeasure,
		Category:       req.Category,
		Supplier:       req.Supplier,
		UnitCost:       req.UnitCost,
		SellingPrice:   req.SellingPrice,
		WholesalePrice: req.WholesalePrice,
		ReorderLevel:   req.ReorderLevel,
		IsSerialized:   req.IsSerialized,
		Status:         req.Status,
	})
	if req.InitialQuantity < 0 {
		return nil, apperrors.Validation("quantityInStock cannot be negative")
	}
	if err := validateItem(item); err != nil {
		return nil, err
	}

	err := s.store.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.checkReferences(ctx, item); err != nil {
			return err
		}
		if err := s.store.Items().Create(ctx, &item); err != nil {
			return fmt.Errorf("create inventory item: %w", err)
		}
		if req.InitialQuantity == 0 {
			return nil
		}

		opening := &models.StockTransaction{
			Item:            item.ID,
			TransactionType: models.TransactionStockIn,
			Quantity:        req.InitialQuantity,
			Location:        models.LocationWarehouse,
			Reference:       InitialStockReference,
			TransactionDate: s.now(),
		}
		updated, err := Post(ctx, s.store, opening)
		if err != nil {
			return err
		}
		item = *updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	if req.InitialQuantity > 0 {
		s.metrics.StockMovement(string(models.TransactionStockIn))
	}
	s.logger.Info("inventory item created", zap.String("item_code", item.ItemCode), zap.Int("quantity", item.QuantityInStock))
	return &item, nil
}

func (s *Service) GetItem(ctx context.Context, id primitive.ObjectID) (*models.InventoryItem, error) {
	return loadItem(ctx, s.store, id)
}

func (s *Service) ListItems(ctx context.Context, filter repository.ItemFilter) ([]models.InventoryItem, error) {
	items, err := s.store.Items().List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list inventory items: %w", err)
	}
	return items, nil
}

// LowStock lists active items at or below their reorder level.
func (s *Service) LowStock(ctx context.Context) ([]models.InventoryItem, error) {
	return s.ListItems(ctx, repository.ItemFilter{Status: models.ItemActive, LowStockOnly: true})
}

// UpdateItem patches master data. The stock balance is never written here.
func (s *Service) UpdateItem(ctx context.Context, id primitive.ObjectID, req models.UpdateItemRequest) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := s.store.WithTransaction(ctx, func(ctx context.Context) error {
		current, err := loadItem(ctx, s.store, id)
		if err != nil {
			return err
		}
		next := applyItemPatch(*current, req)
		next = normalize.Item(next)
		if err := validateItem(next); err != nil {
			return err
		}
		if err := s.checkReferences(ctx, next); err != nil {
			return err
		}
		if err := s.store.Items().UpdateDetails(ctx, &next); err != nil {
			return fmt.Errorf("update inventory item: %w", err)
		}
		item = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// DeleteItem removes an item with its location records and ledger entries unless
// a sales order references it.
func (s *Service) DeleteItem(ctx context.Context, id primitive.ObjectID) error {
	var removed int64
	err := s.store.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := loadItem(ctx, s.store, id); err != nil {
			return err
		}
		referenced, err := s.store.Orders().ReferencesItem(ctx, id)
		if err != nil {
			return err
		}
		if referenced {
			return apperrors.Validation("inventory item is referenced by sales orders")
		}
		if err := s.store.Locations().DeleteForItem(ctx, id); err != nil {
			return err
		}
		n, err := s.store.Transactions().DeleteForItem(ctx, id)
		if err != nil {
			return err
		}
		if err := s.store.Items().Delete(ctx, id); err != nil {
			return fmt.Errorf("delete inventory item: %w", err)
		}
		removed = n
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("inventory item deleted", zap.String("item", id.Hex()), zap.Int64("transactions_removed", removed))
	return nil
}

func (s *Service) checkReferences(ctx context.Context, item models.InventoryItem) error {
	if _, err := s.store.Categories().Get(ctx, item.Category); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("inventory category not found")
		}
		return fmt.Errorf("load category: %w", err)
	}
	if item.Supplier == nil {
		return nil
	}
	if _, err := s.store.Suppliers().Get(ctx, *item.Supplier); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("supplier not found")
		}
		return fmt.Errorf("load supplier: %w", err)
	}
	return nil
}

func applyItemPatch(item models.InventoryItem, req models.UpdateItemRequest) models.InventoryItem {
	if req.ItemCode != nil {
		item.ItemCode = *req.ItemCode
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.Type != nil {
		item.Type = *req.Type
	}
	if req.UnitOfMeasure != nil {
		item.UnitOfMeasure = *req.UnitOfMeasure
	}
	if req.Category != nil {
		item.Category = *req.Category
	}
	if req.Supplier != nil {
		if req.Supplier.IsZero() {
			item.Supplier = nil
		} else {
			supplier := *req.Supplier
			item.Supplier = &supplier
		}
	}
	if req.UnitCost != nil {
		item.UnitCost = *req.UnitCost
	}
	if req.SellingPrice != nil {
		item.SellingPrice = *req.SellingPrice
	}
	if req.WholesalePrice != nil {
		item.WholesalePrice = *req.WholesalePrice
	}
	if req.ReorderLevel != nil {
		item.ReorderLevel = *req.ReorderLevel
	}
	if req.IsSerialized != nil {
		item.IsSerialized = *req.IsSerialized
	}
	if req.Status != nil {
		item.Status = *req.Status
	}
	return item
}

func validateItem(item models.InventoryItem) error {
	switch {
	case item.ItemCode == "":
		return apperrors.Validation("itemCode is required")
	case item.Description == "":
		return apperrors.Validation("description is required")
	case !item.Type.Valid():
		return apperrors.Validation("invalid item type %q", item.Type)
	case !item.Status.Valid():
		return apperrors.Validation("invalid item status %q", item.Status)
	case item.Category.IsZero():
		return apperrors.Validation("category is required")
	case item.UnitCost < 0 || item.SellingPrice < 0 || item.WholesalePrice < 0:
		return apperrors.Validation("prices cannot be negative")
	case item.ReorderLevel < 0:
		return apperrors.Validation("reorderLevel cannot be negative")
	}
	return nil
}

func loadItem(ctx context.Context, store repository.Store, id primitive.ObjectID) (*models.InventoryItem, error) {
	item, err := store.Items().Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("inventory item not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load inventory item: %w", err)
	}
	return item, nil
}
