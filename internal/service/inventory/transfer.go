package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/mamadbah2/fleetstock/internal/apperrors"
	"github.com/mamadbah2/fleetstock/internal/domain/models"
	"github.com/mamadbah2/fleetstock/internal/repository"
)

const transferPrefix = "TRF-"

// Locations returns an item's balance alongside its per-location records.
func (s *Service) Locations(ctx context.Context, itemID primitive.ObjectID) (*models.ItemStockView, error) {
	item, err := loadItem(ctx, s.store, itemID)
	if err != nil {
		return nil, err
	}
	rows, err := s.store.Locations().ListForItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("list stock locations: %w", err)
	}

	view := &models.ItemStockView{
		Item:            item.ID,
		ItemCode:        item.ItemCode,
		QuantityInStock: item.QuantityInStock,
		Locations:       rows,
	}
	for _, row := range rows {
		view.LocatedQuantity += row.Quantity
	}
	return view, nil
}

// LocationCountReference tags the adjustment written when a location is recounted.
const LocationCountReference = "LOCATION-COUNT"

// SetLocationQuantity records a counted quantity at one location. The difference
// is posted as an adjustment so quantityInStock follows the count.
func (s *Service) SetLocationQuantity(ctx context.Context, itemID primitive.ObjectID, req models.SetLocationRequest) (*models.StockLocation, error) {
	location := models.Location(strings.ToLower(strings.TrimSpace(string(req.Location))))
	if !location.Valid() {
		return nil, apperrors.Validation("invalid location %q", req.Location)
	}
	if req.Quantity < 0 {
		return nil, apperrors.Validation("quantity cannot be negative")
	}

	var (
		row   *models.StockLocation
		delta int
	)
	err := s.store.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := loadItem(ctx, s.store, itemID); err != nil {
			return err
		}
		rows, err := s.store.Locations().ListForItem(ctx, itemID)
		if err != nil {
			return fmt.Errorf("list stock locations: %w", err)
		}
		current := 0
		for _, r := range rows {
			if r.Location == location {
				current = r.Quantity
			}
		}

		delta = req.Quantity - current
		if delta != 0 {
			count := &models.StockTransaction{
				Item:            itemID,
				TransactionType: models.TransactionAdjustment,
				Quantity:        delta,
				Location:        location,
				Reference:       LocationCountReference,
				TransactionDate: s.now(),
			}
			if _, err := Post(ctx, s.store, count); err != nil {
				return err
			}
		}
		row, err = s.store.Locations().Set(ctx, itemID, location, req.Quantity)
		if err != nil {
			return fmt.Errorf("set stock location: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if delta != 0 {
		s.metrics.StockMovement(string(models.TransactionAdjustment))
	}
	s.logger.Info("stock location counted",
		zap.String("item", itemID.Hex()),
		zap.String("location", string(location)),
		zap.Int("quantity", req.Quantity),
		zap.Int("delta", delta),
	)
	return row, nil
}

// Transfer moves quantity between two locations of the same item and records a
// stockout/stockin pair sharing one reference. The item's total does not change.
func (s *Service) Transfer(ctx context.Context, itemID primitive.ObjectID, req models.TransferRequest) (*models.TransferSummary, error) {
	from := models.Location(strings.ToLower(strings.TrimSpace(string(req.FromLocation))))
	to := models.Location(strings.ToLower(strings.TrimSpace(string(req.ToLocation))))
	switch {
	case !from.Valid():
		return nil, apperrors.Validation("invalid source location %q", req.FromLocation)
	case !to.Valid():
		return nil, apperrors.Validation("invalid destination location %q", req.ToLocation)
	case from == to:
		return nil, apperrors.ErrSameLocation
	case req.Quantity <= 0:
		return nil, apperrors.Validation("quantity must be greater than zero")
	}

	reference := transferPrefix + strings.ToUpper(uuid.NewString()[:8])
	summary := &models.TransferSummary{
		Item:         itemID,
		FromLocation: from,
		ToLocation:   to,
		Quantity:     req.Quantity,
		Reference:    reference,
		Reason:       strings.TrimSpace(req.Reason),
	}

	err := s.store.WithTransaction(ctx, func(ctx context.Context) error {
		item, err := loadItem(ctx, s.store, itemID)
		if err != nil {
			return err
		}
		summary.ItemCode = item.ItemCode

		source, err := s.store.Locations().Adjust(ctx, itemID, from, -req.Quantity)
		if errors.Is(err, repository.ErrInsufficientQuantity) {
			return apperrors.Validation("insufficient quantity at %s", from)
		}
		if err != nil {
			return fmt.Errorf("debit source location: %w", err)
		}
		dest, err := s.store.Locations().Adjust(ctx, itemID, to, req.Quantity)
		if err != nil {
			return fmt.Errorf("credit destination location: %w", err)
		}
		summary.FromBalance = source.Quantity
		summary.ToBalance = dest.Quantity

		now := s.now()
		for _, leg := range []models.StockTransaction{
			{Item: itemID, TransactionType: models.TransactionStockOut, Quantity: req.Quantity, Location: from},
			{Item: itemID, TransactionType: models.TransactionStockIn, Quantity: req.Quantity, Location: to},
		} {
			leg.Reference = reference
			leg.Notes = summary.Reason
			leg.TransactionDate = now
			if err := s.store.Transactions().Create(ctx, &leg); err != nil {
				return fmt.Errorf("record transfer leg: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.StockMovement("transfer")
	s.logger.Info("stock transferred",
		zap.String("item_code", summary.ItemCode),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
		zap.Int("quantity", req.Quantity),
		zap.String("reference", reference),
	)
	return summary, nil
}
