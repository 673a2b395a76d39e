package catalog

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/mamadbah2/fleetstock/internal/apperrors"
	"github.com/mamadbah2/fleetstock/internal/domain/models"
	"github.com/mamadbah2/fleetstock/internal/domain/normalize"
	"github.com/mamadbah2/fleetstock/internal/repository"
)

func (s *Service) CreateSupplier(ctx context.Context, in models.Supplier) (*models.Supplier, error) {
	supplier := normalize.Supplier(in)
	supplier.Base = models.Base{}
	if err := validateSupplier(supplier); err != nil {
		return nil, err
	}
	if err := s.store.Suppliers().Create(ctx, &supplier); err != nil {
		return nil, fmt.Errorf("create supplier: %w", err)
	}
	return &supplier, nil
}

func (s *Service) GetSupplier(ctx context.Context, id primitive.ObjectID) (*models.Supplier, error) {
	supplier, err := s.store.Suppliers().Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("supplier not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load supplier: %w", err)
	}
	return supplier, nil
}

func (s *Service) ListSuppliers(ctx context.Context) ([]models.Supplier, error) {
	return s.store.Suppliers().List(ctx)
}

func (s *Service) UpdateSupplier(ctx context.Context, id primitive.ObjectID, in models.Supplier) (*models.Supplier, error) {
	current, err := s.GetSupplier(ctx, id)
	if err != nil {
		return nil, err
	}
	next := normalize.Supplier(in)
	next.Base = current.Base
	if err := validateSupplier(next); err != nil {
		return nil, err
	}
	if err := s.store.Suppliers().Update(ctx, &next); err != nil {
		return nil, fmt.Errorf("update supplier: %w", err)
	}
	return &next, nil
}

// DeleteSupplier removes the supplier and clears it from every item that referenced it.
func (s *Service) DeleteSupplier(ctx context.Context, id primitive.ObjectID) error {
	var detached int64
	err := s.store.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.GetSupplier(ctx, id); err != nil {
			return err
		}
		n, err := s.store.Items().DetachSupplier(ctx, id)
		if err != nil {
			return err
		}
		detached = n
		return s.store.Suppliers().Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.logger.Info("supplier deleted", zap.String("supplier", id.Hex()), zap.Int64("items_detached", detached))
	return nil
}

func validateSupplier(in models.Supplier) error {
	switch {
	case in.Name == "":
		return apperrors.Validation("name is required")
	case !in.Status.Valid():
		return apperrors.Validation("invalid status %q", in.Status)
	}
	return nil
}
