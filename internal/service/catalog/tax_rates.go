package catalog

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mamadbah2/fleetstock/internal/apperrors"
	"github.com/mamadbah2/fleetstock/internal/domain/models"
	"github.com/mamadbah2/fleetstock/internal/domain/normalize"
	"github.com/mamadbah2/fleetstock/internal/repository"
)

func (s *Service) CreateTaxRate(ctx context.Context, in models.TaxRate) (*models.TaxRate, error) {
	rate := normalize.TaxRate(in)
	rate.Base = models.Base{}
	if err := validateTaxRate(rate); err != nil {
		return nil, err
	}
	err := s.store.WithTransaction(ctx, func(ctx context.Context) error {
		if rate.IsDefault {
			if err := s.clearDefault(ctx, primitive.NilObjectID); err != nil {
				return err
			}
		}
		return s.store.TaxRates().Create(ctx, &rate)
	})
	if err != nil {
		return nil, fmt.Errorf("create tax rate: %w", err)
	}
	return &rate, nil
}

func (s *Service) GetTaxRate(ctx context.Context, id primitive.ObjectID) (*models.TaxRate, error) {
	rate, err := s.store.TaxRates().Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("tax rate not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load tax rate: %w", err)
	}
	return rate, nil
}

func (s *Service) ListTaxRates(ctx context.Context) ([]models.TaxRate, error) {
	return s.store.TaxRates().List(ctx)
}

// UpdateTaxRate replaces a rate. Marking it default clears the flag on every other rate.
func (s *Service) UpdateTaxRate(ctx context.Context, id primitive.ObjectID, in models.TaxRate) (*models.TaxRate, error) {
	var next models.TaxRate
	err := s.store.WithTransaction(ctx, func(ctx context.Context) error {
		current, err := s.GetTaxRate(ctx, id)
		if err != nil {
			return err
		}
		next = normalize.TaxRate(in)
		next.Base = current.Base
		if err := validateTaxRate(next); err != nil {
			return err
		}
		if next.IsDefault {
			if err := s.clearDefault(ctx, id); err != nil {
				return err
			}
		}
		return s.store.TaxRates().Update(ctx, &next)
	})
	if err != nil {
		return nil, err
	}
	return &next, nil
}

func (s *Service) DeleteTaxRate(ctx context.Context, id primitive.ObjectID) error {
	if err := s.store.TaxRates().Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("tax rate not found")
		}
		return fmt.Errorf("delete tax rate: %w", err)
	}
	return nil
}

func (s *Service) clearDefault(ctx context.Context, keep primitive.ObjectID) error {
	rates, err := s.store.TaxRates().List(ctx)
	if err != nil {
		return err
	}
	for _, rate := range rates {
		if !rate.IsDefault || rate.ID == keep {
			continue
		}
		rate.IsDefault = false
		if err := s.store.TaxRates().Update(ctx, &rate); err != nil {
			return err
		}
	}
	return nil
}

func validateTaxRate(in models.TaxRate) error {
	switch {
	case in.Name == "":
		return apperrors.Validation("name is required")
	case in.Rate < 0 || in.Rate > 100:
		return apperrors.Validation("rate must be between 0 and 100")
	case !in.Status.Valid():
		return apperrors.Validation("invalid status %q", in.Status)
	}
	return nil
}
