package records

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/mamadbah2/fleetstock/internal/apperrors"
	"github.com/mamadbah2/fleetstock/internal/domain/models"
	"github.com/mamadbah2/fleetstock/internal/repository"
)

// Resource is CRUD over one collection with normalize and validate hooks run on every write.
type Resource[T any, P models.Document[T]] struct {
	name      string
	coll      repository.Collection[T]
	normalize func(T) T
	validate  func(ctx context.Context, v *T) error
	logger    *zap.Logger
}

func newResource[T any, P models.Document[T]](name string, coll repository.Collection[T], normalize func(T) T, validate func(ctx context.Context, v *T) error, logger *zap.Logger) *Resource[T, P] {
	return &Resource[T, P]{name: name, coll: coll, normalize: normalize, validate: validate, logger: logger}
}

// Name is the singular resource name used in messages.
func (r *Resource[T, P]) Name() string { return r.name }

func (r *Resource[T, P]) Create(ctx context.Context, in T) (*T, error) {
	v := r.normalize(in)
	*P(&v).Meta() = models.Base{}
	if err := r.validate(ctx, &v); err != nil {
		return nil, err
	}
	if err := r.coll.Create(ctx, &v); err != nil {
		return nil, fmt.Errorf("create %s: %w", r.name, err)
	}
	r.logger.Info("record created", zap.String("resource", r.name), zap.String("id", P(&v).Meta().ID.Hex()))
	return &v, nil
}

func (r *Resource[T, P]) Get(ctx context.Context, id primitive.ObjectID) (*T, error) {
	v, err := r.coll.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("%s not found", r.name)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", r.name, err)
	}
	return v, nil
}

func (r *Resource[T, P]) List(ctx context.Context) ([]T, error) {
	out, err := r.coll.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.name, err)
	}
	return out, nil
}

func (r *Resource[T, P]) Update(ctx context.Context, id primitive.ObjectID, in T) (*T, error) {
	current, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	v := r.normalize(in)
	*P(&v).Meta() = *P(current).Meta()
	if err := r.validate(ctx, &v); err != nil {
		return nil, err
	}
	if err := r.coll.Update(ctx, &v); err != nil {
		return nil, fmt.Errorf("update %s: %w", r.name, err)
	}
	r.logger.Info("record updated", zap.String("resource", r.name), zap.String("id", id.Hex()))
	return &v, nil
}

func (r *Resource[T, P]) Delete(ctx context.Context, id primitive.ObjectID) error {
	err := r.coll.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound("%s not found", r.name)
	}
	if err != nil {
		return fmt.Errorf("delete %s: %w", r.name, err)
	}
	r.logger.Info("record deleted", zap.String("resource", r.name), zap.String("id", id.Hex()))
	return nil
}
