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

// Service manages categories, suppliers and tax rates.
type Service struct {
	store  repository.Store
	logger *zap.Logger
}

// NewService wires a new catalog service instance.
func NewService(store repository.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger}
}

func (s *Service) CreateCategory(ctx context.Context, req models.CategoryRequest) (*models.InventoryCategory, error) {
	category := normalize.Category(models.InventoryCategory{
		Name:        req.Name,
		Description: req.Description,
		Parent:      nonZero(req.Parent),
		Status:      req.Status,
	})
	if err := validateCategory(category); err != nil {
		return nil, err
	}
	if category.Parent != nil {
		if _, err := s.loadCategory(ctx, *category.Parent, "parent category not found"); err != nil {
			return nil, err
		}
	}
	if err := s.store.Categories().Create(ctx, &category); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return &category, nil
}

func (s *Service) GetCategory(ctx context.Context, id primitive.ObjectID) (*models.InventoryCategory, error) {
	return s.loadCategory(ctx, id, "inventory category not found")
}

func (s *Service) ListCategories(ctx context.Context) ([]models.InventoryCategory, error) {
	categories, err := s.store.Categories().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// UpdateCategory replaces a category. Reparenting onto itself or a descendant is rejected.
func (s *Service) UpdateCategory(ctx context.Context, id primitive.ObjectID, req models.CategoryRequest) (*models.InventoryCategory, error) {
	current, err := s.loadCategory(ctx, id, "inventory category not found")
	if err != nil {
		return nil, err
	}

	next := normalize.Category(models.InventoryCategory{
		Base:        current.Base,
		Name:        req.Name,
		Description: req.Description,
		Parent:      nonZero(req.Parent),
		Status:      req.Status,
	})
	if err := validateCategory(next); err != nil {
		return nil, err
	}
	if next.Parent != nil {
		if err := s.checkAncestry(ctx, id, *next.Parent); err != nil {
			return nil, err
		}
	}
	if err := s.store.Categories().Update(ctx, &next); err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	return &next, nil
}

// checkAncestry walks up from parent and fails if it reaches id.
func (s *Service) checkAncestry(ctx context.Context, id, parent primitive.ObjectID) error {
	seen := map[primitive.ObjectID]bool{}
	cursor := &parent
	for cursor != nil {
		if *cursor == id {
			return apperrors.ErrCircularCategory
		}
		if seen[*cursor] {
			return apperrors.ErrCircularCategory
		}
		seen[*cursor] = true

		msg := "inventory category not found"
		if *cursor == parent {
			msg = "parent category not found"
		}
		node, err := s.loadCategory(ctx, *cursor, msg)
		if err != nil {
			return err
		}
		cursor = node.Parent
	}
	return nil
}

// DeleteCategory removes a leaf category that no item references.
func (s *Service) DeleteCategory(ctx context.Context, id primitive.ObjectID) error {
	if _, err := s.loadCategory(ctx, id, "inventory category not found"); err != nil {
		return err
	}
	children, err := s.store.Categories().CountChildren(ctx, id)
	if err != nil {
		return err
	}
	if children > 0 {
		return apperrors.Validation("category has %d subcategories", children)
	}
	counts, err := s.store.Items().CountByCategory(ctx)
	if err != nil {
		return err
	}
	if n := counts[id]; n > 0 {
		return apperrors.Validation("category is used by %d inventory items", n)
	}
	if err := s.store.Categories().Delete(ctx, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

// Hierarchy builds the nested tree with per-node item counts from one list and one aggregate.
func (s *Service) Hierarchy(ctx context.Context) ([]*models.CategoryNode, error) {
	categories, err := s.store.Categories().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	counts, err := s.store.Items().CountByCategory(ctx)
	if err != nil {
		return nil, fmt.Errorf("count items by category: %w", err)
	}

	nodes := make(map[primitive.ObjectID]*models.CategoryNode, len(categories))
	for _, c := range categories {
		nodes[c.ID] = &models.CategoryNode{InventoryCategory: c, ItemCount: counts[c.ID], Children: []*models.CategoryNode{}}
	}

	roots := make([]*models.CategoryNode, 0)
	for _, c := range categories {
		node := nodes[c.ID]
		if c.Parent != nil {
			if parent, ok := nodes[*c.Parent]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
			s.logger.Warn("category parent missing, listing as root", zap.String("category", c.ID.Hex()))
		}
		roots = append(roots, node)
	}
	return roots, nil
}

func (s *Service) loadCategory(ctx context.Context, id primitive.ObjectID, notFound string) (*models.InventoryCategory, error) {
	category, err := s.store.Categories().Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("%s", notFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load category: %w", err)
	}
	return category, nil
}

func validateCategory(c models.InventoryCategory) error {
	switch {
	case c.Name == "":
		return apperrors.Validation("name is required")
	case !c.Status.Valid():
		return apperrors.Validation("invalid status %q", c.Status)
	}
	return nil
}

func nonZero(id *primitive.ObjectID) *primitive.ObjectID {
	if id == nil || id.IsZero() {
		return nil
	}
	v := *id
	return &v
}
