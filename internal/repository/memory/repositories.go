package memory

import (
	"context"
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mamadbah2/fleetstock/internal/domain/models"
	"github.com/mamadbah2/fleetstock/internal/repository"
)

type collection[T any, P models.Document[T]] struct {
	store *Store
	pick  func(*state) *table[T, P]
}

func (c *collection[T, P]) Create(_ context.Context, doc *T) error {
	P(doc).Meta().Stamp(c.store.now())
	return c.store.write(func(st *state) error {
		return c.pick(st).insert(doc, c.store.nextSeq())
	})
}

func (c *collection[T, P]) Get(_ context.Context, id primitive.ObjectID) (*T, error) {
	var (
		out *T
		ok  bool
	)
	c.store.read(func(st *state) { out, ok = c.pick(st).get(id) })
	if !ok {
		return nil, repository.ErrNotFound
	}
	return out, nil
}

func (c *collection[T, P]) List(_ context.Context) ([]T, error) {
	return c.filter(nil), nil
}

func (c *collection[T, P]) filter(keep func(*T) bool) []T {
	var out []T
	c.store.read(func(st *state) { out = c.pick(st).all(keep) })
	return out
}

func (c *collection[T, P]) Update(_ context.Context, doc *T) error {
	P(doc).Meta().UpdatedAt = c.store.now()
	return c.store.write(func(st *state) error {
		return c.pick(st).replace(doc)
	})
}

func (c *collection[T, P]) Delete(_ context.Context, id primitive.ObjectID) error {
	return c.store.write(func(st *state) error {
		if !c.pick(st).remove(id) {
			return repository.ErrNotFound
		}
		return nil
	})
}

type itemRepository struct{ store *Store }

func (r *itemRepository) Create(_ context.Context, item *models.InventoryItem) error {
	item.Stamp(r.store.now())
	return r.store.write(func(st *state) error {
		return st.items.insert(item, r.store.nextSeq())
	})
}

func (r *itemRepository) Get(_ context.Context, id primitive.ObjectID) (*models.InventoryItem, error) {
	var (
		item *models.InventoryItem
		ok   bool
	)
	r.store.read(func(st *state) { item, ok = st.items.get(id) })
	if !ok {
		return nil, repository.ErrNotFound
	}
	return item, nil
}

func (r *itemRepository) List(_ context.Context, filter repository.ItemFilter) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	r.store.read(func(st *state) {
		items = st.items.all(func(i *models.InventoryItem) bool {
			switch {
			case filter.Category != nil && i.Category != *filter.Category:
				return false
			case filter.Supplier != nil && (i.Supplier == nil || *i.Supplier != *filter.Supplier):
				return false
			case filter.Status != "" && i.Status != filter.Status:
				return false
			case filter.LowStockOnly && !i.LowStock():
				return false
			case filter.Search != "" && !containsFold(i.ItemCode, filter.Search) && !containsFold(i.Description, filter.Search):
				return false
			}
			return true
		})
	})
	sort.SliceStable(items, func(a, b int) bool { return items[a].ItemCode < items[b].ItemCode })
	return items, nil
}

func (r *itemRepository) UpdateDetails(_ context.Context, item *models.InventoryItem) error {
	item.UpdatedAt = r.store.now()
	return r.store.write(func(st *state) error {
		current, ok := st.items.get(item.ID)
		if !ok {
			return repository.ErrNotFound
		}
		next := *item
		next.QuantityInStock = current.QuantityInStock
		next.CreatedAt = current.CreatedAt
		return st.items.replace(&next)
	})
}

func (r *itemRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	return r.store.write(func(st *state) error {
		if !st.items.remove(id) {
			return repository.ErrNotFound
		}
		return nil
	})
}

func (r *itemRepository) AdjustStock(_ context.Context, id primitive.ObjectID, delta int) (*models.InventoryItem, error) {
	var out *models.InventoryItem
	err := r.store.write(func(st *state) error {
		item, ok := st.items.get(id)
		if !ok {
			return repository.ErrNotFound
		}
		if item.QuantityInStock+delta < 0 {
			return repository.ErrInsufficientQuantity
		}
		item.QuantityInStock += delta
		item.UpdatedAt = r.store.now()
		out = item
		return st.items.replace(item)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *itemRepository) CountByCategory(_ context.Context) (map[primitive.ObjectID]int, error) {
	counts := make(map[primitive.ObjectID]int)
	r.store.read(func(st *state) {
		for _, item := range st.items.rows {
			counts[item.Category]++
		}
	})
	return counts, nil
}

func (r *itemRepository) DetachSupplier(_ context.Context, supplierID primitive.ObjectID) (int64, error) {
	var n int64
	err := r.store.write(func(st *state) error {
		for id, item := range st.items.rows {
			if item.Supplier != nil && *item.Supplier == supplierID {
				item.Supplier = nil
				item.UpdatedAt = r.store.now()
				st.items.rows[id] = item
				n++
			}
		}
		return nil
	})
	return n, err
}

type locationRepository struct{ store *Store }

func findLocation(st *state, itemID primitive.ObjectID, location models.Location) (primitive.ObjectID, bool) {
	for id, row := range st.locations.rows {
		if row.Item == itemID && row.Location == location {
			return id, true
		}
	}
	return primitive.NilObjectID, false
}

func (r *locationRepository) ListForItem(_ context.Context, itemID primitive.ObjectID) ([]models.StockLocation, error) {
	var out []models.StockLocation
	r.store.read(func(st *state) {
		out = st.locations.all(func(l *models.StockLocation) bool { return l.Item == itemID })
	})
	sort.SliceStable(out, func(a, b int) bool { return out[a].Location < out[b].Location })
	return out, nil
}

func (r *locationRepository) Adjust(_ context.Context, itemID primitive.ObjectID, location models.Location, delta int) (*models.StockLocation, error) {
	var out *models.StockLocation
	err := r.store.write(func(st *state) error {
		id, ok := findLocation(st, itemID, location)
		if !ok {
			if delta < 0 {
				return repository.ErrInsufficientQuantity
			}
			row := &models.StockLocation{Item: itemID, Location: location, Quantity: delta}
			row.Stamp(r.store.now())
			out = row
			return st.locations.insert(row, r.store.nextSeq())
		}
		row, _ := st.locations.get(id)
		if row.Quantity+delta < 0 {
			return repository.ErrInsufficientQuantity
		}
		row.Quantity += delta
		row.UpdatedAt = r.store.now()
		out = row
		return st.locations.replace(row)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *locationRepository) Set(_ context.Context, itemID primitive.ObjectID, location models.Location, quantity int) (*models.StockLocation, error) {
	var out *models.StockLocation
	err := r.store.write(func(st *state) error {
		if id, ok := findLocation(st, itemID, location); ok {
			row, _ := st.locations.get(id)
			row.Quantity = quantity
			row.UpdatedAt = r.store.now()
			out = row
			return st.locations.replace(row)
		}
		row := &models.StockLocation{Item: itemID, Location: location, Quantity: quantity}
		row.Stamp(r.store.now())
		out = row
		return st.locations.insert(row, r.store.nextSeq())
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *locationRepository) DeleteForItem(_ context.Context, itemID primitive.ObjectID) error {
	return r.store.write(func(st *state) error {
		for id, row := range st.locations.rows {
			if row.Item == itemID {
				st.locations.remove(id)
			}
		}
		return nil
	})
}

type transactionRepository struct {
	*collection[models.StockTransaction, *models.StockTransaction]
}

func (r *transactionRepository) List(_ context.Context, filter repository.TransactionFilter) ([]models.StockTransaction, error) {
	out := r.filter(func(t *models.StockTransaction) bool {
		switch {
		case filter.Item != nil && t.Item != *filter.Item:
			return false
		case filter.Type != "" && t.TransactionType != filter.Type:
			return false
		case filter.Location != "" && t.Location != filter.Location:
			return false
		case filter.From != nil && t.TransactionDate.Before(*filter.From):
			return false
		case filter.To != nil && t.TransactionDate.After(*filter.To):
			return false
		}
		return true
	})
	sort.SliceStable(out, func(a, b int) bool { return out[a].TransactionDate.After(out[b].TransactionDate) })
	return out, nil
}

func (r *transactionRepository) DeleteForItem(_ context.Context, itemID primitive.ObjectID) (int64, error) {
	var n int64
	err := r.store.write(func(st *state) error {
		for id, row := range st.transactions.rows {
			if row.Item == itemID {
				st.transactions.remove(id)
				n++
			}
		}
		return nil
	})
	return n, err
}

type orderRepository struct {
	*collection[models.SalesOrder, *models.SalesOrder]
}

func (r *orderRepository) List(_ context.Context, filter repository.OrderFilter) ([]models.SalesOrder, error) {
	return r.filter(func(o *models.SalesOrder) bool {
		switch {
		case filter.Status != "" && o.Status != filter.Status:
			return false
		case filter.PaymentStatus != "" && o.PaymentStatus != filter.PaymentStatus:
			return false
		case filter.CustomerEmail != "" && o.Customer.Email != filter.CustomerEmail:
			return false
		case filter.CustomerName != "" && !strings.EqualFold(o.Customer.Name, filter.CustomerName):
			return false
		case filter.From != nil && o.CreatedAt.Before(*filter.From):
			return false
		case filter.To != nil && o.CreatedAt.After(*filter.To):
			return false
		}
		return true
	}), nil
}

func (r *orderRepository) LatestOrderNumber(_ context.Context, prefix string) (string, error) {
	latest := ""
	r.store.read(func(st *state) {
		for _, o := range st.orders.rows {
			if strings.HasPrefix(o.OrderNumber, prefix) && laterNumber(o.OrderNumber, latest) {
				latest = o.OrderNumber
			}
		}
	})
	return latest, nil
}

// laterNumber reports whether a sorts after b once the sequence outgrows its padding.
func laterNumber(a, b string) bool {
	if len(a) != len(b) {
		return len(a) > len(b)
	}
	return a > b
}

func (r *orderRepository) ReferencesItem(_ context.Context, itemID primitive.ObjectID) (bool, error) {
	found := false
	r.store.read(func(st *state) {
		for _, o := range st.orders.rows {
			for _, line := range o.Items {
				if line.Item == itemID {
					found = true
					return
				}
			}
		}
	})
	return found, nil
}

type categoryRepository struct {
	*collection[models.InventoryCategory, *models.InventoryCategory]
}

func (r *categoryRepository) List(_ context.Context) ([]models.InventoryCategory, error) {
	out := r.filter(nil)
	sort.SliceStable(out, func(a, b int) bool { return out[a].Name < out[b].Name })
	return out, nil
}

func (r *categoryRepository) CountChildren(_ context.Context, id primitive.ObjectID) (int64, error) {
	var n int64
	r.store.read(func(st *state) {
		for _, c := range st.categories.rows {
			if c.Parent != nil && *c.Parent == id {
				n++
			}
		}
	})
	return n, nil
}
