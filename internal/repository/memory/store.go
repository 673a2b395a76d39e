// Package memory is an in-process repository.Store used by the service and HTTP
// tests in place of MongoDB. Transactions are serialized and rolled back from a snapshot.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mamadbah2/fleetstock/internal/domain/models"
	"github.com/mamadbah2/fleetstock/internal/repository"
)

type table[T any, P models.Document[T]] struct {
	rows  map[primitive.ObjectID]T
	order map[primitive.ObjectID]int64
	keys  func(*T) []string
	clone func(T) T
}

func newTable[T any, P models.Document[T]](keys func(*T) []string, clone func(T) T) *table[T, P] {
	if clone == nil {
		clone = func(v T) T { return v }
	}
	return &table[T, P]{
		rows:  make(map[primitive.ObjectID]T),
		order: make(map[primitive.ObjectID]int64),
		keys:  keys,
		clone: clone,
	}
}

func (t *table[T, P]) copy() *table[T, P] {
	out := newTable[T, P](t.keys, t.clone)
	for id, row := range t.rows {
		out.rows[id] = t.clone(row)
		out.order[id] = t.order[id]
	}
	return out
}

func (t *table[T, P]) conflicts(doc *T) bool {
	if t.keys == nil {
		return false
	}
	self := P(doc).Meta().ID
	wanted := t.keys(doc)
	for id, row := range t.rows {
		if id == self {
			continue
		}
		existing := t.keys(&row)
		for i := range wanted {
			if wanted[i] != "" && wanted[i] == existing[i] {
				return true
			}
		}
	}
	return false
}

func (t *table[T, P]) insert(doc *T, seq int64) error {
	id := P(doc).Meta().ID
	if _, exists := t.rows[id]; exists || t.conflicts(doc) {
		return repository.ErrDuplicate
	}
	t.rows[id] = t.clone(*doc)
	t.order[id] = seq
	return nil
}

func (t *table[T, P]) replace(doc *T) error {
	id := P(doc).Meta().ID
	if _, exists := t.rows[id]; !exists {
		return repository.ErrNotFound
	}
	if t.conflicts(doc) {
		return repository.ErrDuplicate
	}
	t.rows[id] = t.clone(*doc)
	return nil
}

func (t *table[T, P]) get(id primitive.ObjectID) (*T, bool) {
	row, ok := t.rows[id]
	if !ok {
		return nil, false
	}
	out := t.clone(row)
	return &out, true
}

func (t *table[T, P]) remove(id primitive.ObjectID) bool {
	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	delete(t.order, id)
	return true
}

// all returns clones of the rows matching keep, newest first.
func (t *table[T, P]) all(keep func(*T) bool) []T {
	ids := make([]primitive.ObjectID, 0, len(t.rows))
	for id, row := range t.rows {
		if keep == nil || keep(&row) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := t.rows[ids[i]], t.rows[ids[j]]
		ca, cb := P(&a).Meta().CreatedAt, P(&b).Meta().CreatedAt
		if !ca.Equal(cb) {
			return ca.After(cb)
		}
		return t.order[ids[i]] > t.order[ids[j]]
	})
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, t.clone(t.rows[id]))
	}
	return out
}

type state struct {
	items        *table[models.InventoryItem, *models.InventoryItem]
	locations    *table[models.StockLocation, *models.StockLocation]
	transactions *table[models.StockTransaction, *models.StockTransaction]
	orders       *table[models.SalesOrder, *models.SalesOrder]
	categories   *table[models.InventoryCategory, *models.InventoryCategory]
	suppliers    *table[models.Supplier, *models.Supplier]
	taxRates     *table[models.TaxRate, *models.TaxRate]
	vehicles     *table[models.Vehicle, *models.Vehicle]
	insurance    *table[models.Insurance, *models.Insurance]
	roadWorth    *table[models.RoadWorth, *models.RoadWorth]
	driverLogs   *table[models.VehicleDriverLog, *models.VehicleDriverLog]
	employees    *table[models.Employee, *models.Employee]
}

func newState() *state {
	return &state{
		items: newTable[models.InventoryItem](func(i *models.InventoryItem) []string {
			return []string{i.ItemCode}
		}, nil),
		locations: newTable[models.StockLocation](func(l *models.StockLocation) []string {
			return []string{l.Item.Hex() + "/" + string(l.Location)}
		}, nil),
		transactions: newTable[models.StockTransaction](nil, nil),
		orders: newTable[models.SalesOrder](func(o *models.SalesOrder) []string {
			return []string{o.OrderNumber}
		}, cloneOrder),
		categories: newTable[models.InventoryCategory](func(c *models.InventoryCategory) []string {
			return []string{c.Name}
		}, nil),
		suppliers: newTable[models.Supplier](nil, nil),
		taxRates:  newTable[models.TaxRate](nil, nil),
		vehicles: newTable[models.Vehicle](func(v *models.Vehicle) []string {
			return []string{v.RegistrationNumber}
		}, nil),
		insurance:  newTable[models.Insurance](nil, nil),
		roadWorth:  newTable[models.RoadWorth](nil, nil),
		driverLogs: newTable[models.VehicleDriverLog](nil, nil),
		employees: newTable[models.Employee](func(e *models.Employee) []string {
			return []string{e.EmployeeNumber, e.Email}
		}, nil),
	}
}

func (s *state) copy() *state {
	return &state{
		items:        s.items.copy(),
		locations:    s.locations.copy(),
		transactions: s.transactions.copy(),
		orders:       s.orders.copy(),
		categories:   s.categories.copy(),
		suppliers:    s.suppliers.copy(),
		taxRates:     s.taxRates.copy(),
		vehicles:     s.vehicles.copy(),
		insurance:    s.insurance.copy(),
		roadWorth:    s.roadWorth.copy(),
		driverLogs:   s.driverLogs.copy(),
		employees:    s.employees.copy(),
	}
}

func cloneOrder(o models.SalesOrder) models.SalesOrder {
	lines := make([]models.OrderLine, len(o.Items))
	for i, line := range o.Items {
		if line.SerialNumbers != nil {
			line.SerialNumbers = append([]string(nil), line.SerialNumbers...)
		}
		lines[i] = line
	}
	o.Items = lines
	return o
}

// Store is a mutex-guarded repository.Store.
type Store struct {
	mu    sync.RWMutex
	txMu  sync.Mutex
	state *state
	seq   int64
	now   func() time.Time
}

var _ repository.Store = (*Store)(nil)

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New returns an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		state: newState(),
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) read(fn func(st *state)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.state)
}

func (s *Store) write(fn func(st *state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.state)
}

func (s *Store) nextSeq() int64 {
	s.seq++
	return s.seq
}

// WithTransaction runs fn while holding the transaction lock and restores the
// pre-transaction snapshot when fn fails. Calls must not be nested.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.state.copy()
	s.mu.RUnlock()

	if err := fn(ctx); err != nil {
		s.mu.Lock()
		s.state = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) Items() repository.ItemRepository               { return &itemRepository{s} }
func (s *Store) Locations() repository.LocationRepository       { return &locationRepository{s} }
func (s *Store) Transactions() repository.TransactionRepository { return &transactionRepository{s.transactionCollection()} }
func (s *Store) Orders() repository.OrderRepository             { return &orderRepository{s.orderCollection()} }
func (s *Store) Categories() repository.CategoryRepository      { return &categoryRepository{s.categoryCollection()} }

func (s *Store) Suppliers() repository.Collection[models.Supplier] {
	return &collection[models.Supplier, *models.Supplier]{s, func(st *state) *table[models.Supplier, *models.Supplier] { return st.suppliers }}
}

func (s *Store) TaxRates() repository.Collection[models.TaxRate] {
	return &collection[models.TaxRate, *models.TaxRate]{s, func(st *state) *table[models.TaxRate, *models.TaxRate] { return st.taxRates }}
}

func (s *Store) Vehicles() repository.Collection[models.Vehicle] {
	return &collection[models.Vehicle, *models.Vehicle]{s, func(st *state) *table[models.Vehicle, *models.Vehicle] { return st.vehicles }}
}

func (s *Store) Insurance() repository.Collection[models.Insurance] {
	return &collection[models.Insurance, *models.Insurance]{s, func(st *state) *table[models.Insurance, *models.Insurance] { return st.insurance }}
}

func (s *Store) RoadWorth() repository.Collection[models.RoadWorth] {
	return &collection[models.RoadWorth, *models.RoadWorth]{s, func(st *state) *table[models.RoadWorth, *models.RoadWorth] { return st.roadWorth }}
}

func (s *Store) DriverLogs() repository.Collection[models.VehicleDriverLog] {
	return &collection[models.VehicleDriverLog, *models.VehicleDriverLog]{s, func(st *state) *table[models.VehicleDriverLog, *models.VehicleDriverLog] { return st.driverLogs }}
}

func (s *Store) Employees() repository.Collection[models.Employee] {
	return &collection[models.Employee, *models.Employee]{s, func(st *state) *table[models.Employee, *models.Employee] { return st.employees }}
}

func (s *Store) transactionCollection() *collection[models.StockTransaction, *models.StockTransaction] {
	return &collection[models.StockTransaction, *models.StockTransaction]{s, func(st *state) *table[models.StockTransaction, *models.StockTransaction] { return st.transactions }}
}

func (s *Store) orderCollection() *collection[models.SalesOrder, *models.SalesOrder] {
	return &collection[models.SalesOrder, *models.SalesOrder]{s, func(st *state) *table[models.SalesOrder, *models.SalesOrder] { return st.orders }}
}

func (s *Store) categoryCollection() *collection[models.InventoryCategory, *models.InventoryCategory] {
	return &collection[models.InventoryCategory, *models.InventoryCategory]{s, func(st *state) *table[models.InventoryCategory, *models.InventoryCategory] { return st.categories }}
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
