package sales

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/mamadbah2/fleetstock/internal/apperrors"
	"github.com/mamadbah2/fleetstock/internal/cache"
	"github.com/mamadbah2/fleetstock/internal/domain/models"
	"github.com/mamadbah2/fleetstock/internal/domain/normalize"
	"github.com/mamadbah2/fleetstock/internal/metrics"
	"github.com/mamadbah2/fleetstock/internal/repository"
	"github.com/mamadbah2/fleetstock/internal/service/inventory"
)

const (
	orderPrefix          = "SO"
	maxNumberingAttempts = 3
	defaultSummaryTTL    = 2 * time.Minute
)

var tolerance = decimal.NewFromFloat(0.01)

// Service runs the sales order workflow against the shared store.
type Service struct {
	store      repository.Store
	cache      cache.SummaryCache
	metrics    *metrics.Metrics
	logger     *zap.Logger
	now        func() time.Time
	summaryTTL time.Duration
}

// Option customizes a Service.
type Option func(*Service)

// WithClock overrides the clock used for order numbers and report windows.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithSummaryTTL sets how long computed summaries stay cached.
func WithSummaryTTL(ttl time.Duration) Option {
	return func(s *Service) { s.summaryTTL = ttl }
}

// NewService wires a new sales service instance.
func NewService(store repository.Store, summaries cache.SummaryCache, m *metrics.Metrics, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if summaries == nil {
		summaries = cache.NoopSummaryCache{}
	}
	s := &Service{
		store:      store,
		cache:      summaries,
		metrics:    m,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
		summaryTTL: defaultSummaryTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates every line, checks the submitted totals, numbers the order and
// books one stockout per line, all inside one store transaction.
func (s *Service) Create(ctx context.Context, req models.CreateSalesOrderRequest) (*models.SalesOrder, error) {
	customer := normalize.Customer(req.Customer)
	if customer.Name == "" {
		return nil, apperrors.Validation("customer name is required")
	}
	if len(req.Items) == 0 {
		return nil, apperrors.Validation("order must contain at least one item")
	}
	paymentStatus := models.PaymentStatus(normalize.Lower(string(req.PaymentStatus)))
	if paymentStatus == "" {
		paymentStatus = models.PaymentPending
	}
	if !paymentStatus.Valid() {
		return nil, apperrors.Validation("invalid payment status %q", req.PaymentStatus)
	}

	var (
		order models.SalesOrder
		err   error
	)
	for attempt := 1; attempt <= maxNumberingAttempts; attempt++ {
		err = s.store.WithTransaction(ctx, func(ctx context.Context) error {
			built, err := s.buildOrder(ctx, req)
			if err != nil {
				return err
			}
			built.Customer = customer
			built.PaymentStatus = paymentStatus
			order = *built
			return s.book(ctx, &order)
		})
		if !errors.Is(err, repository.ErrDuplicate) {
			break
		}
		s.logger.Warn("order number collision, retrying", zap.Int("attempt", attempt))
	}
	if err != nil {
		return nil, err
	}

	s.afterWrite(ctx, "created")
	s.logger.Info("sales order created",
		zap.String("order_number", order.OrderNumber),
		zap.Int("lines", len(order.Items)),
		zap.Float64("total", order.TotalAmount),
	)
	return &order, nil
}

// buildOrder loads and checks every line and verifies totals without writing.
func (s *Service) buildOrder(ctx context.Context, req models.CreateSalesOrderRequest) (*models.SalesOrder, error) {
	lines := make([]models.OrderLine, 0, len(req.Items))
	subtotal := decimal.Zero

	for i, line := range req.Items {
		if line.Item.IsZero() {
			return nil, apperrors.Validation("items[%d]: item is required", i)
		}
		if line.Quantity <= 0 {
			return nil, apperrors.Validation("items[%d]: quantity must be greater than zero", i)
		}
		item, err := s.store.Items().Get(ctx, line.Item)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("inventory item not found")
		}
		if err != nil {
			return nil, fmt.Errorf("load inventory item: %w", err)
		}
		if !item.Saleable() {
			return nil, apperrors.Validation("item %s is not available for sale", item.ItemCode)
		}
		if item.QuantityInStock < line.Quantity {
			return nil, fmt.Errorf("item %s: %w", item.ItemCode, apperrors.ErrInsufficientStock)
		}

		serials := cleanSerials(line.SerialNumbers)
		if item.IsSerialized && len(serials) != line.Quantity {
			return nil, apperrors.Validation("item %s requires %d serial numbers, got %d", item.ItemCode, line.Quantity, len(serials))
		}

		unitPrice := item.SellingPrice
		if line.UnitPrice != nil {
			if *line.UnitPrice < 0 {
				return nil, apperrors.Validation("items[%d]: unit price cannot be negative", i)
			}
			unitPrice = *line.UnitPrice
		}
		total := decimal.NewFromFloat(unitPrice).Mul(decimal.NewFromInt(int64(line.Quantity))).Round(2)
		subtotal = subtotal.Add(total)

		lines = append(lines, models.OrderLine{
			Item:          item.ID,
			ItemCode:      item.ItemCode,
			Description:   item.Description,
			Quantity:      line.Quantity,
			UnitPrice:     unitPrice,
			Total:         total.InexactFloat64(),
			SerialNumbers: serials,
		})
	}

	taxAmount := decimal.NewFromFloat(req.TaxAmount)
	if taxAmount.IsNegative() {
		return nil, apperrors.Validation("taxAmount cannot be negative")
	}
	if req.TaxRate != nil {
		rate, err := s.store.TaxRates().Get(ctx, *req.TaxRate)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("tax rate not found")
		}
		if err != nil {
			return nil, fmt.Errorf("load tax rate: %w", err)
		}
		expectedTax := subtotal.Mul(decimal.NewFromFloat(rate.Rate)).Div(decimal.NewFromInt(100)).Round(2)
		if !within(expectedTax, taxAmount) {
			return nil, apperrors.ErrTotalsMismatch
		}
	}

	total := subtotal.Add(taxAmount)
	if !within(subtotal, decimal.NewFromFloat(req.Subtotal)) || !within(total, decimal.NewFromFloat(req.TotalAmount)) {
		return nil, apperrors.ErrTotalsMismatch
	}

	order := &models.SalesOrder{
		Items:         lines,
		Subtotal:      subtotal.InexactFloat64(),
		TaxRate:       req.TaxRate,
		TaxAmount:     taxAmount.Round(2).InexactFloat64(),
		TotalAmount:   total.Round(2).InexactFloat64(),
		Status:        models.OrderPending,
		PaymentMethod: strings.TrimSpace(req.PaymentMethod),
		DeliveryDate:  req.DeliveryDate,
		Notes:         strings.TrimSpace(req.Notes),
	}
	return order, nil
}

// book assigns the order number, writes the stockouts and persists the order.
func (s *Service) book(ctx context.Context, order *models.SalesOrder) error {
	number, err := s.nextOrderNumber(ctx)
	if err != nil {
		return err
	}
	order.OrderNumber = number

	now := s.now()
	for _, line := range order.Items {
		tx := &models.StockTransaction{
			Item:            line.Item,
			TransactionType: models.TransactionStockOut,
			Quantity:        line.Quantity,
			Location:        models.DefaultSalesLocation,
			Reference:       number,
			TransactionDate: now,
		}
		if _, err := inventory.Post(ctx, s.store, tx); err != nil {
			return fmt.Errorf("item %s: %w", line.ItemCode, err)
		}
	}

	if err := s.store.Orders().Create(ctx, order); err != nil {
		return fmt.Errorf("create sales order: %w", err)
	}
	return nil
}

func (s *Service) nextOrderNumber(ctx context.Context) (string, error) {
	prefix := orderPrefix + s.now().Format("0601")
	latest, err := s.store.Orders().LatestOrderNumber(ctx, prefix)
	if err != nil {
		return "", err
	}
	seq := 0
	if latest != "" {
		seq, err = strconv.Atoi(strings.TrimPrefix(latest, prefix))
		if err != nil {
			return "", fmt.Errorf("parse order number %q: %w", latest, err)
		}
	}
	return fmt.Sprintf("%s%04d", prefix, seq+1), nil
}

// Update changes the mutable order fields. Moving to cancelled returns every line to stock.
func (s *Service) Update(ctx context.Context, id primitive.ObjectID, req models.UpdateSalesOrderRequest) (*models.SalesOrder, error) {
	var (
		order     models.SalesOrder
		cancelled bool
	)
	err := s.store.WithTransaction(ctx, func(ctx context.Context) error {
		current, err := s.load(ctx, id)
		if err != nil {
			return err
		}
		if current.Status.Terminal() {
			return apperrors.ErrTerminalOrder
		}

		next := *current
		cancelled = false
		if req.Status != nil {
			status := models.OrderStatus(normalize.Lower(string(*req.Status)))
			if !status.Valid() {
				return apperrors.Validation("invalid order status %q", *req.Status)
			}
			next.Status = status
		}
		if req.PaymentStatus != nil {
			payment := models.PaymentStatus(normalize.Lower(string(*req.PaymentStatus)))
			if !payment.Valid() {
				return apperrors.Validation("invalid payment status %q", *req.PaymentStatus)
			}
			next.PaymentStatus = payment
		}
		if req.PaymentMethod != nil {
			next.PaymentMethod = strings.TrimSpace(*req.PaymentMethod)
		}
		if req.DeliveryDate != nil {
			delivery := req.DeliveryDate.UTC()
			next.DeliveryDate = &delivery
		}

		if next.Status == models.OrderCancelled {
			if err := s.restock(ctx, &next, "order cancelled"); err != nil {
				return err
			}
			cancelled = true
		}
		if err := s.store.Orders().Update(ctx, &next); err != nil {
			return fmt.Errorf("update sales order: %w", err)
		}
		order = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	event := "updated"
	if cancelled {
		event = "cancelled"
	}
	s.afterWrite(ctx, event)
	s.logger.Info("sales order updated", zap.String("order_number", order.OrderNumber), zap.String("status", string(order.Status)))
	return &order, nil
}

// Delete removes a pending order after returning its lines to stock.
func (s *Service) Delete(ctx context.Context, id primitive.ObjectID) error {
	var number string
	err := s.store.WithTransaction(ctx, func(ctx context.Context) error {
		current, err := s.load(ctx, id)
		if err != nil {
			return err
		}
		if current.Status != models.OrderPending {
			return apperrors.ErrOrderNotPending
		}
		if err := s.restock(ctx, current, "order deleted"); err != nil {
			return err
		}
		if err := s.store.Orders().Delete(ctx, id); err != nil {
			return fmt.Errorf("delete sales order: %w", err)
		}
		number = current.OrderNumber
		return nil
	})
	if err != nil {
		return err
	}

	s.afterWrite(ctx, "deleted")
	s.logger.Info("sales order deleted", zap.String("order_number", number))
	return nil
}

// restock writes one return per line, crediting quantityInStock.
func (s *Service) restock(ctx context.Context, order *models.SalesOrder, note string) error {
	now := s.now()
	for _, line := range order.Items {
		tx := &models.StockTransaction{
			Item:            line.Item,
			TransactionType: models.TransactionReturn,
			Quantity:        line.Quantity,
			Location:        models.DefaultSalesLocation,
			Reference:       order.OrderNumber,
			Notes:           note,
			TransactionDate: now,
		}
		if _, err := inventory.Post(ctx, s.store, tx); err != nil {
			return fmt.Errorf("restock %s: %w", line.ItemCode, err)
		}
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (*models.SalesOrder, error) {
	return s.load(ctx, id)
}

func (s *Service) List(ctx context.Context, filter repository.OrderFilter) ([]models.SalesOrder, error) {
	filter.CustomerEmail = normalize.Lower(filter.CustomerEmail)
	filter.CustomerName = normalize.Text(filter.CustomerName)
	orders, err := s.store.Orders().List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list sales orders: %w", err)
	}
	return orders, nil
}

func (s *Service) load(ctx context.Context, id primitive.ObjectID) (*models.SalesOrder, error) {
	order, err := s.store.Orders().Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("sales order not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load sales order: %w", err)
	}
	return order, nil
}

func (s *Service) afterWrite(ctx context.Context, event string) {
	s.metrics.OrderEvent(event)
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("failed to invalidate summary cache", zap.Error(err))
	}
}

func within(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(tolerance)
}

func cleanSerials(in []string) []string {
	var out []string
	for _, serial := range in {
		if serial = strings.TrimSpace(serial); serial != "" {
			out = append(out, serial)
		}
	}
	return out
}
