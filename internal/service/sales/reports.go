package sales

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/mamadbah2/fleetstock/internal/apperrors"
	"github.com/mamadbah2/fleetstock/internal/domain/models"
	"github.com/mamadbah2/fleetstock/internal/domain/normalize"
	"github.com/mamadbah2/fleetstock/internal/repository"
)

const (
	dateLayout        = "2006-01-02"
	monthLayout       = "2006-01"
	topItemsLimit     = 5
	defaultReportDays = 30
)

var (
	statusOrder  = []models.OrderStatus{models.OrderPending, models.OrderProcessing, models.OrderShipped, models.OrderDelivered, models.OrderCancelled}
	paymentOrder = []models.PaymentStatus{models.PaymentPending, models.PaymentPartial, models.PaymentPaid, models.PaymentRefunded}
)

// Summary aggregates orders created in [From, To]. Revenue figures exclude cancelled orders.
func (s *Service) Summary(ctx context.Context, q models.SummaryQuery) (*models.SalesSummary, error) {
	// Default bounds snap to whole UTC days so repeated requests share a cache key.
	if q.To.IsZero() {
		q.To = startOfDay(s.now()).Add(24*time.Hour - time.Nanosecond)
	}
	if q.From.IsZero() {
		q.From = startOfDay(q.To).AddDate(0, 0, -defaultReportDays)
	}
	if q.Interval == "" {
		q.Interval = models.IntervalDay
	}
	if !q.Interval.Valid() {
		return nil, apperrors.Validation("invalid interval %q", q.Interval)
	}
	if q.From.After(q.To) {
		return nil, apperrors.Validation("from must not be after to")
	}

	key := fmt.Sprintf("%s:%s:%s", q.From.UTC().Format(time.RFC3339Nano), q.To.UTC().Format(time.RFC3339Nano), q.Interval)
	generation, cacheErr := s.cache.Generation(ctx)
	if cacheErr != nil {
		s.logger.Warn("summary cache generation read failed", zap.Error(cacheErr))
	} else if cached, ok, err := s.cache.Get(ctx, generation, key); err != nil {
		s.logger.Warn("summary cache read failed", zap.Error(err))
	} else if ok {
		return cached, nil
	}

	from, to := q.From.UTC(), q.To.UTC()
	orders, err := s.store.Orders().List(ctx, repository.OrderFilter{From: &from, To: &to})
	if err != nil {
		return nil, fmt.Errorf("list orders for summary: %w", err)
	}

	summary := summarize(orders, q)
	summary.From, summary.To = from, to
	if cacheErr == nil {
		if err := s.cache.Set(ctx, generation, key, summary, s.summaryTTL); err != nil {
			s.logger.Warn("summary cache write failed", zap.Error(err))
		}
	}
	return summary, nil
}

type bucket struct {
	count  int
	amount decimal.Decimal
}

type itemTally struct {
	code, description string
	quantity          int
	revenue           decimal.Decimal
}

func summarize(orders []models.SalesOrder, q models.SummaryQuery) *models.SalesSummary {
	byStatus := make(map[models.OrderStatus]*bucket)
	byPayment := make(map[models.PaymentStatus]*bucket)
	items := make(map[primitive.ObjectID]*itemTally)
	trend := make(map[string]*bucket)
	revenue := decimal.Zero

	for _, order := range orders {
		amount := decimal.NewFromFloat(order.TotalAmount)
		add(byStatus, order.Status, amount)
		add(byPayment, order.PaymentStatus, amount)
		if order.Status == models.OrderCancelled {
			continue
		}

		revenue = revenue.Add(amount)
		add(trend, period(order.CreatedAt, q.Interval), amount)
		for _, line := range order.Items {
			tally, ok := items[line.Item]
			if !ok {
				tally = &itemTally{code: line.ItemCode, description: line.Description, revenue: decimal.Zero}
				items[line.Item] = tally
			}
			tally.quantity += line.Quantity
			tally.revenue = tally.revenue.Add(decimal.NewFromFloat(line.Total))
		}
	}

	summary := &models.SalesSummary{
		Interval:        q.Interval,
		TotalOrders:     len(orders),
		TotalRevenue:    revenue.Round(2).InexactFloat64(),
		ByStatus:        make([]models.StatusBucket, 0, len(byStatus)),
		ByPaymentStatus: make([]models.StatusBucket, 0, len(byPayment)),
		TopItems:        make([]models.TopItem, 0, topItemsLimit),
		Trend:           make([]models.TrendPoint, 0, len(trend)),
	}
	for _, status := range statusOrder {
		if b, ok := byStatus[status]; ok {
			summary.ByStatus = append(summary.ByStatus, models.StatusBucket{Status: string(status), Count: b.count, Amount: b.amount.Round(2).InexactFloat64()})
		}
	}
	for _, status := range paymentOrder {
		if b, ok := byPayment[status]; ok {
			summary.ByPaymentStatus = append(summary.ByPaymentStatus, models.StatusBucket{Status: string(status), Count: b.count, Amount: b.amount.Round(2).InexactFloat64()})
		}
	}

	tallies := make([]*itemTally, 0, len(items))
	for _, tally := range items {
		tallies = append(tallies, tally)
	}
	sort.Slice(tallies, func(i, j int) bool {
		if tallies[i].quantity != tallies[j].quantity {
			return tallies[i].quantity > tallies[j].quantity
		}
		if !tallies[i].revenue.Equal(tallies[j].revenue) {
			return tallies[i].revenue.GreaterThan(tallies[j].revenue)
		}
		return tallies[i].code < tallies[j].code
	})
	for i, tally := range tallies {
		if i == topItemsLimit {
			break
		}
		summary.TopItems = append(summary.TopItems, models.TopItem{
			ItemCode:    tally.code,
			Description: tally.description,
			Quantity:    tally.quantity,
			Revenue:     tally.revenue.Round(2).InexactFloat64(),
		})
	}

	periods := make([]string, 0, len(trend))
	for p := range trend {
		periods = append(periods, p)
	}
	sort.Strings(periods)
	for _, p := range periods {
		summary.Trend = append(summary.Trend, models.TrendPoint{Period: p, Orders: trend[p].count, Revenue: trend[p].amount.Round(2).InexactFloat64()})
	}
	return summary
}

func add[K comparable](m map[K]*bucket, key K, amount decimal.Decimal) {
	b, ok := m[key]
	if !ok {
		b = &bucket{amount: decimal.Zero}
		m[key] = b
	}
	b.count++
	b.amount = b.amount.Add(amount)
}

func period(t time.Time, interval models.TrendInterval) string {
	t = t.UTC()
	switch interval {
	case models.IntervalWeek:
		return mondayStart(t).Format(dateLayout)
	case models.IntervalMonth:
		return t.Format(monthLayout)
	}
	return t.Format(dateLayout)
}

func mondayStart(t time.Time) time.Time {
	weekday := int(t.Weekday())
	daysSinceMonday := (weekday + 6) % 7
	start := t.AddDate(0, 0, -daysSinceMonday)
	return time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
}

// CustomerHistory returns one customer's orders, matched by email or else by name.
func (s *Service) CustomerHistory(ctx context.Context, q models.CustomerQuery) (*models.CustomerHistory, error) {
	filter := repository.OrderFilter{
		CustomerEmail: normalize.Lower(q.Email),
	}
	if filter.CustomerEmail == "" {
		filter.CustomerName = normalize.Text(q.Name)
	}
	if filter.CustomerEmail == "" && filter.CustomerName == "" {
		return nil, apperrors.Validation("email or name is required")
	}

	orders, err := s.store.Orders().List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list customer orders: %w", err)
	}

	history := &models.CustomerHistory{
		Customer:    models.Customer{Email: filter.CustomerEmail, Name: filter.CustomerName},
		TotalOrders: len(orders),
		Orders:      orders,
	}
	spent := decimal.Zero
	for _, order := range orders {
		if order.Status != models.OrderCancelled {
			spent = spent.Add(decimal.NewFromFloat(order.TotalAmount))
		}
		if history.LastOrderAt == nil || order.CreatedAt.After(*history.LastOrderAt) {
			created := order.CreatedAt
			history.LastOrderAt = &created
			history.Customer = order.Customer
		}
	}
	history.TotalSpent = spent.Round(2).InexactFloat64()
	return history, nil
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DailySales totals the orders created on the UTC calendar day containing day.
func (s *Service) DailySales(ctx context.Context, day time.Time) (models.DailySalesRow, error) {
	start := startOfDay(day)
	end := start.Add(24*time.Hour - time.Nanosecond)

	orders, err := s.store.Orders().List(ctx, repository.OrderFilter{From: &start, To: &end})
	if err != nil {
		return models.DailySalesRow{}, fmt.Errorf("list daily orders: %w", err)
	}

	row := models.DailySalesRow{Date: start, Orders: len(orders)}
	revenue := decimal.Zero
	for _, order := range orders {
		if order.Status == models.OrderCancelled {
			row.Cancelled++
			continue
		}
		revenue = revenue.Add(decimal.NewFromFloat(order.TotalAmount))
	}
	row.Revenue = revenue.Round(2).InexactFloat64()
	return row, nil
}
