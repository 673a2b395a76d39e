package reporting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/fleetstock/internal/domain/models"
	repo "github.com/mamadbah2/fleetstock/internal/repository/sheets"
	"github.com/mamadbah2/fleetstock/pkg/clients/notifier"
)

const (
	dateLayout        = "2006-01-02"
	defaultSalesRange = "Sales!A:D"
)

// StockSource lists items at or below their reorder level.
type StockSource interface {
	LowStock(ctx context.Context) ([]models.InventoryItem, error)
}

// SalesSource produces the per-day sales figures.
type SalesSource interface {
	DailySales(ctx context.Context, day time.Time) (models.DailySalesRow, error)
}

// Service runs the scheduled low-stock alert and the daily sales export.
type Service struct {
	stock      StockSource
	sales      SalesSource
	sheets     repo.Repository
	notifier   notifier.Client
	salesRange string
	logger     *zap.Logger
}

// NewService wires a new reporting service instance. sheets and notify may be
// nil, in which case the matching job is skipped.
func NewService(stock StockSource, sales SalesSource, sheets repo.Repository, notify notifier.Client, salesRange string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if salesRange == "" {
		salesRange = defaultSalesRange
	}
	return &Service{
		stock:      stock,
		sales:      sales,
		sheets:     sheets,
		notifier:   notify,
		salesRange: salesRange,
		logger:     logger,
	}
}

// LowStockNotification formats the alert for the given items. ok is false when
// there is nothing to report.
func LowStockNotification(items []models.InventoryItem) (n models.Notification, ok bool) {
	if len(items) == 0 {
		return models.Notification{}, false
	}

	var b strings.Builder
	for _, it := range items {
		fmt.Fprintf(&b, "- %s %s: %d in stock (reorder at %d)\n", it.ItemCode, it.Description, it.QuantityInStock, it.ReorderLevel)
	}
	return models.Notification{
		Title:   fmt.Sprintf("Low stock: %d item(s) at or below reorder level", len(items)),
		Message: strings.TrimRight(b.String(), "\n"),
	}, true
}

// LowStockAlert posts the low-stock list to the webhook and returns how many
// items were reported.
func (s *Service) LowStockAlert(ctx context.Context) (int, error) {
	if s.notifier == nil {
		s.logger.Debug("low stock alert skipped, notifier not configured")
		return 0, nil
	}

	items, err := s.stock.LowStock(ctx)
	if err != nil {
		return 0, fmt.Errorf("load low stock items: %w", err)
	}

	n, ok := LowStockNotification(items)
	if !ok {
		s.logger.Info("no items below reorder level")
		return 0, nil
	}

	if err := s.notifier.Notify(ctx, notifier.NotifyRequest{Title: n.Title, Message: n.Message}); err != nil {
		return 0, fmt.Errorf("send low stock alert: %w", err)
	}

	s.logger.Info("low stock alert sent", zap.Int("items", len(items)))
	return len(items), nil
}

// ExportDailySales appends the figures for day to the sales sheet. A day that
// already has a row is left alone so reruns do not duplicate it.
func (s *Service) ExportDailySales(ctx context.Context, day time.Time) (bool, error) {
	if s.sheets == nil {
		s.logger.Debug("sales export skipped, sheets not configured")
		return false, nil
	}

	key := day.Format(dateLayout)
	rows, err := s.sheets.ReadRange(ctx, s.salesRange)
	if err != nil {
		return false, fmt.Errorf("load sales range: %w", err)
	}
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		dateValue, err := parseDate(row[0])
		if err != nil {
			// header row or hand-edited cell
			continue
		}
		if dateValue.Format(dateLayout) == key {
			s.logger.Info("sales row already exported", zap.String("date", key))
			return false, nil
		}
	}

	figures, err := s.sales.DailySales(ctx, day)
	if err != nil {
		return false, fmt.Errorf("compute daily sales: %w", err)
	}

	values := []interface{}{key, figures.Orders, figures.Revenue, figures.Cancelled}
	if err := s.sheets.WriteRow(ctx, s.salesRange, values); err != nil {
		return false, fmt.Errorf("append sales row: %w", err)
	}

	s.logger.Info("daily sales exported",
		zap.String("date", key),
		zap.Int("orders", figures.Orders),
		zap.Float64("revenue", figures.Revenue),
	)
	return true, nil
}

func parseDate(value interface{}) (time.Time, error) {
	str := fmt.Sprint(value)
	if str == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if len(str) > 10 {
		str = str[:10]
	}
	return time.Parse(dateLayout, str)
}
