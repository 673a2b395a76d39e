package models

import "time"

// TrendInterval is the bucket size of a revenue trend.
type TrendInterval string

const (
	IntervalDay   TrendInterval = "day"
	IntervalWeek  TrendInterval = "week"
	IntervalMonth TrendInterval = "month"
)

func (i TrendInterval) Valid() bool {
	return i == IntervalDay || i == IntervalWeek || i == IntervalMonth
}

// StatusBucket aggregates orders sharing a status value.
type StatusBucket struct {
	Status string  `json:"status"`
	Count  int     `json:"count"`
	Amount float64 `json:"amount"`
}

// TopItem is a best-selling item within the report window.
type TopItem struct {
	ItemCode    string  `json:"itemCode"`
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	Revenue     float64 `json:"revenue"`
}

// TrendPoint is revenue for one time bucket.
type TrendPoint struct {
	Period  string  `json:"period"`
	Orders  int     `json:"orders"`
	Revenue float64 `json:"revenue"`
}

// SalesSummary is the read-only sales dashboard payload.
type SalesSummary struct {
	From            time.Time      `json:"from"`
	To              time.Time      `json:"to"`
	Interval        TrendInterval  `json:"interval"`
	TotalOrders     int            `json:"totalOrders"`
	TotalRevenue    float64        `json:"totalRevenue"`
	ByStatus        []StatusBucket `json:"byStatus"`
	ByPaymentStatus []StatusBucket `json:"byPaymentStatus"`
	TopItems        []TopItem      `json:"topItems"`
	Trend           []TrendPoint   `json:"trend"`
}

// CustomerHistory lists one customer's orders.
type CustomerHistory struct {
	Customer    Customer     `json:"customer"`
	TotalOrders int          `json:"totalOrders"`
	TotalSpent  float64      `json:"totalSpent"`
	LastOrderAt *time.Time   `json:"lastOrderAt,omitempty"`
	Orders      []SalesOrder `json:"orders"`
}

// DailySalesRow is the per-day figure appended to the sales export sheet.
type DailySalesRow struct {
	Date      time.Time `json:"date"`
	Orders    int       `json:"orders"`
	Cancelled int       `json:"cancelled"`
	Revenue   float64   `json:"revenue"`
}
