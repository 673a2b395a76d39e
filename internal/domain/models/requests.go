package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CreateItemRequest is the body of POST /api/inventory.
type CreateItemRequest struct {
	ItemCode        string              `json:"itemCode" binding:"required"`
	Description     string              `json:"description" binding:"required"`
	Type            ItemType            `json:"type"`
	UnitOfMeasure   string              `json:"unitOfMeasure"`
	Category        primitive.ObjectID  `json:"category"`
	Supplier        *primitive.ObjectID `json:"supplier,omitempty"`
	UnitCost        float64             `json:"unitCost"`
	SellingPrice    float64             `json:"sellingPrice"`
	WholesalePrice  float64             `json:"wholesalePrice"`
	InitialQuantity int                 `json:"quantityInStock"`
	ReorderLevel    int                 `json:"reorderLevel"`
	IsSerialized    bool                `json:"isSerialized"`
	Status          ItemStatus          `json:"status"`
}

// UpdateItemRequest patches item master data. A zero supplier ID detaches the supplier.
type UpdateItemRequest struct {
	ItemCode       *string             `json:"itemCode,omitempty"`
	Description    *string             `json:"description,omitempty"`
	Type           *ItemType           `json:"type,omitempty"`
	UnitOfMeasure  *string             `json:"unitOfMeasure,omitempty"`
	Category       *primitive.ObjectID `json:"category,omitempty"`
	Supplier       *primitive.ObjectID `json:"supplier,omitempty"`
	UnitCost       *float64            `json:"unitCost,omitempty"`
	SellingPrice   *float64            `json:"sellingPrice,omitempty"`
	WholesalePrice *float64            `json:"wholesalePrice,omitempty"`
	ReorderLevel   *int                `json:"reorderLevel,omitempty"`
	IsSerialized   *bool               `json:"isSerialized,omitempty"`
	Status         *ItemStatus         `json:"status,omitempty"`
}

// StockTransactionRequest is the body of POST /api/stock-transactions.
type StockTransactionRequest struct {
	Item            primitive.ObjectID `json:"item"`
	TransactionType TransactionType    `json:"transactionType"`
	Quantity        int                `json:"quantity"`
	Location        Location           `json:"location"`
	Reference       string             `json:"reference"`
	Notes           string             `json:"notes"`
	TransactionDate *time.Time         `json:"transactionDate,omitempty"`
}

// UpdateStockTransactionRequest replaces selected fields of a recorded movement.
type UpdateStockTransactionRequest struct {
	Item            *primitive.ObjectID `json:"item,omitempty"`
	TransactionType *TransactionType    `json:"transactionType,omitempty"`
	Quantity        *int                `json:"quantity,omitempty"`
	Location        *Location           `json:"location,omitempty"`
	Reference       *string             `json:"reference,omitempty"`
	Notes           *string             `json:"notes,omitempty"`
	TransactionDate *time.Time          `json:"transactionDate,omitempty"`
}

// TransferRequest is the body of POST /api/stock/transfer/:itemId.
type TransferRequest struct {
	FromLocation Location `json:"fromLocation" binding:"required"`
	ToLocation   Location `json:"toLocation" binding:"required"`
	Quantity     int      `json:"quantity"`
	Reason       string   `json:"reason"`
}

// SetLocationRequest sets an item's quantity at one location.
type SetLocationRequest struct {
	Location Location `json:"location" binding:"required"`
	Quantity int      `json:"quantity"`
}

// OrderLineRequest is one requested order line. UnitPrice defaults to the item's selling price.
type OrderLineRequest struct {
	Item          primitive.ObjectID `json:"item"`
	Quantity      int                `json:"quantity"`
	UnitPrice     *float64           `json:"unitPrice,omitempty"`
	SerialNumbers []string           `json:"serialNumbers,omitempty"`
}

// CreateSalesOrderRequest is the body of POST /api/sales-orders.
type CreateSalesOrderRequest struct {
	Customer      Customer            `json:"customer"`
	Items         []OrderLineRequest  `json:"items"`
	Subtotal      float64             `json:"subtotal"`
	TaxAmount     float64             `json:"taxAmount"`
	TotalAmount   float64             `json:"totalAmount"`
	TaxRate       *primitive.ObjectID `json:"taxRate,omitempty"`
	PaymentStatus PaymentStatus       `json:"paymentStatus"`
	PaymentMethod string              `json:"paymentMethod"`
	DeliveryDate  *time.Time          `json:"deliveryDate,omitempty"`
	Notes         string              `json:"notes"`
}

// UpdateSalesOrderRequest carries the only mutable order fields.
type UpdateSalesOrderRequest struct {
	Status        *OrderStatus   `json:"status,omitempty"`
	PaymentStatus *PaymentStatus `json:"paymentStatus,omitempty"`
	PaymentMethod *string        `json:"paymentMethod,omitempty"`
	DeliveryDate  *time.Time     `json:"deliveryDate,omitempty"`
}

// CategoryRequest creates or replaces a category.
type CategoryRequest struct {
	Name        string              `json:"name" binding:"required"`
	Description string              `json:"description"`
	Parent      *primitive.ObjectID `json:"parent,omitempty"`
	Status      RecordStatus        `json:"status"`
}

// SummaryQuery selects the window of the sales summary.
type SummaryQuery struct {
	From     time.Time
	To       time.Time
	Interval TrendInterval
}

// CustomerQuery selects a customer's order history.
type CustomerQuery struct {
	Email string
	Name  string
}
