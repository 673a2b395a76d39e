package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderStatus is the fulfilment state of a sales order.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// Terminal reports whether the order can no longer change.
func (s OrderStatus) Terminal() bool {
	return s == OrderDelivered || s == OrderCancelled
}

// PaymentStatus tracks settlement of the order.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPartial  PaymentStatus = "partial"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPartial, PaymentPaid, PaymentRefunded:
		return true
	}
	return false
}

// Customer is embedded in each order.
type Customer struct {
	Name    string `bson:"name" json:"name"`
	Email   string `bson:"email,omitempty" json:"email,omitempty"`
	Phone   string `bson:"phone,omitempty" json:"phone,omitempty"`
	Address string `bson:"address,omitempty" json:"address,omitempty"`
}

// OrderLine is one item on a sales order.
type OrderLine struct {
	Item          primitive.ObjectID `bson:"item" json:"item"`
	ItemCode      string             `bson:"itemCode" json:"itemCode"`
	Description   string             `bson:"description" json:"description"`
	Quantity      int                `bson:"quantity" json:"quantity"`
	UnitPrice     float64            `bson:"unitPrice" json:"unitPrice"`
	Total         float64            `bson:"total" json:"total"`
	SerialNumbers []string           `bson:"serialNumbers,omitempty" json:"serialNumbers,omitempty"`
}

// SalesOrder is a customer purchase with computed totals.
type SalesOrder struct {
	Base          `bson:",inline"`
	OrderNumber   string              `bson:"orderNumber" json:"orderNumber"`
	Customer      Customer            `bson:"customer" json:"customer"`
	Items         []OrderLine         `bson:"items" json:"items"`
	Subtotal      float64             `bson:"subtotal" json:"subtotal"`
	TaxRate       *primitive.ObjectID `bson:"taxRate,omitempty" json:"taxRate,omitempty"`
	TaxAmount     float64             `bson:"taxAmount" json:"taxAmount"`
	TotalAmount   float64             `bson:"totalAmount" json:"totalAmount"`
	Status        OrderStatus         `bson:"status" json:"status"`
	PaymentStatus PaymentStatus       `bson:"paymentStatus" json:"paymentStatus"`
	PaymentMethod string              `bson:"paymentMethod,omitempty" json:"paymentMethod,omitempty"`
	DeliveryDate  *time.Time          `bson:"deliveryDate,omitempty" json:"deliveryDate,omitempty"`
	Notes         string              `bson:"notes,omitempty" json:"notes,omitempty"`
}
