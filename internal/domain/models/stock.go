package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Location names a physical or logical place holding stock.
type Location string

const (
	LocationWarehouse Location = "warehouse"
	LocationRetail    Location = "retail"
	LocationTransit   Location = "transit"
	LocationShowroom  Location = "showroom"
	LocationReturns   Location = "returns"

	// DefaultSalesLocation is where sales order movements are booked.
	DefaultSalesLocation = LocationRetail
)

func (l Location) Valid() bool {
	switch l {
	case LocationWarehouse, LocationRetail, LocationTransit, LocationShowroom, LocationReturns:
		return true
	}
	return false
}

// StockLocation is the quantity of one item held at one location.
type StockLocation struct {
	Base     `bson:",inline"`
	Item     primitive.ObjectID `bson:"item" json:"item"`
	Location Location           `bson:"location" json:"location"`
	Quantity int                `bson:"quantity" json:"quantity"`
}

// TransactionType enumerates stock movement kinds.
type TransactionType string

const (
	TransactionStockIn    TransactionType = "stockin"
	TransactionStockOut   TransactionType = "stockout"
	TransactionAdjustment TransactionType = "adjustment"
	TransactionReturn     TransactionType = "return"
)

func (t TransactionType) Valid() bool {
	switch t {
	case TransactionStockIn, TransactionStockOut, TransactionAdjustment, TransactionReturn:
		return true
	}
	return false
}

// StockTransaction records one movement of inventory.
type StockTransaction struct {
	Base            `bson:",inline"`
	Item            primitive.ObjectID `bson:"item" json:"item"`
	TransactionType TransactionType    `bson:"transactionType" json:"transactionType"`
	Quantity        int                `bson:"quantity" json:"quantity"`
	Location        Location           `bson:"location" json:"location"`
	Reference       string             `bson:"reference" json:"reference"`
	Notes           string             `bson:"notes,omitempty" json:"notes,omitempty"`
	TransactionDate time.Time          `bson:"transactionDate" json:"transactionDate"`
}

// Delta is the signed effect of the transaction on quantityInStock.
func (t StockTransaction) Delta() int {
	switch t.TransactionType {
	case TransactionStockIn, TransactionReturn:
		return t.Quantity
	case TransactionStockOut:
		return -t.Quantity
	case TransactionAdjustment:
		return t.Quantity
	}
	return 0
}

// ItemStockView summarizes an item's balance and its split across locations.
type ItemStockView struct {
	Item            primitive.ObjectID `json:"item"`
	ItemCode        string             `json:"itemCode"`
	QuantityInStock int                `json:"quantityInStock"`
	LocatedQuantity int                `json:"locatedQuantity"`
	Locations       []StockLocation    `json:"locations"`
}

// TransferSummary is returned after a location-to-location stock transfer.
type TransferSummary struct {
	Item         primitive.ObjectID `json:"item"`
	ItemCode     string             `json:"itemCode"`
	FromLocation Location           `json:"fromLocation"`
	ToLocation   Location           `json:"toLocation"`
	Quantity     int                `json:"quantity"`
	Reference    string             `json:"reference"`
	FromBalance  int                `json:"fromBalance"`
	ToBalance    int                `json:"toBalance"`
	Reason       string             `json:"reason,omitempty"`
}
