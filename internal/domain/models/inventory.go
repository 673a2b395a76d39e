package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// ItemType distinguishes stocked goods from services.
type ItemType string

const (
	ItemPhysical ItemType = "physical"
	ItemService  ItemType = "service"
)

func (t ItemType) Valid() bool {
	return t == ItemPhysical || t == ItemService
}

// ItemStatus is the lifecycle state of an inventory item.
type ItemStatus string

const (
	ItemActive       ItemStatus = "active"
	ItemInactive     ItemStatus = "inactive"
	ItemDiscontinued ItemStatus = "discontinued"
)

func (s ItemStatus) Valid() bool {
	switch s {
	case ItemActive, ItemInactive, ItemDiscontinued:
		return true
	}
	return false
}

// InventoryItem is the item master record. QuantityInStock is the authoritative
// running balance and only moves through the stock ledger.
type InventoryItem struct {
	Base            `bson:",inline"`
	ItemCode        string              `bson:"itemCode" json:"itemCode"`
	Description     string              `bson:"description" json:"description"`
	Type            ItemType            `bson:"type" json:"type"`
	UnitOfMeasure   string              `bson:"unitOfMeasure" json:"unitOfMeasure"`
	Category        primitive.ObjectID  `bson:"category" json:"category"`
	Supplier        *primitive.ObjectID `bson:"supplier,omitempty" json:"supplier,omitempty"`
	UnitCost        float64             `bson:"unitCost" json:"unitCost"`
	SellingPrice    float64             `bson:"sellingPrice" json:"sellingPrice"`
	WholesalePrice  float64             `bson:"wholesalePrice" json:"wholesalePrice"`
	QuantityInStock int                 `bson:"quantityInStock" json:"quantityInStock"`
	ReorderLevel    int                 `bson:"reorderLevel" json:"reorderLevel"`
	IsSerialized    bool                `bson:"isSerialized" json:"isSerialized"`
	Status          ItemStatus          `bson:"status" json:"status"`
}

// Saleable reports whether the item may appear on a sales order.
func (i InventoryItem) Saleable() bool {
	return i.Status == ItemActive
}

// LowStock reports whether the balance has reached the reorder level.
func (i InventoryItem) LowStock() bool {
	return i.QuantityInStock <= i.ReorderLevel
}
