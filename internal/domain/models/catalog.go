package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// RecordStatus is the generic active/inactive flag of master data.
type RecordStatus string

const (
	StatusActive   RecordStatus = "active"
	StatusInactive RecordStatus = "inactive"
)

func (s RecordStatus) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

// InventoryCategory is a node of the self-referential category tree.
type InventoryCategory struct {
	Base        `bson:",inline"`
	Name        string              `bson:"name" json:"name"`
	Description string              `bson:"description,omitempty" json:"description,omitempty"`
	Parent      *primitive.ObjectID `bson:"parent,omitempty" json:"parent,omitempty"`
	Status      RecordStatus        `bson:"status" json:"status"`
}

// CategoryNode is a category with its item count and nested children.
type CategoryNode struct {
	InventoryCategory
	ItemCount int             `json:"itemCount"`
	Children  []*CategoryNode `json:"children"`
}

// Supplier provides inventory items.
type Supplier struct {
	Base          `bson:",inline"`
	Name          string       `bson:"name" json:"name"`
	ContactPerson string       `bson:"contactPerson,omitempty" json:"contactPerson,omitempty"`
	Email         string       `bson:"email,omitempty" json:"email,omitempty"`
	Phone         string       `bson:"phone,omitempty" json:"phone,omitempty"`
	Address       string       `bson:"address,omitempty" json:"address,omitempty"`
	Status        RecordStatus `bson:"status" json:"status"`
}

// TaxRate is a named percentage applied to order subtotals.
type TaxRate struct {
	Base      `bson:",inline"`
	Name      string       `bson:"name" json:"name"`
	Rate      float64      `bson:"rate" json:"rate"`
	IsDefault bool         `bson:"isDefault" json:"isDefault"`
	Status    RecordStatus `bson:"status" json:"status"`
}
