package export

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mamadbah2/fleetstock/internal/domain/models"
)

func TestWriteInventory(t *testing.T) {
	category := primitive.NewObjectID()
	items := []models.InventoryItem{
		{ItemCode: "TYRE", Description: "tyre", Category: category, QuantityInStock: 1, ReorderLevel: 4, Status: models.ItemActive},
		{ItemCode: "OIL", Description: "oil", Category: category, QuantityInStock: 9, ReorderLevel: 4, Status: models.ItemActive},
	}

	var buf bytes.Buffer
	if err := WriteInventory(&buf, items, map[primitive.ObjectID]string{category: "Parts"}); err != nil {
		t.Fatalf("write: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(inventorySheet)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	if rows[1][0] != "TYRE" || rows[1][3] != "Parts" || rows[1][11] != "yes" {
		t.Fatalf("unexpected first row %v", rows[1])
	}
}
