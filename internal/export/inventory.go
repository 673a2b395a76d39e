package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mamadbah2/fleetstock/internal/domain/models"
)

const inventorySheet = "Inventory"

var inventoryHeader = []interface{}{
	"item_code",
	"description",
	"type",
	"category",
	"unit",
	"unit_cost",
	"selling_price",
	"wholesale_price",
	"quantity_in_stock",
	"reorder_level",
	"status",
	"low_stock",
}

// WriteInventory renders items as an xlsx workbook. categories maps category IDs to names.
func WriteInventory(w io.Writer, items []models.InventoryItem, categories map[primitive.ObjectID]string) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if err := f.SetSheetName(sheet, inventorySheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	if err := f.SetSheetRow(inventorySheet, "A1", &inventoryHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	row := 2
	for _, it := range items {
		excelRow := []interface{}{
			it.ItemCode,
			it.Description,
			string(it.Type),
			categories[it.Category],
			it.UnitOfMeasure,
			it.UnitCost,
			it.SellingPrice,
			it.WholesalePrice,
			it.QuantityInStock,
			it.ReorderLevel,
			string(it.Status),
			yesNo(it.LowStock()),
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetSheetRow(inventorySheet, cell, &excelRow); err != nil {
			return fmt.Errorf("write row %d: %w", row, err)
		}
		row++
	}

	if err := f.SetPanes(inventorySheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
