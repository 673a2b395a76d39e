package handlers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/mamadbah2/fleetstock/internal/domain/models"
	"github.com/mamadbah2/fleetstock/internal/export"
	"github.com/mamadbah2/fleetstock/internal/repository"
	"github.com/mamadbah2/fleetstock/internal/service/inventory"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// CategoryLister resolves category names for the inventory export.
type CategoryLister interface {
	ListCategories(ctx context.Context) ([]models.InventoryCategory, error)
}

// InventoryHandler serves /api/inventory.
type InventoryHandler struct {
	svc        *inventory.Service
	categories CategoryLister
	logger     *zap.Logger
}

func NewInventoryHandler(svc *inventory.Service, categories CategoryLister, logger *zap.Logger) *InventoryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryHandler{svc: svc, categories: categories, logger: logger}
}

func (h *InventoryHandler) filter(c *gin.Context) (repository.ItemFilter, bool) {
	f := repository.ItemFilter{
		Status: models.ItemStatus(strings.ToLower(c.Query("status"))),
		Search: strings.TrimSpace(c.Query("search")),
	}
	var valid bool
	if f.Category, valid = queryID(c, "category"); !valid {
		return f, false
	}
	if f.Supplier, valid = queryID(c, "supplier"); !valid {
		return f, false
	}
	if raw := c.Query("lowStock"); raw != "" {
		low, err := strconv.ParseBool(raw)
		if err != nil {
			fail(c, http.StatusBadRequest, "Invalid query parameter", "lowStock must be a boolean")
			return f, false
		}
		f.LowStockOnly = low
	}
	return f, true
}

func (h *InventoryHandler) List(c *gin.Context) {
	f, valid := h.filter(c)
	if !valid {
		return
	}
	items, err := h.svc.ListItems(c.Request.Context(), f)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondList(c, items)
}

func (h *InventoryHandler) LowStock(c *gin.Context) {
	items, err := h.svc.LowStock(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondList(c, items)
}

func (h *InventoryHandler) Get(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	item, err := h.svc.GetItem(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, item)
}

func (h *InventoryHandler) Create(c *gin.Context) {
	var req models.CreateItemRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}
	item, err := h.svc.CreateItem(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusCreated, item)
}

func (h *InventoryHandler) Update(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req models.UpdateItemRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}
	item, err := h.svc.UpdateItem(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, item)
}

func (h *InventoryHandler) Delete(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	if err := h.svc.DeleteItem(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"id": id})
}

// Export streams the filtered item list as an xlsx workbook.
func (h *InventoryHandler) Export(c *gin.Context) {
	f, valid := h.filter(c)
	if !valid {
		return
	}
	ctx := c.Request.Context()
	items, err := h.svc.ListItems(ctx, f)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	names := make(map[primitive.ObjectID]string)
	if h.categories != nil {
		cats, err := h.categories.ListCategories(ctx)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		for _, cat := range cats {
			names[cat.ID] = cat.Name
		}
	}

	var buf bytes.Buffer
	if err := export.WriteInventory(&buf, items, names); err != nil {
		respondError(c, h.logger, fmt.Errorf("render inventory export: %w", err))
		return
	}

	filename := fmt.Sprintf("inventory-%s.xlsx", time.Now().UTC().Format(dateLayout))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
