package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/mamadbah2/fleetstock/internal/domain/models"
	"github.com/mamadbah2/fleetstock/internal/service/catalog"
	"github.com/mamadbah2/fleetstock/internal/service/records"
)

// CRUD is the set of operations behind a plain resource endpoint.
type CRUD[T any] struct {
	Create func(ctx context.Context, in T) (*T, error)
	Get    func(ctx context.Context, id primitive.ObjectID) (*T, error)
	List   func(ctx context.Context) ([]T, error)
	Update func(ctx context.Context, id primitive.ObjectID, in T) (*T, error)
	Delete func(ctx context.Context, id primitive.ObjectID) error
}

// ResourceOps exposes a records resource as CRUD.
func ResourceOps[T any, P models.Document[T]](r *records.Resource[T, P]) CRUD[T] {
	return CRUD[T]{Create: r.Create, Get: r.Get, List: r.List, Update: r.Update, Delete: r.Delete}
}

func SupplierOps(svc *catalog.Service) CRUD[models.Supplier] {
	return CRUD[models.Supplier]{
		Create: svc.CreateSupplier,
		Get:    svc.GetSupplier,
		List:   svc.ListSuppliers,
		Update: svc.UpdateSupplier,
		Delete: svc.DeleteSupplier,
	}
}

func TaxRateOps(svc *catalog.Service) CRUD[models.TaxRate] {
	return CRUD[models.TaxRate]{
		Create: svc.CreateTaxRate,
		Get:    svc.GetTaxRate,
		List:   svc.ListTaxRates,
		Update: svc.UpdateTaxRate,
		Delete: svc.DeleteTaxRate,
	}
}

// CRUDHandler serves list/get/create/update/delete for one resource.
type CRUDHandler[T any] struct {
	ops    CRUD[T]
	logger *zap.Logger
}

func NewCRUDHandler[T any](ops CRUD[T], logger *zap.Logger) *CRUDHandler[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CRUDHandler[T]{ops: ops, logger: logger}
}

// Register mounts the five routes on g.
func (h *CRUDHandler[T]) Register(g *gin.RouterGroup) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

func (h *CRUDHandler[T]) List(c *gin.Context) {
	out, err := h.ops.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondList(c, out)
}

func (h *CRUDHandler[T]) Get(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	v, err := h.ops.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, v)
}

func (h *CRUDHandler[T]) Create(c *gin.Context) {
	var in T
	if !bindJSON(c, h.logger, &in) {
		return
	}
	v, err := h.ops.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusCreated, v)
}

func (h *CRUDHandler[T]) Update(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	var in T
	if !bindJSON(c, h.logger, &in) {
		return
	}
	v, err := h.ops.Update(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, v)
}

func (h *CRUDHandler[T]) Delete(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	if err := h.ops.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"id": id})
}
