package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/fleetstock/internal/domain/models"
	"github.com/mamadbah2/fleetstock/internal/repository"
	"github.com/mamadbah2/fleetstock/internal/service/sales"
)

// SalesHandler serves /api/sales-orders.
type SalesHandler struct {
	svc    *sales.Service
	logger *zap.Logger
}

func NewSalesHandler(svc *sales.Service, logger *zap.Logger) *SalesHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SalesHandler{svc: svc, logger: logger}
}

func (h *SalesHandler) List(c *gin.Context) {
	f := repository.OrderFilter{
		Status:        models.OrderStatus(strings.ToLower(c.Query("status"))),
		PaymentStatus: models.PaymentStatus(strings.ToLower(c.Query("paymentStatus"))),
		CustomerEmail: c.Query("email"),
		CustomerName:  c.Query("customer"),
	}
	var valid bool
	if f.From, valid = queryTime(c, "from", false); !valid {
		return
	}
	if f.To, valid = queryTime(c, "to", true); !valid {
		return
	}

	orders, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondList(c, orders)
}

func (h *SalesHandler) Get(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	order, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, order)
}

func (h *SalesHandler) Create(c *gin.Context) {
	var req models.CreateSalesOrderRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}
	order, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusCreated, order)
}

func (h *SalesHandler) Update(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req models.UpdateSalesOrderRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}
	order, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, order)
}

func (h *SalesHandler) Delete(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"id": id})
}

// Summary serves ?from&to&interval=day|week|month.
func (h *SalesHandler) Summary(c *gin.Context) {
	q := models.SummaryQuery{Interval: models.TrendInterval(strings.ToLower(c.Query("interval")))}
	from, valid := queryTime(c, "from", false)
	if !valid {
		return
	}
	to, valid := queryTime(c, "to", true)
	if !valid {
		return
	}
	if from != nil {
		q.From = *from
	}
	if to != nil {
		q.To = *to
	}

	summary, err := h.svc.Summary(c.Request.Context(), q)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, summary)
}

func (h *SalesHandler) CustomerHistory(c *gin.Context) {
	history, err := h.svc.CustomerHistory(c.Request.Context(), models.CustomerQuery{
		Email: c.Query("email"),
		Name:  c.Query("name"),
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, history)
}
