package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/fleetstock/internal/domain/models"
	"github.com/mamadbah2/fleetstock/internal/repository"
	"github.com/mamadbah2/fleetstock/internal/service/inventory"
)

// StockHandler serves the stock ledger and per-location balances.
type StockHandler struct {
	svc    *inventory.Service
	logger *zap.Logger
}

func NewStockHandler(svc *inventory.Service, logger *zap.Logger) *StockHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockHandler{svc: svc, logger: logger}
}

func (h *StockHandler) ListTransactions(c *gin.Context) {
	f := repository.TransactionFilter{
		Type:     models.TransactionType(strings.ToLower(c.Query("transactionType"))),
		Location: models.Location(strings.ToLower(c.Query("location"))),
	}
	var valid bool
	if f.Item, valid = queryID(c, "item"); !valid {
		return
	}
	if f.From, valid = queryTime(c, "from", false); !valid {
		return
	}
	if f.To, valid = queryTime(c, "to", true); !valid {
		return
	}

	txs, err := h.svc.ListTransactions(c.Request.Context(), f)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondList(c, txs)
}

func (h *StockHandler) GetTransaction(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	tx, err := h.svc.GetTransaction(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, tx)
}

func (h *StockHandler) CreateTransaction(c *gin.Context) {
	var req models.StockTransactionRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}
	tx, err := h.svc.CreateTransaction(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusCreated, tx)
}

func (h *StockHandler) UpdateTransaction(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req models.UpdateStockTransactionRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}
	tx, err := h.svc.UpdateTransaction(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, tx)
}

func (h *StockHandler) DeleteTransaction(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	if err := h.svc.DeleteTransaction(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"id": id})
}

func (h *StockHandler) Locations(c *gin.Context) {
	id, valid := pathID(c, "itemId")
	if !valid {
		return
	}
	view, err := h.svc.Locations(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, view)
}

func (h *StockHandler) SetLocation(c *gin.Context) {
	id, valid := pathID(c, "itemId")
	if !valid {
		return
	}
	var req models.SetLocationRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}
	loc, err := h.svc.SetLocationQuantity(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, loc)
}

func (h *StockHandler) Transfer(c *gin.Context) {
	id, valid := pathID(c, "itemId")
	if !valid {
		return
	}
	var req models.TransferRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}
	summary, err := h.svc.Transfer(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, summary)
}
