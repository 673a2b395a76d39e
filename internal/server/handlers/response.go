package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/mamadbah2/fleetstock/internal/apperrors"
	"github.com/mamadbah2/fleetstock/internal/repository"
)

const dateLayout = "2006-01-02"

type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Count   *int        `json:"count,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func respond(c *gin.Context, status int, data interface{}) {
	c.JSON(status, envelope{Success: true, Data: data})
}

func respondList[T any](c *gin.Context, items []T) {
	if items == nil {
		items = []T{}
	}
	n := len(items)
	c.JSON(http.StatusOK, envelope{Success: true, Data: items, Count: &n})
}

func fail(c *gin.Context, status int, message, detail string) {
	c.AbortWithStatusJSON(status, envelope{Success: false, Message: message, Error: detail})
}

// respondError maps domain and repository errors onto HTTP statuses. Internal
// errors are logged and replaced with a generic message.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		fail(c, http.StatusConflict, "Duplicate record", "a record with the same unique value already exists")
		return
	case errors.Is(err, repository.ErrNotFound):
		fail(c, http.StatusNotFound, "Not found", "record not found")
		return
	}

	msg := apperrors.MessageOf(err)
	switch apperrors.KindOf(err) {
	case apperrors.KindValidation:
		fail(c, http.StatusBadRequest, msg, msg)
	case apperrors.KindNotFound:
		fail(c, http.StatusNotFound, msg, msg)
	case apperrors.KindConflict:
		fail(c, http.StatusConflict, msg, msg)
	default:
		logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		fail(c, http.StatusInternalServerError, "Internal server error", "internal server error")
	}
}

func bindJSON(c *gin.Context, logger *zap.Logger, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		logger.Debug("invalid request body", zap.String("path", c.FullPath()), zap.Error(err))
		fail(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return false
	}
	return true
}

func pathID(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid id", "invalid "+name+" "+c.Param(name))
		return primitive.NilObjectID, false
	}
	return id, true
}

func queryID(c *gin.Context, name string) (*primitive.ObjectID, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid query parameter", "invalid "+name+" "+raw)
		return nil, false
	}
	return &id, true
}

// queryTime accepts RFC3339 or a plain date. A plain "to" date covers the whole day.
func queryTime(c *gin.Context, name string, endOfDay bool) (*time.Time, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, true
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid query parameter", name+" must be a date (YYYY-MM-DD) or RFC3339 timestamp")
		return nil, false
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, true
}
