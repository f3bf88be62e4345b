// Package handlers holds the response helpers shared by the JSON handlers.
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/FACorreiaa/backpackor/internal/app/domain/auth"
	"github.com/FACorreiaa/backpackor/internal/app/models"
)

type BaseHandler struct {
	Logger *zap.Logger
}

func NewBaseHandler(logger *zap.Logger) *BaseHandler {
	return &BaseHandler{Logger: logger}
}

// StatusFor maps a domain error to an HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrValidation),
		errors.Is(err, models.ErrBadRequest),
		errors.Is(err, models.ErrInvalidPlace),
		errors.Is(err, models.ErrDayOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, models.ErrNotFound), errors.Is(err, models.ErrNoDraft):
		return http.StatusNotFound
	case errors.Is(err, models.ErrConflict), errors.Is(err, models.ErrSaveInProgress):
		return http.StatusConflict
	case errors.Is(err, models.ErrStorageUnavailable), errors.Is(err, models.ErrSuggestUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// RespondError writes {"error": ...}. Client errors carry their own message;
// anything else is logged and reported as "failed to <operation>".
func (h *BaseHandler) RespondError(c *gin.Context, err error, operation string) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		h.Logger.Error("Request failed",
			zap.String("operation", operation),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.AbortWithStatusJSON(status, gin.H{"error": "failed to " + operation})
		return
	}

	msg := err.Error()
	var vErr *models.ValidationError
	if errors.As(err, &vErr) {
		msg = vErr.Message
	} else if status == http.StatusServiceUnavailable || status == http.StatusNotFound {
		msg = rootMessage(err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// rootMessage drops the wrapping context so internal ids do not leak.
func rootMessage(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}

// IDParam parses a positive int64 path parameter, answering 400 when it is not one.
func (h *BaseHandler) IDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

// RequireUser returns the authenticated user or answers 401.
func (h *BaseHandler) RequireUser(c *gin.Context) (uuid.UUID, bool) {
	id, ok := auth.UserID(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return uuid.Nil, false
	}
	return id, true
}

// QueryInt reads an integer query parameter, falling back to def.
func QueryInt(c *gin.Context, name string, def int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return def
	}
	return v
}
