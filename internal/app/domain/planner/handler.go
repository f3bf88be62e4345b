package planner

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/backpackor/internal/app/domain/auth"
	"github.com/FACorreiaa/backpackor/internal/app/handlers"
	"github.com/FACorreiaa/backpackor/internal/app/middleware"
	"github.com/FACorreiaa/backpackor/internal/app/models"
)

type Handler struct {
	*handlers.BaseHandler
	service Service
}

func NewHandler(service Service, log *zap.Logger) *Handler {
	return &Handler{
		BaseHandler: handlers.NewBaseHandler(log),
		service:     service,
	}
}

type addPlaceRequest struct {
	Place models.Place `json:"place"`
}

type reorderRequest struct {
	FromPlaceID int64 `json:"from_place_id" binding:"required"`
	ToPlaceID   int64 `json:"to_place_id" binding:"required"`
}

type activeDayRequest struct {
	Day int `json:"day" binding:"required"`
}

func (h *Handler) dayParam(c *gin.Context) (int, bool) {
	day, err := strconv.Atoi(c.Param("day"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid day"})
		return 0, false
	}
	return day, true
}

// StartDraft handles POST /planner/draft
func (h *Handler) StartDraft(c *gin.Context) {
	var req models.StartDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	v, err := h.service.StartDraft(c.Request.Context(), middleware.SessionID(c), auth.UserIDPtr(c), req)
	if err != nil {
		h.RespondError(c, err, "start the planner")
		return
	}
	c.JSON(http.StatusOK, v)
}

// GetDraft handles GET /planner/draft
func (h *Handler) GetDraft(c *gin.Context) {
	v, err := h.service.GetDraft(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		h.RespondError(c, err, "load the planner")
		return
	}
	c.JSON(http.StatusOK, v)
}

// UpdateTripInfo handles PATCH /planner/draft
func (h *Handler) UpdateTripInfo(c *gin.Context) {
	var req models.UpdateTripInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	v, err := h.service.UpdateTripInfo(c.Request.Context(), middleware.SessionID(c), req)
	if err != nil {
		h.RespondError(c, err, "update the trip")
		return
	}
	c.JSON(http.StatusOK, v)
}

// DiscardDraft handles DELETE /planner/draft
func (h *Handler) DiscardDraft(c *gin.Context) {
	if err := h.service.DiscardDraft(c.Request.Context(), middleware.SessionID(c)); err != nil {
		h.RespondError(c, err, "discard the plan")
		return
	}
	c.Status(http.StatusNoContent)
}

// AddPlace handles POST /planner/draft/days/:day/places
func (h *Handler) AddPlace(c *gin.Context) {
	day, ok := h.dayParam(c)
	if !ok {
		return
	}
	var req addPlaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := h.service.AddPlace(c.Request.Context(), middleware.SessionID(c), day, req.Place)
	if err != nil {
		h.RespondError(c, err, "add the place")
		return
	}
	c.JSON(http.StatusOK, res)
}

// RemovePlace handles DELETE /planner/draft/days/:day/places/:placeId
func (h *Handler) RemovePlace(c *gin.Context) {
	day, ok := h.dayParam(c)
	if !ok {
		return
	}
	placeID, ok := h.IDParam(c, "placeId")
	if !ok {
		return
	}
	res, err := h.service.RemovePlace(c.Request.Context(), middleware.SessionID(c), day, placeID)
	if err != nil {
		h.RespondError(c, err, "remove the place")
		return
	}
	c.JSON(http.StatusOK, res)
}

// ReorderPlaces handles POST /planner/draft/reorder
func (h *Handler) ReorderPlaces(c *gin.Context) {
	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := h.service.ReorderPlaces(c.Request.Context(), middleware.SessionID(c), req.FromPlaceID, req.ToPlaceID)
	if err != nil {
		h.RespondError(c, err, "reorder the day")
		return
	}
	c.JSON(http.StatusOK, res)
}

// SetActiveDay handles PUT /planner/draft/active-day
func (h *Handler) SetActiveDay(c *gin.Context) {
	var req activeDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	v, err := h.service.SetActiveDay(c.Request.Context(), middleware.SessionID(c), req.Day)
	if err != nil {
		h.RespondError(c, err, "switch day")
		return
	}
	c.JSON(http.StatusOK, v)
}

// ApplySuggestion handles POST /planner/draft/suggest
func (h *Handler) ApplySuggestion(c *gin.Context) {
	var req models.SuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := h.service.ApplySuggestion(c.Request.Context(), middleware.SessionID(c), req)
	if err != nil {
		h.RespondError(c, err, "generate a suggestion")
		return
	}
	c.JSON(http.StatusOK, res)
}

// ConfirmDraft handles POST /planner/draft/confirm
func (h *Handler) ConfirmDraft(c *gin.Context) {
	trip, err := h.service.ConfirmDraft(c.Request.Context(), middleware.SessionID(c), auth.UserIDPtr(c))
	if err != nil {
		h.RespondError(c, err, "save the trip")
		return
	}
	c.JSON(http.StatusCreated, trip)
}

// DraftMap handles GET /planner/draft/map
func (h *Handler) DraftMap(c *gin.Context) {
	payload, err := h.service.DraftMap(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		h.RespondError(c, err, "load the map")
		return
	}
	c.JSON(http.StatusOK, payload)
}

// ListUserTrips handles GET /trips
func (h *Handler) ListUserTrips(c *gin.Context) {
	userID, ok := h.RequireUser(c)
	if !ok {
		return
	}
	trips, err := h.service.ListUserTrips(c.Request.Context(), userID)
	if err != nil {
		h.RespondError(c, err, "load your trips")
		return
	}
	c.JSON(http.StatusOK, gin.H{"trips": trips})
}

// GetTrip handles GET /trips/:id
func (h *Handler) GetTrip(c *gin.Context) {
	tripID, ok := h.IDParam(c, "id")
	if !ok {
		return
	}
	trip, err := h.service.GetTrip(c.Request.Context(), tripID)
	if err != nil {
		h.RespondError(c, err, "load the trip")
		return
	}
	c.JSON(http.StatusOK, trip)
}

// TripMap handles GET /trips/:id/map
func (h *Handler) TripMap(c *gin.Context) {
	tripID, ok := h.IDParam(c, "id")
	if !ok {
		return
	}
	payload, err := h.service.TripMap(c.Request.Context(), tripID)
	if err != nil {
		h.RespondError(c, err, "load the map")
		return
	}
	c.JSON(http.StatusOK, payload)
}

// DeleteTrip handles DELETE /trips/:id
func (h *Handler) DeleteTrip(c *gin.Context) {
	userID, ok := h.RequireUser(c)
	if !ok {
		return
	}
	tripID, ok := h.IDParam(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteTrip(c.Request.Context(), tripID, &userID); err != nil {
		h.RespondError(c, err, "delete the trip")
		return
	}
	c.Status(http.StatusNoContent)
}
