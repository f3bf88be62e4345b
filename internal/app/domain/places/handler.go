package places

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/backpackor/internal/app/domain/auth"
	"github.com/FACorreiaa/backpackor/internal/app/handlers"
	"github.com/FACorreiaa/backpackor/internal/app/models"
)

type Handler struct {
	*handlers.BaseHandler
	service Service
}

func NewHandler(service Service, log *zap.Logger) *Handler {
	return &Handler{BaseHandler: handlers.NewBaseHandler(log), service: service}
}

// ListRegions handles GET /regions
func (h *Handler) ListRegions(c *gin.Context) {
	regions, err := h.service.ListRegions(c.Request.Context())
	if err != nil {
		h.RespondError(c, err, "load regions")
		return
	}
	c.JSON(http.StatusOK, gin.H{"regions": regions})
}

// ListPlaces handles GET /places?region_id=&category=&q=&sort=&page=&page_size=
func (h *Handler) ListPlaces(c *gin.Context) {
	filter := models.PlaceFilter{
		Category: c.Query("category"),
		Keyword:  c.Query("q"),
		Sort:     models.PlaceSort(c.Query("sort")),
		Page:     handlers.QueryInt(c, "page", 1),
		PageSize: handlers.QueryInt(c, "page_size", DefaultPageSize),
	}
	if raw := c.Query("region_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid region_id"})
			return
		}
		filter.RegionID = &id
	}

	page, err := h.service.ListPlaces(c.Request.Context(), filter)
	if err != nil {
		h.RespondError(c, err, "load places")
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetPlace handles GET /places/:id
func (h *Handler) GetPlace(c *gin.Context) {
	placeID, ok := h.IDParam(c, "id")
	if !ok {
		return
	}
	detail, err := h.service.GetPlaceDetail(c.Request.Context(), placeID, auth.UserIDPtr(c))
	if err != nil {
		h.RespondError(c, err, "load the place")
		return
	}
	c.JSON(http.StatusOK, detail)
}

// GetRegionPlaces handles GET /regions/:id/places
func (h *Handler) GetRegionPlaces(c *gin.Context) {
	regionID, ok := h.IDParam(c, "id")
	if !ok {
		return
	}
	places, err := h.service.GetPlacesByRegion(c.Request.Context(), regionID)
	if err != nil {
		h.RespondError(c, err, "load places")
		return
	}
	c.JSON(http.StatusOK, gin.H{"places": places})
}
