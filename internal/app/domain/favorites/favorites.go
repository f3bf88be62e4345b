package favorites

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/backpackor/internal/app/handlers"
)

type FavoritesHandlers struct {
	*handlers.BaseHandler
	service Service
}

func NewFavoritesHandlers(service Service, logger *zap.Logger) *FavoritesHandlers {
	return &FavoritesHandlers{
		BaseHandler: handlers.NewBaseHandler(logger),
		service:     service,
	}
}

// AddFavorite handles POST /places/:id/favorite
func (h *FavoritesHandlers) AddFavorite(c *gin.Context) {
	userID, ok := h.RequireUser(c)
	if !ok {
		return
	}
	placeID, ok := h.IDParam(c, "id")
	if !ok {
		return
	}
	changed, err := h.service.Add(c.Request.Context(), userID, placeID)
	if err != nil {
		h.RespondError(c, err, "add the favorite")
		return
	}
	c.JSON(http.StatusOK, gin.H{"place_id": placeID, "is_favorite": true, "changed": changed})
}

// RemoveFavorite handles DELETE /places/:id/favorite
func (h *FavoritesHandlers) RemoveFavorite(c *gin.Context) {
	userID, ok := h.RequireUser(c)
	if !ok {
		return
	}
	placeID, ok := h.IDParam(c, "id")
	if !ok {
		return
	}
	changed, err := h.service.Remove(c.Request.Context(), userID, placeID)
	if err != nil {
		h.RespondError(c, err, "remove the favorite")
		return
	}
	c.JSON(http.StatusOK, gin.H{"place_id": placeID, "is_favorite": false, "changed": changed})
}

// ListFavorites handles GET /me/favorites
func (h *FavoritesHandlers) ListFavorites(c *gin.Context) {
	userID, ok := h.RequireUser(c)
	if !ok {
		return
	}
	places, err := h.service.ListUserFavorites(c.Request.Context(), userID)
	if err != nil {
		h.RespondError(c, err, "load favorites")
		return
	}
	c.JSON(http.StatusOK, gin.H{"places": places})
}
