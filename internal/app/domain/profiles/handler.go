package profiles

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/backpackor/internal/app/handlers"
	"github.com/FACorreiaa/backpackor/internal/app/models"
)

const maxPhotoBytes = 10 << 20

type Handler struct {
	*handlers.BaseHandler
	service Service
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{
		BaseHandler: handlers.NewBaseHandler(logger),
		service:     service,
	}
}

// GetProfile handles GET /me/profile
func (h *Handler) GetProfile(c *gin.Context) {
	userID, ok := h.RequireUser(c)
	if !ok {
		return
	}
	profile, err := h.service.GetProfile(c.Request.Context(), userID)
	if err != nil {
		h.RespondError(c, err, "load the profile")
		return
	}
	c.JSON(http.StatusOK, profile)
}

type nicknameRequest struct {
	Nickname string `json:"nickname"`
}

// UpdateProfile handles PATCH /me/profile
func (h *Handler) UpdateProfile(c *gin.Context) {
	userID, ok := h.RequireUser(c)
	if !ok {
		return
	}
	var req nicknameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	profile, err := h.service.UpdateNickname(c.Request.Context(), userID, req.Nickname)
	if err != nil {
		h.RespondError(c, err, "update the profile")
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UploadPhoto handles POST /me/profile/photo with the file under "photo".
func (h *Handler) UploadPhoto(c *gin.Context) {
	userID, ok := h.RequireUser(c)
	if !ok {
		return
	}
	fh, err := c.FormFile("photo")
	if err != nil {
		h.RespondError(c, models.NewValidationError("please choose a photo"), "upload the photo")
		return
	}
	if fh.Size > maxPhotoBytes {
		h.RespondError(c, models.NewValidationError("photos are limited to 10MB"), "upload the photo")
		return
	}
	f, err := fh.Open()
	if err != nil {
		h.RespondError(c, err, "upload the photo")
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxPhotoBytes))
	if err != nil {
		h.RespondError(c, err, "upload the photo")
		return
	}

	profile, err := h.service.UploadPhoto(c.Request.Context(), userID, data)
	if err != nil {
		h.RespondError(c, err, "upload the photo")
		return
	}
	c.JSON(http.StatusOK, profile)
}
