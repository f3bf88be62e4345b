package reviews

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/backpackor/internal/app/handlers"
	"github.com/FACorreiaa/backpackor/internal/app/models"
)

const maxImageBytes = 10 << 20

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

// ListReviews handles GET /places/:id/reviews
func (h *Handler) ListReviews(c *gin.Context) {
	placeID, ok := h.IDParam(c, "id")
	if !ok {
		return
	}
	page, err := h.service.ListByPlace(c.Request.Context(), placeID,
		handlers.QueryInt(c, "page", 1), handlers.QueryInt(c, "page_size", DefaultPageSize))
	if err != nil {
		h.RespondError(c, err, "load reviews")
		return
	}
	c.JSON(http.StatusOK, page)
}

// CreateReview handles POST /places/:id/reviews as multipart form data with
// fields rating, content and up to MaxImages files under "images".
func (h *Handler) CreateReview(c *gin.Context) {
	userID, ok := h.RequireUser(c)
	if !ok {
		return
	}
	placeID, ok := h.IDParam(c, "id")
	if !ok {
		return
	}

	rating, err := strconv.Atoi(c.PostForm("rating"))
	if err != nil {
		h.RespondError(c, models.NewValidationError("rating must be between 1 and 5"), "create the review")
		return
	}

	images, err := readImages(c)
	if err != nil {
		h.RespondError(c, err, "create the review")
		return
	}

	review, err := h.service.Create(c.Request.Context(), models.CreateReviewParams{
		PlaceID: placeID,
		UserID:  userID,
		Rating:  rating,
		Content: c.PostForm("content"),
		Images:  images,
	})
	if err != nil {
		h.RespondError(c, err, "create the review")
		return
	}
	c.JSON(http.StatusCreated, review)
}

func readImages(c *gin.Context) ([]models.ReviewImage, error) {
	form, err := c.MultipartForm()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, models.NewValidationError("could not read the uploaded form")
	}
	files := form.File["images"]
	if len(files) > MaxImages {
		return nil, models.NewValidationError("a review can have at most %d images", MaxImages)
	}

	images := make([]models.ReviewImage, 0, len(files))
	for _, fh := range files {
		if fh.Size > maxImageBytes {
			return nil, models.NewValidationError("%s is larger than 10MB", fh.Filename)
		}
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(io.LimitReader(f, maxImageBytes))
		f.Close()
		if err != nil {
			return nil, err
		}
		images = append(images, models.ReviewImage{Filename: fh.Filename, Data: data})
	}
	return images, nil
}

// DeleteReview handles DELETE /reviews/:id
func (h *Handler) DeleteReview(c *gin.Context) {
	userID, ok := h.RequireUser(c)
	if !ok {
		return
	}
	reviewID, ok := h.IDParam(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), reviewID, userID); err != nil {
		h.RespondError(c, err, "delete the review")
		return
	}
	c.Status(http.StatusNoContent)
}
