package reviews

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/FACorreiaa/backpackor/internal/app/domain/auth"
	"github.com/FACorreiaa/backpackor/internal/app/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Create(ctx context.Context, params models.CreateReviewParams) (models.Review, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(models.Review), args.Error(1)
}

func (m *MockService) ListByPlace(ctx context.Context, placeID int64, page, pageSize int) (models.ReviewPage, error) {
	args := m.Called(ctx, placeID, page, pageSize)
	return args.Get(0).(models.ReviewPage), args.Error(1)
}

func (m *MockService) Delete(ctx context.Context, reviewID int64, userID uuid.UUID) error {
	args := m.Called(ctx, reviewID, userID)
	return args.Error(0)
}

func reviewForm(t *testing.T, rating, content string, files int) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	require.NoError(t, mw.WriteField("rating", rating))
	require.NoError(t, mw.WriteField("content", content))
	for i := 0; i < files; i++ {
		fw, err := mw.CreateFormFile("images", "p.jpg")
		require.NoError(t, err)
		_, err = fw.Write([]byte("img"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func TestHandler_CreateReview(t *testing.T) {
	gin.SetMode(gin.TestMode)
	user := uuid.New()

	svc := new(MockService)
	svc.On("Create", mock.Anything, mock.MatchedBy(func(p models.CreateReviewParams) bool {
		return p.PlaceID == 7 && p.UserID == user && p.Rating == 4 && p.Content == "Nice" && len(p.Images) == 2
	})).Return(models.Review{ID: 1, PlaceID: 7, Rating: 4}, nil)

	h := NewHandler(svc, zap.NewNop())
	r := gin.New()
	r.POST("/places/:id/reviews", func(c *gin.Context) { c.Set(auth.UserIDKey, user) }, h.CreateReview)
	r.POST("/anon/places/:id/reviews", h.CreateReview)

	send := func(path, rating string, files int) *httptest.ResponseRecorder {
		body, ct := reviewForm(t, rating, "Nice", files)
		req := httptest.NewRequest(http.MethodPost, path, body)
		req.Header.Set("Content-Type", ct)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusCreated, send("/places/7/reviews", "4", 2).Code)
	assert.Equal(t, http.StatusBadRequest, send("/places/7/reviews", "four", 0).Code)
	assert.Equal(t, http.StatusBadRequest, send("/places/7/reviews", "4", MaxImages+1).Code)
	assert.Equal(t, http.StatusUnauthorized, send("/anon/places/7/reviews", "4", 0).Code)
	svc.AssertNumberOfCalls(t, "Create", 1)
}

func TestHandler_DeleteReviewForbidden(t *testing.T) {
	gin.SetMode(gin.TestMode)
	user := uuid.New()
	svc := new(MockService)
	svc.On("Delete", mock.Anything, int64(3), user).Return(models.ErrForbidden)

	h := NewHandler(svc, zap.NewNop())
	r := gin.New()
	r.DELETE("/reviews/:id", func(c *gin.Context) { c.Set(auth.UserIDKey, user) }, h.DeleteReview)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/reviews/3", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
}
