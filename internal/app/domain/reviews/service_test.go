package reviews

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"strings"
	"sync"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/FACorreiaa/backpackor/internal/app/models"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, review models.Review) (models.Review, error) {
	args := m.Called(ctx, review)
	return args.Get(0).(models.Review), args.Error(1)
}

func (m *MockRepository) ListByPlace(ctx context.Context, placeID int64, page, pageSize int) (models.ReviewPage, error) {
	args := m.Called(ctx, placeID, page, pageSize)
	return args.Get(0).(models.ReviewPage), args.Error(1)
}

func (m *MockRepository) Get(ctx context.Context, reviewID int64) (models.Review, error) {
	args := m.Called(ctx, reviewID)
	return args.Get(0).(models.Review), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, reviewID int64) error {
	args := m.Called(ctx, reviewID)
	return args.Error(0)
}

const fakeBase = "https://cdn.test/"

type fakeStorage struct {
	mu        sync.Mutex
	uploaded  []string
	removed   []string
	failAfter int // uploads allowed before failing; negative never fails
	removeErr error
}

func (f *fakeStorage) Upload(_ context.Context, path string, _ []byte, contentType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAfter >= 0 && len(f.uploaded) >= f.failAfter {
		return "", errors.New("bucket unavailable")
	}
	if contentType != "image/jpeg" {
		return "", errors.New("unexpected content type " + contentType)
	}
	f.uploaded = append(f.uploaded, path)
	return fakeBase + path, nil
}

func (f *fakeStorage) Remove(_ context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, path)
	return f.removeErr
}

func (f *fakeStorage) PathFromURL(url string) (string, bool) {
	if !strings.HasPrefix(url, fakeBase) {
		return "", false
	}
	return strings.TrimPrefix(url, fakeBase), true
}

func testImage(t *testing.T) models.ReviewImage {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, imaging.New(40, 30, color.White), imaging.PNG))
	return models.ReviewImage{Filename: "photo.png", Data: buf.Bytes()}
}

func TestCreate_Validation(t *testing.T) {
	svc := NewService(new(MockRepository), &fakeStorage{failAfter: -1}, zap.NewNop())
	user := uuid.New()

	cases := []struct {
		name   string
		params models.CreateReviewParams
	}{
		{"rating too low", models.CreateReviewParams{PlaceID: 1, UserID: user, Rating: 0, Content: "x"}},
		{"rating too high", models.CreateReviewParams{PlaceID: 1, UserID: user, Rating: 6, Content: "x"}},
		{"blank content", models.CreateReviewParams{PlaceID: 1, UserID: user, Rating: 3, Content: "   "}},
		{"too many images", models.CreateReviewParams{PlaceID: 1, UserID: user, Rating: 3, Content: "x",
			Images: make([]models.ReviewImage, MaxImages+1)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tc.params)
			assert.ErrorIs(t, err, models.ErrValidation)
		})
	}
}

func TestCreate_UploadsImagesInOrder(t *testing.T) {
	repo := new(MockRepository)
	store := &fakeStorage{failAfter: -1}
	svc := NewService(repo, store, zap.NewNop())
	user := uuid.New()

	repo.On("Create", mock.Anything, mock.MatchedBy(func(r models.Review) bool {
		return r.PlaceID == 3 && r.Content == "Great market" && len(r.ImageURLs) == 3 &&
			strings.HasPrefix(r.ImageURLs[0], fakeBase+"reviews/3/")
	})).Return(models.Review{ID: 20, PlaceID: 3}, nil)

	img := testImage(t)
	rv, err := svc.Create(context.Background(), models.CreateReviewParams{
		PlaceID: 3, UserID: user, Rating: 5, Content: "  Great market ",
		Images: []models.ReviewImage{img, img, img},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(20), rv.ID)
	assert.Len(t, store.uploaded, 3)
	assert.Empty(t, store.removed)
	repo.AssertExpectations(t)
}

func TestCreate_UploadFailureCleansUp(t *testing.T) {
	repo := new(MockRepository)
	store := &fakeStorage{failAfter: 1}
	svc := NewService(repo, store, zap.NewNop())

	img := testImage(t)
	_, err := svc.Create(context.Background(), models.CreateReviewParams{
		PlaceID: 3, UserID: uuid.New(), Rating: 4, Content: "nice",
		Images: []models.ReviewImage{img, img},
	})
	require.Error(t, err)
	assert.ElementsMatch(t, store.uploaded, store.removed)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreate_InsertFailureRemovesImages(t *testing.T) {
	repo := new(MockRepository)
	store := &fakeStorage{failAfter: -1}
	svc := NewService(repo, store, zap.NewNop())

	repo.On("Create", mock.Anything, mock.Anything).Return(models.Review{}, models.ErrNotFound)

	_, err := svc.Create(context.Background(), models.CreateReviewParams{
		PlaceID: 3, UserID: uuid.New(), Rating: 4, Content: "nice",
		Images: []models.ReviewImage{testImage(t)},
	})
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Equal(t, store.uploaded, store.removed)
}

func TestService_Delete(t *testing.T) {
	owner := uuid.New()
	review := models.Review{ID: 9, PlaceID: 3, UserID: owner,
		ImageURLs: []string{fakeBase + "reviews/3/a.jpg", "https://elsewhere/b.jpg"}}

	t.Run("owner deletes and storage errors are ignored", func(t *testing.T) {
		repo := new(MockRepository)
		store := &fakeStorage{failAfter: -1, removeErr: errors.New("gone")}
		svc := NewService(repo, store, zap.NewNop())

		repo.On("Get", mock.Anything, int64(9)).Return(review, nil)
		repo.On("Delete", mock.Anything, int64(9)).Return(nil)

		require.NoError(t, svc.Delete(context.Background(), 9, owner))
		assert.Equal(t, []string{"reviews/3/a.jpg"}, store.removed)
		repo.AssertExpectations(t)
	})

	t.Run("someone else is forbidden", func(t *testing.T) {
		repo := new(MockRepository)
		store := &fakeStorage{failAfter: -1}
		svc := NewService(repo, store, zap.NewNop())

		repo.On("Get", mock.Anything, int64(9)).Return(review, nil)

		err := svc.Delete(context.Background(), 9, uuid.New())
		assert.ErrorIs(t, err, models.ErrForbidden)
		assert.Empty(t, store.removed)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}
