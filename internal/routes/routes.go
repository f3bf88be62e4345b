package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/FACorreiaa/backpackor/internal/app/domain/auth"
	"github.com/FACorreiaa/backpackor/internal/app/domain/drafts"
	"github.com/FACorreiaa/backpackor/internal/app/domain/favorites"
	"github.com/FACorreiaa/backpackor/internal/app/domain/places"
	"github.com/FACorreiaa/backpackor/internal/app/domain/planner"
	"github.com/FACorreiaa/backpackor/internal/app/domain/profiles"
	"github.com/FACorreiaa/backpackor/internal/app/domain/reviews"
	"github.com/FACorreiaa/backpackor/internal/app/domain/suggest"
	"github.com/FACorreiaa/backpackor/internal/app/middleware"
	"github.com/FACorreiaa/backpackor/internal/pkg/config"
	"github.com/FACorreiaa/backpackor/internal/pkg/storage"
)

// Dependencies are the long-lived clients the handlers are built from.
// Generator may be nil, which disables itinerary suggestions.
type Dependencies struct {
	Config    *config.Config
	Logger    *zap.Logger
	DB        *pgxpool.Pool
	Drafts    drafts.Store
	Storage   storage.Storage
	Generator suggest.Generator
}

type AppHandlers struct {
	Places    *places.Handler
	Favorites *favorites.FavoritesHandlers
	Reviews   *reviews.Handler
	Profiles  *profiles.Handler
	Planner   *planner.Handler
	Health    gin.HandlerFunc
}

func NewAppHandlers(deps Dependencies) *AppHandlers {
	logger := deps.Logger

	favoritesService := favorites.NewService(favorites.NewRepository(deps.DB, logger), logger)
	placesService := places.NewService(places.NewRepository(deps.DB, logger), favoritesService, logger)
	reviewsService := reviews.NewService(reviews.NewRepository(deps.DB, logger), deps.Storage, logger)
	profilesService := profiles.NewService(profiles.NewRepository(deps.DB, logger), deps.Storage, logger)

	var suggester planner.Suggester
	if deps.Generator != nil {
		suggester = suggest.NewService(placesService, deps.Generator, logger)
	}
	plannerService := planner.NewService(
		planner.NewRepository(deps.DB, logger),
		deps.Drafts,
		placesService,
		suggester,
		logger,
	)

	return &AppHandlers{
		Places:    places.NewHandler(placesService, logger),
		Favorites: favorites.NewFavoritesHandlers(favoritesService, logger),
		Reviews:   reviews.NewHandler(reviewsService, logger),
		Profiles:  profiles.NewHandler(profilesService, logger),
		Planner:   planner.NewHandler(plannerService, logger),
		Health:    healthHandler(deps.DB),
	}
}

func healthHandler(pool *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if pool != nil {
			if err := pool.Ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// Setup registers every API route under /api/v1. Browsing and planning work
// anonymously; favorites, reviews, profiles and trip management need a token.
func Setup(r *gin.Engine, h *AppHandlers, cfg *config.Config, logger *zap.Logger) {
	jwtConfig := auth.JWTConfig{
		SecretKey:       cfg.Auth.JWTSecret,
		TokenExpiration: 24 * time.Hour,
		Logger:          logger,
	}
	optionalConfig := jwtConfig
	optionalConfig.Optional = true

	api := r.Group("/api/v1")
	api.GET("/health", h.Health)

	public := api.Group("")
	public.Use(auth.JWTAuthMiddleware(optionalConfig))
	{
		public.GET("/regions", h.Places.ListRegions)
		public.GET("/regions/:id/places", h.Places.GetRegionPlaces)
		public.GET("/places", h.Places.ListPlaces)
		public.GET("/places/:id", h.Places.GetPlace)
		public.GET("/places/:id/reviews", h.Reviews.ListReviews)

		public.GET("/trips/:id", h.Planner.GetTrip)
		public.GET("/trips/:id/map", h.Planner.TripMap)

		draft := public.Group("/planner/draft")
		draft.Use(middleware.PlannerSession(logger))
		{
			draft.POST("", h.Planner.StartDraft)
			draft.GET("", h.Planner.GetDraft)
			draft.PATCH("", h.Planner.UpdateTripInfo)
			draft.DELETE("", h.Planner.DiscardDraft)
			draft.POST("/days/:day/places", h.Planner.AddPlace)
			draft.DELETE("/days/:day/places/:placeId", h.Planner.RemovePlace)
			draft.POST("/reorder", h.Planner.ReorderPlaces)
			draft.PUT("/active-day", h.Planner.SetActiveDay)
			draft.POST("/suggest", h.Planner.ApplySuggestion)
			draft.POST("/confirm", h.Planner.ConfirmDraft)
			draft.GET("/map", h.Planner.DraftMap)
		}
	}

	protected := api.Group("")
	protected.Use(auth.JWTAuthMiddleware(jwtConfig))
	{
		protected.POST("/places/:id/favorite", h.Favorites.AddFavorite)
		protected.DELETE("/places/:id/favorite", h.Favorites.RemoveFavorite)
		protected.POST("/places/:id/reviews", h.Reviews.CreateReview)
		protected.DELETE("/reviews/:id", h.Reviews.DeleteReview)

		protected.GET("/trips", h.Planner.ListUserTrips)
		protected.DELETE("/trips/:id", h.Planner.DeleteTrip)

		me := protected.Group("/me")
		me.GET("/favorites", h.Favorites.ListFavorites)
		me.GET("/profile", h.Profiles.GetProfile)
		me.PATCH("/profile", h.Profiles.UpdateProfile)
		me.POST("/profile/photo", h.Profiles.UploadPhoto)
	}

	logger.Info("Routes registered", zap.Int("count", len(r.Routes())))
}
