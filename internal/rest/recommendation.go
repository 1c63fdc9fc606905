package rest

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"cineMatch/domain"
	"cineMatch/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type RecommendationService interface {
	GetRecommendations(ctx context.Context, email string) ([]domain.Recommendation, error)
	MarkWatched(ctx context.Context, email string, movieID int) error
	Refresh(ctx context.Context, email string) error
}

type PreferencesPublisher interface {
	PublishPreferences(event domain.PreferencesEvent) error
}

type RecommendationHandler struct {
	recommendationService RecommendationService
	publisher             PreferencesPublisher
	validator             *validator.Validate
	timeout               time.Duration
}

func NewRecommendationHandler(recommendationService RecommendationService, publisher PreferencesPublisher) *RecommendationHandler {
	return &RecommendationHandler{
		recommendationService: recommendationService,
		publisher:             publisher,
		validator:             validator.New(),
		timeout:               10 * time.Second,
	}
}

func (h *RecommendationHandler) GetRecommendations(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	email := c.Param("email")

	recs, err := h.recommendationService.GetRecommendations(ctx, email)
	if err != nil {
		logger.Error("Failed to get recommendations", err, "email", email)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(recs))
}

func (h *RecommendationHandler) MarkWatched(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	email := c.Param("email")
	movieID, err := strconv.Atoi(c.Param("movieId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid movie id"})
	}

	if err := h.recommendationService.MarkWatched(ctx, email, movieID); err != nil {
		logger.Error("Failed to mark movie watched", err, "email", email, "movie_id", movieID)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("movie marked as watched"))
}

func (h *RecommendationHandler) Refresh(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	email := c.Param("email")

	if err := h.recommendationService.Refresh(ctx, email); err != nil {
		logger.Error("Failed to refresh recommendations", err, "email", email)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("recommendations refreshed"))
}

type RebuildRequest struct {
	FavoriteGenres    []string `json:"favorite_genres"`
	FavoriteActors    []string `json:"favorite_actors"`
	FavoriteDirectors []string `json:"favorite_directors"`
	FavoriteMovies    []string `json:"favorite_movies"`
	MinRating         float64  `json:"min_rating" validate:"gte=0,lte=10"`
}

// Rebuild publishes a preferences event for the user; the aggregation engine
// picks it up like any other preference change.
func (h *RecommendationHandler) Rebuild(c echo.Context) error {
	email := c.Param("email")

	var req RebuildRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid request body"})
	}

	if err := h.validator.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	event := domain.PreferencesEvent{
		Email:             email,
		FavoriteGenres:    req.FavoriteGenres,
		FavoriteActors:    req.FavoriteActors,
		FavoriteDirectors: req.FavoriteDirectors,
		FavoriteMovies:    req.FavoriteMovies,
		MinRating:         req.MinRating,
	}

	if err := h.validator.Struct(event); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.publisher.PublishPreferences(event); err != nil {
		logger.Error("Failed to publish preferences event", err, "email", email)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusAccepted, fres.Response.StatusOK("rebuild requested"))
}
