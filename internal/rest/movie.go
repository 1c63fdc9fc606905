package rest

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"cineMatch/domain"
	"cineMatch/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"
)

type MovieService interface {
	GetMovieDetails(ctx context.Context, movieID int) (*domain.MovieDetails, error)
	GetMovieVideos(ctx context.Context, movieID int) ([]domain.MovieVideo, error)
	GetMoviePoster(ctx context.Context, movieID int) ([]byte, error)
	SearchMovies(ctx context.Context, query string, page int) ([]domain.TmdbMovie, error)
}

type GenreService interface {
	All(ctx context.Context) ([]domain.Genre, error)
}

type MovieHandler struct {
	movieService MovieService
	genreService GenreService
	timeout      time.Duration
}

func NewMovieHandler(movieService MovieService, genreService GenreService) *MovieHandler {
	return &MovieHandler{
		movieService: movieService,
		genreService: genreService,
		timeout:      15 * time.Second,
	}
}

func (h *MovieHandler) GetMovieDetails(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	movieID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid movie id"})
	}

	details, err := h.movieService.GetMovieDetails(ctx, movieID)
	if err != nil {
		logger.Error("Failed to get movie details", err, "movie_id", movieID)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(details))
}

func (h *MovieHandler) GetMovieVideos(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	movieID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid movie id"})
	}

	videos, err := h.movieService.GetMovieVideos(ctx, movieID)
	if err != nil {
		logger.Error("Failed to get movie videos", err, "movie_id", movieID)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(videos))
}

func (h *MovieHandler) GetMoviePoster(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	movieID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid movie id"})
	}

	image, err := h.movieService.GetMoviePoster(ctx, movieID)
	if err != nil {
		logger.Error("Failed to get movie poster", err, "movie_id", movieID)
		return c.JSON(http.StatusNotFound, ResponseError{Message: "poster not found"})
	}

	return c.Blob(http.StatusOK, "image/jpeg", image)
}

func (h *MovieHandler) SearchMovies(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	query := c.QueryParam("query")
	page, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || page <= 0 {
		page = 1
	}

	movies, err := h.movieService.SearchMovies(ctx, query, page)
	if err != nil {
		logger.Error("Failed to search movies", err, "query", query)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(movies))
}

func (h *MovieHandler) GetGenres(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	genres, err := h.genreService.All(ctx)
	if err != nil {
		logger.Error("Failed to get genres", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(genres))
}
