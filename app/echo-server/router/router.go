package router

import (
	"cineMatch/internal/rest"

	"github.com/labstack/echo/v4"
)

func SetupRecommendationRoutes(api *echo.Group, handler *rest.RecommendationHandler) {
	recs := api.Group("/recommendations")

	recs.GET("/:email", handler.GetRecommendations)
	recs.POST("/:email/watched/:movieId", handler.MarkWatched)
	recs.POST("/:email/refresh", handler.Refresh)
	recs.POST("/:email/rebuild", handler.Rebuild)
}

func SetupMovieRoutes(api *echo.Group, handler *rest.MovieHandler) {
	movies := api.Group("/movies")

	movies.GET("/search", handler.SearchMovies)
	movies.GET("/:id", handler.GetMovieDetails)
	movies.GET("/:id/videos", handler.GetMovieVideos)
	movies.GET("/:id/poster", handler.GetMoviePoster)

	api.GET("/genres", handler.GetGenres)
}
