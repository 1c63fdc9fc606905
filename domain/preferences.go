package domain

// PreferencesEvent is published by the user service whenever a user saves
// their preferences. One event triggers exactly one rebuild of that user's
// recommendation set. Delivery is at-least-once, so processing must converge
// when the same event is seen twice.
type PreferencesEvent struct {
	Email             string   `json:"email" validate:"required,email"`
	FavoriteGenres    []string `json:"favoriteGenres"`
	FavoriteActors    []string `json:"favoriteActors"`
	FavoriteDirectors []string `json:"favoriteDirectors"`
	FavoriteMovies    []string `json:"favoriteMovies"`
	MinRating         float64  `json:"minRating" validate:"gte=0,lte=10"`
}
