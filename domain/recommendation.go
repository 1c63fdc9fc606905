package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Category a recommendation is attributed to. The order of these values is
// also the precedence order when the same movie shows up in more than one
// category (movies wins over actors, actors over directors, and so on).
const (
	CategoryMovies    = "movies"
	CategoryActors    = "actors"
	CategoryDirectors = "directors"
	CategoryGenres    = "genres"
)

// CREATE TABLE public.recommendations (
//     id              BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//     email           TEXT NOT NULL,
//     movie_id        BIGINT NOT NULL,
//     movie_title     TEXT,
//     poster_url      TEXT,
//     rating          NUMERIC,
//     overview        TEXT,
//     genres          TEXT,
//     genre_ids       JSONB,
//     category        TEXT NOT NULL,
//     watched         BOOLEAN DEFAULT FALSE,
//     recommended_at  TIMESTAMPTZ DEFAULT NOW()
// );

type Recommendation struct {
	ID            uint64         `gorm:"primaryKey;autoIncrement" json:"id"`
	Email         string         `gorm:"column:email;type:text;index;not null" json:"email"`
	MovieID       int            `gorm:"column:movie_id;not null" json:"movie_id"`
	MovieTitle    string         `gorm:"column:movie_title;type:text" json:"movie_title"`
	PosterURL     string         `gorm:"column:poster_url;type:text" json:"poster_url"`
	Rating        float64        `gorm:"column:rating;type:numeric" json:"rating"`
	Overview      string         `gorm:"column:overview;type:text" json:"overview"`
	Genres        string         `gorm:"column:genres;type:text" json:"genres"`
	GenreIDs      datatypes.JSON `gorm:"column:genre_ids" json:"genre_ids"`
	Category      string         `gorm:"column:category;not null" json:"category"`
	Watched       bool           `gorm:"column:watched;default:false" json:"watched"`
	RecommendedAt time.Time      `gorm:"column:recommended_at;autoCreateTime" json:"recommended_at"`
}

func (Recommendation) TableName() string {
	return "recommendations"
}
