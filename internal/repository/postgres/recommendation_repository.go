package postgres

import (
	"context"
	"errors"
	"fmt"

	"cineMatch/domain"

	"gorm.io/gorm"
)

var ErrRecommendationNotFound = errors.New("recommendation not found")

type RecommendationRepository struct {
	DB *gorm.DB
}

func NewRecommendationRepository(db *gorm.DB) *RecommendationRepository {
	return &RecommendationRepository{
		DB: db,
	}
}

// ReplaceAll swaps the user's entire recommendation set in one transaction.
// Either the old records are gone and the new ones are in, or nothing
// changed; a partially replaced set is never visible.
func (r *RecommendationRepository) ReplaceAll(ctx context.Context, email string, recs []domain.Recommendation) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("email = ?", email).Delete(&domain.Recommendation{}).Error; err != nil {
			return fmt.Errorf("failed to delete recommendations: %w", err)
		}

		if len(recs) == 0 {
			return nil
		}

		if err := tx.Create(&recs).Error; err != nil {
			return fmt.Errorf("failed to insert recommendations: %w", err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to replace recommendations for %s: %w", email, err)
	}

	return nil
}

func (r *RecommendationRepository) FindByEmail(ctx context.Context, email string) ([]domain.Recommendation, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var recs []domain.Recommendation
	err := r.DB.WithContext(ctx).Where("email = ?", email).Order("id").Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find recommendations: %w", err)
	}

	return recs, nil
}

func (r *RecommendationRepository) FindByEmailAndMovieID(ctx context.Context, email string, movieID int) (domain.Recommendation, error) {
	if err := ctx.Err(); err != nil {
		return domain.Recommendation{}, fmt.Errorf("context error: %w", err)
	}

	var rec domain.Recommendation
	err := r.DB.WithContext(ctx).Where("email = ? AND movie_id = ?", email, movieID).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Recommendation{}, ErrRecommendationNotFound
		}
		return domain.Recommendation{}, fmt.Errorf("failed to find recommendation: %w", err)
	}

	return rec, nil
}

// MarkWatched sets watched=true on the matching record. Marking a movie that
// is not in the user's set (or is already watched) is a no-op.
func (r *RecommendationRepository) MarkWatched(ctx context.Context, email string, movieID int) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	err := r.DB.WithContext(ctx).
		Model(&domain.Recommendation{}).
		Where("email = ? AND movie_id = ?", email, movieID).
		Update("watched", true).Error
	if err != nil {
		return fmt.Errorf("failed to mark recommendation watched: %w", err)
	}

	return nil
}
