package repository

import (
	"context"
	"log"

	"gorm.io/gorm"
	"marketplace.app/models"
)

// ReviewRepository handles data access operations for product reviews
type ReviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository creates a new repository for review data
func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// FindByProduct retrieves all reviews for a product, newest first
func (r *ReviewRepository) FindByProduct(ctx context.Context, productID string) ([]models.Review, error) {
	var reviews []models.Review
	result := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Find(&reviews)
	if result.Error != nil {
		log.Printf("[ERROR] Database error when finding reviews: %v\n", result.Error)
		return nil, result.Error
	}

	return reviews, nil
}

// AverageForProduct recomputes a product's review aggregate by full rescan.
// The mean is floored to a whole star; zero reviews yields (0, 0).
func (r *ReviewRepository) AverageForProduct(ctx context.Context, productID string) (rating int, count int, err error) {
	reviews, err := r.FindByProduct(ctx, productID)
	if err != nil {
		return 0, 0, err
	}
	if len(reviews) == 0 {
		return 0, 0, nil
	}

	total := 0
	for _, review := range reviews {
		total += review.Rating
	}

	return total / len(reviews), len(reviews), nil
}
