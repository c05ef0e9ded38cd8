// Package repository implements data access layer for the application
package repository

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"
	apperrors "marketplace.app/errors"
	"marketplace.app/models"
)

// SellerRepository handles data access operations for users and sellers
type SellerRepository struct {
	db *gorm.DB
}

// NewSellerRepository creates a new repository for seller data
func NewSellerRepository(db *gorm.DB) *SellerRepository {
	return &SellerRepository{db: db}
}

// FindByID retrieves a user by its ID; returns (nil, nil) when absent
func (r *SellerRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	result := r.db.WithContext(ctx).First(&user, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		log.Printf("[ERROR] Database error when finding user: %v\n", result.Error)
		return nil, result.Error
	}

	return &user, nil
}

// FindApprovedSellers retrieves all sellers with an approved store
func (r *SellerRepository) FindApprovedSellers(ctx context.Context) ([]models.User, error) {
	var sellers []models.User
	result := r.db.WithContext(ctx).
		Where("role = ? AND store_status = ?", "seller", models.StoreStatusApproved).
		Find(&sellers)
	if result.Error != nil {
		log.Printf("[ERROR] Database error when listing approved sellers: %v\n", result.Error)
		return nil, result.Error
	}

	log.Printf("[DEBUG] Found %d approved sellers\n", len(sellers))
	return sellers, nil
}

// FindPendingSellers retrieves all store applications awaiting approval.
// Applicants keep the user role until approved, so only the store status
// is filtered here.
func (r *SellerRepository) FindPendingSellers(ctx context.Context) ([]models.User, error) {
	var sellers []models.User
	result := r.db.WithContext(ctx).
		Where("store_status = ?", models.StoreStatusPending).
		Find(&sellers)
	if result.Error != nil {
		log.Printf("[ERROR] Database error when listing pending sellers: %v\n", result.Error)
		return nil, result.Error
	}

	return sellers, nil
}

// SearchApproved finds approved sellers whose store name or description
// matches the query, case-insensitively
func (r *SellerRepository) SearchApproved(ctx context.Context, query string) ([]models.User, error) {
	pattern := "%" + query + "%"

	var sellers []models.User
	result := r.db.WithContext(ctx).
		Where("role = ? AND store_status = ?", "seller", models.StoreStatusApproved).
		Where("LOWER(store_name) LIKE LOWER(?) OR LOWER(store_description) LIKE LOWER(?)", pattern, pattern).
		Find(&sellers)
	if result.Error != nil {
		log.Printf("[ERROR] Database error when searching sellers: %v\n", result.Error)
		return nil, result.Error
	}

	return sellers, nil
}

// Save persists changes to a user
func (r *SellerRepository) Save(ctx context.Context, user *models.User) error {
	result := r.db.WithContext(ctx).Save(user)
	if result.Error != nil {
		log.Printf("[ERROR] Database error when saving user: %v\n", result.Error)
		return result.Error
	}
	return nil
}

// FindRatingEntry retrieves one user's rating of a seller; (nil, nil) when absent
func (r *SellerRepository) FindRatingEntry(ctx context.Context, sellerID, userID string) (*models.RatingEntry, error) {
	var entry models.RatingEntry
	result := r.db.WithContext(ctx).
		Where("seller_id = ? AND user_id = ?", sellerID, userID).
		First(&entry)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		log.Printf("[ERROR] Database error when finding rating entry: %v\n", result.Error)
		return nil, result.Error
	}

	return &entry, nil
}

// UpdateAggregate persists a recomputed rating aggregate together with the
// per-user entry that produced it. The update is conditional on the version
// read during computation; a concurrent writer bumping the version first
// makes this call fail with a version conflict so the caller can reload and
// retry instead of silently losing an update.
func (r *SellerRepository) UpdateAggregate(ctx context.Context, sellerID string, expectedVersion int, mean float64, count int, entry *models.RatingEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.User{}).
			Where("id = ? AND rating_version = ?", sellerID, expectedVersion).
			Updates(map[string]interface{}{
				"seller_rating":  mean,
				"num_of_reviews": count,
				"rating_version": expectedVersion + 1,
			})
		if result.Error != nil {
			log.Printf("[ERROR] Database error when updating rating aggregate: %v\n", result.Error)
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperrors.NewVersionConflictError(
				fmt.Sprintf("rating aggregate for seller %s changed concurrently", sellerID))
		}

		if err := tx.Save(entry).Error; err != nil {
			log.Printf("[ERROR] Database error when saving rating entry: %v\n", err)
			return err
		}

		return nil
	})
}
