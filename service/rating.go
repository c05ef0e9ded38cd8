package service

import (
	"context"
	"log"

	"marketplace.app/cache"
	"marketplace.app/errors"
	"marketplace.app/models"
	"marketplace.app/pkg/validation"
)

// ratingRetryLimit bounds the optimistic-concurrency retry loop. Contention
// on a single seller's aggregate is short-lived, so a handful of attempts is
// enough.
const ratingRetryLimit = 3

// RatingService maintains the incrementally updated seller rating aggregate
type RatingService struct {
	sellers      SellerRepositoryInterface
	invalidation *cache.Coordinator
}

// NewRatingService creates a new rating service
func NewRatingService(sellers SellerRepositoryInterface, invalidation *cache.Coordinator) *RatingService {
	return &RatingService{
		sellers:      sellers,
		invalidation: invalidation,
	}
}

// SubmitRating records one user's rating of a seller and folds it into the
// aggregate without rescanning prior entries. A repeat rating by the same
// user replaces their previous value and leaves the count unchanged. The
// aggregate update is guarded by a version check and retried on conflict.
func (s *RatingService) SubmitRating(ctx context.Context, sellerID, userID string, rating int) error {
	if !validation.IsValidRating(rating) {
		return errors.NewValidationError("rating must be between 1 and 5")
	}
	if !validation.IsNotEmpty(userID) {
		return errors.NewValidationError("user id is required")
	}

	var lastErr error
	for attempt := 0; attempt < ratingRetryLimit; attempt++ {
		seller, err := s.sellers.FindByID(ctx, sellerID)
		if err != nil {
			return errors.NewDatabaseError("failed to load seller", err)
		}
		if seller == nil {
			return errors.NewNotFoundError("seller not found")
		}

		existing, err := s.sellers.FindRatingEntry(ctx, sellerID, userID)
		if err != nil {
			return errors.NewDatabaseError("failed to load rating entry", err)
		}

		mean, count := foldRating(seller.SellerRating, seller.NumOfReviews, existing, rating)

		entry := existing
		if entry == nil {
			entry = &models.RatingEntry{SellerID: sellerID, UserID: userID}
		}
		entry.Value = rating

		err = s.sellers.UpdateAggregate(ctx, sellerID, seller.RatingVersion, mean, count, entry)
		if err == nil {
			s.invalidation.Invalidate(ctx, cache.MutationRatingChanged, cache.EntityIDs{SellerID: sellerID})
			return nil
		}
		if !errors.IsVersionConflictError(err) {
			return err
		}

		log.Printf("[DEBUG] Rating aggregate conflict for seller %s, attempt %d\n", sellerID, attempt+1)
		lastErr = err
	}

	return lastErr
}

// foldRating applies one rating to the running (mean, count) aggregate.
// A replacement swaps the user's old value out of the sum; a first-time
// rating extends it.
func foldRating(mean float64, count int, existing *models.RatingEntry, rating int) (float64, int) {
	if existing != nil {
		if count == 0 {
			return float64(rating), 1
		}
		sum := mean*float64(count) - float64(existing.Value) + float64(rating)
		return sum / float64(count), count
	}

	sum := mean*float64(count) + float64(rating)
	return sum / float64(count+1), count + 1
}
