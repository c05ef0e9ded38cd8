package service

import (
	"context"
	"log"
	"time"

	"marketplace.app/cache"
	"marketplace.app/errors"
	"marketplace.app/models"
	"marketplace.app/pkg/validation"
)

// SellerService handles the mutation side of the seller lifecycle: store
// applications, admin status decisions, and profile edits. Every write here
// goes through the invalidation coordinator before returning.
type SellerService struct {
	sellers      SellerRepositoryInterface
	products     ProductRepositoryInterface
	invalidation *cache.Coordinator
}

// NewSellerService creates a new seller service
func NewSellerService(
	sellers SellerRepositoryInterface,
	products ProductRepositoryInterface,
	invalidation *cache.Coordinator,
) *SellerService {
	return &SellerService{
		sellers:      sellers,
		products:     products,
		invalidation: invalidation,
	}
}

// ApplyForStore submits a user's store application into the pending queue
func (s *SellerService) ApplyForStore(ctx context.Context, userID, storeName, storeDescription string) error {
	storeName, ok := validation.TrimAndValidate(storeName)
	if !ok {
		return errors.NewValidationError("store name is required")
	}

	user, err := s.sellers.FindByID(ctx, userID)
	if err != nil {
		return errors.NewDatabaseError("failed to load user", err)
	}
	if user == nil {
		return errors.NewNotFoundError("user not found")
	}
	if user.StoreStatus == models.StoreStatusPending || user.StoreStatus == models.StoreStatusApproved {
		return errors.NewValidationError("user already has a store application or an active store")
	}

	now := time.Now()
	user.StoreName = storeName
	user.StoreDescription = storeDescription
	user.StoreStatus = models.StoreStatusPending
	user.StoreCreatedAt = &now

	if err := s.sellers.Save(ctx, user); err != nil {
		return errors.NewDatabaseError("failed to save store application", err)
	}

	s.invalidation.Invalidate(ctx, cache.MutationSellerStatusChanged, cache.EntityIDs{SellerID: userID})
	return nil
}

// UpdateSellerStatus applies an admin decision to a seller's store. Approval
// grants the seller role; rejection and deregistration revoke it, and
// deregistration also removes the seller's catalog.
func (s *SellerService) UpdateSellerStatus(ctx context.Context, sellerID, status string) error {
	if !validation.IsValidStoreStatus(status) {
		return errors.NewValidationError("invalid store status: " + status)
	}

	seller, err := s.sellers.FindByID(ctx, sellerID)
	if err != nil {
		return errors.NewDatabaseError("failed to load seller", err)
	}
	if seller == nil {
		return errors.NewNotFoundError("seller not found")
	}

	seller.StoreStatus = status

	switch status {
	case models.StoreStatusApproved:
		seller.Role = "seller"
	case models.StoreStatusRejected:
		seller.Role = "user"
	case models.StoreStatusDeregistered:
		seller.Role = "user"
		if err := s.products.DeleteBySeller(ctx, sellerID); err != nil {
			return errors.NewDatabaseError("failed to remove seller products", err)
		}
	}

	if err := s.sellers.Save(ctx, seller); err != nil {
		return errors.NewDatabaseError("failed to save seller status", err)
	}

	s.invalidation.Invalidate(ctx, cache.MutationSellerStatusChanged, cache.EntityIDs{SellerID: sellerID})

	// Deregistration removes products, so the product list views are stale too
	if status == models.StoreStatusDeregistered {
		s.invalidation.Invalidate(ctx, cache.MutationProductChanged, cache.EntityIDs{SellerID: sellerID})
	}

	log.Printf("[DEBUG] Seller %s status changed to %s\n", sellerID, status)
	return nil
}

// UpdateStoreProfile edits a seller's store name and description
func (s *SellerService) UpdateStoreProfile(ctx context.Context, sellerID, storeName, storeDescription string) error {
	storeName, ok := validation.TrimAndValidate(storeName)
	if !ok {
		return errors.NewValidationError("store name is required")
	}

	seller, err := s.sellers.FindByID(ctx, sellerID)
	if err != nil {
		return errors.NewDatabaseError("failed to load seller", err)
	}
	if seller == nil {
		return errors.NewNotFoundError("seller not found")
	}

	seller.StoreName = storeName
	seller.StoreDescription = storeDescription

	if err := s.sellers.Save(ctx, seller); err != nil {
		return errors.NewDatabaseError("failed to save store profile", err)
	}

	s.invalidation.Invalidate(ctx, cache.MutationProfileUpdated, cache.EntityIDs{SellerID: sellerID})
	return nil
}
