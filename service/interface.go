package service

import (
	"context"

	"marketplace.app/models"
	"marketplace.app/repository"
)

// SellerRepositoryInterface defines the interface for seller data operations
type SellerRepositoryInterface interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindApprovedSellers(ctx context.Context) ([]models.User, error)
	FindPendingSellers(ctx context.Context) ([]models.User, error)
	SearchApproved(ctx context.Context, query string) ([]models.User, error)
	Save(ctx context.Context, user *models.User) error
	FindRatingEntry(ctx context.Context, sellerID, userID string) (*models.RatingEntry, error)
	UpdateAggregate(ctx context.Context, sellerID string, expectedVersion int, mean float64, count int, entry *models.RatingEntry) error
}

// ProductRepositoryInterface defines the interface for product data operations
type ProductRepositoryInterface interface {
	FindByID(ctx context.Context, id string) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.Product, error)
	FindBySeller(ctx context.Context, sellerID string) ([]models.Product, error)
	FindApprovedBySeller(ctx context.Context, sellerID string) ([]models.Product, error)
	CountApprovedBySeller(ctx context.Context, sellerID string) (int64, error)
	DeleteBySeller(ctx context.Context, sellerID string) error
	ReserveStock(ctx context.Context, lines []repository.StockLine) error
}

// OrderRepositoryInterface defines the interface for order data operations
type OrderRepositoryInterface interface {
	Create(ctx context.Context, order *models.Order) error
	FindBySeller(ctx context.Context, sellerID string) ([]models.Order, error)
	FindByUser(ctx context.Context, userID string) ([]models.Order, error)
}

// ReviewRepositoryInterface defines the interface for review data operations
type ReviewRepositoryInterface interface {
	FindByProduct(ctx context.Context, productID string) ([]models.Review, error)
	AverageForProduct(ctx context.Context, productID string) (rating int, count int, err error)
}

// Ensure implementations satisfy interfaces
var _ SellerRepositoryInterface = (*repository.SellerRepository)(nil)
var _ ProductRepositoryInterface = (*repository.ProductRepository)(nil)
var _ OrderRepositoryInterface = (*repository.OrderRepository)(nil)
var _ ReviewRepositoryInterface = (*repository.ReviewRepository)(nil)
