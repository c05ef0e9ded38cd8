package repository

import (
	"context"
	"log"

	"gorm.io/gorm"
	"marketplace.app/models"
)

// OrderRepository handles data access operations for orders
type OrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new repository for order data
func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create persists a new order with its line items
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	result := r.db.WithContext(ctx).Create(order)
	if result.Error != nil {
		log.Printf("[ERROR] Database error when creating order: %v\n", result.Error)
		return result.Error
	}

	log.Printf("[DEBUG] Created order %s with %d items\n", order.ID, len(order.Items))
	return nil
}

// FindBySeller retrieves all orders containing at least one of the seller's
// items, oldest first
func (r *OrderRepository) FindBySeller(ctx context.Context, sellerID string) ([]models.Order, error) {
	var orders []models.Order
	result := r.db.WithContext(ctx).
		Joins("JOIN order_items ON order_items.order_id = orders.id").
		Where("order_items.seller_id = ?", sellerID).
		Distinct().
		Order("orders.created_at ASC").
		Preload("Items").
		Find(&orders)
	if result.Error != nil {
		log.Printf("[ERROR] Database error when finding seller orders: %v\n", result.Error)
		return nil, result.Error
	}

	log.Printf("[DEBUG] Found %d orders for seller %s\n", len(orders), sellerID)
	return orders, nil
}

// FindByUser retrieves a user's orders, newest first
func (r *OrderRepository) FindByUser(ctx context.Context, userID string) ([]models.Order, error) {
	var orders []models.Order
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Preload("Items").
		Find(&orders)
	if result.Error != nil {
		log.Printf("[ERROR] Database error when finding user orders: %v\n", result.Error)
		return nil, result.Error
	}

	return orders, nil
}
