package service

import (
	"context"
	"log"
	"sort"
	"strings"

	"github.com/google/uuid"
	"marketplace.app/cache"
	"marketplace.app/errors"
	"marketplace.app/models"
	"marketplace.app/repository"
)

// InventoryService places orders against product stock. A reservation is one
// accept/reject unit: either every requested line is decremented or none is.
type InventoryService struct {
	products     ProductRepositoryInterface
	orders       OrderRepositoryInterface
	invalidation *cache.Coordinator
}

// NewInventoryService creates a new inventory service
func NewInventoryService(
	products ProductRepositoryInterface,
	orders OrderRepositoryInterface,
	invalidation *cache.Coordinator,
) *InventoryService {
	return &InventoryService{
		products:     products,
		orders:       orders,
		invalidation: invalidation,
	}
}

// PlaceOrder validates the requested lines, reserves stock atomically,
// persists the order, and invalidates every view the order makes stale.
// The stock error names every product that cannot be satisfied, not just
// the first one.
func (s *InventoryService) PlaceOrder(ctx context.Context, userID string, items []models.OrderLineRequest) (*models.Order, error) {
	if userID == "" {
		return nil, errors.NewValidationError("user id is required")
	}
	if len(items) == 0 {
		return nil, errors.NewValidationError("order must contain at least one item")
	}

	quantities := make(map[string]int, len(items))
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, errors.NewValidationError("quantity must be positive for product " + item.ProductID)
		}
		if _, seen := quantities[item.ProductID]; !seen {
			ids = append(ids, item.ProductID)
		}
		quantities[item.ProductID] += item.Quantity
	}

	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to load products", err)
	}

	byID := make(map[string]models.Product, len(products))
	for _, product := range products {
		byID[product.ID] = product
	}

	var missing, short []string
	for _, id := range ids {
		product, ok := byID[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		if product.Stock < quantities[id] {
			short = append(short, id)
		}
	}
	if len(missing) > 0 {
		return nil, errors.NewNotFoundError("products not found: " + strings.Join(missing, ", "))
	}
	if len(short) > 0 {
		return nil, errors.NewInsufficientStockError("insufficient stock for products: " + strings.Join(short, ", "))
	}

	lines := make([]repository.StockLine, 0, len(ids))
	for _, id := range ids {
		lines = append(lines, repository.StockLine{ProductID: id, Quantity: quantities[id]})
	}

	// The pre-check above can race with concurrent orders; the conditional
	// decrements inside the reservation are what actually prevent oversell.
	if err := s.products.ReserveStock(ctx, lines); err != nil {
		return nil, err
	}

	order := &models.Order{
		ID:     uuid.NewString(),
		UserID: userID,
		Status: "processing",
	}

	sellerSet := make(map[string]struct{})
	for _, item := range items {
		product := byID[item.ProductID]
		order.Items = append(order.Items, models.OrderItem{
			ProductID: product.ID,
			SellerID:  product.SellerID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  item.Quantity,
		})
		order.Total += product.Price * float64(item.Quantity)
		sellerSet[product.SellerID] = struct{}{}
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, errors.NewDatabaseError("failed to create order", err)
	}

	sellers := make([]string, 0, len(sellerSet))
	for sellerID := range sellerSet {
		sellers = append(sellers, sellerID)
	}
	sort.Strings(sellers)

	s.invalidation.Invalidate(ctx, cache.MutationOrderPlaced, cache.EntityIDs{
		SellerIDs:  sellers,
		UserID:     userID,
		OrderID:    order.ID,
		ProductIDs: ids,
	})

	log.Printf("[DEBUG] Placed order %s for user %s with %d lines\n", order.ID, userID, len(order.Items))
	return order, nil
}

// GetUserOrders returns a user's order history, newest first
func (s *InventoryService) GetUserOrders(ctx context.Context, userID string) ([]models.Order, error) {
	orders, err := s.orders.FindByUser(ctx, userID)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to load user orders", err)
	}
	return orders, nil
}
