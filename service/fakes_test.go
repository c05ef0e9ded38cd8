package service

import (
	"context"
	"strings"
	"sync"

	apperrors "marketplace.app/errors"
	"marketplace.app/models"
	"marketplace.app/repository"
)

// In-memory repositories with the same concurrency semantics as the real
// ones: the seller fake enforces the rating version check and the product
// fake applies reservations as one all-or-nothing unit under a single lock.
// Goroutine-based tests need those semantics without a shared database.

type fakeSellerRepo struct {
	mu      sync.Mutex
	sellers map[string]*models.User
	entries map[string]*models.RatingEntry
	calls   map[string]int
}

func newFakeSellerRepo() *fakeSellerRepo {
	return &fakeSellerRepo{
		sellers: make(map[string]*models.User),
		entries: make(map[string]*models.RatingEntry),
		calls:   make(map[string]int),
	}
}

func (f *fakeSellerRepo) put(seller models.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := seller
	f.sellers[seller.ID] = &copied
}

func (f *fakeSellerRepo) get(id string) models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.sellers[id]
}

func (f *fakeSellerRepo) callCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *fakeSellerRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["FindByID"]++

	seller, ok := f.sellers[id]
	if !ok {
		return nil, nil
	}
	copied := *seller
	return &copied, nil
}

func (f *fakeSellerRepo) FindApprovedSellers(ctx context.Context) ([]models.User, error) {
	return f.findByStatus("FindApprovedSellers", models.StoreStatusApproved), nil
}

func (f *fakeSellerRepo) FindPendingSellers(ctx context.Context) ([]models.User, error) {
	return f.findByStatus("FindPendingSellers", models.StoreStatusPending), nil
}

func (f *fakeSellerRepo) findByStatus(method, status string) []models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[method]++

	var result []models.User
	for _, seller := range f.sellers {
		if seller.StoreStatus == status {
			result = append(result, *seller)
		}
	}
	return result
}

func (f *fakeSellerRepo) SearchApproved(ctx context.Context, query string) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["SearchApproved"]++

	var result []models.User
	for _, seller := range f.sellers {
		if seller.StoreStatus == models.StoreStatusApproved &&
			strings.Contains(strings.ToLower(seller.StoreName), strings.ToLower(query)) {
			result = append(result, *seller)
		}
	}
	return result, nil
}

func (f *fakeSellerRepo) Save(ctx context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["Save"]++

	copied := *user
	f.sellers[user.ID] = &copied
	return nil
}

func (f *fakeSellerRepo) FindRatingEntry(ctx context.Context, sellerID, userID string) (*models.RatingEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entry, ok := f.entries[sellerID+"/"+userID]
	if !ok {
		return nil, nil
	}
	copied := *entry
	return &copied, nil
}

func (f *fakeSellerRepo) UpdateAggregate(ctx context.Context, sellerID string, expectedVersion int, mean float64, count int, entry *models.RatingEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	seller, ok := f.sellers[sellerID]
	if !ok {
		return apperrors.NewNotFoundError("seller not found")
	}
	if seller.RatingVersion != expectedVersion {
		return apperrors.NewVersionConflictError("rating aggregate changed concurrently")
	}

	seller.SellerRating = mean
	seller.NumOfReviews = count
	seller.RatingVersion = expectedVersion + 1

	copied := *entry
	f.entries[entry.SellerID+"/"+entry.UserID] = &copied
	return nil
}

type fakeProductRepo struct {
	mu       sync.Mutex
	products map[string]*models.Product
	order    []string
	calls    map[string]int
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{
		products: make(map[string]*models.Product),
		calls:    make(map[string]int),
	}
}

func (f *fakeProductRepo) put(product models.Product) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.products[product.ID]; !exists {
		f.order = append(f.order, product.ID)
	}
	copied := product
	f.products[product.ID] = &copied
}

func (f *fakeProductRepo) stock(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.products[id].Stock
}

func (f *fakeProductRepo) callCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *fakeProductRepo) FindByID(ctx context.Context, id string) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["FindByID"]++

	product, ok := f.products[id]
	if !ok {
		return nil, nil
	}
	copied := *product
	return &copied, nil
}

func (f *fakeProductRepo) FindByIDs(ctx context.Context, ids []string) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var result []models.Product
	for _, id := range ids {
		if product, ok := f.products[id]; ok {
			result = append(result, *product)
		}
	}
	return result, nil
}

func (f *fakeProductRepo) FindBySeller(ctx context.Context, sellerID string) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["FindBySeller"]++

	var result []models.Product
	for _, id := range f.order {
		if f.products[id].SellerID == sellerID {
			result = append(result, *f.products[id])
		}
	}
	return result, nil
}

func (f *fakeProductRepo) FindApprovedBySeller(ctx context.Context, sellerID string) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var result []models.Product
	for _, id := range f.order {
		product := f.products[id]
		if product.SellerID == sellerID && product.Status == models.ProductStatusApproved {
			result = append(result, *product)
		}
	}
	return result, nil
}

func (f *fakeProductRepo) CountApprovedBySeller(ctx context.Context, sellerID string) (int64, error) {
	approved, _ := f.FindApprovedBySeller(ctx, sellerID)
	return int64(len(approved)), nil
}

func (f *fakeProductRepo) DeleteBySeller(ctx context.Context, sellerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["DeleteBySeller"]++

	kept := f.order[:0]
	for _, id := range f.order {
		if f.products[id].SellerID == sellerID {
			delete(f.products, id)
			continue
		}
		kept = append(kept, id)
	}
	f.order = kept
	return nil
}

func (f *fakeProductRepo) ReserveStock(ctx context.Context, lines []repository.StockLine) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var short []string
	for _, line := range lines {
		product, ok := f.products[line.ProductID]
		if !ok || product.Stock < line.Quantity {
			short = append(short, line.ProductID)
		}
	}
	if len(short) > 0 {
		return apperrors.NewInsufficientStockError(
			"insufficient stock for products: " + strings.Join(short, ", "))
	}

	for _, line := range lines {
		f.products[line.ProductID].Stock -= line.Quantity
	}
	return nil
}

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders []models.Order
	calls  map[string]int
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{calls: make(map[string]int)}
}

func (f *fakeOrderRepo) put(order models.Order) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders = append(f.orders, order)
}

func (f *fakeOrderRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.orders)
}

func (f *fakeOrderRepo) callCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *fakeOrderRepo) Create(ctx context.Context, order *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["Create"]++
	f.orders = append(f.orders, *order)
	return nil
}

func (f *fakeOrderRepo) FindBySeller(ctx context.Context, sellerID string) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["FindBySeller"]++

	var result []models.Order
	for _, order := range f.orders {
		for _, item := range order.Items {
			if item.SellerID == sellerID {
				result = append(result, order)
				break
			}
		}
	}
	return result, nil
}

func (f *fakeOrderRepo) FindByUser(ctx context.Context, userID string) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var result []models.Order
	for i := len(f.orders) - 1; i >= 0; i-- {
		if f.orders[i].UserID == userID {
			result = append(result, f.orders[i])
		}
	}
	return result, nil
}

type fakeReviewRepo struct {
	mu      sync.Mutex
	reviews map[string][]models.Review
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{reviews: make(map[string][]models.Review)}
}

func (f *fakeReviewRepo) put(review models.Review) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reviews[review.ProductID] = append(f.reviews[review.ProductID], review)
}

func (f *fakeReviewRepo) FindByProduct(ctx context.Context, productID string) ([]models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Review(nil), f.reviews[productID]...), nil
}

func (f *fakeReviewRepo) AverageForProduct(ctx context.Context, productID string) (int, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	reviews := f.reviews[productID]
	if len(reviews) == 0 {
		return 0, 0, nil
	}

	total := 0
	for _, review := range reviews {
		total += review.Rating
	}
	return total / len(reviews), len(reviews), nil
}

var (
	_ SellerRepositoryInterface  = (*fakeSellerRepo)(nil)
	_ ProductRepositoryInterface = (*fakeProductRepo)(nil)
	_ OrderRepositoryInterface   = (*fakeOrderRepo)(nil)
	_ ReviewRepositoryInterface  = (*fakeReviewRepo)(nil)
)
