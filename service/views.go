package service

import (
	"context"
	"sort"
	"time"

	"marketplace.app/cache"
	"marketplace.app/config"
	"marketplace.app/errors"
	"marketplace.app/models"
)

// ViewService computes and caches the read-heavy derived views. Every view
// is rebuilt in full from the primary store on a cache miss; nothing here is
// a source of truth.
type ViewService struct {
	accessor *cache.Accessor
	sellers  SellerRepositoryInterface
	products ProductRepositoryInterface
	orders   OrderRepositoryInterface
	reviews  ReviewRepositoryInterface
	ttl      config.CacheConfig
	now      func() time.Time
}

// NewViewService creates a new derived-view service
func NewViewService(
	accessor *cache.Accessor,
	sellers SellerRepositoryInterface,
	products ProductRepositoryInterface,
	orders OrderRepositoryInterface,
	reviews ReviewRepositoryInterface,
	ttl config.CacheConfig,
) *ViewService {
	return &ViewService{
		accessor: accessor,
		sellers:  sellers,
		products: products,
		orders:   orders,
		reviews:  reviews,
		ttl:      ttl,
		now:      time.Now,
	}
}

// GetProduct returns the cached product detail view
func (s *ViewService) GetProduct(ctx context.Context, productID string) (models.Product, error) {
	return cache.GetOrCompute(ctx, s.accessor, cache.ViewProduct, cache.ProductKey(productID), s.ttl.ProductTTLDuration(),
		func(ctx context.Context) (models.Product, error) {
			product, err := s.products.FindByID(ctx, productID)
			if err != nil {
				return models.Product{}, errors.NewDatabaseError("failed to load product", err)
			}
			if product == nil {
				return models.Product{}, errors.NewNotFoundError("product not found")
			}
			return *product, nil
		})
}

// ProductReviews is the cached review view for a product: the entries plus
// the full-rescan aggregate, mean floored to a whole star
type ProductReviews struct {
	Reviews []models.Review `json:"reviews"`
	Rating  int             `json:"rating"`
	Count   int             `json:"count"`
}

// GetProductReviews returns the cached reviews and rating aggregate of a product
func (s *ViewService) GetProductReviews(ctx context.Context, productID string) (ProductReviews, error) {
	return cache.GetOrCompute(ctx, s.accessor, cache.ViewReviews, cache.ReviewsKey(productID), s.ttl.ProductTTLDuration(),
		func(ctx context.Context) (ProductReviews, error) {
			reviews, err := s.reviews.FindByProduct(ctx, productID)
			if err != nil {
				return ProductReviews{}, errors.NewDatabaseError("failed to load reviews", err)
			}
			rating, count, err := s.reviews.AverageForProduct(ctx, productID)
			if err != nil {
				return ProductReviews{}, errors.NewDatabaseError("failed to compute review aggregate", err)
			}

			return ProductReviews{Reviews: reviews, Rating: rating, Count: count}, nil
		})
}

// GetSellerProducts returns the cached list of a seller's products
func (s *ViewService) GetSellerProducts(ctx context.Context, sellerID string) ([]models.Product, error) {
	return cache.GetOrCompute(ctx, s.accessor, cache.ViewSellerProducts, cache.SellerProductsKey(sellerID), s.ttl.SellerTTLDuration(),
		func(ctx context.Context) ([]models.Product, error) {
			products, err := s.products.FindBySeller(ctx, sellerID)
			if err != nil {
				return nil, errors.NewDatabaseError("failed to load seller products", err)
			}
			return products, nil
		})
}

// GetSellerOrders returns the cached list of orders containing a seller's items
func (s *ViewService) GetSellerOrders(ctx context.Context, sellerID string) ([]models.Order, error) {
	return cache.GetOrCompute(ctx, s.accessor, cache.ViewSellerOrders, cache.SellerOrdersKey(sellerID), s.ttl.SellerTTLDuration(),
		func(ctx context.Context) ([]models.Order, error) {
			orders, err := s.orders.FindBySeller(ctx, sellerID)
			if err != nil {
				return nil, errors.NewDatabaseError("failed to load seller orders", err)
			}
			return orders, nil
		})
}

// GetSellerList returns the cached admin seller list with per-seller rollups
func (s *ViewService) GetSellerList(ctx context.Context) ([]models.SellerListItem, error) {
	return cache.GetOrCompute(ctx, s.accessor, cache.ViewSellerList, cache.KeyAdminSellersList, s.ttl.SellerTTLDuration(),
		func(ctx context.Context) ([]models.SellerListItem, error) {
			sellers, err := s.sellers.FindApprovedSellers(ctx)
			if err != nil {
				return nil, errors.NewDatabaseError("failed to load sellers", err)
			}

			items := make([]models.SellerListItem, 0, len(sellers))
			for _, seller := range sellers {
				products, err := s.products.FindBySeller(ctx, seller.ID)
				if err != nil {
					return nil, errors.NewDatabaseError("failed to load seller products", err)
				}
				orders, err := s.orders.FindBySeller(ctx, seller.ID)
				if err != nil {
					return nil, errors.NewDatabaseError("failed to load seller orders", err)
				}

				items = append(items, models.SellerListItem{
					ID:            seller.ID,
					Name:          seller.Name,
					StoreName:     seller.StoreName,
					Rating:        seller.SellerRating,
					TotalProducts: len(products),
					TotalOrders:   len(orders),
					TotalRevenue:  orderTotal(orders),
					Status:        seller.StoreStatus,
					JoinedDate:    seller.StoreCreatedAt,
				})
			}

			return items, nil
		})
}

// GetPendingSellers returns the cached admin application queue
func (s *ViewService) GetPendingSellers(ctx context.Context) ([]models.PendingSeller, error) {
	return cache.GetOrCompute(ctx, s.accessor, cache.ViewPendingSellers, cache.KeyPendingSellers, s.ttl.SellerTTLDuration(),
		func(ctx context.Context) ([]models.PendingSeller, error) {
			sellers, err := s.sellers.FindPendingSellers(ctx)
			if err != nil {
				return nil, errors.NewDatabaseError("failed to load pending sellers", err)
			}

			pending := make([]models.PendingSeller, 0, len(sellers))
			for _, seller := range sellers {
				pending = append(pending, models.PendingSeller{
					ID:               seller.ID,
					Name:             seller.Name,
					Email:            seller.Email,
					StoreName:        seller.StoreName,
					StoreDescription: seller.StoreDescription,
					CreatedAt:        seller.StoreCreatedAt,
				})
			}

			return pending, nil
		})
}

// SearchSellers returns the cached seller search view for a query
func (s *ViewService) SearchSellers(ctx context.Context, query string) ([]models.SellerSearchResult, error) {
	if query == "" {
		return nil, errors.NewValidationError("search query is required")
	}

	return cache.GetOrCompute(ctx, s.accessor, cache.ViewSellerSearch, cache.SellerSearchKey(query), s.ttl.SearchTTLDuration(),
		func(ctx context.Context) ([]models.SellerSearchResult, error) {
			sellers, err := s.sellers.SearchApproved(ctx, query)
			if err != nil {
				return nil, errors.NewDatabaseError("failed to search sellers", err)
			}

			results := make([]models.SellerSearchResult, 0, len(sellers))
			for _, seller := range sellers {
				count, err := s.products.CountApprovedBySeller(ctx, seller.ID)
				if err != nil {
					return nil, errors.NewDatabaseError("failed to count seller products", err)
				}

				results = append(results, models.SellerSearchResult{
					ID:            seller.ID,
					StoreName:     seller.StoreName,
					Rating:        seller.SellerRating,
					TotalProducts: int(count),
				})
			}

			return results, nil
		})
}

// GetSellerStats returns the cached seller dashboard view
func (s *ViewService) GetSellerStats(ctx context.Context, sellerID string) (models.SellerStats, error) {
	return cache.GetOrCompute(ctx, s.accessor, cache.ViewSellerStats, cache.SellerStatsKey(sellerID), s.ttl.StatsTTLDuration(),
		func(ctx context.Context) (models.SellerStats, error) {
			_, products, orders, err := s.loadSeller(ctx, sellerID)
			if err != nil {
				return models.SellerStats{}, err
			}

			revenue, salesCount := RevenueBuckets(orders, s.now())

			stats := models.SellerStats{
				TotalProducts:     len(products),
				TotalOrders:       len(orders),
				TotalRevenue:      orderTotal(orders),
				MonthlyRevenue:    revenue,
				MonthlySales:      salesCount,
				RevenueGrowth:     CalculatePercentage(revenue[revenueBucketCount-1], revenue[revenueBucketCount-2]),
				ProductCategories: categoryDistribution(products),
				RecentOrders:      recentOrders(orders, 5),
			}

			return stats, nil
		})
}

// GetSellerAnalytics returns the cached analytics view behind the charts
func (s *ViewService) GetSellerAnalytics(ctx context.Context, sellerID string) (models.SellerAnalytics, error) {
	return cache.GetOrCompute(ctx, s.accessor, cache.ViewSellerAnalytics, cache.SellerAnalyticsKey(sellerID), s.ttl.AnalyticsTTLDuration(),
		func(ctx context.Context) (models.SellerAnalytics, error) {
			_, products, orders, err := s.loadSeller(ctx, sellerID)
			if err != nil {
				return models.SellerAnalytics{}, err
			}

			revenue, salesCount := RevenueBuckets(orders, s.now())

			analytics := models.SellerAnalytics{
				TotalProducts:        len(products),
				StockStatus:          stockStatus(products),
				MonthlyRevenue:       revenue,
				MonthlySales:         salesCount,
				CategoryDistribution: categoryDistribution(products),
				TopProducts:          topProducts(products, orders, 5),
				PerformanceMetrics:   performanceMetrics(products, orders),
			}

			return analytics, nil
		})
}

// GetSellerDetail returns the cached admin drill-down view for a seller
func (s *ViewService) GetSellerDetail(ctx context.Context, sellerID string) (models.SellerDetail, error) {
	return cache.GetOrCompute(ctx, s.accessor, cache.ViewSellerDetail, cache.AdminSellerDetailKey(sellerID), s.ttl.SellerTTLDuration(),
		func(ctx context.Context) (models.SellerDetail, error) {
			seller, products, orders, err := s.loadSeller(ctx, sellerID)
			if err != nil {
				return models.SellerDetail{}, err
			}

			revenue, salesCount := RevenueBuckets(orders, s.now())

			detail := models.SellerDetail{
				ID:                   seller.ID,
				Name:                 seller.Name,
				Email:                seller.Email,
				StoreName:            seller.StoreName,
				StoreDescription:     seller.StoreDescription,
				Rating:               seller.SellerRating,
				Status:               seller.StoreStatus,
				TotalProducts:        len(products),
				TotalOrders:          len(orders),
				TotalRevenue:         orderTotal(orders),
				MonthlyRevenue:       revenue,
				MonthlySales:         salesCount,
				CategoryDistribution: categoryDistribution(products),
				TopProducts:          topProducts(products, orders, 5),
				PerformanceMetrics:   performanceMetrics(products, orders),
				RecentOrders:         recentOrders(orders, 10),
				Products:             products,
			}

			return detail, nil
		})
}

// loadSeller fetches a seller with its products and orders, mapping an
// absent seller to NotFound
func (s *ViewService) loadSeller(ctx context.Context, sellerID string) (*models.User, []models.Product, []models.Order, error) {
	seller, err := s.sellers.FindByID(ctx, sellerID)
	if err != nil {
		return nil, nil, nil, errors.NewDatabaseError("failed to load seller", err)
	}
	if seller == nil {
		return nil, nil, nil, errors.NewNotFoundError("seller not found")
	}

	products, err := s.products.FindBySeller(ctx, sellerID)
	if err != nil {
		return nil, nil, nil, errors.NewDatabaseError("failed to load seller products", err)
	}

	orders, err := s.orders.FindBySeller(ctx, sellerID)
	if err != nil {
		return nil, nil, nil, errors.NewDatabaseError("failed to load seller orders", err)
	}

	return seller, products, orders, nil
}

func orderTotal(orders []models.Order) float64 {
	var total float64
	for _, order := range orders {
		total += order.Total
	}
	return total
}

func categoryDistribution(products []models.Product) map[string]int {
	distribution := make(map[string]int)
	for _, product := range products {
		distribution[product.Category]++
	}
	return distribution
}

func stockStatus(products []models.Product) models.StockStatus {
	var status models.StockStatus
	for _, product := range products {
		switch {
		case product.Stock == 0:
			status.OutOfStock++
		case product.Stock <= 10:
			status.LowStock++
		default:
			status.InStock++
		}
	}
	return status
}

// recentOrders returns the last n orders; orders arrive oldest first
func recentOrders(orders []models.Order, n int) []models.RecentOrder {
	start := len(orders) - n
	if start < 0 {
		start = 0
	}

	recent := make([]models.RecentOrder, 0, len(orders)-start)
	for _, order := range orders[start:] {
		recent = append(recent, models.RecentOrder{
			ID:        order.ID,
			Total:     order.Total,
			Status:    order.Status,
			CreatedAt: order.CreatedAt,
		})
	}
	return recent
}

// topProducts ranks a seller's products by the revenue of order lines that
// reference them, descending, keeping the first n
func topProducts(products []models.Product, orders []models.Order, n int) []models.TopProduct {
	ranked := make([]models.TopProduct, 0, len(products))

	for _, product := range products {
		var sales int
		var revenue float64
		for _, order := range orders {
			for _, item := range order.Items {
				if item.ProductID == product.ID {
					sales++
					revenue += item.Price * float64(item.Quantity)
				}
			}
		}

		ranked = append(ranked, models.TopProduct{
			Name:    product.Name,
			Sales:   sales,
			Revenue: revenue,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Revenue > ranked[j].Revenue
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

func performanceMetrics(products []models.Product, orders []models.Order) models.PerformanceMetrics {
	productCount := len(products)
	if productCount == 0 {
		productCount = 1
	}

	metrics := models.PerformanceMetrics{
		ConversionRate: float64(len(orders)) / float64(productCount) * 100,
	}
	if len(orders) > 0 {
		metrics.AverageOrderValue = orderTotal(orders) / float64(len(orders))
	}
	return metrics
}
