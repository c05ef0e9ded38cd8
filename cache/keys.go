package cache

// Cache key names. These are load-bearing: the same strings are used by the
// invalidation rules, so a view key and its invalidation can never drift apart.

// Keys with no parameter
const (
	KeyLatestProducts   = "latest-products"
	KeyAllProducts      = "all-products"
	KeyCategories       = "categories"
	KeyAllOrders        = "all-orders"
	KeyAdminSellersList = "admin-sellers-list"
	KeyAdminStats       = "admin-stats"
	KeyPendingSellers   = "pending-sellers"
)

// View labels used for metrics
const (
	ViewProduct         = "product"
	ViewReviews         = "reviews"
	ViewSellerList      = "seller_list"
	ViewSellerDetail    = "seller_detail"
	ViewSellerProducts  = "seller_products"
	ViewSellerOrders    = "seller_orders"
	ViewSellerStats     = "seller_stats"
	ViewSellerAnalytics = "seller_analytics"
	ViewSellerSearch    = "seller_search"
	ViewPendingSellers  = "pending_sellers"
)

func ProductKey(productID string) string {
	return "product-" + productID
}

func ReviewsKey(productID string) string {
	return "reviews-" + productID
}

func SellerProductsKey(sellerID string) string {
	return "seller-products-" + sellerID
}

func SellerStatsKey(sellerID string) string {
	return "seller-stats-" + sellerID
}

func SellerAnalyticsKey(sellerID string) string {
	return "seller-analytics-" + sellerID
}

func SellerOrdersKey(sellerID string) string {
	return "seller-orders-" + sellerID
}

func SellerSearchKey(query string) string {
	return "seller-search-" + query
}

func AdminSellerDetailKey(sellerID string) string {
	return "admin-seller-detail-" + sellerID
}

func OrderKey(orderID string) string {
	return "order-" + orderID
}

func MyOrdersKey(userID string) string {
	return "my-orders-" + userID
}

func LoginAttemptsKey(identity string) string {
	return "login-attempts:" + identity
}
