package cache

import (
	"context"
	"log/slog"

	"marketplace.app/metrics"
)

// Mutation identifies a primary-store write that makes cached views stale
type Mutation string

const (
	MutationProductChanged      Mutation = "product-changed"
	MutationSellerStatusChanged Mutation = "seller-status-changed"
	MutationRatingChanged       Mutation = "rating-changed"
	MutationOrderPlaced         Mutation = "order-placed"
	MutationProfileUpdated      Mutation = "profile-updated"
)

// EntityIDs carries the identifiers referenced by a mutation event.
// SellerIDs supplements SellerID for mutations touching several sellers at
// once, such as an order spanning multiple stores.
type EntityIDs struct {
	SellerID   string
	SellerIDs  []string
	UserID     string
	OrderID    string
	ProductIDs []string
}

func (ids EntityIDs) sellerIDs() []string {
	if ids.SellerID == "" {
		return ids.SellerIDs
	}

	sellers := []string{ids.SellerID}
	for _, id := range ids.SellerIDs {
		if id != ids.SellerID {
			sellers = append(sellers, id)
		}
	}
	return sellers
}

// keyTemplate is one parameterized cache-key pattern. Exactly one field is
// set; the coordinator expands it against the mutation's ids.
type keyTemplate struct {
	static     string
	perSeller  func(string) string
	perProduct func(string) string
	perOrder   func(string) string
	perUser    func(string) string
}

func static(key string) keyTemplate                { return keyTemplate{static: key} }
func perSeller(f func(string) string) keyTemplate  { return keyTemplate{perSeller: f} }
func perProduct(f func(string) string) keyTemplate { return keyTemplate{perProduct: f} }
func perOrder(f func(string) string) keyTemplate   { return keyTemplate{perOrder: f} }
func perUser(f func(string) string) keyTemplate    { return keyTemplate{perUser: f} }

// invalidationRules is the single authoritative mapping from mutation kind to
// the cache keys whose content depends on it. Every write path goes through
// this table; per-call-site key lists are not allowed.
//
// Keyed search views (seller-search-{q}) cannot be enumerated from the ids a
// mutation carries; they age out on their own TTL instead.
var invalidationRules = map[Mutation][]keyTemplate{
	MutationProductChanged: {
		static(KeyLatestProducts),
		static(KeyAllProducts),
		static(KeyCategories),
		perProduct(ProductKey),
		perProduct(ReviewsKey),
		perSeller(SellerProductsKey),
		perSeller(SellerStatsKey),
		perSeller(SellerAnalyticsKey),
		perSeller(AdminSellerDetailKey),
		static(KeyAdminSellersList),
		static(KeyAdminStats),
	},
	MutationSellerStatusChanged: {
		static(KeyPendingSellers),
		static(KeyAdminSellersList),
		static(KeyAdminStats),
		perSeller(AdminSellerDetailKey),
		perSeller(SellerProductsKey),
		perSeller(SellerStatsKey),
		perSeller(SellerAnalyticsKey),
	},
	MutationRatingChanged: {
		perSeller(SellerProductsKey),
		perSeller(SellerStatsKey),
		perSeller(SellerAnalyticsKey),
		perSeller(AdminSellerDetailKey),
		static(KeyAdminSellersList),
	},
	MutationOrderPlaced: {
		static(KeyAllOrders),
		static(KeyLatestProducts),
		static(KeyAllProducts),
		perOrder(OrderKey),
		perUser(MyOrdersKey),
		perProduct(ProductKey),
		perSeller(SellerOrdersKey),
		perSeller(SellerProductsKey),
		perSeller(SellerStatsKey),
		perSeller(SellerAnalyticsKey),
		perSeller(AdminSellerDetailKey),
		static(KeyAdminStats),
	},
	MutationProfileUpdated: {
		static(KeyAdminSellersList),
		static(KeyAdminStats),
		perSeller(AdminSellerDetailKey),
	},
}

// Coordinator deletes every cache key whose content depends on a mutation.
// It must run after the primary-store write commits and before the caller's
// response is returned. A failed delete degrades to "stale until TTL expiry"
// and never fails the write path.
type Coordinator struct {
	store Store
	stats *metrics.CacheMetrics
}

func NewCoordinator(store Store) *Coordinator {
	return &Coordinator{
		store: store,
		stats: metrics.NewCacheMetrics("invalidation"),
	}
}

// ExpandKeys resolves the rule for the mutation kind into concrete keys
func ExpandKeys(kind Mutation, ids EntityIDs) []string {
	templates := invalidationRules[kind]
	keys := make([]string, 0, len(templates))

	for _, tmpl := range templates {
		switch {
		case tmpl.static != "":
			keys = append(keys, tmpl.static)
		case tmpl.perSeller != nil:
			for _, sellerID := range ids.sellerIDs() {
				keys = append(keys, tmpl.perSeller(sellerID))
			}
		case tmpl.perProduct != nil:
			for _, productID := range ids.ProductIDs {
				keys = append(keys, tmpl.perProduct(productID))
			}
		case tmpl.perOrder != nil:
			if ids.OrderID != "" {
				keys = append(keys, tmpl.perOrder(ids.OrderID))
			}
		case tmpl.perUser != nil:
			if ids.UserID != "" {
				keys = append(keys, tmpl.perUser(ids.UserID))
			}
		}
	}

	return keys
}

// Invalidate expands the rule for kind and issues one batch delete
func (c *Coordinator) Invalidate(ctx context.Context, kind Mutation, ids EntityIDs) {
	keys := ExpandKeys(kind, ids)
	if len(keys) == 0 {
		return
	}

	c.stats.RecordInvalidation(string(kind))

	if err := c.store.DeleteMany(ctx, keys...); err != nil {
		slog.Warn("cache invalidation failed, entries stale until TTL expiry",
			"mutation", kind, "keys", len(keys), "error", err)
		return
	}

	slog.Debug("cache invalidated", "mutation", kind, "keys", len(keys))
}
