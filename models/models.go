// Package models defines data structures used throughout the application
package models

import (
	"time"

	"gorm.io/gorm"
)

// Store status values for sellers
const (
	StoreStatusPending      = "pending"
	StoreStatusApproved     = "approved"
	StoreStatusRejected     = "rejected"
	StoreStatusDeregistered = "deregistered"
)

// Product status values
const (
	ProductStatusPending  = "pending"
	ProductStatusApproved = "approved"
	ProductStatusRejected = "rejected"
)

// User represents an account; sellers are users with a store attached.
// SellerRating and NumOfReviews form the incrementally maintained rating
// aggregate; RatingVersion guards it against concurrent lost updates.
type User struct {
	ID               string         `json:"id" gorm:"primaryKey"`
	Name             string         `json:"name" gorm:"not null"`
	Email            string         `json:"email" gorm:"uniqueIndex;not null"`
	Role             string         `json:"role" gorm:"default:user;index:idx_role_status"`
	StoreName        string         `json:"store_name,omitempty"`
	StoreDescription string         `json:"store_description,omitempty"`
	StoreStatus      string         `json:"store_status,omitempty" gorm:"index:idx_role_status"`
	SellerRating     float64        `json:"seller_rating" gorm:"default:0"`
	NumOfReviews     int            `json:"num_of_reviews" gorm:"default:0"`
	RatingVersion    int            `json:"-" gorm:"default:0"`
	StoreCreatedAt   *time.Time     `json:"store_created_at,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `json:"-" gorm:"index"`
}

// RatingEntry is one user's rating of a seller; last write wins per user
type RatingEntry struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	SellerID  string    `json:"seller_id" gorm:"uniqueIndex:idx_seller_user;not null"`
	UserID    string    `json:"user_id" gorm:"uniqueIndex:idx_seller_user;not null"`
	Value     int       `json:"value" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Product represents a catalog item owned by a seller.
// Stock must never go negative; decrements are conditional.
type Product struct {
	ID          string         `json:"id" gorm:"primaryKey"`
	SellerID    string         `json:"seller_id" gorm:"index;not null"`
	SellerName  string         `json:"seller_name"`
	Name        string         `json:"name" gorm:"not null"`
	Description string         `json:"description"`
	Category    string         `json:"category" gorm:"index;not null"`
	Price       float64        `json:"price" gorm:"not null"`
	Stock       int            `json:"stock" gorm:"not null;check:stock >= 0"`
	Status      string         `json:"status" gorm:"default:approved;index"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

// Order represents a placed order with its line items
type Order struct {
	ID        string      `json:"id" gorm:"primaryKey"`
	UserID    string      `json:"user_id" gorm:"index;not null"`
	Total     float64     `json:"total" gorm:"not null"`
	Status    string      `json:"status" gorm:"default:processing"`
	Items     []OrderItem `json:"items" gorm:"foreignKey:OrderID"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// OrderItem is a single product line inside an order
type OrderItem struct {
	ID        uint    `json:"id" gorm:"primaryKey"`
	OrderID   string  `json:"order_id" gorm:"index;not null"`
	ProductID string  `json:"product_id" gorm:"index;not null"`
	SellerID  string  `json:"seller_id" gorm:"index"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity" gorm:"not null"`
}

// Review is a user's review of a product
type Review struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ProductID string    `json:"product_id" gorm:"index;not null"`
	UserID    string    `json:"user_id" gorm:"index;not null"`
	Rating    int       `json:"rating" gorm:"not null"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// --- Derived views (computed from primary entities, cached, never a source of truth) ---

// SellerListItem is one row of the admin seller list view
type SellerListItem struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	StoreName     string     `json:"store_name"`
	Rating        float64    `json:"rating"`
	TotalProducts int        `json:"total_products"`
	TotalOrders   int        `json:"total_orders"`
	TotalRevenue  float64    `json:"total_revenue"`
	Status        string     `json:"status"`
	JoinedDate    *time.Time `json:"joined_date,omitempty"`
}

// StockStatus groups a seller's products by availability
type StockStatus struct {
	InStock    int `json:"in_stock"`
	LowStock   int `json:"low_stock"`
	OutOfStock int `json:"out_of_stock"`
}

// TopProduct is a product ranked by revenue inside analytics views
type TopProduct struct {
	Name    string  `json:"name"`
	Sales   int     `json:"sales"`
	Revenue float64 `json:"revenue"`
}

// RecentOrder is a compact order summary embedded in stats views
type RecentOrder struct {
	ID        string    `json:"id"`
	Total     float64   `json:"total"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// PerformanceMetrics summarizes a seller's conversion figures
type PerformanceMetrics struct {
	ConversionRate    float64 `json:"conversion_rate"`
	AverageOrderValue float64 `json:"average_order_value"`
	ReturnRate        float64 `json:"return_rate"`
}

// SellerStats is the seller dashboard view. MonthlyRevenue and MonthlySales
// are six trailing 30-day buckets ending at now, oldest first.
type SellerStats struct {
	TotalProducts     int            `json:"total_products"`
	TotalOrders       int            `json:"total_orders"`
	TotalRevenue      float64        `json:"total_revenue"`
	MonthlyRevenue    [6]float64     `json:"monthly_revenue"`
	MonthlySales      [6]int         `json:"monthly_sales"`
	RevenueGrowth     float64        `json:"revenue_growth"`
	ProductCategories map[string]int `json:"product_categories"`
	RecentOrders      []RecentOrder  `json:"recent_orders"`
}

// SellerAnalytics is the richer analytics view behind the seller charts
type SellerAnalytics struct {
	TotalProducts        int                `json:"total_products"`
	StockStatus          StockStatus        `json:"stock_status"`
	MonthlyRevenue       [6]float64         `json:"monthly_revenue"`
	MonthlySales         [6]int             `json:"monthly_sales"`
	CategoryDistribution map[string]int     `json:"category_distribution"`
	TopProducts          []TopProduct       `json:"top_products"`
	PerformanceMetrics   PerformanceMetrics `json:"performance_metrics"`
}

// SellerDetail is the admin drill-down view for a single seller
type SellerDetail struct {
	ID                   string             `json:"id"`
	Name                 string             `json:"name"`
	Email                string             `json:"email"`
	StoreName            string             `json:"store_name"`
	StoreDescription     string             `json:"store_description"`
	Rating               float64            `json:"rating"`
	Status               string             `json:"status"`
	TotalProducts        int                `json:"total_products"`
	TotalOrders          int                `json:"total_orders"`
	TotalRevenue         float64            `json:"total_revenue"`
	MonthlyRevenue       [6]float64         `json:"monthly_revenue"`
	MonthlySales         [6]int             `json:"monthly_sales"`
	CategoryDistribution map[string]int     `json:"category_distribution"`
	TopProducts          []TopProduct       `json:"top_products"`
	PerformanceMetrics   PerformanceMetrics `json:"performance_metrics"`
	RecentOrders         []RecentOrder      `json:"recent_orders"`
	Products             []Product          `json:"products"`
}

// SellerSearchResult is one row of the public seller search view
type SellerSearchResult struct {
	ID            string  `json:"id"`
	StoreName     string  `json:"store_name"`
	Rating        float64 `json:"rating"`
	TotalProducts int     `json:"total_products"`
}

// PendingSeller is one row of the admin application queue view
type PendingSeller struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Email            string     `json:"email"`
	StoreName        string     `json:"store_name"`
	StoreDescription string     `json:"store_description"`
	CreatedAt        *time.Time `json:"created_at,omitempty"`
}

// --- Request payloads ---

// RatingRequest represents a rating submission for a seller
type RatingRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Rating int    `json:"rating" binding:"required,min=1,max=5"`
}

// OrderLineRequest is one requested line item of an order
type OrderLineRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

// OrderRequest represents an order placement
type OrderRequest struct {
	UserID string             `json:"user_id" binding:"required"`
	Items  []OrderLineRequest `json:"items" binding:"required,min=1,dive"`
}

// StatusUpdateRequest represents an admin seller status change
type StatusUpdateRequest struct {
	Status string `json:"status" binding:"required,oneof=pending approved rejected deregistered"`
}

// LoginRequest represents an authentication attempt subject to rate limiting
type LoginRequest struct {
	SecretKey string `json:"secret_key" binding:"required"`
}

// ErrorResponse represents an error message structure for API responses
type ErrorResponse struct {
	Error string `json:"error"`
}
