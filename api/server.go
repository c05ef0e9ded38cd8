// Package api implements the HTTP interface of the application
package api

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
	"marketplace.app/config"
	apperrors "marketplace.app/errors"
	"marketplace.app/models"
	"marketplace.app/service"
)

// Server represents the HTTP server and API handler
type Server struct {
	router           *gin.Engine
	db               *gorm.DB
	config           *config.Config
	viewService      *service.ViewService
	ratingService    *service.RatingService
	sellerService    *service.SellerService
	inventoryService *service.InventoryService
	loginLimiter     *service.LoginLimiter
}

// NewServer creates and configures a new HTTP server
func NewServer(
	db *gorm.DB,
	config *config.Config,
	viewService *service.ViewService,
	ratingService *service.RatingService,
	sellerService *service.SellerService,
	inventoryService *service.InventoryService,
	loginLimiter *service.LoginLimiter,
) *Server {
	router := gin.Default()

	server := &Server{
		router:           router,
		db:               db,
		config:           config,
		viewService:      viewService,
		ratingService:    ratingService,
		sellerService:    sellerService,
		inventoryService: inventoryService,
		loginLimiter:     loginLimiter,
	}

	registerValidations()
	server.setupRoutes()
	return server
}

// registerValidations installs custom binding rules. "notblank" rejects
// strings that are empty after trimming, which "required" alone lets through.
func registerValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
	}
}

func (s *Server) setupRoutes() {
	api := s.router.Group("/api")
	{
		api.GET("/products/:id", s.getProduct)
		api.GET("/products/:id/reviews", s.getProductReviews)

		api.GET("/sellers", s.getSellerList)
		api.GET("/sellers/pending", s.getPendingSellers)
		api.GET("/sellers/search", s.searchSellers)
		api.GET("/sellers/:id", s.getSellerDetail)
		api.GET("/sellers/:id/products", s.getSellerProducts)
		api.GET("/sellers/:id/orders", s.getSellerOrders)
		api.GET("/sellers/:id/stats", s.getSellerStats)
		api.GET("/sellers/:id/analytics", s.getSellerAnalytics)
		api.POST("/sellers/:id/ratings", s.submitRating)
		api.PATCH("/sellers/:id/status", s.updateSellerStatus)
		api.PUT("/sellers/:id/profile", s.updateStoreProfile)

		api.POST("/users/:id/store", s.applyForStore)
		api.GET("/users/:id/orders", s.getUserOrders)

		api.POST("/orders", s.placeOrder)

		api.POST("/admin/login", s.adminLogin)
	}

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// Start begins the HTTP server
func (s *Server) Start() error {
	return s.router.Run(fmt.Sprintf(":%d", s.config.Server.Port))
}

// GetRouter returns the router for testing purposes
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

func (s *Server) getProduct(c *gin.Context) {
	product, err := s.viewService.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

func (s *Server) getProductReviews(c *gin.Context) {
	reviews, err := s.viewService.GetProductReviews(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, reviews)
}

func (s *Server) getSellerList(c *gin.Context) {
	sellers, err := s.viewService.GetSellerList(c.Request.Context())
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, sellers)
}

func (s *Server) getPendingSellers(c *gin.Context) {
	pending, err := s.viewService.GetPendingSellers(c.Request.Context())
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, pending)
}

func (s *Server) searchSellers(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		s.handleError(c, apperrors.NewValidationError("q parameter is required"))
		return
	}

	results, err := s.viewService.SearchSellers(c.Request.Context(), query)
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, results)
}

func (s *Server) getSellerDetail(c *gin.Context) {
	detail, err := s.viewService.GetSellerDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

func (s *Server) getSellerProducts(c *gin.Context) {
	products, err := s.viewService.GetSellerProducts(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, products)
}

func (s *Server) getSellerOrders(c *gin.Context) {
	orders, err := s.viewService.GetSellerOrders(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, orders)
}

func (s *Server) getSellerStats(c *gin.Context) {
	stats, err := s.viewService.GetSellerStats(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (s *Server) getSellerAnalytics(c *gin.Context) {
	analytics, err := s.viewService.GetSellerAnalytics(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, analytics)
}

func (s *Server) submitRating(c *gin.Context) {
	var req models.RatingRequest
	if err := c.ShouldBind(&req); err != nil {
		slog.Error("Request binding error", "error", err)
		s.handleError(c, apperrors.NewValidationError("invalid request format"))
		return
	}

	sellerID := c.Param("id")
	slog.Debug("Rating submission received", "seller", sellerID, "user", req.UserID, "rating", req.Rating)

	if err := s.ratingService.SubmitRating(c.Request.Context(), sellerID, req.UserID, req.Rating); err != nil {
		slog.Error("Rating submission error", "error", err, "seller", sellerID)
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Rating submitted successfully"})
}

func (s *Server) updateSellerStatus(c *gin.Context) {
	var req models.StatusUpdateRequest
	if err := c.ShouldBind(&req); err != nil {
		slog.Error("Request binding error", "error", err)
		s.handleError(c, apperrors.NewValidationError("invalid request format"))
		return
	}

	sellerID := c.Param("id")
	slog.Debug("Seller status update", "seller", sellerID, "status", req.Status)

	if err := s.sellerService.UpdateSellerStatus(c.Request.Context(), sellerID, req.Status); err != nil {
		slog.Error("Seller status update error", "error", err, "seller", sellerID)
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Seller status updated"})
}

func (s *Server) updateStoreProfile(c *gin.Context) {
	var req struct {
		StoreName        string `json:"store_name" binding:"required,notblank"`
		StoreDescription string `json:"store_description"`
	}
	if err := c.ShouldBind(&req); err != nil {
		s.handleError(c, apperrors.NewValidationError("invalid request format"))
		return
	}

	if err := s.sellerService.UpdateStoreProfile(c.Request.Context(), c.Param("id"), req.StoreName, req.StoreDescription); err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Store profile updated"})
}

func (s *Server) applyForStore(c *gin.Context) {
	var req struct {
		StoreName        string `json:"store_name" binding:"required,notblank"`
		StoreDescription string `json:"store_description"`
	}
	if err := c.ShouldBind(&req); err != nil {
		s.handleError(c, apperrors.NewValidationError("invalid request format"))
		return
	}

	if err := s.sellerService.ApplyForStore(c.Request.Context(), c.Param("id"), req.StoreName, req.StoreDescription); err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Store application submitted"})
}

func (s *Server) getUserOrders(c *gin.Context) {
	orders, err := s.inventoryService.GetUserOrders(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, orders)
}

func (s *Server) placeOrder(c *gin.Context) {
	var req models.OrderRequest
	if err := c.ShouldBind(&req); err != nil {
		slog.Error("Request binding error", "error", err)
		s.handleError(c, apperrors.NewValidationError("invalid request format"))
		return
	}

	slog.Debug("Order placement received", "user", req.UserID, "lines", len(req.Items))

	order, err := s.inventoryService.PlaceOrder(c.Request.Context(), req.UserID, req.Items)
	if err != nil {
		slog.Error("Order placement error", "error", err, "user", req.UserID)
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

// adminLogin authenticates against the shared admin secret. Attempts are
// counted per client IP; a successful login resets the counter so earlier
// failures stop counting against the client.
func (s *Server) adminLogin(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		s.handleError(c, apperrors.NewValidationError("invalid request format"))
		return
	}

	subject := c.ClientIP()
	if err := s.loginLimiter.CheckAndIncrement(c.Request.Context(), subject); err != nil {
		slog.Warn("Login attempt rejected", "subject", subject, "error", err)
		s.handleError(c, err)
		return
	}

	secret := s.config.Server.AdminSecret
	if secret == "" || subtle.ConstantTimeCompare([]byte(req.SecretKey), []byte(secret)) != 1 {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "invalid credentials"})
		return
	}

	s.loginLimiter.Reset(c.Request.Context(), subject)
	c.JSON(http.StatusOK, gin.H{"message": "Login successful"})
}

// handleError handles different types of application errors
func (s *Server) handleError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	var statusCode int
	var message string

	if errors.As(err, &appErr) {
		switch appErr.Type {
		case apperrors.ValidationError:
			statusCode = http.StatusBadRequest
			message = appErr.Message
		case apperrors.NotFoundError:
			statusCode = http.StatusNotFound
			message = appErr.Message
		case apperrors.InsufficientStockError:
			statusCode = http.StatusConflict
			message = appErr.Message
		case apperrors.VersionConflictError:
			statusCode = http.StatusConflict
			message = appErr.Message
		case apperrors.TooManyAttemptsError:
			statusCode = http.StatusTooManyRequests
			message = appErr.Message
		case apperrors.CacheUnavailableError:
			statusCode = http.StatusServiceUnavailable
			message = "Cache unavailable"
		case apperrors.DatabaseError:
			statusCode = http.StatusInternalServerError
			message = "Internal server error"
		default:
			statusCode = http.StatusInternalServerError
			message = "Internal server error"
		}
	} else {
		statusCode = http.StatusInternalServerError
		message = "Internal server error"
	}

	c.JSON(statusCode, models.ErrorResponse{Error: message})
}
