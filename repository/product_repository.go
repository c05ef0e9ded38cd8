package repository

import (
	"context"
	"errors"
	"log"
	"strings"

	"gorm.io/gorm"
	apperrors "marketplace.app/errors"
	"marketplace.app/models"
)

// StockLine is one (product, quantity) pair of a reservation
type StockLine struct {
	ProductID string
	Quantity  int
}

// ProductRepository handles data access operations for products
type ProductRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new repository for product data
func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// FindByID retrieves a product by its ID; returns (nil, nil) when absent
func (r *ProductRepository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	result := r.db.WithContext(ctx).First(&product, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		log.Printf("[ERROR] Database error when finding product: %v\n", result.Error)
		return nil, result.Error
	}

	return &product, nil
}

// FindByIDs retrieves the products for a set of ids
func (r *ProductRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Product, error) {
	var products []models.Product
	result := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products)
	if result.Error != nil {
		log.Printf("[ERROR] Database error when finding products by ids: %v\n", result.Error)
		return nil, result.Error
	}

	return products, nil
}

// FindBySeller retrieves all products belonging to a seller, newest first
func (r *ProductRepository) FindBySeller(ctx context.Context, sellerID string) ([]models.Product, error) {
	var products []models.Product
	result := r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("created_at DESC").
		Find(&products)
	if result.Error != nil {
		log.Printf("[ERROR] Database error when finding seller products: %v\n", result.Error)
		return nil, result.Error
	}

	log.Printf("[DEBUG] Found %d products for seller %s\n", len(products), sellerID)
	return products, nil
}

// FindApprovedBySeller retrieves a seller's approved products, newest first
func (r *ProductRepository) FindApprovedBySeller(ctx context.Context, sellerID string) ([]models.Product, error) {
	var products []models.Product
	result := r.db.WithContext(ctx).
		Where("seller_id = ? AND status = ?", sellerID, models.ProductStatusApproved).
		Order("created_at DESC").
		Find(&products)
	if result.Error != nil {
		log.Printf("[ERROR] Database error when finding approved seller products: %v\n", result.Error)
		return nil, result.Error
	}

	return products, nil
}

// CountApprovedBySeller counts a seller's approved products
func (r *ProductRepository) CountApprovedBySeller(ctx context.Context, sellerID string) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("seller_id = ? AND status = ?", sellerID, models.ProductStatusApproved).
		Count(&count)
	if result.Error != nil {
		log.Printf("[ERROR] Database error when counting seller products: %v\n", result.Error)
		return 0, result.Error
	}

	return count, nil
}

// Create persists a new product
func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	result := r.db.WithContext(ctx).Create(product)
	if result.Error != nil {
		log.Printf("[ERROR] Database error when creating product: %v\n", result.Error)
		return result.Error
	}
	return nil
}

// Save persists changes to a product
func (r *ProductRepository) Save(ctx context.Context, product *models.Product) error {
	result := r.db.WithContext(ctx).Save(product)
	if result.Error != nil {
		log.Printf("[ERROR] Database error when saving product: %v\n", result.Error)
		return result.Error
	}
	return nil
}

// DeleteBySeller removes all of a seller's products (store deregistration)
func (r *ProductRepository) DeleteBySeller(ctx context.Context, sellerID string) error {
	result := r.db.WithContext(ctx).Where("seller_id = ?", sellerID).Delete(&models.Product{})
	if result.Error != nil {
		log.Printf("[ERROR] Database error when deleting seller products: %v\n", result.Error)
		return result.Error
	}

	log.Printf("[DEBUG] Deleted %d products for seller %s\n", result.RowsAffected, sellerID)
	return nil
}

// ReserveStock applies the decrements of a reservation as one accept/reject
// unit. Each line uses a conditional decrement so stock can never go
// negative; if any line has been raced below its requested quantity the
// transaction rolls back and nothing is applied.
func (r *ProductRepository) ReserveStock(ctx context.Context, lines []StockLine) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var short []string

		for _, line := range lines {
			result := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", line.ProductID, line.Quantity).
				Update("stock", gorm.Expr("stock - ?", line.Quantity))
			if result.Error != nil {
				log.Printf("[ERROR] Database error when decrementing stock: %v\n", result.Error)
				return result.Error
			}
			if result.RowsAffected == 0 {
				short = append(short, line.ProductID)
			}
		}

		if len(short) > 0 {
			// Rolling back discards the decrements already applied in this tx
			return apperrors.NewInsufficientStockError(
				"insufficient stock for products: " + strings.Join(short, ", "))
		}

		return nil
	})
}
