package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	apperrors "marketplace.app/errors"
	"marketplace.app/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	// A named in-memory database keeps the gorm connection pool on one
	// schema without leaking state between tests
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.RatingEntry{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.Review{},
	))

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		require.NoError(t, err)
		sqlDB.Close()
	})

	return db
}

func seedSeller(t *testing.T, db *gorm.DB, id string, status string) {
	require.NoError(t, db.Create(&models.User{
		ID:          id,
		Name:        "Seller " + id,
		Email:       id + "@example.com",
		Role:        "seller",
		StoreName:   "Store " + id,
		StoreStatus: status,
	}).Error)
}

func TestSellerRepository_FindByID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSellerRepository(db)
	ctx := context.Background()

	seedSeller(t, db, "s1", models.StoreStatusApproved)

	seller, err := repo.FindByID(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, seller)
	assert.Equal(t, "Store s1", seller.StoreName)

	absent, err := repo.FindByID(ctx, "ghost")
	require.NoError(t, err)
	assert.Nil(t, absent)
}

func TestSellerRepository_FindByStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSellerRepository(db)
	ctx := context.Background()

	seedSeller(t, db, "s1", models.StoreStatusApproved)
	seedSeller(t, db, "s2", models.StoreStatusPending)
	seedSeller(t, db, "s3", models.StoreStatusApproved)

	approved, err := repo.FindApprovedSellers(ctx)
	require.NoError(t, err)
	assert.Len(t, approved, 2)

	pending, err := repo.FindPendingSellers(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "s2", pending[0].ID)
}

func TestSellerRepository_SearchApproved(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSellerRepository(db)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.User{
		ID: "s1", Name: "Alice", Email: "alice@example.com", Role: "seller",
		StoreName: "Garden Supplies", StoreStatus: models.StoreStatusApproved,
	}).Error)
	require.NoError(t, db.Create(&models.User{
		ID: "s2", Name: "Bob", Email: "bob@example.com", Role: "seller",
		StoreName: "Hardware Heaven", StoreDescription: "garden tools too", StoreStatus: models.StoreStatusApproved,
	}).Error)
	require.NoError(t, db.Create(&models.User{
		ID: "s3", Name: "Carol", Email: "carol@example.com", Role: "seller",
		StoreName: "Garden Center", StoreStatus: models.StoreStatusPending,
	}).Error)

	results, err := repo.SearchApproved(ctx, "GARDEN")
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestSellerRepository_UpdateAggregate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSellerRepository(db)
	ctx := context.Background()

	seedSeller(t, db, "s1", models.StoreStatusApproved)

	entry := &models.RatingEntry{SellerID: "s1", UserID: "u1", Value: 4}
	require.NoError(t, repo.UpdateAggregate(ctx, "s1", 0, 4.0, 1, entry))

	seller, err := repo.FindByID(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 4.0, seller.SellerRating)
	assert.Equal(t, 1, seller.NumOfReviews)
	assert.Equal(t, 1, seller.RatingVersion)

	stored, err := repo.FindRatingEntry(ctx, "s1", "u1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, 4, stored.Value)
}

func TestSellerRepository_UpdateAggregate_VersionConflict(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSellerRepository(db)
	ctx := context.Background()

	seedSeller(t, db, "s1", models.StoreStatusApproved)

	first := &models.RatingEntry{SellerID: "s1", UserID: "u1", Value: 5}
	require.NoError(t, repo.UpdateAggregate(ctx, "s1", 0, 5.0, 1, first))

	// A writer still holding version 0 must not overwrite version 1
	stale := &models.RatingEntry{SellerID: "s1", UserID: "u2", Value: 1}
	err := repo.UpdateAggregate(ctx, "s1", 0, 1.0, 1, stale)
	require.True(t, apperrors.IsVersionConflictError(err))

	seller, err := repo.FindByID(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 5.0, seller.SellerRating)
	assert.Equal(t, 1, seller.RatingVersion)

	// The losing writer's entry was rolled back with the aggregate
	entry, err := repo.FindRatingEntry(ctx, "s1", "u2")
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func seedProduct(t *testing.T, db *gorm.DB, id, sellerID string, stock int) {
	require.NoError(t, db.Create(&models.Product{
		ID:       id,
		SellerID: sellerID,
		Name:     "Product " + id,
		Category: "misc",
		Price:    10,
		Stock:    stock,
		Status:   models.ProductStatusApproved,
	}).Error)
}

func TestProductRepository_ReserveStock(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	seedProduct(t, db, "p1", "s1", 5)
	seedProduct(t, db, "p2", "s1", 2)

	err := repo.ReserveStock(ctx, []StockLine{
		{ProductID: "p1", Quantity: 3},
		{ProductID: "p2", Quantity: 2},
	})
	require.NoError(t, err)

	p1, err := repo.FindByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 2, p1.Stock)

	p2, err := repo.FindByID(ctx, "p2")
	require.NoError(t, err)
	assert.Zero(t, p2.Stock)
}

func TestProductRepository_ReserveStock_RollsBackOnShortLine(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	seedProduct(t, db, "p1", "s1", 5)
	seedProduct(t, db, "p2", "s1", 1)

	err := repo.ReserveStock(ctx, []StockLine{
		{ProductID: "p1", Quantity: 3},
		{ProductID: "p2", Quantity: 2},
	})
	require.True(t, apperrors.IsInsufficientStockError(err))
	assert.Contains(t, err.Error(), "p2")

	// The satisfiable first line was rolled back with the transaction
	p1, findErr := repo.FindByID(ctx, "p1")
	require.NoError(t, findErr)
	assert.Equal(t, 5, p1.Stock)
}

func TestProductRepository_ReserveStock_UnknownProductIsShort(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	err := repo.ReserveStock(ctx, []StockLine{{ProductID: "ghost", Quantity: 1}})
	require.True(t, apperrors.IsInsufficientStockError(err))
	assert.Contains(t, err.Error(), "ghost")
}

func TestProductRepository_SellerQueries(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	seedProduct(t, db, "p1", "s1", 5)
	seedProduct(t, db, "p2", "s1", 5)
	seedProduct(t, db, "p3", "s2", 5)
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", "p2").
		Update("status", models.ProductStatusPending).Error)

	all, err := repo.FindBySeller(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	approved, err := repo.FindApprovedBySeller(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, "p1", approved[0].ID)

	count, err := repo.CountApprovedBySeller(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, repo.DeleteBySeller(ctx, "s1"))
	remaining, err := repo.FindBySeller(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, remaining)

	other, err := repo.FindBySeller(ctx, "s2")
	require.NoError(t, err)
	assert.Len(t, other, 1)
}

func TestOrderRepository_CreateAndQuery(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	first := &models.Order{
		ID:     "o1",
		UserID: "u1",
		Total:  30,
		Items: []models.OrderItem{
			{ProductID: "p1", SellerID: "s1", Name: "Widget", Price: 10, Quantity: 3},
		},
		CreatedAt: time.Now().Add(-time.Hour),
	}
	second := &models.Order{
		ID:     "o2",
		UserID: "u1",
		Total:  20,
		Items: []models.OrderItem{
			{ProductID: "p2", SellerID: "s2", Name: "Gadget", Price: 20, Quantity: 1},
		},
	}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	bySeller, err := repo.FindBySeller(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, bySeller, 1)
	assert.Equal(t, "o1", bySeller[0].ID)
	require.Len(t, bySeller[0].Items, 1)
	assert.Equal(t, "Widget", bySeller[0].Items[0].Name)

	byUser, err := repo.FindByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, byUser, 2)
	assert.Equal(t, "o2", byUser[0].ID)
}

func TestReviewRepository_AverageForProduct(t *testing.T) {
	db := setupTestDB(t)
	repo := NewReviewRepository(db)
	ctx := context.Background()

	for _, rating := range []int{5, 4, 4} {
		require.NoError(t, db.Create(&models.Review{ProductID: "p1", UserID: "u", Rating: rating}).Error)
	}

	// 13 / 3 floors to 4
	rating, count, err := repo.AverageForProduct(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 4, rating)
	assert.Equal(t, 3, count)

	rating, count, err = repo.AverageForProduct(ctx, "empty")
	require.NoError(t, err)
	assert.Zero(t, rating)
	assert.Zero(t, count)
}
