package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"storeOptimizer/business/association"
	"storeOptimizer/business/flow"
	"storeOptimizer/business/layout"
	"storeOptimizer/business/optimization"
	"storeOptimizer/domain"
)

type LayoutRepository struct {
	DB *gorm.DB
}

var (
	_ optimization.LayoutRepository = (*LayoutRepository)(nil)
	_ flow.ZoneRepository           = (*LayoutRepository)(nil)
	_ association.ProductRepository = (*LayoutRepository)(nil)
	_ layout.Repository             = (*LayoutRepository)(nil)
)

func NewLayoutRepository(db *gorm.DB) *LayoutRepository {
	return &LayoutRepository{
		DB: db,
	}
}

func (r *LayoutRepository) GetStore(ctx context.Context, storeID uint64) (domain.Store, error) {
	if err := ctx.Err(); err != nil {
		return domain.Store{}, fmt.Errorf("context error: %w", err)
	}

	var store domain.Store
	err := r.DB.WithContext(ctx).First(&store, storeID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Store{}, domain.ErrStoreNotFound
		}
		return domain.Store{}, fmt.Errorf("failed to find store: %w", err)
	}

	return store, nil
}

// GetLayout loads zones, furniture, slots and products of one store.
func (r *LayoutRepository) GetLayout(ctx context.Context, storeID uint64) (domain.Layout, error) {
	if err := ctx.Err(); err != nil {
		return domain.Layout{}, fmt.Errorf("context error: %w", err)
	}

	out := domain.Layout{StoreID: storeID}
	db := r.DB.WithContext(ctx)

	zones, err := r.ListZones(ctx, storeID)
	if err != nil {
		return domain.Layout{}, err
	}
	out.Zones = zones

	if err := db.Where("store_id = ?", storeID).Order("id").Find(&out.Furniture).Error; err != nil {
		return domain.Layout{}, fmt.Errorf("failed to find furniture: %w", err)
	}

	err = db.Model(&domain.Slot{}).
		Joins("JOIN furniture f ON f.id = slots.furniture_id").
		Where("f.store_id = ?", storeID).
		Order("slots.id").
		Find(&out.Slots).Error
	if err != nil {
		return domain.Layout{}, fmt.Errorf("failed to find slots: %w", err)
	}

	products, err := r.ListProducts(ctx, storeID)
	if err != nil {
		return domain.Layout{}, err
	}
	out.Products = products

	return out, nil
}

func (r *LayoutRepository) ListZones(ctx context.Context, storeID uint64) ([]domain.Zone, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var zones []domain.Zone
	err := r.DB.WithContext(ctx).Where("store_id = ?", storeID).Order("id").Find(&zones).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find zones: %w", err)
	}

	return zones, nil
}

func (r *LayoutRepository) ListProducts(ctx context.Context, storeID uint64) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var products []domain.Product
	err := r.DB.WithContext(ctx).Where("store_id = ?", storeID).Order("id").Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}

	return products, nil
}
