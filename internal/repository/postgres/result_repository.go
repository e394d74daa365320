package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storeOptimizer/business/optimization"
	"storeOptimizer/domain"
)

type ResultRepository struct {
	DB *gorm.DB
}

var _ optimization.ResultRepository = (*ResultRepository)(nil)

func NewResultRepository(db *gorm.DB) *ResultRepository {
	return &ResultRepository{DB: db}
}

func (r *ResultRepository) SaveResult(ctx context.Context, rec domain.OptimizationResultRecord) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	err := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "candidate_count", "payload"}),
		}).
		Create(&rec).Error
	if err != nil {
		return fmt.Errorf("failed to save optimization result: %w", err)
	}

	return nil
}

func (r *ResultRepository) LatestResult(ctx context.Context, storeID uint64) (domain.OptimizationResultRecord, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.OptimizationResultRecord{}, false, fmt.Errorf("context error: %w", err)
	}

	var rec domain.OptimizationResultRecord
	err := r.DB.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("created_at DESC").
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.OptimizationResultRecord{}, false, nil
	}
	if err != nil {
		return domain.OptimizationResultRecord{}, false, fmt.Errorf("failed to find latest result: %w", err)
	}

	return rec, true, nil
}
