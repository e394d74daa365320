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

type TuningRepository struct {
	DB *gorm.DB
}

var _ optimization.TuningRepository = (*TuningRepository)(nil)

func NewTuningRepository(db *gorm.DB) *TuningRepository {
	return &TuningRepository{DB: db}
}

func (r *TuningRepository) GetTuning(ctx context.Context, storeID uint64) (domain.StoreTuning, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.StoreTuning{}, false, fmt.Errorf("context error: %w", err)
	}

	var t domain.StoreTuning

	err := r.DB.WithContext(ctx).
		Where("store_id = ?", storeID).
		First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.StoreTuning{}, false, nil
	}
	if err != nil {
		return domain.StoreTuning{}, false, fmt.Errorf("failed to find store tuning: %w", err)
	}
	return t, true, nil
}

func (r *TuningRepository) UpsertTuning(ctx context.Context, t domain.StoreTuning) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	err := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "store_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"flow_window_days",
				"association_window_days",
				"bottleneck_threshold",
				"dwell_cv_threshold",
				"dead_zone_fraction",
				"min_support",
				"min_transactions",
				"max_revenue_delta_pct",
				"max_conversion_delta_pct",
				"default_max_changes",
				"updated_at",
			}),
		}).
		Create(&t).Error
	if err != nil {
		return fmt.Errorf("failed to upsert store tuning: %w", err)
	}
	return nil
}
