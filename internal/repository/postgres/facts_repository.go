package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"storeOptimizer/business/association"
	"storeOptimizer/business/environment"
	"storeOptimizer/business/flow"
	"storeOptimizer/business/optimization"
	"storeOptimizer/domain"
)

// FactsRepository reads the observed history: movement, sales, weather and calendar.
type FactsRepository struct {
	DB *gorm.DB
}

var (
	_ flow.TransitionRepository          = (*FactsRepository)(nil)
	_ association.LineItemRepository     = (*FactsRepository)(nil)
	_ environment.WeatherRepository      = (*FactsRepository)(nil)
	_ environment.EventRepository        = (*FactsRepository)(nil)
	_ optimization.PerformanceRepository = (*FactsRepository)(nil)
)

func NewFactsRepository(db *gorm.DB) *FactsRepository {
	return &FactsRepository{DB: db}
}

func (r *FactsRepository) ListTransitions(ctx context.Context, storeID uint64, since time.Time) ([]domain.ZoneTransition, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var transitions []domain.ZoneTransition
	err := r.DB.WithContext(ctx).
		Where("store_id = ? AND transitioned_at >= ?", storeID, since).
		Order("visit_id, transitioned_at, id").
		Find(&transitions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find zone transitions: %w", err)
	}

	return transitions, nil
}

// CountTransactions counts distinct transactions sold since the cutoff.
func (r *FactsRepository) CountTransactions(ctx context.Context, storeID uint64, since time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("context error: %w", err)
	}

	var count int64
	err := r.DB.WithContext(ctx).
		Model(&domain.LineItem{}).
		Where("store_id = ? AND sold_at >= ?", storeID, since).
		Distinct("transaction_id").
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	return int(count), nil
}

func (r *FactsRepository) ListLineItems(ctx context.Context, storeID uint64, since time.Time) ([]domain.LineItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var items []domain.LineItem
	err := r.DB.WithContext(ctx).
		Where("store_id = ? AND sold_at >= ?", storeID, since).
		Order("transaction_id, id").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find line items: %w", err)
	}

	return items, nil
}

// GetWeather returns nil, nil when no record exists for the day.
func (r *FactsRepository) GetWeather(ctx context.Context, storeID uint64, date time.Time) (*domain.WeatherRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var rec domain.WeatherRecord
	err := r.DB.WithContext(ctx).
		Where("store_id = ? AND weather_date = ?", storeID, date.Format(time.DateOnly)).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find weather: %w", err)
	}

	return &rec, nil
}

// GetEvents includes chain-wide events (store_id 0).
func (r *FactsRepository) GetEvents(ctx context.Context, storeID uint64, date time.Time) ([]domain.CalendarEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var events []domain.CalendarEvent
	err := r.DB.WithContext(ctx).
		Where("(store_id = ? OR store_id = 0) AND event_date = ?", storeID, date.Format(time.DateOnly)).
		Order("id").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find calendar events: %w", err)
	}

	return events, nil
}

const zonePerformanceQuery = `
SELECT z.id AS zone_id,
       COALESCE(v.visitors, 0)     AS visitors,
       COALESCE(s.transactions, 0) AS transactions,
       COALESCE(s.revenue, 0)      AS revenue
FROM zones z
LEFT JOIN (
    SELECT to_zone_id AS zone_id, COUNT(DISTINCT visit_id) AS visitors
    FROM zone_transitions
    WHERE store_id = @store AND transitioned_at >= @since
    GROUP BY to_zone_id
) v ON v.zone_id = z.id
LEFT JOIN (
    SELECT p.zone_id, COUNT(DISTINCT li.transaction_id) AS transactions, SUM(li.amount) AS revenue
    FROM line_items li
    JOIN products p ON p.id = li.product_id
    WHERE li.store_id = @store AND li.sold_at >= @since
    GROUP BY p.zone_id
) s ON s.zone_id = z.id
WHERE z.store_id = @store
ORDER BY z.id`

func (r *FactsRepository) ZonePerformance(ctx context.Context, storeID uint64, since time.Time) ([]domain.ZonePerformance, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var rows []domain.ZonePerformance
	err := r.DB.WithContext(ctx).
		Raw(zonePerformanceQuery, map[string]any{"store": storeID, "since": since}).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate zone performance: %w", err)
	}

	return rows, nil
}

func (r *FactsRepository) ProductPerformance(ctx context.Context, storeID uint64, since time.Time) ([]domain.ProductPerformance, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var rows []domain.ProductPerformance
	err := r.DB.WithContext(ctx).
		Model(&domain.LineItem{}).
		Select("product_id, COALESCE(SUM(quantity), 0) AS units_sold, COALESCE(SUM(amount), 0) AS revenue").
		Where("store_id = ? AND sold_at >= ?", storeID, since).
		Group("product_id").
		Order("product_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate product performance: %w", err)
	}

	return rows, nil
}
