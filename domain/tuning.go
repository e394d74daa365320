package domain

import "time"

// CREATE TABLE public.store_tuning (
//     store_id                  BIGINT PRIMARY KEY REFERENCES stores(id),
//     flow_window_days          INT,
//     association_window_days   INT,
//     bottleneck_threshold      NUMERIC,
//     dwell_cv_threshold        NUMERIC,
//     dead_zone_fraction        NUMERIC,
//     min_support               NUMERIC,
//     min_transactions          INT,
//     max_revenue_delta_pct     NUMERIC,
//     max_conversion_delta_pct  NUMERIC,
//     default_max_changes       INT,
//     updated_at                TIMESTAMPTZ DEFAULT NOW()
// );

// StoreTuning overrides optimizer defaults for one store. Zero means keep the default.
type StoreTuning struct {
	StoreID               uint64    `gorm:"primaryKey;column:store_id" json:"store_id"`
	FlowWindowDays        int       `gorm:"column:flow_window_days" json:"flow_window_days"`
	AssociationWindowDays int       `gorm:"column:association_window_days" json:"association_window_days"`
	BottleneckThreshold   float64   `gorm:"column:bottleneck_threshold" json:"bottleneck_threshold"`
	DwellCVThreshold      float64   `gorm:"column:dwell_cv_threshold" json:"dwell_cv_threshold"`
	DeadZoneFraction      float64   `gorm:"column:dead_zone_fraction" json:"dead_zone_fraction"`
	MinSupport            float64   `gorm:"column:min_support" json:"min_support"`
	MinTransactions       int       `gorm:"column:min_transactions" json:"min_transactions"`
	MaxRevenueDeltaPct    float64   `gorm:"column:max_revenue_delta_pct" json:"max_revenue_delta_pct"`
	MaxConversionDeltaPct float64   `gorm:"column:max_conversion_delta_pct" json:"max_conversion_delta_pct"`
	DefaultMaxChanges     int       `gorm:"column:default_max_changes" json:"default_max_changes"`
	UpdatedAt             time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (StoreTuning) TableName() string {
	return "store_tuning"
}
