package domain

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
)

type OptimizationType string

const (
	OptimizeFurniture OptimizationType = "furniture"
	OptimizeProduct   OptimizationType = "product"
	OptimizeBoth      OptimizationType = "both"
)

func (t OptimizationType) Valid() bool {
	switch t {
	case OptimizeFurniture, OptimizeProduct, OptimizeBoth:
		return true
	}
	return false
}

func (t OptimizationType) IncludesFurniture() bool {
	return t == OptimizeFurniture || t == OptimizeBoth
}

func (t OptimizationType) IncludesProducts() bool {
	return t == OptimizeProduct || t == OptimizeBoth
}

func ParseOptimizationType(s string) (OptimizationType, error) {
	t := OptimizationType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: unknown optimization_type %q", ErrInvalidRequest, s)
	}
	return t, nil
}

type EntityType string

const (
	EntityFurniture EntityType = "furniture"
	EntityProduct   EntityType = "product"
)

// Placement is where an entity sits. Furniture placements carry a position,
// product placements carry the fixture and slot.
type Placement struct {
	ZoneID      uint64  `json:"zone_id"`
	FurnitureID uint64  `json:"furniture_id,omitempty"`
	SlotID      *uint64 `json:"slot_id,omitempty"`
	PositionX   float64 `json:"position_x,omitempty"`
	PositionY   float64 `json:"position_y,omitempty"`
}

type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

var priorityOrder = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

// Rank orders priorities low(0) .. critical(3).
func (p Priority) Rank() int {
	for i, v := range priorityOrder {
		if v == p {
			return i
		}
	}
	return 0
}

// Shift moves the priority by n tiers, saturating at both ends.
func (p Priority) Shift(n int) Priority {
	r := p.Rank() + n
	if r < 0 {
		r = 0
	}
	if r >= len(priorityOrder) {
		r = len(priorityOrder) - 1
	}
	return priorityOrder[r]
}

type PredictionResult struct {
	RevenueDeltaPct    float64  `json:"revenue_delta_pct"`
	ConversionDeltaPct float64  `json:"conversion_delta_pct"`
	Confidence         float64  `json:"confidence"`
	ExpectedValue      float64  `json:"expected_value"`
	Priority           Priority `json:"priority"`
	TrafficRatio       float64  `json:"traffic_ratio"`
	AssociationEffect  float64  `json:"association_effect"`
	EnvironmentFactor  float64  `json:"environment_factor"`
	WeakSignals        []string `json:"weak_signals,omitempty"`
}

type OptimizationCandidate struct {
	ID             string           `json:"id"`
	EntityType     EntityType       `json:"entity_type"`
	EntityID       uint64           `json:"entity_id"`
	Current        Placement        `json:"current"`
	Suggested      Placement        `json:"suggested"`
	RationaleTag   string           `json:"rationale_tag"`
	Rationale      string           `json:"rationale"`
	Prediction     PredictionResult `json:"prediction"`
	VMDScoreBefore float64          `json:"vmd_score_before"`
	VMDScoreAfter  float64          `json:"vmd_score_after"`
}

func (c OptimizationCandidate) VMDScoreDelta() float64 {
	return c.VMDScoreAfter - c.VMDScoreBefore
}

type OptimizationParameters struct {
	ZoneIDs                 []uint64 `json:"zone_ids"`
	ProductIDs              []uint64 `json:"product_ids"`
	FurnitureIDs            []uint64 `json:"furniture_ids"`
	PrioritizeRevenue       bool     `json:"prioritize_revenue"`
	PrioritizeVisibility    bool     `json:"prioritize_visibility"`
	PrioritizeAccessibility bool     `json:"prioritize_accessibility"`
	MaxChanges              *int     `json:"max_changes" validate:"omitempty,min=0,max=1000"`
}

type OptimizationRequest struct {
	StoreID          uint64                  `json:"store_id" validate:"required"`
	OptimizationType string                  `json:"optimization_type" validate:"required,oneof=furniture product both"`
	Parameters       *OptimizationParameters `json:"parameters" validate:"omitempty"`
	// Date pins the day for the environment context and every history window; nil means now.
	Date *time.Time `json:"date,omitempty"`
}

type ResultStatus string

const (
	ResultPending  ResultStatus = "pending"
	ResultApplied  ResultStatus = "applied"
	ResultRejected ResultStatus = "rejected"
)

type ResultSummary struct {
	GeneratedCandidates  int      `json:"generated_candidates"`
	SkippedCandidates    int      `json:"skipped_candidates"`
	FilteredCandidates   int      `json:"filtered_candidates"`
	TruncatedCandidates  int      `json:"truncated_candidates"`
	ReturnedCandidates   int      `json:"returned_candidates"`
	TotalRevenueDeltaPct float64  `json:"total_revenue_delta_pct"`
	AvgConfidence        float64  `json:"avg_confidence"`
	VMDScoreBefore       float64  `json:"vmd_score_before"`
	DegradedComponents   []string `json:"degraded_components"`
	Narrative            Outcome  `json:"narrative"`
	Persistence          Outcome  `json:"persistence"`
}

type OptimizationResult struct {
	ID               string                  `json:"id"`
	StoreID          uint64                  `json:"store_id"`
	CreatedAt        time.Time               `json:"created_at"`
	OptimizationType OptimizationType        `json:"optimization_type"`
	FurnitureChanges []OptimizationCandidate `json:"furniture_changes"`
	ProductChanges   []OptimizationCandidate `json:"product_changes"`
	Summary          ResultSummary           `json:"summary"`
	Status           ResultStatus            `json:"status"`
}

// Candidates returns furniture changes followed by product changes.
func (r OptimizationResult) Candidates() []OptimizationCandidate {
	out := make([]OptimizationCandidate, 0, len(r.FurnitureChanges)+len(r.ProductChanges))
	out = append(out, r.FurnitureChanges...)
	return append(out, r.ProductChanges...)
}

// CREATE TABLE public.optimization_results (
//     id                  UUID PRIMARY KEY,
//     store_id            BIGINT NOT NULL,
//     optimization_type   TEXT NOT NULL,
//     status              TEXT NOT NULL DEFAULT 'pending',
//     candidate_count     INT NOT NULL,
//     payload             JSONB NOT NULL,
//     created_at          TIMESTAMPTZ DEFAULT NOW()
// );

type OptimizationResultRecord struct {
	ID               string         `gorm:"primaryKey;column:id;type:uuid" json:"id"`
	StoreID          uint64         `gorm:"column:store_id;not null;index" json:"store_id"`
	OptimizationType string         `gorm:"column:optimization_type;type:text" json:"optimization_type"`
	Status           string         `gorm:"column:status;type:text" json:"status"`
	CandidateCount   int            `gorm:"column:candidate_count" json:"candidate_count"`
	Payload          datatypes.JSON `gorm:"column:payload;type:jsonb" json:"payload"`
	CreatedAt        time.Time      `gorm:"column:created_at" json:"created_at"`
}

func (OptimizationResultRecord) TableName() string {
	return "optimization_results"
}

// Summary blocks returned next to the result. They expose aggregates only.

type DataSummary struct {
	ZoneCount             int      `json:"zone_count"`
	FurnitureCount        int      `json:"furniture_count"`
	MovableFurnitureCount int      `json:"movable_furniture_count"`
	SlotCount             int      `json:"slot_count"`
	FreeSlotCount         int      `json:"free_slot_count"`
	ProductCount          int      `json:"product_count"`
	ProductsWithSales     int      `json:"products_with_sales"`
	DegradedComponents    []string `json:"degraded_components"`
}

type EnvironmentSummary struct {
	Date        time.Time              `json:"date"`
	TimeBucket  string                 `json:"time_bucket"`
	IsWeekend   bool                   `json:"is_weekend"`
	Weather     WeatherCondition       `json:"weather,omitempty"`
	Events      []string               `json:"events"`
	Combined    ImpactFactors          `json:"combined"`
	DataQuality EnvironmentDataQuality `json:"data_quality"`
}

type FlowAnalysisSummary struct {
	Summary         FlowSummary `json:"summary"`
	HealthScore     float64     `json:"health_score"`
	BottleneckCount int         `json:"bottleneck_count"`
	DeadZoneCount   int         `json:"dead_zone_count"`
	TopPaths        []FlowPath  `json:"top_paths"`
	DataQuality     DataQuality `json:"data_quality"`
}

type AssociationSummary struct {
	TotalTransactions int               `json:"total_transactions"`
	ItemRuleCount     int               `json:"item_rule_count"`
	CategoryRuleCount int               `json:"category_rule_count"`
	PositiveRuleCount int               `json:"positive_rule_count"`
	TopRules          []AssociationRule `json:"top_rules"`
	DataQuality       DataQuality       `json:"data_quality"`
}

type PredictionSummary struct {
	CandidateCount       int              `json:"candidate_count"`
	TotalRevenueDeltaPct float64          `json:"total_revenue_delta_pct"`
	AvgRevenueDeltaPct   float64          `json:"avg_revenue_delta_pct"`
	AvgConfidence        float64          `json:"avg_confidence"`
	ByPriority           map[Priority]int `json:"by_priority"`
}

type ConversionPredictionSummary struct {
	AvgConversionDeltaPct float64 `json:"avg_conversion_delta_pct"`
	MaxConversionDeltaPct float64 `json:"max_conversion_delta_pct"`
	PositiveCount         int     `json:"positive_count"`
}

type VMDAnalysis struct {
	Score          float64          `json:"score"`
	Grade          Grade            `json:"grade"`
	ViolationCount int              `json:"violation_count"`
	BySeverity     map[Severity]int `json:"by_severity"`
	RuleScores     []VMDRuleScore   `json:"rule_scores"`
	TopViolations  []VMDViolation   `json:"top_violations"`
}

type OptimizationResponse struct {
	Success                     bool                        `json:"success"`
	Result                      OptimizationResult          `json:"result"`
	DataSummary                 DataSummary                 `json:"data_summary"`
	EnvironmentSummary          EnvironmentSummary          `json:"environment_summary"`
	FlowAnalysisSummary         FlowAnalysisSummary         `json:"flow_analysis_summary"`
	AssociationSummary          AssociationSummary          `json:"association_summary"`
	PredictionSummary           PredictionSummary           `json:"prediction_summary"`
	ConversionPredictionSummary ConversionPredictionSummary `json:"conversion_prediction_summary"`
	VMDAnalysis                 VMDAnalysis                 `json:"vmd_analysis"`
}
