package domain

type VMDRule string

const (
	RuleGoldenZoneMargin      VMDRule = "golden_zone_margin"
	RuleAffinityProximity     VMDRule = "affinity_proximity"
	RuleDeadZonePriority      VMDRule = "dead_zone_priority"
	RuleBottleneckBrowsing    VMDRule = "bottleneck_browsing"
	RuleCategoryFragmentation VMDRule = "category_fragmentation"
)

type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

// GradeForScore buckets a 0-100 score.
func GradeForScore(score float64) Grade {
	switch {
	case score >= 90:
		return GradeA
	case score >= 80:
		return GradeB
	case score >= 70:
		return GradeC
	case score >= 60:
		return GradeD
	default:
		return GradeF
	}
}

type VMDViolation struct {
	Rule        VMDRule  `json:"rule"`
	Severity    Severity `json:"severity"`
	ZoneID      uint64   `json:"zone_id,omitempty"`
	FurnitureID uint64   `json:"furniture_id,omitempty"`
	ProductID   uint64   `json:"product_id,omitempty"`
	SlotID      uint64   `json:"slot_id,omitempty"`
	Message     string   `json:"message"`
}

type VMDRuleScore struct {
	Rule       VMDRule `json:"rule"`
	Score      float64 `json:"score"`
	Weight     float64 `json:"weight"`
	Checked    int     `json:"checked"`
	Violations int     `json:"violations"`
}

type VMDReport struct {
	Score      float64        `json:"score"`
	Grade      Grade          `json:"grade"`
	RuleScores []VMDRuleScore `json:"rule_scores"`
	Violations []VMDViolation `json:"violations"`
}
