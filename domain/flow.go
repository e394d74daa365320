package domain

// ProbabilityMatrix maps origin zone -> destination zone -> transition probability.
// Destination OutsideZoneID is the exit column. A zone without outgoing transitions
// has an empty row.
type ProbabilityMatrix map[uint64]map[uint64]float64

func (m ProbabilityMatrix) Probability(from, to uint64) float64 {
	row, ok := m[from]
	if !ok {
		return 0
	}
	return row[to]
}

func (m ProbabilityMatrix) RowSum(from uint64) float64 {
	sum := 0.0
	for _, p := range m[from] {
		sum += p
	}
	return sum
}

type PathType string

const (
	PathDirect  PathType = "direct"
	PathLinear  PathType = "linear"
	PathLooping PathType = "looping"
)

type FlowPath struct {
	ZoneIDs     []uint64 `json:"zone_ids"`
	Frequency   float64  `json:"frequency"`
	Probability float64  `json:"probability"`
	Type        PathType `json:"type"`
}

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Weight maps a severity to (0,1]; unknown severities weigh nothing.
func (s Severity) Weight() float64 {
	switch s {
	case SeverityLow:
		return 0.25
	case SeverityMedium:
		return 0.5
	case SeverityHigh:
		return 0.75
	case SeverityCritical:
		return 1
	default:
		return 0
	}
}

type Bottleneck struct {
	ZoneID          uint64   `json:"zone_id"`
	CongestionRatio float64  `json:"congestion_ratio"`
	DwellCV         float64  `json:"dwell_cv"`
	Severity        Severity `json:"severity"`
}

type DeadZone struct {
	ZoneID        uint64  `json:"zone_id"`
	Visits        int     `json:"visits"`
	RelativeVisit float64 `json:"relative_visit_rate"`
}

type OpportunityType string

const (
	OpportunityConnectDeadZone   OpportunityType = "connect_dead_zone"
	OpportunityRelieveBottleneck OpportunityType = "relieve_bottleneck"
)

type LayoutOpportunity struct {
	Type         OpportunityType `json:"type"`
	ZoneID       uint64          `json:"zone_id"`
	TargetZoneID uint64          `json:"target_zone_id"`
	Description  string          `json:"description"`
}

// ZoneFlowStats is the per-zone traffic picture consumed by the VMD engine and the predictor.
type ZoneFlowStats struct {
	ZoneID        uint64  `json:"zone_id"`
	Visits        int     `json:"visits"`
	VisitShare    float64 `json:"visit_share"`
	Visibility    float64 `json:"visibility"`
	Congestion    float64 `json:"congestion"`
	AvgDwell      float64 `json:"avg_dwell_seconds"`
	DwellVariance float64 `json:"dwell_variance"`
	DwellCV       float64 `json:"dwell_cv"`
}

type FlowSummary struct {
	ZoneCount          int     `json:"zone_count"`
	TransitionCount    int     `json:"transition_count"`
	VisitCount         int     `json:"visit_count"`
	EntryCount         int     `json:"entry_count"`
	AvgPathLength      float64 `json:"avg_path_length"`
	AvgPathDurationSec float64 `json:"avg_path_duration_seconds"`
	ConversionRate     float64 `json:"conversion_rate"`
}

type DataQuality struct {
	Sufficient bool   `json:"sufficient"`
	Reason     string `json:"reason,omitempty"`
}

type FlowAnalysis struct {
	StoreID       uint64                   `json:"store_id"`
	WindowDays    int                      `json:"window_days"`
	Summary       FlowSummary              `json:"summary"`
	Matrix        ProbabilityMatrix        `json:"-"`
	KeyPaths      []FlowPath               `json:"key_paths"`
	Bottlenecks   []Bottleneck             `json:"bottlenecks"`
	DeadZones     []DeadZone               `json:"dead_zones"`
	Opportunities []LayoutOpportunity      `json:"opportunities"`
	ZoneStats     map[uint64]ZoneFlowStats `json:"zone_stats"`
	HealthScore   float64                  `json:"health_score"`
	DataQuality   DataQuality              `json:"data_quality"`
}

// EmptyFlowAnalysis is the insufficient-data state: zero counts, no paths, score 0.
func EmptyFlowAnalysis(storeID uint64, windowDays int, reason string) FlowAnalysis {
	return FlowAnalysis{
		StoreID:       storeID,
		WindowDays:    windowDays,
		Matrix:        ProbabilityMatrix{},
		KeyPaths:      []FlowPath{},
		Bottlenecks:   []Bottleneck{},
		DeadZones:     []DeadZone{},
		Opportunities: []LayoutOpportunity{},
		ZoneStats:     map[uint64]ZoneFlowStats{},
		DataQuality:   DataQuality{Sufficient: false, Reason: reason},
	}
}

func (f FlowAnalysis) IsDeadZone(zoneID uint64) bool {
	for _, d := range f.DeadZones {
		if d.ZoneID == zoneID {
			return true
		}
	}
	return false
}

func (f FlowAnalysis) BottleneckFor(zoneID uint64) (Bottleneck, bool) {
	for _, b := range f.Bottlenecks {
		if b.ZoneID == zoneID {
			return b, true
		}
	}
	return Bottleneck{}, false
}
