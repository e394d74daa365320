package optimization

import (
	"context"
	"time"

	"storeOptimizer/business/association"
	"storeOptimizer/business/flow"
	"storeOptimizer/business/impact"
	"storeOptimizer/business/vmd"
	"storeOptimizer/domain"
)

type Config struct {
	Flow        flow.Config
	Association association.Config
	VMD         vmd.Config
	Impact      impact.Config

	// bounded join for the concurrent loads
	JoinTimeout time.Duration

	// operator cap applied when the request does not carry max_changes; zero means uncapped
	DefaultMaxChanges int

	PerformanceWindowDays int

	// how many destination slots are considered per product
	DestinationsPerProduct int

	// VMD score change (points) that moves a candidate's priority by one tier
	VMDPriorityDelta float64

	NarrativeEnabled bool
}

const (
	defaultJoinTimeout            = 5 * time.Second
	defaultPerformanceWindowDays  = 30
	defaultDestinationsPerProduct = 3
	defaultVMDPriorityDelta       = 2.0
)

func DefaultConfig() Config {
	return Config{
		Flow:                   flow.DefaultConfig(),
		Association:            association.DefaultConfig(),
		VMD:                    vmd.DefaultConfig(),
		Impact:                 impact.DefaultConfig(),
		JoinTimeout:            defaultJoinTimeout,
		PerformanceWindowDays:  defaultPerformanceWindowDays,
		DestinationsPerProduct: defaultDestinationsPerProduct,
		VMDPriorityDelta:       defaultVMDPriorityDelta,
		NarrativeEnabled:       true,
	}
}

// read per-store tuning overrides from DB.
type TuningRepository interface {
	GetTuning(ctx context.Context, storeID uint64) (domain.StoreTuning, bool, error)
}
