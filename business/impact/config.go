package impact

type Config struct {
	// symmetric clip bounds, in percent
	MaxRevenueDeltaPct    float64
	MaxConversionDeltaPct float64

	TrafficWeight     float64
	BaselineWeight    float64
	AssociationWeight float64

	// added to both visit counts before taking the traffic ratio
	SmoothingVisits float64
	// combined visits at which the sample stops limiting confidence
	FullConfidenceVisits float64

	// each weak signal shrinks deltas and confidence by these fractions
	WeakSignalDeltaDiscount      float64
	WeakSignalConfidenceDiscount float64

	// expected value (revenue delta pct x confidence) cutoffs
	CriticalEV float64
	HighEV     float64
	MediumEV   float64
}

const (
	defaultMaxRevenueDeltaPct           = 100.0
	defaultMaxConversionDeltaPct        = 50.0
	defaultTrafficWeight                = 0.5
	defaultBaselineWeight               = 0.3
	defaultAssociationWeight            = 0.2
	defaultSmoothingVisits              = 5.0
	defaultFullConfidenceVisits         = 200.0
	defaultWeakSignalDeltaDiscount      = 0.15
	defaultWeakSignalConfidenceDiscount = 0.2
	defaultCriticalEV                   = 20.0
	defaultHighEV                       = 10.0
	defaultMediumEV                     = 3.0
)

func DefaultConfig() Config {
	return Config{
		MaxRevenueDeltaPct:           defaultMaxRevenueDeltaPct,
		MaxConversionDeltaPct:        defaultMaxConversionDeltaPct,
		TrafficWeight:                defaultTrafficWeight,
		BaselineWeight:               defaultBaselineWeight,
		AssociationWeight:            defaultAssociationWeight,
		SmoothingVisits:              defaultSmoothingVisits,
		FullConfidenceVisits:         defaultFullConfidenceVisits,
		WeakSignalDeltaDiscount:      defaultWeakSignalDeltaDiscount,
		WeakSignalConfidenceDiscount: defaultWeakSignalConfidenceDiscount,
		CriticalEV:                   defaultCriticalEV,
		HighEV:                       defaultHighEV,
		MediumEV:                     defaultMediumEV,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxRevenueDeltaPct <= 0 {
		c.MaxRevenueDeltaPct = d.MaxRevenueDeltaPct
	}
	if c.MaxConversionDeltaPct <= 0 {
		c.MaxConversionDeltaPct = d.MaxConversionDeltaPct
	}
	if c.TrafficWeight <= 0 && c.BaselineWeight <= 0 && c.AssociationWeight <= 0 {
		c.TrafficWeight = d.TrafficWeight
		c.BaselineWeight = d.BaselineWeight
		c.AssociationWeight = d.AssociationWeight
	}
	if c.SmoothingVisits <= 0 {
		c.SmoothingVisits = d.SmoothingVisits
	}
	if c.FullConfidenceVisits <= 0 {
		c.FullConfidenceVisits = d.FullConfidenceVisits
	}
	if c.WeakSignalDeltaDiscount <= 0 || c.WeakSignalDeltaDiscount >= 1 {
		c.WeakSignalDeltaDiscount = d.WeakSignalDeltaDiscount
	}
	if c.WeakSignalConfidenceDiscount <= 0 || c.WeakSignalConfidenceDiscount >= 1 {
		c.WeakSignalConfidenceDiscount = d.WeakSignalConfidenceDiscount
	}
	if c.CriticalEV <= 0 {
		c.CriticalEV = d.CriticalEV
	}
	if c.HighEV <= 0 {
		c.HighEV = d.HighEV
	}
	if c.MediumEV <= 0 {
		c.MediumEV = d.MediumEV
	}
	return c
}
