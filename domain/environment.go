package domain

import "time"

// ImpactFactors are multiplicative effects; 1.0 is neutral.
type ImpactFactors struct {
	Traffic    float64 `json:"traffic"`
	Conversion float64 `json:"conversion"`
	Dwell      float64 `json:"dwell"`
}

func NeutralFactors() ImpactFactors {
	return ImpactFactors{Traffic: 1, Conversion: 1, Dwell: 1}
}

// Times combines two factor sets per effect.
func (f ImpactFactors) Times(o ImpactFactors) ImpactFactors {
	return ImpactFactors{
		Traffic:    f.Traffic * o.Traffic,
		Conversion: f.Conversion * o.Conversion,
		Dwell:      f.Dwell * o.Dwell,
	}
}

type EnvironmentDataQuality struct {
	Weather  bool `json:"weather"`
	Events   bool `json:"events"`
	Temporal bool `json:"temporal"`
}

// Complete reports whether every source was present.
func (q EnvironmentDataQuality) Complete() bool {
	return q.Weather && q.Events && q.Temporal
}

type EnvironmentSnapshot struct {
	StoreID    uint64          `json:"store_id"`
	Date       time.Time       `json:"date"`
	DayOfWeek  time.Weekday    `json:"day_of_week"`
	IsWeekend  bool            `json:"is_weekend"`
	TimeBucket string          `json:"time_bucket"`
	Weather    *WeatherRecord  `json:"weather,omitempty"`
	Events     []CalendarEvent `json:"events,omitempty"`

	WeatherFactors  ImpactFactors `json:"weather_factors"`
	EventFactors    ImpactFactors `json:"event_factors"`
	TemporalFactors ImpactFactors `json:"temporal_factors"`
	Combined        ImpactFactors `json:"combined"`

	DataQuality EnvironmentDataQuality `json:"data_quality"`
}

// NeutralEnvironment is the snapshot used when no environment signal is available.
// Every factor is 1.0 and no source is marked present.
func NeutralEnvironment(storeID uint64, date time.Time) EnvironmentSnapshot {
	return EnvironmentSnapshot{
		StoreID:         storeID,
		Date:            date,
		DayOfWeek:       date.Weekday(),
		IsWeekend:       date.Weekday() == time.Saturday || date.Weekday() == time.Sunday,
		WeatherFactors:  NeutralFactors(),
		EventFactors:    NeutralFactors(),
		TemporalFactors: NeutralFactors(),
		Combined:        NeutralFactors(),
	}
}
