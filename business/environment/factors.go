package environment

import (
	"time"

	"storeOptimizer/domain"
)

const (
	hotTemperatureC  = 32.0
	coldTemperatureC = 0.0
)

var weatherFactors = map[domain.WeatherCondition]domain.ImpactFactors{
	domain.WeatherSunny:  {Traffic: 1.05, Conversion: 1.0, Dwell: 0.95},
	domain.WeatherCloudy: {Traffic: 1.0, Conversion: 1.0, Dwell: 1.0},
	domain.WeatherRain:   {Traffic: 0.85, Conversion: 1.05, Dwell: 1.15},
	domain.WeatherSnow:   {Traffic: 0.7, Conversion: 1.05, Dwell: 1.2},
	domain.WeatherStorm:  {Traffic: 0.55, Conversion: 1.0, Dwell: 1.1},
}

var eventFactors = map[domain.EventType]domain.ImpactFactors{
	domain.EventHoliday:   {Traffic: 1.3, Conversion: 1.1, Dwell: 0.9},
	domain.EventPromotion: {Traffic: 1.2, Conversion: 1.15, Dwell: 1.0},
	domain.EventLocal:     {Traffic: 1.1, Conversion: 1.0, Dwell: 0.95},
	domain.EventPayday:    {Traffic: 1.15, Conversion: 1.1, Dwell: 1.0},
}

var bucketFactors = map[string]domain.ImpactFactors{
	"night":     {Traffic: 0.4, Conversion: 0.9, Dwell: 0.9},
	"morning":   {Traffic: 0.8, Conversion: 1.0, Dwell: 0.95},
	"afternoon": {Traffic: 1.1, Conversion: 1.0, Dwell: 1.0},
	"evening":   {Traffic: 1.15, Conversion: 1.05, Dwell: 1.05},
}

var weekendFactors = domain.ImpactFactors{Traffic: 1.2, Conversion: 1.0, Dwell: 1.1}

// TimeBucket labels the hour of t: night, morning, afternoon or evening.
func TimeBucket(t time.Time) string {
	h := t.Hour()
	switch {
	case h < 6:
		return "night"
	case h < 12:
		return "morning"
	case h < 18:
		return "afternoon"
	default:
		return "evening"
	}
}

func isWeekend(t time.Time) bool {
	return t.Weekday() == time.Saturday || t.Weekday() == time.Sunday
}

// WeatherImpact maps a weather record to factors. Unknown conditions are neutral;
// temperature extremes keep people at home.
func WeatherImpact(rec domain.WeatherRecord) domain.ImpactFactors {
	f, ok := weatherFactors[rec.Condition]
	if !ok {
		f = domain.NeutralFactors()
	}
	switch {
	case rec.TemperatureC >= hotTemperatureC:
		f = f.Times(domain.ImpactFactors{Traffic: 0.92, Conversion: 1.0, Dwell: 1.05})
	case rec.TemperatureC <= coldTemperatureC:
		f = f.Times(domain.ImpactFactors{Traffic: 0.9, Conversion: 1.0, Dwell: 1.05})
	}
	return f
}

// EventImpact multiplies the factors of every event on the day.
func EventImpact(events []domain.CalendarEvent) domain.ImpactFactors {
	f := domain.NeutralFactors()
	for _, ev := range events {
		if ef, ok := eventFactors[ev.Type]; ok {
			f = f.Times(ef)
		}
	}
	return f
}

func TemporalImpact(t time.Time) domain.ImpactFactors {
	f, ok := bucketFactors[TimeBucket(t)]
	if !ok {
		f = domain.NeutralFactors()
	}
	if isWeekend(t) {
		f = f.Times(weekendFactors)
	}
	return f
}
