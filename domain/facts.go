package domain

import "time"

// OutsideZoneID marks the outside of the store: a transition from it is an entry,
// a transition to it is an exit.
const OutsideZoneID uint64 = 0

// CREATE TABLE public.zone_transitions (
//     id              BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//     store_id        BIGINT NOT NULL,
//     visit_id        TEXT NOT NULL,
//     from_zone_id    BIGINT NOT NULL DEFAULT 0,
//     to_zone_id      BIGINT NOT NULL DEFAULT 0,
//     transitioned_at TIMESTAMPTZ NOT NULL,
//     dwell_seconds   NUMERIC  -- time spent in to_zone before the next move
// );

type ZoneTransition struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	StoreID        uint64    `gorm:"column:store_id;not null;index" json:"store_id"`
	VisitID        string    `gorm:"column:visit_id;type:text" json:"visit_id"`
	FromZoneID     uint64    `gorm:"column:from_zone_id" json:"from_zone_id"`
	ToZoneID       uint64    `gorm:"column:to_zone_id" json:"to_zone_id"`
	TransitionedAt time.Time `gorm:"column:transitioned_at" json:"transitioned_at"`
	DwellSeconds   float64   `gorm:"column:dwell_seconds;type:numeric" json:"dwell_seconds"`
}

func (ZoneTransition) TableName() string {
	return "zone_transitions"
}

func (t ZoneTransition) IsEntry() bool {
	return t.FromZoneID == OutsideZoneID && t.ToZoneID != OutsideZoneID
}

func (t ZoneTransition) IsExit() bool {
	return t.ToZoneID == OutsideZoneID
}

// CREATE TABLE public.line_items (
//     id              BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//     store_id        BIGINT NOT NULL,
//     transaction_id  TEXT NOT NULL,
//     product_id      BIGINT NOT NULL,
//     quantity        INT,
//     amount          NUMERIC,
//     sold_at         TIMESTAMPTZ NOT NULL
// );

type LineItem struct {
	ID            uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	StoreID       uint64    `gorm:"column:store_id;not null;index" json:"store_id"`
	TransactionID string    `gorm:"column:transaction_id;type:text" json:"transaction_id"`
	ProductID     uint64    `gorm:"column:product_id" json:"product_id"`
	Quantity      int       `gorm:"column:quantity" json:"quantity"`
	Amount        float64   `gorm:"column:amount;type:numeric" json:"amount"`
	SoldAt        time.Time `gorm:"column:sold_at" json:"sold_at"`
}

func (LineItem) TableName() string {
	return "line_items"
}

type WeatherCondition string

const (
	WeatherSunny  WeatherCondition = "sunny"
	WeatherCloudy WeatherCondition = "cloudy"
	WeatherRain   WeatherCondition = "rain"
	WeatherSnow   WeatherCondition = "snow"
	WeatherStorm  WeatherCondition = "storm"
)

type WeatherRecord struct {
	ID              uint64           `gorm:"primaryKey;autoIncrement" json:"id"`
	StoreID         uint64           `gorm:"column:store_id;not null;index" json:"store_id"`
	Date            time.Time        `gorm:"column:weather_date;type:date" json:"date"`
	Condition       WeatherCondition `gorm:"column:condition;type:text" json:"condition"`
	TemperatureC    float64          `gorm:"column:temperature_c;type:numeric" json:"temperature_c"`
	PrecipitationMm float64          `gorm:"column:precipitation_mm;type:numeric" json:"precipitation_mm"`
}

func (WeatherRecord) TableName() string {
	return "weather_daily"
}

type EventType string

const (
	EventHoliday   EventType = "holiday"
	EventPromotion EventType = "promotion"
	EventLocal     EventType = "local_event"
	EventPayday    EventType = "payday"
)

// CalendarEvent with StoreID 0 applies to every store.
type CalendarEvent struct {
	ID      uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	StoreID uint64    `gorm:"column:store_id;index" json:"store_id"`
	Date    time.Time `gorm:"column:event_date;type:date" json:"date"`
	Name    string    `gorm:"column:event_name;type:text" json:"name"`
	Type    EventType `gorm:"column:event_type;type:text" json:"type"`
}

func (CalendarEvent) TableName() string {
	return "calendar_events"
}
