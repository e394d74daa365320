package domain

import (
	"time"

	"gorm.io/datatypes"
)

// CREATE TABLE public.stores (
//     id          BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//     name        TEXT NOT NULL,
//     timezone    TEXT NOT NULL DEFAULT 'UTC',
//     created_at  TIMESTAMPTZ DEFAULT NOW()
// );

type Store struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"column:name;type:text;not null" json:"name"`
	Timezone  string    `gorm:"column:timezone;type:text" json:"timezone"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Store) TableName() string {
	return "stores"
}

type ZoneType string

const (
	ZoneEntrance    ZoneType = "entrance"
	ZoneAisle       ZoneType = "aisle"
	ZoneDisplay     ZoneType = "display"
	ZoneCheckout    ZoneType = "checkout"
	ZoneFittingRoom ZoneType = "fitting_room"
	ZoneStorage     ZoneType = "storage"
)

// CREATE TABLE public.zones (
//     id          BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//     store_id    BIGINT NOT NULL REFERENCES stores(id),
//     zone_code   TEXT NOT NULL,
//     zone_name   TEXT NOT NULL,
//     zone_type   TEXT NOT NULL,
//     center_x    NUMERIC, center_y NUMERIC,
//     area_sqm    NUMERIC,
//     capacity    INT,
//     boundary    JSONB
// );

type Zone struct {
	ID       uint64         `gorm:"primaryKey;autoIncrement" json:"id"`
	StoreID  uint64         `gorm:"column:store_id;not null;index" json:"store_id"`
	Code     string         `gorm:"column:zone_code;type:text" json:"code"`
	Name     string         `gorm:"column:zone_name;type:text" json:"name"`
	Type     ZoneType       `gorm:"column:zone_type;type:text" json:"type"`
	CenterX  float64        `gorm:"column:center_x;type:numeric" json:"center_x"`
	CenterY  float64        `gorm:"column:center_y;type:numeric" json:"center_y"`
	AreaSqm  float64        `gorm:"column:area_sqm;type:numeric" json:"area_sqm"`
	Capacity int            `gorm:"column:capacity" json:"capacity"`
	Boundary datatypes.JSON `gorm:"column:boundary;type:jsonb" json:"boundary,omitempty"`
}

func (Zone) TableName() string {
	return "zones"
}

// IsEntry reports whether visitors enter the store through this zone.
func (z Zone) IsEntry() bool {
	return z.Type == ZoneEntrance
}

// CapacityNormalizer is the divisor used to turn inbound traffic into congestion.
// Capacity wins over area; a zone with neither counts as 1.
func (z Zone) CapacityNormalizer() float64 {
	if z.Capacity > 0 {
		return float64(z.Capacity)
	}
	if z.AreaSqm > 0 {
		return z.AreaSqm
	}
	return 1
}
