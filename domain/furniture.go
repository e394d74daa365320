package domain

// CREATE TABLE public.furniture (
//     id              BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//     store_id        BIGINT NOT NULL,
//     zone_id         BIGINT NOT NULL REFERENCES zones(id),
//     furniture_type  TEXT NOT NULL,
//     position_x      NUMERIC, position_y NUMERIC, rotation_deg NUMERIC,
//     movable         BOOLEAN DEFAULT TRUE
// );

type Furniture struct {
	ID        uint64  `gorm:"primaryKey;autoIncrement" json:"id"`
	StoreID   uint64  `gorm:"column:store_id;not null;index" json:"store_id"`
	ZoneID    uint64  `gorm:"column:zone_id;not null" json:"zone_id"`
	Type      string  `gorm:"column:furniture_type;type:text" json:"type"`
	PositionX float64 `gorm:"column:position_x;type:numeric" json:"position_x"`
	PositionY float64 `gorm:"column:position_y;type:numeric" json:"position_y"`
	Rotation  float64 `gorm:"column:rotation_deg;type:numeric" json:"rotation"`
	Movable   bool    `gorm:"column:movable;default:true" json:"movable"`
}

func (Furniture) TableName() string {
	return "furniture"
}

// browsing fixtures invite customers to stop and linger
var browsingFurnitureTypes = map[string]bool{
	"table":        true,
	"display":      true,
	"mannequin":    true,
	"promo_island": true,
}

// IsBrowsingDisplay reports whether the fixture is a browse-and-linger display.
func (f Furniture) IsBrowsingDisplay() bool {
	return browsingFurnitureTypes[f.Type]
}

type SlotLevel string

const (
	SlotFloor SlotLevel = "floor"
	SlotLow   SlotLevel = "low"
	SlotEye   SlotLevel = "eye"
	SlotHigh  SlotLevel = "high"
)

// CREATE TABLE public.slots (
//     id                BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//     furniture_id      BIGINT NOT NULL REFERENCES furniture(id),
//     slot_code         TEXT,
//     slot_level        TEXT,
//     allowed_category  TEXT,
//     max_width_cm      NUMERIC, max_height_cm NUMERIC,
//     product_id        BIGINT NULL
// );

type Slot struct {
	ID              uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	FurnitureID     uint64    `gorm:"column:furniture_id;not null;index" json:"furniture_id"`
	Code            string    `gorm:"column:slot_code;type:text" json:"code"`
	Level           SlotLevel `gorm:"column:slot_level;type:text" json:"level"`
	AllowedCategory string    `gorm:"column:allowed_category;type:text" json:"allowed_category,omitempty"`
	MaxWidthCm      float64   `gorm:"column:max_width_cm;type:numeric" json:"max_width_cm"`
	MaxHeightCm     float64   `gorm:"column:max_height_cm;type:numeric" json:"max_height_cm"`
	ProductID       *uint64   `gorm:"column:product_id" json:"product_id,omitempty"`
}

func (Slot) TableName() string {
	return "slots"
}

func (s Slot) IsGolden() bool {
	return s.Level == SlotEye
}

// Accepts reports whether p may be placed in the slot: the slot must be free (or
// already hold p), the category must match when restricted, and p must fit.
func (s Slot) Accepts(p Product) bool {
	if s.ProductID != nil && *s.ProductID != p.ID {
		return false
	}
	if s.AllowedCategory != "" && s.AllowedCategory != p.Category {
		return false
	}
	if s.MaxWidthCm > 0 && p.WidthCm > s.MaxWidthCm {
		return false
	}
	if s.MaxHeightCm > 0 && p.HeightCm > s.MaxHeightCm {
		return false
	}
	return true
}
