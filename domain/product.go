package domain

import (
	"time"
)

// CREATE TABLE public.products (
//     id              BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//     store_id        BIGINT NOT NULL,
//     product_sku     TEXT,
//     product_name    TEXT,
//     product_category TEXT,
//     price           NUMERIC,
//     margin          NUMERIC,      -- gross margin ratio, 0..1
//     width_cm        NUMERIC, height_cm NUMERIC,
//     zone_id         BIGINT, furniture_id BIGINT, slot_id BIGINT,
//     created_at      TIMESTAMPTZ DEFAULT NOW()
// );

type Product struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	StoreID     uint64    `gorm:"column:store_id;not null;index" json:"store_id"`
	SKU         string    `gorm:"column:product_sku;type:text" json:"sku"`
	Name        string    `gorm:"column:product_name;type:text" json:"name"`
	Category    string    `gorm:"column:product_category;type:text" json:"category"`
	Price       float64   `gorm:"column:price;type:numeric" json:"price"`
	Margin      float64   `gorm:"column:margin;type:numeric" json:"margin"`
	WidthCm     float64   `gorm:"column:width_cm;type:numeric" json:"width_cm"`
	HeightCm    float64   `gorm:"column:height_cm;type:numeric" json:"height_cm"`
	ZoneID      uint64    `gorm:"column:zone_id" json:"zone_id"`
	FurnitureID uint64    `gorm:"column:furniture_id" json:"furniture_id"`
	SlotID      *uint64   `gorm:"column:slot_id" json:"slot_id,omitempty"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Product) TableName() string {
	return "products"
}

// ProductPerformance is the trailing-window sales aggregate for one product.
type ProductPerformance struct {
	ProductID uint64  `gorm:"column:product_id" json:"product_id"`
	UnitsSold int     `gorm:"column:units_sold" json:"units_sold"`
	Revenue   float64 `gorm:"column:revenue" json:"revenue"`
}

// ZonePerformance is the trailing-window baseline for one zone.
type ZonePerformance struct {
	ZoneID       uint64  `gorm:"column:zone_id" json:"zone_id"`
	Visitors     int     `gorm:"column:visitors" json:"visitors"`
	Transactions int     `gorm:"column:transactions" json:"transactions"`
	Revenue      float64 `gorm:"column:revenue" json:"revenue"`
}

// RevenuePerVisitor returns 0 when the zone had no visitors.
func (z ZonePerformance) RevenuePerVisitor() float64 {
	if z.Visitors <= 0 {
		return 0
	}
	return z.Revenue / float64(z.Visitors)
}

// ConversionRate is transactions per visitor, clamped to [0,1].
func (z ZonePerformance) ConversionRate() float64 {
	if z.Visitors <= 0 {
		return 0
	}
	return Clamp(float64(z.Transactions)/float64(z.Visitors), 0, 1)
}
