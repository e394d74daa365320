package domain

import (
	"math"
)

// Layout is the full spatial state of one store as loaded for an optimization run.
type Layout struct {
	StoreID   uint64      `json:"store_id"`
	Zones     []Zone      `json:"zones"`
	Furniture []Furniture `json:"furniture"`
	Slots     []Slot      `json:"slots"`
	Products  []Product   `json:"products"`
}

func (l Layout) ZoneByID(id uint64) (Zone, bool) {
	for _, z := range l.Zones {
		if z.ID == id {
			return z, true
		}
	}
	return Zone{}, false
}

func (l Layout) FurnitureByID(id uint64) (Furniture, bool) {
	for _, f := range l.Furniture {
		if f.ID == id {
			return f, true
		}
	}
	return Furniture{}, false
}

func (l Layout) SlotByID(id uint64) (Slot, bool) {
	for _, s := range l.Slots {
		if s.ID == id {
			return s, true
		}
	}
	return Slot{}, false
}

func (l Layout) ProductByID(id uint64) (Product, bool) {
	for _, p := range l.Products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// ZoneDistance is the euclidean distance between zone centers; unknown zones are infinitely far.
func (l Layout) ZoneDistance(a, b uint64) float64 {
	if a == b {
		return 0
	}
	za, okA := l.ZoneByID(a)
	zb, okB := l.ZoneByID(b)
	if !okA || !okB {
		return math.Inf(1)
	}
	return math.Hypot(za.CenterX-zb.CenterX, za.CenterY-zb.CenterY)
}

// Clone returns a deep copy safe to mutate when projecting a candidate.
func (l Layout) Clone() Layout {
	out := Layout{
		StoreID:   l.StoreID,
		Zones:     append([]Zone(nil), l.Zones...),
		Furniture: append([]Furniture(nil), l.Furniture...),
		Slots:     make([]Slot, len(l.Slots)),
		Products:  make([]Product, len(l.Products)),
	}
	for i, s := range l.Slots {
		if s.ProductID != nil {
			pid := *s.ProductID
			s.ProductID = &pid
		}
		out.Slots[i] = s
	}
	for i, p := range l.Products {
		if p.SlotID != nil {
			sid := *p.SlotID
			p.SlotID = &sid
		}
		out.Products[i] = p
	}
	return out
}

// Apply returns a copy of the layout with the candidate's suggested placement in effect.
// Unknown entities leave the layout unchanged.
func (l Layout) Apply(c OptimizationCandidate) Layout {
	out := l.Clone()
	switch c.EntityType {
	case EntityFurniture:
		for i := range out.Furniture {
			if out.Furniture[i].ID != c.EntityID {
				continue
			}
			out.Furniture[i].ZoneID = c.Suggested.ZoneID
			out.Furniture[i].PositionX = c.Suggested.PositionX
			out.Furniture[i].PositionY = c.Suggested.PositionY
			// products on the fixture travel with it
			for j := range out.Products {
				if out.Products[j].FurnitureID == c.EntityID {
					out.Products[j].ZoneID = c.Suggested.ZoneID
				}
			}
		}
	case EntityProduct:
		for i := range out.Products {
			p := &out.Products[i]
			if p.ID != c.EntityID {
				continue
			}
			for j := range out.Slots {
				if p.SlotID != nil && out.Slots[j].ID == *p.SlotID {
					out.Slots[j].ProductID = nil
				}
				if c.Suggested.SlotID != nil && out.Slots[j].ID == *c.Suggested.SlotID {
					pid := p.ID
					out.Slots[j].ProductID = &pid
				}
			}
			p.ZoneID = c.Suggested.ZoneID
			p.FurnitureID = c.Suggested.FurnitureID
			if c.Suggested.SlotID != nil {
				sid := *c.Suggested.SlotID
				p.SlotID = &sid
			} else {
				p.SlotID = nil
			}
		}
	}
	return out
}

// Clamp bounds v to [lo, hi]; NaN collapses to lo.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
