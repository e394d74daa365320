package layout

import (
	"context"
	"errors"
	"fmt"

	"storeOptimizer/domain"
	"storeOptimizer/pkg/logger"
)

type Repository interface {
	GetStore(ctx context.Context, storeID uint64) (domain.Store, error)
	GetLayout(ctx context.Context, storeID uint64) (domain.Layout, error)
}

// View is the store's current floor plan as returned by the layout endpoint.
type View struct {
	Store  domain.Store  `json:"store"`
	Layout domain.Layout `json:"layout"`
	Counts Counts        `json:"counts"`
}

type Counts struct {
	Zones            int `json:"zones"`
	Furniture        int `json:"furniture"`
	MovableFurniture int `json:"movable_furniture"`
	Slots            int `json:"slots"`
	FreeSlots        int `json:"free_slots"`
	Products         int `json:"products"`
	UnplacedProducts int `json:"unplaced_products"`
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetLayout(ctx context.Context, storeID uint64) (*View, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	store, err := s.repo.GetStore(ctx, storeID)
	if err != nil {
		if errors.Is(err, domain.ErrStoreNotFound) {
			return nil, fmt.Errorf("store %d: %w", storeID, domain.ErrStoreNotFound)
		}
		return nil, fmt.Errorf("failed to get store: %w", err)
	}

	l, err := s.repo.GetLayout(ctx, storeID)
	if err != nil {
		logger.Error("failed to load layout", "store_id", storeID, "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrLayoutUnavailable, err)
	}

	return &View{Store: store, Layout: l, Counts: count(l)}, nil
}

func count(l domain.Layout) Counts {
	c := Counts{
		Zones:     len(l.Zones),
		Furniture: len(l.Furniture),
		Slots:     len(l.Slots),
		Products:  len(l.Products),
	}
	for _, f := range l.Furniture {
		if f.Movable {
			c.MovableFurniture++
		}
	}
	for _, s := range l.Slots {
		if s.ProductID == nil {
			c.FreeSlots++
		}
	}
	for _, p := range l.Products {
		if p.SlotID == nil && p.FurnitureID == 0 {
			c.UnplacedProducts++
		}
	}
	return c
}
