package association

import (
	"context"
	"fmt"
	"sort"
	"time"

	"storeOptimizer/domain"
	"storeOptimizer/pkg/logger"
)

type LineItemRepository interface {
	ListLineItems(ctx context.Context, storeID uint64, since time.Time) ([]domain.LineItem, error)
}

type ProductRepository interface {
	ListProducts(ctx context.Context, storeID uint64) ([]domain.Product, error)
}

type Miner struct {
	lineItemRepo LineItemRepository
	productRepo  ProductRepository
	now          func() time.Time
}

func NewMiner(lineItemRepo LineItemRepository, productRepo ProductRepository) *Miner {
	return &Miner{
		lineItemRepo: lineItemRepo,
		productRepo:  productRepo,
		now:          time.Now,
	}
}

// Mine loads the trailing window of line items and runs Compute.
func (m *Miner) Mine(ctx context.Context, storeID uint64, cfg Config) (domain.AssociationAnalysis, error) {
	cfg = cfg.withDefaults()
	if err := ctx.Err(); err != nil {
		return domain.EmptyAssociationAnalysis(storeID, cfg.WindowDays, "cancelled"), fmt.Errorf("context error: %w", err)
	}

	end := cfg.AsOf
	if end.IsZero() {
		end = m.now()
	}
	since := end.AddDate(0, 0, -cfg.WindowDays)
	items, err := m.lineItemRepo.ListLineItems(ctx, storeID, since)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.EmptyAssociationAnalysis(storeID, cfg.WindowDays, "cancelled"), fmt.Errorf("context error: %w", ctxErr)
		}
		logger.Warn("association: line items unavailable", "store_id", storeID, "error", err)
		return domain.EmptyAssociationAnalysis(storeID, cfg.WindowDays, "line items unavailable"), nil
	}

	// categories are optional; item rules still work without them
	products, err := m.productRepo.ListProducts(ctx, storeID)
	if err != nil {
		logger.Warn("association: products unavailable, skipping category rules", "store_id", storeID, "error", err)
		products = nil
	}

	res := Compute(storeID, cfg, items, products)
	logger.Debug("association rules mined",
		"store_id", storeID,
		"transactions", res.TotalTransactions,
		"item_rules", len(res.ItemRules),
		"category_rules", len(res.CategoryRules),
	)
	return res, nil
}

type idPair struct{ a, b uint64 }

type catPair struct{ a, b string }

// Compute mines baskets formed by transaction id. Presence counts, not quantity.
func Compute(storeID uint64, cfg Config, items []domain.LineItem, products []domain.Product) domain.AssociationAnalysis {
	cfg = cfg.withDefaults()

	baskets := make(map[string]map[uint64]struct{})
	for _, li := range items {
		if li.TransactionID == "" {
			continue
		}
		b, ok := baskets[li.TransactionID]
		if !ok {
			b = make(map[uint64]struct{})
			baskets[li.TransactionID] = b
		}
		b[li.ProductID] = struct{}{}
	}

	n := len(baskets)
	if n < cfg.MinTransactions {
		res := domain.EmptyAssociationAnalysis(storeID, cfg.WindowDays,
			fmt.Sprintf("%d transactions in window, need %d", n, cfg.MinTransactions))
		res.TotalTransactions = n
		res.TotalLineItems = len(items)
		return res
	}

	category := make(map[uint64]string, len(products))
	for _, p := range products {
		if p.Category != "" {
			category[p.ID] = p.Category
		}
	}

	itemCount := make(map[uint64]int)
	pairCount := make(map[idPair]int)
	catCount := make(map[string]int)
	catPairCount := make(map[catPair]int)

	for _, b := range baskets {
		ids := make([]uint64, 0, len(b))
		cats := make(map[string]struct{})
		for id := range b {
			ids = append(ids, id)
			itemCount[id]++
			if c, ok := category[id]; ok {
				cats[c] = struct{}{}
			}
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				pairCount[idPair{ids[i], ids[j]}]++
			}
		}

		names := make([]string, 0, len(cats))
		for c := range cats {
			names = append(names, c)
			catCount[c]++
		}
		sort.Strings(names)
		for i := 0; i < len(names); i++ {
			for j := i + 1; j < len(names); j++ {
				catPairCount[catPair{names[i], names[j]}]++
			}
		}
	}

	total := float64(n)
	var itemRules []domain.AssociationRule
	affinityAcc := make(map[catPair]*struct {
		weighted float64
		count    int
	})

	for p, c := range pairCount {
		support := float64(c) / total
		if c < cfg.MinPairCount || support < cfg.MinSupport {
			continue
		}
		for _, dir := range [2]idPair{{p.a, p.b}, {p.b, p.a}} {
			itemRules = append(itemRules, buildRule(cfg, c, total, itemCount[dir.a], itemCount[dir.b], func(r *domain.AssociationRule) {
				r.Level = domain.RuleLevelItem
				r.AntecedentProductID = dir.a
				r.ConsequentProductID = dir.b
			}))
		}

		ca, okA := category[p.a]
		cb, okB := category[p.b]
		if !okA || !okB || ca == cb {
			continue
		}
		if ca > cb {
			ca, cb = cb, ca
		}
		key := catPair{ca, cb}
		acc, ok := affinityAcc[key]
		if !ok {
			acc = &struct {
				weighted float64
				count    int
			}{}
			affinityAcc[key] = acc
		}
		lift := liftOf(c, total, itemCount[p.a], itemCount[p.b])
		acc.weighted += lift * float64(c)
		acc.count += c
	}

	var catRules []domain.AssociationRule
	for p, c := range catPairCount {
		support := float64(c) / total
		if c < cfg.MinPairCount || support < cfg.MinSupport {
			continue
		}
		for _, dir := range [2]catPair{{p.a, p.b}, {p.b, p.a}} {
			catRules = append(catRules, buildRule(cfg, c, total, catCount[dir.a], catCount[dir.b], func(r *domain.AssociationRule) {
				r.Level = domain.RuleLevelCategory
				r.AntecedentCategory = dir.a
				r.ConsequentCategory = dir.b
			}))
		}
	}

	affinities := make([]domain.CategoryAffinity, 0, len(affinityAcc))
	for key, acc := range affinityAcc {
		meanLift := acc.weighted / float64(acc.count)
		aff := Affinity(meanLift)
		affinities = append(affinities, domain.CategoryAffinity{
			CategoryA: key.a,
			CategoryB: key.b,
			MeanLift:  meanLift,
			Affinity:  aff,
			PairCount: acc.count,
			Advice:    cfg.Advice(aff),
			Proximity: Proximity(aff),
		})
	}
	sort.Slice(affinities, func(i, j int) bool {
		if affinities[i].Affinity != affinities[j].Affinity {
			return affinities[i].Affinity > affinities[j].Affinity
		}
		if affinities[i].CategoryA != affinities[j].CategoryA {
			return affinities[i].CategoryA < affinities[j].CategoryA
		}
		return affinities[i].CategoryB < affinities[j].CategoryB
	})

	return domain.AssociationAnalysis{
		StoreID:            storeID,
		WindowDays:         cfg.WindowDays,
		TotalTransactions:  n,
		TotalLineItems:     len(items),
		ItemRules:          capRules(sortRules(itemRules), cfg.MaxRules),
		CategoryRules:      capRules(sortRules(catRules), cfg.MaxRules),
		CategoryAffinities: affinities,
		DataQuality:        domain.DataQuality{Sufficient: true},
	}
}

// lift(A,B) = P(AB) / (P(A) P(B)), symmetric in A and B
func liftOf(pair int, total float64, countA, countB int) float64 {
	if countA == 0 || countB == 0 {
		return 0
	}
	return (float64(pair) / total) / ((float64(countA) / total) * (float64(countB) / total))
}

func buildRule(cfg Config, pair int, total float64, countAnte, countCons int, label func(*domain.AssociationRule)) domain.AssociationRule {
	support := float64(pair) / total
	confidence := 0.0
	if countAnte > 0 {
		confidence = domain.Clamp(float64(pair)/float64(countAnte), 0, 1)
	}
	lift := liftOf(pair, total, countAnte, countCons)
	r := domain.AssociationRule{
		PairCount:  pair,
		Support:    support,
		Confidence: confidence,
		Lift:       lift,
		Strength:   cfg.Strength(lift),
		Positive:   lift > 1,
	}
	label(&r)
	return r
}

func sortRules(rules []domain.AssociationRule) []domain.AssociationRule {
	sort.Slice(rules, func(i, j int) bool {
		a, b := rules[i], rules[j]
		if a.Lift != b.Lift {
			return a.Lift > b.Lift
		}
		if a.Support != b.Support {
			return a.Support > b.Support
		}
		if a.AntecedentProductID != b.AntecedentProductID {
			return a.AntecedentProductID < b.AntecedentProductID
		}
		if a.ConsequentProductID != b.ConsequentProductID {
			return a.ConsequentProductID < b.ConsequentProductID
		}
		if a.AntecedentCategory != b.AntecedentCategory {
			return a.AntecedentCategory < b.AntecedentCategory
		}
		return a.ConsequentCategory < b.ConsequentCategory
	})
	return rules
}

func capRules(rules []domain.AssociationRule, max int) []domain.AssociationRule {
	if rules == nil {
		return []domain.AssociationRule{}
	}
	if len(rules) > max {
		return rules[:max]
	}
	return rules
}
