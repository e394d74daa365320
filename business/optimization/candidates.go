package optimization

import (
	"fmt"
	"math"
	"sort"

	"storeOptimizer/business/vmd"
	"storeOptimizer/domain"
)

const (
	tagGoldenSlot        = "golden_slot"
	tagAffinityColocate  = "affinity_colocate"
	tagHighValueFixture  = "high_value_fixture"
	tagDeadZoneRescue    = "dead_zone_rescue"
	tagConnectDeadZone   = "connect_dead_zone"
	tagRelieveBottleneck = "relieve_bottleneck"

	// zones below this visibility hide whatever fixture stands in them
	lowVisibility = 0.3
	// fraction of the way back toward the dead zone a bridging fixture is placed
	bridgeFraction = 0.25
	// spacing between fixtures relocated into the same zone
	fixtureSpacing = 1.5
)

// candidateCounts tracks what happened to candidates between generation and the result.
type candidateCounts struct {
	generated int
	skipped   int
	filtered  int
	truncated int
}

func (c candidateCounts) record(final []domain.OptimizationCandidate) {
	for _, cand := range final {
		OptimizationCandidatesTotal.WithLabelValues(string(cand.EntityType), "returned").Inc()
	}
	OptimizationCandidatesTotal.WithLabelValues("all", "skipped").Add(float64(c.skipped))
	OptimizationCandidatesTotal.WithLabelValues("all", "filtered").Add(float64(c.filtered))
	OptimizationCandidatesTotal.WithLabelValues("all", "truncated").Add(float64(c.truncated))
}

type generator struct {
	cfg       Config
	layout    domain.Layout
	flow      domain.FlowAnalysis
	assoc     domain.AssociationAnalysis
	zonePerf  map[uint64]domain.ZonePerformance
	prodPerf  map[uint64]domain.ProductPerformance
	highValue map[uint64]bool
	params    domain.OptimizationParameters

	furnitureByID map[uint64]domain.Furniture
	zoneByID      map[uint64]domain.Zone
	counts        candidateCounts
}

func newGenerator(cfg Config, in pipelineInputs, highValue map[uint64]bool, params domain.OptimizationParameters) *generator {
	g := &generator{
		cfg:           cfg,
		layout:        in.layout,
		flow:          in.flow,
		assoc:         in.assoc,
		zonePerf:      in.zonePerf,
		prodPerf:      in.productPerf,
		highValue:     highValue,
		params:        params,
		furnitureByID: make(map[uint64]domain.Furniture, len(in.layout.Furniture)),
		zoneByID:      make(map[uint64]domain.Zone, len(in.layout.Zones)),
	}
	for _, f := range in.layout.Furniture {
		g.furnitureByID[f.ID] = f
	}
	for _, z := range in.layout.Zones {
		g.zoneByID[z.ID] = z
	}
	if g.cfg.DestinationsPerProduct <= 0 {
		g.cfg.DestinationsPerProduct = defaultDestinationsPerProduct
	}
	return g
}

// generate runs the generators the request's priorities select, then applies the
// request filters and the placement rules.
func (g *generator) generate(optType domain.OptimizationType) ([]domain.OptimizationCandidate, candidateCounts) {
	p := g.params
	all := !p.PrioritizeRevenue && !p.PrioritizeVisibility && !p.PrioritizeAccessibility

	var out []domain.OptimizationCandidate
	if all || p.PrioritizeRevenue {
		if optType.IncludesProducts() {
			out = append(out, g.goldenSlot()...)
			out = append(out, g.affinityColocate()...)
		}
		if optType.IncludesFurniture() {
			out = append(out, g.highValueFixture()...)
		}
	}
	if all || p.PrioritizeVisibility {
		if optType.IncludesProducts() {
			out = append(out, g.deadZoneRescue()...)
		}
		if optType.IncludesFurniture() {
			out = append(out, g.connectDeadZone()...)
		}
	}
	if all || p.PrioritizeAccessibility {
		if optType.IncludesFurniture() {
			out = append(out, g.relieveBottleneck()...)
		}
	}

	g.counts.generated = len(out)
	kept := out[:0]
	for _, c := range out {
		if !g.matchesFilters(c) || !g.valid(c) {
			g.counts.filtered++
			continue
		}
		kept = append(kept, c)
	}
	return kept, g.counts
}

// ---- product generators ----

// goldenSlot moves high-value products off non-eye slots onto free eye-level slots.
func (g *generator) goldenSlot() []domain.OptimizationCandidate {
	var out []domain.OptimizationCandidate
	for _, p := range g.sortedProducts() {
		if !g.highValue[p.ID] || p.SlotID == nil {
			continue
		}
		slot, ok := g.layout.SlotByID(*p.SlotID)
		if !ok || slot.IsGolden() {
			continue
		}
		dests := g.freeSlots(p, func(s domain.Slot, zoneID uint64) bool {
			return s.IsGolden() && !g.zoneExcluded(zoneID)
		}, p.ZoneID)
		if len(dests) == 0 {
			g.counts.skipped++
			continue
		}
		for _, d := range dests {
			out = append(out, g.productMove(p, d, tagGoldenSlot))
		}
	}
	return out
}

// affinityColocate brings the weaker-selling side of a co-locate pair next to its partner
// when the two categories sit farther apart than their proximity tier allows.
func (g *generator) affinityColocate() []domain.OptimizationCandidate {
	maxDistance := g.cfg.VMD.MaxDistance
	if maxDistance == nil {
		maxDistance = vmd.DefaultConfig().MaxDistance
	}
	zonesByCategory := g.categoryZones()

	var out []domain.OptimizationCandidate
	for _, a := range g.assoc.CategoryAffinities {
		if a.Advice != domain.AdviceCoLocate {
			continue
		}
		limit, ok := maxDistance[a.Proximity]
		if !ok || limit <= 0 {
			continue
		}
		za, zb := zonesByCategory[a.CategoryA], zonesByCategory[a.CategoryB]
		if len(za) == 0 || len(zb) == 0 || g.minDistance(za, zb) <= limit {
			continue
		}

		mover, partner := a.CategoryA, a.CategoryB
		if g.categoryRevenue(a.CategoryB) < g.categoryRevenue(a.CategoryA) {
			mover, partner = a.CategoryB, a.CategoryA
		}
		partnerZones := make(map[uint64]bool)
		for _, z := range zonesByCategory[partner] {
			partnerZones[z] = true
		}

		for _, p := range g.sortedProducts() {
			if p.Category != mover || partnerZones[p.ZoneID] {
				continue
			}
			dests := g.freeSlots(p, func(_ domain.Slot, zoneID uint64) bool {
				return partnerZones[zoneID]
			}, 0)
			if len(dests) == 0 {
				g.counts.skipped++
				continue
			}
			for _, d := range dests {
				out = append(out, g.productMove(p, d, tagAffinityColocate))
			}
		}
	}
	return out
}

// deadZoneRescue moves products out of dead zones into busier, uncongested zones.
func (g *generator) deadZoneRescue() []domain.OptimizationCandidate {
	var out []domain.OptimizationCandidate
	for _, p := range g.sortedProducts() {
		if p.ZoneID == 0 || !g.flow.IsDeadZone(p.ZoneID) {
			continue
		}
		originVisits := g.visits(p.ZoneID)
		dests := g.freeSlots(p, func(_ domain.Slot, zoneID uint64) bool {
			if g.zoneExcluded(zoneID) || g.flow.IsDeadZone(zoneID) {
				return false
			}
			if _, bottleneck := g.flow.BottleneckFor(zoneID); bottleneck {
				return false
			}
			return g.visits(zoneID) > originVisits
		}, 0)
		if len(dests) == 0 {
			g.counts.skipped++
			continue
		}
		for _, d := range dests {
			out = append(out, g.productMove(p, d, tagDeadZoneRescue))
		}
	}
	return out
}

// ---- furniture generators ----

// highValueFixture moves fixtures carrying high-value stock out of low-visibility zones.
func (g *generator) highValueFixture() []domain.OptimizationCandidate {
	if !g.flow.DataQuality.Sufficient {
		return nil
	}
	target, ok := g.mostVisibleZone()
	if !ok {
		return nil
	}

	var out []domain.OptimizationCandidate
	moved := 0
	for _, f := range g.sortedMovableFurniture() {
		if f.ZoneID == target.ID || g.flow.IsDeadZone(f.ZoneID) {
			continue
		}
		if g.flow.ZoneStats[f.ZoneID].Visibility >= lowVisibility || !g.carriesHighValue(f.ID) {
			continue
		}
		x, y := spaced(target.CenterX, target.CenterY, moved)
		moved++
		out = append(out, g.furnitureMove(f, target.ID, x, y, tagHighValueFixture))
	}
	return out
}

// connectDeadZone moves the best-selling movable fixture of a dead zone to the edge of
// the nearest healthy zone, pulled back toward the dead zone.
func (g *generator) connectDeadZone() []domain.OptimizationCandidate {
	var out []domain.OptimizationCandidate
	for _, op := range g.flow.Opportunities {
		if op.Type != domain.OpportunityConnectDeadZone {
			continue
		}
		dead, okD := g.zoneByID[op.ZoneID]
		target, okT := g.zoneByID[op.TargetZoneID]
		if !okD || !okT {
			continue
		}

		var best domain.Furniture
		bestRevenue, found := -1.0, false
		for _, f := range g.sortedMovableFurniture() {
			if f.ZoneID != dead.ID {
				continue
			}
			if r := g.furnitureRevenue(f.ID); r > bestRevenue {
				best, bestRevenue, found = f, r, true
			}
		}
		if !found {
			g.counts.skipped++
			continue
		}
		x := target.CenterX + bridgeFraction*(dead.CenterX-target.CenterX)
		y := target.CenterY + bridgeFraction*(dead.CenterY-target.CenterY)
		out = append(out, g.furnitureMove(best, target.ID, x, y, tagConnectDeadZone))
	}
	return out
}

// relieveBottleneck moves browsing displays out of congested zones.
func (g *generator) relieveBottleneck() []domain.OptimizationCandidate {
	var out []domain.OptimizationCandidate
	for _, op := range g.flow.Opportunities {
		if op.Type != domain.OpportunityRelieveBottleneck {
			continue
		}
		target, ok := g.zoneByID[op.TargetZoneID]
		if !ok {
			continue
		}
		moved := 0
		for _, f := range g.sortedMovableFurniture() {
			if f.ZoneID != op.ZoneID || !f.IsBrowsingDisplay() {
				continue
			}
			x, y := spaced(target.CenterX, target.CenterY, moved)
			moved++
			out = append(out, g.furnitureMove(f, target.ID, x, y, tagRelieveBottleneck))
		}
		if moved == 0 {
			g.counts.skipped++
		}
	}
	return out
}

// ---- builders ----

type slotDestination struct {
	slot   domain.Slot
	zoneID uint64
}

func (g *generator) productMove(p domain.Product, d slotDestination, tag string) domain.OptimizationCandidate {
	slotID := d.slot.ID
	var current *uint64
	if p.SlotID != nil {
		sid := *p.SlotID
		current = &sid
	}
	return domain.OptimizationCandidate{
		ID:         fmt.Sprintf("%s-%d-%s-%d", domain.EntityProduct, p.ID, tag, slotID),
		EntityType: domain.EntityProduct,
		EntityID:   p.ID,
		Current: domain.Placement{
			ZoneID:      p.ZoneID,
			FurnitureID: p.FurnitureID,
			SlotID:      current,
		},
		Suggested: domain.Placement{
			ZoneID:      d.zoneID,
			FurnitureID: d.slot.FurnitureID,
			SlotID:      &slotID,
		},
		RationaleTag: tag,
	}
}

func (g *generator) furnitureMove(f domain.Furniture, zoneID uint64, x, y float64, tag string) domain.OptimizationCandidate {
	return domain.OptimizationCandidate{
		ID:         fmt.Sprintf("%s-%d-%s", domain.EntityFurniture, f.ID, tag),
		EntityType: domain.EntityFurniture,
		EntityID:   f.ID,
		Current: domain.Placement{
			ZoneID:    f.ZoneID,
			PositionX: f.PositionX,
			PositionY: f.PositionY,
		},
		Suggested: domain.Placement{
			ZoneID:    zoneID,
			PositionX: x,
			PositionY: y,
		},
		RationaleTag: tag,
	}
}

// ---- filters and placement rules ----

func (g *generator) matchesFilters(c domain.OptimizationCandidate) bool {
	p := g.params
	if len(p.ZoneIDs) > 0 && !contains(p.ZoneIDs, c.Current.ZoneID) && !contains(p.ZoneIDs, c.Suggested.ZoneID) {
		return false
	}
	if c.EntityType == domain.EntityProduct && len(p.ProductIDs) > 0 && !contains(p.ProductIDs, c.EntityID) {
		return false
	}
	if c.EntityType == domain.EntityFurniture && len(p.FurnitureIDs) > 0 && !contains(p.FurnitureIDs, c.EntityID) {
		return false
	}
	return true
}

// valid checks the placement rules: the entity exists, fixtures are movable,
// the destination zone exists and a product's slot belongs to the suggested fixture
// and accepts the product.
func (g *generator) valid(c domain.OptimizationCandidate) bool {
	if _, ok := g.zoneByID[c.Suggested.ZoneID]; !ok {
		return false
	}
	switch c.EntityType {
	case domain.EntityFurniture:
		f, ok := g.furnitureByID[c.EntityID]
		return ok && f.Movable && f.ZoneID != c.Suggested.ZoneID
	case domain.EntityProduct:
		p, ok := g.layout.ProductByID(c.EntityID)
		if !ok || c.Suggested.SlotID == nil {
			return false
		}
		slot, ok := g.layout.SlotByID(*c.Suggested.SlotID)
		if !ok || slot.FurnitureID != c.Suggested.FurnitureID || !slot.Accepts(p) {
			return false
		}
		f, ok := g.furnitureByID[slot.FurnitureID]
		return ok && f.ZoneID == c.Suggested.ZoneID
	}
	return false
}

// ---- lookups ----

// freeSlots lists up to DestinationsPerProduct empty slots that accept p and pass keep.
// Slots in preferZone come first, then busier zones, then lower slot ids.
func (g *generator) freeSlots(p domain.Product, keep func(domain.Slot, uint64) bool, preferZone uint64) []slotDestination {
	var dests []slotDestination
	for _, s := range g.layout.Slots {
		if s.ProductID != nil || (p.SlotID != nil && *p.SlotID == s.ID) || !s.Accepts(p) {
			continue
		}
		f, ok := g.furnitureByID[s.FurnitureID]
		if !ok || !keep(s, f.ZoneID) {
			continue
		}
		dests = append(dests, slotDestination{slot: s, zoneID: f.ZoneID})
	}
	sort.SliceStable(dests, func(i, j int) bool {
		a, b := dests[i], dests[j]
		if preferZone != 0 && (a.zoneID == preferZone) != (b.zoneID == preferZone) {
			return a.zoneID == preferZone
		}
		if va, vb := g.visits(a.zoneID), g.visits(b.zoneID); va != vb {
			return va > vb
		}
		return a.slot.ID < b.slot.ID
	})
	if len(dests) > g.cfg.DestinationsPerProduct {
		dests = dests[:g.cfg.DestinationsPerProduct]
	}
	return dests
}

// visits prefers observed flow and falls back to the zone's visitor baseline.
func (g *generator) visits(zoneID uint64) int {
	if st, ok := g.flow.ZoneStats[zoneID]; ok && g.flow.DataQuality.Sufficient {
		return st.Visits
	}
	return g.zonePerf[zoneID].Visitors
}

// zoneExcluded reports zones that never receive merchandise.
func (g *generator) zoneExcluded(zoneID uint64) bool {
	z, ok := g.zoneByID[zoneID]
	return !ok || z.Type == domain.ZoneStorage
}

func (g *generator) mostVisibleZone() (domain.Zone, bool) {
	var best domain.Zone
	bestVis, found := -1.0, false
	for _, z := range g.layout.Zones {
		if z.Type == domain.ZoneStorage || z.Type == domain.ZoneCheckout || g.flow.IsDeadZone(z.ID) {
			continue
		}
		if _, bottleneck := g.flow.BottleneckFor(z.ID); bottleneck {
			continue
		}
		vis := g.flow.ZoneStats[z.ID].Visibility
		if vis > bestVis || (vis == bestVis && z.ID < best.ID) {
			best, bestVis, found = z, vis, true
		}
	}
	return best, found
}

func (g *generator) sortedProducts() []domain.Product {
	out := append([]domain.Product(nil), g.layout.Products...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (g *generator) sortedMovableFurniture() []domain.Furniture {
	var out []domain.Furniture
	for _, f := range g.layout.Furniture {
		if f.Movable {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (g *generator) carriesHighValue(furnitureID uint64) bool {
	for _, p := range g.layout.Products {
		if p.FurnitureID == furnitureID && g.highValue[p.ID] {
			return true
		}
	}
	return false
}

func (g *generator) furnitureRevenue(furnitureID uint64) float64 {
	var sum float64
	for _, p := range g.layout.Products {
		if p.FurnitureID == furnitureID {
			sum += g.prodPerf[p.ID].Revenue
		}
	}
	return sum
}

func (g *generator) categoryRevenue(category string) float64 {
	var sum float64
	for _, p := range g.layout.Products {
		if p.Category == category {
			sum += g.prodPerf[p.ID].Revenue
		}
	}
	return sum
}

func (g *generator) categoryZones() map[string][]uint64 {
	seen := make(map[string]map[uint64]bool)
	for _, p := range g.layout.Products {
		if p.ZoneID == 0 || p.Category == "" {
			continue
		}
		if seen[p.Category] == nil {
			seen[p.Category] = make(map[uint64]bool)
		}
		seen[p.Category][p.ZoneID] = true
	}
	out := make(map[string][]uint64, len(seen))
	for c, zones := range seen {
		for z := range zones {
			out[c] = append(out[c], z)
		}
		sort.Slice(out[c], func(i, j int) bool { return out[c][i] < out[c][j] })
	}
	return out
}

func (g *generator) minDistance(a, b []uint64) float64 {
	best := math.Inf(1)
	for _, x := range a {
		for _, y := range b {
			if d := g.layout.ZoneDistance(x, y); d < best {
				best = d
			}
		}
	}
	return best
}

func spaced(x, y float64, i int) (float64, float64) {
	return x + float64(i)*fixtureSpacing, y
}

func contains(ids []uint64, id uint64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
