package flow

import (
	"math"
	"sort"

	"storeOptimizer/domain"
)

// graph is the directed zone-transition graph for one store and window.
type graph struct {
	zones   []domain.Zone
	known   map[uint64]domain.Zone
	edges   map[uint64]map[uint64]int // from -> to -> count, from != outside
	out     map[uint64]int
	inbound map[uint64]int
	entries map[uint64]int
	dwell   map[uint64][]float64
	used    []domain.ZoneTransition
}

func buildGraph(zones []domain.Zone, transitions []domain.ZoneTransition) *graph {
	g := &graph{
		zones:   zones,
		known:   make(map[uint64]domain.Zone, len(zones)),
		edges:   make(map[uint64]map[uint64]int),
		out:     make(map[uint64]int),
		inbound: make(map[uint64]int),
		entries: make(map[uint64]int),
		dwell:   make(map[uint64][]float64),
	}
	for _, z := range zones {
		g.known[z.ID] = z
	}

	for _, t := range transitions {
		if !g.endpointKnown(t.FromZoneID) || !g.endpointKnown(t.ToZoneID) {
			continue
		}
		if t.FromZoneID == domain.OutsideZoneID && t.ToZoneID == domain.OutsideZoneID {
			continue
		}
		g.used = append(g.used, t)

		if t.FromZoneID == domain.OutsideZoneID {
			g.entries[t.ToZoneID]++
		} else {
			row, ok := g.edges[t.FromZoneID]
			if !ok {
				row = make(map[uint64]int)
				g.edges[t.FromZoneID] = row
			}
			row[t.ToZoneID]++
			g.out[t.FromZoneID]++
		}

		if t.ToZoneID != domain.OutsideZoneID {
			g.inbound[t.ToZoneID]++
			if t.DwellSeconds > 0 && !math.IsNaN(t.DwellSeconds) {
				g.dwell[t.ToZoneID] = append(g.dwell[t.ToZoneID], t.DwellSeconds)
			}
		}
	}
	return g
}

func (g *graph) endpointKnown(id uint64) bool {
	if id == domain.OutsideZoneID {
		return true
	}
	_, ok := g.known[id]
	return ok
}

// probabilityMatrix row-normalizes outgoing counts. The exit column is kept so every
// row with traffic sums to 1; zones without outgoing transitions get an empty row.
func (g *graph) probabilityMatrix() domain.ProbabilityMatrix {
	m := make(domain.ProbabilityMatrix, len(g.zones))
	for _, z := range g.zones {
		row := make(map[uint64]float64)
		total := g.out[z.ID]
		if total > 0 {
			for to, c := range g.edges[z.ID] {
				row[to] = float64(c) / float64(total)
			}
		}
		m[z.ID] = row
	}
	return m
}

func (g *graph) zoneStats() map[uint64]domain.ZoneFlowStats {
	stats := make(map[uint64]domain.ZoneFlowStats, len(g.zones))

	totalVisits, maxVisits := 0, 0
	for _, z := range g.zones {
		v := g.inbound[z.ID]
		totalVisits += v
		if v > maxVisits {
			maxVisits = v
		}
	}

	for _, z := range g.zones {
		v := g.inbound[z.ID]
		s := domain.ZoneFlowStats{
			ZoneID:     z.ID,
			Visits:     v,
			Congestion: float64(v) / z.CapacityNormalizer(),
		}
		if totalVisits > 0 {
			s.VisitShare = float64(v) / float64(totalVisits)
		}
		if maxVisits > 0 {
			s.Visibility = float64(v) / float64(maxVisits)
		}
		s.AvgDwell, s.DwellVariance = meanVariance(g.dwell[z.ID])
		if s.AvgDwell > 0 {
			s.DwellCV = math.Sqrt(s.DwellVariance) / s.AvgDwell
		}
		stats[z.ID] = s
	}
	return stats
}

// visitStats returns distinct visits, mean zones per visit and mean visit duration.
func (g *graph) visitStats() (int, float64, float64) {
	type visit struct {
		zones       int
		first, last int64
	}
	visits := make(map[string]*visit)
	for _, t := range g.used {
		ts := t.TransitionedAt.Unix()
		v, ok := visits[t.VisitID]
		if !ok {
			v = &visit{first: ts, last: ts}
			visits[t.VisitID] = v
		}
		if t.ToZoneID != domain.OutsideZoneID {
			v.zones++
		}
		if ts < v.first {
			v.first = ts
		}
		if ts > v.last {
			v.last = ts
		}
	}
	if len(visits) == 0 {
		return 0, 0, 0
	}
	var zones, secs float64
	for _, v := range visits {
		zones += float64(v.zones)
		secs += float64(v.last - v.first)
	}
	n := float64(len(visits))
	return len(visits), zones / n, secs / n
}

// entryZones are entrance-typed zones plus any zone entered from outside, in id order.
func (g *graph) entryZones() []uint64 {
	set := make(map[uint64]bool)
	for _, z := range g.zones {
		if z.IsEntry() {
			set[z.ID] = true
		}
	}
	for id := range g.entries {
		set[id] = true
	}
	ids := make([]uint64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (g *graph) totalEntries() int {
	n := 0
	for _, c := range g.entries {
		n += c
	}
	return n
}

func meanVariance(xs []float64) (float64, float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	mean := sum / float64(len(xs))
	var sq float64
	for _, x := range xs {
		sq += (x - mean) * (x - mean)
	}
	return mean, sq / float64(len(xs))
}
