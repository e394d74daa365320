package flow

import (
	"fmt"
	"math"
	"sort"

	"storeOptimizer/domain"
)

const (
	maxCongestionPenalty = 50.0
	maxDeadZonePenalty   = 50.0
	congestionPenaltyPer = 15.0
	nearbyZoneCount      = 3
)

func bottleneckSeverity(ratio, threshold float64) domain.Severity {
	over := ratio / threshold
	switch {
	case over < 1.25:
		return domain.SeverityLow
	case over < 1.5:
		return domain.SeverityMedium
	case over < 2:
		return domain.SeverityHigh
	default:
		return domain.SeverityCritical
	}
}

func findBottlenecks(zones []domain.Zone, stats map[uint64]domain.ZoneFlowStats, cfg Config) []domain.Bottleneck {
	out := []domain.Bottleneck{}
	if len(zones) == 0 {
		return out
	}
	var sum float64
	for _, z := range zones {
		sum += stats[z.ID].Congestion
	}
	mean := sum / float64(len(zones))
	if mean <= 0 {
		return out
	}

	for _, z := range zones {
		s := stats[z.ID]
		ratio := s.Congestion / mean
		if ratio <= cfg.BottleneckThreshold || s.DwellCV <= cfg.DwellCVThreshold {
			continue
		}
		out = append(out, domain.Bottleneck{
			ZoneID:          z.ID,
			CongestionRatio: ratio,
			DwellCV:         s.DwellCV,
			Severity:        bottleneckSeverity(ratio, cfg.BottleneckThreshold),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CongestionRatio != out[j].CongestionRatio {
			return out[i].CongestionRatio > out[j].CongestionRatio
		}
		return out[i].ZoneID < out[j].ZoneID
	})
	return out
}

// customerZones excludes back-of-house storage.
func customerZones(zones []domain.Zone) []domain.Zone {
	out := make([]domain.Zone, 0, len(zones))
	for _, z := range zones {
		if z.Type != domain.ZoneStorage {
			out = append(out, z)
		}
	}
	return out
}

func findDeadZones(zones []domain.Zone, stats map[uint64]domain.ZoneFlowStats, cfg Config) []domain.DeadZone {
	out := []domain.DeadZone{}
	cz := customerZones(zones)
	if len(cz) == 0 {
		return out
	}
	total := 0
	for _, z := range cz {
		total += stats[z.ID].Visits
	}
	mean := float64(total) / float64(len(cz))
	if mean <= 0 {
		return out
	}
	for _, z := range cz {
		v := stats[z.ID].Visits
		rel := float64(v) / mean
		if rel < cfg.DeadZoneFraction {
			out = append(out, domain.DeadZone{ZoneID: z.ID, Visits: v, RelativeVisit: rel})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RelativeVisit != out[j].RelativeVisit {
			return out[i].RelativeVisit < out[j].RelativeVisit
		}
		return out[i].ZoneID < out[j].ZoneID
	})
	return out
}

func findOpportunities(
	zones []domain.Zone,
	stats map[uint64]domain.ZoneFlowStats,
	paths []domain.FlowPath,
	bottlenecks []domain.Bottleneck,
	dead []domain.DeadZone,
) []domain.LayoutOpportunity {
	out := []domain.LayoutOpportunity{}
	spatial := domain.Layout{Zones: zones}

	deadSet := make(map[uint64]bool, len(dead))
	for _, d := range dead {
		deadSet[d.ZoneID] = true
	}
	onPath := make(map[uint64]bool)
	for _, p := range paths {
		for _, id := range p.ZoneIDs {
			if !deadSet[id] {
				onPath[id] = true
			}
		}
	}

	for _, d := range dead {
		target, ok := nearest(spatial, d.ZoneID, func(id uint64) bool { return onPath[id] })
		if !ok {
			continue
		}
		out = append(out, domain.LayoutOpportunity{
			Type:         domain.OpportunityConnectDeadZone,
			ZoneID:       d.ZoneID,
			TargetZoneID: target,
			Description:  fmt.Sprintf("connect dead zone %d to high-traffic path through zone %d", d.ZoneID, target),
		})
	}

	bnSet := make(map[uint64]bool, len(bottlenecks))
	for _, b := range bottlenecks {
		bnSet[b.ZoneID] = true
	}
	for _, b := range bottlenecks {
		near := nearestN(spatial, b.ZoneID, nearbyZoneCount, func(id uint64) bool {
			z, _ := spatial.ZoneByID(id)
			return !bnSet[id] && z.Type != domain.ZoneStorage
		})
		if len(near) == 0 {
			continue
		}
		target := near[0]
		for _, id := range near[1:] {
			if stats[id].Congestion < stats[target].Congestion {
				target = id
			}
		}
		out = append(out, domain.LayoutOpportunity{
			Type:         domain.OpportunityRelieveBottleneck,
			ZoneID:       b.ZoneID,
			TargetZoneID: target,
			Description:  fmt.Sprintf("relieve bottleneck zone %d by shifting displays toward zone %d", b.ZoneID, target),
		})
	}
	return out
}

func nearest(l domain.Layout, from uint64, keep func(uint64) bool) (uint64, bool) {
	ids := nearestN(l, from, 1, keep)
	if len(ids) == 0 {
		return 0, false
	}
	return ids[0], true
}

// nearestN returns up to n zone ids closest to from, ties by id.
func nearestN(l domain.Layout, from uint64, n int, keep func(uint64) bool) []uint64 {
	type cand struct {
		id   uint64
		dist float64
	}
	var cands []cand
	for _, z := range l.Zones {
		if z.ID == from || !keep(z.ID) {
			continue
		}
		d := l.ZoneDistance(from, z.ID)
		if math.IsInf(d, 1) {
			continue
		}
		cands = append(cands, cand{z.ID, d})
	}
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].dist != cands[j].dist {
			return cands[i].dist < cands[j].dist
		}
		return cands[i].id < cands[j].id
	})
	if len(cands) > n {
		cands = cands[:n]
	}
	ids := make([]uint64, len(cands))
	for i, c := range cands {
		ids[i] = c.id
	}
	return ids
}

// healthScore is 100 minus a severity-weighted congestion penalty and a dead-zone
// share penalty, each capped at 50.
func healthScore(zones []domain.Zone, bottlenecks []domain.Bottleneck, dead []domain.DeadZone) float64 {
	var weights float64
	for _, b := range bottlenecks {
		weights += b.Severity.Weight()
	}
	congestion := math.Min(maxCongestionPenalty, congestionPenaltyPer*weights)

	deadPenalty := 0.0
	if cz := customerZones(zones); len(cz) > 0 {
		deadPenalty = maxDeadZonePenalty * float64(len(dead)) / float64(len(cz))
	}
	return domain.Clamp(100-congestion-deadPenalty, 0, 100)
}
