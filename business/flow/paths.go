package flow

import (
	"sort"

	"storeOptimizer/domain"
)

// keyPaths walks greedily from every entry zone and each of its first hops, always
// taking the most probable next zone, until the length cap, an exit, a dead end or a
// revisit. Frequency is the expected number of visitors following the whole path.
func keyPaths(g *graph, m domain.ProbabilityMatrix, cfg Config) []domain.FlowPath {
	var paths []domain.FlowPath

	for _, entry := range g.entryZones() {
		volume := float64(g.entries[entry])
		if volume == 0 {
			volume = float64(g.inbound[entry])
		}

		for _, hop := range sortedHops(m[entry]) {
			if hop == domain.OutsideZoneID {
				continue
			}
			path := []uint64{entry, hop}
			prob := m.Probability(entry, hop)
			visited := map[uint64]bool{entry: true, hop: true}
			looped := hop == entry

			cur := hop
			for !looped && len(path) < cfg.MaxPathLength {
				next, p, ok := mostProbable(m[cur])
				if !ok || next == domain.OutsideZoneID {
					break
				}
				if visited[next] {
					looped = true
					break
				}
				path = append(path, next)
				visited[next] = true
				prob *= p
				cur = next
			}

			paths = append(paths, domain.FlowPath{
				ZoneIDs:     path,
				Frequency:   volume * prob,
				Probability: prob,
				Type:        classifyPath(g, path, looped),
			})
		}
	}

	sort.SliceStable(paths, func(i, j int) bool {
		if paths[i].Frequency != paths[j].Frequency {
			return paths[i].Frequency > paths[j].Frequency
		}
		if paths[i].Probability != paths[j].Probability {
			return paths[i].Probability > paths[j].Probability
		}
		return lessIDs(paths[i].ZoneIDs, paths[j].ZoneIDs)
	})

	if len(paths) > cfg.TopKPaths {
		paths = paths[:cfg.TopKPaths]
	}
	if paths == nil {
		paths = []domain.FlowPath{}
	}
	return paths
}

// direct: checkout reached within two hops of the entry
func classifyPath(g *graph, path []uint64, looped bool) domain.PathType {
	for i, id := range path {
		if i > 2 {
			break
		}
		if z, ok := g.known[id]; ok && z.Type == domain.ZoneCheckout {
			return domain.PathDirect
		}
	}
	if looped {
		return domain.PathLooping
	}
	return domain.PathLinear
}

// mostProbable breaks ties by lower zone id so walks are deterministic.
func mostProbable(row map[uint64]float64) (uint64, float64, bool) {
	var best uint64
	bestP := -1.0
	for to, p := range row {
		if p > bestP || (p == bestP && to < best) {
			best, bestP = to, p
		}
	}
	return best, bestP, bestP > 0
}

func sortedHops(row map[uint64]float64) []uint64 {
	hops := make([]uint64, 0, len(row))
	for to := range row {
		hops = append(hops, to)
	}
	sort.Slice(hops, func(i, j int) bool { return hops[i] < hops[j] })
	return hops
}

func lessIDs(a, b []uint64) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}
