package domain

import "math"

// opPoint is a (junction temperature, gate voltage) tag used as a search node.
type opPoint struct {
	tj float64
	vg float64
}

// nearestIndex finds the candidate closest to the requested operating point.
// An exact (t_j, v_g) match always wins. Otherwise candidates are ranked by
// absolute temperature difference first and gate-voltage difference second;
// temperature dominates. The scan keeps the first strict minimum, so ties
// resolve to the earliest candidate in stored order. That order-dependence is
// inherited from the input data and is part of the contract (stable and
// deterministic for a fixed input order).
func nearestIndex(req opPoint, candidates []opPoint) int {
	best := 0
	bestDT := math.Inf(1)
	bestDV := math.Inf(1)
	for i, c := range candidates {
		dt := math.Abs(c.tj - req.tj)
		dv := math.Abs(c.vg - req.vg)
		if dt < bestDT || (dt == bestDT && dv < bestDV) {
			best = i
			bestDT = dt
			bestDV = dv
		}
	}
	return best
}

// nearestValue returns the candidate value with the smallest absolute
// difference to want, keeping the first of equals.
func nearestValue(want float64, candidates []float64) float64 {
	best := candidates[0]
	bestDist := math.Abs(candidates[0] - want)
	for _, c := range candidates[1:] {
		if d := math.Abs(c - want); d < bestDist {
			best = c
			bestDist = d
		}
	}
	return best
}

func channelPoints(channels []ChannelData) []opPoint {
	pts := make([]opPoint, len(channels))
	for i, c := range channels {
		pts[i] = opPoint{tj: c.TJ, vg: c.VG}
	}
	return pts
}

func energyPoints(sets []SwitchEnergyData) []opPoint {
	pts := make([]opPoint, len(sets))
	for i, e := range sets {
		pts[i] = opPoint{tj: e.TJ, vg: e.VG}
	}
	return pts
}

// filterEnergy keeps the datasets of the wanted representation, preserving
// stored order.
func filterEnergy(sets []SwitchEnergyData, dt DatasetType) []SwitchEnergyData {
	var out []SwitchEnergyData
	for _, e := range sets {
		if e.DatasetType == dt {
			out = append(out, e)
		}
	}
	return out
}
