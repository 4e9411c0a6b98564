package bench

import "sort"

// costCurve computes the expected cost of alerting on the top n ranks for
// every n in 1..len(labels). Alerting on a normal sample is a false
// positive; every true anomaly outside the top n is a false negative:
//
//	cost(n) = fpCost * (n - hits(n)) + fnCost * (positives - hits(n))
//
// Scores follow the low-is-anomalous convention and ties keep input order,
// matching the ranking rule used for the precision curve.
func costCurve(labels []bool, scores []float64, fpCost, fnCost float64) []float64 {
	if len(labels) != len(scores) {
		return nil
	}

	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] < scores[order[b]]
	})

	positives := 0
	for _, l := range labels {
		if l {
			positives++
		}
	}

	costs := make([]float64, len(order))
	hits := 0
	for n := 1; n <= len(order); n++ {
		if labels[order[n-1]] {
			hits++
		}
		fp := float64(n - hits)
		fn := float64(positives - hits)
		costs[n-1] = fpCost*fp + fnCost*fn
	}
	return costs
}

// bestCutoff returns the rank with the lowest expected cost. The zero rank
// (never alert, cost = fnCost * positives) competes too: a useless scorer
// under expensive false positives is beaten by not alerting at all. The
// earliest minimum wins.
func bestCutoff(costs []float64, neverAlertCost float64) (cutoff int, cost float64) {
	cutoff, cost = 0, neverAlertCost
	for i, c := range costs {
		if c < cost {
			cutoff, cost = i+1, c
		}
	}
	return cutoff, cost
}
