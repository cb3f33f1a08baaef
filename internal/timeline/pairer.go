package timeline

import "github.com/citruslab/go-frc-metrics/internal/model"

// Pair is an adjacent (start, completion) event pair: an intake and its
// placement or drop, an incap and its unincap, or a defense start and end.
type Pair struct {
	First  model.Action
	Second model.Action
}

// Duration is the time the pair spans. The clock counts down, so the start
// time is the larger value.
func (p Pair) Duration() float64 {
	return p.First.Time - p.Second.Time
}

// PairAdjacent groups an ordered sequence into pairs by position: 0&1, 2&3,
// and so on. An odd trailing element is silently dropped; the caller is
// responsible for stripping preloads and dangling acquisitions first.
func PairAdjacent(actions []model.Action) []Pair {
	pairs := make([]Pair, 0, len(actions)/2)
	for i := 0; i+1 < len(actions); i += 2 {
		pairs = append(pairs, Pair{First: actions[i], Second: actions[i+1]})
	}
	return pairs
}

// FilterPairs keeps the pairs whose completion event (the second action)
// satisfies every predicate. Cycle slices key off the completion: its piece,
// level, and outcome describe what the cycle produced.
func FilterPairs(pairs []Pair, preds ...Predicate) []Pair {
	var out []Pair
	for _, p := range pairs {
		if matchesAll(p.Second, preds) {
			out = append(out, p)
		}
	}
	return out
}

// TotalDuration sums the durations of the pairs. Zero when there are none.
func TotalDuration(pairs []Pair) float64 {
	total := 0.0
	for _, p := range pairs {
		total += p.Duration()
	}
	return total
}

// AvgDuration is the mean pair duration, nil when there are no pairs.
func AvgDuration(pairs []Pair) *float64 {
	if len(pairs) == 0 {
		return nil
	}
	avg := TotalDuration(pairs) / float64(len(pairs))
	return &avg
}

// CycleActions extracts the cycle-forming subsequence of a timeline: intake,
// placement, and drop events, excluding failed intakes (they never produced a
// held game piece). When at least two actions remain, a leading placement or
// drop is a preload and a trailing intake means the robot ended the match
// holding a piece; both are stripped so the remainder pairs into full cycles.
func CycleActions(tl []model.Action) []model.Action {
	var cycle []model.Action
	for _, a := range tl {
		if !a.IsCycleAction() {
			continue
		}
		if a.Type == model.ActionIntake && a.DidSucceed != nil && !*a.DidSucceed {
			continue
		}
		cycle = append(cycle, a)
	}
	if len(cycle) < 2 {
		return cycle
	}
	if cycle[0].Type == model.ActionPlacement || cycle[0].Type == model.ActionDrop {
		cycle = cycle[1:]
	}
	if len(cycle) > 0 && cycle[len(cycle)-1].Type == model.ActionIntake {
		cycle = cycle[:len(cycle)-1]
	}
	return cycle
}

// CollapseAdjacentTypes drops repeated same-type actions, keeping only the
// first of each run. Used to normalize noisy startDefense/endDefense logs
// before pairing.
func CollapseAdjacentTypes(actions []model.Action) []model.Action {
	var out []model.Action
	var last model.ActionType
	for _, a := range actions {
		if a.Type == last {
			continue
		}
		out = append(out, a)
		last = a.Type
	}
	return out
}
