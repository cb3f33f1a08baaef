// Package defense attributes defensive impact between opposing robots in a
// match: it detects when a robot was defending and estimates the scoring
// value that defense denied, relative to each opponent's season baseline.
package defense

import (
	"github.com/citruslab/go-frc-metrics/internal/model"
	"github.com/citruslab/go-frc-metrics/internal/timeline"
)

// Window is a time interval on the countdown clock during which a robot was
// defending. Start is the larger value.
type Window struct {
	Start float64
	End   float64
}

// Contains reports whether t falls strictly inside the window.
func (w Window) Contains(t float64) bool {
	return w.Start > t && t > w.End
}

// Duration is the length of the window in seconds.
func (w Window) Duration() float64 {
	return w.Start - w.End
}

// Overlaps reports whether two windows share any interior interval.
func (w Window) Overlaps(o Window) bool {
	return w.Start > o.End && o.Start > w.End
}

// FullMatch spans the entire main period, used for the sole-defender
// override: with one defender on an alliance, every defended opposing cycle
// is attributable to it regardless of its scouted window timestamps.
var FullMatch = Window{Start: model.TeleopCutoff, End: 0.0}

// Windows derives the defense intervals from a robot's own timeline.
// Consecutive same-type events are collapsed to the first of each run, a
// leading endDefense with no start is dropped, and an unterminated window is
// implicitly closed at match end (time 0.0).
func Windows(tl []model.Action) []Window {
	items := timeline.Filter(tl, timeline.AnyType(model.ActionStartDefense, model.ActionEndDefense))
	items = timeline.CollapseAdjacentTypes(items)
	if len(items) == 0 {
		return nil
	}
	if items[0].Type == model.ActionEndDefense {
		items = items[1:]
	}
	if len(items) > 0 && items[len(items)-1].Type == model.ActionStartDefense {
		items = append(items, model.Action{Type: model.ActionEndDefense, Time: 0.0})
	}
	pairs := timeline.PairAdjacent(items)
	windows := make([]Window, 0, len(pairs))
	for _, p := range pairs {
		windows = append(windows, Window{Start: p.First.Time, End: p.Second.Time})
	}
	return windows
}
