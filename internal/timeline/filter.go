// Package timeline provides the pure helpers the analytics stages are built
// from: predicate-based filtering of an action log and adjacent-pair grouping
// of cycle-shaped event sequences.
package timeline

import "github.com/citruslab/go-frc-metrics/internal/model"

// Period is one of the two timed periods of a match, split at the 135-second
// mark of the countdown clock.
type Period string

const (
	Sandstorm Period = "sandstorm"
	Teleop    Period = "teleop"
)

// Predicate reports whether an action belongs in a filtered view of a
// timeline. Predicates are combined with logical AND by Filter.
type Predicate func(model.Action) bool

// OfType matches actions with the given type tag.
func OfType(t model.ActionType) Predicate {
	return func(a model.Action) bool { return a.Type == t }
}

// AnyType matches actions whose type is any of the given tags.
func AnyType(types ...model.ActionType) Predicate {
	return func(a model.Action) bool {
		for _, t := range types {
			if a.Type == t {
				return true
			}
		}
		return false
	}
}

// WithPiece matches actions carrying the given game piece.
func WithPiece(p model.Piece) Predicate {
	return func(a model.Action) bool { return a.Piece == p }
}

// Succeeded matches actions whose didSucceed flag is present and equal to
// want. An action without the flag never matches.
func Succeeded(want bool) Predicate {
	return func(a model.Action) bool { return a.DidSucceed != nil && *a.DidSucceed == want }
}

// Defended matches actions by their wasDefended flag (absent means false).
func Defended(want bool) Predicate {
	return func(a model.Action) bool { return a.WasDefended == want }
}

// ShotOutOfField matches actions flagged as shot out of the field.
func ShotOutOfField() Predicate {
	return func(a model.Action) bool { return a.ShotOutOfField }
}

// AtLevel matches placements at the given scoring level. Level 1 also matches
// actions with no recorded level: an unlabeled placement is a
// level-1-equivalent (cargo ship) placement.
func AtLevel(level int) Predicate {
	return func(a model.Action) bool { return a.EffectiveLevel() == level }
}

// InZone matches actions by intake zone. The semantic ZoneLoadingStation
// value matches either concrete loading-station zone.
func InZone(z model.Zone) Predicate {
	return func(a model.Action) bool {
		if z == model.ZoneLoadingStation {
			return a.Zone == model.ZoneLeftLoadingStation || a.Zone == model.ZoneRightLoadingStation
		}
		return a.Zone == z
	}
}

// During matches actions by match period against the countdown clock:
// sandstorm is time > 135.0, teleop is time <= 135.0.
func During(p Period) Predicate {
	return func(a model.Action) bool {
		if p == Sandstorm {
			return a.Time > model.TeleopCutoff
		}
		return a.Time <= model.TeleopCutoff
	}
}

// Filter returns the ordered subsequence of actions satisfying every
// predicate. No match yields an empty result, not an error.
func Filter(actions []model.Action, preds ...Predicate) []model.Action {
	var out []model.Action
	for _, a := range actions {
		if matchesAll(a, preds) {
			out = append(out, a)
		}
	}
	return out
}

// Count returns how many actions satisfy every predicate.
func Count(actions []model.Action, preds ...Predicate) int {
	n := 0
	for _, a := range actions {
		if matchesAll(a, preds) {
			n++
		}
	}
	return n
}

func matchesAll(a model.Action, preds []Predicate) bool {
	for _, p := range preds {
		if !p(a) {
			return false
		}
	}
	return true
}
