// Package timd derives the per-robot per-match statistics record from a
// consolidated action timeline.
package timd

import (
	"fmt"
	"math"

	"github.com/citruslab/go-frc-metrics/internal/model"
	"github.com/citruslab/go-frc-metrics/internal/timeline"
)

// Calculate computes the full CalculatedData record for one robot's one-match
// timeline. The input record is validated first; a malformed timeline is
// fatal for the record. Statistics with no qualifying events get their
// defined zero or nil value. Calculate never mutates the input and is
// idempotent: the same timeline always yields an identical record.
func Calculate(t *model.TIMD) (*model.CalculatedData, error) {
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("calculate %s: %w", t.Key(), err)
	}

	tl := t.Timeline
	cd := &model.CalculatedData{}

	placement := timeline.OfType(model.ActionPlacement)
	intake := timeline.OfType(model.ActionIntake)
	drop := timeline.OfType(model.ActionDrop)
	cargo := timeline.WithPiece(model.PieceCargo)
	panel := timeline.WithPiece(model.PiecePanel)
	scored := timeline.Succeeded(true)
	failed := timeline.Succeeded(false)

	cd.CargoScored = timeline.Count(tl, placement, scored, cargo)
	cd.PanelsScored = timeline.Count(tl, placement, scored, panel)
	cd.CargoFouls = timeline.Count(tl, timeline.ShotOutOfField())
	cd.PinningFouls = timeline.Count(tl, timeline.OfType(model.ActionPinningFoul))

	cd.CargoCycles = timeline.Count(tl, intake, cargo)
	cd.PanelCycles = timeline.Count(tl, intake, panel)

	// A trailing intake means the robot ended the match holding a piece; that
	// acquisition never became a cycle.
	cycleActs := timeline.Filter(tl, timeline.AnyType(model.ActionIntake, model.ActionPlacement, model.ActionDrop))
	if n := len(cycleActs); n > 0 && cycleActs[n-1].Type == model.ActionIntake {
		if cycleActs[n-1].Piece == model.PieceCargo {
			cd.CargoCycles--
		} else {
			cd.PanelCycles--
		}
	}

	cd.CargoDrops = timeline.Count(tl, drop, cargo)
	cd.PanelDrops = timeline.Count(tl, drop, panel)
	cd.CargoFails = timeline.Count(tl, placement, failed, cargo)
	cd.PanelFails = timeline.Count(tl, placement, failed, panel)

	sand := timeline.During(timeline.Sandstorm)
	tele := timeline.During(timeline.Teleop)
	cd.CargoScoredSandstorm = timeline.Count(tl, placement, scored, cargo, sand)
	cd.PanelsScoredSandstorm = timeline.Count(tl, placement, scored, panel, sand)
	cd.CargoScoredTeleL1 = timeline.Count(tl, placement, scored, cargo, tele, timeline.AtLevel(1))
	cd.CargoScoredTeleL2 = timeline.Count(tl, placement, scored, cargo, tele, timeline.AtLevel(2))
	cd.CargoScoredTeleL3 = timeline.Count(tl, placement, scored, cargo, tele, timeline.AtLevel(3))
	cd.PanelsScoredTeleL1 = timeline.Count(tl, placement, scored, panel, tele, timeline.AtLevel(1))
	cd.PanelsScoredTeleL2 = timeline.Count(tl, placement, scored, panel, tele, timeline.AtLevel(2))
	cd.PanelsScoredTeleL3 = timeline.Count(tl, placement, scored, panel, tele, timeline.AtLevel(3))

	cd.CargoScoredL1 = timeline.Count(tl, placement, scored, cargo, timeline.AtLevel(1))
	cd.CargoScoredL2 = timeline.Count(tl, placement, scored, cargo, timeline.AtLevel(2))
	cd.CargoScoredL3 = timeline.Count(tl, placement, scored, cargo, timeline.AtLevel(3))
	cd.PanelsScoredL1 = timeline.Count(tl, placement, scored, panel, timeline.AtLevel(1))
	cd.PanelsScoredL2 = timeline.Count(tl, placement, scored, panel, timeline.AtLevel(2))
	cd.PanelsScoredL3 = timeline.Count(tl, placement, scored, panel, timeline.AtLevel(3))

	for _, a := range timeline.Filter(tl, timeline.OfType(model.ActionEndDefense)) {
		cd.TotalFailedCyclesCaused += a.FailedCyclesCaused
	}

	cd.PanelLoadSuccess = percentSuccess(timeline.Filter(tl, intake, panel, timeline.InZone(model.ZoneLoadingStation)))
	cd.CargoSuccessAll = percentSuccess(timeline.Filter(tl, placement, cargo))
	cd.CargoSuccessDefended = percentSuccess(timeline.Filter(tl, placement, cargo, timeline.Defended(true)))
	cd.CargoSuccessUndefended = percentSuccess(timeline.Filter(tl, placement, cargo, timeline.Defended(false)))
	cd.CargoSuccessL1 = percentSuccess(timeline.Filter(tl, placement, cargo, timeline.AtLevel(1)))
	cd.CargoSuccessL2 = percentSuccess(timeline.Filter(tl, placement, cargo, timeline.AtLevel(2)))
	cd.CargoSuccessL3 = percentSuccess(timeline.Filter(tl, placement, cargo, timeline.AtLevel(3)))
	cd.PanelSuccessAll = percentSuccess(timeline.Filter(tl, placement, panel))
	cd.PanelSuccessDefended = percentSuccess(timeline.Filter(tl, placement, panel, timeline.Defended(true)))
	cd.PanelSuccessUndefended = percentSuccess(timeline.Filter(tl, placement, panel, timeline.Defended(false)))
	cd.PanelSuccessL1 = percentSuccess(timeline.Filter(tl, placement, panel, timeline.AtLevel(1)))
	cd.PanelSuccessL2 = percentSuccess(timeline.Filter(tl, placement, panel, timeline.AtLevel(2)))
	cd.PanelSuccessL3 = percentSuccess(timeline.Filter(tl, placement, panel, timeline.AtLevel(3)))

	// Cycle times over full acquisition→completion pairs. CycleActions strips
	// the preload, the dangling trailing intake, and failed intakes.
	pairs := timeline.PairAdjacent(timeline.CycleActions(tl))
	cd.CargoCycleAll = timeline.AvgDuration(timeline.FilterPairs(pairs, cargo))
	cd.CargoCycleL1 = timeline.AvgDuration(timeline.FilterPairs(pairs, cargo, timeline.AtLevel(1)))
	cd.CargoCycleL2 = timeline.AvgDuration(timeline.FilterPairs(pairs, cargo, timeline.AtLevel(2)))
	cd.CargoCycleL3 = timeline.AvgDuration(timeline.FilterPairs(pairs, cargo, timeline.AtLevel(3)))
	cd.PanelCycleAll = timeline.AvgDuration(timeline.FilterPairs(pairs, panel))
	cd.PanelCycleL1 = timeline.AvgDuration(timeline.FilterPairs(pairs, panel, timeline.AtLevel(1)))
	cd.PanelCycleL2 = timeline.AvgDuration(timeline.FilterPairs(pairs, panel, timeline.AtLevel(2)))
	cd.PanelCycleL3 = timeline.AvgDuration(timeline.FilterPairs(pairs, panel, timeline.AtLevel(3)))

	cd.IsIncapEntireMatch = isIncapEntireMatch(tl)

	for _, a := range timeline.Filter(tl, timeline.OfType(model.ActionClimb)) {
		t := a.Time
		self, r1, r2 := a.Actual.Self, a.Actual.Robot1, a.Actual.Robot2
		cd.TimeClimbing = &t
		cd.SelfClimbLevel = &self
		cd.Robot1ClimbLevel = &r1
		cd.Robot2ClimbLevel = &r2
	}

	cd.TimeIncap = incapDuration(tl)
	cd.TimeDefending = defendingDuration(tl)

	return cd, nil
}

// percentSuccess is the rounded integer percentage of didSucceed=true among
// the actions that carry the flag; nil when none do.
func percentSuccess(actions []model.Action) *int {
	total, successes := 0, 0
	for _, a := range actions {
		if a.DidSucceed == nil {
			continue
		}
		total++
		if *a.DidSucceed {
			successes++
		}
	}
	if total == 0 {
		return nil
	}
	pct := int(math.Round(100 * float64(successes) / float64(total)))
	return &pct
}

// isIncapEntireMatch reports whether the robot had no qualifying non-incap
// action during the main period.
func isIncapEntireMatch(tl []model.Action) bool {
	for _, a := range tl {
		if a.Type == model.ActionIncap || a.Type == model.ActionUnincap {
			continue
		}
		if a.Time <= model.TeleopCutoff {
			return false
		}
	}
	return true
}

// incapDuration is the total time spent incapacitated. A robot that ends the
// match incapacitated gets an implicit unincap at time 0.0.
func incapDuration(tl []model.Action) float64 {
	items := timeline.Filter(tl, timeline.AnyType(model.ActionIncap, model.ActionUnincap))
	if len(items) == 0 {
		return 0.0
	}
	if items[len(items)-1].Type == model.ActionIncap {
		items = append(items, model.Action{Type: model.ActionUnincap, Time: 0.0})
	}
	return timeline.TotalDuration(timeline.PairAdjacent(items))
}

// defendingDuration is the total time spent playing defense. Consecutive
// same-type events are collapsed to the first of each run, and an
// unterminated window is implicitly closed at match end.
func defendingDuration(tl []model.Action) float64 {
	items := timeline.Filter(tl, timeline.AnyType(model.ActionStartDefense, model.ActionEndDefense))
	items = timeline.CollapseAdjacentTypes(items)
	if len(items) == 0 {
		return 0.0
	}
	if items[0].Type == model.ActionEndDefense {
		items = items[1:]
	}
	if len(items) > 0 && items[len(items)-1].Type == model.ActionStartDefense {
		items = append(items, model.Action{Type: model.ActionEndDefense, Time: 0.0})
	}
	return timeline.TotalDuration(timeline.PairAdjacent(items))
}
