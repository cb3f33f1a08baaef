package timeline

import (
	"testing"

	"github.com/citruslab/go-frc-metrics/internal/model"
)

func boolp(b bool) *bool { return &b }

// place builds a placement action for filter tests.
func place(time float64, piece model.Piece, level int, ok bool) model.Action {
	return model.Action{
		Type: model.ActionPlacement, Time: time,
		Piece: piece, Level: level, DidSucceed: boolp(ok),
	}
}

// intake builds an intake action in the given zone.
func intake(time float64, piece model.Piece, zone model.Zone) model.Action {
	return model.Action{Type: model.ActionIntake, Time: time, Piece: piece, Zone: zone}
}

func TestFilterCombinesPredicatesWithAnd(t *testing.T) {
	tl := []model.Action{
		place(120, model.PieceCargo, 2, true),
		place(110, model.PiecePanel, 2, true),
		place(100, model.PieceCargo, 2, false),
		intake(90, model.PieceCargo, model.ZoneField),
	}

	got := Filter(tl, OfType(model.ActionPlacement), WithPiece(model.PieceCargo), Succeeded(true))
	if len(got) != 1 {
		t.Fatalf("expected 1 successful cargo placement, got %d", len(got))
	}
	if got[0].Time != 120 {
		t.Errorf("wrong action filtered: time %.1f", got[0].Time)
	}
}

func TestFilterEmptyResultIsNotAnError(t *testing.T) {
	tl := []model.Action{place(120, model.PieceCargo, 1, true)}
	got := Filter(tl, WithPiece(model.PiecePanel))
	if len(got) != 0 {
		t.Errorf("expected no matches, got %d", len(got))
	}
}

func TestSucceededRequiresTheFlag(t *testing.T) {
	// An intake without a didSucceed flag matches neither Succeeded(true) nor
	// Succeeded(false).
	a := intake(100, model.PieceCargo, model.ZoneField)
	if Succeeded(true)(a) || Succeeded(false)(a) {
		t.Error("action without didSucceed should not match either outcome")
	}

	failed := place(90, model.PieceCargo, 1, false)
	if !Succeeded(false)(failed) {
		t.Error("failed placement should match Succeeded(false)")
	}
}

func TestAtLevelTreatsMissingLevelAsLevelOne(t *testing.T) {
	unlabeled := place(100, model.PieceCargo, 0, true)
	if !AtLevel(1)(unlabeled) {
		t.Error("placement without a level should match level 1")
	}
	if AtLevel(2)(unlabeled) {
		t.Error("placement without a level should not match level 2")
	}
	if !AtLevel(3)(place(90, model.PieceCargo, 3, true)) {
		t.Error("explicit level 3 should match AtLevel(3)")
	}
}

func TestInZoneLoadingStationMatchesBothSides(t *testing.T) {
	left := intake(100, model.PiecePanel, model.ZoneLeftLoadingStation)
	right := intake(90, model.PiecePanel, model.ZoneRightLoadingStation)
	depot := intake(80, model.PiecePanel, model.ZoneLeftDepot)

	pred := InZone(model.ZoneLoadingStation)
	if !pred(left) || !pred(right) {
		t.Error("loading-station filter should match both concrete zones")
	}
	if pred(depot) {
		t.Error("loading-station filter should not match a depot intake")
	}
}

func TestDuringSplitsAtTheTeleopCutoff(t *testing.T) {
	inSandstorm := place(140, model.PieceCargo, 1, true)
	atCutoff := place(135, model.PieceCargo, 1, true)
	inTeleop := place(60, model.PieceCargo, 1, true)

	if !During(Sandstorm)(inSandstorm) {
		t.Error("time 140 should be sandstorm")
	}
	// The boundary itself belongs to teleop.
	if During(Sandstorm)(atCutoff) {
		t.Error("time 135 should not be sandstorm")
	}
	if !During(Teleop)(atCutoff) || !During(Teleop)(inTeleop) {
		t.Error("times 135 and 60 should be teleop")
	}
}

func TestCountMatchesFilterLength(t *testing.T) {
	tl := []model.Action{
		place(120, model.PieceCargo, 1, true),
		place(110, model.PieceCargo, 2, true),
		place(100, model.PiecePanel, 1, true),
	}
	if got := Count(tl, WithPiece(model.PieceCargo)); got != 2 {
		t.Errorf("Count = %d, want 2", got)
	}
	if got := Count(tl); got != 3 {
		t.Errorf("Count with no predicates = %d, want 3", got)
	}
}
