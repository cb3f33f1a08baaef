package defense

import (
	"testing"

	"github.com/citruslab/go-frc-metrics/internal/model"
)

func start(time float64) model.Action {
	return model.Action{Type: model.ActionStartDefense, Time: time}
}

func end(time float64) model.Action {
	return model.Action{Type: model.ActionEndDefense, Time: time}
}

func TestWindowContainsIsStrict(t *testing.T) {
	w := Window{Start: 100, End: 60}
	if !w.Contains(80) {
		t.Error("interior time should be contained")
	}
	// Boundary times are outside the window.
	if w.Contains(100) || w.Contains(60) {
		t.Error("boundary times should not be contained")
	}
	if w.Contains(110) || w.Contains(50) {
		t.Error("exterior times should not be contained")
	}
}

func TestWindowOverlaps(t *testing.T) {
	a := Window{Start: 100, End: 60}
	b := Window{Start: 80, End: 40}
	c := Window{Start: 50, End: 20}

	if !a.Overlaps(b) || !b.Overlaps(a) {
		t.Error("windows sharing an interval should overlap")
	}
	if a.Overlaps(c) {
		t.Error("disjoint windows should not overlap")
	}
	// Touching at a boundary is not an overlap.
	if a.Overlaps(Window{Start: 60, End: 30}) {
		t.Error("windows touching at an endpoint should not overlap")
	}
}

func TestWindowsFromTimeline(t *testing.T) {
	tl := []model.Action{
		start(120), end(100),
		start(80), end(50),
	}
	ws := Windows(tl)
	if len(ws) != 2 {
		t.Fatalf("expected 2 windows, got %d", len(ws))
	}
	if ws[0] != (Window{Start: 120, End: 100}) || ws[1] != (Window{Start: 80, End: 50}) {
		t.Errorf("windows = %v", ws)
	}
}

func TestWindowsCollapseRepeatedStarts(t *testing.T) {
	// A double-tapped start keeps the first timestamp.
	tl := []model.Action{start(120), start(115), end(100)}
	ws := Windows(tl)
	if len(ws) != 1 {
		t.Fatalf("expected 1 window, got %d", len(ws))
	}
	if ws[0].Start != 120 || ws[0].End != 100 {
		t.Errorf("window = %v, want {120 100}", ws[0])
	}
}

func TestWindowsDropLeadingEnd(t *testing.T) {
	tl := []model.Action{end(130), start(100), end(80)}
	ws := Windows(tl)
	if len(ws) != 1 || ws[0].Start != 100 {
		t.Errorf("windows = %v, want one window starting at 100", ws)
	}
}

func TestWindowsImplicitCloseAtMatchEnd(t *testing.T) {
	ws := Windows([]model.Action{start(40)})
	if len(ws) != 1 {
		t.Fatalf("expected 1 window, got %d", len(ws))
	}
	if ws[0].End != 0 {
		t.Errorf("unterminated window should close at 0, got %.1f", ws[0].End)
	}
	if ws[0].Duration() != 40 {
		t.Errorf("Duration = %.1f, want 40", ws[0].Duration())
	}
}

func TestWindowsEmptyForNonDefender(t *testing.T) {
	tl := []model.Action{
		{Type: model.ActionIntake, Time: 100, Piece: model.PieceCargo, Zone: model.ZoneField},
	}
	if ws := Windows(tl); len(ws) != 0 {
		t.Errorf("expected no windows, got %v", ws)
	}
}
