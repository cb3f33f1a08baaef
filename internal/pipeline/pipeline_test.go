package pipeline

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/citruslab/go-frc-metrics/internal/defense"
	"github.com/citruslab/go-frc-metrics/internal/model"
	"github.com/citruslab/go-frc-metrics/internal/storage"
)

func newTestPipeline(t *testing.T) (*Pipeline, *storage.DB) {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(db, defense.DefaultPoints(), nil), db
}

func boolp(b bool) *bool { return &b }

func floatp(f float64) *float64 { return &f }

func TestIngestStoresRecordAndBaseline(t *testing.T) {
	pipe, db := newTestPipeline(t)

	_, err := pipe.Ingest(&model.TIMD{
		TeamNumber: 118, MatchNumber: 1,
		Timeline: []model.Action{
			{Type: model.ActionIntake, Time: 100, Piece: model.PieceCargo, Zone: model.ZoneField},
			{Type: model.ActionPlacement, Time: 90, Piece: model.PieceCargo, DidSucceed: boolp(true)},
		},
	})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	stored, err := db.GetTIMD(118, 1)
	if err != nil {
		t.Fatalf("GetTIMD: %v", err)
	}
	if stored == nil || stored.CalculatedData.CargoScored != 1 {
		t.Errorf("stored record = %+v", stored)
	}

	b, err := db.TeamBaseline(118)
	if err != nil {
		t.Fatalf("TeamBaseline: %v", err)
	}
	if b == nil || b.Matches != 1 || b.Cargo.AvgCycles != 1 {
		t.Errorf("baseline after ingest = %+v", b)
	}
}

func TestIngestRejectsMalformedTimeline(t *testing.T) {
	pipe, db := newTestPipeline(t)

	_, err := pipe.Ingest(&model.TIMD{
		TeamNumber: 118, MatchNumber: 1,
		Timeline: []model.Action{
			{Type: model.ActionPlacement, Time: 90, Piece: model.PieceCargo, DidSucceed: boolp(true)},
			{Type: model.ActionPlacement, Time: 100, Piece: model.PieceCargo, DidSucceed: boolp(true)},
		},
	})
	if err == nil {
		t.Fatal("expected error for increasing timeline times")
	}

	stored, err := db.GetTIMD(118, 1)
	if err != nil {
		t.Fatalf("GetTIMD: %v", err)
	}
	if stored != nil {
		t.Error("a rejected record should not be stored")
	}
}

// TestRunDefenseEndToEnd runs both stages over one match: the sole red
// defender is credited for the opponent's defended drop and slow defended
// cycle against a crafted season baseline.
func TestRunDefenseEndToEnd(t *testing.T) {
	pipe, db := newTestPipeline(t)

	// Defender: red team 1, defending from 130 to 20.
	_, err := pipe.Ingest(&model.TIMD{
		TeamNumber: 1, MatchNumber: 2,
		Timeline: []model.Action{
			{Type: model.ActionStartDefense, Time: 130},
			{Type: model.ActionEndDefense, Time: 20},
		},
	})
	if err != nil {
		t.Fatalf("Ingest defender: %v", err)
	}

	// Opponent: blue team 4 with two defended cargo cycles, one drop and one
	// 8-second placement.
	_, err = pipe.Ingest(&model.TIMD{
		TeamNumber: 4, MatchNumber: 2,
		Timeline: []model.Action{
			{Type: model.ActionIntake, Time: 120, Piece: model.PieceCargo, Zone: model.ZoneField},
			{Type: model.ActionPlacement, Time: 112, Piece: model.PieceCargo, DidSucceed: boolp(true), WasDefended: true},
			{Type: model.ActionIntake, Time: 60, Piece: model.PieceCargo, Zone: model.ZoneField},
			{Type: model.ActionDrop, Time: 55, Piece: model.PieceCargo, WasDefended: true},
		},
	})
	if err != nil {
		t.Fatalf("Ingest opponent: %v", err)
	}

	if err := db.UpsertSchedule(&model.MatchSchedule{
		MatchNumber: 2,
		RedTeams:    []int{1, 2, 3},
		BlueTeams:   []int{4, 5, 6},
	}); err != nil {
		t.Fatalf("UpsertSchedule: %v", err)
	}

	// Pin the opponent's season baseline after ingest so the expected rates
	// are exact: 1 drop and 10 cycles per match, 5-second cycles.
	if err := db.UpsertTeamBaseline(&model.TeamBaseline{
		TeamNumber: 4, Matches: 5,
		Cargo: model.PieceBaseline{AvgDrops: 1, AvgCycles: 10, AvgCycleTime: floatp(5)},
	}); err != nil {
		t.Fatalf("UpsertTeamBaseline: %v", err)
	}

	res, err := pipe.RunDefense(2)
	if err != nil {
		t.Fatalf("RunDefense: %v", err)
	}
	if len(res.Impacts) != 1 {
		t.Fatalf("expected 1 impact, got %d", len(res.Impacts))
	}
	if got := res.Impacts[0].PointsPrevented(); math.Abs(got-3.0) > 1e-9 {
		t.Errorf("PointsPrevented = %v, want 3.0", got)
	}

	stored, err := db.GetTIMD(1, 2)
	if err != nil {
		t.Fatalf("GetTIMD: %v", err)
	}
	cd := stored.CalculatedData
	if cd.PointsPrevented == nil || math.Abs(*cd.PointsPrevented-3.0) > 1e-9 {
		t.Errorf("stored PointsPrevented = %v, want 3.0", cd.PointsPrevented)
	}
	if cd.TimeDefending != 110 {
		t.Errorf("defense merge lost TimeDefending: %v", cd.TimeDefending)
	}

	// Re-running recomputes the same impacts; nothing accumulates.
	res2, err := pipe.RunDefense(2)
	if err != nil {
		t.Fatalf("RunDefense (second run): %v", err)
	}
	if math.Abs(res2.Impacts[0].PointsPrevented()-3.0) > 1e-9 {
		t.Errorf("second run PointsPrevented = %v, want 3.0", res2.Impacts[0].PointsPrevented())
	}
}

func TestRunDefenseRequiresSchedule(t *testing.T) {
	pipe, _ := newTestPipeline(t)
	if _, err := pipe.RunDefense(9); err == nil {
		t.Fatal("expected error for a match with no schedule")
	}
}

func TestRunDefenseRequiresRecords(t *testing.T) {
	pipe, db := newTestPipeline(t)
	if err := db.UpsertSchedule(&model.MatchSchedule{
		MatchNumber: 9, RedTeams: []int{1}, BlueTeams: []int{4},
	}); err != nil {
		t.Fatalf("UpsertSchedule: %v", err)
	}
	if _, err := pipe.RunDefense(9); err == nil {
		t.Fatal("expected error for a match with no stored records")
	}
}
