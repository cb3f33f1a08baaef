package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/citruslab/go-frc-metrics/internal/model"
)

// UpsertTIMD stores a calculated TIMD record. Uses INSERT OR REPLACE so
// re-ingesting the same robot-match pair is idempotent. The record must have
// calculated data; raw timelines are not stored on their own.
func (db *DB) UpsertTIMD(t *model.TIMD) error {
	if t.CalculatedData == nil {
		return fmt.Errorf("upsert timd %s: no calculated data", t.Key())
	}
	timelineJSON, err := json.Marshal(t.Timeline)
	if err != nil {
		return fmt.Errorf("upsert timd %s: marshal timeline: %w", t.Key(), err)
	}
	cdJSON, err := json.Marshal(t.CalculatedData)
	if err != nil {
		return fmt.Errorf("upsert timd %s: marshal calculated data: %w", t.Key(), err)
	}
	cd := t.CalculatedData
	_, err = db.conn.Exec(`
		INSERT OR REPLACE INTO timds(
			team_number, match_number, timeline, calculated_data,
			cargo_drops, panel_drops, cargo_fails, panel_fails,
			cargo_cycles, panel_cycles, cargo_cycle_all, panel_cycle_all,
			time_defending, points_prevented, failed_cycles_caused
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		t.TeamNumber, t.MatchNumber, string(timelineJSON), string(cdJSON),
		cd.CargoDrops, cd.PanelDrops, cd.CargoFails, cd.PanelFails,
		cd.CargoCycles, cd.PanelCycles, nullFloat(cd.CargoCycleAll), nullFloat(cd.PanelCycleAll),
		cd.TimeDefending, nullFloat(cd.PointsPrevented), nullFloat(cd.SuperFailedCyclesCaused),
	)
	if err != nil {
		return fmt.Errorf("upsert timd %s: %w", t.Key(), err)
	}
	return nil
}

// GetTIMD loads one robot-match record. Returns nil with no error when the
// record does not exist.
func (db *DB) GetTIMD(team, match int) (*model.TIMD, error) {
	row := db.conn.QueryRow(
		"SELECT timeline, calculated_data FROM timds WHERE team_number = ? AND match_number = ?",
		team, match)
	return scanTIMD(row, team, match)
}

// TIMDsForMatch loads every robot record for one match.
func (db *DB) TIMDsForMatch(match int) ([]*model.TIMD, error) {
	rows, err := db.conn.Query(
		"SELECT team_number, timeline, calculated_data FROM timds WHERE match_number = ? ORDER BY team_number",
		match)
	if err != nil {
		return nil, fmt.Errorf("timds for match %d: %w", match, err)
	}
	defer rows.Close()

	var out []*model.TIMD
	for rows.Next() {
		var team int
		var timelineJSON, cdJSON string
		if err := rows.Scan(&team, &timelineJSON, &cdJSON); err != nil {
			return nil, fmt.Errorf("timds for match %d: %w", match, err)
		}
		t, err := decodeTIMD(team, match, timelineJSON, cdJSON)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// TIMDsForTeam loads every stored record for one team, ordered by match.
func (db *DB) TIMDsForTeam(team int) ([]*model.TIMD, error) {
	rows, err := db.conn.Query(
		"SELECT match_number, timeline, calculated_data FROM timds WHERE team_number = ? ORDER BY match_number",
		team)
	if err != nil {
		return nil, fmt.Errorf("timds for team %d: %w", team, err)
	}
	defer rows.Close()

	var out []*model.TIMD
	for rows.Next() {
		var match int
		var timelineJSON, cdJSON string
		if err := rows.Scan(&match, &timelineJSON, &cdJSON); err != nil {
			return nil, fmt.Errorf("timds for team %d: %w", team, err)
		}
		t, err := decodeTIMD(team, match, timelineJSON, cdJSON)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// UpdateDefenseImpact merges attribution output onto a stored record: the
// defense-impact fields are overwritten, every other calculated-data field is
// left as stored.
func (db *DB) UpdateDefenseImpact(impact model.DefenseImpact) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var cdJSON string
	err = tx.QueryRow(
		"SELECT calculated_data FROM timds WHERE team_number = ? AND match_number = ?",
		impact.TeamNumber, impact.MatchNumber).Scan(&cdJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update defense impact: no record for %dQ%d", impact.TeamNumber, impact.MatchNumber)
	}
	if err != nil {
		return fmt.Errorf("update defense impact %dQ%d: %w", impact.TeamNumber, impact.MatchNumber, err)
	}

	var cd model.CalculatedData
	if err := json.Unmarshal([]byte(cdJSON), &cd); err != nil {
		return fmt.Errorf("update defense impact %dQ%d: decode calculated data: %w", impact.TeamNumber, impact.MatchNumber, err)
	}
	cd.ApplyDefenseImpact(impact)

	merged, err := json.Marshal(&cd)
	if err != nil {
		return fmt.Errorf("update defense impact %dQ%d: %w", impact.TeamNumber, impact.MatchNumber, err)
	}
	_, err = tx.Exec(`
		UPDATE timds SET calculated_data = ?, points_prevented = ?, failed_cycles_caused = ?
		WHERE team_number = ? AND match_number = ?`,
		string(merged), impact.PointsPrevented(), impact.FailedCyclesCaused(),
		impact.TeamNumber, impact.MatchNumber,
	)
	if err != nil {
		return fmt.Errorf("update defense impact %dQ%d: %w", impact.TeamNumber, impact.MatchNumber, err)
	}
	return tx.Commit()
}

// UpsertSchedule stores one match roster.
func (db *DB) UpsertSchedule(s *model.MatchSchedule) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("upsert schedule: %w", err)
	}
	red, err := json.Marshal(s.RedTeams)
	if err != nil {
		return fmt.Errorf("upsert schedule %d: %w", s.MatchNumber, err)
	}
	blue, err := json.Marshal(s.BlueTeams)
	if err != nil {
		return fmt.Errorf("upsert schedule %d: %w", s.MatchNumber, err)
	}
	_, err = db.conn.Exec(
		"INSERT OR REPLACE INTO match_schedule(match_number, red_teams, blue_teams) VALUES (?,?,?)",
		s.MatchNumber, string(red), string(blue))
	if err != nil {
		return fmt.Errorf("upsert schedule %d: %w", s.MatchNumber, err)
	}
	return nil
}

// GetSchedule loads one match roster. A missing roster is an error: defense
// attribution cannot partition a match without it.
func (db *DB) GetSchedule(match int) (*model.MatchSchedule, error) {
	var red, blue string
	err := db.conn.QueryRow(
		"SELECT red_teams, blue_teams FROM match_schedule WHERE match_number = ?",
		match).Scan(&red, &blue)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("no schedule stored for match %d", match)
	}
	if err != nil {
		return nil, fmt.Errorf("schedule for match %d: %w", match, err)
	}
	s := &model.MatchSchedule{MatchNumber: match}
	if err := json.Unmarshal([]byte(red), &s.RedTeams); err != nil {
		return nil, fmt.Errorf("schedule for match %d: decode red teams: %w", match, err)
	}
	if err := json.Unmarshal([]byte(blue), &s.BlueTeams); err != nil {
		return nil, fmt.Errorf("schedule for match %d: decode blue teams: %w", match, err)
	}
	return s, nil
}

// UpsertTeamBaseline stores a season baseline, e.g. one imported from an
// external aggregate computation.
func (db *DB) UpsertTeamBaseline(b *model.TeamBaseline) error {
	_, err := db.conn.Exec(`
		INSERT OR REPLACE INTO team_baselines(
			team_number, matches,
			avg_cargo_drops, avg_panel_drops, avg_cargo_fails, avg_panel_fails,
			avg_cargo_cycles, avg_panel_cycles, cargo_cycle_all, panel_cycle_all
		) VALUES (?,?,?,?,?,?,?,?,?,?)`,
		b.TeamNumber, b.Matches,
		b.Cargo.AvgDrops, b.Panel.AvgDrops, b.Cargo.AvgFails, b.Panel.AvgFails,
		b.Cargo.AvgCycles, b.Panel.AvgCycles,
		nullFloat(b.Cargo.AvgCycleTime), nullFloat(b.Panel.AvgCycleTime),
	)
	if err != nil {
		return fmt.Errorf("upsert baseline for team %d: %w", b.TeamNumber, err)
	}
	return nil
}

// TeamBaseline loads a team's season baseline. Returns nil with no error when
// the team has none yet, which the attribution engine treats as
// skip-this-opponent.
func (db *DB) TeamBaseline(team int) (*model.TeamBaseline, error) {
	b := &model.TeamBaseline{TeamNumber: team}
	var cargoCycle, panelCycle sql.NullFloat64
	err := db.conn.QueryRow(`
		SELECT matches,
		       avg_cargo_drops, avg_panel_drops, avg_cargo_fails, avg_panel_fails,
		       avg_cargo_cycles, avg_panel_cycles, cargo_cycle_all, panel_cycle_all
		FROM team_baselines WHERE team_number = ?`, team).Scan(
		&b.Matches,
		&b.Cargo.AvgDrops, &b.Panel.AvgDrops, &b.Cargo.AvgFails, &b.Panel.AvgFails,
		&b.Cargo.AvgCycles, &b.Panel.AvgCycles, &cargoCycle, &panelCycle,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("baseline for team %d: %w", team, err)
	}
	b.Cargo.AvgCycleTime = floatPtr(cargoCycle)
	b.Panel.AvgCycleTime = floatPtr(panelCycle)
	return b, nil
}

// RecomputeTeamBaseline rebuilds a team's season baseline from its stored
// TIMD records and persists it. SQLite's AVG ignores NULL cycle times, which
// matches the "mean of the non-null per-match averages" definition. Returns
// nil when the team has no records.
func (db *DB) RecomputeTeamBaseline(team int) (*model.TeamBaseline, error) {
	b := &model.TeamBaseline{TeamNumber: team}
	var cargoCycle, panelCycle sql.NullFloat64
	var avgCargoDrops, avgPanelDrops, avgCargoFails, avgPanelFails, avgCargoCycles, avgPanelCycles sql.NullFloat64
	err := db.conn.QueryRow(`
		SELECT COUNT(1),
		       AVG(cargo_drops), AVG(panel_drops), AVG(cargo_fails), AVG(panel_fails),
		       AVG(cargo_cycles), AVG(panel_cycles), AVG(cargo_cycle_all), AVG(panel_cycle_all)
		FROM timds WHERE team_number = ?`, team).Scan(
		&b.Matches,
		&avgCargoDrops, &avgPanelDrops, &avgCargoFails, &avgPanelFails,
		&avgCargoCycles, &avgPanelCycles, &cargoCycle, &panelCycle,
	)
	if err != nil {
		return nil, fmt.Errorf("recompute baseline for team %d: %w", team, err)
	}
	if b.Matches == 0 {
		return nil, nil
	}
	b.Cargo = model.PieceBaseline{
		AvgDrops:     avgCargoDrops.Float64,
		AvgFails:     avgCargoFails.Float64,
		AvgCycles:    avgCargoCycles.Float64,
		AvgCycleTime: floatPtr(cargoCycle),
	}
	b.Panel = model.PieceBaseline{
		AvgDrops:     avgPanelDrops.Float64,
		AvgFails:     avgPanelFails.Float64,
		AvgCycles:    avgPanelCycles.Float64,
		AvgCycleTime: floatPtr(panelCycle),
	}
	if err := db.UpsertTeamBaseline(b); err != nil {
		return nil, err
	}
	return b, nil
}

// MatchRow summarizes one match's stored records for the list command.
type MatchRow struct {
	MatchNumber int
	Records     int
	Defenders   int
	Attributed  int
}

// ListMatches summarizes every match with stored records.
func (db *DB) ListMatches() ([]MatchRow, error) {
	rows, err := db.conn.Query(`
		SELECT match_number, COUNT(1),
		       SUM(CASE WHEN time_defending > 0 THEN 1 ELSE 0 END),
		       SUM(CASE WHEN points_prevented IS NOT NULL THEN 1 ELSE 0 END)
		FROM timds GROUP BY match_number ORDER BY match_number`)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	var out []MatchRow
	for rows.Next() {
		var r MatchRow
		if err := rows.Scan(&r.MatchNumber, &r.Records, &r.Defenders, &r.Attributed); err != nil {
			return nil, fmt.Errorf("list matches: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanTIMD(row *sql.Row, team, match int) (*model.TIMD, error) {
	var timelineJSON, cdJSON string
	err := row.Scan(&timelineJSON, &cdJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("timd %dQ%d: %w", team, match, err)
	}
	return decodeTIMD(team, match, timelineJSON, cdJSON)
}

func decodeTIMD(team, match int, timelineJSON, cdJSON string) (*model.TIMD, error) {
	t := &model.TIMD{TeamNumber: team, MatchNumber: match}
	if err := json.Unmarshal([]byte(timelineJSON), &t.Timeline); err != nil {
		return nil, fmt.Errorf("timd %dQ%d: decode timeline: %w", team, match, err)
	}
	var cd model.CalculatedData
	if err := json.Unmarshal([]byte(cdJSON), &cd); err != nil {
		return nil, fmt.Errorf("timd %dQ%d: decode calculated data: %w", team, match, err)
	}
	t.CalculatedData = &cd
	return t, nil
}

func nullFloat(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}
