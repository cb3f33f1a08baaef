// Package report renders stored records as tables for the CLI.
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/citruslab/go-frc-metrics/internal/model"
	"github.com/citruslab/go-frc-metrics/internal/storage"
)

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

// PrintTeamTable prints one row per stored match for a team.
func PrintTeamTable(w io.Writer, team int, timds []*model.TIMD) {
	fmt.Fprintf(w, "\nTeam %d — %d stored matches\n\n", team, len(timds))

	table := newTable(w)
	table.Header(
		"MATCH", "CARGO", "PANELS", "DROPS", "FAILS",
		"CARGO_CYC", "PANEL_CYC", "INCAP_S", "DEF_S", "PTS_PREV", "CLIMB",
	)
	for _, t := range timds {
		cd := t.CalculatedData
		if cd == nil {
			continue
		}
		climb := "—"
		if cd.SelfClimbLevel != nil {
			climb = fmt.Sprintf("L%d", *cd.SelfClimbLevel)
		}
		table.Append(
			strconv.Itoa(t.MatchNumber),
			strconv.Itoa(cd.CargoScored),
			strconv.Itoa(cd.PanelsScored),
			strconv.Itoa(cd.CargoDrops+cd.PanelDrops),
			strconv.Itoa(cd.CargoFails+cd.PanelFails),
			fmtSeconds(cd.CargoCycleAll),
			fmtSeconds(cd.PanelCycleAll),
			fmt.Sprintf("%.1f", cd.TimeIncap),
			fmt.Sprintf("%.1f", cd.TimeDefending),
			fmtSeconds(cd.PointsPrevented),
			climb,
		)
	}
	table.Render()
}

// PrintDefenseTable prints the attributed impact for each defender in a
// match.
func PrintDefenseTable(w io.Writer, match int, impacts []model.DefenseImpact) {
	fmt.Fprintf(w, "\nMatch %d — defense attribution\n\n", match)

	table := newTable(w)
	table.Header(
		"TEAM", "CARGO_PTS_PREV", "PANEL_PTS_PREV", "PTS_PREV",
		"CARGO_FC", "PANEL_FC", "FAILED_CYCLES",
	)
	for _, d := range impacts {
		table.Append(
			strconv.Itoa(d.TeamNumber),
			fmt.Sprintf("%.2f", d.CargoPointsPrevented),
			fmt.Sprintf("%.2f", d.PanelPointsPrevented),
			fmt.Sprintf("%.2f", d.PointsPrevented()),
			fmt.Sprintf("%.2f", d.CargoFailedCyclesCaused),
			fmt.Sprintf("%.2f", d.PanelFailedCyclesCaused),
			fmt.Sprintf("%.2f", d.FailedCyclesCaused()),
		)
	}
	table.Render()
}

// PrintMatchList prints a summary row per stored match.
func PrintMatchList(w io.Writer, rows []storage.MatchRow) {
	table := newTable(w)
	table.Header("MATCH", "RECORDS", "DEFENDERS", "ATTRIBUTED")
	for _, r := range rows {
		table.Append(
			strconv.Itoa(r.MatchNumber),
			strconv.Itoa(r.Records),
			strconv.Itoa(r.Defenders),
			strconv.Itoa(r.Attributed),
		)
	}
	table.Render()
}

// PrintBaseline prints a team's season baseline.
func PrintBaseline(w io.Writer, b *model.TeamBaseline) {
	fmt.Fprintf(w, "\nTeam %d baseline — %d matches\n\n", b.TeamNumber, b.Matches)

	table := newTable(w)
	table.Header("PIECE", "AVG_DROPS", "AVG_FAILS", "AVG_CYCLES", "AVG_CYCLE_S")
	for _, piece := range model.Pieces {
		pb := b.ForPiece(piece)
		table.Append(
			string(piece),
			fmt.Sprintf("%.2f", pb.AvgDrops),
			fmt.Sprintf("%.2f", pb.AvgFails),
			fmt.Sprintf("%.2f", pb.AvgCycles),
			fmtSeconds(pb.AvgCycleTime),
		)
	}
	table.Render()
}

func fmtSeconds(v *float64) string {
	if v == nil {
		return "—"
	}
	return fmt.Sprintf("%.1f", *v)
}
