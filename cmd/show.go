package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/citruslab/go-frc-metrics/internal/report"
)

var showCmd = &cobra.Command{
	Use:   "show <team>",
	Short: "Show a team's stored per-match records and baseline",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	team, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid team number %q", args[0])
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	timds, err := db.TIMDsForTeam(team)
	if err != nil {
		return err
	}
	if len(timds) == 0 {
		fmt.Fprintf(os.Stdout, "No stored matches for team %d\n", team)
		return nil
	}
	report.PrintTeamTable(os.Stdout, team, timds)

	b, err := db.TeamBaseline(team)
	if err != nil {
		return err
	}
	if b != nil {
		report.PrintBaseline(os.Stdout, b)
	}
	return nil
}
