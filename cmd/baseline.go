package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/citruslab/go-frc-metrics/internal/report"
)

var baselineCmd = &cobra.Command{
	Use:   "baseline <team>",
	Short: "Recompute and show a team's season baseline",
	Args:  cobra.ExactArgs(1),
	RunE:  runBaseline,
}

func runBaseline(cmd *cobra.Command, args []string) error {
	team, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid team number %q", args[0])
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	b, err := db.RecomputeTeamBaseline(team)
	if err != nil {
		return err
	}
	if b == nil {
		fmt.Fprintf(os.Stdout, "No stored matches for team %d\n", team)
		return nil
	}
	report.PrintBaseline(os.Stdout, b)
	return nil
}
