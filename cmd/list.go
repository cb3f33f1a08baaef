package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/citruslab/go-frc-metrics/internal/report"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored matches",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	rows, err := db.ListMatches()
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Fprintln(os.Stdout, "No matches stored yet.")
		return nil
	}
	report.PrintMatchList(os.Stdout, rows)
	return nil
}
