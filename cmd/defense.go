package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/citruslab/go-frc-metrics/internal/report"
)

var defenseCmd = &cobra.Command{
	Use:   "defense <match>",
	Short: "Run defense attribution for one match",
	Long: "Cross-reference every defending robot in the match against the opposing\n" +
		"alliance's timelines and estimate the points its defense prevented,\n" +
		"relative to each opponent's season baseline.",
	Args: cobra.ExactArgs(1),
	RunE: runDefense,
}

func runDefense(cmd *cobra.Command, args []string) error {
	match, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid match number %q", args[0])
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	res, err := newPipeline(db).RunDefense(match)
	if err != nil {
		return err
	}
	if len(res.Impacts) == 0 {
		fmt.Fprintf(os.Stdout, "No robot played defense in match %d\n", match)
		return nil
	}
	report.PrintDefenseTable(os.Stdout, match, res.Impacts)
	if len(res.Skipped) > 0 {
		fmt.Fprintf(os.Stdout, "Skipped robots (roster mismatch or incomplete record): %v\n", res.Skipped)
	}
	return nil
}
