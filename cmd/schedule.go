package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/citruslab/go-frc-metrics/internal/model"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule <schedule.json>",
	Short: "Import match rosters (red/blue team numbers per match)",
	Args:  cobra.ExactArgs(1),
	RunE:  runSchedule,
}

func runSchedule(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}

	// Accept a single roster object or an array of them.
	var schedules []model.MatchSchedule
	if err := json.Unmarshal(data, &schedules); err != nil {
		var single model.MatchSchedule
		if err := json.Unmarshal(data, &single); err != nil {
			return fmt.Errorf("decode %s: %w", args[0], err)
		}
		schedules = []model.MatchSchedule{single}
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	for i := range schedules {
		if err := db.UpsertSchedule(&schedules[i]); err != nil {
			return err
		}
	}
	fmt.Fprintf(os.Stdout, "Stored %d match rosters\n", len(schedules))
	return nil
}
