package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/citruslab/go-frc-metrics/internal/model"
	"github.com/citruslab/go-frc-metrics/internal/pipeline"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <timd.json>...",
	Short: "Compute and store metrics from consolidated timeline files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runIngest,
}

func runIngest(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	pipe := newPipeline(db)
	for _, path := range args {
		if err := ingestFile(pipe, path); err != nil {
			return err
		}
	}
	return nil
}

// ingestFile decodes one consolidated TIMD file and runs it through the
// extractor stage.
func ingestFile(pipe *pipeline.Pipeline, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	var t model.TIMD
	if err := json.Unmarshal(data, &t); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	stored, err := pipe.Ingest(&t)
	if err != nil {
		return fmt.Errorf("ingest %s: %w", path, err)
	}
	fmt.Fprintf(os.Stdout, "Stored %s: %d scored, %.1fs defending\n",
		stored.Key(), stored.CalculatedData.TotalScored(), stored.CalculatedData.TimeDefending)
	return nil
}
