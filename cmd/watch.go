package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the inbox directory and ingest new timeline files",
	Long: "Monitor the configured inbox directory for consolidated timeline JSON\n" +
		"files and run each new file through the metrics extractor as it arrives.",
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	if err := os.MkdirAll(cfg.InboxDir, 0755); err != nil {
		return fmt.Errorf("create inbox dir: %w", err)
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()
	pipe := newPipeline(db)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(cfg.InboxDir); err != nil {
		return fmt.Errorf("watch %s: %w", cfg.InboxDir, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("watching inbox", "dir", cfg.InboxDir)
	for {
		select {
		case <-ctx.Done():
			logger.Info("watch stopped")
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Files are assumed to be written atomically (rename into the
			// inbox); Create is the signal a record is ready.
			if !event.Has(fsnotify.Create) {
				continue
			}
			if !strings.EqualFold(filepath.Ext(event.Name), ".json") {
				continue
			}
			if err := ingestFile(pipe, event.Name); err != nil {
				logger.Error("ingest failed", "file", event.Name, "error", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher error", "error", err)
		}
	}
}
