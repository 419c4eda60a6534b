package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docsearch/internal/core/domain"
	"github.com/custodia-labs/docsearch/internal/core/ports/driven"
	"github.com/custodia-labs/docsearch/internal/core/services"
	"github.com/custodia-labs/docsearch/internal/logger"
	"github.com/custodia-labs/docsearch/internal/watcher"
	"github.com/custodia-labs/docsearch/internal/worker"
)

var watchCmd = &cobra.Command{
	Use:   "watch [path...]",
	Short: "Watch folders and keep the index current",
	Long: `Watches the given paths (or the configured watched folders) for file
changes and indexes them in the background. Runs until interrupted.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	roots := args
	if len(roots) == 0 {
		roots = cfg.General.WatchedFolders
	}
	if len(roots) == 0 {
		return fmt.Errorf("no paths given and no watched folders configured")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool := worker.NewPool(store.JobStore(), indexService,
		worker.WithWorkers(cfg.Indexer.Workers))
	pool.Start(ctx)
	defer pool.Stop()

	w, err := watcher.New(
		&enqueueHandler{jobs: store.JobStore(), index: indexService},
		registry,
		watcher.WithDebounce(time.Duration(cfg.Watcher.DebounceMS)*time.Millisecond),
		watcher.WithIgnorePatterns(cfg.Watcher.IgnorePatterns),
	)
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	if err := w.Start(roots); err != nil {
		w.Stop()
		return fmt.Errorf("watching: %w", err)
	}
	defer w.Stop()

	cmd.Printf("Watching %d folder(s). Press Ctrl-C to stop.\n", len(roots))
	<-ctx.Done()
	cmd.Println("\nShutting down...")
	return nil
}

// enqueueHandler turns debounced file events into queue jobs and
// pending ledger entries. Enqueue failures are logged; the watcher
// must keep running.
type enqueueHandler struct {
	jobs  driven.JobStore
	index *services.IndexService
}

func (h *enqueueHandler) OnCreated(path string)  { h.enqueue(domain.JobIndex, path) }
func (h *enqueueHandler) OnModified(path string) { h.enqueue(domain.JobIndex, path) }
func (h *enqueueHandler) OnDeleted(path string)  { h.enqueue(domain.JobDelete, path) }

func (h *enqueueHandler) enqueue(kind domain.JobKind, path string) {
	if kind == domain.JobIndex && h.index != nil {
		h.index.NotePending(context.Background(), path)
	}
	job := &domain.Job{Kind: kind, FilePath: path}
	if err := h.jobs.Enqueue(context.Background(), job); err != nil {
		logger.Warn("enqueue %s for %s: %v", kind, path, err)
		return
	}
	logger.Debug("queued %s job %d for %s", kind, job.ID, path)
}
