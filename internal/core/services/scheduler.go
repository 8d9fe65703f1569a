package services

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/lovbase/paragraf/internal/core/domain"
	"github.com/lovbase/paragraf/internal/core/ports/driven"
	"github.com/lovbase/paragraf/internal/core/ports/driving"
	"github.com/lovbase/paragraf/internal/logger"
)

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

// cacheMaxAge is how long unused cache entries are kept before the
// prune task removes them.
const cacheMaxAge = 30 * 24 * time.Hour

// historyMaxAge is how long task run history is kept.
const historyMaxAge = 30 * 24 * time.Hour

// Scheduler runs recurring background tasks: source rescans and cache
// pruning. It is a pure core service with no external control API.
type Scheduler struct {
	config   domain.SchedulerConfig
	store    driven.SchedulerStore
	syncOrch driving.SyncOrchestrator
	cacheDir string

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler. The cacheDir is the root of the
// on-disk AI caches the prune task sweeps; empty disables pruning.
func NewScheduler(
	config domain.SchedulerConfig,
	store driven.SchedulerStore,
	syncOrch driving.SyncOrchestrator,
	cacheDir string,
) *Scheduler {
	return &Scheduler{
		config:   config,
		store:    store,
		syncOrch: syncOrch,
		cacheDir: cacheDir,
	}
}

// Start begins the scheduler loop. This method blocks until Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil // Already running
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	// Initialise tasks in store
	if err := s.initialiseTasks(ctx); err != nil {
		logger.Warn("Scheduler failed to initialise tasks: %v", err)
	}

	// Run the main scheduler loop
	return s.run(ctx)
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	// Wait for running tasks to complete
	s.wg.Wait()

	return nil
}

// initialiseTasks ensures all configured tasks exist in the store.
func (s *Scheduler) initialiseTasks(ctx context.Context) error {
	if taskCfg := s.config.GetTaskConfig(domain.TaskIDSourceRescan); taskCfg.Enabled {
		if err := s.ensureTask(ctx, domain.TaskIDSourceRescan, "Source Rescan", taskCfg); err != nil {
			return err
		}
	}
	if taskCfg := s.config.GetTaskConfig(domain.TaskIDCachePrune); taskCfg.Enabled {
		if err := s.ensureTask(ctx, domain.TaskIDCachePrune, "Cache Prune", taskCfg); err != nil {
			return err
		}
	}

	return nil
}

// ensureTask creates or updates a task in the store.
func (s *Scheduler) ensureTask(ctx context.Context, id, name string, cfg domain.TaskConfig) error {
	task, err := s.store.GetTask(ctx, id)
	if err != nil {
		return err
	}

	if task == nil {
		// Create new task
		task = &domain.ScheduledTask{
			ID:       id,
			Name:     name,
			Interval: cfg.Interval,
			Enabled:  cfg.Enabled,
			NextRun:  time.Now().Add(cfg.Interval),
		}
	} else {
		// Update interval if changed
		if task.Interval != cfg.Interval {
			task.Interval = cfg.Interval
			// Recalculate next run from now
			task.NextRun = time.Now().Add(cfg.Interval)
		}
		task.Enabled = cfg.Enabled
	}

	return s.store.SaveTask(ctx, task)
}

// run is the main scheduler loop.
func (s *Scheduler) run(ctx context.Context) error {
	// Check for due tasks immediately on startup
	s.checkAndRunDueTasks(ctx)

	// Use a 1-minute ticker to check for due tasks
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stopCh:
			return nil
		case <-ticker.C:
			s.checkAndRunDueTasks(ctx)
		}
	}
}

// checkAndRunDueTasks finds and executes tasks that are due.
func (s *Scheduler) checkAndRunDueTasks(ctx context.Context) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		logger.Warn("Scheduler failed to list tasks: %v", err)
		return
	}

	now := time.Now()
	for _, task := range tasks {
		if !task.Enabled {
			continue
		}
		if task.NextRun.IsZero() || !task.NextRun.After(now) {
			s.runTask(ctx, task)
		}
	}
}

// runTask executes a single task.
func (s *Scheduler) runTask(ctx context.Context, task *domain.ScheduledTask) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		result := &domain.TaskResult{
			TaskID:    task.ID,
			StartedAt: time.Now(),
		}

		var err error
		switch task.ID {
		case domain.TaskIDSourceRescan:
			result.ItemsProcessed, err = s.runSourceRescan(ctx)
		case domain.TaskIDCachePrune:
			result.ItemsProcessed, err = s.runCachePrune(ctx)
		default:
			logger.Warn("Scheduler: unknown task ID %s", task.ID)
			return
		}

		result.EndedAt = time.Now()
		if err != nil {
			result.Success = false
			result.Error = err.Error()
			task.LastError = err.Error()
		} else {
			result.Success = true
			task.LastError = ""
			task.LastSuccess = result.EndedAt
		}

		// Update task state
		task.LastRun = result.StartedAt
		task.NextRun = result.EndedAt.Add(task.Interval)

		if saveErr := s.store.SaveTask(ctx, task); saveErr != nil {
			logger.Warn("Scheduler failed to save task %s: %v", task.ID, saveErr)
		}

		// Record result for history
		if recordErr := s.store.RecordResult(ctx, result); recordErr != nil {
			logger.Warn("Scheduler failed to record result for %s: %v", task.ID, recordErr)
		}

		// Prune old history
		if _, pruneErr := s.store.PruneHistory(ctx, time.Now().Add(-historyMaxAge)); pruneErr != nil {
			logger.Warn("Scheduler failed to prune history: %v", pruneErr)
		}
	}()
}

// runSourceRescan re-syncs all sources.
//
//nolint:unparam // itemsProcessed stays 0 until SyncAll returns a count
func (s *Scheduler) runSourceRescan(ctx context.Context) (int, error) {
	if s.syncOrch == nil {
		return 0, nil
	}

	// SyncAll syncs all configured sources. Per-source document counts
	// stay in the orchestrator's status map, so report 0 items here.
	err := s.syncOrch.SyncAll(ctx)
	return 0, err
}

// runCachePrune removes cache files untouched for longer than
// cacheMaxAge. Returns the number of files removed.
func (s *Scheduler) runCachePrune(ctx context.Context) (int, error) {
	if s.cacheDir == "" {
		return 0, nil
	}
	if _, err := os.Stat(s.cacheDir); os.IsNotExist(err) {
		return 0, nil
	}

	cutoff := time.Now().Add(-cacheMaxAge)
	removed := 0

	err := filepath.WalkDir(s.cacheDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil //nolint:nilerr // File vanished mid-walk, skip it
		}
		if info.ModTime().Before(cutoff) {
			if removeErr := os.Remove(path); removeErr == nil {
				removed++
			}
		}
		return nil
	})
	if err != nil {
		return removed, err
	}

	logger.Debug("Cache prune removed %d files", removed)
	return removed, nil
}
