package main

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"nadico/internal/logging"
)

var watchDebounce time.Duration

// watchCmd re-derives norms whenever an observation file changes
var watchCmd = &cobra.Command{
	Use:   "watch FILE...",
	Short: "Re-derive norms whenever an observation file changes",
	Long: `Derives norms for the given files, then watches them and derives again
after every change. Stop with Ctrl+C.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 300*time.Millisecond, "Quiet period before re-deriving")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	out := cmd.OutOrStdout()

	derive := func() {
		jobs, err := loadJobs(args)
		if err == nil {
			var results []*agentResult
			if results, err = deriveAll(ctx, cfg, jobs); err == nil {
				err = printResults(out, results, true)
			}
		}
		if err != nil {
			fmt.Fprintf(out, "derive failed: %v\n", err)
		}
	}
	derive()

	fw, err := newFileWatcher(args, watchDebounce, func(path string) {
		fmt.Fprintf(out, "--- %s changed\n", path)
		derive()
	})
	if err != nil {
		return err
	}
	if err := fw.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	fw.Stop()
	return nil
}

// fileWatcher calls onChange for watched files once their events have been
// quiet for the debounce period. Parent directories are watched so that
// editors replacing files by rename are picked up.
type fileWatcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	files    map[string]bool
	dirs     map[string]bool
	pending  map[string]time.Time
	debounce time.Duration
	onChange func(path string)
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
}

func newFileWatcher(paths []string, debounce time.Duration, onChange func(path string)) (*fileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	fw := &fileWatcher{
		watcher:  w,
		files:    make(map[string]bool),
		dirs:     make(map[string]bool),
		pending:  make(map[string]time.Time),
		debounce: debounce,
		onChange: onChange,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			w.Close()
			return nil, err
		}
		fw.files[abs] = true
		fw.dirs[filepath.Dir(abs)] = true
	}
	return fw, nil
}

// Start begins watching. It does not block.
func (fw *fileWatcher) Start(ctx context.Context) error {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if fw.running {
		return nil
	}
	for dir := range fw.dirs {
		if err := fw.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		logging.CLI("watching %s", dir)
	}
	fw.running = true
	go fw.run(ctx)
	return nil
}

// Stop stops the watcher and waits for the event loop to exit.
func (fw *fileWatcher) Stop() {
	fw.mu.Lock()
	if !fw.running {
		fw.mu.Unlock()
		fw.watcher.Close()
		return
	}
	fw.running = false
	fw.mu.Unlock()

	close(fw.stopCh)
	<-fw.doneCh
	if err := fw.watcher.Close(); err != nil {
		logging.Get(logging.CategoryCLI).Error("error closing watcher: %v", err)
	}
}

func (fw *fileWatcher) run(ctx context.Context) {
	defer close(fw.doneCh)

	tick := fw.debounce / 3
	if tick <= 0 {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-fw.stopCh:
			return
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handleEvent(event)
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			logging.Get(logging.CategoryCLI).Error("watcher error: %v", err)
		case now := <-ticker.C:
			for _, path := range fw.due(now) {
				fw.onChange(path)
			}
		}
	}
}

func (fw *fileWatcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
		return
	}
	path := filepath.Clean(event.Name)
	if !fw.files[path] {
		return
	}
	fw.mu.Lock()
	fw.pending[path] = time.Now()
	fw.mu.Unlock()
}

// due returns pending paths quiet for at least the debounce period, in no
// particular order, and forgets them.
func (fw *fileWatcher) due(now time.Time) []string {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	var out []string
	for path, at := range fw.pending {
		if now.Sub(at) >= fw.debounce {
			out = append(out, path)
			delete(fw.pending, path)
		}
	}
	return out
}
