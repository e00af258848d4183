package pipeline

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/coolbeans/lexchunk/pkg/config"
	"github.com/coolbeans/lexchunk/pkg/corpus"
	"github.com/coolbeans/lexchunk/pkg/pattern"
)

// DefaultDebounce is how long Watch waits for a burst of file events to
// settle before re-running.
const DefaultDebounce = 500 * time.Millisecond

// WatchOptions configures Watch.
type WatchOptions struct {
	Options
	Debounce time.Duration
	// OnRun is called after every run, successful or not.
	OnRun func(*Result, error)
}

// Watch runs the pipeline once, then again whenever a matching input file or
// a profile in cfg.ProfileDir changes. It blocks until ctx is done. Run
// errors are reported through OnRun and the logger; they do not stop Watch.
func Watch(ctx context.Context, cfg *config.Config, opts WatchOptions) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := opts.fill(cfg); err != nil {
		return err
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	logger := opts.Logger

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := addTree(watcher, cfg.Input.Dir); err != nil {
		return err
	}

	trigger := make(chan string, 1)
	notify := func(reason string) {
		select {
		case trigger <- reason:
		default:
		}
	}

	if cfg.ProfileDir != "" {
		if r, ok := opts.Registry.(interface {
			SetOnChange(func(string, *pattern.Profile))
		}); ok {
			r.SetOnChange(func(event string, p *pattern.Profile) {
				notify("profile " + event)
			})
			if err := opts.Registry.Watch(); err != nil {
				logger.Warn("profile directory not watched", "dir", cfg.ProfileDir, "error", err)
			} else {
				defer opts.Registry.StopWatch()
			}
		}
	}

	glob := cfg.Input.Pattern
	if glob == "" {
		glob = corpus.DefaultPattern
	}

	run := func(reason string) {
		logger.Info("running pipeline", "reason", reason)
		result, err := Run(ctx, cfg, opts.Options)
		if err != nil {
			logger.Error("pipeline run failed", "error", err)
		}
		if opts.OnRun != nil {
			opts.OnRun(result, err)
		}
	}

	run("initial")

	var (
		timer   *time.Timer
		timerC  <-chan time.Time
		pending string
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = addTree(watcher, event.Name)
					continue
				}
			}
			if !matchesInput(cfg.Input.Dir, glob, event.Name) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			notify("input " + filepath.Base(event.Name))

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("input watcher error", "error", err)

		case reason := <-trigger:
			pending = reason
			if timer == nil {
				timer = time.NewTimer(opts.Debounce)
			} else {
				timer.Reset(opts.Debounce)
			}
			timerC = timer.C

		case <-timerC:
			timerC = nil
			run(pending)
		}
	}
}

// addTree watches dir and every directory below it.
func addTree(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if err := watcher.Add(path); err != nil {
				return fmt.Errorf("watching directory %s: %w", path, err)
			}
		}
		return nil
	})
}

func matchesInput(dir, glob, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	ok, err := doublestar.PathMatch(glob, rel)
	return err == nil && ok
}
