// Package pipeline wires loading, chunking and output into one run.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/coolbeans/lexchunk/pkg/config"
	"github.com/coolbeans/lexchunk/pkg/corpus"
	"github.com/coolbeans/lexchunk/pkg/metrics"
	"github.com/coolbeans/lexchunk/pkg/output"
	"github.com/coolbeans/lexchunk/pkg/pattern"
	"github.com/coolbeans/lexchunk/pkg/statute"
)

// Options carries the collaborators of a run. Zero values are filled in.
type Options struct {
	Logger *slog.Logger
	// Registry resolves profiles; defaults to built-ins plus cfg.ProfileDir.
	Registry pattern.Registry
	// Recorder collects metrics; a fresh one is used when nil.
	Recorder *metrics.Recorder
	// DryRun chunks and validates without writing any file.
	DryRun bool
}

// Result is the outcome of one run.
type Result struct {
	Chunks   []statute.Chunk
	Stats    statute.Stats
	Profile  *pattern.Profile
	Manifest *output.Manifest
}

func (o *Options) fill(cfg *config.Config) error {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Registry == nil {
		registry, err := pattern.NewDefaultRegistry(cfg.ProfileDir)
		if err != nil {
			return fmt.Errorf("failed to load profiles: %w", err)
		}
		registry.SetLogger(o.Logger)
		o.Registry = registry
	}
	if o.Recorder == nil {
		o.Recorder = metrics.NewRecorder()
	}
	return nil
}

// Run loads the input corpus and processes it.
func Run(ctx context.Context, cfg *config.Config, opts Options) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := opts.fill(cfg); err != nil {
		return nil, err
	}

	loader := &corpus.Loader{
		Dir:      cfg.Input.Dir,
		Pattern:  cfg.Input.Pattern,
		Encoding: cfg.Input.Encoding,
		Logger:   opts.Logger,
	}
	c, err := loader.Load(ctx)
	if err != nil {
		opts.Recorder.ObserveFailure(cfg.Profile)
		return nil, fmt.Errorf("failed to load input: %w", err)
	}

	if cfg.Input.RawOutput != "" && !opts.DryRun {
		if err := c.WriteRaw(cfg.Input.RawOutput); err != nil {
			return nil, err
		}
		opts.Logger.Debug("wrote raw text", "path", cfg.Input.RawOutput)
	}

	return Process(ctx, c, cfg, opts)
}

// Process chunks an already loaded corpus and writes the configured outputs.
func Process(ctx context.Context, c *corpus.Corpus, cfg *config.Config, opts Options) (*Result, error) {
	if err := opts.fill(cfg); err != nil {
		return nil, err
	}
	manifest := output.NewManifest()
	logger := opts.Logger.With("run_id", manifest.RunID)

	profile, detected, err := ResolveProfile(opts.Registry, cfg.Profile, c.Text)
	if err != nil {
		opts.Recorder.ObserveFailure(cfg.Profile)
		return nil, err
	}
	if detected {
		logger.Info("detected profile", "profile", profile.ProfileID)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	chunker, err := statute.NewChunker(profile, statute.ChunkerOptions{
		KeepPreamble: cfg.Chunking.KeepPreamble,
		Workers:      cfg.Chunking.Workers,
		Logger:       logger,
	})
	if err != nil {
		return nil, err
	}
	chunked := chunker.Chunk(c.Text)

	if err := output.Validate(chunked.Chunks); err != nil {
		opts.Recorder.ObserveFailure(profile.ProfileID)
		return nil, fmt.Errorf("chunk validation failed: %w", err)
	}

	format, err := output.ParseFormat(cfg.Output.Format)
	if err != nil {
		return nil, err
	}

	manifest.Profile = profile.ProfileID
	manifest.ProfileVersion = profile.Version
	manifest.Detected = detected
	manifest.Sources = c.Sources
	manifest.InputBytes = c.Bytes()
	manifest.Output = cfg.Output.Path
	manifest.Format = format
	manifest.Passages = cfg.Output.Passages
	manifest.Stats = chunked.Stats

	if !opts.DryRun {
		if err := output.WriteFile(cfg.Output.Path, chunked.Chunks, format); err != nil {
			return nil, err
		}
		if cfg.Output.Passages != "" {
			passages := output.Passages(chunked.Chunks, cfg.Output.PassagePrefix)
			if err := output.WritePassages(cfg.Output.Passages, passages); err != nil {
				return nil, err
			}
			logger.Debug("wrote passages", "path", cfg.Output.Passages, "passages", len(passages))
		}
	}

	manifest.Finish()
	if cfg.Output.Manifest && !opts.DryRun {
		if err := manifest.Save(output.ManifestPath(cfg.Output.Path)); err != nil {
			return nil, err
		}
	}

	opts.Recorder.ObserveRun(profile.ProfileID, c.Bytes(), chunked.Stats, manifest.Duration())
	if cfg.Metrics.Textfile != "" && !opts.DryRun {
		if err := opts.Recorder.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			return nil, err
		}
	}

	logger.Info("chunking complete",
		"profile", profile.ProfileID,
		"chunks", chunked.Stats.Chunks,
		"output", cfg.Output.Path,
		"elapsed", manifest.Duration().Round(time.Millisecond))

	return &Result{
		Chunks:   chunked.Chunks,
		Stats:    chunked.Stats,
		Profile:  profile,
		Manifest: manifest,
	}, nil
}

// ResolveProfile looks up id in the registry, or detects the best profile
// for text when id is "auto". The bool reports whether detection was used.
func ResolveProfile(registry pattern.Registry, id, text string) (*pattern.Profile, bool, error) {
	if id == "" || id == config.ProfileAuto {
		best := pattern.NewDetector(registry).DetectBest(text)
		if best == nil {
			return nil, false, fmt.Errorf("no structure profile matches the input")
		}
		return best.Profile, true, nil
	}

	profile, ok := registry.Get(id)
	if !ok {
		return nil, false, fmt.Errorf("unknown structure profile %q", id)
	}
	return profile, false, nil
}
