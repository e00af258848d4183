package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/coolbeans/lexchunk/pkg/config"
	"github.com/coolbeans/lexchunk/pkg/corpus"
	"github.com/coolbeans/lexchunk/pkg/output"
	"github.com/coolbeans/lexchunk/pkg/pattern"
	"github.com/coolbeans/lexchunk/pkg/pipeline"
)

// Flag names shared by the commands that chunk text.
var chunkFlags = map[string]string{
	"profile":                "profile",
	"profile_dir":            "profile-dir",
	"output.path":            "output",
	"output.format":          "format",
	"output.manifest":        "manifest",
	"output.passages":        "passages",
	"output.passage_prefix":  "passage-prefix",
	"chunking.keep_preamble": "keep-preamble",
	"chunking.workers":       "workers",
	"metrics.textfile":       "metrics-textfile",
}

var inputFlags = map[string]string{
	"input.dir":        "input",
	"input.pattern":    "pattern",
	"input.encoding":   "encoding",
	"input.raw_output": "raw-output",
}

func merged(maps ...map[string]string) map[string]string {
	out := make(map[string]string)
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

func addInputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("input", "i", "", "Directory of raw text files")
	cmd.Flags().String("pattern", "", "Glob of input files relative to --input (e.g. **/*.txt)")
	cmd.Flags().String("encoding", "", "Input encoding: utf-8, euc-kr, auto")
	cmd.Flags().String("raw-output", "", "Write the concatenated input text here")
}

func addChunkFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("profile", "p", "", "Structure profile ID, or auto")
	cmd.Flags().String("profile-dir", "", "Directory of additional profile YAML files")
	cmd.Flags().StringP("output", "o", "", "Output path for chunks")
	cmd.Flags().StringP("format", "f", "", "Output format: json, jsonl, yaml")
	cmd.Flags().Bool("manifest", true, "Write a run manifest next to the output")
	cmd.Flags().String("passages", "", "Also write embedder passages as JSONL")
	cmd.Flags().String("passage-prefix", "", "Prefix for passage text")
	cmd.Flags().Bool("keep-preamble", false, "Chunk the text before the first chapter heading")
	cmd.Flags().Int("workers", 0, "Chapters chunked in parallel")
	cmd.Flags().String("metrics-textfile", "", "Write Prometheus metrics to this file")
}

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Load input files and write chunks",
		Long: `Load every matching input file, chunk the joined text and write the
configured outputs.

Example:
  lexchunk run --input data/raw --output data/processed/chunks.json
  lexchunk run --profile auto --format jsonl --passages passages.jsonl`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, merged(inputFlags, chunkFlags))
			if err != nil {
				return err
			}
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			jsonReport, _ := cmd.Flags().GetBool("json")

			result, err := pipeline.Run(cmd.Context(), cfg, pipeline.Options{Logger: logger, DryRun: dryRun})
			if err != nil {
				return err
			}
			printReport(result.Manifest, jsonReport)
			if dryRun {
				fmt.Println("\nDry run: no files written")
			}
			return nil
		},
	}
	addInputFlags(cmd)
	addChunkFlags(cmd)
	cmd.Flags().Bool("dry-run", false, "Chunk and validate without writing files")
	cmd.Flags().Bool("json", false, "Print the run manifest as JSON")
	return cmd
}

func loadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Join input files into one raw text file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, inputFlags)
			if err != nil {
				return err
			}
			if cfg.Input.RawOutput == "" {
				return fmt.Errorf("--raw-output is required")
			}

			loader := &corpus.Loader{
				Dir:      cfg.Input.Dir,
				Pattern:  cfg.Input.Pattern,
				Encoding: cfg.Input.Encoding,
				Logger:   logger,
			}
			c, err := loader.Load(cmd.Context())
			if err != nil {
				return err
			}
			if err := c.WriteRaw(cfg.Input.RawOutput); err != nil {
				return err
			}

			for _, src := range c.Sources {
				fmt.Printf("  %-50s %10s  %s\n", src.Path, output.FormatBytes(src.Size), src.Encoding)
			}
			fmt.Printf("\nWrote %s (%d files, %s)\n", cfg.Input.RawOutput, len(c.Sources), output.FormatBytes(int64(c.Bytes())))
			return nil
		},
	}
	addInputFlags(cmd)
	return cmd
}

func splitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "split [raw-text-file]",
		Short: "Chunk an already joined raw text file",
		Long: `Chunk a single UTF-8 text file, by default the raw output of "lexchunk load".

Example:
  lexchunk split data/intermediate/raw_text.txt --format yaml -o chunks.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, merged(map[string]string{"input.raw_output": "raw-output"}, chunkFlags))
			if err != nil {
				return err
			}
			path := cfg.Input.RawOutput
			if len(args) > 0 {
				path = args[0]
			}
			if path == "" {
				return fmt.Errorf("no raw text file given")
			}

			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read raw text: %w", err)
			}
			text, used, err := corpus.Decode(data, corpus.EncodingUTF8)
			if err != nil {
				return err
			}
			c := &corpus.Corpus{
				Text:    text,
				Sources: []corpus.Source{{Path: path, Size: int64(len(data)), Encoding: used}},
			}

			jsonReport, _ := cmd.Flags().GetBool("json")
			result, err := pipeline.Process(cmd.Context(), c, cfg, pipeline.Options{Logger: logger})
			if err != nil {
				return err
			}
			printReport(result.Manifest, jsonReport)
			return nil
		},
	}
	addChunkFlags(cmd)
	cmd.Flags().String("raw-output", "", "Raw text file to chunk when no argument is given")
	cmd.Flags().Bool("json", false, "Print the run manifest as JSON")
	return cmd
}

func inspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect [chunks-file]",
		Short: "Print chunks with their metadata",
		Long: `Print chunks one block at a time for manual review.

Example:
  lexchunk inspect --limit 5
  lexchunk inspect chunks.jsonl --type addendum
  lexchunk inspect --id 3-15-②`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := manager.Get().Output.Path
			if len(args) > 0 {
				path = args[0]
			}
			chunks, err := output.ReadFile(path)
			if err != nil {
				return err
			}

			opts := output.InspectOptions{}
			opts.ID, _ = cmd.Flags().GetString("id")
			opts.SectionType, _ = cmd.Flags().GetString("type")
			opts.Limit, _ = cmd.Flags().GetInt("limit")
			opts.Cleaned, _ = cmd.Flags().GetBool("cleaned")

			n, err := output.Inspect(os.Stdout, chunks, opts)
			if err != nil {
				return err
			}
			if n == 0 && opts.ID != "" {
				return fmt.Errorf("no chunk with id %q", opts.ID)
			}
			return nil
		},
	}
	cmd.Flags().String("id", "", "Show only the chunk with this identifier")
	cmd.Flags().String("type", "", "Show only chunks of this section type")
	cmd.Flags().IntP("limit", "n", 0, "Maximum chunks to print (0 = all)")
	cmd.Flags().Bool("cleaned", false, "Print cleaned content")
	return cmd
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [chunks-file]",
		Short: "Check a chunks file against the chunk schema",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := manager.Get().Output.Path
			if len(args) > 0 {
				path = args[0]
			}
			chunks, err := output.ReadFile(path)
			if err != nil {
				return err
			}

			if err := output.Validate(chunks); err != nil {
				var verrs output.ValidationErrors
				if errors.As(err, &verrs) {
					for _, e := range verrs {
						fmt.Printf("  ✗ %s\n", e.Error())
					}
					return fmt.Errorf("%s: %d validation errors", path, len(verrs))
				}
				return err
			}

			fmt.Printf("✓ %s: %d chunks valid\n", path, len(chunks))
			return nil
		},
	}
}

func profilesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "List, show and detect structure profiles",
	}
	cmd.PersistentFlags().String("profile-dir", "", "Directory of additional profile YAML files")

	registry := func(cmd *cobra.Command) (*pattern.DefaultRegistry, error) {
		cfg, err := loadConfig(cmd, map[string]string{"profile_dir": "profile-dir"})
		if err != nil {
			return nil, err
		}
		r, err := pattern.NewDefaultRegistry(cfg.ProfileDir)
		if err != nil {
			return nil, err
		}
		r.SetLogger(logger)
		return r, nil
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List available profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := registry(cmd)
			if err != nil {
				return err
			}
			fmt.Print(output.FormatProfileTable(r.List()))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show <profile-id>",
		Short: "Print a profile as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := registry(cmd)
			if err != nil {
				return err
			}
			p, ok := r.Get(args[0])
			if !ok {
				return fmt.Errorf("unknown structure profile %q", args[0])
			}
			data, err := pattern.MarshalProfile(p)
			if err != nil {
				return err
			}
			fmt.Print(string(data))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "detect <text-file>",
		Short: "Score every profile against a text file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := registry(cmd)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			text, _, err := corpus.Decode(data, corpus.EncodingAuto)
			if err != nil {
				return err
			}

			matches := pattern.NewDetector(r).Detect(text)
			if len(matches) == 0 {
				fmt.Println("No profile matches.")
				return nil
			}
			fmt.Printf("%-20s %10s %10s %10s\n", "PROFILE", "CONFIDENCE", "REQUIRED", "OPTIONAL")
			for _, m := range matches {
				fmt.Printf("%-20s %9.0f%% %7d/%-2d %7d/%-2d\n", m.ProfileID, m.Confidence*100,
					m.RequiredMatched, m.RequiredTotal, m.OptionalMatched, m.OptionalTotal)
			}
			return nil
		},
	})

	return cmd
}

func watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-run chunking whenever input files or profiles change",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, merged(inputFlags, chunkFlags))
			if err != nil {
				return err
			}
			debounce, _ := cmd.Flags().GetDuration("debounce")

			manager.OnChange(func(*config.Config) {
				logger.Warn("config file changed; restart watch to apply it", "path", manager.ConfigFile())
			})
			if manager.ConfigFile() != "" {
				manager.WatchConfig()
			}

			logger.Info("watching input", "dir", cfg.Input.Dir, "pattern", cfg.Input.Pattern)
			return pipeline.Watch(cmd.Context(), cfg, pipeline.WatchOptions{
				Options:  pipeline.Options{Logger: logger},
				Debounce: debounce,
				OnRun: func(result *pipeline.Result, err error) {
					if err == nil {
						fmt.Print(output.FormatStats(result.Stats))
					}
				},
			})
		},
	}
	addInputFlags(cmd)
	addChunkFlags(cmd)
	cmd.Flags().Duration("debounce", pipeline.DefaultDebounce, "Quiet period before re-running")
	return cmd
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the lexchunk configuration file",
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a default configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "lexchunk.yaml"
			if len(args) > 0 {
				path = args[0]
			}
			force, _ := cmd.Flags().GetBool("force")
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if dir := filepath.Dir(path); dir != "." {
				if err := os.MkdirAll(dir, 0755); err != nil {
					return fmt.Errorf("failed to create directory %s: %w", dir, err)
				}
			}
			if err := config.WriteDefault(path); err != nil {
				return err
			}
			fmt.Printf("Wrote default configuration to %s\n", path)
			return nil
		},
	}
	initCmd.Flags().Bool("force", false, "Overwrite an existing file")
	cmd.AddCommand(initCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := manager.Get()
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			if file := manager.ConfigFile(); file != "" {
				fmt.Printf("# from %s\n", file)
			}
			fmt.Print(string(data))
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}
			return nil
		},
	})

	return cmd
}

func printReport(m *output.Manifest, asJSON bool) {
	if asJSON {
		fmt.Println(output.FormatReportJSON(m))
		return
	}
	fmt.Print(output.FormatReport(m))
}
