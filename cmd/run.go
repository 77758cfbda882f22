package cmd

import (
	"context"
	"fmt"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.uber.org/dig"

	"github.com/rios0rios0/vulnpairs/application"
	"github.com/rios0rios0/vulnpairs/config"
	"github.com/rios0rios0/vulnpairs/domain"
	"github.com/rios0rios0/vulnpairs/infrastructure/dataset"
	"github.com/rios0rios0/vulnpairs/infrastructure/gitrepo"
	"github.com/rios0rios0/vulnpairs/infrastructure/textenc"
)

//nolint:gochecknoglobals // required by cobra CLI pattern
var (
	inputFile  string
	outputFile string
	reposDir   string
	workers    int
)

//nolint:gochecknoglobals // required by cobra CLI pattern
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the dataset extraction pipeline",
	Long: `Read the input CSV of fix commits, clone each repository into the
local cache, and append the extracted vulnerable/fixed pairs to the
output CSV.

Failing rows are logged and skipped; the run always completes with a
(possibly empty) dataset and a log trail explaining every skip.`,
	RunE: runExtraction,
}

//nolint:gochecknoinits // required by cobra CLI pattern
func init() {
	runCmd.Flags().StringVar(
		&inputFile, "input", "",
		"Input CSV with cve_id, repo_url, commit_hash columns",
	)
	runCmd.Flags().StringVar(
		&outputFile, "output", "",
		"Output CSV the labeled records are written to",
	)
	runCmd.Flags().StringVar(
		&reposDir, "repos-dir", "",
		"Cache directory for cloned repositories",
	)
	runCmd.Flags().IntVar(
		&workers, "workers", 0,
		"Input rows processed concurrently (default from config)",
	)
	rootCmd.AddCommand(runCmd)
}

func runExtraction(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	if verbose {
		logger.SetLevel(logger.DebugLevel)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	container, err := buildContainer(cfg)
	if err != nil {
		return fmt.Errorf("failed to assemble pipeline: %w", err)
	}

	return container.Invoke(func(service *application.ExtractionService) error {
		source, sourceErr := dataset.OpenCSVSource(cfg.InputFile)
		if sourceErr != nil {
			return sourceErr
		}
		defer func() { _ = source.Close() }()

		sink, sinkErr := dataset.CreateCSVSink(cfg.OutputFile)
		if sinkErr != nil {
			return sinkErr
		}
		defer func() { _ = sink.Close() }()

		logger.Info("Starting extraction run...")
		return service.Run(ctx, source, sink)
	})
}

// loadConfig resolves the config file (built-in defaults when none
// exists) and applies CLI flag overrides.
func loadConfig() (*config.Config, error) {
	cfgPath := configPath
	if cfgPath == "" {
		if found, err := config.FindConfigFile(); err == nil {
			cfgPath = found
		}
	}

	cfg := config.Default()
	if cfgPath != "" {
		logger.Infof("Using config file: %s", cfgPath)
		loaded, err := config.Load(cfgPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if inputFile != "" {
		cfg.InputFile = inputFile
	}
	if outputFile != "" {
		cfg.OutputFile = outputFile
	}
	if reposDir != "" {
		cfg.ReposDir = reposDir
	}
	if workers > 0 {
		cfg.Workers = workers
	}

	return cfg, nil
}

// buildContainer wires the component graph.
func buildContainer(cfg *config.Config) (*dig.Container, error) {
	container := dig.New()

	constructors := []any{
		func() *config.Config { return cfg },
		func() textenc.CharsetDetector { return textenc.NewChardetDetector() },
		func(detector textenc.CharsetDetector) domain.TextDecoder {
			return textenc.NewDecoder(detector)
		},
		func(c *config.Config) domain.RepositoryStore {
			return gitrepo.NewStore(c.ReposDir)
		},
		func() domain.ChangeEnumerator { return gitrepo.NewEnumerator() },
		func(c *config.Config, decoder domain.TextDecoder) domain.ContentRetriever {
			return gitrepo.NewRetriever(c.MaxFileSize, c.MinLines, decoder)
		},
		application.NewPairBuilder,
		application.NewExtractionService,
	}

	for _, constructor := range constructors {
		if err := container.Provide(constructor); err != nil {
			return nil, err
		}
	}

	return container, nil
}
