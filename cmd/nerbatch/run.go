package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agenthands/nerbatch/internal/config"
	"github.com/agenthands/nerbatch/internal/core"
	"github.com/agenthands/nerbatch/internal/core/cleaning"
	"github.com/agenthands/nerbatch/internal/core/extraction"
	"github.com/agenthands/nerbatch/internal/driver"
	"github.com/agenthands/nerbatch/internal/export"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Extract entities from every record in the input directory",
	RunE:  runPipeline,
}

var (
	runInput     string
	runBatchSize int
	runModel     string
	runModelType string
	runJSONOut   string
	runTableOut  string
	runMelt      bool
)

func init() {
	runCmd.Flags().StringVarP(&runInput, "input", "i", "", "Directory of record_<n>.txt files (overrides input.dir)")
	runCmd.Flags().IntVarP(&runBatchSize, "batch-size", "b", 0, "Records per batch (overrides batch.size)")
	runCmd.Flags().StringVar(&runModel, "model", "", "Model identifier (overrides model.uri)")
	runCmd.Flags().StringVar(&runModelType, "model-type", "", "GPT, CLAUDE, GEMINI, OLLAMA or SPACY (overrides model.type)")
	runCmd.Flags().StringVar(&runJSONOut, "json-out", "", "JSON output path (overrides export.json_path)")
	runCmd.Flags().StringVar(&runTableOut, "table-out", "", "Spreadsheet output path, .xlsx or .csv (overrides export.tabular_path)")
	runCmd.Flags().BoolVar(&runMelt, "melt", true, "Write the table in long form (record id, NAME, VALUE)")

	rootCmd.AddCommand(runCmd)
}

// loadRunConfig layers the config file, then the environment, then flags.
func loadRunConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	if _, err := os.Stat(configPath); err == nil {
		cfg, err = config.Load(configPath)
		if err != nil {
			return nil, err
		}
	} else if cmd.Flags().Changed("config") || !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config file '%s': %w", configPath, err)
	} else {
		d := config.Defaults()
		cfg = &d
	}

	config.ApplyEnv(cfg, os.Getenv)

	if runInput != "" {
		cfg.Input.Dir = runInput
	}
	if runBatchSize != 0 {
		cfg.Batch.Size = runBatchSize
	}
	if runModel != "" {
		cfg.Model.URI = runModel
	}
	if runModelType != "" {
		cfg.Model.Type = config.ModelType(strings.ToUpper(runModelType))
	}
	if runJSONOut != "" {
		cfg.Export.JSONPath = runJSONOut
		cfg.Export.JSON = true
	}
	if runTableOut != "" {
		cfg.Export.TabularPath = runTableOut
		cfg.Export.Tabular = true
	}
	if cmd.Flags().Changed("melt") {
		cfg.Export.Melt = runMelt
	}

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runPipeline(cmd *cobra.Command, _ []string) error {
	cfg, err := loadRunConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log := logger.With(zap.String("run_id", uuid.New().String()))
	log.Info("Starting run",
		zap.String("input", cfg.Input.Dir),
		zap.String("model_type", string(cfg.Model.Type)),
		zap.String("model", cfg.Model.URI),
		zap.Int("batch_size", cfg.Batch.Size))

	backend, err := extraction.NewBackend(ctx, cfg.Model, log)
	if err != nil {
		return fmt.Errorf("failed to initialize model backend: %w", err)
	}
	if c, ok := backend.(io.Closer); ok {
		defer c.Close()
	}

	var graph *export.GraphSink
	if cfg.Export.Graph.Enabled {
		g := cfg.Export.Graph
		d, err := driver.NewMemgraphDriver(ctx, g.URI, g.User, g.Password, log)
		if err != nil {
			return fmt.Errorf("failed to connect to graph database: %w", err)
		}
		defer d.Close(context.Background())
		graph = export.NewGraphSink(d, cfg.Model.RecordIDField)
	}

	p := core.NewPipeline(
		backend,
		cleaning.NewCleaner(cfg.Cleaning, log),
		export.NewExporter(export.OptionsFromConfig(cfg), graph, log),
		cfg.Batch.Size,
		log,
	)

	report, err := p.Run(ctx, cfg.Input.Dir, cfg.Input.Extension)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "records=%d batches=%d results=%d failed_batches=%d\n",
		report.Records, report.Batches, len(report.Results), len(report.Failures))
	return nil
}
