// Package export writes accumulated extraction results to JSON, spreadsheet and graph sinks.
package export

import (
	"context"

	"go.uber.org/zap"

	"github.com/agenthands/nerbatch/internal/config"
	"github.com/agenthands/nerbatch/internal/core/common"
	"github.com/agenthands/nerbatch/internal/core/model"
)

type Options struct {
	JSON        bool
	JSONPath    string
	Tabular     bool
	TabularPath string
	Melt        bool
	SortColumn  string
	IDField     string
}

func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		JSON:        cfg.Export.JSON,
		JSONPath:    cfg.Export.JSONPath,
		Tabular:     cfg.Export.Tabular,
		TabularPath: cfg.Export.TabularPath,
		Melt:        cfg.Export.Melt,
		SortColumn:  cfg.SortColumn(),
		IDField:     cfg.Model.RecordIDField,
	}
}

type Exporter struct {
	Opts  Options
	Graph *GraphSink

	logger *zap.Logger
}

// NewExporter builds an exporter; graph may be nil.
func NewExporter(opts Options, graph *GraphSink, logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{Opts: opts, Graph: graph, logger: logger}
}

// Export writes every enabled sink. The first failure is returned as an ExportError.
func (e *Exporter) Export(ctx context.Context, results []model.FormattedResult) error {
	if e.Opts.JSON {
		if err := WriteJSON(e.Opts.JSONPath, results); err != nil {
			return &common.ExportError{Target: "json", Path: e.Opts.JSONPath, Cause: err}
		}
		e.logger.Info("Wrote JSON results", zap.String("path", e.Opts.JSONPath), zap.Int("results", len(results)))
	}

	if e.Opts.Tabular {
		t, err := e.Table(results)
		if err != nil {
			return &common.ExportError{Target: "table", Path: e.Opts.TabularPath, Cause: err}
		}
		if err := WriteTable(e.Opts.TabularPath, t); err != nil {
			return &common.ExportError{Target: "table", Path: e.Opts.TabularPath, Cause: err}
		}
		e.logger.Info("Wrote table",
			zap.String("path", e.Opts.TabularPath),
			zap.Bool("melted", e.Opts.Melt),
			zap.Int("rows", len(t.Rows)))
	}

	if e.Graph != nil {
		if err := e.Graph.Write(ctx, results); err != nil {
			return &common.ExportError{Target: "graph", Cause: err}
		}
		e.logger.Info("Wrote graph entities", zap.Int("results", len(results)))
	}
	return nil
}

// Table returns the wide or melted table, depending on Opts.Melt.
func (e *Exporter) Table(results []model.FormattedResult) (Table, error) {
	if e.Opts.Melt {
		return Melt(results, e.Opts.IDField, e.Opts.SortColumn)
	}
	return Wide(results, e.Opts.IDField), nil
}
