package core

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/agenthands/nerbatch/internal/core/cleaning"
	"github.com/agenthands/nerbatch/internal/core/extraction"
	"github.com/agenthands/nerbatch/internal/core/ingest"
	"github.com/agenthands/nerbatch/internal/core/model"
	"github.com/agenthands/nerbatch/internal/export"
)

// BatchFailure records a batch whose results were dropped.
type BatchFailure struct {
	Index    int
	RecordID []int
	Err      error
}

type Report struct {
	Records  int
	Batches  int
	Results  []model.FormattedResult
	Failures []BatchFailure
}

// Pipeline runs discovery, cleaning, batched extraction and export in a single pass.
type Pipeline struct {
	Backend   extraction.Backend
	Cleaner   *cleaning.Cleaner
	Exporter  *export.Exporter
	BatchSize int

	logger  *zap.Logger
	results []model.FormattedResult
}

func NewPipeline(backend extraction.Backend, cleaner *cleaning.Cleaner, exporter *export.Exporter, batchSize int, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		Backend:   backend,
		Cleaner:   cleaner,
		Exporter:  exporter,
		BatchSize: batchSize,
		logger:    logger,
	}
}

// MakeBatches splits records into consecutive batches of size; the last one may be shorter.
func MakeBatches(records []model.Record, size int) ([]model.Batch, error) {
	if size < 1 {
		return nil, fmt.Errorf("batch size must be >= 1, got %d", size)
	}
	var batches []model.Batch
	for start := 0; start < len(records); start += size {
		end := min(start+size, len(records))
		batches = append(batches, model.Batch{Index: len(batches), Records: records[start:end]})
	}
	return batches, nil
}

// Run processes every record file in dir. A failing batch is logged and skipped; only
// discovery, export and context cancellation abort the run.
func (p *Pipeline) Run(ctx context.Context, dir, ext string) (*Report, error) {
	records, err := ingest.ReadRecords(dir, ext)
	if err != nil {
		return nil, err
	}
	p.logger.Info("Discovered records", zap.String("dir", dir), zap.Int("records", len(records)))

	report, err := p.Process(ctx, records)
	if err != nil {
		return report, err
	}

	if p.Exporter != nil {
		if err := p.Exporter.Export(ctx, report.Results); err != nil {
			return report, err
		}
	}
	return report, nil
}

// Process cleans, batches and extracts records without touching the filesystem.
func (p *Pipeline) Process(ctx context.Context, records []model.Record) (*Report, error) {
	if p.Cleaner != nil {
		records = p.Cleaner.Clean(records)
	}

	batches, err := MakeBatches(records, p.BatchSize)
	if err != nil {
		return nil, err
	}

	report := &Report{Records: len(records), Batches: len(batches)}
	p.results = p.results[:0]
	for _, batch := range batches {
		if err := ctx.Err(); err != nil {
			report.Results = p.Results()
			return report, err
		}

		results, err := p.Backend.Extract(ctx, batch)
		if err != nil {
			p.logger.Error("Batch failed, skipping",
				zap.Int("batch", batch.Index),
				zap.Int("batches", len(batches)),
				zap.Ints("record_ids", batch.IDs()),
				zap.Error(err))
			report.Failures = append(report.Failures, BatchFailure{Index: batch.Index, RecordID: batch.IDs(), Err: err})
			continue
		}

		p.logger.Debug("Batch done",
			zap.Int("batch", batch.Index),
			zap.Int("results", len(results)))
		p.results = append(p.results, results...)
	}

	report.Results = p.Results()
	return report, nil
}

// Results returns the results accumulated by the last run.
func (p *Pipeline) Results() []model.FormattedResult {
	out := make([]model.FormattedResult, len(p.results))
	copy(out, p.results)
	return out
}
