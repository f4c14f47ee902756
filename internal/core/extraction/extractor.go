package extraction

import (
	"context"
	"io"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/agenthands/nerbatch/internal/config"
	"github.com/agenthands/nerbatch/internal/core/common"
	"github.com/agenthands/nerbatch/internal/core/model"
	"github.com/agenthands/nerbatch/internal/llm"
)

// Backend turns a batch of cleaned records into one FormattedResult per record, in batch order.
type Backend interface {
	Extract(ctx context.Context, batch model.Batch) ([]model.FormattedResult, error)
	Name() string
}

type Options struct {
	PromptSeparator     string
	CompletionSeparator string
	RecordIDField       string
	// Concurrency bounds in-flight requests within one batch. 1 means strictly sequential.
	Concurrency  int
	OnParseError config.ParsePolicy
}

func OptionsFromConfig(cfg config.ModelConfig) Options {
	return Options{
		PromptSeparator:     cfg.PromptSeparator,
		CompletionSeparator: cfg.CompletionSeparator,
		RecordIDField:       cfg.RecordIDField,
		Concurrency:         cfg.Concurrency,
		OnParseError:        cfg.OnParseError,
	}
}

// CompletionExtractor sends one completion request per record and parses the
// "KEY: value" lines of each completion.
type CompletionExtractor struct {
	LLM    llm.LLMClient
	Opts   Options
	Params llm.CompletionParams

	name   string
	logger *zap.Logger
}

func NewCompletionExtractor(name string, client llm.LLMClient, opts Options, logger *zap.Logger) *CompletionExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.OnParseError == "" {
		opts.OnParseError = config.ParseSkip
	}
	return &CompletionExtractor{
		LLM:    client,
		Opts:   opts,
		Params: llm.DefaultParams(opts.CompletionSeparator),
		name:   name,
		logger: logger,
	}
}

func (e *CompletionExtractor) Name() string {
	return e.name
}

// Close releases the underlying client when it holds a connection (Gemini).
func (e *CompletionExtractor) Close() error {
	if c, ok := e.LLM.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (e *CompletionExtractor) Prompt(rec model.Record) string {
	return rec.Text + e.Opts.PromptSeparator
}

// Extract fails as a whole if any request or (under the abort policy) any line fails.
func (e *CompletionExtractor) Extract(ctx context.Context, batch model.Batch) ([]model.FormattedResult, error) {
	completions := make([]string, len(batch.Records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.Opts.Concurrency)
	for i, rec := range batch.Records {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, err := e.LLM.Complete(gctx, e.Prompt(rec), e.Params)
			if err != nil {
				return &common.BackendError{Backend: e.name, RecordID: rec.RecordID, Cause: err}
			}
			completions[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	results := make([]model.FormattedResult, 0, len(batch.Records))
	for i, rec := range batch.Records {
		res, err := ParseCompletion(rec.RecordID, completions[i], e.Opts.RecordIDField, e.Opts.OnParseError, e.logger)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

// ParseCompletion reads completion text line by line. A line with a colon is split on
// the first colon into a trimmed key and a literal value; lines without a colon or
// with an empty key are ignored under either policy. A line whose value cannot be
// parsed is skipped with a warning, or aborts with a ParseError under the abort policy. A key equal to idField never overrides the
// record id.
func ParseCompletion(recordID int, completion, idField string, policy config.ParsePolicy, logger *zap.Logger) (model.FormattedResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	result := model.NewFormattedResult(idField, recordID)

	for _, line := range strings.Split(completion, "\n") {
		line = strings.TrimRight(line, "\r")
		key, raw, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			logger.Warn("Skipping completion line without key",
				zap.Int("record_id", recordID),
				zap.String("line", line))
			continue
		}
		if key == idField {
			logger.Debug("Ignoring record id key in completion", zap.Int("record_id", recordID))
			continue
		}

		value, err := common.ParseLiteral(raw)
		if err != nil {
			if policy == config.ParseAbort {
				return model.FormattedResult{}, &common.ParseError{RecordID: recordID, Line: line, Cause: err}
			}
			logger.Warn("Skipping unparsable completion line",
				zap.Int("record_id", recordID),
				zap.String("line", line),
				zap.Error(err))
			continue
		}
		result.Set(key, value)
	}

	return result, nil
}

// LocalExtractor is the in-process NER pipeline variant (model type SPACY), loaded from
// ModelPath. Its result contract matches CompletionExtractor: per record, the record id
// field plus one key per entity label whose value is the list of span texts carrying
// that label, in document order, built from model.EntitySpan offsets. Running the
// pipeline and formatting spans is not implemented, so Extract always fails.
type LocalExtractor struct {
	ModelPath     string
	RecordIDField string
}

func NewLocalExtractor(modelPath, idField string) *LocalExtractor {
	return &LocalExtractor{ModelPath: modelPath, RecordIDField: idField}
}

func (e *LocalExtractor) Name() string {
	return "spacy"
}

func (e *LocalExtractor) Extract(ctx context.Context, batch model.Batch) ([]model.FormattedResult, error) {
	if len(batch.Records) == 0 {
		return nil, nil
	}
	return nil, &common.BackendError{
		Backend:  e.Name(),
		RecordID: batch.Records[0].RecordID,
		Cause:    common.ErrLocalBackendNotImplemented,
	}
}

// NewBackend picks the backend variant for the configured model type.
func NewBackend(ctx context.Context, cfg config.ModelConfig, logger *zap.Logger) (Backend, error) {
	if cfg.Type == config.ModelSpacy {
		return NewLocalExtractor(cfg.URI, cfg.RecordIDField), nil
	}
	client, err := llm.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewCompletionExtractor(strings.ToLower(string(cfg.Type)), client, OptionsFromConfig(cfg), logger), nil
}
