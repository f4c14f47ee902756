package core

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/agenthands/nerbatch/internal/config"
	"github.com/agenthands/nerbatch/internal/core/cleaning"
	"github.com/agenthands/nerbatch/internal/core/common"
	"github.com/agenthands/nerbatch/internal/core/extraction"
	"github.com/agenthands/nerbatch/internal/export"
)

func TestMakeBatches(t *testing.T) {
	batches, err := MakeBatches(records(7), 3)
	require.NoError(t, err)
	require.Len(t, batches, 3)

	var sizes, ids []int
	for i, b := range batches {
		assert.Equal(t, i, b.Index)
		sizes = append(sizes, len(b.Records))
		ids = append(ids, b.IDs()...)
	}
	assert.Equal(t, []int{3, 3, 1}, sizes)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7}, ids)
}

func TestMakeBatchesEdgeCases(t *testing.T) {
	batches, err := MakeBatches(nil, 3)
	require.NoError(t, err)
	assert.Empty(t, batches)

	batches, err = MakeBatches(records(3), 3)
	require.NoError(t, err)
	assert.Len(t, batches, 1)

	_, err = MakeBatches(records(3), 0)
	assert.Error(t, err)
}

func TestProcessIsolatesFailedBatch(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	backend := &MockBackend{FailBatches: map[int]error{1: errors.New("api unavailable")}}
	p := NewPipeline(backend, nil, nil, 3, zap.New(core))

	report, err := p.Process(context.Background(), records(7))
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1, 2}, backend.Calls)
	require.Len(t, report.Results, 4)
	var ids []int
	for _, r := range report.Results {
		id, _ := r.Get("REC_ID")
		ids = append(ids, id.(int))
	}
	assert.Equal(t, []int{1, 2, 3, 7}, ids)

	require.Len(t, report.Failures, 1)
	assert.Equal(t, 1, report.Failures[0].Index)
	assert.Equal(t, []int{4, 5, 6}, report.Failures[0].RecordID)

	failed := logs.FilterMessage("Batch failed, skipping").All()
	require.Len(t, failed, 1)
	assert.EqualValues(t, 1, failed[0].ContextMap()["batch"])
	assert.Equal(t, "api unavailable", failed[0].ContextMap()["error"])

	assert.Len(t, p.Results(), 4)
}

func TestProcessAllBatchesFail(t *testing.T) {
	backend := &MockBackend{FailBatches: map[int]error{0: errors.New("x"), 1: errors.New("y")}}
	p := NewPipeline(backend, nil, nil, 2, nil)

	report, err := p.Process(context.Background(), records(4))
	require.NoError(t, err)
	assert.Empty(t, report.Results)
	assert.Len(t, report.Failures, 2)
}

func TestProcessStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	backend := &MockBackend{}
	p := NewPipeline(backend, nil, nil, 2, nil)

	_, err := p.Process(ctx, records(4))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, backend.Calls)
}

func TestProcessCleansBeforeExtracting(t *testing.T) {
	backend := &MockBackend{}
	p := NewPipeline(backend, cleaning.NewCleaner(config.Defaults().Cleaning, nil), nil, 5, nil)

	report, err := p.Process(context.Background(), records(1)[:0])
	require.NoError(t, err)
	assert.Zero(t, report.Batches)

	in := records(1)
	in[0].Text = "seen 10/20/2024,\nok!"
	report, err = p.Process(context.Background(), in)
	require.NoError(t, err)
	text, _ := report.Results[0].Get("TEXT")
	assert.Equal(t, "seen 10 / 20 / 2024 ok", text)
}

func writeRecords(t *testing.T, dir string, texts map[string]string) {
	t.Helper()
	for name, text := range texts {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(text), 0o644))
	}
}

func TestRunEndToEnd(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writeRecords(t, in, map[string]string{
		"record_2.txt": "Met Bob in Boston",
		"record_1.txt": "Alice moved to New York in 2024",
		"record_3.txt": "nothing",
	})

	sep := "\n\n###\n\n"
	mockLLM := &extraction.MockLLMClient{
		Responses: map[string]string{
			"Alice moved to New York in 2024" + sep: "REP_CITY: ['New York']\nREP_YEAR: 2024",
			"Met Bob in Boston" + sep:               "PERSON: ['Bob']\nREP_CITY: ['Boston']",
		},
		Errs: map[string]error{"nothing" + sep: errors.New("timeout")},
	}
	opts := config.Defaults().Model
	backend := extraction.NewCompletionExtractor("gpt", mockLLM, extraction.OptionsFromConfig(opts), nil)
	exporter := export.NewExporter(export.Options{
		JSON:        true,
		JSONPath:    filepath.Join(out, "results.json"),
		Tabular:     true,
		TabularPath: filepath.Join(out, "results.csv"),
		Melt:        true,
		SortColumn:  "REC_ID",
		IDField:     "REC_ID",
	}, nil, nil)

	p := NewPipeline(backend, cleaning.NewCleaner(config.Defaults().Cleaning, nil), exporter, 2, nil)
	report, err := p.Run(context.Background(), in, ".txt")
	require.NoError(t, err)

	assert.Equal(t, 3, report.Records)
	assert.Equal(t, 2, report.Batches)
	require.Len(t, report.Results, 2)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, 1, report.Failures[0].Index)

	data, err := os.ReadFile(filepath.Join(out, "results.json"))
	require.NoError(t, err)
	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 2)
	assert.EqualValues(t, 1, decoded[0]["REC_ID"])
	assert.EqualValues(t, 2024, decoded[0]["REP_YEAR"])
	assert.Equal(t, []any{"Bob"}, decoded[1]["PERSON"])

	table, err := os.ReadFile(filepath.Join(out, "results.csv"))
	require.NoError(t, err)
	assert.Equal(t,
		"REC_ID,NAME,VALUE\n"+
			"1,REP_CITY,\"[\"\"New York\"\"]\"\n"+
			"1,REP_YEAR,2024\n"+
			"2,REP_CITY,\"[\"\"Boston\"\"]\"\n"+
			"2,PERSON,\"[\"\"Bob\"\"]\"\n",
		string(table))
}

func TestRunDiscoveryErrorIsFatal(t *testing.T) {
	backend := &MockBackend{}
	p := NewPipeline(backend, nil, nil, 2, nil)

	_, err := p.Run(context.Background(), filepath.Join(t.TempDir(), "missing"), ".txt")
	var derr *common.DiscoveryError
	assert.True(t, errors.As(err, &derr))
	assert.Empty(t, backend.Calls)
}

func TestRunExportErrorIsFatal(t *testing.T) {
	in := t.TempDir()
	writeRecords(t, in, map[string]string{"record_1.txt": "a"})
	exporter := export.NewExporter(export.Options{
		JSON:     true,
		JSONPath: filepath.Join(t.TempDir(), "missing", "results.json"),
		IDField:  "REC_ID",
	}, nil, nil)

	p := NewPipeline(&MockBackend{}, nil, exporter, 2, nil)
	report, err := p.Run(context.Background(), in, ".txt")

	var eerr *common.ExportError
	assert.True(t, errors.As(err, &eerr))
	require.NotNil(t, report)
	assert.Len(t, report.Results, 1)
}

func TestRunDropsUnsupportedValuesAndStillExports(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writeRecords(t, in, map[string]string{
		"record_1.txt": "first",
		"record_2.txt": "second",
	})

	sep := "\n\n###\n\n"
	mockLLM := &extraction.MockLLMClient{
		Responses: map[string]string{
			"first" + sep:  "CITY: 'Boston'\nZIP: 02110\nDATE: 2024-01-05\nZIP_TEXT: '02110'",
			"second" + sep: "CODES: {1: a}\nSCORE: .nan\nLIMIT: .inf\nSCORE_TEXT: 'n/a'",
		},
	}
	backend := extraction.NewCompletionExtractor("gpt", mockLLM, extraction.OptionsFromConfig(config.Defaults().Model), nil)
	jsonPath := filepath.Join(out, "results.json")
	exporter := export.NewExporter(export.Options{JSON: true, JSONPath: jsonPath, IDField: "REC_ID"}, nil, nil)

	p := NewPipeline(backend, cleaning.NewCleaner(config.Defaults().Cleaning, nil), exporter, 2, nil)
	report, err := p.Run(context.Background(), in, ".txt")
	require.NoError(t, err)
	assert.Empty(t, report.Failures)
	require.Len(t, report.Results, 2)
	assert.Equal(t, []string{"REC_ID", "CITY", "ZIP_TEXT"}, report.Results[0].Keys())
	assert.Equal(t, []string{"REC_ID", "SCORE_TEXT"}, report.Results[1].Keys())

	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "02110", decoded[0]["ZIP_TEXT"])
	assert.NotContains(t, decoded[0], "ZIP")
	assert.NotContains(t, decoded[0], "DATE")
	assert.NotContains(t, decoded[1], "CODES")
}
