package core

import (
	"context"
	"fmt"

	"github.com/agenthands/nerbatch/internal/core/model"
)

// MockBackend echoes each record text as a TEXT field and fails the batches listed in FailBatches.
type MockBackend struct {
	FailBatches map[int]error
	Calls       []int
}

func (m *MockBackend) Name() string {
	return "mock"
}

func (m *MockBackend) Extract(ctx context.Context, batch model.Batch) ([]model.FormattedResult, error) {
	m.Calls = append(m.Calls, batch.Index)
	if err, ok := m.FailBatches[batch.Index]; ok {
		return nil, err
	}
	out := make([]model.FormattedResult, 0, len(batch.Records))
	for _, r := range batch.Records {
		res := model.NewFormattedResult("REC_ID", r.RecordID)
		res.Set("TEXT", r.Text)
		out = append(out, res)
	}
	return out, nil
}

func records(n int) []model.Record {
	recs := make([]model.Record, n)
	for i := range recs {
		recs[i] = model.Record{RecordID: i + 1, Text: fmt.Sprintf("doc %d", i+1)}
	}
	return recs
}
