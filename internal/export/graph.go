package export

import (
	"context"

	"github.com/agenthands/nerbatch/internal/core/common"
	"github.com/agenthands/nerbatch/internal/core/model"
	"github.com/agenthands/nerbatch/internal/driver"
)

// GraphSink upserts extracted entities as (:Record)-[:HAS_ENTITY]->(:Entity) into a graph database.
type GraphSink struct {
	Driver  driver.GraphDriver
	IDField string
}

func NewGraphSink(d driver.GraphDriver, idField string) *GraphSink {
	return &GraphSink{Driver: d, IDField: idField}
}

func (s *GraphSink) Write(ctx context.Context, results []model.FormattedResult) error {
	t, err := Melt(results, s.IDField, s.IDField)
	if err != nil {
		return err
	}
	if len(t.Rows) == 0 {
		return nil
	}

	rows := make([]map[string]interface{}, 0, len(t.Rows))
	for _, row := range t.Rows {
		id, err := common.AsInt(row[0])
		if err != nil {
			return err
		}
		rows = append(rows, map[string]interface{}{
			"record_id": int64(id),
			"name":      row[1],
			"value":     CellText(row[2]),
		})
	}

	if err := s.Driver.BuildIndices(ctx); err != nil {
		return err
	}
	_, err = s.Driver.ExecuteQuery(ctx, driver.UpsertEntitiesQuery, map[string]interface{}{"rows": rows})
	return err
}
