package export

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/agenthands/nerbatch/internal/config"
	"github.com/agenthands/nerbatch/internal/core/common"
	"github.com/agenthands/nerbatch/internal/core/model"
)

// Table is a header plus rows of raw values; nil means an empty cell.
type Table struct {
	Columns []string
	Rows    [][]any
}

// unionKeys returns idField followed by every other key across results, in first-seen order.
func unionKeys(results []model.FormattedResult, idField string) []string {
	keys := []string{idField}
	seen := map[string]bool{idField: true}
	for _, r := range results {
		for _, k := range r.Keys() {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	return keys
}

// Wide lays results out one row per result, one column per key.
func Wide(results []model.FormattedResult, idField string) Table {
	cols := unionKeys(results, idField)
	t := Table{Columns: cols, Rows: make([][]any, 0, len(results))}
	for _, r := range results {
		row := make([]any, len(cols))
		for i, c := range cols {
			row[i], _ = r.Get(c)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// Melt reshapes results into (idField, NAME, VALUE) rows over the union of all keys,
// drops rows without a value and sorts ascending by sortColumn. The sort is stable, so
// ties keep result order and key order.
func Melt(results []model.FormattedResult, idField, sortColumn string) (Table, error) {
	if sortColumn == "" {
		sortColumn = idField
	}
	sortIdx := -1
	for i, c := range []string{idField, config.ColumnName, config.ColumnValue} {
		if c == sortColumn {
			sortIdx = i
		}
	}
	if sortIdx < 0 {
		return Table{}, fmt.Errorf("sort column %q is not one of %s, %s, %s", sortColumn, idField, config.ColumnName, config.ColumnValue)
	}

	keys := unionKeys(results, idField)[1:]
	t := Table{Columns: []string{idField, config.ColumnName, config.ColumnValue}}
	for _, r := range results {
		id, _ := r.Get(idField)
		for _, k := range keys {
			v, ok := r.Get(k)
			if !ok || common.IsEmptyValue(v) {
				continue
			}
			t.Rows = append(t.Rows, []any{id, k, v})
		}
	}

	sort.SliceStable(t.Rows, func(i, j int) bool {
		return less(t.Rows[i][sortIdx], t.Rows[j][sortIdx])
	})
	return t, nil
}

// less compares numerically when both values are numbers, otherwise as cell text.
func less(a, b any) bool {
	af, aok := number(a)
	bf, bok := number(b)
	if aok && bok {
		return af < bf
	}
	return CellText(a) < CellText(b)
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// CellText renders a value for text-only sinks: lists and maps become compact JSON.
func CellText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

// cellValue keeps scalars typed for spreadsheets and flattens the rest to text.
func cellValue(v any) any {
	switch v.(type) {
	case nil, string, int, int64, float64, bool:
		return v
	}
	return CellText(v)
}
