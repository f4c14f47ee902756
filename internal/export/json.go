package export

import (
	"encoding/json"
	"io"

	"github.com/agenthands/nerbatch/internal/core/model"
)

// WriteJSON writes results as a single indented JSON array, replacing any existing file.
func WriteJSON(path string, results []model.FormattedResult) error {
	if results == nil {
		results = []model.FormattedResult{}
	}
	return writeAtomic(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	})
}
