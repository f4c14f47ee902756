// Package ingest discovers record files on disk.
package ingest

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/agenthands/nerbatch/internal/core/common"
	"github.com/agenthands/nerbatch/internal/core/model"
)

// ReadRecords loads every regular file in dir (non-recursive) whose name ends with ext,
// using the first digit run of the file stem as the record id. Records are sorted by id,
// then by file name.
func ReadRecords(dir, ext string) ([]model.Record, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &common.DiscoveryError{Dir: dir, Cause: err}
	}

	var records []model.Record
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !strings.EqualFold(filepath.Ext(entry.Name()), ext) {
			continue
		}
		id, err := common.RecordID(entry.Name())
		if err != nil {
			return nil, &common.DiscoveryError{Dir: dir, Cause: err}
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, &common.DiscoveryError{Dir: dir, Cause: err}
		}
		records = append(records, model.Record{RecordID: id, Name: entry.Name(), Text: string(data)})
	}

	sort.SliceStable(records, func(i, j int) bool {
		if records[i].RecordID != records[j].RecordID {
			return records[i].RecordID < records[j].RecordID
		}
		return records[i].Name < records[j].Name
	})
	return records, nil
}
