// Package annotations reads spaCy-style NER annotation files for display.
package annotations

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/agenthands/nerbatch/internal/core/common"
	"github.com/agenthands/nerbatch/internal/core/model"
)

// Document is one annotated paragraph.
type Document struct {
	Title    string             `json:"title"`
	RecordID int                `json:"rec_num"`
	Text     string             `json:"text"`
	Labels   []string           `json:"labels"`
	Ents     []model.EntitySpan `json:"ents"`
}

// annotationFile is the export format of common NER annotators:
//
//	{"classes": ["CITY"], "annotations": [["text", {"entities": [[0, 4, "CITY"]]}]]}
type annotationFile struct {
	Classes     []string          `json:"classes"`
	Annotations []json.RawMessage `json:"annotations"`
}

type entityList struct {
	Entities [][]json.RawMessage `json:"entities"`
}

// Load reads every .json file in dir and returns one Document per paragraph,
// sorted by the record id found in the file name.
func Load(dir string) ([]Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &common.DiscoveryError{Dir: dir, Cause: err}
	}

	var docs []Document
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		fileDocs, err := loadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", entry.Name(), err)
		}
		docs = append(docs, fileDocs...)
	}

	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].RecordID < docs[j].RecordID
	})
	return docs, nil
}

func loadFile(path string) ([]Document, error) {
	name := filepath.Base(path)
	id, err := common.RecordID(name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file annotationFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}

	var docs []Document
	for _, raw := range file.Annotations {
		var pair []json.RawMessage
		if err := json.Unmarshal(raw, &pair); err != nil {
			return nil, fmt.Errorf("annotation: %w", err)
		}
		// Some annotators emit null for skipped paragraphs.
		if len(pair) < 2 {
			continue
		}
		var text string
		if err := json.Unmarshal(pair[0], &text); err != nil {
			return nil, fmt.Errorf("annotation text: %w", err)
		}
		var ents entityList
		if err := json.Unmarshal(pair[1], &ents); err != nil {
			return nil, fmt.Errorf("annotation entities: %w", err)
		}

		doc := Document{Title: name, RecordID: id, Text: text, Labels: file.Classes}
		for _, e := range ents.Entities {
			span, err := parseSpan(e)
			if err != nil {
				return nil, err
			}
			doc.Ents = append(doc.Ents, span)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func parseSpan(e []json.RawMessage) (model.EntitySpan, error) {
	var span model.EntitySpan
	if len(e) != 3 {
		return span, fmt.Errorf("entity must be [start, end, label], got %d items", len(e))
	}
	if err := json.Unmarshal(e[0], &span.Start); err != nil {
		return span, fmt.Errorf("entity start: %w", err)
	}
	if err := json.Unmarshal(e[1], &span.End); err != nil {
		return span, fmt.Errorf("entity end: %w", err)
	}
	if err := json.Unmarshal(e[2], &span.Label); err != nil {
		return span, fmt.Errorf("entity label: %w", err)
	}
	return span, nil
}
