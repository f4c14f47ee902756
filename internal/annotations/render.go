package annotations

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/agenthands/nerbatch/internal/core/model"
)

// Colors assigns a random light rgb() color to each label of the first document.
func Colors(docs []Document, rnd *rand.Rand) map[string]string {
	colors := map[string]string{}
	if len(docs) == 0 {
		return colors
	}
	for _, label := range docs[0].Labels {
		colors[label] = fmt.Sprintf("rgb(%03d,%03d,%03d)", channel(rnd), channel(rnd), channel(rnd))
	}
	return colors
}

func channel(rnd *rand.Rand) int {
	return 125 + rnd.Intn(131)
}

// Segment is a run of text, labelled when it is an entity.
type Segment struct {
	Text  string
	Label string
}

// Segments splits the document text at entity boundaries. Offsets are in runes.
// Spans that overlap an earlier span or fall outside the text are ignored.
func Segments(doc Document) []Segment {
	runes := []rune(doc.Text)
	ents := make([]model.EntitySpan, len(doc.Ents))
	copy(ents, doc.Ents)
	sort.SliceStable(ents, func(i, j int) bool { return ents[i].Start < ents[j].Start })

	var segs []Segment
	pos := 0
	for _, e := range ents {
		if e.Start < pos || e.End <= e.Start || e.End > len(runes) {
			continue
		}
		if e.Start > pos {
			segs = append(segs, Segment{Text: string(runes[pos:e.Start])})
		}
		segs = append(segs, Segment{Text: string(runes[e.Start:e.End]), Label: e.Label})
		pos = e.End
	}
	if pos < len(runes) {
		segs = append(segs, Segment{Text: string(runes[pos:])})
	}
	return segs
}
