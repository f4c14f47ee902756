package model

// Record is one input document. RecordID comes from the first digit run in its filename.
type Record struct {
	RecordID int    `json:"record_id"`
	Name     string `json:"name"`
	Text     string `json:"text"`
}

// Batch is a contiguous, order-preserving slice of records sent to a backend together.
type Batch struct {
	Index   int
	Records []Record
}

func (b Batch) IDs() []int {
	ids := make([]int, len(b.Records))
	for i, r := range b.Records {
		ids[i] = r.RecordID
	}
	return ids
}

// EntitySpan is a labelled character range (rune offsets, end exclusive) within a record text.
type EntitySpan struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Label string `json:"label"`
}
