package model

import (
	"bytes"
	"encoding/json"
)

type Field struct {
	Key   string
	Value any
}

// FormattedResult is the flat field mapping extracted for one record.
// Field order is kept: the record id field first, then keys in the order the model produced them.
type FormattedResult struct {
	Fields []Field
}

func NewFormattedResult(idField string, recordID int) FormattedResult {
	return FormattedResult{Fields: []Field{{Key: idField, Value: recordID}}}
}

// Set replaces the value of an existing key or appends a new one.
func (r *FormattedResult) Set(key string, value any) {
	for i := range r.Fields {
		if r.Fields[i].Key == key {
			r.Fields[i].Value = value
			return
		}
	}
	r.Fields = append(r.Fields, Field{Key: key, Value: value})
}

func (r FormattedResult) Get(key string) (any, bool) {
	for _, f := range r.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

func (r FormattedResult) Keys() []string {
	keys := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		keys[i] = f.Key
	}
	return keys
}

func (r FormattedResult) Len() int {
	return len(r.Fields)
}

func (r FormattedResult) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.Fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON keeps the key order of the source object.
func (r *FormattedResult) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if _, err := dec.Token(); err != nil {
		return err
	}
	r.Fields = r.Fields[:0]
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		var value any
		if err := dec.Decode(&value); err != nil {
			return err
		}
		r.Fields = append(r.Fields, Field{Key: key, Value: value})
	}
	_, err := dec.Token()
	return err
}
