package common

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordID(t *testing.T) {
	tests := []struct {
		name string
		want int
	}{
		{"record_1.txt", 1},
		{"record_042.txt", 42},
		{"/data/in/record_17.txt", 17},
		{"scan-7-page-2.txt", 7},
		{"99.txt", 99},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := RecordID(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestRecordIDIgnoresExtensionDigits(t *testing.T) {
	_, err := RecordID("record.mp3")
	assert.True(t, errors.Is(err, ErrNoRecordID))
}

func TestParseLiteral(t *testing.T) {
	tests := []struct {
		raw  string
		want any
	}{
		{"['New York']", []any{"New York"}},
		{`["Jane", "John"]`, []any{"Jane", "John"}},
		{"2024", 2024},
		{"3.5", 3.5},
		{"'Jane Doe'", "Jane Doe"},
		{`"Jane Doe"`, "Jane Doe"},
		{"  42  ", 42},
		{"None", nil},
		{"[]", []any{}},
		{"'02110'", "02110"},
		{"'2024-01-05'", "2024-01-05"},
		{"-7", -7},
		{"1e3", 1000.0},
		{"0", 0},
		{"True", true},
		{"null", nil},
		{"Jane Doe", "Jane Doe"},
		{"{'city': 'Boston', 'zip': '02110'}", map[string]any{"city": "Boston", "zip": "02110"}},
		{"[1, 'two', [3.5]]", []any{1, "two", []any{3.5}}},
		{"['a', None]", []any{"a", nil}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseLiteral(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLiteralErrors(t *testing.T) {
	_, err := ParseLiteral("   ")
	assert.ErrorIs(t, err, ErrEmptyValue)

	_, err = ParseLiteral("['unterminated")
	assert.Error(t, err)

	_, err = ParseLiteral("[1, 2")
	assert.Error(t, err)
}

func TestParseLiteralRejectsImplicitTypes(t *testing.T) {
	for _, raw := range []string{
		"02110",
		"[02110]",
		"2024-01-05",
		"2024-01-05T10:30:00Z",
		"0x1F",
		".nan",
		".inf",
		"-.inf",
		"1e400",
		"99999999999999999999",
		"{1: a}",
		"{'a': 1, 2: b}",
		"Boston: MA",
		"- a",
		"&x [1]",
	} {
		t.Run(raw, func(t *testing.T) {
			v, err := ParseLiteral(raw)
			require.Error(t, err, "got %T %v", v, v)
			assert.ErrorIs(t, err, ErrUnsupportedLiteral)
		})
	}
}

func TestParseLiteralValuesEncodeAsJSON(t *testing.T) {
	for _, raw := range []string{"[1, 'two']", "{'a': [1.5, None]}", "True", "'x'", "-3.25"} {
		v, err := ParseLiteral(raw)
		require.NoError(t, err, raw)
		_, err = json.Marshal(v)
		assert.NoError(t, err, raw)
	}
}

func TestIsEmptyValue(t *testing.T) {
	assert.True(t, IsEmptyValue(nil))
	assert.True(t, IsEmptyValue(""))
	assert.True(t, IsEmptyValue("  "))
	assert.True(t, IsEmptyValue([]any{}))
	assert.False(t, IsEmptyValue(0))
	assert.False(t, IsEmptyValue("x"))
	assert.False(t, IsEmptyValue([]any{"x"}))
}

func TestAsInt(t *testing.T) {
	for _, v := range []any{7, int64(7), float64(7), "7", json.Number("7")} {
		n, err := AsInt(v)
		require.NoError(t, err)
		assert.Equal(t, 7, n)
	}
	_, err := AsInt([]any{})
	assert.Error(t, err)
}

func TestTypedErrorsUnwrap(t *testing.T) {
	cause := errors.New("boom")
	assert.ErrorIs(t, &DiscoveryError{Dir: "in", Cause: cause}, cause)
	assert.ErrorIs(t, &ParseError{RecordID: 1, Line: "A: [", Cause: cause}, cause)
	assert.ErrorIs(t, &BackendError{Backend: "gpt", RecordID: 1, Cause: cause}, cause)
	assert.ErrorIs(t, &ExportError{Target: "json", Path: "out.json", Cause: cause}, cause)
	assert.Contains(t, (&ExportError{Target: "graph", Cause: cause}).Error(), "graph export failed")
}
