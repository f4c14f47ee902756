// Package cleaning normalizes raw record text before it is sent to a model.
package cleaning

import (
	"html"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/agenthands/nerbatch/internal/config"
	"github.com/agenthands/nerbatch/internal/core/model"
)

// Filter is a single text transformation.
type Filter struct {
	Name  string
	Apply func(string) string
}

// Cleaner applies the enabled filters in a fixed order:
// separate_slashes, remove_linebreaks, remove_non_alphanum, ensure_encoding.
type Cleaner struct {
	filters []Filter
	logger  *zap.Logger
}

func NewCleaner(opts config.CleaningConfig, logger *zap.Logger) *Cleaner {
	if logger == nil {
		logger = zap.NewNop()
	}
	var filters []Filter
	if opts.SeparateSlashes {
		filters = append(filters, Filter{Name: "separate_slashes", Apply: SeparateSlashes})
	}
	if opts.RemoveLinebreaks {
		filters = append(filters, Filter{Name: "remove_linebreaks", Apply: RemoveLinebreaks})
	}
	if opts.RemoveNonAlphanum {
		filters = append(filters, Filter{Name: "remove_non_alphanum", Apply: RemoveNonAlphanum})
	}
	if opts.EnsureEncoding {
		filters = append(filters, Filter{Name: "ensure_encoding", Apply: EnsureEncoding})
	}
	return &Cleaner{filters: filters, logger: logger}
}

// Filters returns the names of the enabled filters in application order.
func (c *Cleaner) Filters() []string {
	names := make([]string, len(c.filters))
	for i, f := range c.filters {
		names[i] = f.Name
	}
	return names
}

func (c *Cleaner) CleanText(text string) string {
	for _, f := range c.filters {
		text = f.Apply(text)
	}
	return text
}

// Clean returns new records with the same ids and order and cleaned text.
func (c *Cleaner) Clean(records []model.Record) []model.Record {
	out := make([]model.Record, len(records))
	for i, r := range records {
		out[i] = model.Record{RecordID: r.RecordID, Name: r.Name, Text: c.CleanText(r.Text)}
	}
	c.logger.Debug("Cleaned records",
		zap.Int("records", len(out)),
		zap.Strings("filters", c.Filters()))
	return out
}

// SeparateSlashes pads every '/' with a space on each side that is not already whitespace,
// so "10/20/2024" becomes "10 / 20 / 2024" and "a / b" is left alone.
func SeparateSlashes(text string) string {
	if !strings.ContainsRune(text, '/') {
		return text
	}
	runes := []rune(text)
	var b strings.Builder
	b.Grow(len(text) + 8)
	for i, r := range runes {
		if r != '/' {
			b.WriteRune(r)
			continue
		}
		if i > 0 && !unicode.IsSpace(runes[i-1]) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			b.WriteByte(' ')
		}
	}
	return b.String()
}

func isLineBoundary(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}

// RemoveLinebreaks splits text into lines and joins them with a single space.
// Empty lines are kept, so a blank line leaves two spaces. A trailing line break
// does not produce a trailing space.
func RemoveLinebreaks(text string) string {
	var lines []string
	var cur strings.Builder
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if !isLineBoundary(r) {
			cur.WriteRune(r)
			continue
		}
		if r == '\r' && i+1 < len(runes) && runes[i+1] == '\n' {
			i++
		}
		lines = append(lines, cur.String())
		cur.Reset()
	}
	if cur.Len() > 0 {
		lines = append(lines, cur.String())
	}
	return strings.Join(lines, " ")
}

// RemoveNonAlphanum drops everything except letters, digits, whitespace, '.' and '/',
// then collapses whitespace runs into a single space.
func RemoveNonAlphanum(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	inSpace := false
	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
			if !inSpace {
				b.WriteByte(' ')
				inSpace = true
			}
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '.', r == '/':
			b.WriteRune(r)
			inSpace = false
		}
	}
	return b.String()
}

// EnsureEncoding decodes HTML character entities such as &amp; and &#39;.
func EnsureEncoding(text string) string {
	return html.UnescapeString(text)
}
