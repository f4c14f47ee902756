package common

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

var digitRun = regexp.MustCompile(`\d+`)

// RecordID extracts the first run of digits in the file name stem, so
// "record_42.txt" and "scan-42-final.txt" both map to 42.
func RecordID(name string) (int, error) {
	base := filepath.Base(name)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	m := digitRun.FindString(stem)
	if m == "" {
		return 0, fmt.Errorf("%w: %q", ErrNoRecordID, name)
	}
	id, err := strconv.Atoi(m)
	if err != nil {
		return 0, fmt.Errorf("record id in %q: %w", name, err)
	}
	return id, nil
}

var (
	decimalInt   = regexp.MustCompile(`^[-+]?(0|[1-9][0-9]*)$`)
	decimalFloat = regexp.MustCompile(`^[-+]?([0-9]+\.[0-9]*|\.[0-9]+)([eE][-+]?[0-9]+)?$|^[-+]?[0-9]+[eE][-+]?[0-9]+$`)
)

// ParseLiteral decodes the value half of a "KEY: VALUE" completion line.
// VALUE is read as a single YAML flow node, which accepts JSON as well as the
// single-quoted style the model was trained on (['New York'], 'text', 2024, 1.5).
// Only strings, decimal numbers, booleans, null and flow lists or string-keyed
// maps of those are accepted. Leading-zero integers, dates, hex, NaN and Inf,
// anchors and block collections fail with ErrUnsupportedLiteral.
// The bare word None is mapped to nil.
func ParseLiteral(raw string) (any, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, ErrEmptyValue
	}
	if s == "None" {
		return nil, nil
	}

	var node yaml.Node
	if err := yaml.Unmarshal([]byte(s), &node); err != nil {
		return nil, fmt.Errorf("invalid literal %q: %w", s, err)
	}
	if node.Kind != yaml.DocumentNode || len(node.Content) != 1 {
		return nil, fmt.Errorf("invalid literal %q: expected a single value", s)
	}
	value, err := literal(node.Content[0])
	if err != nil {
		return nil, fmt.Errorf("invalid literal %q: %w", s, err)
	}
	return value, nil
}

func literal(n *yaml.Node) (any, error) {
	if n.Anchor != "" {
		return nil, fmt.Errorf("%w: anchor &%s", ErrUnsupportedLiteral, n.Anchor)
	}
	switch n.Kind {
	case yaml.ScalarNode:
		return scalar(n)
	case yaml.SequenceNode:
		if n.Style&yaml.FlowStyle == 0 {
			return nil, fmt.Errorf("%w: block list", ErrUnsupportedLiteral)
		}
		list := make([]any, 0, len(n.Content))
		for _, item := range n.Content {
			v, err := literal(item)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		return list, nil
	case yaml.MappingNode:
		if n.Style&yaml.FlowStyle == 0 {
			return nil, fmt.Errorf("%w: unquoted ': ' in value", ErrUnsupportedLiteral)
		}
		m := make(map[string]any, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, err := literal(n.Content[i])
			if err != nil {
				return nil, err
			}
			key, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("%w: map key %q is not a string", ErrUnsupportedLiteral, n.Content[i].Value)
			}
			v, err := literal(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			m[key] = v
		}
		return m, nil
	}
	return nil, fmt.Errorf("%w: node kind %d", ErrUnsupportedLiteral, n.Kind)
}

// scalar resolves plain scalars by decimal syntax rather than YAML's implicit
// typing, so "02110" is never read as octal and "2024-01-05" never as a date.
func scalar(n *yaml.Node) (any, error) {
	if n.Style&(yaml.SingleQuotedStyle|yaml.DoubleQuotedStyle) != 0 {
		return n.Value, nil
	}

	v := n.Value
	switch {
	case v == "None":
		return nil, nil
	case decimalInt.MatchString(v):
		i, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%w: integer %s out of range", ErrUnsupportedLiteral, v)
		}
		return i, nil
	case decimalFloat.MatchString(v):
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsInf(f, 0) {
			return nil, fmt.Errorf("%w: float %s out of range", ErrUnsupportedLiteral, v)
		}
		return f, nil
	}

	switch n.ShortTag() {
	case "!!str":
		return v, nil
	case "!!null":
		return nil, nil
	case "!!bool":
		return strings.EqualFold(v, "true"), nil
	}
	return nil, fmt.Errorf("%w: %s %s", ErrUnsupportedLiteral, n.ShortTag(), v)
}

// IsEmptyValue reports whether a field value carries nothing worth exporting.
func IsEmptyValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	}
	return false
}

var errNotNumber = errors.New("not a number")

// AsInt converts the numeric value kinds produced by decoding back to an int.
func AsInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	case string:
		return strconv.Atoi(n)
	case interface{ Int64() (int64, error) }:
		i, err := n.Int64()
		return int(i), err
	}
	return 0, errNotNumber
}
