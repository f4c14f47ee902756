package common

import (
	"errors"
	"fmt"
)

var (
	ErrNoRecordID                 = errors.New("no record id in file name")
	ErrEmptyValue                 = errors.New("empty value")
	ErrUnsupportedLiteral         = errors.New("unsupported literal")
	ErrLocalBackendNotImplemented = errors.New("local NER backend output formatting is not implemented")
)

// DiscoveryError is returned when input documents cannot be listed or read.
type DiscoveryError struct {
	Dir   string
	Cause error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("discover records in %s: %v", e.Dir, e.Cause)
}

func (e *DiscoveryError) Unwrap() error {
	return e.Cause
}

// ParseError is a completion line whose value could not be parsed.
type ParseError struct {
	RecordID int
	Line     string
	Cause    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error for record %d in line %q: %v", e.RecordID, e.Line, e.Cause)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// BackendError wraps a failure from the model backend for a single record.
type BackendError struct {
	Backend  string
	RecordID int
	Cause    error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s backend failed on record %d: %v", e.Backend, e.RecordID, e.Cause)
}

func (e *BackendError) Unwrap() error {
	return e.Cause
}

type ExportError struct {
	Target string
	Path   string
	Cause  error
}

func (e *ExportError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s export to %s failed: %v", e.Target, e.Path, e.Cause)
	}
	return fmt.Sprintf("%s export failed: %v", e.Target, e.Cause)
}

func (e *ExportError) Unwrap() error {
	return e.Cause
}
