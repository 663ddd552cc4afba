// Package events writes scan outcomes as newline-delimited JSON records.
package events

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"
)

// Event types.
const (
	TypeScanResult = "scan-result"
	TypeScanError  = "scan-error"
)

// Event is a single NDJSON record.
type Event struct {
	Type      string         `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Message   string         `json:"message,omitempty"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// ScanResult describes a completed scan. Message carries the rendered report.
func ScanResult(input, report string, defects, invalid int) Event {
	return Event{
		Type:    TypeScanResult,
		Message: report,
		Fields: map[string]any{
			"input":   input,
			"defects": defects,
			"invalid": invalid,
		},
	}
}

// ScanError describes an input that could not be scanned.
func ScanError(input string, err error) Event {
	return Event{
		Type:    TypeScanError,
		Message: err.Error(),
		Fields:  map[string]any{"input": input},
	}
}

// Emitter writes events to an io.Writer, one JSON object per line. It is
// safe for concurrent use.
type Emitter struct {
	writer io.Writer
	mu     sync.Mutex
}

// NewEmitter returns an emitter writing to w.
func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{writer: w}
}

// Emit stamps evt with the current time when it has none and writes it.
func (e *Emitter) Emit(evt Event) error {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", evt.Type, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.writer.Write(append(payload, '\n')); err != nil {
		return fmt.Errorf("write %s event: %w", evt.Type, err)
	}

	return nil
}
