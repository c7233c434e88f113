package tracing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

var errExporterClosed = errors.New("trace file is closed")

// FileExporter appends one JSON line per span to a file. Key press spans
// are flattened into SpanRecord fields so a session can be replayed with
// jq, for example:
//
//	jq -r 'select(.session == "s-1") | .key' spans.jsonl
type FileExporter struct {
	mu  sync.Mutex
	out *os.File
}

var _ sdktrace.SpanExporter = (*FileExporter)(nil)

// NewFileExporter appends to path, creating the file and its directory.
func NewFileExporter(path string) (*FileExporter, error) {
	path = filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("creating trace directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600) // #nosec G304 -- user-configured trace path
	if err != nil {
		return nil, fmt.Errorf("opening trace file: %w", err)
	}
	return &FileExporter{out: f}, nil
}

// ExportSpans writes the batch with a single write, so lines from one
// batch are never interleaved with a concurrent one.
func (e *FileExporter) ExportSpans(_ context.Context, spans []sdktrace.ReadOnlySpan) error {
	if len(spans) == 0 {
		return nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, s := range spans {
		if err := enc.Encode(NewSpanRecord(s)); err != nil {
			return fmt.Errorf("encoding span %s: %w", s.Name(), err)
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.out == nil {
		return errExporterClosed
	}
	_, err := e.out.Write(buf.Bytes())
	return err
}

// Shutdown closes the file. It is safe to call more than once.
func (e *FileExporter) Shutdown(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.out == nil {
		return nil
	}
	err := e.out.Close()
	e.out = nil
	return err
}

// SpanRecord is one line of the trace file.
type SpanRecord struct {
	Name    string `json:"name"`
	Session string `json:"session,omitempty"`

	Key      string      `json:"key,omitempty"`
	Sequence string      `json:"sequence,omitempty"`
	Match    string      `json:"match,omitempty"`
	Outcome  string      `json:"outcome,omitempty"`
	Command  string      `json:"command,omitempty"`
	Mode     *ModeChange `json:"mode,omitempty"`
	Pattern  string      `json:"pattern,omitempty"`

	// Error is the status description of a failed span.
	Error string `json:"error,omitempty"`

	Start      time.Time `json:"start"`
	DurationUs int64     `json:"duration_us"`

	TraceID  string `json:"trace_id"`
	SpanID   string `json:"span_id"`
	ParentID string `json:"parent_id,omitempty"`

	// Attrs holds the attributes not promoted to a field above.
	Attrs  map[string]any `json:"attrs,omitempty"`
	Events []EventRecord  `json:"events,omitempty"`
}

// ModeChange is the mode before and after a key press.
type ModeChange struct {
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

// EventRecord is a span event. AtUs is the offset from the span start.
type EventRecord struct {
	Name  string         `json:"name"`
	AtUs  int64          `json:"at_us"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

// promoted maps attribute keys to the SpanRecord field they fill.
var promoted = map[attribute.Key]func(*SpanRecord, string){
	AttrSessionID:  func(r *SpanRecord, v string) { r.Session = v },
	AttrKey:        func(r *SpanRecord, v string) { r.Key = v },
	AttrSequence:   func(r *SpanRecord, v string) { r.Sequence = v },
	AttrMatch:      func(r *SpanRecord, v string) { r.Match = v },
	AttrOutcome:    func(r *SpanRecord, v string) { r.Outcome = v },
	AttrCommandID:  func(r *SpanRecord, v string) { r.Command = v },
	AttrPattern:    func(r *SpanRecord, v string) { r.Pattern = v },
	AttrModeBefore: func(r *SpanRecord, v string) { r.mode().From = v },
	AttrModeAfter:  func(r *SpanRecord, v string) { r.mode().To = v },
}

func (r *SpanRecord) mode() *ModeChange {
	if r.Mode == nil {
		r.Mode = &ModeChange{}
	}
	return r.Mode
}

// NewSpanRecord flattens s into its trace file line.
func NewSpanRecord(s sdktrace.ReadOnlySpan) SpanRecord {
	sc := s.SpanContext()
	r := SpanRecord{
		Name:       s.Name(),
		Start:      s.StartTime().UTC(),
		DurationUs: s.EndTime().Sub(s.StartTime()).Microseconds(),
		TraceID:    sc.TraceID().String(),
		SpanID:     sc.SpanID().String(),
	}
	if p := s.Parent(); p.IsValid() {
		r.ParentID = p.SpanID().String()
	}
	if st := s.Status(); st.Code == codes.Error {
		r.Error = st.Description
		if r.Error == "" {
			r.Error = "error"
		}
	}

	for _, kv := range s.Attributes() {
		if set, ok := promoted[kv.Key]; ok && kv.Value.Type() == attribute.STRING {
			set(&r, kv.Value.AsString())
			continue
		}
		if r.Attrs == nil {
			r.Attrs = make(map[string]any)
		}
		r.Attrs[string(kv.Key)] = kv.Value.AsInterface()
	}

	for _, ev := range s.Events() {
		rec := EventRecord{Name: ev.Name, AtUs: ev.Time.Sub(s.StartTime()).Microseconds()}
		if len(ev.Attributes) > 0 {
			rec.Attrs = make(map[string]any, len(ev.Attributes))
			for _, kv := range ev.Attributes {
				rec.Attrs[string(kv.Key)] = kv.Value.AsInterface()
			}
		}
		r.Events = append(r.Events, rec)
	}
	return r
}
