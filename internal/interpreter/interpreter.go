// Package interpreter turns key presses into editing operations.
//
// An Interpreter accumulates keys into a sequence, resolves it against a
// command.Table in the context of the current mode, and runs the matched
// operation against a host-supplied cursor.Adapter. It is driven from a
// single goroutine, the one delivering UI events; nothing it does blocks.
package interpreter

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/andrei-shtanakov/Vimja/internal/command"
	"github.com/andrei-shtanakov/Vimja/internal/cursor"
	"github.com/andrei-shtanakov/Vimja/internal/keys"
	"github.com/andrei-shtanakov/Vimja/internal/log"
	"github.com/andrei-shtanakov/Vimja/internal/mode"
	"github.com/andrei-shtanakov/Vimja/internal/pubsub"
	"github.com/andrei-shtanakov/Vimja/internal/register"
	"github.com/andrei-shtanakov/Vimja/internal/search"
	"github.com/andrei-shtanakov/Vimja/internal/tracing"
)

// Outcome tells the host whether the interpreter used a key.
type Outcome int

const (
	// Consumed means the host must not act on the key.
	Consumed Outcome = iota
	// PassThrough means the host should apply its default handling,
	// typically inserting the typed text.
	PassThrough
)

func (o Outcome) String() string {
	switch o {
	case Consumed:
		return "consumed"
	case PassThrough:
		return "pass_through"
	default:
		return "unknown"
	}
}

// Snapshot is the state published to subscribers after a change.
type Snapshot struct {
	Mode          mode.Mode
	Pending       string
	SearchActive  bool
	SearchPattern string
	// Register is the register written, for RegisterWrittenEvent.
	Register string
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithLogger sets the session logger. The default discards.
func WithLogger(l *log.Logger) Option {
	return func(in *Interpreter) {
		if l != nil {
			in.log = l
		}
	}
}

// WithTracer sets the tracer used for per-key spans. The default is a no-op.
func WithTracer(t trace.Tracer) Option {
	return func(in *Interpreter) {
		if t != nil {
			in.tracer = t
		}
	}
}

// WithInitialMode sets the mode the session starts in.
func WithInitialMode(m mode.Mode) Option {
	return func(in *Interpreter) { in.initial = m }
}

// WithWidths sets the cursor widths requested per mode.
func WithWidths(w mode.Widths) Option {
	return func(in *Interpreter) { in.widths = w }
}

// WithRegisters shares a register store, for example between sessions.
func WithRegisters(s *register.Store) Option {
	return func(in *Interpreter) {
		if s != nil {
			in.registers = s
		}
	}
}

// WithMatcher sets the search matcher.
func WithMatcher(m *search.Matcher) Option {
	return func(in *Interpreter) {
		if m != nil {
			in.matcher = m
		}
	}
}

// Interpreter is one editing session.
type Interpreter struct {
	id    string
	table *command.Table

	initial mode.Mode
	widths  mode.Widths
	modes   *mode.Controller

	registers *register.Store
	search    search.State
	matcher   *search.Matcher
	seq       keys.Sequence

	// adapter is nil until the host attaches an editor surface.
	adapter cursor.Adapter

	log    *log.Logger
	tracer trace.Tracer
	events *pubsub.Broker[Snapshot]

	lastErr error
	closed  bool
}

// New creates a session over table. Cursor operations are deferred until
// OnEditorAttached is called.
func New(table *command.Table, opts ...Option) *Interpreter {
	in := &Interpreter{
		id:        uuid.NewString(),
		table:     table,
		initial:   mode.Normal(),
		widths:    mode.DefaultWidths(),
		registers: register.NewStore(),
		matcher:   search.NewMatcher(),
		log:       log.Discard(),
		tracer:    noop.NewTracerProvider().Tracer("noop"),
		events:    pubsub.NewBroker[Snapshot](),
	}
	for _, opt := range opts {
		opt(in)
	}
	in.modes = mode.NewController(in.initial, in.widths)
	in.log = in.log.With("session", in.id)
	in.log.Info(log.CatMode, "session started", "mode", in.modes.Mode(), "commands", table.Len())
	return in
}

// OnEditorAttached binds the cursor adapter and renders the current
// mode's cursor width on it. A later call replaces the adapter.
func (in *Interpreter) OnEditorAttached(a cursor.Adapter) {
	ctx, span := in.tracer.Start(context.Background(), tracing.SpanAttach,
		trace.WithAttributes(attribute.String(tracing.AttrSessionID, in.id)))
	defer span.End()

	if a == nil {
		in.log.Warn(log.CatUI, "ignored nil editor")
		return
	}
	if in.adapter != nil {
		in.log.Warn(log.CatUI, "editor replaced")
	}
	in.adapter = a
	if err := protect(func() error {
		in.modes.Attach(a)
		return nil
	}); err != nil {
		in.fail(ctx, "attach", err)
		return
	}
	in.log.Info(log.CatUI, "editor attached", "mode", in.modes.Mode())
}

// Attached reports whether an editor is attached.
func (in *Interpreter) Attached() bool {
	return in.adapter != nil
}

// Shutdown ends the session. It holds no persistent resources: pending
// state is dropped, the adapter is released and subscribers are closed.
// Keys pressed afterwards pass through.
func (in *Interpreter) Shutdown() {
	if in.closed {
		return
	}
	in.closed = true
	in.seq = nil
	in.search.Reset()
	in.adapter = nil
	in.events.Close()
	in.log.Info(log.CatMode, "session ended")
}

// Subscribe streams snapshots after mode changes, register writes and
// search updates until ctx is done or the session shuts down.
func (in *Interpreter) Subscribe(ctx context.Context) <-chan pubsub.Event[Snapshot] {
	return in.events.Subscribe(ctx)
}

func (in *Interpreter) publish(eventType pubsub.EventType, reg string) {
	in.events.Publish(eventType, Snapshot{
		Mode:          in.modes.Mode(),
		Pending:       in.seq.String(),
		SearchActive:  in.search.Active(),
		SearchPattern: in.search.Pattern(),
		Register:      reg,
	})
}

// SessionID identifies the session in logs and traces.
func (in *Interpreter) SessionID() string { return in.id }

// Mode returns the current mode.
func (in *Interpreter) Mode() mode.Mode { return in.modes.Mode() }

// Pending returns a copy of the keys accumulated since the last reset.
func (in *Interpreter) Pending() keys.Sequence {
	return append(keys.Sequence(nil), in.seq...)
}

// Registers returns the session's register store.
func (in *Interpreter) Registers() *register.Store { return in.registers }

// SearchActive reports whether keys are feeding a search.
func (in *Interpreter) SearchActive() bool { return in.search.Active() }

// SearchPattern returns the search pattern typed so far.
func (in *Interpreter) SearchPattern() string { return in.search.Pattern() }

// Table returns the command table the session dispatches against.
func (in *Interpreter) Table() *command.Table { return in.table }

// SetTable replaces the command table, for example after the keymap file
// changed. Accumulated keys are dropped; the mode is kept.
func (in *Interpreter) SetTable(t *command.Table) {
	if t == nil || in.closed {
		return
	}
	in.table = t
	in.seq = nil
	in.log.Info(log.CatKeymap, "command table replaced", "commands", t.Len())
}

// LastError returns the failure of the most recent operation, or nil if
// it succeeded. Failures never escape OnKeyPress; this is how hosts and
// tests observe them.
func (in *Interpreter) LastError() error { return in.lastErr }
