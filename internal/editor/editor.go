// Package editor is a Bubble Tea host for an interpreter session.
//
// It owns a cursor.Buffer, attaches it to the interpreter, and routes key
// messages through it. Keys the interpreter passes through are applied as
// plain text editing, which is how insert mode types.
package editor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"github.com/andrei-shtanakov/Vimja/internal/command"
	"github.com/andrei-shtanakov/Vimja/internal/cursor"
	"github.com/andrei-shtanakov/Vimja/internal/interpreter"
	"github.com/andrei-shtanakov/Vimja/internal/keys"
	"github.com/andrei-shtanakov/Vimja/internal/log"
	"github.com/andrei-shtanakov/Vimja/internal/mode"
	"github.com/andrei-shtanakov/Vimja/internal/pubsub"
)

// Options configures the host.
type Options struct {
	// Path is the file Save writes. Empty disables saving.
	Path            string
	ShowStatusBar   bool
	ShowLineNumbers bool
	ShowLastLog     bool
	Logger          *log.Logger
	KeyMap          keys.HostKeyMap

	// KeymapChanges signals that the keymap file changed on disk;
	// LoadKeymap then builds the replacement table.
	KeymapChanges <-chan struct{}
	LoadKeymap    func() (*command.Table, error)
}

// savedMsg reports the result of a save command.
type savedMsg struct {
	path  string
	bytes int
	err   error
}

type keymapChangedMsg struct{}

// Model hosts one session. The interpreter and buffer are shared by every
// copy of the model Bubble Tea makes.
type Model struct {
	in   *interpreter.Interpreter
	buf  *cursor.Buffer
	opts Options
	help help.Model

	ctx    context.Context
	cancel context.CancelFunc
	events *pubsub.ContinuousListener[interpreter.Snapshot]
	logs   *log.LogListener
	zones  *zone.Manager

	width  int
	height int
	top    int // first visible line

	saved   string
	message string
	failed  bool
	lastLog string
}

// New attaches buf to in and returns the host model.
func New(in *interpreter.Interpreter, buf *cursor.Buffer, opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = log.Discard()
	}
	if len(opts.KeyMap.Quit.Keys()) == 0 {
		opts.KeyMap = keys.DefaultHostKeyMap()
	}
	ctx, cancel := context.WithCancel(context.Background())
	m := Model{
		in:     in,
		buf:    buf,
		opts:   opts,
		help:   help.New(),
		ctx:    ctx,
		cancel: cancel,
		events: pubsub.NewContinuousListener[interpreter.Snapshot](ctx, in),
		logs:   opts.Logger.NewListener(ctx),
		zones:  zone.New(),
		saved:  buf.Text(),
	}
	in.OnEditorAttached(buf)
	return m
}

// Init starts listening for session events and log entries.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.events.Listen()}
	if m.logs != nil {
		cmds = append(cmds, m.logs.Listen())
	}
	if m.opts.KeymapChanges != nil {
		cmds = append(cmds, m.waitForKeymap())
	}
	return tea.Batch(cmds...)
}

// Close ends the session and stops the listeners.
func (m Model) Close() {
	if m.closed() {
		return
	}
	m.cancel()
	m.zones.Close()
	m.in.Shutdown()
}

func (m Model) closed() bool { return m.ctx.Err() != nil }

// Text returns the buffer contents.
func (m Model) Text() string { return m.buf.Text() }

// Mode returns the session's current mode.
func (m Model) Mode() mode.Mode { return m.in.Mode() }

// Dirty reports whether the buffer differs from the last save.
func (m Model) Dirty() bool { return m.buf.Text() != m.saved }

// Message returns the transient status message.
func (m Model) Message() string { return m.message }

// Update handles a message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.scroll()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil

	case keymapChangedMsg:
		m.reloadKeymap()
		return m, m.waitForKeymap()

	case pubsub.Event[interpreter.Snapshot]:
		if msg.Type == pubsub.RegisterWrittenEvent {
			name := msg.Payload.Register
			if name == "" {
				name = `"`
			}
			m.message, m.failed = fmt.Sprintf("register %s written", name), false
		}
		return m, m.events.Listen()

	case pubsub.Event[string]:
		m.lastLog = strings.TrimSpace(msg.Payload)
		return m, m.logs.Listen()

	case savedMsg:
		if msg.err != nil {
			m.message, m.failed = "save failed: "+msg.err.Error(), true
			return m, nil
		}
		m.saved = m.buf.Text()
		m.message, m.failed = fmt.Sprintf("%q %dB written", filepath.Base(msg.path), msg.bytes), false
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.opts.KeyMap.Quit):
		m.Close()
		return m, tea.Quit
	case key.Matches(msg, m.opts.KeyMap.Save):
		return m, m.save()
	case key.Matches(msg, m.opts.KeyMap.Undo):
		if !m.buf.Undo() {
			m.message, m.failed = "nothing to undo", false
		}
		m.scroll()
		return m, nil
	}

	code := keys.FromTea(msg)
	outcome := interpreter.PassThrough
	prev := m.in.LastError()
	if code != "" {
		outcome = m.in.OnKeyPress(code)
	}
	// Keys with no code, such as a bracketed paste, skip the interpreter
	// and only edit the buffer while typing is allowed.
	if outcome == interpreter.PassThrough && m.in.Mode() == mode.Insert() {
		m.passThrough(code, msg)
	}

	if err := m.in.LastError(); err != nil && !errors.Is(err, prev) {
		m.message, m.failed = err.Error(), true
	} else if outcome == interpreter.Consumed && code == keys.Escape {
		m.message, m.failed = "", false
	}
	m.scroll()
	return m, nil
}

// passThrough applies an insert-mode key the interpreter did not consume.
func (m *Model) passThrough(code keys.Code, msg tea.KeyMsg) {
	switch code {
	case keys.Enter:
		m.buf.InsertLine()
	case keys.Backspace:
		m.buf.DeleteBackward(1)
	case keys.Delete:
		m.buf.DeleteForward(1)
	case keys.Tab:
		m.buf.InsertText("\t")
	case keys.Left:
		m.buf.MoveBy(cursor.Left, cursor.AnchorMove, 1)
	case keys.Right:
		m.buf.MoveBy(cursor.Right, cursor.AnchorMove, 1)
	case keys.Up:
		m.buf.MoveBy(cursor.Up, cursor.AnchorMove, 1)
	case keys.Down:
		m.buf.MoveBy(cursor.Down, cursor.AnchorMove, 1)
	case keys.Home:
		m.buf.MoveBy(cursor.StartOfLine, cursor.AnchorMove, 1)
	case keys.End:
		m.buf.MoveBy(cursor.EndOfLine, cursor.AnchorMove, 1)
	default:
		if text := code.Text(); text != "" {
			m.buf.InsertText(text)
		} else if msg.Paste && msg.Type == tea.KeyRunes {
			m.buf.InsertText(string(msg.Runes))
		}
	}
}

// handleMouse places the cursor where the left button was pressed. Clicks
// are ignored while a command or search is in progress.
func (m *Model) handleMouse(msg tea.MouseMsg) {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return
	}
	if m.in.Mode().IsPending() || m.in.SearchActive() || len(m.in.Pending()) > 0 {
		return
	}
	lines := m.buf.Lines()
	first, last := m.visible(len(lines))
	for i := first; i < last; i++ {
		z := m.zones.Get(lineZone(i))
		if z.IsZero() || msg.Y != z.StartY || msg.X < z.StartX {
			continue
		}
		cells := msg.X - z.StartX - m.gutterWidth(len(lines))
		m.buf.SetPosition(cursor.Position{Line: i, Column: columnAt(lines[i], cells)})
		return
	}
}

func (m Model) waitForKeymap() tea.Cmd {
	ctx, changes := m.ctx, m.opts.KeymapChanges
	if changes == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			return keymapChangedMsg{}
		}
	}
}

// reloadKeymap swaps in the table built by LoadKeymap. A broken file
// keeps the current table.
func (m *Model) reloadKeymap() {
	if m.opts.LoadKeymap == nil {
		return
	}
	table, err := m.opts.LoadKeymap()
	if err != nil {
		m.opts.Logger.ErrorErr(log.CatKeymap, "Keymap reload failed", err)
		m.message, m.failed = "keymap: "+err.Error(), true
		return
	}
	m.in.SetTable(table)
	m.opts.Logger.Info(log.CatKeymap, "Keymap reloaded", "commands", table.Len())
	m.message, m.failed = fmt.Sprintf("keymap reloaded (%d bindings)", table.Len()), false
}

func (m Model) save() tea.Cmd {
	path, text, logger := m.opts.Path, m.buf.Text(), m.opts.Logger
	if path == "" {
		return func() tea.Msg { return savedMsg{err: errors.New("no file name")} }
	}
	return func() tea.Msg {
		if err := os.WriteFile(path, []byte(text), 0o644); err != nil { //nolint:gosec // G306: user document
			logger.ErrorErr(log.CatUI, "Save failed", err, "path", path)
			return savedMsg{path: path, err: err}
		}
		logger.Info(log.CatUI, "Saved", "path", path, "bytes", len(text))
		return savedMsg{path: path, bytes: len(text)}
	}
}

// textHeight is the number of rows available to the document.
func (m Model) textHeight() int {
	h := m.height
	if m.opts.ShowStatusBar {
		h -= 2
	}
	return max(h, 1)
}

// scroll keeps the cursor line visible.
func (m *Model) scroll() {
	if m.height == 0 {
		return
	}
	line := m.buf.CurrentPosition().Line
	h := m.textHeight()
	if line < m.top {
		m.top = line
	} else if line >= m.top+h {
		m.top = line - h + 1
	}
	m.top = max(min(m.top, len(m.buf.Lines())-1), 0)
}
