package mode

import "github.com/andrei-shtanakov/Vimja/internal/cursor"

// Widths are the cursor widths requested from the host per mode kind.
type Widths struct {
	Normal  int
	Insert  int
	Pending int
}

// DefaultWidths returns a block cursor for normal and pending modes and a
// bar cursor for insert mode.
func DefaultWidths() Widths {
	return Widths{Normal: 2, Insert: 1, Pending: 2}
}

// For returns the width configured for m.
func (w Widths) For(m Mode) int {
	switch m.Kind {
	case KindInsert:
		return w.Insert
	case KindPending:
		return w.Pending
	default:
		return w.Normal
	}
}

// Change describes one transition.
type Change struct {
	From   Mode
	To     Mode
	Anchor cursor.Anchor
	Width  int
}

// Changed reports whether the transition left the previous mode.
func (c Change) Changed() bool { return c.From != c.To }

// Controller owns the current mode and its anchor policy.
// It is not safe for concurrent use; the interpreter drives it from one goroutine.
type Controller struct {
	mode   Mode
	anchor cursor.Anchor
	width  int
	widths Widths
	sink   cursor.WidthSink
}

// NewController starts in initial. Invalid modes start in Normal.
func NewController(initial Mode, widths Widths) *Controller {
	if !initial.Valid() {
		initial = Normal()
	}
	return &Controller{
		mode:   initial,
		anchor: initial.DefaultAnchor(),
		width:  widths.For(initial),
		widths: widths,
	}
}

// Mode returns the current mode.
func (c *Controller) Mode() Mode { return c.mode }

// Anchor returns the anchor policy moves use when they ask for the default.
func (c *Controller) Anchor() cursor.Anchor { return c.anchor }

// Width returns the last width requested for the cursor.
func (c *Controller) Width() int { return c.width }

// Switch is the single mutator. A default anchor installs the target's own
// policy; a zero width uses the configured width for the target. State is
// committed before the sink is asked to render, so a failing sink never
// leaves the controller half switched.
func (c *Controller) Switch(target Mode, anchor cursor.Anchor, width int) Change {
	if anchor == cursor.AnchorDefault {
		anchor = target.DefaultAnchor()
	}
	if width <= 0 {
		width = c.widths.For(target)
	}
	change := Change{From: c.mode, To: target, Anchor: anchor, Width: width}
	c.mode = target
	c.anchor = anchor
	c.width = width
	if c.sink != nil {
		c.sink.SetCursorVisualWidth(width)
	}
	return change
}

// Reset is the Escape transition back to Normal.
func (c *Controller) Reset() Change {
	return c.Switch(Normal(), cursor.AnchorDefault, 0)
}

// Attach binds the width sink and renders the current width on it.
func (c *Controller) Attach(sink cursor.WidthSink) {
	c.sink = sink
	if sink != nil {
		sink.SetCursorVisualWidth(c.width)
	}
}
