// Input method bridge: applies requests from application goroutines and
// translates the backend composition events into semantic events.
package ime

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/jmigpin/xevents/event"
	"github.com/jmigpin/xevents/util/chanutil"
	"github.com/pkg/errors"
)

// Requests are sent from any goroutine with Bridge.Request.
type Request interface{}

type SetSpot struct {
	Window xproto.Window
	X, Y   int16
}

type SetAllowed struct {
	Window  xproto.Window
	Allowed bool
}

//----------

type EventKind int

const (
	Enabled EventKind = iota
	Start
	Update
	Commit
	End
	Disabled
)

func (k EventKind) String() string {
	switch k {
	case Enabled:
		return "enabled"
	case Start:
		return "start"
	case Update:
		return "update"
	case Commit:
		return "commit"
	case End:
		return "end"
	case Disabled:
		return "disabled"
	}
	return "unknown"
}

type Event struct {
	Kind   EventKind
	Window xproto.Window
	Text   string // update, commit
	Cursor *int   // update: byte offset of the cursor in text, nil if hidden
}

//----------

// Key offered to the input method before it is translated.
type KeyInput struct {
	Keycode xproto.Keycode
	Mods    event.KeyModifiers
	Group   int
	Press   bool
}

type Backend interface {
	// Returns true if the input method consumed the key.
	FilterKey(win xproto.Window, k KeyInput) (bool, error)
	SetSpot(win xproto.Window, x, y int16) error
	SetAllowed(win xproto.Window, allowed bool) error
	FocusWindow(win xproto.Window) error
	UnfocusWindow(win xproto.Window) error
	RemoveContext(win xproto.Window) error
	// Non-blocking. Returns false if there is no pending event.
	NextEvent() (*Event, bool)
}

//----------

type Bridge struct {
	backend   Backend
	inbox     *chanutil.NBChan[Request]
	composing bool
}

// A nil backend gives a bridge that only drains requests.
func NewBridge(backend Backend, inboxSize int) *Bridge {
	return &Bridge{
		backend: backend,
		inbox:   chanutil.NewNBChan[Request](inboxSize, "ime requests"),
	}
}

// Safe to call from any goroutine. Fails if the inbox is full.
func (b *Bridge) Request(req Request) error {
	return b.inbox.Send(req)
}

func (b *Bridge) IsComposing() bool {
	return b.composing
}

//----------

// Applies at most one pending request, then emits at most one event from
// the backend.
func (b *Bridge) Pump(emit event.Sink) {
	if req, ok := b.inbox.TryReceive(); ok {
		b.apply(req)
	}
	if b.backend == nil {
		return
	}
	ev, ok := b.backend.NextEvent()
	if !ok {
		return
	}
	b.translate(ev, emit)
}

func (b *Bridge) apply(req Request) {
	if b.backend == nil {
		return
	}
	switch t := req.(type) {
	case *SetSpot:
		must(b.backend.SetSpot(t.Window, t.X, t.Y), "failed to set ime spot")
	case *SetAllowed:
		must(b.backend.SetAllowed(t.Window, t.Allowed), "failed to set ime allowed")
	}
}

func (b *Bridge) translate(ev *Event, emit event.Sink) {
	win := event.WindowId(ev.Window)
	send := func(e interface{}) {
		emit(&event.WindowEvent{WindowId: win, Event: e})
	}
	switch ev.Kind {
	case Enabled:
		send(&event.ImeEnabled{})
	case Start:
		b.composing = true
		send(&event.ImePreedit{})
	case Update:
		if !b.composing {
			return
		}
		send(&event.ImePreedit{Text: ev.Text, Cursor: cursorRange(ev.Cursor)})
	case Commit:
		b.composing = false
		send(&event.ImePreedit{})
		send(&event.ImeCommit{Text: ev.Text})
	case End:
		b.composing = false
		send(&event.ImePreedit{})
	case Disabled:
		b.composing = false
		send(&event.ImeDisabled{})
	}
}

func cursorRange(c *int) *[2]int {
	if c == nil {
		return nil
	}
	return &[2]int{*c, *c}
}

//----------

func (b *Bridge) FilterKey(win xproto.Window, k KeyInput) bool {
	if b.backend == nil {
		return false
	}
	consumed, err := b.backend.FilterKey(win, k)
	must(err, "failed to filter key")
	return consumed
}

func (b *Bridge) FocusWindow(win xproto.Window) {
	if b.backend == nil {
		return
	}
	must(b.backend.FocusWindow(win), "failed to focus ime context")
}

func (b *Bridge) UnfocusWindow(win xproto.Window) {
	if b.backend == nil {
		return
	}
	must(b.backend.UnfocusWindow(win), "failed to unfocus ime context")
}

func (b *Bridge) RemoveContext(win xproto.Window) {
	if b.backend == nil {
		return
	}
	must(b.backend.RemoveContext(win), "failed to destroy ime context")
}

func must(err error, msg string) {
	if err != nil {
		panic(errors.Wrap(err, msg))
	}
}
