// Input method backend talking to the IBus daemon over D-Bus, one input
// context per window.
package ibus

import (
	"log/slog"
	"sync"
	"unicode/utf8"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/godbus/dbus/v5"
	"github.com/jmigpin/xevents/event"
	"github.com/jmigpin/xevents/ime"
	"github.com/pkg/errors"
)

// IBus D-Bus constants
const (
	IBusService          = "org.freedesktop.IBus"
	IBusPath             = "/org/freedesktop/IBus"
	IBusInterface        = "org.freedesktop.IBus"
	InputContextIface    = "org.freedesktop.IBus.InputContext"
	IBusServiceInterface = "org.freedesktop.IBus.Service"
)

// Input context capabilities
const (
	capPreeditText uint32 = 1 << 0
	capFocus       uint32 = 1 << 3
)

const releaseMask uint32 = 1 << 30

// Keysym for a keycode, as produced by the current keyboard mapping.
type Keysyms interface {
	Keysym(kc xproto.Keycode, mods event.KeyModifiers, group int) xproto.Keysym
}

type Backend struct {
	conn       *dbus.Conn
	object     func(path dbus.ObjectPath) dbus.BusObject
	keysyms    Keysyms
	log        *slog.Logger
	clientName string

	mu   sync.Mutex
	ctxs map[xproto.Window]dbus.ObjectPath
	wins map[dbus.ObjectPath]xproto.Window

	// only used from the event processing goroutine
	signals chan *dbus.Signal
	pending []*ime.Event
	preedit map[xproto.Window]bool
}

// Connects to the IBus daemon of the given X display.
func Connect(display, clientName string, keysyms Keysyms, log *slog.Logger) (*Backend, error) {
	addr, err := Address(display)
	if err != nil {
		return nil, err
	}
	conn, err := dbus.Connect(addr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to ibus")
	}
	b := newBackend(conn, clientName, keysyms, log)
	b.object = func(path dbus.ObjectPath) dbus.BusObject {
		return conn.Object(IBusService, path)
	}
	if err := b.watchSignals(); err != nil {
		conn.Close()
		return nil, err
	}
	return b, nil
}

func newBackend(conn *dbus.Conn, clientName string, keysyms Keysyms, log *slog.Logger) *Backend {
	return &Backend{
		conn:       conn,
		keysyms:    keysyms,
		log:        log,
		clientName: clientName,
		ctxs:       map[xproto.Window]dbus.ObjectPath{},
		wins:       map[dbus.ObjectPath]xproto.Window{},
		signals:    make(chan *dbus.Signal, 64),
		preedit:    map[xproto.Window]bool{},
	}
}

func (b *Backend) watchSignals() error {
	opt := dbus.WithMatchInterface(InputContextIface)
	if err := b.conn.AddMatchSignal(opt); err != nil {
		return errors.Wrap(err, "failed to add signal match")
	}
	b.conn.Signal(b.signals)
	return nil
}

func (b *Backend) Close() error {
	b.mu.Lock()
	paths := make([]dbus.ObjectPath, 0, len(b.ctxs))
	for _, p := range b.ctxs {
		paths = append(paths, p)
	}
	b.mu.Unlock()
	for _, p := range paths {
		_ = b.call(p, IBusServiceInterface+".Destroy")
	}
	return b.conn.Close()
}

//----------

// Input context of the window, created on first use.
func (b *Backend) context(win xproto.Window) (dbus.ObjectPath, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p, ok := b.ctxs[win]; ok {
		return p, nil
	}
	var path dbus.ObjectPath
	obj := b.object(IBusPath)
	if err := obj.Call(IBusInterface+".CreateInputContext", 0, b.clientName).Store(&path); err != nil {
		return "", errors.Wrap(err, "create input context")
	}
	caps := capPreeditText | capFocus
	if err := b.call(path, InputContextIface+".SetCapabilities", caps); err != nil {
		return "", errors.Wrap(err, "set capabilities")
	}
	b.ctxs[win] = path
	b.wins[path] = win
	return path, nil
}

func (b *Backend) existingContext(win xproto.Window) (dbus.ObjectPath, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.ctxs[win]
	return p, ok
}

func (b *Backend) call(path dbus.ObjectPath, method string, args ...interface{}) error {
	return b.object(path).Call(method, 0, args...).Err
}

//----------

// Offers the key to the window input context. Windows without a context
// never had focus and get nothing filtered.
func (b *Backend) FilterKey(win xproto.Window, k ime.KeyInput) (bool, error) {
	p, ok := b.existingContext(win)
	if !ok || k.Keycode < 8 {
		return false, nil
	}
	keyval := uint32(b.keysyms.Keysym(k.Keycode, k.Mods, k.Group))
	state := uint32(k.Mods) | uint32(k.Group&3)<<13
	if !k.Press {
		state |= releaseMask
	}
	var handled bool
	c := b.object(p).Call(InputContextIface+".ProcessKeyEvent", 0, keyval, uint32(k.Keycode)-8, state)
	if err := c.Store(&handled); err != nil {
		return false, errors.Wrap(err, "process key event")
	}
	return handled, nil
}

//----------

func (b *Backend) SetSpot(win xproto.Window, x, y int16) error {
	p, err := b.context(win)
	if err != nil {
		return err
	}
	return b.call(p, InputContextIface+".SetCursorLocationRelative", int32(x), int32(y), int32(0), int32(0))
}

func (b *Backend) SetAllowed(win xproto.Window, allowed bool) error {
	if allowed {
		return b.FocusWindow(win)
	}
	p, ok := b.existingContext(win)
	if !ok {
		return nil
	}
	if err := b.call(p, InputContextIface+".Reset"); err != nil {
		return err
	}
	return b.call(p, InputContextIface+".FocusOut")
}

func (b *Backend) FocusWindow(win xproto.Window) error {
	p, err := b.context(win)
	if err != nil {
		return err
	}
	return b.call(p, InputContextIface+".FocusIn")
}

func (b *Backend) UnfocusWindow(win xproto.Window) error {
	p, ok := b.existingContext(win)
	if !ok {
		return nil
	}
	return b.call(p, InputContextIface+".FocusOut")
}

func (b *Backend) RemoveContext(win xproto.Window) error {
	b.mu.Lock()
	p, ok := b.ctxs[win]
	delete(b.ctxs, win)
	delete(b.wins, p)
	b.mu.Unlock()
	delete(b.preedit, win)
	if !ok {
		return nil
	}
	return b.call(p, IBusServiceInterface+".Destroy")
}

//----------

func (b *Backend) NextEvent() (*ime.Event, bool) {
	for len(b.pending) == 0 {
		select {
		case sig := <-b.signals:
			b.pending = b.translate(sig)
		default:
			return nil, false
		}
	}
	ev := b.pending[0]
	b.pending = b.pending[1:]
	return ev, true
}

func (b *Backend) translate(sig *dbus.Signal) []*ime.Event {
	b.mu.Lock()
	win, ok := b.wins[sig.Path]
	b.mu.Unlock()
	if !ok {
		return nil
	}
	ev := func(k ime.EventKind) *ime.Event {
		return &ime.Event{Kind: k, Window: win}
	}

	switch sig.Name {
	case InputContextIface + ".Enabled":
		return []*ime.Event{ev(ime.Enabled)}
	case InputContextIface + ".Disabled":
		b.preedit[win] = false
		return []*ime.Event{ev(ime.Disabled)}
	case InputContextIface + ".CommitText":
		if len(sig.Body) < 1 {
			return nil
		}
		b.preedit[win] = false
		e := ev(ime.Commit)
		e.Text = ibusText(sig.Body[0])
		return []*ime.Event{e}
	case InputContextIface + ".UpdatePreeditText":
		if len(sig.Body) < 3 {
			return nil
		}
		text := ibusText(sig.Body[0])
		cursor, _ := sig.Body[1].(uint32)
		visible, _ := sig.Body[2].(bool)
		if !visible || text == "" {
			return b.endPreedit(win)
		}
		var u []*ime.Event
		if !b.preedit[win] {
			b.preedit[win] = true
			u = append(u, ev(ime.Start))
		}
		e := ev(ime.Update)
		e.Text = text
		c := byteOffset(text, int(cursor))
		e.Cursor = &c
		return append(u, e)
	case InputContextIface + ".HidePreeditText":
		return b.endPreedit(win)
	}
	return nil
}

func (b *Backend) endPreedit(win xproto.Window) []*ime.Event {
	if !b.preedit[win] {
		return nil
	}
	b.preedit[win] = false
	return []*ime.Event{{Kind: ime.End, Window: win}}
}

//----------

// IBusText is serialized as a variant holding (sa{sv}sv): name,
// attachments, text, attributes.
func ibusText(v interface{}) string {
	if vr, ok := v.(dbus.Variant); ok {
		v = vr.Value()
	}
	u, ok := v.([]interface{})
	if !ok || len(u) < 3 {
		return ""
	}
	s, _ := u[2].(string)
	return s
}

// Byte offset of the n-th character.
func byteOffset(s string, n int) int {
	i := 0
	for k := 0; k < n && i < len(s); k++ {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return i
}
