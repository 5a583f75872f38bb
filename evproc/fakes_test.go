package evproc

import (
	"fmt"
	"testing"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/jmigpin/xevents/devices"
	"github.com/jmigpin/xevents/dnd"
	"github.com/jmigpin/xevents/event"
	"github.com/jmigpin/xevents/ime"
	"github.com/jmigpin/xevents/keyboard"
	"github.com/jmigpin/xevents/rawevent"
	"github.com/jmigpin/xevents/window"
)

const (
	win1 xproto.Window = 100
	win2 xproto.Window = 200

	kcA     = 38
	kcShift = 50

	touchpad devices.DeviceId = 11
)

var testAtoms = Atoms{WMProtocols: 1, WMDeleteWindow: 2, NetWMPing: 3}

var dndAtoms = dnd.Atoms{
	XdndEnter:     10,
	XdndPosition:  11,
	XdndDrop:      12,
	XdndLeave:     13,
	XdndSelection: 14,
	TextURIList:   15,
}

//----------

type fakeConn struct {
	pressed []xproto.Keycode
	pings   []*rawevent.ClientMessage
	err     error
}

func (c *fakeConn) ReplyPing(ev *rawevent.ClientMessage) error {
	c.pings = append(c.pings, ev)
	return c.err
}
func (c *fakeConn) PressedKeys() ([]xproto.Keycode, error) {
	return c.pressed, c.err
}

type fakeKeymap struct{ reloads int }

func (km *fakeKeymap) Lookup(kc xproto.Keycode, mods event.KeyModifiers, group int) (event.Key, string) {
	switch kc {
	case kcA:
		if mods.HasAny(event.ModShift) {
			return event.KeyCharacter, "A"
		}
		return event.KeyCharacter, "a"
	case kcShift:
		return event.KeyShift, ""
	}
	return event.KeyUnidentified, ""
}
func (km *fakeKeymap) KeyRepeats(kc xproto.Keycode) bool { return kc != kcShift }
func (km *fakeKeymap) Reload() error {
	km.reloads++
	return nil
}

type fakeQuerier struct{ infos []devices.Info }

func (fq *fakeQuerier) QueryDevices(id devices.DeviceId) ([]devices.Info, error) {
	if id == devices.AllDevices {
		return fq.infos, nil
	}
	u := []devices.Info{}
	for _, info := range fq.infos {
		if info.Id == id || info.Attachment == id {
			u = append(u, info)
		}
	}
	return u, nil
}

type fakeTransport struct {
	statuses []bool
	finishes []bool
}

func (tr *fakeTransport) TypeList(xproto.Window) ([]xproto.Atom, error) { return nil, nil }
func (tr *fakeTransport) ConvertSelection(xproto.Window, xproto.Timestamp) error {
	return nil
}
func (tr *fakeTransport) SendStatus(w, s xproto.Window, accepted bool) error {
	tr.statuses = append(tr.statuses, accepted)
	return nil
}
func (tr *fakeTransport) SendFinished(w, s xproto.Window, accepted bool) error {
	tr.finishes = append(tr.finishes, accepted)
	return nil
}
func (tr *fakeTransport) ReadSelection(xproto.Window) ([]byte, error) {
	return []byte("file:///tmp/f\n"), nil
}

type fakeIme struct {
	events  []*ime.Event
	removed []xproto.Window
	focus   []string
	consume func(ime.KeyInput) bool
	keys    []ime.KeyInput
}

func (fi *fakeIme) FilterKey(w xproto.Window, k ime.KeyInput) (bool, error) {
	fi.keys = append(fi.keys, k)
	return fi.consume != nil && fi.consume(k), nil
}

func (fi *fakeIme) SetSpot(xproto.Window, int16, int16) error { return nil }
func (fi *fakeIme) SetAllowed(xproto.Window, bool) error      { return nil }
func (fi *fakeIme) FocusWindow(w xproto.Window) error {
	fi.focus = append(fi.focus, fmt.Sprintf("in %d", w))
	return nil
}
func (fi *fakeIme) UnfocusWindow(w xproto.Window) error {
	fi.focus = append(fi.focus, fmt.Sprintf("out %d", w))
	return nil
}
func (fi *fakeIme) RemoveContext(w xproto.Window) error {
	fi.removed = append(fi.removed, w)
	return nil
}
func (fi *fakeIme) NextEvent() (*ime.Event, bool) {
	if len(fi.events) == 0 {
		return nil, false
	}
	ev := fi.events[0]
	fi.events = fi.events[1:]
	return ev, true
}

type fakeWinBackend struct{}

func (fakeWinBackend) FrameExtents(xproto.Window) window.FrameExtents { return window.FrameExtents{} }
func (fakeWinBackend) MonitorForRect(window.Rect) (window.Monitor, error) {
	return window.DummyMonitor(), nil
}
func (fakeWinBackend) RequestInnerSize(xproto.Window, uint32, uint32) error          { return nil }
func (fakeWinBackend) UpdateSizeHints(xproto.Window, *event.Size, *event.Size) error { return nil }
func (fakeWinBackend) WMNameIsOneOf([]string) bool                                   { return false }
func (fakeWinBackend) UpdateCachedWMInfo()                                           {}

type fakeMonitors struct{}

func (fakeMonitors) Invalidate() ([]window.Monitor, bool) { return nil, false }
func (fakeMonitors) Available() ([]window.Monitor, error) { return nil, nil }

//----------

type harness struct {
	p       *Processor
	conn    *fakeConn
	km      *fakeKeymap
	tr      *fakeTransport
	ime     *fakeIme
	windows *window.Registry
	devices *devices.Registry
	evs     []event.Event
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		conn: &fakeConn{},
		km:   &fakeKeymap{},
		tr:   &fakeTransport{},
		ime:  &fakeIme{},
	}
	h.windows = window.NewRegistry()
	mon := window.Monitor{Name: "DP-1", ScaleFactor: 1}
	h.windows.Add(window.NewWindow(win1, fakeWinBackend{}, mon))
	h.windows.Add(window.NewWindow(win2, fakeWinBackend{}, mon))

	q := &fakeQuerier{infos: []devices.Info{
		{Id: devices.VirtualCorePointer, Attachment: devices.VirtualCoreKeyboard, Use: devices.MasterPointer},
		{Id: devices.VirtualCoreKeyboard, Attachment: devices.VirtualCorePointer, Use: devices.MasterKeyboard},
		{
			Id: touchpad, Attachment: devices.VirtualCorePointer, Use: devices.SlavePointer,
			Scroll: []devices.ScrollClass{
				{Number: 2, Orientation: devices.Vertical, Increment: 15},
				{Number: 3, Orientation: devices.Horizontal, Increment: 15},
			},
			Valuators: []devices.ValuatorClass{{Number: 2, Value: 100}, {Number: 3, Value: 0}},
		},
	}}
	h.devices = devices.NewRegistry(q)
	h.devices.Init(devices.AllDevices)

	h.p = NewProcessor(Deps{
		Atoms:    testAtoms,
		Conn:     h.conn,
		Windows:  h.windows,
		Devices:  h.devices,
		Keyboard: keyboard.NewState(h.km, 3),
		Dnd:      dnd.NewDnd(h.tr, dndAtoms),
		Ime:      ime.NewBridge(h.ime, 8),
		Geometry: window.NewReconciler(h.windows, fakeWinBackend{}, fakeMonitors{}),
	})
	return h
}

func (h *harness) process(ev rawevent.Event) []event.Event {
	n := len(h.evs)
	h.p.ProcessEvent(ev, func(e event.Event) {
		h.evs = append(h.evs, e)
	})
	return h.evs[n:]
}

// Inner events of window events, in order.
func winEvents(evs []event.Event) []interface{} {
	u := []interface{}{}
	for _, ev := range evs {
		if we, ok := ev.(*event.WindowEvent); ok {
			u = append(u, we.Event)
		}
	}
	return u
}

func devEvents(evs []event.Event) []interface{} {
	u := []interface{}{}
	for _, ev := range evs {
		if de, ok := ev.(*event.DeviceEvent); ok {
			u = append(u, de.Event)
		}
	}
	return u
}

func keyInput(kc uint32, key event.Key, text string, state event.ElementState, repeat, synthetic bool) *event.KeyboardInput {
	return &event.KeyboardInput{
		DeviceId: event.DeviceId(devices.VirtualCoreKeyboard),
		Event: event.KeyEvent{
			Keycode: kc,
			Key:     key,
			Text:    text,
			State:   state,
			Repeat:  repeat,
		},
		IsSynthetic: synthetic,
	}
}
