// Event processor: routes decoded X events to the state machines and
// emits the resulting semantic events in order.
package evproc

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/jmigpin/xevents/devices"
	"github.com/jmigpin/xevents/dnd"
	"github.com/jmigpin/xevents/event"
	"github.com/jmigpin/xevents/ime"
	"github.com/jmigpin/xevents/keyboard"
	"github.com/jmigpin/xevents/rawevent"
	"github.com/jmigpin/xevents/touch"
	"github.com/jmigpin/xevents/window"
	"github.com/pkg/errors"
)

type Atoms struct {
	WMProtocols    xproto.Atom
	WMDeleteWindow xproto.Atom
	NetWMPing      xproto.Atom
}

// Requests that must succeed on a working connection.
type Conn interface {
	// Sends a _NET_WM_PING client message back to the root window.
	ReplyPing(ev *rawevent.ClientMessage) error
	// Keycodes currently down (hardware key map).
	PressedKeys() ([]xproto.Keycode, error)
}

type Deps struct {
	Atoms    Atoms
	Conn     Conn
	Windows  *window.Registry
	Devices  *devices.Registry
	Keyboard *keyboard.State
	Dnd      *dnd.Dnd
	Ime      *ime.Bridge
	Geometry *window.Reconciler
}

//----------

// Only used from the event processing goroutine.
type Processor struct {
	atoms   Atoms
	conn    Conn
	windows *window.Registry
	devices *devices.Registry
	kb      *keyboard.State
	touch   touch.Tracker
	dnd     *dnd.Dnd
	ime     *ime.Bridge
	geom    *window.Reconciler

	active    xproto.Window
	hasActive bool

	timestamp xproto.Timestamp
}

func NewProcessor(d Deps) *Processor {
	return &Processor{
		atoms:   d.Atoms,
		conn:    d.Conn,
		windows: d.Windows,
		devices: d.Devices,
		kb:      d.Keyboard,
		dnd:     d.Dnd,
		ime:     d.Ime,
		geom:    d.Geometry,
	}
}

//----------

// ProcessEvent consumes one event, calling sink zero or more times. Then
// applies one pending ime request and emits at most one ime event. Unknown
// event types are ignored. Never blocks.
func (p *Processor) ProcessEvent(ev rawevent.Event, sink event.Sink) {
	switch t := ev.(type) {
	case *rawevent.ClientMessage:
		p.onClientMessage(t, sink)
	case *rawevent.SelectionNotify:
		p.setTimestamp(t.Time)
		if t.Property == p.dnd.Atoms().XdndSelection {
			p.dnd.OnSelectionNotify(t.Requestor, t.Property, sink)
		}
	case *rawevent.ConfigureNotify:
		p.geom.OnConfigureNotify(t, sink)
	case *rawevent.ReparentNotify:
		p.geom.OnReparentNotify(t.Window)
	case *rawevent.MapNotify:
		p.onMapNotify(t, sink)
	case *rawevent.DestroyNotify:
		p.onDestroyNotify(t, sink)
	case *rawevent.VisibilityNotify:
		occluded := t.State == xproto.VisibilityFullyObscured
		emitWin(sink, t.Window, &event.Occluded{Occluded: occluded})
	case *rawevent.Expose:
		// only the last of a series
		if t.Count == 0 {
			emitWin(sink, t.Window, &event.RedrawRequested{})
		}

	case *rawevent.Key:
		p.onKey(t, sink)

	case *rawevent.XIButton:
		p.onButton(t, sink)
	case *rawevent.XIMotion:
		p.onMotion(t, sink)
	case *rawevent.XIEnter:
		p.onEnter(t, sink)
	case *rawevent.XILeave:
		p.setTimestamp(t.Time)
		// can arrive for a window that was already destroyed
		if p.windows.Exists(t.Window) {
			emitWin(sink, t.Window, &event.CursorLeft{DeviceId: event.DeviceId(t.DeviceId)})
		}
	case *rawevent.XIFocusIn:
		p.onFocusIn(t, sink)
	case *rawevent.XIFocusOut:
		p.onFocusOut(t, sink)
	case *rawevent.XITouch:
		p.onTouch(t, sink)

	case *rawevent.XIRawButton:
		p.onRawButton(t, sink)
	case *rawevent.XIRawMotion:
		p.onRawMotion(t, sink)
	case *rawevent.XIRawKey:
		p.onRawKey(t, sink)
	case *rawevent.XIHierarchy:
		p.onHierarchy(t, sink)

	case *rawevent.XkbNewKeyboard:
		p.setTimestamp(t.Time)
		if t.DeviceId == p.kb.CoreKeyboardId && (t.KeycodesChanged || t.GeometryChanged) {
			p.kb.KeymapChanged()
		}
	case *rawevent.XkbState:
		p.onXkbState(t, sink)

	case *rawevent.RandrNotify:
		p.geom.OnMonitorsChanged(sink)
	}

	p.ime.Pump(sink)
}

//----------

func (p *Processor) ActiveWindow() (xproto.Window, bool) {
	return p.active, p.hasActive
}

func (p *Processor) IsComposing() bool {
	return p.ime.IsComposing()
}

// Time of the last event that carried one.
func (p *Processor) Timestamp() xproto.Timestamp {
	return p.timestamp
}

func (p *Processor) setTimestamp(t xproto.Timestamp) {
	if t != 0 {
		p.timestamp = t
	}
}

//----------

func (p *Processor) onClientMessage(ev *rawevent.ClientMessage, sink event.Sink) {
	switch {
	case ev.Type == p.atoms.WMProtocols && xproto.Atom(ev.Data[0]) == p.atoms.WMDeleteWindow:
		emitWin(sink, ev.Window, &event.CloseRequested{})
	case ev.Type == p.atoms.WMProtocols && xproto.Atom(ev.Data[0]) == p.atoms.NetWMPing:
		must(p.conn.ReplyPing(ev), "failed to reply to _NET_WM_PING")
	case p.dnd.IsDndMessage(ev.Type):
		p.dnd.OnClientMessage(ev.Window, ev.Type, ev.Data, sink)
	}
}

func (p *Processor) onMapNotify(ev *rawevent.MapNotify, sink event.Sink) {
	// re-issue the focus state, there is no create notify to rely on
	focus := false
	if w, ok := p.windows.Lookup(ev.Window); ok {
		focus = w.HasFocus()
	}
	emitWin(sink, ev.Window, &event.Focused{Focused: focus})
}

func (p *Processor) onDestroyNotify(ev *rawevent.DestroyNotify, sink event.Sink) {
	// destroyed without being closed first
	p.windows.Remove(ev.Window)
	p.ime.RemoveContext(ev.Window)
	emitWin(sink, ev.Window, &event.Destroyed{})
}

//----------

// Compose sequences always get the key release events.
func (p *Processor) onKey(ev *rawevent.Key, sink event.Sink) {
	p.setTimestamp(ev.Time)
	if !p.hasActive {
		return
	}
	kc := uint32(ev.Keycode)
	repeat := p.kb.DetectRepeat(kc, ev.Press)
	if kc == 0 {
		return
	}
	k := ime.KeyInput{Keycode: ev.Keycode, Mods: p.kb.Mods(), Group: p.kb.Group(), Press: ev.Press}
	if p.ime.FilterKey(p.active, k) || p.ime.IsComposing() {
		return
	}
	ke := p.kb.ProcessKeyEvent(kc, elementState(ev.Press), repeat)
	emitWin(sink, p.active, &event.KeyboardInput{
		DeviceId: event.DeviceId(devices.VirtualCoreKeyboard),
		Event:    ke,
	})
}

func (p *Processor) onXkbState(ev *rawevent.XkbState, sink event.Sink) {
	p.setTimestamp(ev.Time)
	prev := p.kb.Mods()
	p.kb.UpdateModifiers(ev.BaseMods, ev.LatchedMods, ev.LockedMods, ev.BaseGroup, ev.LatchedGroup, ev.LockedGroup)
	mods := p.kb.Mods()
	if mods != prev && p.hasActive {
		emitWin(sink, p.active, &event.ModifiersChanged{Mods: mods})
	}
}

//----------

func (p *Processor) onFocusIn(ev *rawevent.XIFocusIn, sink event.Sink) {
	p.setTimestamp(ev.Time)
	p.ime.FocusWindow(ev.Window)
	if p.hasActive && p.active == ev.Window {
		return
	}
	// focus out semantics for the previous window, if its focus out was
	// never received
	if p.hasActive {
		p.deactivate(p.active, sink)
	}
	p.active, p.hasActive = ev.Window, true

	if w, ok := p.windows.Lookup(ev.Window); ok {
		w.SetFocus(true)
	}
	emitWin(sink, ev.Window, &event.Focused{Focused: true})

	if mods := p.kb.Mods(); !mods.IsEmpty() {
		emitWin(sink, ev.Window, &event.ModifiersChanged{Mods: mods})
	}

	// the event device is a keyboard, the cursor belongs to its pair
	pointer, ok := p.devices.Attachment(ev.DeviceId)
	if !ok {
		pointer = devices.VirtualCorePointer
	}
	emitWin(sink, ev.Window, &event.CursorMoved{
		DeviceId: event.DeviceId(pointer),
		Position: event.PositionF{X: ev.EventX, Y: ev.EventY},
	})

	p.emitPressedKeys(ev.Window, event.Pressed, sink)
}

func (p *Processor) onFocusOut(ev *rawevent.XIFocusOut, sink event.Sink) {
	p.setTimestamp(ev.Time)
	if !p.windows.Exists(ev.Window) {
		return
	}
	p.ime.UnfocusWindow(ev.Window)
	if p.hasActive && p.active == ev.Window {
		p.deactivate(ev.Window, sink)
	}
}

func (p *Processor) deactivate(win xproto.Window, sink event.Sink) {
	p.active, p.hasActive = 0, false

	p.emitPressedKeys(win, event.Released, sink)
	// repeat detection starts over when the focus comes back
	p.kb.ClearHeldKey()

	emitWin(sink, win, &event.ModifiersChanged{Mods: event.ModNone})
	if w, ok := p.windows.Lookup(win); ok {
		w.SetFocus(false)
	}
	emitWin(sink, win, &event.Focused{Focused: false})
}

// Synthetic key events for the keys currently down, so the application
// sees a consistent key state across focus changes.
func (p *Processor) emitPressedKeys(win xproto.Window, state event.ElementState, sink event.Sink) {
	keys, err := p.conn.PressedKeys()
	must(err, "failed to query keymap")
	for _, kc := range keys {
		if !keyboard.ValidKeycode(uint32(kc)) {
			continue
		}
		ke := p.kb.ProcessKeyEvent(uint32(kc), state, false)
		emitWin(sink, win, &event.KeyboardInput{
			DeviceId:    event.DeviceId(devices.VirtualCoreKeyboard),
			Event:       ke,
			IsSynthetic: true,
		})
	}
}

//----------

func (p *Processor) onHierarchy(ev *rawevent.XIHierarchy, sink event.Sink) {
	p.setTimestamp(ev.Time)
	masterMask := rawevent.MasterAdded | rawevent.MasterRemoved
	slaveMask := rawevent.SlaveAdded | rawevent.SlaveRemoved
	for _, info := range ev.Infos {
		switch {
		case info.Flags&masterMask != 0:
			p.devices.Init(info.DeviceId)
			emitDev(sink, info.DeviceId, &event.DeviceAdded{})
		case info.Flags&slaveMask != 0:
			// emitted before the entry is removed
			emitDev(sink, info.DeviceId, &event.DeviceRemoved{})
			p.devices.Remove(info.DeviceId)
		}
	}
}

//----------

func emitWin(sink event.Sink, win xproto.Window, ev interface{}) {
	sink(&event.WindowEvent{WindowId: event.WindowId(win), Event: ev})
}

func emitDev(sink event.Sink, id rawevent.DeviceId, ev interface{}) {
	sink(&event.DeviceEvent{DeviceId: event.DeviceId(id), Event: ev})
}

func elementState(press bool) event.ElementState {
	if press {
		return event.Pressed
	}
	return event.Released
}

func must(err error, msg string) {
	if err != nil {
		panic(errors.Wrap(err, msg))
	}
}
