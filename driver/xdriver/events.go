package xdriver

import (
	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/jmigpin/xevents/devices"
	"github.com/jmigpin/xevents/rawevent"
)

// Converts core protocol events into the decoded XInput2/XKB shaped events.
// Core events always come from the virtual core devices.
type translator struct {
	rootOrigin func(xproto.Window) (int16, int16, bool)
	// pointer position relative to the window, optional
	pointer func(xproto.Window) (int16, int16, bool)

	state struct {
		mods  uint16
		group int16
		ok    bool
	}
	root struct {
		x, y int16
		ok   bool
	}
}

func newTranslator(rootOrigin func(xproto.Window) (int16, int16, bool)) *translator {
	return &translator{rootOrigin: rootOrigin}
}

const (
	pointerId  = rawevent.DeviceId(devices.VirtualCorePointer)
	keyboardId = rawevent.DeviceId(devices.VirtualCoreKeyboard)
)

func (tr *translator) translate(ev xgb.Event) []rawevent.Event {
	switch t := ev.(type) {
	case xproto.KeyPressEvent:
		return tr.key(true, xproto.KeyReleaseEvent(t))
	case xproto.KeyReleaseEvent:
		return tr.key(false, t)
	case xproto.ButtonPressEvent:
		return tr.button(true, xproto.ButtonReleaseEvent(t))
	case xproto.ButtonReleaseEvent:
		return tr.button(false, t)
	case xproto.MotionNotifyEvent:
		return tr.motion(&t)
	case xproto.EnterNotifyEvent:
		u := tr.stateChange(t.State, t.Time)
		return append(u, &rawevent.XIEnter{
			DeviceId: pointerId,
			SourceId: pointerId,
			Window:   t.Event,
			EventX:   float64(t.EventX),
			EventY:   float64(t.EventY),
			Time:     t.Time,
		})
	case xproto.LeaveNotifyEvent:
		return []rawevent.Event{&rawevent.XILeave{
			DeviceId: pointerId,
			SourceId: pointerId,
			Window:   t.Event,
			Time:     t.Time,
		}}
	case xproto.FocusInEvent:
		if ignoreFocusDetail(t.Detail) {
			return nil
		}
		fi := &rawevent.XIFocusIn{DeviceId: keyboardId, Window: t.Event}
		if tr.pointer != nil {
			if x, y, ok := tr.pointer(t.Event); ok {
				fi.EventX, fi.EventY = float64(x), float64(y)
			}
		}
		return []rawevent.Event{fi}
	case xproto.FocusOutEvent:
		if ignoreFocusDetail(t.Detail) {
			return nil
		}
		return []rawevent.Event{&rawevent.XIFocusOut{
			DeviceId: keyboardId,
			Window:   t.Event,
		}}

	case xproto.ConfigureNotifyEvent: // window structure (position,size,...)
		return []rawevent.Event{tr.configure(&t)}
	case xproto.ReparentNotifyEvent:
		return []rawevent.Event{&rawevent.ReparentNotify{Window: t.Window, Parent: t.Parent}}
	case xproto.MapNotifyEvent: // window mapped (created)
		return []rawevent.Event{&rawevent.MapNotify{Window: t.Window}}
	case xproto.DestroyNotifyEvent:
		return []rawevent.Event{&rawevent.DestroyNotify{Window: t.Window}}
	case xproto.VisibilityNotifyEvent:
		return []rawevent.Event{&rawevent.VisibilityNotify{Window: t.Window, State: t.State}}
	case xproto.ExposeEvent: // region needs paint
		return []rawevent.Event{&rawevent.Expose{Window: t.Window, Count: t.Count}}

	case xproto.ClientMessageEvent:
		return []rawevent.Event{clientMessage(&t)}
	case xproto.SelectionNotifyEvent:
		return []rawevent.Event{&rawevent.SelectionNotify{
			Time:      t.Time,
			Requestor: t.Requestor,
			Selection: t.Selection,
			Target:    t.Target,
			Property:  t.Property,
		}}

	case xproto.MappingNotifyEvent: // keyboard mapping
		if t.Request == xproto.MappingKeyboard || t.Request == xproto.MappingModifier {
			return []rawevent.Event{&rawevent.XkbNewKeyboard{
				DeviceId:        int32(keyboardId),
				KeycodesChanged: true,
			}}
		}
		return nil

	case randr.ScreenChangeNotifyEvent:
		return []rawevent.Event{&rawevent.RandrNotify{Time: t.Timestamp}}
	case randr.NotifyEvent:
		return []rawevent.Event{&rawevent.RandrNotify{}}
	}
	return nil
}

//----------

func (tr *translator) key(press bool, ev xproto.KeyReleaseEvent) []rawevent.Event {
	u := tr.stateChange(ev.State, ev.Time)
	u = append(u, &rawevent.Key{
		Press:   press,
		Window:  ev.Event,
		Keycode: ev.Detail,
		Time:    ev.Time,
	})
	u = append(u, &rawevent.XIRawKey{
		Press:    press,
		DeviceId: keyboardId,
		SourceId: keyboardId,
		Detail:   uint32(ev.Detail),
		Time:     ev.Time,
	})
	return u
}

func (tr *translator) button(press bool, ev xproto.ButtonReleaseEvent) []rawevent.Event {
	u := tr.stateChange(ev.State, ev.Time)
	u = append(u, &rawevent.XIButton{
		Press:    press,
		DeviceId: pointerId,
		SourceId: pointerId,
		Window:   ev.Event,
		Detail:   uint32(ev.Detail),
		EventX:   float64(ev.EventX),
		EventY:   float64(ev.EventY),
		Time:     ev.Time,
	})
	u = append(u, &rawevent.XIRawButton{
		Press:    press,
		DeviceId: pointerId,
		Detail:   uint32(ev.Detail),
		Time:     ev.Time,
	})
	return u
}

func (tr *translator) motion(ev *xproto.MotionNotifyEvent) []rawevent.Event {
	u := tr.stateChange(ev.State, ev.Time)
	u = append(u, &rawevent.XIMotion{
		DeviceId: pointerId,
		SourceId: pointerId,
		Window:   ev.Event,
		EventX:   float64(ev.EventX),
		EventY:   float64(ev.EventY),
		Time:     ev.Time,
	})
	// relative motion from consecutive root positions
	if tr.root.ok {
		dx := float64(ev.RootX) - float64(tr.root.x)
		dy := float64(ev.RootY) - float64(tr.root.y)
		if dx != 0 || dy != 0 {
			u = append(u, &rawevent.XIRawMotion{
				DeviceId: pointerId,
				Valuators: rawevent.Valuators{
					Mask:   []uint32{0b11},
					Values: []float64{dx, dy},
				},
				Time: ev.Time,
			})
		}
	}
	tr.root.x, tr.root.y, tr.root.ok = ev.RootX, ev.RootY, true
	return u
}

// Core events carry the modifiers and group in their state field.
func (tr *translator) stateChange(state uint16, time xproto.Timestamp) []rawevent.Event {
	mods := state & 0xff
	group := int16((state >> 13) & 0x3)
	if tr.state.ok && tr.state.mods == mods && tr.state.group == group {
		return nil
	}
	tr.state.mods, tr.state.group, tr.state.ok = mods, group, true
	return []rawevent.Event{&rawevent.XkbState{
		DeviceId:  int32(keyboardId),
		BaseMods:  mods,
		BaseGroup: group,
		Time:      time,
	}}
}

// The send_event bit is not exposed, so an event is taken as synthetic
// (root relative, sent by the window manager) when its position matches the
// window origin in root coordinates.
func (tr *translator) configure(ev *xproto.ConfigureNotifyEvent) *rawevent.ConfigureNotify {
	synthetic := false
	if x, y, ok := tr.rootOrigin(ev.Window); ok {
		synthetic = x == ev.X && y == ev.Y
	}
	return &rawevent.ConfigureNotify{
		Window:    ev.Window,
		X:         ev.X,
		Y:         ev.Y,
		Width:     ev.Width,
		Height:    ev.Height,
		Synthetic: synthetic,
	}
}

func clientMessage(ev *xproto.ClientMessageEvent) *rawevent.ClientMessage {
	cm := &rawevent.ClientMessage{Window: ev.Window, Type: ev.Type, Format: ev.Format}
	if ev.Format == 32 {
		copy(cm.Data[:], ev.Data.Data32)
	}
	return cm
}

// Focus moving between our window and its children, or following the
// pointer, does not change the focused top level window.
func ignoreFocusDetail(detail byte) bool {
	return detail == xproto.NotifyDetailInferior || detail == xproto.NotifyDetailPointer
}
