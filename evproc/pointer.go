package evproc

import (
	"github.com/jmigpin/xevents/devices"
	"github.com/jmigpin/xevents/event"
	"github.com/jmigpin/xevents/keyboard"
	"github.com/jmigpin/xevents/rawevent"
	"github.com/jmigpin/xevents/touch"
)

func (p *Processor) onButton(ev *rawevent.XIButton, sink event.Sink) {
	p.setTimestamp(ev.Time)
	// touch emulation: the touch events are delivered instead
	if ev.Emulated() {
		return
	}
	devId := event.DeviceId(ev.DeviceId)
	state := elementState(ev.Press)
	input := func(b event.MouseButton, other uint16) {
		emitWin(sink, ev.Window, &event.MouseInput{
			DeviceId: devId,
			State:    state,
			Button:   b,
			Other:    other,
		})
	}
	switch ev.Detail {
	case 1:
		input(event.ButtonLeft, 0)
	case 2:
		input(event.ButtonMiddle, 0)
	case 3:
		input(event.ButtonRight, 0)
	case 4, 5, 6, 7:
		// wheel buttons come in press/release pairs
		if !ev.Press {
			return
		}
		emitWin(sink, ev.Window, &event.MouseWheel{
			DeviceId: devId,
			Delta:    wheelButtonDelta(ev.Detail),
			Phase:    event.TouchMoved,
		})
	case 8:
		input(event.ButtonBack, 0)
	case 9:
		input(event.ButtonForward, 0)
	default:
		input(event.ButtonOther, uint16(ev.Detail))
	}
}

func wheelButtonDelta(b uint32) event.LineDelta {
	switch b {
	case 4:
		return event.LineDelta{Y: 1}
	case 5:
		return event.LineDelta{Y: -1}
	case 6:
		return event.LineDelta{X: 1}
	default:
		return event.LineDelta{X: -1}
	}
}

//----------

func (p *Processor) onMotion(ev *rawevent.XIMotion, sink event.Sink) {
	p.setTimestamp(ev.Time)
	devId := event.DeviceId(ev.DeviceId)

	w, ok := p.windows.Lookup(ev.Window)
	if !ok {
		return
	}
	pos := event.PositionF{X: ev.EventX, Y: ev.EventY}
	if w.UpdateCursorPos(pos) {
		emitWin(sink, ev.Window, &event.CursorMoved{DeviceId: devId, Position: pos})
	}

	dev, ok := p.devices.Get(ev.SourceId)
	if !ok {
		return
	}
	ev.Valuators.Each(func(axis int, value float64) {
		info := dev.ScrollAxis(axis)
		if info == nil {
			emitWin(sink, ev.Window, &event.AxisMotion{DeviceId: devId, Axis: uint32(axis), Value: value})
			return
		}
		delta := (value - info.Position) / info.Increment
		info.Position = value
		// vertical scroll is inverted relative to the line delta
		var ld event.LineDelta
		if info.Orientation == devices.Horizontal {
			ld = event.LineDelta{X: float32(-delta)}
		} else {
			ld = event.LineDelta{Y: float32(-delta)}
		}
		emitWin(sink, ev.Window, &event.MouseWheel{DeviceId: devId, Delta: ld, Phase: event.TouchMoved})
	})
}

func (p *Processor) onEnter(ev *rawevent.XIEnter, sink event.Sink) {
	p.setTimestamp(ev.Time)
	p.devices.ResetScrollPositions(ev.SourceId)
	if !p.windows.Exists(ev.Window) {
		return
	}
	devId := event.DeviceId(ev.DeviceId)
	emitWin(sink, ev.Window, &event.CursorEntered{DeviceId: devId})
	emitWin(sink, ev.Window, &event.CursorMoved{
		DeviceId: devId,
		Position: event.PositionF{X: ev.EventX, Y: ev.EventY},
	})
}

//----------

func (p *Processor) onTouch(ev *rawevent.XITouch, sink event.Sink) {
	p.setTimestamp(ev.Time)
	if !p.windows.Exists(ev.Window) {
		return
	}
	var phase event.TouchPhase
	switch ev.Phase {
	case rawevent.TouchBegin:
		phase = event.TouchStarted
	case rawevent.TouchUpdate:
		phase = event.TouchMoved
	default:
		phase = event.TouchEnded
	}
	id := uint64(ev.Detail)
	loc := event.PositionF{X: ev.EventX, Y: ev.EventY}

	// only the first active touch moves the cursor
	if p.touch.IsFirstTouch(id, phase) {
		emitWin(sink, ev.Window, &event.CursorMoved{
			DeviceId: event.DeviceId(devices.VirtualCorePointer),
			Position: loc,
		})
	}
	emitWin(sink, ev.Window, &event.Touch{
		DeviceId: event.DeviceId(ev.DeviceId),
		Phase:    phase,
		Location: loc,
		Id:       id,
	})
}

// Touch tracker state, for inspection.
func (p *Processor) TouchTracker() *touch.Tracker {
	return &p.touch
}

//----------

func (p *Processor) onRawButton(ev *rawevent.XIRawButton, sink event.Sink) {
	p.setTimestamp(ev.Time)
	if ev.Emulated() {
		return
	}
	emitDev(sink, ev.DeviceId, &event.DeviceButton{Button: ev.Detail, State: elementState(ev.Press)})
}

// Every device with analog axes is assumed to be a pointing device
// reporting relative motion.
func (p *Processor) onRawMotion(ev *rawevent.XIRawMotion, sink event.Sink) {
	p.setTimestamp(ev.Time)
	var mdx, mdy float64
	var sdx, sdy float32
	ev.Valuators.Each(func(axis int, value float64) {
		switch axis {
		case 0:
			mdx = value
		case 1:
			mdy = value
		case 2:
			sdx = float32(value)
		case 3:
			sdy = float32(value)
		}
		emitDev(sink, ev.DeviceId, &event.DeviceMotion{Axis: uint32(axis), Value: value})
	})
	if mdx != 0 || mdy != 0 {
		emitDev(sink, ev.DeviceId, &event.DeviceMouseMotion{DX: mdx, DY: mdy})
	}
	if sdx != 0 || sdy != 0 {
		emitDev(sink, ev.DeviceId, &event.DeviceMouseWheel{Delta: event.LineDelta{X: sdx, Y: sdy}})
	}
}

func (p *Processor) onRawKey(ev *rawevent.XIRawKey, sink event.Sink) {
	p.setTimestamp(ev.Time)
	if ev.Detail < keyboard.KeycodeOffset {
		return
	}
	emitDev(sink, ev.SourceId, &event.DeviceKey{
		Keycode: ev.Detail,
		Key:     p.kb.BaseKey(ev.Detail),
		State:   elementState(ev.Press),
	})
}
