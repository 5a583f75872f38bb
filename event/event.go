// Platform independent events produced by the event processor.
package event

import (
	"fmt"
)

type Event interface{}

// Receives events in the order they are produced. Must not re-enter the
// processor that is calling it.
type Sink func(Event)

type WindowId uint32
type DeviceId uint16

//----------

type WindowEvent struct {
	WindowId WindowId
	Event    interface{}
}

func (we *WindowEvent) String() string {
	return fmt.Sprintf("win %d: %s", we.WindowId, describe(we.Event))
}

type DeviceEvent struct {
	DeviceId DeviceId
	Event    interface{}
}

func (de *DeviceEvent) String() string {
	return fmt.Sprintf("dev %d: %s", de.DeviceId, describe(de.Event))
}

func describe(ev interface{}) string {
	return fmt.Sprintf("%T%+v", ev, ev)
}

//----------

type Size struct {
	Width, Height uint32
}
type Position struct {
	X, Y int32
}
type PositionF struct {
	X, Y float64
}

//----------
// window events

type CloseRequested struct{}
type Destroyed struct{}
type RedrawRequested struct{}

type Resized struct{ Size Size }
type Moved struct{ Position Position }

// InnerSize holds the suggested new size and can be overwritten by the
// receiver during the sink call.
type ScaleFactorChanged struct {
	ScaleFactor float64
	InnerSize   *Size
}

type Focused struct{ Focused bool }
type Occluded struct{ Occluded bool }

type KeyboardInput struct {
	DeviceId    DeviceId
	Event       KeyEvent
	IsSynthetic bool
}

type ModifiersChanged struct{ Mods KeyModifiers }

type CursorMoved struct {
	DeviceId DeviceId
	Position PositionF
}
type CursorEntered struct{ DeviceId DeviceId }
type CursorLeft struct{ DeviceId DeviceId }

type MouseInput struct {
	DeviceId DeviceId
	State    ElementState
	Button   MouseButton
	Other    uint16
}

type MouseWheel struct {
	DeviceId DeviceId
	Delta    LineDelta
	Phase    TouchPhase
}

type AxisMotion struct {
	DeviceId DeviceId
	Axis     uint32
	Value    float64
}

type Touch struct {
	DeviceId DeviceId
	Phase    TouchPhase
	Location PositionF
	Id       uint64
}

type HoveredFile struct{ Path string }
type DroppedFile struct{ Path string }
type HoveredFileCancelled struct{}

//----------
// ime (window events)

type ImeEnabled struct{}
type ImeDisabled struct{}

// Cursor is nil when the cursor should be hidden; otherwise it holds the
// byte range [start,end] of the cursor in Text.
type ImePreedit struct {
	Text   string
	Cursor *[2]int
}

type ImeCommit struct{ Text string }

//----------
// device events

type DeviceAdded struct{}
type DeviceRemoved struct{}

type DeviceMotion struct {
	Axis  uint32
	Value float64
}

type DeviceMouseMotion struct{ DX, DY float64 }
type DeviceMouseWheel struct{ Delta LineDelta }

type DeviceButton struct {
	Button uint32
	State  ElementState
}

type DeviceKey struct {
	Keycode uint32
	Key     Key
	State   ElementState
}

//----------

type ElementState bool

const (
	Released ElementState = false
	Pressed  ElementState = true
)

func (s ElementState) String() string {
	if s {
		return "pressed"
	}
	return "released"
}

//----------

type TouchPhase int

const (
	TouchStarted TouchPhase = iota
	TouchMoved
	TouchEnded
	TouchCancelled
)

func (p TouchPhase) String() string {
	switch p {
	case TouchStarted:
		return "started"
	case TouchMoved:
		return "moved"
	case TouchEnded:
		return "ended"
	case TouchCancelled:
		return "cancelled"
	}
	return fmt.Sprintf("touchphase(%d)", int(p))
}

// Lines scrolled, positive Y scrolls up.
type LineDelta struct{ X, Y float32 }
