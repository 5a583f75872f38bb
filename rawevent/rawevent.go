// Decoded X11 protocol events, as handed to the event processor.
//
// The structs use the xproto vocabulary (windows, atoms, keycodes,
// timestamps). XInput2 and XKB events are represented here already decoded:
// fixed point values are converted to float64 by whoever builds the event.
package rawevent

import (
	"github.com/BurntSushi/xgb/xproto"
)

type Event interface{}

type DeviceId uint16

//----------

type ClientMessage struct {
	Window xproto.Window
	Type   xproto.Atom
	Format byte
	Data   [5]uint32
}

type SelectionNotify struct {
	Time      xproto.Timestamp
	Requestor xproto.Window
	Selection xproto.Atom
	Target    xproto.Atom
	Property  xproto.Atom
}

// Synthetic is true when the position is relative to the root window (sent
// by the window manager), false when relative to the parent window.
type ConfigureNotify struct {
	Window    xproto.Window
	X, Y      int16
	Width     uint16
	Height    uint16
	Synthetic bool
}

type ReparentNotify struct {
	Window xproto.Window
	Parent xproto.Window
}

type MapNotify struct {
	Window xproto.Window
}

type DestroyNotify struct {
	Window xproto.Window
}

type VisibilityNotify struct {
	Window xproto.Window
	State  byte // xproto.Visibility*
}

type Expose struct {
	Window xproto.Window
	Count  uint16
}

//----------

// Core protocol key event.
type Key struct {
	Press   bool
	Window  xproto.Window
	Keycode xproto.Keycode
	Time    xproto.Timestamp
}

//----------

const PointerEmulated uint32 = 1 << 16 // XIPointerEmulated

type XIButton struct {
	Press    bool
	DeviceId DeviceId
	SourceId DeviceId
	Window   xproto.Window
	Detail   uint32
	EventX   float64
	EventY   float64
	Flags    uint32
	Time     xproto.Timestamp
}

func (ev *XIButton) Emulated() bool {
	return ev.Flags&PointerEmulated != 0
}

type XIMotion struct {
	DeviceId DeviceId
	SourceId DeviceId
	Window   xproto.Window
	EventX   float64
	EventY   float64
	Valuators
	Time xproto.Timestamp
}

// Valuators holds the set valuator bits and the values for the set bits, in
// bit order.
type Valuators struct {
	Mask   []uint32
	Values []float64
}

// Each calls fn for each set valuator bit with its value.
func (v *Valuators) Each(fn func(axis int, value float64)) {
	k := 0
	for i, w := range v.Mask {
		for b := 0; b < 32; b++ {
			if w&(1<<uint(b)) == 0 {
				continue
			}
			if k >= len(v.Values) {
				return
			}
			fn(i*32+b, v.Values[k])
			k++
		}
	}
}

type XIEnter struct {
	DeviceId DeviceId
	SourceId DeviceId
	Window   xproto.Window
	EventX   float64
	EventY   float64
	Time     xproto.Timestamp
}

type XILeave struct {
	DeviceId DeviceId
	SourceId DeviceId
	Window   xproto.Window
	Time     xproto.Timestamp
}

type XIFocusIn struct {
	DeviceId DeviceId
	Window   xproto.Window
	EventX   float64
	EventY   float64
	Time     xproto.Timestamp
}

type XIFocusOut struct {
	DeviceId DeviceId
	Window   xproto.Window
	Time     xproto.Timestamp
}

//----------

type TouchPhase int

const (
	TouchBegin TouchPhase = iota
	TouchUpdate
	TouchEnd
)

type XITouch struct {
	Phase    TouchPhase
	DeviceId DeviceId
	Window   xproto.Window
	Detail   uint32 // touch id
	EventX   float64
	EventY   float64
	Time     xproto.Timestamp
}

//----------

type XIRawButton struct {
	Press    bool
	DeviceId DeviceId
	Detail   uint32
	Flags    uint32
	Time     xproto.Timestamp
}

func (ev *XIRawButton) Emulated() bool {
	return ev.Flags&PointerEmulated != 0
}

type XIRawMotion struct {
	DeviceId DeviceId
	Valuators
	Time xproto.Timestamp
}

type XIRawKey struct {
	Press    bool
	DeviceId DeviceId
	SourceId DeviceId
	Detail   uint32
	Time     xproto.Timestamp
}

//----------

type HierarchyFlags uint32

const (
	MasterAdded HierarchyFlags = 1 << iota
	MasterRemoved
	SlaveAdded
	SlaveRemoved
	SlaveAttached
	SlaveDetached
	DeviceEnabled
	DeviceDisabled
)

type HierarchyInfo struct {
	DeviceId DeviceId
	Flags    HierarchyFlags
}

type XIHierarchy struct {
	Infos []HierarchyInfo
	Time  xproto.Timestamp
}

//----------

type XkbNewKeyboard struct {
	DeviceId        int32
	KeycodesChanged bool
	GeometryChanged bool
	Time            xproto.Timestamp
}

type XkbState struct {
	DeviceId     int32
	BaseMods     uint16
	LatchedMods  uint16
	LockedMods   uint16
	BaseGroup    int16
	LatchedGroup int16
	LockedGroup  int16
	Time         xproto.Timestamp
}

//----------

type RandrNotify struct {
	Time xproto.Timestamp
}
