// Window manager decorations: frame extents, WM name and size hints.
package frame

import (
	"slices"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xrect"
	"github.com/BurntSushi/xgbutil/xwindow"
	"github.com/jmigpin/xevents/event"
	"github.com/jmigpin/xevents/window"
)

type Frame struct {
	xu *xgbutil.XUtil

	mu     sync.Mutex
	wmName string
	hasWM  bool
}

func NewFrame(xu *xgbutil.XUtil) *Frame {
	return &Frame{xu: xu}
}

//----------

// Uses _NET_FRAME_EXTENTS when the window manager sets it; otherwise
// compares the window with its top level ancestor.
func (f *Frame) FrameExtents(win xproto.Window) window.FrameExtents {
	if fe, err := ewmh.FrameExtentsGet(f.xu, win); err == nil {
		return window.FrameExtents{
			Left:   nonNegative(fe.Left),
			Right:  nonNegative(fe.Right),
			Top:    nonNegative(fe.Top),
			Bottom: nonNegative(fe.Bottom),
		}
	}
	inner, err := f.innerRect(win)
	if err != nil {
		return window.FrameExtents{}
	}
	outer, err := xwindow.New(f.xu, win).DecorGeometry()
	if err != nil {
		return window.FrameExtents{}
	}
	return extentsFromGeometry(inner, toRect(outer))
}

func (f *Frame) innerRect(win xproto.Window) (window.Rect, error) {
	geom, err := xproto.GetGeometry(f.xu.Conn(), xproto.Drawable(win)).Reply()
	if err != nil {
		return window.Rect{}, err
	}
	tr, err := xproto.TranslateCoordinates(f.xu.Conn(), win, f.xu.RootWin(), 0, 0).Reply()
	if err != nil {
		return window.Rect{}, err
	}
	r := window.Rect{
		X:      int32(tr.DstX),
		Y:      int32(tr.DstY),
		Width:  uint32(geom.Width),
		Height: uint32(geom.Height),
	}
	return r, nil
}

func extentsFromGeometry(inner, outer window.Rect) window.FrameExtents {
	left := int(inner.X) - int(outer.X)
	top := int(inner.Y) - int(outer.Y)
	right := int(outer.Width) - int(inner.Width) - left
	bottom := int(outer.Height) - int(inner.Height) - top
	return window.FrameExtents{
		Left:   nonNegative(left),
		Right:  nonNegative(right),
		Top:    nonNegative(top),
		Bottom: nonNegative(bottom),
	}
}

func toRect(r xrect.Rect) window.Rect {
	return window.Rect{
		X:      int32(r.X()),
		Y:      int32(r.Y()),
		Width:  uint32(nonNegative(r.Width())),
		Height: uint32(nonNegative(r.Height())),
	}
}

func nonNegative(v int) uint32 {
	if v < 0 {
		return 0
	}
	return uint32(v)
}

//----------

func (f *Frame) WMNameIsOneOf(names []string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.hasWM {
		f.updateWMName()
	}
	return f.wmName != "" && slices.Contains(names, f.wmName)
}

func (f *Frame) UpdateCachedWMInfo() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateWMName()
}

// An empty name is kept when there is no EWMH compliant window manager.
func (f *Frame) updateWMName() {
	name, err := ewmh.GetEwmhWM(f.xu)
	if err != nil {
		name = ""
	}
	f.wmName, f.hasWM = name, true
}

//----------

func (f *Frame) UpdateSizeHints(win xproto.Window, min, max *event.Size) error {
	nh := sizeHints(min, max)
	return icccm.WmNormalHintsSet(f.xu, win, nh)
}

func sizeHints(min, max *event.Size) *icccm.NormalHints {
	nh := &icccm.NormalHints{}
	if min != nil {
		nh.Flags |= icccm.SizeHintPMinSize
		nh.MinWidth, nh.MinHeight = uint(min.Width), uint(min.Height)
	}
	if max != nil {
		nh.Flags |= icccm.SizeHintPMaxSize
		nh.MaxWidth, nh.MaxHeight = uint(max.Width), uint(max.Height)
	}
	return nh
}

// Sets the window title (_NET_WM_NAME and WM_NAME).
func (f *Frame) SetName(win xproto.Window, name string) error {
	if err := ewmh.WmNameSet(f.xu, win, name); err != nil {
		return err
	}
	return icccm.WmNameSet(f.xu, win, name)
}
