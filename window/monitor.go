package window

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/jmigpin/xevents/event"
)

type Rect struct {
	X, Y          int32
	Width, Height uint32
}

// Area of the intersection of both rectangles.
func (r Rect) OverlapArea(r2 Rect) uint64 {
	x0 := max(r.X, r2.X)
	y0 := max(r.Y, r2.Y)
	x1 := min(r.X+int32(r.Width), r2.X+int32(r2.Width))
	y1 := min(r.Y+int32(r.Height), r2.Y+int32(r2.Height))
	if x1 <= x0 || y1 <= y0 {
		return 0
	}
	return uint64(x1-x0) * uint64(y1-y0)
}

//----------

type Monitor struct {
	Name        string
	Rect        Rect
	ScaleFactor float64
	// Placeholder returned when no monitor could be determined. Must not
	// be used to update cached state.
	Dummy bool
}

func DummyMonitor() Monitor {
	return Monitor{Name: "<dummy monitor>", ScaleFactor: 1, Dummy: true}
}

//----------

// Size of the window manager decorations around the client area.
type FrameExtents struct {
	Left, Right, Top, Bottom uint32
}

func (fe FrameExtents) InnerPosToOuter(p event.Position) event.Position {
	return event.Position{X: p.X - int32(fe.Left), Y: p.Y - int32(fe.Top)}
}

func (fe FrameExtents) InnerSizeToOuter(sz event.Size) event.Size {
	return event.Size{
		Width:  sz.Width + fe.Left + fe.Right,
		Height: sz.Height + fe.Top + fe.Bottom,
	}
}

//----------

type Backend interface {
	// Best effort, never fails (falls back to a heuristic).
	FrameExtents(win xproto.Window) FrameExtents
	// Monitor that contains most of the rect. Can be a dummy monitor.
	MonitorForRect(r Rect) (Monitor, error)
	RequestInnerSize(win xproto.Window, width, height uint32) error
	UpdateSizeHints(win xproto.Window, min, max *event.Size) error
	WMNameIsOneOf(names []string) bool
	UpdateCachedWMInfo()
}

type MonitorList interface {
	// Drops the cached list and returns it, if there was one.
	Invalidate() ([]Monitor, bool)
	Available() ([]Monitor, error)
}
