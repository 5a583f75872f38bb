package xdriver

import (
	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/jmigpin/xevents/driver/xdriver/frame"
	"github.com/jmigpin/xevents/driver/xdriver/monitors"
	"github.com/jmigpin/xevents/event"
	"github.com/jmigpin/xevents/window"
)

// Window geometry collaborator.
type Backend struct {
	conn     *xgb.Conn
	frame    *frame.Frame
	monitors *monitors.List
}

func (b *Backend) FrameExtents(win xproto.Window) window.FrameExtents {
	return b.frame.FrameExtents(win)
}

func (b *Backend) MonitorForRect(r window.Rect) (window.Monitor, error) {
	return b.monitors.MonitorForRect(r)
}

func (b *Backend) RequestInnerSize(win xproto.Window, width, height uint32) error {
	mask := uint16(xproto.ConfigWindowWidth | xproto.ConfigWindowHeight)
	values := []uint32{width, height}
	return xproto.ConfigureWindowChecked(b.conn, win, mask, values).Check()
}

func (b *Backend) UpdateSizeHints(win xproto.Window, min, max *event.Size) error {
	return b.frame.UpdateSizeHints(win, min, max)
}

func (b *Backend) WMNameIsOneOf(names []string) bool {
	return b.frame.WMNameIsOneOf(names)
}

func (b *Backend) UpdateCachedWMInfo() {
	b.frame.UpdateCachedWMInfo()
}
