// X11 driver: connection setup, window creation and the collaborators used
// by the event processor.
package xdriver

import (
	"io"
	"log/slog"
	"os"
	"runtime"
	"sync"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/jmigpin/xevents/driver/xdriver/dragndrop"
	"github.com/jmigpin/xevents/driver/xdriver/frame"
	"github.com/jmigpin/xevents/driver/xdriver/monitors"
	"github.com/jmigpin/xevents/driver/xdriver/wmprotocols"
	"github.com/jmigpin/xevents/driver/xdriver/xinput"
	"github.com/jmigpin/xevents/rawevent"
	"github.com/jmigpin/xevents/util/logutil"
	"github.com/pkg/errors"
)

type Conn struct {
	XConn  *xgb.Conn
	XU     *xgbutil.XUtil
	Screen *xproto.ScreenInfo

	Dnd      *dragndrop.Transport
	Wmp      *wmprotocols.WMP
	KMap     *xinput.KMap
	Monitors *monitors.List
	Frame    *frame.Frame

	log       *slog.Logger
	tr        *translator
	pending   []rawevent.Event
	closeOnce sync.Once
}

func NewConn(display string, log *slog.Logger) (*Conn, error) {
	if display == "" {
		display = os.Getenv("DISPLAY")
	}
	if display == "" {
		switch runtime.GOOS {
		case "windows":
			display = "127.0.0.1:0.0"
		}
	}

	xconn, err := xgb.NewConnDisplay(display)
	if err != nil {
		if runtime.GOOS == "darwin" {
			err = errors.WithMessage(err, "macOS might need XQuartz installed")
		}
		return nil, errors.Wrap(err, "x conn")
	}

	c := &Conn{XConn: xconn, log: log}
	if err := c.initialize(); err != nil {
		xconn.Close()
		return nil, errors.Wrap(err, "conn init")
	}
	return c, nil
}

func (c *Conn) initialize() error {
	si := xproto.Setup(c.XConn)
	c.Screen = si.DefaultScreen(c.XConn)

	xu, err := xgbutil.NewConnXgb(c.XConn)
	if err != nil {
		return errors.Wrap(err, "xgbutil")
	}
	c.XU = xu

	if c.Dnd, err = dragndrop.NewTransport(c.XConn); err != nil {
		return err
	}
	if c.Wmp, err = wmprotocols.NewWMP(c.XConn, c.Screen.Root); err != nil {
		return errors.Wrap(err, "wm protocols")
	}
	if c.KMap, err = xinput.NewKMap(c.XConn); err != nil {
		return errors.Wrap(err, "keyboard mapping")
	}
	if c.Monitors, err = monitors.NewList(c.XConn, c.Screen.Root); err != nil {
		return err
	}
	if err := c.Monitors.SelectInput(); err != nil {
		return errors.Wrap(err, "randr select input")
	}
	c.Frame = frame.NewFrame(xu)

	c.tr = newTranslator(c.rootOrigin)
	c.tr.pointer = c.pointerPosition
	return nil
}

func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.XConn.Close()
	})
	return nil
}

//----------

// Creates and maps a top level window that takes part in the WM_PROTOCOLS
// and XDND protocols.
func (c *Conn) CreateWindow(title string, width, height uint16) (xproto.Window, error) {
	win, err := xproto.NewWindowId(c.XConn)
	if err != nil {
		return 0, err
	}

	// event mask
	var evMask uint32 = 0 |
		xproto.EventMaskStructureNotify |
		xproto.EventMaskExposure |
		xproto.EventMaskPropertyChange |
		xproto.EventMaskVisibilityChange |
		xproto.EventMaskFocusChange |
		xproto.EventMaskEnterWindow |
		xproto.EventMaskLeaveWindow |
		xproto.EventMaskPointerMotion |
		xproto.EventMaskButtonPress |
		xproto.EventMaskButtonRelease |
		xproto.EventMaskKeyPress |
		xproto.EventMaskKeyRelease |
		0
	// mask/values order is defined by the protocol
	mask := uint32(xproto.CwEventMask)
	values := []uint32{evMask}

	cookie := xproto.CreateWindowChecked(
		c.XConn,
		c.Screen.RootDepth,
		win,
		c.Screen.Root,
		0, 0, width, height,
		0, // border width
		xproto.WindowClassInputOutput,
		c.Screen.RootVisual,
		mask, values)
	if err := cookie.Check(); err != nil {
		return 0, errors.Wrap(err, "create window")
	}

	if err := c.Wmp.SetupWindowProperty(win); err != nil {
		return 0, errors.Wrap(err, "wm protocols property")
	}
	if err := c.Dnd.SetAware(win); err != nil {
		return 0, errors.Wrap(err, "xdnd aware property")
	}
	if err := c.Frame.SetName(win, title); err != nil {
		return 0, errors.Wrap(err, "window name")
	}
	if err := xproto.MapWindowChecked(c.XConn, win).Check(); err != nil {
		return 0, errors.Wrap(err, "map window")
	}
	return win, nil
}

func (c *Conn) DestroyWindow(win xproto.Window) error {
	return xproto.DestroyWindowChecked(c.XConn, win).Check()
}

//----------

// Blocks until the next event. Returns io.EOF once the connection is closed.
func (c *Conn) NextEvent() (rawevent.Event, error) {
	for len(c.pending) == 0 {
		ev, xerr := c.XConn.WaitForEvent()
		if ev == nil && xerr == nil {
			return nil, io.EOF
		}
		if xerr != nil {
			// errors from unchecked requests
			c.log.Warn("x error", "err", xerr)
			continue
		}
		c.pending = c.tr.translate(ev)
		if len(c.pending) == 0 {
			c.log.Debug("unhandled event", "event", logutil.Dump(ev))
		}
	}
	ev := c.pending[0]
	c.pending = c.pending[1:]
	return ev, nil
}

func (c *Conn) rootOrigin(win xproto.Window) (int16, int16, bool) {
	cookie := xproto.TranslateCoordinates(c.XConn, win, c.Screen.Root, 0, 0)
	r, err := cookie.Reply()
	if err != nil {
		return 0, 0, false
	}
	return r.DstX, r.DstY, true
}

// Core focus events carry no pointer position.
func (c *Conn) pointerPosition(win xproto.Window) (int16, int16, bool) {
	r, err := xproto.QueryPointer(c.XConn, win).Reply()
	if err != nil || !r.SameScreen {
		return 0, 0, false
	}
	return r.WinX, r.WinY, true
}

//----------

func (c *Conn) ReplyPing(ev *rawevent.ClientMessage) error {
	return c.Wmp.ReplyPing(ev)
}

func (c *Conn) PressedKeys() ([]xproto.Keycode, error) {
	return xinput.PressedKeys(c.XConn)
}

func (c *Conn) Backend() *Backend {
	return &Backend{conn: c.XConn, frame: c.Frame, monitors: c.Monitors}
}
