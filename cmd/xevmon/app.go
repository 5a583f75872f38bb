package main

import (
	"io"
	"log/slog"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/jmigpin/xevents/config"
	"github.com/jmigpin/xevents/devices"
	"github.com/jmigpin/xevents/dnd"
	"github.com/jmigpin/xevents/driver/ibus"
	"github.com/jmigpin/xevents/driver/xdriver"
	"github.com/jmigpin/xevents/event"
	"github.com/jmigpin/xevents/evproc"
	"github.com/jmigpin/xevents/ime"
	"github.com/jmigpin/xevents/keyboard"
	"github.com/jmigpin/xevents/util/evreg"
	"github.com/jmigpin/xevents/util/iout"
	"github.com/jmigpin/xevents/window"
	"github.com/pkg/errors"
)

type app struct {
	log    *slog.Logger
	conn   *xdriver.Conn
	win    xproto.Window
	proc   *evproc.Processor
	bridge *ime.Bridge
	mc     *iout.MultiClose
	unr    evreg.Unregister

	quit bool
}

func newApp(cfg *config.Config, log *slog.Logger) (*app, error) {
	a := &app{log: log, mc: iout.NewMultiClose()}
	if err := a.init(cfg); err != nil {
		_ = a.mc.CloseAll()
		return nil, err
	}
	return a, nil
}

func (a *app) init(cfg *config.Config) error {
	conn, err := xdriver.NewConn(cfg.Display, a.log)
	if err != nil {
		return err
	}
	a.conn = conn
	a.mc.Add(conn)
	conn.Monitors.ScaleFactor = cfg.Geometry.ScaleFactor

	win, err := conn.CreateWindow("xevmon", 640, 480)
	if err != nil {
		return err
	}
	a.win = win

	backend := conn.Backend()
	monitor, err := backend.MonitorForRect(window.Rect{Width: 640, Height: 480})
	if err != nil {
		a.log.Warn("monitor list", "err", err)
		monitor = window.DummyMonitor()
	}
	windows := window.NewRegistry()
	windows.Add(window.NewWindow(win, backend, monitor))

	devs := devices.NewRegistry(xdriver.CoreDevices{})
	devs.Init(devices.AllDevices)

	var imeBackend ime.Backend
	if cfg.ImeEnabled() {
		ib, err := ibus.Connect(cfg.Display, "xevmon", conn.KMap, a.log)
		if err != nil {
			a.log.Warn("ime disabled", "err", err)
		} else {
			imeBackend = ib
			a.mc.Add(ib)
		}
	}
	a.bridge = ime.NewBridge(imeBackend, cfg.Inbox.ImeRequests)

	rc := window.NewReconciler(windows, backend, conn.Monitors)
	rc.ResizeRetryWMs = cfg.Geometry.ResizeRetryWMs

	a.proc = evproc.NewProcessor(evproc.Deps{
		Atoms:    conn.Wmp.Atoms(),
		Conn:     conn,
		Windows:  windows,
		Devices:  devs,
		Keyboard: keyboard.NewState(conn.KMap, int32(devices.VirtualCoreKeyboard)),
		Dnd:      dnd.NewDnd(conn.Dnd, conn.Dnd.Atoms()),
		Ime:      a.bridge,
		Geometry: rc,
	})
	return nil
}

func (a *app) Close() error {
	return a.mc.CloseAll()
}

//----------

// Callbacks are removed once the window is destroyed.
func (a *app) register(reg *evreg.Register) {
	a.unr.Add(reg.Add("CloseRequested", func(event.Event) {
		if err := a.conn.DestroyWindow(a.win); err != nil {
			a.log.Error("destroy window", "err", err)
			a.quit = true
		}
	}))
	a.unr.Add(reg.Add("Destroyed", func(event.Event) {
		a.unr.UnregisterAll()
		a.quit = true
	}))
	a.unr.Add(reg.Add("Focused", func(ev event.Event) {
		f := ev.(*event.WindowEvent).Event.(*event.Focused)
		a.request(&ime.SetAllowed{Window: a.win, Allowed: f.Focused})
	}))
	// candidate window follows the pointer
	a.unr.Add(reg.Add("CursorMoved", func(ev event.Event) {
		cm := ev.(*event.WindowEvent).Event.(*event.CursorMoved)
		a.request(&ime.SetSpot{Window: a.win, X: int16(cm.Position.X), Y: int16(cm.Position.Y)})
	}))
}

func (a *app) request(req ime.Request) {
	if err := a.bridge.Request(req); err != nil {
		a.log.Debug("ime request dropped", "err", err)
	}
}

// Runs until the window is destroyed or the connection is closed.
func (a *app) loop(sink event.Sink) error {
	for !a.quit {
		ev, err := a.conn.NextEvent()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return errors.Wrap(err, "next event")
		}
		a.proc.ProcessEvent(ev, sink)
	}
	return nil
}
