package main

import (
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jmigpin/xevents/config"
	"github.com/jmigpin/xevents/event"
	"github.com/jmigpin/xevents/trace"
	"github.com/jmigpin/xevents/util/evreg"
	"github.com/jmigpin/xevents/util/iout"
	"github.com/jmigpin/xevents/util/logutil"
)

func run(opts *options) (err error) {
	mc := iout.NewMultiClose()
	defer func() {
		if err2 := mc.CloseAll(); err == nil {
			err = err2
		}
	}()

	loader := config.NewLoader(opts.config)
	cfg, err := loader.Load()
	if err != nil {
		return err
	}
	mc.Add(loader)
	applyOptions(cfg, opts)

	levelVar := &slog.LevelVar{}
	lc := cfg.LogConfig()
	lc.LevelVar = levelVar
	log, logCloser, err := logutil.New(lc)
	if err != nil {
		return err
	}
	mc.Add(logCloser)
	if cfg.UI.TUI && cfg.Log.File == "" {
		// stderr belongs to the terminal ui
		log = logutil.Discard()
	}

	loader.OnChange(func(c *config.Config) {
		levelVar.Set(c.LogConfig().Level)
		log.Info("config reloaded", "level", c.Log.Level)
	})
	if err := loader.Watch(); err != nil {
		log.Warn("config watch", "err", err)
	}

	a, err := newApp(cfg, log)
	if err != nil {
		return err
	}
	mc.Add(a)

	reg := &evreg.Register{KindOf: eventKind}
	a.register(reg)
	reg.Add(evreg.AnyKind, func(ev event.Event) {
		log.Info("event", "kind", eventKind(ev), "event", ev)
	})

	if cfg.Trace.Path != "" {
		rec, err := trace.Open(cfg.Trace.Path, cfg.Display)
		if err != nil {
			return err
		}
		mc.Add(rec)
		log.Info("recording", "path", cfg.Trace.Path, "session", rec.Session())
		var r *evreg.Regist
		r = reg.Add(evreg.AnyKind, func(ev event.Event) {
			if err := rec.Record(ev); err != nil {
				log.Error("recording stopped", "err", err)
				r.Unregister()
			}
		})
	}

	if cfg.UI.TUI {
		p := tea.NewProgram(newModel(200))
		done := make(chan struct{})
		go func() {
			defer close(done)
			if _, err := p.Run(); err != nil {
				log.Error("tui", "err", err)
			}
			// unblocks the event loop
			_ = a.conn.Close()
		}()
		defer func() {
			p.Quit()
			<-done
		}()
		reg.Add(evreg.AnyKind, func(ev event.Event) {
			p.Send(eventMsg{kind: eventKind(ev), text: describe(ev)})
		})
	}

	return a.loop(reg.Sink())
}

func applyOptions(cfg *config.Config, opts *options) {
	if opts.display != "" {
		cfg.Display = opts.display
	}
	if opts.record != "" {
		cfg.Trace.Path = opts.record
	}
	if opts.tuiSet {
		cfg.UI.TUI = opts.tui
	}
}

// Kind of the inner event for window and device events.
func eventKind(ev event.Event) string {
	switch t := ev.(type) {
	case *event.WindowEvent:
		return trace.KindOf(t.Event)
	case *event.DeviceEvent:
		return trace.KindOf(t.Event)
	}
	return trace.KindOf(ev)
}

func describe(ev event.Event) string {
	if s, ok := ev.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T%+v", ev, ev)
}
