package window

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/jmigpin/xevents/event"
	"github.com/jmigpin/xevents/rawevent"
	"github.com/pkg/errors"
)

// Translates configure notifications and monitor changes into resize, move
// and scale factor events. Window locks are never held while emitting.
type Reconciler struct {
	reg      *Registry
	backend  Backend
	monitors MonitorList

	// Window managers that ignore resize requests during live interaction.
	// The dpi adjusted size is re-requested until it is applied.
	ResizeRetryWMs []string
}

func NewReconciler(reg *Registry, backend Backend, monitors MonitorList) *Reconciler {
	return &Reconciler{
		reg:            reg,
		backend:        backend,
		monitors:       monitors,
		ResizeRetryWMs: []string{"Xfwm4"},
	}
}

//----------

func (rc *Reconciler) OnConfigureNotify(ev *rawevent.ConfigureNotify, emit event.Sink) {
	w, ok := rc.reg.Lookup(ev.Window)
	if !ok {
		return
	}
	send := func(e interface{}) {
		emit(&event.WindowEvent{WindowId: event.WindowId(w.Id), Event: e})
	}

	newSize := event.Size{Width: uint32(ev.Width), Height: uint32(ev.Height)}
	newPos := event.Position{X: int32(ev.X), Y: int32(ev.Y)}

	// synthetic: position is root relative (sent by the window manager)
	// real: position is relative to the parent (frame) window
	resized, moved := false, false
	w.Locked(func(s *SharedState) {
		resized = MaybeChange(&s.Size, newSize)
		if ev.Synthetic {
			moved = MaybeChange(&s.InnerPosition, newPos)
		} else if MaybeChange(&s.InnerPositionRelParent, newPos) {
			// the frame changed: recompute on the next synthetic event
			s.InnerPosition = nil
			s.FrameExtents = nil
		}
	})

	// outer position
	var outer event.Position
	w.Locked(func(s *SharedState) {
		if s.Position != nil && !moved {
			outer = *s.Position
			return
		}
		if s.FrameExtents == nil {
			fe := rc.backend.FrameExtents(w.Id)
			s.FrameExtents = &fe
		}
		outer = s.FrameExtents.InnerPosToOuter(newPos)
		s.Position = &outer
	})
	if moved {
		send(&event.Moved{Position: outer})
	}

	if ev.Synthetic {
		if rc.scaleFactorCheck(w, outer, newSize, send) {
			resized = true
		}
	}

	// some window managers ignore the dpi adjusted resize while the window
	// is being dragged, keep requesting it
	var retry *event.Size
	w.Locked(func(s *SharedState) {
		if s.DpiAdjusted == nil {
			return
		}
		if *s.DpiAdjusted == newSize || !rc.backend.WMNameIsOneOf(rc.ResizeRetryWMs) {
			s.DpiAdjusted = nil
			return
		}
		sz := *s.DpiAdjusted
		retry = &sz
	})
	if retry != nil {
		must(w.RequestInnerSize(retry.Width, retry.Height), "failed to request inner size")
	}

	if resized {
		send(&event.Resized{Size: newSize})
	}
}

// Returns true if a resize was requested due to a scale factor change.
func (rc *Reconciler) scaleFactorCheck(w *Window, outer event.Position, newSize event.Size, send func(interface{})) bool {
	var lastSF, newSF float64
	var oldSize, suggested event.Size
	var monErr, hintsErr error
	w.Locked(func(s *SharedState) {
		// keep using an existing adjusted size, otherwise dragging across
		// monitors without dropping the window breaks the resizing
		oldSize = newSize
		if s.DpiAdjusted != nil {
			oldSize = *s.DpiAdjusted
		}

		lastSF = s.LastMonitor.ScaleFactor
		newSF = lastSF
		r := Rect{X: outer.X, Y: outer.Y, Width: newSize.Width, Height: newSize.Height}
		m, err := rc.backend.MonitorForRect(r)
		if err != nil {
			monErr = err
			return
		}
		if !m.Dummy {
			s.LastMonitor = m
			newSF = m.ScaleFactor
		}
		if lastSF != newSF {
			suggested, hintsErr = w.adjustForDPI(s, lastSF, newSF, oldSize)
		}
	})
	must(monErr, "failed to find monitor for window")
	must(hintsErr, "failed to update size hints")
	if lastSF == newSF {
		return false
	}

	inner := suggested
	send(&event.ScaleFactorChanged{ScaleFactor: newSF, InnerSize: &inner})
	if inner == oldSize {
		return false
	}
	must(w.RequestInnerSize(inner.Width, inner.Height), "failed to request inner size")
	w.Locked(func(s *SharedState) {
		s.DpiAdjusted = &inner
	})
	return true
}

//----------

// The window manager might have been replaced.
func (rc *Reconciler) OnReparentNotify(win xproto.Window) {
	rc.backend.UpdateCachedWMInfo()
	if w, ok := rc.reg.Lookup(win); ok {
		w.InvalidateFrameExtents()
	}
}

//----------

// Monitor hot plug: windows on a monitor whose scale factor changed get a
// scale factor event, and a resize if the receiver changed the suggested
// size.
func (rc *Reconciler) OnMonitorsChanged(emit event.Sink) {
	prev, ok := rc.monitors.Invalidate()
	if !ok {
		return
	}
	list, err := rc.monitors.Available()
	must(err, "failed to get monitor list")

	for _, nm := range list {
		// the previous list can be empty (ex: the only monitor reconnected)
		prevSF, found := scaleFactorByName(prev, nm.Name)
		if found && prevSF == nm.ScaleFactor {
			continue
		}
		for _, w := range rc.reg.Live() {
			rc.monitorScaleChanged(w, nm, prevSF, found, emit)
		}
	}
}

func (rc *Reconciler) monitorScaleChanged(w *Window, nm Monitor, prevSF float64, hasPrev bool, emit event.Sink) {
	onMonitor := false
	var size, suggested event.Size
	var err error
	w.Locked(func(s *SharedState) {
		if s.LastMonitor.Name != nm.Name {
			return
		}
		onMonitor = true
		if s.Size != nil {
			size = *s.Size
		}
		base := prevSF
		if !hasPrev {
			base = s.LastMonitor.ScaleFactor
		}
		suggested, err = w.adjustForDPI(s, base, nm.ScaleFactor, size)
		s.LastMonitor = nm
	})
	if !onMonitor {
		return
	}
	must(err, "failed to update size hints")

	inner := suggested
	emit(&event.WindowEvent{
		WindowId: event.WindowId(w.Id),
		Event:    &event.ScaleFactorChanged{ScaleFactor: nm.ScaleFactor, InnerSize: &inner},
	})
	if inner != size {
		must(w.RequestInnerSize(inner.Width, inner.Height), "failed to request inner size")
	}
}

func scaleFactorByName(list []Monitor, name string) (float64, bool) {
	for _, m := range list {
		if m.Name == name {
			return m.ScaleFactor, true
		}
	}
	return 0, false
}

//----------

func must(err error, msg string) {
	if err != nil {
		panic(errors.Wrap(err, msg))
	}
}
