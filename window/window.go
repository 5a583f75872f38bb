// Window arena, per window shared state, and geometry reconciliation.
package window

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/jmigpin/xevents/event"
)

// Geometry and focus state shared between the event processing goroutine
// and application goroutines. Only accessed with the window lock held.
type SharedState struct {
	Size                   *event.Size
	InnerPosition          *event.Position // root relative
	InnerPositionRelParent *event.Position
	Position               *event.Position // outer (frame included)
	FrameExtents           *FrameExtents
	DpiAdjusted            *event.Size // pending size requested after a scale change
	LastMonitor            Monitor
	HasFocus               bool
	CursorPos              *event.PositionF

	MinSize *event.Size
	MaxSize *event.Size
}

//----------

type Window struct {
	Id xproto.Window

	backend Backend
	mu      sync.Mutex
	shared  SharedState
	closed  atomic.Bool
}

func NewWindow(id xproto.Window, backend Backend, monitor Monitor) *Window {
	w := &Window{Id: id, backend: backend}
	w.shared.LastMonitor = monitor
	return w
}

// Runs fn with the window lock held. fn must not emit events.
func (w *Window) Locked(fn func(s *SharedState)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fn(&w.shared)
}

// Marks the window as gone. The registry drops it on the next lookup.
func (w *Window) Close() {
	w.closed.Store(true)
}

func (w *Window) IsClosed() bool {
	return w.closed.Load()
}

//----------

func (w *Window) InnerSize() event.Size {
	var sz event.Size
	w.Locked(func(s *SharedState) {
		if s.Size != nil {
			sz = *s.Size
		}
	})
	return sz
}

func (w *Window) OuterPosition() (event.Position, bool) {
	var p event.Position
	ok := false
	w.Locked(func(s *SharedState) {
		if s.Position != nil {
			p, ok = *s.Position, true
		}
	})
	return p, ok
}

func (w *Window) ScaleFactor() float64 {
	var sf float64
	w.Locked(func(s *SharedState) {
		sf = s.LastMonitor.ScaleFactor
	})
	return sf
}

func (w *Window) HasFocus() bool {
	var v bool
	w.Locked(func(s *SharedState) {
		v = s.HasFocus
	})
	return v
}

func (w *Window) SetFocus(v bool) {
	w.Locked(func(s *SharedState) {
		s.HasFocus = v
	})
}

// Returns true if the cursor position changed.
func (w *Window) UpdateCursorPos(p event.PositionF) bool {
	changed := false
	w.Locked(func(s *SharedState) {
		changed = MaybeChange(&s.CursorPos, p)
	})
	return changed
}

func (w *Window) InvalidateFrameExtents() {
	w.Locked(func(s *SharedState) {
		s.FrameExtents = nil
	})
}

//----------

// Asks the window manager for a new inner size (physical pixels).
func (w *Window) RequestInnerSize(width, height uint32) error {
	return w.backend.RequestInnerSize(w.Id, width, height)
}

func (w *Window) SetMinInnerSize(sz *event.Size) error {
	var min, max *event.Size
	w.Locked(func(s *SharedState) {
		s.MinSize = sz
		min, max = s.MinSize, s.MaxSize
	})
	return w.backend.UpdateSizeHints(w.Id, min, max)
}

func (w *Window) SetMaxInnerSize(sz *event.Size) error {
	var min, max *event.Size
	w.Locked(func(s *SharedState) {
		s.MaxSize = sz
		min, max = s.MinSize, s.MaxSize
	})
	return w.backend.UpdateSizeHints(w.Id, min, max)
}

// Scales size (and the min/max size hints) from one scale factor to
// another. Must be called with the lock held.
func (w *Window) adjustForDPI(s *SharedState, oldSF, newSF float64, size event.Size) (event.Size, error) {
	if oldSF <= 0 || newSF <= 0 {
		return size, nil
	}
	ratio := newSF / oldSF
	if s.MinSize != nil || s.MaxSize != nil {
		s.MinSize = scaleSizeOpt(s.MinSize, ratio)
		s.MaxSize = scaleSizeOpt(s.MaxSize, ratio)
		if err := w.backend.UpdateSizeHints(w.Id, s.MinSize, s.MaxSize); err != nil {
			return size, err
		}
	}
	return ScaleSize(size, ratio), nil
}

func ScaleSize(sz event.Size, ratio float64) event.Size {
	return event.Size{
		Width:  uint32(round(float64(sz.Width) * ratio)),
		Height: uint32(round(float64(sz.Height) * ratio)),
	}
}

func scaleSizeOpt(sz *event.Size, ratio float64) *event.Size {
	if sz == nil {
		return nil
	}
	u := ScaleSize(*sz, ratio)
	return &u
}

func round(v float64) float64 {
	if v < 0 {
		return float64(int64(v - 0.5))
	}
	return float64(int64(v + 0.5))
}

//----------

// Sets *field to v and returns true if the value changed (unset counts as
// a change).
func MaybeChange[T comparable](field **T, v T) bool {
	if *field != nil && **field == v {
		return false
	}
	*field = &v
	return true
}

//----------

// Windows indexed by id. A window that was closed is treated as already
// destroyed and removed on lookup.
type Registry struct {
	mu sync.Mutex
	m  map[xproto.Window]*Window
}

func NewRegistry() *Registry {
	return &Registry{m: map[xproto.Window]*Window{}}
}

func (r *Registry) Add(w *Window) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[w.Id] = w
}

func (r *Registry) Lookup(id xproto.Window) (*Window, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.m[id]
	if !ok {
		return nil, false
	}
	if w.IsClosed() {
		delete(r.m, id)
		return nil, false
	}
	return w, true
}

func (r *Registry) Exists(id xproto.Window) bool {
	_, ok := r.Lookup(id)
	return ok
}

func (r *Registry) Remove(id xproto.Window) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.m, id)
}

// Live windows sorted by id. Closed windows are dropped.
func (r *Registry) Live() []*Window {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := make([]*Window, 0, len(r.m))
	for id, w := range r.m {
		if w.IsClosed() {
			delete(r.m, id)
			continue
		}
		u = append(u, w)
	}
	sort.Slice(u, func(a, b int) bool { return u[a].Id < u[b].Id })
	return u
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.m)
}
