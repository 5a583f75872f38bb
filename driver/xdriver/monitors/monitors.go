// Monitor enumeration through RandR, with a per monitor scale factor.
package monitors

import (
	"math"
	"sync"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/jmigpin/xevents/window"
	"github.com/pkg/errors"
)

type List struct {
	conn *xgb.Conn
	root xproto.Window

	// Used for every monitor when > 0.
	ScaleFactor float64

	mu     sync.Mutex
	cached []window.Monitor
	has    bool
}

func NewList(conn *xgb.Conn, root xproto.Window) (*List, error) {
	if err := randr.Init(conn); err != nil {
		return nil, errors.Wrap(err, "randr init")
	}
	return &List{conn: conn, root: root}, nil
}

// Asks the server for RandR notifications on the root window.
func (l *List) SelectInput() error {
	mask := uint16(randr.NotifyMaskScreenChange |
		randr.NotifyMaskCrtcChange |
		randr.NotifyMaskOutputChange)
	return randr.SelectInputChecked(l.conn, l.root, mask).Check()
}

func (l *List) Invalidate() ([]window.Monitor, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	prev, ok := l.cached, l.has
	l.cached, l.has = nil, false
	return prev, ok
}

func (l *List) Available() ([]window.Monitor, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.has {
		return l.cached, nil
	}
	list, err := l.query()
	if err != nil {
		return nil, err
	}
	l.cached, l.has = list, true
	return list, nil
}

func (l *List) MonitorForRect(r window.Rect) (window.Monitor, error) {
	list, err := l.Available()
	if err != nil {
		return window.Monitor{}, err
	}
	return MonitorForRect(list, r), nil
}

//----------

func (l *List) query() ([]window.Monitor, error) {
	res, err := randr.GetScreenResourcesCurrent(l.conn, l.root).Reply()
	if err != nil {
		return nil, errors.Wrap(err, "screen resources")
	}
	var u []window.Monitor
	for _, crtc := range res.Crtcs {
		ci, err := randr.GetCrtcInfo(l.conn, crtc, res.ConfigTimestamp).Reply()
		if err != nil {
			return nil, errors.Wrap(err, "crtc info")
		}
		if ci.Width == 0 || ci.Height == 0 || len(ci.Outputs) == 0 {
			continue // disabled
		}
		oi, err := randr.GetOutputInfo(l.conn, ci.Outputs[0], res.ConfigTimestamp).Reply()
		if err != nil {
			return nil, errors.Wrap(err, "output info")
		}
		m := window.Monitor{
			Name: string(oi.Name),
			Rect: window.Rect{
				X:      int32(ci.X),
				Y:      int32(ci.Y),
				Width:  uint32(ci.Width),
				Height: uint32(ci.Height),
			},
			ScaleFactor: l.ScaleFactor,
		}
		if m.ScaleFactor <= 0 {
			m.ScaleFactor = DpiFactor(m.Rect.Width, m.Rect.Height, oi.MmWidth, oi.MmHeight)
		}
		u = append(u, m)
	}
	return u, nil
}

//----------

// Monitor with the largest overlap with the rect, the first monitor if none
// overlaps, or a dummy monitor if the list is empty.
func MonitorForRect(list []window.Monitor, r window.Rect) window.Monitor {
	if len(list) == 0 {
		return window.DummyMonitor()
	}
	best, bestArea := 0, uint64(0)
	for i, m := range list {
		if a := m.Rect.OverlapArea(r); a > bestArea {
			best, bestArea = i, a
		}
	}
	return list[best]
}

// Scale factor from the physical size, in steps of 1/12, never below 1.
func DpiFactor(wpx, hpx, wmm, hmm uint32) float64 {
	if wmm == 0 || hmm == 0 {
		return 1
	}
	ppmm := math.Sqrt(float64(wpx) * float64(hpx) / (float64(wmm) * float64(hmm)))
	f := math.Round(ppmm*(12*25.4/96)) / 12
	if f < 1 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 1
	}
	return f
}
