package monitors

import (
	"testing"

	"github.com/jmigpin/xevents/window"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDpiFactor(t *testing.T) {
	assert.Equal(t, 1.0, DpiFactor(1920, 1080, 0, 0))
	assert.Equal(t, 1.0, DpiFactor(1920, 1080, 527, 296)) // ~92 dpi
	assert.Equal(t, 2.0, DpiFactor(3840, 2160, 508, 286)) // ~192 dpi
	assert.Equal(t, 1.0, DpiFactor(800, 600, 600, 450))   // below 1 is clamped
	f := DpiFactor(2560, 1440, 344, 194)                  // ~189 dpi
	assert.InDelta(t, 2.0, f, 1.0/12+1e-9)
}

func TestMonitorForRect(t *testing.T) {
	a := window.Monitor{Name: "A", Rect: window.Rect{X: 0, Y: 0, Width: 1000, Height: 1000}, ScaleFactor: 1}
	b := window.Monitor{Name: "B", Rect: window.Rect{X: 1000, Y: 0, Width: 1000, Height: 1000}, ScaleFactor: 2}
	list := []window.Monitor{a, b}

	m := MonitorForRect(list, window.Rect{X: 900, Y: 10, Width: 300, Height: 100})
	require.Equal(t, "B", m.Name)

	m = MonitorForRect(list, window.Rect{X: 5000, Y: 5000, Width: 10, Height: 10})
	require.Equal(t, "A", m.Name)

	m = MonitorForRect(nil, window.Rect{Width: 10, Height: 10})
	require.True(t, m.Dummy)
}

func TestInvalidate(t *testing.T) {
	l := &List{}
	_, ok := l.Invalidate()
	require.False(t, ok)

	l.cached, l.has = []window.Monitor{{Name: "A"}}, true
	got, err := l.Available()
	require.NoError(t, err)
	require.Len(t, got, 1)

	prev, ok := l.Invalidate()
	require.True(t, ok)
	require.Equal(t, "A", prev[0].Name)
	_, ok = l.Invalidate()
	require.False(t, ok)
}
