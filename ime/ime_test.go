package ime

import (
	"errors"
	"testing"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/jmigpin/xevents/event"
	"github.com/jmigpin/xevents/util/chanutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const win xproto.Window = 5

type fakeBackend struct {
	events  []*Event
	calls   []string
	err     error
	consume bool
	keys    []KeyInput
}

func (fb *fakeBackend) FilterKey(w xproto.Window, k KeyInput) (bool, error) {
	fb.keys = append(fb.keys, k)
	return fb.consume, fb.err
}

func (fb *fakeBackend) SetSpot(w xproto.Window, x, y int16) error {
	fb.calls = append(fb.calls, "spot")
	return fb.err
}
func (fb *fakeBackend) SetAllowed(w xproto.Window, allowed bool) error {
	if allowed {
		fb.calls = append(fb.calls, "allow")
	} else {
		fb.calls = append(fb.calls, "disallow")
	}
	return fb.err
}
func (fb *fakeBackend) FocusWindow(w xproto.Window) error {
	fb.calls = append(fb.calls, "focus")
	return fb.err
}
func (fb *fakeBackend) UnfocusWindow(w xproto.Window) error {
	fb.calls = append(fb.calls, "unfocus")
	return fb.err
}
func (fb *fakeBackend) RemoveContext(w xproto.Window) error {
	fb.calls = append(fb.calls, "remove")
	return fb.err
}
func (fb *fakeBackend) NextEvent() (*Event, bool) {
	if len(fb.events) == 0 {
		return nil, false
	}
	ev := fb.events[0]
	fb.events = fb.events[1:]
	return ev, true
}

type recorder struct{ evs []interface{} }

func (r *recorder) sink(ev event.Event) {
	we := ev.(*event.WindowEvent)
	r.evs = append(r.evs, we.Event)
}

//----------

func TestBridgeComposition(t *testing.T) {
	cur := 3
	fb := &fakeBackend{events: []*Event{
		{Kind: Enabled, Window: win},
		{Kind: Update, Window: win, Text: "ignored"},
		{Kind: Start, Window: win},
		{Kind: Update, Window: win, Text: "abc", Cursor: &cur},
		{Kind: Commit, Window: win, Text: "ABC"},
		{Kind: Disabled, Window: win},
	}}
	b := NewBridge(fb, 4)
	rec := &recorder{}

	composing := []bool{}
	for i := 0; i < 7; i++ {
		b.Pump(rec.sink)
		composing = append(composing, b.IsComposing())
	}
	assert.Equal(t, []bool{false, false, true, true, false, false, false}, composing)
	assert.Equal(t, []interface{}{
		&event.ImeEnabled{},
		&event.ImePreedit{},
		&event.ImePreedit{Text: "abc", Cursor: &[2]int{3, 3}},
		&event.ImePreedit{},
		&event.ImeCommit{Text: "ABC"},
		&event.ImeDisabled{},
	}, rec.evs)
}

func TestBridgeEndClearsComposing(t *testing.T) {
	fb := &fakeBackend{events: []*Event{{Kind: Start}, {Kind: End}}}
	b := NewBridge(fb, 1)
	rec := &recorder{}
	b.Pump(rec.sink)
	require.True(t, b.IsComposing())
	b.Pump(rec.sink)
	assert.False(t, b.IsComposing())
	assert.Equal(t, []interface{}{&event.ImePreedit{}, &event.ImePreedit{}}, rec.evs)
}

func TestBridgeOneRequestPerPump(t *testing.T) {
	fb := &fakeBackend{}
	b := NewBridge(fb, 4)
	require.NoError(t, b.Request(&SetSpot{Window: win, X: 1, Y: 2}))
	require.NoError(t, b.Request(&SetAllowed{Window: win, Allowed: false}))

	b.Pump(func(event.Event) {})
	assert.Equal(t, []string{"spot"}, fb.calls)
	b.Pump(func(event.Event) {})
	assert.Equal(t, []string{"spot", "disallow"}, fb.calls)
	b.Pump(func(event.Event) {})
	assert.Len(t, fb.calls, 2)
}

func TestBridgeRequestAppliedBeforeEvent(t *testing.T) {
	fb := &fakeBackend{events: []*Event{{Kind: Enabled, Window: win}}}
	b := NewBridge(fb, 1)
	require.NoError(t, b.Request(&SetAllowed{Window: win, Allowed: true}))
	b.Pump(func(event.Event) {
		fb.calls = append(fb.calls, "emit")
	})
	assert.Equal(t, []string{"allow", "emit"}, fb.calls)
}

func TestBridgeInboxFull(t *testing.T) {
	b := NewBridge(&fakeBackend{}, 1)
	require.NoError(t, b.Request(&SetSpot{}))
	err := b.Request(&SetSpot{})
	assert.ErrorIs(t, err, chanutil.ErrFull)
}

func TestBridgeFailureIsFatal(t *testing.T) {
	fb := &fakeBackend{err: errors.New("no bus")}
	b := NewBridge(fb, 1)
	assert.PanicsWithError(t, "failed to destroy ime context: no bus", func() {
		b.RemoveContext(win)
	})
}

func TestBridgeWithoutBackend(t *testing.T) {
	b := NewBridge(nil, 1)
	require.NoError(t, b.Request(&SetSpot{}))
	assert.NotPanics(t, func() {
		b.Pump(func(event.Event) { t.Fatal("unexpected event") })
		b.FocusWindow(win)
		b.UnfocusWindow(win)
		b.RemoveContext(win)
		assert.False(t, b.FilterKey(win, KeyInput{Keycode: 38, Press: true}))
	})
}

func TestBridgeFilterKey(t *testing.T) {
	fb := &fakeBackend{consume: true}
	b := NewBridge(fb, 1)
	k := KeyInput{Keycode: 38, Mods: event.ModShift, Press: true}
	assert.True(t, b.FilterKey(win, k))
	assert.Equal(t, []KeyInput{k}, fb.keys)

	fb.consume = false
	assert.False(t, b.FilterKey(win, k))

	fb.err = errors.New("no bus")
	assert.PanicsWithError(t, "failed to filter key: no bus", func() {
		b.FilterKey(win, k)
	})
}
