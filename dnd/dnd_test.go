package dnd

import (
	"errors"
	"testing"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/jmigpin/xevents/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	atomEnter xproto.Atom = iota + 100
	atomPosition
	atomDrop
	atomLeave
	atomSelection
	atomURIList
	atomA
	atomB
)

var testAtoms = Atoms{
	XdndEnter:     atomEnter,
	XdndPosition:  atomPosition,
	XdndDrop:      atomDrop,
	XdndLeave:     atomLeave,
	XdndSelection: atomSelection,
	TextURIList:   atomURIList,
}

const (
	win    xproto.Window = 10
	source xproto.Window = 20
)

type reply struct {
	win, source xproto.Window
	accepted    bool
}

type fakeTransport struct {
	types     []xproto.Atom
	selection []byte
	selErr    error
	sendErr   error

	converts []xproto.Timestamp
	statuses []reply
	finishes []reply
}

func (tr *fakeTransport) TypeList(source xproto.Window) ([]xproto.Atom, error) {
	return tr.types, nil
}
func (tr *fakeTransport) ConvertSelection(win xproto.Window, time xproto.Timestamp) error {
	tr.converts = append(tr.converts, time)
	return nil
}
func (tr *fakeTransport) SendStatus(win, source xproto.Window, accepted bool) error {
	if tr.sendErr != nil {
		return tr.sendErr
	}
	tr.statuses = append(tr.statuses, reply{win, source, accepted})
	return nil
}
func (tr *fakeTransport) SendFinished(win, source xproto.Window, accepted bool) error {
	if tr.sendErr != nil {
		return tr.sendErr
	}
	tr.finishes = append(tr.finishes, reply{win, source, accepted})
	return nil
}
func (tr *fakeTransport) ReadSelection(win xproto.Window) ([]byte, error) {
	return tr.selection, tr.selErr
}

//----------

type recorder struct{ evs []interface{} }

func (r *recorder) sink(ev event.Event) {
	we := ev.(*event.WindowEvent)
	r.evs = append(r.evs, we.Event)
}

func enterData(version uint32, more bool, types ...xproto.Atom) [5]uint32 {
	d := [5]uint32{uint32(source), version << 24}
	if more {
		d[1] |= 1
	}
	for i, t := range types {
		if i < 3 {
			d[2+i] = uint32(t)
		}
	}
	return d
}

func positionData(time uint32) [5]uint32 {
	return [5]uint32{uint32(source), 0, 0, time, 0}
}

func newTestDnd(tr *fakeTransport) (*Dnd, *recorder) {
	return NewDnd(tr, testAtoms), &recorder{}
}

//----------

func TestDndAcceptDropWithoutSelection(t *testing.T) {
	tr := &fakeTransport{}
	dnd, rec := newTestDnd(tr)

	dnd.OnClientMessage(win, atomEnter, enterData(5, false, atomA, atomB, atomURIList), rec.sink)
	assert.Equal(t, Entered, dnd.Phase())

	dnd.OnClientMessage(win, atomPosition, positionData(1234), rec.sink)
	require.Len(t, tr.statuses, 1)
	assert.Equal(t, reply{win, source, true}, tr.statuses[0])
	assert.Equal(t, []xproto.Timestamp{1234}, tr.converts)
	assert.Equal(t, Accepted, dnd.Phase())

	dnd.OnClientMessage(win, atomDrop, [5]uint32{uint32(source)}, rec.sink)
	require.Len(t, tr.finishes, 1)
	assert.Equal(t, reply{win, source, false}, tr.finishes[0])
	assert.True(t, dnd.IsIdle())
	assert.Empty(t, rec.evs)
}

func TestDndAcceptDrop(t *testing.T) {
	tr := &fakeTransport{selection: []byte("file:///tmp/a%20b\r\n# comment\r\nfile:///tmp/c\r\n")}
	dnd, rec := newTestDnd(tr)

	dnd.OnClientMessage(win, atomEnter, enterData(5, false, atomURIList), rec.sink)
	dnd.OnClientMessage(win, atomPosition, positionData(1), rec.sink)
	dnd.OnSelectionNotify(win, atomSelection, rec.sink)

	// positions after the result is cached don't convert again
	dnd.OnClientMessage(win, atomPosition, positionData(2), rec.sink)
	assert.Len(t, tr.converts, 1)
	assert.Len(t, tr.statuses, 2)

	dnd.OnClientMessage(win, atomDrop, [5]uint32{uint32(source)}, rec.sink)

	assert.Equal(t, []interface{}{
		&event.HoveredFile{Path: "/tmp/a b"},
		&event.HoveredFile{Path: "/tmp/c"},
		&event.DroppedFile{Path: "/tmp/a b"},
		&event.DroppedFile{Path: "/tmp/c"},
	}, rec.evs)
	require.Len(t, tr.finishes, 1)
	assert.Equal(t, reply{win, source, true}, tr.finishes[0])
	assert.True(t, dnd.IsIdle())
}

func TestDndParseFailureAcceptsDropWithoutFiles(t *testing.T) {
	tr := &fakeTransport{selection: []byte("http://example.com/x\n")}
	dnd, rec := newTestDnd(tr)

	dnd.OnClientMessage(win, atomEnter, enterData(5, false, atomURIList), rec.sink)
	dnd.OnClientMessage(win, atomPosition, positionData(1), rec.sink)
	dnd.OnSelectionNotify(win, atomSelection, rec.sink)

	_, err, ok := dnd.Result()
	require.True(t, ok)
	assert.Error(t, err)

	// a cached failure still counts as a result
	dnd.OnClientMessage(win, atomDrop, [5]uint32{uint32(source)}, rec.sink)
	assert.Empty(t, rec.evs)
	assert.Equal(t, []reply{{win, source, true}}, tr.finishes)
	assert.True(t, dnd.IsIdle())
}

func TestDndRejectAtPosition(t *testing.T) {
	tr := &fakeTransport{}
	dnd, rec := newTestDnd(tr)

	dnd.OnClientMessage(win, atomEnter, enterData(5, false, atomA, atomB), rec.sink)
	dnd.OnClientMessage(win, atomPosition, positionData(1), rec.sink)
	assert.Equal(t, []reply{{win, source, false}}, tr.statuses)
	assert.Empty(t, tr.converts)
	assert.True(t, dnd.IsIdle())

	// drop after a rejection recovers the source from the message
	other := xproto.Window(77)
	dnd.OnClientMessage(win, atomDrop, [5]uint32{uint32(other)}, rec.sink)
	assert.Equal(t, []reply{{win, other, false}}, tr.finishes)
	assert.True(t, dnd.IsIdle())
}

func TestDndTypeListQuery(t *testing.T) {
	tr := &fakeTransport{types: []xproto.Atom{atomA, atomB, 1, 2, atomURIList}}
	dnd, rec := newTestDnd(tr)

	dnd.OnClientMessage(win, atomEnter, enterData(5, true), rec.sink)
	dnd.OnClientMessage(win, atomPosition, positionData(1), rec.sink)
	assert.Equal(t, []reply{{win, source, true}}, tr.statuses)
}

func TestDndVersion0UsesCurrentTime(t *testing.T) {
	tr := &fakeTransport{}
	dnd, rec := newTestDnd(tr)

	dnd.OnClientMessage(win, atomEnter, enterData(0, false, atomURIList), rec.sink)
	dnd.OnClientMessage(win, atomPosition, positionData(555), rec.sink)
	assert.Equal(t, []xproto.Timestamp{xproto.TimeCurrentTime}, tr.converts)
}

func TestDndLeave(t *testing.T) {
	steps := map[string]func(d *Dnd, rec *recorder){
		"idle": func(d *Dnd, rec *recorder) {},
		"entered": func(d *Dnd, rec *recorder) {
			d.OnClientMessage(win, atomEnter, enterData(5, false, atomURIList), rec.sink)
		},
		"accepted": func(d *Dnd, rec *recorder) {
			d.OnClientMessage(win, atomEnter, enterData(5, false, atomURIList), rec.sink)
			d.OnClientMessage(win, atomPosition, positionData(1), rec.sink)
		},
		"hovered": func(d *Dnd, rec *recorder) {
			d.OnClientMessage(win, atomEnter, enterData(5, false, atomURIList), rec.sink)
			d.OnClientMessage(win, atomPosition, positionData(1), rec.sink)
			d.OnSelectionNotify(win, atomSelection, rec.sink)
		},
	}
	for name, fn := range steps {
		t.Run(name, func(t *testing.T) {
			tr := &fakeTransport{selection: []byte("file:///x\n")}
			dnd, rec := newTestDnd(tr)
			fn(dnd, rec)
			rec.evs = nil

			dnd.OnClientMessage(win, atomLeave, [5]uint32{uint32(source)}, rec.sink)
			assert.True(t, dnd.IsIdle())
			assert.Equal(t, []interface{}{&event.HoveredFileCancelled{}}, rec.evs)
			assert.Empty(t, tr.finishes)
		})
	}
}

func TestDndSelectionReadError(t *testing.T) {
	tr := &fakeTransport{selErr: errors.New("badness")}
	dnd, rec := newTestDnd(tr)

	dnd.OnClientMessage(win, atomEnter, enterData(5, false, atomURIList), rec.sink)
	dnd.OnClientMessage(win, atomPosition, positionData(1), rec.sink)
	dnd.OnSelectionNotify(win, atomSelection, rec.sink)
	_, _, ok := dnd.Result()
	assert.False(t, ok)

	// other properties are not ours
	dnd.OnSelectionNotify(win, atomA, rec.sink)
	assert.Empty(t, rec.evs)
}

func TestDndSendFailureIsFatal(t *testing.T) {
	tr := &fakeTransport{sendErr: errors.New("connection closed")}
	dnd, rec := newTestDnd(tr)

	dnd.OnClientMessage(win, atomEnter, enterData(5, false, atomURIList), rec.sink)
	assert.PanicsWithError(t, "failed to send XdndStatus: connection closed", func() {
		dnd.OnClientMessage(win, atomPosition, positionData(1), rec.sink)
	})
}

func TestIsDndMessage(t *testing.T) {
	dnd, _ := newTestDnd(&fakeTransport{})
	assert.True(t, dnd.IsDndMessage(atomEnter))
	assert.True(t, dnd.IsDndMessage(atomLeave))
	assert.False(t, dnd.IsDndMessage(atomSelection))
	assert.False(t, dnd.IsDndMessage(0))
}

//----------

func TestParseURIList(t *testing.T) {
	paths, err := ParseURIList([]byte("# files\r\nfile:///home/u/a.txt\r\nfile://localhost/tmp/%C3%A7\r\n\r\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"/home/u/a.txt", "/tmp/ç"}, paths)

	_, err = ParseURIList([]byte("file://otherhost/a\n"))
	assert.Error(t, err)

	_, err = ParseURIList([]byte("/plain/path\n"))
	assert.Error(t, err)

	paths, err = ParseURIList(nil)
	require.NoError(t, err)
	assert.Empty(t, paths)
}
