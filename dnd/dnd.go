// Drag and drop handshake (XDND), receiving side.
//
// protocol: https://www.acc.umu.se/~vatten/XDND.html
package dnd

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/jmigpin/xevents/event"
	"github.com/pkg/errors"
)

// Wire side of the handshake.
type Transport interface {
	// Offered types when the source has more than 3 (XdndTypeList property).
	TypeList(source xproto.Window) ([]xproto.Atom, error)
	// Asks the source for the file list. Answered by a SelectionNotify.
	ConvertSelection(win xproto.Window, time xproto.Timestamp) error
	SendStatus(win, source xproto.Window, accepted bool) error
	SendFinished(win, source xproto.Window, accepted bool) error
	// Data transferred into the XdndSelection property of win.
	ReadSelection(win xproto.Window) ([]byte, error)
}

type Atoms struct {
	XdndEnter     xproto.Atom
	XdndPosition  xproto.Atom
	XdndDrop      xproto.Atom
	XdndLeave     xproto.Atom
	XdndSelection xproto.Atom
	TextURIList   xproto.Atom // offered type that is accepted
}

//----------

type Phase int

const (
	Idle Phase = iota
	Entered
	Accepted // position accepted, waiting for drop
)

type result struct {
	paths []string
	err   error
}

// Session state. Fully reset after a drop or a leave.
type Dnd struct {
	tr    Transport
	atoms Atoms

	version  *uint32
	typeList []xproto.Atom // nil: none
	source   *xproto.Window
	result   *result
}

func NewDnd(tr Transport, atoms Atoms) *Dnd {
	return &Dnd{tr: tr, atoms: atoms}
}

func (dnd *Dnd) Atoms() *Atoms {
	return &dnd.atoms
}

//----------

func (dnd *Dnd) IsDndMessage(typ xproto.Atom) bool {
	switch typ {
	case dnd.atoms.XdndEnter, dnd.atoms.XdndPosition, dnd.atoms.XdndDrop, dnd.atoms.XdndLeave:
		return typ != 0
	}
	return false
}

// Handles an Xdnd* client message sent to win.
func (dnd *Dnd) OnClientMessage(win xproto.Window, typ xproto.Atom, data [5]uint32, emit event.Sink) {
	switch typ {
	case dnd.atoms.XdndEnter:
		dnd.onEnter(data)
	case dnd.atoms.XdndPosition:
		dnd.onPosition(win, data)
	case dnd.atoms.XdndDrop:
		dnd.onDrop(win, data, emit)
	case dnd.atoms.XdndLeave:
		dnd.reset()
		emitWin(emit, win, &event.HoveredFileCancelled{})
	}
}

//----------

func (dnd *Dnd) onEnter(data [5]uint32) {
	source := xproto.Window(data[0])
	flags := data[1]
	version := flags >> 24
	dnd.version = &version

	moreThan3Types := flags&1 == 1
	if !moreThan3Types {
		dnd.typeList = []xproto.Atom{
			xproto.Atom(data[2]),
			xproto.Atom(data[3]),
			xproto.Atom(data[4]),
		}
		return
	}
	if types, err := dnd.tr.TypeList(source); err == nil {
		dnd.typeList = types
	}
}

// Sent repeatedly while the pointer moves over the window.
func (dnd *Dnd) onPosition(win xproto.Window, data [5]uint32) {
	source := xproto.Window(data[0])

	version := uint32(5)
	if dnd.version != nil {
		version = *dnd.version
	}

	if !dnd.accepts() {
		must(dnd.tr.SendStatus(win, source, false), "failed to send XdndStatus")
		dnd.reset()
		return
	}

	dnd.source = &source
	if dnd.result == nil {
		time := xproto.Timestamp(xproto.TimeCurrentTime)
		if version >= 1 {
			time = xproto.Timestamp(data[3])
		}
		must(dnd.tr.ConvertSelection(win, time), "failed to convert XdndSelection")
	}
	must(dnd.tr.SendStatus(win, source, true), "failed to send XdndStatus")
}

func (dnd *Dnd) accepts() bool {
	if dnd.atoms.TextURIList == 0 {
		return false
	}
	for _, t := range dnd.typeList {
		if t == dnd.atoms.TextURIList {
			return true
		}
	}
	return false
}

func (dnd *Dnd) onDrop(win xproto.Window, data [5]uint32, emit event.Sink) {
	var source xproto.Window
	accepted := false
	if dnd.source != nil {
		source = *dnd.source
		if dnd.result != nil {
			accepted = true
			if dnd.result.err == nil {
				for _, p := range dnd.result.paths {
					emitWin(emit, win, &event.DroppedFile{Path: p})
				}
			}
		}
	} else {
		// not part of the state if the drop was rejected at position
		source = xproto.Window(data[0])
	}
	must(dnd.tr.SendFinished(win, source, accepted), "failed to send XdndFinished")
	dnd.reset()
}

//----------

// Handles the reply to the selection conversion requested at position.
func (dnd *Dnd) OnSelectionNotify(win xproto.Window, property xproto.Atom, emit event.Sink) {
	if property == 0 || property != dnd.atoms.XdndSelection {
		return
	}
	data, err := dnd.tr.ReadSelection(win)
	if err != nil {
		dnd.result = nil
		return
	}
	paths, err := ParseURIList(data)
	if err == nil {
		for _, p := range paths {
			emitWin(emit, win, &event.HoveredFile{Path: p})
		}
	}
	dnd.result = &result{paths: paths, err: err}
}

//----------

func (dnd *Dnd) reset() {
	dnd.version = nil
	dnd.typeList = nil
	dnd.source = nil
	dnd.result = nil
}

func (dnd *Dnd) Phase() Phase {
	switch {
	case dnd.source != nil:
		return Accepted
	case dnd.version != nil || dnd.typeList != nil || dnd.result != nil:
		return Entered
	}
	return Idle
}

func (dnd *Dnd) IsIdle() bool {
	return dnd.version == nil && dnd.typeList == nil && dnd.source == nil && dnd.result == nil
}

// Cached parse result of the last selection transfer.
func (dnd *Dnd) Result() ([]string, error, bool) {
	if dnd.result == nil {
		return nil, nil, false
	}
	return dnd.result.paths, dnd.result.err, true
}

//----------

func emitWin(emit event.Sink, win xproto.Window, ev interface{}) {
	emit(&event.WindowEvent{WindowId: event.WindowId(win), Event: ev})
}

func must(err error, msg string) {
	if err != nil {
		panic(errors.Wrap(err, msg))
	}
}
