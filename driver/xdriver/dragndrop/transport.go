// XDND wire transport for the dnd state machine.
package dragndrop

import (
	"math"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/jmigpin/xevents/dnd"
	"github.com/jmigpin/xevents/driver/xdriver/xutil"
	"github.com/pkg/errors"
)

// protocol: https://www.acc.umu.se/~vatten/XDND.html
// explanation with example: http://www.edwardrosten.com/code/dist/x_clipboard-1.1/paste.cc

const Version = 5

type Transport struct {
	conn  *xgb.Conn
	atoms Atoms
}

func NewTransport(conn *xgb.Conn) (*Transport, error) {
	tr := &Transport{conn: conn}
	if err := xutil.LoadAtoms(conn, &tr.atoms, false); err != nil {
		return nil, errors.Wrap(err, "dnd atoms")
	}
	return tr, nil
}

func (tr *Transport) Atoms() dnd.Atoms {
	return dnd.Atoms{
		XdndEnter:     tr.atoms.XdndEnter,
		XdndPosition:  tr.atoms.XdndPosition,
		XdndDrop:      tr.atoms.XdndDrop,
		XdndLeave:     tr.atoms.XdndLeave,
		XdndSelection: tr.atoms.XdndSelection,
		TextURIList:   tr.atoms.TextURIList,
	}
}

// Allow other applications to know this window is dnd aware.
func (tr *Transport) SetAware(win xproto.Window) error {
	data := xutil.AtomsBytes(xproto.Atom(Version))
	cookie := xproto.ChangePropertyChecked(
		tr.conn,
		xproto.PropModeReplace,
		win,
		tr.atoms.XdndAware, // property
		xproto.AtomAtom,    // type
		32,                 // format: xprop says that it should be 32 bit
		uint32(len(data))/4,
		data)
	return cookie.Check()
}

//----------

func (tr *Transport) TypeList(source xproto.Window) ([]xproto.Atom, error) {
	cookie := xproto.GetProperty(
		tr.conn,
		false, // delete
		source,
		tr.atoms.XdndTypeList,
		xproto.AtomAtom,
		0,              // long offset
		math.MaxUint32) // long length
	reply, err := cookie.Reply()
	if err != nil {
		return nil, err
	}
	if reply.Format != 32 {
		return nil, errors.Errorf("XdndTypeList format is not 32: %d", reply.Format)
	}
	return xutil.BytesAtoms(reply.Value), nil
}

// Will get a selection-notify event with the data in the XdndSelection
// property.
func (tr *Transport) ConvertSelection(win xproto.Window, time xproto.Timestamp) error {
	cookie := xproto.ConvertSelectionChecked(
		tr.conn,
		win,
		tr.atoms.XdndSelection, // selection
		tr.atoms.TextURIList,   // target
		tr.atoms.XdndSelection, // property
		time)
	return cookie.Check()
}

func (tr *Transport) ReadSelection(win xproto.Window) ([]byte, error) {
	cookie := xproto.GetProperty(
		tr.conn,
		true, // delete
		win,
		tr.atoms.XdndSelection,
		xproto.GetPropertyTypeAny,
		0,
		math.MaxUint32)
	reply, err := cookie.Reply()
	if err != nil {
		return nil, err
	}
	return reply.Value, nil
}

//----------

func (tr *Transport) SendStatus(win, source xproto.Window, accepted bool) error {
	u := StatusEvent{Window: win, Accepted: accepted, Action: tr.atoms.XdndActionPrivate}
	cme := xutil.NewClientMessage(source, tr.atoms.XdndStatus, u.Data32())
	return xutil.SendClientMessage(tr.conn, source, xproto.EventMaskNoEvent, cme)
}

func (tr *Transport) SendFinished(win, source xproto.Window, accepted bool) error {
	u := FinishedEvent{Window: win, Accepted: accepted, Action: tr.atoms.XdndActionPrivate}
	cme := xutil.NewClientMessage(source, tr.atoms.XdndFinished, u.Data32())
	return xutil.SendClientMessage(tr.conn, source, xproto.EventMaskNoEvent, cme)
}

//----------

type Atoms struct {
	XdndAware    xproto.Atom
	XdndEnter    xproto.Atom
	XdndLeave    xproto.Atom
	XdndPosition xproto.Atom
	XdndStatus   xproto.Atom
	XdndDrop     xproto.Atom
	XdndFinished xproto.Atom
	XdndTypeList xproto.Atom

	XdndActionPrivate xproto.Atom

	XdndSelection xproto.Atom
	TextURIList   xproto.Atom `loadAtoms:"text/uri-list"`
}
