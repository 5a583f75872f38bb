// WM_PROTOCOLS: window close requests and _NET_WM_PING.
package wmprotocols

import (
	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/jmigpin/xevents/driver/xdriver/xutil"
	"github.com/jmigpin/xevents/evproc"
	"github.com/jmigpin/xevents/rawevent"
)

// https://tronche.com/gui/x/icccm/sec-4.html#s-4.2.8.1
// https://specifications.freedesktop.org/wm-spec/latest/ar01s06.html#idm45805407959456

type WMP struct {
	conn  *xgb.Conn
	root  xproto.Window
	atoms Atoms
}

func NewWMP(conn *xgb.Conn, root xproto.Window) (*WMP, error) {
	wmp := &WMP{conn: conn, root: root}
	if err := xutil.LoadAtoms(conn, &wmp.atoms, false); err != nil {
		return nil, err
	}
	return wmp, nil
}

func (wmp *WMP) Atoms() evproc.Atoms {
	return evproc.Atoms{
		WMProtocols:    wmp.atoms.WM_PROTOCOLS,
		WMDeleteWindow: wmp.atoms.WM_DELETE_WINDOW,
		NetWMPing:      wmp.atoms.NET_WM_PING,
	}
}

// Announces the supported protocols on the window.
func (wmp *WMP) SetupWindowProperty(win xproto.Window) error {
	data := xutil.AtomsBytes(wmp.atoms.WM_DELETE_WINDOW, wmp.atoms.NET_WM_PING)
	cookie := xproto.ChangePropertyChecked(
		wmp.conn,
		xproto.PropModeReplace,
		win,
		wmp.atoms.WM_PROTOCOLS, // property
		xproto.AtomAtom,        // type
		32,                     // format: xprop says that it should be 32 bit
		uint32(len(data))/4,
		data)
	return cookie.Check()
}

// The ping is answered by sending it back to the root window.
func (wmp *WMP) ReplyPing(ev *rawevent.ClientMessage) error {
	cme := xutil.NewClientMessage(wmp.root, ev.Type, ev.Data)
	mask := uint32(xproto.EventMaskSubstructureNotify | xproto.EventMaskSubstructureRedirect)
	return xutil.SendClientMessage(wmp.conn, wmp.root, mask, cme)
}

type Atoms struct {
	WM_PROTOCOLS     xproto.Atom
	WM_DELETE_WINDOW xproto.Atom
	NET_WM_PING      xproto.Atom `loadAtoms:"_NET_WM_PING"`
}
