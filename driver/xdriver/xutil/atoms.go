package xutil

import (
	"encoding/binary"
	"fmt"
	"reflect"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/pkg/errors"
)

// Tags can be used with: `loadAtoms:"atomname"`.
// "st" should be a pointer to a struct with xproto.Atom fields.
// "onlyIfExists" asks the x server to assign a value only if the atom exists.
func LoadAtoms(conn *xgb.Conn, st any, onlyIfExists bool) error {
	names := AtomFieldNames(st)
	cookies := make([]xproto.InternAtomCookie, 0, len(names))
	for _, name := range names {
		cookie := xproto.InternAtom(conn, onlyIfExists, uint16(len(name)), name)
		cookies = append(cookies, cookie)
	}
	val := reflect.Indirect(reflect.ValueOf(st))
	for i, c := range cookies {
		reply, err := c.Reply()
		if err != nil {
			return errors.Wrapf(err, "intern atom %q", names[i])
		}
		val.Field(i).Set(reflect.ValueOf(reply.Atom))
	}
	return nil
}

// Atom names requested by LoadAtoms, in field order.
func AtomFieldNames(st any) []string {
	typ := reflect.Indirect(reflect.ValueOf(st)).Type()
	u := make([]string, 0, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		sf := typ.Field(i)
		name := sf.Name
		if tag := sf.Tag.Get("loadAtoms"); tag != "" {
			name = tag
		}
		u = append(u, name)
	}
	return u
}

//----------

func GetAtomName(conn *xgb.Conn, atom xproto.Atom) (string, error) {
	cookie := xproto.GetAtomName(conn, atom)
	r, err := cookie.Reply()
	if err != nil {
		return "", err
	}
	return r.Name, nil
}

// Names for debug output; atoms that fail to resolve show as numbers.
func AtomNames(conn *xgb.Conn, atoms ...xproto.Atom) []string {
	u := make([]string, 0, len(atoms))
	for _, a := range atoms {
		name, err := GetAtomName(conn, a)
		if err != nil {
			name = fmt.Sprintf("%d", a)
		}
		u = append(u, name)
	}
	return u
}

//----------

func AtomsBytes(atoms ...xproto.Atom) []byte {
	b := make([]byte, 4*len(atoms))
	for i, a := range atoms {
		binary.LittleEndian.PutUint32(b[i*4:], uint32(a))
	}
	return b
}

// Decodes a 32 bit format property value.
func BytesAtoms(b []byte) []xproto.Atom {
	u := make([]xproto.Atom, 0, len(b)/4)
	for i := 0; i+4 <= len(b); i += 4 {
		u = append(u, xproto.Atom(binary.LittleEndian.Uint32(b[i:])))
	}
	return u
}

//----------

func SendClientMessage(conn *xgb.Conn, dest xproto.Window, mask uint32, cme *xproto.ClientMessageEvent) error {
	cookie := xproto.SendEventChecked(
		conn,
		false, // propagate
		dest,
		mask,
		string(cme.Bytes()))
	return cookie.Check()
}

func NewClientMessage(win xproto.Window, typ xproto.Atom, data [5]uint32) *xproto.ClientMessageEvent {
	return &xproto.ClientMessageEvent{
		Format: 32,
		Window: win,
		Type:   typ,
		Data:   xproto.ClientMessageDataUnionData32New(data[:]),
	}
}
