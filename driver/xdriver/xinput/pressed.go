package xinput

import (
	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
)

// Keycodes currently down according to the server's key map.
func PressedKeys(conn *xgb.Conn) ([]xproto.Keycode, error) {
	reply, err := xproto.QueryKeymap(conn).Reply()
	if err != nil {
		return nil, err
	}
	return keymapKeycodes(reply.Keys), nil
}

// Decodes a 256 bit vector, bit n set means keycode n is down.
func keymapKeycodes(keys []byte) []xproto.Keycode {
	var u []xproto.Keycode
	for i, b := range keys {
		for j := 0; j < 8; j++ {
			if b&(1<<uint(j)) != 0 {
				u = append(u, xproto.Keycode(i*8+j))
			}
		}
	}
	return u
}
