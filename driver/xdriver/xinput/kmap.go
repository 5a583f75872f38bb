package xinput

import (
	"unicode"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/jmigpin/xevents/event"
	"github.com/pkg/errors"
)

// $ man keymaps
// https://tronche.com/gui/x/xlib/input/XGetKeyboardMapping.html
// https://tronche.com/gui/x/xlib/input/keyboard-encoding.html
// http://wiki.linuxquestions.org/wiki/List_of_Keysyms_Recognised_by_Xmodmap

// xproto.Keycode is a physical key.
// xproto.Keysym is the encoding of a symbol on the cap of a key.
// A list of keysyms is associated with each keycode.

//----------

// Keyboard mapping
type KMap struct {
	conn *xgb.Conn
	t    *table
}

type table struct {
	minKeycode xproto.Keycode
	maxKeycode xproto.Keycode
	perKeycode int // usually ~7
	keysyms    []xproto.Keysym

	numLock event.KeyModifiers
	altGr   event.KeyModifiers

	globalAutoRepeat bool
	autoRepeats      [32]byte // bit per keycode
}

func NewKMap(conn *xgb.Conn) (*KMap, error) {
	km := &KMap{conn: conn}
	if err := km.Reload(); err != nil {
		return nil, err
	}
	return km, nil
}

//----------

func (km *KMap) Reload() error {
	t := &table{}
	if err := t.readKeyboardMapping(km.conn); err != nil {
		return err
	}
	if err := t.readModMapping(km.conn); err != nil {
		return err
	}
	if err := t.readKeyboardControl(km.conn); err != nil {
		return err
	}
	km.t = t
	return nil
}

func (t *table) readKeyboardMapping(conn *xgb.Conn) error {
	si := xproto.Setup(conn)
	count := int(si.MaxKeycode) - int(si.MinKeycode) + 1
	if count <= 0 {
		return errors.Errorf("bad keycode count: %v", count)
	}
	reply, err := xproto.GetKeyboardMapping(conn, si.MinKeycode, byte(count)).Reply()
	if err != nil {
		return err
	}
	if reply.KeysymsPerKeycode < 2 {
		return errors.New("keysyms per keycode < 2")
	}
	t.minKeycode = si.MinKeycode
	t.maxKeycode = si.MaxKeycode
	t.perKeycode = int(reply.KeysymsPerKeycode)
	t.keysyms = reply.Keysyms
	return nil
}

func (t *table) readModMapping(conn *xgb.Conn) error {
	modMap, err := xproto.GetModifierMapping(conn).Reply()
	if err != nil {
		return err
	}
	t.detectModGroups(modMap.Keycodes, int(modMap.KeycodesPerModifier))
	return nil
}

func (t *table) readKeyboardControl(conn *xgb.Conn) error {
	reply, err := xproto.GetKeyboardControl(conn).Reply()
	if err != nil {
		return err
	}
	t.globalAutoRepeat = reply.GlobalAutoRepeat == xproto.AutoRepeatModeOn
	copy(t.autoRepeats[:], reply.AutoRepeats)
	return nil
}

// 8 modifiers groups, that can have n keycodes
//
//	0	Shift
//	1	Lock (Caps Lock)
//	2	Control
//	--- detect
//	3	Mod1 (Usually Alt)
//	4	Mod2 (Often Num Lock)
//	5	Mod3 (Rarely used)
//	6	Mod4 (Often Super/Meta)
//	7	Mod5 (Often AltGr)
func (t *table) detectModGroups(keycodes []xproto.Keycode, stride int) {
	type KS = xproto.Keysym
	numLocks := []KS{
		0xff7f, // XK_Num_Lock
	}
	altGrs := []KS{
		0xfe03, // XK_ISO_Level3_Shift
		0xfe11, // XK_ISO_Level5_Shift
		0xff7e, // XK_ISO_Group_Shift
	}

	// defaults
	t.numLock = event.Mod2
	t.altGr = event.Mod5

	type pair struct {
		mod *event.KeyModifiers
		kss []KS
	}
	pairs := []pair{
		{&t.numLock, numLocks},
		{&t.altGr, altGrs},
	}

	for g := 3; g < 8; g++ {
		if (g+1)*stride > len(keycodes) {
			break
		}
		kcs := keycodes[g*stride : (g+1)*stride]
	kcLoop: // iterate keycodes/keysyms, keep first found group
		for _, kc := range kcs {
			for _, ks := range t.keycodeToKeysyms(kc) {
				for _, p := range pairs {
					for _, ks2 := range p.kss {
						if ks == ks2 {
							*p.mod = event.KeyModifiers(1 << g)
							break kcLoop
						}
					}
				}
			}
		}
	}
}

//----------

func (km *KMap) Lookup(kc xproto.Keycode, mods event.KeyModifiers, group int) (event.Key, string) {
	return km.t.lookup(kc, mods, group)
}

func (km *KMap) Keysym(kc xproto.Keycode, mods event.KeyModifiers, group int) xproto.Keysym {
	return km.t.keysymsToKeysym(km.t.keycodeToKeysyms(kc), mods, group)
}

func (km *KMap) KeyRepeats(kc xproto.Keycode) bool {
	return km.t.keyRepeats(kc)
}

//----------

func (t *table) lookup(kc xproto.Keycode, mods event.KeyModifiers, group int) (event.Key, string) {
	ks := t.keysymsToKeysym(t.keycodeToKeysyms(kc), mods, group)
	key := keysymKey(ks)
	if key != event.KeyCharacter {
		return key, ""
	}
	return key, keysymText(ks)
}

func (t *table) keyRepeats(kc xproto.Keycode) bool {
	if !t.globalAutoRepeat {
		return false
	}
	return t.autoRepeats[kc/8]&(1<<(kc%8)) != 0
}

func (t *table) keycodeToKeysyms(keycode xproto.Keycode) []xproto.Keysym {
	if keycode < t.minKeycode || keycode > t.maxKeycode {
		return nil
	}
	y := int(keycode - t.minKeycode)
	if (y+1)*t.perKeycode > len(t.keysyms) {
		return nil
	}
	return t.keysyms[y*t.perKeycode : (y+1)*t.perKeycode]
}

func (t *table) keysymsToKeysym(kss []xproto.Keysym, em event.KeyModifiers, group int) xproto.Keysym {
	hasShift := em.HasAny(event.ModShift)
	hasCapsLock := em.HasAny(event.ModLock)
	hasNumLock := em.HasAny(t.numLock)

	// keysym group: the core mapping keeps the level3 symbols in the third pair
	if group < 0 || group > 1 {
		group = 0
	}
	if em.HasAny(t.altGr) {
		group = 2
	}

	// each group has two symbols
	i1 := group * 2
	i2 := i1 + 1
	if i1 >= len(kss) {
		return 0
	}
	if i2 >= len(kss) {
		i2 = i1
	}
	ks1, ks2 := kss[i1], kss[i2]
	if ks1 == 0 && group > 0 { // empty group: fall back to the first
		ks1, ks2 = kss[0], kss[1]
	}
	if ks2 == 0 {
		ks2 = ks1
	}

	// keypad
	if hasNumLock && isKeypad(ks2) {
		if hasShift {
			return ks1
		}
		return ks2
	}

	r1 := keysymRune(ks1)
	cased := r1 != 0 && unicode.ToUpper(r1) != unicode.ToLower(r1)
	if cased {
		shifted := hasShift != hasCapsLock
		if shifted {
			return ks2
		}
		return ks1
	}

	if hasShift {
		return ks2
	}
	return ks1
}
