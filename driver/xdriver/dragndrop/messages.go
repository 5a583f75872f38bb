package dragndrop

import "github.com/BurntSushi/xgb/xproto"

// Target to source reply to XdndPosition.
type StatusEvent struct {
	Window   xproto.Window // target
	Accepted bool
	Action   xproto.Atom
}

const (
	statusAcceptFlag        = 1 << 0
	statusSendPositionsFlag = 1 << 1
)

func (s *StatusEvent) Data32() [5]uint32 {
	flags := uint32(statusSendPositionsFlag)
	action := s.Action
	if s.Accepted {
		flags |= statusAcceptFlag
	} else {
		action = xproto.AtomNone
	}
	return [5]uint32{
		uint32(s.Window),
		flags,
		0, // empty rectangle: keep sending positions
		0,
		uint32(action),
	}
}

//----------

// Target to source reply to XdndDrop.
type FinishedEvent struct {
	Window   xproto.Window // target
	Accepted bool
	Action   xproto.Atom
}

func (f *FinishedEvent) Data32() [5]uint32 {
	acc := uint32(0)
	action := f.Action
	if f.Accepted {
		acc = 1 // first bit of uint32
	} else {
		action = xproto.AtomNone
	}
	return [5]uint32{
		uint32(f.Window),
		acc,
		uint32(action),
		0, // pad
		0, // pad
	}
}
