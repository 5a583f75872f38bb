package xdriver

import (
	"github.com/jmigpin/xevents/devices"
)

// Device hierarchy of a server without XInput2: the two core devices only.
type CoreDevices struct{}

var (
	corePointer = devices.Info{
		Id:         devices.VirtualCorePointer,
		Attachment: devices.VirtualCoreKeyboard,
		Name:       "Virtual core pointer",
		Use:        devices.MasterPointer,
	}
	coreKeyboard = devices.Info{
		Id:         devices.VirtualCoreKeyboard,
		Attachment: devices.VirtualCorePointer,
		Name:       "Virtual core keyboard",
		Use:        devices.MasterKeyboard,
	}
)

func (CoreDevices) QueryDevices(id devices.DeviceId) ([]devices.Info, error) {
	switch id {
	case devices.AllDevices, devices.AllMasterDevices:
		return []devices.Info{corePointer, coreKeyboard}, nil
	case devices.VirtualCorePointer:
		return []devices.Info{corePointer}, nil
	case devices.VirtualCoreKeyboard:
		return []devices.Info{coreKeyboard}, nil
	}
	return nil, nil
}
