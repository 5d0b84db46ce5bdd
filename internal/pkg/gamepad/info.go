package gamepad

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const procDevices = "/proc/bus/input/devices"

type InputID struct {
	Bus     uint16
	Vendor  uint16
	Product uint16
	Version uint16
}

func (i InputID) String() string {
	return fmt.Sprintf("0x%04x 0x%04x 0x%04x 0x%04x", i.Bus, i.Vendor, i.Product, i.Version)
}

// DeviceInfo contains information of every reported input device.
// It is supposed to be created by unmarshal function only.
type DeviceInfo struct {
	ID       InputID  // ID of the device
	Name     string   // name of the device
	Phys     string   // physical path to the device in the system hierarchy
	Uniq     string   // unique identification code for the device (if device has it)
	Handlers []string // list of input handles associated with the device
}

// Event returns event name, like "event0" for /dev/input/event0
func (d *DeviceInfo) Event() string {
	for _, handler := range d.Handlers {
		if strings.HasPrefix(handler, "event") {
			return handler
		}
	}
	return ""
}

// EventPath returns a /dev/input/event filepath for button presses
func (d *DeviceInfo) EventPath() string {
	event := d.Event()
	if event == "" {
		return ""
	}
	return fmt.Sprintf("/dev/input/%s", event)
}

// IsGamepad tells if the kernel registered a joystick handler for the device.
func (d *DeviceInfo) IsGamepad() bool {
	if d.Event() == "" {
		return false
	}
	for _, h := range d.Handlers {
		if strings.HasPrefix(h, "js") {
			return true
		}
	}
	return false
}

func (d *DeviceInfo) String() string {
	return fmt.Sprintf("\"%s\" (%s, %s, \"%s\")", d.Name, d.ID.String(), d.Event(), d.Uniq)
}

// DetectDevices returns gamepads currently reported by the kernel.
func DetectDevices() ([]DeviceInfo, error) {
	data, err := os.ReadFile(procDevices)
	if err != nil {
		return nil, fmt.Errorf("reading %s failed: %w", procDevices, err)
	}

	infos, err := unmarshal(data)
	if err != nil {
		return nil, err
	}

	var gamepads = make([]DeviceInfo, 0)
	for _, di := range infos {
		if di.IsGamepad() {
			gamepads = append(gamepads, di)
		}
	}
	return gamepads, nil
}

// unmarshal parses /proc/bus/input/devices file
func unmarshal(data []byte) ([]DeviceInfo, error) {
	var devices = make([]DeviceInfo, 0)

	var device DeviceInfo
	var started bool

	for _, line := range strings.Split(string(data), "\n") {
		if line == "" {
			if started {
				devices = append(devices, device)
				device = DeviceInfo{}
				started = false
			}
			continue
		}
		if len(line) < 3 {
			return devices, fmt.Errorf("malformed line: \"%s\"", line)
		}
		started = true

		label := line[:1]
		info := line[3:]

		switch label {
		case "I":
			for _, param := range strings.Split(info, " ") {
				fields := strings.SplitN(param, "=", 2)
				if len(fields) != 2 {
					return devices, fmt.Errorf("malformed id parameter: \"%s\"", param)
				}
				v, err := strconv.ParseUint(fields[1], 16, 16)
				if err != nil {
					return devices, fmt.Errorf("hex decoding failed: %w", err)
				}
				switch fields[0] {
				case "Bus":
					device.ID.Bus = uint16(v)
				case "Vendor":
					device.ID.Vendor = uint16(v)
				case "Product":
					device.ID.Product = uint16(v)
				case "Version":
					device.ID.Version = uint16(v)
				}
			}
		case "N":
			device.Name = strings.Trim(strings.TrimPrefix(info, "Name="), "\"")
		case "P":
			device.Phys = strings.TrimPrefix(info, "Phys=")
		case "U":
			device.Uniq = strings.TrimPrefix(info, "Uniq=")
		case "H":
			handlers := strings.TrimPrefix(info, "Handlers=")
			device.Handlers = strings.Fields(handlers)
		}
	}

	if started {
		devices = append(devices, device)
	}

	return devices, nil
}
