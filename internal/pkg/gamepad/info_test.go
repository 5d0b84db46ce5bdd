package gamepad

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const procData = `I: Bus=0019 Vendor=0000 Product=0001 Version=0000
N: Name="Power Button"
P: Phys=PNP0C0C/button/input0
S: Sysfs=/devices/LNXSYSTM:00/LNXPWRBN:00/input/input0
U: Uniq=
H: Handlers=kbd event0
B: PROP=0
B: EV=3
B: KEY=10000000000000 0

I: Bus=0003 Vendor=054c Product=09cc Version=8111
N: Name="Sony Interactive Entertainment Wireless Controller"
P: Phys=usb-0000:00:14.0-2/input3
S: Sysfs=/devices/pci0000:00/0000:00:14.0/usb1/1-2/1-2:1.3/0003:054C:09CC.0004/input/input21
U: Uniq=
H: Handlers=event18 js0
B: PROP=0
B: EV=20000b
B: KEY=7fdb000000000000 0 0 0 0
B: ABS=3003f
B: FF=107030000 0

`

func TestUnmarshal(t *testing.T) {
	infos, err := unmarshal([]byte(procData))
	require.NoError(t, err)
	require.Len(t, infos, 2)

	assert.Equal(t, "Power Button", infos[0].Name)
	assert.Equal(t, []string{"kbd", "event0"}, infos[0].Handlers)
	assert.False(t, infos[0].IsGamepad())

	pad := infos[1]
	assert.Equal(t, "Sony Interactive Entertainment Wireless Controller", pad.Name)
	assert.Equal(t, InputID{Bus: 0x3, Vendor: 0x54c, Product: 0x9cc, Version: 0x8111}, pad.ID)
	assert.Equal(t, "usb-0000:00:14.0-2/input3", pad.Phys)
	assert.Equal(t, "", pad.Uniq)
	assert.Equal(t, "event18", pad.Event())
	assert.Equal(t, "/dev/input/event18", pad.EventPath())
	assert.True(t, pad.IsGamepad())
}

func TestUnmarshalEmpty(t *testing.T) {
	infos, err := unmarshal(nil)
	require.NoError(t, err)
	assert.Empty(t, infos)
}

func TestUnmarshalMalformed(t *testing.T) {
	_, err := unmarshal([]byte("I: Bus=zz\n"))
	assert.Error(t, err)
}
