package notif

import "strconv"

type Color uint

const (
	ColorError   Color = 0xff0000
	ColorWarn    Color = 0xffa500
	ColorSuccess Color = 0x00ff00
	ColorInfo    Color = 0x0000ff
)

func (c Color) HexString() string {
	return "#" + strconv.FormatUint(uint64(c), 16)
}

func (c Color) DecString() string {
	return strconv.FormatUint(uint64(c), 10)
}

func (c Color) String() string {
	return c.HexString()
}
