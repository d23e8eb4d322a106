package terrapin

import "image/color"

// Named colors for pen, fill and background use.
var (
	Black  = color.RGBA{0x00, 0x00, 0x00, 0xFF}
	White  = color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}
	Red    = color.RGBA{0xFF, 0x00, 0x00, 0xFF}
	Green  = color.RGBA{0x00, 0x80, 0x00, 0xFF}
	Blue   = color.RGBA{0x00, 0x00, 0xFF, 0xFF}
	Yellow = color.RGBA{0xFF, 0xFF, 0x00, 0xFF}
	Orange = color.RGBA{0xFF, 0xA5, 0x00, 0xFF}
	Purple = color.RGBA{0x80, 0x00, 0x80, 0xFF}
	Gray   = color.RGBA{0x80, 0x80, 0x80, 0xFF}
)
