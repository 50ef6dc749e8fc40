package palette

// BlockID identifies a palette entry. IDs are 1-based; 0 means "no block".
type BlockID uint16

// None is the zero BlockID, never assigned to a palette entry.
const None BlockID = 0

// RGB is an 8-bit-per-channel color.
type RGB struct {
	R, G, B uint8
}

// Pack returns the color as 0xRRGGBB.
func (c RGB) Pack() uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// UnpackRGB is the inverse of RGB.Pack. Bits above 0xFFFFFF are ignored.
func UnpackRGB(v uint32) RGB {
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}
}

// MidGray is the neutral diffuse color assumed for materials that define none.
var MidGray = RGB{128, 128, 128}

// Entry is one placeable block type with its representative color.
type Entry struct {
	ID    BlockID
	Name  string // host placeable name, e.g. "core:stone"
	Color RGB
}
