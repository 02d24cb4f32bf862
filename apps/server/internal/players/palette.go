package players

// Material 400 tones; red, deep orange and yellow are left out so players
// never look like mines or warnings.
var palette = [][4]byte{
	{0x8d, 0x6e, 0x63, 0xff}, // brown
	{0xff, 0xa7, 0x26, 0xff}, // orange
	{0xff, 0xca, 0x28, 0xff}, // amber
	{0xd4, 0xe1, 0x57, 0xff}, // lime
	{0x9c, 0xcc, 0x65, 0xff}, // light green
	{0x66, 0xbb, 0x6a, 0xff}, // green
	{0x26, 0xa6, 0x9a, 0xff}, // teal
	{0x26, 0xc6, 0xda, 0xff}, // cyan
	{0x29, 0xb6, 0xf6, 0xff}, // light blue
	{0x42, 0xa5, 0xf5, 0xff}, // blue
	{0x56, 0x6b, 0xc0, 0xff}, // indigo
	{0x7e, 0x57, 0xc2, 0xff}, // deep purple
	{0xab, 0x47, 0xbc, 0xff}, // purple
	{0xec, 0x40, 0x7a, 0xff}, // pink
}

// ColorFor returns the RGBA color assigned to a player id.
func ColorFor(id uint8) [4]byte {
	return palette[int(id)%len(palette)]
}
