package raster

// ClassGrid is a single-band categorical raster of class codes sharing
// the georeferencing of the stack it was predicted from. Code 0 is
// no-data; class codes start at 1.
type ClassGrid struct {
	Width   int
	Height  int
	OriginX float64
	OriginY float64
	PixelW  float64
	PixelH  float64
	Proj    string
	Codes   []uint8
}

// NewClassGridLike allocates a zeroed class grid with the georeferencing
// of the given grid.
func NewClassGridLike(ref *Grid) *ClassGrid {
	return &ClassGrid{
		Width:   ref.Width,
		Height:  ref.Height,
		OriginX: ref.OriginX,
		OriginY: ref.OriginY,
		PixelW:  ref.PixelW,
		PixelH:  ref.PixelH,
		Proj:    ref.Proj,
		Codes:   make([]uint8, ref.Width*ref.Height),
	}
}

// At returns the class code at the given column and row.
func (c *ClassGrid) At(col, row int) uint8 {
	return c.Codes[row*c.Width+col]
}

// Set writes the class code at the given column and row.
func (c *ClassGrid) Set(col, row int, code uint8) {
	c.Codes[row*c.Width+col] = code
}

// Counts returns the pixel count per class code, excluding no-data.
func (c *ClassGrid) Counts() map[uint8]int64 {
	counts := make(map[uint8]int64)
	for _, code := range c.Codes {
		if code != 0 {
			counts[code]++
		}
	}
	return counts
}

// PixelArea returns the area of one pixel in CRS units squared.
func (c *ClassGrid) PixelArea() float64 {
	return c.PixelW * c.PixelH
}
