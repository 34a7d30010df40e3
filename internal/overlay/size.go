package overlay

import "fmt"

// Pixel-to-cell conversion used when sizing overlays in a terminal.
const (
	PixelsPerColumn = 8
	PixelsPerRow    = 16

	// MinWidthPixels and MaxWidthPixels bound auto-sized overlays.
	MinWidthPixels = 192
	MaxWidthPixels = 640
)

// Width is a width bucket.
type Width string

const (
	WidthAuto    Width = "auto"
	WidthSmall   Width = "small"
	WidthMedium  Width = "medium"
	WidthLarge   Width = "large"
	WidthXLarge  Width = "xlarge"
	WidthXXLarge Width = "xxlarge"
)

var widthPixels = map[Width]int{
	WidthSmall:   256,
	WidthMedium:  320,
	WidthLarge:   480,
	WidthXLarge:  640,
	WidthXXLarge: 960,
}

// Pixels returns the bucket's width. Auto reports false.
func (w Width) Pixels() (int, bool) {
	px, ok := widthPixels[w]
	return px, ok
}

// Cells returns the bucket's width in columns, or 0 for auto.
func (w Width) Cells() int {
	px, _ := w.Pixels()
	return px / PixelsPerColumn
}

// Validate rejects unknown buckets. The empty value means auto.
func (w Width) Validate() error {
	if w == "" || w == WidthAuto {
		return nil
	}
	if _, ok := widthPixels[w]; !ok {
		return fmt.Errorf("unknown width %q", string(w))
	}
	return nil
}

// Height is a height bucket.
type Height string

const (
	HeightAuto   Height = "auto"
	HeightXSmall Height = "xsmall"
	HeightSmall  Height = "small"
	HeightMedium Height = "medium"
	HeightLarge  Height = "large"
	HeightXLarge Height = "xlarge"
)

var heightPixels = map[Height]int{
	HeightXSmall: 192,
	HeightSmall:  256,
	HeightMedium: 320,
	HeightLarge:  432,
	HeightXLarge: 600,
}

// Pixels returns the bucket's height. Auto reports false.
func (h Height) Pixels() (int, bool) {
	px, ok := heightPixels[h]
	return px, ok
}

// Cells returns the bucket's height in rows, or 0 for auto.
func (h Height) Cells() int {
	px, _ := h.Pixels()
	return px / PixelsPerRow
}

// Validate rejects unknown buckets. The empty value means auto.
func (h Height) Validate() error {
	if h == "" || h == HeightAuto {
		return nil
	}
	if _, ok := heightPixels[h]; !ok {
		return fmt.Errorf("unknown height %q", string(h))
	}
	return nil
}
