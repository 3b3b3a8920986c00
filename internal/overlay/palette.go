package overlay

import "image/color"

// palette holds the marker/line colors cycled by subject index (BGR-ordered
// channels are handled by gocv taking color.RGBA directly).
var palette = []color.RGBA{
	{R: 0, G: 220, B: 90, A: 255},   // green
	{R: 66, G: 135, B: 245, A: 255}, // blue
	{R: 240, G: 90, B: 60, A: 255},  // red-orange
	{R: 250, G: 200, B: 40, A: 255}, // yellow
	{R: 190, G: 80, B: 230, A: 255}, // purple
}

// subjectColor returns the palette color for a subject index.
func subjectColor(i int) color.RGBA {
	return palette[i%len(palette)]
}
