package pipeline

import (
	"image"
	"image/color"
	"strconv"

	"github.com/LdDl/blobtrack/mot"
	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"
)

var (
	confirmedColor = color.RGBA{R: 0, G: 200, B: 0, A: 255}
	tentativeColor = color.RGBA{R: 230, G: 200, B: 0, A: 255}
)

// Annotate draws the tracked boxes and their identifiers over a copy of the
// frame. Confirmed tracks are green, tentative ones yellow. The input frame
// is not modified.
func Annotate(frame image.Image, boxes []mot.TrackedBox) image.Image {
	dc := gg.NewContextForImage(frame)
	dc.SetFontFace(basicfont.Face7x13)
	dc.SetLineWidth(1.5)

	for _, b := range boxes {
		if b.Confirmed {
			dc.SetColor(confirmedColor)
		} else {
			dc.SetColor(tentativeColor)
		}
		dc.DrawRectangle(b.Box.X, b.Box.Y, b.Box.Width, b.Box.Height)
		dc.Stroke()

		label := strconv.FormatInt(b.ID, 10)
		ty := b.Box.Y - 3
		if ty < float64(basicfont.Face7x13.Height) {
			ty = b.Box.Y2() + float64(basicfont.Face7x13.Height)
		}
		dc.DrawString(label, b.Box.X, ty)
	}
	return dc.Image()
}
