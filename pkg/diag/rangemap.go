package diag

import (
	"fmt"
	"image"
	"image/color"

	"github.com/user/avdcmd/pkg/allocator"
	"github.com/user/avdcmd/pkg/ports"
)

// MapStyle controls the drawn address map.
type MapStyle struct {
	Width        int
	RowHeight    int
	HeaderHeight int
	Padding      int
	LabelWidth   int
	SizeWidth    int

	Background color.Color
	Track      color.Color
	Border     color.Color
	Text       color.Color
	Palette    map[Category]color.Color
}

// DefaultMapStyle returns the style used by the CLI.
func DefaultMapStyle() MapStyle {
	return MapStyle{
		Width:        1024,
		RowHeight:    18,
		HeaderHeight: 20,
		Padding:      8,
		LabelWidth:   96,
		SizeWidth:    80,
		Background:   color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		Track:        color.RGBA{R: 0xee, G: 0xee, B: 0xee, A: 0xff},
		Border:       color.RGBA{R: 0xcc, G: 0xcc, B: 0xcc, A: 0xff},
		Text:         color.RGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff},
		Palette: map[Category]color.Color{
			CategoryOther:     color.RGBA{R: 0x99, G: 0x99, B: 0x99, A: 0xff},
			CategoryFifo:      color.RGBA{R: 0xe0, G: 0x7a, B: 0x5f, A: 0xff},
			CategoryReference: color.RGBA{R: 0x3d, G: 0x85, B: 0xc6, A: 0xff},
			CategoryTile:      color.RGBA{R: 0x81, G: 0xb2, B: 0x9a, A: 0xff},
			CategoryFrame:     color.RGBA{R: 0xf2, G: 0xcc, B: 0x8f, A: 0xff},
		},
	}
}

// RenderRangeMap draws one row per range. Each row places the range on a
// track spanning the whole layout, so gaps and padding show up as empty
// track.
func RenderRangeMap(r ports.Renderer, ranges []allocator.Range, style MapStyle) image.Image {
	height := style.Padding*2 + style.HeaderHeight + len(ranges)*style.RowHeight
	canvas := r.CreateCanvas(style.Width, height, style.Background)

	var end uint64
	for _, rg := range ranges {
		if rg.End() > end {
			end = rg.End()
		}
	}
	if end == 0 {
		end = 1
	}

	labelWidth := style.LabelWidth
	for _, rg := range ranges {
		if w, _ := canvas.MeasureText(rg.Name); int(w)+12 > labelWidth {
			labelWidth = int(w) + 12
		}
	}

	trackX := style.Padding + labelWidth
	trackW := style.Width - style.Padding*2 - labelWidth - style.SizeWidth
	if trackW < 1 {
		trackW = 1
	}

	headerY := style.Padding + style.HeaderHeight/2
	textStyle := ports.TextStyle{Color: style.Text, Align: ports.AlignLeft}
	canvas.DrawText("0x0", trackX, headerY, textStyle)
	canvas.DrawText(fmt.Sprintf("0x%x", end), trackX+trackW, headerY,
		ports.TextStyle{Color: style.Text, Align: ports.AlignRight})

	for i, rg := range ranges {
		y := style.Padding + style.HeaderHeight + i*style.RowHeight
		midY := y + style.RowHeight/2

		canvas.DrawText(rg.Name, trackX-6, midY, ports.TextStyle{Color: style.Text, Align: ports.AlignRight})
		canvas.DrawRect(trackX, y+2, trackW, style.RowHeight-4, style.Track)

		x0 := trackX + int(float64(rg.IOVA)/float64(end)*float64(trackW))
		w := int(float64(rg.Size) / float64(end) * float64(trackW))
		if w < 1 {
			w = 1
		}
		canvas.DrawRect(x0, y+2, w, style.RowHeight-4, paletteColor(style, Classify(rg.Name)))

		canvas.DrawText(fmt.Sprintf("0x%x", rg.Size), trackX+trackW+6, midY, textStyle)
	}

	if len(ranges) > 0 {
		top := style.Padding + style.HeaderHeight
		canvas.DrawRectStroke(trackX, top, trackW, len(ranges)*style.RowHeight, style.Border, 1)
	}

	return canvas.ToImage()
}

// Thumbnail scales img down to width, keeping its aspect ratio. Images
// already narrower than width are returned unchanged.
func Thumbnail(r ports.Renderer, img image.Image, width int) image.Image {
	b := img.Bounds()
	if width <= 0 || b.Dx() <= width {
		return img
	}
	height := b.Dy() * width / b.Dx()
	if height < 1 {
		height = 1
	}
	return r.ResizeImage(img, width, height)
}

func paletteColor(style MapStyle, c Category) color.Color {
	if col, ok := style.Palette[c]; ok {
		return col
	}
	return style.Border
}
