package wordcloud

import (
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

const titleBand = 40

// Title formats the caption drawn above the cloud.
func Title(keyword string, location string, at time.Time) string {
	return fmt.Sprintf("Keywords:[%s] Location:[%s] %s", keyword, location, at.Format("2006-01-02 15:04:05"))
}

// Render lays out weights and draws them. When opts.Title is set the image
// gains a caption band above the cloud.
func Render(weights map[string]float64, opts Options) (image.Image, error) {
	opts = withDefaults(opts)
	placements, err := Layout(weights, opts)
	if err != nil {
		return nil, err
	}

	top := 0
	if opts.Title != "" {
		top = titleBand
	}

	dc := gg.NewContext(opts.Width, opts.Height+top)
	dc.SetColor(opts.Background)
	dc.Clear()

	if opts.Title != "" {
		if err := drawTitle(dc, opts.Title, opts.Width); err != nil {
			return nil, err
		}
	}

	ttf, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}
	faces := newFaceCache(ttf)
	defer faces.Close()

	for _, p := range placements {
		dc.SetFontFace(faces.Face(p.FontSize))
		dc.SetColor(p.Color)
		dc.DrawString(p.Term, p.X, float64(top)+p.Y+p.Ascent)
	}
	return dc.Image(), nil
}

// SavePNG writes img to path.
func SavePNG(img image.Image, path string) error {
	return gg.SavePNG(path, img)
}

func drawTitle(dc *gg.Context, title string, width int) error {
	ttf, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return err
	}
	face := truetype.NewFace(ttf, &truetype.Options{Size: 16, DPI: 72})
	defer face.Close()

	dc.SetFontFace(face)
	dc.SetColor(color.Black)
	dc.DrawStringAnchored(title, float64(width)/2, titleBand/2, 0.5, 0.5)
	return nil
}
