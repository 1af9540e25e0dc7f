package wordcloud

import (
	"errors"
	"image/color"
	"math"
	"math/rand"

	"github.com/golang/freetype/truetype"
	"github.com/jimezsa/jobminer/internal/textstats"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

var ErrNoWords = errors.New("no terms with positive weight to draw")

// Options control canvas size, term count and styling.
type Options struct {
	Width           int
	Height          int
	MaxWords        int
	Background      color.Color
	Palette         []color.Color
	Title           string
	MinFontSize     float64
	MaxFontSize     float64
	FontStep        float64
	RelativeScaling float64
	Seed            int64
}

func DefaultOptions() Options {
	return Options{
		Width:           800,
		Height:          600,
		MaxWords:        500,
		Background:      color.White,
		Palette:         viridis,
		MinFontSize:     4,
		FontStep:        1,
		RelativeScaling: 0.5,
		Seed:            1,
	}
}

// viridis samples the matplotlib colormap used by default in word clouds.
var viridis = []color.Color{
	color.RGBA{68, 1, 84, 255},
	color.RGBA{72, 40, 120, 255},
	color.RGBA{62, 74, 137, 255},
	color.RGBA{49, 104, 142, 255},
	color.RGBA{38, 130, 142, 255},
	color.RGBA{31, 158, 137, 255},
	color.RGBA{53, 183, 121, 255},
	color.RGBA{109, 205, 89, 255},
	color.RGBA{180, 222, 44, 255},
}

// Placement is one term positioned on the canvas. X and Y are the top-left
// corner of its bounding box.
type Placement struct {
	Term     string
	Weight   float64
	FontSize float64
	X, Y     float64
	W, H     float64
	Ascent   float64
	Color    color.Color
}

// Layout positions up to opts.MaxWords terms, heaviest first, on a spiral
// from the canvas center. Terms that do not fit even at MinFontSize end the
// layout.
func Layout(weights map[string]float64, opts Options) ([]Placement, error) {
	opts = withDefaults(opts)

	ranked := make([]textstats.TermWeight, 0, len(weights))
	for _, tw := range textstats.Top(weights, 0) {
		if tw.Weight > 0 && !math.IsInf(tw.Weight, 0) && !math.IsNaN(tw.Weight) {
			ranked = append(ranked, tw)
		}
	}
	if len(ranked) > opts.MaxWords {
		ranked = ranked[:opts.MaxWords]
	}
	if len(ranked) == 0 {
		return nil, ErrNoWords
	}

	ttf, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}
	faces := newFaceCache(ttf)
	defer faces.Close()

	rng := rand.New(rand.NewSource(opts.Seed))
	occupied := newGrid(opts.Width, opts.Height, 2)

	var placements []Placement
	size := opts.MaxFontSize
	lastWeight := ranked[0].Weight
	for i, tw := range ranked {
		if i > 0 {
			rs := opts.RelativeScaling
			size = math.Round((rs*(tw.Weight/lastWeight) + (1 - rs)) * size)
		}

		placed := false
		for ; size >= opts.MinFontSize; size -= opts.FontStep {
			face := faces.Face(size)
			metrics := face.Metrics()
			w := float64(font.MeasureString(face, tw.Term).Ceil())
			ascent := float64(metrics.Ascent.Ceil())
			h := ascent + float64(metrics.Descent.Ceil())
			if w > float64(opts.Width) || h > float64(opts.Height) {
				continue
			}

			x, y, ok := spiralFit(occupied, opts.Width, opts.Height, w, h, rng.Float64()*2*math.Pi)
			if !ok {
				continue
			}
			occupied.mark(x, y, x+w, y+h)
			placements = append(placements, Placement{
				Term:     tw.Term,
				Weight:   tw.Weight,
				FontSize: size,
				X:        x,
				Y:        y,
				W:        w,
				H:        h,
				Ascent:   ascent,
				Color:    opts.Palette[rng.Intn(len(opts.Palette))],
			})
			placed = true
			break
		}
		if !placed {
			break
		}
		lastWeight = tw.Weight
	}

	if len(placements) == 0 {
		return nil, ErrNoWords
	}
	return placements, nil
}

func withDefaults(opts Options) Options {
	defaults := DefaultOptions()
	if opts.Width <= 0 {
		opts.Width = defaults.Width
	}
	if opts.Height <= 0 {
		opts.Height = defaults.Height
	}
	if opts.MaxWords <= 0 {
		opts.MaxWords = defaults.MaxWords
	}
	if opts.Background == nil {
		opts.Background = defaults.Background
	}
	if len(opts.Palette) == 0 {
		opts.Palette = defaults.Palette
	}
	if opts.MinFontSize <= 0 {
		opts.MinFontSize = defaults.MinFontSize
	}
	if opts.MaxFontSize <= 0 {
		opts.MaxFontSize = math.Round(float64(opts.Height) / 4)
	}
	if opts.FontStep <= 0 {
		opts.FontStep = defaults.FontStep
	}
	if opts.RelativeScaling < 0 || opts.RelativeScaling > 1 {
		opts.RelativeScaling = defaults.RelativeScaling
	}
	return opts
}

func spiralFit(g *grid, width, height int, w, h float64, phase float64) (float64, float64, bool) {
	cx := float64(width) / 2
	cy := float64(height) / 2
	aspect := float64(height) / float64(width)
	maxRadius := math.Hypot(cx, cy)

	for t := 0.0; ; t += 0.1 {
		r := 1.5 * t
		if r > maxRadius {
			return 0, 0, false
		}
		x := math.Round(cx + r*math.Cos(t+phase) - w/2)
		y := math.Round(cy + r*aspect*math.Sin(t+phase) - h/2)
		if x < 0 || y < 0 || x+w > float64(width) || y+h > float64(height) {
			continue
		}
		if g.free(x, y, x+w, y+h) {
			return x, y, true
		}
	}
}

type faceCache struct {
	ttf   *truetype.Font
	faces map[float64]font.Face
}

func newFaceCache(ttf *truetype.Font) *faceCache {
	return &faceCache{ttf: ttf, faces: map[float64]font.Face{}}
}

func (c *faceCache) Face(size float64) font.Face {
	if face, ok := c.faces[size]; ok {
		return face
	}
	face := truetype.NewFace(c.ttf, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingFull})
	c.faces[size] = face
	return face
}

func (c *faceCache) Close() {
	for _, face := range c.faces {
		_ = face.Close()
	}
}

// grid is a coarse occupancy map of the canvas.
type grid struct {
	cell       int
	cols, rows int
	used       []bool
}

func newGrid(width, height, cell int) *grid {
	cols := (width + cell - 1) / cell
	rows := (height + cell - 1) / cell
	return &grid{cell: cell, cols: cols, rows: rows, used: make([]bool, cols*rows)}
}

func (g *grid) cells(x0, y0, x1, y1 float64) (int, int, int, int) {
	c0 := clamp(int(x0)/g.cell, 0, g.cols-1)
	r0 := clamp(int(y0)/g.cell, 0, g.rows-1)
	c1 := clamp((int(math.Ceil(x1))-1)/g.cell, 0, g.cols-1)
	r1 := clamp((int(math.Ceil(y1))-1)/g.cell, 0, g.rows-1)
	return c0, r0, c1, r1
}

func (g *grid) free(x0, y0, x1, y1 float64) bool {
	c0, r0, c1, r1 := g.cells(x0, y0, x1, y1)
	for r := r0; r <= r1; r++ {
		for c := c0; c <= c1; c++ {
			if g.used[r*g.cols+c] {
				return false
			}
		}
	}
	return true
}

func (g *grid) mark(x0, y0, x1, y1 float64) {
	c0, r0, c1, r1 := g.cells(x0, y0, x1, y1)
	for r := r0; r <= r1; r++ {
		for c := c0; c <= c1; c++ {
			g.used[r*g.cols+c] = true
		}
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
