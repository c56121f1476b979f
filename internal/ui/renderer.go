package ui

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/okkevaneck/prospr/internal/lattice"
)

// Theme defines the colour scheme of the viewer.
type Theme struct {
	Background color.RGBA
	Grid       color.RGBA
	Chain      color.RGBA
	Contact    color.RGBA
	HResidue   color.RGBA
	PResidue   color.RGBA
	Text       color.RGBA
}

// DefaultTheme is the standard plot palette: H residues in royal blue,
// P residues in orange, contacts in indian red.
func DefaultTheme() *Theme {
	return &Theme{
		Background: color.RGBA{250, 250, 252, 255},
		Grid:       color.RGBA{228, 228, 234, 255},
		Chain:      color.RGBA{60, 60, 60, 255},
		Contact:    color.RGBA{205, 92, 92, 255},
		HResidue:   color.RGBA{65, 105, 225, 255},
		PResidue:   color.RGBA{255, 165, 0, 255},
		Text:       color.RGBA{30, 30, 36, 255},
	}
}

// Renderer draws a conformation into the viewer window.
type Renderer struct {
	theme   *Theme
	sprites *SpriteManager

	scale   float64 // pixels per lattice unit
	offsetX float64
	offsetY float64
}

// NewRenderer creates a renderer with the default theme.
func NewRenderer(sprites *SpriteManager) *Renderer {
	return &Renderer{theme: DefaultTheme(), sprites: sprites, scale: 64}
}

// project maps a lattice position to screen coordinates. 2D positions map
// directly; higher dimensions use an isometric projection of the first
// three axes.
func (r *Renderer) project(pos lattice.Position, w, h float64) (float64, float64) {
	var x, y float64
	if len(pos) == 2 {
		x = float64(pos[0])
		y = -float64(pos[1])
	} else {
		// Isometric: x right-down, y right-up, z up.
		px, py := float64(pos[0]), float64(pos[1])
		pz := float64(pos[2])
		x = (px + py) * math.Cos(math.Pi/6)
		y = (px-py)*math.Sin(math.Pi/6) - pz
	}
	return w/2 + (x+r.offsetX)*r.scale, h/2 + (y+r.offsetY)*r.scale
}

// Draw renders the conformation, its contacts, and the caption.
func (r *Renderer) Draw(screen *ebiten.Image, p *lattice.Protein) {
	screen.Fill(r.theme.Background)
	w := float64(screen.Bounds().Dx())
	h := float64(screen.Bounds().Dy())

	placed := lattice.OrderedPositions(p)

	// Contacts first so the chain draws over them.
	for _, pair := range lattice.ScoringPairs(p) {
		x0, y0 := r.project(pair[0], w, h)
		x1, y1 := r.project(pair[1], w, h)
		r.dashedLine(screen, x0, y0, x1, y1, r.theme.Contact)
	}

	// Chain bonds.
	for i := 1; i < len(placed); i++ {
		x0, y0 := r.project(placed[i-1].Pos, w, h)
		x1, y1 := r.project(placed[i].Pos, w, h)
		vector.StrokeLine(screen, float32(x0), float32(y0), float32(x1), float32(y1),
			2, r.theme.Chain, true)
	}

	// Residues: circles for H, squares for P, or the loaded markers.
	radius := float32(math.Max(6, r.scale/6))
	for _, a := range placed {
		x, y := r.project(a.Pos, w, h)
		if r.sprites != nil && r.sprites.DrawMarkerAt(screen, a.Symbol, x, y) {
			continue
		}
		if a.Symbol == 'H' {
			vector.DrawFilledCircle(screen, float32(x), float32(y), radius, r.theme.HResidue, true)
		} else {
			side := radius * 2
			vector.DrawFilledRect(screen, float32(x)-radius, float32(y)-radius,
				side, side, r.theme.PResidue, true)
		}
	}

	r.drawCaption(screen, p)
}

// dashedLine draws a dotted contact line.
func (r *Renderer) dashedLine(screen *ebiten.Image, x0, y0, x1, y1 float64, c color.RGBA) {
	const dash, gap = 5.0, 4.0
	dx, dy := x1-x0, y1-y0
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	ux, uy := dx/length, dy/length
	for at := 0.0; at < length; at += dash + gap {
		end := math.Min(at+dash, length)
		vector.StrokeLine(screen,
			float32(x0+ux*at), float32(y0+uy*at),
			float32(x0+ux*end), float32(y0+uy*end),
			1.5, c, true)
	}
}

// drawCaption writes the title line with the conformation energy.
func (r *Renderer) drawCaption(screen *ebiten.Image, p *lattice.Protein) {
	caption := fmt.Sprintf("%dD conformation with %d energy", p.Dim(), p.Score())
	if boldFace != nil {
		op := &text.DrawOptions{}
		op.GeoM.Translate(16, 12)
		op.ColorScale.ScaleWithColor(r.theme.Text)
		text.Draw(screen, caption, boldFace, op)
	}
	if regularFace != nil {
		op := &text.DrawOptions{}
		op.GeoM.Translate(16, 38)
		op.ColorScale.ScaleWithColor(r.theme.Text)
		text.Draw(screen, p.Sequence(), regularFace, op)
	}
}

// Zoom scales the view around the centre, clamped to a sane range.
func (r *Renderer) Zoom(factor float64) {
	r.scale *= factor
	if r.scale < 8 {
		r.scale = 8
	}
	if r.scale > 256 {
		r.scale = 256
	}
}

// Pan shifts the view in lattice units.
func (r *Renderer) Pan(dx, dy float64) {
	r.offsetX += dx
	r.offsetY += dy
}
