package ui

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/okkevaneck/prospr/internal/lattice"
)

// Window defaults
const (
	ScreenWidth  = 900
	ScreenHeight = 700
)

// Viewer is the interactive conformation window: pan with the arrow keys
// or by dragging, zoom with + and - or the wheel.
type Viewer struct {
	protein  *lattice.Protein
	renderer *Renderer

	dragging     bool
	dragX, dragY int
}

// NewViewer creates a viewer for a folded conformation. markerDir may
// point at a directory with H.svg/P.svg residue markers; pass "" for the
// built-in shapes. Only 2D and 3D conformations can be shown.
func NewViewer(p *lattice.Protein, markerDir string) (*Viewer, error) {
	if p.Dim() != 2 && p.Dim() != 3 {
		return nil, fmt.Errorf("%w: cannot visualise a %dD conformation",
			lattice.ErrInvalidInput, p.Dim())
	}
	sprites := NewSpriteManager(markerDir, 24)
	return &Viewer{protein: p, renderer: NewRenderer(sprites)}, nil
}

// Update handles input. It never returns an error; closing the window
// ends the run loop.
func (v *Viewer) Update() error {
	const panStep = 0.25

	if ebiten.IsKeyPressed(ebiten.KeyLeft) {
		v.renderer.Pan(panStep, 0)
	}
	if ebiten.IsKeyPressed(ebiten.KeyRight) {
		v.renderer.Pan(-panStep, 0)
	}
	if ebiten.IsKeyPressed(ebiten.KeyUp) {
		v.renderer.Pan(0, panStep)
	}
	if ebiten.IsKeyPressed(ebiten.KeyDown) {
		v.renderer.Pan(0, -panStep)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) || inpututil.IsKeyJustPressed(ebiten.KeyKPAdd) {
		v.renderer.Zoom(1.25)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) || inpututil.IsKeyJustPressed(ebiten.KeyKPSubtract) {
		v.renderer.Zoom(0.8)
	}
	if _, wheelY := ebiten.Wheel(); wheelY != 0 {
		if wheelY > 0 {
			v.renderer.Zoom(1.1)
		} else {
			v.renderer.Zoom(0.9)
		}
	}

	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		if v.dragging {
			v.renderer.Pan(float64(x-v.dragX)/v.renderer.scale,
				float64(y-v.dragY)/v.renderer.scale)
		}
		v.dragging = true
		v.dragX, v.dragY = x, y
	} else {
		v.dragging = false
	}

	return nil
}

// Draw renders the current conformation.
func (v *Viewer) Draw(screen *ebiten.Image) {
	v.renderer.Draw(screen, v.protein)
}

// Layout reports the logical screen size.
func (v *Viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return ScreenWidth, ScreenHeight
}

// Show opens the viewer window and blocks until it is closed.
func Show(p *lattice.Protein, markerDir string) error {
	v, err := NewViewer(p, markerDir)
	if err != nil {
		return err
	}
	ebiten.SetWindowSize(ScreenWidth, ScreenHeight)
	ebiten.SetWindowTitle(fmt.Sprintf("prospr - %s", p.Sequence()))
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	return ebiten.RunGame(v)
}
