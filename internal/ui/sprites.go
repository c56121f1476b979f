package ui

import (
	"bytes"
	"image"
	"log"
	"os"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// markerFiles maps residue symbols to the SVG asset names looked up in a
// marker directory.
var markerFiles = map[byte]string{
	'H': "H.svg",
	'P': "P.svg",
}

// SpriteManager rasterises optional SVG residue markers. When a marker
// is missing the renderer falls back to its built-in shapes.
type SpriteManager struct {
	markers     map[byte]*ebiten.Image
	size        int     // display size in pixels
	renderScale float64 // rasterise larger for sharp scaling
}

// NewSpriteManager loads the residue markers found in dir. An empty or
// missing directory yields a manager with no sprites.
func NewSpriteManager(dir string, size int) *SpriteManager {
	sm := &SpriteManager{
		markers:     make(map[byte]*ebiten.Image),
		size:        size,
		renderScale: 3.0,
	}
	if dir != "" {
		sm.loadMarkers(dir)
	}
	return sm
}

// loadMarkers rasterises every marker SVG present in dir.
func (sm *SpriteManager) loadMarkers(dir string) {
	renderSize := int(float64(sm.size) * sm.renderScale)

	for symbol, name := range markerFiles {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue // marker not provided
		}

		icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
		if err != nil {
			log.Printf("Failed to parse marker SVG %s: %v", path, err)
			continue
		}
		icon.SetTarget(0, 0, float64(renderSize), float64(renderSize))

		rgba := image.NewRGBA(image.Rect(0, 0, renderSize, renderSize))
		scanner := rasterx.NewScannerGV(renderSize, renderSize, rgba, rgba.Bounds())
		raster := rasterx.NewDasher(renderSize, renderSize, scanner)
		icon.Draw(raster, 1.0)

		sm.markers[symbol] = ebiten.NewImageFromImage(rgba)
	}
}

// Marker returns the sprite for a residue symbol, or nil.
func (sm *SpriteManager) Marker(symbol byte) *ebiten.Image {
	return sm.markers[symbol]
}

// DrawMarkerAt draws a residue marker centred on the given pixel
// coordinates and reports whether a sprite was available.
func (sm *SpriteManager) DrawMarkerAt(screen *ebiten.Image, symbol byte, x, y float64) bool {
	sprite := sm.Marker(symbol)
	if sprite == nil {
		return false
	}
	op := &ebiten.DrawImageOptions{}
	scale := 1.0 / sm.renderScale
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(x-float64(sm.size)/2, y-float64(sm.size)/2)
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(sprite, op)
	return true
}
