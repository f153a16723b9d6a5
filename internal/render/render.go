// Package render draws the dashboard and equity curve PNGs.
//
// A Renderer holds only the parsed font; every canvas and font face is
// created per call, so one Renderer serves concurrent requests.
package render

import (
	"fmt"
	"os"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// Renderer produces PNG images.
type Renderer struct {
	font *truetype.Font
}

// New loads the TrueType font at fontPath. An empty path selects the
// bundled Go Regular font.
func New(fontPath string) (*Renderer, error) {
	if fontPath == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("read font %s: %w", fontPath, err)
	}
	f, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", fontPath, err)
	}
	return &Renderer{font: f}, nil
}

// Default returns a Renderer using the bundled Go Regular font.
func Default() *Renderer {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		panic(fmt.Sprintf("parse bundled font: %v", err))
	}
	return &Renderer{font: f}
}

func (r *Renderer) face(size float64) font.Face {
	return truetype.NewFace(r.font, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingFull})
}
