package assets

import (
	"image"
	"image/color"

	"github.com/Faultbox/panorama/internal/engine/render"
)

// MarkerIcon returns the built-in hotspot icon: a white up-arrow with a dark
// outline on a transparent background.
func MarkerIcon(size int) *render.Texture {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	fill := color.RGBA{255, 255, 255, 255}
	edge := color.RGBA{20, 20, 20, 200}

	s := float64(size)
	inArrow := func(x, y, pad float64) bool {
		// Head: triangle over the top half.
		if y >= 0.1*s-pad && y <= 0.55*s+pad {
			half := (y - 0.1*s) / (0.45 * s) * 0.4 * s
			return x >= 0.5*s-half-pad && x <= 0.5*s+half+pad
		}
		// Shaft.
		if y > 0.55*s && y <= 0.9*s+pad {
			return x >= 0.38*s-pad && x <= 0.62*s+pad
		}
		return false
	}

	border := s * 0.04
	for py := 0; py < size; py++ {
		for px := 0; px < size; px++ {
			x, y := float64(px)+0.5, float64(py)+0.5
			switch {
			case inArrow(x, y, 0):
				img.SetRGBA(px, py, fill)
			case inArrow(x, y, border):
				img.SetRGBA(px, py, edge)
			}
		}
	}
	return &render.Texture{Source: "builtin:arrow", Image: img}
}

// LoadIcon loads the marker icon from path, or returns the built-in arrow when
// path is empty.
func (m *Manager) LoadIcon(path string) (*render.Texture, error) {
	if path == "" {
		return MarkerIcon(64), nil
	}
	return m.LoadTexture(path)
}
