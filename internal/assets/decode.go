package assets

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // GIF decoder registration
	_ "image/jpeg" // JPEG decoder registration
	_ "image/png"  // PNG decoder registration

	_ "golang.org/x/image/bmp" // BMP decoder registration
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // WebP decoder registration
)

// DecodeRGBA decodes any registered image format, or TGA, into RGBA. If
// maxSize > 0 and either side exceeds it, the image is scaled down keeping its
// aspect ratio.
func DecodeRGBA(data []byte, maxSize int) (*image.RGBA, string, error) {
	src, format, err := image.Decode(bytes.NewReader(data))
	if errors.Is(err, image.ErrFormat) {
		var tga *image.RGBA
		if tga, err = decodeTGA(data); err != nil {
			return nil, "", fmt.Errorf("%w (%v)", image.ErrFormat, err)
		}
		src, format = tga, "tga"
	}
	if err != nil {
		return nil, "", err
	}

	b := src.Bounds()
	if b.Empty() {
		return nil, format, fmt.Errorf("empty %s image", format)
	}

	w, h := fitWithin(b.Dx(), b.Dy(), maxSize)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	}
	return dst, format, nil
}

// fitWithin scales (w, h) down so neither side exceeds limit.
func fitWithin(w, h, limit int) (int, int) {
	if limit <= 0 || (w <= limit && h <= limit) {
		return w, h
	}
	if w >= h {
		return limit, max(1, h*limit/w)
	}
	return max(1, w*limit/h), limit
}
