package assets

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// TGA has no magic number, so it is tried only after the registered decoders
// have all declined the data.

const (
	tgaTrueColor    = 2
	tgaGray         = 3
	tgaTrueColorRLE = 10
	tgaGrayRLE      = 11
)

var errTGATruncated = errors.New("tga: pixel data truncated")

// decodeTGA decodes uncompressed or RLE true-color (24/32 bit) and grayscale
// (8 bit) TGA images.
func decodeTGA(data []byte) (*image.RGBA, error) {
	if len(data) < 18 {
		return nil, fmt.Errorf("tga: header too short")
	}

	idLength := int(data[0])
	colorMapType := data[1]
	imageType := data[2]
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bpp := int(data[16])
	topToBottom := data[17]&0x20 != 0

	if colorMapType != 0 {
		return nil, fmt.Errorf("tga: color-mapped images not supported")
	}
	gray := imageType == tgaGray || imageType == tgaGrayRLE
	rle := imageType == tgaTrueColorRLE || imageType == tgaGrayRLE
	switch {
	case imageType != tgaTrueColor && imageType != tgaTrueColorRLE && !gray:
		return nil, fmt.Errorf("tga: unsupported image type %d", imageType)
	case gray && bpp != 8, !gray && bpp != 24 && bpp != 32:
		return nil, fmt.Errorf("tga: unsupported bit depth %d for type %d", bpp, imageType)
	case width == 0 || height == 0:
		return nil, fmt.Errorf("tga: empty image")
	}

	offset := 18 + idLength
	if offset > len(data) {
		return nil, errTGATruncated
	}
	src := data[offset:]
	size := bpp / 8

	pixel := func(p []byte) color.RGBA {
		if gray {
			return color.RGBA{R: p[0], G: p[0], B: p[0], A: 255}
		}
		c := color.RGBA{R: p[2], G: p[1], B: p[0], A: 255}
		if size == 4 {
			c.A = p[3]
		}
		return c
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	total := width * height
	put := func(i int, c color.RGBA) {
		x, y := i%width, i/width
		if !topToBottom {
			y = height - 1 - y
		}
		img.SetRGBA(x, y, c)
	}

	if !rle {
		if len(src) < total*size {
			return nil, errTGATruncated
		}
		for i := 0; i < total; i++ {
			put(i, pixel(src[i*size:]))
		}
		return img, nil
	}

	i, pos := 0, 0
	for i < total {
		if pos >= len(src) {
			return nil, errTGATruncated
		}
		header := src[pos]
		pos++
		count := int(header&0x7F) + 1

		if header&0x80 != 0 {
			// Run: one pixel repeated
			if pos+size > len(src) {
				return nil, errTGATruncated
			}
			c := pixel(src[pos:])
			pos += size
			for n := 0; n < count && i < total; n++ {
				put(i, c)
				i++
			}
			continue
		}

		// Raw: count literal pixels
		if pos+count*size > len(src) {
			return nil, errTGATruncated
		}
		for n := 0; n < count && i < total; n++ {
			put(i, pixel(src[pos:]))
			pos += size
			i++
		}
	}
	return img, nil
}
