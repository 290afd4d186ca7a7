package resources

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"runtime"
	"sync"

	"golang.org/x/image/vector"
)

const iconSize = 32

var (
	iconOnce sync.Once
	iconPNG  []byte
	iconErr  error
)

// GetIcon returns the tray icon in the format the platform tray expects:
// ICO on Windows, PNG elsewhere.
func GetIcon() ([]byte, error) {
	data, err := IconPNG()
	if err != nil {
		return nil, err
	}
	if runtime.GOOS == "windows" {
		return wrapICO(data, iconSize), nil
	}
	return data, nil
}

// IconPNG renders the keycap icon once and returns it PNG-encoded.
func IconPNG() ([]byte, error) {
	iconOnce.Do(func() {
		var buf bytes.Buffer
		if err := png.Encode(&buf, renderKeycap(iconSize)); err != nil {
			iconErr = err
			return
		}
		iconPNG = buf.Bytes()
	})
	return iconPNG, iconErr
}

// renderKeycap draws a rounded key with a lighter top face.
func renderKeycap(size int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	s := float32(size)

	roundedRect(img, 1, 1, s-1, s-1, s*0.2, color.RGBA{R: 0x2b, G: 0x4c, B: 0x7e, A: 0xff})
	roundedRect(img, s*0.2, s*0.16, s*0.8, s*0.7, s*0.12, color.RGBA{R: 0xe8, G: 0xee, B: 0xf6, A: 0xff})
	return img
}

func roundedRect(dst draw.Image, x0, y0, x1, y1, r float32, c color.Color) {
	b := dst.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	z.MoveTo(x0+r, y0)
	z.LineTo(x1-r, y0)
	z.QuadTo(x1, y0, x1, y0+r)
	z.LineTo(x1, y1-r)
	z.QuadTo(x1, y1, x1-r, y1)
	z.LineTo(x0+r, y1)
	z.QuadTo(x0, y1, x0, y1-r)
	z.LineTo(x0, y0+r)
	z.QuadTo(x0, y0, x0+r, y0)
	z.ClosePath()
	z.Draw(dst, b, image.NewUniform(c), image.Point{})
}

// wrapICO packs a PNG image into a single-entry ICO container.
func wrapICO(pngData []byte, size int) []byte {
	var buf bytes.Buffer
	// ICONDIR
	binary.Write(&buf, binary.LittleEndian, [3]uint16{0, 1, 1})
	// ICONDIRENTRY; a width byte of 0 means 256
	dim := byte(size)
	if size >= 256 {
		dim = 0
	}
	buf.Write([]byte{dim, dim, 0, 0})
	binary.Write(&buf, binary.LittleEndian, uint16(1))  // planes
	binary.Write(&buf, binary.LittleEndian, uint16(32)) // bits per pixel
	binary.Write(&buf, binary.LittleEndian, uint32(len(pngData)))
	binary.Write(&buf, binary.LittleEndian, uint32(6+16))
	buf.Write(pngData)
	return buf.Bytes()
}
