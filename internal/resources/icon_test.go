package resources

import (
	"bytes"
	"encoding/binary"
	"image/png"
	"testing"
)

func TestIconPNGDecodes(t *testing.T) {
	data, err := IconPNG()
	if err != nil {
		t.Fatalf("IconPNG: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != iconSize || b.Dy() != iconSize {
		t.Fatalf("bounds = %v", b)
	}
	if _, _, _, a := img.At(iconSize/2, iconSize/2).RGBA(); a == 0 {
		t.Fatal("icon centre is transparent")
	}
}

func TestWrapICO(t *testing.T) {
	payload := []byte("png-bytes")
	ico := wrapICO(payload, 32)

	if len(ico) != 22+len(payload) {
		t.Fatalf("len = %d", len(ico))
	}
	if binary.LittleEndian.Uint16(ico[2:4]) != 1 || binary.LittleEndian.Uint16(ico[4:6]) != 1 {
		t.Fatalf("header = %v", ico[:6])
	}
	if ico[6] != 32 || ico[7] != 32 {
		t.Fatalf("dimensions = %d x %d", ico[6], ico[7])
	}
	if binary.LittleEndian.Uint32(ico[14:18]) != uint32(len(payload)) || binary.LittleEndian.Uint32(ico[18:22]) != 22 {
		t.Fatal("size or offset wrong")
	}
	if !bytes.Equal(ico[22:], payload) {
		t.Fatal("payload not appended")
	}
}
