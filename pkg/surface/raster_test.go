package surface

import (
	"bytes"
	"image/color"
	"image/png"
	"testing"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{"#ff0000", color.RGBA{0xff, 0, 0, 0xff}, false},
		{"#0f0", color.RGBA{0, 0xff, 0, 0xff}, false},
		{"Blue", namedColors["blue"], false},
		{"ff0000", color.RGBA{}, true},
		{"#12345", color.RGBA{}, true},
		{"#gggggg", color.RGBA{}, true},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseColor(%q) err = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRaster_PaintsText(t *testing.T) {
	r := NewRaster(120, 60)
	reg := r.Registry()
	frameFactory, _ := reg.Lookup("Frame")
	labelFactory, _ := reg.Lookup("Label")

	frame, _, _ := frameFactory(nil, 0, "", nil)
	if _, _, err := labelFactory(frame, 0, "Seconds", nil); err != nil {
		t.Fatal(err)
	}

	img := r.Paint()

	if img.Bounds().Dx() != 120 || img.Bounds().Dy() != 60 {
		t.Errorf("bounds = %v", img.Bounds())
	}
	inked := 0
	for y := 0; y < 60; y++ {
		for x := 0; x < 120; x++ {
			if img.RGBAAt(x, y) == colorText {
				inked++
			}
		}
	}
	if inked == 0 {
		t.Error("no text pixels painted")
	}
	if img.RGBAAt(0, 0) != colorBorder {
		t.Errorf("frame corner = %v, want border color", img.RGBAAt(0, 0))
	}
}

func TestRaster_DestroyRemovesWidget(t *testing.T) {
	r := NewRaster(60, 30)
	label, _, _ := r.Factory("Label", false)(nil, 0, "gone", nil)

	label.Destroy()

	img := r.Paint()
	for y := 0; y < 30; y++ {
		for x := 0; x < 60; x++ {
			if img.RGBAAt(x, y) != colorBackground {
				t.Fatalf("pixel (%d,%d) painted after destroy", x, y)
			}
		}
	}
}

func TestRaster_EncodePNG(t *testing.T) {
	r := NewRaster(40, 20)
	r.Factory("Button", false)(nil, 0, "ok", nil)

	var buf bytes.Buffer
	if err := r.EncodePNG(&buf); err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != 40 {
		t.Errorf("width = %d", img.Bounds().Dx())
	}
}

func TestRaster_Measure(t *testing.T) {
	r := NewRaster(10, 10)
	w, h := r.Measure("abc")
	if w != 21 || h != 13 {
		t.Errorf("Measure(abc) = %d, %d, want 21, 13", w, h)
	}
}

func TestRaster_ResizeNotifiesAndRepaints(t *testing.T) {
	r := NewRaster(40, 20)
	var calls [][2]int
	r.OnResize(func(w, h int) { calls = append(calls, [2]int{w, h}) })
	r.OnResize(func(w, h int) { calls = append(calls, [2]int{-w, -h}) })

	r.Resize(64, 32)

	if len(calls) != 2 || calls[0] != [2]int{64, 32} || calls[1] != [2]int{-64, -32} {
		t.Errorf("resize callbacks = %v", calls)
	}
	if b := r.Paint().Bounds(); b.Dx() != 64 || b.Dy() != 32 {
		t.Errorf("bounds after resize = %v", b)
	}
}
