package surface

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"slices"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/go-drift/flywire/pkg/tree"
	"github.com/go-drift/flywire/pkg/widget"
)

const (
	rasterPadding = 4
	rasterGap     = 2
)

var (
	colorBackground = color.RGBA{0xff, 0xff, 0xff, 0xff}
	colorText       = color.RGBA{0x20, 0x20, 0x20, 0xff}
	colorBorder     = color.RGBA{0x9e, 0x9e, 0x9e, 0xff}
	colorButton     = color.RGBA{0xe0, 0xe0, 0xe0, 0xff}
)

var namedColors = map[string]color.RGBA{
	"black": {0x00, 0x00, 0x00, 0xff},
	"white": {0xff, 0xff, 0xff, 0xff},
	"red":   {0xd3, 0x2f, 0x2f, 0xff},
	"green": {0x38, 0x8e, 0x3c, 0xff},
	"blue":  {0x19, 0x76, 0xd2, 0xff},
	"gray":  {0x75, 0x75, 0x75, 0xff},
}

// ParseColor parses "#rrggbb", "#rgb" or a basic color name.
func ParseColor(s string) (color.RGBA, error) {
	if c, ok := namedColors[strings.ToLower(s)]; ok {
		return c, nil
	}
	hex, ok := strings.CutPrefix(s, "#")
	if !ok {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{uint8(v >> 16), uint8(v >> 8), uint8(v), 0xff}, nil
}

type rasterWidget struct {
	name     string
	text     string
	props    tree.Props
	parent   *rasterWidget
	children []*rasterWidget
	surface  *Raster
}

func (w *rasterWidget) Destroy() {
	r := w.surface
	r.mu.Lock()
	defer r.mu.Unlock()
	if w.parent == nil {
		return
	}
	for i, child := range w.parent.children {
		if child == w {
			w.parent.children = append(w.parent.children[:i], w.parent.children[i+1:]...)
			break
		}
	}
	w.parent = nil
}

func (w *rasterWidget) Rebind(props tree.Props) {
	w.surface.mu.Lock()
	w.props = props
	w.surface.mu.Unlock()
}

// Raster is a widget surface that paints its widgets top to bottom into an
// RGBA image using a fixed bitmap font.
type Raster struct {
	mu            sync.Mutex
	width, height int
	face          font.Face
	root          *rasterWidget
	redraws       int
	resize        []func(width, height int)
}

// NewRaster creates a raster surface of the given size.
func NewRaster(width, height int) *Raster {
	r := &Raster{width: width, height: height, face: basicfont.Face7x13}
	r.root = &rasterWidget{name: "root", surface: r}
	return r
}

// Root returns the top-level container.
func (r *Raster) Root() tree.Handle {
	return r.root
}

// RequestRedraw counts a redraw request. Painting happens on Paint.
func (r *Raster) RequestRedraw() {
	r.mu.Lock()
	r.redraws++
	r.mu.Unlock()
}

// Redraws returns how many redraws were requested.
func (r *Raster) Redraws() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.redraws
}

// OnResize registers a resize callback.
func (r *Raster) OnResize(callback func(width, height int)) {
	r.mu.Lock()
	r.resize = append(r.resize, callback)
	r.mu.Unlock()
}

// Resize changes the image size used by Paint and notifies callbacks.
func (r *Raster) Resize(width, height int) {
	r.mu.Lock()
	r.width, r.height = width, height
	callbacks := slices.Clone(r.resize)
	r.mu.Unlock()
	for _, cb := range callbacks {
		cb(width, height)
	}
}

// Factory returns a widget factory for name.
func (r *Raster) Factory(name string, structural bool) widget.Factory {
	return func(parent tree.Handle, index int, text string, props tree.Props) (tree.Handle, tree.UpdateFunc, error) {
		p := r.root
		if parent != nil {
			w, ok := parent.(*rasterWidget)
			if !ok || w.surface != r {
				return nil, nil, fmt.Errorf("parent %T does not belong to this surface", parent)
			}
			p = w
		}
		r.mu.Lock()
		w := &rasterWidget{name: name, text: text, props: props, parent: p, surface: r}
		index = max(0, min(index, len(p.children)))
		p.children = append(p.children, nil)
		copy(p.children[index+1:], p.children[index:])
		p.children[index] = w
		r.mu.Unlock()

		if structural {
			return w, nil, nil
		}
		return w, func(text string, props tree.Props) {
			r.mu.Lock()
			w.text, w.props = text, props
			r.mu.Unlock()
		}, nil
	}
}

// Registry returns a registry with Label, Button and Frame bound to this
// surface.
func (r *Raster) Registry() *widget.Registry {
	reg := widget.NewRegistry()
	reg.Register("Label", r.Factory("Label", false))
	reg.Register("Button", r.Factory("Button", false))
	reg.Register("Frame", r.Factory("Frame", true))
	return reg
}

// Measure returns the pixel width and line height of text in the surface
// font.
func (r *Raster) Measure(text string) (width, height int) {
	metrics := r.face.Metrics()
	return font.MeasureString(r.face, text).Ceil(), metrics.Height.Ceil()
}

// Paint renders the current widgets into a new image.
func (r *Raster) Paint() *image.RGBA {
	r.mu.Lock()
	defer r.mu.Unlock()
	img := image.NewRGBA(image.Rect(0, 0, r.width, r.height))
	draw.Draw(img, img.Bounds(), image.NewUniform(colorBackground), image.Point{}, draw.Src)
	y := 0
	for _, child := range r.root.children {
		y += r.paint(img, child, 0, y, r.width) + rasterGap
	}
	return img
}

// EncodePNG paints the surface and writes it as PNG.
func (r *Raster) EncodePNG(w io.Writer) error {
	return png.Encode(w, r.Paint())
}

// paint draws w with its top-left corner at (x, y) and returns the height
// it used.
func (r *Raster) paint(img *image.RGBA, w *rasterWidget, x, y, width int) int {
	_, lineHeight := r.Measure("")
	fg := propColor(w.props, "color", colorText)

	switch w.name {
	case "Frame":
		cursor := y + rasterPadding
		for _, child := range w.children {
			cursor += r.paint(img, child, x+rasterPadding, cursor, width-2*rasterPadding) + rasterGap
		}
		height := cursor - y + rasterPadding - rasterGap
		if len(w.children) == 0 {
			height = 2 * rasterPadding
		}
		strokeRect(img, image.Rect(x, y, x+width, y+height), propColor(w.props, "border", colorBorder))
		return height

	case "Button":
		textWidth, _ := r.Measure(w.text)
		rect := image.Rect(x, y, x+textWidth+2*rasterPadding, y+lineHeight+2*rasterPadding)
		draw.Draw(img, rect, image.NewUniform(propColor(w.props, "background", colorButton)), image.Point{}, draw.Src)
		strokeRect(img, rect, colorBorder)
		r.drawText(img, w.text, x+rasterPadding, y+rasterPadding, fg)
		return rect.Dy()

	default:
		r.drawText(img, w.text, x+rasterPadding, y+rasterPadding, fg)
		return lineHeight + 2*rasterPadding
	}
}

func (r *Raster) drawText(img *image.RGBA, text string, x, top int, c color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: r.face,
		Dot:  fixed.P(x, top+r.face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(text)
}

func strokeRect(img *image.RGBA, rect image.Rectangle, c color.Color) {
	for px := rect.Min.X; px < rect.Max.X; px++ {
		img.Set(px, rect.Min.Y, c)
		img.Set(px, rect.Max.Y-1, c)
	}
	for py := rect.Min.Y; py < rect.Max.Y; py++ {
		img.Set(rect.Min.X, py, c)
		img.Set(rect.Max.X-1, py, c)
	}
}

func propColor(props tree.Props, key string, fallback color.RGBA) color.RGBA {
	s, ok := props[key].(string)
	if !ok {
		return fallback
	}
	c, err := ParseColor(s)
	if err != nil {
		return fallback
	}
	return c
}
