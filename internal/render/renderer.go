package render

import (
	"bytes"
	"fmt"
	"image/color"
	"image/png"
	"os"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"

	"github.com/iitkqc/confession-bot-go/internal/layout"
)

// Canvas units are pixels; rasterization at 1 dot per unit keeps slide
// dimensions exact. Font sizes arrive in px and the font system wants pt.
const pxToPt = 72.0 / 25.4

type faceKey struct {
	size  float64
	color layout.Color
}

// Renderer rasterizes composed slides to PNG with a single TTF family.
// It implements layout.SlideRenderer, so the same font metrics drive both
// wrapping and drawing.
type Renderer struct {
	family *canvas.FontFamily

	mu    sync.Mutex
	faces map[faceKey]*canvas.FontFace
}

// NewRenderer loads the font file the slides are typeset with. The file must
// cover every script the community submits in; width measurement and drawing
// both go through it.
func NewRenderer(fontPath string) (*Renderer, error) {
	data, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("read font %s: %w", fontPath, err)
	}

	family := canvas.NewFontFamily("slide-body")
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, fmt.Errorf("load font %s: %w", fontPath, err)
	}

	return &Renderer{
		family: family,
		faces:  map[faceKey]*canvas.FontFace{},
	}, nil
}

// TextWidth reports the rendered width in px of text at the given px size.
func (r *Renderer) TextWidth(text string, size float64) float64 {
	return r.face(size, layout.Color{}).TextWidth(text)
}

// Render draws one slide and encodes it as PNG.
func (r *Renderer) Render(slide *layout.Slide) ([]byte, error) {
	p := slide.Profile

	c := canvas.New(p.Width, p.Height)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV)

	ctx.SetFillColor(rgba(p.Scheme.Background))
	ctx.DrawPath(0, 0, canvas.Rectangle(p.Width, p.Height))

	for _, txt := range slide.Texts {
		r.drawText(ctx, txt)
	}

	if badge := slide.Badge; badge != nil {
		ctx.SetFillColor(rgba(badge.Fill))
		ctx.SetStrokeColor(color.RGBA{})
		ctx.DrawPath(badge.RectX, badge.RectY, canvas.Rectangle(badge.RectW, badge.RectH))
		r.drawText(ctx, badge.Label)
	}

	img := rasterizer.Draw(c, canvas.DPMM(1.0), canvas.DefaultColorSpace)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode %s slide %d: %w", slide.Label, slide.Position, err)
	}
	return buf.Bytes(), nil
}

// drawText places one positioned line. Text.Y is the top of the line box, so
// the baseline sits one ascent below it.
func (r *Renderer) drawText(ctx *canvas.Context, txt layout.Text) {
	face := r.face(txt.Size, txt.Color)
	line := canvas.NewTextLine(face, txt.Content, canvas.Left)
	baseline := txt.Y + face.Metrics().Ascent
	ctx.DrawText(txt.X, baseline, line)
}

func (r *Renderer) face(size float64, col layout.Color) *canvas.FontFace {
	key := faceKey{size: size, color: col}
	r.mu.Lock()
	defer r.mu.Unlock()

	if face, ok := r.faces[key]; ok {
		return face
	}
	face := r.family.Face(size*pxToPt, rgba(col), canvas.FontRegular, canvas.FontNormal)
	r.faces[key] = face
	return face
}

func rgba(c layout.Color) color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
}
