package layout

import "fmt"

// Measurer reports rendered text widths for the profile's font. Implemented
// by the render backend; tests inject a fake.
type Measurer interface {
	TextWidth(text string, size float64) float64
}

// Text is one positioned string on a slide. X/Y are the top-left corner of
// the line box in canvas coordinates (origin top-left, Y grows downward).
type Text struct {
	Content string
	X       float64
	Y       float64
	Size    float64
	Color   Color
}

// Badge is the "i/n" pagination indicator: inverted text inside a filled
// rectangle sized to the label's bounding box plus padding.
type Badge struct {
	Label Text
	RectX float64
	RectY float64
	RectW float64
	RectH float64
	Fill  Color
}

// Slide is the composed, render-ready artifact for one chunk of a
// confession. It is immutable once returned by Compose.
type Slide struct {
	Profile  Profile
	Label    string
	Position int
	Total    int
	Lines    []string
	Texts    []Text
	Badge    *Badge
}

// Composer lays display lines and fixed decorations onto a profile's canvas.
type Composer struct {
	profile   Profile
	measure   Measurer
	watermark string
}

func NewComposer(profile Profile, measure Measurer, watermark string) *Composer {
	return &Composer{
		profile:   profile,
		measure:   measure,
		watermark: watermark,
	}
}

// Compose positions one slide. position and total are 1-based carousel
// coordinates; displayCount is the public confession number shown on the
// first slide only. The pagination badge appears only on multi-slide sets.
func (c *Composer) Compose(lines []string, position, total int, label string, displayCount int) *Slide {
	p := c.profile
	slide := &Slide{
		Profile:  p,
		Label:    label,
		Position: position,
		Total:    total,
		Lines:    lines,
	}

	// Body: vertically centered block, each line centered in the padded span.
	textHeight := float64(len(lines)) * p.LineHeight
	startY := (p.Height - textHeight) / 2
	for i, line := range lines {
		width := c.measure.TextWidth(line, p.BodySize)
		slide.Texts = append(slide.Texts, Text{
			Content: line,
			X:       p.PaddingX + (p.UsableWidth()-width)/2,
			Y:       startY + float64(i)*p.LineHeight,
			Size:    p.BodySize,
			Color:   p.Scheme.Text,
		})
	}

	// Watermark on every slide, centered near the top.
	wmWidth := c.measure.TextWidth(c.watermark, p.WatermarkSize)
	slide.Texts = append(slide.Texts, Text{
		Content: c.watermark,
		X:       (p.Width - wmWidth) / 2,
		Y:       p.WatermarkY,
		Size:    p.WatermarkSize,
		Color:   p.Scheme.Accent,
	})

	// Display-count badge below the watermark, first slide only.
	if position == 1 && displayCount > 0 {
		countLabel := fmt.Sprintf("#%d", displayCount)
		countWidth := c.measure.TextWidth(countLabel, p.WatermarkSize)
		slide.Texts = append(slide.Texts, Text{
			Content: countLabel,
			X:       (p.Width - countWidth) / 2,
			Y:       p.CountY,
			Size:    p.WatermarkSize,
			Color:   p.Scheme.Accent,
		})
	}

	if total > 1 {
		slide.Badge = c.paginationBadge(position, total)
	}

	return slide
}

func (c *Composer) paginationBadge(position, total int) *Badge {
	p := c.profile
	label := fmt.Sprintf("%d/%d", position, total)
	width := c.measure.TextWidth(label, p.BadgeSize)

	textX := p.Width - width - p.BadgeMarginX
	textY := p.Height - p.BadgeMarginY

	return &Badge{
		Label: Text{
			Content: label,
			X:       textX,
			Y:       textY,
			Size:    p.BadgeSize,
			Color:   p.Scheme.Background,
		},
		RectX: textX - p.BadgePaddingX,
		RectY: textY - p.BadgePaddingY,
		RectW: width + 2*p.BadgePaddingX,
		RectH: p.BadgeSize + 2*p.BadgePaddingY,
		Fill:  p.Scheme.Text,
	}
}
