package layout

import "github.com/iitkqc/confession-bot-go/internal/constants"

// Color is an 8-bit RGB triple; the render backend owns alpha.
type Color struct {
	R, G, B uint8
}

// ColorScheme is the pluggable 3-color palette a slide is drawn with.
type ColorScheme struct {
	Background Color
	Text       Color
	Accent     Color
}

// DefaultScheme is the white-on-black palette the page posts with.
func DefaultScheme() ColorScheme {
	return ColorScheme{
		Background: Color{0, 0, 0},
		Text:       Color{255, 255, 255},
		Accent:     Color{220, 220, 220},
	}
}

// Profile fixes every dimension the composer needs for one canvas shape.
// All offsets are pixels; nothing in the layout algorithm is hardcoded to a
// particular profile.
type Profile struct {
	Name   string
	Width  float64
	Height float64

	// PaddingX is reserved on each side; text centers inside the remainder.
	PaddingX float64

	BodySize      float64
	WatermarkSize float64
	BadgeSize     float64
	LineHeight    float64

	WatermarkY float64
	CountY     float64

	BadgePaddingX float64
	BadgePaddingY float64
	BadgeMarginX  float64
	BadgeMarginY  float64

	// Columns selects fixed-column wrapping when positive; zero means the
	// profile wraps on measured pixel widths.
	Columns int

	Scheme ColorScheme
}

// UsableWidth is the horizontal span available to body text.
func (p Profile) UsableWidth() float64 {
	return p.Width - 2*p.PaddingX
}

// SquareProfile is the 1:1 carousel canvas.
func SquareProfile() Profile {
	return Profile{
		Name:          "square",
		Width:         constants.SlideConfig.SquareWidth,
		Height:        constants.SlideConfig.SquareHeight,
		BodySize:      constants.FontConfig.SquareBody,
		WatermarkSize: constants.FontConfig.SquareWatermark,
		BadgeSize:     constants.FontConfig.SquareBadge,
		LineHeight:    constants.FontConfig.SquareLineH,
		WatermarkY:    constants.SlideConfig.WatermarkY,
		CountY:        constants.SlideConfig.CountBadgeY,
		BadgePaddingX: constants.SlideConfig.BadgePaddingX,
		BadgePaddingY: constants.SlideConfig.BadgePaddingY,
		BadgeMarginX:  constants.SlideConfig.BadgeMarginX,
		BadgeMarginY:  constants.SlideConfig.BadgeMarginY,
		Columns:       constants.SlideConfig.SquareColumns,
		Scheme:        DefaultScheme(),
	}
}

// ReelProfile is the 9:16 canvas with 10% lateral padding and pixel wrapping.
func ReelProfile() Profile {
	return Profile{
		Name:          "reel",
		Width:         constants.SlideConfig.ReelWidth,
		Height:        constants.SlideConfig.ReelHeight,
		PaddingX:      constants.SlideConfig.ReelWidth * constants.SlideConfig.ReelPadding,
		BodySize:      constants.FontConfig.ReelBody,
		WatermarkSize: constants.FontConfig.ReelWatermark,
		BadgeSize:     constants.FontConfig.ReelBadge,
		LineHeight:    constants.FontConfig.ReelLineH,
		WatermarkY:    constants.SlideConfig.ReelWatermarkY,
		CountY:        constants.SlideConfig.ReelCountY,
		BadgePaddingX: constants.SlideConfig.BadgePaddingX,
		BadgePaddingY: constants.SlideConfig.BadgePaddingY,
		BadgeMarginX:  constants.SlideConfig.BadgeMarginX,
		BadgeMarginY:  constants.SlideConfig.BadgeMarginY,
		Scheme:        DefaultScheme(),
	}
}
