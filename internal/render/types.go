package render

import (
	"github.com/digitorus/pdfcertify/fonts"
)

// Layout of the certification page, in points.
const (
	DefaultMargin    = 36.0
	DefaultTitleSize = 22.0
	DefaultBodySize  = 14.0

	// titleAdvance is the distance from the title baseline to the first line.
	titleAdvance = 40.0
	// lineAdvance is the fixed line height of the labelled lines.
	lineAdvance = 28.0
)

// Line is one "LABEL: value" line.
type Line struct {
	Label string
	Value string
}

// Text returns the rendered form of the line.
func (l Line) Text() string {
	return l.Label + ": " + l.Value
}

// Page describes a certification page.
type Page struct {
	Width, Height float64
	Margin        float64

	Title string
	Lines []Line

	TitleFont *fonts.Font
	BodyFont  *fonts.Font
	TitleSize float64
	BodySize  float64
}

// Rendered is a single-page PDF holding the certification page.
type Rendered struct {
	PDF []byte

	// Overflow lists the lines that are wider than the page. They are
	// rendered anyway and clipped by the viewer.
	Overflow []string
}
