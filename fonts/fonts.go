// Package fonts provides font resources and metrics for the certification page.
//
// Standard PDF fonts need no embedding and are rendered with WinAnsi encoded
// text. TrueType fonts are parsed for validation and metrics and embedded as
// UTF-8 fonts.
package fonts

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/font/sfnt"
)

// StandardType represents standard PDF fonts that are available in all PDF readers
// without embedding.
type StandardType int

const (
	// Helvetica is the standard sans-serif font.
	Helvetica StandardType = iota
	// HelveticaBold is bold Helvetica.
	HelveticaBold
	// TimesRoman is the standard serif font.
	TimesRoman
	// TimesBold is bold Times Roman.
	TimesBold
	// Courier is the standard monospace font.
	Courier
	// CourierBold is bold Courier.
	CourierBold
)

// standardFamilies maps a standard font to the family and style understood
// by the page renderer.
var standardFamilies = map[StandardType]struct{ family, style, name string }{
	Helvetica:     {"Helvetica", "", "Helvetica"},
	HelveticaBold: {"Helvetica", "B", "Helvetica-Bold"},
	TimesRoman:    {"Times", "", "Times-Roman"},
	TimesBold:     {"Times", "B", "Times-Bold"},
	Courier:       {"Courier", "", "Courier"},
	CourierBold:   {"Courier", "B", "Courier-Bold"},
}

// Font represents a font resource used on the certification page.
type Font struct {
	Name     string   // PostScript name of the font
	Family   string   // Family name registered with the renderer
	Style    string   // "" or "B"
	Data     []byte   // TrueType font data (nil for standard fonts)
	Hash     string   // SHA256 hash of font data
	Embedded bool     // Whether the font is embedded in the PDF
	Metrics  *Metrics // Parsed font tables (nil for standard fonts)
}

// Standard returns a Font for a standard PDF font (no embedding required).
func Standard(ft StandardType) *Font {
	f, ok := standardFamilies[ft]
	if !ok {
		f = standardFamilies[Helvetica]
	}
	return &Font{Name: f.name, Family: f.family, Style: f.style}
}

// Load reads a TrueType font from disk.
func Load(path string) (*Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read font: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return New(name, data)
}

// New builds an embedded font from TrueType data. The data must parse.
func New(name string, data []byte) (*Font, error) {
	metrics, err := ParseTTFMetrics(data)
	if err != nil {
		return nil, fmt.Errorf("invalid TrueType font %q: %w", name, err)
	}
	if ps := metrics.postScriptName(); ps != "" {
		name = ps
	}

	h := sha256.Sum256(data)
	return &Font{
		Name:     name,
		Family:   name,
		Data:     data,
		Hash:     hex.EncodeToString(h[:]),
		Embedded: true,
		Metrics:  metrics,
	}, nil
}

// Metrics holds what the renderer needs to know about a TrueType font.
type Metrics struct {
	UnitsPerEm int
	font       *sfnt.Font
}

// ParseTTFMetrics parses a TrueType font file. Fonts without a glyph for
// every character of the labels are rejected, since the page would print
// blanks instead.
func ParseTTFMetrics(data []byte) (*Metrics, error) {
	f, err := sfnt.Parse(data)
	if err != nil {
		return nil, err
	}

	var buf sfnt.Buffer
	for _, r := range requiredRunes {
		idx, err := f.GlyphIndex(&buf, r)
		if err != nil {
			return nil, err
		}
		if idx == 0 {
			return nil, fmt.Errorf("font has no glyph for %q", r)
		}
	}

	return &Metrics{
		UnitsPerEm: int(f.UnitsPerEm()),
		font:       f,
	}, nil
}

// requiredRunes covers the default title, labels and dates.
var requiredRunes = []rune("Certificado de copia FIRMA FECHA NÚMERO DE PÁGINAS: 0123456789/")

func (m *Metrics) postScriptName() string {
	if m == nil || m.font == nil {
		return ""
	}
	var buf sfnt.Buffer
	name, err := m.font.Name(&buf, sfnt.NameIDPostScript)
	if err != nil {
		return ""
	}
	return name
}
