package pdfcertify

import (
	"time"

	"github.com/digitorus/pdfcertify/fonts"
	"github.com/digitorus/pdfcertify/locale"
)

// Size is a page size in PDF points.
type Size struct {
	Width  float64
	Height float64
}

// FallbackSize is used when the size of the last page cannot be determined.
// It is A4 portrait.
var FallbackSize = Size{Width: 595, Height: 842}

// Fields are the values printed on the certification page.
type Fields struct {
	// Signer may be empty.
	Signer string
	Date   time.Time
	// PageCount is free-form text printed verbatim. When blank after
	// trimming, the page count of the source document is used.
	PageCount string
}

// Labels are the prefixes of the three lines below the title.
type Labels struct {
	Signer string
	Date   string
	Pages  string
}

// Defaults for the certification page.
const (
	DefaultTitle  = "Certificado de copia"
	DefaultSuffix = "_con_hoja_final"
)

// DefaultLabels are the Spanish labels of the certification page.
var DefaultLabels = Labels{
	Signer: "FIRMA",
	Date:   "FECHA",
	Pages:  "NÚMERO DE PÁGINAS",
}

// Result contains the result of a Write operation.
type Result struct {
	// Pages is the page count of the output document.
	Pages int
	// PageSize is the size of the appended page.
	PageSize Size
	// Lines holds the text drawn on the appended page, title first.
	Lines []string
	// Warnings holds non-fatal failures, such as a *MetadataCopyError.
	Warnings []error
	// Overflow lists lines wider than the page.
	Overflow []string
}

// Appearance controls how the certification page looks.
type Appearance struct {
	Title     string
	Labels    Labels
	Months    locale.Months
	DateStyle locale.Style
	Margin    float64
	TitleFont *fonts.Font
	BodyFont  *fonts.Font
}

// DefaultAppearance returns the appearance used when none is configured.
func DefaultAppearance() Appearance {
	return Appearance{
		Title:     DefaultTitle,
		Labels:    DefaultLabels,
		Months:    locale.Spanish,
		DateStyle: locale.StyleAbbreviated,
		TitleFont: fonts.Standard(fonts.HelveticaBold),
		BodyFont:  fonts.Standard(fonts.Helvetica),
	}
}
