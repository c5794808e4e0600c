package pdfcertify

import (
	"time"

	"github.com/digitorus/pdfcertify/fonts"
	"github.com/digitorus/pdfcertify/internal/render"
	"github.com/digitorus/pdfcertify/locale"
)

// CertifyBuilder stages the certification page of a document. The page is
// only rendered and appended when Document.Write is called.
type CertifyBuilder struct {
	doc        *Document
	fields     Fields
	appearance Appearance
}

// Certify begins staging the certification page. Calling it again replaces
// the previously staged page.
func (d *Document) Certify() *CertifyBuilder {
	cb := &CertifyBuilder{
		doc:        d,
		fields:     Fields{Date: time.Now()},
		appearance: DefaultAppearance(),
	}
	d.pending = cb
	return cb
}

// Signer sets the signer text. It may be empty.
func (cb *CertifyBuilder) Signer(s string) *CertifyBuilder {
	cb.fields.Signer = s
	return cb
}

// Date sets the certification date.
func (cb *CertifyBuilder) Date(t time.Time) *CertifyBuilder {
	cb.fields.Date = t
	return cb
}

// PageCount sets the page count text. Blank text is replaced by the page
// count of the document.
func (cb *CertifyBuilder) PageCount(s string) *CertifyBuilder {
	cb.fields.PageCount = s
	return cb
}

// Fields sets all three fields at once. A zero date keeps the current one.
func (cb *CertifyBuilder) Fields(f Fields) *CertifyBuilder {
	if f.Date.IsZero() {
		f.Date = cb.fields.Date
	}
	cb.fields = f
	return cb
}

// Appearance replaces the page appearance. Zero fields keep their defaults.
func (cb *CertifyBuilder) Appearance(a Appearance) *CertifyBuilder {
	if a.Title != "" {
		cb.appearance.Title = a.Title
	}
	if a.Labels.Signer != "" {
		cb.appearance.Labels.Signer = a.Labels.Signer
	}
	if a.Labels.Date != "" {
		cb.appearance.Labels.Date = a.Labels.Date
	}
	if a.Labels.Pages != "" {
		cb.appearance.Labels.Pages = a.Labels.Pages
	}
	if a.Months != nil {
		cb.appearance.Months = a.Months
	}
	cb.appearance.DateStyle = a.DateStyle
	if a.Margin > 0 {
		cb.appearance.Margin = a.Margin
	}
	if a.TitleFont != nil {
		cb.appearance.TitleFont = a.TitleFont
	}
	if a.BodyFont != nil {
		cb.appearance.BodyFont = a.BodyFont
	}
	return cb
}

// Title sets the title line. {{Signer}}, {{Date}}, {{Pages}} and
// {{Initials}} are expanded.
func (cb *CertifyBuilder) Title(s string) *CertifyBuilder {
	cb.appearance.Title = s
	return cb
}

// Labels sets the line labels.
func (cb *CertifyBuilder) Labels(l Labels) *CertifyBuilder {
	cb.appearance.Labels = l
	return cb
}

// Months sets the month abbreviation table.
func (cb *CertifyBuilder) Months(m locale.Months) *CertifyBuilder {
	cb.appearance.Months = m
	return cb
}

// DateStyle selects the date format.
func (cb *CertifyBuilder) DateStyle(s locale.Style) *CertifyBuilder {
	cb.appearance.DateStyle = s
	return cb
}

// Fonts sets the title and body fonts.
func (cb *CertifyBuilder) Fonts(title, body *fonts.Font) *CertifyBuilder {
	if title != nil {
		cb.appearance.TitleFont = title
	}
	if body != nil {
		cb.appearance.BodyFont = body
	}
	return cb
}

// page builds the render description for a page of the given size.
func (cb *CertifyBuilder) page(size Size) render.Page {
	a := cb.appearance
	date := FormatDateStyle(cb.fields.Date, a.Months, a.DateStyle)
	pages := pageCountText(cb.fields.PageCount, cb.doc.NumPage())

	return render.Page{
		Width:  size.Width,
		Height: size.Height,
		Margin: a.Margin,
		Title: render.ExpandTemplateVariables(a.Title, render.TemplateContext{
			Signer: cb.fields.Signer,
			Date:   date,
			Pages:  pages,
		}),
		Lines: []render.Line{
			{Label: a.Labels.Signer, Value: cb.fields.Signer},
			{Label: a.Labels.Date, Value: date},
			{Label: a.Labels.Pages, Value: pages},
		},
		TitleFont: a.TitleFont,
		BodyFont:  a.BodyFont,
	}
}
