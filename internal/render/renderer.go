package render

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"

	"github.com/digitorus/pdfcertify/fonts"
)

// epoch is stamped as creation date of the intermediate document so that
// rendering is reproducible.
var epoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// CertificationPage renders p as a one-page PDF of exactly p.Width x p.Height.
//
// The title is drawn at the top margin, followed by the lines at a fixed line
// height. Text is neither wrapped nor shrunk. The page never carries a
// signature line or a page number.
func CertificationPage(p Page) (*Rendered, error) {
	if p.Width <= 0 || p.Height <= 0 {
		return nil, fmt.Errorf("invalid page size %.2fx%.2f", p.Width, p.Height)
	}
	if p.Margin <= 0 {
		p.Margin = DefaultMargin
	}
	if p.TitleSize <= 0 {
		p.TitleSize = DefaultTitleSize
	}
	if p.BodySize <= 0 {
		p.BodySize = DefaultBodySize
	}
	if p.TitleFont == nil {
		p.TitleFont = fonts.Standard(fonts.HelveticaBold)
	}
	if p.BodyFont == nil {
		p.BodyFont = fonts.Standard(fonts.Helvetica)
	}

	doc := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: p.Width, Ht: p.Height},
	})
	doc.SetCompression(false)
	doc.SetCatalogSort(true)
	doc.SetCreationDate(epoch)
	doc.SetModificationDate(epoch)
	doc.SetMargins(p.Margin, p.Margin, p.Margin)
	doc.SetAutoPageBreak(false, 0)

	registerFont(doc, p.TitleFont)
	registerFont(doc, p.BodyFont)

	doc.AddPage()

	var overflow []string
	draw := func(f *fonts.Font, size, y float64, text string) {
		doc.SetFont(f.Family, f.Style, size)
		encoded := encodeText(f, text)
		if p.Margin+doc.GetStringWidth(encoded) > p.Width {
			overflow = append(overflow, text)
		}
		doc.Text(p.Margin, y, encoded)
	}

	y := p.Margin
	draw(p.TitleFont, p.TitleSize, y, p.Title)
	y += titleAdvance

	for i, line := range p.Lines {
		if i > 0 {
			y += lineAdvance
		}
		draw(p.BodyFont, p.BodySize, y, line.Text())
	}

	if err := doc.Error(); err != nil {
		return nil, fmt.Errorf("failed to render certification page: %w", err)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize certification page: %w", err)
	}

	return &Rendered{PDF: buf.Bytes(), Overflow: overflow}, nil
}

func registerFont(doc *gofpdf.Fpdf, f *fonts.Font) {
	if f.Embedded && len(f.Data) > 0 {
		doc.AddUTF8FontFromBytes(f.Family, f.Style, f.Data)
	}
}

// encodeText prepares text for the given font. Standard fonts use WinAnsi
// encoding; characters outside it are replaced with '?'. Embedded fonts take
// UTF-8 directly.
func encodeText(f *fonts.Font, text string) string {
	text = norm.NFC.String(text)
	if f.Embedded {
		return text
	}

	var b strings.Builder
	for _, r := range text {
		c, ok := charmap.Windows1252.EncodeRune(r)
		if !ok {
			c = '?'
		}
		b.WriteByte(c)
	}
	return b.String()
}
