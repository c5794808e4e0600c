// Package testpdf builds PDF fixtures for tests.
package testpdf

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"testing"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// A4 and Letter portrait sizes in points.
var (
	A4     = Size{595.28, 841.89}
	Letter = Size{612, 792}
)

// Size is a page size in points.
type Size struct {
	Width, Height float64
}

// Options control Generate.
type Options struct {
	// Pages lists the page sizes. The first one is the document default.
	Pages  []Size
	Title  string
	Author string
	// Protect encrypts the document with an empty user password.
	Protect bool
}

// Generate writes a document with one line of text per page.
func Generate(t testing.TB, opts Options) []byte {
	t.Helper()
	if len(opts.Pages) == 0 {
		t.Fatal("testpdf: at least one page is required")
	}

	first := opts.Pages[0]
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: first.Width, Ht: first.Height},
	})
	stamp := time.Date(2024, time.March, 7, 10, 0, 0, 0, time.UTC)
	pdf.SetCreationDate(stamp)
	pdf.SetModificationDate(stamp)
	if opts.Title != "" {
		pdf.SetTitle(opts.Title, true)
	}
	if opts.Author != "" {
		pdf.SetAuthor(opts.Author, true)
	}
	if opts.Protect {
		pdf.SetProtection(gofpdf.CnProtectPrint, "", "owner")
	}

	for i, size := range opts.Pages {
		pdf.AddPageFormat("P", gofpdf.SizeType{Wd: size.Width, Ht: size.Height})
		pdf.SetFont("Helvetica", "", 12)
		pdf.Text(50, 60, fmt.Sprintf("Source page %d", i+1))
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatalf("testpdf: failed to generate document: %v", err)
	}
	return buf.Bytes()
}

// Pages returns a document with n pages of the given size.
func Pages(t testing.TB, n int, size Size) []byte {
	t.Helper()
	sizes := make([]Size, n)
	for i := range sizes {
		sizes[i] = size
	}
	return Generate(t, Options{Pages: sizes})
}

// Raw assembles a document with a classic cross-reference table from object
// bodies numbered from 1. trailer holds extra trailer entries such as
// "/Root 1 0 R".
func Raw(objects []string, trailer string) []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, len(objects))
	for i, body := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}

	start := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f\r\n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n\r\n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d %s >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, trailer, start)
	return buf.Bytes()
}

// RawXrefStream assembles a document whose cross-reference section is an
// uncompressed xref stream appended as the last object.
func RawXrefStream(objects []string, trailer string) []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.5\n")

	offsets := make([]int, len(objects))
	for i, body := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}

	id := len(objects) + 1
	start := buf.Len()

	var entries bytes.Buffer
	writeEntry := func(typ byte, field2 uint32, field3 uint16) {
		entries.WriteByte(typ)
		_ = binary.Write(&entries, binary.BigEndian, field2)
		_ = binary.Write(&entries, binary.BigEndian, field3)
	}
	writeEntry(0, 0, 65535)
	for _, off := range offsets {
		writeEntry(1, uint32(off), 0)
	}
	writeEntry(1, uint32(start), 0)

	fmt.Fprintf(&buf, "%d 0 obj\n<< /Type /XRef /Size %d /W [1 4 2] %s /Length %d >>\nstream\n",
		id, id+1, trailer, entries.Len())
	buf.Write(entries.Bytes())
	fmt.Fprintf(&buf, "\nendstream\nendobj\nstartxref\n%d\n%%%%EOF\n", start)
	return buf.Bytes()
}

// ZeroPages returns a valid document with an empty page tree.
func ZeroPages() []byte {
	return Raw([]string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [] /Count 0 >>",
	}, "/Root 1 0 R")
}

// NoMediaBox returns a one-page document whose page has no media box.
func NoMediaBox() []byte {
	return Raw([]string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /Resources << >> >>",
	}, "/Root 1 0 R")
}

// InfoStream returns a one-page document whose /Info entry points at a
// stream, which cannot be copied as metadata.
func InfoStream() []byte {
	return Raw([]string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 /MediaBox [0 0 300 400] >>",
		"<< /Type /Page /Parent 2 0 R /Resources << >> >>",
		"<< /Length 5 >>\nstream\nhello\nendstream",
	}, "/Root 1 0 R /Info 4 0 R")
}

// XrefStream returns a two-page document that uses a cross-reference stream.
func XrefStream() []byte {
	return RawXrefStream([]string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R 4 0 R] /Count 2 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << >> >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 420 595] /Resources << >> >>",
		"<< /Producer (fixture) >>",
	}, "/Root 1 0 R /Info 5 0 R")
}

// InheritedDisplay returns a two-page document whose page tree root sets
// /Rotate and a tiny /CropBox that the last page overrides.
func InheritedDisplay() []byte {
	return Raw([]string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R 4 0 R] /Count 2 /MediaBox [0 0 612 792] /Rotate 90 /CropBox [0 0 10 10] >>",
		"<< /Type /Page /Parent 2 0 R /Resources << >> >>",
		"<< /Type /Page /Parent 2 0 R /Resources << >> /Rotate 0 /CropBox [0 0 612 792] >>",
	}, "/Root 1 0 R")
}

// Nested returns a three-page document whose first two pages sit under an
// intermediate /Pages node. The last page is a direct kid of the root.
func Nested() []byte {
	return Raw([]string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R 6 0 R] /Count 3 /MediaBox [0 0 300 300] >>",
		"<< /Type /Pages /Parent 2 0 R /Kids [4 0 R 5 0 R] /Count 2 >>",
		"<< /Type /Page /Parent 3 0 R /Resources << >> >>",
		"<< /Type /Page /Parent 3 0 R /Resources << >> >>",
		"<< /Type /Page /Parent 2 0 R /Resources << >> /MediaBox [0 0 500 700] >>",
	}, "/Root 1 0 R")
}
