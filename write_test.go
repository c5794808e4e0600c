package pdfcertify

import (
	"bytes"
	"errors"
	"regexp"
	"slices"
	"strings"
	"testing"

	pdflib "github.com/digitorus/pdf"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/digitorus/pdfcertify/fonts"
	pdfutil "github.com/digitorus/pdfcertify/internal/pdf"
	"github.com/digitorus/pdfcertify/internal/testpdf"
	"github.com/digitorus/pdfcertify/locale"
)

func mustAppend(t *testing.T, input []byte, fields Fields, opts ...Option) ([]byte, *Result) {
	t.Helper()
	out, result, err := Append(input, fields, opts...)
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	return out, result
}

func TestAppend_PageCount(t *testing.T) {
	for _, n := range []int{1, 2, 5, 12} {
		out, result := mustAppend(t, testpdf.Pages(t, n, testpdf.A4), Fields{Signer: "Ana", Date: testDate})
		if result.Pages != n+1 {
			t.Errorf("%d pages: expected result.Pages %d, got %d", n, n+1, result.Pages)
		}
		if got := len(outputPages(t, out)); got != n+1 {
			t.Errorf("%d pages: expected %d output pages, got %d", n, n+1, got)
		}
	}
}

func TestAppend_PreservesOriginalPages(t *testing.T) {
	input := testpdf.Generate(t, testpdf.Options{Pages: []testpdf.Size{
		testpdf.A4, testpdf.Letter, {Width: 842, Height: 595},
	}})

	out, _ := mustAppend(t, input, Fields{Signer: "Ana", Date: testDate})

	// The source document is the unmodified prefix of the output.
	if !bytes.HasPrefix(out, input) {
		t.Fatal("output does not start with the source document")
	}

	before := outputPages(t, input)
	after := outputPages(t, out)
	if len(after) != len(before)+1 {
		t.Fatalf("expected %d pages, got %d", len(before)+1, len(after))
	}
	for i := range before {
		want, err := pdfutil.PageContent(before[i])
		if err != nil {
			t.Fatal(err)
		}
		got, err := pdfutil.PageContent(after[i])
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(want, got) {
			t.Errorf("page %d content changed", i+1)
		}
		if pdfutil.RefOf(before[i]) != pdfutil.RefOf(after[i]) {
			t.Errorf("page %d object changed from %v to %v", i+1, pdfutil.RefOf(before[i]), pdfutil.RefOf(after[i]))
		}

		wantW, wantH, _ := pdfutil.PageSize(before[i])
		gotW, gotH, _ := pdfutil.PageSize(after[i])
		if wantW != gotW || wantH != gotH {
			t.Errorf("page %d size changed from %gx%g to %gx%g", i+1, wantW, wantH, gotW, gotH)
		}
	}
}

func TestAppend_PageSize(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  Size
	}{
		{"a4", testpdf.Pages(t, 2, testpdf.A4), Size{Width: 595.28, Height: 841.89}},
		{"landscape last", testpdf.Generate(t, testpdf.Options{Pages: []testpdf.Size{testpdf.A4, {Width: 842, Height: 595}}}), Size{Width: 842, Height: 595}},
		{"zero pages", testpdf.ZeroPages(), FallbackSize},
		{"no media box", testpdf.NoMediaBox(), FallbackSize},
		{"xref stream", testpdf.XrefStream(), Size{Width: 420, Height: 595}},
		{"nested page tree", testpdf.Nested(), Size{Width: 500, Height: 700}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, result := mustAppend(t, tt.input, Fields{Date: testDate})
			if result.PageSize != tt.want {
				t.Errorf("expected result size %v, got %v", tt.want, result.PageSize)
			}

			pages := outputPages(t, out)
			w, h, ok := pdfutil.PageSize(pages[len(pages)-1])
			if !ok {
				t.Fatal("appended page has no usable MediaBox")
			}
			if w != tt.want.Width || h != tt.want.Height {
				t.Errorf("expected appended page %gx%g, got %gx%g", tt.want.Width, tt.want.Height, w, h)
			}
		})
	}
}

func TestAppend_InheritedDisplayAttributes(t *testing.T) {
	out, result := mustAppend(t, testpdf.InheritedDisplay(), Fields{Signer: "Ana", Date: testDate})
	if want := (Size{Width: 612, Height: 792}); result.PageSize != want {
		t.Fatalf("expected size %v, got %v", want, result.PageSize)
	}

	pages := outputPages(t, out)
	if len(pages) != 3 {
		t.Fatalf("expected 3 pages, got %d", len(pages))
	}
	page := pages[2]

	// The root rotates and crops; the appended page must not pick that up.
	parent := page.Key("Parent")
	if parent.Key("Rotate").Int64() != 90 {
		t.Fatalf("expected the page tree root to keep /Rotate 90, got %v", parent.Key("Rotate"))
	}

	rotate := page.Key("Rotate")
	if rotate.Kind() != pdflib.Integer || rotate.Int64() != 0 {
		t.Errorf("expected own /Rotate 0, got %v", rotate)
	}

	crop := page.Key("CropBox")
	if crop.Kind() != pdflib.Array || crop.Len() != 4 {
		t.Fatalf("expected own /CropBox, got %v", crop)
	}
	want := []float64{0, 0, 612, 792}
	for i, v := range want {
		if got := crop.Index(i).Float64(); got != v {
			t.Errorf("CropBox[%d] = %g, want %g", i, got, v)
		}
	}
}

func TestAppend_NestedPageTree(t *testing.T) {
	input := testpdf.Nested()
	before := outputPages(t, input)

	out, result := mustAppend(t, input, Fields{Date: testDate})
	if result.Pages != 4 {
		t.Errorf("expected 4 pages, got %d", result.Pages)
	}

	after := outputPages(t, out)
	if len(after) != 4 {
		t.Fatalf("expected 4 output pages, got %d", len(after))
	}
	for i := range before {
		if pdfutil.RefOf(before[i]) != pdfutil.RefOf(after[i]) {
			t.Errorf("page %d moved from %v to %v", i+1, pdfutil.RefOf(before[i]), pdfutil.RefOf(after[i]))
		}
	}

	// The new page hangs off the root, next to the intermediate node.
	rdr, err := pdflib.NewReader(bytes.NewReader(out), int64(len(out)))
	if err != nil {
		t.Fatal(err)
	}
	tree, err := pdfutil.PageTree(rdr)
	if err != nil {
		t.Fatal(err)
	}
	if got := tree.Key("Count").Int64(); got != 4 {
		t.Errorf("expected root /Count 4, got %d", got)
	}
	if got := tree.Key("Kids").Len(); got != 3 {
		t.Errorf("expected 3 root kids, got %d", got)
	}
	if got := pdfutil.RefOf(after[3].Key("Parent")); got != pdfutil.RefOf(tree) {
		t.Errorf("expected /Parent %v, got %v", pdfutil.RefOf(tree), got)
	}

	twice, result := mustAppend(t, out, Fields{Date: testDate})
	if result.Pages != 5 {
		t.Errorf("expected 5 pages after second append, got %d", result.Pages)
	}
	if !strings.Contains(lastPageContent(t, twice), "GINAS: 4) Tj") {
		t.Error("second certification page does not count the first one")
	}
}

func TestAppend_Lines(t *testing.T) {
	out, result := mustAppend(t, testpdf.Pages(t, 5, testpdf.A4), Fields{Signer: "Ana Gómez", Date: testDate, PageCount: "   "})

	want := []string{
		"Certificado de copia",
		"FIRMA: Ana Gómez",
		"FECHA: 07/Mar/2024",
		"NÚMERO DE PÁGINAS: 5",
	}
	if !slices.Equal(result.Lines, want) {
		t.Errorf("expected lines %q, got %q", want, result.Lines)
	}

	content := lastPageContent(t, out)
	for _, s := range []string{"(Certificado de copia) Tj", "(FECHA: 07/Mar/2024) Tj", "GINAS: 5) Tj"} {
		if !strings.Contains(content, s) {
			t.Errorf("content is missing %q", s)
		}
	}
}

func TestAppend_PageCountVerbatim(t *testing.T) {
	out, result := mustAppend(t, testpdf.Pages(t, 5, testpdf.A4), Fields{Date: testDate, PageCount: "4 de 4"})
	if result.Lines[3] != "NÚMERO DE PÁGINAS: 4 de 4" {
		t.Errorf("unexpected page count line %q", result.Lines[3])
	}
	if !strings.Contains(lastPageContent(t, out), "GINAS: 4 de 4) Tj") {
		t.Error("page count text was not drawn verbatim")
	}
}

func TestAppend_EmptySigner(t *testing.T) {
	out, result := mustAppend(t, testpdf.Pages(t, 1, testpdf.A4), Fields{Date: testDate})
	if result.Lines[1] != "FIRMA: " {
		t.Errorf("unexpected signer line %q", result.Lines[1])
	}
	if !strings.Contains(lastPageContent(t, out), "(FIRMA: ) Tj") {
		t.Error("empty signer line was not drawn")
	}
}

func TestAppend_NoSignatureLine(t *testing.T) {
	out, _ := mustAppend(t, testpdf.Pages(t, 3, testpdf.A4), Fields{Signer: "Ana", Date: testDate})

	content := lastPageContent(t, out)
	pathOps := regexp.MustCompile(`(?m) (m|l|re|c|S|s|f|B)$`)
	if pathOps.MatchString(content) {
		t.Errorf("unexpected drawing in %q", content)
	}
	// Title and three lines, no page number.
	if n := strings.Count(content, " Tj"); n != 4 {
		t.Errorf("expected 4 text operations, got %d", n)
	}
}

func TestAppend_Encrypted(t *testing.T) {
	input := testpdf.Generate(t, testpdf.Options{Pages: []testpdf.Size{testpdf.A4}, Protect: true})

	out, result, err := Append(input, Fields{Signer: "Ana", Date: testDate})
	if !errors.Is(err, ErrEncryptedDocument) {
		t.Errorf("expected ErrEncryptedDocument, got %v", err)
	}
	if out != nil || result != nil {
		t.Error("expected no output for an encrypted document")
	}
}

func TestAppend_Unreadable(t *testing.T) {
	out, _, err := Append([]byte("%PDF-1.4\ngarbage"), Fields{Date: testDate})
	if !errors.Is(err, ErrUnreadableDocument) {
		t.Errorf("expected ErrUnreadableDocument, got %v", err)
	}
	if out != nil {
		t.Error("expected no output for an unreadable document")
	}
}

func TestAppend_Deterministic(t *testing.T) {
	input := testpdf.Generate(t, testpdf.Options{Pages: []testpdf.Size{testpdf.A4, testpdf.Letter}, Title: "Contrato"})
	fields := Fields{Signer: "Ana", Date: testDate, PageCount: "2"}

	first, _ := mustAppend(t, input, fields)
	second, _ := mustAppend(t, input, fields)
	if !bytes.Equal(first, second) {
		t.Error("identical inputs produced different outputs")
	}
}

func TestAppend_Metadata(t *testing.T) {
	input := testpdf.Generate(t, testpdf.Options{
		Pages:  []testpdf.Size{testpdf.A4},
		Title:  "Contrato de arrendamiento",
		Author: "Notaría Central",
	})

	out, result := mustAppend(t, input, Fields{Date: testDate})
	if len(result.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", result.Warnings)
	}

	doc, err := OpenBytes(out)
	if err != nil {
		t.Fatalf("output does not open: %v", err)
	}
	meta := doc.Metadata()
	if meta["Title"] != "Contrato de arrendamiento" {
		t.Errorf("expected Title to be copied, got %q", meta["Title"])
	}
	if meta["Author"] != "Notaría Central" {
		t.Errorf("expected Author to be copied, got %q", meta["Author"])
	}
}

func TestAppend_XrefStreamMetadata(t *testing.T) {
	out, _ := mustAppend(t, testpdf.XrefStream(), Fields{Date: testDate})

	doc, err := OpenBytes(out)
	if err != nil {
		t.Fatalf("output does not open: %v", err)
	}
	if doc.XrefType() != "stream" {
		t.Errorf("expected xref stream, got %q", doc.XrefType())
	}
	if doc.NumPage() != 3 {
		t.Errorf("expected 3 pages, got %d", doc.NumPage())
	}
	if got := doc.Metadata()["Producer"]; got != "fixture" {
		t.Errorf("expected Producer fixture, got %q", got)
	}
}

func TestAppend_MetadataFailureIsNotFatal(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)

	out, result := mustAppend(t, testpdf.InfoStream(), Fields{Signer: "Ana", Date: testDate}, WithLogger(zap.New(core)))
	if out == nil {
		t.Fatal("expected output")
	}

	if len(result.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %v", result.Warnings)
	}
	if !errors.Is(result.Warnings[0], ErrMetadataCopy) {
		t.Errorf("expected ErrMetadataCopy, got %v", result.Warnings[0])
	}
	var target *MetadataCopyError
	if !errors.As(result.Warnings[0], &target) {
		t.Errorf("expected *MetadataCopyError, got %T", result.Warnings[0])
	}

	entries := logs.FilterMessage("metadata not copied").All()
	if len(entries) != 1 || entries[0].Level != zapcore.WarnLevel {
		t.Errorf("expected one warning log entry, got %v", entries)
	}

	// The document is still produced, without metadata.
	rdr, err := pdflib.NewReader(bytes.NewReader(out), int64(len(out)))
	if err != nil {
		t.Fatal(err)
	}
	if !rdr.Trailer().Key("Info").IsNull() {
		t.Error("expected no /Info in the new trailer")
	}
	if got := len(outputPages(t, out)); got != 2 {
		t.Errorf("expected 2 pages, got %d", got)
	}
}

func TestAppend_Chained(t *testing.T) {
	once, _ := mustAppend(t, testpdf.Pages(t, 2, testpdf.A4), Fields{Date: testDate})
	twice, result := mustAppend(t, once, Fields{Date: testDate})

	if result.Pages != 4 {
		t.Errorf("expected 4 pages, got %d", result.Pages)
	}
	if got := len(outputPages(t, twice)); got != 4 {
		t.Errorf("expected 4 output pages, got %d", got)
	}
	if !strings.Contains(lastPageContent(t, twice), "GINAS: 3) Tj") {
		t.Error("second certification page does not count the first one")
	}
}

func TestWrite_Builder(t *testing.T) {
	doc, err := OpenBytes(testpdf.Pages(t, 2, testpdf.A4))
	if err != nil {
		t.Fatal(err)
	}

	doc.Certify().
		Signer("John Smith").
		Date(testDate).
		PageCount("2 of 2").
		Title("Certified copy ({{Initials}})").
		Labels(Labels{Signer: "SIGNER", Date: "DATE", Pages: "PAGES"}).
		Months(locale.English)

	var out bytes.Buffer
	result, err := doc.Write(&out)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	want := []string{
		"Certified copy (JS)",
		"SIGNER: John Smith",
		"DATE: 07/Mar/2024",
		"PAGES: 2 of 2",
	}
	if !slices.Equal(result.Lines, want) {
		t.Errorf("expected lines %q, got %q", want, result.Lines)
	}
}

func TestWrite_ISODate(t *testing.T) {
	doc, err := OpenBytes(testpdf.Pages(t, 1, testpdf.A4))
	if err != nil {
		t.Fatal(err)
	}
	doc.Certify().Date(testDate).DateStyle(locale.StyleISO)

	var out bytes.Buffer
	result, err := doc.Write(&out)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if result.Lines[2] != "FECHA: 2024-03-07" {
		t.Errorf("unexpected date line %q", result.Lines[2])
	}
}

func TestWrite_EmbeddedFont(t *testing.T) {
	font, err := fonts.New("regular", goregular.TTF)
	if err != nil {
		t.Fatal(err)
	}

	doc, err := OpenBytes(testpdf.Pages(t, 1, testpdf.A4))
	if err != nil {
		t.Fatal(err)
	}
	doc.Certify().Date(testDate).Signer("Zoë ☃").Fonts(font, font)

	var out bytes.Buffer
	if _, err := doc.Write(&out); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if got := len(outputPages(t, out.Bytes())); got != 2 {
		t.Errorf("expected 2 pages, got %d", got)
	}
}

func TestWrite_NothingStaged(t *testing.T) {
	doc, err := OpenBytes(testpdf.Pages(t, 1, testpdf.A4))
	if err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if _, err := doc.Write(&out); !errors.Is(err, ErrNothingStaged) {
		t.Errorf("expected ErrNothingStaged, got %v", err)
	}
	if out.Len() != 0 {
		t.Error("expected no output")
	}
}

func TestWrite_DirectPageTree(t *testing.T) {
	// The page tree root is embedded in the catalog and cannot be replaced.
	input := testpdf.Raw([]string{
		"<< /Type /Catalog /Pages << /Type /Pages /Kids [2 0 R] /Count 1 >> >>",
		"<< /Type /Page /MediaBox [0 0 300 300] >>",
	}, "/Root 1 0 R")

	doc, err := OpenBytes(input)
	if err != nil {
		t.Fatal(err)
	}
	doc.Certify().Date(testDate)

	var out bytes.Buffer
	_, err = doc.Write(&out)
	if !errors.Is(err, ErrRenderOrMerge) {
		t.Fatalf("expected ErrRenderOrMerge, got %v", err)
	}
	var target *RenderError
	if !errors.As(err, &target) {
		t.Fatalf("expected *RenderError, got %T", err)
	}
	if target.Stage != "merge" {
		t.Errorf("expected merge stage, got %q", target.Stage)
	}
	if !strings.Contains(target.Message(), "Ocurrió un error al generar el PDF") {
		t.Errorf("unexpected message %q", target.Message())
	}
	if out.Len() != 0 {
		t.Error("expected no partial output")
	}
}

func TestWrite_LogsOverflow(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	doc, err := OpenBytes(testpdf.Pages(t, 1, testpdf.Size{Width: 150, Height: 300}), WithLogger(zap.New(core)))
	if err != nil {
		t.Fatal(err)
	}
	doc.Certify().Date(testDate).Signer(strings.Repeat("Largo ", 20))

	var out bytes.Buffer
	result, err := doc.Write(&out)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if len(result.Overflow) == 0 {
		t.Error("expected overflowing lines")
	}
	if len(logs.FilterMessage("line wider than page").All()) == 0 {
		t.Error("expected an overflow debug entry")
	}
	if n := len(logs.FilterMessage("certification page appended").All()); n != 1 {
		t.Errorf("expected 1 completion entry, got %d", n)
	}
}
