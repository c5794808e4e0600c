// Package pdfcertify appends a certification page to existing PDF documents.
//
// The certification page states who certified the copy, when, and how many
// pages the copy has. It is appended as an incremental update, so every byte
// of the source document is preserved and its pages are left untouched.
//
// Basic usage:
//
//	doc, err := pdfcertify.OpenFile("document.pdf")
//	if err != nil {
//	    log.Fatal(pdfcertify.UserMessage(err))
//	}
//
//	doc.Certify().
//	    Signer("María Pérez").
//	    Date(time.Now())
//
//	result, err := doc.Write(output)
package pdfcertify

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"

	pdflib "github.com/digitorus/pdf"
	"go.uber.org/zap"

	pdfutil "github.com/digitorus/pdfcertify/internal/pdf"
)

// Document is a parsed, unencrypted PDF document a certification page can be
// appended to. A Document must not be written from multiple goroutines.
type Document struct {
	reader io.ReaderAt
	size   int64
	rdr    *pdflib.Reader
	pages  []pdflib.Value

	logger   *zap.Logger
	fallback Size

	pending *CertifyBuilder
}

// Option configures a Document when it is opened.
type Option func(*Document)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Document) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithFallbackSize sets the size used when the last page size cannot be
// determined. Non-positive sizes are ignored.
func WithFallbackSize(s Size) Option {
	return func(d *Document) {
		if s.Width > 0 && s.Height > 0 {
			d.fallback = s
		}
	}
}

// Open parses a PDF document from an io.ReaderAt. The size parameter must be
// the total size of the PDF in bytes.
//
// Open fails with *UnreadableDocumentError when the data is not a valid PDF
// and with *EncryptedDocumentError when the document is encrypted.
func Open(reader io.ReaderAt, size int64, opts ...Option) (doc *Document, err error) {
	d := &Document{
		reader:   reader,
		size:     size,
		logger:   zap.NewNop(),
		fallback: FallbackSize,
	}
	for _, opt := range opts {
		opt(d)
	}

	// The parser panics on some malformed input.
	defer func() {
		if r := recover(); r != nil {
			d.logger.Warn("parser panicked", zap.Any("panic", r))
			if d.looksEncrypted() {
				doc, err = nil, &EncryptedDocumentError{}
				return
			}
			doc, err = nil, &UnreadableDocumentError{Err: fmt.Errorf("malformed document: %v", r)}
		}
	}()

	rdr, err := pdflib.NewReader(reader, size)
	if err != nil {
		if d.looksEncrypted() {
			return nil, &EncryptedDocumentError{}
		}
		return nil, &UnreadableDocumentError{Err: err}
	}
	if pdfutil.IsEncrypted(rdr) {
		return nil, &EncryptedDocumentError{}
	}

	pages, err := pdfutil.Pages(rdr)
	if err != nil {
		return nil, &UnreadableDocumentError{Err: err}
	}

	d.rdr = rdr
	d.pages = pages
	d.logger.Debug("opened document",
		zap.Int64("size", size),
		zap.Int("pages", len(pages)),
		zap.String("xref", rdr.XrefInformation.Type))
	return d, nil
}

// OpenBytes parses a PDF document held in memory.
func OpenBytes(data []byte, opts ...Option) (*Document, error) {
	return Open(bytes.NewReader(data), int64(len(data)), opts...)
}

// OpenFile is a convenience method to parse a PDF document from a file on disk.
func OpenFile(path string, opts ...Option) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return OpenBytes(data, opts...)
}

func (d *Document) looksEncrypted() bool {
	data, err := io.ReadAll(io.NewSectionReader(d.reader, 0, d.size))
	if err != nil {
		return false
	}
	return pdfutil.LooksEncrypted(data)
}

// NumPage returns the number of pages of the source document.
func (d *Document) NumPage() int {
	return len(d.pages)
}

// LastPageSize returns the MediaBox size of the last page. Documents without
// pages, or whose last page has no usable MediaBox, report the fallback size.
func (d *Document) LastPageSize() Size {
	if len(d.pages) == 0 {
		return d.fallback
	}
	w, h, ok := pdfutil.PageSize(d.pages[len(d.pages)-1])
	if !ok {
		return d.fallback
	}
	return Size{Width: w, Height: h}
}

// Metadata returns the document information dictionary as text. Documents
// without one return an empty map.
func (d *Document) Metadata() map[string]string {
	meta := make(map[string]string)
	info := d.rdr.Trailer().Key("Info")
	if info.Kind() != pdflib.Dict {
		return meta
	}
	for _, key := range info.Keys() {
		v := info.Key(key)
		switch v.Kind() {
		case pdflib.String:
			meta[key] = v.Text()
		case pdflib.Name:
			meta[key] = v.Name()
		case pdflib.Null:
		default:
			meta[key] = v.String()
		}
	}
	return meta
}

// MetadataKeys returns the keys of Metadata in sorted order.
func (d *Document) MetadataKeys() []string {
	meta := d.Metadata()
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FontInfo describes a font used by the pages of the document.
type FontInfo struct {
	Name     string
	Subtype  string
	Embedded bool
}

// Fonts lists the fonts referenced by the pages of the document.
func (d *Document) Fonts() []FontInfo {
	scanned := pdfutil.ScanFonts(d.pages)
	fonts := make([]FontInfo, 0, len(scanned))
	for _, f := range scanned {
		fonts = append(fonts, FontInfo{Name: f.Name, Subtype: f.Subtype, Embedded: f.Embedded})
	}
	return fonts
}

// XrefType returns "table" or "stream", the kind of cross-reference section
// the document uses. Updates are written in the same form.
func (d *Document) XrefType() string {
	return d.rdr.XrefInformation.Type
}
