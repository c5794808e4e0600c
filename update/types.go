// Package update writes incremental updates to an existing PDF document.
//
// The original bytes are copied unchanged and new or replaced objects are
// appended after them, followed by a cross-reference section (table or
// stream, matching the source) and a trailer chained to the previous one.
package update

import (
	"io"

	"github.com/digitorus/pdf"
	"github.com/mattetti/filebuffer"
)

type xrefEntry struct {
	ID     uint32
	Gen    uint16
	Offset int64
}

// Context accumulates one incremental update.
type Context struct {
	InputFile    io.ReadSeeker
	PDFReader    *pdf.Reader
	OutputBuffer *filebuffer.Buffer
	NewXrefStart int64

	// CompressLevel is the zlib level of the xref stream. NewContext sets
	// zlib.DefaultCompression.
	CompressLevel int

	baseSize   uint32
	nextID     uint32
	reserved   map[uint32]bool
	newEntries map[uint32]xrefEntry
	updated    map[uint32]xrefEntry
	infoRef    string
	finished   bool
}
