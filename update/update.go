package update

import (
	"compress/zlib"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/digitorus/pdf"
	"github.com/mattetti/filebuffer"
)

// ErrFinished is returned when a Context is used after Finish.
var ErrFinished = errors.New("incremental update already finished")

// NewContext copies input into a new output buffer and prepares an update
// against the document parsed by rdr.
func NewContext(input io.ReadSeeker, rdr *pdf.Reader) (*Context, error) {
	if rdr == nil {
		return nil, errors.New("no PDF reader")
	}
	switch rdr.XrefInformation.Type {
	case "table", "stream":
	default:
		return nil, fmt.Errorf("unsupported xref type %q", rdr.XrefInformation.Type)
	}

	size := rdr.Trailer().Key("Size").Int64()
	if rdr.XrefInformation.ItemCount > size {
		size = rdr.XrefInformation.ItemCount
	}
	if size <= 0 {
		return nil, fmt.Errorf("invalid trailer /Size %d", size)
	}

	context := &Context{
		InputFile:     input,
		PDFReader:     rdr,
		OutputBuffer:  filebuffer.New([]byte{}),
		CompressLevel: zlib.DefaultCompression,
		baseSize:      uint32(size),
		nextID:        uint32(size),
		reserved:      make(map[uint32]bool),
		newEntries:    make(map[uint32]xrefEntry),
		updated:       make(map[uint32]xrefEntry),
	}

	// Copy old file into new buffer.
	if _, err := input.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	if _, err := io.Copy(context.OutputBuffer, input); err != nil {
		return nil, fmt.Errorf("failed to copy source document: %w", err)
	}

	// File always needs an empty line after %%EOF.
	if _, err := context.OutputBuffer.Write([]byte("\n")); err != nil {
		return nil, err
	}

	return context, nil
}

// ReserveObject allocates a new object number without writing it. Every
// reserved number must be written with WriteObject before Finish.
func (context *Context) ReserveObject() uint32 {
	id := context.nextID
	context.nextID++
	context.reserved[id] = true
	return id
}

// WriteObject writes the body of a previously reserved object.
func (context *Context) WriteObject(id uint32, body []byte) error {
	if context.finished {
		return ErrFinished
	}
	if !context.reserved[id] {
		return fmt.Errorf("object %d was not reserved", id)
	}

	offset, err := context.writeObject(id, 0, body)
	if err != nil {
		return err
	}
	delete(context.reserved, id)
	context.newEntries[id] = xrefEntry{ID: id, Offset: offset}
	return nil
}

// AddObject appends a new object and returns its number.
func (context *Context) AddObject(body []byte) (uint32, error) {
	id := context.ReserveObject()
	if err := context.WriteObject(id, body); err != nil {
		return 0, err
	}
	return id, nil
}

// UpdateObject replaces an existing object of the source document.
func (context *Context) UpdateObject(id uint32, gen uint16, body []byte) error {
	if context.finished {
		return ErrFinished
	}
	if id == 0 || id >= context.baseSize {
		return fmt.Errorf("object %d is not part of the source document", id)
	}

	offset, err := context.writeObject(id, gen, body)
	if err != nil {
		return err
	}
	context.updated[id] = xrefEntry{ID: id, Gen: gen, Offset: offset}
	return nil
}

// SetInfo points the new trailer at an information dictionary. An empty
// reference omits /Info from the trailer.
func (context *Context) SetInfo(ref string) {
	context.infoRef = ref
}

func (context *Context) writeObject(id uint32, gen uint16, body []byte) (int64, error) {
	offset := int64(context.OutputBuffer.Buff.Len())

	header := strconv.FormatUint(uint64(id), 10) + " " + strconv.FormatUint(uint64(gen), 10) + " obj\n"
	if _, err := context.OutputBuffer.Write([]byte(header)); err != nil {
		return 0, fmt.Errorf("failed to write object %d: %w", id, err)
	}
	if _, err := context.OutputBuffer.Write(body); err != nil {
		return 0, fmt.Errorf("failed to write object %d: %w", id, err)
	}
	if _, err := context.OutputBuffer.Write([]byte("\nendobj\n")); err != nil {
		return 0, fmt.Errorf("failed to write object %d: %w", id, err)
	}
	return offset, nil
}

// Finish writes the cross-reference section and trailer, then copies the
// complete document to output. Nothing is written to output on error.
func (context *Context) Finish(output io.Writer) error {
	if context.finished {
		return ErrFinished
	}
	if len(context.reserved) > 0 {
		return fmt.Errorf("%d reserved objects were never written", len(context.reserved))
	}

	switch context.PDFReader.XrefInformation.Type {
	case "table":
		context.NewXrefStart = int64(context.OutputBuffer.Buff.Len())
		if err := context.writeIncrXrefTable(); err != nil {
			return err
		}
	case "stream":
		if err := context.writeXrefStream(); err != nil {
			return err
		}
	}

	if err := context.writeTrailer(); err != nil {
		return fmt.Errorf("failed to write trailer: %w", err)
	}
	context.finished = true

	// Write final output
	if _, err := context.OutputBuffer.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if _, err := output.Write(context.OutputBuffer.Buff.Bytes()); err != nil {
		return err
	}
	return nil
}

// sortedEntries returns updated and new entries ordered by object number.
func (context *Context) sortedEntries() []xrefEntry {
	entries := make([]xrefEntry, 0, len(context.updated)+len(context.newEntries))
	for _, e := range context.updated {
		entries = append(entries, e)
	}
	for _, e := range context.newEntries {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries
}

// subsections groups sorted entries into runs of consecutive object numbers.
func subsections(entries []xrefEntry) [][]xrefEntry {
	var runs [][]xrefEntry
	for i, e := range entries {
		if i == 0 || e.ID != entries[i-1].ID+1 {
			runs = append(runs, nil)
		}
		runs[len(runs)-1] = append(runs[len(runs)-1], e)
	}
	return runs
}

// size is the /Size of the updated document.
func (context *Context) size() uint32 {
	if context.nextID > context.baseSize {
		return context.nextID
	}
	return context.baseSize
}
