package update

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"
)

// writeXrefStream writes the cross-reference stream object to the output buffer.
// The stream carries its own entry, so its number is reserved up front.
func (context *Context) writeXrefStream() error {
	id := context.ReserveObject()
	delete(context.reserved, id)

	context.NewXrefStart = int64(context.OutputBuffer.Buff.Len())
	context.newEntries[id] = xrefEntry{ID: id, Offset: context.NewXrefStart}

	entries := context.sortedEntries()

	var buffer bytes.Buffer
	for _, entry := range entries {
		writeXrefStreamLine(&buffer, 1, entry.Offset, entry.Gen)
	}

	streamBytes, err := encodeXrefStream(buffer.Bytes(), context.CompressLevel)
	if err != nil {
		return fmt.Errorf("failed to encode xref stream: %w", err)
	}

	var xrefStreamObject bytes.Buffer
	if err := context.writeXrefStreamHeader(&xrefStreamObject, entries, len(streamBytes)); err != nil {
		return fmt.Errorf("failed to write xref stream header: %w", err)
	}
	if err := writeXrefStreamContent(&xrefStreamObject, streamBytes); err != nil {
		return fmt.Errorf("failed to write xref stream content: %w", err)
	}

	if _, err := context.writeObject(id, 0, xrefStreamObject.Bytes()); err != nil {
		return fmt.Errorf("failed to add xref stream object: %w", err)
	}
	return nil
}

// encodeXrefStream compresses the xref stream without prediction.
func encodeXrefStream(data []byte, level int) ([]byte, error) {
	var b bytes.Buffer
	w, err := zlib.NewWriterLevel(&b, level)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// writeXrefStreamHeader writes the dictionary of the xref stream. The trailer
// entries live here for documents that use xref streams.
func (context *Context) writeXrefStreamHeader(buffer *bytes.Buffer, entries []xrefEntry, streamLength int) error {
	buffer.WriteString("<< /Type /XRef\n")
	fmt.Fprintf(buffer, "  /Length %d\n", streamLength)
	buffer.WriteString("  /Filter /FlateDecode\n")
	buffer.WriteString("  /W [ 1 4 2 ]\n")

	buffer.WriteString("  /Index [")
	for _, run := range subsections(entries) {
		fmt.Fprintf(buffer, " %d %d", run[0].ID, len(run))
	}
	buffer.WriteString(" ]\n")

	return context.writeTrailerEntries(buffer, "  ", "\n")
}

// writeXrefStreamContent writes the content of the xref stream.
func writeXrefStreamContent(buffer *bytes.Buffer, streamBytes []byte) error {
	if _, err := io.WriteString(buffer, "stream\n"); err != nil {
		return err
	}
	if _, err := buffer.Write(streamBytes); err != nil {
		return err
	}
	if _, err := io.WriteString(buffer, "\nendstream"); err != nil {
		return err
	}
	return nil
}

// writeXrefStreamLine writes a single line in the xref stream.
func writeXrefStreamLine(b *bytes.Buffer, xreftype byte, offset int64, gen uint16) {
	// Write type (1 byte)
	b.WriteByte(xreftype)

	// Write offset (4 bytes)
	offsetBytes := make([]byte, 4)
	binary.BigEndian.PutUint32(offsetBytes, uint32(offset))
	b.Write(offsetBytes)

	// Write generation (2 bytes)
	genBytes := make([]byte, 2)
	binary.BigEndian.PutUint16(genBytes, gen)
	b.Write(genBytes)
}
