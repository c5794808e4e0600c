package pdf

import (
	"bytes"
	"fmt"
	"io"

	pdflib "github.com/digitorus/pdf"
)

// ObjectWriter receives the objects produced by an Importer.
type ObjectWriter interface {
	ReserveObject() uint32
	WriteObject(id uint32, body []byte) error
}

// streamSkipKeys are dropped from imported stream headers; stream data is
// written decoded and the length recomputed.
var streamSkipKeys = map[string]bool{
	"Length":      true,
	"Filter":      true,
	"DecodeParms": true,
	"DL":          true,
}

// Importer copies object graphs from a foreign document into an ObjectWriter,
// renumbering every indirect object it reaches exactly once.
type Importer struct {
	dst ObjectWriter
	ids map[Ref]uint32
}

// NewImporter returns an Importer that writes into dst.
func NewImporter(dst ObjectWriter) *Importer {
	return &Importer{
		dst: dst,
		ids: make(map[Ref]uint32),
	}
}

// Import copies holder.Key(key) and returns its serialized form for use in a
// dictionary of the destination document: a reference for indirect values,
// inline PDF syntax for direct ones.
func (im *Importer) Import(holder pdflib.Value, key string) (string, error) {
	v := holder.Key(key)
	if v.IsNull() {
		return "", fmt.Errorf("imported key /%s is missing", key)
	}
	var buf bytes.Buffer
	if err := WriteValue(&buf, RefOf(holder), v, im.ref); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Objects returns the number of objects copied so far.
func (im *Importer) Objects() int {
	return len(im.ids)
}

func (im *Importer) ref(v pdflib.Value) (string, error) {
	src := RefOf(v)
	if id, ok := im.ids[src]; ok {
		return Ref{ID: id}.String(), nil
	}

	// Register before recursing so cycles resolve to the reserved number.
	id := im.dst.ReserveObject()
	im.ids[src] = id

	var body bytes.Buffer
	switch v.Kind() {
	case pdflib.Stream:
		data, err := readStream(v)
		if err != nil {
			return "", fmt.Errorf("object %d: %w", src.ID, err)
		}
		if err := WriteDict(&body, src, v, im.ref, streamSkipKeys); err != nil {
			return "", fmt.Errorf("object %d: %w", src.ID, err)
		}
		// Replace the closing ">>" to append the new length.
		body.Truncate(body.Len() - 2)
		fmt.Fprintf(&body, "/Length %d >>\nstream\n", len(data))
		body.Write(data)
		body.WriteString("\nendstream")
	default:
		if err := WriteDirect(&body, src, v, im.ref); err != nil {
			return "", fmt.Errorf("object %d: %w", src.ID, err)
		}
	}

	if err := im.dst.WriteObject(id, body.Bytes()); err != nil {
		return "", err
	}
	return Ref{ID: id}.String(), nil
}

func readStream(v pdflib.Value) ([]byte, error) {
	rc := v.Reader()
	if rc == nil {
		return nil, fmt.Errorf("stream has no reader")
	}
	defer func() {
		_ = rc.Close()
	}()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to decode stream: %w", err)
	}
	return data, nil
}
