package update

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/digitorus/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digitorus/pdfcertify/internal/testpdf"
)

func newTestContext(t *testing.T, data []byte) *Context {
	t.Helper()
	rdr, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	context, err := NewContext(bytes.NewReader(data), rdr)
	require.NoError(t, err)
	return context
}

func reopen(t *testing.T, data []byte) *pdf.Reader {
	t.Helper()
	rdr, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	return rdr
}

func TestIncrementalUpdate_Table(t *testing.T) {
	input := testpdf.Pages(t, 2, testpdf.A4)
	context := newTestContext(t, input)
	oldStart := context.PDFReader.XrefInformation.StartPos

	id, err := context.AddObject([]byte("<< /Certified true >>"))
	require.NoError(t, err)
	assert.Equal(t, context.baseSize, id)
	context.SetInfo("")

	var out bytes.Buffer
	require.NoError(t, context.Finish(&out))

	output := out.Bytes()
	require.True(t, bytes.HasPrefix(output, input), "original bytes must be preserved")
	tail := string(output[len(input):])
	assert.Contains(t, tail, "\nxref\n")
	assert.Contains(t, tail, "trailer\n")
	assert.True(t, strings.HasSuffix(tail, "%%EOF\n"))

	rdr := reopen(t, output)
	assert.Equal(t, "table", rdr.XrefInformation.Type)
	assert.Equal(t, 2, rdr.NumPage())
	assert.Equal(t, oldStart, rdr.Trailer().Key("Prev").Int64())
	assert.Equal(t, int64(id)+1, rdr.Trailer().Key("Size").Int64())

	obj, err := rdr.GetObject(id)
	require.NoError(t, err)
	assert.True(t, obj.Key("Certified").Bool())
}

func TestIncrementalUpdate_Stream(t *testing.T) {
	input := testpdf.XrefStream()
	context := newTestContext(t, input)

	id, err := context.AddObject([]byte("<< /Producer (update) >>"))
	require.NoError(t, err)
	context.SetInfo(fmt.Sprintf("%d 0 R", id))

	var out bytes.Buffer
	require.NoError(t, context.Finish(&out))
	require.True(t, bytes.HasPrefix(out.Bytes(), input))

	rdr := reopen(t, out.Bytes())
	assert.Equal(t, "stream", rdr.XrefInformation.Type)
	assert.Equal(t, 2, rdr.NumPage())
	assert.Equal(t, "update", rdr.Trailer().Key("Info").Key("Producer").Text())
}

func TestUpdateObject(t *testing.T) {
	input := testpdf.XrefStream()
	context := newTestContext(t, input)

	// Object 4 is the second page; shrink it.
	body := []byte("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 100 200] /Resources << >> >>")
	require.NoError(t, context.UpdateObject(4, 0, body))

	var out bytes.Buffer
	require.NoError(t, context.Finish(&out))

	rdr := reopen(t, out.Bytes())
	page := rdr.Page(2).V
	assert.Equal(t, 100.0, page.Key("MediaBox").Index(2).Float64())
	assert.Equal(t, 200.0, page.Key("MediaBox").Index(3).Float64())
}

func TestUpdateObject_OutOfRange(t *testing.T) {
	context := newTestContext(t, testpdf.XrefStream())
	assert.Error(t, context.UpdateObject(0, 0, []byte("null")))
	assert.Error(t, context.UpdateObject(context.baseSize, 0, []byte("null")))
}

func TestFinish_UnwrittenReservation(t *testing.T) {
	context := newTestContext(t, testpdf.Pages(t, 1, testpdf.A4))
	context.ReserveObject()

	var out bytes.Buffer
	assert.Error(t, context.Finish(&out))
	assert.Zero(t, out.Len())
}

func TestFinish_Twice(t *testing.T) {
	context := newTestContext(t, testpdf.Pages(t, 1, testpdf.A4))
	var out bytes.Buffer
	require.NoError(t, context.Finish(&out))

	assert.ErrorIs(t, context.Finish(&out), ErrFinished)
	_, err := context.AddObject([]byte("null"))
	assert.ErrorIs(t, err, ErrFinished)
}

func TestWriteObject_NotReserved(t *testing.T) {
	context := newTestContext(t, testpdf.Pages(t, 1, testpdf.A4))
	assert.Error(t, context.WriteObject(9999, []byte("null")))
}

func TestSubsections(t *testing.T) {
	entries := []xrefEntry{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 7}, {ID: 9}, {ID: 10}}
	runs := subsections(entries)
	require.Len(t, runs, 3)
	assert.Len(t, runs[0], 3)
	assert.Equal(t, uint32(7), runs[1][0].ID)
	assert.Len(t, runs[2], 2)

	assert.Empty(t, subsections(nil))
}

func TestWriteXrefStreamLine(t *testing.T) {
	var b bytes.Buffer
	writeXrefStreamLine(&b, 1, 0x01020304, 7)
	assert.Equal(t, []byte{1, 1, 2, 3, 4, 0, 7}, b.Bytes())
}
