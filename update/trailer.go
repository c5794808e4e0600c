package update

import (
	"bytes"
	"fmt"
	"strconv"

	pdfutil "github.com/digitorus/pdfcertify/internal/pdf"
)

func (context *Context) writeTrailer() error {
	switch context.PDFReader.XrefInformation.Type {
	case "table":
		var trailer bytes.Buffer
		trailer.WriteString("trailer\n<<\n")
		if err := context.writeTrailerEntries(&trailer, "  ", "\n"); err != nil {
			return err
		}
		if _, err := context.OutputBuffer.Write(trailer.Bytes()); err != nil {
			return err
		}
	case "stream":
		// Trailer entries were written to the xref stream dictionary.
	}

	if _, err := context.OutputBuffer.Write([]byte("startxref\n")); err != nil {
		return err
	}

	// Write the new xref start position.
	if _, err := context.OutputBuffer.Write([]byte(strconv.FormatInt(context.NewXrefStart, 10) + "\n")); err != nil {
		return err
	}

	// Write PDF ending.
	if _, err := context.OutputBuffer.Write([]byte("%%EOF\n")); err != nil {
		return err
	}

	return nil
}

// writeTrailerEntries writes /Size, /Root, /Info, /ID and /Prev and closes
// the dictionary.
func (context *Context) writeTrailerEntries(buffer *bytes.Buffer, indent, eol string) error {
	trailer := context.PDFReader.Trailer()
	parent := pdfutil.RefOf(trailer)

	fmt.Fprintf(buffer, "%s/Size %d%s", indent, context.size(), eol)

	root := pdfutil.RefOf(trailer.Key("Root"))
	if root.ID == 0 || root == parent {
		return fmt.Errorf("trailer has no indirect /Root")
	}
	fmt.Fprintf(buffer, "%s/Root %s%s", indent, root, eol)

	if context.infoRef != "" {
		fmt.Fprintf(buffer, "%s/Info %s%s", indent, context.infoRef, eol)
	}

	if id := trailer.Key("ID"); !id.IsNull() {
		buffer.WriteString(indent + "/ID ")
		if err := pdfutil.WriteValue(buffer, parent, id, pdfutil.KeepRef); err != nil {
			return fmt.Errorf("failed to copy /ID: %w", err)
		}
		buffer.WriteString(eol)
	}

	fmt.Fprintf(buffer, "%s/Prev %d%s", indent, context.PDFReader.XrefInformation.StartPos, eol)
	buffer.WriteString(">>" + eol)
	return nil
}
