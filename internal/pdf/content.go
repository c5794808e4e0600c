package pdf

import (
	"bytes"
	"fmt"
	"io"

	pdflib "github.com/digitorus/pdf"
)

// PageContent returns the decoded content of a page. Pages with several
// content streams are joined with a newline.
func PageContent(page pdflib.Value) ([]byte, error) {
	contents := page.Key("Contents")
	if contents.IsNull() {
		return nil, nil
	}

	var buf bytes.Buffer
	if contents.Kind() == pdflib.Array {
		for i := 0; i < contents.Len(); i++ {
			if err := copyStream(&buf, contents.Index(i)); err != nil {
				return nil, err
			}
			buf.WriteString("\n")
		}
		return buf.Bytes(), nil
	}

	if err := copyStream(&buf, contents); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func copyStream(w io.Writer, stream pdflib.Value) error {
	if stream.Kind() != pdflib.Stream {
		return fmt.Errorf("content of kind %v is not a stream", stream.Kind())
	}
	rc := stream.Reader()
	if rc == nil {
		return fmt.Errorf("content stream has no reader")
	}
	defer func() {
		_ = rc.Close()
	}()
	if _, err := io.Copy(w, rc); err != nil {
		return fmt.Errorf("failed to copy content stream: %w", err)
	}
	return nil
}
