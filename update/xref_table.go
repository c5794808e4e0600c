package update

import (
	"fmt"
)

// writeIncrXrefTable writes the incremental cross-reference table to the output buffer.
func (context *Context) writeIncrXrefTable() error {
	// Write xref header
	if _, err := context.OutputBuffer.Write([]byte("xref\n")); err != nil {
		return fmt.Errorf("failed to write incremental xref header: %w", err)
	}

	for _, run := range subsections(context.sortedEntries()) {
		// Write xref subsection header
		header := fmt.Sprintf("%d %d\n", run[0].ID, len(run))
		if _, err := context.OutputBuffer.Write([]byte(header)); err != nil {
			return fmt.Errorf("failed to write xref subsection header: %w", err)
		}

		for _, entry := range run {
			// Each entry is exactly 20 bytes including the two byte EOL.
			xrefLine := fmt.Sprintf("%010d %05d n\r\n", entry.Offset, entry.Gen)
			if _, err := context.OutputBuffer.Write([]byte(xrefLine)); err != nil {
				return fmt.Errorf("failed to write incremental xref entry: %w", err)
			}
		}
	}

	return nil
}
