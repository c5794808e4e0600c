package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/digitorus/pdfcertify"
	urfave "github.com/urfave/cli/v3"
)

func infoCommand() *urfave.Command {
	return &urfave.Command{
		Name:      "info",
		Usage:     "show the page count, last page size, metadata and fonts of a PDF",
		ArgsUsage: "<input.pdf>",
		Action:    infoAction,
	}
}

func infoAction(_ context.Context, cmd *urfave.Command) error {
	if cmd.NArg() < 1 {
		return fmt.Errorf("missing input file, usage: %s info %s", cmd.Root().Name, cmd.ArgsUsage)
	}

	doc, err := pdfcertify.OpenFile(cmd.Args().Get(0))
	if err != nil {
		return userErr(err)
	}

	size := doc.LastPageSize()
	w := tabwriter.NewWriter(cmd.Root().Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Pages:\t%d\n", doc.NumPage())
	fmt.Fprintf(w, "Last page:\t%g x %g pt\n", size.Width, size.Height)
	fmt.Fprintf(w, "Xref:\t%s\n", doc.XrefType())

	meta := doc.Metadata()
	for _, key := range doc.MetadataKeys() {
		fmt.Fprintf(w, "%s:\t%s\n", key, meta[key])
	}
	for _, f := range doc.Fonts() {
		embedded := ""
		if f.Embedded {
			embedded = " (embedded)"
		}
		fmt.Fprintf(w, "Font:\t%s %s%s\n", f.Name, f.Subtype, embedded)
	}
	return w.Flush()
}
