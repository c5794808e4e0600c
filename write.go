package pdfcertify

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	pdflib "github.com/digitorus/pdf"
	"go.uber.org/zap"

	pdfutil "github.com/digitorus/pdfcertify/internal/pdf"
	"github.com/digitorus/pdfcertify/internal/render"
	"github.com/digitorus/pdfcertify/update"
)

// ErrNothingStaged is returned by Write when Certify was never called.
var ErrNothingStaged = errors.New("no certification page staged")

// Write renders the staged certification page, appends it to the document and
// writes the result to output. The output starts with the unmodified source
// document followed by an incremental update.
//
// Failures while rendering or merging are returned as *RenderError and
// nothing is written to output. A failure to copy the document metadata is
// not fatal; it is logged and reported in Result.Warnings.
func (d *Document) Write(output io.Writer) (result *Result, err error) {
	cb := d.pending
	if cb == nil {
		return nil, ErrNothingStaged
	}

	stage := "render"
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("certification panicked", zap.String("stage", stage), zap.Any("panic", r))
			result, err = nil, &RenderError{Stage: stage, Err: fmt.Errorf("%v", r)}
		}
	}()

	size := d.LastPageSize()
	page := cb.page(size)

	rendered, err := render.CertificationPage(page)
	if err != nil {
		return nil, &RenderError{Stage: stage, Err: err}
	}
	for _, line := range rendered.Overflow {
		d.logger.Debug("line wider than page", zap.String("line", line), zap.Float64("width", size.Width))
	}

	src, err := pdflib.NewReader(bytes.NewReader(rendered.PDF), int64(len(rendered.PDF)))
	if err != nil {
		return nil, &RenderError{Stage: stage, Err: fmt.Errorf("failed to read rendered page: %w", err)}
	}
	srcPages, err := pdfutil.Pages(src)
	if err != nil {
		return nil, &RenderError{Stage: stage, Err: err}
	}
	if len(srcPages) != 1 {
		return nil, &RenderError{Stage: stage, Err: fmt.Errorf("rendered %d pages, expected 1", len(srcPages))}
	}

	stage = "merge"
	context, err := update.NewContext(io.NewSectionReader(d.reader, 0, d.size), d.rdr)
	if err != nil {
		return nil, &RenderError{Stage: stage, Err: err}
	}

	if err := d.appendPage(context, srcPages[0], size); err != nil {
		return nil, &RenderError{Stage: stage, Err: err}
	}

	result = &Result{
		Pages:    d.NumPage() + 1,
		PageSize: size,
		Overflow: rendered.Overflow,
	}
	result.Lines = append(result.Lines, page.Title)
	for _, line := range page.Lines {
		result.Lines = append(result.Lines, line.Text())
	}

	if err := d.copyInfo(context); err != nil {
		// Losing metadata is acceptable, losing the document is not.
		warning := &MetadataCopyError{Err: err}
		d.logger.Warn("metadata not copied", zap.Error(err))
		result.Warnings = append(result.Warnings, warning)
		context.SetInfo("")
	}

	var out bytes.Buffer
	if err := context.Finish(&out); err != nil {
		return nil, &RenderError{Stage: stage, Err: err}
	}
	if _, err := output.Write(out.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to write output: %w", err)
	}

	d.logger.Info("certification page appended",
		zap.Int("pages", result.Pages),
		zap.Float64("width", size.Width),
		zap.Float64("height", size.Height),
		zap.Int("bytes", out.Len()))
	return result, nil
}

// appendPage imports the rendered page into the update and links it as the
// last kid of the page tree root.
func (d *Document) appendPage(context *update.Context, rendered pdflib.Value, size Size) error {
	tree, err := pdfutil.PageTree(d.rdr)
	if err != nil {
		return err
	}
	treeRef := pdfutil.RefOf(tree)
	catalogRef := pdfutil.RefOf(d.rdr.Trailer().Key("Root"))
	if treeRef.ID == 0 || treeRef == catalogRef {
		return fmt.Errorf("page tree root is not an indirect object")
	}

	importer := pdfutil.NewImporter(context)
	pageID := context.ReserveObject()

	resources, err := importer.Import(rendered, "Resources")
	if err != nil {
		return fmt.Errorf("failed to import page resources: %w", err)
	}
	contents, err := importer.Import(rendered, "Contents")
	if err != nil {
		return fmt.Errorf("failed to import page contents: %w", err)
	}

	var page bytes.Buffer
	page.WriteString("<< /Type /Page")
	fmt.Fprintf(&page, " /Parent %s", treeRef)
	w, h := pdfutil.FormatReal(size.Width), pdfutil.FormatReal(size.Height)
	fmt.Fprintf(&page, " /MediaBox [0 0 %s %s]", w, h)
	// CropBox and Rotate are inheritable; pin them so the root's values
	// never apply to the new page.
	fmt.Fprintf(&page, " /CropBox [0 0 %s %s] /Rotate 0", w, h)
	fmt.Fprintf(&page, " /Resources %s", resources)
	fmt.Fprintf(&page, " /Contents %s", contents)
	page.WriteString(" >>")
	if err := context.WriteObject(pageID, page.Bytes()); err != nil {
		return err
	}

	var root bytes.Buffer
	if err := pdfutil.WriteDict(&root, treeRef, tree, pdfutil.KeepRef, map[string]bool{"Kids": true, "Count": true}); err != nil {
		return fmt.Errorf("failed to copy page tree root: %w", err)
	}
	// Replace the closing ">>" with the new kids and count.
	root.Truncate(root.Len() - 2)
	root.WriteString("/Kids [")
	kids := tree.Key("Kids")
	for i := 0; i < kids.Len(); i++ {
		if err := pdfutil.WriteValue(&root, treeRef, kids.Index(i), pdfutil.KeepRef); err != nil {
			return fmt.Errorf("failed to copy page tree kids: %w", err)
		}
		root.WriteString(" ")
	}
	fmt.Fprintf(&root, "%d 0 R] /Count %d >>", pageID, d.NumPage()+1)

	if err := context.UpdateObject(treeRef.ID, treeRef.Gen, root.Bytes()); err != nil {
		return err
	}

	d.logger.Debug("page appended",
		zap.Uint32("page", pageID),
		zap.Uint32("parent", treeRef.ID),
		zap.Int("imported", importer.Objects()))
	return nil
}

// copyInfo copies the document information dictionary into a new object
// referenced from the new trailer.
func (d *Document) copyInfo(context *update.Context) error {
	info := d.rdr.Trailer().Key("Info")
	switch info.Kind() {
	case pdflib.Null:
		return nil
	case pdflib.Dict:
	default:
		return fmt.Errorf("information dictionary has unexpected type")
	}

	var body bytes.Buffer
	if err := pdfutil.WriteDict(&body, pdfutil.RefOf(info), info, pdfutil.KeepRef, nil); err != nil {
		return err
	}
	id, err := context.AddObject(body.Bytes())
	if err != nil {
		return err
	}
	context.SetInfo(pdfutil.Ref{ID: id}.String())
	return nil
}

// Append is a convenience wrapper that opens input, appends a certification
// page with the given fields and returns the new document.
func Append(input []byte, fields Fields, opts ...Option) ([]byte, *Result, error) {
	doc, err := OpenBytes(input, opts...)
	if err != nil {
		return nil, nil, err
	}
	doc.Certify().Fields(fields)

	var out bytes.Buffer
	result, err := doc.Write(&out)
	if err != nil {
		return nil, nil, err
	}
	return out.Bytes(), result, nil
}
