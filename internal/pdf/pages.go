package pdf

import (
	"errors"
	"fmt"
	"math"

	pdflib "github.com/digitorus/pdf"
)

// maxTreeDepth bounds page tree recursion on malformed files.
const maxTreeDepth = 64

// ErrNoPageTree is returned when the catalog has no /Pages entry.
var ErrNoPageTree = errors.New("document catalog has no page tree")

// PageTree returns the root /Pages node of the document catalog.
func PageTree(r *pdflib.Reader) (pdflib.Value, error) {
	if r == nil {
		return pdflib.Value{}, fmt.Errorf("no reader available")
	}
	pages := r.Trailer().Key("Root").Key("Pages")
	if pages.Kind() != pdflib.Dict {
		return pdflib.Value{}, ErrNoPageTree
	}
	return pages, nil
}

// Pages returns the leaf /Page nodes in document order.
func Pages(r *pdflib.Reader) ([]pdflib.Value, error) {
	root, err := PageTree(r)
	if err != nil {
		return nil, err
	}
	var pages []pdflib.Value
	visited := make(map[uint32]bool)
	if err := collectPages(root, 0, visited, &pages); err != nil {
		return nil, err
	}
	return pages, nil
}

func collectPages(node pdflib.Value, depth int, visited map[uint32]bool, pages *[]pdflib.Value) error {
	if depth > maxTreeDepth {
		return fmt.Errorf("page tree deeper than %d levels", maxTreeDepth)
	}

	ptr := node.GetPtr()
	if id := ptr.GetID(); id != 0 {
		if visited[id] {
			return fmt.Errorf("page tree cycle at object %d", id)
		}
		visited[id] = true
	}

	switch node.Key("Type").Name() {
	case "Page":
		*pages = append(*pages, node)
		return nil
	case "Pages":
	default:
		// Some writers omit /Type on intermediate nodes.
		if node.Key("Kids").Kind() != pdflib.Array {
			*pages = append(*pages, node)
			return nil
		}
	}

	kids := node.Key("Kids")
	if kids.Kind() != pdflib.Array {
		return nil
	}
	for i := 0; i < kids.Len(); i++ {
		if err := collectPages(kids.Index(i), depth+1, visited, pages); err != nil {
			return err
		}
	}
	return nil
}

// MediaBox returns the media box of a page, following /Parent links for the
// inherited attribute. ok is false when no usable box is found.
func MediaBox(page pdflib.Value) (box [4]float64, ok bool) {
	node := page
	for depth := 0; depth <= maxTreeDepth && !node.IsNull(); depth++ {
		mb := node.Key("MediaBox")
		if mb.Kind() == pdflib.Array && mb.Len() >= 4 {
			for i := 0; i < 4; i++ {
				v := mb.Index(i)
				if v.Kind() != pdflib.Integer && v.Kind() != pdflib.Real {
					return box, false
				}
				box[i] = v.Float64()
			}
			return box, true
		}
		node = node.Key("Parent")
	}
	return box, false
}

// PageSize returns the width and height of a page's media box. ok is false
// when the box is missing, malformed or degenerate.
func PageSize(page pdflib.Value) (width, height float64, ok bool) {
	box, ok := MediaBox(page)
	if !ok {
		return 0, 0, false
	}
	width = math.Abs(box[2] - box[0])
	height = math.Abs(box[3] - box[1])
	if width <= 0 || height <= 0 || math.IsNaN(width) || math.IsNaN(height) ||
		math.IsInf(width, 0) || math.IsInf(height, 0) {
		return 0, 0, false
	}
	return width, height, true
}
