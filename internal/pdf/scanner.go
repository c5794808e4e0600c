package pdf

import (
	"sort"

	pdflib "github.com/digitorus/pdf"
)

// FontInfo describes a font resource used by the document.
type FontInfo struct {
	Name     string
	ID       uint32
	Subtype  string
	Embedded bool
}

// ScanFonts lists the distinct font resources referenced by pages, ordered
// by name. Inherited /Resources are honoured.
func ScanFonts(pages []pdflib.Value) []FontInfo {
	var found []FontInfo
	visited := make(map[Ref]bool)

	for _, page := range pages {
		fonts := inheritedKey(page, "Resources").Key("Font")
		if fonts.Kind() != pdflib.Dict {
			continue
		}
		for _, name := range fonts.Keys() {
			font := fonts.Key(name)
			ref := RefOf(font)
			if ref == RefOf(fonts) || visited[ref] {
				continue
			}
			visited[ref] = true

			base := font.Key("BaseFont")
			if base.Kind() != pdflib.Name {
				continue
			}
			found = append(found, FontInfo{
				Name:     base.Name(),
				ID:       ref.ID,
				Subtype:  font.Key("Subtype").Name(),
				Embedded: isEmbedded(font),
			})
		}
	}

	sort.Slice(found, func(i, j int) bool { return found[i].Name < found[j].Name })
	return found
}

func isEmbedded(font pdflib.Value) bool {
	desc := font.Key("FontDescriptor")
	if desc.IsNull() {
		// Type0 fonts carry the descriptor on the descendant.
		if df := font.Key("DescendantFonts"); df.Kind() == pdflib.Array && df.Len() > 0 {
			desc = df.Index(0).Key("FontDescriptor")
		}
	}
	for _, key := range []string{"FontFile", "FontFile2", "FontFile3"} {
		if !desc.Key(key).IsNull() {
			return true
		}
	}
	return false
}

// inheritedKey looks up an inheritable page attribute.
func inheritedKey(page pdflib.Value, key string) pdflib.Value {
	node := page
	for depth := 0; depth <= maxTreeDepth && !node.IsNull(); depth++ {
		if v := node.Key(key); !v.IsNull() {
			return v
		}
		node = node.Key("Parent")
	}
	return pdflib.Value{}
}
