package pdf

import (
	"bytes"
	"regexp"

	pdflib "github.com/digitorus/pdf"
)

var (
	// encryptEntry matches an /Encrypt entry, either as a reference or as a
	// direct dictionary.
	encryptEntry = regexp.MustCompile(`/Encrypt\s*(\d+\s+\d+\s+R|<<)`)
	xrefType     = regexp.MustCompile(`/Type\s*/XRef\b`)

	trailerStart = regexp.MustCompile(`trailer\s*<<`)
	objectStart  = regexp.MustCompile(`\d+\s+\d+\s+obj\s*<<`)
)

// headerWindow is how far into the file the %PDF- header may start.
const headerWindow = 1024

// IsEncrypted reports whether the parsed document carries an /Encrypt dictionary.
// The reader may have opened it transparently with an empty user password.
func IsEncrypted(r *pdflib.Reader) bool {
	if r == nil {
		return false
	}
	return !r.Trailer().Key("Encrypt").IsNull()
}

// LooksEncrypted inspects raw bytes that failed to parse for an /Encrypt
// entry. Only data with a PDF header and a startxref keyword qualifies, and
// the entry must sit in a trailer or cross-reference stream dictionary.
func LooksEncrypted(data []byte) bool {
	head := data
	if len(head) > headerWindow {
		head = head[:headerWindow]
	}
	if !bytes.Contains(head, []byte("%PDF-")) || !bytes.Contains(data, []byte("startxref")) {
		return false
	}

	for _, loc := range trailerStart.FindAllIndex(data, -1) {
		if encryptEntry.Match(dictionary(data, loc[1]-2)) {
			return true
		}
	}
	for _, loc := range objectStart.FindAllIndex(data, -1) {
		dict := dictionary(data, loc[1]-2)
		if xrefType.Match(dict) && encryptEntry.Match(dict) {
			return true
		}
	}
	return false
}

// dictionary returns the dictionary starting at the "<<" at start, up to its
// matching ">>" or the end of data.
func dictionary(data []byte, start int) []byte {
	depth := 0
	for i := start; i+1 < len(data); i++ {
		switch {
		case data[i] == '<' && data[i+1] == '<':
			depth++
			i++
		case data[i] == '>' && data[i+1] == '>':
			depth--
			i++
			if depth == 0 {
				return data[start : i+1]
			}
		}
	}
	return data[start:]
}
