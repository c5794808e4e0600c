package pdfcertify

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/digitorus/pdfcertify/locale"
)

// FormatDate renders t as DD/Mon/YYYY using months to abbreviate the
// two-digit month code. A code missing from months is printed as is.
func FormatDate(t time.Time, months locale.Months) string {
	code := fmt.Sprintf("%02d", int(t.Month()))
	return fmt.Sprintf("%02d/%s/%04d", t.Day(), months.Abbreviate(code), t.Year())
}

// FormatDateStyle renders t in the given style.
func FormatDateStyle(t time.Time, months locale.Months, style locale.Style) string {
	if style == locale.StyleISO {
		return t.Format("2006-01-02")
	}
	return FormatDate(t, months)
}

// OutputName derives the name of the output document from the input name: a
// trailing ".pdf" (any case) is removed and suffix plus ".pdf" appended. An
// empty suffix selects DefaultSuffix.
func OutputName(name, suffix string) string {
	if suffix == "" {
		suffix = DefaultSuffix
	}
	ext := filepath.Ext(name)
	if strings.EqualFold(ext, ".pdf") {
		name = strings.TrimSuffix(name, ext)
	}
	return name + suffix + ".pdf"
}

// pageCountText returns the trimmed text, or the decimal page count when it is blank.
func pageCountText(text string, pages int) string {
	if t := strings.TrimSpace(text); t != "" {
		return t
	}
	return fmt.Sprintf("%d", pages)
}
