// Package locale holds the month abbreviation tables used to format the
// certification date.
package locale

import (
	"fmt"
	"strings"
)

// Months maps two-digit month codes ("01".."12") to their abbreviation.
type Months map[string]string

// Spanish is the default table.
var Spanish = Months{
	"01": "Ene", "02": "Feb", "03": "Mar", "04": "Abr",
	"05": "May", "06": "Jun", "07": "Jul", "08": "Ago",
	"09": "Sep", "10": "Oct", "11": "Nov", "12": "Dic",
}

// English month abbreviations.
var English = Months{
	"01": "Jan", "02": "Feb", "03": "Mar", "04": "Apr",
	"05": "May", "06": "Jun", "07": "Jul", "08": "Aug",
	"09": "Sep", "10": "Oct", "11": "Nov", "12": "Dec",
}

var tables = map[string]Months{
	"es": Spanish,
	"en": English,
}

// Lookup returns the table registered for a language code such as "es".
func Lookup(lang string) (Months, error) {
	m, ok := tables[strings.ToLower(strings.TrimSpace(lang))]
	if !ok {
		return nil, fmt.Errorf("unknown locale %q", lang)
	}
	return m, nil
}

// Abbreviate returns the abbreviation for code, or code itself when the
// table has no entry for it.
func (m Months) Abbreviate(code string) string {
	if abbr, ok := m[code]; ok {
		return abbr
	}
	return code
}

// Style selects how dates are rendered.
type Style int

const (
	// StyleAbbreviated renders DD/Mon/YYYY.
	StyleAbbreviated Style = iota
	// StyleISO renders YYYY-MM-DD.
	StyleISO
)

// ParseStyle parses "abbreviated" or "iso". An empty string selects the default.
func ParseStyle(s string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "abbreviated":
		return StyleAbbreviated, nil
	case "iso":
		return StyleISO, nil
	default:
		return 0, fmt.Errorf("invalid date style %q", s)
	}
}

func (s Style) String() string {
	switch s {
	case StyleAbbreviated:
		return "abbreviated"
	case StyleISO:
		return "iso"
	default:
		return fmt.Sprintf("Style(%d)", int(s))
	}
}
