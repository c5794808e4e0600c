package render

import (
	"regexp"
	"strings"
)

var templateVarRegex = regexp.MustCompile(`\{\{(\w+)\}\}`)

// TemplateContext contains values for template variable substitution in the
// configured title.
type TemplateContext struct {
	Signer string
	Date   string
	Pages  string
}

// ExpandTemplateVariables replaces template variables in text with values from context.
//
// Supported variables:
//   - {{Signer}} - Signer name
//   - {{Date}} - Formatted certification date
//   - {{Pages}} - Declared page count
//   - {{Initials}} - Initials derived from the signer name
func ExpandTemplateVariables(text string, ctx TemplateContext) string {
	return templateVarRegex.ReplaceAllStringFunc(text, func(match string) string {
		switch match[2 : len(match)-2] {
		case "Signer":
			return ctx.Signer
		case "Date":
			return ctx.Date
		case "Pages":
			return ctx.Pages
		case "Initials":
			return ExtractInitials(ctx.Signer)
		default:
			return match
		}
	})
}

// ExtractInitials extracts initials from a name.
// "María José Pérez" -> "MJP"
func ExtractInitials(name string) string {
	var initials strings.Builder
	for _, part := range strings.Fields(name) {
		for _, r := range part {
			initials.WriteRune(r)
			break
		}
	}
	return strings.ToUpper(initials.String())
}
