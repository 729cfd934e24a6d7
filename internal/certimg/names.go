package certimg

import "strings"

// NoName stands in for a missing or blank Name value.
const NoName = "no_name"

// SafeName joins the whitespace-separated tokens of name with underscores.
// Path separators are replaced so the result is always a single path element.
func SafeName(name string) string {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return NoName
	}
	s := strings.Join(parts, "_")
	return strings.NewReplacer("/", "_", `\`, "_").Replace(s)
}

// FileName returns the output file name for a recipient.
func FileName(name string) string {
	return "certificate_" + SafeName(name) + ".png"
}

// AnchorX maps a configured X onto a canvas of the given width. Negative
// values are offsets from the right edge.
func AnchorX(x, width int) int {
	if x < 0 {
		return width + x
	}
	return x
}
