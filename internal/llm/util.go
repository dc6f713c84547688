package llm

import "strings"

// CleanLine strips common generation artifacts from a one-line completion:
// surrounding quotes, markdown emphasis, and a trailing period. Models add
// these even when told not to.
func CleanLine(text string) string {
	text = strings.TrimSpace(text)
	text = strings.Trim(text, "\"'")
	text = strings.Trim(text, "*_")
	text = strings.TrimSuffix(text, ".")
	return strings.TrimSpace(text)
}
