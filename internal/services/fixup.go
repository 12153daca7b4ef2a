package services

import "strings"

const (
	fenceMarker       = "```"
	responseSeparator = "\n\n---\n"
)

// FixupResponse balances markdown code fences and appends the trailing
// separator the panel uses to divide exchanges. Single pass: an odd number of
// fence markers gets one closing fence on a new line, then the separator is
// appended unconditionally. Call exactly once per response; the separator is
// not idempotent.
func FixupResponse(text string) string {
	if strings.Count(text, fenceMarker)%2 != 0 {
		text += "\n" + fenceMarker
	}
	return text + responseSeparator
}
