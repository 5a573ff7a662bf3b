package extractor

import (
	"regexp"
	"strings"
)

const fence = "```"

// A fence may carry a language tag on its own line ("```json\n", "``` json\n")
// or glued to the payload ("```json{...").
var fenceTag = regexp.MustCompile(`^(?:[ \t]*[A-Za-z0-9_+-]*[ \t]*\r?\n|[ \t]*(?i:json))`)

// Sanitize removes a markdown code fence wrapped around a model reply.
// It strips until nothing changes, so Sanitize(Sanitize(s)) == Sanitize(s).
func Sanitize(s string) string {
	for {
		next := stripFence(s)
		if next == s {
			return next
		}
		s = next
	}
}

func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, fence) {
		s = strings.TrimPrefix(s, fence)
		s = fenceTag.ReplaceAllString(s, "")
	}
	if strings.HasSuffix(s, fence) {
		s = strings.TrimSuffix(s, fence)
	}
	return strings.TrimSpace(s)
}
