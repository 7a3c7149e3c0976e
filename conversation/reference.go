// Package conversation extracts conversation references from attachment URLs
// and projects inbound webhook payloads into the minimal event shape the
// processing pipeline consumes.
package conversation

import (
	"regexp"
	"strings"
)

// referencePattern matches the numeric conversation segment of an inbox URL,
// e.g. https://app.intercom.com/.../conversation/4107. Only the first match
// counts; trailing path segments and query strings are ignored.
var referencePattern = regexp.MustCompile(`/conversation/(\d+)`)

// ExtractReference returns the conversation id embedded in url, if any.
// Extraction is pure: the same input always yields the same result.
func ExtractReference(url string) (string, bool) {
	trimmed := strings.TrimSpace(url)
	if trimmed == "" {
		return "", false
	}
	match := referencePattern.FindStringSubmatch(trimmed)
	if match == nil {
		return "", false
	}
	return match[1], true
}

// MatchesConversation reports whether url references conversationID. An empty
// conversation id never matches anything.
func MatchesConversation(url, conversationID string) bool {
	wanted := strings.TrimSpace(conversationID)
	if wanted == "" {
		return false
	}
	extracted, ok := ExtractReference(url)
	return ok && extracted == wanted
}
