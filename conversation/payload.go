package conversation

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/goliatone/go-conversation-relay/core"
)

// ProjectEvent walks an inbound webhook payload and projects the two fields
// the pipeline cares about. Every step is nil-safe: a payload missing any
// part of the path yields empty fields, never a panic.
func ProjectEvent(payload map[string]any) core.InboundEvent {
	item := childMap(childMap(payload, "data"), "item")
	return core.InboundEvent{
		ConversationID: readString(item, "id"),
		AuthorEmail:    lastPartAuthorEmail(item),
	}
}

// lastPartAuthorEmail digs data.item.conversation_parts.conversation_parts
// and returns the author email of the newest part, mirroring the inbox
// payload shape where the triggering reply is the last element.
func lastPartAuthorEmail(item map[string]any) string {
	parts, ok := childMap(item, "conversation_parts")["conversation_parts"].([]any)
	if !ok || len(parts) == 0 {
		return ""
	}
	last, ok := parts[len(parts)-1].(map[string]any)
	if !ok {
		return ""
	}
	return readString(childMap(last, "author"), "email")
}

func childMap(parent map[string]any, key string) map[string]any {
	if parent == nil {
		return nil
	}
	child, ok := parent[key].(map[string]any)
	if !ok {
		return nil
	}
	return child
}

// readString coerces string-ish payload values. Inbox payloads carry numeric
// ids as JSON numbers; those come back as their digit string.
func readString(values map[string]any, key string) string {
	if values == nil {
		return ""
	}
	switch value := values[key].(type) {
	case string:
		return strings.TrimSpace(value)
	case json.Number:
		return value.String()
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case int:
		return strconv.Itoa(value)
	case int64:
		return strconv.FormatInt(value, 10)
	default:
		return ""
	}
}
