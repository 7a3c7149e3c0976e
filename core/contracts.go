package core

import (
	"strings"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

// Task is a task-directory entry. Identity is ID; the record is owned by the
// remote directory and read-only to the relay.
type Task struct {
	ID   string
	Name string
}

// Attachment belongs to exactly one task. Only the URL fields participate in
// conversation resolution; either may be empty.
type Attachment struct {
	ID              string
	Name            string
	ResourceType    string
	ResourceSubtype string
	URL             string
	ViewURL         string
	Host            string
}

// ResolvedTask is the ephemeral result of matching a conversation to a task.
// It carries the evidence used to establish the match and is never persisted.
type ResolvedTask struct {
	TaskID          string
	TaskName        string
	AttachmentID    string
	ConversationURL string
}

func (t ResolvedTask) Map() map[string]any {
	return map[string]any{
		"gid":              strings.TrimSpace(t.TaskID),
		"name":             t.TaskName,
		"attachment_gid":   strings.TrimSpace(t.AttachmentID),
		"conversation_url": strings.TrimSpace(t.ConversationURL),
	}
}

// InboundEvent is the minimal projection the pipeline needs from an inbound
// webhook payload. Empty fields are a valid, expected state.
type InboundEvent struct {
	ConversationID string
	AuthorEmail    string
}

// TaskDetail is the expanded single-task fetch used by the introspection
// surface, not by the resolution path.
type TaskDetail struct {
	ID        string
	Name      string
	Notes     string
	Completed bool
	Assignee  string
	DueOn     string
	Projects  []string
}

// UserInfo identifies the directory account behind the configured credential.
type UserInfo struct {
	ID    string
	Name  string
	Email string
}

// TransportRequest is the outbound-call shape handed to a transport adapter.
type TransportRequest struct {
	Method   string
	URL      string
	Headers  map[string]string
	Query    map[string]string
	Body     []byte
	Metadata map[string]any
	Timeout  time.Duration
}

// TransportResponse is the tagged success side of an outbound call. Failure
// is the adapter's returned error; callers decide how to degrade.
type TransportResponse struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
	Metadata   map[string]any
}

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

// DeliveryEntry is one processed webhook outcome, recorded for the debug
// surface. The resolution path never reads these back.
type DeliveryEntry struct {
	ID             string
	ConversationID string
	Status         string
	TaskID         string
	CreatedAt      time.Time
}
