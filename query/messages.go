package query

import (
	"fmt"
	"strings"
)

const (
	TypeResolveTask      = "relay.query.task.resolve"
	TypeGetTaskDetails   = "relay.query.task.details"
	TypeCurrentUser      = "relay.query.user.current"
	TypeRecentDeliveries = "relay.query.deliveries.recent"
)

type ResolveTaskMessage struct {
	ConversationID string
}

func (ResolveTaskMessage) Type() string { return TypeResolveTask }

func (m ResolveTaskMessage) Validate() error {
	if strings.TrimSpace(m.ConversationID) == "" {
		return fmt.Errorf("query: conversation id is required")
	}
	return nil
}

type GetTaskDetailsMessage struct {
	TaskID string
}

func (GetTaskDetailsMessage) Type() string { return TypeGetTaskDetails }

func (m GetTaskDetailsMessage) Validate() error {
	if strings.TrimSpace(m.TaskID) == "" {
		return fmt.Errorf("query: task id is required")
	}
	return nil
}

type CurrentUserMessage struct{}

func (CurrentUserMessage) Type() string { return TypeCurrentUser }

func (CurrentUserMessage) Validate() error { return nil }

type RecentDeliveriesMessage struct {
	Limit int
}

func (RecentDeliveriesMessage) Type() string { return TypeRecentDeliveries }

func (m RecentDeliveriesMessage) Validate() error {
	if m.Limit < 0 {
		return fmt.Errorf("query: limit must not be negative")
	}
	return nil
}
