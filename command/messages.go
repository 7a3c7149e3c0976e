package command

import (
	"fmt"
	"strings"
)

const (
	TypeMoveTask        = "relay.command.task.move"
	TypeProcessDelivery = "relay.command.delivery.process"
)

type MoveTaskMessage struct {
	TaskID         string
	ConversationID string
}

func (MoveTaskMessage) Type() string { return TypeMoveTask }

func (m MoveTaskMessage) Validate() error {
	if strings.TrimSpace(m.TaskID) == "" {
		return fmt.Errorf("command: task id is required")
	}
	return nil
}

// ProcessDeliveryMessage carries one raw webhook body through the pipeline.
type ProcessDeliveryMessage struct {
	Body []byte
}

func (ProcessDeliveryMessage) Type() string { return TypeProcessDelivery }

func (m ProcessDeliveryMessage) Validate() error {
	if len(m.Body) == 0 {
		return fmt.Errorf("command: delivery body is required")
	}
	return nil
}
