package command

import (
	"context"
	"strings"

	gocmd "github.com/goliatone/go-command"

	"github.com/goliatone/go-conversation-relay/webhooks"
)

// MoverService is the mutation slice of the directory client.
type MoverService interface {
	MoveTask(ctx context.Context, taskID string) bool
}

// DeliveryProcessor runs one webhook delivery through the pipeline.
type DeliveryProcessor interface {
	Process(ctx context.Context, body []byte) webhooks.Outcome
}

// MoveTaskResult reports the section move for one task.
type MoveTaskResult struct {
	TaskID         string
	ConversationID string
	Moved          bool
}

type MoveTaskCommand struct {
	service MoverService
}

func NewMoveTaskCommand(service MoverService) *MoveTaskCommand {
	return &MoveTaskCommand{service: service}
}

func (c *MoveTaskCommand) Execute(ctx context.Context, msg MoveTaskMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: task mover is required")
	}
	moved := c.service.MoveTask(ctx, msg.TaskID)
	if !moved {
		return commandMoveFailedError(msg.TaskID, msg.ConversationID)
	}
	storeResult(ctx, MoveTaskResult{
		TaskID:         strings.TrimSpace(msg.TaskID),
		ConversationID: strings.TrimSpace(msg.ConversationID),
		Moved:          true,
	})
	return nil
}

type ProcessDeliveryCommand struct {
	processor DeliveryProcessor
}

func NewProcessDeliveryCommand(processor DeliveryProcessor) *ProcessDeliveryCommand {
	return &ProcessDeliveryCommand{processor: processor}
}

// Execute always succeeds when the pipeline runs: terminal states, including
// the failure-shaped ones, are results, not errors.
func (c *ProcessDeliveryCommand) Execute(ctx context.Context, msg ProcessDeliveryMessage) error {
	if c == nil || c.processor == nil {
		return commandDependencyError("command: delivery processor is required")
	}
	outcome := c.processor.Process(ctx, msg.Body)
	storeResult(ctx, outcome)
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
