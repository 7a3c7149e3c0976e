package webhooks

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-conversation-relay/conversation"
	"github.com/goliatone/go-conversation-relay/core"
	"github.com/goliatone/go-conversation-relay/resolver"
)

// Terminal states, reached in pipeline order. Each inbound delivery ends in
// exactly one.
const (
	TerminalInvalidPayload        = "invalid_payload"
	TerminalSkipped               = "skipped"
	TerminalMissingConversationID = "missing_conversation_id"
	TerminalClientUnavailable     = "client_unavailable"
	TerminalTaskNotFound          = "task_not_found"
	TerminalMoveFailed            = "move_failed"
	TerminalSuccess               = "success"
)

// TaskResolver matches a conversation to a task.
type TaskResolver interface {
	Resolve(ctx context.Context, conversationID string) (core.ResolvedTask, error)
}

// TaskMover moves a task into the configured target section.
type TaskMover interface {
	MoveTask(ctx context.Context, taskID string) bool
}

// DeliveryRecorder persists a processed-delivery audit entry. Recording is
// best effort; the pipeline never fails because the ledger did.
type DeliveryRecorder interface {
	Record(ctx context.Context, entry core.DeliveryEntry) error
}

// Outcome is one terminal state plus the fixed response contract it carries.
type Outcome struct {
	Terminal   string
	StatusCode int
	Body       map[string]any
}

// Processor runs the webhook pipeline: parse, filter, validate, resolve,
// mutate. A single pass, single attempt per step; the sender redelivers on
// failure.
type Processor struct {
	resolver   TaskResolver
	mover      TaskMover
	exclusions ExclusionSet
	logger     core.Logger
	recorder   DeliveryRecorder
	metrics    core.MetricsRecorder
}

type ProcessorOption func(*Processor)

func WithLogger(logger core.Logger) ProcessorOption {
	return func(p *Processor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func WithDeliveryRecorder(recorder DeliveryRecorder) ProcessorOption {
	return func(p *Processor) {
		p.recorder = recorder
	}
}

func WithMetrics(metrics core.MetricsRecorder) ProcessorOption {
	return func(p *Processor) {
		if metrics != nil {
			p.metrics = metrics
		}
	}
}

// NewProcessor builds the pipeline. A nil resolver or mover is a valid
// degraded state: deliveries then terminate at client_unavailable, matching
// a process that booted without directory credentials.
func NewProcessor(taskResolver TaskResolver, mover TaskMover, exclusions ExclusionSet, options ...ProcessorOption) *Processor {
	processor := &Processor{
		resolver:   taskResolver,
		mover:      mover,
		exclusions: exclusions,
		logger:     glog.Nop(),
		metrics:    core.NopMetricsRecorder{},
	}
	for _, option := range options {
		option(processor)
	}
	return processor
}

// Process runs one delivery through the pipeline and returns its terminal
// outcome.
func (p *Processor) Process(ctx context.Context, body []byte) Outcome {
	if ctx == nil {
		ctx = context.Background()
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil || payload == nil {
		p.logger.Warn("webhook payload rejected", "error", err)
		return p.finish(ctx, Outcome{
			Terminal:   TerminalInvalidPayload,
			StatusCode: http.StatusBadRequest,
			Body:       map[string]any{"status": "error", "message": "Invalid JSON"},
		}, core.InboundEvent{}, "")
	}

	event := conversation.ProjectEvent(payload)

	if p.exclusions.Contains(event.AuthorEmail) {
		p.logger.Info("delivery skipped, author excluded", "conversation_id", event.ConversationID)
		return p.finish(ctx, Outcome{
			Terminal:   TerminalSkipped,
			StatusCode: http.StatusOK,
			Body:       map[string]any{"status": "skipped", "reason": "Author email in exclusion list"},
		}, event, "")
	}

	if event.ConversationID == "" {
		return p.finish(ctx, Outcome{
			Terminal:   TerminalMissingConversationID,
			StatusCode: http.StatusBadRequest,
			Body:       map[string]any{"status": "error", "message": "Conversation ID missing"},
		}, event, "")
	}

	if p.resolver == nil || p.mover == nil {
		p.logger.Error("directory client not configured, delivery dropped",
			"conversation_id", event.ConversationID,
		)
		return p.finish(ctx, Outcome{
			Terminal:   TerminalClientUnavailable,
			StatusCode: http.StatusInternalServerError,
			Body:       map[string]any{"status": "error", "message": "Asana client not configured"},
		}, event, "")
	}

	resolved, err := p.resolver.Resolve(ctx, event.ConversationID)
	if err != nil {
		if !resolver.IsTaskNotFound(err) {
			p.logger.Warn("resolution failed, treating as no match",
				"conversation_id", event.ConversationID,
				"error", err,
			)
		}
		return p.finish(ctx, Outcome{
			Terminal:   TerminalTaskNotFound,
			StatusCode: http.StatusNotFound,
			Body: map[string]any{
				"status":          "error",
				"message":         "Task not found for conversation",
				"conversation_id": event.ConversationID,
			},
		}, event, "")
	}

	if !p.mover.MoveTask(ctx, resolved.TaskID) {
		p.logger.Error("move rejected",
			"conversation_id", event.ConversationID,
			"task_gid", resolved.TaskID,
		)
		return p.finish(ctx, Outcome{
			Terminal:   TerminalMoveFailed,
			StatusCode: http.StatusInternalServerError,
			Body: map[string]any{
				"status":          "error",
				"message":         "Failed to move task",
				"conversation_id": event.ConversationID,
				"task":            resolved.Map(),
			},
		}, event, resolved.TaskID)
	}

	p.logger.Info("task moved",
		"conversation_id", event.ConversationID,
		"task_gid", resolved.TaskID,
	)
	return p.finish(ctx, Outcome{
		Terminal:   TerminalSuccess,
		StatusCode: http.StatusOK,
		Body: map[string]any{
			"status":          "success",
			"message":         "Task moved to target section",
			"conversation_id": event.ConversationID,
			"task":            resolved.Map(),
		},
	}, event, resolved.TaskID)
}

func (p *Processor) finish(ctx context.Context, outcome Outcome, event core.InboundEvent, taskID string) Outcome {
	p.metrics.IncCounter(ctx, "relay.webhook.deliveries", 1, map[string]string{
		"terminal": outcome.Terminal,
	})
	if p.recorder != nil {
		entry := core.DeliveryEntry{
			ConversationID: event.ConversationID,
			Status:         outcome.Terminal,
			TaskID:         taskID,
			CreatedAt:      time.Now().UTC(),
		}
		if err := p.recorder.Record(ctx, entry); err != nil {
			p.logger.Warn("delivery ledger write failed", "error", err)
		}
	}
	return outcome
}
