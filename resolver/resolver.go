// Package resolver matches a conversation id against the attachments of the
// configured project's tasks. Resolution is computed fresh on every call;
// nothing here caches or persists a mapping.
package resolver

import (
	"context"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-conversation-relay/conversation"
	"github.com/goliatone/go-conversation-relay/core"
)

// Directory is the slice of the directory client resolution needs.
type Directory interface {
	ListProjectTasks(ctx context.Context) []core.Task
	ListAttachments(ctx context.Context, taskID string) []core.Attachment
}

// Resolver scans tasks in directory order and returns the first task whose
// attachment references the conversation. Ordering makes the result
// deterministic when multiple tasks reference the same conversation.
type Resolver struct {
	directory Directory
	logger    core.Logger
}

type Option func(*Resolver)

func WithLogger(logger core.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func New(directory Directory, options ...Option) *Resolver {
	resolver := &Resolver{
		directory: directory,
		logger:    glog.Nop(),
	}
	for _, option := range options {
		option(resolver)
	}
	return resolver
}

// Resolve walks the project's tasks and their attachments looking for a URL
// that references conversationID. The view URL is consulted before the
// download URL on each attachment; the first matching attachment decides.
func (r *Resolver) Resolve(ctx context.Context, conversationID string) (core.ResolvedTask, error) {
	wanted := strings.TrimSpace(conversationID)
	if wanted == "" {
		return core.ResolvedTask{}, goerrors.New(
			"resolver: conversation id is required",
			goerrors.CategoryBadInput,
		).WithCode(http.StatusBadRequest).WithTextCode(core.RelayErrorBadInput)
	}
	if r.directory == nil {
		return core.ResolvedTask{}, goerrors.New(
			"resolver: directory client is required",
			goerrors.CategoryInternal,
		).WithCode(http.StatusInternalServerError).WithTextCode(core.RelayErrorInternal)
	}

	tasks := r.directory.ListProjectTasks(ctx)
	scanned := 0
	for _, task := range tasks {
		attachments := r.directory.ListAttachments(ctx, task.ID)
		scanned += len(attachments)
		for _, attachment := range attachments {
			matchedURL, ok := matchAttachment(attachment, wanted)
			if !ok {
				continue
			}
			r.logger.Info("conversation resolved",
				"conversation_id", wanted,
				"task_gid", task.ID,
				"attachment_gid", attachment.ID,
			)
			return core.ResolvedTask{
				TaskID:          task.ID,
				TaskName:        task.Name,
				AttachmentID:    attachment.ID,
				ConversationURL: matchedURL,
			}, nil
		}
	}

	r.logger.Debug("conversation unresolved",
		"conversation_id", wanted,
		"tasks_scanned", len(tasks),
		"attachments_scanned", scanned,
	)
	return core.ResolvedTask{}, &TaskNotFoundError{ConversationID: wanted}
}

// matchAttachment checks the attachment's URLs in priority order and returns
// the URL that carried the match.
func matchAttachment(attachment core.Attachment, conversationID string) (string, bool) {
	if conversation.MatchesConversation(attachment.ViewURL, conversationID) {
		return attachment.ViewURL, true
	}
	if conversation.MatchesConversation(attachment.URL, conversationID) {
		return attachment.URL, true
	}
	return "", false
}
