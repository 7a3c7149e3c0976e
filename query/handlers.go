package query

import (
	"context"
	"errors"

	"github.com/goliatone/go-conversation-relay/core"
	"github.com/goliatone/go-conversation-relay/resolver"
)

const defaultRecentDeliveriesLimit = 50

// TaskResolverService matches a conversation to a task.
type TaskResolverService interface {
	Resolve(ctx context.Context, conversationID string) (core.ResolvedTask, error)
}

// TaskDetailReader is the single-record read slice of the directory client.
type TaskDetailReader interface {
	GetTaskDetails(ctx context.Context, taskID string) (core.TaskDetail, bool)
}

// CurrentUserReader resolves the credential's account.
type CurrentUserReader interface {
	GetCurrentUser(ctx context.Context) (core.UserInfo, bool)
}

// DeliveryReader lists processed-delivery ledger entries, newest first.
type DeliveryReader interface {
	Recent(ctx context.Context, limit int) ([]core.DeliveryEntry, error)
}

type ResolveTaskQuery struct {
	service TaskResolverService
}

func NewResolveTaskQuery(service TaskResolverService) *ResolveTaskQuery {
	return &ResolveTaskQuery{service: service}
}

func (q *ResolveTaskQuery) Query(ctx context.Context, msg ResolveTaskMessage) (core.ResolvedTask, error) {
	if q == nil || q.service == nil {
		return core.ResolvedTask{}, queryDependencyError("query: task resolver is required")
	}
	resolved, err := q.service.Resolve(ctx, msg.ConversationID)
	if err != nil {
		var notFound *resolver.TaskNotFoundError
		if errors.As(err, &notFound) {
			return core.ResolvedTask{}, notFound.ToServiceError()
		}
		return core.ResolvedTask{}, core.MapError(err)
	}
	return resolved, nil
}

type GetTaskDetailsQuery struct {
	reader TaskDetailReader
}

func NewGetTaskDetailsQuery(reader TaskDetailReader) *GetTaskDetailsQuery {
	return &GetTaskDetailsQuery{reader: reader}
}

func (q *GetTaskDetailsQuery) Query(ctx context.Context, msg GetTaskDetailsMessage) (core.TaskDetail, error) {
	if q == nil || q.reader == nil {
		return core.TaskDetail{}, queryDependencyError("query: task detail reader is required")
	}
	detail, ok := q.reader.GetTaskDetails(ctx, msg.TaskID)
	if !ok {
		return core.TaskDetail{}, queryNotFoundError("query: task detail unavailable", map[string]any{
			"task_gid": msg.TaskID,
		})
	}
	return detail, nil
}

type CurrentUserQuery struct {
	reader CurrentUserReader
}

func NewCurrentUserQuery(reader CurrentUserReader) *CurrentUserQuery {
	return &CurrentUserQuery{reader: reader}
}

func (q *CurrentUserQuery) Query(ctx context.Context, msg CurrentUserMessage) (core.UserInfo, error) {
	if q == nil || q.reader == nil {
		return core.UserInfo{}, queryDependencyError("query: current user reader is required")
	}
	user, ok := q.reader.GetCurrentUser(ctx)
	if !ok {
		return core.UserInfo{}, queryNotFoundError("query: current user unavailable", nil)
	}
	return user, nil
}

type RecentDeliveriesQuery struct {
	reader DeliveryReader
}

func NewRecentDeliveriesQuery(reader DeliveryReader) *RecentDeliveriesQuery {
	return &RecentDeliveriesQuery{reader: reader}
}

func (q *RecentDeliveriesQuery) Query(ctx context.Context, msg RecentDeliveriesMessage) ([]core.DeliveryEntry, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: delivery reader is required")
	}
	limit := msg.Limit
	if limit <= 0 {
		limit = defaultRecentDeliveriesLimit
	}
	entries, err := q.reader.Recent(ctx, limit)
	if err != nil {
		return nil, core.MapError(err)
	}
	return entries, nil
}
