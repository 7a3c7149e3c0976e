package query

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-conversation-relay/core"
)

type stubResolverService struct {
	resolved core.ResolvedTask
	err      error
}

func (s stubResolverService) Resolve(_ context.Context, _ string) (core.ResolvedTask, error) {
	return s.resolved, s.err
}

type stubDetailReader struct {
	detail core.TaskDetail
	ok     bool
}

func (s stubDetailReader) GetTaskDetails(_ context.Context, _ string) (core.TaskDetail, bool) {
	return s.detail, s.ok
}

type stubUserReader struct {
	user core.UserInfo
	ok   bool
}

func (s stubUserReader) GetCurrentUser(_ context.Context) (core.UserInfo, bool) {
	return s.user, s.ok
}

type stubDeliveryReader struct {
	entries  []core.DeliveryEntry
	gotLimit int
}

func (s *stubDeliveryReader) Recent(_ context.Context, limit int) ([]core.DeliveryEntry, error) {
	s.gotLimit = limit
	return s.entries, nil
}

func TestResolveTaskQuery_Delegates(t *testing.T) {
	expected := core.ResolvedTask{TaskID: "77", AttachmentID: "900"}
	q := NewResolveTaskQuery(stubResolverService{resolved: expected})
	resolved, err := q.Query(context.Background(), ResolveTaskMessage{ConversationID: "4107"})
	if err != nil {
		t.Fatalf("query resolve: %v", err)
	}
	if resolved.TaskID != "77" {
		t.Fatalf("unexpected resolution %#v", resolved)
	}
}

func TestResolveTaskQuery_RequiresService(t *testing.T) {
	q := NewResolveTaskQuery(nil)
	if _, err := q.Query(context.Background(), ResolveTaskMessage{ConversationID: "4107"}); err == nil {
		t.Fatalf("expected dependency error")
	}
}

func TestGetTaskDetailsQuery(t *testing.T) {
	q := NewGetTaskDetailsQuery(stubDetailReader{detail: core.TaskDetail{ID: "77", Name: "Ticket"}, ok: true})
	detail, err := q.Query(context.Background(), GetTaskDetailsMessage{TaskID: "77"})
	if err != nil {
		t.Fatalf("query details: %v", err)
	}
	if detail.Name != "Ticket" {
		t.Fatalf("unexpected detail %#v", detail)
	}

	q = NewGetTaskDetailsQuery(stubDetailReader{ok: false})
	if _, err := q.Query(context.Background(), GetTaskDetailsMessage{TaskID: "77"}); err == nil {
		t.Fatalf("expected not-found error")
	}
}

func TestCurrentUserQuery(t *testing.T) {
	q := NewCurrentUserQuery(stubUserReader{user: core.UserInfo{ID: "42"}, ok: true})
	user, err := q.Query(context.Background(), CurrentUserMessage{})
	if err != nil {
		t.Fatalf("query user: %v", err)
	}
	if user.ID != "42" {
		t.Fatalf("unexpected user %#v", user)
	}

	q = NewCurrentUserQuery(stubUserReader{ok: false})
	if _, err := q.Query(context.Background(), CurrentUserMessage{}); err == nil {
		t.Fatalf("expected unavailable error")
	}
}

func TestRecentDeliveriesQuery_DefaultsLimit(t *testing.T) {
	reader := &stubDeliveryReader{entries: []core.DeliveryEntry{{
		ID:             "d1",
		ConversationID: "4107",
		Status:         "success",
		CreatedAt:      time.Now().UTC(),
	}}}
	q := NewRecentDeliveriesQuery(reader)

	entries, err := q.Query(context.Background(), RecentDeliveriesMessage{})
	if err != nil {
		t.Fatalf("query deliveries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	if reader.gotLimit != defaultRecentDeliveriesLimit {
		t.Fatalf("expected default limit, got %d", reader.gotLimit)
	}

	if _, err := q.Query(context.Background(), RecentDeliveriesMessage{Limit: 5}); err != nil {
		t.Fatalf("query deliveries with limit: %v", err)
	}
	if reader.gotLimit != 5 {
		t.Fatalf("expected explicit limit respected, got %d", reader.gotLimit)
	}
}

func TestQueryMessages_Validate(t *testing.T) {
	if err := (ResolveTaskMessage{}).Validate(); err == nil {
		t.Fatalf("expected blank conversation id rejection")
	}
	if err := (GetTaskDetailsMessage{}).Validate(); err == nil {
		t.Fatalf("expected blank task id rejection")
	}
	if err := (CurrentUserMessage{}).Validate(); err != nil {
		t.Fatalf("current user message must validate: %v", err)
	}
	if err := (RecentDeliveriesMessage{Limit: -1}).Validate(); err == nil {
		t.Fatalf("expected negative limit rejection")
	}
}
