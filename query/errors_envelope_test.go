package query

import (
	"context"
	"errors"
	"net/http"
	"testing"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-conversation-relay/core"
	"github.com/goliatone/go-conversation-relay/resolver"
)

type failingDeliveryReader struct {
	err error
}

func (s failingDeliveryReader) Recent(_ context.Context, _ int) ([]core.DeliveryEntry, error) {
	return nil, s.err
}

func TestResolveTaskQuery_NotFoundReturnsRichError(t *testing.T) {
	q := NewResolveTaskQuery(stubResolverService{err: &resolver.TaskNotFoundError{ConversationID: "4107"}})
	_, err := q.Query(context.Background(), ResolveTaskMessage{ConversationID: "4107"})
	if err == nil {
		t.Fatalf("expected not-found error")
	}

	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryNotFound {
		t.Fatalf("expected not-found category, got %q", rich.Category)
	}
	if rich.TextCode != core.RelayErrorTaskNotFound {
		t.Fatalf("expected %q text code, got %q", core.RelayErrorTaskNotFound, rich.TextCode)
	}
	if rich.Code != http.StatusNotFound {
		t.Fatalf("expected %d code, got %d", http.StatusNotFound, rich.Code)
	}
}

func TestResolveTaskQuery_ResolverFailureReturnsRichError(t *testing.T) {
	q := NewResolveTaskQuery(stubResolverService{err: errors.New("directory scan aborted")})
	_, err := q.Query(context.Background(), ResolveTaskMessage{ConversationID: "4107"})
	if err == nil {
		t.Fatalf("expected resolver failure")
	}

	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Code == 0 {
		t.Fatalf("expected mapped http code")
	}
	if rich.TextCode == "" {
		t.Fatalf("expected mapped text code")
	}
}

func TestRecentDeliveriesQuery_ReaderFailureReturnsRichError(t *testing.T) {
	q := NewRecentDeliveriesQuery(failingDeliveryReader{err: errors.New("ledger connection reset")})
	_, err := q.Query(context.Background(), RecentDeliveriesMessage{})
	if err == nil {
		t.Fatalf("expected reader failure")
	}

	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Code == 0 {
		t.Fatalf("expected mapped http code")
	}
	if rich.TextCode == "" {
		t.Fatalf("expected mapped text code")
	}
}
