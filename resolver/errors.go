package resolver

import (
	"errors"
	"fmt"
	"net/http"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-conversation-relay/core"
)

// TaskNotFoundError reports that no task in the project references the
// conversation. It is an expected outcome, not a failure of the scan.
type TaskNotFoundError struct {
	ConversationID string
	Inner          error
}

func (e *TaskNotFoundError) Error() string {
	return fmt.Sprintf("resolver: task not found for conversation %s", e.ConversationID)
}

func (e *TaskNotFoundError) Unwrap() error {
	return e.Inner
}

// ToServiceError converts the sentinel into the canonical error envelope.
func (e *TaskNotFoundError) ToServiceError() *goerrors.Error {
	return goerrors.New(e.Error(), goerrors.CategoryNotFound).
		WithCode(http.StatusNotFound).
		WithTextCode(core.RelayErrorTaskNotFound).
		WithMetadata(map[string]any{"conversation_id": e.ConversationID})
}

// IsTaskNotFound reports whether err is a resolution miss.
func IsTaskNotFound(err error) bool {
	var notFound *TaskNotFoundError
	return errors.As(err, &notFound)
}
