package command

import (
	"fmt"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-conversation-relay/core"
)

func commandDependencyError(message string) error {
	return goerrors.New(message, goerrors.CategoryInternal).
		WithCode(http.StatusInternalServerError).
		WithTextCode(core.RelayErrorInternal)
}

func commandMoveFailedError(taskID, conversationID string) error {
	return goerrors.New(
		fmt.Sprintf("command: move rejected for task %s", strings.TrimSpace(taskID)),
		goerrors.CategoryExternal,
	).
		WithCode(http.StatusBadGateway).
		WithTextCode(core.RelayErrorMoveFailed).
		WithMetadata(map[string]any{
			"task_gid":        strings.TrimSpace(taskID),
			"conversation_id": strings.TrimSpace(conversationID),
		})
}
