package query

import (
	gocmd "github.com/goliatone/go-command"

	"github.com/goliatone/go-conversation-relay/core"
)

var (
	_ gocmd.Querier[ResolveTaskMessage, core.ResolvedTask]         = (*ResolveTaskQuery)(nil)
	_ gocmd.Querier[GetTaskDetailsMessage, core.TaskDetail]        = (*GetTaskDetailsQuery)(nil)
	_ gocmd.Querier[CurrentUserMessage, core.UserInfo]             = (*CurrentUserQuery)(nil)
	_ gocmd.Querier[RecentDeliveriesMessage, []core.DeliveryEntry] = (*RecentDeliveriesQuery)(nil)
)
