package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[MoveTaskMessage]        = (*MoveTaskCommand)(nil)
	_ gocmd.Commander[ProcessDeliveryMessage] = (*ProcessDeliveryCommand)(nil)
)
