package sqlstore

import (
	"github.com/goliatone/go-conversation-relay/query"
	"github.com/goliatone/go-conversation-relay/webhooks"
)

var (
	_ webhooks.DeliveryRecorder = (*DeliveryStore)(nil)
	_ query.DeliveryReader      = (*DeliveryStore)(nil)
)
