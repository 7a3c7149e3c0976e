// Package sqlstore persists the processed-delivery ledger behind bun. The
// ledger is audit-only: the resolution path never reads it back.
package sqlstore

import (
	"time"

	"github.com/uptrace/bun"
)

type relayDeliveryRecord struct {
	bun.BaseModel `bun:"table:relay_deliveries,alias:rd"`

	ID             string    `bun:"id,pk"`
	ConversationID string    `bun:"conversation_id,notnull"`
	Status         string    `bun:"status,notnull"`
	TaskGID        string    `bun:"task_gid,notnull"`
	CreatedAt      time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}
