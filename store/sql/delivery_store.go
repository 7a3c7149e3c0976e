package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-conversation-relay/core"
)

// DeliveryStore records processed webhook deliveries and serves the recent
// history to the introspection surface.
type DeliveryStore struct {
	db   *bun.DB
	repo repository.Repository[*relayDeliveryRecord]
}

func NewDeliveryStore(db *bun.DB) (*DeliveryStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*relayDeliveryRecord](db, deliveryHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid delivery repository wiring: %w", err)
		}
	}
	return &DeliveryStore{
		db:   db,
		repo: repo,
	}, nil
}

// NewDeliveryStoreFromPersistence accepts a persistence client (anything
// exposing DB() *bun.DB) or a *bun.DB directly.
func NewDeliveryStoreFromPersistence(client any) (*DeliveryStore, error) {
	db, err := resolveBunDB(client)
	if err != nil {
		return nil, err
	}
	return NewDeliveryStore(db)
}

// Record inserts one ledger entry. A missing id or timestamp is filled in
// here so callers can hand over the bare pipeline outcome.
func (s *DeliveryStore) Record(ctx context.Context, entry core.DeliveryEntry) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: delivery store is not configured")
	}
	if strings.TrimSpace(entry.Status) == "" {
		return fmt.Errorf("sqlstore: delivery status is required")
	}

	record := &relayDeliveryRecord{
		ID:             strings.TrimSpace(entry.ID),
		ConversationID: strings.TrimSpace(entry.ConversationID),
		Status:         strings.TrimSpace(entry.Status),
		TaskGID:        strings.TrimSpace(entry.TaskID),
		CreatedAt:      entry.CreatedAt,
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	if _, err := s.db.NewInsert().Model(record).Exec(ctx); err != nil {
		return fmt.Errorf("sqlstore: insert delivery: %w", err)
	}
	return nil
}

// Recent returns up to limit ledger entries, newest first.
func (s *DeliveryStore) Recent(ctx context.Context, limit int) ([]core.DeliveryEntry, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: delivery store is not configured")
	}
	if limit <= 0 {
		limit = 50
	}

	records := []*relayDeliveryRecord{}
	err := s.db.NewSelect().
		Model(&records).
		OrderExpr("?TableAlias.created_at DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: list deliveries: %w", err)
	}

	entries := make([]core.DeliveryEntry, 0, len(records))
	for _, record := range records {
		entries = append(entries, deliveryToDomain(record))
	}
	return entries, nil
}

func deliveryToDomain(record *relayDeliveryRecord) core.DeliveryEntry {
	if record == nil {
		return core.DeliveryEntry{}
	}
	return core.DeliveryEntry{
		ID:             record.ID,
		ConversationID: record.ConversationID,
		Status:         record.Status,
		TaskID:         record.TaskGID,
		CreatedAt:      record.CreatedAt,
	}
}

func resolveBunDB(candidate any) (*bun.DB, error) {
	switch typed := candidate.(type) {
	case nil:
		return nil, fmt.Errorf("sqlstore: persistence client is required")
	case *bun.DB:
		return typed, nil
	case interface{ DB() *bun.DB }:
		db := typed.DB()
		if db == nil {
			return nil, fmt.Errorf("sqlstore: persistence client returned nil bun db")
		}
		return db, nil
	default:
		return nil, fmt.Errorf("sqlstore: unsupported persistence client type %T", candidate)
	}
}
