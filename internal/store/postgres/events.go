package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"daraja/internal/provider"

	"github.com/jackc/pgx/v5/pgconn"
)

// execer is the part of pgxpool.Pool the store uses
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const schema = `
CREATE TABLE IF NOT EXISTS callback_events (
	id             BIGSERIAL PRIMARY KEY,
	family         TEXT        NOT NULL,
	transaction_id TEXT        NOT NULL DEFAULT '',
	success        BOOLEAN     NOT NULL,
	description    TEXT        NOT NULL DEFAULT '',
	data_json      JSONB,
	payload_json   JSONB       NOT NULL,
	received_at    TIMESTAMPTZ NOT NULL,
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS callback_events_family_tx
	ON callback_events (family, transaction_id) WHERE transaction_id <> '';`

const upsertCallback = `
INSERT INTO callback_events
	(family, transaction_id, success, description, data_json, payload_json, received_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (family, transaction_id) WHERE transaction_id <> '' DO UPDATE
  SET success      = EXCLUDED.success,
      description  = EXCLUDED.description,
      data_json    = EXCLUDED.data_json,
      payload_json = EXCLUDED.payload_json,
      updated_at   = now()`

// CallbackStore keeps the latest delivery of every callback. Redeliveries of
// the same transaction overwrite the earlier row.
type CallbackStore struct {
	db execer
}

func NewCallbackStore(db execer) *CallbackStore { return &CallbackStore{db: db} }

// EnsureSchema creates the callback_events table when missing
func (s *CallbackStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure callback schema: %w", err)
	}
	return nil
}

// Record upserts by (family, transaction_id). Callbacks without a
// transaction id are always inserted.
func (s *CallbackStore) Record(ctx context.Context, cb provider.Callback) error {
	var data any
	if cb.Result.Data != nil {
		b, err := json.Marshal(cb.Result.Data)
		if err != nil {
			return fmt.Errorf("encode callback data: %w", err)
		}
		data = string(b)
	}

	_, err := s.db.Exec(ctx, upsertCallback,
		string(cb.Family), cb.Result.TransactionID, cb.Result.Success, cb.Result.Description,
		data, string(cb.Raw), cb.ReceivedAt,
	)
	if err != nil {
		return fmt.Errorf("save %s callback: %w", cb.Family, err)
	}
	return nil
}
