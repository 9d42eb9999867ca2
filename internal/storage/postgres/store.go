package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"activityScope/internal/model"
)

// Store provides Postgres persistence for normalized activity records.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// UpsertActivity inserts or updates activity records, keyed by event id.
func (s *Store) UpsertActivity(ctx context.Context, events []model.ActivityEvent) error {
	if len(events) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, ev := range events {
		batch.Queue(`
			INSERT INTO activity_events (
				id, tx_hash, contract_id, ledger, ledger_closed_at, event_type,
				from_address, to_address, amount, direction, counterparty,
				sac_symbol, sac_name, is_refund, created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,now(),now())
			ON CONFLICT (id)
			DO UPDATE SET
				tx_hash = EXCLUDED.tx_hash,
				contract_id = EXCLUDED.contract_id,
				ledger = EXCLUDED.ledger,
				ledger_closed_at = EXCLUDED.ledger_closed_at,
				event_type = EXCLUDED.event_type,
				from_address = EXCLUDED.from_address,
				to_address = EXCLUDED.to_address,
				amount = EXCLUDED.amount,
				direction = EXCLUDED.direction,
				counterparty = EXCLUDED.counterparty,
				sac_symbol = EXCLUDED.sac_symbol,
				sac_name = EXCLUDED.sac_name,
				is_refund = EXCLUDED.is_refund,
				updated_at = now()
		`,
			ev.ID,
			ev.TxHash,
			ev.ContractID,
			int64(ev.Ledger),
			ev.Timestamp,
			string(ev.Type),
			ev.From,
			ev.To,
			ev.Amount,
			string(ev.Direction),
			ev.Counterparty,
			ev.SacSymbol,
			ev.SacName,
			ev.IsRefund,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range events {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}
