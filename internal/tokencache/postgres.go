package tokencache

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"activityScope/internal/model"
)

// Postgres is a durable Cache backed by a token_meta table.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Close() {
	if p.pool != nil {
		p.pool.Close()
	}
}

func (p *Postgres) Get(ctx context.Context, network, contractID string) (*model.TokenMeta, error) {
	var meta model.TokenMeta
	err := p.pool.QueryRow(ctx, `
		SELECT symbol, name, decimals
		FROM token_meta
		WHERE network = $1 AND contract_id = $2
	`, network, contractID).Scan(&meta.Symbol, &meta.Name, &meta.Decimals)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select token meta: %w", err)
	}
	return &meta, nil
}

func (p *Postgres) Set(ctx context.Context, network, contractID string, meta model.TokenMeta) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO token_meta (network, contract_id, symbol, name, decimals, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
		ON CONFLICT (network, contract_id)
		DO UPDATE SET
			symbol = EXCLUDED.symbol,
			name = EXCLUDED.name,
			decimals = EXCLUDED.decimals,
			updated_at = now()
	`, network, contractID, meta.Symbol, meta.Name, meta.Decimals)
	if err != nil {
		return fmt.Errorf("upsert token meta: %w", err)
	}
	return nil
}
