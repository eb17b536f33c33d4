package database

import (
	"context"
	"database/sql"
	"fmt"
)

type CounterRepository struct {
	DB *sql.DB
}

func NewCounterRepository(db *sql.DB) *CounterRepository {
	return &CounterRepository{DB: db}
}

// Next incrementa e lê a sequência num único comando.
func (r *CounterRepository) Next(ctx context.Context, sequence string) (int64, error) {
	query := `
		INSERT INTO counters (name, value) VALUES ($1, 1)
		ON CONFLICT (name) DO UPDATE SET value = counters.value + 1
		RETURNING value
	`

	var v int64
	if err := conn(ctx, r.DB).QueryRowContext(ctx, query, sequence).Scan(&v); err != nil {
		return 0, fmt.Errorf("erro ao incrementar contador %s: %w", sequence, err)
	}
	return v, nil
}
