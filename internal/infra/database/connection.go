package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // Driver do Postgres

	"github.com/xavierca1/ligue-crm/internal/entity"
)

// NewDBConnection abre a conexão e testa o Ping
func NewDBConnection(connString string) (*sql.DB, error) {
	db, err := sql.Open("pgx", connString)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// Nomes das constraints únicas do schema.sql.
const (
	constraintLeadEmail = "leads_email_key"
	constraintUserEmail = "users_email_key"
	constraintSaleLead  = "sales_lead_id_key"
)

// mapError traduz violações de unicidade (23505) para os erros de entidade.
func mapError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return err
	}
	switch pgErr.ConstraintName {
	case constraintLeadEmail, constraintUserEmail:
		return entity.ErrEmailAlreadyExists
	case constraintSaleLead:
		return entity.ErrDuplicateSale
	}
	return err
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
