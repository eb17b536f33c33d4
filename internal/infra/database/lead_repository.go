package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type LeadRepository struct {
	DB    *sql.DB
	Notes *NoteRepository
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db, Notes: NewNoteRepository(db)}
}

func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	query := `
		INSERT INTO leads (id, name, email, phone, business_name, business_address,
			disposition, important_dates, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := conn(ctx, r.DB).ExecContext(ctx, query,
		lead.ID,
		lead.Name,
		lead.Email,
		nullString(lead.Phone),
		nullString(lead.BusinessName),
		nullString(lead.BusinessAddress),
		lead.Disposition,
		pq.StringArray(lead.ImportantDates),
		lead.CreatedBy,
		lead.CreatedAt,
		lead.UpdatedAt,
	)
	if err != nil {
		return mapError(err)
	}
	return nil
}

const leadColumns = `id, name, email, COALESCE(phone, ''), COALESCE(business_name, ''),
	COALESCE(business_address, ''), disposition, important_dates, created_by, created_at, updated_at`

func (r *LeadRepository) FindByID(ctx context.Context, id int64) (*entity.Lead, error) {
	return r.find(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
}

// FindByIDForUpdate trava a linha do lead até o fim da transação.
func (r *LeadRepository) FindByIDForUpdate(ctx context.Context, id int64) (*entity.Lead, error) {
	return r.find(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1 FOR UPDATE`, id)
}

func (r *LeadRepository) find(ctx context.Context, query string, id int64) (*entity.Lead, error) {
	var (
		l     entity.Lead
		dates pq.StringArray
	)
	err := conn(ctx, r.DB).QueryRowContext(ctx, query, id).Scan(
		&l.ID,
		&l.Name,
		&l.Email,
		&l.Phone,
		&l.BusinessName,
		&l.BusinessAddress,
		&l.Disposition,
		&dates,
		&l.CreatedBy,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrLeadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar lead %d: %w", id, err)
	}

	l.ImportantDates = []string(dates)
	if l.ImportantDates == nil {
		l.ImportantDates = []string{}
	}

	l.Notes, err = r.Notes.List(ctx, entity.NoteEntityLead, l.ID)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Update grava campos, disposição e datas. Notas entram só pelo NoteRepository.
func (r *LeadRepository) Update(ctx context.Context, lead *entity.Lead) error {
	query := `
		UPDATE leads SET
			name = $2,
			email = $3,
			phone = $4,
			business_name = $5,
			business_address = $6,
			disposition = $7,
			important_dates = $8,
			updated_at = $9
		WHERE id = $1
	`

	res, err := conn(ctx, r.DB).ExecContext(ctx, query,
		lead.ID,
		lead.Name,
		lead.Email,
		nullString(lead.Phone),
		nullString(lead.BusinessName),
		nullString(lead.BusinessAddress),
		lead.Disposition,
		pq.StringArray(lead.ImportantDates),
		lead.UpdatedAt,
	)
	if err != nil {
		return mapError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entity.ErrLeadNotFound
	}
	return nil
}
