package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

// NoteRepository só insere e lista: notas nunca são editadas ou apagadas.
type NoteRepository struct {
	DB *sql.DB
}

func NewNoteRepository(db *sql.DB) *NoteRepository {
	return &NoteRepository{DB: db}
}

func (r *NoteRepository) Append(ctx context.Context, kind entity.NoteEntity, entityID int64, note entity.Note) error {
	query := `
		INSERT INTO notes (id, entity_type, entity_id, text, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := conn(ctx, r.DB).ExecContext(ctx, query,
		note.ID,
		kind,
		entityID,
		note.Text,
		note.CreatedBy,
		note.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("erro ao gravar nota (%s %d): %w", kind, entityID, err)
	}
	return nil
}

func (r *NoteRepository) List(ctx context.Context, kind entity.NoteEntity, entityID int64) ([]entity.Note, error) {
	query := `
		SELECT id, text, created_by, created_at
		FROM notes
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY seq
	`

	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, kind, entityID)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar notas (%s %d): %w", kind, entityID, err)
	}
	defer rows.Close()

	notes := []entity.Note{}
	for rows.Next() {
		var n entity.Note
		if err := rows.Scan(&n.ID, &n.Text, &n.CreatedBy, &n.CreatedAt); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}
