package entity

import (
	"time"

	"github.com/google/uuid"
)

// NoteEntity identifica o agregado dono da nota.
type NoteEntity string

const (
	NoteEntityLead NoteEntity = "lead"
	NoteEntitySale NoteEntity = "sale"
)

// Note é uma entrada do histórico. Nunca é editada nem removida.
type Note struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedBy *string   `json:"createdBy"` // nil quando a ação foi do sistema
	CreatedAt time.Time `json:"createdAt"`
}

func NewNote(text string, createdBy *string, now time.Time) Note {
	return Note{
		ID:        uuid.New().String(),
		Text:      text,
		CreatedBy: createdBy,
		CreatedAt: now,
	}
}
