package entity

import (
	"context"
	"slices"
	"time"
)

// Nomes das sequências atômicas usadas para leadId e saleId.
const (
	SequenceLead = "leadId"
	SequenceSale = "saleId"
)

type Disposition string

const (
	DispositionNotInterested Disposition = "Not Interested"
	DispositionFollowUp      Disposition = "Follow-up"
	DispositionSale          Disposition = "Sale"
)

func (d Disposition) Valid() bool {
	switch d {
	case DispositionNotInterested, DispositionFollowUp, DispositionSale:
		return true
	}
	return false
}

// Lead é o contato comercial que percorre o funil até virar venda.
type Lead struct {
	ID              int64       `json:"leadId"`
	Name            string      `json:"name"`
	Email           string      `json:"email"`
	Phone           string      `json:"phone"`
	BusinessName    string      `json:"businessName"`
	BusinessAddress string      `json:"businessAddress"`
	Disposition     Disposition `json:"disposition"`
	Notes           []Note      `json:"notes"`
	ImportantDates  []string    `json:"importantDates"` // YYYY-MM-DD
	CreatedBy       *string     `json:"createdBy"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

func NewLead(id int64, name, email, phone, businessName, businessAddress string, createdBy *string, now time.Time) *Lead {
	return &Lead{
		ID:              id,
		Name:            name,
		Email:           email,
		Phone:           phone,
		BusinessName:    businessName,
		BusinessAddress: businessAddress,
		Disposition:     DispositionFollowUp,
		Notes:           []Note{},
		ImportantDates:  []string{},
		CreatedBy:       createdBy,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// AddImportantDate mantém as datas ordenadas e sem repetição.
// Retorna false se a data já estava marcada.
func (l *Lead) AddImportantDate(date string) bool {
	if slices.Contains(l.ImportantDates, date) {
		return false
	}
	l.ImportantDates = append(l.ImportantDates, date)
	slices.Sort(l.ImportantDates)
	return true
}

func (l *Lead) Clone() *Lead {
	c := *l
	c.Notes = slices.Clone(l.Notes)
	c.ImportantDates = slices.Clone(l.ImportantDates)
	if c.Notes == nil {
		c.Notes = []Note{}
	}
	if c.ImportantDates == nil {
		c.ImportantDates = []string{}
	}
	return &c
}

// FieldChange descreve a alteração de um campo visível do lead.
type FieldChange struct {
	Field string `json:"field"`
	Old   string `json:"old"`
	New   string `json:"new"`
}

// LeadFieldsChanged é emitido dentro da mesma transação que alterou o lead.
type LeadFieldsChanged struct {
	LeadID  int64
	Changes []FieldChange
}

func (e LeadFieldsChanged) Change(field string) (FieldChange, bool) {
	for _, c := range e.Changes {
		if c.Field == field {
			return c, true
		}
	}
	return FieldChange{}, false
}

type LeadRepositoryInterface interface {
	Create(ctx context.Context, lead *Lead) error
	FindByID(ctx context.Context, id int64) (*Lead, error)
	FindByIDForUpdate(ctx context.Context, id int64) (*Lead, error)
	Update(ctx context.Context, lead *Lead) error
}
