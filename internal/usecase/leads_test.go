package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

func TestCreateLead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.newLead(t, "Maria@Example.com ")
	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, "maria@example.com", first.Email)
	assert.Equal(t, entity.DispositionFollowUp, first.Disposition)
	assert.Equal(t, []string{"Lead created by Ana Sales"}, noteTexts(first.Notes))
	assert.Equal(t, seller.Ref(), first.CreatedBy)

	second := f.newLead(t, "outro@example.com")
	assert.Equal(t, int64(2), second.ID)

	t.Run("email duplicado", func(t *testing.T) {
		_, err := f.createLead.Execute(ctx, seller, usecase.CreateLeadInput{Name: "Outra Maria", Email: "MARIA@example.com"})
		assert.Equal(t, usecase.CodeConflict, usecase.ErrorCode(err))
	})

	t.Run("payload inválido", func(t *testing.T) {
		_, err := f.createLead.Execute(ctx, seller, usecase.CreateLeadInput{Name: "X", Email: "nao-e-email"})
		require.Error(t, err)
		assert.Equal(t, usecase.CodeInvalidInput, usecase.ErrorCode(err))
		assert.Contains(t, err.Error(), "email")
		assert.Contains(t, err.Error(), "name")
	})

	// A transação desfeita não consome a sequência.
	third := f.newLead(t, "terceiro@example.com")
	assert.Equal(t, int64(3), third.ID)
}

func TestUpdateLead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lead := f.newLead(t, "maria@example.com")

	updated, err := f.updateLead.Execute(ctx, seller, lead.ID, usecase.UpdateLeadInput{
		Phone: strPtr("555-0199"),
		Name:  strPtr("Maria Silva"),
	})
	require.NoError(t, err)
	assert.Equal(t, "555-0199", updated.Phone)
	assert.Contains(t, noteTexts(updated.Notes), `Updated phone from "555-0100" to "555-0199"`)
	assert.Len(t, updated.Notes, 2, "só o campo que mudou ganha nota")

	_, err = f.updateLead.Execute(ctx, seller, lead.ID, usecase.UpdateLeadInput{Phone: strPtr("555-0199")})
	assert.Equal(t, usecase.CodeNoChange, usecase.ErrorCode(err))

	_, err = f.updateLead.Execute(ctx, seller, 99, usecase.UpdateLeadInput{Phone: strPtr("1")})
	assert.Equal(t, usecase.CodeNotFound, usecase.ErrorCode(err))
}

func TestUpdateLeadEmailConflict(t *testing.T) {
	f := newFixture(t)
	a := f.newLead(t, "a@example.com")
	f.newLead(t, "b@example.com")

	_, err := f.updateLead.Execute(context.Background(), seller, a.ID, usecase.UpdateLeadInput{Email: strPtr("B@example.com")})
	assert.Equal(t, usecase.CodeConflict, usecase.ErrorCode(err))
}

// TestUpdateLeadCascadesBillingAddress - endereço comercial novo vira endereço de cobrança da venda
func TestUpdateLeadCascadesBillingAddress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sale := f.newSale(t)

	_, err := f.updateLead.Execute(ctx, seller, sale.LeadID, usecase.UpdateLeadInput{BusinessAddress: strPtr("2 Market St")})
	require.NoError(t, err)

	stored, err := f.query.GetSale(ctx, seller, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, "2 Market St", stored.BillingAddress)
	assert.Equal(t, "1 Main St", stored.BusinessAddress, "cópia tirada na criação não muda")
	assert.Contains(t, noteTexts(stored.Notes), `Billing address updated from "" to "2 Market St" after lead #1 business address change`)

	// Outros campos do lead não tocam na venda.
	_, err = f.updateLead.Execute(ctx, seller, sale.LeadID, usecase.UpdateLeadInput{Phone: strPtr("555-0000")})
	require.NoError(t, err)
	again, err := f.query.GetSale(ctx, seller, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, stored.Notes, again.Notes)
	assert.Equal(t, "555-0100", again.Phone)
}

func TestAddImportantDate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lead := f.newLead(t, "maria@example.com")

	got, err := f.dates.Execute(ctx, seller, lead.ID, usecase.AddImportantDateInput{Date: "2026-05-01T10:00:00Z"})
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-05-01"}, got.ImportantDates)
	assert.Contains(t, noteTexts(got.Notes), "Important date added: 2026-05-01")

	again, err := f.dates.Execute(ctx, seller, lead.ID, usecase.AddImportantDateInput{Date: "2026-05-01"})
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-05-01"}, again.ImportantDates)
	assert.Len(t, again.Notes, len(got.Notes))

	_, err = f.dates.Execute(ctx, seller, lead.ID, usecase.AddImportantDateInput{Date: "01/05/2026"})
	assert.Equal(t, usecase.CodeInvalidInput, usecase.ErrorCode(err))
}

func TestAddNote(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sale := f.newSale(t)

	note, err := f.addNote.Execute(ctx, seller, entity.NoteEntitySale, sale.ID, usecase.AddNoteInput{Text: "  cliente pediu boleto  "})
	require.NoError(t, err)
	assert.Equal(t, "cliente pediu boleto", note.Text)
	assert.Equal(t, seller.Ref(), note.CreatedBy)

	stored, err := f.query.GetSale(ctx, seller, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, "cliente pediu boleto", stored.Notes[len(stored.Notes)-1].Text)

	_, err = f.addNote.Execute(ctx, seller, entity.NoteEntityLead, sale.LeadID, usecase.AddNoteInput{Text: "ligar amanhã"})
	require.NoError(t, err)
	lead, err := f.query.GetLead(ctx, seller, sale.LeadID)
	require.NoError(t, err)
	assert.Equal(t, "ligar amanhã", lead.Notes[len(lead.Notes)-1].Text)

	_, err = f.addNote.Execute(ctx, seller, entity.NoteEntityLead, sale.LeadID, usecase.AddNoteInput{Text: "   "})
	assert.Equal(t, usecase.CodeInvalidInput, usecase.ErrorCode(err))

	_, err = f.addNote.Execute(ctx, seller, entity.NoteEntitySale, 77, usecase.AddNoteInput{Text: "x"})
	assert.Equal(t, usecase.CodeNotFound, usecase.ErrorCode(err))
}

func TestQueriesRequireSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sale := f.newSale(t)

	_, err := f.query.GetLead(ctx, nil, sale.LeadID)
	assert.Equal(t, usecase.CodeUnauthorized, usecase.ErrorCode(err))

	got, err := f.query.GetSaleByLead(ctx, seller, sale.LeadID)
	require.NoError(t, err)
	assert.Equal(t, sale.ID, got.ID)

	_, err = f.query.GetSaleByLead(ctx, seller, 99)
	assert.Equal(t, usecase.CodeNotFound, usecase.ErrorCode(err))
}
