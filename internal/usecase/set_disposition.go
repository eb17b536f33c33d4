package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type SetDispositionUseCase struct {
	Tx       TxManager
	Leads    LeadRepositoryInterface
	Sales    SaleRepositoryInterface
	Notes    NoteRepositoryInterface
	Counters CounterRepositoryInterface
	Events   EventPublisher
	Clock    Clock
}

func NewSetDispositionUseCase(
	tx TxManager,
	leads LeadRepositoryInterface,
	sales SaleRepositoryInterface,
	notes NoteRepositoryInterface,
	counters CounterRepositoryInterface,
	events EventPublisher,
) *SetDispositionUseCase {
	return &SetDispositionUseCase{
		Tx:       tx,
		Leads:    leads,
		Sales:    sales,
		Notes:    notes,
		Counters: counters,
		Events:   events,
	}
}

// Execute muda a disposição do lead. Ao virar "Sale" garante exatamente uma venda
// em rascunho para o lead: o lock na linha do lead serializa chamadas concorrentes
// e o índice único em sales.lead_id barra qualquer duplicata restante.
func (uc *SetDispositionUseCase) Execute(ctx context.Context, actor *Actor, leadID int64, input SetDispositionInput) (*SetDispositionOutput, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if !input.Disposition.Valid() {
		return nil, invalidInput(fmt.Sprintf("disposition must be one of %q, %q, %q",
			entity.DispositionNotInterested, entity.DispositionFollowUp, entity.DispositionSale))
	}

	now := uc.Clock.now()
	out := &SetDispositionOutput{}

	err := uc.Tx.WithinTx(ctx, func(ctx context.Context) error {
		lead, err := uc.Leads.FindByIDForUpdate(ctx, leadID)
		if err != nil {
			return err
		}

		if lead.Disposition == input.Disposition {
			return &DomainError{
				Code:    CodeNoChange,
				Message: fmt.Sprintf("lead is already %q", lead.Disposition),
			}
		}

		previous := lead.Disposition
		lead.Disposition = input.Disposition
		lead.UpdatedAt = now
		if err := uc.Leads.Update(ctx, lead); err != nil {
			return err
		}
		if err := appendLeadNote(ctx, uc.Notes, lead, fmt.Sprintf("Changed status from %q to %q", previous, input.Disposition), actor.Ref(), now); err != nil {
			return err
		}

		out.Lead = lead
		if input.Disposition != entity.DispositionSale {
			return nil
		}

		sale, created, err := uc.ensureSale(ctx, actor, lead, now)
		if err != nil {
			return err
		}
		out.Sale, out.SaleCreated = sale, created
		return nil
	})
	if err != nil {
		return nil, translateError(err)
	}

	if out.SaleCreated {
		publishSaleEvent(ctx, uc.Events, entity.NewSaleEvent(entity.SaleEventCreated, out.Sale, actor.DisplayName(), now))
	}
	return out, nil
}

func (uc *SetDispositionUseCase) ensureSale(ctx context.Context, actor *Actor, lead *entity.Lead, now time.Time) (*entity.Sale, bool, error) {
	existing, err := uc.Sales.FindByLeadID(ctx, lead.ID)
	switch {
	case err == nil:
		text := fmt.Sprintf("Existing sale #%d found for this lead; no new sale was created", existing.ID)
		if err := appendLeadNote(ctx, uc.Notes, lead, text, actor.Ref(), now); err != nil {
			return nil, false, err
		}
		return existing, false, nil
	case !errors.Is(err, entity.ErrSaleNotFound):
		return nil, false, err
	}

	saleID, err := uc.Counters.Next(ctx, entity.SequenceSale)
	if err != nil {
		return nil, false, fmt.Errorf("erro ao gerar saleId: %w", err)
	}

	sale := entity.NewDraftSale(saleID, lead, actor.Ref(), now)
	if err := uc.Sales.Create(ctx, sale); err != nil {
		return nil, false, err
	}

	// Criação automática: a nota da venda não é atribuída a ninguém.
	if err := appendSaleNote(ctx, uc.Notes, sale, fmt.Sprintf("Sale created from lead #%d", lead.ID), nil, now); err != nil {
		return nil, false, err
	}
	if err := appendLeadNote(ctx, uc.Notes, lead, fmt.Sprintf("Sale #%d created for this lead", sale.ID), actor.Ref(), now); err != nil {
		return nil, false, err
	}
	return sale, true, nil
}
