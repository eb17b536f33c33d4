package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

func appendLeadNote(ctx context.Context, repo NoteRepositoryInterface, lead *entity.Lead, text string, by *string, now time.Time) error {
	note := entity.NewNote(text, by, now)
	if err := repo.Append(ctx, entity.NoteEntityLead, lead.ID, note); err != nil {
		return fmt.Errorf("erro ao gravar nota do lead %d: %w", lead.ID, err)
	}
	lead.Notes = append(lead.Notes, note)
	return nil
}

func appendSaleNote(ctx context.Context, repo NoteRepositoryInterface, sale *entity.Sale, text string, by *string, now time.Time) error {
	note := entity.NewNote(text, by, now)
	if err := repo.Append(ctx, entity.NoteEntitySale, sale.ID, note); err != nil {
		return fmt.Errorf("erro ao gravar nota da venda %d: %w", sale.ID, err)
	}
	sale.Notes = append(sale.Notes, note)
	return nil
}

// publishSaleEvent roda depois do commit. Falha na fila não desfaz a operação.
func publishSaleEvent(ctx context.Context, pub EventPublisher, evt entity.SaleEvent) {
	if pub == nil {
		return
	}
	if err := pub.PublishSaleEvent(ctx, evt); err != nil {
		log.Printf("⚠️ Venda #%d gravada, mas falha ao publicar %s: %v", evt.SaleID, evt.Type, err)
	}
}

// AddNoteUseCase grava uma nota manual em um lead ou em uma venda.
type AddNoteUseCase struct {
	Tx    TxManager
	Leads LeadRepositoryInterface
	Sales SaleRepositoryInterface
	Notes NoteRepositoryInterface
	Clock Clock
}

func NewAddNoteUseCase(tx TxManager, leads LeadRepositoryInterface, sales SaleRepositoryInterface, notes NoteRepositoryInterface) *AddNoteUseCase {
	return &AddNoteUseCase{Tx: tx, Leads: leads, Sales: sales, Notes: notes}
}

func (uc *AddNoteUseCase) Execute(ctx context.Context, actor *Actor, kind entity.NoteEntity, id int64, input AddNoteInput) (*entity.Note, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	input.Text = strings.TrimSpace(input.Text)
	if errs := validateStruct(input); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	now := uc.Clock.now()
	note := entity.NewNote(input.Text, actor.Ref(), now)

	err := uc.Tx.WithinTx(ctx, func(ctx context.Context) error {
		// Confere que o agregado existe antes de anexar.
		switch kind {
		case entity.NoteEntityLead:
			if _, err := uc.Leads.FindByIDForUpdate(ctx, id); err != nil {
				return err
			}
		case entity.NoteEntitySale:
			if _, err := uc.Sales.FindByIDForUpdate(ctx, id); err != nil {
				return err
			}
		default:
			return invalidInput(fmt.Sprintf("unknown note target %q", kind))
		}
		return uc.Notes.Append(ctx, kind, id, note)
	})
	if err != nil {
		return nil, translateError(err)
	}
	return &note, nil
}
