package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

// SaleLeadSync espelha o endereço comercial do lead no endereço de cobrança da venda.
// Os demais dados da venda são uma cópia tirada na criação e não acompanham o lead.
type SaleLeadSync struct {
	Sales SaleRepositoryInterface
	Notes NoteRepositoryInterface
	Clock Clock
}

func NewSaleLeadSync(sales SaleRepositoryInterface, notes NoteRepositoryInterface) *SaleLeadSync {
	return &SaleLeadSync{Sales: sales, Notes: notes}
}

func (h *SaleLeadSync) HandleLeadFieldsChanged(ctx context.Context, actor *Actor, evt entity.LeadFieldsChanged) error {
	change, ok := evt.Change("businessAddress")
	if !ok {
		return nil
	}

	linked, err := h.Sales.FindByLeadID(ctx, evt.LeadID)
	if errors.Is(err, entity.ErrSaleNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	sale, err := h.Sales.FindByIDForUpdate(ctx, linked.ID)
	if err != nil {
		return err
	}
	if sale.BillingAddress == change.New {
		return nil
	}

	now := h.Clock.now()
	old := sale.BillingAddress
	sale.BillingAddress = change.New
	sale.UpdatedAt = now
	if err := h.Sales.Update(ctx, sale); err != nil {
		return err
	}

	text := fmt.Sprintf("Billing address updated from %q to %q after lead #%d business address change", old, change.New, evt.LeadID)
	return appendSaleNote(ctx, h.Notes, sale, text, actor.Ref(), now)
}
