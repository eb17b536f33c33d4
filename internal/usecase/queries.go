package usecase

import (
	"context"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

// QueryUseCase agrupa as leituras simples de lead e venda.
type QueryUseCase struct {
	Leads LeadRepositoryInterface
	Sales SaleRepositoryInterface
}

func NewQueryUseCase(leads LeadRepositoryInterface, sales SaleRepositoryInterface) *QueryUseCase {
	return &QueryUseCase{Leads: leads, Sales: sales}
}

func (uc *QueryUseCase) GetLead(ctx context.Context, actor *Actor, id int64) (*entity.Lead, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	lead, err := uc.Leads.FindByID(ctx, id)
	if err != nil {
		return nil, translateError(err)
	}
	return lead, nil
}

func (uc *QueryUseCase) GetSale(ctx context.Context, actor *Actor, id int64) (*entity.Sale, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	sale, err := uc.Sales.FindByID(ctx, id)
	if err != nil {
		return nil, translateError(err)
	}
	return sale, nil
}

func (uc *QueryUseCase) GetSaleByLead(ctx context.Context, actor *Actor, leadID int64) (*entity.Sale, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	sale, err := uc.Sales.FindByLeadID(ctx, leadID)
	if err != nil {
		return nil, translateError(err)
	}
	return sale, nil
}
