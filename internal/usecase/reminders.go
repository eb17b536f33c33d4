package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

const reminderActor = "reminder"

// ContractExpiryReminderUseCase avisa sobre contratos que terminam daqui a DaysAhead dias.
// Roda uma vez por dia: a janela é o dia-calendário (UTC) alvo inteiro.
type ContractExpiryReminderUseCase struct {
	Sales     SaleRepositoryInterface
	Events    EventPublisher
	DaysAhead int
	Clock     Clock
}

func NewContractExpiryReminderUseCase(sales SaleRepositoryInterface, events EventPublisher, daysAhead int) *ContractExpiryReminderUseCase {
	return &ContractExpiryReminderUseCase{Sales: sales, Events: events, DaysAhead: daysAhead}
}

// Execute publica um sale.contract_expiring por venda da janela e devolve quantos saíram.
func (uc *ContractExpiryReminderUseCase) Execute(ctx context.Context) (int, error) {
	now := uc.Clock.now()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	from := day.AddDate(0, 0, uc.DaysAhead)
	to := from.AddDate(0, 0, 1)

	sales, err := uc.Sales.ListContractsEndingBetween(ctx, from, to)
	if err != nil {
		return 0, translateError(fmt.Errorf("erro ao buscar contratos a vencer: %w", err))
	}

	sent := 0
	for _, s := range sales {
		if err := uc.Events.PublishSaleEvent(ctx, entity.NewSaleEvent(entity.SaleEventContractExpiring, s, reminderActor, now)); err != nil {
			log.Printf("⚠️ Lembrete da venda #%d não publicado: %v", s.ID, err)
			continue
		}
		sent++
	}
	return sent, nil
}
