package worker

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Reminder é o job diário de contratos a vencer.
type Reminder interface {
	Execute(ctx context.Context) (int, error)
}

type ContractExpiryWorker struct {
	reminder Reminder
	schedule string
}

// NewContractExpiryWorker agenda o lembrete com uma expressão cron de 5 campos ("0 9 * * *").
func NewContractExpiryWorker(reminder Reminder, schedule string) *ContractExpiryWorker {
	return &ContractExpiryWorker{
		reminder: reminder,
		schedule: schedule,
	}
}

// Start bloqueia até o contexto ser cancelado e espera o job em andamento terminar.
func (w *ContractExpiryWorker) Start(ctx context.Context) error {
	c := cron.New(cron.WithLocation(time.UTC))
	if _, err := c.AddFunc(w.schedule, func() { w.run(ctx) }); err != nil {
		return err
	}

	log.Printf("🕒 Contract Expiry Worker iniciado (%s UTC)", w.schedule)
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	log.Println("⚠️ Contract Expiry Worker encerrado")
	return nil
}

func (w *ContractExpiryWorker) run(ctx context.Context) {
	sent, err := w.reminder.Execute(ctx)
	if err != nil {
		log.Printf("❌ Erro ao processar contratos a vencer: %v", err)
		return
	}
	if sent > 0 {
		log.Printf("✅ %d lembrete(s) de contrato a vencer publicados", sent)
	}
}
