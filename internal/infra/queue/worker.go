package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

// Notifier avisa o time comercial sobre um evento de venda.
type Notifier interface {
	SendSaleNotification(ctx context.Context, evt entity.SaleEvent) error
}

// Consumer é a parte do *amqp.Channel usada pelo worker.
type Consumer interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

type Worker struct {
	Channel  Consumer
	Notifier Notifier
}

func NewWorker(ch Consumer, notifier Notifier) *Worker {
	return &Worker{
		Channel:  ch,
		Notifier: notifier,
	}
}

// Start consome a fila até o contexto ser cancelado ou o canal fechar.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.Channel.Consume(
		queueName,
		"crm-worker",
		false, // ack manual
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("falha ao registrar consumidor RabbitMQ: %w", err)
	}

	log.Printf(" [*] Worker rodando e aguardando na fila '%s'", queueName)
	for {
		select {
		case <-ctx.Done():
			log.Printf("🛑 [WORKER] Encerrando consumo da fila '%s'", queueName)
			return nil
		case d, ok := <-msgs:
			if !ok {
				return fmt.Errorf("canal de consumo da fila %s foi fechado", queueName)
			}
			w.handle(ctx, d)
		}
	}
}

// handle confirma em caso de sucesso. Mensagem inválida ou falha de envio vai para a DLQ.
func (w *Worker) handle(ctx context.Context, d amqp.Delivery) {
	var evt entity.SaleEvent
	if err := json.Unmarshal(d.Body, &evt); err != nil {
		log.Printf("❌ [WORKER] JSON Inválido: %s", err)
		d.Nack(false, false)
		return
	}

	log.Printf("📥 [WORKER] %s da venda #%d", evt.Type, evt.SaleID)

	if err := w.process(ctx, evt); err != nil {
		log.Printf("❌ [WORKER] Falha ao notificar %s da venda #%d: %s", evt.Type, evt.SaleID, err)
		d.Nack(false, false)
		return
	}
	d.Ack(false)
}

func (w *Worker) process(ctx context.Context, evt entity.SaleEvent) error {
	switch evt.Type {
	case entity.SaleEventCreated, entity.SaleEventPaymentConfirmed, entity.SaleEventContractArchived, entity.SaleEventContractExpiring:
		if w.Notifier == nil {
			return nil
		}
		return w.Notifier.SendSaleNotification(ctx, evt)
	default:
		log.Printf("⚠️ Evento desconhecido: %s. Apenas logando.", evt.Type)
		return nil
	}
}
