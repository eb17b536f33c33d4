package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

// Publisher é a parte do *amqp.Channel usada pelo producer.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type RabbitMQProducer struct {
	Ch Publisher
}

func NewProducer(ch Publisher) *RabbitMQProducer {
	return &RabbitMQProducer{Ch: ch}
}

// PublishSaleEvent usa o tipo do evento como routing key (sale.created, ...).
func (p *RabbitMQProducer) PublishSaleEvent(ctx context.Context, evt entity.SaleEvent) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("erro ao converter evento: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		string(evt.Type),
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Type:         string(evt.Type),
			Timestamp:    evt.OccurredAt,
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("falha ao publicar no RabbitMQ: %w", err)
	}
	return nil
}
