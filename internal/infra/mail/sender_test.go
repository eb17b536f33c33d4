package mail

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

func TestRenderSaleNotification(t *testing.T) {
	end := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	evt := entity.SaleEvent{
		Type:            entity.SaleEventPaymentConfirmed,
		SaleID:          12,
		LeadID:          4,
		CustomerName:    "Maria Silva",
		BusinessName:    "Bakery",
		TotalAmount:     500,
		PaymentType:     entity.PaymentTypeOneTime,
		ContractTerm:    6,
		ContractEndDate: &end,
		Actor:           "Ana",
		OccurredAt:      time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	}

	subject, body, err := RenderSaleNotification(evt)
	require.NoError(t, err)
	assert.Equal(t, "[CRM] Payment confirmed: sale #12", subject)
	assert.Contains(t, body, "Sale #12 (lead #4)")
	assert.Contains(t, body, "Customer: Maria Silva / Bakery")
	assert.Contains(t, body, "Amount: $500.00")
	assert.Contains(t, body, "Payment type: One-time")
	assert.Contains(t, body, "Payment method: not set")
	assert.Contains(t, body, "Contract ends: 2026-09-01")
	assert.Contains(t, body, "By: Ana at 2026-03-10 12:00 UTC")
}

func TestRenderSaleNotificationDraft(t *testing.T) {
	subject, body, err := RenderSaleNotification(entity.SaleEvent{Type: entity.SaleEventCreated, SaleID: 1, CustomerName: "Joao"})
	require.NoError(t, err)
	assert.Equal(t, "[CRM] New sale created: sale #1", subject)
	assert.Contains(t, body, "Customer: Joao\n")
	assert.Contains(t, body, "Contract ends: n/a")
}

func TestSendSaleNotificationCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewEmailSender("localhost", 2525, "", "", "crm@example.com", "vendas@example.com")
	assert.ErrorIs(t, s.SendSaleNotification(ctx, entity.SaleEvent{Type: entity.SaleEventCreated}), context.Canceled)
}
