package entity

import "time"

type SaleEventType string

const (
	SaleEventCreated          SaleEventType = "sale.created"
	SaleEventPaymentConfirmed SaleEventType = "sale.payment_confirmed"
	SaleEventContractArchived SaleEventType = "sale.contract_archived"
	SaleEventContractExpiring SaleEventType = "sale.contract_expiring"
)

// SaleEvent é publicado na fila depois do commit. Carrega só o necessário para
// notificar o time comercial.
type SaleEvent struct {
	Type            SaleEventType `json:"type"`
	SaleID          int64         `json:"sale_id"`
	LeadID          int64         `json:"lead_id"`
	CustomerName    string        `json:"customer_name"`
	BusinessName    string        `json:"business_name"`
	TotalAmount     float64       `json:"total_amount"`
	PaymentType     PaymentType   `json:"payment_type"`
	PaymentMethod   PaymentMethod `json:"payment_method"`
	ContractTerm    int           `json:"contract_term"`
	ContractEndDate *time.Time    `json:"contract_end_date,omitempty"`
	Actor           string        `json:"actor"`
	OccurredAt      time.Time     `json:"occurred_at"`
}

func NewSaleEvent(t SaleEventType, s *Sale, actor string, now time.Time) SaleEvent {
	return SaleEvent{
		Type:            t,
		SaleID:          s.ID,
		LeadID:          s.LeadID,
		CustomerName:    s.Name,
		BusinessName:    s.BusinessName,
		TotalAmount:     s.TotalAmount,
		PaymentType:     s.PaymentType,
		PaymentMethod:   s.PaymentMethod,
		ContractTerm:    s.ContractTerm,
		ContractEndDate: s.ContractEndDate,
		Actor:           actor,
		OccurredAt:      now,
	}
}
