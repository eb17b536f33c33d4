package entity

import (
	"context"
	"encoding/json"
	"slices"
	"time"
)

type PaymentType string

const (
	PaymentTypeRecurring PaymentType = "Recurring"
	PaymentTypeOneTime   PaymentType = "One-time"
)

func (t PaymentType) Valid() bool {
	return t == PaymentTypeRecurring || t == PaymentTypeOneTime
}

// MarshalJSON escreve null para o tipo ainda não definido.
func (t PaymentType) MarshalJSON() ([]byte, error) {
	if t == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(t))
}

func (t *PaymentType) UnmarshalJSON(b []byte) error {
	var s *string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*t = ""
	if s != nil {
		*t = PaymentType(*s)
	}
	return nil
}

type PaymentMethod string

const (
	PaymentMethodCreditCard   PaymentMethod = "Credit Card"
	PaymentMethodBankTransfer PaymentMethod = "Bank Transfer"
	PaymentMethodPayPal       PaymentMethod = "PayPal"
	PaymentMethodOther        PaymentMethod = "Other"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCreditCard, PaymentMethodBankTransfer, PaymentMethodPayPal, PaymentMethodOther:
		return true
	}
	return false
}

func (m PaymentMethod) MarshalJSON() ([]byte, error) {
	if m == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(m))
}

func (m *PaymentMethod) UnmarshalJSON(b []byte) error {
	var s *string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*m = ""
	if s != nil {
		*m = PaymentMethod(*s)
	}
	return nil
}

type SaleStatus string

const (
	SaleStatusPending     SaleStatus = "Pending"
	SaleStatusCompleted   SaleStatus = "Completed"
	SaleStatusFailed      SaleStatus = "Failed"
	SaleStatusRefunded    SaleStatus = "Refunded"
	SaleStatusPartPayment SaleStatus = "PartPayment"
)

func (s SaleStatus) Valid() bool {
	switch s {
	case SaleStatusPending, SaleStatusCompleted, SaleStatusFailed, SaleStatusRefunded, SaleStatusPartPayment:
		return true
	}
	return false
}

// DeriveStatus é o status de uma venda logo após uma atualização de pagamento.
func DeriveStatus(t PaymentType) SaleStatus {
	if t == PaymentTypeRecurring {
		return SaleStatusPartPayment
	}
	return SaleStatusCompleted
}

// Placeholders exibidos enquanto a venda ainda não tem cartão.
const (
	CardPlaceholder = "****"
	ExpPlaceholder  = "MM/YY"
	CVVPlaceholder  = "***"
)

// PartialPayment é uma parcela paga dentro do contrato vigente.
type PartialPayment struct {
	Amount      float64   `json:"amount"`
	PaymentDate time.Time `json:"paymentDate"`
	CreatedAt   time.Time `json:"createdAt"`
	CreatedBy   *string   `json:"createdBy"`
}

// Contract agrupa os campos de pagamento do período vigente. É exatamente o que vai
// para previousContracts quando o período vence.
type Contract struct {
	TotalAmount     float64          `json:"totalAmount"`
	PaymentType     PaymentType      `json:"paymentType"`
	ContractTerm    int              `json:"contractTerm"`
	PaymentMethod   PaymentMethod    `json:"paymentMethod"`
	Card            string           `json:"card"`
	Exp             string           `json:"exp"`
	CVV             string           `json:"cvv"`
	PaymentDate     *time.Time       `json:"paymentDate"`
	ContractEndDate *time.Time       `json:"contractEndDate"`
	PartialPayments []PartialPayment `json:"partialPayments"`
}

func (c Contract) Clone() Contract {
	out := c
	out.PartialPayments = slices.Clone(c.PartialPayments)
	if out.PartialPayments == nil {
		out.PartialPayments = []PartialPayment{}
	}
	if c.PaymentDate != nil {
		d := *c.PaymentDate
		out.PaymentDate = &d
	}
	if c.ContractEndDate != nil {
		d := *c.ContractEndDate
		out.ContractEndDate = &d
	}
	return out
}

// ArchivedContract é imutável depois de gravado.
type ArchivedContract struct {
	Contract
	ArchivedAt time.Time `json:"archivedAt"`
}

type Sale struct {
	ID              int64  `json:"saleId"`
	LeadID          int64  `json:"leadId"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	BusinessName    string `json:"businessName"`
	BusinessAddress string `json:"businessAddress"`
	BillingAddress  string `json:"billingAddress"`

	Contract

	Status            SaleStatus         `json:"status"`
	PreviousContracts []ArchivedContract `json:"previousContracts"`
	Notes             []Note             `json:"notes"`

	Version   int       `json:"-"`
	CreatedBy *string   `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewDraftSale cria a venda em rascunho a partir de uma cópia dos dados do lead.
// A cópia não acompanha edições futuras do lead.
func NewDraftSale(id int64, lead *Lead, createdBy *string, now time.Time) *Sale {
	return &Sale{
		ID:              id,
		LeadID:          lead.ID,
		Name:            lead.Name,
		Email:           lead.Email,
		Phone:           lead.Phone,
		BusinessName:    lead.BusinessName,
		BusinessAddress: lead.BusinessAddress,
		Contract: Contract{
			TotalAmount:     0,
			Card:            CardPlaceholder,
			Exp:             ExpPlaceholder,
			CVV:             CVVPlaceholder,
			PartialPayments: []PartialPayment{},
		},
		Status:            SaleStatusPending,
		PreviousContracts: []ArchivedContract{},
		Notes:             []Note{},
		CreatedBy:         createdBy,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// ApplyRollover roda o motor de renovação sobre o contrato atual e grava o período
// vencido no histórico. Um mesmo fim de contrato nunca é arquivado duas vezes.
func (s *Sale) ApplyRollover(in RolloverInput, now time.Time) *ArchivedContract {
	next, archived := Rollover(s.Contract, in, now)
	s.PartialPayments = next.PartialPayments
	s.ContractEndDate = next.ContractEndDate

	if archived == nil || s.alreadyArchived(archived.ContractEndDate) {
		return nil
	}
	s.PreviousContracts = append(s.PreviousContracts, *archived)
	return archived
}

func (s *Sale) alreadyArchived(end *time.Time) bool {
	if len(s.PreviousContracts) == 0 || end == nil {
		return false
	}
	last := s.PreviousContracts[len(s.PreviousContracts)-1]
	return last.ContractEndDate != nil && last.ContractEndDate.Equal(*end)
}

// ConfirmPayment recalcula o status derivado e a data do último pagamento.
func (s *Sale) ConfirmPayment(paymentDate time.Time) {
	s.Status = DeriveStatus(s.PaymentType)
	s.PaymentDate = &paymentDate
}

func (s *Sale) Clone() *Sale {
	c := *s
	c.Contract = s.Contract.Clone()
	c.PreviousContracts = make([]ArchivedContract, len(s.PreviousContracts))
	for i, p := range s.PreviousContracts {
		c.PreviousContracts[i] = ArchivedContract{Contract: p.Contract.Clone(), ArchivedAt: p.ArchivedAt}
	}
	c.Notes = slices.Clone(s.Notes)
	if c.Notes == nil {
		c.Notes = []Note{}
	}
	return &c
}

type SaleRepositoryInterface interface {
	Create(ctx context.Context, sale *Sale) error
	FindByID(ctx context.Context, id int64) (*Sale, error)
	FindByIDForUpdate(ctx context.Context, id int64) (*Sale, error)
	FindByLeadID(ctx context.Context, leadID int64) (*Sale, error)
	Update(ctx context.Context, sale *Sale) error
	ListContractsEndingBetween(ctx context.Context, from, to time.Time) ([]*Sale, error)
}
