package usecase

import (
	"encoding/json"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

// Optional distingue campo ausente, null explícito e valor.
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

func Null[T any]() Optional[T] {
	return Optional[T]{Set: true, Null: true}
}

func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		var zero T
		o.Null, o.Value = true, zero
		return nil
	}
	o.Null = false
	return json.Unmarshal(b, &o.Value)
}

// Present indica que o pedido trouxe um valor não nulo.
func (o Optional[T]) Present() bool {
	return o.Set && !o.Null
}

type PartialPaymentInput struct {
	Amount      float64 `json:"amount" validate:"gt=0"`
	PaymentDate string  `json:"paymentDate" validate:"required,isodate"`
}

// UpdateSaleInput é o patch da venda: campos ausentes mantêm o valor atual.
// contractTerm é obrigatório em todo update.
type UpdateSaleInput struct {
	Name            *string `json:"name" validate:"omitnil,min=1,max=200"`
	Email           *string `json:"email" validate:"omitnil,email"`
	Phone           *string `json:"phone" validate:"omitnil,max=40"`
	BusinessName    *string `json:"businessName" validate:"omitnil,max=200"`
	BusinessAddress *string `json:"businessAddress" validate:"omitnil,max=500"`
	BillingAddress  *string `json:"billingAddress" validate:"omitnil,max=500"`

	Card *string `json:"card" validate:"omitnil,cardnumber"`
	Exp  *string `json:"exp" validate:"omitnil,cardexp"`
	CVV  *string `json:"cvv" validate:"omitnil,cvv"`

	TotalAmount   *float64                       `json:"totalAmount" validate:"omitnil,gte=0"`
	PaymentType   Optional[entity.PaymentType]   `json:"paymentType"`
	PaymentMethod Optional[entity.PaymentMethod] `json:"paymentMethod"`
	ContractTerm  *int                           `json:"contractTerm" validate:"required,gt=0"`
	Status        *entity.SaleStatus             `json:"status"`

	PaymentDate     *string               `json:"paymentDate" validate:"omitnil,isodate"`
	PartialPayments []PartialPaymentInput `json:"partialPayments" validate:"dive"`
}

func (in UpdateSaleInput) touchesPayment() bool {
	return len(in.PartialPayments) > 0 ||
		in.TotalAmount != nil ||
		in.PaymentMethod.Set ||
		in.PaymentType.Set ||
		in.ContractTerm != nil ||
		in.touchesCard()
}

func (in UpdateSaleInput) touchesCard() bool {
	return in.Card != nil || in.Exp != nil || in.CVV != nil
}

type UpdateSaleOutput struct {
	Sale     *entity.Sale             `json:"sale"`
	Archived *entity.ArchivedContract `json:"archived,omitempty"`
}

type SetDispositionInput struct {
	Disposition entity.Disposition `json:"disposition"`
}

type SetDispositionOutput struct {
	Lead        *entity.Lead `json:"lead"`
	Sale        *entity.Sale `json:"sale,omitempty"`
	SaleCreated bool         `json:"saleCreated"`
}

type CreateLeadInput struct {
	Name            string `json:"name" validate:"required,min=2,max=200"`
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone" validate:"omitempty,max=40"`
	BusinessName    string `json:"businessName" validate:"omitempty,max=200"`
	BusinessAddress string `json:"businessAddress" validate:"omitempty,max=500"`
}

type UpdateLeadInput struct {
	Name            *string `json:"name" validate:"omitnil,min=2,max=200"`
	Email           *string `json:"email" validate:"omitnil,email"`
	Phone           *string `json:"phone" validate:"omitnil,max=40"`
	BusinessName    *string `json:"businessName" validate:"omitnil,max=200"`
	BusinessAddress *string `json:"businessAddress" validate:"omitnil,max=500"`
}

type AddNoteInput struct {
	Text string `json:"text" validate:"required,max=2000"`
}

type AddImportantDateInput struct {
	Date string `json:"date" validate:"required,isodate"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginOutput struct {
	Token string       `json:"token"`
	User  *entity.User `json:"user"`
}

type CreateUserInput struct {
	Name     string      `json:"name" validate:"required,min=2,max=200"`
	Email    string      `json:"email" validate:"required,email"`
	Password string      `json:"password" validate:"required,min=8"`
	Role     entity.Role `json:"role" validate:"required,oneof=admin sales"`
}
