package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type UpdateSaleUseCase struct {
	Tx     TxManager
	Sales  SaleRepositoryInterface
	Notes  NoteRepositoryInterface
	Events EventPublisher
	Clock  Clock
}

func NewUpdateSaleUseCase(tx TxManager, sales SaleRepositoryInterface, notes NoteRepositoryInterface, events EventPublisher) *UpdateSaleUseCase {
	return &UpdateSaleUseCase{
		Tx:     tx,
		Sales:  sales,
		Notes:  notes,
		Events: events,
	}
}

// Execute aplica o patch de pagamento/contrato. A ordem é fixa:
// validação do payload, leitura com lock, regras contra o estado anterior,
// renovação do contrato, merge dos campos, status derivado, gravação e notas.
func (uc *UpdateSaleUseCase) Execute(ctx context.Context, actor *Actor, saleID int64, input UpdateSaleInput) (*UpdateSaleOutput, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if errs := ValidateUpdateSaleInput(input); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	now := uc.Clock.now()

	installments, err := toInstallments(input.PartialPayments, actor, now)
	if err != nil {
		return nil, invalidInput(err.Error())
	}
	var paymentDate *time.Time
	if input.PaymentDate != nil {
		d, err := parseDate(*input.PaymentDate)
		if err != nil {
			return nil, invalidInput("paymentDate: " + err.Error())
		}
		paymentDate = &d
	}

	out := &UpdateSaleOutput{}
	err = uc.Tx.WithinTx(ctx, func(ctx context.Context) error {
		sale, err := uc.Sales.FindByIDForUpdate(ctx, saleID)
		if err != nil {
			return err
		}

		previous := sale.Contract.Clone()
		term := *input.ContractTerm

		totalAmount := sale.TotalAmount
		if input.TotalAmount != nil {
			totalAmount = *input.TotalAmount
		}
		paymentType := sale.PaymentType
		if input.PaymentType.Set {
			paymentType = input.PaymentType.Value
		}

		gate := entity.PaymentGateInput{
			TotalAmount:  totalAmount,
			ContractTerm: term,
		}
		if input.PaymentType.Present() {
			gate.DeclaredType = input.PaymentType.Value
		}
		for _, p := range installments {
			gate.Installments = append(gate.Installments, p.Amount)
		}
		if err := entity.CheckPaymentGate(previous, gate, now); err != nil {
			return err
		}

		archived := sale.ApplyRollover(entity.RolloverInput{
			PaymentType:     paymentType,
			ContractTerm:    term,
			PaymentDate:     paymentDate,
			NewInstallments: installments,
		}, now)

		detailChanges := mergeSaleFields(sale, input, totalAmount, paymentType, term)

		if err := entity.CheckLedger(sale.Contract); err != nil {
			return err
		}

		// contractTerm é obrigatório, então o status do patch nunca é gravado: sai do paymentType.
		if input.touchesPayment() {
			confirmedAt := now
			if paymentDate != nil {
				confirmedAt = *paymentDate
			}
			sale.ConfirmPayment(confirmedAt)
		}
		sale.UpdatedAt = now

		if err := uc.Sales.Update(ctx, sale); err != nil {
			return err
		}

		if err := uc.writeNotes(ctx, actor, sale, input, archived, installments, detailChanges, now); err != nil {
			return err
		}

		out.Sale, out.Archived = sale, archived
		return nil
	})
	if err != nil {
		return nil, translateError(err)
	}

	if out.Archived != nil {
		publishSaleEvent(ctx, uc.Events, entity.NewSaleEvent(entity.SaleEventContractArchived, out.Sale, actor.DisplayName(), now))
	}
	if input.touchesPayment() {
		publishSaleEvent(ctx, uc.Events, entity.NewSaleEvent(entity.SaleEventPaymentConfirmed, out.Sale, actor.DisplayName(), now))
	}
	return out, nil
}

func (uc *UpdateSaleUseCase) writeNotes(
	ctx context.Context,
	actor *Actor,
	sale *entity.Sale,
	input UpdateSaleInput,
	archived *entity.ArchivedContract,
	installments []entity.PartialPayment,
	detailChanges []string,
	now time.Time,
) error {
	by := actor.Ref()
	var texts []string

	if archived != nil {
		texts = append(texts, fmt.Sprintf("Contract ending %s archived; new contract period started",
			formatDate(archived.ContractEndDate)))
	}
	if len(detailChanges) > 0 {
		texts = append(texts, "Sale details updated: "+strings.Join(detailChanges, ", "))
	}

	if input.touchesPayment() {
		summary := paymentSummary(sale, installments)
		// As duas notas espelham a confirmação em duas etapas da tela de pagamento.
		texts = append(texts,
			"Payment details updated: "+summary,
			fmt.Sprintf("Payment confirmed by %s: %s", actor.DisplayName(), summary),
		)
	}
	if input.touchesCard() {
		texts = append(texts, fmt.Sprintf("Card details updated by %s", actor.DisplayName()))
	}

	for _, text := range texts {
		if err := appendSaleNote(ctx, uc.Notes, sale, text, by, now); err != nil {
			return err
		}
	}
	return nil
}

// mergeSaleFields aplica só o que veio no patch e devolve os campos de cadastro alterados.
func mergeSaleFields(sale *entity.Sale, input UpdateSaleInput, totalAmount float64, paymentType entity.PaymentType, term int) []string {
	var changed []string
	setString := func(field string, dst *string, v *string) {
		if v != nil && *dst != *v {
			*dst = *v
			changed = append(changed, field)
		}
	}
	setString("name", &sale.Name, input.Name)
	setString("email", &sale.Email, input.Email)
	setString("phone", &sale.Phone, input.Phone)
	setString("businessName", &sale.BusinessName, input.BusinessName)
	setString("businessAddress", &sale.BusinessAddress, input.BusinessAddress)
	setString("billingAddress", &sale.BillingAddress, input.BillingAddress)

	sale.TotalAmount = totalAmount
	sale.PaymentType = paymentType
	sale.ContractTerm = term
	if input.PaymentMethod.Set {
		sale.PaymentMethod = input.PaymentMethod.Value
	}
	if input.Card != nil {
		sale.Card = *input.Card
	}
	if input.Exp != nil {
		sale.Exp = *input.Exp
	}
	if input.CVV != nil {
		sale.CVV = *input.CVV
	}
	return changed
}

func toInstallments(in []PartialPaymentInput, actor *Actor, now time.Time) ([]entity.PartialPayment, error) {
	out := make([]entity.PartialPayment, 0, len(in))
	for i, p := range in {
		d, err := parseDate(p.PaymentDate)
		if err != nil {
			return nil, fmt.Errorf("partialPayments[%d].paymentDate: %w", i, err)
		}
		out = append(out, entity.PartialPayment{
			Amount:      p.Amount,
			PaymentDate: d,
			CreatedAt:   now,
			CreatedBy:   actor.Ref(),
		})
	}
	return out, nil
}

func paymentSummary(sale *entity.Sale, installments []entity.PartialPayment) string {
	parts := []string{
		fmt.Sprintf("amount $%.2f", sale.TotalAmount),
		"method " + orNone(string(sale.PaymentMethod)),
		"type " + orNone(string(sale.PaymentType)),
		fmt.Sprintf("term %d months", sale.ContractTerm),
		"contract ends " + formatDate(sale.ContractEndDate),
	}
	for _, p := range installments {
		parts = append(parts, fmt.Sprintf("installment $%.2f paid on %s", p.Amount, p.PaymentDate.Format("2006-01-02")))
	}
	return strings.Join(parts, ", ")
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "n/a"
	}
	return t.Format("2006-01-02")
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
