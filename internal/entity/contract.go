package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// PaidAmount soma as parcelas do contrato vigente.
func (c Contract) PaidAmount() decimal.Decimal {
	sum := decimal.Zero
	for _, p := range c.PartialPayments {
		sum = sum.Add(decimal.NewFromFloat(p.Amount))
	}
	return sum
}

func (c Contract) RemainingAmount() decimal.Decimal {
	return decimal.NewFromFloat(c.TotalAmount).Sub(c.PaidAmount())
}

// IsActiveAt indica se o período do contrato ainda não terminou.
func (c Contract) IsActiveAt(now time.Time) bool {
	return c.ContractEndDate != nil && c.ContractEndDate.After(now)
}

// HasLapsedAt indica que o período terminou e precisa ir para o histórico.
func (c Contract) HasLapsedAt(now time.Time) bool {
	return c.ContractEndDate != nil && !c.ContractEndDate.After(now)
}

// ExpectedInstallment é o valor de cada parcela recorrente, arredondado em centavos.
func ExpectedInstallment(total float64, term int) decimal.Decimal {
	if term <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(total).Div(decimal.NewFromInt(int64(term))).Round(2)
}

// PaymentGateInput traz o que o pedido declara. DeclaredType fica vazio quando o
// pedido não informa paymentType.
type PaymentGateInput struct {
	DeclaredType PaymentType
	TotalAmount  float64
	ContractTerm int
	Installments []float64
}

// CheckPaymentGate avalia o pedido contra o estado anterior ao update.
func CheckPaymentGate(current Contract, in PaymentGateInput, now time.Time) error {
	switch in.DeclaredType {
	case PaymentTypeOneTime:
		if current.IsActiveAt(now) {
			return &RuleError{
				Rule: RuleOneTimeLocked,
				Message: fmt.Sprintf("one-time contract cannot be modified until it ends on %s",
					current.ContractEndDate.Format(dateLayout)),
			}
		}

	case PaymentTypeRecurring:
		expected := ExpectedInstallment(in.TotalAmount, in.ContractTerm)
		for _, amount := range in.Installments {
			if !decimal.NewFromFloat(amount).Equal(expected) {
				return &RuleError{
					Rule:    RuleInstallmentMismatch,
					Message: fmt.Sprintf("installment amount must be %s (total / contract term)", expected.StringFixed(2)),
				}
			}
		}
		if current.RemainingAmount().LessThanOrEqual(decimal.Zero) && current.IsActiveAt(now) {
			return &RuleError{
				Rule: RuleContractFullyPaid,
				Message: fmt.Sprintf("contract is fully paid and cannot be renewed before %s",
					current.ContractEndDate.Format(dateLayout)),
			}
		}
	}
	return nil
}

// CheckLedger garante que as parcelas do contrato vigente não passem do total.
func CheckLedger(c Contract) error {
	if c.RemainingAmount().Round(2).IsNegative() {
		return &RuleError{
			Rule: RuleLedgerExceedsTotal,
			Message: fmt.Sprintf("installments (%s) exceed the contract total (%s)",
				c.PaidAmount().StringFixed(2), decimal.NewFromFloat(c.TotalAmount).StringFixed(2)),
		}
	}
	return nil
}

// RolloverInput são os valores já mesclados que o motor precisa.
type RolloverInput struct {
	PaymentType     PaymentType // tipo efetivo depois do update
	ContractTerm    int
	PaymentDate     *time.Time // data informada no pedido, se houver
	NewInstallments []PartialPayment
}

// Rollover decide se o período atual venceu e calcula o novo fim de contrato.
//
// O vencimento é sempre medido contra o fim do período anterior, nunca contra a
// quantidade de parcelas pagas. Quando vence, o contrato atual inteiro é devolvido
// como snapshot para o histórico e o ledger recomeça vazio.
func Rollover(current Contract, in RolloverInput, now time.Time) (Contract, *ArchivedContract) {
	next := current.Clone()

	base := now
	if in.PaymentDate != nil {
		base = *in.PaymentDate
	} else if current.PaymentDate != nil {
		base = *current.PaymentDate
	}

	// Sem parcela nova, o recorrente fica com a data base.
	end := base
	switch in.PaymentType {
	case PaymentTypeRecurring:
		if len(in.NewInstallments) > 0 {
			if current.ContractEndDate != nil {
				end = addMonths(*current.ContractEndDate, 1)
			} else {
				end = addMonths(base, 1)
			}
		}
	case PaymentTypeOneTime:
		end = addMonths(base, in.ContractTerm)
	}

	var archived *ArchivedContract
	if current.HasLapsedAt(now) {
		archived = &ArchivedContract{Contract: current.Clone(), ArchivedAt: now}
		next.PartialPayments = []PartialPayment{}

		switch in.PaymentType {
		case PaymentTypeRecurring:
			end = addMonths(now, 1)
		case PaymentTypeOneTime:
			end = addMonths(now, in.ContractTerm)
		}
	}

	next.PartialPayments = append(next.PartialPayments, in.NewInstallments...)
	next.ContractEndDate = &end
	return next, archived
}

// addMonths segue a normalização do time.AddDate (31/01 + 1 mês = 03/03).
func addMonths(t time.Time, months int) time.Time {
	return t.AddDate(0, months, 0)
}
