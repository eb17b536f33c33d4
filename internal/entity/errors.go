package entity

import "errors"

var (
	ErrLeadNotFound       = errors.New("lead não encontrado")
	ErrSaleNotFound       = errors.New("venda não encontrada")
	ErrUserNotFound       = errors.New("usuário não encontrado")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrDuplicateSale      = errors.New("a sale already exists for this lead")
	ErrVersionConflict    = errors.New("sale was modified concurrently, reload and try again")
)

// Regras de negócio violadas pelo update de pagamento.
const (
	RuleOneTimeLocked       = "one_time_locked"
	RuleInstallmentMismatch = "installment_mismatch"
	RuleContractFullyPaid   = "contract_fully_paid"
	RuleLedgerExceedsTotal  = "ledger_exceeds_total"
)

// RuleError indica que o pedido é bem formado mas a regra de negócio não permite aplicá-lo
// no estado atual da venda.
type RuleError struct {
	Rule    string
	Message string
}

func (e *RuleError) Error() string {
	return e.Message
}
