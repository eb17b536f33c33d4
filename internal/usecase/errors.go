package usecase

import (
	"errors"
	"strings"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

const (
	CodeInvalidInput     = "INVALID_INPUT"
	CodeInvalidOperation = "INVALID_OPERATION"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeForbidden        = "FORBIDDEN"
	CodeNotFound         = "NOT_FOUND"
	CodeConflict         = "CONFLICT"
	CodeNoChange         = "NO_CHANGE"
	CodeDatabaseError    = "DATABASE_ERROR"
)

type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	return e.Message
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}

// ErrorCode devolve o código do erro para a camada de transporte.
func ErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	var te *TechnicalError
	if errors.As(err, &te) {
		return te.Code
	}
	return ""
}

func invalidInput(msg string) error {
	return &DomainError{Code: CodeInvalidInput, Message: msg}
}

func validationFailed(errs []ValidationError) error {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.Error())
	}
	return invalidInput("validation failed: " + strings.Join(parts, "; "))
}

// translateError converte erros de entidade e de repositório no contrato da API.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	var de *DomainError
	if errors.As(err, &de) {
		return de
	}

	var re *entity.RuleError
	if errors.As(err, &re) {
		return &DomainError{Code: CodeInvalidOperation, Message: re.Message}
	}

	switch {
	case errors.Is(err, entity.ErrLeadNotFound),
		errors.Is(err, entity.ErrSaleNotFound),
		errors.Is(err, entity.ErrUserNotFound):
		return &DomainError{Code: CodeNotFound, Message: err.Error()}
	case errors.Is(err, entity.ErrEmailAlreadyExists),
		errors.Is(err, entity.ErrDuplicateSale),
		errors.Is(err, entity.ErrVersionConflict):
		return &DomainError{Code: CodeConflict, Message: err.Error()}
	}

	return &TechnicalError{
		Code:    CodeDatabaseError,
		Message: "failed to persist changes: " + err.Error(),
		Err:     err,
	}
}
