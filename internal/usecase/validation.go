package usecase

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var (
	cardNumberRe = regexp.MustCompile(`^\d{16}$`)
	cardExpRe    = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{2}$`)
	cvvRe        = regexp.MustCompile(`^\d{3,4}$`)
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Erros saem com o nome do campo no JSON.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	mustRegister("cardnumber", func(fl validator.FieldLevel) bool {
		return cardNumberRe.MatchString(fl.Field().String())
	})
	mustRegister("cardexp", func(fl validator.FieldLevel) bool {
		return cardExpRe.MatchString(fl.Field().String())
	})
	mustRegister("cvv", func(fl validator.FieldLevel) bool {
		return cvvRe.MatchString(fl.Field().String())
	})
	mustRegister("isodate", func(fl validator.FieldLevel) bool {
		return isValidDate(fl.Field().String())
	})
}

func mustRegister(tag string, fn validator.Func) {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validator %s: %v", tag, err))
	}
}

// validateStruct roda as tags e traduz as falhas para ValidationError.
func validateStruct(v any) []ValidationError {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []ValidationError{{"payload", err.Error()}}
	}

	out := make([]ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, ValidationError{Field: fieldPath(fe), Message: tagMessage(fe)})
	}
	return out
}

// fieldPath remove o nome do struct raiz: "UpdateSaleInput.partialPayments[0].amount".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "min":
		return "must have at least " + fe.Param() + " characters"
	case "max":
		return "must not exceed " + fe.Param() + " characters"
	case "email":
		return "is invalid"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "cardnumber":
		return "must be 16 digits"
	case "cardexp":
		return "must be MM/YY with month 01-12"
	case "cvv":
		return "must be 3 or 4 digits"
	case "isodate":
		return "must be a valid date (YYYY-MM-DD)"
	}
	return "is invalid"
}

// ValidateUpdateSaleInput valida o patch inteiro antes de qualquer leitura ou escrita.
func ValidateUpdateSaleInput(input UpdateSaleInput) []ValidationError {
	errs := validateStruct(input)

	if input.PaymentType.Present() && !input.PaymentType.Value.Valid() {
		errs = append(errs, ValidationError{"paymentType", "must be Recurring, One-time or null"})
	}
	if input.PaymentMethod.Present() && !input.PaymentMethod.Value.Valid() {
		errs = append(errs, ValidationError{"paymentMethod", "must be Credit Card, Bank Transfer, PayPal, Other or null"})
	}
	if input.Status != nil && !input.Status.Valid() {
		errs = append(errs, ValidationError{"status", "must be Pending, Completed, Failed, Refunded or PartPayment"})
	}

	return errs
}

func isValidDate(dateStr string) bool {
	_, err := parseDate(dateStr)
	return err == nil
}

func parseDate(dateStr string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", dateStr); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, dateStr); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, dateStr); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q", dateStr)
}
