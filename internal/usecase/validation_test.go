package usecase_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

func fields(errs []usecase.ValidationError) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Field)
	}
	return out
}

func TestValidateUpdateSaleInput(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		fields []string
	}{
		{"patch mínimo", `{"contractTerm": 1}`, nil},
		{"null explícito nos enums", `{"contractTerm": 1, "paymentType": null, "paymentMethod": null}`, nil},
		{"sem contractTerm", `{"totalAmount": 10}`, []string{"contractTerm"}},
		{"cartão curto", `{"contractTerm": 1, "card": "123"}`, []string{"card"}},
		{"cartão com letras", `{"contractTerm": 1, "card": "1234abcd90123456"}`, []string{"card"}},
		{"validade mês 13", `{"contractTerm": 1, "exp": "13/27"}`, []string{"exp"}},
		{"cvv longo", `{"contractTerm": 1, "cvv": "12345"}`, []string{"cvv"}},
		{"paymentType desconhecido", `{"contractTerm": 1, "paymentType": "Weekly"}`, []string{"paymentType"}},
		{"paymentMethod desconhecido", `{"contractTerm": 1, "paymentMethod": "Cash"}`, []string{"paymentMethod"}},
		{"status desconhecido", `{"contractTerm": 1, "status": "Lost"}`, []string{"status"}},
		{"parcela sem data", `{"contractTerm": 1, "partialPayments": [{"amount": 10}]}`, []string{"partialPayments[0].paymentDate"}},
		{"parcela negativa", `{"contractTerm": 1, "partialPayments": [{"amount": -1, "paymentDate": "2026-01-01"}]}`, []string{"partialPayments[0].amount"}},
		{"vários erros juntos", `{"card": "1", "totalAmount": -5}`, []string{"card", "totalAmount", "contractTerm"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var in usecase.UpdateSaleInput
			require.NoError(t, json.Unmarshal([]byte(tc.body), &in))
			assert.ElementsMatch(t, tc.fields, fields(usecase.ValidateUpdateSaleInput(in)))
		})
	}
}

func TestOptionalDistinguishesNullFromAbsent(t *testing.T) {
	var in usecase.UpdateSaleInput
	require.NoError(t, json.Unmarshal([]byte(`{"contractTerm": 3, "paymentMethod": null, "paymentType": "One-time"}`), &in))

	assert.True(t, in.PaymentMethod.Set)
	assert.True(t, in.PaymentMethod.Null)
	assert.False(t, in.PaymentMethod.Present())

	assert.True(t, in.PaymentType.Present())
	assert.Equal(t, entity.PaymentTypeOneTime, in.PaymentType.Value)

	var absent usecase.UpdateSaleInput
	require.NoError(t, json.Unmarshal([]byte(`{"contractTerm": 3}`), &absent))
	assert.False(t, absent.PaymentMethod.Set)
}
