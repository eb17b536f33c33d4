package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLead() *Lead {
	return NewLead(7, "Maria", "maria@example.com", "555-0100", "Maria Bakery", "1 Main St", nil, testNow)
}

func TestNewDraftSale(t *testing.T) {
	lead := newTestLead()
	s := NewDraftSale(3, lead, nil, testNow)

	assert.Equal(t, int64(3), s.ID)
	assert.Equal(t, lead.ID, s.LeadID)
	assert.Equal(t, "Maria Bakery", s.BusinessName)
	assert.Equal(t, SaleStatusPending, s.Status)
	assert.Zero(t, s.TotalAmount)
	assert.Equal(t, CardPlaceholder, s.Card)
	assert.Equal(t, ExpPlaceholder, s.Exp)
	assert.Equal(t, CVVPlaceholder, s.CVV)
	assert.Nil(t, s.PaymentDate)
	assert.Nil(t, s.ContractEndDate)
	assert.Empty(t, s.PaymentType)

	// A venda guarda uma cópia: editar o lead depois não muda a venda.
	lead.Name = "Outra"
	assert.Equal(t, "Maria", s.Name)
}

func TestSaleJSONShape(t *testing.T) {
	s := NewDraftSale(3, newTestLead(), nil, testNow)

	body, err := json.Marshal(s)
	require.NoError(t, err)

	var data map[string]any
	require.NoError(t, json.Unmarshal(body, &data))
	assert.Equal(t, float64(3), data["saleId"])
	assert.Nil(t, data["paymentType"])
	assert.Nil(t, data["paymentMethod"])
	assert.Equal(t, "****", data["card"])
	assert.Equal(t, []any{}, data["partialPayments"])
	assert.NotContains(t, data, "Version")
}

func TestApplyRolloverArchivesOncePerPeriod(t *testing.T) {
	end := testNow.AddDate(0, 0, -1)
	s := NewDraftSale(1, newTestLead(), nil, testNow)
	s.PaymentType = PaymentTypeRecurring
	s.TotalAmount = 300
	s.ContractTerm = 3
	s.ContractEndDate = &end
	s.PartialPayments = installments(100, 100, 100)

	archived := s.ApplyRollover(RolloverInput{PaymentType: PaymentTypeRecurring, ContractTerm: 3, NewInstallments: installments(100)}, testNow)
	require.NotNil(t, archived)
	require.Len(t, s.PreviousContracts, 1)
	assert.Len(t, s.PartialPayments, 1)

	// Mesmo fim de contrato já arquivado: nada é duplicado.
	s.ContractEndDate = &end
	again := s.ApplyRollover(RolloverInput{PaymentType: PaymentTypeRecurring, ContractTerm: 3}, testNow)
	assert.Nil(t, again)
	assert.Len(t, s.PreviousContracts, 1)
}

func TestConfirmPaymentDerivesStatus(t *testing.T) {
	s := NewDraftSale(1, newTestLead(), nil, testNow)

	s.PaymentType = PaymentTypeRecurring
	s.ConfirmPayment(testNow)
	assert.Equal(t, SaleStatusPartPayment, s.Status)
	assert.Equal(t, testNow, *s.PaymentDate)

	s.PaymentType = PaymentTypeOneTime
	s.ConfirmPayment(testNow)
	assert.Equal(t, SaleStatusCompleted, s.Status)

	s.PaymentType = ""
	s.ConfirmPayment(testNow)
	assert.Equal(t, SaleStatusCompleted, s.Status)
}

func TestSaleCloneIsIndependent(t *testing.T) {
	end := testNow
	s := NewDraftSale(1, newTestLead(), nil, testNow)
	s.ContractEndDate = &end
	s.PartialPayments = installments(100)
	s.PreviousContracts = []ArchivedContract{{Contract: Contract{PartialPayments: installments(50)}}}

	c := s.Clone()
	c.PartialPayments[0].Amount = 1
	c.PreviousContracts[0].PartialPayments[0].Amount = 1
	*c.ContractEndDate = testNow.AddDate(1, 0, 0)

	assert.Equal(t, 100.0, s.PartialPayments[0].Amount)
	assert.Equal(t, 50.0, s.PreviousContracts[0].PartialPayments[0].Amount)
	assert.Equal(t, testNow, *s.ContractEndDate)
}

func TestLeadAddImportantDate(t *testing.T) {
	l := newTestLead()
	assert.True(t, l.AddImportantDate("2026-05-01"))
	assert.True(t, l.AddImportantDate("2026-04-01"))
	assert.False(t, l.AddImportantDate("2026-05-01"))
	assert.Equal(t, []string{"2026-04-01", "2026-05-01"}, l.ImportantDates)
}

func TestPaymentTypeJSON(t *testing.T) {
	var pt PaymentType
	require.NoError(t, json.Unmarshal([]byte(`"Recurring"`), &pt))
	assert.Equal(t, PaymentTypeRecurring, pt)
	require.NoError(t, json.Unmarshal([]byte(`null`), &pt))
	assert.Empty(t, pt)
	assert.False(t, PaymentType("Weekly").Valid())
	assert.True(t, PaymentMethodPayPal.Valid())
}
