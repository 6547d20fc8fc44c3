package models

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "expenses/pkg/domain-errors"
)

func TestExpenseDetailsValidate(t *testing.T) {
	t.Run("accepts zero value", func(t *testing.T) {
		assert.NoError(t, ExpenseDetails{Value: 0, Reason: "free sample"}.Validate())
	})

	t.Run("rejects negative value naming the field", func(t *testing.T) {
		err := ExpenseDetails{Value: -5, Reason: "refund"}.Validate()
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidArgument))
		assert.Contains(t, err.Error(), "value")
	})

	t.Run("rejects NaN", func(t *testing.T) {
		err := ExpenseDetails{Value: math.NaN(), Reason: "broken"}.Validate()
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidArgument))
	})

	t.Run("value is reported before reason", func(t *testing.T) {
		err := ExpenseDetails{Value: -1}.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "value")
	})

	t.Run("rejects blank reason", func(t *testing.T) {
		err := ExpenseDetails{Value: 1, Reason: "   "}.Validate()
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidArgument))
		assert.Contains(t, err.Error(), "reason")
	})
}

func TestParsePaymentMethod(t *testing.T) {
	cases := map[string]PaymentMethod{
		"0":           PaymentMethodUndefined,
		"1":           PaymentMethodCash,
		"Cash":        PaymentMethodCash,
		"debit-card":  PaymentMethodDebitCard,
		"DebitCard":   PaymentMethodDebitCard,
		"credit_card": PaymentMethodCreditCard,
		" undefined ": PaymentMethodUndefined,
	}
	for in, want := range cases {
		got, err := ParsePaymentMethod(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"", "4", "-1", "cheque"} {
		_, err := ParsePaymentMethod(bad)
		assert.Error(t, err, bad)
	}
}

func TestPaymentMethodJSON(t *testing.T) {
	var details ExpenseDetails
	require.NoError(t, json.Unmarshal([]byte(`{"value":3,"reason":"bus","paymentMethod":"credit-card"}`), &details))
	require.NotNil(t, details.PaymentMethod)
	assert.Equal(t, PaymentMethodCreditCard, *details.PaymentMethod)

	require.NoError(t, json.Unmarshal([]byte(`{"value":3,"reason":"bus","paymentMethod":2}`), &details))
	assert.Equal(t, PaymentMethodDebitCard, *details.PaymentMethod)

	assert.Error(t, json.Unmarshal([]byte(`{"paymentMethod":9}`), &details))

	out, err := json.Marshal(ExpenseDetails{Value: 1, Reason: "tea", PaymentMethod: PaymentMethodCash.Ptr()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"value":1,"reason":"tea","paymentMethod":1}`, string(out))
}

func TestExpenseJSON(t *testing.T) {
	id := uuid.MustParse("0b8e5b4c-3a4b-4d51-8c0f-7b9a0d6e2f11")
	out, err := json.Marshal(Expense{ID: id, Details: ExpenseDetails{Value: 2, Reason: "bus"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"0b8e5b4c-3a4b-4d51-8c0f-7b9a0d6e2f11","expenseDetails":{"value":2,"reason":"bus"}}`, string(out))

	var back Expense
	require.NoError(t, json.Unmarshal(out, &back))
	assert.Equal(t, id, back.ID)
	assert.Equal(t, "bus", back.Details.Reason)
}

func TestFilterParametersIsEmpty(t *testing.T) {
	assert.True(t, FilterParameters{}.IsEmpty())
	assert.False(t, FilterParameters{In: "2020"}.IsEmpty())
	assert.False(t, FilterParameters{PaymentMethod: PaymentMethodUndefined.Ptr()}.IsEmpty())
}
