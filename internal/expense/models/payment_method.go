package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// PaymentMethod is how an expense was paid. The numeric values are part of the
// wire format.
type PaymentMethod int

const (
	PaymentMethodUndefined  PaymentMethod = 0
	PaymentMethodCash       PaymentMethod = 1
	PaymentMethodDebitCard  PaymentMethod = 2
	PaymentMethodCreditCard PaymentMethod = 3
)

var paymentMethodNames = map[PaymentMethod]string{
	PaymentMethodUndefined:  "undefined",
	PaymentMethodCash:       "cash",
	PaymentMethodDebitCard:  "debit-card",
	PaymentMethodCreditCard: "credit-card",
}

// ParsePaymentMethod accepts the numeric form ("2") or a name in any case,
// with or without separators ("DebitCard", "debit-card", "debit_card").
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		pm := PaymentMethod(n)
		if !pm.IsValid() {
			return 0, fmt.Errorf("unknown payment method: %s", s)
		}
		return pm, nil
	}
	normalized := strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.ToLower(s))
	for pm, name := range paymentMethodNames {
		if strings.ReplaceAll(name, "-", "") == normalized {
			return pm, nil
		}
	}
	return 0, fmt.Errorf("unknown payment method: %s", s)
}

// IsValid reports whether pm is one of the known values.
func (pm PaymentMethod) IsValid() bool {
	_, ok := paymentMethodNames[pm]
	return ok
}

func (pm PaymentMethod) String() string {
	if name, ok := paymentMethodNames[pm]; ok {
		return name
	}
	return "PaymentMethod(" + strconv.Itoa(int(pm)) + ")"
}

// Ptr returns a pointer to a copy of pm.
func (pm PaymentMethod) Ptr() *PaymentMethod {
	return &pm
}

// UnmarshalJSON accepts both the numeric and the named form.
func (pm *PaymentMethod) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*pm = PaymentMethod(n)
		if !pm.IsValid() {
			return fmt.Errorf("unknown payment method: %d", n)
		}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("payment method must be a number or a string: %w", err)
	}
	parsed, err := ParsePaymentMethod(s)
	if err != nil {
		return err
	}
	*pm = parsed
	return nil
}
