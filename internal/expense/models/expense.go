package models

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	dErrors "expenses/pkg/domain-errors"
)

// Expense is the record owned by the registry.
//
// Invariants:
//   - ID is assigned at creation and never changes
//   - Details.Value is non-negative
//   - Details.Reason is non-blank
//   - Details.Date and Details.PaymentMethod are always set once persisted
type Expense struct {
	ID      uuid.UUID      `json:"id"`
	Details ExpenseDetails `json:"expenseDetails"`
}

// ExpenseDetails holds the caller-supplied fields. Date and PaymentMethod are
// optional on input; the registry fills them in.
type ExpenseDetails struct {
	Value         float64        `json:"value"`
	Date          *time.Time     `json:"date,omitempty"`
	Reason        string         `json:"reason"`
	PaymentMethod *PaymentMethod `json:"paymentMethod,omitempty"`
}

// Validate checks the domain constraints on caller input. Value is checked
// before Reason so the first offending field is reported.
func (d ExpenseDetails) Validate() error {
	if math.IsNaN(d.Value) || d.Value < 0 {
		return dErrors.New(dErrors.CodeInvalidArgument, "value: must be greater than or equal to 0")
	}
	if strings.TrimSpace(d.Reason) == "" {
		return dErrors.New(dErrors.CodeInvalidArgument, "reason: is required")
	}
	return nil
}
