package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"expenses/internal/expense/models"
	dErrors "expenses/pkg/domain-errors"
)

// ToDocument maps a complete expense to its stored form. The registry fills
// Date before persisting, so a nil Date is an invariant violation.
func ToDocument(expense *models.Expense) (Document, error) {
	if expense == nil {
		return Document{}, dErrors.New(dErrors.CodeInvariantViolation, "expense is required")
	}
	if expense.Details.Date == nil {
		return Document{}, dErrors.New(dErrors.CodeInvariantViolation, "expense date is required to build a document")
	}
	return Document{
		ID:            expense.ID.String(),
		Value:         expense.Details.Value,
		Date:          FormatDate(*expense.Details.Date),
		Reason:        expense.Details.Reason,
		PaymentMethod: FromDomain(expense.Details.PaymentMethod),
	}, nil
}

// ToDomain maps a stored document back to an expense. A nil document maps to
// a nil expense so absence travels without an error.
func ToDomain(doc *Document) (*models.Expense, error) {
	if doc == nil {
		return nil, nil
	}
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("parse document id %q: %w", doc.ID, err)
	}
	date, err := ParseDate(doc.Date)
	if err != nil {
		return nil, fmt.Errorf("parse document %s date: %w", doc.ID, err)
	}
	return &models.Expense{
		ID: id,
		Details: models.ExpenseDetails{
			Value:         doc.Value,
			Date:          &date,
			Reason:        doc.Reason,
			PaymentMethod: ToModel(doc.PaymentMethod).Ptr(),
		},
	}, nil
}

// ApplyDetails overwrites the mutable fields of doc. The identity is left
// alone. A nil date keeps the stored one since a document cannot drop its
// sort key; a nil payment method resets to undefined.
func ApplyDetails(doc *Document, details models.ExpenseDetails) {
	doc.Value = details.Value
	doc.Reason = details.Reason
	if details.Date != nil {
		doc.Date = FormatDate(*details.Date)
	}
	doc.PaymentMethod = FromDomain(details.PaymentMethod)
}

// FormatDate renders t in DateLayout, normalised to UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// ParseDate reads DateLayout, falling back to RFC 3339 for documents written
// by other tools.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err == nil {
		return t, nil
	}
	if t, rfcErr := time.Parse(time.RFC3339, s); rfcErr == nil {
		return t.UTC(), nil
	}
	return time.Time{}, err
}

// FromDomain converts a domain payment method. Nil and unknown values become
// undefined.
func FromDomain(pm *models.PaymentMethod) PaymentMethod {
	if pm == nil {
		return PaymentMethodUndefined
	}
	switch *pm {
	case models.PaymentMethodCash:
		return PaymentMethodCash
	case models.PaymentMethodDebitCard:
		return PaymentMethodDebitCard
	case models.PaymentMethodCreditCard:
		return PaymentMethodCreditCard
	default:
		return PaymentMethodUndefined
	}
}

// ToModel converts a stored payment method. Unknown values, including ones
// written by newer versions, become undefined.
func ToModel(pm PaymentMethod) models.PaymentMethod {
	switch pm {
	case PaymentMethodCash:
		return models.PaymentMethodCash
	case PaymentMethodDebitCard:
		return models.PaymentMethodDebitCard
	case PaymentMethodCreditCard:
		return models.PaymentMethodCreditCard
	default:
		return models.PaymentMethodUndefined
	}
}
