// Package entity defines the stored form of an expense and the translation
// between it and the domain record.
package entity

// DateLayout is the canonical encoding of Document.Date. Zero padding and a
// fixed UTC suffix make byte-wise comparison agree with chronological order.
const DateLayout = "2006-01-02T15:04:05Z"

// PaymentMethod mirrors models.PaymentMethod in the stored form. The two are
// kept separate so the document schema does not follow domain renames.
type PaymentMethod int

const (
	PaymentMethodUndefined  PaymentMethod = 0
	PaymentMethodCash       PaymentMethod = 1
	PaymentMethodDebitCard  PaymentMethod = 2
	PaymentMethodCreditCard PaymentMethod = 3
)

// Document is an expense as persisted in the container. The partition key is
// always ID.
type Document struct {
	ID            string        `json:"id"`
	Value         float64       `json:"value"`
	Date          string        `json:"date"`
	Reason        string        `json:"reason"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
}

// DocumentID returns the key the document is stored under.
func (d Document) DocumentID() string {
	return d.ID
}
