// Package filter turns sparse FilterParameters into an immutable conjunctive
// predicate over stored expense documents.
//
// Date clauses compare canonical date strings byte-wise. That matches
// chronological order only when both sides share a precision: a bound of
// "2020-12-31" sorts before "2020-12-31T10:00:00Z", so an upper bound at day
// precision excludes documents from that same day. The comparison is kept
// as-is; callers needing an inclusive day should pass the next day or use In.
package filter

import (
	"strings"

	"expenses/internal/expense/entity"
	"expenses/internal/expense/models"
)

// Clause is one independent condition on a document.
type Clause func(doc entity.Document) bool

// Filter is the conjunction of the clauses derived from one FilterParameters
// value. The zero Filter matches every document.
type Filter struct {
	clauses []Clause
}

// New builds the filter for params. Only non-empty fields contribute a clause.
func New(params models.FilterParameters) Filter {
	var clauses []Clause
	switch {
	case params.From != "" && params.To != "":
		clauses = append(clauses, Between(params.From, params.To))
	case params.From != "":
		clauses = append(clauses, From(params.From))
	case params.To != "":
		clauses = append(clauses, To(params.To))
	}
	if params.In != "" {
		clauses = append(clauses, In(params.In))
	}
	if params.PaymentMethod != nil {
		clauses = append(clauses, WithPaymentMethod(*params.PaymentMethod))
	}
	return Filter{clauses: clauses}
}

// Apply is shorthand for New(params).Apply(docs).
func Apply(params models.FilterParameters, docs []entity.Document) []entity.Document {
	return New(params).Apply(docs)
}

// IsEmpty reports whether the filter has no clauses.
func (f Filter) IsEmpty() bool {
	return len(f.clauses) == 0
}

// Len returns the number of clauses.
func (f Filter) Len() int {
	return len(f.clauses)
}

// Matches reports whether doc satisfies every clause.
func (f Filter) Matches(doc entity.Document) bool {
	for _, clause := range f.clauses {
		if !clause(doc) {
			return false
		}
	}
	return true
}

// Apply returns the documents that satisfy every clause, in input order. The
// input slice is never modified; with no clauses it is returned as is.
func (f Filter) Apply(docs []entity.Document) []entity.Document {
	if f.IsEmpty() {
		return docs
	}
	out := make([]entity.Document, 0, len(docs))
	for _, doc := range docs {
		if f.Matches(doc) {
			out = append(out, doc)
		}
	}
	return out
}

// From keeps documents dated at or after start.
func From(start string) Clause {
	return func(doc entity.Document) bool {
		return doc.Date >= start
	}
}

// To keeps documents dated at or before end.
func To(end string) Clause {
	return func(doc entity.Document) bool {
		return doc.Date <= end
	}
}

// Between keeps documents dated within the closed range [start, end].
func Between(start, end string) Clause {
	return func(doc entity.Document) bool {
		return doc.Date >= start && doc.Date <= end
	}
}

// In keeps documents whose date starts with prefix, e.g. "2020-05" for May 2020.
func In(prefix string) Clause {
	return func(doc entity.Document) bool {
		return strings.HasPrefix(doc.Date, prefix)
	}
}

// WithPaymentMethod keeps documents paid with pm.
func WithPaymentMethod(pm models.PaymentMethod) Clause {
	want := entity.FromDomain(&pm)
	return func(doc entity.Document) bool {
		return doc.PaymentMethod == want
	}
}
