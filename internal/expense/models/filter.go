package models

// FilterParameters is a sparse list query. Empty fields impose no constraint.
//
// From, To and In hold canonical date prefixes (yyyy, yyyy-MM or yyyy-MM-dd)
// already validated by the transport layer.
type FilterParameters struct {
	From          string
	To            string
	In            string
	PaymentMethod *PaymentMethod
}

// IsEmpty reports whether no field is set.
func (p FilterParameters) IsEmpty() bool {
	return p.From == "" && p.To == "" && p.In == "" && p.PaymentMethod == nil
}
