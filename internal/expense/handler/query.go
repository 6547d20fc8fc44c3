package handler

import (
	"net/url"
	"time"

	"expenses/internal/expense/models"
	dErrors "expenses/pkg/domain-errors"
)

// Accepted precisions for the date query parameters. The raw value is kept
// and matched against stored dates as a string prefix or bound.
var dateLayouts = []string{"2006-01-02", "2006-01", "2006"}

// ParseFilterParameters validates the list query. from, to and in must be a
// day, month or year; paymentMethod accepts a name or its number.
func ParseFilterParameters(query url.Values) (models.FilterParameters, error) {
	var params models.FilterParameters
	for _, field := range []struct {
		name string
		dst  *string
	}{
		{"from", &params.From},
		{"to", &params.To},
		{"in", &params.In},
	} {
		value := query.Get(field.name)
		if value == "" {
			continue
		}
		if !isQueryDate(value) {
			return models.FilterParameters{}, dErrors.New(dErrors.CodeBadRequest,
				"Invalid query parameter: "+field.name+" must be yyyy-MM-dd, yyyy-MM or yyyy")
		}
		*field.dst = value
	}

	if raw := query.Get("paymentMethod"); raw != "" {
		pm, err := models.ParsePaymentMethod(raw)
		if err != nil {
			return models.FilterParameters{}, dErrors.Wrap(err, dErrors.CodeBadRequest,
				"Invalid query parameter: paymentMethod must be one of undefined, cash, debit-card, credit-card")
		}
		params.PaymentMethod = &pm
	}
	return params, nil
}

func isQueryDate(value string) bool {
	for _, layout := range dateLayouts {
		if len(value) != len(layout) {
			continue
		}
		if _, err := time.Parse(layout, value); err == nil {
			return true
		}
	}
	return false
}
