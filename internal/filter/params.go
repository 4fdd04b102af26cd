package filter

import (
	"time"

	apierrors "retailpulse/internal/errors"
)

// ProductFilter is the tagged product predicate. Inactive matches
// every record regardless of Selected; active with an empty selection
// matches nothing. The two states are distinct on purpose: an emptied
// multiselect is a real user choice, not "no filter".
type ProductFilter struct {
	Active   bool     `json:"active"`
	Selected []string `json:"selected,omitempty"`
}

// Params is one full predicate set. Nil bounds mean unbounded on that
// side; an empty Countries slice means no country restriction. Date
// bounds compare by plain date, inclusive on both ends.
type Params struct {
	DateFrom    *time.Time    `json:"date_from,omitempty"`
	DateTo      *time.Time    `json:"date_to,omitempty"`
	Countries   []string      `json:"countries,omitempty"`
	Products    ProductFilter `json:"products"`
	TotalMin    *float64      `json:"total_min,omitempty"`
	TotalMax    *float64      `json:"total_max,omitempty"`
	QuantityMin *int64        `json:"quantity_min,omitempty"`
	QuantityMax *int64        `json:"quantity_max,omitempty"`
}

// Validate rejects inverted ranges. Bad bounds are an input error, not
// something to silently clamp.
func (p *Params) Validate() error {
	if p.DateFrom != nil && p.DateTo != nil && p.DateFrom.After(*p.DateTo) {
		return apierrors.InvalidParameterError("date_from", "date_from is after date_to")
	}
	if p.TotalMin != nil && p.TotalMax != nil && *p.TotalMin > *p.TotalMax {
		return apierrors.InvalidParameterError("total_min", "total_min is greater than total_max")
	}
	if p.QuantityMin != nil && p.QuantityMax != nil && *p.QuantityMin > *p.QuantityMax {
		return apierrors.InvalidParameterError("quantity_min", "quantity_min is greater than quantity_max")
	}
	return nil
}
