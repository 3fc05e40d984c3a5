// Package money centralizes billing arithmetic. Worked time is tracked in
// whole minutes, priced at an hourly rate, and rounded to cents per line
// item; aggregates sum the already-rounded line items.
package money

import "github.com/shopspring/decimal"

var minutesPerHour = decimal.NewFromInt(60)

// AmountFor prices worked minutes at an hourly rate, rounded to cents.
// Zero minutes price to zero regardless of rate.
func AmountFor(minutes int, rate decimal.Decimal) decimal.Decimal {
	if minutes <= 0 {
		return decimal.Zero
	}
	return rate.Mul(decimal.NewFromInt(int64(minutes))).Div(minutesPerHour).Round(2)
}

// HoursFor converts worked minutes to decimal hours, rounded to two places.
func HoursFor(minutes int) decimal.Decimal {
	if minutes <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(minutes)).Div(minutesPerHour).Round(2)
}
