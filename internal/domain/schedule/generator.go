// Package schedule computes fixed-payment amortization schedules. All money
// amounts are integer minor units; rates are annual basis points. Rounding
// happens once per installment (half away from zero) and the final
// installment's principal absorbs the accumulated drift, so the principal
// portions always sum to the loan principal exactly and the last remaining
// balance is zero.
package schedule

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidTerm   = errors.New("invalid_term")
	ErrInvalidAmount = errors.New("invalid_amount")
)

type Entry struct {
	InstallmentNumber int
	DueDate           time.Time
	PrincipalMinor    int64
	InterestMinor     int64
	TotalMinor        int64
	RemainingMinor    int64
}

var (
	bpsPerUnit   = decimal.NewFromInt(10000)
	monthsInYear = decimal.NewFromInt(12)
	one          = decimal.NewFromInt(1)
)

// Generate produces the full installment sequence for a loan starting at
// startDate, with due dates one calendar month apart beginning one month
// after the start. It is pure: identical inputs yield identical output.
func Generate(principalMinor int64, annualRateBPS int32, termMonths int, startDate time.Time) ([]Entry, error) {
	if termMonths <= 0 {
		return nil, ErrInvalidTerm
	}
	if principalMinor <= 0 {
		return nil, ErrInvalidAmount
	}

	principal := decimal.NewFromInt(principalMinor)
	monthlyRate := decimal.NewFromInt(int64(annualRateBPS)).Div(bpsPerUnit).Div(monthsInYear)

	var payment decimal.Decimal
	if monthlyRate.IsZero() {
		payment = principal.Div(decimal.NewFromInt(int64(termMonths))).Round(0)
	} else {
		// M = P * r * (1+r)^n / ((1+r)^n - 1)
		compound := one.Add(monthlyRate).Pow(decimal.NewFromInt(int64(termMonths)))
		payment = principal.Mul(monthlyRate).Mul(compound).Div(compound.Sub(one)).Round(0)
	}

	entries := make([]Entry, 0, termMonths)
	balance := principal
	for i := 1; i <= termMonths; i++ {
		interest := balance.Mul(monthlyRate).Round(0)
		principalPart := payment.Sub(interest)
		// A rounded payment can overdraw a small balance before the final
		// installment; never amortize more than what is left.
		if i == termMonths || principalPart.GreaterThan(balance) {
			principalPart = balance
		}
		if principalPart.IsNegative() {
			principalPart = decimal.Zero
		}
		balance = balance.Sub(principalPart)

		entries = append(entries, Entry{
			InstallmentNumber: i,
			DueDate:           startDate.AddDate(0, i, 0),
			PrincipalMinor:    principalPart.IntPart(),
			InterestMinor:     interest.IntPart(),
			TotalMinor:        principalPart.Add(interest).IntPart(),
			RemainingMinor:    balance.IntPart(),
		})
	}

	return entries, nil
}
