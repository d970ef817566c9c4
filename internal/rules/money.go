package rules

import "github.com/shopspring/decimal"

// Amounts are whole Vietnamese đồng. Fractional intermediate results are
// rounded half away from zero.

// Round converts a decimal amount to whole đồng.
func Round(d decimal.Decimal) int64 {
	return d.Round(0).IntPart()
}

// ApplyRate returns round(amount × rate).
func ApplyRate(amount int64, rate float64) int64 {
	return Round(decimal.NewFromInt(amount).Mul(decimal.NewFromFloat(rate)))
}

// MonthlyInstallment splits principal into equal monthly payments. With a zero
// rate the principal is divided evenly; otherwise the amortisation formula
// P·r·(1+r)^n / ((1+r)^n − 1) is used.
func MonthlyInstallment(principal int64, monthlyRate float64, months int) (int64, error) {
	if months <= 0 {
		return 0, Invalid("installment_months", "must be > 0")
	}
	if principal < 0 {
		return 0, Invalid("principal", "must be >= 0")
	}
	p := decimal.NewFromInt(principal)
	n := decimal.NewFromInt(int64(months))
	if monthlyRate == 0 {
		return Round(p.Div(n)), nil
	}
	r := decimal.NewFromFloat(monthlyRate)
	growth := decimal.NewFromInt(1).Add(r).Pow(n)
	payment := p.Mul(r).Mul(growth).Div(growth.Sub(decimal.NewFromInt(1)))
	return Round(payment), nil
}
