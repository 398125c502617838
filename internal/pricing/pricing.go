// internal/pricing/pricing.go
package pricing

import "time"

// All monetary amounts are integer minor units (cents). Discounts are basis
// points (0..10000) so that a discount fraction in [0,1] is represented
// exactly and every computation stays in integer arithmetic.

const maxDiscountBps = 10_000

// Window is a discount validity window. A nil bound is unbounded on that side.
type Window struct {
	Start *time.Time
	End   *time.Time
}

// Contains reports whether now falls within the window (inclusive bounds).
func (w Window) Contains(now time.Time) bool {
	if w.Start != nil && now.Before(*w.Start) {
		return false
	}
	if w.End != nil && now.After(*w.End) {
		return false
	}
	return true
}

// Line is the priced snapshot of a single cart line.
type Line struct {
	UnitPriceCents int64 // gross unit price at time of computation
	DiscountBps    int   // applied discount in basis points (0 if inactive)
	DiscountCents  int64 // total discount over the whole line
	SubtotalCents  int64 // quantity*unit price minus line discount
}

// Totals are the order-level sums over priced lines.
type Totals struct {
	SubtotalCents int64
	DiscountCents int64
	TotalCents    int64
}

// ComputeLine prices one line. The discount applies only when now falls
// inside the validity window; outside the window it is zero. Per-unit
// discount truncates toward zero, which keeps the result replayable.
func ComputeLine(priceCents int64, discountBps int, window Window, now time.Time, quantity int) Line {
	if priceCents < 0 {
		priceCents = 0
	}
	if quantity < 0 {
		quantity = 0
	}
	applied := 0
	if discountBps > 0 && window.Contains(now) {
		applied = discountBps
		if applied > maxDiscountBps {
			applied = maxDiscountBps
		}
	}

	perUnitDiscount := priceCents * int64(applied) / maxDiscountBps
	gross := priceCents * int64(quantity)
	lineDiscount := perUnitDiscount * int64(quantity)

	return Line{
		UnitPriceCents: priceCents,
		DiscountBps:    applied,
		DiscountCents:  lineDiscount,
		SubtotalCents:  gross - lineDiscount,
	}
}

// ComputeOrderTotals sums priced lines. The subtotal is the sum of per-line
// subtotals (already net of line discounts), the discount is the sum of line
// discounts, and the total is subtotal minus discount, clamped at zero.
func ComputeOrderTotals(lines []Line) Totals {
	var t Totals
	for _, l := range lines {
		t.SubtotalCents += l.SubtotalCents
		t.DiscountCents += l.DiscountCents
	}
	t.TotalCents = t.SubtotalCents - t.DiscountCents
	if t.TotalCents < 0 {
		t.TotalCents = 0
	}
	return t
}
