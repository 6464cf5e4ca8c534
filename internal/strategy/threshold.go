package strategy

import (
	"bcx_go/internal/domain"
)

// DefaultDiscount places the passive bid 0.5% below the last trade.
const DefaultDiscount = 0.995

// Threshold signals a buy when the last trade prints strictly below the low
// of the latest price bar. Older history is ignored.
type Threshold struct {
	Discount float64
}

// NewThreshold creates a threshold rule. A non-positive discount falls back to DefaultDiscount.
func NewThreshold(discount float64) *Threshold {
	if discount <= 0 {
		discount = DefaultDiscount
	}
	return &Threshold{Discount: discount}
}

// Evaluate implements Rule. Equality with the low does not fire.
func (t *Threshold) Evaluate(lastPrice float64, bar domain.PriceBar) (float64, bool) {
	if !(lastPrice < bar.Low) {
		return 0, false
	}
	return lastPrice * t.Discount, true
}
