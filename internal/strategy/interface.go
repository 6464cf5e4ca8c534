package strategy

import (
	"bcx_go/internal/domain"
)

// Rule decides whether the latest observations signal a buy.
// It is called synchronously by the Engine and must be a pure function.
type Rule interface {
	// Evaluate compares the most recent last-trade price with the most recent
	// price bar and returns the limit price to bid at when it fires.
	Evaluate(lastPrice float64, bar domain.PriceBar) (limit float64, ok bool)
}

// RuleFunc adapts a plain function to the Rule interface.
type RuleFunc func(lastPrice float64, bar domain.PriceBar) (float64, bool)

func (f RuleFunc) Evaluate(lastPrice float64, bar domain.PriceBar) (float64, bool) {
	return f(lastPrice, bar)
}
