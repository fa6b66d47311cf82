package lattice

import (
	"fmt"
	"math"

	"github.com/jiaming2012/lattice-pricer/src/models"
)

// EuropeanExpectation discounts the expected terminal payoff directly:
// exp(-rT) * sum_i payoff[i][n] * prob[i][n].
func EuropeanExpectation(payoff, prob models.Lattice, p models.MarketParameters) float64 {
	n := payoff.Steps()

	var terminal float64
	for i := 0; i <= n; i++ {
		terminal += payoff[i][n] * prob[i][n]
	}

	return terminal * math.Exp(-p.Rate*p.Maturity)
}

// AmericanInduction walks the payoff tree from step n-1 back to 0, replacing
// each node with the larger of its intrinsic value and the discounted
// continuation value. Column j+1 is fully resolved before column j is read.
// The payoff tree is overwritten in place.
func AmericanInduction(payoff, stock models.Lattice, lp models.LatticeParameters, p models.MarketParameters) float64 {
	n := payoff.Steps()
	discount := math.Exp(-(p.Rate - p.DividendYield) * lp.Dt)

	for j := n - 1; j >= 0; j-- {
		for i := 0; i <= j; i++ {
			continuation := (lp.Pu*payoff[i+1][j+1] + lp.Pd*payoff[i][j+1]) * discount
			payoff[i][j] = math.Max(intrinsic(p.Type, stock[i][j], p.Strike), continuation)
		}
	}

	return payoff[0][0]
}

// BackwardInduction selects the valuation by exercise style. prob is only
// read for european exercise and may be nil otherwise.
func BackwardInduction(payoff, prob, stock models.Lattice, lp models.LatticeParameters, p models.MarketParameters) (float64, error) {
	var price float64
	if p.IsEuropean() {
		if prob == nil {
			return 0, fmt.Errorf("BackwardInduction: %s: european valuation requires a probability tree", lp.Scheme)
		}

		price = EuropeanExpectation(payoff, prob, p)
	} else {
		price = AmericanInduction(payoff, stock, lp, p)
	}

	if math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, fmt.Errorf("BackwardInduction: %s: price %v: %w", lp.Scheme, price, models.NumericOverflowErr)
	}

	return price, nil
}
