package lattice

import (
	"fmt"

	"github.com/jiaming2012/lattice-pricer/src/models"
)

// Evaluate prices p on an already derived lattice. Every tree is built fresh
// and dropped on return.
func Evaluate(p models.MarketParameters, lp models.LatticeParameters) (float64, error) {
	stock := BuildStockTree(p.Spot, lp)

	var prob models.Lattice
	if p.IsEuropean() {
		prob = BuildProbabilityTree(lp)
	}

	payoff := BuildPayoffTree(stock, p)

	return BackwardInduction(payoff, prob, stock, lp, p)
}

// Price derives the lattice for scheme and returns the unrounded price.
func Price(scheme Scheme, p models.MarketParameters) (float64, models.LatticeParameters, error) {
	if err := p.Validate(); err != nil {
		return 0, models.LatticeParameters{}, fmt.Errorf("lattice.Price: %w", err)
	}

	lp, err := scheme.Derive(p)
	if err != nil {
		return 0, lp, fmt.Errorf("lattice.Price: %s: %w", scheme.Name(), err)
	}

	price, err := Evaluate(p, lp)
	if err != nil {
		return 0, lp, fmt.Errorf("lattice.Price: %w", err)
	}

	return price, lp, nil
}
