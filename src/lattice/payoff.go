package lattice

import (
	"math"

	"github.com/jiaming2012/lattice-pricer/src/models"
)

func intrinsic(optionType models.OptionType, price, strike float64) float64 {
	return math.Max(0, optionType.Sign()*(price-strike))
}

// BuildPayoffTree returns the intrinsic values of the stock tree. European
// exercise only fills the terminal column; american exercise fills every node
// because backward induction compares against early exercise everywhere.
func BuildPayoffTree(stock models.Lattice, p models.MarketParameters) models.Lattice {
	n := stock.Steps()
	payoff := models.NewLattice(n)

	if p.IsEuropean() {
		for i := 0; i <= n; i++ {
			payoff[i][n] = intrinsic(p.Type, stock[i][n], p.Strike)
		}

		return payoff
	}

	for j := 0; j <= n; j++ {
		for i := 0; i <= j; i++ {
			payoff[i][j] = intrinsic(p.Type, stock[i][j], p.Strike)
		}
	}

	return payoff
}
