package lattice

import (
	"math"

	"github.com/jiaming2012/lattice-pricer/src/models"
)

// BuildStockTree fills node (i, j) with spot * u^i * d^(j-i).
func BuildStockTree(spot float64, lp models.LatticeParameters) models.Lattice {
	n := lp.Steps
	tree := models.NewLattice(n)

	for j := 0; j <= n; j++ {
		for i := 0; i <= j; i++ {
			tree[i][j] = spot * math.Pow(lp.U, float64(i)) * math.Pow(lp.D, float64(j-i))
		}
	}

	return tree
}
