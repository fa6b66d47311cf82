package lattice

import "github.com/jiaming2012/lattice-pricer/src/models"

// BuildProbabilityTree fills node (i, j) with the probability of reaching it
// along any path, C(j, i) * pu^i * pd^(j-i). The values are accumulated column
// by column so that large step counts never form the binomial coefficient.
func BuildProbabilityTree(lp models.LatticeParameters) models.Lattice {
	n := lp.Steps
	tree := models.NewLattice(n)
	tree[0][0] = 1

	for j := 1; j <= n; j++ {
		for i := 0; i <= j; i++ {
			var prob float64
			if i > 0 {
				prob += lp.Pu * tree[i-1][j-1]
			}

			if i < j {
				prob += lp.Pd * tree[i][j-1]
			}

			tree[i][j] = prob
		}
	}

	return tree
}
