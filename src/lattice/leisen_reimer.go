package lattice

import (
	"math"

	"github.com/jiaming2012/lattice-pricer/src/benchmark"
	"github.com/jiaming2012/lattice-pricer/src/models"
)

// LeisenReimer is the Leisen and Reimer (1996) lattice. It matches the
// binomial probabilities to N(d1) and N(d2) with the Peizer-Pratt inversion,
// which requires an odd number of steps.
type LeisenReimer struct{}

func (LeisenReimer) Name() models.SchemeName {
	return models.SchemeLeisenReimer
}

// OddSteps is the step count the lattice is built with.
func OddSteps(steps int) int {
	n := models.ClampSteps(steps)
	if n%2 == 0 {
		return n + 1
	}

	return n
}

// PeizerPratt is inversion method 2 for n steps.
func PeizerPratt(z float64, n int) float64 {
	sign := 1.0
	if z < 0 {
		sign = -1.0
	}

	nf := float64(n)
	x := z / (nf + 1.0/3.0 + 0.1/(nf+1))
	return 0.5 + sign/2*math.Sqrt(1-math.Exp(-x*x*(nf+1.0/6.0)))
}

func (LeisenReimer) Derive(p models.MarketParameters) (models.LatticeParameters, error) {
	n := OddSteps(p.Steps)
	dt := p.Maturity / float64(n)

	// d1 and d2 use the full maturity, not dt.
	d1, d2 := benchmark.D1D2(p)

	pprime := PeizerPratt(d1, n)
	pu := PeizerPratt(d2, n)
	growth := math.Exp((p.Rate - p.DividendYield) * dt)

	return derived(models.LatticeParameters{
		Scheme: models.SchemeLeisenReimer,
		Steps:  n,
		Dt:     dt,
		U:      growth * pprime / pu,
		D:      growth * (1 - pprime) / (1 - pu),
		Pu:     pu,
		Pd:     1 - pu,
	})
}
