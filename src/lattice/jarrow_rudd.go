package lattice

import (
	"math"

	"github.com/jiaming2012/lattice-pricer/src/models"
)

// JarrowRudd is the equal probability lattice.
type JarrowRudd struct{}

func (JarrowRudd) Name() models.SchemeName {
	return models.SchemeJarrowRudd
}

func (JarrowRudd) Derive(p models.MarketParameters) (models.LatticeParameters, error) {
	n := models.ClampSteps(p.Steps)
	dt := p.Maturity / float64(n)
	drift := (p.Rate - p.DividendYield - 0.5*p.Volatility*p.Volatility) * dt
	diffusion := p.Volatility * math.Sqrt(dt)

	return derived(models.LatticeParameters{
		Scheme: models.SchemeJarrowRudd,
		Steps:  n,
		Dt:     dt,
		U:      math.Exp(drift + diffusion),
		D:      math.Exp(drift - diffusion),
		Pu:     0.5,
		Pd:     0.5,
	})
}
