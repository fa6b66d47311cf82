package lattice

import (
	"math"

	"github.com/jiaming2012/lattice-pricer/src/models"
)

// CRR is the Cox, Ross and Rubinstein (1979) lattice: d = 1/u.
type CRR struct{}

func (CRR) Name() models.SchemeName {
	return models.SchemeCRR
}

func (CRR) Derive(p models.MarketParameters) (models.LatticeParameters, error) {
	n := models.ClampSteps(p.Steps)
	dt := p.Maturity / float64(n)
	u := math.Exp(p.Volatility * math.Sqrt(dt))
	d := 1 / u
	pu := (math.Exp((p.Rate-p.DividendYield)*dt) - d) / (u - d)

	return derived(models.LatticeParameters{
		Scheme: models.SchemeCRR,
		Steps:  n,
		Dt:     dt,
		U:      u,
		D:      d,
		Pu:     pu,
		Pd:     1 - pu,
	})
}
