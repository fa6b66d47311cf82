package benchmark

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/jiaming2012/lattice-pricer/src/models"
)

// D1D2 returns the Black-Scholes d1 and d2 terms with a continuous dividend yield.
func D1D2(p models.MarketParameters) (float64, float64) {
	volSqrtT := p.Volatility * math.Sqrt(p.Maturity)
	d1 := (math.Log(p.Spot/p.Strike) + (p.Rate-p.DividendYield+0.5*p.Volatility*p.Volatility)*p.Maturity) / volSqrtT
	d2 := d1 - volSqrtT

	return d1, d2
}

// Price is the closed form european price. American exercise has no closed
// form here and returns BenchmarkUnavailableErr.
func Price(p models.MarketParameters) (float64, error) {
	if err := p.Validate(); err != nil {
		return 0, fmt.Errorf("benchmark.Price: %w", err)
	}

	if !p.IsEuropean() {
		return 0, fmt.Errorf("benchmark.Price: %s: %w", p.Style, models.BenchmarkUnavailableErr)
	}

	d1, d2 := D1D2(p)
	normal := distuv.UnitNormal

	spotPV := p.Spot * math.Exp(-p.DividendYield*p.Maturity)
	strikePV := p.Strike * math.Exp(-p.Rate*p.Maturity)

	var price float64
	if p.IsCall() {
		price = spotPV*normal.CDF(d1) - strikePV*normal.CDF(d2)
	} else {
		price = strikePV*normal.CDF(-d2) - spotPV*normal.CDF(-d1)
	}

	if math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, fmt.Errorf("benchmark.Price: %v: %w", p, models.NumericOverflowErr)
	}

	return price, nil
}
