package models

import (
	"fmt"
	"math"
)

type SchemeName string

const (
	SchemeCRR          SchemeName = "CRR"
	SchemeJarrowRudd   SchemeName = "JR"
	SchemeLeisenReimer SchemeName = "LR"
	SchemeBlackScholes SchemeName = "BS"
)

// LatticeParameters are the per-step branch factors and risk-neutral
// probabilities of one binomial discretization. Steps is the step count the
// lattice is built with, which may differ from MarketParameters.Steps.
type LatticeParameters struct {
	Scheme SchemeName
	Steps  int
	Dt     float64
	U      float64
	D      float64
	Pu     float64
	Pd     float64
}

func (l LatticeParameters) Validate() error {
	for _, v := range []float64{l.Dt, l.U, l.D, l.Pu, l.Pd} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("LatticeParameters.Validate: %s: non-finite parameter in %+v: %w", l.Scheme, l, NumericOverflowErr)
		}
	}

	if l.Dt <= 0 || l.U <= 0 || l.D <= 0 {
		return fmt.Errorf("LatticeParameters.Validate: %s: dt, u and d must be positive, found dt=%v u=%v d=%v: %w", l.Scheme, l.Dt, l.U, l.D, NumericOverflowErr)
	}

	if l.Pu < 0 || l.Pu > 1 {
		return fmt.Errorf("LatticeParameters.Validate: %s: pu=%v: %w", l.Scheme, l.Pu, DegenerateProbabilityErr)
	}

	if l.Steps < 1 {
		return fmt.Errorf("LatticeParameters.Validate: %s: steps=%d: %w", l.Scheme, l.Steps, InvalidParameterErr)
	}

	return nil
}
