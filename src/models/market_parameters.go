package models

import (
	"fmt"
	"math"
)

// MarketParameters is an immutable snapshot of the inputs to one pricing call.
// Copies with a single field changed are produced by the With* methods.
type MarketParameters struct {
	Spot          float64       `json:"spot" yaml:"spot"`
	Strike        float64       `json:"strike" yaml:"strike"`
	Rate          float64       `json:"rate" yaml:"rate"`
	DividendYield float64       `json:"dividend_yield" yaml:"dividend_yield"`
	Maturity      float64       `json:"maturity" yaml:"maturity"`
	Volatility    float64       `json:"volatility" yaml:"volatility"`
	Steps         int           `json:"steps" yaml:"steps"`
	Type          OptionType    `json:"type" yaml:"type"`
	Style         ExerciseStyle `json:"style" yaml:"style"`
}

func NewMarketParameters(spot, strike, rate, dividendYield, maturity, volatility float64, steps int, optionType OptionType, style ExerciseStyle) (MarketParameters, error) {
	p := MarketParameters{
		Spot:          spot,
		Strike:        strike,
		Rate:          rate,
		DividendYield: dividendYield,
		Maturity:      maturity,
		Volatility:    volatility,
		Steps:         ClampSteps(steps),
		Type:          optionType,
		Style:         style,
	}

	if err := p.Validate(); err != nil {
		return MarketParameters{}, err
	}

	return p, nil
}

// MaxSteps bounds the lattice size. Each tree holds (n+1)^2 nodes and a
// pricing session builds several at once.
const MaxSteps = 2500

// ClampSteps enforces at least one time step.
func ClampSteps(steps int) int {
	if steps < 1 {
		return 1
	}

	return steps
}

// StepsFromFloat coerces a step count read from an external store.
func StepsFromFloat(v float64) (int, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v > MaxSteps {
		return 0, fmt.Errorf("StepsFromFloat: step count %v: %w", v, InvalidParameterErr)
	}

	return ClampSteps(int(v)), nil
}

func (p MarketParameters) Validate() error {
	positive := []struct {
		name  string
		value float64
	}{
		{"spot", p.Spot},
		{"strike", p.Strike},
		{"maturity", p.Maturity},
		{"volatility", p.Volatility},
	}

	for _, f := range positive {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) || f.value <= 0 {
			return fmt.Errorf("MarketParameters.Validate: %s must be positive, found %v: %w", f.name, f.value, InvalidParameterErr)
		}
	}

	if math.IsNaN(p.Rate) || math.IsInf(p.Rate, 0) {
		return fmt.Errorf("MarketParameters.Validate: rate must be finite, found %v: %w", p.Rate, InvalidParameterErr)
	}

	if math.IsNaN(p.DividendYield) || math.IsInf(p.DividendYield, 0) {
		return fmt.Errorf("MarketParameters.Validate: dividend yield must be finite, found %v: %w", p.DividendYield, InvalidParameterErr)
	}

	if p.Steps < 1 || p.Steps > MaxSteps {
		return fmt.Errorf("MarketParameters.Validate: steps must be between 1 and %d, found %d: %w", MaxSteps, p.Steps, InvalidParameterErr)
	}

	if err := p.Type.Validate(); err != nil {
		return fmt.Errorf("MarketParameters.Validate: %v: %w", err, InvalidParameterErr)
	}

	if err := p.Style.Validate(); err != nil {
		return fmt.Errorf("MarketParameters.Validate: %v: %w", err, InvalidParameterErr)
	}

	return nil
}

func (p MarketParameters) IsCall() bool {
	return p.Type == Call
}

func (p MarketParameters) IsEuropean() bool {
	return p.Style == European
}

func (p MarketParameters) WithMaturity(maturity float64) MarketParameters {
	p.Maturity = maturity
	return p
}

func (p MarketParameters) WithType(optionType OptionType) MarketParameters {
	p.Type = optionType
	return p
}

func (p MarketParameters) WithStyle(style ExerciseStyle) MarketParameters {
	p.Style = style
	return p
}

func (p MarketParameters) WithSteps(steps int) MarketParameters {
	p.Steps = ClampSteps(steps)
	return p
}

func (p MarketParameters) String() string {
	return fmt.Sprintf("S0=%v K=%v r=%v div=%v T=%v sigma=%v n=%d %s/%s", p.Spot, p.Strike, p.Rate, p.DividendYield, p.Maturity, p.Volatility, p.Steps, p.Style, p.Type)
}
