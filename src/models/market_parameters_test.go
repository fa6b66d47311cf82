package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMarketParameters(t *testing.T) {
	t.Run("step count is clamped to one", func(t *testing.T) {
		p, err := NewMarketParameters(100, 100, 0.05, 0, 1, 0.2, 0, Call, European)
		require.NoError(t, err)
		assert.Equal(t, 1, p.Steps)

		p, err = NewMarketParameters(100, 100, 0.05, 0, 1, 0.2, -12, Put, American)
		require.NoError(t, err)
		assert.Equal(t, 1, p.Steps)
	})

	t.Run("non positive inputs are rejected", func(t *testing.T) {
		_, err := NewMarketParameters(0, 100, 0.05, 0, 1, 0.2, 10, Call, European)
		assert.ErrorIs(t, err, InvalidParameterErr)

		_, err = NewMarketParameters(100, -1, 0.05, 0, 1, 0.2, 10, Call, European)
		assert.ErrorIs(t, err, InvalidParameterErr)

		_, err = NewMarketParameters(100, 100, 0.05, 0, 0, 0.2, 10, Call, European)
		assert.ErrorIs(t, err, InvalidParameterErr)

		_, err = NewMarketParameters(100, 100, 0.05, 0, 1, 0, 10, Call, European)
		assert.ErrorIs(t, err, InvalidParameterErr)

		_, err = NewMarketParameters(100, 100, math.NaN(), 0, 1, 0.2, 10, Call, European)
		assert.ErrorIs(t, err, InvalidParameterErr)
	})

	t.Run("unknown flags are rejected", func(t *testing.T) {
		_, err := NewMarketParameters(100, 100, 0.05, 0, 1, 0.2, 10, "straddle", European)
		assert.ErrorIs(t, err, InvalidParameterErr)

		_, err = NewMarketParameters(100, 100, 0.05, 0, 1, 0.2, 10, Call, "bermudan")
		assert.ErrorIs(t, err, InvalidParameterErr)
	})

	t.Run("copies leave the original unchanged", func(t *testing.T) {
		p, err := NewMarketParameters(100, 100, 0.05, 0, 1, 0.2, 10, Call, European)
		require.NoError(t, err)

		q := p.WithMaturity(2).WithType(Put).WithStyle(American).WithSteps(0)

		assert.Equal(t, 1.0, p.Maturity)
		assert.True(t, p.IsCall())
		assert.True(t, p.IsEuropean())
		assert.Equal(t, 10, p.Steps)

		assert.Equal(t, 2.0, q.Maturity)
		assert.False(t, q.IsCall())
		assert.False(t, q.IsEuropean())
		assert.Equal(t, 1, q.Steps)
	})
}

func TestStepsFromFloat(t *testing.T) {
	n, err := StepsFromFloat(250)
	require.NoError(t, err)
	assert.Equal(t, 250, n)

	n, err = StepsFromFloat(0.4)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = StepsFromFloat(math.NaN())
	assert.ErrorIs(t, err, InvalidParameterErr)

	_, err = StepsFromFloat(math.Inf(1))
	assert.ErrorIs(t, err, InvalidParameterErr)

	n, err = StepsFromFloat(MaxSteps)
	require.NoError(t, err)
	assert.Equal(t, MaxSteps, n)

	_, err = StepsFromFloat(2e9)
	assert.ErrorIs(t, err, InvalidParameterErr)

	_, err = NewMarketParameters(100, 100, 0.05, 0, 1, 0.2, MaxSteps+1, Call, European)
	assert.ErrorIs(t, err, InvalidParameterErr)
}

func TestLatticeParametersValidate(t *testing.T) {
	valid := LatticeParameters{Scheme: SchemeCRR, Steps: 1, Dt: 1, U: 1.2, D: 0.8, Pu: 0.6, Pd: 0.4}
	assert.NoError(t, valid.Validate())

	degenerate := valid
	degenerate.Pu, degenerate.Pd = 1.3, -0.3
	assert.ErrorIs(t, degenerate.Validate(), DegenerateProbabilityErr)

	overflow := valid
	overflow.U = math.Inf(1)
	assert.ErrorIs(t, overflow.Validate(), NumericOverflowErr)
}

func TestResultTable(t *testing.T) {
	table := NewResultTable()
	table.Set(PricingResult{Scheme: SchemeLeisenReimer, Type: Put, Style: American, Price: 6.0872})
	table.Set(PricingResult{Scheme: SchemeBlackScholes, Type: Call, Style: European, Price: 10.4506})
	table.Set(PricingResult{Scheme: SchemeCRR, Type: Call, Style: European, Err: DegenerateProbabilityErr})

	assert.Equal(t, 3, table.Len())

	price, err := table.Price(SchemeBlackScholes, Call, European)
	require.NoError(t, err)
	assert.Equal(t, 10.4506, price)

	_, err = table.Price(SchemeCRR, Call, European)
	assert.ErrorIs(t, err, DegenerateProbabilityErr)

	_, found := table.Get(SchemeJarrowRudd, Call, European)
	assert.False(t, found)

	_, err = table.Price(SchemeJarrowRudd, Call, European)
	assert.Error(t, err)

	results := table.Results()
	require.Len(t, results, 3)
	assert.Equal(t, SchemeBlackScholes, results[0].Scheme)
	assert.Equal(t, SchemeCRR, results[1].Scheme)
	assert.Equal(t, SchemeLeisenReimer, results[2].Scheme)

	assert.Len(t, table.Errors(), 1)
	assert.Contains(t, table.String(), "10.4506")
}

func TestComparisonTable(t *testing.T) {
	table := &ComparisonTable{}
	table.Append(ComparisonRow{Maturity: 0.25, AmericanPut: 3.4746, EuropeanPutBenchmark: 3.3728, AmericanCall: 4.605, EuropeanCallBenchmark: 4.615})

	assert.Equal(t, 1, table.Len())
	assert.Equal(t, []interface{}{0.25, 3.4746, 3.3728, 4.605, 4.615}, table.Rows[0].Values())
	assert.Contains(t, table.String(), "3.4746")
}
