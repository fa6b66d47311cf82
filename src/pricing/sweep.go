package pricing

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jiaming2012/lattice-pricer/src/lattice"
	"github.com/jiaming2012/lattice-pricer/src/models"
)

// Sweep reprices params for each maturity, pairing the CRR american put and
// call with the closed form european put and call. Rows keep the order of
// maturities. A maturity whose lattice cannot be priced stops the sweep, since
// the row would be incomplete.
func (p *Pricer) Sweep(ctx context.Context, params models.MarketParameters, maturities []float64) (*models.ComparisonTable, error) {
	ctx, span := tracer.Start(ctx, "Sweep")
	defer span.End()

	span.SetAttributes(attribute.Int("sweep.maturities", len(maturities)))

	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("Pricer.Sweep: %w", err)
	}

	table := &models.ComparisonTable{
		Rows: make([]models.ComparisonRow, 0, len(maturities)),
	}

	for _, maturity := range maturities {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("Pricer.Sweep: %w", err)
		}

		atMaturity := params.WithMaturity(maturity).WithStyle(models.American)
		if err := atMaturity.Validate(); err != nil {
			return nil, fmt.Errorf("Pricer.Sweep: maturity %v: %w", maturity, err)
		}

		row := models.ComparisonRow{Maturity: maturity}

		var err error
		if row.AmericanPut, row.EuropeanPutBenchmark, err = p.compare(ctx, atMaturity.WithType(models.Put)); err != nil {
			return nil, fmt.Errorf("Pricer.Sweep: maturity %v: %w", maturity, err)
		}

		if row.AmericanCall, row.EuropeanCallBenchmark, err = p.compare(ctx, atMaturity.WithType(models.Call)); err != nil {
			return nil, fmt.Errorf("Pricer.Sweep: maturity %v: %w", maturity, err)
		}

		table.Append(row)
	}

	log.WithContext(ctx).Infof("swept %d maturities", table.Len())

	return table, nil
}

// compare returns the CRR american price of params and the closed form
// european price of the same contract.
func (p *Pricer) compare(ctx context.Context, params models.MarketParameters) (float64, float64, error) {
	american := p.PriceOne(ctx, lattice.CRR{}, params)
	if american.Err != nil {
		return 0, 0, american.Err
	}

	european := p.Benchmark(params.WithStyle(models.European))
	if european.Err != nil {
		return 0, 0, european.Err
	}

	return american.Price, european.Price, nil
}
