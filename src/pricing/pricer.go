package pricing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/jiaming2012/lattice-pricer/src/benchmark"
	"github.com/jiaming2012/lattice-pricer/src/lattice"
	"github.com/jiaming2012/lattice-pricer/src/models"
	"github.com/jiaming2012/lattice-pricer/src/utils"
)

var tracer = otel.Tracer("github.com/jiaming2012/lattice-pricer/src/pricing")

var (
	optionTypes    = []models.OptionType{models.Call, models.Put}
	exerciseStyles = []models.ExerciseStyle{models.European, models.American}
)

type Pricer struct {
	Schemes     []lattice.Scheme
	Concurrency int
}

// NewPricer prices with every lattice scheme. concurrency bounds how many
// scheme/type/style combinations are priced at once; values below 1 price
// them one at a time.
func NewPricer(concurrency int) *Pricer {
	if concurrency < 1 {
		concurrency = 1
	}

	return &Pricer{
		Schemes:     lattice.Schemes(),
		Concurrency: concurrency,
	}
}

// PriceOne prices params with a single scheme. A scheme that cannot build a
// valid lattice returns a result with Err set.
func (p *Pricer) PriceOne(ctx context.Context, scheme lattice.Scheme, params models.MarketParameters) models.PricingResult {
	result := models.PricingResult{
		Scheme: scheme.Name(),
		Type:   params.Type,
		Style:  params.Style,
	}

	price, lp, err := lattice.Price(scheme, params)
	if err != nil {
		log.WithContext(ctx).WithFields(log.Fields{
			"scheme": scheme.Name(),
			"type":   params.Type,
			"style":  params.Style,
			"steps":  lp.Steps,
			"pu":     lp.Pu,
		}).Warnf("lattice pricing failed: %v", err)

		result.Err = err
		return result
	}

	result.Price = utils.RoundPrice(price)

	trace.SpanFromContext(ctx).AddEvent("lattice priced", trace.WithAttributes(
		attribute.String("scheme", string(scheme.Name())),
		attribute.String("option.type", string(params.Type)),
		attribute.String("option.style", string(params.Style)),
		attribute.Int("lattice.steps", lp.Steps),
	))

	return result
}

// Benchmark returns the closed form european price of params as a result row.
func (p *Pricer) Benchmark(params models.MarketParameters) models.PricingResult {
	result := models.PricingResult{
		Scheme: models.SchemeBlackScholes,
		Type:   params.Type,
		Style:  params.Style,
	}

	price, err := benchmark.Price(params)
	if err != nil {
		result.Err = err
		return result
	}

	result.Price = utils.RoundPrice(price)
	return result
}

// PriceAll computes the closed form european call and put and every lattice
// scheme for both option types and both exercise styles. The parameters are
// validated once; a failing scheme is recorded in the table without stopping
// the others.
func (p *Pricer) PriceAll(ctx context.Context, params models.MarketParameters) (*models.ResultTable, error) {
	sessionID := uuid.New()

	ctx, span := tracer.Start(ctx, "PriceAll")
	defer span.End()

	span.SetAttributes(
		attribute.String("session.id", sessionID.String()),
		attribute.Int("lattice.steps", params.Steps),
		attribute.Float64("option.maturity", params.Maturity),
	)

	logger := log.WithContext(ctx).WithField("session", sessionID)

	if err := params.Validate(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid parameters")
		return nil, fmt.Errorf("Pricer.PriceAll: %w", err)
	}

	logger.Infof("pricing %v", params)

	table := models.NewResultTable()

	for _, optionType := range optionTypes {
		table.Set(p.Benchmark(params.WithType(optionType).WithStyle(models.European)))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.Concurrency)

	for _, style := range exerciseStyles {
		for _, optionType := range optionTypes {
			for _, scheme := range p.Schemes {
				scheme := scheme
				combination := params.WithType(optionType).WithStyle(style)

				g.Go(func() error {
					if err := gctx.Err(); err != nil {
						return err
					}

					table.Set(p.PriceOne(gctx, scheme, combination))
					return nil
				})
			}
		}
	}

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("Pricer.PriceAll: %w", err)
	}

	if errs := table.Errors(); len(errs) > 0 {
		span.SetAttributes(attribute.Int("pricing.failures", len(errs)))
		logger.Warnf("%d of %d combinations failed", len(errs), table.Len())
	}

	logger.Infof("priced %d combinations", table.Len())

	return table, nil
}
