package pricing

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/montanaflynn/stats"
	"github.com/olekukonko/tablewriter"
	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/lattice-pricer/src/benchmark"
	"github.com/jiaming2012/lattice-pricer/src/lattice"
	"github.com/jiaming2012/lattice-pricer/src/models"
)

type ConvergencePoint struct {
	Steps          int     `json:"steps" csv:"Steps"`
	EffectiveSteps int     `json:"effective_steps" csv:"Effective Steps"`
	Price          float64 `json:"price" csv:"Price"`
	AbsoluteError  float64 `json:"absolute_error" csv:"Absolute Error"`
}

type ConvergenceSummary struct {
	MeanError   float64 `json:"mean_error"`
	MaxError    float64 `json:"max_error"`
	StdDevError float64 `json:"std_dev_error"`
	FinalError  float64 `json:"final_error"`
}

type SchemeConvergence struct {
	Scheme  models.SchemeName  `json:"scheme"`
	Points  []ConvergencePoint `json:"points"`
	Summary ConvergenceSummary `json:"summary"`
}

// ConvergenceReport compares the european lattice prices of each scheme
// against the closed form price for an increasing list of step counts.
type ConvergenceReport struct {
	Benchmark float64              `json:"benchmark"`
	Schemes   []*SchemeConvergence `json:"schemes"`
}

// Converge prices params as a european option for every step count in steps.
// Prices are left unrounded so that errors below 1e-4 remain visible.
func (p *Pricer) Converge(ctx context.Context, params models.MarketParameters, steps []int) (*ConvergenceReport, error) {
	ctx, span := tracer.Start(ctx, "Converge")
	defer span.End()

	if len(steps) == 0 {
		return nil, fmt.Errorf("Pricer.Converge: no step counts given")
	}

	params = params.WithStyle(models.European)

	bs, err := benchmark.Price(params)
	if err != nil {
		return nil, fmt.Errorf("Pricer.Converge: %w", err)
	}

	report := &ConvergenceReport{Benchmark: bs}

	for _, scheme := range p.Schemes {
		sc := &SchemeConvergence{Scheme: scheme.Name()}
		errs := make([]float64, 0, len(steps))

		for _, n := range steps {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("Pricer.Converge: %w", err)
			}

			price, lp, err := lattice.Price(scheme, params.WithSteps(n))
			if err != nil {
				return nil, fmt.Errorf("Pricer.Converge: %s n=%d: %w", scheme.Name(), n, err)
			}

			absErr := math.Abs(price - bs)
			errs = append(errs, absErr)
			sc.Points = append(sc.Points, ConvergencePoint{
				Steps:          models.ClampSteps(n),
				EffectiveSteps: lp.Steps,
				Price:          price,
				AbsoluteError:  absErr,
			})
		}

		if sc.Summary, err = summarize(errs); err != nil {
			return nil, fmt.Errorf("Pricer.Converge: %s: %w", scheme.Name(), err)
		}

		log.WithContext(ctx).WithFields(log.Fields{
			"scheme":      scheme.Name(),
			"final_error": sc.Summary.FinalError,
		}).Debug("convergence computed")

		report.Schemes = append(report.Schemes, sc)
	}

	return report, nil
}

func summarize(errs []float64) (ConvergenceSummary, error) {
	mean, err := stats.Mean(errs)
	if err != nil {
		return ConvergenceSummary{}, fmt.Errorf("failed to calculate mean: %v", err)
	}

	maxErr, err := stats.Max(errs)
	if err != nil {
		return ConvergenceSummary{}, fmt.Errorf("failed to calculate max: %v", err)
	}

	sd, err := stats.StandardDeviation(errs)
	if err != nil {
		return ConvergenceSummary{}, fmt.Errorf("failed to calculate the standard deviation: %v", err)
	}

	return ConvergenceSummary{
		MeanError:   mean,
		MaxError:    maxErr,
		StdDevError: sd,
		FinalError:  errs[len(errs)-1],
	}, nil
}

func (r *ConvergenceReport) Get(scheme models.SchemeName) (*SchemeConvergence, bool) {
	for _, sc := range r.Schemes {
		if sc.Scheme == scheme {
			return sc, true
		}
	}

	return nil, false
}

func (r *ConvergenceReport) String() string {
	display := &strings.Builder{}
	display.WriteString(fmt.Sprintf("Closed form: %.6f\n", r.Benchmark))

	table := tablewriter.NewWriter(display)
	table.SetHeader([]string{"Model", "Steps", "Price", "Abs Error"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)

	for _, sc := range r.Schemes {
		for _, pt := range sc.Points {
			table.Append([]string{
				string(sc.Scheme),
				fmt.Sprintf("%d", pt.EffectiveSteps),
				fmt.Sprintf("%.6f", pt.Price),
				fmt.Sprintf("%.2e", pt.AbsoluteError),
			})
		}

		table.Append([]string{
			string(sc.Scheme),
			"mean/max/sd",
			"",
			fmt.Sprintf("%.2e / %.2e / %.2e", sc.Summary.MeanError, sc.Summary.MaxError, sc.Summary.StdDevError),
		})
	}

	table.Render()
	return display.String()
}
