package run

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/lattice-pricer/src/lattice"
	"github.com/jiaming2012/lattice-pricer/src/models"
	"github.com/jiaming2012/lattice-pricer/src/pricing"
	"github.com/jiaming2012/lattice-pricer/src/router"
	"github.com/jiaming2012/lattice-pricer/src/sheets"
	"github.com/jiaming2012/lattice-pricer/src/store"
)

// SourceArgs selects where the market parameters come from. A new workbook
// (CreateSheet) is seeded from Flags; otherwise the first non-empty of
// SheetID, ParamsCSV and ParamsYAML wins, falling back to Flags.
type SourceArgs struct {
	SheetID     string
	CreateSheet string
	FolderID    string
	ParamsCSV   string
	ParamsYAML  string
	Flags       store.ParametersDTO
}

type RunArgs struct {
	Source      SourceArgs
	Maturities  []float64
	OutDir      string
	Concurrency int
	SkipSweep   bool
}

type RunResults struct {
	Parameters  models.MarketParameters
	Prices      *models.ResultTable
	Comparisons *models.ComparisonTable
	Sinks       []store.ResultSink
}

// resetter is implemented by sinks whose previous output must be cleared
// before new results are written.
type resetter interface {
	Reset(ctx context.Context) error
}

// openWorkbook connects to Google Sheets; tests replace it with a fake.
var openWorkbook = func(ctx context.Context, src SourceArgs) (*sheets.Workbook, error) {
	client, err := sheets.NewClientFromEnv(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}

	if src.CreateSheet != "" {
		return client.CreateWorkbook(ctx, src.CreateSheet, src.FolderID)
	}

	return client.OpenWorkbook(src.SheetID), nil
}

// session ties a parameter source to the sinks its results are written to.
type session struct {
	source store.ParameterSource
	sinks  []store.ResultSink
}

func newSession(ctx context.Context, src SourceArgs, outDir string) (*session, error) {
	s := &session{}

	switch {
	case src.SheetID != "" || src.CreateSheet != "":
		wb, err := openWorkbook(ctx, src)
		if err != nil {
			return nil, err
		}

		if src.CreateSheet != "" {
			params, err := src.Flags.ToModel()
			if err != nil {
				return nil, err
			}

			if err := wb.WriteParameters(ctx, params); err != nil {
				return nil, err
			}
		}

		s.source = wb
		s.sinks = append(s.sinks, wb)
	case src.ParamsCSV != "":
		s.source = store.CSVParameterFile{Path: src.ParamsCSV}
	case src.ParamsYAML != "":
		s.source = store.YAMLParameterFile{Path: src.ParamsYAML}
	default:
		s.source = flagSource(src.Flags)
	}

	if outDir != "" {
		sink, err := store.NewCSVSink(outDir, "lattice")
		if err != nil {
			return nil, err
		}

		s.sinks = append(s.sinks, sink)
	}

	return s, nil
}

type flagSource store.ParametersDTO

func (f flagSource) LoadParameters(ctx context.Context) (models.MarketParameters, error) {
	return store.ParametersDTO(f).ToModel()
}

// Run prices every scheme for the loaded parameters, then sweeps the
// maturities, writing both tables to each configured sink.
func Run(ctx context.Context, args RunArgs) (RunResults, error) {
	s, err := newSession(ctx, args.Source, args.OutDir)
	if err != nil {
		return RunResults{}, fmt.Errorf("Run: %w", err)
	}

	params, err := s.source.LoadParameters(ctx)
	if err != nil {
		return RunResults{}, fmt.Errorf("Run: failed to load parameters: %w", err)
	}

	log.WithContext(ctx).Infof("Pricing %s", params)

	pricer := pricing.NewPricer(args.Concurrency)

	prices, err := pricer.PriceAll(ctx, params)
	if err != nil {
		return RunResults{}, fmt.Errorf("Run: %w", err)
	}

	results := RunResults{Parameters: params, Prices: prices, Sinks: s.sinks}

	for _, sink := range s.sinks {
		if r, ok := sink.(resetter); ok {
			if err := r.Reset(ctx); err != nil {
				return results, fmt.Errorf("Run: %w", err)
			}
		}

		if err := sink.WritePrices(ctx, prices); err != nil {
			return results, fmt.Errorf("Run: %w", err)
		}
	}

	if args.SkipSweep {
		return results, nil
	}

	comparisons, err := pricer.Sweep(ctx, params, args.Maturities)
	if err != nil {
		return results, fmt.Errorf("Run: %w", err)
	}

	results.Comparisons = comparisons

	for _, sink := range s.sinks {
		if err := sink.WriteComparisons(ctx, comparisons); err != nil {
			return results, fmt.Errorf("Run: %w", err)
		}
	}

	return results, nil
}

type ConvergeArgs struct {
	Source      SourceArgs
	Steps       []int
	Scheme      models.SchemeName
	Concurrency int
}

func Converge(ctx context.Context, args ConvergeArgs) (*pricing.ConvergenceReport, error) {
	s, err := newSession(ctx, args.Source, "")
	if err != nil {
		return nil, fmt.Errorf("Converge: %w", err)
	}

	params, err := s.source.LoadParameters(ctx)
	if err != nil {
		return nil, fmt.Errorf("Converge: failed to load parameters: %w", err)
	}

	pricer := pricing.NewPricer(args.Concurrency)
	if args.Scheme != "" {
		scheme, err := lattice.SchemeByName(args.Scheme)
		if err != nil {
			return nil, fmt.Errorf("Converge: %w", err)
		}

		pricer.Schemes = []lattice.Scheme{scheme}
	}

	return pricer.Converge(ctx, params, args.Steps)
}

type ServeArgs struct {
	Port        int
	Concurrency int
}

// ReadHeaderTimeout bounds how long a client may take to send request headers.
const ReadHeaderTimeout = 10 * time.Second

func newServer(ctx context.Context, args ServeArgs) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", args.Port),
		Handler:           router.NewHandler(pricing.NewPricer(args.Concurrency)),
		ReadHeaderTimeout: ReadHeaderTimeout,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}
}

// Serve blocks until ctx is cancelled, then shuts the server down.
func Serve(ctx context.Context, args ServeArgs) error {
	srv := newServer(ctx, args)

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("Serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("Serve: shutdown: %w", err)
	}

	return nil
}
