package run

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jiaming2012/lattice-pricer/src/models"
	"github.com/jiaming2012/lattice-pricer/src/sheets"
	"github.com/jiaming2012/lattice-pricer/src/store"
)

type fakeSpreadsheet struct {
	ranges   map[string][][]interface{}
	updated  []string
	appended int
	cleared  []string
	deleted  int
}

func newFakeSpreadsheet() *fakeSpreadsheet {
	return &fakeSpreadsheet{
		ranges: map[string][][]interface{}{
			sheets.InputRange: {{100.0}, {100.0}, {0.05}, {0.0}, {1.0}, {0.2}, {100.0}},
		},
	}
}

func (f *fakeSpreadsheet) Get(ctx context.Context, spreadsheetId string, sheetRange string) ([][]interface{}, error) {
	return f.ranges[sheetRange], nil
}

func (f *fakeSpreadsheet) Update(ctx context.Context, spreadsheetId string, sheetRange string, values [][]interface{}) error {
	f.updated = append(f.updated, sheetRange)
	f.ranges[sheetRange] = values
	return nil
}

func (f *fakeSpreadsheet) Append(ctx context.Context, spreadsheetId string, sheetName string, values [][]interface{}) error {
	f.appended += len(values)
	return nil
}

func (f *fakeSpreadsheet) Clear(ctx context.Context, spreadsheetId string, sheetRange string) error {
	f.cleared = append(f.cleared, sheetRange)
	return nil
}

func (f *fakeSpreadsheet) EnsureSheet(ctx context.Context, spreadsheetId string, sheetName string) error {
	return nil
}

func (f *fakeSpreadsheet) DeleteSheetsExcept(ctx context.Context, spreadsheetId string, keep ...string) error {
	f.deleted++
	return nil
}

func useFakeWorkbook(t *testing.T, api *fakeSpreadsheet) {
	previous := openWorkbook
	openWorkbook = func(ctx context.Context, src SourceArgs) (*sheets.Workbook, error) {
		return sheets.NewWorkbook(api, "id"), nil
	}

	t.Cleanup(func() { openWorkbook = previous })
}

var atTheMoney = store.ParametersDTO{
	Spot:       100,
	Strike:     100,
	Rate:       0.05,
	Maturity:   1,
	Volatility: 0.2,
	Steps:      100,
}

func TestRun(t *testing.T) {
	ctx := context.Background()

	t.Run("flags source with csv export", func(t *testing.T) {
		outDir := t.TempDir()

		result, err := Run(ctx, RunArgs{
			Source:      SourceArgs{Flags: atTheMoney},
			Maturities:  []float64{0.25, 0.5},
			OutDir:      outDir,
			Concurrency: 2,
		})
		require.NoError(t, err)

		assert.Equal(t, models.Call, result.Parameters.Type)
		assert.Equal(t, 14, result.Prices.Len())
		require.NotNil(t, result.Comparisons)
		assert.Equal(t, 2, result.Comparisons.Len())

		require.Len(t, result.Sinks, 1)
		sink, ok := result.Sinks[0].(*store.CSVSink)
		require.True(t, ok)

		for _, p := range []string{sink.PricesPath, sink.ComparisonsPath} {
			info, err := os.Stat(p)
			require.NoError(t, err)
			assert.Greater(t, info.Size(), int64(0))
		}
	})

	t.Run("yaml source without sweep", func(t *testing.T) {
		p, err := atTheMoney.ToModel()
		require.NoError(t, err)

		path := filepath.Join(t.TempDir(), "params.yaml")
		require.NoError(t, store.WriteYAMLParameters(path, p.WithType(models.Put)))

		result, err := Run(ctx, RunArgs{
			Source:      SourceArgs{ParamsYAML: path},
			Concurrency: 1,
			SkipSweep:   true,
		})
		require.NoError(t, err)

		assert.Equal(t, models.Put, result.Parameters.Type)
		assert.Nil(t, result.Comparisons)
		assert.Empty(t, result.Sinks)

		price, err := result.Prices.Price(models.SchemeBlackScholes, models.Put, models.European)
		require.NoError(t, err)
		assert.Equal(t, 5.5735, price)
	})

	t.Run("invalid flags", func(t *testing.T) {
		bad := atTheMoney
		bad.Volatility = 0

		_, err := Run(ctx, RunArgs{Source: SourceArgs{Flags: bad}})
		assert.ErrorIs(t, err, models.InvalidParameterErr)
	})

	t.Run("missing csv file", func(t *testing.T) {
		_, err := Run(ctx, RunArgs{Source: SourceArgs{ParamsCSV: filepath.Join(t.TempDir(), "missing.csv")}})
		assert.Error(t, err)
	})
}

func TestRunWorkbook(t *testing.T) {
	ctx := context.Background()

	t.Run("existing sheet is reset then written", func(t *testing.T) {
		api := newFakeSpreadsheet()
		useFakeWorkbook(t, api)

		result, err := Run(ctx, RunArgs{
			Source:     SourceArgs{SheetID: "id"},
			Maturities: []float64{0.25},
		})
		require.NoError(t, err)

		assert.Equal(t, 100, result.Parameters.Steps)
		assert.Equal(t, 1, api.deleted)
		assert.Equal(t, []string{sheets.ComparisonsSheetName}, api.cleared)
		assert.Equal(t, []interface{}{10.4506}, api.ranges[sheets.InputSheetName+"!E5:E8"][0])
		// header plus one maturity
		assert.Equal(t, 2, api.appended)
	})

	t.Run("new sheet is seeded from the flags", func(t *testing.T) {
		api := newFakeSpreadsheet()
		delete(api.ranges, sheets.InputRange)
		useFakeWorkbook(t, api)

		flags := atTheMoney
		flags.Strike = 110
		result, err := Run(ctx, RunArgs{
			Source:    SourceArgs{CreateSheet: "lattice", Flags: flags},
			SkipSweep: true,
		})
		require.NoError(t, err)

		assert.Equal(t, 110.0, result.Parameters.Strike)
		assert.Equal(t, sheets.InputRange, api.updated[0])
	})
}

func TestConverge(t *testing.T) {
	ctx := context.Background()

	t.Run("every scheme", func(t *testing.T) {
		report, err := Converge(ctx, ConvergeArgs{
			Source: SourceArgs{Flags: atTheMoney},
			Steps:  []int{50, 100},
		})
		require.NoError(t, err)

		assert.InDelta(t, 10.450583572185565, report.Benchmark, 1e-9)
		assert.Len(t, report.Schemes, 3)
	})

	t.Run("single scheme", func(t *testing.T) {
		report, err := Converge(ctx, ConvergeArgs{
			Source: SourceArgs{Flags: atTheMoney},
			Steps:  []int{50},
			Scheme: models.SchemeJarrowRudd,
		})
		require.NoError(t, err)

		require.Len(t, report.Schemes, 1)
		assert.Equal(t, models.SchemeJarrowRudd, report.Schemes[0].Scheme)

		_, err = Converge(ctx, ConvergeArgs{Source: SourceArgs{Flags: atTheMoney}, Steps: []int{50}, Scheme: "XX"})
		assert.ErrorIs(t, err, models.UnknownSchemeErr)
	})

	t.Run("reading a sheet leaves its results alone", func(t *testing.T) {
		api := newFakeSpreadsheet()
		useFakeWorkbook(t, api)

		report, err := Converge(ctx, ConvergeArgs{
			Source: SourceArgs{SheetID: "id"},
			Steps:  []int{50},
		})
		require.NoError(t, err)
		assert.Len(t, report.Schemes, 3)

		assert.Empty(t, api.updated)
		assert.Empty(t, api.cleared)
		assert.Zero(t, api.deleted)
		assert.Zero(t, api.appended)
	})
}

func TestNewServer(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := newServer(ctx, ServeArgs{Port: 8081, Concurrency: 2})

	assert.Equal(t, ":8081", srv.Addr)
	assert.Equal(t, ReadHeaderTimeout, srv.ReadHeaderTimeout)
	assert.NotZero(t, srv.ReadHeaderTimeout)
	require.NotNil(t, srv.Handler)
	assert.Equal(t, ctx, srv.BaseContext(nil))
}
