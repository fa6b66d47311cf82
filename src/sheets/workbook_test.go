package sheets

import (
	"context"
	"fmt"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jiaming2012/lattice-pricer/src/models"
)

type fakeSpreadsheet struct {
	ranges   map[string][][]interface{}
	appended map[string][][]interface{}
	cleared  []string
	sheets   map[string]bool
}

func newFakeSpreadsheet() *fakeSpreadsheet {
	return &fakeSpreadsheet{
		ranges:   make(map[string][][]interface{}),
		appended: make(map[string][][]interface{}),
		sheets:   map[string]bool{InputSheetName: true},
	}
}

func (f *fakeSpreadsheet) Get(ctx context.Context, spreadsheetId string, sheetRange string) ([][]interface{}, error) {
	values, found := f.ranges[sheetRange]
	if !found {
		return nil, fmt.Errorf("range %s not found", sheetRange)
	}

	return values, nil
}

func (f *fakeSpreadsheet) Update(ctx context.Context, spreadsheetId string, sheetRange string, values [][]interface{}) error {
	f.ranges[sheetRange] = values
	return nil
}

func (f *fakeSpreadsheet) Append(ctx context.Context, spreadsheetId string, sheetName string, values [][]interface{}) error {
	f.appended[sheetName] = append(f.appended[sheetName], values...)
	return nil
}

func (f *fakeSpreadsheet) Clear(ctx context.Context, spreadsheetId string, sheetRange string) error {
	f.cleared = append(f.cleared, sheetRange)
	delete(f.appended, sheetRange)
	return nil
}

func (f *fakeSpreadsheet) EnsureSheet(ctx context.Context, spreadsheetId string, sheetName string) error {
	f.sheets[sheetName] = true
	return nil
}

func (f *fakeSpreadsheet) DeleteSheetsExcept(ctx context.Context, spreadsheetId string, keep ...string) error {
	for name := range f.sheets {
		if !slices.Contains(keep, name) {
			delete(f.sheets, name)
		}
	}

	return nil
}

func TestWorkbook(t *testing.T) {
	ctx := context.Background()

	t.Run("load parameters from the input cells", func(t *testing.T) {
		api := newFakeSpreadsheet()
		api.ranges[InputRange] = [][]interface{}{{100.0}, {"95"}, {0.05}, {0.0}, {1.0}, {0.2}, {0.0}}

		p, err := NewWorkbook(api, "id").LoadParameters(ctx)
		require.NoError(t, err)

		assert.Equal(t, 95.0, p.Strike)
		assert.Equal(t, 1, p.Steps)
		assert.Equal(t, models.Call, p.Type)
	})

	t.Run("bad input cells", func(t *testing.T) {
		api := newFakeSpreadsheet()
		api.ranges[InputRange] = [][]interface{}{{100.0}, {"abc"}, {0.05}, {0.0}, {1.0}, {0.2}, {10.0}}

		_, err := NewWorkbook(api, "id").LoadParameters(ctx)
		assert.ErrorIs(t, err, models.InvalidParameterErr)

		api.ranges[InputRange] = [][]interface{}{{100.0}}
		_, err = NewWorkbook(api, "id").LoadParameters(ctx)
		assert.ErrorIs(t, err, models.InvalidParameterErr)
	})

	t.Run("reset zeroes the output blocks", func(t *testing.T) {
		api := newFakeSpreadsheet()
		api.sheets["Sheet1"] = true
		api.sheets["Old Results"] = true
		require.NoError(t, NewWorkbook(api, "id").Reset(ctx))

		assert.Equal(t, map[string]bool{InputSheetName: true, ComparisonsSheetName: true}, api.sheets)
		assert.Equal(t, []string{ComparisonsSheetName}, api.cleared)

		block := api.ranges[InputSheetName+"!E5:P8"]
		require.Len(t, block, 4)
		assert.Len(t, block[0], 12)
		assert.Equal(t, 0.0, block[3][11])
		assert.Len(t, api.ranges[InputSheetName+"!E12:P14"], 3)
	})

	t.Run("written parameters load back", func(t *testing.T) {
		api := newFakeSpreadsheet()
		delete(api.sheets, InputSheetName)

		p, err := models.NewMarketParameters(100, 110, 0.05, 0.03, 0.5, 0.3, 50, models.Call, models.European)
		require.NoError(t, err)

		wb := NewWorkbook(api, "id")
		require.NoError(t, wb.WriteParameters(ctx, p))
		assert.True(t, api.sheets[InputSheetName])

		loaded, err := wb.LoadParameters(ctx)
		require.NoError(t, err)
		assert.Equal(t, p, loaded)
	})

	t.Run("write prices into the workbook layout", func(t *testing.T) {
		api := newFakeSpreadsheet()

		table := models.NewResultTable()
		table.Set(models.PricingResult{Scheme: models.SchemeBlackScholes, Type: models.Call, Style: models.European, Price: 10.4506})
		table.Set(models.PricingResult{Scheme: models.SchemeLeisenReimer, Type: models.Call, Style: models.European, Price: 10.4505})
		table.Set(models.PricingResult{Scheme: models.SchemeCRR, Type: models.Put, Style: models.American, Err: models.DegenerateProbabilityErr})

		require.NoError(t, NewWorkbook(api, "id").WritePrices(ctx, table))

		europeanCalls := api.ranges[InputSheetName+"!E5:E8"]
		require.Len(t, europeanCalls, 4)
		assert.Equal(t, 10.4506, europeanCalls[0][0])
		assert.Equal(t, "", europeanCalls[1][0])
		assert.Equal(t, 10.4505, europeanCalls[3][0])

		americanPuts := api.ranges[InputSheetName+"!K12:K14"]
		require.Len(t, americanPuts, 3)
		assert.Contains(t, americanPuts[0][0], "#ERR")
	})

	t.Run("write comparisons with a header", func(t *testing.T) {
		api := newFakeSpreadsheet()

		table := &models.ComparisonTable{}
		table.Append(models.ComparisonRow{Maturity: 0.25, AmericanPut: 3.4746, EuropeanPutBenchmark: 3.3728, AmericanCall: 4.605, EuropeanCallBenchmark: 4.615})
		table.Append(models.ComparisonRow{Maturity: 0.5})

		require.NoError(t, NewWorkbook(api, "id").WriteComparisons(ctx, table))

		rows := api.appended[ComparisonsSheetName]
		require.Len(t, rows, 3)
		assert.Equal(t, []interface{}{"Expiry", "Am Tree P", "BS P", "Am Tree C", "BS C"}, rows[0])
		assert.Equal(t, []interface{}{0.25, 3.4746, 3.3728, 4.605, 4.615}, rows[1])
		assert.Equal(t, 0.5, rows[2][0])
	})
}

func TestBlockSize(t *testing.T) {
	rows, cols := blockSize("Stock Option!E5:P8")
	assert.Equal(t, 4, rows)
	assert.Equal(t, 12, cols)
}
