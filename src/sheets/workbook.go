package sheets

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/lattice-pricer/src/models"
	"github.com/jiaming2012/lattice-pricer/src/store"
)

const (
	InputSheetName       = "Stock Option"
	ComparisonsSheetName = "Comparisons"
)

// InputRange holds spot, strike, rate, dividend yield, maturity, volatility and steps.
const InputRange = InputSheetName + "!B4:B10"

var outputBlocks = []string{
	InputSheetName + "!E5:P8",
	InputSheetName + "!E12:P14",
}

// priceCells places each price in the workbook: the european block lists
// the closed form then CRR, JR, LR; the american block CRR, JR, LR.
var priceCells = []struct {
	sheetRange string
	style      models.ExerciseStyle
	typ        models.OptionType
	schemes    []models.SchemeName
}{
	{InputSheetName + "!E5:E8", models.European, models.Call, []models.SchemeName{models.SchemeBlackScholes, models.SchemeCRR, models.SchemeJarrowRudd, models.SchemeLeisenReimer}},
	{InputSheetName + "!K5:K8", models.European, models.Put, []models.SchemeName{models.SchemeBlackScholes, models.SchemeCRR, models.SchemeJarrowRudd, models.SchemeLeisenReimer}},
	{InputSheetName + "!E12:E14", models.American, models.Call, []models.SchemeName{models.SchemeCRR, models.SchemeJarrowRudd, models.SchemeLeisenReimer}},
	{InputSheetName + "!K12:K14", models.American, models.Put, []models.SchemeName{models.SchemeCRR, models.SchemeJarrowRudd, models.SchemeLeisenReimer}},
}

// Workbook reads the inputs from and writes the prices to a spreadsheet laid
// out as the "Stock Option" and "Comparisons" sheets.
type Workbook struct {
	api           SpreadsheetAPI
	spreadsheetId string
}

var _ store.ParameterSource = (*Workbook)(nil)
var _ store.ResultSink = (*Workbook)(nil)

func NewWorkbook(api SpreadsheetAPI, spreadsheetId string) *Workbook {
	return &Workbook{
		api:           api,
		spreadsheetId: spreadsheetId,
	}
}

// Reset zeroes the output blocks of the input sheet and empties the
// comparisons sheet, creating it when missing. Any other sheet is deleted.
func (w *Workbook) Reset(ctx context.Context) error {
	if err := w.api.EnsureSheet(ctx, w.spreadsheetId, ComparisonsSheetName); err != nil {
		return fmt.Errorf("Workbook.Reset: %w", err)
	}

	if err := w.api.DeleteSheetsExcept(ctx, w.spreadsheetId, InputSheetName, ComparisonsSheetName); err != nil {
		return fmt.Errorf("Workbook.Reset: %w", err)
	}

	if err := w.api.Clear(ctx, w.spreadsheetId, ComparisonsSheetName); err != nil {
		return fmt.Errorf("Workbook.Reset: failed to clear %s: %w", ComparisonsSheetName, err)
	}

	for _, block := range outputBlocks {
		if err := w.api.Update(ctx, w.spreadsheetId, block, zeros(block)); err != nil {
			return fmt.Errorf("Workbook.Reset: failed to zero %s: %w", block, err)
		}
	}

	return nil
}

func zeros(block string) [][]interface{} {
	rows, cols := blockSize(block)
	values := make([][]interface{}, rows)
	for i := range values {
		values[i] = make([]interface{}, cols)
		for j := range values[i] {
			values[i][j] = 0.0
		}
	}

	return values
}

// blockSize returns the dimensions of an A1 range with single letter columns, e.g. "Sheet!E5:P8".
func blockSize(block string) (int, int) {
	cells := block[strings.LastIndex(block, "!")+1:]
	corners := strings.Split(cells, ":")
	startCol, startRow := corners[0][0], corners[0][1:]
	endCol, endRow := corners[1][0], corners[1][1:]

	r0, _ := strconv.Atoi(startRow)
	r1, _ := strconv.Atoi(endRow)

	return r1 - r0 + 1, int(endCol-startCol) + 1
}

func (w *Workbook) LoadParameters(ctx context.Context) (models.MarketParameters, error) {
	rows, err := w.api.Get(ctx, w.spreadsheetId, InputRange)
	if err != nil {
		return models.MarketParameters{}, fmt.Errorf("Workbook.LoadParameters: %w", err)
	}

	if len(rows) < 7 {
		return models.MarketParameters{}, fmt.Errorf("Workbook.LoadParameters: expected 7 input rows in %s, found %d: %w", InputRange, len(rows), models.InvalidParameterErr)
	}

	values := make([]float64, 7)
	for i := range values {
		if len(rows[i]) == 0 {
			return models.MarketParameters{}, fmt.Errorf("Workbook.LoadParameters: row %d is empty: %w", i+4, models.InvalidParameterErr)
		}

		v, err := toFloat(rows[i][0])
		if err != nil {
			return models.MarketParameters{}, fmt.Errorf("Workbook.LoadParameters: failed to parse B%d=%v: %v: %w", i+4, rows[i][0], err, models.InvalidParameterErr)
		}

		values[i] = v
	}

	dto := store.ParametersDTO{
		Spot:          values[0],
		Strike:        values[1],
		Rate:          values[2],
		DividendYield: values[3],
		Maturity:      values[4],
		Volatility:    values[5],
		Steps:         values[6],
	}

	return dto.ToModel()
}

// WriteParameters fills the input cells, creating the input sheet when missing.
func (w *Workbook) WriteParameters(ctx context.Context, p models.MarketParameters) error {
	if err := w.api.EnsureSheet(ctx, w.spreadsheetId, InputSheetName); err != nil {
		return fmt.Errorf("Workbook.WriteParameters: %w", err)
	}

	values := [][]interface{}{
		{p.Spot},
		{p.Strike},
		{p.Rate},
		{p.DividendYield},
		{p.Maturity},
		{p.Volatility},
		{float64(p.Steps)},
	}

	if err := w.api.Update(ctx, w.spreadsheetId, InputRange, values); err != nil {
		return fmt.Errorf("Workbook.WriteParameters: %w", err)
	}

	return nil
}

func toFloat(cell interface{}) (float64, error) {
	switch v := cell.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(v), 64)
	default:
		return 0, fmt.Errorf("unsupported cell type %T", cell)
	}
}

func (w *Workbook) WritePrices(ctx context.Context, table *models.ResultTable) error {
	for _, cell := range priceCells {
		values := make([][]interface{}, 0, len(cell.schemes))
		for _, scheme := range cell.schemes {
			r, found := table.Get(scheme, cell.typ, cell.style)
			switch {
			case !found:
				values = append(values, []interface{}{""})
			case r.Err != nil:
				values = append(values, []interface{}{fmt.Sprintf("#ERR %v", r.Err)})
			default:
				values = append(values, []interface{}{r.Price})
			}
		}

		if err := w.api.Update(ctx, w.spreadsheetId, cell.sheetRange, values); err != nil {
			return fmt.Errorf("Workbook.WritePrices: failed to update %s: %w", cell.sheetRange, err)
		}
	}

	log.WithContext(ctx).Infof("wrote %d prices to spreadsheet %s", table.Len(), w.spreadsheetId)
	return nil
}

func (w *Workbook) WriteComparisons(ctx context.Context, table *models.ComparisonTable) error {
	values := make([][]interface{}, 0, table.Len()+1)

	header := make([]interface{}, len(models.ComparisonHeader))
	for i, h := range models.ComparisonHeader {
		header[i] = h
	}

	values = append(values, header)
	for _, row := range table.Rows {
		values = append(values, row.Values())
	}

	if err := w.api.Append(ctx, w.spreadsheetId, ComparisonsSheetName, values); err != nil {
		return fmt.Errorf("Workbook.WriteComparisons: %w", err)
	}

	log.WithContext(ctx).Infof("appended %d comparison rows to spreadsheet %s", table.Len(), w.spreadsheetId)
	return nil
}
