package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jiaming2012/lattice-pricer/src/models"
)

// ParameterSource supplies the market parameters of one pricing session.
type ParameterSource interface {
	LoadParameters(ctx context.Context) (models.MarketParameters, error)
}

// ResultSink receives the prices and the maturity comparison table.
type ResultSink interface {
	WritePrices(ctx context.Context, table *models.ResultTable) error
	WriteComparisons(ctx context.Context, table *models.ComparisonTable) error
}

// ParametersDTO is the external representation of the inputs. Steps is a
// float because spreadsheets and CSV files do not distinguish integers.
type ParametersDTO struct {
	Spot          float64 `csv:"Spot" yaml:"spot"`
	Strike        float64 `csv:"Strike" yaml:"strike"`
	Rate          float64 `csv:"Rate" yaml:"rate"`
	DividendYield float64 `csv:"Dividend Yield" yaml:"dividend_yield"`
	Maturity      float64 `csv:"Maturity" yaml:"maturity"`
	Volatility    float64 `csv:"Volatility" yaml:"volatility"`
	Steps         float64 `csv:"Steps" yaml:"steps"`
	Type          string  `csv:"Type" yaml:"type"`
	Style         string  `csv:"Style" yaml:"style"`
}

// ToModel converts the DTO, defaulting to a european call when the flags are empty.
func (dto ParametersDTO) ToModel() (models.MarketParameters, error) {
	steps, err := models.StepsFromFloat(dto.Steps)
	if err != nil {
		return models.MarketParameters{}, fmt.Errorf("ParametersDTO.ToModel: %w", err)
	}

	optionType := models.OptionType(strings.ToLower(strings.TrimSpace(dto.Type)))
	if optionType == "" {
		optionType = models.Call
	}

	style := models.ExerciseStyle(strings.ToLower(strings.TrimSpace(dto.Style)))
	if style == "" {
		style = models.European
	}

	p, err := models.NewMarketParameters(dto.Spot, dto.Strike, dto.Rate, dto.DividendYield, dto.Maturity, dto.Volatility, steps, optionType, style)
	if err != nil {
		return models.MarketParameters{}, fmt.Errorf("ParametersDTO.ToModel: %w", err)
	}

	return p, nil
}

func NewParametersDTO(p models.MarketParameters) ParametersDTO {
	return ParametersDTO{
		Spot:          p.Spot,
		Strike:        p.Strike,
		Rate:          p.Rate,
		DividendYield: p.DividendYield,
		Maturity:      p.Maturity,
		Volatility:    p.Volatility,
		Steps:         float64(p.Steps),
		Type:          string(p.Type),
		Style:         string(p.Style),
	}
}

// PricingResultCsvRowDTO flattens a PricingResult, carrying failures as text.
type PricingResultCsvRowDTO struct {
	Model string  `csv:"Model"`
	Style string  `csv:"Style"`
	Type  string  `csv:"Type"`
	Price float64 `csv:"Price"`
	Error string  `csv:"Error"`
}

func NewPricingResultRows(table *models.ResultTable) []*PricingResultCsvRowDTO {
	results := table.Results()
	rows := make([]*PricingResultCsvRowDTO, 0, len(results))

	for _, r := range results {
		row := &PricingResultCsvRowDTO{
			Model: string(r.Scheme),
			Style: string(r.Style),
			Type:  string(r.Type),
			Price: r.Price,
		}

		if r.Err != nil {
			row.Error = r.Err.Error()
		}

		rows = append(rows, row)
	}

	return rows
}
