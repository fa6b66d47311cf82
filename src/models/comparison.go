package models

import (
	"strings"

	"github.com/olekukonko/tablewriter"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ComparisonRow pairs the CRR american prices for one maturity with the
// european closed form prices.
type ComparisonRow struct {
	Maturity              float64 `json:"maturity" csv:"Expiry"`
	AmericanPut           float64 `json:"american_put" csv:"Am Tree P"`
	EuropeanPutBenchmark  float64 `json:"european_put_benchmark" csv:"BS P"`
	AmericanCall          float64 `json:"american_call" csv:"Am Tree C"`
	EuropeanCallBenchmark float64 `json:"european_call_benchmark" csv:"BS C"`
}

var ComparisonHeader = []string{"Expiry", "Am Tree P", "BS P", "Am Tree C", "BS C"}

func (r ComparisonRow) Values() []interface{} {
	return []interface{}{r.Maturity, r.AmericanPut, r.EuropeanPutBenchmark, r.AmericanCall, r.EuropeanCallBenchmark}
}

type ComparisonTable struct {
	Rows []ComparisonRow `json:"rows"`
}

func (t *ComparisonTable) Append(row ComparisonRow) {
	t.Rows = append(t.Rows, row)
}

func (t *ComparisonTable) Len() int {
	return len(t.Rows)
}

func (t *ComparisonTable) String() string {
	display := &strings.Builder{}
	p := message.NewPrinter(language.English)

	table := tablewriter.NewWriter(display)
	table.SetHeader(ComparisonHeader)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)

	for _, r := range t.Rows {
		table.Append([]string{
			p.Sprintf("%.2f", r.Maturity),
			p.Sprintf("%.4f", r.AmericanPut),
			p.Sprintf("%.4f", r.EuropeanPutBenchmark),
			p.Sprintf("%.4f", r.AmericanCall),
			p.Sprintf("%.4f", r.EuropeanCallBenchmark),
		})
	}

	table.Render()
	return display.String()
}
