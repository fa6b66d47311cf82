package models

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/olekukonko/tablewriter"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type ResultKey struct {
	Scheme SchemeName
	Type   OptionType
	Style  ExerciseStyle
}

func (k ResultKey) String() string {
	return fmt.Sprintf("%s %s %s", k.Scheme, k.Style, k.Type)
}

// PricingResult is one scheme/type/style price, rounded to 4 decimal places.
// Err is set instead of Price when the scheme could not produce a valid lattice.
type PricingResult struct {
	Scheme SchemeName    `json:"scheme" csv:"Scheme"`
	Type   OptionType    `json:"type" csv:"Type"`
	Style  ExerciseStyle `json:"style" csv:"Style"`
	Price  float64       `json:"price" csv:"Price"`
	Err    error         `json:"-" csv:"-"`
}

func (r PricingResult) Key() ResultKey {
	return ResultKey{Scheme: r.Scheme, Type: r.Type, Style: r.Style}
}

// ResultTable holds the prices of one pricing session keyed by scheme, type and style.
type ResultTable struct {
	mu      sync.Mutex
	results map[ResultKey]PricingResult
}

func NewResultTable() *ResultTable {
	return &ResultTable{
		results: make(map[ResultKey]PricingResult),
	}
}

func (t *ResultTable) Set(r PricingResult) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.results[r.Key()] = r
}

func (t *ResultTable) Get(scheme SchemeName, optionType OptionType, style ExerciseStyle) (PricingResult, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	r, found := t.results[ResultKey{Scheme: scheme, Type: optionType, Style: style}]
	return r, found
}

// Price returns the rounded price of a computed combination.
func (t *ResultTable) Price(scheme SchemeName, optionType OptionType, style ExerciseStyle) (float64, error) {
	r, found := t.Get(scheme, optionType, style)
	if !found {
		return 0, fmt.Errorf("ResultTable.Price: %s %s %s was not computed", scheme, style, optionType)
	}

	if r.Err != nil {
		return 0, r.Err
	}

	return r.Price, nil
}

func (t *ResultTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.results)
}

// Errors returns the failed combinations.
func (t *ResultTable) Errors() map[ResultKey]error {
	t.mu.Lock()
	defer t.mu.Unlock()

	errs := make(map[ResultKey]error)
	for k, r := range t.results {
		if r.Err != nil {
			errs[k] = r.Err
		}
	}

	return errs
}

// Results lists the table as european before american, calls before puts,
// then benchmark, CRR, JR, LR.
func (t *ResultTable) Results() []PricingResult {
	t.mu.Lock()
	results := make([]PricingResult, 0, len(t.results))
	for _, r := range t.results {
		results = append(results, r)
	}
	t.mu.Unlock()

	sort.Slice(results, func(i, j int) bool {
		return resultRank(results[i]) < resultRank(results[j])
	})

	return results
}

func resultRank(r PricingResult) int {
	rank := 0
	if r.Style == American {
		rank += 100
	}

	if r.Type == Put {
		rank += 10
	}

	switch r.Scheme {
	case SchemeBlackScholes:
	case SchemeCRR:
		rank += 1
	case SchemeJarrowRudd:
		rank += 2
	case SchemeLeisenReimer:
		rank += 3
	default:
		rank += 9
	}

	return rank
}

func (t *ResultTable) String() string {
	display := &strings.Builder{}
	p := message.NewPrinter(language.English)

	table := tablewriter.NewWriter(display)
	table.SetHeader([]string{"Model", "Style", "Type", "Price"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)

	for _, r := range t.Results() {
		price := p.Sprintf("%.4f", r.Price)
		if r.Err != nil {
			price = fmt.Sprintf("error: %v", r.Err)
		}

		table.Append([]string{string(r.Scheme), string(r.Style), string(r.Type), price})
	}

	table.Render()
	return display.String()
}
