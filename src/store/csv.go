package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path"
	"time"

	"github.com/gocarina/gocsv"
	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/lattice-pricer/src/models"
)

func init() {
	gocsv.SetCSVWriter(func(out io.Writer) *gocsv.SafeCSVWriter {
		writer := csv.NewWriter(out)
		writer.Comma = ','
		return gocsv.NewSafeCSVWriter(writer)
	})
}

// CSVParameterFile reads the first data row of a CSV file with a header line.
type CSVParameterFile struct {
	Path string
}

func (f CSVParameterFile) LoadParameters(ctx context.Context) (models.MarketParameters, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return models.MarketParameters{}, fmt.Errorf("CSVParameterFile: failed to open file: %v", err)
	}

	defer file.Close()

	var rows []*ParametersDTO
	if err := gocsv.UnmarshalFile(file, &rows); err != nil {
		return models.MarketParameters{}, fmt.Errorf("CSVParameterFile: failed to unmarshal CSV: %v", err)
	}

	if len(rows) == 0 {
		return models.MarketParameters{}, fmt.Errorf("CSVParameterFile: %s has no parameter rows", f.Path)
	}

	if len(rows) > 1 {
		log.WithContext(ctx).Warnf("CSVParameterFile: %s has %d rows, using the first", f.Path, len(rows))
	}

	return rows[0].ToModel()
}

// CSVSink writes prices and comparisons to separate CSV files.
type CSVSink struct {
	PricesPath      string
	ComparisonsPath string
}

// NewCSVSink names both output files after outFilePrefix and the current time.
func NewCSVSink(outDir string, outFilePrefix string) (*CSVSink, error) {
	if _, err := os.Stat(outDir); os.IsNotExist(err) {
		if err := os.MkdirAll(outDir, 0755); err != nil {
			return nil, fmt.Errorf("NewCSVSink: failed to create %s: %w", outDir, err)
		}
	}

	stamp := time.Now().Format("2006-01-02_15-04-05")

	return &CSVSink{
		PricesPath:      path.Join(outDir, fmt.Sprintf("%s_prices_%s.csv", outFilePrefix, stamp)),
		ComparisonsPath: path.Join(outDir, fmt.Sprintf("%s_comparisons_%s.csv", outFilePrefix, stamp)),
	}, nil
}

func (s *CSVSink) WritePrices(ctx context.Context, table *models.ResultTable) error {
	rows := NewPricingResultRows(table)
	if err := marshalFile(s.PricesPath, &rows); err != nil {
		return fmt.Errorf("CSVSink.WritePrices: %w", err)
	}

	log.WithContext(ctx).Infof("Exported %d prices to %s", len(rows), s.PricesPath)
	return nil
}

func (s *CSVSink) WriteComparisons(ctx context.Context, table *models.ComparisonTable) error {
	if err := marshalFile(s.ComparisonsPath, &table.Rows); err != nil {
		return fmt.Errorf("CSVSink.WriteComparisons: %w", err)
	}

	log.WithContext(ctx).Infof("Exported %d comparison rows to %s", table.Len(), s.ComparisonsPath)
	return nil
}

func marshalFile(outFilePath string, in interface{}) error {
	file, err := os.Create(outFilePath)
	if err != nil {
		return fmt.Errorf("error creating CSV file: %v", err)
	}

	defer file.Close()

	if err := gocsv.MarshalFile(in, file); err != nil {
		return fmt.Errorf("failed to write to file: %w", err)
	}

	return nil
}
