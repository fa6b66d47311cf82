package store

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jiaming2012/lattice-pricer/src/models"
)

// YAMLParameterFile reads a single parameter set, e.g.
//
//	spot: 100
//	strike: 100
//	rate: 0.05
//	dividend_yield: 0
//	maturity: 1
//	volatility: 0.2
//	steps: 500
type YAMLParameterFile struct {
	Path string
}

func (f YAMLParameterFile) LoadParameters(ctx context.Context) (models.MarketParameters, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return models.MarketParameters{}, fmt.Errorf("YAMLParameterFile: failed to read %s: %v", f.Path, err)
	}

	var dto ParametersDTO
	if err := yaml.Unmarshal(data, &dto); err != nil {
		return models.MarketParameters{}, fmt.Errorf("YAMLParameterFile: failed to unmarshal %s: %v", f.Path, err)
	}

	return dto.ToModel()
}

func WriteYAMLParameters(outFilePath string, p models.MarketParameters) error {
	data, err := yaml.Marshal(NewParametersDTO(p))
	if err != nil {
		return fmt.Errorf("WriteYAMLParameters: failed to marshal: %v", err)
	}

	return os.WriteFile(outFilePath, data, 0644)
}
