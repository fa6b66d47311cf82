package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/jiaming2012/lattice-pricer/src/models"
)

// MaxMaturities bounds the number of maturities in one sweep.
const MaxMaturities = 1000

// MaxStepCounts bounds the number of step counts in one convergence study.
const MaxStepCounts = 100

// DefaultMaturities is the expiry grid of the comparison sweep: 0.25 to 5.0 years in 0.25 steps.
func DefaultMaturities() []float64 {
	maturities, _ := MaturityRange(0.25, 5.0, 0.25)
	return maturities
}

// MaturityRange returns start, start+step, ... up to and including stop.
// Values are generated as start+i*step so the grid does not drift.
func MaturityRange(start, stop, step float64) ([]float64, error) {
	if step <= 0 || math.IsNaN(step) || math.IsInf(step, 0) {
		return nil, fmt.Errorf("MaturityRange: step must be positive, found %v", step)
	}

	if stop < start {
		return nil, fmt.Errorf("MaturityRange: stop %v is before start %v", stop, start)
	}

	countF := math.Floor((stop-start)/step+1e-9) + 1
	if countF > MaxMaturities {
		return nil, fmt.Errorf("MaturityRange: %v:%v:%v yields more than %d maturities", start, stop, step, MaxMaturities)
	}

	count := int(countF)
	maturities := make([]float64, 0, count)
	for i := 0; i < count; i++ {
		maturities = append(maturities, start+float64(i)*step)
	}

	return maturities, nil
}

// ParseMaturities accepts either a comma separated list ("0.5,1,2") or a
// range in start:stop:step form ("0.25:5:0.25").
func ParseMaturities(maturities string) ([]float64, error) {
	maturities = strings.TrimSpace(maturities)
	if maturities == "" {
		return DefaultMaturities(), nil
	}

	if strings.Contains(maturities, ":") {
		parts := strings.Split(maturities, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("error parsing maturity range %q: expected start:stop:step", maturities)
		}

		bounds := make([]float64, 3)
		for i, part := range parts {
			v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
			if err != nil {
				return nil, fmt.Errorf("error parsing maturity range: %v", err)
			}

			bounds[i] = v
		}

		return MaturityRange(bounds[0], bounds[1], bounds[2])
	}

	periodsStr := strings.Split(maturities, ",")
	if len(periodsStr) > MaxMaturities {
		return nil, fmt.Errorf("error parsing maturities: more than %d given", MaxMaturities)
	}

	periods := make([]float64, 0, len(periodsStr))

	for _, periodStr := range periodsStr {
		period, err := strconv.ParseFloat(strings.TrimSpace(periodStr), 64)
		if err != nil {
			return nil, fmt.Errorf("error parsing maturity: %v", err)
		}

		periods = append(periods, period)
	}

	return periods, nil
}

// ParseSteps parses a comma separated list of step counts. Counts above
// models.MaxSteps are rejected with InvalidParameterErr.
func ParseSteps(steps string) ([]int, error) {
	stepsStr := strings.Split(steps, ",")
	if len(stepsStr) > MaxStepCounts {
		return nil, fmt.Errorf("error parsing step counts: more than %d given", MaxStepCounts)
	}

	out := make([]int, 0, len(stepsStr))

	for _, s := range stepsStr {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return nil, fmt.Errorf("error parsing step count: %v", err)
		}

		if n > models.MaxSteps {
			return nil, fmt.Errorf("error parsing step count %d: above %d: %w", n, models.MaxSteps, models.InvalidParameterErr)
		}

		out = append(out, n)
	}

	return out, nil
}
