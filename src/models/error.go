package models

import "fmt"

var InvalidParameterErr = fmt.Errorf("invalid market parameter")
var DegenerateProbabilityErr = fmt.Errorf("up probability is outside [0, 1]")
var NumericOverflowErr = fmt.Errorf("numeric overflow")
var BenchmarkUnavailableErr = fmt.Errorf("closed form benchmark is only available for european exercise")
var UnknownSchemeErr = fmt.Errorf("unknown lattice scheme")
