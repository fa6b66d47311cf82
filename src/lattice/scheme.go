package lattice

import (
	"fmt"

	"github.com/jiaming2012/lattice-pricer/src/models"
)

// Scheme derives the branch factors and probabilities of one binomial
// discretization. Implementations are stateless.
type Scheme interface {
	Name() models.SchemeName
	Derive(p models.MarketParameters) (models.LatticeParameters, error)
}

// Schemes returns every lattice scheme in output order.
func Schemes() []Scheme {
	return []Scheme{CRR{}, JarrowRudd{}, LeisenReimer{}}
}

func SchemeByName(name models.SchemeName) (Scheme, error) {
	for _, s := range Schemes() {
		if s.Name() == name {
			return s, nil
		}
	}

	return nil, fmt.Errorf("SchemeByName: %q: %w", name, models.UnknownSchemeErr)
}

func derived(lp models.LatticeParameters) (models.LatticeParameters, error) {
	if err := lp.Validate(); err != nil {
		return lp, err
	}

	return lp, nil
}
