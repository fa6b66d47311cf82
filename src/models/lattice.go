package models

// Lattice is a recombining binomial tree stored as an (n+1)x(n+1) array
// indexed [i][j], where j is the time step and i the number of up moves.
// Only the region i <= j holds values.
type Lattice [][]float64

func NewLattice(steps int) Lattice {
	l := make(Lattice, steps+1)
	for i := range l {
		l[i] = make([]float64, steps+1)
	}

	return l
}

func (l Lattice) Steps() int {
	return len(l) - 1
}

// Column returns a copy of the meaningful nodes at time step j.
func (l Lattice) Column(j int) []float64 {
	col := make([]float64, j+1)
	for i := 0; i <= j; i++ {
		col[i] = l[i][j]
	}

	return col
}
