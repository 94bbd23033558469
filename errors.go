package lattice

import "github.com/rotisserie/eris"

var (
	// ErrSchemaMismatch is returned when a component type name is
	// re-registered with a different schema than before.
	ErrSchemaMismatch = eris.New("component type re-registered with an incompatible schema")
)
