package storage

import "github.com/rotisserie/eris"

var (
	// ErrNotLive is returned when an operation targets a dead entity, a
	// dead component handle, or an entity index outside the live range.
	ErrNotLive = eris.New("target is not live")

	// ErrForeignRegistry is returned when an entity owned by a different
	// registry is passed in.
	ErrForeignRegistry = eris.New("entity belongs to a different registry")

	// ErrForeignTable is returned when a component template owned by a
	// different table is passed in.
	ErrForeignTable = eris.New("template belongs to a different table")

	// ErrNilTemplate is returned when a nil template is passed to a
	// templated add.
	ErrNilTemplate = eris.New("template is nil")

	// ErrNilFactory is returned when a column factory is required but nil.
	ErrNilFactory = eris.New("column factory is nil")

	// ErrDuplicateTable is returned when a table name is registered twice.
	ErrDuplicateTable = eris.New("table already registered")

	// ErrUnknownColumn is returned when a declared column name cannot be
	// resolved.
	ErrUnknownColumn = eris.New("no declared column with that name")

	// ErrColumnType is returned when a column is accessed through the
	// wrong element type.
	ErrColumnType = eris.New("column has a different element type")
)
