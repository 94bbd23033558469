// Package storage implements the packed-column entity component store.
//
// Component data lives in densely packed parallel columns, one column per
// attribute. Each component type is owned by a Table that maps entity
// indices to column rows and back. Row 0 of every table is a reserved
// sentinel for "no component", so dereferencing an absent component is
// always safe and yields the column defaults.
//
// All mutation of a Registry and its tables must be externally serialized.
// The store performs no locking of its own.
package storage
