package storage

import (
	"fmt"

	"github.com/lattice-works/lattice/internal/assert"
)

// ClonePolicy controls how a column propagates values when a component is
// created from a template.
type ClonePolicy uint8

const (
	// CloneCopy assigns the template value to the new row. For reference
	// elements both rows share the referenced data.
	CloneCopy ClonePolicy = iota
	// CloneNone leaves the new row at the column default.
	CloneNone
	// CloneDeep uses the element's CloneValue when it has one, falling
	// back to an assignment copy when it does not.
	CloneDeep
)

// String returns the policy name.
func (p ClonePolicy) String() string {
	switch p {
	case CloneCopy:
		return "copy"
	case CloneNone:
		return "none"
	case CloneDeep:
		return "deep"
	}
	return fmt.Sprintf("clone(%d)", uint8(p))
}

// Semantics records whether column elements are self-contained values or
// references to shared data. It informs cloning and diagnostics; the
// storage layout is identical either way.
type Semantics uint8

const (
	ValueSemantics Semantics = iota
	ReferenceSemantics
)

// String returns the semantics name.
func (s Semantics) String() string {
	if s == ReferenceSemantics {
		return "reference"
	}
	return "value"
}

// Cloner is the optional deep-copy capability of a column element.
// Whether a type implements it is decided once when its factory is
// constructed, never per clone call.
type Cloner[T any] interface {
	CloneValue() T
}

// ColumnFactory creates and services the columns of one attribute. The
// engine never implements this for user element types; it only invokes it.
// Implementations outside this package usually embed a *Factory[T].
type ColumnFactory interface {
	// Kind describes the element type.
	Kind() string
	// Policy returns the template clone policy for this attribute.
	Policy() ClonePolicy
	// Semantics reports value versus reference elements.
	Semantics() Semantics
	// New creates an empty column for this attribute.
	New() Column
	// SetDefault resets one row of a column created by this factory.
	SetDefault(col Column, row int)
	// Clone copies one row to another, honoring the clone policy. Source
	// and destination may be the same column.
	Clone(src Column, srcRow int, dst Column, dstRow int)
}

// CompactionAware is an optional capability of a ColumnFactory. A table
// checks for it once when the column is bound and, after every compaction,
// tells aware factories how rows moved: oldToNew[oldRow] is the new row, 0
// when the row no longer exists.
type CompactionAware interface {
	OnCompacted(col Column, oldToNew []int)
}

// Factory is the generic ColumnFactory for elements of type T.
type Factory[T any] struct {
	kind      string
	def       T
	policy    ClonePolicy
	semantics Semantics
	deep      func(T) T
}

var _ ColumnFactory = &Factory[int]{}

// NewFactory returns a factory for value elements of type T with the given
// per-row default.
func NewFactory[T any](def T, policy ClonePolicy) *Factory[T] {
	return newFactory(def, policy, ValueSemantics)
}

// NewReferenceFactory returns a factory whose elements reference shared
// data, typically a pointer, slice or map type. The default is shared by
// every row it is written to.
func NewReferenceFactory[T any](def T, policy ClonePolicy) *Factory[T] {
	return newFactory(def, policy, ReferenceSemantics)
}

func newFactory[T any](def T, policy ClonePolicy, sem Semantics) *Factory[T] {
	var zero T
	f := &Factory[T]{
		kind:      fmt.Sprintf("%T", zero),
		def:       def,
		policy:    policy,
		semantics: sem,
	}
	if _, ok := any(zero).(Cloner[T]); ok {
		f.deep = func(v T) T { return any(v).(Cloner[T]).CloneValue() }
	}
	return f
}

// Kind describes the element type.
func (f *Factory[T]) Kind() string { return f.kind }

// Policy returns the template clone policy.
func (f *Factory[T]) Policy() ClonePolicy { return f.policy }

// Semantics reports value versus reference elements.
func (f *Factory[T]) Semantics() Semantics { return f.semantics }

// Default returns the per-row default value.
func (f *Factory[T]) Default() T { return f.def }

// New creates an empty column for this attribute.
func (f *Factory[T]) New() Column {
	return &TypedColumn[T]{kind: f.kind, def: f.def}
}

// SetDefault resets one row to the factory default.
func (f *Factory[T]) SetDefault(col Column, row int) {
	f.column(col).writeDefault(row)
}

// Clone copies srcRow of src into dstRow of dst per the clone policy.
func (f *Factory[T]) Clone(src Column, srcRow int, dst Column, dstRow int) {
	if f.policy == CloneNone {
		return
	}
	v := f.column(src).Get(srcRow)
	if f.policy == CloneDeep && f.deep != nil {
		v = f.deep(v)
	}
	f.column(dst).Set(dstRow, v)
}

// Column resolves the typed column behind an abstract column created by
// this factory, for direct Get/Set/Ref access.
func (f *Factory[T]) Column(col Column) (*TypedColumn[T], error) {
	return As[T](col)
}

func (f *Factory[T]) column(col Column) *TypedColumn[T] {
	typed, ok := col.(*TypedColumn[T])
	assert.That(ok, "column %s serviced by factory %s", col.Kind(), f.kind)
	return typed
}
