package schema_test

import (
	"testing"

	"github.com/lattice-works/lattice/assert"
	"github.com/lattice-works/lattice/schema"
	"github.com/lattice-works/lattice/storage"
)

type position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func positionDescriptor() schema.Descriptor {
	return schema.Descriptor{
		Name: "position",
		Attributes: []schema.Attribute{
			{Name: "x", Factory: storage.NewFactory[float64](0, storage.CloneCopy)},
			{Name: "y", Factory: storage.NewFactory[float64](0, storage.CloneCopy)},
		},
		Template: position{},
	}
}

func TestValidate(t *testing.T) {
	assert.NilError(t, positionDescriptor().Validate())

	// Tag types store nothing and are still valid.
	assert.NilError(t, schema.Descriptor{Name: "marker"}.Validate())

	err := schema.Descriptor{}.Validate()
	assert.ErrorContains(t, err, "name is empty")

	err = schema.Descriptor{
		Name:       "bad",
		Attributes: []schema.Attribute{{Factory: storage.NewFactory[int](0, storage.CloneCopy)}},
	}.Validate()
	assert.ErrorContains(t, err, "unnamed attribute")

	err = schema.Descriptor{
		Name:       "bad",
		Attributes: []schema.Attribute{{Name: "x"}},
	}.Validate()
	assert.ErrorIs(t, err, storage.ErrNilFactory)

	err = schema.Descriptor{
		Name: "bad",
		Attributes: []schema.Attribute{
			{Name: "x", Factory: storage.NewFactory[int](0, storage.CloneCopy)},
			{Name: "x", Factory: storage.NewFactory[int](0, storage.CloneCopy)},
		},
	}.Validate()
	assert.ErrorContains(t, err, "twice")
}

func TestFingerprintIgnoresFactoryIdentity(t *testing.T) {
	// Two descriptors built from distinct factory instances with the same
	// shape must fingerprint identically.
	a, err := schema.Fingerprint(positionDescriptor())
	assert.NilError(t, err)
	b, err := schema.Fingerprint(positionDescriptor())
	assert.NilError(t, err)

	same, err := schema.Compatible(a, b)
	assert.NilError(t, err)
	assert.True(t, same)
}

func TestFingerprintDetectsSchemaDrift(t *testing.T) {
	base, err := schema.Fingerprint(positionDescriptor())
	assert.NilError(t, err)

	// Different element type for the same attribute.
	drifted := positionDescriptor()
	drifted.Attributes[0].Factory = storage.NewFactory[int](0, storage.CloneCopy)
	fp, err := schema.Fingerprint(drifted)
	assert.NilError(t, err)
	same, err := schema.Compatible(base, fp)
	assert.NilError(t, err)
	assert.False(t, same)

	// Different clone policy.
	drifted = positionDescriptor()
	drifted.Attributes[0].Factory = storage.NewFactory[float64](0, storage.CloneNone)
	fp, err = schema.Fingerprint(drifted)
	assert.NilError(t, err)
	same, err = schema.Compatible(base, fp)
	assert.NilError(t, err)
	assert.False(t, same)

	// Extra attribute.
	drifted = positionDescriptor()
	drifted.Attributes = append(drifted.Attributes, schema.Attribute{
		Name: "z", Factory: storage.NewFactory[float64](0, storage.CloneCopy),
	})
	fp, err = schema.Fingerprint(drifted)
	assert.NilError(t, err)
	same, err = schema.Compatible(base, fp)
	assert.NilError(t, err)
	assert.False(t, same)
}

func TestFingerprintTemplateShape(t *testing.T) {
	withTemplate := positionDescriptor()
	withoutTemplate := positionDescriptor()
	withoutTemplate.Template = nil

	a, err := schema.Fingerprint(withTemplate)
	assert.NilError(t, err)
	b, err := schema.Fingerprint(withoutTemplate)
	assert.NilError(t, err)
	same, err := schema.Compatible(a, b)
	assert.NilError(t, err)
	assert.False(t, same, "dropping the template changes the schema")
}

func TestColumns(t *testing.T) {
	cols := positionDescriptor().Columns()
	assert.Len(t, cols, 2)
	assert.Equal(t, cols[0].Name, "x")
	assert.Equal(t, cols[1].Name, "y")
	assert.NotNil(t, cols[0].Factory)
}
