// Package schema declares component types for registration: a named set of
// attribute column factories, plus fingerprinting so re-registration can be
// told apart from an incompatible redefinition.
//
// This is the seam for schema-deriving tooling: reflection or code
// generation builds Descriptors, the engine only consumes them.
package schema

import (
	"github.com/goccy/go-json"
	"github.com/invopop/jsonschema"
	"github.com/rotisserie/eris"
	"github.com/wI2L/jsondiff"

	"github.com/lattice-works/lattice/codec"
	"github.com/lattice-works/lattice/storage"
)

// Attribute names one stored attribute and the factory servicing its
// column.
type Attribute struct {
	Name    string
	Factory storage.ColumnFactory
}

// Descriptor declares a component type. Template optionally carries a
// sample value of the type's logical shape; when present its reflected
// JSON schema becomes part of the fingerprint.
type Descriptor struct {
	Name       string
	Attributes []Attribute
	Template   any
}

// Validate checks the descriptor before registration. A descriptor with no
// attributes is legal: a tag type stores nothing but still tracks which
// entities carry it.
func (d Descriptor) Validate() error {
	if d.Name == "" {
		return eris.New("component type name is empty")
	}
	seen := make(map[string]struct{}, len(d.Attributes))
	for _, a := range d.Attributes {
		if a.Name == "" {
			return eris.Errorf("type %q has an unnamed attribute", d.Name)
		}
		if a.Factory == nil {
			return eris.Wrapf(storage.ErrNilFactory, "type %q attribute %q", d.Name, a.Name)
		}
		if _, dup := seen[a.Name]; dup {
			return eris.Errorf("type %q declares attribute %q twice", d.Name, a.Name)
		}
		seen[a.Name] = struct{}{}
	}
	return nil
}

// Columns returns the declared columns in attribute order, the shape the
// storage layer takes.
func (d Descriptor) Columns() []storage.DeclaredColumn {
	cols := make([]storage.DeclaredColumn, len(d.Attributes))
	for i, a := range d.Attributes {
		cols[i] = storage.DeclaredColumn{Name: a.Name, Factory: a.Factory}
	}
	return cols
}

type attributePrint struct {
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Policy    string `json:"policy"`
	Semantics string `json:"semantics"`
}

type descriptorPrint struct {
	Name       string           `json:"name"`
	Attributes []attributePrint `json:"attributes"`
	Template   json.RawMessage  `json:"template,omitempty"`
}

// Fingerprint returns the canonical schema bytes of a descriptor.
func Fingerprint(d Descriptor) ([]byte, error) {
	p := descriptorPrint{
		Name:       d.Name,
		Attributes: make([]attributePrint, len(d.Attributes)),
	}
	for i, a := range d.Attributes {
		p.Attributes[i] = attributePrint{
			Name:      a.Name,
			Kind:      a.Factory.Kind(),
			Policy:    a.Factory.Policy().String(),
			Semantics: a.Factory.Semantics().String(),
		}
	}
	if d.Template != nil {
		reflected := jsonschema.Reflect(d.Template)
		bz, err := reflected.MarshalJSON()
		if err != nil {
			return nil, eris.Wrapf(err, "type %q template must be json serializable", d.Name)
		}
		p.Template = bz
	}
	return codec.Encode(p)
}

// Compatible reports whether two fingerprints describe the same schema.
func Compatible(a, b []byte) (bool, error) {
	patch, err := jsondiff.CompareJSON(a, b)
	if err != nil {
		return false, eris.Wrap(err, "")
	}
	return patch.String() == "", nil
}
