// Package codec is the one place the module touches JSON: schema
// fingerprints, state dumps and their round trip back into Go values all
// go through it, so every caller serializes the same way.
package codec

import (
	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"
)

// Encode renders v as compact JSON.
func Encode(v any) ([]byte, error) {
	bz, err := json.Marshal(v)
	if err != nil {
		return nil, eris.Wrap(err, "encode")
	}
	return bz, nil
}

// EncodeIndent renders v as indented JSON, for state dumps and logs.
func EncodeIndent(v any) ([]byte, error) {
	bz, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, eris.Wrap(err, "encode indent")
	}
	return bz, nil
}

// Decode parses JSON produced by Encode or EncodeIndent back into a T.
func Decode[T any](bz []byte) (T, error) {
	var v T
	if err := json.Unmarshal(bz, &v); err != nil {
		return v, eris.Wrap(err, "decode")
	}
	return v, nil
}
