// Package json wraps jsoniter configured for encoding/json compatibility,
// so manifest bytes stay stable across both implementations.
package json

import (
	"io"

	jsoniter "github.com/json-iterator/go"
)

var api = jsoniter.ConfigCompatibleWithStandardLibrary

type Decoder = jsoniter.Decoder

func NewDecoder(r io.Reader) *Decoder { return api.NewDecoder(r) }

type Encoder = jsoniter.Encoder

func NewEncoder(w io.Writer) *Encoder { return api.NewEncoder(w) }

func Marshal(v interface{}) ([]byte, error) { return api.Marshal(v) }

func MarshalIndent(v interface{}, prefix, indent string) ([]byte, error) {
	return api.MarshalIndent(v, prefix, indent)
}

func Unmarshal(data []byte, v interface{}) error { return api.Unmarshal(data, v) }
