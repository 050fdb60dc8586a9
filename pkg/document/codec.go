package document

import (
	"bytes"
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"

	errs "github.com/matzehuels/ivrflow/pkg/errors"
)

// Marshal encodes d as indented JSON.
func Marshal(d *Document) ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// Unmarshal decodes a JSON document. Node configs are decoded into the
// variant named by each node's type.
func Unmarshal(data []byte) (*Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode flow document")
	}
	return &d, nil
}

// Read decodes a JSON document from r.
func Read(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "read flow document")
	}
	return Unmarshal(data)
}

// MarshalYAML encodes d as YAML with two-space indentation.
func MarshalYAML(d *Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "encode flow document")
	}
	if err := enc.Close(); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "encode flow document")
	}
	return buf.Bytes(), nil
}

// UnmarshalYAML decodes a YAML document.
func UnmarshalYAML(data []byte) (*Document, error) {
	var d Document
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode flow document")
	}
	return &d, nil
}
