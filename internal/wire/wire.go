package wire

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"

	"github.com/goliatone/go-site-builder/internal/document"
	"github.com/goliatone/go-site-builder/internal/validation"
)

//go:embed document.schema.json
var envelopeSchema []byte

var envelope = validation.MustCompile("document.schema.json", envelopeSchema)

// Schema returns the JSON schema documents are checked against.
func Schema() []byte {
	return bytes.Clone(envelopeSchema)
}

// Decode validates data against the document envelope schema and decodes it. Envelope
// violations are reported as *validation.PayloadValidationError.
func Decode(data []byte) (document.Document, error) {
	if err := envelope.ValidateJSON(data); err != nil {
		return document.Document{}, fmt.Errorf("wire: decode: %w", err)
	}
	var doc document.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return document.Document{}, fmt.Errorf("wire: decode: %w", err)
	}
	if doc.Blocks == nil {
		doc.Blocks = []document.Block{}
	}
	return doc, nil
}

// DecodeReader reads r fully and decodes it.
func DecodeReader(r io.Reader) (document.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return document.Document{}, fmt.Errorf("wire: read: %w", err)
	}
	return Decode(data)
}

// Encode serialises doc. A nil block list is written as an empty array.
func Encode(doc document.Document) ([]byte, error) {
	if doc.Blocks == nil {
		doc.Blocks = []document.Block{}
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("wire: encode: %w", err)
	}
	return out, nil
}

// EncodeIndent serialises doc for humans.
func EncodeIndent(doc document.Document) ([]byte, error) {
	if doc.Blocks == nil {
		doc.Blocks = []document.Block{}
	}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("wire: encode: %w", err)
	}
	return out, nil
}
