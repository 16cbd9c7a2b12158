package wire_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/goliatone/go-site-builder/internal/document"
	"github.com/goliatone/go-site-builder/internal/normalizer"
	"github.com/goliatone/go-site-builder/internal/validation"
	"github.com/goliatone/go-site-builder/internal/wire"
)

const footerPayload = `{
	"id": "site-footer",
	"type": "footer",
	"settings": {"copyright": "ACME"},
	"blocks": [
		{"id": "c1", "kind": "column", "label": "Company", "config": {}, "order": 1},
		{"id": "l1", "kind": "link", "label": "About", "config": {"url": "/about"}, "order": 1, "parentRef": "PARENT_1"}
	],
	"meta": {"seo": {"noindex": true}}
}`

func TestDecodeAcceptsEnvelope(t *testing.T) {
	doc, err := wire.Decode([]byte(footerPayload))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if doc.ID != "site-footer" || doc.Type != document.TypeFooter || len(doc.Blocks) != 2 {
		t.Fatalf("unexpected document %+v", doc)
	}
	if doc.Blocks[1].Parent() != "PARENT_1" {
		t.Fatalf("expected symbolic parent preserved, got %q", doc.Blocks[1].Parent())
	}
	seo, ok := doc.Meta["seo"].(map[string]any)
	if !ok || seo["noindex"] != true {
		t.Fatalf("expected meta to pass through, got %v", doc.Meta)
	}
}

func TestDecodeRejectsEnvelopeViolations(t *testing.T) {
	cases := []struct {
		name     string
		payload  string
		location string
	}{
		{name: "missing kind", payload: `{"type":"form","blocks":[{"id":"b1","label":"Name"}]}`, location: "/blocks/0"},
		{name: "unknown type", payload: `{"type":"newsletter","blocks":[]}`, location: "/type"},
		{name: "fractional order", payload: `{"type":"form","blocks":[{"kind":"text","order":1.5}]}`, location: "/blocks/0/order"},
		{name: "config not object", payload: `{"type":"form","blocks":[{"kind":"text","config":"x"}]}`, location: "/blocks/0/config"},
		{name: "unknown block field", payload: `{"type":"form","blocks":[{"kind":"text","colour":"red"}]}`, location: "/blocks/0"},
		{name: "missing blocks", payload: `{"type":"form"}`, location: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := wire.Decode([]byte(tc.payload))
			if !errors.Is(err, validation.ErrSchemaValidation) {
				t.Fatalf("expected schema validation error, got %v", err)
			}
			issues := validation.Issues(err)
			if len(issues) == 0 {
				t.Fatalf("expected issues, got none")
			}
			found := false
			for _, issue := range issues {
				if issue.Location == tc.location {
					found = true
				}
			}
			if !found {
				t.Fatalf("expected an issue at %q, got %+v", tc.location, issues)
			}
		})
	}
}

func TestDecodeRejectsMalformedJSON(t *testing.T) {
	_, err := wire.Decode([]byte(`{"type":`))
	if !errors.Is(err, validation.ErrPayloadMalformed) {
		t.Fatalf("expected malformed payload error, got %v", err)
	}
}

func TestEncodeNormalizedDocumentRoundTrips(t *testing.T) {
	doc, err := wire.DecodeReader(strings.NewReader(footerPayload))
	if err != nil {
		t.Fatalf("DecodeReader: %v", err)
	}
	result, err := normalizer.New().Normalize(doc)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	encoded, err := wire.Encode(result.Document)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := wire.Decode(encoded)
	if err != nil {
		t.Fatalf("Decode encoded: %v", err)
	}
	if !reflect.DeepEqual(decoded, result.Document) {
		t.Fatalf("expected round trip to preserve the document\nwant %+v\ngot  %+v", result.Document, decoded)
	}
	if decoded.Blocks[1].Parent() != "c1" {
		t.Fatalf("expected resolved parent c1, got %q", decoded.Blocks[1].Parent())
	}
}

func TestEncodeEmptyDocumentWritesBlockArray(t *testing.T) {
	out, err := wire.Encode(document.Document{ID: "empty", Type: document.TypeForm})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.Contains(string(out), `"blocks":[]`) {
		t.Fatalf("expected empty block array, got %s", out)
	}
	if _, err := wire.Decode(out); err != nil {
		t.Fatalf("expected encoded empty document to decode, got %v", err)
	}
}

func TestDecodeAcceptsIntegerOrders(t *testing.T) {
	payload := `{"id":"contact","type":"form","blocks":[
		{"id":"b1","kind":"text","label":"Name","order":1},
		{"id":"b2","kind":"email","label":"Email","order":2},
		{"id":"b3","kind":"textarea","label":"Message","order":0}
	]}`
	doc, err := wire.Decode([]byte(payload))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := []int{1, 2, 0}
	for i, block := range doc.Blocks {
		if block.Order != want[i] {
			t.Fatalf("block %s: expected order %d, got %d", block.ID, want[i], block.Order)
		}
	}
}
