// Package codec serializes documents as relaxed MongoDB Extended JSON.
//
// Plain JSON would turn object identifiers and dates into strings, and a rollback would
// then replace by the wrong _id type. Extended JSON keeps them typed ({"$oid": ...}).
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/aretw0/exprmig/pkg/domain"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// MarshalDocuments encodes docs as an indented JSON array of Extended JSON documents.
func MarshalDocuments(docs []domain.Document) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, doc := range docs {
		if i > 0 {
			buf.WriteByte(',')
		}
		data, err := bson.MarshalExtJSON(Ordered(doc, nil), false, false)
		if err != nil {
			return nil, fmt.Errorf("failed to encode document %s: %w", domain.FormatID(doc.ID()), err)
		}
		buf.Write(data)
	}
	buf.WriteByte(']')

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "    "); err != nil {
		return nil, fmt.Errorf("failed to indent documents: %w", err)
	}
	return out.Bytes(), nil
}

// UnmarshalDocuments decodes a JSON array produced by MarshalDocuments.
func UnmarshalDocuments(data []byte) ([]domain.Document, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("failed to decode document list: %w", err)
	}

	docs := make([]domain.Document, 0, len(raws))
	for i, raw := range raws {
		var m bson.M
		if err := bson.UnmarshalExtJSON(raw, false, &m); err != nil {
			return nil, fmt.Errorf("failed to decode document #%d: %w", i, err)
		}
		docs = append(docs, NormalizeDocument(m))
	}
	return docs, nil
}

// NormalizeDocument converts a decoded BSON document into a domain.Document whose nested
// objects are map[string]any and arrays []any, whatever representation the driver chose.
func NormalizeDocument(m map[string]any) domain.Document {
	doc := make(domain.Document, len(m))
	for k, v := range m {
		doc[k] = Normalize(v)
	}
	return doc
}

// Normalize converts BSON container types into plain maps and slices, recursively.
func Normalize(v any) any {
	switch t := v.(type) {
	case bson.D:
		m := make(map[string]any, len(t))
		for _, e := range t {
			m[e.Key] = Normalize(e.Value)
		}
		return m
	case bson.M:
		return map[string]any(NormalizeDocument(t))
	case domain.Document:
		return map[string]any(NormalizeDocument(t))
	case map[string]any:
		return map[string]any(NormalizeDocument(t))
	case bson.A:
		return normalizeSlice(t)
	case []any:
		return normalizeSlice(t)
	default:
		return v
	}
}

func normalizeSlice(in []any) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = Normalize(v)
	}
	return out
}

// Ordered converts doc into a bson.D whose keys follow layout, recursively. Keys that
// layout does not hold come after, sorted, with _id first. A nil layout sorts everything.
func Ordered(doc map[string]any, layout bson.D) bson.D {
	out := make(bson.D, 0, len(doc))
	seen := make(map[string]bool, len(doc))
	for _, e := range layout {
		v, ok := doc[e.Key]
		if !ok || seen[e.Key] {
			continue
		}
		seen[e.Key] = true
		out = append(out, bson.E{Key: e.Key, Value: orderedValue(v, e.Value)})
	}

	rest := make([]string, 0, len(doc)-len(seen))
	for k := range doc {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	slices.SortFunc(rest, func(a, b string) int {
		switch {
		case a == b:
			return 0
		case a == domain.FieldID:
			return -1
		case b == domain.FieldID:
			return 1
		case a < b:
			return -1
		default:
			return 1
		}
	})
	for _, k := range rest {
		out = append(out, bson.E{Key: k, Value: orderedValue(doc[k], nil)})
	}
	return out
}

func orderedValue(v, layout any) any {
	switch t := v.(type) {
	case domain.Document:
		return orderedValue(map[string]any(t), layout)
	case map[string]any:
		nested, _ := layout.(bson.D)
		return Ordered(t, nested)
	case []any:
		var nested bson.A
		switch l := layout.(type) {
		case bson.A:
			nested = l
		case []any:
			nested = l
		}
		out := make(bson.A, len(t))
		for i, e := range t {
			var el any
			if i < len(nested) {
				el = nested[i]
			}
			out[i] = orderedValue(e, el)
		}
		return out
	default:
		return v
	}
}
