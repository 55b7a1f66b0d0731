package domain

import (
	"bytes"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Document is a semi-structured registry record (a device or a configuration group).
// Nested objects are map[string]any and arrays are []any.
type Document map[string]any

// Header holds the identifying fields of a Document.
type Header struct {
	ID         any    `mapstructure:"_id"`
	Service    string `mapstructure:"service"`
	Subservice string `mapstructure:"subservice"`
}

// Clone returns a deep copy of the document. The copy shares no mutable state with d.
// Containers are rebuilt; BSON leaves (Decimal128, ObjectID, DateTime...) are values and
// are copied as they are, unexported fields included.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	return Document(cloneMap(d))
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case Document:
		return t.Clone()
	case map[string]any:
		if t == nil {
			return t
		}
		return cloneMap(t)
	case []any:
		if t == nil {
			return t
		}
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case []byte:
		return bytes.Clone(t)
	default:
		return v
	}
}

// ID returns the raw document identifier.
func (d Document) ID() any {
	return d[FieldID]
}

// DecodeHeader extracts the identifying fields of the document.
// Non-string service values are converted to their textual form.
func (d Document) DecodeHeader() (Header, error) {
	var h Header
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &h,
	})
	if err != nil {
		return h, err
	}
	if err := dec.Decode(map[string]any(d)); err != nil {
		return h, fmt.Errorf("failed to decode document header: %w", err)
	}
	return h, nil
}

// FormatID renders a document identifier the way it appears in reports.
// Object identifiers render as their hex form.
func FormatID(id any) string {
	switch v := id.(type) {
	case nil:
		return ""
	case string:
		return v
	case interface{ Hex() string }:
		return v.Hex()
	default:
		return fmt.Sprint(v)
	}
}
