package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

type Shape int

const (
	ShapeArray Shape = iota
	ShapeObject
)

func (s Shape) String() string {
	if s == ShapeObject {
		return "object"
	}
	return "array"
}

// Kind is the primitive JSON type of a field.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindBool
	KindArray
	KindObject
)

func (k Kind) String() string {
	return [...]string{"string", "number", "bool", "array", "object"}[k]
}

type Field struct {
	Name     string
	Kind     Kind
	Required bool
}

// Schema describes the expected output of a template: the top-level shape and,
// for each record, the fields checked for presence and primitive kind.
type Schema struct {
	Shape  Shape
	Fields []Field
}

// StripFences trims raw and removes a surrounding markdown code fence, with or
// without a json language tag. Text that does not start with a fence is only
// trimmed.
func StripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if len(s) >= 4 && strings.EqualFold(s[:4], "json") {
		s = s[4:]
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// Normalize strips fences from raw, decodes it and gates it on shape. For
// ShapeArray it returns the array elements; for ShapeObject it returns the
// object as the single element. A well-formed value of the wrong shape yields
// no elements. Undecodable text yields a *ParseFailure.
func Normalize(raw string, shape Shape) ([]json.RawMessage, error) {
	text := StripFences(raw)

	var v json.RawMessage
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, &ParseFailure{Text: raw, Err: err}
	}

	switch {
	case shape == ShapeArray && kindOf(v) == KindArray:
		var elems []json.RawMessage
		if err := json.Unmarshal(v, &elems); err != nil {
			return nil, &ParseFailure{Text: raw, Err: err}
		}
		if elems == nil {
			elems = []json.RawMessage{}
		}
		return elems, nil
	case shape == ShapeObject && kindOf(v) == KindObject:
		return []json.RawMessage{v}, nil
	default:
		return []json.RawMessage{}, nil
	}
}

// DecodeArray normalizes raw as an array and decodes each element that passes
// the schema. Elements that fail the schema or do not decode into T are
// dropped; the number dropped is returned alongside the records.
func DecodeArray[T any](raw string, schema Schema) ([]T, int, error) {
	elems, err := Normalize(raw, ShapeArray)
	if err != nil {
		return nil, 0, err
	}

	out := make([]T, 0, len(elems))
	dropped := 0
	for _, el := range elems {
		if schema.Check(el) != nil {
			dropped++
			continue
		}
		var rec T
		if err := json.Unmarshal(el, &rec); err != nil {
			dropped++
			continue
		}
		out = append(out, rec)
	}
	return out, dropped, nil
}

// DecodeObject normalizes raw as an object and decodes it into T. A value of
// the wrong shape yields the zero T. An object that fails the schema is a
// *ParseFailure.
func DecodeObject[T any](raw string, schema Schema) (T, error) {
	var rec T
	elems, err := Normalize(raw, ShapeObject)
	if err != nil {
		return rec, err
	}
	if len(elems) == 0 {
		return rec, nil
	}
	if err := schema.Check(elems[0]); err != nil {
		return rec, &ParseFailure{Text: raw, Err: err}
	}
	if err := json.Unmarshal(elems[0], &rec); err != nil {
		return rec, &ParseFailure{Text: raw, Err: err}
	}
	return rec, nil
}

// Check reports whether record is an object whose fields match the schema.
// Absent and null fields only fail when required.
func (s Schema) Check(record json.RawMessage) error {
	if kindOf(record) != KindObject {
		return fmt.Errorf("record is not an object")
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(record, &fields); err != nil {
		return fmt.Errorf("failed to decode record: %w", err)
	}
	for _, f := range s.Fields {
		v, ok := fields[f.Name]
		if !ok || isNull(v) {
			if f.Required {
				return fmt.Errorf("missing required field %q", f.Name)
			}
			continue
		}
		if got := kindOf(v); got != f.Kind {
			return fmt.Errorf("field %q is %s, want %s", f.Name, got, f.Kind)
		}
	}
	return nil
}

func kindOf(v json.RawMessage) Kind {
	v = bytes.TrimSpace(v)
	if len(v) == 0 {
		return KindString
	}
	switch v[0] {
	case '"':
		return KindString
	case '[':
		return KindArray
	case '{':
		return KindObject
	case 't', 'f':
		return KindBool
	default:
		return KindNumber
	}
}

func isNull(v json.RawMessage) bool {
	return string(bytes.TrimSpace(v)) == "null"
}
