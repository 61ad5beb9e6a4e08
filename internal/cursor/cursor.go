// Package cursor implements pagination cursor encode/decode (spec.md
// §4.1 C7): an opaque, comma-joined, URL-encoded string identifying a
// page boundary.
package cursor

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ronin-co/compiler/internal/schema"
)

// NullToken is substituted for a null field value in an encoded cursor.
const NullToken = "RONIN_NULL"

// FieldValue pairs a record's value for one ordering field with that
// field's type, so Encode can apply type-specific rendering (dates as
// ms-since-epoch).
type FieldValue struct {
	Value any
	Type  schema.FieldType
}

// Encode builds the comma-joined, URL-encoded cursor string for the given
// ordering fields' values, in [...ascending, ...descending] order (the
// caller is responsible for supplying them in that order).
func Encode(values []FieldValue) string {
	parts := make([]string, len(values))
	for i, fv := range values {
		parts[i] = url.QueryEscape(render(fv))
	}
	return strings.Join(parts, ",")
}

func render(fv FieldValue) string {
	if fv.Value == nil {
		return NullToken
	}
	switch fv.Type {
	case schema.FieldDate:
		if ms, ok := toEpochMillis(fv.Value); ok {
			return strconv.FormatInt(ms, 10)
		}
		return fmt.Sprintf("%v", fv.Value)
	case schema.FieldBoolean:
		b, _ := fv.Value.(bool)
		if b {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", fv.Value)
	}
}

func toEpochMillis(v any) (int64, bool) {
	switch t := v.(type) {
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return 0, false
		}
		return parsed.UnixMilli(), true
	case time.Time:
		return t.UnixMilli(), true
	case int64:
		return t, true
	case float64:
		return int64(t), true
	}
	return 0, false
}

// Decode reverses Encode: given the cursor string and the ordered list of
// field types it was built from, it returns one typed value per field.
// Boolean and number fields are coerced to their Go type; date fields are
// coerced to an ms-since-epoch-derived ISO-8601 string, matching the
// column format the compiler compares against.
func Decode(encoded string, types []schema.FieldType) ([]any, error) {
	if encoded == "" {
		return nil, schema.NewError(schema.ErrInvalidBeforeOrAfterInstruction, "Cursor is empty")
	}
	tokens := strings.Split(encoded, ",")
	if len(tokens) != len(types) {
		return nil, schema.NewErrorf(schema.ErrInvalidBeforeOrAfterInstruction,
			"Cursor has %d values, expected %d", len(tokens), len(types))
	}

	out := make([]any, len(tokens))
	for i, tok := range tokens {
		decodedTok, err := url.QueryUnescape(tok)
		if err != nil {
			return nil, schema.NewErrorf(schema.ErrInvalidBeforeOrAfterInstruction, "Malformed cursor segment: %v", err)
		}
		if decodedTok == NullToken {
			out[i] = nil
			continue
		}
		v, err := coerce(decodedTok, types[i])
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func coerce(raw string, t schema.FieldType) (any, error) {
	switch t {
	case schema.FieldBoolean:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, schema.NewErrorf(schema.ErrInvalidBeforeOrAfterInstruction, "Invalid boolean cursor value: %s", raw)
		}
		return b, nil
	case schema.FieldNumber:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, schema.NewErrorf(schema.ErrInvalidBeforeOrAfterInstruction, "Invalid numeric cursor value: %s", raw)
		}
		return f, nil
	case schema.FieldDate:
		ms, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, schema.NewErrorf(schema.ErrInvalidBeforeOrAfterInstruction, "Invalid date cursor value: %s", raw)
		}
		return time.UnixMilli(ms).UTC().Format("2006-01-02T15:04:05.000Z"), nil
	default:
		return raw, nil
	}
}
