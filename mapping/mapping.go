package mapping

import (
	"log/slog"
	"reflect"
	"strings"
)

// Source sentinels. A spec whose source is one of these never goes through
// path lookup: "static" carries a literal value, "multiple" computes its
// value from the whole payload.
const (
	SourceStatic   = "static"
	SourceMultiple = "multiple"
)

// TransformFunc converts an extracted raw value into the value sent to
// Bitrix. Transforms are pure functions of the payload: no I/O, and a nil
// (or empty) return drops the field. A transform may consult the full
// payload for multi-source fields.
type TransformFunc func(raw any, p Payload) any

type specKind int

const (
	specStatic specKind = iota
	specPath
	specComputed
)

// FieldSpec is one declarative rule producing a single output field.
// It is a closed variant: Static, FromPath/FromPathFunc, or Computed.
type FieldSpec struct {
	kind      specKind
	path      string
	value     any
	transform TransformFunc
}

// Static yields a literal configured value.
func Static(value any) FieldSpec {
	return FieldSpec{kind: specStatic, value: value}
}

// FromPath yields the raw value at the dotted payload path.
func FromPath(path string) FieldSpec {
	return FieldSpec{kind: specPath, path: path}
}

// FromPathFunc yields the path value passed through a transform.
func FromPathFunc(path string, fn TransformFunc) FieldSpec {
	return FieldSpec{kind: specPath, path: path, transform: fn}
}

// Computed yields a value derived from the whole payload ("multiple" source).
func Computed(fn TransformFunc) FieldSpec {
	return FieldSpec{kind: specComputed, path: SourceMultiple, transform: fn}
}

// Entry binds one target field (an alias or a real Bitrix field ID) to its spec.
type Entry struct {
	Target string
	Spec   FieldSpec
}

// Table is an ordered set of entries, unique by target. Order matters only
// for diagnostics; the output field set is an unordered map.
type Table []Entry

// MultiField is the Bitrix representation of one value of a multi-valued
// field such as PHONE or EMAIL.
type MultiField struct {
	Value     string `json:"VALUE"`
	ValueType string `json:"VALUE_TYPE"`
}

// ValueTypeWork is the VALUE_TYPE used for every phone and email this
// service writes, across all three entity types.
const ValueTypeWork = "WORK"

// Apply evaluates every entry of the table against the payload and returns
// the flat field set keyed by real Bitrix field IDs. Each entry is evaluated
// independently: a failing or empty field is dropped with a warning and never
// aborts the rest of the mapping.
func Apply(p Payload, table Table, entity EntityType) map[string]any {
	fields := make(map[string]any, len(table))
	for _, entry := range table {
		value := evalEntry(p, entry, entity)
		if includeValue(value) {
			fields[entry.Target] = value
		}
	}
	return ResolveAll(fields, entity)
}

// evalEntry computes one field value, converting a transform panic into a
// dropped field.
func evalEntry(p Payload, entry Entry, entity EntityType) (value any) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("field transform failed, dropping field",
				slog.String("field", entry.Target),
				slog.String("entity", string(entity)),
				slog.Any("panic", r))
			value = nil
		}
	}()

	switch entry.Spec.kind {
	case specStatic:
		return entry.Spec.value
	case specComputed:
		return entry.Spec.transform(nil, p)
	default:
		raw := p.Resolve(entry.Spec.path)
		if entry.Spec.transform != nil {
			return entry.Spec.transform(raw, p)
		}
		return raw
	}
}

// includeValue applies the uniform inclusion rule: nil, blank strings and
// empty collections are excluded from the output field set.
func includeValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(t) != ""
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() > 0
	}
	return true
}
