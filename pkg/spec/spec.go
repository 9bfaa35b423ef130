// Package spec implements late-bound field predicates and sort orders that
// lower onto GORM queries. A specification is declared once per filterable
// field as an unbound template and cloned with a concrete value per request.
package spec

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"
)

var (
	// ErrUnboundValue is returned when a specification is evaluated or
	// translated before a value was bound via WithValue.
	ErrUnboundValue = errors.New("specification value not bound")

	// ErrUnknownKind is returned by the query translator for a predicate
	// kind it has no lowering for. This is a configuration fault, never
	// silently ignored.
	ErrUnknownKind = errors.New("unknown specification kind")
)

// Kind enumerates the supported predicate types.
type Kind int

const (
	KindEquals Kind = iota
	KindNotEquals
	KindGreaterThan
	KindLessThan
	KindGreaterOrEqual
	KindLessOrEqual
	KindInList
	KindNotInList
	KindSubList
	KindNotSubList
	KindLike
	KindNotLike
	KindILike
	KindNotILike
	KindIsNone
	KindIsNotNone
)

func (k Kind) String() string {
	switch k {
	case KindEquals:
		return "Equals"
	case KindNotEquals:
		return "NotEquals"
	case KindGreaterThan:
		return "GreaterThan"
	case KindLessThan:
		return "LessThan"
	case KindGreaterOrEqual:
		return "GreaterOrEqual"
	case KindLessOrEqual:
		return "LessOrEqual"
	case KindInList:
		return "InList"
	case KindNotInList:
		return "NotInList"
	case KindSubList:
		return "SubList"
	case KindNotSubList:
		return "NotSubList"
	case KindLike:
		return "Like"
	case KindNotLike:
		return "NotLike"
	case KindILike:
		return "ILike"
	case KindNotILike:
		return "NotILike"
	case KindIsNone:
		return "IsNone"
	case KindIsNotNone:
		return "IsNotNone"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

func (k Kind) description() string {
	switch k {
	case KindEquals:
		return "field value equals the bound value"
	case KindNotEquals:
		return "field value differs from the bound value"
	case KindGreaterThan:
		return "field value is greater than the bound value"
	case KindLessThan:
		return "field value is less than the bound value"
	case KindGreaterOrEqual:
		return "field value is greater than or equal to the bound value"
	case KindLessOrEqual:
		return "field value is less than or equal to the bound value"
	case KindInList:
		return "field value is a member of the bound list"
	case KindNotInList:
		return "field value is not a member of the bound list"
	case KindSubList:
		return "bound list is a subset of the field list"
	case KindNotSubList:
		return "bound list is not a subset of the field list"
	case KindLike:
		return "field string contains the bound value"
	case KindNotLike:
		return "field string does not contain the bound value"
	case KindILike:
		return "field string contains the bound value, ignoring case"
	case KindNotILike:
		return "field string does not contain the bound value, ignoring case"
	case KindIsNone:
		return "field null state matches the bound flag"
	case KindIsNotNone:
		return "field non-null state matches the bound flag"
	default:
		return "unknown predicate"
	}
}

// Value is a deferred comparison value. Template specifications hold an
// unbound Value; WithValue produces a clone carrying a bound one. Reading
// an unbound Value is a programmer error.
type Value struct {
	v     any
	bound bool
}

// Unbound returns a Value with no payload.
func Unbound() Value { return Value{} }

// BoundValue wraps v as a bound Value.
func BoundValue(v any) Value { return Value{v: v, bound: true} }

// IsBound reports whether a payload was bound.
func (v Value) IsBound() bool { return v.bound }

// Get returns the bound payload or ErrUnboundValue.
func (v Value) Get() (any, error) {
	if !v.bound {
		return nil, ErrUnboundValue
	}
	return v.v, nil
}

// Field is a predicate over a single named field. The zero value is not
// usable; construct through the kind helpers (Equals, InList, ILike, ...).
type Field struct {
	kind  Kind
	field string
	value Value
}

func newField(kind Kind, field string) *Field {
	return &Field{kind: kind, field: field, value: Unbound()}
}

// Equals matches rows whose field equals the bound value.
func Equals(field string) *Field { return newField(KindEquals, field) }

// NotEquals matches rows whose field differs from the bound value.
func NotEquals(field string) *Field { return newField(KindNotEquals, field) }

// GreaterThan matches rows whose field is strictly greater than the bound value.
func GreaterThan(field string) *Field { return newField(KindGreaterThan, field) }

// LessThan matches rows whose field is strictly less than the bound value.
func LessThan(field string) *Field { return newField(KindLessThan, field) }

// GreaterOrEqual matches rows whose field is greater than or equal to the bound value.
func GreaterOrEqual(field string) *Field { return newField(KindGreaterOrEqual, field) }

// LessOrEqual matches rows whose field is less than or equal to the bound value.
func LessOrEqual(field string) *Field { return newField(KindLessOrEqual, field) }

// InList matches rows whose field is a member of the bound list.
func InList(field string) *Field { return newField(KindInList, field) }

// NotInList matches rows whose field is not a member of the bound list.
func NotInList(field string) *Field { return newField(KindNotInList, field) }

// SubList matches rows where every element of the bound list occurs in the
// field's own list value. Set semantics: order and duplicates are ignored.
func SubList(field string) *Field { return newField(KindSubList, field) }

// NotSubList is the negation of SubList, not a disjointness test.
func NotSubList(field string) *Field { return newField(KindNotSubList, field) }

// Like matches rows whose field contains the bound value. Wildcard
// characters in the bound value are escaped, so the match is always
// literal "contains", case-sensitive.
func Like(field string) *Field { return newField(KindLike, field) }

// NotLike matches rows where Like would not match.
func NotLike(field string) *Field { return newField(KindNotLike, field) }

// ILike is Like with case-insensitive comparison.
func ILike(field string) *Field { return newField(KindILike, field) }

// NotILike matches rows where ILike would not match.
func NotILike(field string) *Field { return newField(KindNotILike, field) }

// IsNone matches null fields when bound to true and non-null fields when
// bound to false.
func IsNone(field string) *Field { return newField(KindIsNone, field) }

// IsNotNone matches non-null fields when bound to true and null fields
// when bound to false.
func IsNotNone(field string) *Field { return newField(KindIsNotNone, field) }

// Kind returns the predicate kind.
func (f *Field) Kind() Kind { return f.kind }

// Name returns the field name or dotted path the predicate reads.
func (f *Field) Name() string { return f.field }

// WithValue clones the template with a concrete value bound.
func (f *Field) WithValue(v any) *Field {
	c := *f
	c.value = BoundValue(v)
	return &c
}

// Value returns the bound value or ErrUnboundValue.
func (f *Field) Value() (any, error) {
	v, err := f.value.Get()
	if err != nil {
		return nil, fmt.Errorf("%s(%s): %w", f.kind, f.field, err)
	}
	return v, nil
}

// Description describes the predicate for failure reporting.
func (f *Field) Description() string { return f.kind.description() }

// Label keys this predicate in failure maps.
func (f *Field) Label() string { return f.kind.String() }

// IsSatisfiedBy evaluates the predicate in memory against a candidate.
// Candidates are map[string]any values; dotted field paths traverse nested
// maps. failures carries the predicate description keyed by Label when the
// candidate does not satisfy it. A non-nil error means the evaluation
// itself was impossible: unbound value, missing field, or operands that do
// not support the comparison.
func (f *Field) IsSatisfiedBy(candidate any) (bool, Failures, error) {
	ok, err := f.eval(candidate)
	if err != nil {
		return false, nil, err
	}
	if !ok {
		return false, Failures{f.Label(): f.Description()}, nil
	}
	return true, Failures{}, nil
}

func (f *Field) eval(candidate any) (bool, error) {
	bound, err := f.Value()
	if err != nil {
		return false, err
	}
	got, err := lookupField(candidate, f.field)
	if err != nil {
		return false, fmt.Errorf("%s(%s): %w", f.kind, f.field, err)
	}

	switch f.kind {
	case KindEquals:
		return looseEqual(got, bound), nil
	case KindNotEquals:
		return !looseEqual(got, bound), nil
	case KindGreaterThan, KindLessThan, KindGreaterOrEqual, KindLessOrEqual:
		cmp, err := compareOrdered(got, bound)
		if err != nil {
			return false, fmt.Errorf("%s(%s): %w", f.kind, f.field, err)
		}
		switch f.kind {
		case KindGreaterThan:
			return cmp > 0, nil
		case KindLessThan:
			return cmp < 0, nil
		case KindGreaterOrEqual:
			return cmp >= 0, nil
		default:
			return cmp <= 0, nil
		}
	case KindInList:
		members, err := toSlice(bound)
		if err != nil {
			return false, fmt.Errorf("%s(%s): %w", f.kind, f.field, err)
		}
		return containsLoose(members, got), nil
	case KindNotInList:
		members, err := toSlice(bound)
		if err != nil {
			return false, fmt.Errorf("%s(%s): %w", f.kind, f.field, err)
		}
		return !containsLoose(members, got), nil
	case KindSubList, KindNotSubList:
		wanted, err := toSlice(bound)
		if err != nil {
			return false, fmt.Errorf("%s(%s): %w", f.kind, f.field, err)
		}
		have, err := toSlice(got)
		if err != nil {
			return false, fmt.Errorf("%s(%s): field value: %w", f.kind, f.field, err)
		}
		sub := isSubset(wanted, have)
		if f.kind == KindNotSubList {
			return !sub, nil
		}
		return sub, nil
	case KindLike, KindNotLike, KindILike, KindNotILike:
		pattern, ok := bound.(string)
		if !ok {
			return false, fmt.Errorf("%s(%s): bound value must be a string", f.kind, f.field)
		}
		text, ok := got.(string)
		if !ok {
			return false, fmt.Errorf("%s(%s): field value must be a string", f.kind, f.field)
		}
		var match bool
		switch f.kind {
		case KindLike, KindNotLike:
			match = strings.Contains(text, pattern)
		default:
			match = strings.Contains(strings.ToLower(text), strings.ToLower(pattern))
		}
		if f.kind == KindNotLike || f.kind == KindNotILike {
			return !match, nil
		}
		return match, nil
	case KindIsNone, KindIsNotNone:
		flag, ok := bound.(bool)
		if !ok {
			return false, fmt.Errorf("%s(%s): bound value must be a bool", f.kind, f.field)
		}
		isNil := got == nil
		if f.kind == KindIsNone {
			if flag {
				return isNil, nil
			}
			return !isNil, nil
		}
		if flag {
			return !isNil, nil
		}
		return isNil, nil
	default:
		return false, fmt.Errorf("%w: %s", ErrUnknownKind, f.kind)
	}
}

// lookupField resolves a dotted path against nested map[string]any values.
func lookupField(candidate any, path string) (any, error) {
	current := candidate
	for _, part := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("candidate segment %q is not a map", part)
		}
		v, ok := m[part]
		if !ok {
			return nil, fmt.Errorf("candidate has no field %q", part)
		}
		current = v
	}
	return current, nil
}

func looseEqual(a, b any) bool {
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			return af == bf
		}
	}
	return reflect.DeepEqual(a, b)
}

func containsLoose(members []any, v any) bool {
	for _, m := range members {
		if looseEqual(m, v) {
			return true
		}
	}
	return false
}

func isSubset(wanted, have []any) bool {
	for _, w := range wanted {
		if !containsLoose(have, w) {
			return false
		}
	}
	return true
}

func compareOrdered(a, b any) (int, error) {
	if af, ok := toFloat(a); ok {
		bf, ok := toFloat(b)
		if !ok {
			return 0, fmt.Errorf("cannot compare %T with %T", a, b)
		}
		switch {
		case af < bf:
			return -1, nil
		case af > bf:
			return 1, nil
		default:
			return 0, nil
		}
	}
	if as, ok := a.(string); ok {
		bs, ok := b.(string)
		if !ok {
			return 0, fmt.Errorf("cannot compare %T with %T", a, b)
		}
		return strings.Compare(as, bs), nil
	}
	if at, ok := a.(time.Time); ok {
		bt, ok := b.(time.Time)
		if !ok {
			return 0, fmt.Errorf("cannot compare %T with %T", a, b)
		}
		switch {
		case at.Before(bt):
			return -1, nil
		case at.After(bt):
			return 1, nil
		default:
			return 0, nil
		}
	}
	return 0, fmt.Errorf("values of type %T are not ordered", a)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// toSlice normalizes a bound list value to []any.
func toSlice(v any) ([]any, error) {
	if v == nil {
		return nil, errors.New("expected a list, got nil")
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("expected a list, got %T", v)
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, nil
}
