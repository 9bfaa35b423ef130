package spec

import "fmt"

// Direction orders a sort field.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// Sort is a sort order over a single field with a late-bound direction,
// mirroring how Field defers its value. Multiple sorts apply in the order
// given; no tiebreak column is added, so rows with equal keys keep an
// engine-defined relative order.
type Sort struct {
	field     string
	direction Direction
	bound     bool
}

// SortBy declares a sort template for a field.
func SortBy(field string) *Sort { return &Sort{field: field} }

// WithDirection clones the template with a direction bound.
func (s *Sort) WithDirection(d Direction) *Sort {
	c := *s
	c.direction = d
	c.bound = true
	return &c
}

// Field returns the sorted field name.
func (s *Sort) Field() string { return s.field }

// Direction returns the bound direction or ErrUnboundValue.
func (s *Sort) Direction() (Direction, error) {
	if !s.bound {
		return "", fmt.Errorf("sort(%s): %w", s.field, ErrUnboundValue)
	}
	return s.direction, nil
}
