package spec

import "fmt"

// Failures maps the label of each unsatisfied predicate to its description.
type Failures map[string]string

func (f Failures) merge(other Failures) {
	for k, v := range other {
		f[k] = v
	}
}

// Specification is the composable predicate contract. Leaves are *Field
// values; composites come from And, Or and Not. Composition is an
// in-memory facility: the query translator takes flat specification lists
// and conjoins them.
type Specification interface {
	// IsSatisfiedBy evaluates the candidate, returning the overall
	// verdict together with the failure descriptions of every
	// unsatisfied leaf.
	IsSatisfiedBy(candidate any) (bool, Failures, error)
	Description() string
	Label() string
}

type andSpec struct {
	a, b Specification
}

// And combines two specifications; both must be satisfied.
func And(a, b Specification) Specification { return &andSpec{a: a, b: b} }

func (s *andSpec) IsSatisfiedBy(candidate any) (bool, Failures, error) {
	okA, failA, err := s.a.IsSatisfiedBy(candidate)
	if err != nil {
		return false, nil, err
	}
	okB, failB, err := s.b.IsSatisfiedBy(candidate)
	if err != nil {
		return false, nil, err
	}
	merged := Failures{}
	merged.merge(failA)
	merged.merge(failB)
	return okA && okB, merged, nil
}

func (s *andSpec) Description() string {
	return fmt.Sprintf("(%s) and (%s)", s.a.Description(), s.b.Description())
}

func (s *andSpec) Label() string { return "And" }

type orSpec struct {
	a, b Specification
}

// Or combines two specifications; either satisfies. Failure descriptions
// of an unsatisfied branch are still reported even when the other branch
// carries the verdict.
func Or(a, b Specification) Specification { return &orSpec{a: a, b: b} }

func (s *orSpec) IsSatisfiedBy(candidate any) (bool, Failures, error) {
	okA, failA, err := s.a.IsSatisfiedBy(candidate)
	if err != nil {
		return false, nil, err
	}
	okB, failB, err := s.b.IsSatisfiedBy(candidate)
	if err != nil {
		return false, nil, err
	}
	merged := Failures{}
	merged.merge(failA)
	merged.merge(failB)
	return okA || okB, merged, nil
}

func (s *orSpec) Description() string {
	return fmt.Sprintf("(%s) or (%s)", s.a.Description(), s.b.Description())
}

func (s *orSpec) Label() string { return "Or" }

type notSpec struct {
	inner Specification
}

// Not negates a specification. Its failure is reported under the inner
// specification's label with a relabelled description.
func Not(inner Specification) Specification { return &notSpec{inner: inner} }

func (s *notSpec) IsSatisfiedBy(candidate any) (bool, Failures, error) {
	ok, _, err := s.inner.IsSatisfiedBy(candidate)
	if err != nil {
		return false, nil, err
	}
	if ok {
		return false, Failures{s.inner.Label(): s.Description()}, nil
	}
	return true, Failures{}, nil
}

func (s *notSpec) Description() string {
	return fmt.Sprintf("expected condition to not hold: %s", s.inner.Description())
}

func (s *notSpec) Label() string { return "Not" }
