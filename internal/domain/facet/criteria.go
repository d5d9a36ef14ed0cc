package facet

import (
	"fmt"

	"github.com/kailas-cloud/aptdex/internal/domain"
)

// Criteria holds one constraint per facet. The zero value constrains nothing.
// Criteria is a value type: copies are independent.
type Criteria struct {
	constraints [numFacets]Constraint
}

// Get returns the constraint on f.
func (c Criteria) Get(f Facet) Constraint {
	if !f.valid() {
		return Any()
	}
	return c.constraints[f]
}

// Set replaces the constraint on f. The constraint shape must fit the facet.
// Other facets are left as they are.
func (c *Criteria) Set(f Facet, con Constraint) error {
	if !f.valid() {
		return fmt.Errorf("%w: unknown facet %d", domain.ErrInvalidFilter, int(f))
	}
	if con.IsMatch() && f.Kind() != KindMatch {
		return fmt.Errorf("%w: facet %s takes a range", domain.ErrInvalidFilter, f)
	}
	if con.IsRange() && f.Kind() != KindRange {
		return fmt.Errorf("%w: facet %s takes a value", domain.ErrInvalidFilter, f)
	}
	c.constraints[f] = con
	return nil
}

// Reset clears f and every facet of lower precedence.
// Facets of higher precedence are never touched.
func (c *Criteria) Reset(f Facet) {
	if !f.valid() {
		return
	}
	for i := f; i < numFacets; i++ {
		c.constraints[i] = Any()
	}
}

// IsApplied reports whether f carries a constraint.
func (c Criteria) IsApplied(f Facet) bool {
	return !c.Get(f).IsAll()
}

// Applied returns the constrained facets in precedence order.
func (c Criteria) Applied() []Facet {
	var out []Facet
	for i, con := range c.constraints {
		if !con.IsAll() {
			out = append(out, Facet(i))
		}
	}
	return out
}

// Above returns a copy of c keeping only the constraints of facets that take
// precedence over f.
func (c Criteria) Above(f Facet) Criteria {
	var out Criteria
	for i := Facet(0); i < f && i < numFacets; i++ {
		out.constraints[i] = c.constraints[i]
	}
	return out
}

// String renders the applied constraints for logs.
func (c Criteria) String() string {
	s := ""
	for _, f := range c.Applied() {
		if s != "" {
			s += " "
		}
		s += f.String() + "=" + c.constraints[f].String()
	}
	if s == "" {
		return AllValue
	}
	return s
}
