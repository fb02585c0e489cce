package grouping

import (
	"errors"
	"slices"

	"github.com/matzehuels/drawtf/pkg/component"
)

// ErrAlreadyClaimed is returned by [Pool.Claim] for a component that is not
// in the pool.
var ErrAlreadyClaimed = errors.New("component already claimed")

// Pool is the ordered set of components not yet claimed by any owner.
// Claiming returns a new pool; a Pool value is never modified, which keeps
// each grouping pass an explicit input -> output step.
type Pool struct {
	members []*component.Component
	index   map[*component.Component]struct{}
}

// NewPool creates a pool holding cs in order. Repeated pointers are kept
// once.
func NewPool(cs []*component.Component) *Pool {
	p := &Pool{index: make(map[*component.Component]struct{}, len(cs))}
	for _, c := range cs {
		if _, dup := p.index[c]; dup {
			continue
		}
		p.index[c] = struct{}{}
		p.members = append(p.members, c)
	}
	return p
}

// Members returns the unclaimed components in their original order.
func (p *Pool) Members() []*component.Component { return slices.Clone(p.members) }

// Len returns the number of unclaimed components.
func (p *Pool) Len() int { return len(p.members) }

// Contains reports whether c is still unclaimed.
func (p *Pool) Contains(c *component.Component) bool {
	_, ok := p.index[c]
	return ok
}

// Claim returns the pool without cs. It fails without side effects if any
// member of cs is not in p.
func (p *Pool) Claim(cs ...*component.Component) (*Pool, error) {
	drop := make(map[*component.Component]struct{}, len(cs))
	for _, c := range cs {
		if !p.Contains(c) {
			return p, ErrAlreadyClaimed
		}
		drop[c] = struct{}{}
	}
	rest := make([]*component.Component, 0, len(p.members)-len(drop))
	for _, c := range p.members {
		if _, gone := drop[c]; !gone {
			rest = append(rest, c)
		}
	}
	return NewPool(rest), nil
}
