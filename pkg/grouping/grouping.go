// Package grouping nests a flat component list into an ownership forest.
//
// Two strategies run in a fixed order:
//
//  1. Type-directed passes. For each owner kind in [Plan.Passes], every
//     component of that kind (in input order) claims children out of the
//     remaining unclaimed [Pool] through its descriptor's Group rule.
//  2. Catch-all container. Components of [Plan.Container] kind adsorb every
//     still-unclaimed component whose owner hint equals their name.
//
// Whatever is left unclaimed forms the roots of the forest, in input order.
// A component is claimed at most once, so it appears exactly once in the
// forest, and an attachment that would make a component its own ancestor is
// rejected with [ErrCycle].
package grouping

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/drawtf/pkg/component"
	"github.com/matzehuels/drawtf/pkg/registry"
)

var (
	// ErrCycle is returned when a grouping rule would attach a component
	// below one of its own descendants.
	ErrCycle = errors.New("grouping would introduce a cycle")

	// ErrInvalidPlan is returned by [Plan.Validate].
	ErrInvalidPlan = errors.New("invalid grouping plan")
)

// Plan is the explicit, ordered grouping configuration of a provider.
// More specific owners come first so a component is not left to the
// catch-all container when a closer owner exists.
type Plan struct {
	// Passes lists owner kinds in priority order. Each must be registered
	// with a descriptor implementing registry.Grouper.
	Passes []string

	// Container is the catch-all container kind. Empty disables the
	// catch-all step.
	Container string
}

// Validate checks the plan against a registry.
func (p Plan) Validate(reg *registry.Registry) error {
	seen := make(map[string]bool, len(p.Passes))
	for _, kind := range p.Passes {
		if seen[kind] {
			return fmt.Errorf("%w: pass %s listed twice", ErrInvalidPlan, kind)
		}
		seen[kind] = true
		if _, ok := reg.Grouper(kind); !ok {
			return fmt.Errorf("%w: %s is not a registered grouping kind", ErrInvalidPlan, kind)
		}
	}
	if p.Container != "" && !reg.Supports(p.Container) {
		return fmt.Errorf("%w: container kind %s is not registered", ErrInvalidPlan, p.Container)
	}
	return nil
}

// Engine applies a [Plan] using the descriptors of a registry.
type Engine struct {
	Registry *registry.Registry
	Plan     Plan
	Logger   *log.Logger
}

// New creates an engine. A nil logger discards output.
func New(reg *registry.Registry, plan Plan, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Engine{Registry: reg, Plan: plan, Logger: logger}
}

// Nest groups cs and returns the forest roots. Children are appended to
// the components in place, after any children they were created with.
// On error no component is modified.
func (e *Engine) Nest(cs []*component.Component) ([]*component.Component, error) {
	if err := e.Plan.Validate(e.Registry); err != nil {
		return nil, err
	}

	t := &tree{parent: make(map[*component.Component]*component.Component)}
	pool := NewPool(cs)

	var err error
	for _, kind := range e.Plan.Passes {
		pool, err = e.pass(kind, cs, pool, t)
		if err != nil {
			return nil, err
		}
	}
	if e.Plan.Container != "" {
		pool, err = e.adsorb(cs, pool, t)
		if err != nil {
			return nil, err
		}
	}
	t.commit()
	return pool.Members(), nil
}

// pass lets every component of kind claim children from pool and returns
// the remaining pool. Owners are taken from the full list, so an owner that
// was itself claimed earlier keeps collecting children.
func (e *Engine) pass(kind string, all []*component.Component, pool *Pool, t *tree) (*Pool, error) {
	grouper, _ := e.Registry.Grouper(kind)
	for _, owner := range all {
		if owner.Kind != kind {
			continue
		}
		var claimed []*component.Component
		seen := make(map[*component.Component]bool)
		for _, c := range grouper.Group(owner, pool.Members()) {
			if c == owner || seen[c] {
				continue
			}
			if !pool.Contains(c) {
				return nil, fmt.Errorf("%s %s claims %s: %w", kind, owner.Name, c.Key(), ErrAlreadyClaimed)
			}
			seen[c] = true
			claimed = append(claimed, c)
		}
		if len(claimed) == 0 {
			continue
		}
		for _, c := range claimed {
			if err := t.attach(owner, c); err != nil {
				return nil, err
			}
		}
		next, err := pool.Claim(claimed...)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", kind, owner.Name, err)
		}
		pool = next
		e.Logger.Debug("grouped", "owner", owner.Key(), "children", len(claimed))
	}
	return pool, nil
}

// adsorb attaches unclaimed components to the container named by their
// owner hint. Containers never adsorb other containers.
func (e *Engine) adsorb(all []*component.Component, pool *Pool, t *tree) (*Pool, error) {
	containers := make(map[string]*component.Component)
	for _, c := range all {
		if c.Kind != e.Plan.Container {
			continue
		}
		if first, dup := containers[c.Name]; dup {
			e.Logger.Warn("duplicate container name, keeping first",
				"kind", c.Kind, "name", c.Name, "kept", first.Key())
			continue
		}
		containers[c.Name] = c
	}

	var claimed []*component.Component
	for _, c := range pool.Members() {
		if c.Kind == e.Plan.Container {
			continue
		}
		owner, ok := containers[c.OwnerHint]
		if !ok {
			continue
		}
		if err := t.attach(owner, c); err != nil {
			return nil, err
		}
		claimed = append(claimed, c)
	}
	return pool.Claim(claimed...)
}

// tree records engine-made attachments so cycles can be refused. Children
// are only added to their owners by commit.
type tree struct {
	parent  map[*component.Component]*component.Component
	pending []attachment
}

type attachment struct {
	owner, child *component.Component
}

func (t *tree) attach(owner, child *component.Component) error {
	for a := owner; a != nil; a = t.parent[a] {
		if a == child {
			return fmt.Errorf("%w: %s under %s", ErrCycle, child.Key(), owner.Key())
		}
	}
	t.parent[child] = owner
	t.pending = append(t.pending, attachment{owner, child})
	return nil
}

func (t *tree) commit() {
	for _, a := range t.pending {
		a.owner.Add(a.child)
	}
	t.pending = nil
}
