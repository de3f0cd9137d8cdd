package validator

import (
	"sort"

	"github.com/tordrt/schemadoc/internal/schema"
)

// relationshipPass resolves every declared relationship against the entity
// set, checks cardinality/nature pairings, and detects inheritance cycles.
// Only inheritance edges form the cycle-detection graph; composition and
// aggregation cycles are not checked.
func (v *run) relationshipPass() {
	if v.doc.Relationships == nil {
		return
	}

	for _, rel := range v.doc.Relationships.Relationships {
		v.checkRelationship(rel)
	}
	v.detectInheritanceCycles()
}

func (v *run) checkRelationship(rel schema.Relationship) {
	for _, name := range []string{rel.From, rel.To, rel.Via} {
		if name != "" && !v.entities[name] {
			v.errorf(MissingRequiredEntity, name, "",
				"relationship %s -> %s references undeclared entity %q", rel.From, rel.To, name)
		}
	}

	if rel.Nature != "" {
		if !sanePairing(rel.Kind, rel.Nature) {
			v.errorf(InconsistentRelationship, rel.From, "",
				"relationship %s -> %s combines cardinality %q with nature %q", rel.From, rel.To, rel.Kind, rel.Nature)
		}
	}

	if rel.Kind == schema.ManyToMany && rel.Via == "" {
		v.warnf("many-to-many relationship %s -> %s has no via entity", rel.From, rel.To)
	}
	if rel.Via != "" && rel.Kind != schema.ManyToMany {
		v.warnf("relationship %s -> %s declares a via entity but is not many-to-many", rel.From, rel.To)
	}
}

// sanePairing reports whether a cardinality tag and a nature tag can
// describe the same edge. Ownership-flavored cardinalities must agree with
// the declared nature; the plain multiplicity tags pair with anything
// except inheritance.
func sanePairing(kind schema.RelationKind, nature schema.RelationNature) bool {
	switch kind {
	case schema.Inheritance:
		return nature == schema.NatureInheritance
	case schema.Composition:
		return nature == schema.NatureComposition
	case schema.Aggregation:
		return nature == schema.NatureAggregation
	default:
		return nature != schema.NatureInheritance
	}
}

// detectInheritanceCycles runs a depth-first search with an explicit
// recursion stack over the inheritance edges. A back edge into the stack
// reports one circular-reference error naming the entity at which the
// cycle was detected.
func (v *run) detectInheritanceCycles() {
	edges := make(map[string][]string)
	var nodes []string
	seen := make(map[string]bool)
	for _, rel := range v.doc.Relationships.Relationships {
		if rel.Kind != schema.Inheritance {
			continue
		}
		edges[rel.From] = append(edges[rel.From], rel.To)
		for _, n := range []string{rel.From, rel.To} {
			if !seen[n] {
				seen[n] = true
				nodes = append(nodes, n)
			}
		}
	}
	sort.Strings(nodes)

	const (
		white = 0
		gray  = 1
		black = 2
	)
	state := make(map[string]int)

	var visit func(name string)
	visit = func(name string) {
		state[name] = gray
		for _, next := range edges[name] {
			switch state[next] {
			case gray:
				v.errorf(CircularReference, next, "",
					"inheritance cycle detected at entity %q", next)
			case white:
				visit(next)
			}
		}
		state[name] = black
	}

	for _, n := range nodes {
		if state[n] == white {
			visit(n)
		}
	}
}
