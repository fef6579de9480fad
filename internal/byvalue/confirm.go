package byvalue

import (
	"fmt"

	"byval/internal/trace"
	"byval/internal/typename"
)

// Confirm proves every requested type by-value safe, together with its
// transitive field types. The worklist is a stack: requests are pushed in
// order and popped last-first, and a struct's fields are pushed in field
// order, so the last field is examined first. The first problem met aborts
// the whole batch with an *Error carrying the causal chain.
func (c *Checker) Confirm(requested []typename.Name) error {
	stack := append([]typename.Name(nil), requested...)
	deferred := make(map[typename.Name]bool)

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		rec, ok := c.store.Get(id)
		if !ok {
			return c.fail(&Reason{Kind: DeclarationMissing, Type: id})
		}
		trace.Pointf(c.tracer, trace.ScopeType, "confirm", "pop %s (%s)", id, rec.Verdict.Kind)

		switch rec.Verdict.Kind {
		case Unsafe:
			return c.fail(rec.Verdict.Reason)
		case Confirmed:
		case SafeCandidate:
			rec.Verdict = confirmed()
			stack = append(stack, rec.Deps...)
		case AliasOf:
			chain, final, cycle := c.resolveAlias(id)
			if cycle != nil {
				return c.fail(cycle)
			}
			target, ok := c.store.Get(final)
			if !ok {
				return c.fail(&Reason{Kind: DeclarationMissing, Type: final})
			}
			if !target.Verdict.Kind.Terminal() {
				if deferred[id] {
					return fmt.Errorf("byvalue: alias %s target %s still %s", id, final, target.Verdict.Kind)
				}
				// confirm the target first, then come back once
				deferred[id] = true
				stack = append(stack, id, final)
				continue
			}
			c.settleAliases(chain, final, target.Verdict)
			// re-examine under the copied verdict
			stack = append(stack, id)
		default:
			return fmt.Errorf("byvalue: %s has no verdict", id)
		}
	}
	return nil
}

// settleAliases copies a terminal target verdict onto every alias of chain.
// An unsafe target gives each alias its own reason naming the next link, so
// the failure reads from the requested alias down to the target.
func (c *Checker) settleAliases(chain []typename.Name, final typename.Name, v Verdict) {
	cause := v.Reason
	for i := len(chain) - 1; i >= 0; i-- {
		a, _ := c.store.Get(chain[i])
		if v.Kind != Unsafe {
			a.Verdict = v
			continue
		}
		next := final
		if i+1 < len(chain) {
			next = chain[i+1]
		}
		cause = &Reason{Kind: DependentTypeUnsafe, Type: chain[i], Dependent: next, Cause: cause, Alias: true}
		a.Verdict = unsafe(cause)
	}
}

// resolveAlias follows AliasOf links from id. It returns the aliases walked
// (id first) and the first name that is not an alias, which may have no
// record. Revisiting an alias is a cycle.
func (c *Checker) resolveAlias(id typename.Name) ([]typename.Name, typename.Name, *Reason) {
	var chain []typename.Name
	visited := make(map[typename.Name]bool)
	cur := id
	for {
		rec, ok := c.store.Get(cur)
		if !ok || rec.Verdict.Kind != AliasOf {
			return chain, cur, nil
		}
		if visited[cur] {
			cycle := append(append([]typename.Name(nil), chain...), cur)
			return nil, typename.Name{}, &Reason{Kind: AliasCycle, Type: id, Chain: cycle}
		}
		visited[cur] = true
		chain = append(chain, cur)
		cur = rec.Verdict.Target
	}
}

func (c *Checker) fail(r *Reason) error {
	err := newError(r)
	trace.Point(c.tracer, trace.ScopeError, "confirm", err.Error())
	return err
}
