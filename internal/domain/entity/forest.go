package entity

import (
	"github.com/Rekhyt/money-bob/internal/domain"
	"github.com/Rekhyt/money-bob/internal/domain/vo"
)

// MaxLinkDepth bounds the length of any ancestor chain in the forest.
const MaxLinkDepth = 1000

// Forest indexes all accounts by name. The parent/children fields of the
// accounts must always form a forest: acyclic, every chain at most
// MaxLinkDepth nodes long.
type Forest map[vo.AccountName]*Account

// CheckLink answers whether sub may be linked under parent without breaking
// the forest invariants. It does not mutate anything.
func (f Forest) CheckLink(sub, parent vo.AccountName) error {
	var missing []string
	if _, ok := f[sub]; !ok {
		missing = append(missing, sub.String())
	}
	if _, ok := f[parent]; !ok && sub != parent {
		missing = append(missing, parent.String())
	}
	if len(missing) > 0 {
		return &domain.NotFoundError{Names: missing}
	}

	if sub == parent {
		return &domain.CycleError{
			SubAccount:    sub.String(),
			ParentAccount: parent.String(),
			Path:          []string{sub.String(), parent.String()},
		}
	}

	subAcc := f[sub]
	if subAcc.Parent != "" {
		verr := &domain.ValidationError{}
		verr.Addf("subAccountName",
			"account %q is already linked to %q; unlink it before linking again",
			sub, subAcc.Parent)
		return verr
	}

	ancestors := f.ancestors(parent)
	depth := len(ancestors) + 1 + f.deepestChain(sub)
	if depth > MaxLinkDepth {
		return &domain.DepthExceededError{
			SubAccount:    sub.String(),
			ParentAccount: parent.String(),
			Depth:         depth,
			MaxDepth:      MaxLinkDepth,
		}
	}

	for i, name := range ancestors {
		if name == sub {
			// parent already descends from sub, linking would close a circle
			path := make([]string, 0, i+2)
			for _, n := range ancestors[:i+1] {
				path = append(path, n.String())
			}
			path = append(path, sub.String())
			return &domain.CycleError{
				SubAccount:    sub.String(),
				ParentAccount: parent.String(),
				Path:          path,
			}
		}
	}

	return nil
}

// CommitLink records the link. Idempotent against double application during
// replay: re-linking to the same parent neither duplicates the child entry
// nor changes anything else.
func (f Forest) CommitLink(sub, parent vo.AccountName) {
	subAcc, parentAcc := f[sub], f[parent]
	subAcc.Parent = parent
	for _, c := range parentAcc.Children {
		if c == sub {
			return
		}
	}
	parentAcc.Children = append(parentAcc.Children, sub)
}

// ancestors walks parent pointers from name (inclusive) to its root. The walk
// is iterative and bounded, so a corrupted graph can never hang it.
func (f Forest) ancestors(name vo.AccountName) []vo.AccountName {
	var chain []vo.AccountName
	for cur := name; cur != ""; {
		chain = append(chain, cur)
		if len(chain) > MaxLinkDepth {
			break
		}
		acc, ok := f[cur]
		if !ok {
			break
		}
		cur = acc.Parent
	}
	return chain
}

// deepestChain returns the length of the longest strict-descendant chain
// below name, iteratively (depth-first over an explicit stack).
func (f Forest) deepestChain(name vo.AccountName) int {
	type frame struct {
		name  vo.AccountName
		depth int
	}
	max := 0
	stack := []frame{{name: name, depth: 0}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.depth > max {
			max = top.depth
		}
		if top.depth >= MaxLinkDepth {
			continue
		}
		acc, ok := f[top.name]
		if !ok {
			continue
		}
		for _, c := range acc.Children {
			stack = append(stack, frame{name: c, depth: top.depth + 1})
		}
	}
	return max
}
