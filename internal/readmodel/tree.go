package readmodel

import (
	"sync"

	"github.com/Rekhyt/money-bob/internal/domain/event"
	"github.com/Rekhyt/money-bob/internal/fabric"
)

// TreeNode is one account with its sub-accounts nested below it.
type TreeNode struct {
	Name     string      `json:"name"`
	Tags     []string    `json:"tags"`
	Children []*TreeNode `json:"children"`
}

type treeEntry struct {
	parent   string
	children []string
	tags     []string
}

// AccountTree projects link events into the nested account hierarchy.
type AccountTree struct {
	mu    sync.RWMutex
	order []string
	nodes map[string]*treeEntry
}

func NewAccountTree() *AccountTree {
	return &AccountTree{nodes: map[string]*treeEntry{}}
}

func (t *AccountTree) HandleEvent(_ fabric.Envelope, evt fabric.Typer) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch e := evt.(type) {
	case event.AccountCreated:
		if _, ok := t.nodes[e.Name]; ok {
			return
		}
		t.nodes[e.Name] = &treeEntry{}
		t.order = append(t.order, e.Name)
	case event.AccountsLinked:
		sub, ok1 := t.nodes[e.SubAccountName]
		parent, ok2 := t.nodes[e.ParentAccountName]
		if !ok1 || !ok2 {
			return
		}
		sub.parent = e.ParentAccountName
		for _, c := range parent.children {
			if c == e.SubAccountName {
				return
			}
		}
		parent.children = append(parent.children, e.SubAccountName)
	case event.TagsAdded:
		if node, ok := t.nodes[e.Name]; ok {
			node.tags = append(node.tags, e.Tags...)
		}
	}
}

// Tree rebuilds the nested view: every root account with its descendants, in
// creation order.
func (t *AccountTree) Tree() []*TreeNode {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var roots []*TreeNode
	for _, name := range t.order {
		if t.nodes[name].parent != "" {
			continue
		}
		roots = append(roots, t.build(name))
	}
	return roots
}

func (t *AccountTree) build(name string) *TreeNode {
	entry := t.nodes[name]
	node := &TreeNode{
		Name:     name,
		Tags:     append([]string{}, entry.tags...),
		Children: []*TreeNode{},
	}
	for _, c := range entry.children {
		node.Children = append(node.Children, t.build(c))
	}
	return node
}
