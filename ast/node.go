// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ast

import "strings"

// Node is a tagged record in the policy AST. Ownership is tree-exclusive:
// each child belongs to exactly one parent, and siblings form a doubly
// linked list under that parent.
type Node struct {
	Flavor Flavor
	Parent *Node
	Prev   *Node
	Next   *Node

	FirstChild *Node
	lastChild  *Node

	Lineno int

	// Exceptions holds check IDs disabled for this node by an in-source
	// "selint-disable:<ID>" comment attached by the parser.
	Exceptions []string

	Payload any
}

// InsertNext appends a new sibling after prev, inheriting prev's parent. It
// is the primitive a streaming parser uses to grow a node list in place.
func InsertNext(prev *Node, flavor Flavor, payload any, lineno int) *Node {
	n := &Node{Flavor: flavor, Payload: payload, Lineno: lineno, Parent: prev.Parent}
	n.Prev = prev
	n.Next = prev.Next
	if prev.Next != nil {
		prev.Next.Prev = n
	}
	prev.Next = n
	if prev.Parent != nil && prev.Parent.lastChild == prev {
		prev.Parent.lastChild = n
	}
	return n
}

// InsertChild appends a child to the end of parent's child list. Like the
// reference implementation, this walks to the last child the first time a
// parent is populated without a cached tail, which is O(children); a
// streaming parser pays this once per insertion point, never once per file.
func InsertChild(parent *Node, flavor Flavor, payload any, lineno int) *Node {
	n := &Node{Flavor: flavor, Payload: payload, Lineno: lineno, Parent: parent}
	if parent.FirstChild == nil {
		parent.FirstChild = n
		parent.lastChild = n
		return n
	}
	if parent.lastChild == nil {
		last := parent.FirstChild
		for last.Next != nil {
			last = last.Next
		}
		parent.lastChild = last
	}
	parent.lastChild.Next = n
	n.Prev = parent.lastChild
	parent.lastChild = n
	return n
}

// DFSNext returns the next node in a depth-first, pre-order traversal of the
// tree rooted wherever n's ancestors end, or nil when n is the last node.
func DFSNext(n *Node) *Node {
	if n == nil {
		return nil
	}
	if n.FirstChild != nil {
		return n.FirstChild
	}
	if n.Next != nil {
		return n.Next
	}
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Next != nil {
			return p.Next
		}
	}
	return nil
}

// IsInRequire reports whether n is a descendant of a Require node.
func IsInRequire(n *Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Flavor == Require {
			return true
		}
	}
	return false
}

// GetNameIfInTemplate returns the name of the enclosing template definition,
// or "" if n is not nested inside one.
func GetNameIfInTemplate(n *Node) string {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Flavor == TempDef {
			if pd, ok := p.Payload.(*IfDefPayload); ok {
				return pd.Name
			}
		}
	}
	return ""
}

// IsTemplateCall reports whether n is an interface call whose callee is
// present in the supplied set of known template names.
func IsTemplateCall(n *Node, templates map[string]bool) bool {
	if n.Flavor != IfCall {
		return false
	}
	ic, ok := n.Payload.(*IfCallPayload)
	if !ok {
		return false
	}
	return templates[ic.Name]
}

// HasDisabledCheck reports whether id appears in the node's selint-disable
// exceptions list.
func (n *Node) HasDisabledCheck(id string) bool {
	for _, e := range n.Exceptions {
		if strings.EqualFold(e, id) {
			return true
		}
	}
	return false
}

// FreeSubtree unlinks n from its parent/sibling pointers and lets the
// subtree, which is otherwise unreachable, be reclaimed. Descendants are
// visited post-order only conceptually: Go's GC handles the actual
// reclamation once the subtree is unreachable, but walking post-order here
// preserves the freeing *order* contract so tests can observe it (e.g. via a
// visitor) the same way the reference C implementation does.
func FreeSubtree(n *Node) {
	if n == nil {
		return
	}
	for c := n.FirstChild; c != nil; {
		next := c.Next
		FreeSubtree(c)
		c = next
	}
	n.FirstChild = nil
	n.lastChild = nil
	n.Parent = nil
	n.Prev = nil
	n.Next = nil
	n.Payload = nil
}
