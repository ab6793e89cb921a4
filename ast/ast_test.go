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

package ast_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/selint-go/selint/ast"
)

func TestAST(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "ast suite")
}

var _ = Describe("InsertChild and DFSNext", func() {
	It("walks a tree depth-first, pre-order", func() {
		root := &ast.Node{Flavor: ast.TEFile}
		a := ast.InsertChild(root, ast.Header, nil, 1)
		b := ast.InsertChild(root, ast.AvRule, nil, 2)
		ast.InsertChild(a, ast.Comment, nil, 1)

		var order []ast.Flavor
		for n := root; n != nil; n = ast.DFSNext(n) {
			order = append(order, n.Flavor)
		}

		Expect(order).To(Equal([]ast.Flavor{ast.TEFile, ast.Header, ast.Comment, ast.AvRule}))
		Expect(b.Prev).To(Equal(a))
	})

	It("caches the last child across repeated inserts", func() {
		root := &ast.Node{Flavor: ast.TEFile}
		first := ast.InsertChild(root, ast.Header, nil, 1)
		second := ast.InsertChild(root, ast.AvRule, nil, 2)
		third := ast.InsertChild(root, ast.Semicolon, nil, 3)

		Expect(first.Next).To(Equal(second))
		Expect(second.Next).To(Equal(third))
		Expect(third.Prev).To(Equal(second))
	})
})

var _ = Describe("InsertNext", func() {
	It("appends a sibling inheriting the parent and fixes up the tail", func() {
		parent := &ast.Node{Flavor: ast.TEFile}
		first := ast.InsertChild(parent, ast.Header, nil, 1)
		second := ast.InsertNext(first, ast.AvRule, nil, 2)

		Expect(second.Parent).To(Equal(parent))
		Expect(first.Next).To(Equal(second))

		third := ast.InsertNext(second, ast.Semicolon, nil, 3)
		Expect(ast.DFSNext(parent)).To(Equal(first))
		Expect(ast.DFSNext(third)).To(BeNil())
	})
})

var _ = Describe("IsInRequire", func() {
	It("reports true only for descendants of a Require node", func() {
		root := &ast.Node{Flavor: ast.TEFile}
		req := ast.InsertChild(root, ast.Require, nil, 1)
		decl := ast.InsertChild(req, ast.Decl, &ast.DeclPayload{Name: "foo_t", Kind: ast.DeclType}, 2)
		outside := ast.InsertChild(root, ast.AvRule, nil, 3)

		Expect(ast.IsInRequire(decl)).To(BeTrue())
		Expect(ast.IsInRequire(outside)).To(BeFalse())
	})
})

var _ = Describe("HasDisabledCheck", func() {
	It("matches case-insensitively against Exceptions", func() {
		n := &ast.Node{Exceptions: []string{"w-001", "S-003"}}
		Expect(n.HasDisabledCheck("W-001")).To(BeTrue())
		Expect(n.HasDisabledCheck("S-003")).To(BeTrue())
		Expect(n.HasDisabledCheck("E-009")).To(BeFalse())
	})
})

var _ = Describe("GetNameIfInTemplate", func() {
	It("finds the enclosing template definition's name", func() {
		root := &ast.Node{Flavor: ast.IfFile}
		tmpl := ast.InsertChild(root, ast.TempDef, &ast.IfDefPayload{Name: "foo_template"}, 1)
		call := ast.InsertChild(tmpl, ast.IfCall, &ast.IfCallPayload{Name: "bar_if"}, 2)
		outside := ast.InsertChild(root, ast.IfCall, &ast.IfCallPayload{Name: "baz_if"}, 3)

		Expect(ast.GetNameIfInTemplate(call)).To(Equal("foo_template"))
		Expect(ast.GetNameIfInTemplate(outside)).To(Equal(""))
	})
})

var _ = Describe("IsTemplateCall", func() {
	It("checks the callee against the known template set", func() {
		call := &ast.Node{Flavor: ast.IfCall, Payload: &ast.IfCallPayload{Name: "foo_template"}}
		templates := map[string]bool{"foo_template": true}

		Expect(ast.IsTemplateCall(call, templates)).To(BeTrue())
		Expect(ast.IsTemplateCall(call, map[string]bool{})).To(BeFalse())

		notACall := &ast.Node{Flavor: ast.AvRule}
		Expect(ast.IsTemplateCall(notACall, templates)).To(BeFalse())
	})
})

var _ = Describe("FreeSubtree", func() {
	It("unlinks a node from its parent and clears its own links", func() {
		root := &ast.Node{Flavor: ast.TEFile}
		a := ast.InsertChild(root, ast.Header, nil, 1)
		child := ast.InsertChild(a, ast.Comment, nil, 1)

		ast.FreeSubtree(a)

		Expect(a.FirstChild).To(BeNil())
		Expect(a.Parent).To(BeNil())
		Expect(child.Parent).To(BeNil())
	})
})
