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

package ordering_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/selint-go/selint/ast"
	"github.com/selint-go/selint/ordering"
)

func TestOrdering(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Ordering Suite")
}

func avRule(sources, targets []string, lineno int) *ast.Node {
	return &ast.Node{Flavor: ast.AvRule, Lineno: lineno, Payload: &ast.AVRulePayload{
		Sources: sources, Targets: targets, Classes: []string{"file"}, Permissions: []string{"read"},
	}}
}

func decl(name string, kind ast.DeclKind, lineno int) *ast.Node {
	return &ast.Node{Flavor: ast.Decl, Lineno: lineno, Payload: &ast.DeclPayload{Kind: kind, Name: name}}
}

func chain(nodes ...*ast.Node) *ast.Node {
	file := &ast.Node{Flavor: ast.TEFile}
	file.FirstChild = nodes[0]
	for i, n := range nodes {
		if i > 0 {
			n.Prev = nodes[i-1]
			nodes[i-1].Next = n
		}
	}
	return file
}

var _ = Describe("GetSection", func() {
	It("assigns a self av-rule to the declarations-unrelated source-type section", func() {
		n := avRule([]string{"foo_t"}, []string{"self"}, 10)
		Expect(ordering.GetSection(n)).To(Equal("foo_t"))
	})

	It("treats neverallow rules as non-ordered", func() {
		n := &ast.Node{Flavor: ast.AvRule, Payload: &ast.AVRulePayload{
			Flavor: ast.AVNeverAllow, Sources: []string{"foo_t"}, Targets: []string{"bar_t"},
		}}
		Expect(ordering.GetSection(n)).To(Equal("_non_ordered"))
	})

	It("treats a top-level declaration as _declarations", func() {
		n := decl("foo_t", ast.DeclType, 3)
		Expect(ordering.GetSection(n)).To(Equal("_declarations"))
	})

	It("treats a declaration inside a require block as non-ordered", func() {
		req := &ast.Node{Flavor: ast.Require}
		n := decl("foo_t", ast.DeclType, 3)
		n.Parent = req
		Expect(ordering.GetSection(n)).To(Equal("_non_ordered"))
	})
})

var _ = Describe("CalculateLIS", func() {
	It("marks an already-ordered declaration sequence entirely in order", func() {
		n1 := decl("a_t", ast.DeclType, 1)
		n2 := decl("b_t", ast.DeclType, 2)
		n3 := decl("c_t", ast.DeclType, 3)
		head := chain(n1, n2, n3)

		m := ordering.PrepareMetadata("test_mod", head)
		ordering.CalculateLIS(head, m, ordering.CompareFunc(m, ordering.Ref))

		Expect(ordering.Misordered(m)).To(BeEmpty())
	})

	It("flags a single out-of-place rule as misordered", func() {
		n1 := avRule([]string{"foo_t"}, []string{"self"}, 1)
		n2 := avRule([]string{"zzz_t"}, []string{"self"}, 2)
		n3 := avRule([]string{"foo_t"}, []string{"self"}, 3)
		head := chain(n1, n2, n3)

		m := ordering.PrepareMetadata("test_mod", head)
		ordering.CalculateLIS(head, m, func(a, b *ast.Node) ordering.Reason {
			sa, sb := ordering.GetSection(a), ordering.GetSection(b)
			if sa == sb {
				return ordering.Equal
			}
			if sa < sb {
				return ordering.Equal
			}
			return -ordering.ByAlphabetical
		})

		Expect(len(ordering.Misordered(m))).To(BeNumerically(">=", 1))
	})
})

var _ = Describe("LocalSubsection.String", func() {
	It("renders a readable label", func() {
		Expect(ordering.LSSSelf.String()).To(Equal("self"))
		Expect(ordering.LSSUnknown.String()).To(Equal("unknown subsection"))
	})
})
