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

package checks

import (
	"fmt"
	"strings"

	"github.com/selint-go/selint/ast"
	"github.com/selint-go/selint/config"
	"github.com/selint-go/selint/ordering"
	"github.com/selint-go/selint/report"
	"github.com/selint-go/selint/symtab"
)

// CheckOrdering is C-001: the refpolicy statement-ordering check. Unlike
// every other check, it needs the whole file's longest-increasing-
// subsequence metadata at once rather than one node at a time, so it is
// run directly by the caller over a full .te file tree instead of being
// registered into a Registry, mirroring the static order_data carried
// between calls to check_te_order in the reference implementation.
func CheckOrdering(cfg *config.Config, tables *symtab.Tables, path, module string, head *ast.Node) []report.Finding {
	ordering.SetTables(tables)
	meta := ordering.PrepareMetadata(module, head)
	comp := ordering.CompareFunc(meta, cfg.Strictness())
	ordering.CalculateLIS(head, meta, comp)

	var findings []report.Finding
	for _, n := range ordering.Misordered(meta) {
		if n.HasDisabledCheck("C-001") {
			continue
		}
		idx := ordering.IndexOf(meta, n)
		if idx < 0 {
			continue
		}
		findings = append(findings, report.Finding{
			Path:     path,
			Line:     n.Lineno,
			Severity: report.Convention,
			ID:       "C-001",
			Message:  ordering.ExplainReason(meta, idx, cfg.Strictness()),
		})
	}
	return findings
}

func checkInterfaceHasComment(_ *Context, n *ast.Node) (string, bool) {
	name := ""
	if pd, ok := n.Payload.(*ast.IfDefPayload); ok {
		name = pd.Name
	}
	if n.Prev == nil || n.Prev.Flavor != ast.Comment {
		return fmt.Sprintf("No comment before interface definition for %s", name), true
	}
	return "", false
}

func checkUnorderedPerms(_ *Context, n *ast.Node) (string, bool) {
	var perms []string
	var flavorName string
	switch n.Flavor {
	case ast.AvRule:
		flavorName = "av rule"
		perms = n.Payload.(*ast.AVRulePayload).Permissions
	case ast.XavRule:
		flavorName = "xav rule"
		perms = n.Payload.(*ast.XAVRulePayload).Permissions
	case ast.Decl:
		d := n.Payload.(*ast.DeclPayload)
		if d.Kind != ast.DeclClass {
			return "", false
		}
		flavorName = "class declaration"
		perms = d.Perms
	default:
		return "", false
	}

	var prev string
	for i, cur := range perms {
		if i > 0 && prev != "~" && cur != "-" {
			switch {
			case prev > cur:
				return fmt.Sprintf("Permissions in %s not ordered (%s before %s)", flavorName, prev, cur), true
			case prev == cur:
				return fmt.Sprintf("Permissions in %s repeated (%s)", flavorName, cur), true
			}
		}
		prev = cur
	}
	return "", false
}

func declFlavorLabel(k ast.DeclKind) string {
	switch k {
	case ast.DeclType:
		return "type"
	case ast.DeclTypeAttribute:
		return "attribute"
	case ast.DeclRole:
		return "role"
	case ast.DeclRoleAttribute:
		return "attribute_role"
	case ast.DeclUser:
		return "user"
	case ast.DeclClass:
		return "class"
	case ast.DeclPermission:
		return "perm"
	case ast.DeclBool:
		return "bool"
	default:
		return "unknown"
	}
}

// checkUnorderedRequireDecl is C-006, grounded on if_checks.c's
// compare_declaration_flavors/check_unordered_declaration_in_require: within
// one require block, declarations should appear in the configured
// order_requires flavor order, and alphabetically (ignoring a trailing _t)
// within the same flavor when ordering_requires_same_flavor is set.
func checkUnorderedRequireDecl(ctx *Context, n *ast.Node) (string, bool) {
	order := ctx.Config.DeclOrder()
	rank := func(k ast.DeclKind) int {
		for i, d := range order {
			if d == k {
				return i
			}
		}
		return len(order)
	}

	var prev *ast.DeclPayload
	for c := n.FirstChild; c != nil; c = c.Next {
		if c.Flavor != ast.Decl {
			continue
		}
		d := c.Payload.(*ast.DeclPayload)
		if prev != nil {
			pr, cr := rank(prev.Kind), rank(d.Kind)
			if pr != cr {
				if pr > cr {
					return fmt.Sprintf("Require block statements not ordered (%s %s before %s %s)",
						declFlavorLabel(prev.Kind), prev.Name, declFlavorLabel(d.Kind), d.Name), true
				}
			} else if ctx.Config.OrderingRequiresSameFlavor {
				a := strings.TrimSuffix(prev.Name, "_t")
				b := strings.TrimSuffix(d.Name, "_t")
				switch {
				case a > b:
					return fmt.Sprintf("Require block statements not ordered (%s %s before %s %s)",
						declFlavorLabel(prev.Kind), prev.Name, declFlavorLabel(d.Kind), d.Name), true
				case a == b && prev.Name == d.Name:
					return fmt.Sprintf("Repeated declaration in require block (%s %s)", declFlavorLabel(d.Kind), d.Name), true
				}
			}
		}
		prev = d
	}
	return "", false
}

// checkNoSelf is C-007, grounded on te_checks.c's check_no_self: an av rule
// whose single source and target name the same type should use "self"
// instead.
func checkNoSelf(ctx *Context, n *ast.Node) (string, bool) {
	p := n.Payload.(*ast.AVRulePayload)
	if len(p.Sources) != 1 || len(p.Targets) != 1 {
		return "", false
	}
	if p.Targets[0] == "self" || p.Sources[0] != p.Targets[0] {
		return "", false
	}
	src := p.Sources[0]
	if strings.HasPrefix(src, "$") {
		if !strings.HasSuffix(src, "_t") {
			return "", false
		}
	} else if _, ok := ctx.Tables.LookupDecl(src, ast.DeclType); !ok {
		return "", false
	}
	return "Recommend use of self keyword instead of redundant type", true
}

func checkWideDirFC(_ *Context, n *ast.Node) (string, bool) {
	p := n.Payload.(*ast.FCEntryPayload)
	if !p.HasContext {
		return "", false
	}
	if strings.HasSuffix(p.Path, "(/.*)?") {
		return fmt.Sprintf("File context path %s ends on '(/.*)?', which might match unwanted non-directory entries.", p.Path), true
	}
	return "", false
}

func registerCChecks(r *Registry) {
	r.Register(ast.InterfaceDef, "C-004", report.Convention, checkInterfaceHasComment)
	r.Register(ast.TempDef, "C-004", report.Convention, checkInterfaceHasComment)
	r.Register(ast.AvRule, "C-005", report.Convention, checkUnorderedPerms)
	r.Register(ast.XavRule, "C-005", report.Convention, checkUnorderedPerms)
	r.Register(ast.Decl, "C-005", report.Convention, checkUnorderedPerms)
	r.Register(ast.Require, "C-006", report.Convention, checkUnorderedRequireDecl)
	r.Register(ast.GenReq, "C-006", report.Convention, checkUnorderedRequireDecl)
	r.Register(ast.AvRule, "C-007", report.Convention, checkNoSelf)
	r.Register(ast.FcEntry, "C-002", report.Convention, checkWideDirFC)
}
