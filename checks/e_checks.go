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
	"unicode"

	"github.com/selint-go/selint/ast"
	"github.com/selint-go/selint/loader"
	"github.com/selint-go/selint/report"
)

// checkFCErrorNode is E-002, grounded on fc_checks.c's
// check_file_context_error_nodes: an Error node encountered while parsing
// an fc file is always a bad-format finding, distinct from the stray-word
// Error nodes te/if parsing produces (E-010).
func checkFCErrorNode(ctx *Context, n *ast.Node) (string, bool) {
	if ctx.Kind != loader.KindFc {
		return "", false
	}
	if _, isStrayWord := n.Payload.(*ast.StrayWordPayload); isStrayWord {
		return "", false
	}
	return "Bad file context format", true
}

// checkStrayWord is E-010, grounded on te_checks.c's check_stray_word: a
// bare token that didn't match any recognized statement, usually an
// unexpanded or unknown m4 macro.
func checkStrayWord(ctx *Context, n *ast.Node) (string, bool) {
	p, ok := n.Payload.(*ast.StrayWordPayload)
	if !ok {
		return "", false
	}
	if ctx.Config != nil {
		for _, custom := range ctx.Config.CustomTESimpleMacros {
			if custom == p.Word {
				return "", false
			}
		}
	}
	return fmt.Sprintf("Found stray word %s. If it is a simple m4 macro please add an selint-disable comment or ignore in the SELint configuration file.", p.Word), true
}

func checkFCUser(_ *Context, n *ast.Node) (string, bool) {
	p := n.Payload.(*ast.FCEntryPayload)
	if !p.HasContext || p.Context == nil {
		return "", false
	}
	return fmt.Sprintf("Nonexistent user (%s) listed in fc_entry", p.Context.User), true
}

func checkFCRole(_ *Context, n *ast.Node) (string, bool) {
	p := n.Payload.(*ast.FCEntryPayload)
	if !p.HasContext || p.Context == nil {
		return "", false
	}
	return fmt.Sprintf("Nonexistent role (%s) listed in fc_entry", p.Context.Role), true
}

func checkFCTypeExists(ctx *Context, n *ast.Node) (string, bool) {
	p := n.Payload.(*ast.FCEntryPayload)
	if !p.HasContext || p.Context == nil {
		return "", false
	}
	if _, ok := ctx.Tables.LookupDecl(p.Context.Type, ast.DeclType); ok {
		return "", false
	}
	return fmt.Sprintf("Nonexistent type (%s) listed in fc_entry", p.Context.Type), true
}

// These three checks (E-003/E-004/E-005) are grounded on fc_checks.c's
// check_file_context_users/_roles/_types_exist, but guarded here by an
// existence lookup before firing: the reference implementation relies on
// the user/role lookup itself returning NULL on absence, which Go's map
// lookup makes explicit rather than implicit.
func registerFCExistenceWrappers(r *Registry) {
	r.Register(ast.Error, "E-002", report.Error, checkFCErrorNode)
	r.Register(ast.Error, "E-010", report.Error, checkStrayWord)
	r.Register(ast.FcEntry, "E-003", report.Error, func(ctx *Context, n *ast.Node) (string, bool) {
		p := n.Payload.(*ast.FCEntryPayload)
		if !p.HasContext || p.Context == nil {
			return "", false
		}
		if _, ok := ctx.Tables.LookupDecl(p.Context.User, ast.DeclUser); ok {
			return "", false
		}
		return checkFCUser(ctx, n)
	})
	r.Register(ast.FcEntry, "E-004", report.Error, func(ctx *Context, n *ast.Node) (string, bool) {
		p := n.Payload.(*ast.FCEntryPayload)
		if !p.HasContext || p.Context == nil {
			return "", false
		}
		if _, ok := ctx.Tables.LookupDecl(p.Context.Role, ast.DeclRole); ok {
			return "", false
		}
		return checkFCRole(ctx, n)
	})
	r.Register(ast.FcEntry, "E-005", report.Error, checkFCTypeExists)
}

func checkDeclIfClash(ctx *Context, n *ast.Node) (string, bool) {
	d := n.Payload.(*ast.DeclPayload)
	if _, ok := ctx.Tables.ModuleOfInterface(d.Name); ok {
		return fmt.Sprintf("Declaration with name %s clashes with same named interface", d.Name), true
	}
	return "", false
}

func hasAllPermsPrefix(perm string) bool {
	return strings.HasPrefix(perm, "all_") && strings.HasSuffix(perm, "_perms")
}

// checkUnknownPermission is E-007, grounded on te_checks.c's
// check_unknown_permission.
func checkUnknownPermission(ctx *Context, n *ast.Node) (string, bool) {
	p := n.Payload.(*ast.AVRulePayload)
	for _, perm := range p.Permissions {
		if perm == "*" || perm == "~" || hasAllPermsPrefix(perm) {
			continue
		}
		if _, ok := ctx.Tables.LookupDecl(perm, ast.DeclPermission); ok {
			continue
		}
		if _, ok := ctx.Tables.PermMacroOf(perm); ok {
			continue
		}
		return fmt.Sprintf("Unknown permission %s used", perm), true
	}
	return "", false
}

// checkUnknownClass is E-008, grounded on te_checks.c's
// check_unknown_class.
func checkUnknownClass(ctx *Context, n *ast.Node) (string, bool) {
	var classes []string
	switch n.Flavor {
	case ast.AvRule:
		classes = n.Payload.(*ast.AVRulePayload).Classes
	case ast.RtRule:
		classes = n.Payload.(*ast.RTRulePayload).Classes
	case ast.TtRule:
		classes = n.Payload.(*ast.TTRulePayload).Classes
	default:
		return "", false
	}
	for _, c := range classes {
		if len(c) >= 2 && c[0] == '$' && unicode.IsDigit(rune(c[1])) {
			continue
		}
		if strings.HasSuffix(c, "_class_set") {
			continue
		}
		if _, ok := ctx.Tables.LookupDecl(c, ast.DeclClass); ok {
			continue
		}
		return fmt.Sprintf("Unknown class %s used", c), true
	}
	return "", false
}

// checkEmptyBlock is E-009, grounded on te_checks.c's check_empty_block:
// fires on any block-container node whose children are all
// start-block/comment/semicolon markers.
func checkEmptyBlock(_ *Context, n *ast.Node) (string, bool) {
	for c := n.FirstChild; c != nil; c = c.Next {
		if c.Flavor == ast.StartBlock || c.Flavor == ast.Comment || c.Flavor == ast.Semicolon {
			continue
		}
		return "", false
	}
	return "Empty block found", true
}

func registerEChecks(r *Registry) {
	registerFCExistenceWrappers(r)
	r.Register(ast.Decl, "E-006", report.Error, checkDeclIfClash)
	r.Register(ast.AvRule, "E-007", report.Error, checkUnknownPermission)
	for _, flavor := range []ast.Flavor{ast.AvRule, ast.RtRule, ast.TtRule} {
		r.Register(flavor, "E-008", report.Error, checkUnknownClass)
	}
	for _, flavor := range []ast.Flavor{ast.OptionalPolicy, ast.OptionalElse, ast.BooleanPolicy, ast.TunablePolicy, ast.Ifdef, ast.InterfaceDef, ast.TempDef} {
		r.Register(flavor, "E-009", report.Error, checkEmptyBlock)
	}
}
