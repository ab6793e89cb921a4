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
	"github.com/selint-go/selint/loader"
	"github.com/selint-go/selint/report"
	"github.com/selint-go/selint/symtab"
)

// checkRequireBlockInTE is S-001, grounded on te_checks.c's
// check_require_block: a require block in a .te file that names anything
// besides classes/permissions should be an interface call instead.
func checkRequireBlockInTE(ctx *Context, n *ast.Node) (string, bool) {
	if ctx.Kind != loader.KindTE {
		return "", false
	}
	for c := n.FirstChild; c != nil; c = c.Next {
		if c.Flavor != ast.Decl {
			continue
		}
		d := c.Payload.(*ast.DeclPayload)
		if d.Kind != ast.DeclClass && d.Kind != ast.DeclPermission {
			return "Require block used in te file (use an interface call instead)", true
		}
	}
	return "", false
}

// checkFCTypeModuleMismatch is S-002, grounded on fc_checks.c's
// check_file_context_types_in_mod.
func checkFCTypeModuleMismatch(ctx *Context, n *ast.Node) (string, bool) {
	p := n.Payload.(*ast.FCEntryPayload)
	if !p.HasContext || p.Context == nil {
		return "", false
	}
	if ctx.Config.SkipCheckingGeneratedFCs {
		lower := strings.ToLower(ctx.Path)
		if strings.HasSuffix(lower, "base.fc") || strings.HasSuffix(lower, "all_mods.fc") || strings.HasSuffix(lower, ".mod.fc") {
			return "", false
		}
	}
	mod, ok := ctx.Tables.LookupDecl(p.Context.Type, ast.DeclType)
	if !ok || mod == ctx.Module {
		return "", false
	}
	return fmt.Sprintf("Type %s is declared in module %s, but used in file context here.", p.Context.Type, mod), true
}

// checkGenContextNoRange is S-007, grounded on fc_checks.c's
// check_gen_context_no_range: a gen_context() file-context label with no
// mls range.
func checkGenContextNoRange(_ *Context, n *ast.Node) (string, bool) {
	p := n.Payload.(*ast.FCEntryPayload)
	if !p.HasContext || p.Context == nil {
		return "", false
	}
	if p.Context.HasGenContext && p.Context.Range == "" {
		return "No mls levels specified in gen_context", true
	}
	return "", false
}

func checkUselessSemicolon(_ *Context, _ *ast.Node) (string, bool) {
	return "Unnecessary semicolon", true
}

// checkIfCallsTemplate is S-004, grounded on if_checks.c's
// check_if_calls_template: an interface that calls a template (instead of a
// plain interface) usually means the interface should itself be a
// template.
func checkIfCallsTemplate(ctx *Context, n *ast.Node) (string, bool) {
	if ctx.Kind != loader.KindIf {
		return "", false
	}
	p := n.Payload.(*ast.IfCallPayload)
	parent := n.Parent
	for parent != nil && parent.Flavor != ast.InterfaceDef && parent.Flavor != ast.TempDef {
		parent = parent.Parent
	}
	if parent == nil || parent.Flavor != ast.InterfaceDef {
		return "", false
	}
	trait, ok := ctx.Tables.InterfaceTraitOf(p.Name)
	if !ok || trait.Kind != symtab.TraitTemplate {
		return "", false
	}
	pd := parent.Payload.(*ast.IfDefPayload)
	return fmt.Sprintf("interface %s calls template %s", pd.Name, p.Name), true
}

// checkDeclInInterface is S-005, grounded on if_checks.c's
// check_decl_in_if.
func checkDeclInInterface(ctx *Context, n *ast.Node) (string, bool) {
	if ctx.Kind != loader.KindIf {
		return "", false
	}
	parent := n.Parent
	for parent != nil && parent.Flavor != ast.InterfaceDef && parent.Flavor != ast.TempDef {
		if parent.Flavor == ast.Require || parent.Flavor == ast.GenReq {
			return "", false
		}
		parent = parent.Parent
	}
	if parent == nil || parent.Flavor != ast.InterfaceDef {
		return "", false
	}
	d := n.Payload.(*ast.DeclPayload)
	return fmt.Sprintf("Declaration of %s in interface", d.Name), true
}

func checkBareModuleStatement(_ *Context, n *ast.Node) (string, bool) {
	p := n.Payload.(*ast.HeaderPayload)
	if !p.IsMacro {
		return "Bare module statement (use `policy_module()` instead)", true
	}
	return "", false
}

func checkUnquotedGenRequire(_ *Context, n *ast.Node) (string, bool) {
	p := n.Payload.(*ast.GenReqPayload)
	if p.Unquoted {
		return "Gen require block unquoted", true
	}
	return "", false
}

var classSuffixAliases = map[string]string{"chr_file": "term", "process": "signal"}

func endsWithSuffixPerms(perm, class string) bool {
	return strings.HasSuffix(perm, class+"_perms")
}

func endsWithAllSuffixPerms(perm string, classes []string) bool {
	for _, c := range classes {
		if endsWithSuffixPerms(perm, c) {
			continue
		}
		if alias, ok := classSuffixAliases[c]; ok && endsWithSuffixPerms(perm, alias) {
			continue
		}
		return false
	}
	return true
}

func allHavePrefix(values []string, prefix string) bool {
	for _, v := range values {
		if !strings.HasPrefix(v, prefix) {
			return false
		}
	}
	return true
}

func allHaveSuffix(values []string, suffix string) bool {
	for _, v := range values {
		if !strings.HasSuffix(v, suffix) {
			return false
		}
	}
	return true
}

func containsString(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}

func classLabel(classes []string) string {
	if len(classes) > 1 {
		return "(multi class av rule)"
	}
	return classes[0]
}

// checkPermMacroClassMismatch is S-009, grounded on te_checks.c's
// check_perm_macro_class_mismatch.
func checkPermMacroClassMismatch(_ *Context, n *ast.Node) (string, bool) {
	p := n.Payload.(*ast.AVRulePayload)
	classes := p.Classes
	if len(classes) == 0 || strings.HasSuffix(classes[0], "_class_set") {
		return "", false
	}
	isFile := containsString(classes, "file")
	isNetlinkSocket := allHavePrefix(classes, "netlink_")
	isSocket := allHaveSuffix(classes, "_socket")

	fileSuffixClasses := []string{"lnk_file", "chr_file", "blk_file", "sock_file", "fifo_file"}

	for _, perm := range p.Permissions {
		if !strings.HasSuffix(perm, "_perms") {
			continue
		}
		if endsWithAllSuffixPerms(perm, classes) {
			if isFile {
				for _, fc := range fileSuffixClasses {
					if endsWithSuffixPerms(perm, fc) {
						return fmt.Sprintf("Permission macro %s does not match class %s", perm, classLabel(classes)), true
					}
				}
			}
			continue
		}
		if isNetlinkSocket && strings.HasSuffix(perm, "_socket_perms") {
			continue
		}
		if isSocket && !isNetlinkSocket && strings.HasSuffix(perm, "_socket_perms") && !strings.HasSuffix(perm, "netlink_socket_perms") {
			continue
		}
		return fmt.Sprintf("Permission macro %s does not match class %s", perm, classLabel(classes)), true
	}
	return "", false
}

// checkPermMacroAvailable is S-010, grounded on te_checks.c's
// check_perm_macro_available, delegating to the permmacro catalog built
// from this load's permission-macro table.
func checkPermMacroAvailable(ctx *Context, n *ast.Node) (string, bool) {
	p := n.Payload.(*ast.AVRulePayload)
	if p.Flavor != ast.AVAllow || ctx.Catalog == nil {
		return "", false
	}
	if len(p.Classes) != 1 || strings.HasSuffix(p.Classes[0], "_class_set") {
		return "", false
	}
	msg := ctx.Catalog.Suggest(p.Classes[0], p.Permissions)
	if msg == "" {
		return "", false
	}
	return msg, true
}

func registerSChecks(r *Registry) {
	r.Register(ast.Require, "S-001", report.Style, checkRequireBlockInTE)
	r.Register(ast.FcEntry, "S-002", report.Style, checkFCTypeModuleMismatch)
	r.Register(ast.FcEntry, "S-007", report.Style, checkGenContextNoRange)
	r.Register(ast.Semicolon, "S-003", report.Style, checkUselessSemicolon)
	r.Register(ast.IfCall, "S-004", report.Style, checkIfCallsTemplate)
	r.Register(ast.Decl, "S-005", report.Style, checkDeclInInterface)
	r.Register(ast.Header, "S-006", report.Style, checkBareModuleStatement)
	r.Register(ast.GenReq, "S-008", report.Style, checkUnquotedGenRequire)
	r.Register(ast.AvRule, "S-009", report.Style, checkPermMacroClassMismatch)
	r.Register(ast.AvRule, "S-010", report.Style, checkPermMacroAvailable)
}
