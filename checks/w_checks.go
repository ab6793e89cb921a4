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
	"github.com/selint-go/selint/namelist"
	"github.com/selint-go/selint/report"
	"github.com/selint-go/selint/symtab"
)

// hasRequireFor reports whether a require/gen_require block visible from n
// (walking backward through siblings, then out to the parent, repeating)
// names (name, kind), grounded on te_checks.c's has_require helper.
func hasRequireFor(n *ast.Node, name string, kind ast.DeclKind) bool {
	cur := n
	for cur != nil {
		if cur.Flavor == ast.Require || cur.Flavor == ast.GenReq {
			for c := cur.FirstChild; c != nil; c = c.Next {
				if c.Flavor != ast.Decl {
					continue
				}
				d := c.Payload.(*ast.DeclPayload)
				if d.Kind != kind {
					continue
				}
				if d.Name == name {
					return true
				}
				for _, attr := range d.Attributes {
					if attr == name {
						return true
					}
				}
			}
		}
		if cur.Prev != nil {
			cur = cur.Prev
		} else {
			cur = cur.Parent
		}
	}
	return false
}

// dfsNextWithin is ast.DFSNext bounded to root's subtree: it never climbs
// above root, matching the depth-tracked descent if_checks.c's require/use
// checks walk with dfs_next.
func dfsNextWithin(n, root *ast.Node) *ast.Node {
	if n.FirstChild != nil {
		return n.FirstChild
	}
	for cur := n; cur != nil && cur != root; cur = cur.Parent {
		if cur.Next != nil {
			return cur.Next
		}
	}
	return nil
}

// classifyDeclLookup mirrors if_checks.c's look_up_in_decl_map probe order:
// type, then attribute, then role attribute, then role.
func classifyDeclLookup(ctx *Context, name string) (string, bool) {
	for _, c := range []struct {
		kind  ast.DeclKind
		label string
	}{
		{ast.DeclType, "Type"},
		{ast.DeclTypeAttribute, "Attribute"},
		{ast.DeclRoleAttribute, "Role Attribute"},
		{ast.DeclRole, "Role"},
	} {
		if _, ok := ctx.Tables.LookupDecl(name, c.kind); ok {
			return c.label, true
		}
	}
	return "", false
}

// checkNameUsedButNotRequiredInIf is W-002, grounded on if_checks.c's
// check_name_used_but_not_required_in_if: a type/attribute/role referenced
// in an interface or template body that no require/gen_require block
// earlier in the same definition names.
func checkNameUsedButNotRequiredInIf(ctx *Context, n *ast.Node) (string, bool) {
	if ctx.Kind != loader.KindIf {
		return "", false
	}
	names := ast.GetNamesInNode(n)
	if len(names.Entries) == 0 {
		return "", false
	}

	var def *ast.Node
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.Flavor == ast.InterfaceDef || cur.Flavor == ast.TempDef {
			def = cur
			break
		}
	}
	if def == nil {
		return "", false
	}

	required := make(map[string]bool)
	for cur := def.FirstChild; cur != nil && cur != n; cur = dfsNextWithin(cur, def) {
		if cur.Flavor != ast.Require && cur.Flavor != ast.GenReq {
			continue
		}
		for c := cur.FirstChild; c != nil; c = c.Next {
			for _, e := range ast.GetNamesInNode(c).Entries {
				required[e.Name] = true
			}
		}
	}

	entries := names.Entries
	if n.Flavor == ast.Decl {
		// the first name is the newly declared identifier, not a reference
		entries = entries[1:]
	}
	for _, e := range entries {
		if required[e.Name] || e.Name == "system_r" {
			continue
		}
		label, ok := classifyDeclLookup(ctx, e.Name)
		if !ok {
			continue
		}
		return fmt.Sprintf("%s %s is used in interface but not required", label, e.Name), true
	}
	return "", false
}

// checkNameRequiredButNotUsedInIf is W-003, grounded on if_checks.c's
// check_name_required_but_not_used_in_if: a name declared in a require or
// gen_require block that the enclosing interface/template never uses.
func checkNameRequiredButNotUsedInIf(ctx *Context, n *ast.Node) (string, bool) {
	if ctx.Kind != loader.KindIf {
		return "", false
	}
	d := n.Payload.(*ast.DeclPayload)
	var label string
	switch d.Kind {
	case ast.DeclType:
		label = "Type"
	case ast.DeclTypeAttribute:
		label = "Attribute"
	case ast.DeclRoleAttribute:
		label = "Role Attribute"
	case ast.DeclRole:
		label = "Role"
	default:
		return "", false
	}

	var def, reqBlock *ast.Node
	for cur := n; cur != nil; cur = cur.Parent {
		if (cur.Flavor == ast.Require || cur.Flavor == ast.GenReq) && reqBlock == nil {
			reqBlock = cur
		}
		if cur.Flavor == ast.InterfaceDef || cur.Flavor == ast.TempDef {
			def = cur
			break
		}
	}
	if def == nil || reqBlock == nil {
		return "", false
	}
	// interfaces ending in "_stub" gate an optional block and are exempt
	if def.Flavor == ast.InterfaceDef {
		if ifd, ok := def.Payload.(*ast.IfDefPayload); ok && strings.HasSuffix(ifd.Name, "_stub") {
			return "", false
		}
	}

	names := ast.GetNamesInNode(n)
	if len(names.Entries) == 0 {
		return "", false
	}

	used := make(map[string]bool)
	for cur := reqBlock.Next; cur != nil; cur = dfsNextWithin(cur, def) {
		for _, e := range ast.GetNamesInNode(cur).Entries {
			used[e.Name] = true
		}
	}

	for _, e := range names.Entries {
		if !used[e.Name] {
			return fmt.Sprintf("%s %s is listed in require block but not used in interface", label, e.Name), true
		}
	}
	return "", false
}

func namelistFlavorToDeclKind(f namelist.Flavor) (ast.DeclKind, bool) {
	switch f {
	case namelist.Type, namelist.TypeOrAttribute:
		return ast.DeclType, true
	case namelist.TypeAttribute:
		return ast.DeclTypeAttribute, true
	case namelist.RoleAttribute:
		return ast.DeclRoleAttribute, true
	default:
		return 0, false
	}
}

// checkNoExplicitDeclaration is W-001, grounded on te_checks.c's
// check_no_explicit_declaration: using a type/attribute declared in another
// module without a require block or interface call naming it.
func checkNoExplicitDeclaration(ctx *Context, n *ast.Node) (string, bool) {
	if ctx.Kind != loader.KindTE {
		return "", false
	}
	names := ast.GetNamesInNode(n)
	for _, e := range names.Entries {
		kind, ok := namelistFlavorToDeclKind(e.Flavor)
		if !ok {
			continue
		}
		mod, ok := ctx.Tables.LookupDecl(e.Name, kind)
		if !ok && e.Flavor == namelist.TypeOrAttribute {
			kind = ast.DeclTypeAttribute
			mod, ok = ctx.Tables.LookupDecl(e.Name, kind)
		}
		if !ok || mod == ctx.Module {
			continue
		}
		if hasRequireFor(n, e.Name, kind) {
			continue
		}
		flavor := "Type"
		if kind == ast.DeclTypeAttribute {
			flavor = "Attribute"
		} else if kind == ast.DeclRoleAttribute {
			flavor = "Role Attribute"
		}
		return fmt.Sprintf("No explicit declaration for %s %s from module %s.  You should access it via interface call or use a require block.", flavor, e.Name, mod), true
	}
	return "", false
}

// checkFCRegex is W-004, grounded on fc_checks.c's
// check_file_context_regex.
func checkFCRegex(_ *Context, n *ast.Node) (string, bool) {
	p := n.Payload.(*ast.FCEntryPayload)
	if !p.HasContext {
		return "", false
	}
	path := p.Path
	var prev byte
	for i := 0; i < len(path); i++ {
		cur := path[i]
		var next byte
		if i+1 < len(path) {
			next = path[i+1]
		}
		if cur == '[' && prev != '\\' {
			for i < len(path) && (path[i] != ']' || prev == '\\') {
				prev = path[i]
				i++
			}
			if i < len(path) {
				prev = path[i]
			}
			continue
		}
		switch cur {
		case '.':
			if prev != '\\' && next != '*' && next != '+' && next != '?' {
				return fmt.Sprintf("File context path contains a potentially unescaped regex character '%c' at position %d: %s", cur, i+1, path), true
			}
		case '+', '*':
			if prev != '\\' && prev != '.' && prev != ']' && prev != ')' {
				return fmt.Sprintf("File context path contains a potentially unescaped regex character '%c' at position %d: %s", cur, i+1, path), true
			}
		}
		prev = cur
	}
	return "", false
}

// checkIfCallOptional is W-005, grounded on te_checks.c's
// check_module_if_call_in_optional: calling an interface defined in
// another (non-base) module should happen inside optional_policy.
func checkIfCallOptional(ctx *Context, n *ast.Node) (string, bool) {
	p := n.Payload.(*ast.IfCallPayload)
	ifMod, ok := ctx.Tables.ModuleOfInterface(p.Name)
	if !ok || ifMod == ctx.Module {
		return "", false
	}
	modStatus, ok := ctx.Tables.ModuleStatusOf(ifMod)
	if !ok {
		return "", false
	}
	if modStatus == symtab.ModuleBase {
		return "", false
	}
	for parent := n.Parent; parent != nil; parent = parent.Parent {
		if parent.Flavor == ast.OptionalPolicy {
			return "", false
		}
	}
	return fmt.Sprintf("Call to interface %s defined in module %s should be in optional_policy block", p.Name, ifMod), true
}

func checkEmptyIfCallArg(_ *Context, n *ast.Node) (string, bool) {
	p := n.Payload.(*ast.IfCallPayload)
	if len(p.Args) == 0 {
		return fmt.Sprintf("Call to interface %s with empty argument", p.Name), true
	}
	return "", false
}

// checkSpaceIfCallArg is W-007, simplified from if_checks.c's
// check_space_if_call_arg: an interface-call argument with an unquoted
// embedded space, outside of an mls range expression.
func checkSpaceIfCallArg(ctx *Context, n *ast.Node) (string, bool) {
	p := n.Payload.(*ast.IfCallPayload)
	var prev *ast.CallArg
	for i := range p.Args {
		arg := &p.Args[i]
		if arg.HasIncorrectSpace && prev != nil {
			if len(arg.Text) == 0 || arg.Text[0] != '-' || isKnownDeclName(ctx, prev.Text) {
				return fmt.Sprintf("Argument no. %d '%s ...' of call to interface %s contains unquoted space", i, prev.Text, p.Name), true
			}
		}
		prev = arg
	}
	return "", false
}

func isKnownDeclName(ctx *Context, name string) bool {
	for _, k := range []ast.DeclKind{ast.DeclType, ast.DeclTypeAttribute, ast.DeclRole, ast.DeclRoleAttribute, ast.DeclUser} {
		if _, ok := ctx.Tables.LookupDecl(name, k); ok {
			return true
		}
	}
	return false
}

// checkRiskyAllowPerm is W-008, grounded on te_checks.c's
// check_risky_allow_perm.
func checkRiskyAllowPerm(_ *Context, n *ast.Node) (string, bool) {
	p := n.Payload.(*ast.AVRulePayload)
	if p.Flavor != ast.AVAllow {
		return "", false
	}
	for _, perm := range p.Permissions {
		if perm == "*" || perm == "~" {
			return "Allow rule with complement or wildcard permission", true
		}
	}
	return "", false
}

// checkModuleFileNameMismatch is W-009, grounded on te_checks.c's
// check_module_file_name_mismatch.
func checkModuleFileNameMismatch(ctx *Context, n *ast.Node) (string, bool) {
	p := n.Payload.(*ast.HeaderPayload)
	fileName := ctx.Path
	if idx := strings.LastIndexByte(fileName, '/'); idx >= 0 {
		fileName = fileName[idx+1:]
	}
	if ext := strings.LastIndexByte(fileName, '.'); ext >= 0 {
		fileName = fileName[:ext]
	}
	if p.ModuleName != fileName {
		return fmt.Sprintf("Module name %s does not match file name %s", p.ModuleName, fileName), true
	}
	return "", false
}

// checkIfDeclNotOwn is W-011, grounded on if_checks.c's
// check_required_declaration_own: a declaration required in an interface
// should resolve to a definition in its own module.
func checkIfDeclNotOwn(ctx *Context, n *ast.Node) (string, bool) {
	if ctx.Kind != loader.KindIf {
		return "", false
	}
	d := n.Payload.(*ast.DeclPayload)
	if d.Kind == ast.DeclClass || d.Kind == ast.DeclPermission || d.Kind == ast.DeclUser {
		return "", false
	}
	if strings.HasPrefix(d.Name, "$") {
		return "", false
	}
	if !ast.IsInRequire(n) {
		return "", false
	}
	mod, ok := ctx.Tables.LookupDecl(d.Name, d.Kind)
	if !ok {
		return fmt.Sprintf("Definition of declared %s %s not found in any module", declFlavorLabel(d.Kind), d.Name), true
	}
	if mod == ctx.Module {
		return "", false
	}
	if d.Kind == ast.DeclRole && mod == "kernel" {
		return "", false
	}
	return fmt.Sprintf("Definition of declared %s %s not found in own module, but in module %s", declFlavorLabel(d.Kind), d.Name, mod), true
}

func registerWChecks(r *Registry) {
	for _, flavor := range []ast.Flavor{ast.AvRule, ast.XavRule, ast.TtRule, ast.RtRule, ast.TypeAttribute, ast.RoleAttribute} {
		r.Register(flavor, "W-001", report.Warning, checkNoExplicitDeclaration)
	}
	r.Register(ast.FcEntry, "W-004", report.Warning, checkFCRegex)
	r.Register(ast.IfCall, "W-005", report.Warning, checkIfCallOptional)
	r.Register(ast.IfCall, "W-006", report.Warning, checkEmptyIfCallArg)
	r.Register(ast.IfCall, "W-007", report.Warning, checkSpaceIfCallArg)
	r.Register(ast.AvRule, "W-008", report.Warning, checkRiskyAllowPerm)
	r.Register(ast.Header, "W-009", report.Warning, checkModuleFileNameMismatch)
	r.Register(ast.Decl, "W-011", report.Warning, checkIfDeclNotOwn)
	for _, flavor := range []ast.Flavor{
		ast.AvRule, ast.XavRule, ast.TtRule, ast.RtRule, ast.Decl, ast.IfCall,
		ast.RoleAllow, ast.RoleTypes, ast.TypeAttribute, ast.RoleAttribute,
		ast.Alias, ast.TypeAlias, ast.Permissive,
	} {
		r.Register(flavor, "W-002", report.Warning, checkNameUsedButNotRequiredInIf)
	}
	r.Register(ast.Decl, "W-003", report.Warning, checkNameRequiredButNotUsedInIf)
}
