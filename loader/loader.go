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

// Package loader orchestrates turning a directory of reference-policy
// source into a populated symtab.Tables, per spec.md §4.D. Parsing itself
// (grammar/lexer) is an external collaborator supplied through the Parser
// interface; loader is responsible for the fixed pipeline around it:
// classify each file by extension, parse, populate the declaration and
// interface symbol tables, mark transform/filetrans/role interfaces, load
// permission macros, and finally run interface-parameter inference.
package loader

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/selint-go/selint/ast"
	"github.com/selint-go/selint/infer"
	"github.com/selint-go/selint/symtab"
)

// FileKind is the policy source kind a file path is classified into by
// extension.
type FileKind int

const (
	KindUnknown FileKind = iota
	KindTE
	KindIf
	KindFc
	KindSpt
)

// ClassifyFile returns the FileKind implied by path's extension.
func ClassifyFile(path string) FileKind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".te":
		return KindTE
	case ".if":
		return KindIf
	case ".fc":
		return KindFc
	case ".spt":
		return KindSpt
	default:
		return KindUnknown
	}
}

// ModuleNameFromPath derives a module name from a policy source file's base
// name, stripping its extension, matching the reference-policy convention
// that a module's .te/.if/.fc files share its name.
func ModuleNameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Parser turns the raw text of one policy source file into an AST, per
// spec.md §1: grammar and lexing remain an external collaborator loader
// depends on but does not implement.
type Parser interface {
	Parse(ctx context.Context, kind FileKind, path string, contents []byte) (*ast.Node, error)
}

// SourceFile is one file discovered on disk, ready to be parsed.
type SourceFile struct {
	Path     string
	Kind     FileKind
	Module   string
	Layer    string // containing directory name, one level up from the file
	Contents []byte
}

// LoadResult is everything the loader produces for a module: its parsed
// file heads indexed by kind, and (for .if files) the interface traits the
// inference passes need.
type LoadResult struct {
	Tables  *symtab.Tables
	TEFiles map[string]*ast.Node // module name -> te-file root
	IfFiles map[string]*ast.Node // module name -> if-file root
	FcFiles map[string]*ast.Node // module name -> fc-file root
}

// Load runs the full pipeline described in spec.md §4.D over the given
// source files: parse each one, populate declarations/modules/interfaces,
// mark transform/filetrans/role interfaces, load permission macros from any
// parsed obj_perm_sets.spt, and run two-pass interface inference.
func Load(ctx context.Context, parser Parser, files []SourceFile) (*LoadResult, error) {
	tables := symtab.New()
	result := &LoadResult{Tables: tables, TEFiles: map[string]*ast.Node{}, IfFiles: map[string]*ast.Node{}, FcFiles: map[string]*ast.Node{}}

	for _, f := range files {
		head, err := parser.Parse(ctx, f.Kind, f.Path, f.Contents)
		if err != nil {
			return nil, fmt.Errorf("loader: parsing %s: %w", f.Path, err)
		}
		if head == nil {
			continue
		}

		if f.Layer != "" {
			tables.InsertModLayer(f.Module, f.Layer)
		}

		switch f.Kind {
		case KindTE:
			result.TEFiles[f.Module] = head
			populateDeclarations(tables, f.Module, head)
		case KindIf:
			result.IfFiles[f.Module] = head
			populateInterfaces(tables, f.Module, head)
		case KindFc:
			result.FcFiles[f.Module] = head
		case KindSpt:
			populatePermMacros(tables, head)
		}
	}

	var ifHeads []*ast.Node
	for _, head := range result.IfFiles {
		ifHeads = append(ifHeads, head.FirstChild)
	}
	if err := infer.InferAll(tables, ifHeads); err != nil {
		return nil, fmt.Errorf("loader: %w", err)
	}

	return result, nil
}

// populateDeclarations records the (name, kind) of every Decl node outside
// a require block, at any depth, as owned by module, matching spec.md §4.C's first-writer-wins symbol table.
func populateDeclarations(tables *symtab.Tables, module string, head *ast.Node) {
	tables.InsertModule(module, moduleStatusGuess(module))
	for n := head.FirstChild; n != nil; n = ast.DFSNext(n) {
		if n.Flavor != ast.Decl || ast.IsInRequire(n) {
			continue
		}
		p := n.Payload.(*ast.DeclPayload)
		tables.InsertDecl(p.Name, p.Kind, module)
	}
}

func moduleStatusGuess(string) symtab.ModuleStatus {
	// modules.conf is not read anywhere in this module; every module is
	// recorded as base.
	return symtab.ModuleBase
}

// populateInterfaces records every interface/template definition's name as
// owned by module, and heuristically classifies transform/filetrans/role
// interfaces from the shape of calls inside their bodies.
func populateInterfaces(tables *symtab.Tables, module string, head *ast.Node) {
	for n := head.FirstChild; n != nil; n = n.Next {
		if n.Flavor != ast.InterfaceDef && n.Flavor != ast.TempDef {
			continue
		}
		p := n.Payload.(*ast.IfDefPayload)
		tables.InsertInterface(p.Name, module)
		if n.Flavor == ast.TempDef {
			tables.InsertTemplate(p.Name, &symtab.TemplateBody{})
		}
		classifyInterfaceBody(tables, p.Name, n)
	}
}

// classifyInterfaceBody marks an interface as transform/filetrans/role
// according to the patterns its body calls, following refpolicy's own
// convention that these families are expressed through specific bootstrapped
// macros (domtrans_pattern, filetrans_pattern/filetrans_add_pattern, and
// role-granting statements); a call to any interface whose name ends in
// "_filetrans" also marks the caller as filetrans.
func classifyInterfaceBody(tables *symtab.Tables, name string, def *ast.Node) {
	walkSubtree(def, func(n *ast.Node) {
		switch n.Flavor {
		case ast.IfCall:
			p := n.Payload.(*ast.IfCallPayload)
			switch p.Name {
			case "domtrans_pattern", "domain_auto_transition_pattern":
				tables.MarkTransformIf(name)
			case "filetrans_pattern", "filetrans_add_pattern":
				tables.MarkFiletransIf(name)
			default:
				if strings.HasSuffix(p.Name, "_filetrans") {
					tables.MarkFiletransIf(name)
				}
			}
		case ast.RoleAllow, ast.RoleTypes, ast.RtRule:
			tables.MarkRoleIf(name)
		}
	})
}

// walkSubtree visits every descendant of root in pre-order, without
// escaping into root's siblings the way ast.DFSNext does once the subtree
// is exhausted.
func walkSubtree(root *ast.Node, visit func(*ast.Node)) {
	for c := root.FirstChild; c != nil; c = c.Next {
		visit(c)
		walkSubtree(c, visit)
	}
}

// populatePermMacros records every class-specific permission-set macro
// defined in an obj_perm_sets.spt file (parsed as M4SimpleMacro-flavored
// nodes carrying a DeclPayload-style name and a perms list via M4CallPayload
// semantics is out of scope here; the parser surfaces these directly as
// Decl nodes of kind DeclPermission whose Perms field holds the expansion).
func populatePermMacros(tables *symtab.Tables, head *ast.Node) {
	for n := head.FirstChild; n != nil; n = ast.DFSNext(n) {
		if n.Flavor != ast.Decl {
			continue
		}
		p := n.Payload.(*ast.DeclPayload)
		if p.Kind != ast.DeclPermission {
			continue
		}
		tables.InsertPermMacro(p.Name, p.Perms)
	}
}
