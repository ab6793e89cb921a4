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

// Package symtab implements the process-wide symbol tables of spec.md §4.C:
// the single owned analysis context every other package reads from (and, for
// loader/infer, writes to).
package symtab

import "github.com/selint-go/selint/ast"

// AssumedModule is the sentinel owning-module name for declarations that
// configuration assumes exist rather than observing in source.
const AssumedModule = "__assumed__"

// ModuleStatus is the declared status of a module in modules.conf.
type ModuleStatus int

const (
	ModuleBase ModuleStatus = iota
	ModuleEnabled
	ModuleOff
)

// InterfaceTraitKind distinguishes interface/template/macro entries in the
// interface-traits table.
type InterfaceTraitKind int

const (
	TraitInterface InterfaceTraitKind = iota
	TraitTemplate
	TraitMacro
)

// NMaxParameters is the number of parameter slots tracked per interface.
const NMaxParameters = 10

// InterfaceTrait is the value stored in the InterfaceTraits table.
type InterfaceTrait struct {
	Kind       InterfaceTraitKind
	Inferred   bool
	Parameters [NMaxParameters]ParamFlavor
	Node       *ast.Node
}

// ParamFlavor is the refinement level of one interface parameter slot
// (spec.md §4.E). It lives here, rather than in package infer, because it is
// part of the InterfaceTrait record every package reads from Tables.
type ParamFlavor int

const (
	ParamInitial ParamFlavor = iota
	ParamUnknown
	ParamText
	ParamTypeOrAttribute
	ParamRoleOrAttribute

	// ParamFinalInferred and everything at or above it is a "final" flavor:
	// once reached, a slot is sticky and will not be overwritten.
	ParamFinalInferred
	ParamTypeAttribute
	ParamRole
	ParamRoleAttribute
	ParamClass
	ParamObjectName
)

// ParamType is an alias for ParamFinalInferred: TYPE is the first of the
// final flavors, exactly as in the reference implementation's enum layout.
const ParamType = ParamFinalInferred

// TemplateBody records the declarations and interface calls inside a
// template definition, needed to expand a template call's synthesized
// identifiers.
type TemplateBody struct {
	Declarations []*ast.Node
	IfCalls      []*ast.Node
}

// declKey packs a declaration name and kind into one map key, since a name
// may be declared at most once per kind.
type declKey struct {
	name string
	kind ast.DeclKind
}

// Tables is the single owned analysis context: every symbol table the
// engine populates during load/inference and reads during checks.
type Tables struct {
	declarations map[declKey]string // name+kind -> owning module
	modules      map[string]ModuleStatus
	modLayers    map[string]string
	interfaces   map[string]string // interface name -> defining module
	ifTraits     map[string]*InterfaceTrait
	templates    map[string]*TemplateBody
	permMacros   map[string][]string

	transformIf map[string]bool
	filetransIf map[string]bool
	roleIf      map[string]bool

	closed bool
}

// New creates an empty, ready-to-populate Tables.
func New() *Tables {
	return &Tables{
		declarations: make(map[declKey]string),
		modules:      make(map[string]ModuleStatus),
		modLayers:    make(map[string]string),
		interfaces:   make(map[string]string),
		ifTraits:     make(map[string]*InterfaceTrait),
		templates:    make(map[string]*TemplateBody),
		permMacros:   make(map[string][]string),
		transformIf:  make(map[string]bool),
		filetransIf:  make(map[string]bool),
		roleIf:       make(map[string]bool),
	}
}

// InsertDecl inserts a (name, kind) -> module mapping if absent. First
// writer wins; a later insertion with the same key is silently ignored and
// InsertDecl reports whether it actually inserted.
func (t *Tables) InsertDecl(name string, kind ast.DeclKind, module string) bool {
	k := declKey{name, kind}
	if _, ok := t.declarations[k]; ok {
		return false
	}
	t.declarations[k] = module
	return true
}

// LookupDecl returns the owning module of (name, kind), if declared.
func (t *Tables) LookupDecl(name string, kind ast.DeclKind) (string, bool) {
	m, ok := t.declarations[declKey{name, kind}]
	return m, ok
}

// CountDecls returns the number of declarations recorded (for tests and
// diagnostics; no production check depends on the exact count).
func (t *Tables) CountDecls() int { return len(t.declarations) }

// InsertModule records a module's status; first writer wins.
func (t *Tables) InsertModule(name string, status ModuleStatus) bool {
	if _, ok := t.modules[name]; ok {
		return false
	}
	t.modules[name] = status
	return true
}

// ModuleStatusOf looks up a module's declared status.
func (t *Tables) ModuleStatusOf(name string) (ModuleStatus, bool) {
	s, ok := t.modules[name]
	return s, ok
}

// InsertModLayer records the layer (containing directory name) a module
// lives in; first writer wins.
func (t *Tables) InsertModLayer(module, layer string) bool {
	if _, ok := t.modLayers[module]; ok {
		return false
	}
	t.modLayers[module] = layer
	return true
}

// LayerOf returns the layer a module was loaded from.
func (t *Tables) LayerOf(module string) (string, bool) {
	l, ok := t.modLayers[module]
	return l, ok
}

// InsertInterface records the module defining an interface; first writer
// wins.
func (t *Tables) InsertInterface(name, module string) bool {
	if _, ok := t.interfaces[name]; ok {
		return false
	}
	t.interfaces[name] = module
	return true
}

// ModuleOfInterface returns the module that defines an interface.
func (t *Tables) ModuleOfInterface(name string) (string, bool) {
	m, ok := t.interfaces[name]
	return m, ok
}

// InsertInterfaceTrait sets (or, on duplicate key, discards the incoming
// value for, first-wins) the trait record for an interface/template/macro
// name.
func (t *Tables) InsertInterfaceTrait(name string, trait *InterfaceTrait) bool {
	if _, ok := t.ifTraits[name]; ok {
		return false
	}
	t.ifTraits[name] = trait
	return true
}

// InterfaceTraitOf returns the trait record for a name, and whether it was
// found. Callers needing to mutate Parameters in place should hold onto the
// returned pointer rather than re-inserting.
func (t *Tables) InterfaceTraitOf(name string) (*InterfaceTrait, bool) {
	tr, ok := t.ifTraits[name]
	return tr, ok
}

// AllInterfaceTraits exposes the trait table for iteration (inference passes
// need to walk every not-yet-inferred interface).
func (t *Tables) AllInterfaceTraits() map[string]*InterfaceTrait {
	return t.ifTraits
}

// InsertTemplate records a template's body; first writer wins.
func (t *Tables) InsertTemplate(name string, body *TemplateBody) bool {
	if _, ok := t.templates[name]; ok {
		return false
	}
	t.templates[name] = body
	return true
}

// TemplateOf returns a template's recorded body.
func (t *Tables) TemplateOf(name string) (*TemplateBody, bool) {
	b, ok := t.templates[name]
	return b, ok
}

// InsertPermMacro records a permission macro's expansion; first writer
// wins.
func (t *Tables) InsertPermMacro(name string, perms []string) bool {
	if _, ok := t.permMacros[name]; ok {
		return false
	}
	t.permMacros[name] = perms
	return true
}

// PermMacroOf returns a permission macro's expansion.
func (t *Tables) PermMacroOf(name string) ([]string, bool) {
	p, ok := t.permMacros[name]
	return p, ok
}

// AllPermMacros exposes the permission-macro table for iteration (the
// permission-macro engine builds its catalog from this).
func (t *Tables) AllPermMacros() map[string][]string {
	return t.permMacros
}

// MarkTransformIf/IsTransformIf, MarkFiletransIf/IsFiletransIf, and
// MarkRoleIf/IsRoleIf manage the three boolean interface-flag sets of
// spec.md §4.C.
func (t *Tables) MarkTransformIf(name string) { t.transformIf[name] = true }
func (t *Tables) IsTransformIf(name string) bool { return t.transformIf[name] }
func (t *Tables) MarkFiletransIf(name string)    { t.filetransIf[name] = true }
func (t *Tables) IsFiletransIf(name string) bool { return t.filetransIf[name] }
func (t *Tables) MarkRoleIf(name string)         { t.roleIf[name] = true }
func (t *Tables) IsRoleIf(name string) bool      { return t.roleIf[name] }

// Close performs the single final sweep of spec.md §5: it clears every
// table. A closed Tables reports empty look-ups, matching the logical
// lifecycle the reference implementation enforces with explicit frees (Go's
// GC handles the memory; Close documents and enforces the *protocol*).
func (t *Tables) Close() {
	*t = *New()
	t.closed = true
}

// Closed reports whether Close has been called.
func (t *Tables) Closed() bool { return t.closed }
