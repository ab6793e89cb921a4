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

// Package infer implements the two-pass interface-parameter inference
// pipeline of spec.md §4.E: propagating parameter flavors through an
// interface's body and through calls to other interfaces, cycle-safely.
package infer

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/selint-go/selint/ast"
	"github.com/selint-go/selint/namelist"
	"github.com/selint-go/selint/symtab"
)

// ErrCallLoop is returned when inference recursion exceeds the depth cap,
// mapping to spec.md §7's if-call-loop error kind.
var ErrCallLoop = errors.New("infer: interface call loop (IF_CALL_LOOP)")

const maxNesting = 40

// dollarParam matches a bare "$k" reference.
var dollarParam = regexp.MustCompile(`^\$([0-9]+)$`)

// dollarEmbedded matches any "$k" occurring anywhere in a longer identifier.
var dollarEmbedded = regexp.MustCompile(`\$([0-9]+)`)

func nameFlavorToParam(f namelist.Flavor) symtab.ParamFlavor {
	switch f {
	case namelist.Type:
		return symtab.ParamType
	case namelist.TypeAttribute:
		return symtab.ParamTypeAttribute
	case namelist.TypeOrAttribute:
		return symtab.ParamTypeOrAttribute
	case namelist.Role:
		return symtab.ParamRole
	case namelist.RoleAttribute:
		return symtab.ParamRoleAttribute
	case namelist.RoleOrAttribute:
		return symtab.ParamRoleOrAttribute
	case namelist.Class:
		return symtab.ParamClass
	default:
		return symtab.ParamUnknown
	}
}

// refineSlot refines a parameter slot from a direct observation, honoring
// stickiness: a slot at or above ParamFinalInferred never changes.
func refineSlot(trait *symtab.InterfaceTrait, idx int, value symtab.ParamFlavor) {
	if idx < 0 || idx >= symtab.NMaxParameters {
		return
	}
	if trait.Parameters[idx] < symtab.ParamFinalInferred {
		trait.Parameters[idx] = value
	}
}

// usage is one (name, flavor, positional-index) observation inside an
// interface body, matching the visitor contract of spec.md §4.E.
type usage struct {
	name   string
	flavor namelist.Flavor
	index  int // 1-based positional index within the enclosing statement
}

func collectUsages(n *ast.Node) []usage {
	names := ast.GetNamesInNode(n)
	out := make([]usage, 0, len(names.Entries))
	for i, e := range names.Entries {
		out = append(out, usage{name: e.Name, flavor: e.Flavor, index: i + 1})
	}
	return out
}

type engine struct {
	tables  *symtab.Tables
	nesting int
}

// applyUsage implements infer_func: refine trait's slot(s) from a single
// observed identifier usage.
func (e *engine) applyUsage(trait *symtab.InterfaceTrait, calleeName string, deep bool, u usage) error {
	if !strings.Contains(u.name, "$") {
		return nil
	}

	if u.name == "$*" && u.flavor == namelist.Unknown && u.index == 1 {
		if callTrait, ok := e.tables.InterfaceTraitOf(calleeName); ok {
			trait.Parameters = callTrait.Parameters
		}
		return nil
	}

	m := dollarParam.FindStringSubmatch(strings.TrimPrefix(u.name, "-"))
	if m != nil {
		paramNo, err := strconv.Atoi(m[1])
		if err != nil || paramNo == 0 {
			return nil
		}
		idx := paramNo - 1
		if idx >= symtab.NMaxParameters {
			return nil
		}
		if deep && u.flavor == namelist.Unknown {
			if callTrait, ok := e.tables.InterfaceTraitOf(calleeName); ok {
				refineSlot(trait, idx, callTrait.Parameters[u.index-1])
			}
		} else {
			refineSlot(trait, idx, nameFlavorToParam(u.flavor))
		}
		return nil
	}

	// $k embedded in a longer identifier, e.g. "$1_t": refine to TEXT.
	if em := dollarEmbedded.FindStringSubmatch(u.name); em != nil {
		paramNo, err := strconv.Atoi(em[1])
		if err == nil && paramNo > 0 {
			refineSlot(trait, paramNo-1, symtab.ParamText)
		}
	}
	return nil
}

// inferBody walks node's body (an interface or template definition's
// children), refining trait's parameter slots. deep selects whether inner
// calls are recursively inferred first (pass 2) or treated as opaque
// (pass 1).
func (e *engine) inferBody(trait *symtab.InterfaceTrait, body *ast.Node, deep bool) error {
	if e.nesting > maxNesting {
		return ErrCallLoop
	}
	for n := body; n != nil && n.Flavor != ast.InterfaceDef && n.Flavor != ast.TempDef; n = ast.DFSNext(n) {
		var calleeName string
		if n.Flavor == ast.IfCall {
			ic := n.Payload.(*ast.IfCallPayload)
			calleeName = ic.Name
			if deep {
				if callTrait, ok := e.tables.InterfaceTraitOf(calleeName); ok {
					if !callTrait.Inferred && callTrait.Kind != symtab.TraitMacro {
						e.nesting++
						err := e.inferBody(callTrait, callTrait.Node.FirstChild, deep)
						e.nesting--
						if err != nil {
							return err
						}
					}
				}
			}
		}
		for _, u := range collectUsages(n) {
			if err := e.applyUsage(trait, calleeName, deep, u); err != nil {
				return err
			}
		}
	}
	return nil
}

// Shallow runs pass 1 over every interface/template definition reachable
// from head (a sibling chain of top-level nodes), refining slots from
// direct usage only. An interface is marked Inferred when no slot is
// ParamUnknown; unused (ParamInitial) and ParamText slots do not prevent it.
func Shallow(tables *symtab.Tables, head *ast.Node) error {
	e := &engine{tables: tables, nesting: 1}
	for n := head; n != nil; n = n.Next {
		if n.Flavor != ast.InterfaceDef && n.Flavor != ast.TempDef {
			continue
		}
		p := n.Payload.(*ast.IfDefPayload)
		kind := symtab.TraitInterface
		if n.Flavor == ast.TempDef {
			kind = symtab.TraitTemplate
		}
		trait := &symtab.InterfaceTrait{Kind: kind, Node: n}
		if err := e.inferBody(trait, n.FirstChild, false); err != nil {
			return err
		}
		inferred := true
		for _, slot := range trait.Parameters {
			if slot == symtab.ParamUnknown {
				inferred = false
				break
			}
		}
		trait.Inferred = inferred
		tables.InsertInterfaceTrait(p.Name, trait)
	}
	return nil
}

// Deep runs pass 2: for every not-yet-inferred interface/template, walk its
// body again, recursing into not-yet-inferred callees first.
func Deep(tables *symtab.Tables, head *ast.Node) error {
	e := &engine{tables: tables, nesting: 1}
	for n := head; n != nil; n = n.Next {
		if n.Flavor != ast.InterfaceDef && n.Flavor != ast.TempDef {
			continue
		}
		p := n.Payload.(*ast.IfDefPayload)
		trait, ok := tables.InterfaceTraitOf(p.Name)
		if !ok || trait.Inferred {
			continue
		}
		if err := e.inferBody(trait, n.FirstChild, true); err != nil {
			return err
		}
		trait.Inferred = true
	}
	return nil
}

// refpolicyMacro is one built-in refpolicy macro bootstrapped into the
// interface-traits table because its definition is not part of the parsed
// source (spec.md §4.E).
type refpolicyMacro struct {
	name   string
	params []symtab.ParamFlavor
}

var refpolicyMacros = []refpolicyMacro{
	{"can_exec", []symtab.ParamFlavor{symtab.ParamTypeOrAttribute, symtab.ParamTypeOrAttribute}},
	{"filetrans_pattern", []symtab.ParamFlavor{symtab.ParamTypeOrAttribute, symtab.ParamTypeOrAttribute, symtab.ParamType, symtab.ParamClass, symtab.ParamObjectName}},
	{"filetrans_add_pattern", []symtab.ParamFlavor{symtab.ParamTypeOrAttribute, symtab.ParamTypeOrAttribute, symtab.ParamType, symtab.ParamClass, symtab.ParamObjectName}},
	{"domtrans_pattern", []symtab.ParamFlavor{symtab.ParamTypeOrAttribute, symtab.ParamTypeOrAttribute, symtab.ParamType}},
	{"domain_auto_transition_pattern", []symtab.ParamFlavor{symtab.ParamTypeOrAttribute, symtab.ParamTypeOrAttribute, symtab.ParamType}},
	{"admin_pattern", []symtab.ParamFlavor{symtab.ParamTypeOrAttribute, symtab.ParamTypeOrAttribute}},
	{"stream_connect_pattern", []symtab.ParamFlavor{symtab.ParamTypeOrAttribute, symtab.ParamTypeOrAttribute, symtab.ParamTypeOrAttribute, symtab.ParamTypeOrAttribute}},
	{"dgram_send_pattern", []symtab.ParamFlavor{symtab.ParamTypeOrAttribute, symtab.ParamTypeOrAttribute, symtab.ParamTypeOrAttribute, symtab.ParamTypeOrAttribute}},
}

// InstallRefpolicyMacros bootstraps the fixed set of refpolicy macros as
// already-inferred macro-kind trait entries, since their bodies are not
// part of the parsed policy.
func InstallRefpolicyMacros(tables *symtab.Tables) {
	for _, m := range refpolicyMacros {
		var params [symtab.NMaxParameters]symtab.ParamFlavor
		copy(params[:], m.params)
		tables.InsertInterfaceTrait(m.name, &symtab.InterfaceTrait{
			Kind:       symtab.TraitMacro,
			Inferred:   true,
			Parameters: params,
		})
	}
}

// InferAll bootstraps the refpolicy macros, then runs the shallow and deep
// passes over the given interface file heads, implementing the "Run
// interface inference" step of the loader (spec.md §4.D step 6).
func InferAll(tables *symtab.Tables, ifFileHeads []*ast.Node) error {
	InstallRefpolicyMacros(tables)
	for _, head := range ifFileHeads {
		if err := Shallow(tables, head); err != nil {
			return err
		}
	}
	for _, head := range ifFileHeads {
		if err := Deep(tables, head); err != nil {
			return err
		}
	}
	return nil
}
