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

// HeaderPayload is the payload of a Header node.
type HeaderPayload struct {
	ModuleName string
	IsMacro    bool // true when declared via the m4 module() macro rather than bare text
}

// DeclPayload is the payload of a Decl node. Alias/TypeAlias/Permissive
// nodes carry a *NamePayload instead.
type DeclPayload struct {
	Kind       DeclKind
	Name       string
	Attributes []string // attached type-attributes, for DeclType
	Perms      []string // associated permissions, for DeclClass
}

// AVRulePayload is the payload of an AvRule node.
type AVRulePayload struct {
	Flavor      AVFlavor
	Sources     []string
	Targets     []string
	Classes     []string
	Permissions []string
}

// XAVRulePayload is the payload of an XavRule (extended access-vector, e.g.
// ioctl) node.
type XAVRulePayload struct {
	Flavor      AVFlavor
	Sources     []string
	Targets     []string
	Classes     []string
	Operation   string
	Permissions []string // may contain hex literals and "-" ranges
}

// TTRulePayload is the payload of a TtRule node.
type TTRulePayload struct {
	Kind        TTKind
	Sources     []string
	Targets     []string
	Classes     []string
	Default     string
	ObjectName  string // optional
	HasObjName  bool
}

// RTRulePayload is the payload of an RtRule (role_transition) node.
type RTRulePayload struct {
	Sources     []string
	Targets     []string
	Classes     []string
	DefaultRole string
}

// RoleAllowPayload is the payload of a RoleAllow node. The canonical
// representation is list-form (spec.md §9 Open Question (i)): multiple
// source/target roles, not a single pair.
type RoleAllowPayload struct {
	Sources []string
	Targets []string
}

// RoleTypesPayload is the payload of a RoleTypes node.
type RoleTypesPayload struct {
	Role  string
	Types []string
}

// IfCallPayload is the payload of an IfCall node.
type IfCallPayload struct {
	Name string
	Args []CallArg
}

// CallArg is one positional argument to an interface call, preserving the
// lexical quirks W-006/W-007 need.
type CallArg struct {
	Text              string
	HasIncorrectSpace bool
	ArgStart          bool
}

// CondDeclPayload is the payload of BooleanPolicy/TunablePolicy/Ifdef/Ifelse
// gate nodes: the identifier list guarding the conditional block.
type CondDeclPayload struct {
	Identifiers []string
}

// GenReqPayload carries the "unquoted" flag S-008 needs on gen_require
// blocks.
type GenReqPayload struct {
	Unquoted bool
}

// FCEntryPayload is the payload of an FcEntry node.
type FCEntryPayload struct {
	Path        string
	ObjectClass byte // one of 0,'b','c','d','f','l','p','s'
	HasContext  bool
	Context     *FCContext
}

// FCContext is a resolved file-context label. Raw and gen_context forms both
// normalize into this shape; Range is derived as "low" or "low:high" for the
// gen_context form, and is the verbatim :range suffix for the raw form.
// HasGenContext distinguishes "gen_context(user:role:type, low[,high])" from
// a raw "user:role:type[:range]" label; S-007 flags the former when it omits
// a range.
type FCContext struct {
	User          string
	Role          string
	Type          string
	Range         string // "" when absent
	HasGenContext bool
}

// IfDefPayload is the payload of an InterfaceDef or TempDef node.
type IfDefPayload struct {
	Name string
}

// AttributeAssignPayload is the payload of a TypeAttribute or RoleAttribute
// node: "typeattribute foo bar_attr, baz_attr;" style statements that
// attach attributes to an already-declared type or role.
type AttributeAssignPayload struct {
	Name       string
	Attributes []string
}

// NamePayload is the payload of Alias, TypeAlias, and Permissive nodes,
// which all reference a single type name.
type NamePayload struct {
	Name string
}

// M4CallPayload carries the raw macro-call text for M4Call markers.
type M4CallPayload struct {
	Name string
	Args []string
}

// StrayWordPayload is the payload of an Error node produced for E-010: a
// bare token outside any recognized macro or statement context.
type StrayWordPayload struct {
	Word string
}
