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

// Package ast holds the in-memory representation of a parsed reference-policy
// source file: a tagged-variant tree with explicit parent/sibling/child
// links, plus the traversal and name-extraction helpers every other package
// builds on.
package ast

// Flavor tags the payload carried by a Node. The set mirrors the ~35 node
// kinds a reference-policy source can produce.
type Flavor int

const (
	TEFile Flavor = iota
	IfFile
	FcFile
	SptFile
	AvFile
	CondFile
	AvRule
	XavRule
	TtRule
	RtRule
	Header
	RoleAllow
	RoleTypes
	Decl
	Alias
	TypeAlias
	TypeAttribute
	RoleAttribute
	M4Call
	M4SimpleMacro
	Define
	OptionalPolicy
	OptionalElse
	BooleanPolicy
	TunablePolicy
	Ifdef
	Ifelse
	M4Arg
	StartBlock
	InterfaceDef
	TempDef
	IfCall
	Require
	GenReq
	Permissive
	FcEntry
	Comment
	Empty
	Semicolon
	Cleanup
	Error
)

var flavorNames = map[Flavor]string{
	TEFile:         "te-file",
	IfFile:         "if-file",
	FcFile:         "fc-file",
	SptFile:        "spt-file",
	AvFile:         "av-file",
	CondFile:       "cond-file",
	AvRule:         "av-rule",
	XavRule:        "xav-rule",
	TtRule:         "tt-rule",
	RtRule:         "rt-rule",
	Header:         "header",
	RoleAllow:      "role-allow",
	RoleTypes:      "role-types",
	Decl:           "decl",
	Alias:          "alias",
	TypeAlias:      "type-alias",
	TypeAttribute:  "type-attribute",
	RoleAttribute:  "role-attribute",
	M4Call:         "m4-call",
	M4SimpleMacro:  "m4-simple-macro",
	Define:         "define",
	OptionalPolicy: "optional-policy",
	OptionalElse:   "optional-else",
	BooleanPolicy:  "boolean-policy",
	TunablePolicy:  "tunable-policy",
	Ifdef:          "ifdef",
	Ifelse:         "ifelse",
	M4Arg:          "m4-arg",
	StartBlock:     "start-block",
	InterfaceDef:   "interface-def",
	TempDef:        "temp-def",
	IfCall:         "if-call",
	Require:        "require",
	GenReq:         "gen-req",
	Permissive:     "permissive",
	FcEntry:        "fc-entry",
	Comment:        "comment",
	Empty:          "empty",
	Semicolon:      "semicolon",
	Cleanup:        "cleanup",
	Error:          "error",
}

func (f Flavor) String() string {
	if s, ok := flavorNames[f]; ok {
		return s
	}
	return "unknown-flavor"
}

// DeclKind distinguishes the kinds of identifier a Decl node can introduce.
type DeclKind int

const (
	DeclType DeclKind = iota
	DeclTypeAttribute
	DeclRole
	DeclRoleAttribute
	DeclUser
	DeclClass
	DeclPermission
	DeclBool
)

// AVFlavor distinguishes the four access-vector rule kinds.
type AVFlavor int

const (
	AVAllow AVFlavor = iota
	AVAuditAllow
	AVDontAudit
	AVNeverAllow
)

// TTKind distinguishes the four type-transition-family statements that share
// the sources/targets/classes/default-type shape: type_transition,
// type_member, type_change, and range_transition.
type TTKind int

const (
	TTTypeTransition TTKind = iota
	TTTypeMember
	TTTypeChange
	TTRangeTransition
)
