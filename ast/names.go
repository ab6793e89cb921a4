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

import (
	"strings"

	"github.com/selint-go/selint/namelist"
	"github.com/selint-go/selint/stringlist"
)

// stripExclusion removes a leading "-" (the exclusion marker in source,
// source2 -name lists); consumers of GetNamesInNode want the bare reference.
func stripExclusion(s string) string {
	return strings.TrimPrefix(s, "-")
}

func stripAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = stripExclusion(v)
	}
	return out
}

func declFlavor(kind DeclKind) namelist.Flavor {
	switch kind {
	case DeclType:
		return namelist.Type
	case DeclTypeAttribute:
		return namelist.TypeAttribute
	case DeclRole:
		return namelist.Role
	case DeclRoleAttribute:
		return namelist.RoleAttribute
	case DeclUser:
		return namelist.User
	case DeclClass:
		return namelist.Class
	case DeclPermission:
		return namelist.Permission
	case DeclBool:
		return namelist.Bool
	default:
		return namelist.Unknown
	}
}

// GetNamesInNode extracts every identifier n references (or, for a
// declaration, introduces), tagged with the appropriate namelist.Flavor, per
// spec.md §4.B.
func GetNamesInNode(n *Node) *namelist.List {
	if n == nil {
		return &namelist.List{}
	}
	switch n.Flavor {
	case AvRule:
		p := n.Payload.(*AVRulePayload)
		out := namelist.FromStrings(stripAll(p.Sources), namelist.TypeOrAttribute)
		out = namelist.Concat(out, namelist.FromStrings(stripAll(p.Targets), namelist.TypeOrAttribute))
		traits := stringlist.New(p.Permissions...)
		out = namelist.Concat(out, namelist.FromStringsWithTraits(p.Classes, namelist.Class, traits))
		out = namelist.Concat(out, namelist.FromStrings(p.Permissions, namelist.Permission))
		return out
	case XavRule:
		p := n.Payload.(*XAVRulePayload)
		out := namelist.FromStrings(stripAll(p.Sources), namelist.TypeOrAttribute)
		out = namelist.Concat(out, namelist.FromStrings(stripAll(p.Targets), namelist.TypeOrAttribute))
		traits := stringlist.New(p.Permissions...)
		out = namelist.Concat(out, namelist.FromStringsWithTraits(p.Classes, namelist.Class, traits))
		return out
	case TtRule:
		p := n.Payload.(*TTRulePayload)
		out := namelist.FromStrings(stripAll(p.Sources), namelist.TypeOrAttribute)
		out = namelist.Concat(out, namelist.FromStrings(stripAll(p.Targets), namelist.TypeOrAttribute))
		out = namelist.Concat(out, namelist.FromStrings(p.Classes, namelist.Class))
		if p.Default != "" {
			out = namelist.Concat(out, namelist.New(p.Default, namelist.Type))
		}
		return out
	case RtRule:
		p := n.Payload.(*RTRulePayload)
		out := namelist.FromStrings(stripAll(p.Sources), namelist.RoleOrAttribute)
		out = namelist.Concat(out, namelist.FromStrings(stripAll(p.Targets), namelist.TypeOrAttribute))
		out = namelist.Concat(out, namelist.FromStrings(p.Classes, namelist.Class))
		if p.DefaultRole != "" {
			out = namelist.Concat(out, namelist.New(p.DefaultRole, namelist.Role))
		}
		return out
	case Decl:
		p := n.Payload.(*DeclPayload)
		flavor := declFlavor(p.Kind)
		var traits *stringlist.List
		if p.Kind == DeclClass {
			traits = stringlist.New(p.Perms...)
		}
		out := namelist.FromStringsWithTraits([]string{p.Name}, flavor, traits)
		if p.Kind == DeclType && len(p.Attributes) > 0 {
			out = namelist.Concat(out, namelist.FromStrings(p.Attributes, namelist.TypeAttribute))
		}
		return out
	case IfCall:
		p := n.Payload.(*IfCallPayload)
		values := make([]string, len(p.Args))
		for i, a := range p.Args {
			values[i] = stripExclusion(a.Text)
		}
		return namelist.FromStrings(values, namelist.Unknown)
	case RoleAllow:
		p := n.Payload.(*RoleAllowPayload)
		out := namelist.FromStrings(p.Sources, namelist.Role)
		return namelist.Concat(out, namelist.FromStrings(p.Targets, namelist.Role))
	case RoleTypes:
		p := n.Payload.(*RoleTypesPayload)
		out := namelist.New(p.Role, namelist.Role)
		return namelist.Concat(out, namelist.FromStrings(p.Types, namelist.Type))
	case TypeAttribute:
		p := n.Payload.(*AttributeAssignPayload)
		out := namelist.New(p.Name, namelist.Type)
		return namelist.Concat(out, namelist.FromStrings(p.Attributes, namelist.TypeAttribute))
	case RoleAttribute:
		p := n.Payload.(*AttributeAssignPayload)
		out := namelist.New(p.Name, namelist.Role)
		return namelist.Concat(out, namelist.FromStrings(p.Attributes, namelist.RoleAttribute))
	case Alias, TypeAlias, Permissive:
		p := n.Payload.(*NamePayload)
		return namelist.New(p.Name, namelist.Type)
	default:
		return &namelist.List{}
	}
}
