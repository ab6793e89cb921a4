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

// Package namelist implements the flavor-tagged name list of spec.md §4.A:
// an ordered sequence of identifiers, each tagged with the kind of policy
// object it names, compared under a reflexive compatibility lattice.
package namelist

import "github.com/selint-go/selint/stringlist"

// Flavor tags what kind of policy object a name entry refers to.
type Flavor int

const (
	Unknown Flavor = iota
	Type
	TypeAttribute
	TypeOrAttribute
	Role
	RoleAttribute
	RoleOrAttribute
	Class
	Permission
	User
	Bool
)

// Entry is one tagged name.
type Entry struct {
	Name   string
	Flavor Flavor
	// Traits holds the permissions associated at declaration, populated
	// only when Flavor == Class.
	Traits *stringlist.List
}

// List is an ordered sequence of flavor-tagged names.
type List struct {
	Entries []Entry
}

// New builds a list with a single entry.
func New(name string, flavor Flavor) *List {
	return &List{Entries: []Entry{{Name: name, Flavor: flavor}}}
}

// FromStrings builds a list tagging every value in values with flavor.
func FromStrings(values []string, flavor Flavor) *List {
	return FromStringsWithTraits(values, flavor, nil)
}

// FromStringsWithTraits is FromStrings, additionally attaching traits (the
// class's declared permission set) to every produced entry.
func FromStringsWithTraits(values []string, flavor Flavor, traits *stringlist.List) *List {
	l := &List{Entries: make([]Entry, 0, len(values))}
	for _, v := range values {
		l.Entries = append(l.Entries, Entry{Name: v, Flavor: flavor, Traits: traits})
	}
	return l
}

// Concat appends tail's entries to head and returns head; if head is nil it
// returns tail.
func Concat(head, tail *List) *List {
	if head == nil {
		return tail
	}
	if tail == nil {
		return head
	}
	head.Entries = append(head.Entries, tail.Entries...)
	return head
}

// compatible implements the reflexive compatibility lattice of spec.md §4.A:
// unknown is compatible with anything; type <= type-or-attribute >= type
// attribute; similarly for roles; distinct concrete kinds are incompatible.
func compatible(a, b Flavor) bool {
	if a == b || a == Unknown || b == Unknown {
		return true
	}
	switch a {
	case Type, TypeAttribute:
		return b == TypeOrAttribute
	case TypeOrAttribute:
		return b == Type || b == TypeAttribute
	case Role, RoleAttribute:
		return b == RoleOrAttribute
	case RoleOrAttribute:
		return b == Role || b == RoleAttribute
	}
	return false
}

// Contains reports whether the list has an entry whose name matches and
// whose flavor is lattice-compatible with want.
func (l *List) Contains(name string, want Flavor) bool {
	if l == nil {
		return false
	}
	for _, e := range l.Entries {
		if e.Name == name && compatible(e.Flavor, want) {
			return true
		}
	}
	return false
}

// Names returns the plain identifier values, in order.
func (l *List) Names() []string {
	if l == nil {
		return nil
	}
	out := make([]string, len(l.Entries))
	for i, e := range l.Entries {
		out[i] = e.Name
	}
	return out
}

func (f Flavor) String() string {
	switch f {
	case Type:
		return "type"
	case TypeAttribute:
		return "type-attribute"
	case TypeOrAttribute:
		return "type-or-attribute"
	case Role:
		return "role"
	case RoleAttribute:
		return "role-attribute"
	case RoleOrAttribute:
		return "role-or-attribute"
	case Class:
		return "class"
	case Permission:
		return "permission"
	case User:
		return "user"
	case Bool:
		return "bool"
	default:
		return "unknown"
	}
}
