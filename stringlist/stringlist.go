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

// Package stringlist implements the owned, ordered string sequence described
// in spec.md §4.A. Two boolean markers per entry exist only to carry lexical
// detail about interface-call arguments through to checks W-006/W-007.
package stringlist

import "strings"

// Item is one entry of a List.
type Item struct {
	Value             string
	HasIncorrectSpace bool
	ArgStart          bool
}

// List is an ordered sequence of owned strings. The zero value is an empty
// list.
type List struct {
	Items []Item
}

// New builds a List from one or more plain strings, each starting a new
// "argument" (the common case for callers that don't care about the
// interface-call lexical markers).
func New(values ...string) *List {
	l := &List{Items: make([]Item, 0, len(values))}
	for _, v := range values {
		l.Append(v)
	}
	return l
}

// Append adds a single item to the end of the list.
func (l *List) Append(value string) {
	l.Items = append(l.Items, Item{Value: value, ArgStart: true})
}

// AppendItem adds a fully-specified item.
func (l *List) AppendItem(item Item) {
	l.Items = append(l.Items, item)
}

// Copy returns a deep copy of the list; mutating the copy never affects l.
func (l *List) Copy() *List {
	if l == nil {
		return nil
	}
	out := &List{Items: make([]Item, len(l.Items))}
	copy(out.Items, l.Items)
	return out
}

// Concat steals other's items onto the end of l and returns l. other should
// not be used afterward.
func (l *List) Concat(other *List) *List {
	if other == nil {
		return l
	}
	l.Items = append(l.Items, other.Items...)
	return l
}

// Contains reports whether value is present, exactly, among the list's
// values.
func (l *List) Contains(value string) bool {
	for _, it := range l.Items {
		if it.Value == value {
			return true
		}
	}
	return false
}

// Values returns the plain string values in order.
func (l *List) Values() []string {
	out := make([]string, len(l.Items))
	for i, it := range l.Items {
		out[i] = it.Value
	}
	return out
}

// Len returns the number of entries.
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Items)
}

// Join concatenates the values with a single space separator, matching the
// reference implementation's join contract.
func (l *List) Join() string {
	return strings.Join(l.Values(), " ")
}
