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

package namelist_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/selint-go/selint/namelist"
)

func TestFromStringsTagsEveryEntry(t *testing.T) {
	l := namelist.FromStrings([]string{"foo_t", "bar_t"}, namelist.TypeOrAttribute)
	assert.Equal(t, []string{"foo_t", "bar_t"}, l.Names())
	for _, e := range l.Entries {
		assert.Equal(t, namelist.TypeOrAttribute, e.Flavor)
	}
}

func TestConcat(t *testing.T) {
	a := namelist.New("foo_t", namelist.Type)
	b := namelist.New("bar_r", namelist.Role)

	result := namelist.Concat(a, b)
	assert.Equal(t, []string{"foo_t", "bar_r"}, result.Names())
}

func TestConcatWithNilHeadOrTail(t *testing.T) {
	a := namelist.New("foo_t", namelist.Type)
	assert.Equal(t, a, namelist.Concat(nil, a))
	assert.Equal(t, a, namelist.Concat(a, nil))
}

func TestContainsExactFlavorMatch(t *testing.T) {
	l := namelist.New("foo_t", namelist.Type)
	assert.True(t, l.Contains("foo_t", namelist.Type))
	assert.False(t, l.Contains("foo_t", namelist.Role))
}

func TestContainsLatticeCompatibility(t *testing.T) {
	typeEntry := namelist.New("foo_t", namelist.Type)
	assert.True(t, typeEntry.Contains("foo_t", namelist.TypeOrAttribute))

	attrEntry := namelist.New("foo_attr", namelist.TypeAttribute)
	assert.True(t, attrEntry.Contains("foo_attr", namelist.TypeOrAttribute))

	orEntry := namelist.New("foo_x", namelist.TypeOrAttribute)
	assert.True(t, orEntry.Contains("foo_x", namelist.Type))
	assert.True(t, orEntry.Contains("foo_x", namelist.TypeAttribute))

	assert.False(t, typeEntry.Contains("foo_t", namelist.Role))
}

func TestContainsUnknownIsCompatibleWithAnything(t *testing.T) {
	l := namelist.New("foo", namelist.Unknown)
	assert.True(t, l.Contains("foo", namelist.Class))
	assert.True(t, l.Contains("foo", namelist.User))

	classEntry := namelist.New("foo", namelist.Class)
	assert.True(t, classEntry.Contains("foo", namelist.Unknown))
}

func TestContainsRejectsDistinctConcreteKinds(t *testing.T) {
	l := namelist.New("foo", namelist.Class)
	assert.False(t, l.Contains("foo", namelist.Permission))
}

func TestNilListIsEmpty(t *testing.T) {
	var l *namelist.List
	assert.False(t, l.Contains("foo", namelist.Type))
	assert.Nil(t, l.Names())
}

func TestFlavorString(t *testing.T) {
	assert.Equal(t, "type-or-attribute", namelist.TypeOrAttribute.String())
	assert.Equal(t, "unknown", namelist.Unknown.String())
}
