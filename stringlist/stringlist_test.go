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

package stringlist_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/selint-go/selint/stringlist"
)

func TestNewAndValues(t *testing.T) {
	l := stringlist.New("read", "write", "open")
	assert.Equal(t, []string{"read", "write", "open"}, l.Values())
	assert.Equal(t, 3, l.Len())
}

func TestContains(t *testing.T) {
	l := stringlist.New("read", "write")
	assert.True(t, l.Contains("write"))
	assert.False(t, l.Contains("execute"))
}

func TestJoin(t *testing.T) {
	l := stringlist.New("read", "write")
	assert.Equal(t, "read write", l.Join())
}

func TestCopyIsIndependent(t *testing.T) {
	l := stringlist.New("read")
	cp := l.Copy()
	cp.Append("write")

	assert.Equal(t, 1, l.Len())
	assert.Equal(t, 2, cp.Len())
}

func TestConcatStealsItems(t *testing.T) {
	a := stringlist.New("read")
	b := stringlist.New("write", "open")

	result := a.Concat(b)
	assert.Same(t, a, result)
	assert.Equal(t, []string{"read", "write", "open"}, result.Values())
}

func TestConcatWithNilOther(t *testing.T) {
	a := stringlist.New("read")
	assert.Equal(t, a, a.Concat(nil))
}

func TestAppendItemPreservesMarkers(t *testing.T) {
	l := &stringlist.List{}
	l.AppendItem(stringlist.Item{Value: "foo", HasIncorrectSpace: true, ArgStart: false})

	assert.Len(t, l.Items, 1)
	assert.True(t, l.Items[0].HasIncorrectSpace)
	assert.False(t, l.Items[0].ArgStart)
}

func TestNilListLenIsZero(t *testing.T) {
	var l *stringlist.List
	assert.Zero(t, l.Len())
}
