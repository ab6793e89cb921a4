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

package permmacro_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/selint-go/selint/permmacro"
)

var baseMacros = map[string][]string{
	"read_file_perms":  {"open", "getattr", "read", "lock", "ioctl"},
	"rw_file_perms":    {"open", "getattr", "read", "write", "append", "lock", "ioctl"},
	"manage_dir_perms": {"create", "getattr", "setattr", "read", "write", "add_name", "remove_name", "reparent", "rmdir", "search"},
}

func TestSuggestMacroForRWFilePerms(t *testing.T) {
	cat := permmacro.BuildCatalog(baseMacros, nil)
	msg := cat.Suggest("file", []string{"open", "getattr", "read", "write", "append", "lock", "ioctl"})
	assert.Contains(t, msg, "rw_file_perms")
}

func TestSuggestNothingForUnsupportedClass(t *testing.T) {
	cat := permmacro.BuildCatalog(baseMacros, nil)
	msg := cat.Suggest("process", []string{"transition", "sigchld"})
	assert.Empty(t, msg)
}

func TestSuggestNothingWhenMacroAlreadyUsed(t *testing.T) {
	source := func(name string) ([]string, bool) {
		perms, ok := baseMacros[name]
		return perms, ok
	}
	cat := permmacro.BuildCatalog(baseMacros, source)
	msg := cat.Suggest("file", []string{"read_file_perms", "open", "read"})
	assert.Empty(t, msg)
}

func TestSuggestNothingForSinglePermission(t *testing.T) {
	cat := permmacro.BuildCatalog(baseMacros, nil)
	msg := cat.Suggest("file", []string{"read"})
	assert.Empty(t, msg)
}

func TestSuggestIgnoresMacroWithUncoveredPermission(t *testing.T) {
	macros := map[string][]string{
		"weird_file_perms": {"read", "write", "quotaon"},
	}
	cat := permmacro.BuildCatalog(macros, nil)
	msg := cat.Suggest("file", []string{"read", "write", "open"})
	assert.Empty(t, msg)
}

func TestSuggestPrefersHigherCoverage(t *testing.T) {
	macros := map[string][]string{
		"small_dir_perms": {"search", "getattr"},
		"big_dir_perms":   {"search", "getattr", "read", "open"},
	}
	cat := permmacro.BuildCatalog(macros, nil)
	msg := cat.Suggest("dir", []string{"search", "getattr", "read", "open"})
	assert.Contains(t, msg, "big_dir_perms")
}
