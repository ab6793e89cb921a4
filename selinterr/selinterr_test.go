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

package selinterr_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/selint-go/selint/selinterr"
)

func TestIsMatchesByCode(t *testing.T) {
	cause := errors.New("boom")
	wrapped := selinterr.Wrap(selinterr.ParseError, "foo.te:12", cause)

	assert.True(t, errors.Is(wrapped, selinterr.New(selinterr.ParseError, "")))
	assert.False(t, errors.Is(wrapped, selinterr.New(selinterr.IOError, "")))
	assert.ErrorIs(t, wrapped, cause)
}

func TestExitCodeMapping(t *testing.T) {
	assert.Equal(t, 0, selinterr.Success.ExitCode())
	assert.Equal(t, 64, selinterr.BadArg.ExitCode())
	assert.Equal(t, 78, selinterr.ConfigParseError.ExitCode())
	assert.Equal(t, 65, selinterr.ParseError.ExitCode())
}
