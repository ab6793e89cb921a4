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

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selint-go/selint/config"
	"github.com/selint-go/selint/ordering"
)

func TestDefaultSeverityThreshold(t *testing.T) {
	cfg := config.Default()
	assert.True(t, cfg.SeverityAtLeast('C'))
	assert.True(t, cfg.SeverityAtLeast('F'))
}

func TestSeverityAtLeastRespectsThreshold(t *testing.T) {
	cfg := config.Default()
	cfg.SeverityThreshold = "W"
	assert.False(t, cfg.SeverityAtLeast('S'))
	assert.True(t, cfg.SeverityAtLeast('W'))
	assert.True(t, cfg.SeverityAtLeast('E'))
}

func TestStrictnessMapping(t *testing.T) {
	cfg := config.Default()
	cfg.OrderConf = "refpolicy-light"
	assert.Equal(t, ordering.Light, cfg.Strictness())
	cfg.OrderConf = "refpolicy-lax"
	assert.Equal(t, ordering.Lax, cfg.Strictness())
	cfg.OrderConf = "refpolicy"
	assert.Equal(t, ordering.Ref, cfg.Strictness())
}

func TestCheckEnabledDisabledWins(t *testing.T) {
	cfg := config.Default()
	cfg.EnabledChecks = []string{"C-001"}
	cfg.DisabledChecks = []string{"C-001"}
	assert.False(t, cfg.CheckEnabled("C-001"))
}

func TestCheckEnabledDefaultsToAllWhenListEmpty(t *testing.T) {
	cfg := config.Default()
	assert.True(t, cfg.CheckEnabled("W-010"))
}

func TestLoadFromYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "selint.conf")
	require.NoError(t, os.WriteFile(path, []byte("severity_threshold: S\norder_conf: refpolicy-lax\n"), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "S", cfg.SeverityThreshold)
	assert.Equal(t, ordering.Lax, cfg.Strictness())
}
