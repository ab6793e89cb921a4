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

// Package config is the YAML-backed settings record of spec.md §6: the
// knobs that adjust severity filtering, ordering strictness, and assumed
// declarations without touching the source under analysis.
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/selint-go/selint/ast"
	"github.com/selint-go/selint/ordering"
)

// Config is the full set of user-overridable settings.
type Config struct {
	SeverityThreshold        string   `yaml:"severity_threshold"`
	OrderConf                string   `yaml:"order_conf"`
	OrderRequires            []string `yaml:"order_requires"`
	OrderingRequiresSameFlavor bool   `yaml:"ordering_requires_same_flavor"`
	SkipCheckingGeneratedFCs bool     `yaml:"skip_checking_generated_fcs"`
	CustomFCMacros           []string `yaml:"custom_fc_macros"`
	CustomTESimpleMacros     []string `yaml:"custom_te_simple_macros"`
	AssumeUsers              []string `yaml:"assume_users"`
	AssumeRoles              []string `yaml:"assume_roles"`
	EnabledChecks            []string `yaml:"enabled_checks"`
	DisabledChecks           []string `yaml:"disabled_checks"`
}

// Default returns the configuration selint applies when no config file is
// supplied.
func Default() *Config {
	return &Config{
		SeverityThreshold:          "C",
		OrderConf:                  "refpolicy",
		OrderRequires:              []string{"type", "attribute", "role", "attribute_role", "bool", "class", "perm", "user"},
		OrderingRequiresSameFlavor: true,
	}
}

// Load reads and parses a YAML config file at path, starting from
// Default() and overwriting any field the file sets.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Strictness translates OrderConf into the ordering package's enum.
func (c *Config) Strictness() ordering.Strictness {
	switch c.OrderConf {
	case "refpolicy-light":
		return ordering.Light
	case "refpolicy-lax":
		return ordering.Lax
	default:
		return ordering.Ref
	}
}

// declFlavorNames maps the order_requires YAML strings to ast.DeclKind,
// the same vocabulary if_checks' compare_declaration_flavors uses.
var declFlavorNames = map[string]ast.DeclKind{
	"type":          ast.DeclType,
	"attribute":     ast.DeclTypeAttribute,
	"role":          ast.DeclRole,
	"attribute_role": ast.DeclRoleAttribute,
	"user":          ast.DeclUser,
	"class":         ast.DeclClass,
	"perm":          ast.DeclPermission,
	"bool":          ast.DeclBool,
}

// DeclOrder returns the configured require-block declaration-kind ordering,
// skipping any entry that doesn't name a recognized kind.
func (c *Config) DeclOrder() []ast.DeclKind {
	out := make([]ast.DeclKind, 0, len(c.OrderRequires))
	for _, name := range c.OrderRequires {
		if k, ok := declFlavorNames[name]; ok {
			out = append(out, k)
		}
	}
	return out
}

// SeverityAtLeast reports whether sev (one of "C","S","W","E","F") meets or
// exceeds the configured threshold, per the fixed severity ordering
// C < S < W < E < F.
func (c *Config) SeverityAtLeast(sev byte) bool {
	rank := func(b byte) int {
		switch b {
		case 'C':
			return 0
		case 'S':
			return 1
		case 'W':
			return 2
		case 'E':
			return 3
		case 'F':
			return 4
		default:
			return -1
		}
	}
	threshold := byte('C')
	if len(c.SeverityThreshold) > 0 {
		threshold = c.SeverityThreshold[0]
	}
	return rank(sev) >= rank(threshold)
}

// CheckEnabled reports whether check id should run, honoring the
// enabled/disabled override lists (disabled always wins over enabled).
func (c *Config) CheckEnabled(id string) bool {
	for _, d := range c.DisabledChecks {
		if d == id {
			return false
		}
	}
	if len(c.EnabledChecks) == 0 {
		return true
	}
	for _, e := range c.EnabledChecks {
		if e == id {
			return true
		}
	}
	return false
}
