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

package checks_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/selint-go/selint/ast"
	"github.com/selint-go/selint/checks"
	"github.com/selint-go/selint/config"
	"github.com/selint-go/selint/loader"
	"github.com/selint-go/selint/report"
	"github.com/selint-go/selint/symtab"
)

func TestValidCheckID(t *testing.T) {
	assert.True(t, checks.ValidCheckID("W-010"))
	assert.True(t, checks.ValidCheckID("F-002"))
	assert.False(t, checks.ValidCheckID("X-001"))
	assert.False(t, checks.ValidCheckID("W010"))
	assert.False(t, checks.ValidCheckID("W-0"))
}

func TestRegistryRunSkipsDisabledCheck(t *testing.T) {
	r := checks.NewRegistry()
	hits := 0
	r.Register(ast.Semicolon, "S-003", report.Style, func(*checks.Context, *ast.Node) (string, bool) {
		hits++
		return "unnecessary", true
	})

	n := &ast.Node{Flavor: ast.Semicolon, Exceptions: []string{"S-003"}}
	ctx := &checks.Context{Config: config.Default()}

	findings := r.Run(ctx, n)
	assert.Empty(t, findings)
	assert.Zero(t, hits, "a disabled check's function should never even run")
}

func TestRegistryRunRespectsSeverityThreshold(t *testing.T) {
	r := checks.NewRegistry()
	r.Register(ast.Semicolon, "S-003", report.Style, func(*checks.Context, *ast.Node) (string, bool) {
		return "unnecessary", true
	})

	cfg := config.Default()
	cfg.SeverityThreshold = "W"
	ctx := &checks.Context{Config: cfg}

	n := &ast.Node{Flavor: ast.Semicolon}
	assert.Empty(t, r.Run(ctx, n))
}

func TestRegistryRunCollectsFindingWithLocation(t *testing.T) {
	r := checks.NewRegistry()
	r.Register(ast.Semicolon, "S-003", report.Style, func(*checks.Context, *ast.Node) (string, bool) {
		return "Unnecessary semicolon", true
	})

	ctx := &checks.Context{Config: config.Default(), Path: "foo.te"}
	n := &ast.Node{Flavor: ast.Semicolon, Lineno: 42}

	findings := r.Run(ctx, n)
	if assert.Len(t, findings, 1) {
		assert.Equal(t, "foo.te", findings[0].Path)
		assert.Equal(t, 42, findings[0].Line)
		assert.Equal(t, "S-003", findings[0].ID)
	}
}

func TestDefaultRegistryFlagsBareModuleStatement(t *testing.T) {
	r := checks.DefaultRegistry()
	ctx := &checks.Context{Config: config.Default(), Tables: symtab.New(), Path: "foo.te"}

	n := &ast.Node{Flavor: ast.Header, Payload: &ast.HeaderPayload{ModuleName: "foo", IsMacro: false}}
	findings := r.Run(ctx, n)

	var gotBareModule bool
	for _, f := range findings {
		if f.ID == "S-006" {
			gotBareModule = true
		}
	}
	assert.True(t, gotBareModule)
}

func TestDefaultRegistrySkipsMacroModuleStatement(t *testing.T) {
	r := checks.DefaultRegistry()
	ctx := &checks.Context{Config: config.Default(), Tables: symtab.New(), Path: "foo.te"}

	n := &ast.Node{Flavor: ast.Header, Payload: &ast.HeaderPayload{ModuleName: "foo", IsMacro: true}}
	findings := r.Run(ctx, n)

	for _, f := range findings {
		assert.NotEqual(t, "S-006", f.ID)
	}
}

func TestDefaultRegistryFlagsRiskyWildcardAllow(t *testing.T) {
	r := checks.DefaultRegistry()
	ctx := &checks.Context{Config: config.Default(), Tables: symtab.New(), Path: "foo.te"}

	n := &ast.Node{Flavor: ast.AvRule, Payload: &ast.AVRulePayload{
		Flavor:      ast.AVAllow,
		Sources:     []string{"foo_t"},
		Targets:     []string{"bar_t"},
		Classes:     []string{"file"},
		Permissions: []string{"*"},
	}}
	findings := r.Run(ctx, n)

	var gotRisky bool
	for _, f := range findings {
		if f.ID == "W-008" {
			gotRisky = true
		}
	}
	assert.True(t, gotRisky)
}

func TestDefaultRegistryFlagsEmptyBlock(t *testing.T) {
	r := checks.DefaultRegistry()
	ctx := &checks.Context{Config: config.Default(), Tables: symtab.New(), Path: "foo.if"}

	def := &ast.Node{Flavor: ast.InterfaceDef, Payload: &ast.IfDefPayload{Name: "foo_domtrans"}}
	ast.InsertChild(def, ast.StartBlock, nil, 1)

	findings := r.Run(ctx, def)

	var gotEmpty bool
	for _, f := range findings {
		if f.ID == "E-009" {
			gotEmpty = true
		}
	}
	assert.True(t, gotEmpty)
}

func TestDefaultRegistryIgnoresSelfRuleAsOkWhenUsingKeyword(t *testing.T) {
	r := checks.DefaultRegistry()
	tables := symtab.New()
	ctx := &checks.Context{Config: config.Default(), Tables: tables, Path: "foo.te", Module: "foo"}

	n := &ast.Node{Flavor: ast.AvRule, Payload: &ast.AVRulePayload{
		Flavor:      ast.AVAllow,
		Sources:     []string{"foo_t"},
		Targets:     []string{"self"},
		Classes:     []string{"file"},
		Permissions: []string{"read"},
	}}
	findings := r.Run(ctx, n)
	for _, f := range findings {
		assert.NotEqual(t, "C-007", f.ID)
	}
}

func TestDefaultRegistryFlagsRedundantSelfType(t *testing.T) {
	r := checks.DefaultRegistry()
	tables := symtab.New()
	tables.InsertDecl("foo_t", ast.DeclType, "foo")
	ctx := &checks.Context{Config: config.Default(), Tables: tables, Path: "foo.te", Module: "foo"}

	n := &ast.Node{Flavor: ast.AvRule, Payload: &ast.AVRulePayload{
		Flavor:      ast.AVAllow,
		Sources:     []string{"foo_t"},
		Targets:     []string{"foo_t"},
		Classes:     []string{"file"},
		Permissions: []string{"read"},
	}}
	findings := r.Run(ctx, n)

	var gotSelf bool
	for _, f := range findings {
		if f.ID == "C-007" {
			gotSelf = true
		}
	}
	assert.True(t, gotSelf)
}

func TestDefaultRegistryFlagsNameUsedButNotRequiredInIf(t *testing.T) {
	r := checks.DefaultRegistry()
	tables := symtab.New()
	tables.InsertDecl("bar_t", ast.DeclType, "other")
	ctx := &checks.Context{Config: config.Default(), Tables: tables, Path: "foo.if", Kind: loader.KindIf}

	def := &ast.Node{Flavor: ast.InterfaceDef, Payload: &ast.IfDefPayload{Name: "foo_domtrans"}}
	genReq := ast.InsertChild(def, ast.GenReq, &ast.GenReqPayload{}, 1)
	ast.InsertChild(genReq, ast.Decl, &ast.DeclPayload{Kind: ast.DeclType, Name: "foo_t"}, 2)
	rule := ast.InsertNext(genReq, ast.AvRule, &ast.AVRulePayload{
		Flavor:      ast.AVAllow,
		Sources:     []string{"$1"},
		Targets:     []string{"bar_t"},
		Classes:     []string{"file"},
		Permissions: []string{"read"},
	}, 3)

	findings := r.Run(ctx, rule)

	var gotUnrequired bool
	for _, f := range findings {
		if f.ID == "W-002" {
			gotUnrequired = true
		}
	}
	assert.True(t, gotUnrequired)
}

func TestDefaultRegistryIgnoresRequiredNameInIf(t *testing.T) {
	r := checks.DefaultRegistry()
	tables := symtab.New()
	tables.InsertDecl("bar_t", ast.DeclType, "other")
	ctx := &checks.Context{Config: config.Default(), Tables: tables, Path: "foo.if", Kind: loader.KindIf}

	def := &ast.Node{Flavor: ast.InterfaceDef, Payload: &ast.IfDefPayload{Name: "foo_domtrans"}}
	genReq := ast.InsertChild(def, ast.GenReq, &ast.GenReqPayload{}, 1)
	ast.InsertChild(genReq, ast.Decl, &ast.DeclPayload{Kind: ast.DeclType, Name: "bar_t"}, 2)
	rule := ast.InsertNext(genReq, ast.AvRule, &ast.AVRulePayload{
		Flavor:      ast.AVAllow,
		Sources:     []string{"$1"},
		Targets:     []string{"bar_t"},
		Classes:     []string{"file"},
		Permissions: []string{"read"},
	}, 3)

	findings := r.Run(ctx, rule)
	for _, f := range findings {
		assert.NotEqual(t, "W-002", f.ID)
	}
}

func TestDefaultRegistryFlagsNameRequiredButNotUsedInIf(t *testing.T) {
	r := checks.DefaultRegistry()
	ctx := &checks.Context{Config: config.Default(), Tables: symtab.New(), Path: "foo.if", Kind: loader.KindIf}

	def := &ast.Node{Flavor: ast.InterfaceDef, Payload: &ast.IfDefPayload{Name: "foo_domtrans"}}
	genReq := ast.InsertChild(def, ast.GenReq, &ast.GenReqPayload{}, 1)
	decl := ast.InsertChild(genReq, ast.Decl, &ast.DeclPayload{Kind: ast.DeclType, Name: "unused_t"}, 2)
	ast.InsertNext(genReq, ast.AvRule, &ast.AVRulePayload{
		Flavor:      ast.AVAllow,
		Sources:     []string{"$1"},
		Targets:     []string{"self"},
		Classes:     []string{"file"},
		Permissions: []string{"read"},
	}, 3)

	findings := r.Run(ctx, decl)

	var gotUnused bool
	for _, f := range findings {
		if f.ID == "W-003" {
			gotUnused = true
		}
	}
	assert.True(t, gotUnused)
}

func TestDefaultRegistryFlagsGenContextWithoutRange(t *testing.T) {
	r := checks.DefaultRegistry()
	ctx := &checks.Context{Config: config.Default(), Tables: symtab.New(), Path: "foo.fc", Kind: loader.KindFc}

	n := &ast.Node{Flavor: ast.FcEntry, Payload: &ast.FCEntryPayload{
		Path:        "/var/www(/.*)?",
		HasContext:  true,
		Context:     &ast.FCContext{User: "system_u", Role: "object_r", Type: "httpd_sys_content_t", HasGenContext: true},
	}}
	findings := r.Run(ctx, n)

	var gotMissingRange bool
	for _, f := range findings {
		if f.ID == "S-007" {
			gotMissingRange = true
		}
	}
	assert.True(t, gotMissingRange)
}

func TestDefaultRegistryIgnoresGenContextWithRange(t *testing.T) {
	r := checks.DefaultRegistry()
	ctx := &checks.Context{Config: config.Default(), Tables: symtab.New(), Path: "foo.fc", Kind: loader.KindFc}

	n := &ast.Node{Flavor: ast.FcEntry, Payload: &ast.FCEntryPayload{
		Path:        "/var/www(/.*)?",
		HasContext:  true,
		Context:     &ast.FCContext{User: "system_u", Role: "object_r", Type: "httpd_sys_content_t", HasGenContext: true, Range: "s0"},
	}}
	findings := r.Run(ctx, n)
	for _, f := range findings {
		assert.NotEqual(t, "S-007", f.ID)
	}
}
