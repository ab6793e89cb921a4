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

// Package checks is the check-dispatch framework of spec.md §4.I: a
// registry of node-local check functions indexed by AST flavor, run over a
// loaded policy tree and filtered by severity threshold, enable/disable
// lists, and per-node selint-disable exceptions.
package checks

import (
	"strconv"

	"github.com/selint-go/selint/ast"
	"github.com/selint-go/selint/config"
	"github.com/selint-go/selint/loader"
	"github.com/selint-go/selint/permmacro"
	"github.com/selint-go/selint/report"
	"github.com/selint-go/selint/symtab"
)

// Context is the read-only metadata a check function needs about the file
// and analysis state it is running against, mirroring struct check_data.
type Context struct {
	Tables  *symtab.Tables
	Config  *config.Config
	Module  string
	Path    string
	Kind    loader.FileKind
	Catalog *permmacro.Catalog
}

// CheckFunc inspects one node and reports whether it found an issue, and if
// so, the message to report. Severity and check ID are supplied at
// registration rather than by the function itself, since both are fixed
// per check.
type CheckFunc func(ctx *Context, n *ast.Node) (message string, hit bool)

type registeredCheck struct {
	id       string
	severity report.Severity
	fn       CheckFunc
}

// Registry holds every check function, indexed by the node flavor it
// applies to.
type Registry struct {
	byFlavor map[ast.Flavor][]registeredCheck
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byFlavor: make(map[ast.Flavor][]registeredCheck)}
}

// Register adds a check function for a given node flavor.
func (r *Registry) Register(flavor ast.Flavor, id string, severity report.Severity, fn CheckFunc) {
	r.byFlavor[flavor] = append(r.byFlavor[flavor], registeredCheck{id: id, severity: severity, fn: fn})
}

// ValidCheckID reports whether id has the "<severity-letter>-<digits>" shape
// call_checks's is_valid_check enforces, e.g. when validating a user's
// selint-disable comment or config override.
func ValidCheckID(id string) bool {
	if len(id) < 3 || id[1] != '-' {
		return false
	}
	switch id[0] {
	case 'C', 'S', 'W', 'E', 'F':
	default:
		return false
	}
	n, err := strconv.Atoi(id[2:])
	return err == nil && n > 0
}

// Run walks the subtree rooted at head in depth-first pre-order, invoking
// every check registered for each node's flavor and collecting the
// findings that pass the configured severity threshold, aren't excluded
// by a selint-disable comment on that node, and aren't disabled in config.
func (r *Registry) Run(ctx *Context, head *ast.Node) []report.Finding {
	var findings []report.Finding
	for n := head; n != nil; n = ast.DFSNext(n) {
		for _, rc := range r.byFlavor[n.Flavor] {
			if n.HasDisabledCheck(rc.id) {
				continue
			}
			if ctx.Config != nil && !ctx.Config.CheckEnabled(rc.id) {
				continue
			}
			if ctx.Config != nil && !ctx.Config.SeverityAtLeast(byte(rc.severity)) {
				continue
			}
			msg, hit := rc.fn(ctx, n)
			if !hit {
				continue
			}
			findings = append(findings, report.Finding{
				Path:     ctx.Path,
				Line:     n.Lineno,
				Severity: rc.severity,
				ID:       rc.id,
				Message:  msg,
			})
		}
	}
	return findings
}
