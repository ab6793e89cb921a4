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

// Command selint is the thin external collaborator spec.md §1 describes by
// interface only: flag parsing, the recursive directory walk, YAML config
// loading, and the exit-code mapping of spec.md §6 around the core engine
// in ast/symtab/infer/ordering/permmacro/checks.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/selint-go/selint/ast"
	"github.com/selint-go/selint/checks"
	"github.com/selint-go/selint/config"
	"github.com/selint-go/selint/loader"
	"github.com/selint-go/selint/report"
	"github.com/selint-go/selint/selinterr"
)

var (
	configPath string
	useColor   bool
	failOn     string
)

func main() {
	root := &cobra.Command{
		Use:   "selint [paths...]",
		Short: "Lint SELinux reference-policy source",
		Long: `selint walks one or more directories of reference-policy source
(.te/.if/.fc files, plus .spt permission-set files such as
obj_perm_sets.spt; access_vectors and modules.conf are not read),
builds the policy's symbol tables, and reports convention, style, warning,
error and fatal findings.`,
		RunE: run,
	}

	root.Flags().StringVarP(&configPath, "config", "c", "", "path to a selint.yml configuration file")
	root.Flags().BoolVar(&useColor, "color", true, "colorize findings")
	root.Flags().StringVar(&failOn, "fail-on", "W", "minimum severity that causes a nonzero exit (C, S, W, E, F)")

	if err := root.Execute(); err != nil {
		var serr *selinterr.Error
		if ok := asSelintError(err, &serr); ok {
			fmt.Fprintln(os.Stderr, serr.Error())
			os.Exit(serr.Code.ExitCode())
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func asSelintError(err error, out **selinterr.Error) bool {
	for e := err; e != nil; {
		if se, ok := e.(*selinterr.Error); ok {
			*out = se
			return true
		}
		u, ok := e.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		e = u.Unwrap()
	}
	return false
}

func run(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		args = []string{"."}
	}

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return selinterr.Wrap(selinterr.ConfigParseError, configPath, err)
		}
		cfg = loaded
	}

	files, err := discoverSourceFiles(args)
	if err != nil {
		return selinterr.Wrap(selinterr.IOError, "walking input paths", err)
	}

	result, err := loader.Load(context.Background(), unimplementedParser{}, files)
	if err != nil {
		return selinterr.Wrap(selinterr.ParseError, "loading policy source", err)
	}

	registry := checks.DefaultRegistry()
	var findings []report.Finding

	for module, head := range result.TEFiles {
		path := sourcePathFor(files, module, loader.KindTE)
		ctx := &checks.Context{Tables: result.Tables, Config: cfg, Module: module, Path: path, Kind: loader.KindTE}
		findings = append(findings, registry.Run(ctx, head)...)
		findings = append(findings, checks.CheckOrdering(cfg, result.Tables, path, module, head)...)
	}
	for module, head := range result.IfFiles {
		path := sourcePathFor(files, module, loader.KindIf)
		ctx := &checks.Context{Tables: result.Tables, Config: cfg, Module: module, Path: path, Kind: loader.KindIf}
		findings = append(findings, registry.Run(ctx, head)...)
	}
	for module, head := range result.FcFiles {
		path := sourcePathFor(files, module, loader.KindFc)
		ctx := &checks.Context{Tables: result.Tables, Config: cfg, Module: module, Path: path, Kind: loader.KindFc}
		findings = append(findings, registry.Run(ctx, head)...)
	}

	findings = report.Summary(findings)
	for _, f := range findings {
		fmt.Println(report.Format(f, useColor))
	}

	counts := report.CountBySeverity(findings)
	threshold := "W"
	if len(failOn) > 0 {
		threshold = failOn
	}
	failCfg := &config.Config{SeverityThreshold: threshold}
	for sev, n := range counts {
		if n > 0 && failCfg.SeverityAtLeast(byte(sev)) {
			os.Exit(1)
		}
	}
	return nil
}

// sourcePathFor recovers the on-disk path for a module's file of kind k,
// since loader.LoadResult indexes parsed trees by module name only.
func sourcePathFor(files []loader.SourceFile, module string, k loader.FileKind) string {
	for _, f := range files {
		if f.Module == module && f.Kind == k {
			return f.Path
		}
	}
	return module
}

func discoverSourceFiles(roots []string) ([]loader.SourceFile, error) {
	var files []loader.SourceFile
	for _, root := range roots {
		err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				return nil
			}
			kind := loader.ClassifyFile(path)
			if kind == loader.KindUnknown {
				return nil
			}
			contents, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			files = append(files, loader.SourceFile{
				Path:     path,
				Kind:     kind,
				Module:   loader.ModuleNameFromPath(path),
				Layer:    filepath.Base(filepath.Dir(path)),
				Contents: contents,
			})
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

// unimplementedParser is the seam spec.md §1 names as an external
// collaborator: the concrete refpolicy grammar/lexer is out of the core's
// scope and is swapped in here once available.
type unimplementedParser struct{}

func (unimplementedParser) Parse(_ context.Context, _ loader.FileKind, path string, _ []byte) (*ast.Node, error) {
	return nil, fmt.Errorf("selint: no refpolicy parser wired in for %s", path)
}
