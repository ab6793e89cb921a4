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

// Package report formats and aggregates findings for display, per spec.md
// §4.H.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gookit/color"
)

// Severity is one of the five check severities, ordered from least to most
// serious.
type Severity byte

const (
	Convention  Severity = 'C'
	Style       Severity = 'S'
	Warning     Severity = 'W'
	Error       Severity = 'E'
	Fatal       Severity = 'F'
)

func (s Severity) rank() int {
	switch s {
	case Convention:
		return 0
	case Style:
		return 1
	case Warning:
		return 2
	case Error:
		return 3
	case Fatal:
		return 4
	default:
		return -1
	}
}

func (s Severity) colorize(text string) string {
	switch s {
	case Convention:
		return color.FgBlue.Render(text)
	case Style:
		return color.FgCyan.Render(text)
	case Warning:
		return color.FgYellow.Render(text)
	case Error, Fatal:
		return color.FgRed.Render(text)
	default:
		return text
	}
}

// Finding is one reported issue at a specific source location.
type Finding struct {
	Path     string
	Line     int
	Severity Severity
	ID       string // e.g. "W-010"
	Message  string
}

// pathColumnWidth is how far the filename field is padded before the line
// number, matching the fixed-width alignment of the reference tool's
// plain-text report.
const pathColumnWidth = 22

// Format renders a single finding as one line of text, colorized with
// ANSI escapes via gookit/color when color is true. The line number is
// right-justified in a field sized so that short filenames line up in a
// column, matching the reference tool's display_check_result layout.
func Format(f Finding, useColor bool) string {
	numStr := fmt.Sprintf("%d", f.Line)
	if width := pathColumnWidth - len(f.Path); width > len(numStr) {
		numStr = strings.Repeat(" ", width-len(numStr)) + numStr
	}
	tag := fmt.Sprintf("(%c)", byte(f.Severity))
	if useColor {
		tag = f.Severity.colorize(tag)
	}
	return fmt.Sprintf("%s:%s: %s: %s (%s)", f.Path, numStr, tag, f.Message, f.ID)
}

// Summary aggregates a collapsed, severity-then-ID sorted view of a
// finding set: duplicate (Path, Line, ID) pairs collapse to one entry.
func Summary(findings []Finding) []Finding {
	seen := make(map[string]bool, len(findings))
	out := make([]Finding, 0, len(findings))
	for _, f := range findings {
		key := fmt.Sprintf("%s:%d:%s", f.Path, f.Line, f.ID)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, f)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Severity.rank() != out[j].Severity.rank() {
			return out[i].Severity.rank() < out[j].Severity.rank()
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// CountBySeverity tallies findings per severity, for an end-of-run summary
// line.
func CountBySeverity(findings []Finding) map[Severity]int {
	counts := make(map[Severity]int)
	for _, f := range findings {
		counts[f.Severity]++
	}
	return counts
}
