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

// Package ordering implements the refpolicy style-guide ordering checks of
// spec.md §4.F: section/subsection assignment and the longest-increasing-
// subsequence engine that finds a minimal set of out-of-order statements.
package ordering

import (
	"fmt"
	"strings"

	"github.com/selint-go/selint/ast"
	"github.com/selint-go/selint/symtab"
)

// Strictness selects how closely the style guide is enforced.
type Strictness int

const (
	// Ref enforces the style guide as written.
	Ref Strictness = iota
	// Light collapses the kernel-module, kernel, system and other-layer
	// interface-call subsections into one bucket; the rest of Ref's
	// subsection order still applies.
	Light
	// Lax additionally drops relative-order restrictions between
	// interface calls and blocks.
	Lax
)

// Reason is why two nodes compare unequal, used both to drive the sort and
// to explain a misordering to the user.
type Reason int

const (
	Equal Reason = iota
	BySection
	ByDeclarationSubsection
	ByLocalSubsection
	ByAlphabetical
	errOrdering Reason = -1024
)

// LocalSubsection is the fine-grained position of a rule or interface call
// within a module's local-policy section.
type LocalSubsection int

const (
	LSSSelf LocalSubsection = iota
	LSSOwn
	LSSRelated
	LSSKernelMod
	LSSKernel
	LSSSystem
	LSSOther
	LSSBuildOption
	LSSBoolean
	LSSTunable
	LSSOptional
	LSSUnknown
)

func (l LocalSubsection) String() string {
	switch l {
	case LSSSelf:
		return "self"
	case LSSOwn:
		return "own module rules"
	case LSSRelated:
		return "related module rules"
	case LSSKernelMod:
		return "kernel_mod"
	case LSSKernel:
		return "kernel"
	case LSSSystem:
		return "system"
	case LSSOther:
		return "general interfaces"
	case LSSBuildOption:
		return "build options"
	case LSSBoolean:
		return "conditional blocks"
	case LSSTunable:
		return "tunable policy blocks"
	case LSSOptional:
		return "optional policy blocks"
	default:
		return "unknown subsection"
	}
}

const (
	sectionDeclarations = "_declarations"
	sectionNonOrdered   = "_non_ordered"
)

// SectionData accumulates the count and line-sum of every node assigned to
// one section, so the average line number of a section can be compared
// against another section's.
type SectionData struct {
	Name        string
	LinenoCount uint
	LinesSum    uint
	AvgLine     float64
}

// Metadata is the per-file working set the ordering engine builds up:
// one SectionData per distinct section name, plus the LIS bookkeeping
// array populated by CalculateLIS.
type Metadata struct {
	ModName  string
	Sections map[string]*SectionData
	Nodes    []orderNode
}

type orderNode struct {
	node      *ast.Node
	seqPrev   int
	endOfSeq  int
	inOrder   bool
}

// PrepareMetadata walks head's sibling/descendant chain (head is the file
// node; its contents are ordered, not head itself), recording section line
// statistics. It does not populate the LIS node array; call
// CalculateLIS for that.
func PrepareMetadata(modName string, head *ast.Node) *Metadata {
	m := &Metadata{ModName: modName, Sections: make(map[string]*SectionData)}
	for cur := head.FirstChild; cur != nil; cur = ast.DFSNext(cur) {
		name := GetSection(cur)
		if name == "" {
			continue
		}
		AddSectionInfo(m.Sections, name, uint(cur.Lineno))
	}
	CalculateAverageLines(m.Sections)
	return m
}

// AddSectionInfo records one more line at lineno belonging to section name.
func AddSectionInfo(sections map[string]*SectionData, name string, lineno uint) {
	sd, ok := sections[name]
	if !ok {
		sd = &SectionData{Name: name}
		sections[name] = sd
	}
	sd.LinenoCount++
	sd.LinesSum += lineno
}

// CalculateAverageLines computes each section's average line number from
// its accumulated count and sum.
func CalculateAverageLines(sections map[string]*SectionData) {
	for _, sd := range sections {
		if sd.LinenoCount > 0 {
			sd.AvgLine = float64(sd.LinesSum) / float64(sd.LinenoCount)
		}
	}
}

// AvgLineByName returns a section's average line number, or -1 if no such
// section was recorded.
func AvgLineByName(sections map[string]*SectionData, name string) float64 {
	if sd, ok := sections[name]; ok {
		return sd.AvgLine
	}
	return -1
}

func isOptional(n *ast.Node) bool {
	ret := false
	for p := n; p != nil; p = p.Parent {
		switch p.Flavor {
		case ast.OptionalPolicy, ast.OptionalElse:
			ret = true
		case ast.TunablePolicy, ast.Ifdef:
			ret = false
		}
	}
	return ret
}

func isTunable(n *ast.Node) bool {
	ret := false
	for p := n; p != nil; p = p.Parent {
		switch p.Flavor {
		case ast.TunablePolicy:
			ret = true
		case ast.OptionalPolicy, ast.OptionalElse, ast.Ifdef:
			ret = false
		}
	}
	return ret
}

func isInIfdef(n *ast.Node) bool {
	ret := false
	for p := n; p != nil; p = p.Parent {
		switch p.Flavor {
		case ast.Ifdef:
			ret = true
		case ast.OptionalPolicy, ast.OptionalElse, ast.TunablePolicy:
			ret = false
		}
	}
	return ret
}

// GetSection returns the name of the section a node belongs to: either the
// name of a type (the first source of the rule or call), or one of the two
// special names "_declarations" and "_non_ordered". Nodes that do not
// participate in ordering (file-root nodes, fc/if-only nodes) return "".
func GetSection(n *ast.Node) string {
	if n == nil {
		return ""
	}
	switch n.Flavor {
	case ast.TEFile, ast.IfFile, ast.FcFile, ast.SptFile:
		return ""
	case ast.Header:
		return sectionNonOrdered
	case ast.AvRule:
		p := n.Payload.(*ast.AVRulePayload)
		if p.Flavor == ast.AVNeverAllow || p.Flavor == ast.AVAuditAllow {
			return sectionNonOrdered
		}
		for _, perm := range p.Permissions {
			if perm == "associate" || perm == "mounton" {
				return sectionNonOrdered
			}
		}
		if len(p.Sources) == 0 {
			return sectionNonOrdered
		}
		return p.Sources[0]
	case ast.TtRule:
		p := n.Payload.(*ast.TTRulePayload)
		if len(p.Sources) == 0 {
			return sectionNonOrdered
		}
		return p.Sources[0]
	case ast.RtRule, ast.RoleAllow, ast.RoleTypes:
		return sectionNonOrdered
	case ast.Decl, ast.Alias, ast.TypeAlias, ast.TypeAttribute, ast.RoleAttribute:
		if ast.IsInRequire(n) {
			return sectionNonOrdered
		}
		return sectionDeclarations
	case ast.M4Call:
		return sectionNonOrdered
	case ast.OptionalPolicy, ast.OptionalElse, ast.TunablePolicy, ast.Ifdef:
		return GetSection(n.FirstChild)
	case ast.M4Arg:
		return sectionNonOrdered
	case ast.StartBlock:
		if n.Next != nil {
			return GetSection(n.Next)
		}
		return sectionNonOrdered
	case ast.IfCall:
		return getIfCallSection(n)
	case ast.TempDef, ast.InterfaceDef:
		return ""
	case ast.Require, ast.GenReq, ast.Permissive:
		return sectionNonOrdered
	case ast.FcEntry:
		return ""
	case ast.Comment, ast.Empty, ast.Semicolon, ast.Error:
		return sectionNonOrdered
	default:
		return ""
	}
}

func getIfCallSection(n *ast.Node) string {
	p := n.Payload.(*ast.IfCallPayload)
	if tables, ok := tablesOf(n); ok && tables.IsFiletransIf(p.Name) {
		return sectionNonOrdered
	}
	tables, haveTables := tablesOf(n)
	if haveTables && !isOptional(n) && !isInIfdef(n) && !isTunable(n) {
		_, isTemplate := tables.TemplateOf(p.Name)
		if isTemplate || tables.IsTransformIf(p.Name) || tables.IsRoleIf(p.Name) {
			return sectionDeclarations
		}
	}
	if len(p.Args) > 0 {
		return p.Args[0].Text
	}
	return sectionNonOrdered
}

// activeTables lets GetSection consult the symbol tables without requiring
// every call site to thread them through explicitly; checks call
// SetTables once per Tables instance before running ordering checks.
var activeTables *symtab.Tables

// SetTables installs the symbol tables GetSection and GetLocalSubsection
// consult for template/transform/role-interface classification.
func SetTables(t *symtab.Tables) { activeTables = t }

func tablesOf(_ *ast.Node) (*symtab.Tables, bool) {
	if activeTables == nil {
		return nil, false
	}
	return activeTables, true
}

func isSelfRule(n *ast.Node) bool {
	if n.Flavor != ast.AvRule {
		return false
	}
	p := n.Payload.(*ast.AVRulePayload)
	for _, t := range p.Targets {
		if t == "self" {
			return true
		}
	}
	return false
}

func isOwnModuleRule(n *ast.Node, modName string) bool {
	if n.Flavor != ast.AvRule && n.Flavor != ast.IfCall {
		return false
	}
	tables, ok := tablesOf(n)
	if !ok {
		return false
	}
	if n.Flavor == ast.IfCall {
		p := n.Payload.(*ast.IfCallPayload)
		if _, known := tables.ModuleOfInterface(p.Name); known {
			return false
		}
	}
	for _, e := range ast.GetNamesInNode(n).Entries {
		mod, found := tables.LookupDecl(e.Name, ast.DeclType)
		if !found {
			mod, found = tables.LookupDecl(e.Name, ast.DeclTypeAttribute)
		}
		if found && mod != modName {
			return false
		}
	}
	return true
}

func isKernelModIfCall(n *ast.Node) bool {
	if n.Flavor != ast.IfCall {
		return false
	}
	tables, ok := tablesOf(n)
	if !ok {
		return false
	}
	p := n.Payload.(*ast.IfCallPayload)
	mod, found := tables.ModuleOfInterface(p.Name)
	return found && mod == "kernel"
}

func isOwnModIfCall(n *ast.Node, modName string) bool {
	if n.Flavor != ast.IfCall {
		return false
	}
	tables, ok := tablesOf(n)
	if !ok {
		return false
	}
	p := n.Payload.(*ast.IfCallPayload)
	mod, found := tables.ModuleOfInterface(p.Name)
	if !found {
		return false
	}
	return modName == "" || modName == mod
}

func checkCallLayer(n *ast.Node, layer string) bool {
	if n.Flavor != ast.IfCall {
		return false
	}
	tables, ok := tablesOf(n)
	if !ok {
		return false
	}
	p := n.Payload.(*ast.IfCallPayload)
	mod, found := tables.ModuleOfInterface(p.Name)
	if !found {
		return false
	}
	l, found := tables.LayerOf(mod)
	return found && l == layer
}

// GetLocalSubsection classifies node into its position within mod_name's
// local-policy section.
func GetLocalSubsection(modName string, n *ast.Node) LocalSubsection {
	if n == nil {
		return LSSUnknown
	}
	switch {
	case isInIfdef(n):
		return LSSBuildOption
	case isOptional(n):
		return LSSOptional
	case isTunable(n):
		return LSSTunable
	case isSelfRule(n):
		return LSSSelf
	case isOwnModuleRule(n, modName):
		return LSSOwn
	case isOwnModIfCall(n, modName):
		return LSSOwn
	case isKernelModIfCall(n):
		return LSSKernelMod
	case checkCallLayer(n, "kernel"):
		return LSSKernel
	case checkCallLayer(n, "system"):
		return LSSSystem
	case n.Flavor == ast.IfCall:
		return LSSOther
	default:
		return LSSUnknown
	}
}

// isSameSection implements the refpolicy "foo_t/foo_r/foo are the same
// section" collapsing rule.
func isSameSection(a, b string) bool {
	trim := func(s string) string {
		if len(s) >= 3 && s[len(s)-2] == '_' && (s[len(s)-1] == 't' || s[len(s)-1] == 'r') {
			return s[:len(s)-2]
		}
		return s
	}
	ta, tb := trim(a), trim(b)
	n := len(ta)
	if len(tb) > n {
		n = len(tb)
	}
	if len(ta) < n || len(tb) < n {
		return false
	}
	return ta[:n] == tb[:n]
}

// Compare implements compare_nodes_refpolicy_generic: it returns a positive
// value if second should follow first, negative if second should precede
// first, and Equal (0) if either order is acceptable.
func Compare(sections map[string]*SectionData, modName string, first, second *ast.Node, variant Strictness) Reason {
	firstSection := GetSection(first)
	secondSection := GetSection(second)
	if firstSection == "" || secondSection == "" {
		return errOrdering
	}
	if firstSection == sectionNonOrdered || secondSection == sectionNonOrdered {
		return Equal
	}

	if !isSameSection(firstSection, secondSection) {
		declOther := secondSection == sectionDeclarations
		laterAvg := AvgLineByName(sections, firstSection) > AvgLineByName(sections, secondSection)
		rawAlphaOK := firstSection[0] != '_' && secondSection[0] != '_' && firstSection < secondSection
		if firstSection != sectionDeclarations && (declOther || laterAvg) && !rawAlphaOK {
			return negReason(BySection)
		}
		return BySection
	}

	if firstSection == sectionDeclarations {
		if first.Flavor == ast.Decl && second.Flavor == ast.Decl {
			fp := first.Payload.(*ast.DeclPayload)
			sp := second.Payload.(*ast.DeclPayload)
			if fp.Kind != sp.Kind {
				if r := checkOrdering(fp.Kind, sp.Kind, ast.DeclBool); r != Equal {
					return r
				}
				if r := checkOrdering(fp.Kind, sp.Kind, ast.DeclTypeAttribute); r != Equal {
					return r
				}
			}
		}
		return Equal
	}

	lssFirst := GetLocalSubsection(modName, first)
	lssSecond := GetLocalSubsection(modName, second)
	if lssFirst == LSSUnknown || lssSecond == LSSUnknown {
		return Equal
	}

	if r := checkLSSOrdering(lssFirst, lssSecond, LSSSelf); r != Equal {
		return r
	}
	if r := checkLSSOrdering(lssFirst, lssSecond, LSSOwn); r != Equal {
		return r
	}
	if variant == Light {
		collapse := func(l LocalSubsection) LocalSubsection {
			if l >= LSSKernelMod && l <= LSSOther {
				return LSSOther
			}
			return l
		}
		lssFirst, lssSecond = collapse(lssFirst), collapse(lssSecond)
	}
	if variant == Ref || variant == Light {
		order := []LocalSubsection{LSSKernelMod, LSSKernel, LSSSystem, LSSOther, LSSBuildOption, LSSBoolean, LSSTunable, LSSOptional}
		for _, lss := range order {
			if r := checkLSSOrdering(lssFirst, lssSecond, lss); r != Equal {
				return r
			}
		}
	}
	return Equal
}

func negReason(r Reason) Reason { return -r }

// checkOrdering returns ByDeclarationSubsection (or its negation) if
// exactly one of a, b equals want; Equal otherwise.
func checkOrdering(a, b, want ast.DeclKind) Reason {
	if a == want {
		return ByDeclarationSubsection
	}
	if b == want {
		return negReason(ByDeclarationSubsection)
	}
	return Equal
}

func checkLSSOrdering(a, b, want LocalSubsection) Reason {
	if a == want {
		return ByLocalSubsection
	}
	if b == want {
		return negReason(ByLocalSubsection)
	}
	return Equal
}

// CalculateLIS runs the patience-sorting longest-increasing-subsequence
// algorithm over head's contents using comp as the strict-weak-ordering
// comparator, and marks the nodes of one longest increasing subsequence
// (the backpointer chain from the last recorded sequence end) as in-order.
// Everything else is a minimal candidate set of misordered statements.
func CalculateLIS(head *ast.Node, m *Metadata, comp func(first, second *ast.Node) Reason) {
	var flat []*ast.Node
	for cur := head.FirstChild; cur != nil; cur = ast.DFSNext(cur) {
		if cur.Flavor == ast.StartBlock {
			continue
		}
		flat = append(flat, cur)
	}

	n := len(flat)
	m.Nodes = make([]orderNode, n)
	longestSeq := 0

	for index, node := range flat {
		m.Nodes[index].node = node
		m.Nodes[index].seqPrev = -1

		low, high := 1, longestSeq
		for low <= high {
			mid := (low + high + 1) / 2
			if comp(m.Nodes[m.Nodes[mid-1].endOfSeq].node, node) >= 0 {
				low = mid + 1
			} else {
				high = mid - 1
			}
		}

		if low > 1 {
			m.Nodes[index].seqPrev = m.Nodes[low-2].endOfSeq
		}
		m.Nodes[low-1].endOfSeq = index
		if low > longestSeq {
			longestSeq = low
		}
	}

	if longestSeq == 0 {
		return
	}
	idx := m.Nodes[longestSeq-1].endOfSeq
	for idx != -1 {
		m.Nodes[idx].inOrder = true
		idx = m.Nodes[idx].seqPrev
	}
}

// Misordered returns every node CalculateLIS did not mark as in-order.
func Misordered(m *Metadata) []*ast.Node {
	var out []*ast.Node
	for _, on := range m.Nodes {
		if on.node != nil && !on.inOrder {
			out = append(out, on.node)
		}
	}
	return out
}

// IndexOf returns n's position in m.Nodes, or -1 if CalculateLIS never
// recorded it (n isn't a top-level statement of the ordered file).
func IndexOf(m *Metadata, n *ast.Node) int {
	for i, on := range m.Nodes {
		if on.node == n {
			return i
		}
	}
	return -1
}

// CompareFunc adapts Compare into the comparator signature CalculateLIS
// expects, closing over the metadata and strictness variant.
func CompareFunc(m *Metadata, variant Strictness) func(first, second *ast.Node) Reason {
	return func(first, second *ast.Node) Reason {
		return Compare(m.Sections, m.ModName, first, second, variant)
	}
}

// ExplainReason produces a human-readable explanation of why the node at
// index is out of order, by searching outward for the nearest node that is
// both in-order and relatively out-of-order with it.
func ExplainReason(m *Metadata, index int, variant Strictness) string {
	distance := 1
	nearestIndex := -1
	var reason Reason

	for nearestIndex == -1 {
		if distance <= index && m.Nodes[index-distance].inOrder {
			reason = Compare(m.Sections, m.ModName, m.Nodes[index-distance].node, m.Nodes[index].node, variant)
			if reason < 0 {
				nearestIndex = index - distance
				break
			}
		}
		if index+distance < len(m.Nodes) && m.Nodes[index+distance].inOrder {
			reason = Compare(m.Sections, m.ModName, m.Nodes[index].node, m.Nodes[index+distance].node, variant)
			if reason < 0 {
				nearestIndex = index + distance
				break
			}
		}
		distance++
		if distance > index && index+distance > len(m.Nodes) {
			return ""
		}
	}

	thisNode := m.Nodes[index].node
	otherNode := m.Nodes[nearestIndex].node

	beforeAfter := "after"
	if nearestIndex > index {
		beforeAfter = "before"
	}

	var reasonStr, followup string
	switch -reason {
	case BySection:
		nodeSection := GetSection(thisNode)
		otherSection := GetSection(otherNode)
		switch {
		case nodeSection == sectionDeclarations:
			reasonStr = "that is not a declaration"
		case otherSection == sectionDeclarations:
			if otherNode.Flavor == ast.IfCall {
				if tables, ok := tablesOf(otherNode); ok {
					p := otherNode.Payload.(*ast.IfCallPayload)
					if tables.IsTransformIf(p.Name) {
						reasonStr = "that is a transform interface"
						break
					}
				}
			}
			reasonStr = "that is a declaration"
		default:
			reasonStr = "that is in a different section"
			followup = fmt.Sprintf("  (This node is in the section for %s rules and the other is in the section for %s rules.)", nodeSection, otherSection)
		}
	case ByDeclarationSubsection:
		reasonStr = "that is associated with a different sort of declaration"
	case ByLocalSubsection:
		otherLSS := GetLocalSubsection(m.ModName, otherNode)
		switch otherLSS {
		case LSSSelf:
			reasonStr = "that is a self rule"
		case LSSOwn:
			reasonStr = "that refers to types owned by this module"
		case LSSKernelMod:
			reasonStr = "that calls an interface located in the kernel module"
		case LSSKernel:
			reasonStr = "that calls an interface located in the kernel layer"
		case LSSSystem:
			reasonStr = "that calls an interface located in the system layer"
		case LSSOther:
			reasonStr = "that calls an interface not located in the kernel or system layer"
		case LSSBuildOption:
			reasonStr = "that is controlled by a build option"
		case LSSBoolean:
			reasonStr = "that is in a conditional policy block"
		case LSSTunable:
			reasonStr = "that is in a tunable block"
		case LSSOptional:
			reasonStr = "that is in an optional block"
		default:
			return ""
		}
		if otherLSS == LSSKernel || otherLSS == LSSSystem || otherLSS == LSSOther {
			thisLSS := GetLocalSubsection(m.ModName, thisNode)
			switch thisLSS {
			case LSSKernel, LSSSystem:
				followup = fmt.Sprintf("  (This interface is in the %s layer.)", thisLSS)
			case LSSOther:
				followup = "  (This interface is in a layer other than kernel or system)"
			case LSSKernelMod:
				followup = "  (This interface is in the kernel module.)"
			}
		}
	case ByAlphabetical:
		if nearestIndex > index {
			reasonStr = "that is alphabetically earlier"
		} else {
			reasonStr = "that is alphabetically later"
		}
	default:
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Line out of order.  It is of type %s %s line %d %s.",
		GetLocalSubsection(m.ModName, thisNode), beforeAfter, otherNode.Lineno, reasonStr)
	if followup != "" {
		b.WriteString(followup)
	}
	return b.String()
}
