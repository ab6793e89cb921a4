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

package report_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/selint-go/selint/report"
)

func TestReport(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Report Suite")
}

var _ = Describe("Format", func() {
	It("renders a plain, uncolored finding line", func() {
		f := report.Finding{Path: "foo.te", Line: 12, Severity: report.Warning, ID: "W-010", Message: "something looks off"}
		line := report.Format(f, false)
		Expect(line).To(ContainSubstring("foo.te:"))
		Expect(line).To(ContainSubstring("12:"))
		Expect(line).To(ContainSubstring("(W)"))
		Expect(line).ToNot(ContainSubstring("warning"))
		Expect(line).To(ContainSubstring("something looks off"))
		Expect(line).To(ContainSubstring("(W-010)"))
	})
})

var _ = Describe("Summary", func() {
	It("collapses duplicate findings and sorts by ascending severity then ID", func() {
		findings := []report.Finding{
			{Path: "a.te", Line: 1, Severity: report.Style, ID: "S-002", Message: "x"},
			{Path: "a.te", Line: 1, Severity: report.Style, ID: "S-002", Message: "x"}, // duplicate
			{Path: "a.te", Line: 2, Severity: report.Error, ID: "E-001", Message: "y"},
			{Path: "a.te", Line: 3, Severity: report.Convention, ID: "C-005", Message: "z"},
		}
		out := report.Summary(findings)
		Expect(out).To(HaveLen(3))
		Expect(out[0].ID).To(Equal("C-005"))
		Expect(out[1].ID).To(Equal("S-002"))
		Expect(out[2].ID).To(Equal("E-001"))
	})
})

var _ = Describe("CountBySeverity", func() {
	It("tallies findings per severity", func() {
		findings := []report.Finding{
			{Severity: report.Warning}, {Severity: report.Warning}, {Severity: report.Error},
		}
		counts := report.CountBySeverity(findings)
		Expect(counts[report.Warning]).To(Equal(2))
		Expect(counts[report.Error]).To(Equal(1))
	})
})
