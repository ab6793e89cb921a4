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

package checks

// DefaultRegistry builds the full catalog of node-local checks. C-001 (the
// ordering check) is not part of it: it runs separately, once per .te
// file, via CheckOrdering.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	registerCChecks(r)
	registerSChecks(r)
	registerWChecks(r)
	registerEChecks(r)
	return r
}
