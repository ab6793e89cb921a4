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

// Package selinterr defines the error taxonomy of spec.md §7 and the exit
// codes cmd/selint maps them to.
package selinterr

import "fmt"

// Code is one of the fixed error kinds the engine can report.
type Code int

const (
	Success Code = iota
	BadArg
	OutOfMemory
	NoModName
	NotInBlock
	IfCallLoop
	ParseError
	M4SubFailure
	ConfigParseError
	IOError
)

func (c Code) String() string {
	switch c {
	case Success:
		return "success"
	case BadArg:
		return "bad argument"
	case OutOfMemory:
		return "out of memory"
	case NoModName:
		return "no module name"
	case NotInBlock:
		return "not in expected block"
	case IfCallLoop:
		return "interface call loop"
	case ParseError:
		return "parse error"
	case M4SubFailure:
		return "m4 substitution failure"
	case ConfigParseError:
		return "config parse error"
	case IOError:
		return "I/O error"
	default:
		return "unknown error"
	}
}

// ExitCode maps a Code to the process exit status cmd/selint returns,
// following the conventional split between usage errors, software errors,
// data errors (the input itself was bad), and config errors.
func (c Code) ExitCode() int {
	switch c {
	case Success:
		return 0
	case BadArg:
		return 64 // EX_USAGE
	case OutOfMemory, IfCallLoop:
		return 70 // EX_SOFTWARE
	case NoModName, NotInBlock, ParseError, M4SubFailure:
		return 65 // EX_DATAERR
	case ConfigParseError:
		return 78 // EX_CONFIG
	case IOError:
		return 74 // EX_IOERR
	default:
		return 1
	}
}

// Error is a Code carrying additional context. Unwrap exposes the wrapped
// cause, and Is matches any *Error with the same Code.
type Error struct {
	Code    Code
	Context string
	Err     error
}

func (e *Error) Error() string {
	if e.Context != "" {
		if e.Err != nil {
			return fmt.Sprintf("%s: %s: %v", e.Code, e.Context, e.Err)
		}
		return fmt.Sprintf("%s: %s", e.Code, e.Context)
	}
	return e.Code.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error with the same Code, so
// errors.Is(err, selinterr.New(selinterr.ParseError, "")) works regardless
// of Context/Err.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// New constructs an *Error with no wrapped cause.
func New(code Code, context string) *Error {
	return &Error{Code: code, Context: context}
}

// Wrap constructs an *Error around an underlying cause.
func Wrap(code Code, context string, err error) *Error {
	return &Error{Code: code, Context: context, Err: err}
}
