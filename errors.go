package typeclass

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	// Contract declaration
	CodeInvalidName        = "invalid_name"
	CodeDuplicateOperation = "duplicate_operation"
	CodeNilType            = "nil_type"
	// Binding a concrete type to a contract
	CodeMissingMethod    = "missing_method"
	CodeArityMismatch    = "arity_mismatch"
	CodeParamType        = "param_type"
	CodeResultType       = "result_type"
	CodeVariadicMismatch = "variadic_mismatch"
	// Dynamic invocation
	CodeUnknownOperation = "unknown_operation"
	CodeArgCount         = "arg_count"
	CodeArgType          = "arg_type"
	// Declaration documents
	CodeUnknownType  = "unknown_type"
	CodeParseError   = "parse_error"
	CodeDuplicateKey = "duplicate_key"
)

// Issue represents a single contract or call problem.
type Issue struct {
	Path    string // JSON Pointer (for example: /operations/Produce/results/0).
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: remediation hints such as the expected signature.
	Cause   error  // Optional: underlying error.
	// Params carries structured parameters (e.g., {"want":"int", "got":"string"})
	// for i18n and tooling.
	Params map[string]any
}

// Issues is a collection of problems that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. missing_method at /operations/Produce
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// ErrContractViolation matches every *ContractViolation through errors.Is.
var ErrContractViolation = errors.New("typeclass: contract violation")

// ErrMovedFrom is reported when a moved-from container is used for anything
// other than destruction or reassignment.
var ErrMovedFrom = errors.New("typeclass: use of moved-from container")

// ErrDestroyed is reported when a destroyed container is used for anything
// other than reassignment.
var ErrDestroyed = errors.New("typeclass: use of destroyed container")

// ErrContractMismatch indicates two containers or a container and an
// operation handle belong to different contracts.
var ErrContractMismatch = errors.New("typeclass: contract mismatch")

// ContractViolation reports that a concrete type does not structurally
// satisfy a contract. It is returned before any container is built.
type ContractViolation struct {
	Contract string
	Type     reflect.Type
	Issues   Issues
}

func (e *ContractViolation) Error() string {
	return fmt.Sprintf("typeclass: %s does not satisfy contract %s: %s", typeName(e.Type), e.Contract, e.Issues.Error())
}

// Unwrap exposes the issues so AsIssues works on violations.
func (e *ContractViolation) Unwrap() error { return e.Issues }

// Is makes errors.Is(err, ErrContractViolation) hold.
func (e *ContractViolation) Is(target error) bool { return target == ErrContractViolation }

// InvariantError is the panic value raised when the dispatch table is
// corrupted (wrong slot index or a thunk whose real signature differs from
// the declared operation). It signals a defect in this package.
type InvariantError struct {
	Msg string
}

func (e *InvariantError) Error() string { return "typeclass: internal invariant failure: " + e.Msg }

// invariantf panics with an InvariantError.
//
//go:noinline
func invariantf(format string, a ...any) {
	panic(&InvariantError{Msg: fmt.Sprintf(format, a...)})
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
