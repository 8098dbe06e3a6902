package typeclass

import (
	"reflect"
)

var errorType = reflect.TypeFor[error]()

// methodRef locates one operation's method on a concrete type.
type methodRef struct {
	index int  // index in the receiver's method set
	ptr   bool // found only in the pointer method set (*T)
}

// resolveMethods applies the repository-wide matching rule: a method matches
// an operation when the names are equal and parameter types, result types and
// the variadic flag are identical. No conversion is attempted.
// allowPtr also searches the method set of *t.
func resolveMethods(c *Contract, t reflect.Type, allowPtr bool) ([]methodRef, Issues) {
	refs := make([]methodRef, len(c.ops))
	var iss Issues
	root := Root().Field("operations")
	// interface method types carry no receiver
	skip := 1
	if t.Kind() == reflect.Interface {
		skip = 0
	}
	canPtr := t.Kind() != reflect.Interface && t.Kind() != reflect.Pointer
	for i, op := range c.ops {
		at := root.Field(op.Name)
		m, ok := t.MethodByName(op.Name)
		ptr := false
		if !ok && canPtr {
			if pm, found := reflect.PointerTo(t).MethodByName(op.Name); found {
				if allowPtr {
					m, ok, ptr = pm, true, true
				} else {
					it := at.Issue(CodeMissingMethod, "op", op.Name, "want", op.Signature())
					it.Hint = "method has a pointer receiver"
					iss = AppendIssues(iss, it)
					continue
				}
			}
		}
		if !ok {
			it := at.Issue(CodeMissingMethod, "op", op.Name, "want", op.Signature())
			it.Hint = op.Signature()
			iss = AppendIssues(iss, it)
			continue
		}
		ft := m.Type
		got := operationOf(op.Name, ft, skip)
		if len(got.Params) != len(op.Params) || len(got.Results) != len(op.Results) {
			iss = AppendIssues(iss, at.Issue(CodeArityMismatch, "op", op.Name, "want", op.Signature(), "got", got.Signature()))
			continue
		}
		if got.Variadic != op.Variadic {
			iss = AppendIssues(iss, at.Issue(CodeVariadicMismatch, "op", op.Name, "want", op.Signature(), "got", got.Signature()))
			continue
		}
		mismatch := false
		for j, p := range op.Params {
			if got.Params[j] != p {
				iss = AppendIssues(iss, at.Field("params").Index(j).Issue(CodeParamType, "op", op.Name, "want", typeName(p), "got", typeName(got.Params[j])))
				mismatch = true
			}
		}
		for j, r := range op.Results {
			if got.Results[j] != r {
				iss = AppendIssues(iss, at.Field("results").Index(j).Issue(CodeResultType, "op", op.Name, "want", typeName(r), "got", typeName(got.Results[j])))
				mismatch = true
			}
		}
		if mismatch {
			continue
		}
		refs[i] = methodRef{index: m.Index, ptr: ptr}
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return refs, nil
}
