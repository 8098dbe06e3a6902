package typeclass

import (
	"reflect"
)

// Void stands for "no result" in method handles: Method0[Void] matches an
// operation returning nothing or only an error.
type Void struct{}

var voidType = reflect.TypeFor[Void]()

// Generic helpers as top-level functions (methods cannot have type parameters)

// methodSlot is an operation whose signature was checked once against the
// handle's type arguments.
type methodSlot struct {
	contract *Contract
	index    int
	hasErr   bool
	void     bool
}

// Method0 calls a parameterless operation returning R.
type Method0[R any] struct{ s methodSlot }

// Method1 calls an operation taking A and returning R.
type Method1[A, R any] struct{ s methodSlot }

// Method2 calls an operation taking A and B and returning R.
type Method2[A, B, R any] struct{ s methodSlot }

// Method0Of checks that the named operation of c has signature () R or
// () (R, error).
func Method0Of[R any](c *Contract, name string) (Method0[R], error) {
	s, err := lookupMethod(c, name, nil, reflect.TypeFor[R]())
	return Method0[R]{s: s}, err
}

// Method1Of checks that the named operation of c has signature (A) R or
// (A) (R, error).
func Method1Of[A, R any](c *Contract, name string) (Method1[A, R], error) {
	s, err := lookupMethod(c, name, []reflect.Type{reflect.TypeFor[A]()}, reflect.TypeFor[R]())
	return Method1[A, R]{s: s}, err
}

// Method2Of checks that the named operation of c has signature (A, B) R or
// (A, B) (R, error).
func Method2Of[A, B, R any](c *Contract, name string) (Method2[A, B, R], error) {
	s, err := lookupMethod(c, name, []reflect.Type{reflect.TypeFor[A](), reflect.TypeFor[B]()}, reflect.TypeFor[R]())
	return Method2[A, B, R]{s: s}, err
}

// Call invokes the operation on the value held by c.
func (m Method0[R]) Call(c *Container) (R, error) {
	return callSlot[R](m.s, c)
}

// Call invokes the operation on the value held by c.
func (m Method1[A, R]) Call(c *Container, a A) (R, error) {
	return callSlot[R](m.s, c, reflect.ValueOf(&a).Elem())
}

// Call invokes the operation on the value held by c.
func (m Method2[A, B, R]) Call(c *Container, a A, b B) (R, error) {
	return callSlot[R](m.s, c, reflect.ValueOf(&a).Elem(), reflect.ValueOf(&b).Elem())
}

func lookupMethod(c *Contract, name string, params []reflect.Type, r reflect.Type) (methodSlot, error) {
	at := Root().Field("operations").Field(name)
	idx, ok := c.Index(name)
	if !ok {
		return methodSlot{}, Issues{at.Issue(CodeUnknownOperation, "op", name)}
	}
	op := c.ops[idx]
	want := Operation{Name: name, Params: params, Results: []reflect.Type{r}}
	if op.Variadic {
		return methodSlot{}, Issues{at.Issue(CodeVariadicMismatch, "op", name, "want", want.Signature(), "got", op.Signature())}
	}
	if len(op.Params) != len(params) {
		return methodSlot{}, Issues{at.Issue(CodeArityMismatch, "op", name, "want", want.Signature(), "got", op.Signature())}
	}
	var iss Issues
	for j, p := range params {
		if op.Params[j] != p {
			iss = AppendIssues(iss, at.Field("params").Index(j).Issue(CodeParamType, "op", name, "want", typeName(p), "got", typeName(op.Params[j])))
		}
	}
	s := methodSlot{contract: c, index: idx, void: r == voidType}
	results := op.Results
	switch {
	case !s.void && len(results) == 1 && results[0] == r:
	case len(results) > 0 && results[len(results)-1] == errorType:
		s.hasErr = true
		results = results[:len(results)-1]
		fallthrough
	default:
		if s.void && len(results) != 0 {
			iss = AppendIssues(iss, at.Field("results").Issue(CodeArityMismatch, "op", name, "want", "no results", "got", op.Signature()))
		} else if !s.void && len(results) != 1 {
			iss = AppendIssues(iss, at.Field("results").Issue(CodeArityMismatch, "op", name, "want", want.Signature(), "got", op.Signature()))
		} else if !s.void && results[0] != r {
			iss = AppendIssues(iss, at.Field("results").Index(0).Issue(CodeResultType, "op", name, "want", typeName(r), "got", typeName(results[0])))
		}
	}
	if len(iss) > 0 {
		return methodSlot{}, iss
	}
	return s, nil
}

func callSlot[R any](s methodSlot, c *Container, args ...reflect.Value) (R, error) {
	var r R
	if s.contract == nil {
		return r, ErrContractMismatch
	}
	if err := c.usable(); err != nil {
		return r, err
	}
	if c.contract.id != s.contract.id {
		return r, ErrContractMismatch
	}
	out := c.table.Call(s.index, args)
	var err error
	if s.hasErr {
		if e := out[len(out)-1]; !e.IsNil() {
			err = e.Interface().(error)
		}
	}
	if !s.void {
		reflect.ValueOf(&r).Elem().Set(out[0])
	}
	return r, err
}
