package typeclass

import "reflect"

// Validate reports whether t structurally satisfies the contract. It returns
// nil or a *ContractViolation listing every mismatch (only the first one
// with FailFast).
func (c *Contract) Validate(t reflect.Type, opts ...BindOpt) error {
	opt := lastOpt(opts)
	if t == nil {
		return &ContractViolation{Contract: c.name, Issues: Issues{Root().Issue(CodeNilType)}}
	}
	if _, iss := resolveMethods(c, t, !opt.ValueReceiversOnly); len(iss) > 0 {
		v := &ContractViolation{Contract: c.name, Type: t, Issues: iss}
		if opt.FailFast {
			return v.first()
		}
		return v
	}
	return nil
}

// Check validates T against the contract through the memoized binder, so a
// later New with the same pair reuses the result. T must be a concrete type.
//
//	var _ = typeclass.MustCheck[StaticProducer](producer)
func Check[T any](c *Contract, opts ...BindOpt) error {
	var zero T
	_, err := bind(c, &zero, lastOpt(opts))
	return err
}

// MustCheck is like Check but panics on a violation. It returns true so it
// can be used in package-level var declarations.
func MustCheck[T any](c *Contract, opts ...BindOpt) bool {
	if err := Check[T](c, opts...); err != nil {
		panic(err)
	}
	return true
}

// Satisfies reports whether T satisfies the contract.
func Satisfies[T any](c *Contract, opts ...BindOpt) bool {
	return Check[T](c, opts...) == nil
}

// first returns a copy of the violation that keeps only its first issue.
func (e *ContractViolation) first() *ContractViolation {
	if len(e.Issues) <= 1 {
		return e
	}
	return &ContractViolation{Contract: e.Contract, Type: e.Type, Issues: Issues{e.Issues[0]}}
}
