package typeclass

import "reflect"

// Value is a Container whose contract is the Go interface I. Use gives
// statically typed access to the held value through I, so calls are checked
// by the compiler and dispatched natively.
//
//	type Producer interface{ Produce() int }
//	a, _ := typeclass.Of[Producer](StaticProducer{})
//	defer a.Close()
//	n := a.Use().Produce()
type Value[I any] struct {
	c *Container
}

// Of erases v behind the contract of interface I.
func Of[I any, T any](v T, opts ...BindOpt) (*Value[I], error) {
	c, err := New(ContractOf[I](), v, opts...)
	if err != nil {
		return nil, err
	}
	return &Value[I]{c: c}, nil
}

// MustOf is like Of but panics on a contract violation.
func MustOf[I any, T any](v T, opts ...BindOpt) *Value[I] {
	out, err := Of[I](v, opts...)
	if err != nil {
		panic(err)
	}
	return out
}

func (v *Value[I]) container() *Container {
	if v.c == nil {
		v.c = &Container{}
	}
	return v.c
}

// Use returns the held value as I. The result refers to the value held by
// this container and must not be used after Destroy or Move.
func (v *Value[I]) Use() I {
	r := v.container().Receiver()
	i, ok := r.(I)
	if !ok {
		invariantf("%T does not implement %s after binding", r, reflect.TypeFor[I]())
	}
	return i
}

// Container returns the untyped container, e.g. for Invoke or Method handles.
func (v *Value[I]) Container() *Container { return v.container() }

// Live reports whether the value is owned.
func (v *Value[I]) Live() bool { return v.container().Live() }

// Clone returns an independent copy.
func (v *Value[I]) Clone() *Value[I] { return &Value[I]{c: v.container().Clone()} }

// Move transfers ownership to a new Value, leaving v moved-from.
func (v *Value[I]) Move() *Value[I] { return &Value[I]{c: v.container().Move()} }

// CopyFrom replaces the held value with a copy of src's.
func (v *Value[I]) CopyFrom(src *Value[I]) error { return v.container().CopyFrom(src.container()) }

// MoveFrom moves src's value into v.
func (v *Value[I]) MoveFrom(src *Value[I]) error { return v.container().MoveFrom(src.container()) }

// Invoke calls an operation by name; see Container.Invoke.
func (v *Value[I]) Invoke(name string, args ...any) ([]any, error) {
	return v.container().Invoke(name, args...)
}

// Destroy destroys the held value; see Container.Destroy.
func (v *Value[I]) Destroy() error { return v.container().Destroy() }

// Close is Destroy.
func (v *Value[I]) Close() error { return v.container().Destroy() }
