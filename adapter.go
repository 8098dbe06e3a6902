package typeclass

import (
	"io"
	"reflect"
)

// Cloner lets a held value control its own copy. Clone must return a deep
// copy: mutating the clone must never be observable through the original.
// Without it, the value is deep-copied by reflection: maps, slices, pointers
// and interface payloads are reallocated, while functions, channels and
// errors are shared. Implement Cloner for values that own OS resources or
// must share some state between copies.
type Cloner[T any] interface {
	Clone() T
}

// adapter binds one concrete type to its dispatch slots and holds the value
// inline, so a container owns exactly one allocation.
type adapter[T any] struct {
	b      *binding[T]
	c      *Contract // the caller's contract; b may have been built for an equal one
	vacant bool      // value was moved out; destroy skips Close
	value  T
}

func (a *adapter[T]) Contract() *Contract { return a.c }
func (a *adapter[T]) Type() reflect.Type  { return a.b.dynamic }

func (a *adapter[T]) Call(index int, args []reflect.Value) []reflect.Value {
	return a.b.slots.op(index, a.b.contract.Len())(a, args)
}

func (a *adapter[T]) Destroy() error {
	return a.b.slots.destroy(a.b.contract.Len())(a)
}

func (a *adapter[T]) Clone() Table {
	return a.b.slots.clone(CloneSlot(a.b.contract.Len()))(a)
}

func (a *adapter[T]) MoveClone() Table {
	return a.b.slots.clone(MoveCloneSlot(a.b.contract.Len()))(a)
}

// receiver is the value methods are invoked on: the address of the inline
// value, or the value itself when T is a pointer or interface type.
func (a *adapter[T]) receiver() any {
	if a.b.direct {
		return any(a.value)
	}
	return &a.value
}

func (a *adapter[T]) method(ref methodRef) reflect.Value {
	rv := reflect.ValueOf(&a.value)
	switch {
	case ref.ptr:
		return rv.Method(ref.index)
	case a.b.viaInterface:
		return rv.Elem().Elem().Method(ref.index)
	default:
		return rv.Elem().Method(ref.index)
	}
}

func downcast[T any](self Table) *adapter[T] {
	a, ok := self.(*adapter[T])
	if !ok {
		invariantf("thunk for %s invoked on %T", reflect.TypeFor[T](), self)
	}
	return a
}

func methodThunk[T any](ref methodRef) opThunk {
	return func(self Table, args []reflect.Value) []reflect.Value {
		return downcast[T](self).method(ref).Call(args)
	}
}

func destroyAdapter[T any](self Table) error {
	a := downcast[T](self)
	var err error
	if !a.vacant {
		if cl := a.closer(); cl != nil {
			err = cl.Close()
		}
	}
	var zero T
	a.value = zero
	a.vacant = true
	return err
}

// closer finds Close on the receiver. A non-pointer value held in an
// interface is closed through a pointer to a copy, so a pointer-receiver
// Close still runs; the copy is discarded with the value.
func (a *adapter[T]) closer() io.Closer {
	r := a.receiver()
	if cl, ok := r.(io.Closer); ok {
		return cl
	}
	if !a.b.viaInterface {
		return nil
	}
	rv := reflect.ValueOf(r)
	if rv.Kind() == reflect.Pointer {
		return nil
	}
	p := reflect.New(rv.Type())
	p.Elem().Set(rv)
	cl, _ := p.Interface().(io.Closer)
	return cl
}

func cloneAdapter[T any](self Table) Table {
	a := downcast[T](self)
	return &adapter[T]{b: a.b, c: a.c, value: copyValue(&a.value)}
}

func moveCloneAdapter[T any](self Table) Table {
	a := downcast[T](self)
	out := &adapter[T]{b: a.b, c: a.c, vacant: a.vacant, value: a.value}
	var zero T
	a.value = zero
	a.vacant = true
	return out
}

// copyValue copies *v through its Cloner, or deeply when it has none.
func copyValue[T any](v *T) T {
	if c, ok := any(*v).(Cloner[T]); ok {
		return c.Clone()
	}
	if c, ok := any(v).(Cloner[T]); ok {
		return c.Clone()
	}
	return deepCopy(v)
}
