package typeclass

import (
	"reflect"
)

// noCopy makes go vet (copylocks) report accidental copies of a Container;
// copies must go through Clone.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

type state uint8

const (
	// the zero Container behaves like a moved-from one
	stateMoved state = iota
	stateLive
	stateDestroyed
)

// Container holds any value that satisfies its contract and forwards
// operations to it. Copies made with Clone are independent; Move transfers
// ownership. A Container must be destroyed (Destroy or Close) exactly once;
// `defer c.Close()` covers every exit path.
//
// The engine adds no locking: concurrent use of one Container is safe only
// when the held value's methods are.
type Container struct {
	_        noCopy
	contract *Contract
	table    Table
	state    state
}

// New erases v behind contract c. A type that does not satisfy c is rejected
// with a *ContractViolation before anything is allocated.
func New[T any](c *Contract, v T, opts ...BindOpt) (*Container, error) {
	b, err := bind(c, &v, lastOpt(opts))
	if err != nil {
		return nil, err
	}
	a := &adapter[T]{b: b, c: c, value: v}
	stats.allocated.Add(1)
	return &Container{contract: c, table: a, state: stateLive}, nil
}

// MustNew is like New but panics on a contract violation.
func MustNew[T any](c *Contract, v T, opts ...BindOpt) *Container {
	out, err := New(c, v, opts...)
	if err != nil {
		panic(err)
	}
	return out
}

func (c *Container) usable() error {
	switch c.state {
	case stateLive:
		return nil
	case stateDestroyed:
		return ErrDestroyed
	default:
		return ErrMovedFrom
	}
}

func (c *Container) mustLive() {
	if err := c.usable(); err != nil {
		panic(err)
	}
}

// Contract returns the contract the container was created for. It is nil
// only for a zero Container that was never assigned.
func (c *Container) Contract() *Contract { return c.contract }

// Live reports whether the container currently owns a value.
func (c *Container) Live() bool { return c.state == stateLive }

// Type returns the concrete type of the held value, or nil when the
// container is not live.
func (c *Container) Type() reflect.Type {
	if c.state != stateLive {
		return nil
	}
	return c.table.Type()
}

// Receiver returns the held value in the form its methods are invoked on
// (a pointer to the inline value for non-pointer types). It is valid until
// the container is destroyed or moved. Panics when the container is not live.
func (c *Container) Receiver() any {
	c.mustLive()
	return c.table.receiver()
}

// Clone returns an independent copy holding a copy of the value.
// Panics with ErrMovedFrom or ErrDestroyed when the container is not live.
func (c *Container) Clone() *Container {
	c.mustLive()
	t := c.table.Clone()
	stats.allocated.Add(1)
	return &Container{contract: c.contract, table: t, state: stateLive}
}

// Move transfers ownership of the held value to a new container. The
// receiver is left moved-from: it may only be destroyed or reassigned.
func (c *Container) Move() *Container {
	c.mustLive()
	out := &Container{contract: c.contract, table: c.table, state: stateLive}
	c.table = nil
	c.state = stateMoved
	return out
}

// CopyFrom replaces the held value with a copy of src's value. The previous
// value is destroyed after the copy is made; its Close error, if any, is
// returned.
func (c *Container) CopyFrom(src *Container) error {
	if src == c {
		return nil
	}
	if err := c.assignable(src); err != nil {
		return err
	}
	t := src.table.Clone()
	stats.allocated.Add(1)
	err := c.Destroy()
	c.contract, c.table, c.state = src.contract, t, stateLive
	return err
}

// MoveFrom moves src's value into c through the move-clone slot. src is left
// moved-from and the previous value of c is destroyed.
func (c *Container) MoveFrom(src *Container) error {
	if src == c {
		return nil
	}
	if err := c.assignable(src); err != nil {
		return err
	}
	t := src.table.MoveClone()
	stats.allocated.Add(1)
	vacated := src.table
	src.table = nil
	src.state = stateMoved
	stats.released.Add(1)
	_ = vacated.Destroy() // vacated: Close is skipped
	err := c.Destroy()
	c.contract, c.table, c.state = src.contract, t, stateLive
	return err
}

func (c *Container) assignable(src *Container) error {
	if err := src.usable(); err != nil {
		return err
	}
	if c.contract != nil && c.contract.id != src.contract.id {
		return ErrContractMismatch
	}
	return nil
}

// Destroy destroys the held value: when it implements io.Closer, Close runs
// and its error is returned unchanged. Destroy runs at most once; later
// calls and calls on a moved-from container are no-ops.
func (c *Container) Destroy() error {
	if c.state != stateLive {
		return nil
	}
	t := c.table
	c.table = nil
	c.state = stateDestroyed
	stats.released.Add(1)
	return t.Destroy()
}

// Close is Destroy; it makes Container an io.Closer.
func (c *Container) Close() error { return c.Destroy() }

// Invoke calls the named operation with args and returns what the held
// value's method returns. When the operation's last result is error, it is
// returned as Invoke's error exactly as the method produced it and is left
// out of the result slice. Calls that do not match the declared signature
// fail with Issues and never reach the value.
func (c *Container) Invoke(name string, args ...any) ([]any, error) {
	if err := c.usable(); err != nil {
		return nil, err
	}
	idx, ok := c.contract.Index(name)
	if !ok {
		return nil, Issues{Root().Field("operations").Field(name).Issue(CodeUnknownOperation, "op", name)}
	}
	op := &c.contract.ops[idx]
	in, iss := convertArgs(op, args)
	if len(iss) > 0 {
		return nil, iss
	}
	return splitResults(op, c.table.Call(idx, in))
}

func convertArgs(op *Operation, args []any) ([]reflect.Value, Issues) {
	n := len(op.Params)
	at := Root().Field("operations").Field(op.Name).Field("args")
	if (!op.Variadic && len(args) != n) || (op.Variadic && len(args) < n-1) {
		return nil, Issues{at.Issue(CodeArgCount, "op", op.Name, "want", n, "got", len(args))}
	}
	in := make([]reflect.Value, len(args))
	var iss Issues
	for i, a := range args {
		pt := op.Params[min(i, n-1)]
		if op.Variadic && i >= n-1 {
			pt = pt.Elem()
		}
		v, ok := argValue(a, pt)
		if !ok {
			iss = AppendIssues(iss, at.Index(i).Issue(CodeArgType, "op", op.Name, "want", typeName(pt), "got", typeName(reflect.TypeOf(a))))
			continue
		}
		in[i] = v
	}
	return in, iss
}

func argValue(a any, t reflect.Type) (reflect.Value, bool) {
	if a == nil {
		switch t.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
			return reflect.Zero(t), true
		}
		return reflect.Value{}, false
	}
	v := reflect.ValueOf(a)
	if !v.Type().AssignableTo(t) {
		return reflect.Value{}, false
	}
	return v, true
}

func splitResults(op *Operation, out []reflect.Value) ([]any, error) {
	if len(out) != len(op.Results) {
		invariantf("%s returned %d values, declared %d", op.Name, len(out), len(op.Results))
	}
	n := len(out)
	var err error
	if n > 0 && op.Results[n-1] == errorType {
		if e := out[n-1]; !e.IsNil() {
			err = e.Interface().(error)
		}
		n--
	}
	res := make([]any, n)
	for i := 0; i < n; i++ {
		res[i] = out[i].Interface()
	}
	return res, err
}
