package typeclass

import (
	"fmt"
	"go/token"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Operation is one required method of a contract: its name and the ordered
// parameter and result types. A variadic operation declares its last
// parameter as a slice ([]T for ...T).
type Operation struct {
	Name     string
	Params   []reflect.Type
	Results  []reflect.Type
	Variadic bool
}

// Op starts an operation declaration with the given parameter types.
//
//	typeclass.Op("Add", reflect.TypeFor[int]()).Returns(reflect.TypeFor[int]())
func Op(name string, params ...reflect.Type) Operation {
	return Operation{Name: name, Params: params}
}

// Returns sets the result types.
func (o Operation) Returns(results ...reflect.Type) Operation {
	o.Results = results
	return o
}

// AsVariadic marks the last parameter as variadic.
func (o Operation) AsVariadic() Operation {
	o.Variadic = true
	return o
}

// Signature renders the operation like a Go interface method, for example
// "Add(int, ...string) (int, error)".
func (o Operation) Signature() string {
	b := &strings.Builder{}
	b.WriteString(o.Name)
	b.WriteByte('(')
	for i, p := range o.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		if o.Variadic && i == len(o.Params)-1 && p != nil && p.Kind() == reflect.Slice {
			b.WriteString("...")
			b.WriteString(typeName(p.Elem()))
			continue
		}
		b.WriteString(typeName(p))
	}
	b.WriteByte(')')
	switch len(o.Results) {
	case 0:
	case 1:
		b.WriteByte(' ')
		b.WriteString(typeName(o.Results[0]))
	default:
		b.WriteString(" (")
		for i, r := range o.Results {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(typeName(r))
		}
		b.WriteByte(')')
	}
	return b.String()
}

func (o Operation) clone() Operation {
	o.Params = append([]reflect.Type(nil), o.Params...)
	o.Results = append([]reflect.Type(nil), o.Results...)
	return o
}

// Contract is an immutable, ordered set of operations a concrete type must
// provide. The declaration order is the dispatch slot order.
type Contract struct {
	id    uuid.UUID
	name  string
	ops   []Operation
	index map[string]int
	iface reflect.Type
}

var contractNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/reoring/typeclass/contract"))

// Define declares a contract from explicit operations. Declaration problems
// are reported as Issues.
func Define(name string, ops ...Operation) (*Contract, error) {
	var iss Issues
	root := Root()
	if strings.TrimSpace(name) == "" {
		iss = AppendIssues(iss, root.Field("name").Issue(CodeInvalidName))
	}
	c := &Contract{
		name:  name,
		ops:   make([]Operation, 0, len(ops)),
		index: make(map[string]int, len(ops)),
	}
	for i, op := range ops {
		at := root.Field("operations").Index(i)
		if !token.IsIdentifier(op.Name) || !token.IsExported(op.Name) {
			iss = AppendIssues(iss, at.Field("name").Issue(CodeInvalidName, "op", op.Name))
		} else if _, dup := c.index[op.Name]; dup {
			iss = AppendIssues(iss, at.Field("name").Issue(CodeDuplicateOperation, "op", op.Name))
		}
		for j, p := range op.Params {
			if p == nil {
				iss = AppendIssues(iss, at.Field("params").Index(j).Issue(CodeNilType, "op", op.Name))
			}
		}
		for j, r := range op.Results {
			if r == nil {
				iss = AppendIssues(iss, at.Field("results").Index(j).Issue(CodeNilType, "op", op.Name))
			}
		}
		if op.Variadic {
			n := len(op.Params)
			if n == 0 || (op.Params[n-1] != nil && op.Params[n-1].Kind() != reflect.Slice) {
				iss = AppendIssues(iss, at.Field("params").Issue(CodeVariadicMismatch, "op", op.Name, "want", "last parameter of slice type"))
			}
		}
		if _, dup := c.index[op.Name]; !dup {
			c.index[op.Name] = i
		}
		c.ops = append(c.ops, op.clone())
	}
	if len(iss) > 0 {
		return nil, iss
	}
	c.id = uuid.NewSHA1(contractNamespace, []byte(c.canonical()))
	return c, nil
}

// MustDefine is like Define but panics on an invalid declaration.
func MustDefine(name string, ops ...Operation) *Contract {
	c, err := Define(name, ops...)
	if err != nil {
		panic(fmt.Errorf("typeclass: MustDefine(%q): %w", name, err))
	}
	return c
}

var interfaceContracts sync.Map // reflect.Type -> *Contract

// ContractOf derives the contract of the Go interface I. Operations follow
// Go's method order (sorted by name). The result is memoized per interface
// type, so repeated calls return the same *Contract.
//
// ContractOf panics when I is not an interface type or has unexported
// methods: both are programming errors.
func ContractOf[I any]() *Contract {
	t := reflect.TypeFor[I]()
	if c, ok := interfaceContracts.Load(t); ok {
		return c.(*Contract)
	}
	c, err := contractFromInterface(t)
	if err != nil {
		panic(err)
	}
	actual, _ := interfaceContracts.LoadOrStore(t, c)
	return actual.(*Contract)
}

func contractFromInterface(t reflect.Type) (*Contract, error) {
	if t.Kind() != reflect.Interface {
		return nil, fmt.Errorf("typeclass: ContractOf[%s]: not an interface type", t)
	}
	ops := make([]Operation, 0, t.NumMethod())
	for i := 0; i < t.NumMethod(); i++ {
		m := t.Method(i)
		if !m.IsExported() {
			return nil, fmt.Errorf("typeclass: ContractOf[%s]: unexported method %s", t, m.Name)
		}
		ops = append(ops, operationOf(m.Name, m.Type, 0))
	}
	name := t.Name()
	if name == "" {
		name = t.String()
	}
	c, err := Define(name, ops...)
	if err != nil {
		return nil, fmt.Errorf("typeclass: ContractOf[%s]: %w", t, err)
	}
	c.iface = t
	return c, nil
}

// operationOf describes a func type as an Operation, skipping the first skip
// inputs (1 for method expressions carrying a receiver).
func operationOf(name string, ft reflect.Type, skip int) Operation {
	op := Operation{Name: name, Variadic: ft.IsVariadic()}
	for j := skip; j < ft.NumIn(); j++ {
		op.Params = append(op.Params, ft.In(j))
	}
	for j := 0; j < ft.NumOut(); j++ {
		op.Results = append(op.Results, ft.Out(j))
	}
	return op
}

// ID identifies the contract by its canonical signature; structurally
// identical declarations share an ID.
func (c *Contract) ID() uuid.UUID { return c.id }

// Name returns the declared contract name.
func (c *Contract) Name() string { return c.name }

// Len returns the number of operations (dispatch slots excluding lifecycle).
func (c *Contract) Len() int { return len(c.ops) }

// Operation returns the i'th operation in declaration order.
func (c *Contract) Operation(i int) Operation { return c.ops[i].clone() }

// Operations returns a copy of the operations in declaration order.
func (c *Contract) Operations() []Operation {
	out := make([]Operation, len(c.ops))
	for i, op := range c.ops {
		out[i] = op.clone()
	}
	return out
}

// Index returns the dispatch slot of the named operation.
func (c *Contract) Index(name string) (int, bool) {
	i, ok := c.index[name]
	return i, ok
}

// Interface returns the interface type the contract was derived from, or
// nil for contracts declared with Define.
func (c *Contract) Interface() reflect.Type { return c.iface }

func (c *Contract) String() string {
	b := &strings.Builder{}
	b.WriteString(c.name)
	b.WriteByte('{')
	for i, op := range c.ops {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(op.Signature())
	}
	b.WriteByte('}')
	return b.String()
}

func (c *Contract) canonical() string {
	b := &strings.Builder{}
	b.WriteString(c.name)
	for _, op := range c.ops {
		b.WriteString("\n")
		b.WriteString(op.Name)
		if op.Variadic {
			b.WriteString(" variadic")
		}
		b.WriteString(" in")
		for _, p := range op.Params {
			b.WriteByte(' ')
			writeTypeKey(b, p)
		}
		b.WriteString(" out")
		for _, r := range op.Results {
			b.WriteByte(' ')
			writeTypeKey(b, r)
		}
	}
	return b.String()
}

// writeTypeKey writes a package-path qualified rendering of t, so that two
// distinct named types with the same short name never collide.
func writeTypeKey(b *strings.Builder, t reflect.Type) {
	if t.Name() != "" {
		if p := t.PkgPath(); p != "" {
			b.WriteString(strconv.Quote(p))
			b.WriteByte('.')
		}
		b.WriteString(t.Name())
		return
	}
	switch t.Kind() {
	case reflect.Pointer:
		b.WriteByte('*')
		writeTypeKey(b, t.Elem())
	case reflect.Slice:
		b.WriteString("[]")
		writeTypeKey(b, t.Elem())
	case reflect.Array:
		b.WriteString("[" + strconv.Itoa(t.Len()) + "]")
		writeTypeKey(b, t.Elem())
	case reflect.Map:
		b.WriteString("map[")
		writeTypeKey(b, t.Key())
		b.WriteByte(']')
		writeTypeKey(b, t.Elem())
	case reflect.Chan:
		b.WriteString(t.ChanDir().String() + " ")
		writeTypeKey(b, t.Elem())
	case reflect.Func:
		b.WriteString("func(")
		for i := 0; i < t.NumIn(); i++ {
			writeTypeKey(b, t.In(i))
			b.WriteByte(',')
		}
		if t.IsVariadic() {
			b.WriteString("...")
		}
		b.WriteString(")(")
		for i := 0; i < t.NumOut(); i++ {
			writeTypeKey(b, t.Out(i))
			b.WriteByte(',')
		}
		b.WriteByte(')')
	case reflect.Struct:
		b.WriteString("struct{")
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			b.WriteString(f.PkgPath + "." + f.Name + " ")
			writeTypeKey(b, f.Type)
			b.WriteString(" " + strconv.Quote(string(f.Tag)) + ";")
		}
		b.WriteByte('}')
	case reflect.Interface:
		b.WriteString("interface{")
		for i := 0; i < t.NumMethod(); i++ {
			m := t.Method(i)
			b.WriteString(m.PkgPath + "." + m.Name)
			writeTypeKey(b, m.Type)
			b.WriteByte(';')
		}
		b.WriteByte('}')
	default:
		b.WriteString(t.String())
	}
}
