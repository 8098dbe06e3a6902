package typeclass_test

import (
	"errors"
	"reflect"
	"strings"

	"github.com/reoring/typeclass"
)

// Producer is the contract of the original "producer" example.
type Producer interface {
	Produce() int
}

type StaticProducer struct{}

func (StaticProducer) Produce() int { return 42 }

type DynamicProducer struct{ N int }

func (d DynamicProducer) Produce() int { return d.N }

// Silent has no Produce method.
type Silent struct{}

func (Silent) Whisper() string { return "..." }

// WrongProducer has Produce with a different result type.
type WrongProducer struct{}

func (WrongProducer) Produce() string { return "42" }

// Counter mutates through pointer receivers.
type Counter interface {
	Add(n int) int
	Total() int
}

type counter struct{ n int }

func (c *counter) Add(n int) int { c.n += n; return c.n }
func (c *counter) Total() int    { return c.n }

// history holds a slice and deep-copies itself.
type history struct{ items []string }

func (h *history) Add(n int) int {
	h.items = append(h.items, strings.Repeat("x", n))
	return len(h.items)
}
func (h *history) Total() int { return len(h.items) }
func (h history) Clone() history {
	return history{items: append([]string(nil), h.items...)}
}

// Noop has two operations with no observable effect.
type Noop interface {
	F()
	G()
}

type noop struct{}

func (noop) F() {}
func (noop) G() {}

// Fallible returns errors from its operations.
type Fallible interface {
	Div(a, b int) (int, error)
}

var errDivByZero = errors.New("division by zero")

type divider struct{}

func (divider) Div(a, b int) (int, error) {
	if b == 0 {
		return 0, errDivByZero
	}
	return a / b, nil
}

// resource counts Close calls through a shared pointer.
type resource struct {
	closed *int
	err    error
}

func (r resource) Produce() int { return *r.closed }
func (r resource) Close() error {
	*r.closed++
	return r.err
}

// Clone keeps the counter shared so every copy's Close is observed.
func (r resource) Clone() resource { return r }

// Tally counts named events in a map and has no Clone method.
type Tally interface {
	Bump(key string) int
	Get(key string) int
}

type tally struct{ m map[string]int }

func (t *tally) Bump(key string) int { t.m[key]++; return t.m[key] }
func (t *tally) Get(key string) int  { return t.m[key] }

// stamp counts how often it was cloned; copies share the counter.
type stamp struct{ clones *int }

func (s stamp) Clone() stamp { *s.clones++; return s }

type node struct {
	val  int
	next *node
}

// ring is a two-node cycle plus nested state of every kind the deep copy
// walks.
type ring struct {
	head   *node
	nodes  []*node
	byName map[string]*node
	any    any
	grid   [2][]int
	stamp  stamp
	err    error
	notify func() int
}

func newRing() *ring {
	a, b := &node{val: 1}, &node{val: 2}
	a.next, b.next = b, a
	return &ring{
		head:   a,
		nodes:  []*node{a, b},
		byName: map[string]*node{"a": a, "b": b},
		any:    map[string][]int{"k": {1}},
		grid:   [2][]int{{1}, {2}},
		stamp:  stamp{clones: new(int)},
		err:    errDivByZero,
		notify: func() int { return 7 },
	}
}

func (r *ring) Add(n int) int { r.head.val += n; return r.Total() }
func (r *ring) Total() int    { return r.head.val + r.head.next.val }

// latch closes through a pointer receiver.
type latch struct{ closed *int }

func (l latch) Produce() int { return *l.closed }
func (l *latch) Close() error {
	*l.closed++
	return nil
}

// greeter has a variadic operation.
type greeter struct{ prefix string }

func (g greeter) Greet(names ...string) string {
	return g.prefix + strings.Join(names, ",")
}

func intType() reflect.Type    { return reflect.TypeFor[int]() }
func stringType() reflect.Type { return reflect.TypeFor[string]() }
func errorType() reflect.Type  { return reflect.TypeFor[error]() }

func sliceOf(t reflect.Type) reflect.Type { return reflect.SliceOf(t) }

// producerContract is declared explicitly rather than from an interface.
var producerContract = typeclass.MustDefine("producer",
	typeclass.Op("Produce").Returns(intType()),
)
