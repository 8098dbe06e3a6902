package typeclass

import (
	"reflect"
	"sync"

	"github.com/google/uuid"
)

// binding is the memoized result of binding one concrete type to one
// contract: the method plan turned into a slot array.
type binding[T any] struct {
	contract     *Contract
	dynamic      reflect.Type
	direct       bool // T is a pointer or interface type; receiver is the value itself
	viaInterface bool // T is an interface type; methods live on its dynamic value
	slots        slots
}

type bindKey struct {
	contract  uuid.UUID
	static    reflect.Type
	dynamic   reflect.Type
	valueOnly bool
}

type bindEntry struct {
	once    sync.Once
	binding any
	err     *ContractViolation
}

// binder is the process-wide memo. Each key is built at most once; racing
// first uses block on the entry's Once and observe the same result.
type binder struct {
	mu      sync.Mutex
	entries map[bindKey]*bindEntry
}

var defaultBinder = &binder{entries: make(map[bindKey]*bindEntry)}

func (b *binder) entry(k bindKey) *bindEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.entries[k]
	if ok {
		stats.hits.Add(1)
		return e
	}
	stats.misses.Add(1)
	e = &bindEntry{}
	b.entries[k] = e
	return e
}

// bind validates the type held in *v against c and returns its slots.
func bind[T any](c *Contract, v *T, opt BindOpt) (*binding[T], error) {
	if c == nil {
		panic("typeclass: nil contract")
	}
	static := reflect.TypeFor[T]()
	dyn := static
	viaInterface := static.Kind() == reflect.Interface
	if viaInterface {
		dyn = reflect.TypeOf(any(*v))
		if dyn == nil {
			return nil, &ContractViolation{Contract: c.name, Type: static, Issues: Issues{Root().Issue(CodeNilType)}}
		}
	}
	direct := viaInterface || static.Kind() == reflect.Pointer
	key := bindKey{contract: c.id, static: static, dynamic: dyn, valueOnly: opt.ValueReceiversOnly || direct}
	e := defaultBinder.entry(key)
	e.once.Do(func() {
		refs, iss := resolveMethods(c, dyn, !key.valueOnly)
		if len(iss) > 0 {
			e.err = &ContractViolation{Contract: c.name, Type: dyn, Issues: iss}
			return
		}
		e.binding = newBinding[T](c, dyn, refs, direct, viaInterface)
	})
	if e.err != nil {
		if opt.FailFast {
			return nil, e.err.first()
		}
		return nil, e.err
	}
	b, ok := e.binding.(*binding[T])
	if !ok {
		invariantf("binder entry for %s holds %T", static, e.binding)
	}
	return b, nil
}

// newBinding installs one thunk per operation and the three lifecycle
// thunks.
func newBinding[T any](c *Contract, dyn reflect.Type, refs []methodRef, direct, viaInterface bool) *binding[T] {
	n := c.Len()
	b := &binding[T]{
		contract:     c,
		dynamic:      dyn,
		direct:       direct,
		viaInterface: viaInterface,
		slots:        make(slots, SlotCount(n)),
	}
	for i, ref := range refs {
		b.slots[i] = methodThunk[T](ref)
	}
	b.slots[DestroySlot(n)] = destroyThunk(destroyAdapter[T])
	b.slots[CloneSlot(n)] = cloneThunk(cloneAdapter[T])
	b.slots[MoveCloneSlot(n)] = cloneThunk(moveCloneAdapter[T])
	return b
}
