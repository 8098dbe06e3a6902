package decl

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
)

// Registry maps the type names used in declaration documents to Go types.
// Composite names ([]T, [N]T, *T, map[K]V) are resolved from their parts, so
// only named element types need registering.
type Registry struct {
	mu    sync.RWMutex
	types map[string]reflect.Type
	names map[reflect.Type]string
}

// NewRegistry returns a registry holding Go's predeclared types plus error
// and any.
func NewRegistry() *Registry {
	r := &Registry{types: map[string]reflect.Type{}, names: map[reflect.Type]string{}}
	for _, b := range builtins {
		r.add(b.name, b.t)
	}
	return r
}

// the first name registered for a type is the one FromContract writes
var builtins = []struct {
	name string
	t    reflect.Type
}{
	{"bool", reflect.TypeFor[bool]()},
	{"string", reflect.TypeFor[string]()},
	{"int", reflect.TypeFor[int]()},
	{"int8", reflect.TypeFor[int8]()},
	{"int16", reflect.TypeFor[int16]()},
	{"int32", reflect.TypeFor[int32]()},
	{"int64", reflect.TypeFor[int64]()},
	{"uint", reflect.TypeFor[uint]()},
	{"uint8", reflect.TypeFor[uint8]()},
	{"uint16", reflect.TypeFor[uint16]()},
	{"uint32", reflect.TypeFor[uint32]()},
	{"uint64", reflect.TypeFor[uint64]()},
	{"uintptr", reflect.TypeFor[uintptr]()},
	{"float32", reflect.TypeFor[float32]()},
	{"float64", reflect.TypeFor[float64]()},
	{"complex64", reflect.TypeFor[complex64]()},
	{"complex128", reflect.TypeFor[complex128]()},
	{"byte", reflect.TypeFor[byte]()},
	{"rune", reflect.TypeFor[rune]()},
	{"error", reflect.TypeFor[error]()},
	{"any", reflect.TypeFor[any]()},
	{"interface{}", reflect.TypeFor[any]()},
}

var defaultRegistry = NewRegistry()

func orDefault(r *Registry) *Registry {
	if r == nil {
		return defaultRegistry
	}
	return r
}

func (r *Registry) add(name string, t reflect.Type) {
	r.types[name] = t
	if _, ok := r.names[t]; !ok {
		r.names[t] = name
	}
}

// Register makes t resolvable as name. Re-registering a name for the same
// type is a no-op; binding it to a different type is an error.
func (r *Registry) Register(name string, t reflect.Type) error {
	name = strings.TrimSpace(name)
	if name == "" || t == nil {
		return fmt.Errorf("decl: register %q: name and type are required", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.types[name]; ok {
		if old == t {
			return nil
		}
		return fmt.Errorf("decl: register %q: already bound to %s", name, old)
	}
	r.add(name, t)
	return nil
}

// RegisterType registers T under name, or under T's Go spelling
// (e.g. "time.Duration") when name is empty.
func RegisterType[T any](r *Registry, name string) error {
	t := reflect.TypeFor[T]()
	if name == "" {
		name = t.String()
	}
	return r.Register(name, t)
}

// Resolve returns the type spelled by name.
func (r *Registry) Resolve(name string) (reflect.Type, bool) {
	name = strings.TrimSpace(name)
	r.mu.RLock()
	t, ok := r.types[name]
	r.mu.RUnlock()
	if ok {
		return t, true
	}
	switch {
	case strings.HasPrefix(name, "[]"):
		el, ok := r.Resolve(name[2:])
		if !ok {
			return nil, false
		}
		return reflect.SliceOf(el), true
	case strings.HasPrefix(name, "*"):
		el, ok := r.Resolve(name[1:])
		if !ok {
			return nil, false
		}
		return reflect.PointerTo(el), true
	case strings.HasPrefix(name, "map["):
		end := closingBracket(name, 3)
		if end < 0 {
			return nil, false
		}
		kt, ok := r.Resolve(name[4:end])
		if !ok || !kt.Comparable() {
			return nil, false
		}
		vt, ok := r.Resolve(name[end+1:])
		if !ok {
			return nil, false
		}
		return reflect.MapOf(kt, vt), true
	case strings.HasPrefix(name, "["):
		end := strings.IndexByte(name, ']')
		if end < 0 {
			return nil, false
		}
		n, err := strconv.Atoi(name[1:end])
		if err != nil || n < 0 {
			return nil, false
		}
		el, ok := r.Resolve(name[end+1:])
		if !ok || !arrayFits(n, el) {
			return nil, false
		}
		return reflect.ArrayOf(n, el), true
	}
	return nil, false
}

// maxArrayBytes bounds declared array types; reflect.ArrayOf panics on
// sizes past the address space.
const maxArrayBytes = 1 << 30

func arrayFits(n int, el reflect.Type) bool {
	if el.Size() == 0 {
		return n <= maxArrayBytes
	}
	return uint64(n) <= maxArrayBytes/uint64(el.Size())
}

// closingBracket returns the index of the ']' matching the '[' at open.
func closingBracket(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// Name returns the name Resolve accepts for t. Types that were never
// registered fall back to reflect's spelling.
func (r *Registry) Name(t reflect.Type) string {
	r.mu.RLock()
	n, ok := r.names[t]
	r.mu.RUnlock()
	if ok {
		return n
	}
	switch t.Kind() {
	case reflect.Slice:
		return "[]" + r.Name(t.Elem())
	case reflect.Array:
		return "[" + strconv.Itoa(t.Len()) + "]" + r.Name(t.Elem())
	case reflect.Pointer:
		return "*" + r.Name(t.Elem())
	case reflect.Map:
		return "map[" + r.Name(t.Key()) + "]" + r.Name(t.Elem())
	}
	return t.String()
}
