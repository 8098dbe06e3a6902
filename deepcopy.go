package typeclass

import (
	"reflect"
	"sync"
	"time"
	"unsafe"
)

// deepCopy returns a copy of *v that shares no mutable memory with it.
// Maps, slices, pointers and interface payloads are freshly allocated;
// cycles and repeated references are preserved through the seen map.
// Nested values with a Clone method returning their own type copy
// themselves. Functions, channels, unsafe pointers, errors and a few
// immutable runtime handles (*time.Location, reflect.Type) are shared.
func deepCopy[T any](v *T) T {
	out := reflect.New(reflect.TypeFor[T]())
	c := copier{seen: make(map[seenKey]reflect.Value)}
	c.copyInto(out.Elem(), reflect.ValueOf(v).Elem())
	return *out.Interface().(*T)
}

type seenKey struct {
	ptr uintptr
	typ reflect.Type
	n   int
}

type copier struct {
	seen map[seenKey]reflect.Value
}

var (
	errorIface = reflect.TypeFor[error]()
	sharedPtrs = map[reflect.Type]bool{
		reflect.TypeFor[*time.Location](): true,
		reflect.TypeOf(reflect.TypeFor[int]()): true,
	}
)

// copyInto stores a deep copy of src in dst. dst is addressable and zero;
// src is never a read-only (unexported field) value.
func (c *copier) copyInto(dst, src reflect.Value) {
	t := src.Type()
	if !hasRefs(t) {
		dst.Set(src)
		return
	}
	if cl, ok := c.viaCloner(src); ok {
		dst.Set(cl)
		return
	}
	switch t.Kind() {
	case reflect.Pointer:
		if src.IsNil() || sharedPtrs[t] {
			dst.Set(src)
			return
		}
		k := seenKey{ptr: src.Pointer(), typ: t}
		if p, ok := c.seen[k]; ok {
			dst.Set(p)
			return
		}
		p := reflect.New(t.Elem())
		c.seen[k] = p
		c.copyInto(p.Elem(), src.Elem())
		dst.Set(p)
	case reflect.Interface:
		if src.IsNil() || t.Implements(errorIface) {
			dst.Set(src)
			return
		}
		e := src.Elem()
		ne := reflect.New(e.Type()).Elem()
		c.copyInto(ne, e)
		dst.Set(ne)
	case reflect.Map:
		if src.IsNil() {
			return
		}
		k := seenKey{ptr: src.Pointer(), typ: t}
		if m, ok := c.seen[k]; ok {
			dst.Set(m)
			return
		}
		m := reflect.MakeMapWithSize(t, src.Len())
		c.seen[k] = m
		it := src.MapRange()
		for it.Next() {
			// keys keep their identity so lookups by the same key still match
			ev := reflect.New(t.Elem()).Elem()
			c.copyInto(ev, it.Value())
			m.SetMapIndex(it.Key(), ev)
		}
		dst.Set(m)
	case reflect.Slice:
		if src.IsNil() {
			return
		}
		k := seenKey{ptr: src.Pointer(), typ: t, n: src.Len()}
		if s, ok := c.seen[k]; ok {
			dst.Set(s)
			return
		}
		s := reflect.MakeSlice(t, src.Len(), src.Cap())
		c.seen[k] = s
		for i := 0; i < src.Len(); i++ {
			c.copyInto(s.Index(i), src.Index(i))
		}
		dst.Set(s)
	case reflect.Array:
		for i := 0; i < src.Len(); i++ {
			c.copyInto(dst.Index(i), src.Index(i))
		}
	case reflect.Struct:
		if !src.CanAddr() {
			tmp := reflect.New(t).Elem()
			tmp.Set(src)
			src = tmp
		}
		for i := 0; i < t.NumField(); i++ {
			c.copyInto(exposed(dst.Field(i)), exposed(src.Field(i)))
		}
	default:
		// func, chan, unsafe.Pointer
		dst.Set(src)
	}
}

// exposed lifts the read-only flag reflect puts on unexported fields. f
// must be addressable.
func exposed(f reflect.Value) reflect.Value {
	if f.CanSet() {
		return f
	}
	return reflect.NewAt(f.Type(), unsafe.Pointer(f.UnsafeAddr())).Elem()
}

type clonerRef struct {
	index int
	ptr   bool
	ok    bool
}

var clonerRefs sync.Map // reflect.Type -> clonerRef

// viaCloner calls a nested Clone() T method when the type of src has one.
func (c *copier) viaCloner(src reflect.Value) (reflect.Value, bool) {
	t := src.Type()
	if t.Kind() == reflect.Interface {
		return reflect.Value{}, false
	}
	var ref clonerRef
	if r, ok := clonerRefs.Load(t); ok {
		ref = r.(clonerRef)
	} else {
		ref = lookupCloner(t)
		clonerRefs.Store(t, ref)
	}
	if !ref.ok {
		return reflect.Value{}, false
	}
	if t.Kind() == reflect.Pointer && src.IsNil() {
		return reflect.Value{}, false
	}
	if !ref.ptr {
		return src.Method(ref.index).Call(nil)[0], true
	}
	if !src.CanAddr() {
		tmp := reflect.New(t).Elem()
		tmp.Set(src)
		src = tmp
	}
	return src.Addr().Method(ref.index).Call(nil)[0], true
}

func lookupCloner(t reflect.Type) clonerRef {
	match := func(m reflect.Method, recvArg int) bool {
		mt := m.Type
		return mt.NumIn() == recvArg && mt.NumOut() == 1 && mt.Out(0) == t
	}
	if m, ok := t.MethodByName("Clone"); ok && match(m, 1) {
		return clonerRef{index: m.Index, ok: true}
	}
	if t.Kind() != reflect.Pointer && t.Kind() != reflect.Interface {
		if m, ok := reflect.PointerTo(t).MethodByName("Clone"); ok && match(m, 1) {
			return clonerRef{index: m.Index, ptr: true, ok: true}
		}
	}
	return clonerRef{}
}

var refTypes sync.Map // reflect.Type -> bool

// hasRefs reports whether values of t can reach memory shared by assignment.
func hasRefs(t reflect.Type) bool {
	if r, ok := refTypes.Load(t); ok {
		return r.(bool)
	}
	var r bool
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		r = true
	case reflect.Array:
		r = t.Len() > 0 && hasRefs(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if hasRefs(t.Field(i).Type) {
				r = true
				break
			}
		}
	}
	refTypes.Store(t, r)
	return r
}
