package typeclass

import (
	"reflect"
	"testing"
)

type areaShape interface{ Area() int }

type square struct{ side int }

func (s square) Area() int { return s.side * s.side }

func TestAdapter_ReportsCallerContract(t *testing.T) {
	declared := MustDefine("areaShape", Op("Area").Returns(reflect.TypeFor[int]()))
	derived := ContractOf[areaShape]()
	if declared.ID() != derived.ID() {
		t.Fatalf("equal declarations must share an id")
	}
	a := MustNew(declared, square{side: 2})
	defer a.Close()
	b := MustNew(derived, square{side: 3})
	defer b.Close()
	if a.table.(*adapter[square]).b != b.table.(*adapter[square]).b {
		t.Fatalf("equal contracts must share one binding")
	}
	if a.table.Contract() != declared || b.table.Contract() != derived {
		t.Fatalf("table must report the caller's contract")
	}
	if b.table.Contract().Interface() != reflect.TypeFor[areaShape]() || a.table.Contract().Interface() != nil {
		t.Fatalf("unexpected Interface() through the table")
	}
	c := b.Clone()
	defer c.Close()
	if c.table.Contract() != derived {
		t.Fatalf("clone must keep the caller's contract")
	}
}

func TestDeepCopy_SharesImmutableHandles(t *testing.T) {
	type holder struct {
		typ reflect.Type
		ch  chan int
		m   map[int]int
	}
	ch := make(chan int)
	src := holder{typ: reflect.TypeFor[square](), ch: ch, m: map[int]int{1: 1}}
	dst := deepCopy(&src)
	if dst.typ != src.typ || dst.ch != ch {
		t.Fatalf("types and channels are shared")
	}
	dst.m[1] = 2
	if src.m[1] != 1 {
		t.Fatalf("map shared through unexported field")
	}
}
