package typeclass_test

import (
	"errors"
	"testing"

	"github.com/reoring/typeclass"
)

func TestMethodHandles_Call(t *testing.T) {
	c := typeclass.ContractOf[Counter]()
	add, err := typeclass.Method1Of[int, int](c, "Add")
	if err != nil {
		t.Fatalf("Method1Of(Add): %v", err)
	}
	total, err := typeclass.Method0Of[int](c, "Total")
	if err != nil {
		t.Fatalf("Method0Of(Total): %v", err)
	}
	v := typeclass.MustOf[Counter](counter{})
	defer v.Close()
	if n, err := add.Call(v.Container(), 3); err != nil || n != 3 {
		t.Fatalf("Add(3) = %d, %v", n, err)
	}
	if n, err := total.Call(v.Container()); err != nil || n != 3 {
		t.Fatalf("Total() = %d, %v", n, err)
	}
}

func TestMethodHandles_ErrorResult(t *testing.T) {
	c := typeclass.ContractOf[Fallible]()
	div, err := typeclass.Method2Of[int, int, int](c, "Div")
	if err != nil {
		t.Fatalf("Method2Of(Div): %v", err)
	}
	v := typeclass.MustOf[Fallible](divider{})
	defer v.Close()
	if n, err := div.Call(v.Container(), 9, 3); err != nil || n != 3 {
		t.Fatalf("Div(9,3) = %d, %v", n, err)
	}
	if _, err := div.Call(v.Container(), 1, 0); err != errDivByZero {
		t.Fatalf("expected the method's error, got %v", err)
	}
}

func TestMethodHandles_Void(t *testing.T) {
	f, err := typeclass.Method0Of[typeclass.Void](typeclass.ContractOf[Noop](), "F")
	if err != nil {
		t.Fatalf("Method0Of[Void](F): %v", err)
	}
	v := typeclass.MustOf[Noop](noop{})
	defer v.Close()
	if _, err := f.Call(v.Container()); err != nil {
		t.Fatalf("F(): %v", err)
	}
}

func TestMethodHandles_SignatureChecks(t *testing.T) {
	c := typeclass.ContractOf[Fallible]()
	cases := []struct {
		name string
		get  func() error
		code string
	}{
		{"unknown", func() error { _, err := typeclass.Method0Of[int](c, "Mul"); return err }, typeclass.CodeUnknownOperation},
		{"arity", func() error { _, err := typeclass.Method1Of[int, int](c, "Div"); return err }, typeclass.CodeArityMismatch},
		{"param", func() error { _, err := typeclass.Method2Of[int, string, int](c, "Div"); return err }, typeclass.CodeParamType},
		{"result", func() error { _, err := typeclass.Method2Of[int, int, string](c, "Div"); return err }, typeclass.CodeResultType},
		{"void", func() error { _, err := typeclass.Method2Of[int, int, typeclass.Void](c, "Div"); return err }, typeclass.CodeArityMismatch},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			iss, ok := typeclass.AsIssues(tc.get())
			if !ok || iss[0].Code != tc.code {
				t.Fatalf("expected %s, got %v", tc.code, iss)
			}
		})
	}

	g := typeclass.MustDefine("greeter",
		typeclass.Op("Greet", sliceOf(stringType())).Returns(stringType()).AsVariadic(),
	)
	if _, err := typeclass.Method1Of[[]string, string](g, "Greet"); err == nil {
		t.Fatalf("variadic operations have no typed handle")
	}
}

func TestMethodHandles_WrongContainer(t *testing.T) {
	total, err := typeclass.Method0Of[int](typeclass.ContractOf[Counter](), "Total")
	if err != nil {
		t.Fatalf("Method0Of: %v", err)
	}
	p := typeclass.MustOf[Producer](StaticProducer{})
	defer p.Close()
	if _, err := total.Call(p.Container()); !errors.Is(err, typeclass.ErrContractMismatch) {
		t.Fatalf("expected ErrContractMismatch, got %v", err)
	}
	var zero typeclass.Method0[int]
	if _, err := zero.Call(p.Container()); !errors.Is(err, typeclass.ErrContractMismatch) {
		t.Fatalf("zero handle must not call anything, got %v", err)
	}

	c := typeclass.MustOf[Counter](counter{})
	_ = c.Close()
	if _, err := total.Call(c.Container()); !errors.Is(err, typeclass.ErrDestroyed) {
		t.Fatalf("expected ErrDestroyed, got %v", err)
	}
}
