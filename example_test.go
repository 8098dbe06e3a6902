package typeclass_test

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/reoring/typeclass"
)

func ExampleOf() {
	a, _ := typeclass.Of[Producer](StaticProducer{})
	defer a.Close()
	b, _ := typeclass.Of[Producer](DynamicProducer{N: 12})
	defer b.Close()
	fmt.Println(a.Use().Produce() + b.Use().Produce())
	// Output: 54
}

func ExampleNew() {
	producer := typeclass.MustDefine("producer",
		typeclass.Op("Produce").Returns(reflect.TypeFor[int]()))

	c, err := typeclass.New(producer, DynamicProducer{N: 12})
	if err != nil {
		panic(err)
	}
	defer c.Close()
	out, _ := c.Invoke("Produce")
	fmt.Println(out[0])

	_, err = typeclass.New(producer, Silent{})
	fmt.Println(errors.Is(err, typeclass.ErrContractViolation))
	// Output:
	// 12
	// true
}

func ExampleContainer_Move() {
	a := typeclass.MustNew(producerContract, DynamicProducer{N: 7})
	b := a.Move()
	defer b.Close()
	_, err := a.Invoke("Produce")
	fmt.Println(a.Live(), b.Live(), err)
	// Output: false true typeclass: use of moved-from container
}
