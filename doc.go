// Package typeclass provides:
//
// - Contracts: ordered sets of required operations, derived from a Go interface (ContractOf) or declared (Define)
// - Value-semantic containers (Container, Value[I]) holding any value whose methods structurally satisfy a contract
// - Copy, move and deterministic destruction of erased values (Clone, Move, CopyFrom, MoveFrom, Destroy)
// - A stable error model via Issues (JSON Pointer, code, message) and *ContractViolation
//
// Design policy:
// - Keep only public APIs in the root package; put tooling under internal/ and the CLI under cmd/typeclass.
// - Contracts are validated once per (contract, type) pair and the result is memoized process-wide.
// - Every call is forwarded through a per-binding dispatch table; the engine never logs, retries or wraps
// errors returned by the held value.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	type Producer interface{ Produce() int }
//
//	a, err := typeclass.Of[Producer](StaticProducer{})
//	if err != nil { ... } // *ContractViolation
//	defer a.Close()
//	b := a.Clone() // independent copy
//	defer b.Close()
//	n := a.Use().Produce() + b.Use().Produce()
//
//	producer := typeclass.MustDefine("producer",
//		typeclass.Op("Produce").Returns(reflect.TypeFor[int]()))
//	c, err := typeclass.New(producer, DynamicProducer{N: 12})
//	out, err := c.Invoke("Produce")
package typeclass
