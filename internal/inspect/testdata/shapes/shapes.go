// Package shapes is loaded from source by the inspect tests.
package shapes

import "time"

type Square struct{ side int }

func (s Square) Area() int                   { return s.side * s.side }
func (s *Square) Scale(k int)                { s.side *= k }
func (s Square) Name(parts ...string) string { return "square" }
func (s Square) Bytes() []byte               { return nil }
func (s Square) hidden()                     {}

func (s Square) Age(since time.Time) (time.Duration, error) {
	return time.Since(since), nil
}

type Shape interface {
	Area() int
	Describe(v interface{}) string
}
