package typeclass

// BindOpt configures how a concrete type is bound to a contract. When several
// options are passed, the last one wins.
type BindOpt struct {
	// FailFast reports only the first contract issue.
	FailFast bool
	// ValueReceiversOnly restricts method lookup to the value method set of
	// the concrete type, matching Go's own rule for assigning T to an
	// interface. By default pointer-receiver methods count as well, since
	// adapters hold the value addressably.
	ValueReceiversOnly bool
}

func lastOpt(opts []BindOpt) BindOpt {
	var opt BindOpt
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	return opt
}
