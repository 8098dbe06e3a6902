// Package decl reads and writes contract declaration documents.
//
// A document names a contract and lists its operations with Go type
// spellings:
//
//	contract: calc
//	operations:
//	  - name: Div
//	    params: [int, int]
//	    results: [int, error]
//	  - name: Join
//	    params: ["...string"]
//	    results: [string]
//
// A final parameter written as "...T" makes the operation variadic. YAML
// streams may hold several documents; JSON input is one object or an array
// of objects. Unknown fields are rejected in both formats.
package decl

import (
	"strings"

	"github.com/reoring/typeclass"
)

// Document is one contract declaration.
type Document struct {
	Name       string          `json:"contract" yaml:"contract"`
	Operations []OperationDecl `json:"operations" yaml:"operations"`
}

// OperationDecl declares one operation by type names.
type OperationDecl struct {
	Name    string   `json:"name" yaml:"name"`
	Params  []string `json:"params,omitempty" yaml:"params,omitempty,flow"`
	Results []string `json:"results,omitempty" yaml:"results,omitempty,flow"`
}

const variadicPrefix = "..."

// Contract resolves every type name through reg (nil means the built-in
// registry) and defines the contract. Unresolvable names are reported as
// unknown_type Issues; declaration problems come from typeclass.Define.
func (d Document) Contract(reg *Registry) (*typeclass.Contract, error) {
	reg = orDefault(reg)
	var iss typeclass.Issues
	ops := make([]typeclass.Operation, 0, len(d.Operations))
	root := typeclass.Root().Field("operations")
	for i, od := range d.Operations {
		at := root.Index(i)
		op := typeclass.Op(od.Name)
		variadic := false
		for j, name := range od.Params {
			p := at.Field("params").Index(j)
			if rest, ok := strings.CutPrefix(strings.TrimSpace(name), variadicPrefix); ok {
				if j != len(od.Params)-1 {
					iss = typeclass.AppendIssues(iss, p.Issue(typeclass.CodeVariadicMismatch, "op", od.Name, "got", name))
					continue
				}
				variadic = true
				name = "[]" + rest
			}
			t, ok := reg.Resolve(name)
			if !ok {
				iss = typeclass.AppendIssues(iss, p.Issue(typeclass.CodeUnknownType, "op", od.Name, "got", name))
				continue
			}
			op.Params = append(op.Params, t)
		}
		for j, name := range od.Results {
			t, ok := reg.Resolve(name)
			if !ok {
				iss = typeclass.AppendIssues(iss, at.Field("results").Index(j).Issue(typeclass.CodeUnknownType, "op", od.Name, "got", name))
				continue
			}
			op.Results = append(op.Results, t)
		}
		if variadic {
			op = op.AsVariadic()
		}
		ops = append(ops, op)
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return typeclass.Define(d.Name, ops...)
}

// FromContract writes c as a document using reg's names (nil means the
// built-in registry).
func FromContract(c *typeclass.Contract, reg *Registry) Document {
	reg = orDefault(reg)
	d := Document{Name: c.Name(), Operations: make([]OperationDecl, 0, c.Len())}
	for _, op := range c.Operations() {
		od := OperationDecl{Name: op.Name}
		for j, p := range op.Params {
			if op.Variadic && j == len(op.Params)-1 {
				od.Params = append(od.Params, variadicPrefix+reg.Name(p.Elem()))
				continue
			}
			od.Params = append(od.Params, reg.Name(p))
		}
		for _, r := range op.Results {
			od.Results = append(od.Results, reg.Name(r))
		}
		d.Operations = append(d.Operations, od)
	}
	return d
}
