// Package inspect checks contract declarations against Go source without
// running the code: it loads a package with go/packages and compares a
// named type's method set with a decl.Document.
package inspect

import (
	"fmt"
	"go/types"
	"os"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/reoring/typeclass"
	"github.com/reoring/typeclass/decl"
)

// Method describes one method of the inspected type. Type names use the
// spelling of declaration documents (package name qualified, "...T" for a
// variadic last parameter).
type Method struct {
	Name            string
	Params          []string
	Results         []string
	Variadic        bool
	PointerReceiver bool // only in the method set of *T
}

// TypeInfo is the method set of a named type found in source.
type TypeInfo struct {
	PkgPath   string
	Name      string
	Interface bool
	Methods   []Method // sorted by name
}

// Lookup returns the named method.
func (ti *TypeInfo) Lookup(name string) (Method, bool) {
	i := sort.Search(len(ti.Methods), func(i int) bool { return ti.Methods[i].Name >= name })
	if i < len(ti.Methods) && ti.Methods[i].Name == name {
		return ti.Methods[i], true
	}
	return Method{}, false
}

// Load loads pattern (an import path or a relative directory such as
// "./internal/shapes") from dir and inspects typeName in it.
func Load(dir, pattern, typeName string) (*TypeInfo, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedTypes,
		Dir:  dir,
		Env:  append(os.Environ(), "GOWORK=off"),
	}
	pkgs, err := packages.Load(cfg, pattern)
	if err != nil {
		return nil, fmt.Errorf("inspect: loading %s: %w", pattern, err)
	}
	if len(pkgs) != 1 {
		return nil, fmt.Errorf("inspect: %s matched %d packages, want 1", pattern, len(pkgs))
	}
	pkg := pkgs[0]
	if len(pkg.Errors) > 0 {
		var errs []string
		for _, e := range pkg.Errors {
			errs = append(errs, e.Error())
		}
		return nil, fmt.Errorf("inspect: package errors:\n  %s", strings.Join(errs, "\n  "))
	}
	return Inspect(pkg.Types, typeName)
}

// Inspect extracts the exported method set of typeName from a type-checked
// package.
func Inspect(pkg *types.Package, typeName string) (*TypeInfo, error) {
	obj := pkg.Scope().Lookup(typeName)
	if obj == nil {
		return nil, fmt.Errorf("inspect: type %q not found in package %s", typeName, pkg.Path())
	}
	tn, ok := obj.(*types.TypeName)
	if !ok {
		return nil, fmt.Errorf("inspect: %q is not a type in package %s", typeName, pkg.Path())
	}
	named, ok := tn.Type().(*types.Named)
	if !ok {
		return nil, fmt.Errorf("inspect: %q is not a named type in package %s", typeName, pkg.Path())
	}
	if named.TypeParams().Len() > 0 {
		return nil, fmt.Errorf("inspect: %q is generic; instantiate it in a named type first", typeName)
	}
	ti := &TypeInfo{PkgPath: pkg.Path(), Name: typeName}
	_, ti.Interface = named.Underlying().(*types.Interface)

	var full *types.MethodSet
	if ti.Interface {
		full = types.NewMethodSet(named)
	} else {
		full = types.NewMethodSet(types.NewPointer(named))
	}
	values := types.NewMethodSet(named)
	for i := 0; i < full.Len(); i++ {
		fn := full.At(i).Obj().(*types.Func)
		if !fn.Exported() {
			continue
		}
		sig := fn.Type().(*types.Signature)
		m := Method{
			Name:            fn.Name(),
			Variadic:        sig.Variadic(),
			PointerReceiver: values.Lookup(fn.Pkg(), fn.Name()) == nil,
		}
		for j := 0; j < sig.Params().Len(); j++ {
			pt := sig.Params().At(j).Type()
			if m.Variadic && j == sig.Params().Len()-1 {
				m.Params = append(m.Params, "..."+typeString(pt.(*types.Slice).Elem()))
				continue
			}
			m.Params = append(m.Params, typeString(pt))
		}
		for j := 0; j < sig.Results().Len(); j++ {
			m.Results = append(m.Results, typeString(sig.Results().At(j).Type()))
		}
		ti.Methods = append(ti.Methods, m)
	}
	sort.Slice(ti.Methods, func(i, j int) bool { return ti.Methods[i].Name < ti.Methods[j].Name })
	return ti, nil
}

func typeString(t types.Type) string {
	return normalize(types.TypeString(t, func(p *types.Package) string { return p.Name() }))
}

var (
	aliasWords   = regexp.MustCompile(`\b(byte|rune)\b`)
	emptyIface   = regexp.MustCompile(`interface\s*\{\s*\}`)
	aliasTargets = map[string]string{"byte": "uint8", "rune": "int32"}
)

// normalize maps alias spellings to one form so that "[]byte" and
// "[]uint8" compare equal.
func normalize(s string) string {
	s = strings.TrimSpace(s)
	s = emptyIface.ReplaceAllString(s, "any")
	return aliasWords.ReplaceAllStringFunc(s, func(w string) string { return aliasTargets[w] })
}

// Check compares ti with every operation of d and reports mismatches with
// the same codes and paths as runtime binding. valueOnly ignores methods
// declared on the pointer receiver.
func Check(ti *TypeInfo, d decl.Document, valueOnly bool) typeclass.Issues {
	var iss typeclass.Issues
	root := typeclass.Root().Field("operations")
	for _, op := range d.Operations {
		at := root.Field(op.Name)
		m, ok := ti.Lookup(op.Name)
		if !ok {
			iss = typeclass.AppendIssues(iss, at.Issue(typeclass.CodeMissingMethod, "op", op.Name))
			continue
		}
		if valueOnly && m.PointerReceiver && !ti.Interface {
			it := at.Issue(typeclass.CodeMissingMethod, "op", op.Name)
			it.Hint = "method has a pointer receiver"
			iss = typeclass.AppendIssues(iss, it)
			continue
		}
		if len(m.Params) != len(op.Params) || len(m.Results) != len(op.Results) {
			iss = typeclass.AppendIssues(iss, at.Issue(typeclass.CodeArityMismatch, "op", op.Name))
			continue
		}
		declVariadic := len(op.Params) > 0 && strings.HasPrefix(strings.TrimSpace(op.Params[len(op.Params)-1]), "...")
		if declVariadic != m.Variadic {
			iss = typeclass.AppendIssues(iss, at.Issue(typeclass.CodeVariadicMismatch, "op", op.Name))
			continue
		}
		for j, p := range op.Params {
			if want := normalize(p); want != m.Params[j] {
				iss = typeclass.AppendIssues(iss, at.Field("params").Index(j).Issue(typeclass.CodeParamType, "op", op.Name, "want", want, "got", m.Params[j]))
			}
		}
		for j, r := range op.Results {
			if want := normalize(r); want != m.Results[j] {
				iss = typeclass.AppendIssues(iss, at.Field("results").Index(j).Issue(typeclass.CodeResultType, "op", op.Name, "want", want, "got", m.Results[j]))
			}
		}
	}
	return iss
}
