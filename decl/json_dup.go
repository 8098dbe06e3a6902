package decl

import (
	"bytes"
	"errors"
	"io"

	json "github.com/goccy/go-json"

	"github.com/reoring/typeclass"
)

type frameKind int

const (
	kindObject frameKind = iota
	kindArray
)

type dupFrame struct {
	kind         frameKind
	at           typeclass.PathRef
	keys         map[string]struct{}
	expectingKey bool
	key          string // object: last key read
	next         int    // array: index of the next element
}

// detectDuplicateKeys reports every key repeated within one object; plain
// decoding would keep only the last value.
func detectDuplicateKeys(data []byte) (typeclass.Issues, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var iss typeclass.Issues
	var stack []dupFrame

	// child returns the path of the value about to be read and advances the
	// enclosing frame past it.
	child := func() typeclass.PathRef {
		if len(stack) == 0 {
			return typeclass.Root()
		}
		top := &stack[len(stack)-1]
		if top.kind == kindArray {
			top.next++
			return top.at.Index(top.next - 1)
		}
		top.expectingKey = true
		return top.at.Field(top.key)
	}

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		switch v := tok.(type) {
		case json.Delim:
			switch v {
			case '{':
				stack = append(stack, dupFrame{kind: kindObject, at: child(), keys: map[string]struct{}{}, expectingKey: true})
			case '[':
				stack = append(stack, dupFrame{kind: kindArray, at: child()})
			case '}', ']':
				if len(stack) > 0 {
					stack = stack[:len(stack)-1]
				}
			}
		case string:
			if n := len(stack); n > 0 && stack[n-1].kind == kindObject && stack[n-1].expectingKey {
				top := &stack[n-1]
				if _, dup := top.keys[v]; dup {
					iss = typeclass.AppendIssues(iss, top.at.Field(v).Issue(typeclass.CodeDuplicateKey, "got", v))
				}
				top.keys[v] = struct{}{}
				top.key = v
				top.expectingKey = false
				continue
			}
			child()
		default:
			child()
		}
	}
	return iss, nil
}
