package decl

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/reoring/typeclass"
)

// ParseYAML decodes a multi-document YAML stream. Empty documents are
// skipped.
func ParseYAML(data []byte) ([]Document, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var out []Document
	for i := 0; ; i++ {
		var d Document
		if err := dec.Decode(&d); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, parseError(typeclass.Root().Index(i), err)
		}
		if d.Name == "" && len(d.Operations) == 0 {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

// ParseJSON decodes one document object or an array of them. Repeated keys
// are reported as duplicate_key Issues.
func ParseJSON(data []byte) ([]Document, error) {
	// syntax errors are left to the decoder below
	if iss, err := detectDuplicateKeys(data); err == nil && len(iss) > 0 {
		return nil, iss
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var out []Document
	var err error
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		err = dec.Decode(&out)
	} else {
		var d Document
		if err = dec.Decode(&d); err == nil {
			out = []Document{d}
		}
	}
	if err != nil {
		return nil, parseError(typeclass.Root(), err)
	}
	if dec.More() {
		return nil, parseError(typeclass.Root(), errors.New("trailing data after document"))
	}
	return out, nil
}

func parseError(at typeclass.PathRef, err error) error {
	it := at.Issue(typeclass.CodeParseError, "got", err.Error())
	it.Cause = err
	return typeclass.Issues{it}
}

// Load reads a declaration file; ".json" files are parsed as JSON and
// everything else as YAML.
func Load(path string) ([]Document, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("decl: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return ParseJSON(b)
	}
	return ParseYAML(b)
}

// LoadContracts loads path and defines every contract in it.
func LoadContracts(path string, reg *Registry) ([]*typeclass.Contract, error) {
	docs, err := Load(path)
	if err != nil {
		return nil, err
	}
	return Contracts(docs, reg)
}

// Contracts defines the contract of every document, stopping at the first
// one that fails.
func Contracts(docs []Document, reg *Registry) ([]*typeclass.Contract, error) {
	out := make([]*typeclass.Contract, 0, len(docs))
	for i, d := range docs {
		c, err := d.Contract(reg)
		if err != nil {
			return nil, fmt.Errorf("decl: document %d (%s): %w", i, d.Name, err)
		}
		out = append(out, c)
	}
	return out, nil
}

// EncodeJSON writes a single document as an object and several as an array.
func EncodeJSON(w io.Writer, docs ...Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if len(docs) == 1 {
		return enc.Encode(docs[0])
	}
	return enc.Encode(docs)
}

// EncodeYAML writes docs as a multi-document YAML stream.
func EncodeYAML(w io.Writer, docs ...Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	for _, d := range docs {
		if err := enc.Encode(d); err != nil {
			return err
		}
	}
	return enc.Close()
}
