package decl_test

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/reoring/typeclass"
	"github.com/reoring/typeclass/decl"
)

func TestLoadContracts_YAMLStream(t *testing.T) {
	cs, err := decl.LoadContracts("testdata/contracts.yaml", nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cs) != 2 {
		t.Fatalf("expected 2 contracts, got %d", len(cs))
	}
	want := typeclass.MustDefine("producer", typeclass.Op("Produce").Returns(reflect.TypeFor[int]()))
	if cs[0].ID() != want.ID() {
		t.Fatalf("declared and loaded producer must share an id")
	}
	if got := cs[1].String(); got != "calc{Div(int, int) (int, error); Join(...string) string}" {
		t.Fatalf("unexpected calc contract %q", got)
	}
}

func TestLoadContracts_JSON(t *testing.T) {
	cs, err := decl.LoadContracts("testdata/noop.json", nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cs) != 1 || cs[0].Len() != 2 || cs[0].Operation(1).Name != "G" {
		t.Fatalf("unexpected contracts %v", cs)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := decl.Load("testdata/absent.yaml"); err == nil {
		t.Fatalf("expected an error for a missing file")
	}
}

func TestParse_RejectsUnknownFields(t *testing.T) {
	_, err := decl.ParseYAML([]byte("contract: x\nextra: 1\n"))
	if iss, ok := typeclass.AsIssues(err); !ok || iss[0].Code != typeclass.CodeParseError || iss[0].Path != "/0" {
		t.Fatalf("expected parse_error at /0, got %v", err)
	}
	_, err = decl.ParseJSON([]byte(`{"contract":"x","operations":[{"name":"F","returns":["int"]}]}`))
	if iss, ok := typeclass.AsIssues(err); !ok || iss[0].Code != typeclass.CodeParseError || iss[0].Cause == nil {
		t.Fatalf("expected parse_error with cause, got %v", err)
	}
	if _, err := decl.ParseJSON([]byte(`{"contract":"x"} {}`)); err == nil {
		t.Fatalf("expected trailing data to be rejected")
	}
}

func TestParseJSON_Array(t *testing.T) {
	docs, err := decl.ParseJSON([]byte(` [{"contract":"a","operations":[]},{"contract":"b","operations":[{"name":"F"}]}]`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(docs) != 2 || docs[1].Operations[0].Name != "F" {
		t.Fatalf("unexpected documents %+v", docs)
	}
}

func TestDocument_UnknownTypes(t *testing.T) {
	d := decl.Document{Name: "bad", Operations: []decl.OperationDecl{
		{Name: "Put", Params: []string{"Widget", "int"}, Results: []string{"map[[]int]bool"}},
		{Name: "Spread", Params: []string{"...int", "int"}},
	}}
	_, err := d.Contract(nil)
	iss, ok := typeclass.AsIssues(err)
	if !ok {
		t.Fatalf("expected Issues, got %v", err)
	}
	want := []struct{ path, code string }{
		{"/operations/0/params/0", typeclass.CodeUnknownType},
		{"/operations/0/results/0", typeclass.CodeUnknownType},
		{"/operations/1/params/0", typeclass.CodeVariadicMismatch},
	}
	if len(iss) != len(want) {
		t.Fatalf("expected %d issues, got %v", len(want), iss)
	}
	for i, w := range want {
		if iss[i].Path != w.path || iss[i].Code != w.code {
			t.Fatalf("issue %d: got %s at %s, want %s at %s", i, iss[i].Code, iss[i].Path, w.code, w.path)
		}
	}
}

func TestDocument_DefineIssuesPassThrough(t *testing.T) {
	d := decl.Document{Name: "dup", Operations: []decl.OperationDecl{{Name: "F"}, {Name: "F"}}}
	_, err := d.Contract(nil)
	if iss, ok := typeclass.AsIssues(err); !ok || iss[0].Code != typeclass.CodeDuplicateOperation {
		t.Fatalf("expected duplicate_operation, got %v", err)
	}
}

func TestRegistry_Resolve(t *testing.T) {
	reg := decl.NewRegistry()
	cases := []struct {
		name string
		want reflect.Type
	}{
		{"byte", reflect.TypeFor[uint8]()},
		{"interface{}", reflect.TypeFor[any]()},
		{"[]string", reflect.TypeFor[[]string]()},
		{"*int", reflect.TypeFor[*int]()},
		{"[4]byte", reflect.TypeFor[[4]byte]()},
		{"map[string][]int", reflect.TypeFor[map[string][]int]()},
		{"map[[2]int]map[string]error", reflect.TypeFor[map[[2]int]map[string]error]()},
	}
	for _, tc := range cases {
		got, ok := reg.Resolve(tc.name)
		if !ok || got != tc.want {
			t.Fatalf("Resolve(%q) = %v, %v", tc.name, got, ok)
		}
	}
	for _, bad := range []string{"", "Widget", "map[string", "[x]int", "map[[]int]bool"} {
		if _, ok := reg.Resolve(bad); ok {
			t.Fatalf("Resolve(%q) must fail", bad)
		}
	}
}

func TestContracts_OversizedArray(t *testing.T) {
	docs, err := decl.ParseYAML([]byte("contract: huge\noperations:\n  - name: Put\n    params: [\"[9223372036854775807]int\"]\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	_, err = decl.Contracts(docs, nil)
	iss, ok := typeclass.AsIssues(err)
	if !ok || len(iss) != 1 || iss[0].Code != typeclass.CodeUnknownType || iss[0].Path != "/operations/0/params/0" {
		t.Fatalf("expected unknown_type at /operations/0/params/0, got %v", err)
	}
	reg := decl.NewRegistry()
	for _, bad := range []string{"[4294967296]int64", "[1073741825]byte", "[2][9223372036854775807]bool"} {
		if _, ok := reg.Resolve(bad); ok {
			t.Fatalf("Resolve(%q) must fail", bad)
		}
	}
	if got, ok := reg.Resolve("[1024]int64"); !ok || got != reflect.TypeFor[[1024]int64]() {
		t.Fatalf("Resolve([1024]int64) = %v, %v", got, ok)
	}
}

func TestRegistry_RegisterType(t *testing.T) {
	reg := decl.NewRegistry()
	if err := decl.RegisterType[time.Duration](reg, ""); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := decl.RegisterType[time.Duration](reg, ""); err != nil {
		t.Fatalf("re-registering the same type must succeed: %v", err)
	}
	if err := decl.RegisterType[time.Time](reg, "time.Duration"); err == nil {
		t.Fatalf("expected a conflict for a name bound to another type")
	}
	if err := reg.Register(" ", reflect.TypeFor[int]()); err == nil {
		t.Fatalf("expected an error for an empty name")
	}
	got, ok := reg.Resolve("[]time.Duration")
	if !ok || got != reflect.TypeFor[[]time.Duration]() {
		t.Fatalf("composite of a registered type: %v %v", got, ok)
	}
	if name := reg.Name(reflect.TypeFor[map[string]*time.Duration]()); name != "map[string]*time.Duration" {
		t.Fatalf("unexpected name %q", name)
	}
}

type Clock interface {
	Since(start time.Time, units ...string) (time.Duration, error)
	Now() time.Time
}

func TestFromContract_RoundTrip(t *testing.T) {
	reg := decl.NewRegistry()
	_ = decl.RegisterType[time.Time](reg, "")
	_ = decl.RegisterType[time.Duration](reg, "")
	c := typeclass.ContractOf[Clock]()

	var yb bytes.Buffer
	if err := decl.EncodeYAML(&yb, decl.FromContract(c, reg)); err != nil {
		t.Fatalf("encode yaml: %v", err)
	}
	if !strings.Contains(yb.String(), "contract: Clock") || !strings.Contains(yb.String(), "time.Duration") {
		t.Fatalf("unexpected yaml:\n%s", yb.String())
	}
	docs, err := decl.ParseYAML(yb.Bytes())
	if err != nil {
		t.Fatalf("parse yaml: %v\n%s", err, yb.String())
	}
	back, err := docs[0].Contract(reg)
	if err != nil {
		t.Fatalf("contract: %v", err)
	}
	if back.ID() != c.ID() {
		t.Fatalf("round trip changed the contract:\n%s\n%s", c, back)
	}

	var jb bytes.Buffer
	if err := decl.EncodeJSON(&jb, decl.FromContract(c, reg), decl.FromContract(c, reg)); err != nil {
		t.Fatalf("encode json: %v", err)
	}
	docs, err = decl.ParseJSON(jb.Bytes())
	if err != nil || len(docs) != 2 {
		t.Fatalf("parse json: %v %d", err, len(docs))
	}
}

func TestParseJSON_DuplicateKeys(t *testing.T) {
	_, err := decl.ParseJSON([]byte(`{"contract":"x","operations":[{"name":"F"},{"name":"F","name":"G"}]}`))
	iss, ok := typeclass.AsIssues(err)
	if !ok || len(iss) != 1 {
		t.Fatalf("expected one issue, got %v", err)
	}
	if iss[0].Code != typeclass.CodeDuplicateKey || iss[0].Path != "/operations/1/name" {
		t.Fatalf("unexpected issue %+v", iss[0])
	}
}
