package i18n

import (
	"strings"
	"testing"
)

func TestTranslator_DefaultAndJapanese(t *testing.T) {
	// default is en
	if msg := T("missing_method", nil); msg == "missing_method" || msg == "" {
		t.Fatalf("expected a human message, got %q", msg)
	}

	SetLanguage("ja")
	if msg := T("missing_method", nil); msg == "method missing" {
		t.Fatalf("expected japanese message, got %q", msg)
	}

	// reset to en
	SetLanguage("en")
}

func TestTranslator_DecoratesKnownKeys(t *testing.T) {
	msg := T("param_type", map[string]string{"op": "Add", "want": "int", "got": "string", "other": "x"})
	if msg != "parameter type mismatch (op=Add, want=int, got=string)" {
		t.Fatalf("unexpected message: %q", msg)
	}
	if strings.Contains(msg, "other") {
		t.Fatalf("unknown keys must not be rendered: %q", msg)
	}
}

func TestTranslator_UnknownCodeFallsBack(t *testing.T) {
	if msg := T("no_such_code", map[string]string{"op": "X"}); msg != "no_such_code" {
		t.Fatalf("expected code fallback, got %q", msg)
	}
}

type upper struct{}

func (upper) Message(code string, _ map[string]string) string { return strings.ToUpper(code) }

func TestSetTranslator_CustomAndReset(t *testing.T) {
	SetTranslator(upper{})
	if msg := T("arg_type", nil); msg != "ARG_TYPE" {
		t.Fatalf("custom translator not used: %q", msg)
	}
	SetTranslator(nil)
	if msg := T("arg_type", nil); msg != "argument type mismatch" {
		t.Fatalf("expected reset to english, got %q", msg)
	}
}
