package i18n

import "strings"

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "op", "want" or "got").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	var msg string
	switch t.lang {
	case "ja":
		switch code {
		case "invalid_name":
			msg = "操作名が不正です"
		case "duplicate_operation":
			msg = "操作名が重複しています"
		case "nil_type":
			msg = "型が指定されていません"
		case "missing_method":
			msg = "メソッドがありません"
		case "arity_mismatch":
			msg = "引数または戻り値の数が一致しません"
		case "param_type":
			msg = "引数の型が一致しません"
		case "result_type":
			msg = "戻り値の型が一致しません"
		case "variadic_mismatch":
			msg = "可変長引数の指定が一致しません"
		case "unknown_operation":
			msg = "未知の操作です"
		case "arg_count":
			msg = "引数の数が不正です"
		case "arg_type":
			msg = "引数の型が不正です"
		case "unknown_type":
			msg = "未知の型名です"
		case "parse_error":
			msg = "解析エラー"
		case "duplicate_key":
			msg = "キーが重複しています"
		}
	default: // "en"
		switch code {
		case "invalid_name":
			msg = "invalid operation name"
		case "duplicate_operation":
			msg = "duplicate operation"
		case "nil_type":
			msg = "missing type"
		case "missing_method":
			msg = "method missing"
		case "arity_mismatch":
			msg = "parameter or result count mismatch"
		case "param_type":
			msg = "parameter type mismatch"
		case "result_type":
			msg = "result type mismatch"
		case "variadic_mismatch":
			msg = "variadic mismatch"
		case "unknown_operation":
			msg = "unknown operation"
		case "arg_count":
			msg = "wrong number of arguments"
		case "arg_type":
			msg = "argument type mismatch"
		case "unknown_type":
			msg = "unknown type name"
		case "parse_error":
			msg = "parse error"
		case "duplicate_key":
			msg = "duplicate key"
		}
	}
	if msg == "" {
		return code
	}
	return decorate(msg, data)
}

// decorate appends the well-known keys in a fixed order, e.g.
// "parameter type mismatch (op=Add, want=int, got=string)".
func decorate(msg string, data map[string]string) string {
	if len(data) == 0 {
		return msg
	}
	var parts []string
	for _, k := range []string{"op", "want", "got"} {
		if v, ok := data[k]; ok && v != "" {
			parts = append(parts, k+"="+v)
		}
	}
	if len(parts) == 0 {
		return msg
	}
	return msg + " (" + strings.Join(parts, ", ") + ")"
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
