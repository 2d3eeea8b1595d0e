package i18n

import (
	"slices"
	"strings"
)

// Translator retrieves localized messages for diagnostic codes.
// data provides values substituted into the message template (for example
// "path", "helper" or "expected"). The reserved "form" entry selects a
// variant of the message, such as "param" for TYPE_MISMATCH on a helper
// parameter.
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var en = map[string]string{
	"UNKNOWN_PROPERTY":              `property "{path}" does not exist in the context schema`,
	"TYPE_MISMATCH":                 `"{helper}" expects {expected} for "{path}", got {actual}`,
	"TYPE_MISMATCH.param":           `parameter "{param}" of helper "{helper}" expects {expected}, got {actual}`,
	"MISSING_ARGUMENT":              `helper "{helper}" expects at least {required} argument(s), got {given}`,
	"MISSING_ARGUMENT.block":        `"{helper}" block requires an argument`,
	"UNKNOWN_HELPER":                `unknown helper "{helper}"`,
	"UNKNOWN_HELPER.block":          `unknown block helper "{helper}"`,
	"UNANALYZABLE":                  `{construct} cannot be statically analyzed`,
	"MISSING_IDENTIFIER_SCHEMAS":    `"{path}" uses identifier {identifier} but no identifier schemas were provided`,
	"UNKNOWN_IDENTIFIER":            `identifier {identifier} used by "{path}" has no schema`,
	"IDENTIFIER_PROPERTY_NOT_FOUND": `property "{path}" does not exist in the schema of identifier {identifier}`,
	"PARSE_ERROR":                   `parse error: {detail}`,
	"available":                     ` (available: {available})`,
}

var ja = map[string]string{
	"UNKNOWN_PROPERTY":              `プロパティ "{path}" はコンテキストのスキーマに存在しません`,
	"TYPE_MISMATCH":                 `"{helper}" は "{path}" に {expected} を期待しましたが {actual} でした`,
	"TYPE_MISMATCH.param":           `ヘルパー "{helper}" の引数 "{param}" は {expected} を期待しましたが {actual} でした`,
	"MISSING_ARGUMENT":              `ヘルパー "{helper}" には少なくとも {required} 個の引数が必要ですが {given} 個でした`,
	"MISSING_ARGUMENT.block":        `"{helper}" ブロックには引数が必要です`,
	"UNKNOWN_HELPER":                `未知のヘルパー "{helper}" です`,
	"UNKNOWN_HELPER.block":          `未知のブロックヘルパー "{helper}" です`,
	"UNANALYZABLE":                  `{construct} は静的に解析できません`,
	"MISSING_IDENTIFIER_SCHEMAS":    `"{path}" は識別子 {identifier} を使用していますが、識別子スキーマが指定されていません`,
	"UNKNOWN_IDENTIFIER":            `"{path}" が使用する識別子 {identifier} のスキーマがありません`,
	"IDENTIFIER_PROPERTY_NOT_FOUND": `プロパティ "{path}" は識別子 {identifier} のスキーマに存在しません`,
	"PARSE_ERROR":                   `解析エラー: {detail}`,
	"available":                     `（利用可能: {available}）`,
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	dict := en
	if t.lang == "ja" {
		dict = ja
	}
	tpl, ok := "", false
	if form := data["form"]; form != "" {
		tpl, ok = dict[code+"."+form]
	}
	if !ok {
		tpl, ok = dict[code]
	}
	if !ok {
		return code
	}
	if data["available"] != "" {
		tpl += dict["available"]
	}
	return fill(tpl, data)
}

// fill replaces {key} placeholders with data values. Unknown placeholders
// are left as is.
func fill(tpl string, data map[string]string) string {
	if len(data) == 0 || !strings.Contains(tpl, "{") {
		return tpl
	}
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, "{"+k+"}", data[k])
	}
	return strings.NewReplacer(pairs...).Replace(tpl)
}

// New returns the built-in Translator for lang ("en"/"ja"). Unknown
// languages fall back to English.
func New(lang string) Translator {
	if lang != "ja" {
		lang = "en"
	}
	return dictTranslator{lang: lang}
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	currentTranslator = New(lang)
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

// Current returns the Translator installed by SetLanguage or SetTranslator.
func Current() Translator { return currentTranslator }

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
