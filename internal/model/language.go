package model

import "fmt"

// Language is one of the four languages the translator works with.
type Language string

const (
	Japanese           Language = "Japanese"
	TraditionalChinese Language = "Traditional Chinese"
	English            Language = "English"
	Korean             Language = "Korean"
)

var catalog = [...]Language{Japanese, TraditionalChinese, English, Korean}

// Languages returns the catalog in display order.
func Languages() []Language {
	out := make([]Language, len(catalog))
	copy(out, catalog[:])
	return out
}

// ParseLanguage resolves a display name such as "Traditional Chinese".
func ParseLanguage(s string) (Language, bool) {
	for _, l := range catalog {
		if string(l) == s {
			return l, true
		}
	}
	return "", false
}

// Valid reports whether l is a catalog member.
func (l Language) Valid() bool {
	_, ok := ParseLanguage(string(l))
	return ok
}

func (l Language) String() string {
	return string(l)
}

// FieldKey returns the key holding this language's text in a translation
// response. It panics for values outside the catalog.
func (l Language) FieldKey() string {
	switch l {
	case Japanese:
		return "japanese"
	case TraditionalChinese:
		return "traditionalChinese"
	case English:
		return "english"
	case Korean:
		return "korean"
	default:
		panic(fmt.Sprintf("model: unknown language %q", string(l)))
	}
}
