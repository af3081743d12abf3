package model

import (
	"fmt"
	"strings"
)

// TranslationResult holds the detected source language and the text in every
// catalog language. The source language's field carries the original input.
type TranslationResult struct {
	SourceLanguage     Language `json:"sourceLanguage"`
	Japanese           string   `json:"japanese"`
	TraditionalChinese string   `json:"traditionalChinese"`
	English            string   `json:"english"`
	Korean             string   `json:"korean"`
}

// Text returns the text stored for lang.
func (r *TranslationResult) Text(lang Language) string {
	return *r.field(lang)
}

// SetText replaces the text stored for lang.
func (r *TranslationResult) SetText(lang Language, text string) {
	*r.field(lang) = text
}

func (r *TranslationResult) field(lang Language) *string {
	switch lang {
	case Japanese:
		return &r.Japanese
	case TraditionalChinese:
		return &r.TraditionalChinese
	case English:
		return &r.English
	case Korean:
		return &r.Korean
	default:
		panic(fmt.Sprintf("model: unknown language %q", string(lang)))
	}
}

// Targets returns the catalog languages other than the source, in catalog order.
func (r *TranslationResult) Targets() []Language {
	targets := make([]Language, 0, len(catalog)-1)
	for _, l := range catalog {
		if l != r.SourceLanguage {
			targets = append(targets, l)
		}
	}
	return targets
}

// Combined joins the target texts with a blank line between them.
func (r *TranslationResult) Combined() string {
	targets := r.Targets()
	parts := make([]string, 0, len(targets))
	for _, l := range targets {
		parts = append(parts, r.Text(l))
	}
	return strings.Join(parts, "\n\n")
}
