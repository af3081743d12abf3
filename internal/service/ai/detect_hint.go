package ai

import (
	"github.com/abadojack/whatlanggo"

	"polyglot/internal/model"
)

// hintConfidence is the minimum whatlanggo confidence for an English hint.
const hintConfidence = 0.8

// DetectHint guesses the catalog language of text locally. Kana and Hangul
// are decisive and English needs a confident match. Han-only text gets no
// hint: kanji-only Japanese and Chinese share the script, so only the model
// can tell them apart. ok is false when no guess is made.
func DetectHint(text string) (lang model.Language, ok bool) {
	info := whatlanggo.Detect(text)

	switch info.Lang {
	case whatlanggo.Jpn:
		return model.Japanese, true
	case whatlanggo.Kor:
		return model.Korean, true
	case whatlanggo.Eng:
		if info.Confidence >= hintConfidence {
			return model.English, true
		}
	}
	return "", false
}
