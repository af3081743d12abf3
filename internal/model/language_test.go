package model_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"polyglot/internal/model"
)

func TestLanguages_CatalogOrder(t *testing.T) {
	require.Equal(t, []model.Language{
		model.Japanese,
		model.TraditionalChinese,
		model.English,
		model.Korean,
	}, model.Languages())
}

func TestLanguages_ReturnsCopy(t *testing.T) {
	langs := model.Languages()
	langs[0] = "French"
	require.Equal(t, model.Japanese, model.Languages()[0])
}

func TestLanguage_FieldKeyCoversCatalog(t *testing.T) {
	keys := map[string]bool{}
	for _, l := range model.Languages() {
		keys[l.FieldKey()] = true
	}
	require.Equal(t, map[string]bool{
		"japanese":           true,
		"traditionalChinese": true,
		"english":            true,
		"korean":             true,
	}, keys)
}

func TestLanguage_FieldKeyUnknownPanics(t *testing.T) {
	require.Panics(t, func() { _ = model.Language("French").FieldKey() })
}

func TestParseLanguage(t *testing.T) {
	l, ok := model.ParseLanguage("Traditional Chinese")
	require.True(t, ok)
	require.Equal(t, model.TraditionalChinese, l)

	_, ok = model.ParseLanguage("French")
	require.False(t, ok)

	_, ok = model.ParseLanguage("english")
	require.False(t, ok, "display names are case sensitive")
}

func TestTranslationResult_TextAndTargets(t *testing.T) {
	r := &model.TranslationResult{
		SourceLanguage:     model.English,
		Japanese:           "こんにちは",
		TraditionalChinese: "你好",
		English:            "hello",
		Korean:             "안녕하세요",
	}

	require.Equal(t, "hello", r.Text(model.English))
	require.Equal(t, []model.Language{model.Japanese, model.TraditionalChinese, model.Korean}, r.Targets())
	require.Equal(t, "こんにちは\n\n你好\n\n안녕하세요", r.Combined())

	r.SetText(model.Korean, "안녕")
	require.Equal(t, "안녕", r.Korean)
}
