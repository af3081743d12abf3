package ai

import "polyglot/internal/model"

// JSONSchema names a JSON schema used for structured output.
type JSONSchema struct {
	Name        string
	Description string
	Schema      map[string]any
}

// TranslationSchema describes the detect-and-translate response: the detected
// source language plus one required string field per catalog language.
func TranslationSchema() JSONSchema {
	langs := model.Languages()

	names := make([]string, 0, len(langs))
	for _, l := range langs {
		names = append(names, l.String())
	}

	properties := map[string]any{
		"sourceLanguage": map[string]any{
			"type":        "string",
			"description": "The detected source language of the input text.",
			"enum":        names,
		},
	}
	required := []string{"sourceLanguage"}
	for _, l := range langs {
		properties[l.FieldKey()] = map[string]any{
			"type":        "string",
			"description": "The translated text in " + l.String() + ". If the source is " + l.String() + ", return the original text.",
		}
		required = append(required, l.FieldKey())
	}

	return JSONSchema{
		Name:        "translation",
		Description: "Detected source language and the text in every supported language.",
		Schema: map[string]any{
			"type":                 "object",
			"properties":           properties,
			"required":             required,
			"additionalProperties": false,
		},
	}
}
