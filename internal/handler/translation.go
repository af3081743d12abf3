package handler

import (
	"time"

	"polyglot/internal/model"
)

type translationEntry struct {
	Language string `json:"language"`
	Key      string `json:"key"`
	Text     string `json:"text"`
}

type translationResponse struct {
	SourceLanguage string             `json:"sourceLanguage"`
	Original       string             `json:"original"`
	Translations   []translationEntry `json:"translations"`
	Combined       string             `json:"combined"`
}

type sessionErrorResponse struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type sessionResponse struct {
	ID          string                `json:"id"`
	Status      string                `json:"status"`
	Loading     bool                  `json:"loading"`
	Text        string                `json:"text"`
	Translation *translationResponse  `json:"translation,omitempty"`
	Error       *sessionErrorResponse `json:"error,omitempty"`
	Generation  uint64                `json:"generation"`
	UpdatedAt   string                `json:"updatedAt"`
}

// newTranslationResponse lists the non-source languages in catalog order.
func newTranslationResponse(r *model.TranslationResult) *translationResponse {
	targets := r.Targets()
	entries := make([]translationEntry, 0, len(targets))
	for _, l := range targets {
		entries = append(entries, translationEntry{Language: l.String(), Key: l.FieldKey(), Text: r.Text(l)})
	}
	return &translationResponse{
		SourceLanguage: r.SourceLanguage.String(),
		Original:       r.Text(r.SourceLanguage),
		Translations:   entries,
		Combined:       r.Combined(),
	}
}

func newSessionResponse(id int64, state model.LifecycleState) sessionResponse {
	resp := sessionResponse{
		ID:         formatID(id),
		Status:     string(state.Status),
		Loading:    state.Status == model.StatusPending,
		Text:       state.Text,
		Generation: state.Generation,
		UpdatedAt:  state.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
	if state.Result != nil {
		resp.Translation = newTranslationResponse(state.Result)
	}
	if state.Error != nil {
		resp.Error = &sessionErrorResponse{Kind: state.Error.Kind, Message: state.Error.Message}
	}
	return resp
}
