package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"polyglot/internal/logger"
	"polyglot/internal/metrics"
	"polyglot/internal/model"
	"polyglot/internal/service/ai"
)

// TranslationService detects the source language of a text and translates
// it into every catalog language with one remote call.
type TranslationService interface {
	// Translate returns ErrEmptyInput for blank text and *ServiceError for
	// any remote or response failure. It never retries and never caches.
	Translate(ctx context.Context, text string) (*model.TranslationResult, error)
}

type translationService struct {
	providers   *ai.Holder
	rateLimiter *ai.RateLimiter
	timeout     time.Duration
}

// NewTranslationService creates a translation service. timeout bounds each
// remote call; zero leaves the caller's context in charge.
func NewTranslationService(providers *ai.Holder, rateLimiter *ai.RateLimiter, timeout time.Duration) TranslationService {
	return &translationService{
		providers:   providers,
		rateLimiter: rateLimiter,
		timeout:     timeout,
	}
}

func (s *translationService) Translate(ctx context.Context, text string) (*model.TranslationResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	requestID := uuid.NewString()

	provider, err := s.providers.Get()
	if err != nil {
		logger.Warn("translation provider unavailable", "module", "service", "action", "translate", "resource", "translation", "result", "failed", "request_id", requestID, "error", err)
		return nil, communicationFailure(err)
	}

	callerCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	if err := s.rateLimiter.Wait(ctx); err != nil {
		if cancelledByCaller(callerCtx, err) {
			logger.Debug("translation cancelled", "module", "service", "action", "translate", "resource", "translation", "result", "skipped", "request_id", requestID, "provider", provider.Name())
			return nil, communicationFailure(err)
		}
		logger.Warn("translation rate limit wait failed", "module", "service", "action", "translate", "resource", "translation", "result", "failed", "request_id", requestID, "error", err)
		return nil, communicationFailure(err)
	}

	hint, _ := ai.DetectHint(text)
	systemPrompt := ai.GetDetectTranslatePrompt(hint)

	start := time.Now()
	raw, err := provider.CompleteJSON(ctx, systemPrompt, ai.WrapInput(text), ai.TranslationSchema())
	elapsed := time.Since(start)

	var result *model.TranslationResult
	if err == nil {
		result, err = decodeTranslation(raw)
	}
	if err != nil {
		svcErr := asServiceError(err)
		if cancelledByCaller(callerCtx, err) {
			logger.Debug("translation cancelled", "module", "service", "action", "translate", "resource", "translation", "result", "skipped", "request_id", requestID, "provider", provider.Name(), "model", provider.Model(), "duration_ms", elapsed.Milliseconds())
			metrics.ObserveTranslation(provider.Name(), metrics.OutcomeCancelled, elapsed, len(text))
			return nil, svcErr
		}
		metrics.ObserveTranslation(provider.Name(), outcome(svcErr.Kind), elapsed, len(text))
		logger.Warn("translation failed", "module", "service", "action", "translate", "resource", "translation", "result", "failed", "request_id", requestID, "provider", provider.Name(), "model", provider.Model(), "kind", svcErr.Kind.String(), "duration_ms", elapsed.Milliseconds(), "error", svcErr.Err)
		return nil, svcErr
	}

	// The source field always echoes the input verbatim, whatever the model returned.
	result.SetText(result.SourceLanguage, text)

	metrics.ObserveTranslation(provider.Name(), metrics.OutcomeSuccess, elapsed, len(text))
	logger.Info("translation completed", "module", "service", "action", "translate", "resource", "translation", "result", "ok", "request_id", requestID, "provider", provider.Name(), "model", provider.Model(), "source_language", result.SourceLanguage, "hint", hint, "duration_ms", elapsed.Milliseconds())
	return result, nil
}

// cancelledByCaller reports whether err comes from the caller giving up on
// the call, as when newer input supersedes it. A request timeout is not.
func cancelledByCaller(ctx context.Context, err error) bool {
	return errors.Is(err, context.Canceled) && errors.Is(ctx.Err(), context.Canceled)
}

func outcome(kind ErrorKind) string {
	switch kind {
	case InvalidResponseShape:
		return metrics.OutcomeInvalidResponseShape
	default:
		return metrics.OutcomeCommunicationFailure
	}
}

func asServiceError(err error) *ServiceError {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr
	}
	return communicationFailure(err)
}

// decodeTranslation validates the response shape. Text that is not a JSON
// object is a communication failure; a JSON object with a missing or
// mistyped field is an invalid shape. Empty strings are valid.
func decodeTranslation(raw string) (*model.TranslationResult, error) {
	payload := []byte(ai.StripCodeFence(raw))
	if !json.Valid(payload) {
		return nil, communicationFailure(fmt.Errorf("decode response: not valid JSON: %.80q", raw))
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, invalidShape("response is not an object: %v", err)
	}
	if fields == nil {
		return nil, invalidShape("response is null")
	}

	source, err := stringField(fields, "sourceLanguage")
	if err != nil {
		return nil, err
	}
	lang, ok := model.ParseLanguage(source)
	if !ok {
		return nil, invalidShape("source language %q is not supported", source)
	}

	result := &model.TranslationResult{SourceLanguage: lang}
	for _, l := range model.Languages() {
		text, err := stringField(fields, l.FieldKey())
		if err != nil {
			return nil, err
		}
		result.SetText(l, text)
	}
	return result, nil
}

func stringField(fields map[string]json.RawMessage, key string) (string, error) {
	raw, ok := fields[key]
	if !ok {
		return "", invalidShape("missing field %q", key)
	}
	// json.Unmarshal accepts null into a string; require an actual string.
	if !bytes.HasPrefix(bytes.TrimSpace(raw), []byte(`"`)) {
		return "", invalidShape("field %q is not a string", key)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", invalidShape("field %q: %v", key, err)
	}
	return s, nil
}
