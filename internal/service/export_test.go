package service

import "time"

// MaskAPIKeyForTest exposes API key masking for tests.
func MaskAPIKeyForTest(apiKey string) string {
	return maskAPIKey(apiKey)
}

// IsMaskedKeyForTest exposes masked key detection for tests.
func IsMaskedKeyForTest(key string) bool {
	return isMaskedKey(key)
}

// CloseIfIdleForTest exposes the sweep's check-and-close step for tests.
func (s *Session) CloseIfIdleForTest(cutoff time.Time) bool {
	return s.closeIfIdle(cutoff)
}
