package model

import "time"

// LifecycleStatus is the tag of a session's request lifecycle.
type LifecycleStatus string

const (
	StatusIdle      LifecycleStatus = "idle"
	StatusPending   LifecycleStatus = "pending"
	StatusSucceeded LifecycleStatus = "succeeded"
	StatusFailed    LifecycleStatus = "failed"
)

// LifecycleError describes why the last translation attempt failed.
type LifecycleError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// LifecycleState is a snapshot of a session. Result is set only when Status
// is StatusSucceeded and Error only when Status is StatusFailed.
type LifecycleState struct {
	Status     LifecycleStatus
	Text       string
	Result     *TranslationResult
	Error      *LifecycleError
	Generation uint64
	UpdatedAt  time.Time
}

// Settled reports whether no translation is in flight for this snapshot.
func (s LifecycleState) Settled() bool {
	return s.Status != StatusPending
}
