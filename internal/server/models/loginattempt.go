package models

import "time"

// LoginAttempt is an append-only audit record of a login evaluation.
// The username is free text: failed attempts against nonexistent accounts
// are recorded too. Rows are never mutated; the only deletion is the prune
// of failed rows when a success is recorded for the same username.
type LoginAttempt struct {
	ID          string
	Username    string
	IPAddress   string
	Successful  bool
	AttemptTime time.Time
}
