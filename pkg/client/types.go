package client

import "time"

// BackendStatus mirrors the control API status payload.
type BackendStatus struct {
	Running   bool      `json:"running"`
	PID       int       `json:"pid"`
	StartedAt time.Time `json:"started_at,omitzero"`
	LastProbe string    `json:"last_probe,omitempty"`
	Spawns    int       `json:"spawns"`
	Port      int       `json:"port"`
}

// Event mirrors one control API journal entry.
type Event struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	PID        int       `json:"pid,omitempty"`
	Detail     string    `json:"detail,omitempty"`
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error string `json:"error"`
}
