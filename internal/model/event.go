package model

import (
	"time"
)

// TurnEvent is the journal record published for every handled turn.
type TurnEvent struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Language  Language  `json:"language"`
	Message   string    `json:"message"`
	Reply     string    `json:"reply"`
	RawIntent Intent    `json:"raw_intent"`
	Tier      string    `json:"tier"`
	Intent    Intent    `json:"intent"`
	OK        bool      `json:"ok"`
	LatencyMs int64     `json:"latency_ms"`
	CreatedAt time.Time `json:"created_at"`

	// Populated on read.
	Sequence uint64 `json:"sequence,omitempty"`
}

// ResetEvent is published when a session is reset.
type ResetEvent struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
}
