package model

// ChatRequest is the body of a chat turn.
type ChatRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message"`
	Language  string `json:"language,omitempty"`
}

// TurnResponse is the outcome of one turn returned to clients.
type TurnResponse struct {
	SessionID string   `json:"session_id"`
	TurnID    string   `json:"turn_id"`
	Intent    Intent   `json:"intent"`
	RawIntent Intent   `json:"raw_intent"`
	OK        bool     `json:"ok"`
	Language  Language `json:"language"`
	Direction string   `json:"direction"`
	Text      string   `json:"text"`
	Data      Result   `json:"data"`
}

// ListTurnsResponse is a page of journal entries.
type ListTurnsResponse struct {
	Turns        []TurnEvent `json:"turns"`
	HasMore      bool        `json:"has_more"`
	LastSequence uint64      `json:"last_sequence"`
}

// TokenEvent is a streamed reply fragment.
type TokenEvent struct {
	Token string `json:"token"`
	Index int    `json:"index"`
}

// ErrorEvent is sent on streaming transports when a turn cannot be handled.
type ErrorEvent struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
