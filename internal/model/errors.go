package model

import "errors"

var (
	ErrEmptyMessage        = errors.New("message is empty")
	ErrMessageTooLong      = errors.New("message is too long")
	ErrInvalidSessionID    = errors.New("invalid session id")
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrNoOptions           = errors.New("provider returned no options")
)
