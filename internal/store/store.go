// Package store persists conversation sessions.
package store

import (
	"context"
	"errors"

	"github.com/capitalize-ai/trip-concierge/internal/model"
)

var (
	// ErrNotFound is returned when no session exists for the id.
	ErrNotFound = errors.New("session not found")
	// ErrExists is returned by Create when the id is taken.
	ErrExists = errors.New("session already exists")
)

// Repository stores sessions by id. Implementations return copies, so a
// caller mutating a returned session does not affect stored state until
// Update is called.
type Repository interface {
	Get(ctx context.Context, id string) (*model.Session, error)
	Create(ctx context.Context, s *model.Session) error
	Update(ctx context.Context, s *model.Session) error
	Delete(ctx context.Context, id string) error
}

// Pinger is implemented by repositories backed by a remote service.
type Pinger interface {
	Ping(ctx context.Context) error
}
