// Package service provides business logic for the trip concierge.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/capitalize-ai/trip-concierge/internal/model"
	"github.com/capitalize-ai/trip-concierge/internal/store"
	"github.com/capitalize-ai/trip-concierge/pkg/logger"
	"github.com/capitalize-ai/trip-concierge/pkg/metrics"
)

const maxRememberedDestinations = 10

// Journal receives turn and reset events. Publishing is best effort.
type Journal interface {
	PublishTurn(ctx context.Context, event *model.TurnEvent) (uint64, error)
	PublishReset(ctx context.Context, event *model.ResetEvent) (uint64, error)
}

// SessionService handles session lifecycle operations.
type SessionService struct {
	repo        store.Repository
	journal     Journal
	defaultLang model.Language
	now         func() time.Time
	locks       *keyedMutex
	logger      *logger.Logger
}

// SessionOption configures a SessionService.
type SessionOption func(*SessionService)

// WithJournal records resets in j.
func WithJournal(j Journal) SessionOption {
	return func(s *SessionService) { s.journal = j }
}

// WithDefaultLanguage sets the language of sessions created without one.
func WithDefaultLanguage(lang model.Language) SessionOption {
	return func(s *SessionService) { s.defaultLang = lang }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) SessionOption {
	return func(s *SessionService) { s.now = now }
}

// NewSessionService creates a new session service.
func NewSessionService(repo store.Repository, log *logger.Logger, opts ...SessionOption) *SessionService {
	s := &SessionService{
		repo:        repo,
		defaultLang: model.LanguageEnglish,
		now:         time.Now,
		locks:       newKeyedMutex(),
		logger:      log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the session or store.ErrNotFound.
func (s *SessionService) Get(ctx context.Context, id string) (*model.Session, error) {
	if err := model.ValidateSessionID(id); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// GetOrCreate returns the session for id, creating it on first use. An
// existing session keeps its history; a non-empty lang replaces its language.
func (s *SessionService) GetOrCreate(ctx context.Context, id string, lang model.Language) (*model.Session, error) {
	if err := model.ValidateSessionID(id); err != nil {
		return nil, err
	}
	unlock := s.locks.Lock(id)
	defer unlock()

	sess, err := s.repo.Get(ctx, id)
	switch {
	case err == nil:
		if lang == "" || sess.Language == lang {
			return sess, nil
		}
		sess.Language = lang
		sess.UpdatedAt = s.now()
		if err := s.repo.Update(ctx, sess); err != nil {
			return nil, fmt.Errorf("update session language: %w", err)
		}
		return sess, nil
	case !errors.Is(err, store.ErrNotFound):
		return nil, fmt.Errorf("get session: %w", err)
	}

	return s.create(ctx, id, lang)
}

func (s *SessionService) create(ctx context.Context, id string, lang model.Language) (*model.Session, error) {
	if lang == "" {
		lang = s.defaultLang
	}
	sess := model.NewSession(id, lang, s.now())
	if err := s.repo.Create(ctx, sess); err != nil {
		if errors.Is(err, store.ErrExists) {
			return s.repo.Get(ctx, id)
		}
		return nil, fmt.Errorf("create session: %w", err)
	}

	metrics.SessionsCreated.Inc()
	s.logger.WithContext(ctx).Info("session created",
		zap.String("session_id", id),
		zap.String("language", string(lang)),
	)
	return sess, nil
}

// mutate applies fn to the stored session under the session's lock,
// creating the session when it does not exist.
func (s *SessionService) mutate(ctx context.Context, id string, fn func(*model.Session)) (*model.Session, error) {
	if err := model.ValidateSessionID(id); err != nil {
		return nil, err
	}
	unlock := s.locks.Lock(id)
	defer unlock()

	sess, err := s.repo.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		if sess, err = s.create(ctx, id, ""); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	fn(sess)
	sess.UpdatedAt = s.now()

	err = s.repo.Update(ctx, sess)
	if errors.Is(err, store.ErrNotFound) {
		// Expired between read and write.
		err = s.repo.Create(ctx, sess)
	}
	if err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return sess, nil
}

// AppendTurn adds a turn to the end of the history.
func (s *SessionService) AppendTurn(ctx context.Context, id string, turn model.Turn) (*model.Session, error) {
	if turn.ID == "" {
		turn.ID = uuid.Must(uuid.NewV7()).String()
	}
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = s.now()
	}
	return s.mutate(ctx, id, func(sess *model.Session) {
		sess.History = append(sess.History, turn)
	})
}

// SetLastIntent records the intent the session's next turn builds on.
func (s *SessionService) SetLastIntent(ctx context.Context, id string, intent model.Intent) error {
	_, err := s.mutate(ctx, id, func(sess *model.Session) {
		sess.LastIntent = intent
	})
	return err
}

// CacheFlights replaces the cached flight candidates.
func (s *SessionService) CacheFlights(ctx context.Context, id string, flights []model.Flight) error {
	_, err := s.mutate(ctx, id, func(sess *model.Session) {
		sess.FlightOptions = append([]model.Flight{}, flights...)
	})
	return err
}

// CacheHotels replaces the cached hotel candidates.
func (s *SessionService) CacheHotels(ctx context.Context, id string, hotels []model.Hotel) error {
	_, err := s.mutate(ctx, id, func(sess *model.Session) {
		sess.HotelOptions = append([]model.Hotel{}, hotels...)
	})
	return err
}

// CacheResult stores whichever candidate lists the result carries.
func (s *SessionService) CacheResult(ctx context.Context, id string, res model.Result) error {
	switch r := res.(type) {
	case *model.FlightResult:
		return s.CacheFlights(ctx, id, r.Flights)
	case *model.HotelResult:
		return s.CacheHotels(ctx, id, r.Hotels)
	case *model.TripResult:
		_, err := s.mutate(ctx, id, func(sess *model.Session) {
			sess.FlightOptions = append([]model.Flight{}, r.Flights...)
			sess.HotelOptions = append([]model.Hotel{}, r.Hotels...)
		})
		return err
	}
	return nil
}

// RecordPreferences remembers the cabin class, destination, and language of
// a booking turn.
func (s *SessionService) RecordPreferences(ctx context.Context, id string, slots model.SlotSet, lang model.Language) error {
	_, err := s.mutate(ctx, id, func(sess *model.Session) {
		sess.Preferences[model.PrefFlightClass] = []string{slots.Class}
		sess.Preferences[model.PrefLanguage] = []string{string(lang)}

		dests := sess.Preferences[model.PrefDestinations]
		for _, d := range dests {
			if d == slots.Destination {
				return
			}
		}
		dests = append(dests, slots.Destination)
		if len(dests) > maxRememberedDestinations {
			dests = dests[len(dests)-maxRememberedDestinations:]
		}
		sess.Preferences[model.PrefDestinations] = dests
	})
	return err
}

// Reset clears history, caches, preferences, and the last intent. The
// session keeps its id and language; unknown ids get an empty session.
func (s *SessionService) Reset(ctx context.Context, id string) (*model.Session, error) {
	sess, err := s.mutate(ctx, id, func(sess *model.Session) {
		now := s.now()
		sess.History = []model.Turn{}
		sess.FlightOptions = []model.Flight{}
		sess.HotelOptions = []model.Hotel{}
		sess.Preferences = map[string][]string{}
		sess.LastIntent = ""
		sess.ResetAt = &now
	})
	if err != nil {
		return nil, err
	}

	metrics.SessionResets.Inc()
	log := s.logger.WithContext(ctx)
	log.Info("session reset", zap.String("session_id", id))

	if s.journal != nil {
		event := &model.ResetEvent{
			ID:        uuid.Must(uuid.NewV7()).String(),
			SessionID: id,
			CreatedAt: s.now(),
		}
		if _, err := s.journal.PublishReset(ctx, event); err != nil {
			metrics.JournalPublishFailures.Inc()
			log.Warn("failed to journal reset", zap.String("session_id", id), zap.Error(err))
		}
	}
	return sess, nil
}

// Ping checks the backing store when it supports it.
func (s *SessionService) Ping(ctx context.Context) error {
	if p, ok := s.repo.(store.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
