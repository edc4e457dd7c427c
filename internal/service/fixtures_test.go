package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/capitalize-ai/trip-concierge/internal/dispatch"
	"github.com/capitalize-ai/trip-concierge/internal/intent"
	"github.com/capitalize-ai/trip-concierge/internal/llm"
	"github.com/capitalize-ai/trip-concierge/internal/model"
	"github.com/capitalize-ai/trip-concierge/internal/provider/providertest"
	"github.com/capitalize-ai/trip-concierge/internal/slots"
	"github.com/capitalize-ai/trip-concierge/internal/store"
	"github.com/capitalize-ai/trip-concierge/internal/synth"
	"github.com/capitalize-ai/trip-concierge/pkg/logger"
)

var fixedNow = time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func staticOptions(nFlights, nHotels int) *providertest.Static {
	s := &providertest.Static{}
	for i := 0; i < nFlights; i++ {
		s.Flights = append(s.Flights, model.Flight{Airline: "Saudia", FlightNumber: "SV100", Price: decimal.NewFromInt(800)})
	}
	for i := 0; i < nHotels; i++ {
		s.Hotels = append(s.Hotels, model.Hotel{Name: "Hilton", PricePerNight: decimal.NewFromInt(1000)})
	}
	return s
}

type fakeJournal struct {
	mu     sync.Mutex
	turns  []*model.TurnEvent
	resets []*model.ResetEvent
	err    error
}

func (j *fakeJournal) PublishTurn(_ context.Context, e *model.TurnEvent) (uint64, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.err != nil {
		return 0, j.err
	}
	j.turns = append(j.turns, e)
	return uint64(len(j.turns)), nil
}

func (j *fakeJournal) PublishReset(_ context.Context, e *model.ResetEvent) (uint64, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.err != nil {
		return 0, j.err
	}
	j.resets = append(j.resets, e)
	return uint64(len(j.resets)), nil
}

type fakeLLM struct {
	reply string
	err   error
	calls int
	last  *llm.CompletionRequest
}

func (f *fakeLLM) Complete(_ context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	f.calls++
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return &llm.CompletionResponse{Content: f.reply, Model: "fake"}, nil
}

func (f *fakeLLM) CompleteStream(ctx context.Context, req *llm.CompletionRequest, cb llm.StreamCallback) (*llm.CompletionResponse, error) {
	f.calls++
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	for i, word := range []string{f.reply[:len(f.reply)/2], f.reply[len(f.reply)/2:]} {
		if err := cb(word, i); err != nil {
			return nil, err
		}
	}
	return &llm.CompletionResponse{Content: f.reply, Model: "fake"}, nil
}

func (f *fakeLLM) Name() string { return "fake" }

var _ llm.Client = (*fakeLLM)(nil)

var errProviderDown = errors.New("provider down")

type harness struct {
	repo     *store.Memory
	sessions *SessionService
	turns    *TurnService
	journal  *fakeJournal
}

func newHarness(p *providertest.Static, client llm.Client) *harness {
	log := logger.NewNop()
	repo := store.NewMemory()
	j := &fakeJournal{}
	sessions := NewSessionService(repo, log, WithJournal(j), WithClock(fixedClock))
	turns := NewTurnService(TurnDeps{
		Sessions:   sessions,
		Classifier: intent.NewClassifier(nil, log),
		Resolver:   intent.NewResolver(log),
		Extractor:  slots.NewExtractor(fixedClock),
		Dispatcher: dispatch.New(p, p, synth.New(synth.StrategyCrossProduct, 0), log),
		LLM:        client,
		Journal:    j,
	}, TurnConfig{}, log)
	return &harness{repo: repo, sessions: sessions, turns: turns, journal: j}
}
