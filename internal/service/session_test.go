package service

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/capitalize-ai/trip-concierge/internal/model"
	"github.com/capitalize-ai/trip-concierge/internal/store"
	"github.com/capitalize-ai/trip-concierge/pkg/logger"
)

func newSessions() (*SessionService, *fakeJournal) {
	j := &fakeJournal{}
	return NewSessionService(store.NewMemory(), logger.NewNop(), WithJournal(j), WithClock(fixedClock)), j
}

func TestGetOrCreateIsIdempotent(t *testing.T) {
	svc, _ := newSessions()
	ctx := context.Background()

	first, err := svc.GetOrCreate(ctx, "abc", model.LanguageEnglish)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if _, err := svc.AppendTurn(ctx, "abc", model.Turn{Role: model.RoleUser, Text: "hi"}); err != nil {
		t.Fatalf("AppendTurn: %v", err)
	}
	second, err := svc.GetOrCreate(ctx, "abc", "")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	third, err := svc.GetOrCreate(ctx, "abc", "")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if !reflect.DeepEqual(second, third) {
		t.Fatalf("repeated GetOrCreate returned different snapshots")
	}
	if len(second.History) != 1 || second.CreatedAt != first.CreatedAt {
		t.Fatalf("history=%d, want existing session preserved", len(second.History))
	}
}

func TestGetOrCreateDefaultsLanguage(t *testing.T) {
	svc := NewSessionService(store.NewMemory(), logger.NewNop(), WithDefaultLanguage(model.LanguageArabic))
	sess, err := svc.GetOrCreate(context.Background(), "s1", "")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if sess.Language != model.LanguageArabic {
		t.Fatalf("language=%s, want ar", sess.Language)
	}
	sess, _ = svc.GetOrCreate(context.Background(), "s1", model.LanguageEnglish)
	if sess.Language != model.LanguageEnglish {
		t.Fatalf("language=%s, want en after switch", sess.Language)
	}
}

func TestInvalidSessionID(t *testing.T) {
	svc, _ := newSessions()
	for _, id := range []string{"", "has space", "semi;colon"} {
		if _, err := svc.GetOrCreate(context.Background(), id, ""); !errors.Is(err, model.ErrInvalidSessionID) {
			t.Fatalf("id %q: err=%v, want ErrInvalidSessionID", id, err)
		}
	}
}

func TestResetClearsContext(t *testing.T) {
	svc, j := newSessions()
	ctx := context.Background()

	if _, err := svc.GetOrCreate(ctx, "abc", model.LanguageArabic); err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	_, _ = svc.AppendTurn(ctx, "abc", model.Turn{Role: model.RoleUser, Text: "فندق"})
	_ = svc.SetLastIntent(ctx, "abc", model.IntentHotelBooking)
	_ = svc.CacheHotels(ctx, "abc", []model.Hotel{{Name: "Hilton"}})
	_ = svc.RecordPreferences(ctx, "abc", model.SlotSet{Class: model.ClassEconomy, Destination: "Riyadh"}, model.LanguageArabic)

	sess, err := svc.Reset(ctx, "abc")
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if sess.ID != "abc" || sess.Language != model.LanguageArabic {
		t.Fatalf("reset lost identity: id=%s lang=%s", sess.ID, sess.Language)
	}
	if len(sess.History) != 0 || sess.LastIntent != "" || len(sess.HotelOptions) != 0 || len(sess.Preferences) != 0 {
		t.Fatalf("reset left context behind: %+v", sess)
	}
	if sess.ResetAt == nil || !sess.ResetAt.Equal(fixedNow) {
		t.Fatalf("reset_at=%v, want %v", sess.ResetAt, fixedNow)
	}
	if len(j.resets) != 1 {
		t.Fatalf("reset events=%d, want 1", len(j.resets))
	}

	sess, _ = svc.AppendTurn(ctx, "abc", model.Turn{Role: model.RoleUser, Text: "hello"})
	if sess.TurnCount() != 1 || sess.HasPriorIntent() {
		t.Fatalf("after reset: turns=%d prior=%v", sess.TurnCount(), sess.HasPriorIntent())
	}
}

func TestResetUnknownSessionCreatesIt(t *testing.T) {
	svc, _ := newSessions()
	sess, err := svc.Reset(context.Background(), "fresh")
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if sess.ID != "fresh" || len(sess.History) != 0 {
		t.Fatalf("session=%+v", sess)
	}
}

func TestResetSurvivesJournalFailure(t *testing.T) {
	svc, j := newSessions()
	j.err = errors.New("nats down")
	if _, err := svc.Reset(context.Background(), "abc"); err != nil {
		t.Fatalf("Reset: %v", err)
	}
}

func TestRecordPreferencesDeduplicatesDestinations(t *testing.T) {
	svc, _ := newSessions()
	ctx := context.Background()
	for _, d := range []string{"Jeddah", "Riyadh", "Jeddah"} {
		if err := svc.RecordPreferences(ctx, "p", model.SlotSet{Class: model.ClassBusiness, Destination: d}, model.LanguageEnglish); err != nil {
			t.Fatalf("RecordPreferences: %v", err)
		}
	}
	sess, _ := svc.Get(ctx, "p")
	if got := sess.Preferences[model.PrefDestinations]; !reflect.DeepEqual(got, []string{"Jeddah", "Riyadh"}) {
		t.Fatalf("destinations=%v", got)
	}
	if got := sess.Preferences[model.PrefFlightClass]; !reflect.DeepEqual(got, []string{model.ClassBusiness}) {
		t.Fatalf("class=%v", got)
	}
}

func TestConcurrentAppendsAreNotLost(t *testing.T) {
	svc, _ := newSessions()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.AppendTurn(ctx, "busy", model.Turn{Role: model.RoleUser, Text: "x"}); err != nil {
				t.Errorf("AppendTurn: %v", err)
			}
		}()
	}
	wg.Wait()

	sess, _ := svc.Get(ctx, "busy")
	if len(sess.History) != 25 {
		t.Fatalf("history=%d, want 25", len(sess.History))
	}
	if n := svc.locks.size(); n != 0 {
		t.Fatalf("lock table size=%d, want 0", n)
	}
}
