package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/capitalize-ai/trip-concierge/internal/model"
)

func TestMemoryLifecycle(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if _, err := m.Get(ctx, "abc"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get on empty store: err=%v, want ErrNotFound", err)
	}
	if err := m.Update(ctx, &model.Session{ID: "abc"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Update unknown: err=%v, want ErrNotFound", err)
	}

	s := model.NewSession("abc", model.LanguageEnglish, time.Now())
	if err := m.Create(ctx, s); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := m.Create(ctx, s); !errors.Is(err, ErrExists) {
		t.Fatalf("second Create: err=%v, want ErrExists", err)
	}

	s.LastIntent = model.IntentHotelBooking
	if err := m.Update(ctx, s); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err := m.Get(ctx, "abc")
	if err != nil || got.LastIntent != model.IntentHotelBooking {
		t.Fatalf("Get after update: %+v %v", got, err)
	}

	if err := m.Delete(ctx, "abc"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if m.Len() != 0 {
		t.Fatalf("len=%d after delete", m.Len())
	}
}

func TestMemoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	s := model.NewSession("abc", model.LanguageEnglish, time.Now())
	s.History = append(s.History, model.Turn{Role: model.RoleUser, Text: "hi"})
	s.Preferences[model.PrefDestinations] = []string{"Jeddah"}
	if err := m.Create(ctx, s); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, _ := m.Get(ctx, "abc")
	got.History[0].Text = "changed"
	got.Preferences[model.PrefDestinations][0] = "Dubai"

	again, _ := m.Get(ctx, "abc")
	if again.History[0].Text != "hi" || again.Preferences[model.PrefDestinations][0] != "Jeddah" {
		t.Fatalf("stored session was mutated through a returned copy")
	}
}
