package nats

import (
	"context"
	"errors"
	"testing"

	"github.com/capitalize-ai/trip-concierge/internal/model"
	"github.com/capitalize-ai/trip-concierge/pkg/logger"
)

func TestSubjects(t *testing.T) {
	if got := TurnSubject("abc-123"); got != "trip.abc-123.turn" {
		t.Fatalf("turn subject=%s", got)
	}
	if got := ResetSubject("abc-123"); got != "trip.abc-123.reset" {
		t.Fatalf("reset subject=%s", got)
	}
}

func TestPublishRejectsUnsafeSessionIDs(t *testing.T) {
	j := NewJournal(&Client{}, "", 0)
	for _, id := range []string{"", "a.b", "a>b", "a b", "*"} {
		_, err := j.PublishTurn(context.Background(), &model.TurnEvent{SessionID: id})
		if !errors.Is(err, model.ErrInvalidSessionID) {
			t.Fatalf("id %q: err=%v, want ErrInvalidSessionID", id, err)
		}
	}
}

func TestConfigRequiresCertAndKeyTogether(t *testing.T) {
	if _, err := (Config{URL: "nats://localhost:4222", CertFile: "client.pem"}).options(logger.NewNop()); err == nil {
		t.Fatalf("cert without key accepted")
	}
	opts, err := (Config{URL: "nats://localhost:4222", Token: "t"}).options(logger.NewNop())
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	if len(opts) == 0 {
		t.Fatalf("no options built")
	}
}
