package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/capitalize-ai/trip-concierge/internal/model"
)

func turn(t *testing.T, h *harness, id, msg string) *model.TurnResponse {
	t.Helper()
	resp, err := h.turns.HandleTurn(context.Background(), TurnRequest{SessionID: id, Message: msg})
	if err != nil {
		t.Fatalf("HandleTurn(%q): %v", msg, err)
	}
	return resp
}

func TestFlightTurn(t *testing.T) {
	h := newHarness(staticOptions(3, 2), nil)

	resp := turn(t, h, "abc", "book flight to Jeddah")
	if resp.Intent != model.IntentFlightBooking || !resp.OK {
		t.Fatalf("intent=%s ok=%v, want flight_booking", resp.Intent, resp.OK)
	}
	res, ok := resp.Data.(*model.FlightResult)
	if !ok || len(res.Flights) != 3 {
		t.Fatalf("data=%T, want 3 flights", resp.Data)
	}
	if res.Slots.Destination != "Jeddah" {
		t.Fatalf("destination=%s, want Jeddah", res.Slots.Destination)
	}

	sess, _ := h.sessions.Get(context.Background(), "abc")
	if sess.LastIntent != model.IntentFlightBooking || len(sess.FlightOptions) != 3 {
		t.Fatalf("last=%s cached=%d", sess.LastIntent, len(sess.FlightOptions))
	}
	if len(sess.History) != 2 || sess.History[1].Intent != model.IntentFlightBooking {
		t.Fatalf("history=%+v", sess.History)
	}
	if got := sess.Preferences[model.PrefDestinations]; len(got) != 1 || got[0] != "Jeddah" {
		t.Fatalf("destinations=%v", got)
	}
	if len(h.journal.turns) != 1 || h.journal.turns[0].RawIntent != model.IntentFlightBooking {
		t.Fatalf("journal=%+v", h.journal.turns)
	}
}

func TestShortFollowUpKeepsHotelFlow(t *testing.T) {
	h := newHarness(staticOptions(3, 2), nil)

	turn(t, h, "abc", "Any luxury hotel near the corniche?")
	resp := turn(t, h, "abc", "what about breakfast?")
	if resp.RawIntent != model.IntentGeneralConversation {
		t.Fatalf("raw=%s, want general_conversation", resp.RawIntent)
	}
	if resp.Intent != model.IntentHotelBooking {
		t.Fatalf("intent=%s, want hotel_booking", resp.Intent)
	}
}

func TestPivotFromFlightToHotel(t *testing.T) {
	h := newHarness(staticOptions(3, 2), nil)

	turn(t, h, "abc", "book flight to Jeddah")
	resp := turn(t, h, "abc", "I'll take the Saudia flight, now I need a hotel")
	if resp.Intent != model.IntentHotelBooking {
		t.Fatalf("intent=%s, want hotel_booking", resp.Intent)
	}
	if _, ok := resp.Data.(*model.HotelResult); !ok {
		t.Fatalf("data=%T, want HotelResult", resp.Data)
	}
}

func TestTripTurnBuildsPackages(t *testing.T) {
	h := newHarness(staticOptions(3, 2), nil)

	resp := turn(t, h, "abc", "a complete trip to Dubai please")
	trip, ok := resp.Data.(*model.TripResult)
	if !ok {
		t.Fatalf("data=%T, want TripResult", resp.Data)
	}
	if len(trip.Packages) != 6 {
		t.Fatalf("packages=%d, want 6", len(trip.Packages))
	}
	sess, _ := h.sessions.Get(context.Background(), "abc")
	if len(sess.FlightOptions) != 3 || len(sess.HotelOptions) != 2 {
		t.Fatalf("cached flights=%d hotels=%d", len(sess.FlightOptions), len(sess.HotelOptions))
	}
}

func TestProviderFailureKeepsSession(t *testing.T) {
	p := staticOptions(3, 2)
	h := newHarness(p, nil)

	turn(t, h, "abc", "Any luxury hotel near the corniche?")
	p.Err = errProviderDown

	resp := turn(t, h, "abc", "book flight to Jeddah")
	if resp.OK || resp.Intent != model.IntentError {
		t.Fatalf("intent=%s ok=%v, want error", resp.Intent, resp.OK)
	}
	if resp.Text == "" {
		t.Fatalf("error turn has no apology text")
	}

	sess, _ := h.sessions.Get(context.Background(), "abc")
	if sess.LastIntent != model.IntentHotelBooking {
		t.Fatalf("last=%s, want hotel_booking kept", sess.LastIntent)
	}
	if sess.TurnCount() != 2 || len(sess.History) != 2*sess.TurnCount() {
		t.Fatalf("turns=%d entries=%d, want 2 turns in 4 entries", sess.TurnCount(), len(sess.History))
	}
	for i, e := range sess.History {
		want := model.RoleUser
		if i%2 == 1 {
			want = model.RoleAssistant
		}
		if e.Role != want {
			t.Fatalf("history[%d].role=%s, want %s", i, e.Role, want)
		}
	}
	if v := sess.View(); v.TurnCount != 2 || len(v.History) != 4 {
		t.Fatalf("view turn_count=%d history=%d", v.TurnCount, len(v.History))
	}

	p.Err = nil
	if resp := turn(t, h, "abc", "book flight to Jeddah"); !resp.OK {
		t.Fatalf("session unusable after error")
	}
}

func TestResetDropsContext(t *testing.T) {
	h := newHarness(staticOptions(3, 2), nil)

	turn(t, h, "abc", "Any luxury hotel near the corniche?")
	if _, err := h.turns.Reset(context.Background(), "abc"); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	resp := turn(t, h, "abc", "what about breakfast?")
	if resp.Intent != model.IntentGeneral {
		t.Fatalf("intent=%s, want general", resp.Intent)
	}
	sess, _ := h.sessions.Get(context.Background(), "abc")
	if sess.TurnCount() != 1 {
		t.Fatalf("turns=%d, want 1", sess.TurnCount())
	}
}

func TestValidation(t *testing.T) {
	h := newHarness(staticOptions(1, 1), nil)
	ctx := context.Background()

	cases := []struct {
		req  TurnRequest
		want error
	}{
		{TurnRequest{SessionID: "abc", Message: "   "}, model.ErrEmptyMessage},
		{TurnRequest{SessionID: "abc", Message: strings.Repeat("a", MaxMessageRunes+1)}, model.ErrMessageTooLong},
		{TurnRequest{SessionID: "bad id", Message: "hi"}, model.ErrInvalidSessionID},
		{TurnRequest{SessionID: "abc", Message: "hi", Language: "fr"}, model.ErrUnsupportedLanguage},
	}
	for _, tc := range cases {
		if _, err := h.turns.HandleTurn(ctx, tc.req); !errors.Is(err, tc.want) {
			t.Fatalf("request %+v: err=%v, want %v", tc.req.SessionID, err, tc.want)
		}
	}
	if h.repo.Len() != 0 {
		t.Fatalf("invalid requests created %d sessions", h.repo.Len())
	}
}

func TestGeneratesSessionID(t *testing.T) {
	h := newHarness(staticOptions(1, 1), nil)
	resp := turn(t, h, "", "hello there")
	if _, err := uuid.Parse(resp.SessionID); err != nil {
		t.Fatalf("session id %q is not a uuid: %v", resp.SessionID, err)
	}
}

func TestLanguageIsInherited(t *testing.T) {
	h := newHarness(staticOptions(3, 2), nil)

	first := turn(t, h, "abc", "أريد حجز فندق في الرياض")
	if first.Language != model.LanguageArabic || first.Direction != "rtl" {
		t.Fatalf("language=%s direction=%s", first.Language, first.Direction)
	}
	second := turn(t, h, "abc", "ok")
	if second.Language != model.LanguageArabic {
		t.Fatalf("language=%s, want ar inherited", second.Language)
	}
}

func TestGeneralReplyUsesLLM(t *testing.T) {
	client := &fakeLLM{reply: "Hello! Where would you like to go?"}
	h := newHarness(staticOptions(1, 1), client)

	resp := turn(t, h, "abc", "hello there")
	if resp.Text != client.reply {
		t.Fatalf("text=%q, want llm reply", resp.Text)
	}
	if client.last == nil || len(client.last.Messages) != 1 || client.last.System == "" {
		t.Fatalf("llm request=%+v", client.last)
	}

	var tokens []string
	_, err := h.turns.HandleTurn(context.Background(), TurnRequest{
		SessionID: "abc",
		Message:   "thanks",
		OnToken: func(token string, _ int) error {
			tokens = append(tokens, token)
			return nil
		},
	})
	if err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	if strings.Join(tokens, "") != client.reply {
		t.Fatalf("streamed %q", strings.Join(tokens, ""))
	}
}

func TestLLMFailureFallsBackToTemplate(t *testing.T) {
	client := &fakeLLM{err: errors.New("rate limited")}
	h := newHarness(staticOptions(1, 1), client)

	resp := turn(t, h, "abc", "hello there")
	if resp.Text == "" || !resp.OK {
		t.Fatalf("text=%q ok=%v", resp.Text, resp.OK)
	}
}

func TestBookingRepliesSkipLLM(t *testing.T) {
	client := &fakeLLM{reply: "unused"}
	h := newHarness(staticOptions(3, 2), client)

	turn(t, h, "abc", "book flight to Jeddah")
	if client.calls != 0 {
		t.Fatalf("llm calls=%d, want 0", client.calls)
	}
}

func TestConcurrentTurnsOnOneSession(t *testing.T) {
	h := newHarness(staticOptions(3, 2), nil)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			msg := fmt.Sprintf("book flight to Jeddah %d", i)
			if _, err := h.turns.HandleTurn(context.Background(), TurnRequest{SessionID: "abc", Message: msg}); err != nil {
				t.Errorf("HandleTurn: %v", err)
			}
		}(i)
	}
	wg.Wait()

	sess, _ := h.sessions.Get(context.Background(), "abc")
	if len(sess.History) != 20 {
		t.Fatalf("history=%d, want 20", len(sess.History))
	}
	for i := 0; i < len(sess.History); i += 2 {
		if sess.History[i].Role != model.RoleUser || sess.History[i+1].Role != model.RoleAssistant {
			t.Fatalf("turns interleaved at %d", i)
		}
	}
}
