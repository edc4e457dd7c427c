package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/capitalize-ai/trip-concierge/internal/dispatch"
	"github.com/capitalize-ai/trip-concierge/internal/intent"
	"github.com/capitalize-ai/trip-concierge/internal/language"
	"github.com/capitalize-ai/trip-concierge/internal/llm"
	"github.com/capitalize-ai/trip-concierge/internal/model"
	"github.com/capitalize-ai/trip-concierge/internal/render"
	"github.com/capitalize-ai/trip-concierge/internal/slots"
	"github.com/capitalize-ai/trip-concierge/internal/store"
	"github.com/capitalize-ai/trip-concierge/pkg/logger"
	"github.com/capitalize-ai/trip-concierge/pkg/metrics"
	"github.com/capitalize-ai/trip-concierge/pkg/tracing"
)

// MaxMessageRunes bounds the length of a user message.
const MaxMessageRunes = 4000

// TurnConfig holds turn handling settings.
type TurnConfig struct {
	HistoryWindow int
	LLMModel      string
	MaxTokens     int
	LLMTimeout    time.Duration
}

// TurnDeps are the collaborators of a TurnService. LLM and Journal may be nil.
type TurnDeps struct {
	Sessions   *SessionService
	Classifier *intent.Classifier
	Resolver   *intent.Resolver
	Extractor  *slots.Extractor
	Dispatcher *dispatch.Dispatcher
	LLM        llm.Client
	Journal    Journal
}

// TurnRequest is one user message.
type TurnRequest struct {
	SessionID string
	Message   string
	Language  string

	// OnToken, when set, receives the reply as it is produced.
	OnToken llm.StreamCallback
}

// TurnService runs the per-turn pipeline: classify, resolve against
// session context, extract slots, dispatch, and render.
type TurnService struct {
	sessions   *SessionService
	classifier *intent.Classifier
	resolver   *intent.Resolver
	extractor  *slots.Extractor
	dispatcher *dispatch.Dispatcher
	llmClient  llm.Client
	journal    Journal
	cfg        TurnConfig
	locks      *keyedMutex
	tracer     trace.Tracer
	logger     *logger.Logger
}

// NewTurnService creates a new turn service.
func NewTurnService(deps TurnDeps, cfg TurnConfig, log *logger.Logger) *TurnService {
	if cfg.HistoryWindow <= 0 {
		cfg.HistoryWindow = 10
	}
	if cfg.LLMTimeout <= 0 {
		cfg.LLMTimeout = 30 * time.Second
	}
	return &TurnService{
		sessions:   deps.Sessions,
		classifier: deps.Classifier,
		resolver:   deps.Resolver,
		extractor:  deps.Extractor,
		dispatcher: deps.Dispatcher,
		llmClient:  deps.LLM,
		journal:    deps.Journal,
		cfg:        cfg,
		locks:      newKeyedMutex(),
		tracer:     tracing.Tracer("trip-concierge/service"),
		logger:     log,
	}
}

// HandleTurn processes one user message. Invalid input is returned as an
// error before the session is touched; failures after that surface as an
// error result in the response and leave the session usable.
func (s *TurnService) HandleTurn(ctx context.Context, req TurnRequest) (*model.TurnResponse, error) {
	start := time.Now()

	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		return nil, model.ErrEmptyMessage
	}
	if utf8.RuneCountInString(msg) > MaxMessageRunes {
		return nil, model.ErrMessageTooLong
	}

	id := req.SessionID
	if id == "" {
		id = uuid.Must(uuid.NewV7()).String()
	} else if err := model.ValidateSessionID(id); err != nil {
		return nil, err
	}

	ctx = logger.ContextWithSessionID(ctx, id)
	ctx, span := s.tracer.Start(ctx, "turn.handle",
		trace.WithAttributes(attribute.String("session.id", id)))
	defer span.End()
	log := s.logger.WithContext(ctx)

	unlock := s.locks.Lock(id)
	defer unlock()

	var inherited model.Language
	existing, err := s.sessions.Get(ctx, id)
	switch {
	case err == nil:
		inherited = existing.Language
	case !errors.Is(err, store.ErrNotFound):
		span.RecordError(err)
		return nil, fmt.Errorf("load session: %w", err)
	}

	lang, err := language.Resolve(req.Language, inherited, msg)
	if err != nil {
		return nil, err
	}

	if _, err := s.sessions.GetOrCreate(ctx, id, lang); err != nil {
		span.RecordError(err)
		return nil, err
	}
	sess, err := s.sessions.AppendTurn(ctx, id, model.Turn{Role: model.RoleUser, Text: msg})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	prior := sess.History[:len(sess.History)-1]

	decision := s.classifier.Classify(msg, lang)
	resolution := s.resolver.Resolve(decision.Intent, msg, lang, sess.LastIntent, prior)
	metrics.RecordClassification(string(decision.Intent), string(decision.Tier))
	if resolution.Overridden(decision.Intent) {
		metrics.RecordOverride(resolution.Rule)
	}
	span.SetAttributes(
		attribute.String("intent.raw", string(decision.Intent)),
		attribute.String("intent.tier", string(decision.Tier)),
		attribute.String("intent.resolved", string(resolution.Intent)),
		attribute.String("language", string(lang)),
	)

	slotSet := s.extractor.Extract(msg, lang)

	dctx, dspan := s.tracer.Start(ctx, "turn.dispatch",
		trace.WithAttributes(attribute.String("intent", string(resolution.Intent))))
	dispatchStart := time.Now()
	result := s.dispatcher.Dispatch(dctx, dispatch.Request{
		Intent:  resolution.Intent,
		Slots:   slotSet,
		Message: msg,
	})
	metrics.RecordDispatch(string(resolution.Intent), result.OK(), time.Since(dispatchStart).Seconds())
	if !result.OK() {
		dspan.SetStatus(codes.Error, "no result")
	}
	dspan.End()

	if trip, ok := result.(*model.TripResult); ok {
		metrics.PackagesGenerated.Observe(float64(len(trip.Packages)))
	}

	text := s.reply(ctx, result, lang, sess, req.OnToken)

	turnID := uuid.Must(uuid.NewV7()).String()
	if _, err := s.sessions.AppendTurn(ctx, id, model.Turn{
		ID:     turnID,
		Role:   model.RoleAssistant,
		Text:   text,
		Intent: result.Intent(),
	}); err != nil {
		span.RecordError(err)
		return nil, err
	}

	if result.OK() {
		if err := s.remember(ctx, id, result, resolution.Intent, slotSet, lang); err != nil {
			span.RecordError(err)
			return nil, err
		}
	}

	resp := &model.TurnResponse{
		SessionID: id,
		TurnID:    turnID,
		Intent:    result.Intent(),
		RawIntent: decision.Intent,
		OK:        result.OK(),
		Language:  lang,
		Direction: lang.Direction(),
		Text:      text,
		Data:      result,
	}

	elapsed := time.Since(start)
	s.publish(ctx, resp, msg, decision, elapsed)
	metrics.RecordTurn(string(resp.Intent), string(lang), resp.OK, elapsed.Seconds())

	log.Info("turn handled",
		zap.String("raw_intent", string(decision.Intent)),
		zap.String("tier", string(decision.Tier)),
		zap.String("intent", string(resp.Intent)),
		zap.String("resolver_rule", resolution.Rule),
		zap.Bool("ok", resp.OK),
		zap.String("language", string(lang)),
		zap.Duration("latency", elapsed),
	)

	return resp, nil
}

// remember stores what the next turn may build on.
func (s *TurnService) remember(ctx context.Context, id string, result model.Result, resolved model.Intent, slotSet model.SlotSet, lang model.Language) error {
	if err := s.sessions.SetLastIntent(ctx, id, result.Intent()); err != nil {
		return err
	}
	if err := s.sessions.CacheResult(ctx, id, result); err != nil {
		return err
	}
	if resolved.IsBooking() {
		return s.sessions.RecordPreferences(ctx, id, slotSet, lang)
	}
	return nil
}

// reply renders the result. General replies go to the LLM when one is
// configured and fall back to the template if it fails.
func (s *TurnService) reply(ctx context.Context, result model.Result, lang model.Language, sess *model.Session, onToken llm.StreamCallback) string {
	text := render.Text(result, lang)

	if _, general := result.(*model.GeneralResult); general && s.llmClient != nil {
		out, streamed, err := s.complete(ctx, lang, sess, onToken)
		if err == nil && strings.TrimSpace(out) != "" {
			return out
		}
		s.logger.WithContext(ctx).Warn("llm reply failed, using template",
			zap.String("provider", s.llmClient.Name()),
			zap.Error(err),
		)
		if streamed > 0 {
			return out
		}
	}

	if onToken != nil {
		_ = onToken(text, 0)
	}
	return text
}

// complete asks the LLM for a free-form reply. It returns whatever was
// produced and the number of tokens already delivered to onToken.
func (s *TurnService) complete(ctx context.Context, lang model.Language, sess *model.Session, onToken llm.StreamCallback) (string, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.LLMTimeout)
	defer cancel()

	ctx, span := s.tracer.Start(ctx, "turn.llm",
		trace.WithAttributes(attribute.String("llm.provider", s.llmClient.Name())))
	defer span.End()

	history := sess.RecentHistory(s.cfg.HistoryWindow)
	messages := make([]llm.ChatMessage, 0, len(history))
	for _, t := range history {
		messages = append(messages, llm.ChatMessage{Role: string(t.Role), Content: t.Text})
	}
	req := &llm.CompletionRequest{
		Model:     s.cfg.LLMModel,
		System:    render.SystemPrompt(lang),
		Messages:  messages,
		MaxTokens: s.cfg.MaxTokens,
	}

	start := time.Now()
	var (
		resp    *llm.CompletionResponse
		err     error
		partial strings.Builder
		emitted atomic.Int32
	)
	if onToken == nil {
		resp, err = s.llmClient.Complete(ctx, req)
	} else {
		resp, err = s.llmClient.CompleteStream(ctx, req, func(token string, index int) error {
			partial.WriteString(token)
			emitted.Add(1)
			return onToken(token, index)
		})
	}

	status := "ok"
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	var in, out int
	modelName := s.cfg.LLMModel
	if resp != nil {
		in, out = resp.TokensIn, resp.TokensOut
		if resp.Model != "" {
			modelName = resp.Model
		}
	}
	metrics.RecordLLMStream(modelName, status, time.Since(start).Seconds(), in, out)

	if err != nil {
		return partial.String(), int(emitted.Load()), err
	}
	return resp.Content, int(emitted.Load()), nil
}

func (s *TurnService) publish(ctx context.Context, resp *model.TurnResponse, message string, decision intent.Decision, elapsed time.Duration) {
	if s.journal == nil {
		return
	}
	event := &model.TurnEvent{
		ID:        resp.TurnID,
		SessionID: resp.SessionID,
		Language:  resp.Language,
		Message:   message,
		Reply:     resp.Text,
		RawIntent: decision.Intent,
		Tier:      string(decision.Tier),
		Intent:    resp.Intent,
		OK:        resp.OK,
		LatencyMs: elapsed.Milliseconds(),
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.journal.PublishTurn(ctx, event); err != nil {
		metrics.JournalPublishFailures.Inc()
		s.logger.WithContext(ctx).Warn("failed to journal turn", zap.Error(err))
	}
}

// Reset clears a session. It waits for any in-flight turn on the session.
func (s *TurnService) Reset(ctx context.Context, id string) (*model.Session, error) {
	if err := model.ValidateSessionID(id); err != nil {
		return nil, err
	}
	unlock := s.locks.Lock(id)
	defer unlock()
	return s.sessions.Reset(logger.ContextWithSessionID(ctx, id), id)
}

// Session returns the session snapshot.
func (s *TurnService) Session(ctx context.Context, id string) (*model.Session, error) {
	return s.sessions.Get(ctx, id)
}
