package app

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"trivia-quiz-service/internal/domain"
)

// QuestionSource fetches questions for a session (public API or a
// self-hosted bank). It owns decoding and its own error taxonomy.
type QuestionSource interface {
	Fetch(ctx context.Context, req domain.QuestionRequest) ([]domain.Question, error)
}

// PreferenceStore persists the last-used settings across launches.
// Best-effort: save failures are logged, never surfaced.
type PreferenceStore interface {
	Save(ctx context.Context, settings domain.Settings) error
	Load(ctx context.Context) (domain.Settings, bool)
}

// QuizService runs the session start flow: persist preferences, validate,
// fetch, and hand back a fresh session.
type QuizService struct {
	source       QuestionSource
	prefs        PreferenceStore
	fetchTimeout time.Duration
	sessionOpts  SessionOptions

	mu  sync.Mutex
	gen int
}

// NewQuizService wires a service. fetchTimeout bounds the outbound question
// fetch; zero means 10 seconds.
func NewQuizService(source QuestionSource, prefs PreferenceStore, fetchTimeout time.Duration) *QuizService {
	if fetchTimeout <= 0 {
		fetchTimeout = 10 * time.Second
	}
	return &QuizService{source: source, prefs: prefs, fetchTimeout: fetchTimeout}
}

// SetSessionOptions overrides session timing/randomness for all sessions
// this service starts. Test hook.
func (s *QuizService) SetSessionOptions(opts SessionOptions) {
	s.sessionOpts = opts
}

// Start begins a new quiz attempt. Settings are persisted before validation
// runs: validation is advisory and never gates what the user typed. A fetch
// that completes after Cancel (user navigated away) is discarded.
func (s *QuizService) Start(ctx context.Context, settings domain.Settings) (*Session, error) {
	if err := s.prefs.Save(ctx, settings); err != nil {
		log.Printf("saving preferences: %v", err)
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	questions, err := s.source.Fetch(fetchCtx, settings.Request())
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, domain.ErrFetchTimeout
		}
		return nil, err
	}
	if len(questions) == 0 {
		return nil, domain.ErrEmptyResult
	}

	s.mu.Lock()
	superseded := gen != s.gen
	s.mu.Unlock()
	if superseded {
		return nil, domain.ErrStartSuperseded
	}

	return NewSessionWithOptions(settings, questions, s.sessionOpts)
}

// Cancel abandons any in-flight start; its eventual result is ignored.
func (s *QuizService) Cancel() {
	s.mu.Lock()
	s.gen++
	s.mu.Unlock()
}

// LastSettings returns the persisted settings used to prepopulate the setup
// form, or false when none exist.
func (s *QuizService) LastSettings(ctx context.Context) (domain.Settings, bool) {
	return s.prefs.Load(ctx)
}
