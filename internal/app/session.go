package app

import (
	"math/rand"
	"sync"
	"time"

	"trivia-quiz-service/internal/domain"
)

// EventKind labels the session events pushed to subscribers.
type EventKind string

const (
	// EventState is a fresh state snapshot after any transition.
	EventState EventKind = "state"
	// EventQuestion announces entry into a question, with shuffled options.
	EventQuestion EventKind = "question"
	// EventLowTime fires once when the countdown crosses to exactly 5s.
	// It carries no state change.
	EventLowTime EventKind = "lowTime"
	// EventResolved announces an answer record, revealing the correct answer.
	EventResolved EventKind = "resolved"
	// EventSummary carries the results when the session completes.
	EventSummary EventKind = "summary"
	// EventIdle announces the session was quit and discarded.
	EventIdle EventKind = "idle"
)

// Event is a session notification for the presentation layer.
type Event struct {
	Kind     EventKind            `json:"kind"`
	State    State                `json:"state"`
	Question *QuestionView        `json:"question,omitempty"`
	Resolved *domain.AnswerRecord `json:"resolved,omitempty"`
	Summary  *domain.Summary      `json:"summary,omitempty"`
}

// State is the render snapshot the presentation layer consumes after every
// transition.
type State struct {
	CurrentIndex   int  `json:"currentIndex"`
	TotalQuestions int  `json:"totalQuestions"`
	TimeLeft       int  `json:"timeLeft"`
	Score          int  `json:"score"`
	Streak         int  `json:"streak"`
	BestStreak     int  `json:"bestStreak"`
	IsAnswered     bool `json:"isAnswered"`
	IsActive       bool `json:"isActive"`
	Completed      bool `json:"completed"`
}

// QuestionView is one question as presented: the four answer choices are in
// a per-question uniform random order so the correct position is not
// predictable.
type QuestionView struct {
	Index    int      `json:"index"`
	Text     string   `json:"text"`
	Category string   `json:"category"`
	Options  []string `json:"options"`
}

// SessionOptions tune timing and randomness, mainly for tests.
type SessionOptions struct {
	// Rand drives the option shuffle. Nil seeds from the clock.
	Rand *rand.Rand
	// TickInterval is the countdown tick period. Zero means one second.
	TickInterval time.Duration
	// RevealDelay is how long the revealed answer stays on screen after a
	// timeout before the session auto-advances. Zero means 1.5 seconds.
	RevealDelay time.Duration
	// Manual disables the countdown goroutine and the timeout auto-advance;
	// tests drive the clock through Tick and Advance directly.
	Manual bool
}

// Session owns all mutable state for one quiz attempt. All mutation happens
// under one mutex; the countdown goroutine and delayed auto-advance re-enter
// through the same lock, and an epoch counter invalidates their callbacks
// once the session has moved past the question they were armed for.
type Session struct {
	mu       sync.Mutex
	settings domain.Settings

	questions []domain.Question
	options   []string // presentation order for the current question

	current    int
	score      int
	streak     int
	bestStreak int
	timeLeft   int
	answers    []domain.AnswerRecord

	pending    string
	hasPending bool
	isAnswered bool
	isActive   bool
	completed  bool
	summary    *domain.Summary

	epoch        int
	stopTick     chan struct{}
	rnd          *rand.Rand
	tickInterval time.Duration
	revealDelay  time.Duration
	manual       bool

	subscribers map[chan Event]struct{}
}

// NewSession starts a fresh session in Active(0). It fails with
// ErrEmptyResult when the question list is empty, leaving no session behind.
func NewSession(settings domain.Settings, questions []domain.Question) (*Session, error) {
	return NewSessionWithOptions(settings, questions, SessionOptions{})
}

// NewSessionWithOptions is the test-friendly constructor.
func NewSessionWithOptions(settings domain.Settings, questions []domain.Question, opts SessionOptions) (*Session, error) {
	if len(questions) == 0 {
		return nil, domain.ErrEmptyResult
	}

	rnd := opts.Rand
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	tick := opts.TickInterval
	if tick == 0 {
		tick = time.Second
	}
	reveal := opts.RevealDelay
	if reveal == 0 {
		reveal = 1500 * time.Millisecond
	}

	s := &Session{
		settings:     settings,
		questions:    questions,
		isActive:     true,
		rnd:          rnd,
		tickInterval: tick,
		revealDelay:  reveal,
		manual:       opts.Manual,
		subscribers:  make(map[chan Event]struct{}),
	}
	s.mu.Lock()
	s.enterQuestionLocked(0)
	s.mu.Unlock()
	return s, nil
}

// Subscribe returns a channel of session events. The caller must invoke the
// returned cancel function to avoid leaks.
func (s *Session) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	initial := Event{Kind: EventState, State: s.stateLocked()}
	if question := s.questionViewLocked(); question != nil {
		initial = Event{Kind: EventQuestion, State: s.stateLocked(), Question: question}
	}
	s.mu.Unlock()

	ch <- initial

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// Select records choice as the pending selection. Repeated calls replace it
// (single-select). No-op once the current question is resolved.
func (s *Session) Select(choice string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isActive || s.completed || s.isAnswered {
		return
	}
	s.pending = choice
	s.hasPending = true
	s.broadcastLocked(Event{Kind: EventState, State: s.stateLocked()})
}

// Submit resolves the current question with the pending selection (or no
// answer if nothing was selected). Idempotent once the question is resolved,
// which settles the race between a manual submit and the timeout tick.
func (s *Session) Submit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitLocked()
}

// Skip resolves the current question as explicitly skipped: no credit,
// streak reset, and zero recorded time regardless of what has elapsed.
func (s *Session) Skip() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isActive || s.completed || s.isAnswered {
		return
	}
	s.stopCountdownLocked()
	skipped := domain.SkippedAnswer
	s.resolveLocked(&skipped, false, 0)
}

// Advance moves to the next question, or completes the session when the
// list is exhausted. No-op until the current question is resolved.
func (s *Session) Advance() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isActive || s.completed || !s.isAnswered {
		return
	}
	s.enterQuestionLocked(s.current + 1)
}

// Quit cancels any running countdown and discards the session. It does not
// finalize a summary.
func (s *Session) Quit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isActive {
		return
	}
	s.stopCountdownLocked()
	s.epoch++
	s.isActive = false
	s.isAnswered = false
	s.hasPending = false
	s.broadcastLocked(Event{Kind: EventIdle, State: s.stateLocked()})
}

// Tick advances the countdown by one second. Production sessions tick from
// their own goroutine; manual sessions expose this for deterministic tests.
func (s *Session) Tick() {
	s.mu.Lock()
	epoch := s.epoch
	s.mu.Unlock()
	s.tick(epoch)
}

// Snapshot returns the current render state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// Answers returns a copy of the answer records resolved so far.
func (s *Session) Answers() []domain.AnswerRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.AnswerRecord, len(s.answers))
	copy(out, s.answers)
	return out
}

// Summary returns the results once the session has completed.
func (s *Session) Summary() (domain.Summary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.summary == nil {
		return domain.Summary{}, false
	}
	return *s.summary, true
}

// CurrentOptions returns the presentation order of the current question's
// answer choices.
func (s *Session) CurrentOptions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.options))
	copy(out, s.options)
	return out
}

func (s *Session) enterQuestionLocked(i int) {
	s.stopCountdownLocked()
	s.epoch++

	if i >= len(s.questions) {
		s.current = i
		s.completed = true
		s.isActive = false
		s.isAnswered = false
		summary := domain.Summarize(s.answers, len(s.questions), s.bestStreak)
		s.summary = &summary
		s.broadcastLocked(Event{Kind: EventSummary, State: s.stateLocked(), Summary: s.summary})
		return
	}

	s.current = i
	s.isAnswered = false
	s.hasPending = false
	s.pending = ""
	s.timeLeft = s.settings.TimePerQuestion
	s.options = shuffleOptions(s.rnd, s.questions[i])
	s.startCountdownLocked()
	s.broadcastLocked(Event{Kind: EventQuestion, State: s.stateLocked(), Question: s.questionViewLocked()})
}

func (s *Session) submitLocked() {
	if !s.isActive || s.completed || s.isAnswered {
		return
	}
	s.stopCountdownLocked()

	timeSpent := s.settings.TimePerQuestion - s.timeLeft
	var userAnswer *string
	correct := false
	if s.hasPending {
		answer := s.pending
		userAnswer = &answer
		correct = answer == s.questions[s.current].CorrectAnswer
	}
	s.resolveLocked(userAnswer, correct, timeSpent)
}

// resolveLocked creates the single AnswerRecord for the current question and
// folds it into score/streak. Callers guarantee the question is unresolved.
func (s *Session) resolveLocked(userAnswer *string, correct bool, timeSpent int) {
	question := s.questions[s.current]
	record := domain.AnswerRecord{
		QuestionText:     question.Text,
		UserAnswer:       userAnswer,
		CorrectAnswer:    question.CorrectAnswer,
		IsCorrect:        correct,
		TimeSpentSeconds: timeSpent,
	}
	s.answers = append(s.answers, record)

	if correct {
		s.score++
		s.streak++
		if s.streak > s.bestStreak {
			s.bestStreak = s.streak
		}
	} else {
		s.streak = 0
	}
	s.isAnswered = true
	s.hasPending = false

	s.broadcastLocked(Event{Kind: EventResolved, State: s.stateLocked(), Resolved: &record})
}

// tick reports false when the countdown for the given epoch is no longer
// live, so the calling goroutine can exit.
func (s *Session) tick(epoch int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch || !s.isActive || s.completed || s.isAnswered {
		return false
	}

	s.timeLeft--
	if s.timeLeft < 0 {
		s.timeLeft = 0
	}
	s.broadcastLocked(Event{Kind: EventState, State: s.stateLocked()})
	if s.timeLeft == 5 {
		s.broadcastLocked(Event{Kind: EventLowTime, State: s.stateLocked()})
	}
	if s.timeLeft > 0 {
		return true
	}

	// Timed out: resolve with whatever was pending, then advance after the
	// reveal delay unless the session has moved on in the meantime.
	s.submitLocked()
	if !s.manual {
		armed := s.epoch
		time.AfterFunc(s.revealDelay, func() { s.autoAdvance(armed) })
	}
	return false
}

func (s *Session) autoAdvance(epoch int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch || !s.isActive || s.completed || !s.isAnswered {
		return
	}
	s.enterQuestionLocked(s.current + 1)
}

// startCountdownLocked arms the per-question countdown. Any prior countdown
// is stopped first so two can never be live at once.
func (s *Session) startCountdownLocked() {
	s.stopCountdownLocked()
	if s.manual {
		return
	}
	stop := make(chan struct{})
	s.stopTick = stop
	epoch := s.epoch

	go func() {
		ticker := time.NewTicker(s.tickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if !s.tick(epoch) {
					return
				}
			case <-stop:
				return
			}
		}
	}()
}

func (s *Session) stopCountdownLocked() {
	if s.stopTick != nil {
		close(s.stopTick)
		s.stopTick = nil
	}
}

func (s *Session) stateLocked() State {
	return State{
		CurrentIndex:   s.current,
		TotalQuestions: len(s.questions),
		TimeLeft:       s.timeLeft,
		Score:          s.score,
		Streak:         s.streak,
		BestStreak:     s.bestStreak,
		IsAnswered:     s.isAnswered,
		IsActive:       s.isActive,
		Completed:      s.completed,
	}
}

func (s *Session) questionViewLocked() *QuestionView {
	if !s.isActive || s.completed || s.current >= len(s.questions) {
		return nil
	}
	question := s.questions[s.current]
	options := make([]string, len(s.options))
	copy(options, s.options)
	return &QuestionView{
		Index:    s.current,
		Text:     question.Text,
		Category: question.Category,
		Options:  options,
	}
}

func (s *Session) broadcastLocked(event Event) {
	for ch := range s.subscribers {
		select {
		case ch <- event:
		default:
			// Drop the oldest update so a slow client cannot block transitions.
			select {
			case <-ch:
			default:
			}
			ch <- event
		}
	}
}

// shuffleOptions returns the four answer choices in uniform random order.
func shuffleOptions(rnd *rand.Rand, q domain.Question) []string {
	options := make([]string, 0, len(q.IncorrectAnswers)+1)
	options = append(options, q.IncorrectAnswers...)
	options = append(options, q.CorrectAnswer)
	rnd.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
	return options
}
