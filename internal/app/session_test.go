package app_test

import (
	"math/rand"
	"testing"
	"time"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
)

func manualSession(t *testing.T, settings domain.Settings, questions []domain.Question) *app.Session {
	t.Helper()
	session, err := app.NewSessionWithOptions(settings, questions, app.SessionOptions{
		Rand:   rand.New(rand.NewSource(1)),
		Manual: true,
	})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return session
}

func testSettings() domain.Settings {
	return domain.Settings{QuestionCount: 3, Difficulty: domain.DifficultyAny, TimePerQuestion: 20}
}

func testQuestions(n int) []domain.Question {
	questions := make([]domain.Question, 0, n)
	for i := 0; i < n; i++ {
		questions = append(questions, domain.Question{
			Text:             "What is the capital of France?",
			Category:         "Geography",
			CorrectAnswer:    "Paris",
			IncorrectAnswers: []string{"London", "Berlin", "Madrid"},
		})
	}
	return questions
}

func TestEmptyQuestionListRejected(t *testing.T) {
	_, err := app.NewSession(testSettings(), nil)
	if err != domain.ErrEmptyResult {
		t.Fatalf("expected ErrEmptyResult, got %v", err)
	}
}

func TestStartToCompletion(t *testing.T) {
	session := manualSession(t, testSettings(), testQuestions(3))

	for i := 0; i < 3; i++ {
		session.Select("Paris")
		session.Submit()
		session.Advance()
	}

	state := session.Snapshot()
	if !state.Completed {
		t.Fatalf("expected completed session, got %+v", state)
	}
	answers := session.Answers()
	if len(answers) != 3 {
		t.Fatalf("expected 3 answers, got %d", len(answers))
	}
	summary, ok := session.Summary()
	if !ok {
		t.Fatalf("expected summary after completion")
	}
	if summary.Score != 3 || summary.Percentage != 100 || summary.IncorrectCount != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary.Tier.Message != "excellent" {
		t.Fatalf("expected excellent tier, got %+v", summary.Tier)
	}
}

func TestScoreAndStreakAccounting(t *testing.T) {
	session := manualSession(t, testSettings(), testQuestions(3))

	session.Select("Paris")
	session.Submit()
	session.Advance()
	session.Select("Paris")
	session.Submit()
	session.Advance()
	session.Select("London")
	session.Submit()

	state := session.Snapshot()
	if state.Score != 2 {
		t.Fatalf("expected score 2, got %d", state.Score)
	}
	if state.Streak != 0 {
		t.Fatalf("expected streak reset to 0, got %d", state.Streak)
	}
	if state.BestStreak != 2 {
		t.Fatalf("expected best streak 2, got %d", state.BestStreak)
	}

	correct := 0
	for _, record := range session.Answers() {
		if record.IsCorrect {
			correct++
		}
	}
	if correct != state.Score {
		t.Fatalf("score %d does not match correct count %d", state.Score, correct)
	}
}

func TestSubmitIdempotent(t *testing.T) {
	session := manualSession(t, testSettings(), testQuestions(1))

	session.Select("Paris")
	session.Submit()
	session.Submit()
	session.Tick() // a late timeout tick must not double-record

	state := session.Snapshot()
	answers := session.Answers()
	if len(answers) != 1 {
		t.Fatalf("expected exactly one answer record, got %d", len(answers))
	}
	if state.Score != 1 || state.Streak != 1 || state.BestStreak != 1 {
		t.Fatalf("unexpected counters after double submit: %+v", state)
	}
}

func TestTimeoutWithoutSelection(t *testing.T) {
	settings := testSettings()
	session := manualSession(t, settings, testQuestions(1))

	for i := 0; i < settings.TimePerQuestion; i++ {
		session.Tick()
	}

	answers := session.Answers()
	if len(answers) != 1 {
		t.Fatalf("expected one answer record, got %d", len(answers))
	}
	record := answers[0]
	if record.UserAnswer != nil {
		t.Fatalf("expected nil user answer on timeout, got %v", *record.UserAnswer)
	}
	if record.IsCorrect {
		t.Fatalf("expected incorrect record on timeout")
	}
	if record.TimeSpentSeconds != settings.TimePerQuestion {
		t.Fatalf("expected full time spent, got %d", record.TimeSpentSeconds)
	}
	if state := session.Snapshot(); state.Streak != 0 || !state.IsAnswered {
		t.Fatalf("unexpected state after timeout: %+v", state)
	}

	// Further ticks against the resolved question are no-ops.
	session.Tick()
	if len(session.Answers()) != 1 {
		t.Fatalf("late tick created a second record")
	}
}

func TestTimeoutSubmitsPendingSelection(t *testing.T) {
	settings := testSettings()
	session := manualSession(t, settings, testQuestions(1))

	session.Select("Paris")
	for i := 0; i < settings.TimePerQuestion; i++ {
		session.Tick()
	}

	answers := session.Answers()
	if len(answers) != 1 || !answers[0].IsCorrect {
		t.Fatalf("expected pending selection submitted on timeout, got %+v", answers)
	}
}

func TestSkipRecordsZeroTime(t *testing.T) {
	session := manualSession(t, testSettings(), testQuestions(2))

	session.Select("Paris")
	session.Submit()
	session.Advance()

	// Let some time elapse before skipping; skip still records zero.
	session.Tick()
	session.Tick()
	session.Tick()
	session.Skip()

	answers := session.Answers()
	if len(answers) != 2 {
		t.Fatalf("expected 2 answers, got %d", len(answers))
	}
	record := answers[1]
	if record.UserAnswer == nil || *record.UserAnswer != domain.SkippedAnswer {
		t.Fatalf("expected skipped answer, got %+v", record)
	}
	if record.TimeSpentSeconds != 0 {
		t.Fatalf("skip must record zero time, got %d", record.TimeSpentSeconds)
	}
	if state := session.Snapshot(); state.Streak != 0 {
		t.Fatalf("expected streak reset after skip, got %d", state.Streak)
	}

	// The countdown for the skipped question must be dead.
	session.Tick()
	if len(session.Answers()) != 2 {
		t.Fatalf("tick after skip created a record")
	}
}

func TestSelectReplacesPendingSelection(t *testing.T) {
	session := manualSession(t, testSettings(), testQuestions(1))

	session.Select("London")
	session.Select("Paris")
	session.Submit()

	answers := session.Answers()
	if !answers[0].IsCorrect || *answers[0].UserAnswer != "Paris" {
		t.Fatalf("expected last selection to win, got %+v", answers[0])
	}
}

func TestSelectAfterResolveIgnored(t *testing.T) {
	session := manualSession(t, testSettings(), testQuestions(1))

	session.Select("London")
	session.Submit()
	session.Select("Paris")

	if answers := session.Answers(); answers[0].IsCorrect {
		t.Fatalf("selection after resolve must not change the record")
	}
}

func TestAdvanceRequiresResolvedQuestion(t *testing.T) {
	session := manualSession(t, testSettings(), testQuestions(2))

	session.Advance()
	if state := session.Snapshot(); state.CurrentIndex != 0 {
		t.Fatalf("advance before resolve moved to question %d", state.CurrentIndex)
	}
}

func TestLowTimeWarningSignal(t *testing.T) {
	settings := domain.Settings{QuestionCount: 1, TimePerQuestion: 7}
	session := manualSession(t, settings, testQuestions(1))

	events, cancel := session.Subscribe()
	defer cancel()

	session.Tick()
	session.Tick() // timeLeft crosses to exactly 5

	sawLowTime := false
	deadline := time.After(time.Second)
	for !sawLowTime {
		select {
		case event := <-events:
			if event.Kind == app.EventLowTime {
				if event.State.TimeLeft != 5 {
					t.Fatalf("low-time warning at %d seconds", event.State.TimeLeft)
				}
				sawLowTime = true
			}
		case <-deadline:
			t.Fatalf("no low-time warning observed")
		}
	}
}

func TestShuffleSeededAndUniformPerQuestion(t *testing.T) {
	first := manualSessionWithSeed(t, 42)
	second := manualSessionWithSeed(t, 42)

	a, b := first.CurrentOptions(), second.CurrentOptions()
	if len(a) != 4 || len(b) != 4 {
		t.Fatalf("expected 4 options, got %d and %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed produced different orders: %v vs %v", a, b)
		}
	}

	found := false
	for _, option := range a {
		if option == "Paris" {
			found = true
		}
	}
	if !found {
		t.Fatalf("correct answer missing from options: %v", a)
	}
}

func manualSessionWithSeed(t *testing.T, seed int64) *app.Session {
	t.Helper()
	session, err := app.NewSessionWithOptions(testSettings(), testQuestions(2), app.SessionOptions{
		Rand:   rand.New(rand.NewSource(seed)),
		Manual: true,
	})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return session
}

func TestQuitDiscardsSession(t *testing.T) {
	session := manualSession(t, testSettings(), testQuestions(2))

	session.Select("Paris")
	session.Quit()

	state := session.Snapshot()
	if state.IsActive || state.Completed {
		t.Fatalf("expected inactive, non-completed state after quit: %+v", state)
	}
	if _, ok := session.Summary(); ok {
		t.Fatalf("quit must not finalize a summary")
	}

	session.Submit()
	session.Tick()
	if len(session.Answers()) != 0 {
		t.Fatalf("intents after quit recorded answers")
	}
}

func TestCountdownTimesOutAndAutoAdvances(t *testing.T) {
	settings := domain.Settings{QuestionCount: 1, TimePerQuestion: 5}
	session, err := app.NewSessionWithOptions(settings, testQuestions(1), app.SessionOptions{
		Rand:         rand.New(rand.NewSource(1)),
		TickInterval: time.Millisecond,
		RevealDelay:  5 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	defer session.Quit()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if session.Snapshot().Completed {
			break
		}
		time.Sleep(time.Millisecond)
	}

	state := session.Snapshot()
	if !state.Completed {
		t.Fatalf("expected timeout then auto-advance to complete the session, got %+v", state)
	}
	answers := session.Answers()
	if len(answers) != 1 || answers[0].UserAnswer != nil {
		t.Fatalf("expected single unanswered record, got %+v", answers)
	}
}

func TestQuitCancelsRunningCountdown(t *testing.T) {
	settings := domain.Settings{QuestionCount: 1, TimePerQuestion: 5}
	session, err := app.NewSessionWithOptions(settings, testQuestions(1), app.SessionOptions{
		Rand:         rand.New(rand.NewSource(1)),
		TickInterval: time.Millisecond,
		RevealDelay:  time.Millisecond,
	})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}

	session.Quit()
	time.Sleep(20 * time.Millisecond)

	if len(session.Answers()) != 0 {
		t.Fatalf("countdown fired after quit")
	}
}
