package domain

// Settings bounds. The count ceiling matches the public question bank's
// per-request maximum.
const (
	MinQuestionCount   = 1
	MaxQuestionCount   = 50
	MinTimePerQuestion = 5
	MaxTimePerQuestion = 300
)

// Validate checks settings bounds. It is a pure pre-check: it never mutates
// the settings and callers persist the raw values regardless of the outcome.
func (s Settings) Validate() error {
	if s.QuestionCount < MinQuestionCount || s.QuestionCount > MaxQuestionCount {
		return &RangeError{Field: "questionCount", Min: MinQuestionCount, Max: MaxQuestionCount}
	}
	if s.TimePerQuestion < MinTimePerQuestion || s.TimePerQuestion > MaxTimePerQuestion {
		return &RangeError{Field: "timePerQuestion", Min: MinTimePerQuestion, Max: MaxTimePerQuestion}
	}
	return nil
}
