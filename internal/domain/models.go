package domain

// Difficulty filters the question pool. Any means no filter.
type Difficulty string

const (
	DifficultyAny    Difficulty = "any"
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Question is a multiple-choice trivia question with one correct answer and
// three distractors. Text fields are entity-decoded by the source; questions
// are immutable once fetched.
type Question struct {
	Text             string   `json:"text"`
	Category         string   `json:"category"`
	Difficulty       string   `json:"difficulty"`
	CorrectAnswer    string   `json:"correctAnswer"`
	IncorrectAnswers []string `json:"incorrectAnswers"`
}

// Settings is the user's quiz configuration, persisted as the last-used
// preferences on every start attempt.
type Settings struct {
	QuestionCount   int        `json:"questionCount"`
	Category        string     `json:"category"`
	Difficulty      Difficulty `json:"difficulty"`
	TimePerQuestion int        `json:"timePerQuestion"` // seconds
}

// QuestionRequest is the filter a question source resolves.
type QuestionRequest struct {
	Amount     int
	Category   string
	Difficulty Difficulty
}

// Request converts settings into a source query. A difficulty of "any"
// becomes the empty filter.
func (s Settings) Request() QuestionRequest {
	difficulty := s.Difficulty
	if difficulty == DifficultyAny {
		difficulty = ""
	}
	return QuestionRequest{
		Amount:     s.QuestionCount,
		Category:   s.Category,
		Difficulty: difficulty,
	}
}

// SkippedAnswer is the recorded answer value for an explicit skip.
const SkippedAnswer = "Skipped"

// AnswerRecord captures the outcome of one resolved question. UserAnswer is
// nil when time expired with nothing selected. Records are append-only.
type AnswerRecord struct {
	QuestionText     string  `json:"questionText"`
	UserAnswer       *string `json:"userAnswer"`
	CorrectAnswer    string  `json:"correctAnswer"`
	IsCorrect        bool    `json:"isCorrect"`
	TimeSpentSeconds int     `json:"timeSpentSeconds"`
}

// Category is an entry in the question source's category catalog.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
