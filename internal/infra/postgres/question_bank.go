package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
	"trivia-quiz-service/internal/domain"
)

// QuestionBank serves questions from a self-hosted Postgres table, for
// deployments that cannot (or prefer not to) reach the public API. It
// implements app.QuestionSource.
type QuestionBank struct {
	pool *pgxpool.Pool
}

func NewQuestionBank(pool *pgxpool.Pool) *QuestionBank {
	return &QuestionBank{pool: pool}
}

// Fetch selects a random sample of matching questions. Zero matches map to
// ErrEmptyResult so the caller's user-facing taxonomy stays intact.
func (b *QuestionBank) Fetch(ctx context.Context, req domain.QuestionRequest) ([]domain.Question, error) {
	rows, err := b.pool.Query(ctx, `
		SELECT question, category, difficulty, correct_answer, incorrect_answers
		FROM questions
		WHERE ($1 = '' OR category_id = $1)
		  AND ($2 = '' OR difficulty = $2)
		ORDER BY random()
		LIMIT $3`,
		req.Category, string(req.Difficulty), req.Amount)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		var q domain.Question
		var incorrectRaw []byte
		if err := rows.Scan(&q.Text, &q.Category, &q.Difficulty, &q.CorrectAnswer, &incorrectRaw); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		if err := json.Unmarshal(incorrectRaw, &q.IncorrectAnswers); err != nil {
			return nil, fmt.Errorf("unmarshal incorrect answers: %w", err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read questions: %w", err)
	}

	if len(questions) == 0 {
		return nil, domain.ErrEmptyResult
	}
	return questions, nil
}

// Categories lists the bank's distinct categories for the setup form. It
// implements the same catalog contract as the public API client.
func (b *QuestionBank) Categories(ctx context.Context) ([]domain.Category, error) {
	rows, err := b.pool.Query(ctx, `
		SELECT DISTINCT category_id, category FROM questions ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}
