// Package opentdb implements the question source against the Open Trivia
// Database public API (https://opentdb.com).
package opentdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"time"

	"trivia-quiz-service/internal/domain"
)

// DefaultBaseURL is the public API endpoint.
const DefaultBaseURL = "https://opentdb.com"

// Provider response codes signalled in the body; transport status is 200
// even for domain failures.
const (
	codeSuccess          = 0
	codeNoResults        = 1
	codeInvalidParameter = 2
	codeRateLimited      = 5
)

var apiMessages = map[int]string{
	codeInvalidParameter: "invalid parameters",
	3:                    "session token not found",
	4:                    "session token exhausted",
	codeRateLimited:      "rate limited, try again shortly",
}

// Client fetches multiple-choice questions from the Open Trivia DB.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a client. Empty baseURL means the public endpoint;
// timeout bounds each request independently of the caller's context.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type apiQuestion struct {
	Category         string   `json:"category"`
	Difficulty       string   `json:"difficulty"`
	Question         string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
}

type apiResponse struct {
	ResponseCode int           `json:"response_code"`
	Results      []apiQuestion `json:"results"`
}

// Fetch retrieves up to req.Amount questions matching the optional category
// and difficulty filters. Question and answer text is HTML-entity-decoded
// before it leaves this package.
func (c *Client) Fetch(ctx context.Context, req domain.QuestionRequest) ([]domain.Question, error) {
	query := url.Values{}
	query.Set("amount", fmt.Sprintf("%d", req.Amount))
	query.Set("type", "multiple")
	if req.Category != "" {
		query.Set("category", req.Category)
	}
	if req.Difficulty != "" {
		query.Set("difficulty", string(req.Difficulty))
	}

	endpoint := c.baseURL + "/api.php?" + query.Encode()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isClientTimeout(err) {
			return nil, domain.ErrFetchTimeout
		}
		return nil, fmt.Errorf("fetch questions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.StatusError{Code: resp.StatusCode}
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	switch body.ResponseCode {
	case codeSuccess:
	case codeNoResults:
		return nil, domain.ErrEmptyResult
	default:
		message, ok := apiMessages[body.ResponseCode]
		if !ok {
			message = "unexpected provider error"
		}
		return nil, &domain.APIError{Code: body.ResponseCode, Message: message}
	}

	if len(body.Results) == 0 {
		return nil, domain.ErrEmptyResult
	}

	questions := make([]domain.Question, 0, len(body.Results))
	for _, raw := range body.Results {
		incorrect := make([]string, 0, len(raw.IncorrectAnswers))
		for _, answer := range raw.IncorrectAnswers {
			incorrect = append(incorrect, html.UnescapeString(answer))
		}
		questions = append(questions, domain.Question{
			Text:             html.UnescapeString(raw.Question),
			Category:         html.UnescapeString(raw.Category),
			Difficulty:       raw.Difficulty,
			CorrectAnswer:    html.UnescapeString(raw.CorrectAnswer),
			IncorrectAnswers: incorrect,
		})
	}
	return questions, nil
}

func isClientTimeout(err error) bool {
	var timeoutErr interface{ Timeout() bool }
	return errors.As(err, &timeoutErr) && timeoutErr.Timeout()
}
