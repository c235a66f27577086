package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"trivia-quiz-service/internal/domain"
)

const prefsKey = "quiz:prefs"

// PrefStore persists the last-used settings in a Redis hash. Writes are
// best-effort; loads tolerate missing or corrupt fields by reporting no
// stored settings rather than failing the caller.
type PrefStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPrefStore builds a store. A non-zero ttl expires stale preferences.
func NewPrefStore(client *redis.Client, ttl time.Duration) *PrefStore {
	return &PrefStore{client: client, ttl: ttl}
}

func (s *PrefStore) Save(ctx context.Context, settings domain.Settings) error {
	fields := map[string]interface{}{
		"count":      settings.QuestionCount,
		"category":   settings.Category,
		"difficulty": string(settings.Difficulty),
		"time":       settings.TimePerQuestion,
	}
	if err := s.client.HSet(ctx, prefsKey, fields).Err(); err != nil {
		return err
	}
	if s.ttl > 0 {
		_ = s.client.Expire(ctx, prefsKey, s.ttl).Err()
	}
	return nil
}

func (s *PrefStore) Load(ctx context.Context) (domain.Settings, bool) {
	fields, err := s.client.HGetAll(ctx, prefsKey).Result()
	if err != nil || len(fields) == 0 {
		return domain.Settings{}, false
	}

	count, err := strconv.Atoi(fields["count"])
	if err != nil {
		return domain.Settings{}, false
	}
	timePerQuestion, err := strconv.Atoi(fields["time"])
	if err != nil {
		return domain.Settings{}, false
	}

	return domain.Settings{
		QuestionCount:   count,
		Category:        fields["category"],
		Difficulty:      domain.Difficulty(fields["difficulty"]),
		TimePerQuestion: timePerQuestion,
	}, true
}
