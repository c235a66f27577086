package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"trivia-quiz-service/internal/domain"
)

func newTestStore(t *testing.T, ttl time.Duration) (*PrefStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewPrefStore(client, ttl), mr
}

func TestPrefStoreRoundTrip(t *testing.T) {
	store, _ := newTestStore(t, 0)
	ctx := context.Background()

	if _, ok := store.Load(ctx); ok {
		t.Fatalf("expected no settings in empty redis")
	}

	settings := domain.Settings{
		QuestionCount:   10,
		Category:        "18",
		Difficulty:      domain.DifficultyHard,
		TimePerQuestion: 30,
	}
	if err := store.Save(ctx, settings); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, ok := store.Load(ctx)
	if !ok || loaded != settings {
		t.Fatalf("expected %+v, got %+v ok=%v", settings, loaded, ok)
	}
}

func TestPrefStoreSetsTTL(t *testing.T) {
	store, mr := newTestStore(t, time.Minute)
	ctx := context.Background()

	if err := store.Save(ctx, domain.Settings{QuestionCount: 5, TimePerQuestion: 20}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if mr.TTL(prefsKey) != time.Minute {
		t.Fatalf("expected 1m ttl, got %v", mr.TTL(prefsKey))
	}
}

func TestPrefStoreCorruptDataLoadsNothing(t *testing.T) {
	store, mr := newTestStore(t, 0)

	mr.HSet(prefsKey, "count", "not-a-number")
	mr.HSet(prefsKey, "time", "30")

	if _, ok := store.Load(context.Background()); ok {
		t.Fatalf("corrupt hash must load as absent, not error")
	}
}
