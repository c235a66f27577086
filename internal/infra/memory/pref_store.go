package memory

import (
	"context"
	"sync"

	"trivia-quiz-service/internal/domain"
)

// PrefStore is an in-process implementation of app.PreferenceStore. Settings
// survive restarts of the quiz, not of the process.
type PrefStore struct {
	mu       sync.RWMutex
	settings *domain.Settings
}

func NewPrefStore() *PrefStore {
	return &PrefStore{}
}

func (s *PrefStore) Save(_ context.Context, settings domain.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = &settings
	return nil
}

func (s *PrefStore) Load(_ context.Context) (domain.Settings, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.settings == nil {
		return domain.Settings{}, false
	}
	return *s.settings, true
}
