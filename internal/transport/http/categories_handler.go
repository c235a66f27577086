package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"trivia-quiz-service/internal/domain"
)

// CategoryProvider lists the categories available for the setup form.
// Both the public API catalog and the Postgres question bank satisfy it.
type CategoryProvider interface {
	Categories(ctx context.Context) ([]domain.Category, error)
}

// CategoriesHandler serves GET /categories.
type CategoriesHandler struct {
	provider CategoryProvider
}

func NewCategoriesHandler(provider CategoryProvider) *CategoriesHandler {
	return &CategoriesHandler{provider: provider}
}

func (h *CategoriesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	categories, err := h.provider.Categories(r.Context())
	if err != nil {
		log.Printf("listing categories: %v", err)
		http.Error(w, "category catalog unavailable", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string][]domain.Category{"categories": categories})
}
