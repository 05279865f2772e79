package handlers

import (
	"net/http"

	"github.com/circles/backend/internal/users"
)

// UserHandler serves the user directory search.
type UserHandler struct {
	Directory UserSearcher
}

// Search handles GET /api/v1/users/search?keyword=&page=. Anonymous callers are allowed.
func (h UserHandler) Search(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	query := r.URL.Query()

	page, err := h.Directory.Search(ctx, query.Get("keyword"), users.ParsePage(query.Get("page")))
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, page)
}
